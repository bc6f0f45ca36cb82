package services

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dmitrijs2005/til/internal/client/models"
	"github.com/dmitrijs2005/til/internal/common"
)

// FactForm is the "share a fact" input state.
type FactForm struct {
	mu       sync.Mutex
	text     string
	source   string
	category string
}

func NewFactForm() *FactForm {
	return &FactForm{}
}

// SetText replaces the text unless it is longer than the limit, in which
// case the previous value is kept and false is returned.
func (f *FactForm) SetText(text string) bool {
	if utf8.RuneCountInString(text) > common.MaxFactLength {
		return false
	}
	f.mu.Lock()
	f.text = text
	f.mu.Unlock()
	return true
}

func (f *FactForm) SetSource(source string) {
	f.mu.Lock()
	f.source = strings.TrimSpace(source)
	f.mu.Unlock()
}

func (f *FactForm) SetCategory(category string) {
	f.mu.Lock()
	f.category = strings.ToLower(strings.TrimSpace(category))
	f.mu.Unlock()
}

func (f *FactForm) Text() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text
}

func (f *FactForm) Source() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.source
}

func (f *FactForm) Category() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.category
}

// Remaining is the number of characters still allowed in the text.
func (f *FactForm) Remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return common.MaxFactLength - utf8.RuneCountInString(f.text)
}

func (f *FactForm) Reset() {
	f.mu.Lock()
	f.text, f.source, f.category = "", "", ""
	f.mu.Unlock()
}

// Submit hands the entered fact to vm. The fields are cleared afterwards
// whatever the outcome.
func (f *FactForm) Submit(ctx context.Context, vm FactsViewModel) (*models.Fact, error) {
	f.mu.Lock()
	nf := models.NewFact{Text: f.text, Source: f.source, Category: f.category}
	f.mu.Unlock()

	defer f.Reset()
	return vm.CreateFact(ctx, nf)
}
