package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/til/internal/client/models"
	"github.com/dmitrijs2005/til/internal/client/services"
)

type fakeSession struct {
	services.SessionStore

	current    *models.Session
	signInErr  error
	signUpErr  error
	signUpRet  *models.Session
	signOutErr error

	signInEmail, signInPassword string
	signUpEmail                 string
	signOutCalls                int
}

func (f *fakeSession) Current() *models.Session { return f.current }

func (f *fakeSession) SignIn(_ context.Context, email, password string) error {
	f.signInEmail, f.signInPassword = email, password
	if f.signInErr != nil {
		return f.signInErr
	}
	f.current = &models.Session{AccessToken: "acc", User: models.User{ID: "u1", Email: email}}
	return nil
}

func (f *fakeSession) SignUp(_ context.Context, email, _ string) error {
	f.signUpEmail = email
	if f.signUpErr != nil {
		return f.signUpErr
	}
	if f.signUpRet != nil {
		f.current = f.signUpRet
	}
	return nil
}

func (f *fakeSession) SignOut(context.Context) error {
	f.signOutCalls++
	if f.signOutErr != nil {
		return f.signOutErr
	}
	f.current = nil
	return nil
}

type voteCall struct {
	id     int64
	column models.VoteColumn
}

type fakeFacts struct {
	services.FactsViewModel

	category string
	sortKey  models.SortKey
	facts    []models.Fact
	loading  bool

	fetchErr  error
	createErr error
	voteErr   error
	voteRet   *models.Fact

	setCategoryCalls []string
	setSortCalls     []models.SortKey
	refreshCalls     int
	created          []models.NewFact
	votes            []voteCall
}

func newFakeFacts() *fakeFacts {
	return &fakeFacts{category: models.CategoryAll, sortKey: models.DefaultSortKey}
}

func (f *fakeFacts) CurrentCategory() string { return f.category }
func (f *fakeFacts) SortKey() models.SortKey { return f.sortKey }
func (f *fakeFacts) Facts() []models.Fact    { return append([]models.Fact(nil), f.facts...) }
func (f *fakeFacts) Loading() bool           { return f.loading }

func (f *fakeFacts) SetCategory(_ context.Context, c string) error {
	f.setCategoryCalls = append(f.setCategoryCalls, c)
	if !models.IsCategoryFilter(c) {
		return services.ErrInvalidFilter
	}
	f.category = c
	return f.fetchErr
}

func (f *fakeFacts) SetSortKey(_ context.Context, k models.SortKey) error {
	f.setSortCalls = append(f.setSortCalls, k)
	f.sortKey = k
	return f.fetchErr
}

func (f *fakeFacts) Refresh(context.Context) error {
	f.refreshCalls++
	return f.fetchErr
}

func (f *fakeFacts) CreateFact(_ context.Context, nf models.NewFact) (*models.Fact, error) {
	if err := services.ValidateNewFact(nf); err != nil {
		return nil, err
	}
	f.created = append(f.created, nf)
	if f.createErr != nil {
		return nil, f.createErr
	}
	fact := models.Fact{ID: 100, Text: nf.Text, Source: nf.Source, Category: nf.Category}
	f.facts = append([]models.Fact{fact}, f.facts...)
	return &fact, nil
}

func (f *fakeFacts) Vote(_ context.Context, id int64, column models.VoteColumn) (*models.Fact, error) {
	f.votes = append(f.votes, voteCall{id, column})
	return f.voteRet, f.voteErr
}

func newTestApp(s *fakeSession, vm *fakeFacts, input string) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &App{
		session:  s,
		facts:    vm,
		factForm: services.NewFactForm(),
		reader:   bufio.NewReader(strings.NewReader(input)),
		out:      out,
	}, out
}

// stubInputs replaces the interactive prompts with scripted answers.
func stubInputs(t *testing.T, answers []string, password string) {
	t.Helper()
	origST, origGP, origGC := getSimpleText, getPassword, getChoice

	next := func() (string, error) {
		if len(answers) == 0 {
			return "", io.EOF
		}
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return next() }
	getChoice = func(_ *bufio.Reader, _ string, _ []string, _ io.Writer) (string, error) { return next() }
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(password), nil }

	t.Cleanup(func() {
		getSimpleText, getPassword, getChoice = origST, origGP, origGC
	})
}
