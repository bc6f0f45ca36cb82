package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/til/internal/client/client"
	"github.com/dmitrijs2005/til/internal/client/models"
	"github.com/dmitrijs2005/til/internal/common"
	"github.com/dmitrijs2005/til/internal/logging"
)

// FactsViewModel holds the visible fact list and the filter/sort that
// produced it.
//
// Contract:
//   - SetCategory/SetSortKey: change the selection and re-fetch. Only the
//     newest fetch may replace the list; superseded requests are cancelled
//     and their results dropped with ErrStaleFetch.
//   - CreateFact: validate, insert, and prepend the stored record.
//   - Vote: increment one counter of one fact and swap in the stored record.
//
// On any remote failure the list is left as it was.
type FactsViewModel interface {
	CurrentCategory() string
	SortKey() models.SortKey
	Facts() []models.Fact
	Loading() bool
	Creating() bool
	Pending(id int64) bool

	SetCategory(ctx context.Context, category string) error
	SetSortKey(ctx context.Context, key models.SortKey) error
	Refresh(ctx context.Context) error

	CreateFact(ctx context.Context, f models.NewFact) (*models.Fact, error)
	Vote(ctx context.Context, id int64, column models.VoteColumn) (*models.Fact, error)
}

type factsViewModel struct {
	client client.Client
	log    logging.Logger

	mu       sync.Mutex
	category string
	sortKey  models.SortKey
	facts    []models.Fact
	loading  bool
	seq      uint64
	cancel   context.CancelFunc
	creating bool
	pending  map[int64]bool
}

func NewFactsViewModel(c client.Client, log logging.Logger) FactsViewModel {
	return &factsViewModel{
		client:   c,
		log:      log,
		category: models.CategoryAll,
		sortKey:  models.DefaultSortKey,
		facts:    []models.Fact{},
		pending:  make(map[int64]bool),
	}
}

func (vm *factsViewModel) CurrentCategory() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.category
}

func (vm *factsViewModel) SortKey() models.SortKey {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.sortKey
}

// Facts returns a copy of the list in display order.
func (vm *factsViewModel) Facts() []models.Fact {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	out := make([]models.Fact, len(vm.facts))
	copy(out, vm.facts)
	return out
}

func (vm *factsViewModel) Loading() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.loading
}

func (vm *factsViewModel) Creating() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.creating
}

func (vm *factsViewModel) Pending(id int64) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.pending[id]
}

func (vm *factsViewModel) SetCategory(ctx context.Context, category string) error {
	if !models.IsCategoryFilter(category) {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidFilter, category)
	}
	vm.mu.Lock()
	vm.category = category
	vm.mu.Unlock()
	return vm.fetch(ctx)
}

func (vm *factsViewModel) SetSortKey(ctx context.Context, key models.SortKey) error {
	if !key.Valid() {
		return fmt.Errorf("%w: unknown sort key %q", ErrInvalidFilter, key)
	}
	vm.mu.Lock()
	vm.sortKey = key
	vm.mu.Unlock()
	return vm.fetch(ctx)
}

func (vm *factsViewModel) Refresh(ctx context.Context) error {
	return vm.fetch(ctx)
}

func (vm *factsViewModel) fetch(ctx context.Context) error {
	vm.mu.Lock()
	vm.seq++
	seq := vm.seq
	if vm.cancel != nil {
		vm.cancel()
	}
	fctx, cancel := context.WithCancel(ctx)
	vm.cancel = cancel
	vm.loading = true
	q := models.NewFactQuery(vm.category, vm.sortKey)
	vm.mu.Unlock()
	defer cancel()

	facts, err := vm.client.Select(fctx, common.FactsTable, q)

	vm.mu.Lock()
	defer vm.mu.Unlock()

	if seq != vm.seq {
		vm.log.Debug(ctx, "dropping superseded fetch", "seq", seq, "latest", vm.seq)
		return ErrStaleFetch
	}
	vm.loading = false
	vm.cancel = nil

	if err != nil {
		vm.log.Error(ctx, "failed to fetch facts", "category", q.Category, "order", q.Order, "error", err)
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	if facts == nil {
		facts = []models.Fact{}
	}
	vm.facts = facts
	vm.log.Debug(ctx, "facts fetched", "category", q.Category, "order", q.Order, "count", len(facts))
	return nil
}

// CreateFact inserts f and puts the stored record first, whatever the
// current sort order.
func (vm *factsViewModel) CreateFact(ctx context.Context, f models.NewFact) (*models.Fact, error) {
	if err := ValidateNewFact(f); err != nil {
		return nil, err
	}

	vm.mu.Lock()
	if vm.creating {
		vm.mu.Unlock()
		return nil, ErrFormBusy
	}
	vm.creating = true
	vm.mu.Unlock()

	defer func() {
		vm.mu.Lock()
		vm.creating = false
		vm.mu.Unlock()
	}()

	created, err := vm.client.Insert(ctx, common.FactsTable, f)
	if err != nil {
		vm.log.Warn(ctx, "failed to create fact", "error", err)
		return nil, err
	}

	vm.mu.Lock()
	vm.facts = append([]models.Fact{*created}, vm.facts...)
	vm.mu.Unlock()

	vm.log.Info(ctx, "fact created", "id", created.ID, "category", created.Category)
	return created, nil
}

// Vote sends current+1 for the column, computed from the in-memory record.
// Concurrent voters on the same fact from different clients can overwrite
// each other's increment.
func (vm *factsViewModel) Vote(ctx context.Context, id int64, column models.VoteColumn) (*models.Fact, error) {
	if !column.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVoteColumn, column)
	}

	vm.mu.Lock()
	idx := vm.indexOf(id)
	if idx < 0 {
		vm.mu.Unlock()
		return nil, fmt.Errorf("%w: %d", ErrFactNotFound, id)
	}
	if vm.pending[id] {
		vm.mu.Unlock()
		return nil, ErrRowPending
	}
	current, err := vm.facts[idx].Votes(column)
	if err != nil {
		vm.mu.Unlock()
		return nil, errors.Join(ErrInvalidVoteColumn, err)
	}
	vm.pending[id] = true
	vm.mu.Unlock()

	defer func() {
		vm.mu.Lock()
		delete(vm.pending, id)
		vm.mu.Unlock()
	}()

	updated, err := vm.client.Update(ctx, common.FactsTable, id, map[string]int{string(column): current + 1})
	if err != nil {
		vm.log.Warn(ctx, "vote failed", "id", id, "column", string(column), "error", err)
		return nil, err
	}

	vm.mu.Lock()
	if i := vm.indexOf(id); i >= 0 {
		vm.facts[i] = *updated
	}
	vm.mu.Unlock()
	return updated, nil
}

func (vm *factsViewModel) indexOf(id int64) int {
	for i := range vm.facts {
		if vm.facts[i].ID == id {
			return i
		}
	}
	return -1
}
