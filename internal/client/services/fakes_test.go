package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/til/internal/client/client"
	"github.com/dmitrijs2005/til/internal/client/models"
)

type updateCall struct {
	Table string
	ID    int64
	Patch map[string]int
}

// fakeClient implements client.Client with scripted results and captured calls.
type fakeClient struct {
	mu sync.Mutex

	Session       *models.Session
	GetSessionErr error

	SignInRet  *models.Session
	SignInErr  error
	SignUpRet  *models.Session
	SignUpErr  error
	SignOutErr error
	RefreshRet *models.Session
	RefreshErr error

	SelectFn func(ctx context.Context, q models.FactQuery) ([]models.Fact, error)
	InsertFn func(ctx context.Context, f models.NewFact) (*models.Fact, error)
	UpdateFn func(ctx context.Context, id int64, patch map[string]int) (*models.Fact, error)

	listeners map[int]client.AuthListener
	nextSub   int

	LastSignInEmail string
	LastSignUpEmail string
	SignOutCalls    int
	RefreshCalls    int
	SelectCalls     []models.FactQuery
	SelectTables    []string
	InsertCalls     []models.NewFact
	UpdateCalls     []updateCall
}

func newFakeClient() *fakeClient {
	return &fakeClient{listeners: make(map[int]client.AuthListener)}
}

type fakeSub struct {
	f  *fakeClient
	id int
}

func (s fakeSub) Unsubscribe() {
	s.f.mu.Lock()
	delete(s.f.listeners, s.id)
	s.f.mu.Unlock()
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) GetSession(context.Context) (*models.Session, error) {
	return f.Session, f.GetSessionErr
}

// OnAuthStateChange registers fn and delivers INITIAL_SESSION to it, as the
// REST client does.
func (f *fakeClient) OnAuthStateChange(fn client.AuthListener) client.Subscription {
	f.mu.Lock()
	f.nextSub++
	id := f.nextSub
	f.listeners[id] = fn
	initial := f.Session
	f.mu.Unlock()

	fn(models.AuthInitialSession, initial)
	return fakeSub{f: f, id: id}
}

// emit delivers an auth event synchronously.
func (f *fakeClient) emit(ev models.AuthEvent, s *models.Session) {
	f.mu.Lock()
	fns := make([]client.AuthListener, 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(ev, s)
	}
}

func (f *fakeClient) listenerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

func (f *fakeClient) SignUp(_ context.Context, email, _ string) (*models.Session, error) {
	f.mu.Lock()
	f.LastSignUpEmail = email
	f.mu.Unlock()
	if f.SignUpErr == nil && f.SignUpRet != nil {
		f.emit(models.AuthSignedIn, f.SignUpRet)
	}
	return f.SignUpRet, f.SignUpErr
}

func (f *fakeClient) SignInWithPassword(_ context.Context, email, _ string) (*models.Session, error) {
	f.mu.Lock()
	f.LastSignInEmail = email
	f.mu.Unlock()
	if f.SignInErr == nil && f.SignInRet != nil {
		f.emit(models.AuthSignedIn, f.SignInRet)
	}
	return f.SignInRet, f.SignInErr
}

func (f *fakeClient) SignOut(context.Context) error {
	f.mu.Lock()
	f.SignOutCalls++
	f.mu.Unlock()
	if f.SignOutErr == nil {
		f.emit(models.AuthSignedOut, nil)
	}
	return f.SignOutErr
}

func (f *fakeClient) RefreshSession(context.Context) (*models.Session, error) {
	f.mu.Lock()
	f.RefreshCalls++
	f.mu.Unlock()
	if f.RefreshErr == nil && f.RefreshRet != nil {
		f.emit(models.AuthTokenRefreshed, f.RefreshRet)
	}
	return f.RefreshRet, f.RefreshErr
}

func (f *fakeClient) Select(ctx context.Context, table string, q models.FactQuery) ([]models.Fact, error) {
	f.mu.Lock()
	f.SelectCalls = append(f.SelectCalls, q)
	f.SelectTables = append(f.SelectTables, table)
	fn := f.SelectFn
	f.mu.Unlock()
	if fn == nil {
		return []models.Fact{}, nil
	}
	return fn(ctx, q)
}

func (f *fakeClient) Insert(ctx context.Context, _ string, nf models.NewFact) (*models.Fact, error) {
	f.mu.Lock()
	f.InsertCalls = append(f.InsertCalls, nf)
	fn := f.InsertFn
	f.mu.Unlock()
	return fn(ctx, nf)
}

func (f *fakeClient) Update(ctx context.Context, table string, id int64, patch map[string]int) (*models.Fact, error) {
	f.mu.Lock()
	f.UpdateCalls = append(f.UpdateCalls, updateCall{Table: table, ID: id, Patch: patch})
	fn := f.UpdateFn
	f.mu.Unlock()
	return fn(ctx, id, patch)
}

func (f *fakeClient) selectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.SelectCalls)
}

func (f *fakeClient) insertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.InsertCalls)
}

func (f *fakeClient) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.UpdateCalls)
}
