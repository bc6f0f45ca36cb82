// Package services holds the client's application state: the auth session
// store, the fact list view-model and the input forms that drive them.
package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/til/internal/client/client"
	"github.com/dmitrijs2005/til/internal/client/models"
	"github.com/dmitrijs2005/til/internal/logging"
)

// SessionStore owns the current auth session.
//
// Contract:
//   - Init: load the existing session and follow auth-state changes until Close.
//   - Current: the session, or nil when signed out. Callers must not mutate it.
//   - Subscribe: observe session replacements; returns an unsubscribe func.
//   - SignIn/SignUp/SignOut: delegate to the remote service; on failure the
//     session is left unchanged and the service message is returned. The
//     session itself only changes when the matching auth event arrives; the
//     calls return once it has been applied.
//   - Refresh: renew the access token when it is close to expiry.
type SessionStore interface {
	Init(ctx context.Context) error
	Close()
	Current() *models.Session
	Subscribe(fn func(*models.Session)) (unsubscribe func())
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
	Refresh(ctx context.Context) (bool, error)
}

type sessionStore struct {
	client client.Client
	log    logging.Logger
	margin time.Duration
	now    func() time.Time

	mu        sync.Mutex
	session   *models.Session
	changed   chan struct{}
	sub       client.Subscription
	nextID    int
	observers map[int]func(*models.Session)
}

// NewSessionStore builds a SessionStore. margin is how long before expiry
// Refresh renews the token.
func NewSessionStore(c client.Client, log logging.Logger, margin time.Duration) SessionStore {
	return &sessionStore{
		client:    c,
		log:       log,
		margin:    margin,
		now:       time.Now,
		changed:   make(chan struct{}),
		observers: make(map[int]func(*models.Session)),
	}
}

// eventWait bounds how long SignIn, SignUp and SignOut wait for their auth
// event to be applied.
var eventWait = 5 * time.Second

func (s *sessionStore) Init(ctx context.Context) error {
	current, err := s.client.GetSession(ctx)
	if err != nil {
		return err
	}
	s.set(current)

	sub := s.client.OnAuthStateChange(func(ev models.AuthEvent, session *models.Session) {
		if ev == models.AuthInitialSession && sameSession(s.Current(), session) {
			return
		}
		s.log.Debug(ctx, "auth state changed", "event", string(ev))
		s.set(session)
	})

	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()
	return nil
}

func (s *sessionStore) Close() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

func (s *sessionStore) Current() *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *sessionStore) Subscribe(fn func(*models.Session)) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// set replaces the session wholesale and notifies observers.
func (s *sessionStore) set(session *models.Session) {
	s.mu.Lock()
	s.session = session
	close(s.changed)
	s.changed = make(chan struct{})
	observers := make([]func(*models.Session), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(session)
	}
}

// await blocks until ok holds for the current session. Without a
// subscription nothing would ever change it, so await returns at once.
func (s *sessionStore) await(ctx context.Context, ok func(*models.Session) bool) {
	ctx, cancel := context.WithTimeout(ctx, eventWait)
	defer cancel()

	for {
		s.mu.Lock()
		if s.sub == nil || ok(s.session) {
			s.mu.Unlock()
			return
		}
		changed := s.changed
		s.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			s.log.Warn(ctx, "auth event not applied in time", "error", ctx.Err())
			return
		}
	}
}

func sameSession(a, b *models.Session) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.AccessToken == b.AccessToken
}

// sessionFor matches the session a sign-in produced, or any later session of
// the same user (a refresh may already have replaced it).
func sessionFor(want *models.Session) func(*models.Session) bool {
	return func(cur *models.Session) bool {
		return cur != nil && (cur.AccessToken == want.AccessToken || cur.User.ID == want.User.ID)
	}
}

func signedOut(cur *models.Session) bool { return cur == nil }

func (s *sessionStore) SignIn(ctx context.Context, email, password string) error {
	session, err := s.client.SignInWithPassword(ctx, email, password)
	if err != nil {
		return err
	}
	s.await(ctx, sessionFor(session))
	s.log.Info(ctx, "signed in", "email", email)
	return nil
}

// SignUp registers the user. If the service starts a session right away it
// becomes current; otherwise the session stays as it was.
func (s *sessionStore) SignUp(ctx context.Context, email, password string) error {
	session, err := s.client.SignUp(ctx, email, password)
	if err != nil {
		return err
	}
	if session != nil {
		s.await(ctx, sessionFor(session))
	}
	s.log.Info(ctx, "signed up", "email", email, "session", session != nil)
	return nil
}

// SignOut returns once the SIGNED_OUT event has cleared the session.
func (s *sessionStore) SignOut(ctx context.Context) error {
	if err := s.client.SignOut(ctx); err != nil {
		return err
	}
	s.await(ctx, signedOut)
	return nil
}

// Refresh renews the access token if it expires within the margin.
// It reports whether a refresh happened. The new session arrives with the
// TOKEN_REFRESHED event.
func (s *sessionStore) Refresh(ctx context.Context) (bool, error) {
	current := s.Current()
	if current == nil || current.RefreshToken == "" || !current.Expired(s.now(), s.margin) {
		return false, nil
	}

	if _, err := s.client.RefreshSession(ctx); err != nil {
		return false, err
	}
	return true, nil
}
