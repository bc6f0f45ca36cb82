package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/til/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Header http.Header
	Body   string
}

type fakeService struct {
	mu       sync.Mutex
	requests []capturedRequest
	handler  func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, capturedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   string(b),
	})
	f.mu.Unlock()
	f.handler(w, r)
}

func (f *fakeService) last() capturedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeService) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, h func(w http.ResponseWriter, r *http.Request), opts ...Option) (*RESTClient, *fakeService) {
	t.Helper()
	fs := &fakeService{handler: h}
	srv := httptest.NewServer(fs)
	t.Cleanup(srv.Close)

	c, err := NewRESTClient(srv.URL, "anon-key", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, fs
}

func tokenBody(access, refresh string) map[string]any {
	return map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "bearer",
		"expires_in":    3600,
		"user":          map[string]any{"id": "u1", "email": "ann@example.com"},
	}
}

func TestNewRESTClient_Validates(t *testing.T) {
	_, err := NewRESTClient("ftp://example.com", "k")
	assert.Error(t, err)
	_, err = NewRESTClient("not a url", "k")
	assert.Error(t, err)
	_, err = NewRESTClient("https://example.com", "")
	assert.Error(t, err)
}

func TestSelect_BuildsQuery(t *testing.T) {
	c, fs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 7, "text": "t", "source": "https://a.b", "category": "science", "votesInteresting": 3, "created_at": "2024-01-02T03:04:05+00:00"},
		})
	})

	facts, err := c.Select(context.Background(), "facts", models.NewFactQuery("science", models.SortRecent))
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, int64(7), facts[0].ID)
	assert.Equal(t, 3, facts[0].VotesInteresting)
	assert.Equal(t, 2024, facts[0].CreatedAt.Year())

	req := fs.last()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/rest/v1/facts", req.Path)
	assert.Equal(t, []string{"*"}, req.Query["select"])
	assert.Equal(t, []string{"eq.science"}, req.Query["category"])
	assert.Equal(t, []string{"created_at.desc"}, req.Query["order"])
	assert.Equal(t, "anon-key", req.Header.Get("apikey"))
	assert.Equal(t, "Bearer anon-key", req.Header.Get("Authorization"))
}

func TestSelect_AllHasNoCategoryFilter(t *testing.T) {
	c, fs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	})

	facts, err := c.Select(context.Background(), "facts", models.NewFactQuery(models.CategoryAll, models.SortUpvotes))
	require.NoError(t, err)
	assert.NotNil(t, facts)
	assert.Empty(t, facts)

	req := fs.last()
	assert.NotContains(t, req.Query, "category")
	assert.Equal(t, []string{"votesInteresting.desc"}, req.Query["order"])
}

func TestInsert_SendsRepresentation(t *testing.T) {
	c, fs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, []map[string]any{{"id": 11, "text": "x", "source": "https://s.t", "category": "news"}})
	})

	f, err := c.Insert(context.Background(), "facts", models.NewFact{Text: "x", Source: "https://s.t", Category: "news"})
	require.NoError(t, err)
	assert.Equal(t, int64(11), f.ID)

	req := fs.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "return=representation", req.Header.Get("Prefer"))
	assert.JSONEq(t, `[{"text":"x","source":"https://s.t","category":"news"}]`, req.Body)
}

func TestUpdate_FiltersByID(t *testing.T) {
	c, fs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 5, "votesFalse": 2}})
	})

	f, err := c.Update(context.Background(), "facts", 5, map[string]int{"votesFalse": 2})
	require.NoError(t, err)
	assert.Equal(t, 2, f.VotesFalse)

	req := fs.last()
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, []string{"eq.5"}, req.Query["id"])
	assert.JSONEq(t, `{"votesFalse":2}`, req.Body)
}

func TestUpdate_NoRowsIsEmptyResult(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	})

	_, err := c.Update(context.Background(), "facts", 5, map[string]int{"votesFalse": 2})
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
		check  func(t *testing.T, err error)
	}{
		{"unauthorized", http.StatusUnauthorized, map[string]string{"message": "JWT expired"}, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrUnauthorized)
			assert.ErrorContains(t, err, "JWT expired")
		}},
		{"forbidden", http.StatusForbidden, nil, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrUnauthorized)
		}},
		{"gotrue msg", http.StatusUnprocessableEntity, map[string]string{"msg": "User already registered"}, func(t *testing.T, err error) {
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
			assert.Equal(t, "User already registered", apiErr.Error())
		}},
		{"oauth description", http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "Invalid login credentials"}, func(t *testing.T, err error) {
			assert.EqualError(t, err, "Invalid login credentials")
		}},
		{"no message", http.StatusTeapot, nil, func(t *testing.T, err error) {
			assert.EqualError(t, err, "request failed with status 418")
		}},
		{"gateway", http.StatusBadGateway, nil, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrUnavailable)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.body == nil {
					w.WriteHeader(tt.status)
					return
				}
				writeJSON(w, tt.status, tt.body)
			})
			_, err := c.Select(context.Background(), "facts", models.FactQuery{})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestTransportErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewRESTClient(url, "k")
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Select(context.Background(), "facts", models.FactQuery{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCancelledContextIsNotUnavailable(t *testing.T) {
	block := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	})
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Select(ctx, "facts", models.FactQuery{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func collectEvents(c *RESTClient) (chan models.AuthEvent, Subscription) {
	ch := make(chan models.AuthEvent, 16)
	sub := c.OnAuthStateChange(func(e models.AuthEvent, _ *models.Session) { ch <- e })
	return ch, sub
}

func nextEvent(t *testing.T, ch chan models.AuthEvent) models.AuthEvent {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no auth event delivered")
		return ""
	}
}

func TestSignInThenSignOut(t *testing.T) {
	c, fs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/v1/token":
			writeJSON(w, http.StatusOK, tokenBody("acc", "ref"))
		case "/auth/v1/logout":
			w.WriteHeader(http.StatusNoContent)
		default:
			writeJSON(w, http.StatusOK, []any{})
		}
	})
	ctx := context.Background()

	events, sub := collectEvents(c)
	defer sub.Unsubscribe()
	assert.Equal(t, models.AuthInitialSession, nextEvent(t, events))

	s, err := c.SignInWithPassword(ctx, "ann@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", s.User.Email)
	assert.False(t, s.ExpiresAt.IsZero())
	assert.Equal(t, models.AuthSignedIn, nextEvent(t, events))

	req := fs.last()
	assert.Equal(t, []string{"password"}, req.Query["grant_type"])
	assert.JSONEq(t, `{"email":"ann@example.com","password":"pw"}`, req.Body)

	_, err = c.Select(ctx, "facts", models.FactQuery{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer acc", fs.last().Header.Get("Authorization"))

	require.NoError(t, c.SignOut(ctx))
	assert.Equal(t, "/auth/v1/logout", fs.last().Path)
	assert.Equal(t, models.AuthSignedOut, nextEvent(t, events))

	cur, err := c.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestSignIn_FailureLeavesSessionAbsent(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error_description": "Invalid login credentials"})
	})
	ctx := context.Background()

	_, err := c.SignInWithPassword(ctx, "ann@example.com", "bad")
	assert.EqualError(t, err, "Invalid login credentials")

	s, err := c.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestSignUp_WithoutSession(t *testing.T) {
	c, fs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "u2", "email": "bob@example.com"})
	})

	s, err := c.SignUp(context.Background(), "bob@example.com", "pw")
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Equal(t, "/auth/v1/signup", fs.last().Path)
}

func TestSignUp_WithSessionEmitsSignedIn(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, tokenBody("acc", "ref"))
	})
	events, sub := collectEvents(c)
	defer sub.Unsubscribe()
	nextEvent(t, events)

	s, err := c.SignUp(context.Background(), "bob@example.com", "pw")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, models.AuthSignedIn, nextEvent(t, events))
}

func TestGetSession_RestoresAndRefreshesExpired(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	storage := &memoryStorage{s: &models.Session{
		AccessToken:  "old",
		RefreshToken: "r1",
		ExpiresAt:    now.Add(-time.Minute),
	}}

	c, fs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, tokenBody("new", "r2"))
	}, WithSessionStorage(storage), WithClock(func() time.Time { return now }))

	s, err := c.GetSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "new", s.AccessToken)
	assert.Equal(t, now.Add(time.Hour), s.ExpiresAt)

	req := fs.last()
	assert.Equal(t, []string{"refresh_token"}, req.Query["grant_type"])
	assert.JSONEq(t, `{"refresh_token":"r1"}`, req.Body)
	assert.Equal(t, "r2", storage.s.RefreshToken)
}

func TestGetSession_DropsUnrefreshableSession(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	storage := &memoryStorage{s: &models.Session{AccessToken: "old", RefreshToken: "r1", ExpiresAt: now.Add(-time.Minute)}}

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error_description": "Invalid Refresh Token"})
	}, WithSessionStorage(storage), WithClock(func() time.Time { return now }))

	s, err := c.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Nil(t, storage.s)
}

func TestGetSession_ValidStoredSessionMakesNoRequest(t *testing.T) {
	storage := &memoryStorage{s: &models.Session{AccessToken: "a", ExpiresAt: time.Now().Add(time.Hour)}}
	c, fs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, WithSessionStorage(storage))

	s, err := c.GetSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", s.AccessToken)
	assert.Zero(t, fs.count())
}

func TestRefreshSession_WithoutSession(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	_, err := c.RefreshSession(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, tokenBody("acc", "ref"))
	})

	events, sub := collectEvents(c)
	nextEvent(t, events)
	sub.Unsubscribe()

	other, sub2 := collectEvents(c)
	defer sub2.Unsubscribe()
	nextEvent(t, other)

	_, err := c.SignInWithPassword(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, models.AuthSignedIn, nextEvent(t, other))

	select {
	case e := <-events:
		t.Fatalf("unsubscribed listener got %s", e)
	default:
	}
}

func TestSignOut_RemoteFailureStillClearsLocally(t *testing.T) {
	storage := &memoryStorage{}
	c, fs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/v1/token":
			writeJSON(w, http.StatusOK, tokenBody("acc", "ref"))
		case "/auth/v1/logout":
			writeJSON(w, http.StatusInternalServerError, map[string]string{"msg": "boom"})
		}
	}, WithSessionStorage(storage))
	ctx := context.Background()

	events, sub := collectEvents(c)
	defer sub.Unsubscribe()
	nextEvent(t, events)

	_, err := c.SignInWithPassword(ctx, "ann@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, models.AuthSignedIn, nextEvent(t, events))

	require.NoError(t, c.SignOut(ctx))
	assert.Equal(t, "/auth/v1/logout", fs.last().Path)
	assert.Equal(t, models.AuthSignedOut, nextEvent(t, events))
	assert.Nil(t, storage.s)

	cur, err := c.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestRefreshSession_DiscardedWhenSignedOutMeanwhile(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/auth/v1/logout":
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Query().Get("grant_type") == "refresh_token":
			close(started)
			<-release
			writeJSON(w, http.StatusOK, tokenBody("acc2", "ref2"))
		default:
			writeJSON(w, http.StatusOK, tokenBody("acc", "ref"))
		}
	})
	ctx := context.Background()

	events, sub := collectEvents(c)
	defer sub.Unsubscribe()
	nextEvent(t, events)

	_, err := c.SignInWithPassword(ctx, "ann@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, models.AuthSignedIn, nextEvent(t, events))

	done := make(chan error, 1)
	go func() {
		_, err := c.RefreshSession(ctx)
		done <- err
	}()
	<-started

	require.NoError(t, c.SignOut(ctx))
	close(release)

	assert.ErrorIs(t, <-done, ErrSessionChanged)
	assert.Equal(t, models.AuthSignedOut, nextEvent(t, events))

	cur, err := c.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur)

	select {
	case e := <-events:
		t.Fatalf("unexpected event %s after sign out", e)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestGetSession_Idempotent(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := WithClock(func() time.Time { return now })
	refresh := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, tokenBody("new", "r2"))
	}

	tests := []struct {
		name     string
		stored   *models.Session
		requests int
	}{
		{name: "no session"},
		{
			name:   "valid stored session",
			stored: &models.Session{AccessToken: "a", RefreshToken: "r1", ExpiresAt: now.Add(time.Hour)},
		},
		{
			name:     "expired stored session refreshed once",
			stored:   &models.Session{AccessToken: "old", RefreshToken: "r1", ExpiresAt: now.Add(-time.Minute)},
			requests: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, fs := newTestClient(t, refresh, WithSessionStorage(&memoryStorage{s: tt.stored}), clock)
			ctx := context.Background()

			first, err := c.GetSession(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.requests, fs.count())

			second, err := c.GetSession(ctx)
			require.NoError(t, err)
			assert.Equal(t, first, second)
			assert.Equal(t, tt.requests, fs.count(), "second call makes no request")
		})
	}
}
