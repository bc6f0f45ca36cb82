package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/til/internal/common"
	"github.com/dmitrijs2005/til/internal/logging"
	"github.com/dmitrijs2005/til/internal/server/auth"
	"github.com/dmitrijs2005/til/internal/server/models"
	"github.com/dmitrijs2005/til/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	testAnonKey   = "anon"
	testUserToken = "user-token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuth struct {
	session   *services.Session
	err       error
	gotEmail  string
	gotPass   string
	gotToken  string
	signedOut []string
}

func (f *fakeAuth) SignUp(_ context.Context, email, password string) (*services.Session, error) {
	f.gotEmail, f.gotPass = email, password
	return f.session, f.err
}

func (f *fakeAuth) SignIn(_ context.Context, email, password string) (*services.Session, error) {
	f.gotEmail, f.gotPass = email, password
	return f.session, f.err
}

func (f *fakeAuth) Refresh(_ context.Context, token string) (*services.Session, error) {
	f.gotToken = token
	return f.session, f.err
}

func (f *fakeAuth) SignOut(_ context.Context, userID string) error {
	f.signedOut = append(f.signedOut, userID)
	return f.err
}

func (f *fakeAuth) Authenticate(token string) (*auth.Claims, error) {
	switch token {
	case testUserToken:
		return &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}, Email: "u1@example.com"}, nil
	case "expired":
		return nil, common.ErrTokenExpired
	}
	return nil, common.ErrInvalidToken
}

type fakeFacts struct {
	list      []models.Fact
	gotFilter models.FactFilter
	gotUser   string
	gotFact   models.Fact
	gotID     int64
	gotPatch  map[string]int
	err       error
}

func (f *fakeFacts) List(_ context.Context, filter models.FactFilter) ([]models.Fact, error) {
	f.gotFilter = filter
	return f.list, f.err
}

func (f *fakeFacts) Create(_ context.Context, userID string, fact models.Fact) (*models.Fact, error) {
	f.gotUser, f.gotFact = userID, fact
	if f.err != nil {
		return nil, f.err
	}
	fact.ID = 10
	return &fact, nil
}

func (f *fakeFacts) Update(_ context.Context, id int64, patch map[string]int) (*models.Fact, error) {
	f.gotID, f.gotPatch = id, patch
	if f.err != nil {
		return nil, f.err
	}
	return &models.Fact{ID: id, VotesMindblowing: patch[models.ColumnVotesMindblowing]}, nil
}

func newTestServer(a *fakeAuth, f *fakeFacts) *gin.Engine {
	return NewHTTPServer(":0", testAnonKey, logging.Nop{}, a, f).Router()
}

func testSession() *services.Session {
	return &services.Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    time.Hour,
		ExpiresAt:    time.Unix(1_700_000_000, 0),
		User:         &models.User{ID: "u1", Email: "u1@example.com"},
	}
}

type request struct {
	method string
	target string
	body   string
	bearer string
	prefer string
	noKey  bool
}

func do(t *testing.T, h http.Handler, r request) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if r.body != "" {
		body = strings.NewReader(r.body)
	}
	req := httptest.NewRequest(r.method, r.target, body)
	if !r.noKey {
		req.Header.Set(common.APIKeyHeaderName, testAnonKey)
	}
	bearer := r.bearer
	if bearer == "" {
		bearer = testAnonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	if r.prefer != "" {
		req.Header.Set("Prefer", r.prefer)
	}
	if r.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}
