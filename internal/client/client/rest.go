package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/til/internal/client/models"
	"github.com/dmitrijs2005/til/internal/common"
	"github.com/dmitrijs2005/til/internal/logging"
)

const (
	authPath = "/auth/v1"
	restPath = "/rest/v1"
)

// RESTClient implements Client over the hosted service's HTTP API.
type RESTClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	storage SessionStorage
	log     logging.Logger
	now     func() time.Time

	mu      sync.Mutex
	session *models.Session
	loaded  bool

	events *broadcaster
}

type Option func(*RESTClient)

func WithHTTPClient(h *http.Client) Option {
	return func(c *RESTClient) { c.http = h }
}

func WithSessionStorage(s SessionStorage) Option {
	return func(c *RESTClient) { c.storage = s }
}

func WithLogger(l logging.Logger) Option {
	return func(c *RESTClient) { c.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(c *RESTClient) { c.now = now }
}

func NewRESTClient(baseURL, apiKey string, opts ...Option) (*RESTClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid service url %q", baseURL)
	}
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}

	c := &RESTClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		storage: &memoryStorage{},
		log:     logging.Nop{},
		now:     time.Now,
		events:  newBroadcaster(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *RESTClient) Close() error {
	c.events.close()
	c.http.CloseIdleConnections()
	return nil
}

// GetSession returns the current session, loading it from storage on first
// use. An expired stored session is refreshed once; if that fails it is
// discarded.
func (c *RESTClient) GetSession(ctx context.Context) (*models.Session, error) {
	c.mu.Lock()
	if !c.loaded {
		s, err := c.storage.Load(ctx)
		if err != nil {
			c.log.Warn(ctx, "failed to load stored session", "error", err)
		}
		c.session = s
		c.loaded = true
	}
	s := c.session.Clone()
	c.mu.Unlock()

	if s == nil || !s.Expired(c.now(), 0) {
		return s, nil
	}

	refreshed, err := c.RefreshSession(ctx)
	if err != nil {
		c.log.Warn(ctx, "stored session expired and could not be refreshed", "error", err)
		c.setSession(ctx, "", nil)
		return nil, nil
	}
	return refreshed, nil
}

func (c *RESTClient) OnAuthStateChange(fn AuthListener) Subscription {
	c.mu.Lock()
	s := c.session.Clone()
	c.mu.Unlock()
	return c.events.subscribe(fn, s)
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int64       `json:"expires_in"`
	ExpiresAt    int64       `json:"expires_at"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
}

func (r *tokenResponse) session(now time.Time) *models.Session {
	if r.AccessToken == "" {
		return nil
	}
	s := &models.Session{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    r.TokenType,
		User:         r.User,
	}
	switch {
	case r.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(r.ExpiresAt, 0)
	case r.ExpiresIn > 0:
		s.ExpiresAt = now.Add(time.Duration(r.ExpiresIn) * time.Second)
	default:
		s.ExpiresAt = tokenExpiry(r.AccessToken)
	}
	return s
}

// SignUp registers a user. When the service requires email confirmation no
// session is returned and none is started.
func (c *RESTClient) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, authPath+"/signup", nil, credentials{email, password}, false, &resp)
	if err != nil {
		return nil, err
	}

	s := resp.session(c.now())
	if s == nil {
		c.log.Info(ctx, "user registered, confirmation pending", "email", email)
		return nil, nil
	}
	c.setSession(ctx, models.AuthSignedIn, s)
	return s.Clone(), nil
}

func (c *RESTClient) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	q := url.Values{"grant_type": {"password"}}

	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, authPath+"/token", q, credentials{email, password}, false, &resp); err != nil {
		return nil, err
	}

	s := resp.session(c.now())
	if s == nil {
		return nil, &APIError{Status: http.StatusOK, Message: "service returned no session"}
	}
	c.setSession(ctx, models.AuthSignedIn, s)
	return s.Clone(), nil
}

// SignOut revokes the session remotely and always clears it locally. A
// failed revoke is logged, not returned: the user is signed out either way.
func (c *RESTClient) SignOut(ctx context.Context) error {
	c.mu.Lock()
	had := c.session != nil
	c.mu.Unlock()

	if had {
		err := c.do(ctx, http.MethodPost, authPath+"/logout", nil, nil, false, nil)
		if err != nil && !errors.Is(err, ErrUnauthorized) {
			c.log.Warn(ctx, "remote sign out failed, clearing local session", "error", err)
		}
	}

	c.setSession(ctx, models.AuthSignedOut, nil)
	return nil
}

// RefreshSession exchanges the refresh token for a new session. If the
// session was replaced or cleared while the request was in flight the
// response is discarded and ErrSessionChanged is returned.
func (c *RESTClient) RefreshSession(ctx context.Context) (*models.Session, error) {
	c.mu.Lock()
	var token string
	if c.session != nil {
		token = c.session.RefreshToken
	}
	c.mu.Unlock()

	if token == "" {
		return nil, ErrNoSession
	}

	q := url.Values{"grant_type": {"refresh_token"}}
	body := map[string]string{"refresh_token": token}

	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, authPath+"/token", q, body, false, &resp); err != nil {
		return nil, err
	}

	s := resp.session(c.now())
	if s == nil {
		return nil, ErrNoSession
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil || c.session.RefreshToken != token {
		c.log.Info(ctx, "session changed during refresh, dropping new tokens")
		return nil, ErrSessionChanged
	}
	c.storeLocked(ctx, models.AuthTokenRefreshed, s)
	return s.Clone(), nil
}

// setSession replaces the session, persists it and emits ev (if set).
func (c *RESTClient) setSession(ctx context.Context, ev models.AuthEvent, s *models.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storeLocked(ctx, ev, s)
}

// storeLocked runs under c.mu so the stored session, the persisted copy and
// the event order always agree.
func (c *RESTClient) storeLocked(ctx context.Context, ev models.AuthEvent, s *models.Session) {
	c.session = s.Clone()
	c.loaded = true

	var err error
	if s == nil {
		err = c.storage.Clear(ctx)
	} else {
		err = c.storage.Save(ctx, s)
	}
	if err != nil {
		c.log.Warn(ctx, "failed to persist session", "error", err)
	}

	if ev != "" {
		c.events.emit(ev, s)
	}
}

func (c *RESTClient) Select(ctx context.Context, table string, fq models.FactQuery) ([]models.Fact, error) {
	q := url.Values{"select": {"*"}}
	if fq.Category != "" {
		q.Set(models.ColumnCategory, "eq."+fq.Category)
	}
	if fq.Order != "" {
		dir := "asc"
		if fq.Descending {
			dir = "desc"
		}
		q.Set("order", fq.Order+"."+dir)
	}

	var facts []models.Fact
	if err := c.do(ctx, http.MethodGet, restPath+"/"+table, q, nil, false, &facts); err != nil {
		return nil, err
	}
	if facts == nil {
		facts = []models.Fact{}
	}
	return facts, nil
}

func (c *RESTClient) Insert(ctx context.Context, table string, f models.NewFact) (*models.Fact, error) {
	var rows []models.Fact
	if err := c.do(ctx, http.MethodPost, restPath+"/"+table, nil, []models.NewFact{f}, true, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyResult
	}
	return &rows[0], nil
}

func (c *RESTClient) Update(ctx context.Context, table string, id int64, patch map[string]int) (*models.Fact, error) {
	q := url.Values{models.ColumnID: {"eq." + strconv.FormatInt(id, 10)}}

	var rows []models.Fact
	if err := c.do(ctx, http.MethodPatch, restPath+"/"+table, q, patch, true, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyResult
	}
	return &rows[0], nil
}

func (c *RESTClient) bearer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil && c.session.AccessToken != "" {
		return c.session.AccessToken
	}
	return c.apiKey
}

func (c *RESTClient) do(ctx context.Context, method, path string, query url.Values, body any, represent bool, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(common.APIKeyHeaderName, c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if represent {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Debug(ctx, "request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.mapError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type errorBody struct {
	Msg              string `json:"msg"`
	ErrorDescription string `json:"error_description"`
	Message          string `json:"message"`
	Error            string `json:"error"`
}

func (c *RESTClient) mapError(status int, data []byte) error {
	var eb errorBody
	_ = json.Unmarshal(data, &eb)

	msg := eb.Msg
	for _, alt := range []string{eb.ErrorDescription, eb.Message, eb.Error} {
		if msg == "" {
			msg = alt
		}
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		if msg == "" {
			return ErrUnauthorized
		}
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ErrUnavailable
	default:
		return &APIError{Status: status, Message: msg}
	}
}
