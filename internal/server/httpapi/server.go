// Package httpapi exposes the backend over HTTP with gin, speaking the
// auth (/auth/v1) and table (/rest/v1) dialect the client expects.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/til/internal/logging"
	"github.com/dmitrijs2005/til/internal/server/auth"
	"github.com/dmitrijs2005/til/internal/server/models"
	"github.com/dmitrijs2005/til/internal/server/services"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// AuthService is the part of services.AuthService the handlers need.
type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*services.Session, error)
	SignIn(ctx context.Context, email, password string) (*services.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*services.Session, error)
	SignOut(ctx context.Context, userID string) error
	Authenticate(accessToken string) (*auth.Claims, error)
}

// FactService is the part of services.FactService the handlers need.
type FactService interface {
	List(ctx context.Context, filter models.FactFilter) ([]models.Fact, error)
	Create(ctx context.Context, userID string, fact models.Fact) (*models.Fact, error)
	Update(ctx context.Context, id int64, patch map[string]int) (*models.Fact, error)
}

type HTTPServer struct {
	address string
	anonKey string
	auth    AuthService
	facts   FactService
	logger  logging.Logger
}

func NewHTTPServer(address, anonKey string, l logging.Logger, as AuthService, fs FactService) *HTTPServer {
	return &HTTPServer{
		address: address,
		anonKey: anonKey,
		auth:    as,
		facts:   fs,
		logger:  l.With("module", "http_server"),
	}
}

// Router builds the gin engine with all routes.
func (s *HTTPServer) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.apiKeyMiddleware(), s.bearerMiddleware())

	authV1 := r.Group("/auth/v1")
	{
		authV1.POST("/signup", s.signUp)
		authV1.POST("/token", s.token)
		authV1.POST("/logout", s.requireUser(), s.logout)
		authV1.GET("/user", s.requireUser(), s.user)
	}

	restV1 := r.Group("/rest/v1")
	{
		restV1.GET("/:table", s.tableGuard(), s.listFacts)
		restV1.POST("/:table", s.tableGuard(), s.createFacts)
		restV1.PATCH("/:table", s.tableGuard(), s.updateFacts)
	}

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
