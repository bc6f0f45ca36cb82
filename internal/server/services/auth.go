// Package services holds the business logic of the development backend:
// AuthService issues and rotates tokens, FactService guards the facts table.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/til/internal/common"
	"github.com/dmitrijs2005/til/internal/dbx"
	"github.com/dmitrijs2005/til/internal/server/auth"
	"github.com/dmitrijs2005/til/internal/server/config"
	"github.com/dmitrijs2005/til/internal/server/models"
	"github.com/dmitrijs2005/til/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// bcryptCost is a variable so tests can hash cheaply.
var bcryptCost = bcrypt.DefaultCost

// Session is what a successful sign-up, sign-in or refresh hands back.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
	ExpiresAt    time.Time
	User         *models.User
}

type AuthService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// SignUp creates the user and signs them in straight away; there is no
// email confirmation step.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password is too long", common.ErrorValidation)
		}
		return nil, common.ErrorInternal
	}

	user := &models.User{ID: uuid.NewString(), Email: email, PasswordHash: hash}

	user, err = s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return s.newSession(ctx, s.db, user)
}

// SignIn checks the password. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.newSession(ctx, s.db, user)
}

// Refresh consumes refreshToken and issues a new session in one transaction.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	var session *Session

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.RefreshTokens(tx)

		token, err := repo.Find(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("%w: Refresh Token Not Found", ErrInvalidRefreshToken)
			}
			return fmt.Errorf("error searching refresh token: %w", err)
		}

		if token.Expires.Before(time.Now()) {
			return fmt.Errorf("%w: %w", ErrInvalidRefreshToken, common.ErrRefreshTokenExpired)
		}

		if err := repo.Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}

		user, err := s.repomanager.Users(tx).GetUserByID(ctx, token.UserID)
		if err != nil {
			return fmt.Errorf("error loading user: %w", err)
		}

		session, err = s.newSession(ctx, tx, user)
		return err
	})

	if err != nil {
		return nil, err
	}
	return session, nil
}

// SignOut revokes every refresh token of userID. Access tokens stay valid
// until they expire.
func (s *AuthService) SignOut(ctx context.Context, userID string) error {
	if err := s.repomanager.RefreshTokens(s.db).DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("error revoking refresh tokens: %w", err)
	}
	return nil
}

// Authenticate verifies an access token.
func (s *AuthService) Authenticate(accessToken string) (*auth.Claims, error) {
	return auth.GetClaimsFromToken(accessToken, s.jwtSecret)
}

func (s *AuthService) newSession(ctx context.Context, db dbx.DBTX, user *models.User) (*Session, error) {
	accessToken, err := auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := s.repomanager.RefreshTokens(db).Create(ctx, user.ID, refreshToken, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}

	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.accessTokenValidityDuration,
		ExpiresAt:    time.Now().Add(s.accessTokenValidityDuration),
		User:         user,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
