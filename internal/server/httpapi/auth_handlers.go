package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/til/internal/common"
	"github.com/dmitrijs2005/til/internal/server/models"
	"github.com/dmitrijs2005/til/internal/server/services"
	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

type sessionResponse struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	RefreshToken string       `json:"refresh_token"`
	User         userResponse `json:"user"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

func newSessionResponse(s *services.Session) sessionResponse {
	return sessionResponse{
		AccessToken:  s.AccessToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.ExpiresIn / time.Second),
		ExpiresAt:    s.ExpiresAt.Unix(),
		RefreshToken: s.RefreshToken,
		User:         newUserResponse(s.User),
	}
}

func (s *HTTPServer) signUp(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "msg": "Invalid request body"})
		return
	}

	sess, err := s.auth.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.authError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "Registered", "user_id", sess.User.ID)
	c.JSON(http.StatusOK, newSessionResponse(sess))
}

// token serves both grant types: password and refresh_token.
func (s *HTTPServer) token(c *gin.Context) {
	var (
		sess *services.Session
		err  error
	)

	switch grant := c.Query("grant_type"); grant {
	case "password":
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Invalid request body"})
			return
		}
		sess, err = s.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	case "refresh_token":
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "refresh_token is required"})
			return
		}
		sess, err = s.auth.Refresh(c.Request.Context(), req.RefreshToken)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_grant_type", "error_description": "unsupported grant_type " + grant})
		return
	}

	if err != nil {
		s.authError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(sess))
}

func (s *HTTPServer) logout(c *gin.Context) {
	if err := s.auth.SignOut(c.Request.Context(), userID(c)); err != nil {
		s.logger.Error(c.Request.Context(), "sign out failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "msg": "Unexpected failure"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) user(c *gin.Context) {
	claims := userClaims(c)
	c.JSON(http.StatusOK, userResponse{ID: claims.Subject, Email: claims.Email})
}

func (s *HTTPServer) authError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserExists), errors.Is(err, services.ErrWeakPassword):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"code": http.StatusUnprocessableEntity, "msg": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidRefreshToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_grant", "error_description": err.Error()})
	case errors.Is(err, services.ErrInvalidEmail), errors.Is(err, common.ErrorValidation):
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "msg": err.Error()})
	default:
		s.logger.Error(c.Request.Context(), "auth request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "msg": "Unexpected failure"})
	}
}
