package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/til/internal/common"
	"github.com/dmitrijs2005/til/internal/server/auth"
	"github.com/gin-gonic/gin"
)

const (
	userIDKey = "userID"
	claimsKey = "claims"
)

func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// apiKeyMiddleware rejects requests without the project key, taken from the
// apikey header or query parameter.
func (s *HTTPServer) apiKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(common.APIKeyHeaderName)
		if key == "" {
			key = c.Query(common.APIKeyHeaderName)
		}
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No API key found in request"})
			return
		}
		if key != s.anonKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid API key"})
			return
		}
		c.Next()
	}
}

// bearerMiddleware resolves the caller when the bearer token is a user
// access token. The anon key as bearer means an anonymous caller.
func (s *HTTPServer) bearerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" || token == s.anonKey {
			c.Next()
			return
		}

		claims, err := s.auth.Authenticate(token)
		if err != nil {
			msg := "invalid JWT"
			if errors.Is(err, common.ErrTokenExpired) {
				msg = "JWT expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "msg": msg})
			return
		}

		c.Set(userIDKey, claims.Subject)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func (s *HTTPServer) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "msg": "This endpoint requires a valid Bearer token"})
			return
		}
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func userClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
