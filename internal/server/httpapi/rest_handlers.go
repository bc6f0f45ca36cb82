package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/til/internal/common"
	"github.com/dmitrijs2005/til/internal/server/models"
	"github.com/gin-gonic/gin"
)

type newFactRequest struct {
	Text     string `json:"text"`
	Source   string `json:"source"`
	Category string `json:"category"`
}

// tableGuard lets only the facts table through.
func (s *HTTPServer) tableGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		if table := c.Param("table"); table != common.FactsTable {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"code":    "42P01",
				"message": `relation "public.` + table + `" does not exist`,
			})
			return
		}
		c.Next()
	}
}

func (s *HTTPServer) listFacts(c *gin.Context) {
	filter, err := parseFactFilter(c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	facts, err := s.facts.List(c.Request.Context(), filter)
	if err != nil {
		s.restError(c, err)
		return
	}
	c.JSON(http.StatusOK, facts)
}

// createFacts accepts a single object or an array holding one object.
func (s *HTTPServer) createFacts(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "could not read body"})
		return
	}

	var reqs []newFactRequest
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &reqs)
	} else {
		var one newFactRequest
		err = json.Unmarshal(trimmed, &one)
		reqs = []newFactRequest{one}
	}
	if err != nil || len(reqs) != 1 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "expected exactly one fact"})
		return
	}

	if userID(c) == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "42501", "message": `new row violates row-level security policy for table "facts"`})
		return
	}

	r := reqs[0]
	fact, err := s.facts.Create(c.Request.Context(), userID(c), models.Fact{Text: r.Text, Source: r.Source, Category: r.Category})
	if err != nil {
		s.restError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "fact created", "id", fact.ID, "user_id", userID(c))
	s.writeRows(c, http.StatusCreated, []models.Fact{*fact})
}

func (s *HTTPServer) updateFacts(c *gin.Context) {
	id, err := parseIDFilter(c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var patch map[string]int
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "body must map vote columns to integers"})
		return
	}

	fact, err := s.facts.Update(c.Request.Context(), id, patch)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		s.writeRows(c, http.StatusOK, []models.Fact{})
		return
	case err != nil:
		s.restError(c, err)
		return
	}
	s.writeRows(c, http.StatusOK, []models.Fact{*fact})
}

func (s *HTTPServer) writeRows(c *gin.Context, status int, rows []models.Fact) {
	if !wantsRepresentation(c.GetHeader("Prefer")) {
		if status == http.StatusOK {
			status = http.StatusNoContent
		}
		c.Status(status)
		return
	}
	c.JSON(status, rows)
}

func (s *HTTPServer) restError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		c.JSON(http.StatusBadRequest, gin.H{"code": "23514", "message": err.Error()})
	case errors.Is(err, common.ErrorUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"code": "42501", "message": "permission denied"})
	default:
		s.logger.Error(c.Request.Context(), "table request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}
