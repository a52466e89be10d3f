// Assistant HTTP handlers.
//
// This file exposes the conversational endpoints:
//   - POST /ask             (answer a culinary question within a session)
//   - GET  /session/export  (download the session transcript as Markdown)
//   - GET  /categories      (distinct categories of the current catalog)
//
// Handlers are transport-thin: they validate and normalize inputs, delegate
// to the assistant service, and translate service errors into the stable
// error-code taxonomy. The session is carried by the X-Session-ID header,
// which the middleware generates when absent and echoes on every response.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-recipe-assistant/internal/domain"
	"github.com/tbourn/go-recipe-assistant/internal/http/middleware"
	"github.com/tbourn/go-recipe-assistant/internal/services"
)

// Assistant abstracts the application service so transport stays decoupled
// from its construction.
type Assistant interface {
	Ask(ctx context.Context, sessionID, query string) (*services.Outcome, error)
	ExportSession(ctx context.Context, sessionID string) ([]byte, error)
	ListCategories(ctx context.Context) ([]string, error)
}

// AskRequest is the JSON payload for asking a culinary question.
type AskRequest struct {
	// Query is the user question. It must be non-empty.
	Query string `json:"query" binding:"required,min=1"`
}

// AskResponse is the JSON envelope for an answered question.
type AskResponse struct {
	SessionID string         `json:"session_id"`
	Recipe    *domain.Recipe `json:"recipe"`
	Score     float64        `json:"score,omitempty"`
	Generated bool           `json:"generated"`
}

// CategoriesResponse lists the distinct categories of the catalog.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// maxAskRunes caps question length at the edge; the service enforces its own
// configured guard as well.
const maxAskRunes = 2000

// nlCollapseRE collapses runs of 3+ newlines to two, preserving paragraphs.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizeQuery normalizes user text: CRLF/CR to LF, runs of blank lines
// collapsed, surrounding whitespace trimmed.
func sanitizeQuery(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Ask answers a culinary question. A catalog hit is returned directly; a miss
// triggers recipe generation, and the freshly written recipe is persisted
// before it is returned.
func (h *Handlers) Ask(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := middleware.SessionFrom(c)

	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "query required")
		return
	}

	query := sanitizeQuery(req.Query)
	if query == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "query required")
		return
	}
	if utf8.RuneCountInString(query) > maxAskRunes {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest,
			fmt.Sprintf("query too long: max %d runes", maxAskRunes))
		return
	}

	out, err := h.assistant.Ask(ctx, sessionID, query)
	if err != nil {
		middleware.CountAnswer("failed")
		switch {
		case errors.Is(err, services.ErrEmptyQuery):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "query required")
		case errors.Is(err, services.ErrQueryTooLong):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "query too long")
		case errors.Is(err, services.ErrNoRecipe):
			fail(c, http.StatusUnprocessableEntity, ErrCodeRecipeUnavailable,
				"could not produce a recipe for this query")
		case errors.Is(err, services.ErrAssistantUnavailable):
			fail(c, http.StatusServiceUnavailable, ErrCodeAssistantUnavailable,
				"recipe service unavailable, try again shortly")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeAnswerFailed, err.Error())
		}
		return
	}

	if out.Generated {
		middleware.CountAnswer("generated")
	} else {
		middleware.CountAnswer("catalog")
	}

	ok(c, http.StatusOK, AskResponse{
		SessionID: sessionID,
		Recipe:    out.Recipe,
		Score:     out.Score,
		Generated: out.Generated,
	})
}

// ExportSession streams the session transcript as a Markdown document.
func (h *Handlers) ExportSession(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := middleware.SessionFrom(c)

	doc, err := h.assistant.ExportSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "session not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeExportFailed, err.Error())
		return
	}

	c.Header("Content-Disposition", `attachment; filename="session.md"`)
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", doc)
}

// ListCategories returns the distinct categories present in the catalog.
func (h *Handlers) ListCategories(c *gin.Context) {
	cats, err := h.assistant.ListCategories(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if cats == nil {
		cats = []string{}
	}
	ok(c, http.StatusOK, CategoriesResponse{Categories: cats})
}
