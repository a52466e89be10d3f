// Catalog HTTP handlers.
//
// This file exposes read-only access to the recipe catalog:
//   - GET /recipes      (paginated listing, newest first)
//   - GET /recipes/:id  (single recipe by UUID)
//   - GET /stats        (catalog aggregates)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-assistant/internal/domain"
	"github.com/tbourn/go-recipe-assistant/internal/repo"
	"github.com/tbourn/go-recipe-assistant/internal/utils"
)

// Handlers bundles all HTTP endpoints with their dependencies. Catalog reads
// go straight to the repository; conversational endpoints go through the
// assistant service.
type Handlers struct {
	db        *gorm.DB
	assistant Assistant
}

// New constructs the handler set.
func New(db *gorm.DB, assistant Assistant) *Handlers {
	return &Handlers{db: db, assistant: assistant}
}

// Pagination describes the page window of a list response.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListRecipesResponse contains one page of recipes plus pagination metadata.
type ListRecipesResponse struct {
	Recipes    []domain.Recipe `json:"recipes"`
	Pagination Pagination      `json:"pagination"`
}

// ListRecipes returns a page of the catalog, newest first.
func (h *Handlers) ListRecipes(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := utils.PageParams(c.Query("page"), c.Query("page_size"), 20, 100)

	total, err := repo.CountRecipes(ctx, h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	items := []domain.Recipe{}
	if total > 0 {
		offset := (page - 1) * pageSize
		items, err = repo.ListRecipesPage(ctx, h.db, offset, pageSize)
		if err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
			return
		}
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListRecipesResponse{
		Recipes: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetRecipe returns a single recipe by its UUID.
func (h *Handlers) GetRecipe(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recipe id must be a UUID")
		return
	}

	r, err := repo.GetRecipe(c.Request.Context(), h.db, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "recipe not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, r)
}

// Stats returns catalog aggregates: totals by category and source, plus the
// newest insert time.
func (h *Handlers) Stats(c *gin.Context) {
	stats, err := repo.Stats(c.Request.Context(), h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, stats)
}
