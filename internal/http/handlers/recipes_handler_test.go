package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-recipe-assistant/internal/domain"
	"github.com/tbourn/go-recipe-assistant/internal/repo"
)

func newCatalogRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(t.TempDir()+"/catalog.db"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := New(db, nil)
	r.GET("/recipes", h.ListRecipes)
	r.GET("/recipes/:id", h.GetRecipe)
	r.GET("/stats", h.Stats)
	return r, db
}

func seedCatalog(t *testing.T, db *gorm.DB, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id, err := repo.InsertRecipe(context.Background(), db, &domain.Recipe{
			Name:        fmt.Sprintf("Dish %02d", i),
			Category:    "main",
			Ingredients: []domain.Ingredient{{Name: "salt"}},
			Steps:       []string{"Season.", "Cook."},
			Source:      domain.SourceStored,
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}

func TestListRecipes_Pagination(t *testing.T) {
	r, db := newCatalogRouter(t)
	seedCatalog(t, db, 25)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recipes?page=2&page_size=10", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp ListRecipesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Recipes) != 10 {
		t.Fatalf("page len = %d, want 10", len(resp.Recipes))
	}
	p := resp.Pagination
	if p.Page != 2 || p.PageSize != 10 || p.Total != 25 || p.TotalPages != 3 || !p.HasNext {
		t.Fatalf("pagination = %+v", p)
	}
}

func TestListRecipes_EmptyCatalog(t *testing.T) {
	r, _ := newCatalogRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recipes", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ListRecipesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Recipes) != 0 || resp.Pagination.Total != 0 {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestGetRecipe(t *testing.T) {
	r, db := newCatalogRouter(t)
	ids := seedCatalog(t, db, 1)

	do := func(id string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recipes/"+id, nil))
		return w
	}

	if w := do("not-a-uuid"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status = %d", w.Code)
	}
	if w := do("123e4567-e89b-12d3-a456-426614174000"); w.Code != http.StatusNotFound {
		t.Fatalf("unknown id: status = %d", w.Code)
	}

	w := do(ids[0])
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got domain.Recipe
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != ids[0] || got.Name != "Dish 00" {
		t.Fatalf("recipe = %+v", got)
	}
}

func TestStats(t *testing.T) {
	r, db := newCatalogRouter(t)
	seedCatalog(t, db, 3)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var stats repo.CatalogStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Total != 3 || stats.ByCategory["main"] != 3 || stats.BySource[domain.SourceStored] != 3 {
		t.Fatalf("stats = %+v", stats)
	}
}
