package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-recipe-assistant/internal/config"
	"github.com/tbourn/go-recipe-assistant/internal/domain"
	"github.com/tbourn/go-recipe-assistant/internal/repo"
)

type staticCompleter struct {
	text string
	err  error
}

func (s staticCompleter) Complete(context.Context, string) (string, error) {
	return s.text, s.err
}

func newServer(t *testing.T, completer staticCompleter) (*gin.Engine, *gorm.DB) {
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

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.RateRPS = 1000
	cfg.RateBurst = 1000

	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, db, completer, cfg)
	return r, db
}

func TestRouter_Health(t *testing.T) {
	r, _ := newServer(t, staticCompleter{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRouter_Metrics(t *testing.T) {
	r, _ := newServer(t, staticCompleter{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Fatal("prometheus exposition missing expected metric")
	}
}

func TestRouter_NoRouteAndNoMethod(t *testing.T) {
	r, _ := newServer(t, staticCompleter{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("no route: status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/ask", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("no method: status = %d", w.Code)
	}
}

func TestRouter_AskStoredRecipeEndToEnd(t *testing.T) {
	r, db := newServer(t, staticCompleter{err: context.DeadlineExceeded})
	_, err := repo.InsertRecipe(context.Background(), db, &domain.Recipe{
		Name:        "Golden Turmeric Latte",
		Category:    "beverage",
		Ingredients: []domain.Ingredient{{Name: "milk"}, {Name: "turmeric"}},
		Steps:       []string{"Warm the milk.", "Whisk in the turmeric."},
		Source:      domain.SourceStored,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask",
		strings.NewReader(`{"query":"turmeric latte"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Encoding", "identity")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Session-ID") == "" {
		t.Fatal("missing session header")
	}

	var resp struct {
		Recipe    *domain.Recipe `json:"recipe"`
		Generated bool           `json:"generated"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Generated || resp.Recipe == nil || resp.Recipe.Name != "Golden Turmeric Latte" {
		t.Fatalf("resp = %+v", resp)
	}
}
