package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-recipe-assistant/internal/domain"
)

// test DB helper
func newRecipeDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("recipe_repo_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&domain.Recipe{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func testRecipe(name, category string) *domain.Recipe {
	return &domain.Recipe{
		Name:     name,
		Category: category,
		Ingredients: []domain.Ingredient{
			{Name: "oats", Quantity: 50, Unit: "g"},
			{Name: "milk", Quantity: 200, Unit: "ml"},
		},
		Steps:     []string{"Combine", "Simmer for five minutes"},
		Nutrition: map[string]float64{"calories": 220},
		Tags:      []string{"fiber-rich"},
		Source:    domain.SourceStored,
	}
}

func TestInsertRecipe_RoundTrip(t *testing.T) {
	db := newRecipeDB(t)
	ctx := context.Background()

	r := testRecipe("Overnight Oats", "breakfast")
	id, err := InsertRecipe(ctx, db, r)
	if err != nil {
		t.Fatalf("InsertRecipe: %v", err)
	}
	if id == "" || r.ID != id {
		t.Fatalf("id not assigned: %q vs %q", id, r.ID)
	}
	if r.CreatedAt.IsZero() || time.Since(r.CreatedAt) > time.Minute {
		t.Fatalf("CreatedAt not set reasonably: %v", r.CreatedAt)
	}

	got, err := GetRecipe(ctx, db, id)
	if err != nil {
		t.Fatalf("GetRecipe: %v", err)
	}
	if got.Name != r.Name || got.Category != r.Category || got.Source != r.Source {
		t.Fatalf("roundtrip mismatch: %+v vs %+v", got, r)
	}
	if !reflect.DeepEqual(got.Ingredients, r.Ingredients) {
		t.Fatalf("ingredient order not preserved: %+v vs %+v", got.Ingredients, r.Ingredients)
	}
	if !reflect.DeepEqual(got.Steps, r.Steps) {
		t.Fatalf("steps not preserved: %+v", got.Steps)
	}
	if got.Nutrition["calories"] != 220 {
		t.Fatalf("nutrition not preserved: %+v", got.Nutrition)
	}
}

func TestInsertRecipe_RejectsInvalid_StoreUnchanged(t *testing.T) {
	db := newRecipeDB(t)
	ctx := context.Background()

	cases := []*domain.Recipe{
		func() *domain.Recipe { r := testRecipe("No Ingredients", "main"); r.Ingredients = nil; return r }(),
		func() *domain.Recipe { r := testRecipe("No Steps", "main"); r.Steps = nil; return r }(),
		func() *domain.Recipe { r := testRecipe("Bad Category", "brunch"); return r }(),
		func() *domain.Recipe {
			r := testRecipe("Bad Nutrient", "main")
			r.Nutrition = map[string]float64{"caffeine_mg": 90}
			return r
		}(),
	}
	for _, r := range cases {
		if _, err := InsertRecipe(ctx, db, r); !errors.Is(err, domain.ErrInvalidRecipe) {
			t.Fatalf("recipe %q: expected ErrInvalidRecipe, got %v", r.Name, err)
		}
	}

	total, err := CountRecipes(ctx, db)
	if err != nil {
		t.Fatalf("CountRecipes: %v", err)
	}
	if total != 0 {
		t.Fatalf("store size changed after rejected inserts: %d", total)
	}
}

func TestGetRecipe_NotFound(t *testing.T) {
	db := newRecipeDB(t)
	if _, err := GetRecipe(context.Background(), db, "missing-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAllRecipes_SnapshotOrderAndIsolation(t *testing.T) {
	db := newRecipeDB(t)
	ctx := context.Background()

	// seed with explicit timestamps for deterministic ordering
	t0 := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	seed := []domain.Recipe{
		{ID: "b", Name: "Second", Category: "main", Ingredients: []domain.Ingredient{{Name: "x"}}, Steps: []string{"s"}, Source: domain.SourceStored, CreatedAt: t0.Add(time.Hour)},
		{ID: "a", Name: "First", Category: "main", Ingredients: []domain.Ingredient{{Name: "x"}}, Steps: []string{"s"}, Source: domain.SourceStored, CreatedAt: t0},
		{ID: "c", Name: "Tie", Category: "main", Ingredients: []domain.Ingredient{{Name: "x"}}, Steps: []string{"s"}, Source: domain.SourceStored, CreatedAt: t0.Add(time.Hour)},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	snap, err := AllRecipes(ctx, db)
	if err != nil {
		t.Fatalf("AllRecipes: %v", err)
	}
	if len(snap) != 3 || snap[0].ID != "b" || snap[1].ID != "c" || snap[2].ID != "a" {
		t.Fatalf("unexpected order: %v", []string{snap[0].ID, snap[1].ID, snap[2].ID})
	}

	// an insert after the snapshot must not appear in the already-returned slice
	if _, err := InsertRecipe(ctx, db, testRecipe("Later", "snack")); err != nil {
		t.Fatalf("insert after snapshot: %v", err)
	}
	if len(snap) != 3 {
		t.Fatalf("snapshot mutated by concurrent insert")
	}
}

func TestFindRecipeByName(t *testing.T) {
	db := newRecipeDB(t)
	ctx := context.Background()

	if _, err := InsertRecipe(ctx, db, testRecipe("Miso Soup", "main")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := FindRecipeByName(ctx, db, "Miso Soup")
	if err != nil {
		t.Fatalf("FindRecipeByName: %v", err)
	}
	if got.Name != "Miso Soup" {
		t.Fatalf("unexpected recipe: %+v", got)
	}
	if _, err := FindRecipeByName(ctx, db, "Ramen"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListRecipesPage_And_Categories(t *testing.T) {
	db := newRecipeDB(t)
	ctx := context.Background()

	names := []string{"A", "B", "C", "D", "E"}
	cats := []string{"main", "dessert", "main", "snack", "dessert"}
	for i, n := range names {
		if _, err := InsertRecipe(ctx, db, testRecipe(n, cats[i])); err != nil {
			t.Fatalf("insert %s: %v", n, err)
		}
	}

	page, err := ListRecipesPage(ctx, db, 0, 2)
	if err != nil {
		t.Fatalf("ListRecipesPage: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page))
	}

	categories, err := ListCategories(ctx, db)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	want := []string{"dessert", "main", "snack"}
	if !reflect.DeepEqual(categories, want) {
		t.Fatalf("categories = %v, want %v", categories, want)
	}
}
