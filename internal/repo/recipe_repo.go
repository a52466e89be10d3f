// Package repo implements the data persistence layer for the recipe catalog,
// backed by GORM. This file provides repository functions for the Recipe model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic beyond the
// insert invariants, only validated persistence and query composition.
//
// Error semantics:
//   - When a recipe is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - A recipe violating the insert invariants is rejected with an error
//     wrapping domain.ErrInvalidRecipe before any row is written.
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Functions:
//
//   - InsertRecipe(ctx, db, r) -> id, error
//     Validates, assigns a UUID and UTC timestamp, and persists atomically.
//
//   - GetRecipe(ctx, db, id) -> *domain.Recipe, error
//     Fetches a single recipe by ID, or ErrNotFound if missing.
//
//   - AllRecipes(ctx, db) -> []domain.Recipe, error
//     Returns a stable snapshot of the full catalog, newest first.
//
//   - FindRecipeByName / CountRecipes / ListRecipesPage / ListCategories
//     Lookup and pagination support for the caller-facing surface.
//
// This repository is wrapped by the assistant service, which enforces
// search/generate branching on top of it.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-assistant/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// InsertRecipe validates r, assigns a UUID primary key and a UTC CreatedAt,
// and persists the row inside a transaction so a half-written recipe is never
// observable by concurrent readers. The recipe ID is returned on success.
//
// The store is left unchanged when validation fails: the error wraps
// domain.ErrInvalidRecipe and nothing is written.
func InsertRecipe(ctx context.Context, db *gorm.DB, r *domain.Recipe) (string, error) {
	r.Normalize()
	if err := r.Validate(); err != nil {
		return "", err
	}
	r.ID = uuid.NewString()
	r.CreatedAt = time.Now().UTC()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(r).Error
	})
	if err != nil {
		return "", err
	}
	return r.ID, nil
}

// GetRecipe fetches a single recipe by its ID. If the record does not exist,
// it returns ErrNotFound. On other DB errors, the raw error is returned.
func GetRecipe(ctx context.Context, db *gorm.DB, id string) (*domain.Recipe, error) {
	var r domain.Recipe
	if err := db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// AllRecipes returns a snapshot of the entire catalog ordered deterministically
// (CreatedAt DESC, ID ASC). Each call produces a fresh slice, so inserts that
// commit during iteration are never interleaved into a sequence already
// handed to a caller.
func AllRecipes(ctx context.Context, db *gorm.DB) ([]domain.Recipe, error) {
	var out []domain.Recipe
	err := db.WithContext(ctx).
		Order("created_at DESC, id ASC").
		Find(&out).Error
	return out, err
}

// FindRecipeByName fetches the most recent recipe with the exact given name,
// or ErrNotFound. Used by the seed importer to skip already-imported files.
func FindRecipeByName(ctx context.Context, db *gorm.DB, name string) (*domain.Recipe, error) {
	var r domain.Recipe
	err := db.WithContext(ctx).
		Where("name = ?", name).
		Order("created_at DESC").
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CountRecipes returns the total number of recipes in the catalog.
func CountRecipes(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Recipe{}).Count(&total).Error
	return total, err
}

// ListRecipesPage returns a paginated slice of the catalog, newest first.
// Use CountRecipes to obtain the total for pagination metadata.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListRecipesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Recipe, error) {
	var out []domain.Recipe
	err := db.WithContext(ctx).
		Order("created_at DESC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListCategories returns the distinct categories currently present in the
// catalog, sorted ascending.
func ListCategories(ctx context.Context, db *gorm.DB) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.Recipe{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &out).Error
	return out, err
}
