// Package repo implements the data persistence layer for the recipe catalog,
// backed by GORM. This file provides small aggregate/statistics queries used
// by the catalog stats endpoint and by logging at startup. Each function is
// context-aware and safe to call from services or handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-assistant/internal/domain"
)

// CatalogStats summarizes the current state of the recipe catalog.
type CatalogStats struct {
	Total      int64            `json:"total"`
	ByCategory map[string]int64 `json:"by_category"`
	BySource   map[string]int64 `json:"by_source"`
	NewestAt   *time.Time       `json:"newest_at,omitempty"`
}

// Stats returns aggregate metadata for the catalog: total row count, counts
// grouped by category and by source, and the most recent CreatedAt. When the
// catalog is empty, NewestAt is nil and the grouping maps are empty.
func Stats(ctx context.Context, db *gorm.DB) (*CatalogStats, error) {
	out := &CatalogStats{
		ByCategory: map[string]int64{},
		BySource:   map[string]int64{},
	}

	if err := db.WithContext(ctx).Model(&domain.Recipe{}).Count(&out.Total).Error; err != nil {
		return nil, err
	}
	if out.Total == 0 {
		return out, nil
	}

	type bucket struct {
		Key string
		N   int64
	}

	var byCat []bucket
	if err := db.WithContext(ctx).Model(&domain.Recipe{}).
		Select("category AS key, COUNT(*) AS n").
		Group("category").
		Scan(&byCat).Error; err != nil {
		return nil, err
	}
	for _, b := range byCat {
		out.ByCategory[b.Key] = b.N
	}

	var bySrc []bucket
	if err := db.WithContext(ctx).Model(&domain.Recipe{}).
		Select("source AS key, COUNT(*) AS n").
		Group("source").
		Scan(&bySrc).Error; err != nil {
		return nil, err
	}
	for _, b := range bySrc {
		out.BySource[b.Key] = b.N
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err := db.WithContext(ctx).Model(&domain.Recipe{}).
		Select("created_at").Order("created_at DESC").Limit(1).
		Scan(&row).Error; err != nil {
		return nil, err
	}
	out.NewestAt = &row.CreatedAt
	return out, nil
}
