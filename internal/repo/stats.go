// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (e.g., ETag generation) in the HTTP
// layer. Each function is context-aware and safe to call from services or
// handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Reem-mvem/Lost-Found-Management-System/internal/domain"
)

// ItemsStats returns aggregate metadata for a venue's items: the total number
// of rows and the maximum UpdatedAt timestamp among those rows.
//
// When the venue has no items, the returned count is 0 and maxUpdatedAt is
// nil.
func ItemsStats(ctx context.Context, db *gorm.DB, venueID string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.LostItem{}).Where("venue_id = ?", venueID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// ClaimsStats returns aggregate metadata for the claims visible to a venue
// (joined through its items): the total number of rows and the maximum
// UpdatedAt among them. When no claims are visible, count is 0 and
// maxUpdatedAt is nil.
func ClaimsStats(ctx context.Context, db *gorm.DB, venueID string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Claim{}).
		Joins("JOIN lost_items ON lost_items.id = claims.item_id").
		Where("lost_items.venue_id = ? AND lost_items.deleted_at IS NULL", venueID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("claims.updated_at as updated_at").Order("claims.updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
