// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Claim model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Reem-mvem/Lost-Found-Management-System/internal/domain"
)

// CreateClaim inserts a new claim row in the pending state.
func CreateClaim(ctx context.Context, db *gorm.DB, trackingNumber, itemID, summary, userDescription, contactInfo string) (*domain.Claim, error) {
	c := &domain.Claim{
		ID:              uuid.NewString(),
		TrackingNumber:  trackingNumber,
		ItemID:          itemID,
		Summary:         summary,
		UserDescription: userDescription,
		ContactInfo:     contactInfo,
		Status:          domain.ClaimStatusPending,
		CreatedAt:       time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return c, nil
}

// GetClaim fetches a claim by its ID, or ErrNotFound.
func GetClaim(ctx context.Context, db *gorm.DB, id string) (*domain.Claim, error) {
	var c domain.Claim
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetClaimByTracking fetches a claim by its tracking number. A miss returns
// ErrNotFound; callers treat that as an expected outcome, not a failure.
func GetClaimByTracking(ctx context.Context, db *gorm.DB, trackingNumber string) (*domain.Claim, error) {
	var c domain.Claim
	if err := db.WithContext(ctx).Where("tracking_number = ?", trackingNumber).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListClaimsForVenue returns claims whose item belongs to venueID, in
// insertion order. Claims with an empty item reference are invisible here:
// there is no cross-venue claim visibility, only the join through the item.
func ListClaimsForVenue(ctx context.Context, db *gorm.DB, venueID string) ([]domain.Claim, error) {
	var out []domain.Claim
	err := db.WithContext(ctx).
		Joins("JOIN lost_items ON lost_items.id = claims.item_id").
		Where("lost_items.venue_id = ? AND lost_items.deleted_at IS NULL", venueID).
		Order("claims.created_at ASC, claims.id ASC").
		Find(&out).Error
	return out, err
}

// ListClaimsPageForVenue returns one page of the claims visible to venueID,
// in insertion order, scoped by the same item join as ListClaimsForVenue.
func ListClaimsPageForVenue(ctx context.Context, db *gorm.DB, venueID string, offset, limit int) ([]domain.Claim, error) {
	var out []domain.Claim
	err := db.WithContext(ctx).
		Joins("JOIN lost_items ON lost_items.id = claims.item_id").
		Where("lost_items.venue_id = ? AND lost_items.deleted_at IS NULL", venueID).
		Order("claims.created_at ASC, claims.id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountClaimsForVenue returns the number of claims visible to venueID.
func CountClaimsForVenue(ctx context.Context, db *gorm.DB, venueID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Claim{}).
		Joins("JOIN lost_items ON lost_items.id = claims.item_id").
		Where("lost_items.venue_id = ? AND lost_items.deleted_at IS NULL", venueID).
		Count(&total).Error
	return total, err
}

// UpdateClaimStatus moves a claim from fromStatus to toStatus. It returns
// the number of rows affected so the service layer can distinguish "claim
// missing" from "claim not in fromStatus" and report an invalid transition.
func UpdateClaimStatus(ctx context.Context, db *gorm.DB, id, fromStatus, toStatus string) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Claim{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Update("status", toStatus)
	return res.RowsAffected, res.Error
}
