// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the LostItem
// model and its photo payloads.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Reem-mvem/Lost-Found-Management-System/internal/domain"
)

// CreateItem inserts a new LostItem row with its photo payloads. Photo
// positions follow the slice order. The caller (service layer) is
// responsible for enforcing the photo-count bounds.
func CreateItem(ctx context.Context, db *gorm.DB, item *domain.LostItem, photos []string) (*domain.LostItem, error) {
	now := time.Now().UTC()
	item.ID = uuid.NewString()
	item.CreatedAt = now
	if item.FoundAt.IsZero() {
		item.FoundAt = now
	}
	item.Photos = make([]domain.ItemPhoto, 0, len(photos))
	for i, data := range photos {
		item.Photos = append(item.Photos, domain.ItemPhoto{
			ID:        uuid.NewString(),
			ItemID:    item.ID,
			Position:  i,
			Data:      data,
			CreatedAt: now,
		})
	}
	if err := db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// ListItems returns all items owned by venueID in insertion order
// (CreatedAt ASC, ID ASC), photos preloaded.
func ListItems(ctx context.Context, db *gorm.DB, venueID string) ([]domain.LostItem, error) {
	var out []domain.LostItem
	err := db.WithContext(ctx).
		Preload("Photos", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Where("venue_id = ?", venueID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// ListItemsPage returns one page of venueID's items in insertion order
// (CreatedAt ASC, ID ASC), photos preloaded.
func ListItemsPage(ctx context.Context, db *gorm.DB, venueID string, offset, limit int) ([]domain.LostItem, error) {
	var out []domain.LostItem
	err := db.WithContext(ctx).
		Preload("Photos", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Where("venue_id = ?", venueID).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountItems returns the total number of items owned by venueID.
func CountItems(ctx context.Context, db *gorm.DB, venueID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.LostItem{}).
		Where("venue_id = ?", venueID).
		Count(&total).Error
	return total, err
}

// GetItem fetches a single item by its ID and owner (venueID), photos
// preloaded. If the record does not exist, it returns ErrNotFound.
func GetItem(ctx context.Context, db *gorm.DB, id, venueID string) (*domain.LostItem, error) {
	var it domain.LostItem
	err := db.WithContext(ctx).
		Preload("Photos", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Where("id = ? AND venue_id = ?", id, venueID).
		First(&it).Error
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// DeleteItemCascade removes an item owned by venueID together with its
// photos and every claim referencing it, in one transaction. Claims are
// deleted regardless of which venue would otherwise see them: the join
// through the item is the only claim-to-venue scoping that exists.
// Returns ErrNotFound when the item does not exist or is not owned by
// venueID.
func DeleteItemCascade(ctx context.Context, db *gorm.DB, id, venueID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND venue_id = ?", id, venueID).Delete(&domain.LostItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("item_id = ?", id).Delete(&domain.ItemPhoto{}).Error; err != nil {
			return err
		}
		return tx.Where("item_id = ?", id).Delete(&domain.Claim{}).Error
	})
}
