// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Venue model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a venue is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - A duplicate signup email surfaces as ErrDuplicate.
//   - On other DB errors, the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Reem-mvem/Lost-Found-Management-System/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates a unique-constraint violation (e.g. an email or
// idempotency key that already exists).
var ErrDuplicate = errors.New("duplicate")

// isUniqueViolation reports whether err is a unique-constraint failure.
// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}

// CreateVenue inserts a new Venue row. The venue ID is a randomly generated
// UUID (string) and CreatedAt is set to UTC. A duplicate email returns
// ErrDuplicate.
func CreateVenue(ctx context.Context, db *gorm.DB, name, email, passwordHash, typ, address, logo string) (*domain.Venue, error) {
	v := &domain.Venue{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Type:         typ,
		Address:      address,
		Logo:         logo,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(v).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return v, nil
}

// GetVenue fetches a venue by its ID, or ErrNotFound if missing.
func GetVenue(ctx context.Context, db *gorm.DB, id string) (*domain.Venue, error) {
	var v domain.Venue
	if err := db.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// GetVenueByEmail fetches a venue by its login email, or ErrNotFound.
func GetVenueByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Venue, error) {
	var v domain.Venue
	if err := db.WithContext(ctx).Where("email = ?", email).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// UpdateVenueProfile applies the given column updates to a venue. If no rows
// are affected (venue missing), it returns ErrNotFound. The password hash
// and email are deliberately not updatable through this path.
func UpdateVenueProfile(ctx context.Context, db *gorm.DB, id string, updates map[string]any) error {
	delete(updates, "email")
	delete(updates, "password_hash")
	if len(updates) == 0 {
		return nil
	}
	res := db.WithContext(ctx).
		Model(&domain.Venue{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
