// Package services – ItemService
//
// This file implements the ItemService, which owns the venue item catalog:
// registering found items (with their photo payloads), listing a venue's
// inventory, and deleting an item together with the claims that reference
// it. Ownership is enforced on every operation; a venue can only ever touch
// its own items.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Reem-mvem/Lost-Found-Management-System/internal/domain"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/repo"
)

// ItemRepo defines the repository contract required by ItemService.
type ItemRepo interface {
	// CreateItem inserts an item row with its photo payloads.
	CreateItem(ctx context.Context, db *gorm.DB, item *domain.LostItem, photos []string) (*domain.LostItem, error)

	// ListItems returns a venue's items in insertion order.
	ListItems(ctx context.Context, db *gorm.DB, venueID string) ([]domain.LostItem, error)

	// GetItem fetches an item by ID ensuring it belongs to the venue.
	GetItem(ctx context.Context, db *gorm.DB, id, venueID string) (*domain.LostItem, error)

	// DeleteItemCascade removes an item, its photos, and dependent claims.
	DeleteItemCascade(ctx context.Context, db *gorm.DB, id, venueID string) error
}

// CreateItemInput is the dashboard "add item" form.
type CreateItemInput struct {
	Title       string
	Category    string
	Color       string
	Brand       string
	Location    string
	Description string
	FoundAt     time.Time
	// Photos are opaque base64 payloads; 1..domain.MaxItemPhotos required.
	Photos []string
}

// ItemService provides catalog operations scoped to an owning venue.
type ItemService struct {
	DB   *gorm.DB
	Repo ItemRepo
}

// validation error for the required title field
var errTitleRequired = errors.New("title is required")

// Create registers a found item for venueID. An item with zero photos is
// rejected before anything is persisted; the catalog length is unchanged on
// any validation failure.
func (s *ItemService) Create(ctx context.Context, venueID string, in CreateItemInput) (*domain.LostItem, error) {
	tr := otel.Tracer("services/ItemService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("venue.id", venueID),
			attribute.Int("photos", len(in.Photos)),
		),
	)
	defer span.End()

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, errTitleRequired
	}
	// Drop empty payloads before counting; a blank upload slot is not a photo.
	photos := make([]string, 0, len(in.Photos))
	for _, p := range in.Photos {
		if strings.TrimSpace(p) != "" {
			photos = append(photos, p)
		}
	}
	if len(photos) == 0 {
		return nil, ErrPhotoRequired
	}
	if len(photos) > domain.MaxItemPhotos {
		return nil, ErrTooManyPhotos
	}

	item := &domain.LostItem{
		VenueID:     venueID,
		Title:       in.Title,
		Category:    strings.TrimSpace(in.Category),
		Color:       strings.TrimSpace(in.Color),
		Brand:       strings.TrimSpace(in.Brand),
		Location:    strings.TrimSpace(in.Location),
		Description: in.Description,
		FoundAt:     in.FoundAt,
	}
	return s.Repo.CreateItem(ctx, s.DB, item, photos)
}

// List returns all items owned by venueID in insertion order.
// Prefer ListPage for scalability on large catalogs.
func (s *ItemService) List(ctx context.Context, venueID string) ([]domain.LostItem, error) {
	return s.Repo.ListItems(ctx, s.DB, venueID)
}

// ListPage returns a page of venueID's items (paginated) plus the total
// count. Invalid page/pageSize values fall back to defaults.
func (s *ItemService) ListPage(ctx context.Context, venueID string, page, pageSize int) ([]domain.LostItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountItems(ctx, s.DB, venueID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.LostItem{}, 0, nil
	}

	items, err := repo.ListItemsPage(ctx, s.DB, venueID, offset, pageSize)
	return items, total, err
}

// Get fetches a single item owned by venueID.
func (s *ItemService) Get(ctx context.Context, venueID, itemID string) (*domain.LostItem, error) {
	it, err := s.Repo.GetItem(ctx, s.DB, itemID, venueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return it, nil
}

// Delete removes an item owned by venueID and cascades to every claim
// referencing it, regardless of which venue those claims would be visible
// to. Claims referencing other items are untouched.
func (s *ItemService) Delete(ctx context.Context, venueID, itemID string) error {
	tr := otel.Tracer("services/ItemService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(
			attribute.String("venue.id", venueID),
			attribute.String("item.id", itemID),
		),
	)
	defer span.End()

	err := s.Repo.DeleteItemCascade(ctx, s.DB, itemID, venueID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrItemNotFound
	}
	return err
}

// Stats exposes the aggregate item count and latest update for venueID,
// used by the HTTP layer for conditional responses.
func (s *ItemService) Stats(ctx context.Context, venueID string) (int64, *time.Time, error) {
	return repo.ItemsStats(ctx, s.DB, venueID)
}
