// Package services – ClaimService
//
// This file implements the claim lifecycle: creating a claim from extracted
// conversation fields (with a generated tracking number), the
// pending→verified/rejected state machine, public tracking-number lookup,
// and the venue-scoped review listing. Terminal states absorb: a verify or
// reject on a non-pending claim is reported as an invalid transition rather
// than silently ignored.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Reem-mvem/Lost-Found-Management-System/internal/domain"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/extract"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/repo"
)

// trackingPrefix starts every tracking number.
const trackingPrefix = "LF"

// trackingDigits is how many trailing decimal digits of the creation
// unix-millis timestamp follow the prefix.
const trackingDigits = 6

// ClaimRepo defines the repository contract required by ClaimService.
type ClaimRepo interface {
	CreateClaim(ctx context.Context, db *gorm.DB, trackingNumber, itemID, summary, userDescription, contactInfo string) (*domain.Claim, error)
	GetClaim(ctx context.Context, db *gorm.DB, id string) (*domain.Claim, error)
	GetClaimByTracking(ctx context.Context, db *gorm.DB, trackingNumber string) (*domain.Claim, error)
	ListClaimsForVenue(ctx context.Context, db *gorm.DB, venueID string) ([]domain.Claim, error)
	UpdateClaimStatus(ctx context.Context, db *gorm.DB, id, fromStatus, toStatus string) (int64, error)
	GetItem(ctx context.Context, db *gorm.DB, id, venueID string) (*domain.LostItem, error)
}

// ClaimService provides claim creation, review, and public tracking.
type ClaimService struct {
	DB   *gorm.DB
	Repo ClaimRepo

	// Now is the clock used for tracking numbers; defaults to time.Now.
	// Tests pin it for deterministic numbers.
	Now func() time.Time
}

// summaryCaser title-cases the extracted color/type pair for the dashboard
// display summary ("black wallet" -> "Black Wallet").
var summaryCaser = cases.Title(language.English)

// Create assembles a claim from extracted fields, generates its tracking
// number, and persists it in the pending state. The returned record carries
// the tracking number for the confirmation page.
func (s *ClaimService) Create(ctx context.Context, fields extract.ClaimFields) (*domain.Claim, error) {
	tr := otel.Tracer("services/ClaimService")
	ctx, span := tr.Start(ctx, "Create")
	defer span.End()

	userDescription := fmt.Sprintf("%s - %s - %s - Lost at: %s - Details: %s",
		fields.Type, fields.Color, fields.Brand, fields.Location, fields.Description)
	contactInfo := fmt.Sprintf("%s - %s - %s",
		fields.ContactName, fields.ContactEmail, fields.ContactPhone)
	summary := summaryCaser.String(strings.TrimSpace(fields.Color + " " + fields.Type))

	// Same-millisecond submissions collide on the tracking number; retry on
	// the unique index with a fresh timestamp.
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		tn := s.trackingNumber()
		c, err := s.Repo.CreateClaim(ctx, s.DB, tn, "", summary, userDescription, contactInfo)
		if err == nil {
			span.SetAttributes(attribute.String("claim.tracking", tn))
			return c, nil
		}
		lastErr = err
		if !errors.Is(err, repo.ErrDuplicate) {
			return nil, err
		}
		time.Sleep(time.Millisecond)
	}
	return nil, lastErr
}

// trackingNumber derives "LF" + the low-order decimal digits of the current
// unix-millis timestamp, zero-padded on short clocks.
func (s *ClaimService) trackingNumber() string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	ms := strconv.FormatInt(now().UnixMilli(), 10)
	if len(ms) > trackingDigits {
		ms = ms[len(ms)-trackingDigits:]
	} else {
		ms = fmt.Sprintf("%0*s", trackingDigits, ms)
	}
	return trackingPrefix + ms
}

// Track looks up a claim by its tracking number. A miss returns
// ErrClaimNotFound, which callers render as a dedicated not-found view; it
// is an expected outcome for stale or mistyped numbers, not a failure.
// Repeated calls without intervening mutation return identical results.
func (s *ClaimService) Track(ctx context.Context, trackingNumber string) (*domain.Claim, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	c, err := s.Repo.GetClaimByTracking(ctx, s.DB, trackingNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	return c, nil
}

// ListForVenue returns the claims visible to venueID: those whose item the
// venue owns. Unlinked claims are visible to no venue.
// Prefer ListPageForVenue for scalability on large review queues.
func (s *ClaimService) ListForVenue(ctx context.Context, venueID string) ([]domain.Claim, error) {
	return s.Repo.ListClaimsForVenue(ctx, s.DB, venueID)
}

// ListPageForVenue returns a page of the claims visible to venueID plus the
// total count. Invalid page/pageSize values fall back to defaults.
func (s *ClaimService) ListPageForVenue(ctx context.Context, venueID string, page, pageSize int) ([]domain.Claim, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountClaimsForVenue(ctx, s.DB, venueID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Claim{}, 0, nil
	}

	claims, err := repo.ListClaimsPageForVenue(ctx, s.DB, venueID, offset, pageSize)
	return claims, total, err
}

// Stats exposes the aggregate claim count and latest update visible to
// venueID, used by the HTTP layer for conditional responses.
func (s *ClaimService) Stats(ctx context.Context, venueID string) (int64, *time.Time, error) {
	return repo.ClaimsStats(ctx, s.DB, venueID)
}

// GetForVenue fetches one claim, enforcing that its item is owned by
// venueID. Claims with no item reference are not visible to any venue.
func (s *ClaimService) GetForVenue(ctx context.Context, venueID, claimID string) (*domain.Claim, error) {
	c, err := s.Repo.GetClaim(ctx, s.DB, claimID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	if c.ItemID == "" {
		return nil, ErrClaimNotFound
	}
	if _, err := s.Repo.GetItem(ctx, s.DB, c.ItemID, venueID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	return c, nil
}

// Transition moves a claim from pending to the given terminal status on
// behalf of venueID. Targets other than verified/rejected, claims the venue
// cannot see, and claims already in a terminal state all fail explicitly.
func (s *ClaimService) Transition(ctx context.Context, venueID, claimID, target string) (*domain.Claim, error) {
	tr := otel.Tracer("services/ClaimService")
	ctx, span := tr.Start(ctx, "Transition",
		trace.WithAttributes(
			attribute.String("claim.id", claimID),
			attribute.String("claim.target", target),
		),
	)
	defer span.End()

	if target != domain.ClaimStatusVerified && target != domain.ClaimStatusRejected {
		return nil, ErrInvalidTransition
	}
	if _, err := s.GetForVenue(ctx, venueID, claimID); err != nil {
		return nil, err
	}
	rows, err := s.Repo.UpdateClaimStatus(ctx, s.DB, claimID, domain.ClaimStatusPending, target)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Visible but not pending: a verify/reject after a terminal state.
		return nil, ErrInvalidTransition
	}
	return s.Repo.GetClaim(ctx, s.DB, claimID)
}
