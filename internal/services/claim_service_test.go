package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/Reem-mvem/Lost-Found-Management-System/internal/domain"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/extract"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/repo"
)

// ----- Fake repo -----

type fakeClaimRepo struct {
	// capture args
	createTracking    []string
	createSummary     string
	createDescription string
	createContact     string
	createErrs        []error // popped per call; nil means success

	getClaim *domain.Claim
	getErr   error

	trackClaim *domain.Claim
	trackErr   error

	listClaims []domain.Claim
	listErr    error

	updateFrom string
	updateTo   string
	updateRows int64
	updateErr  error

	itemErr error
}

func (r *fakeClaimRepo) CreateClaim(ctx context.Context, db *gorm.DB, trackingNumber, itemID, summary, userDescription, contactInfo string) (*domain.Claim, error) {
	r.createTracking = append(r.createTracking, trackingNumber)
	r.createSummary = summary
	r.createDescription = userDescription
	r.createContact = contactInfo
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &domain.Claim{
		ID:              "cl1",
		TrackingNumber:  trackingNumber,
		ItemID:          itemID,
		Summary:         summary,
		UserDescription: userDescription,
		ContactInfo:     contactInfo,
		Status:          domain.ClaimStatusPending,
	}, nil
}

func (r *fakeClaimRepo) GetClaim(ctx context.Context, db *gorm.DB, id string) (*domain.Claim, error) {
	return r.getClaim, r.getErr
}

func (r *fakeClaimRepo) GetClaimByTracking(ctx context.Context, db *gorm.DB, trackingNumber string) (*domain.Claim, error) {
	return r.trackClaim, r.trackErr
}

func (r *fakeClaimRepo) ListClaimsForVenue(ctx context.Context, db *gorm.DB, venueID string) ([]domain.Claim, error) {
	return r.listClaims, r.listErr
}

func (r *fakeClaimRepo) UpdateClaimStatus(ctx context.Context, db *gorm.DB, id, fromStatus, toStatus string) (int64, error) {
	r.updateFrom, r.updateTo = fromStatus, toStatus
	return r.updateRows, r.updateErr
}

func (r *fakeClaimRepo) GetItem(ctx context.Context, db *gorm.DB, id, venueID string) (*domain.LostItem, error) {
	if r.itemErr != nil {
		return nil, r.itemErr
	}
	return &domain.LostItem{ID: id, VenueID: venueID}, nil
}

// ----- Tests -----

var trackingRE = regexp.MustCompile(`^LF\d{6}$`)

func TestClaimCreate_TrackingNumberFormat(t *testing.T) {
	r := &fakeClaimRepo{}
	s := &ClaimService{Repo: r}

	c, err := s.Create(context.Background(), extract.ClaimFields{
		Type: "wallet", Color: "black", Brand: "coach",
		Location: "library", Description: "black coach wallet",
		ContactName: "John Smith", ContactEmail: "j@example.com", ContactPhone: "555-123-4567",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !trackingRE.MatchString(c.TrackingNumber) {
		t.Fatalf("tracking number %q does not match LF + 6 digits", c.TrackingNumber)
	}
	if c.Status != domain.ClaimStatusPending {
		t.Fatalf("status = %q, want pending", c.Status)
	}
}

func TestClaimCreate_DerivesFromUnixMillis(t *testing.T) {
	pinned := time.UnixMilli(1700000482913)
	s := &ClaimService{Repo: &fakeClaimRepo{}, Now: func() time.Time { return pinned }}

	c, err := s.Create(context.Background(), extract.ClaimFields{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.TrackingNumber != "LF482913" {
		t.Fatalf("tracking = %q, want LF482913 (last six digits of unix millis)", c.TrackingNumber)
	}
}

func TestClaimCreate_FieldFormats(t *testing.T) {
	r := &fakeClaimRepo{}
	s := &ClaimService{Repo: r}

	_, err := s.Create(context.Background(), extract.ClaimFields{
		Type: "wallet", Color: "black", Brand: "coach",
		Location: "library", Description: "worn leather",
		ContactName: "John", ContactEmail: "j@example.com", ContactPhone: "555-123-4567",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	wantDesc := "wallet - black - coach - Lost at: library - Details: worn leather"
	if r.createDescription != wantDesc {
		t.Fatalf("description = %q, want %q", r.createDescription, wantDesc)
	}
	wantContact := "John - j@example.com - 555-123-4567"
	if r.createContact != wantContact {
		t.Fatalf("contact = %q, want %q", r.createContact, wantContact)
	}
	if r.createSummary != "Black Wallet" {
		t.Fatalf("summary = %q, want Black Wallet", r.createSummary)
	}
}

func TestClaimCreate_RetriesOnDuplicateTracking(t *testing.T) {
	r := &fakeClaimRepo{createErrs: []error{repo.ErrDuplicate, nil}}
	s := &ClaimService{Repo: r}

	c, err := s.Create(context.Background(), extract.ClaimFields{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c == nil || len(r.createTracking) != 2 {
		t.Fatalf("expected a retry after duplicate, got %d attempts", len(r.createTracking))
	}
}

func TestClaimCreate_GivesUpAfterRetries(t *testing.T) {
	r := &fakeClaimRepo{createErrs: []error{repo.ErrDuplicate, repo.ErrDuplicate, repo.ErrDuplicate}}
	s := &ClaimService{Repo: r}

	if _, err := s.Create(context.Background(), extract.ClaimFields{}); err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
}

func TestTrack_Unknown_ReturnsErrClaimNotFound(t *testing.T) {
	s := &ClaimService{Repo: &fakeClaimRepo{trackErr: gorm.ErrRecordNotFound}}
	if _, err := s.Track(context.Background(), "LF000000"); err != ErrClaimNotFound {
		t.Fatalf("err = %v, want ErrClaimNotFound", err)
	}
}

func TestTrack_TrimsInput(t *testing.T) {
	want := &domain.Claim{ID: "cl1", TrackingNumber: "LF123456"}
	s := &ClaimService{Repo: &fakeClaimRepo{trackClaim: want}}
	got, err := s.Track(context.Background(), "  LF123456  ")
	if err != nil || got.ID != "cl1" {
		t.Fatalf("got %v err %v", got, err)
	}
}

func TestGetForVenue_UnlinkedClaimInvisible(t *testing.T) {
	s := &ClaimService{Repo: &fakeClaimRepo{
		getClaim: &domain.Claim{ID: "cl1", ItemID: ""},
	}}
	if _, err := s.GetForVenue(context.Background(), "v1", "cl1"); err != ErrClaimNotFound {
		t.Fatalf("err = %v, want ErrClaimNotFound for unlinked claim", err)
	}
}

func TestGetForVenue_ForeignItemInvisible(t *testing.T) {
	s := &ClaimService{Repo: &fakeClaimRepo{
		getClaim: &domain.Claim{ID: "cl1", ItemID: "it1"},
		itemErr:  gorm.ErrRecordNotFound,
	}}
	if _, err := s.GetForVenue(context.Background(), "v1", "cl1"); err != ErrClaimNotFound {
		t.Fatalf("err = %v, want ErrClaimNotFound for foreign item", err)
	}
}

func TestTransition_InvalidTargetRejected(t *testing.T) {
	s := &ClaimService{Repo: &fakeClaimRepo{}}
	for _, target := range []string{"pending", "done", "", "VERIFIED"} {
		if _, err := s.Transition(context.Background(), "v1", "cl1", target); err != ErrInvalidTransition {
			t.Fatalf("target %q: err = %v, want ErrInvalidTransition", target, err)
		}
	}
}

func TestTransition_PendingToVerified(t *testing.T) {
	r := &fakeClaimRepo{
		getClaim:   &domain.Claim{ID: "cl1", ItemID: "it1", Status: domain.ClaimStatusPending},
		updateRows: 1,
	}
	s := &ClaimService{Repo: r}

	if _, err := s.Transition(context.Background(), "v1", "cl1", domain.ClaimStatusVerified); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if r.updateFrom != domain.ClaimStatusPending || r.updateTo != domain.ClaimStatusVerified {
		t.Fatalf("update guarded %q->%q, want pending->verified", r.updateFrom, r.updateTo)
	}
}

func TestTransition_TerminalStateAbsorbs(t *testing.T) {
	// The claim is visible but no longer pending: the guarded update matches
	// zero rows.
	r := &fakeClaimRepo{
		getClaim:   &domain.Claim{ID: "cl1", ItemID: "it1", Status: domain.ClaimStatusVerified},
		updateRows: 0,
	}
	s := &ClaimService{Repo: r}

	for _, target := range []string{domain.ClaimStatusVerified, domain.ClaimStatusRejected} {
		if _, err := s.Transition(context.Background(), "v1", "cl1", target); err != ErrInvalidTransition {
			t.Fatalf("target %q: err = %v, want ErrInvalidTransition", target, err)
		}
	}
}

func TestTransition_MissingClaim(t *testing.T) {
	s := &ClaimService{Repo: &fakeClaimRepo{getErr: gorm.ErrRecordNotFound}}
	if _, err := s.Transition(context.Background(), "v1", "nope", domain.ClaimStatusRejected); err != ErrClaimNotFound {
		t.Fatalf("err = %v, want ErrClaimNotFound", err)
	}
}

func TestClaimListPageForVenue_CountsAndWindows(t *testing.T) {
	db := newIntakeDB(t)
	if err := db.AutoMigrate(&domain.LostItem{}, &domain.ItemPhoto{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	s := &ClaimService{DB: db, Repo: &fakeClaimRepo{}}

	item := &domain.LostItem{VenueID: "v1", Title: "Wallet", Category: "wallet", Color: "black", FoundAt: time.Now().UTC()}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := repo.CreateClaim(context.Background(), db, fmt.Sprintf("LF60000%d", i), item.ID, "Wallet", "d", "c"); err != nil {
			t.Fatalf("seed claim %d: %v", i, err)
		}
	}

	claims, total, err := s.ListPageForVenue(context.Background(), "v1", 0, -1)
	if err != nil {
		t.Fatalf("ListPageForVenue: %v", err)
	}
	if total != 3 || len(claims) != 3 {
		t.Fatalf("total=%d claims=%d", total, len(claims))
	}

	claims, total, err = s.ListPageForVenue(context.Background(), "v1", 2, 2)
	if err != nil || total != 3 || len(claims) != 1 {
		t.Fatalf("window: total=%d claims=%d err=%v", total, len(claims), err)
	}

	// No visible claims: empty non-nil slice, zero total.
	claims, total, err = s.ListPageForVenue(context.Background(), "v-empty", 1, 20)
	if err != nil || total != 0 {
		t.Fatalf("empty venue: total=%d err=%v", total, err)
	}
	if claims == nil || len(claims) != 0 {
		t.Fatalf("expected an empty non-nil slice, got %#v", claims)
	}
}

func TestClaimStats_DelegatesToVisibleClaims(t *testing.T) {
	db := newIntakeDB(t)
	if err := db.AutoMigrate(&domain.LostItem{}, &domain.ItemPhoto{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	s := &ClaimService{DB: db, Repo: &fakeClaimRepo{}}

	item := &domain.LostItem{VenueID: "v1", Title: "Keys", Category: "keys", Color: "silver", FoundAt: time.Now().UTC()}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	if _, err := repo.CreateClaim(context.Background(), db, "LF700001", item.ID, "Keys", "d", "c"); err != nil {
		t.Fatalf("seed claim: %v", err)
	}

	count, maxTS, err := s.Stats(context.Background(), "v1")
	if err != nil || count != 1 || maxTS == nil {
		t.Fatalf("Stats: count=%d maxTS=%v err=%v", count, maxTS, err)
	}

	count, maxTS, err = s.Stats(context.Background(), "v-empty")
	if err != nil || count != 0 || maxTS != nil {
		t.Fatalf("empty Stats: count=%d maxTS=%v err=%v", count, maxTS, err)
	}
}

func TestSummary_TitleCased(t *testing.T) {
	if got := summaryCaser.String(strings.TrimSpace("black wallet")); got != "Black Wallet" {
		t.Fatalf("caser output = %q", got)
	}
}
