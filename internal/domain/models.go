// Package domain defines the persistence models for venues, lost items, and
// claims. These types are mapped with GORM and form the core data layer of
// the lost & found application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Claim statuses. A claim starts pending and moves exactly once to one of
// the two terminal states.
const (
	ClaimStatusPending  = "pending"
	ClaimStatusVerified = "verified"
	ClaimStatusRejected = "rejected"
)

// Conversation turn roles, mirroring the chat-completion wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MaxItemPhotos caps the number of photo payloads attached to a lost item.
const MaxItemPhotos = 3

// Venue represents an organization (university, mall, hotel) that registers
// found items and reviews claims against them.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Name: display name shown on the dashboard.
//   - Email: unique login identifier.
//   - PasswordHash: bcrypt hash; the plaintext is never stored or returned.
//   - Type: free-form venue category ("university", "mall", ...).
//   - Address / Logo: optional profile fields.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Venue struct {
	ID           string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Name         string    `json:"name"       gorm:"type:varchar(255);not null"`
	Email        string    `json:"email"      gorm:"type:varchar(255);not null;uniqueIndex:ux_venue_email"`
	PasswordHash string    `json:"-"          gorm:"type:varchar(255);not null"`
	Type         string    `json:"type"       gorm:"type:varchar(64);not null"`
	Address      string    `json:"address"    gorm:"type:varchar(255)"`
	Logo         string    `json:"logo,omitempty" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for Venue.
func (Venue) TableName() string { return "venues" }

// LostItem represents a found object registered by a venue operator.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - VenueID: owning venue; indexed for dashboard listings.
//   - Title / Category / Color / Brand / Location / Description: item facts
//     as entered on the dashboard form.
//   - FoundAt: when the item was discovered.
//   - Photos: 1..3 opaque base64 payloads, cascade-deleted with the item.
//   - DeletedAt: soft deletion marker.
type LostItem struct {
	ID          string         `json:"id"          gorm:"type:char(36);primaryKey"`
	VenueID     string         `json:"venue_id"    gorm:"type:char(36);not null;index:idx_venue_items"`
	Title       string         `json:"title"       gorm:"type:varchar(255);not null"`
	Category    string         `json:"category"    gorm:"type:varchar(64);not null"`
	Color       string         `json:"color"       gorm:"type:varchar(64);not null"`
	Brand       string         `json:"brand"       gorm:"type:varchar(128)"`
	Location    string         `json:"location"    gorm:"type:varchar(255)"`
	FoundAt     time.Time      `json:"found_at"`
	Description string         `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"           gorm:"index"`

	// Photos are cascade-deleted when the item is removed.
	Photos []ItemPhoto `json:"photos" gorm:"foreignKey:ItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for LostItem.
func (LostItem) TableName() string { return "lost_items" }

// ItemPhoto is one opaque photo payload (base64 text) attached to a lost
// item. Position preserves the upload order within the 3-slot limit.
type ItemPhoto struct {
	ID        string    `json:"id"       gorm:"type:char(36);primaryKey"`
	ItemID    string    `json:"item_id"  gorm:"type:char(36);not null;index:idx_item_photos"`
	Position  int       `json:"position" gorm:"not null"`
	Data      string    `json:"data"     gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for ItemPhoto.
func (ItemPhoto) TableName() string { return "item_photos" }

// Claim represents a user's assertion that a reported loss matches an item a
// venue holds. Claims are created by the conversational intake flow and
// reviewed by venue operators.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - TrackingNumber: short human-shareable identifier ("LF" + digits),
//     unique, used for unauthenticated status lookup.
//   - ItemID: the matched lost item, empty until a matching service assigns
//     one. This field is the authoritative claim-to-item link.
//   - Summary: short display title derived from the extracted fields.
//   - UserDescription / ContactInfo: strings synthesized from the intake
//     conversation.
//   - Status: pending | verified | rejected (DB constraint enforced).
type Claim struct {
	ID              string    `json:"id"               gorm:"type:char(36);primaryKey"`
	TrackingNumber  string    `json:"tracking_number"  gorm:"type:varchar(16);not null;uniqueIndex:ux_claim_tracking"`
	ItemID          string    `json:"item_id"          gorm:"type:char(36);index:idx_item_claims"`
	Summary         string    `json:"summary"          gorm:"type:varchar(255)"`
	UserDescription string    `json:"user_description" gorm:"type:text;not null"`
	ContactInfo     string    `json:"contact_info"     gorm:"type:text;not null"`
	Status          string    `json:"status"           gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','verified','rejected')"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName returns the database table name for Claim.
func (Claim) TableName() string { return "claims" }

// Turn is a single utterance in an intake conversation. Turns are held by
// the client and replayed in full on every request; they are never persisted.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
