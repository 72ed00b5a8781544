// Package services – AuthService
//
// This file implements the AuthService, which manages venue registration,
// login, and profile maintenance. Passwords are bcrypt-hashed at signup and
// verified at login; the hash never leaves the service. Sessions are
// stateless HS256 access tokens carrying only the venue id, so nothing
// credential-shaped is ever round-tripped through the client.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Reem-mvem/Lost-Found-Management-System/internal/domain"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/repo"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/utils"
)

// VenueRepo defines the repository contract required by AuthService.
type VenueRepo interface {
	// CreateVenue inserts a new venue row; duplicate emails return
	// repo.ErrDuplicate.
	CreateVenue(ctx context.Context, db *gorm.DB, name, email, passwordHash, typ, address, logo string) (*domain.Venue, error)

	// GetVenue fetches a venue by ID.
	GetVenue(ctx context.Context, db *gorm.DB, id string) (*domain.Venue, error)

	// GetVenueByEmail fetches a venue by login email.
	GetVenueByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Venue, error)

	// UpdateVenueProfile applies profile column updates.
	UpdateVenueProfile(ctx context.Context, db *gorm.DB, id string, updates map[string]any) error
}

// SignupInput carries the venue registration form.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Type     string
	Address  string
	Logo     string
}

// ProfileUpdate carries the mutable profile fields; nil pointers are left
// untouched. Email and password are not updatable through this path.
type ProfileUpdate struct {
	Name    *string
	Type    *string
	Address *string
	Logo    *string
}

// AuthService provides venue signup, login, and profile operations.
type AuthService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the venue repository used by this service.
	Repo VenueRepo

	// JWTSecret signs access tokens.
	JWTSecret string
	// AccessTTL bounds token lifetime.
	AccessTTL time.Duration
	// BcryptCost controls hashing work factor.
	BcryptCost int
}

// validation errors surfaced with field context at the handler layer
var (
	errEmailRequired    = errors.New("email is required")
	errPasswordRequired = errors.New("password is required")
	errNameRequired     = errors.New("name is required")
)

// emailShapeRE is deliberately loose; real deliverability checks are out of
// scope for a signup form.
var emailShapeRE = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Signup registers a new venue and returns it alongside a fresh access
// token. Duplicate emails return ErrEmailTaken.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domain.Venue, utils.AccessToken, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	switch {
	case in.Name == "":
		return nil, utils.AccessToken{}, errNameRequired
	case in.Email == "" || !emailShapeRE.MatchString(in.Email):
		return nil, utils.AccessToken{}, errEmailRequired
	case strings.TrimSpace(in.Password) == "":
		return nil, utils.AccessToken{}, errPasswordRequired
	}

	hash, err := utils.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return nil, utils.AccessToken{}, err
	}

	v, err := s.Repo.CreateVenue(ctx, s.DB, in.Name, in.Email, hash, strings.TrimSpace(in.Type), strings.TrimSpace(in.Address), in.Logo)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, utils.AccessToken{}, ErrEmailTaken
		}
		return nil, utils.AccessToken{}, err
	}

	tok, err := s.issueToken(v.ID)
	if err != nil {
		return nil, utils.AccessToken{}, err
	}
	return v, tok, nil
}

// Login verifies the email/password pair and returns the venue with a fresh
// access token. Any mismatch yields ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Venue, utils.AccessToken, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, utils.AccessToken{}, ErrInvalidCredentials
	}
	v, err := s.Repo.GetVenueByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.AccessToken{}, ErrInvalidCredentials
		}
		return nil, utils.AccessToken{}, err
	}
	if !utils.VerifyPassword(v.PasswordHash, password) {
		return nil, utils.AccessToken{}, ErrInvalidCredentials
	}
	tok, err := s.issueToken(v.ID)
	if err != nil {
		return nil, utils.AccessToken{}, err
	}
	return v, tok, nil
}

// Profile returns the venue record for an authenticated venue id.
func (s *AuthService) Profile(ctx context.Context, venueID string) (*domain.Venue, error) {
	v, err := s.Repo.GetVenue(ctx, s.DB, venueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return v, nil
}

// UpdateProfile applies the non-nil fields of upd to the venue and returns
// the refreshed record.
func (s *AuthService) UpdateProfile(ctx context.Context, venueID string, upd ProfileUpdate) (*domain.Venue, error) {
	updates := map[string]any{}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) != "" {
		updates["name"] = strings.TrimSpace(*upd.Name)
	}
	if upd.Type != nil {
		updates["type"] = strings.TrimSpace(*upd.Type)
	}
	if upd.Address != nil {
		updates["address"] = strings.TrimSpace(*upd.Address)
	}
	if upd.Logo != nil {
		updates["logo"] = *upd.Logo
	}
	if len(updates) > 0 {
		if err := s.Repo.UpdateVenueProfile(ctx, s.DB, venueID, updates); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrVenueNotFound
			}
			return nil, err
		}
	}
	return s.Profile(ctx, venueID)
}

// ParseToken validates an access token and returns the venue id it names.
func (s *AuthService) ParseToken(token string) (string, error) {
	return utils.ParseAccessToken(s.JWTSecret, token)
}

func (s *AuthService) issueToken(venueID string) (utils.AccessToken, error) {
	return utils.NewAccessToken(s.JWTSecret, venueID, s.AccessTTL)
}

// normalizeEmail lowercases and trims a login email.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
