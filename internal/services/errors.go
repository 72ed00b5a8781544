// Package services defines the business logic for venues, items, claims, and
// the conversational intake flow. This file centralizes common service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the
// handler layer.
package services

import "errors"

// Venue/auth errors.
var (
	// ErrEmailTaken is returned when a signup email is already registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned when login email/password do not
	// match a stored venue. Deliberately indistinguishable between "unknown
	// email" and "wrong password".
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrVenueNotFound indicates that the requested venue does not exist.
	ErrVenueNotFound = errors.New("venue not found")
)

// Item catalog errors.
var (
	// ErrPhotoRequired is returned when an item is submitted without any
	// photo payload.
	ErrPhotoRequired = errors.New("at least one photo is required")

	// ErrTooManyPhotos is returned when an item carries more than the
	// allowed number of photo payloads.
	ErrTooManyPhotos = errors.New("too many photos")

	// ErrItemNotFound indicates that the requested item does not exist or
	// is not owned by the current venue.
	ErrItemNotFound = errors.New("item not found")
)

// Claim lifecycle errors.
var (
	// ErrClaimNotFound indicates that the requested claim does not exist or
	// is not visible to the current venue.
	ErrClaimNotFound = errors.New("claim not found")

	// ErrInvalidTransition is returned when a verify/reject is attempted on
	// a claim that is no longer pending. Terminal states absorb.
	ErrInvalidTransition = errors.New("claim is not pending")
)

// Intake errors.
var (
	// ErrEmptyHistory is returned when an intake request carries no user
	// turn to answer.
	ErrEmptyHistory = errors.New("conversation history is empty")

	// ErrTurnTooLong is returned when a user turn exceeds the configured
	// length limit.
	ErrTurnTooLong = errors.New("message too long")
)
