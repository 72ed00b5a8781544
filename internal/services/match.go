// Package services – item/claim matching collaborator.
//
// Matching a claim against the item catalog ("AI matching" in the product's
// language) is an external concern this core does not implement. It is
// surfaced as an explicit interface so a real matching service can be
// substituted without touching the claim lifecycle.
package services

import (
	"context"

	"github.com/Reem-mvem/Lost-Found-Management-System/internal/domain"
)

// MatchCandidate is one ranked item a matcher proposes for a claim.
type MatchCandidate struct {
	Item  domain.LostItem `json:"item"`
	Score float64         `json:"score"`
}

// Matcher ranks catalog items against a claim. Implementations must be safe
// for concurrent use and honor the context.
type Matcher interface {
	// Match returns candidate items in descending relevance order. An empty
	// slice is a valid answer meaning "no opinion".
	Match(ctx context.Context, claim *domain.Claim) ([]MatchCandidate, error)
}

// NoMatcher is the default Matcher: it never proposes candidates, matching
// the shipped behavior where claims stay unlinked until an operator (or a
// future matching service) intervenes.
type NoMatcher struct{}

// Match always returns no candidates.
func (NoMatcher) Match(context.Context, *domain.Claim) ([]MatchCandidate, error) {
	return nil, nil
}
