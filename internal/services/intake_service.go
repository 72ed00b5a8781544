// Package services – IntakeService
//
// This file implements the conversational intake flow: advance the
// conversation through the assistant engine, sniff the reply for the
// submission phrasing, and when it fires, extract structured fields from the
// user's turns and create the claim. The completion signal is a heuristic
// (phrase containment), not a structured marker from the remote endpoint;
// the phrase list is data so the brittleness stays in one place.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/Reem-mvem/Lost-Found-Management-System/internal/assistant"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/domain"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/extract"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/repo"
)

// completionPhrases mark an assistant reply as the end of the intake
// conversation (case-insensitive containment).
var completionPhrases = []string{
	"tracking number",
	"submitted your",
	"report has been",
	"claim has been submitted",
}

// IntakeResult is the outcome of one intake exchange.
type IntakeResult struct {
	// Reply is the assistant utterance to render.
	Reply string
	// Done reports whether the reply carried the submission phrasing.
	Done bool
	// Claim is the created (or replayed) claim when Done is true.
	Claim *domain.Claim
}

// IntakeService coordinates the assistant engine, the field extractor, and
// claim creation.
type IntakeService struct {
	DB        *gorm.DB
	Engine    *assistant.Engine
	Extractor extract.Extractor
	Claims    *ClaimService

	// MaxTurnRunes caps a single user turn; 0 disables the guard.
	MaxTurnRunes int
	// IdempotencyTTL bounds how long a submission key replays its claim.
	IdempotencyTTL time.Duration
}

// Advance answers the latest user turn in history. When the reply signals
// completion it extracts the claim fields and creates the claim; a repeated
// submission with the same (subject, idemKey) replays the original claim
// instead of issuing a second tracking number. subject identifies the caller
// (client IP); idemKey may be empty, which disables replay protection.
func (s *IntakeService) Advance(ctx context.Context, subject, idemKey string, history []domain.Turn) (*IntakeResult, error) {
	tr := otel.Tracer("services/IntakeService")
	ctx, span := tr.Start(ctx, "Advance",
		trace.WithAttributes(attribute.Int("history.turns", len(history))),
	)
	defer span.End()

	if err := validateHistory(history, s.MaxTurnRunes); err != nil {
		return nil, err
	}

	reply := s.Engine.Advance(ctx, history)
	res := &IntakeResult{Reply: reply}
	if !isComplete(reply) {
		return res, nil
	}
	res.Done = true
	span.SetAttributes(attribute.Bool("intake.done", true))

	// Replay a previous submission instead of creating a duplicate claim.
	if idemKey != "" {
		if rec, err := repo.GetIdempotency(ctx, s.DB, subject, idemKey, time.Now().UTC()); err == nil {
			if c, cerr := s.Claims.Repo.GetClaim(ctx, s.DB, rec.ClaimID); cerr == nil {
				res.Claim = c
				return res, nil
			}
		}
	}

	fields := s.Extractor.Extract(history)
	claim, err := s.Claims.Create(ctx, fields)
	if err != nil {
		return nil, err
	}
	res.Claim = claim

	if idemKey != "" {
		if _, err := repo.CreateIdempotency(ctx, s.DB, subject, idemKey, claim.ID, 201, s.IdempotencyTTL); err != nil &&
			!errors.Is(err, repo.ErrDuplicate) {
			// The claim exists either way; losing the replay record only
			// weakens retry protection.
			log.Warn().Err(err).Msg("intake: recording idempotency failed")
		}
	}
	return res, nil
}

// validateHistory requires at least one user turn and, when the latest turn
// is a user turn, bounds its length.
func validateHistory(history []domain.Turn, maxRunes int) error {
	hasUser := false
	for _, t := range history {
		if t.Role == domain.RoleUser && strings.TrimSpace(t.Content) != "" {
			hasUser = true
		}
	}
	if !hasUser {
		return ErrEmptyHistory
	}
	if maxRunes > 0 && len(history) > 0 {
		last := history[len(history)-1]
		if last.Role == domain.RoleUser && utf8.RuneCountInString(last.Content) > maxRunes {
			return ErrTurnTooLong
		}
	}
	return nil
}

// isComplete reports whether reply contains any completion phrase.
func isComplete(reply string) bool {
	lower := strings.ToLower(reply)
	for _, p := range completionPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
