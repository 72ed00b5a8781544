// Package assistant – Engine.
//
// The Engine is the single entry point the intake flow talks to. It prefers
// the remote Responder when one is configured and degrades to the Script on
// any failure, so callers never see a remote error: the worst case is a
// canned prompt.
package assistant

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Reem-mvem/Lost-Found-Management-System/internal/domain"
)

// Engine selects between a remote Responder and the deterministic Script.
type Engine struct {
	// Remote is the chat-completion client; nil means scripted only.
	Remote Responder
	// Fallback replies when Remote is nil or fails. Defaults to Script{}.
	Fallback Responder
}

// NewEngine wires an Engine around the optional remote client. A nil client
// yields a purely scripted engine.
func NewEngine(remote *Client) *Engine {
	e := &Engine{Fallback: Script{}}
	if remote != nil {
		e.Remote = remote
	}
	return e
}

// Advance produces the next assistant utterance for the given history. It
// never fails: remote errors are logged and answered from the script. The
// engine does not persist history; the caller owns it.
func (e *Engine) Advance(ctx context.Context, history []domain.Turn) string {
	tr := otel.Tracer("assistant/Engine")
	ctx, span := tr.Start(ctx, "Advance",
		trace.WithAttributes(
			attribute.Int("history.turns", len(history)),
			attribute.Bool("remote.configured", e.Remote != nil),
		),
	)
	defer span.End()

	if e.Remote != nil {
		reply, err := e.Remote.Advance(ctx, history)
		if err == nil {
			return reply
		}
		log.Warn().Err(err).Msg("assistant: remote completion failed, using scripted reply")
		span.SetAttributes(attribute.Bool("remote.fell_back", true))
	}

	fb := e.Fallback
	if fb == nil {
		fb = Script{}
	}
	reply, _ := fb.Advance(ctx, history) // Script never errors
	return reply
}
