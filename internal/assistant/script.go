// Package assistant – deterministic scripted responder.
//
// The script is the offline twin of the remote endpoint: a fixed ordered
// list of intake prompts walked by the number of user turns already
// answered. It guarantees termination and byte-identical replies for a given
// history, which is what the intake tests rely on.
package assistant

import (
	"context"

	"github.com/Reem-mvem/Lost-Found-Management-System/internal/domain"
)

// Greeting opens every intake conversation. It is rendered by the client
// before the first user turn, so it is not part of the script walked by
// Advance.
const Greeting = "Hi! I'm here to help you find your lost item. What did you lose today?"

// scriptPrompts are returned in order, one per answered user turn, clamped
// to the last entry. The final entry carries the submission phrasing that
// the completion detection keys on.
var scriptPrompts = []string{
	"I understand how frustrating it can be to lose something important. Can you tell me what color it was?",
	"That helps! Do you remember the brand or any distinctive features about it?",
	"Thanks for that detail. Where do you think you might have lost it? Try to be as specific as possible.",
	"Got it! Can you describe any other details that might help identify your item?",
	"Perfect! Now I need your contact information so we can reach you if we find a match. What's your full name?",
	"Great! What's the best email address to reach you at?",
	"And what's your phone number?",
	"Thank you for all that information! I've submitted your lost item report. You'll receive a tracking number shortly, and we'll contact you if we find a match in our system.",
}

// Script is a Responder that replies from the fixed prompt list. The zero
// value is ready to use.
type Script struct{}

// Advance returns the prompt indexed by the number of prior user turns: the
// user turns in history excluding the latest one, which is the turn being
// answered. The index is a pure function of the history, so re-rendered or
// replayed conversations land on the same reply, and it clamps to the last
// entry once the list is exhausted.
func (Script) Advance(_ context.Context, history []domain.Turn) (string, error) {
	users := 0
	for _, t := range history {
		if t.Role == domain.RoleUser {
			users++
		}
	}
	idx := users - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(scriptPrompts) {
		idx = len(scriptPrompts) - 1
	}
	return scriptPrompts[idx], nil
}

// ScriptLen reports how many prompts the script holds. Exposed for tests and
// for clients that want to show intake progress.
func ScriptLen() int { return len(scriptPrompts) }
