// Package extract converts free-text intake conversations into structured
// claim fields using keyword and regex heuristics. It is deterministic and
// does no I/O.
//
// This is a best-effort extractor, not a validator: when nothing matches, a
// field silently falls back to its fixed default, and malformed values are
// passed through unchanged. The Extractor interface keeps it swappable for a
// stronger implementation without touching the claim lifecycle.
package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Reem-mvem/Lost-Found-Management-System/internal/domain"
)

// ClaimFields is the fixed schema the intake flow populates from a
// conversation.
type ClaimFields struct {
	Type         string
	Color        string
	Brand        string
	Location     string
	Description  string
	ContactName  string
	ContactEmail string
	ContactPhone string
}

// Extractor derives ClaimFields from a full turn history.
type Extractor interface {
	Extract(history []domain.Turn) ClaimFields
}

// Field defaults applied when no keyword or pattern matches.
const (
	DefaultType     = "Item"
	DefaultColor    = "Unknown"
	DefaultBrand    = "Unknown"
	DefaultLocation = "Campus area"
	DefaultName     = "User"
	DefaultEmail    = "user@example.com"
	DefaultPhone    = "555-0123"
)

// descriptionLimit caps the synthesized description in bytes. Truncation may
// cut mid-word but never mid-rune; downstream consumers rely on the cap.
const descriptionLimit = 200

// Keyword lists are ordered: the first list entry found anywhere in the
// text wins, regardless of position in the text.
var (
	typeKeywords     = []string{"phone", "wallet", "keys", "bag", "laptop", "watch", "glasses"}
	colorKeywords    = []string{"black", "white", "red", "blue", "green", "yellow", "brown", "silver", "gold"}
	brandKeywords    = []string{"apple", "samsung", "nike", "adidas", "coach", "michael kors"}
	locationKeywords = []string{"library", "cafeteria", "gym", "classroom", "parking", "lobby", "bathroom", "office"}
)

var (
	nameRE  = regexp.MustCompile(`(?i)my name is ([a-zA-Z\s]+)`)
	emailRE = regexp.MustCompile(`[\w.\-]+@[\w.\-]+\.\w+`)
	phoneRE = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
)

// Heuristic is the keyword/regex Extractor. The zero value is ready to use.
type Heuristic struct{}

// Extract concatenates the user turns with single spaces and scans the
// result once per field. Identical histories always yield byte-identical
// fields.
func (Heuristic) Extract(history []domain.Turn) ClaimFields {
	parts := make([]string, 0, len(history))
	for _, t := range history {
		if t.Role == domain.RoleUser {
			parts = append(parts, t.Content)
		}
	}
	text := strings.Join(parts, " ")

	return ClaimFields{
		Type:         firstKeyword(text, typeKeywords, DefaultType),
		Color:        firstKeyword(text, colorKeywords, DefaultColor),
		Brand:        firstKeyword(text, brandKeywords, DefaultBrand),
		Location:     firstKeyword(text, locationKeywords, DefaultLocation),
		Description:  truncate(text, descriptionLimit),
		ContactName:  captureOr(nameRE, text, 1, DefaultName),
		ContactEmail: captureOr(emailRE, text, 0, DefaultEmail),
		ContactPhone: captureOr(phoneRE, text, 0, DefaultPhone),
	}
}

// firstKeyword returns the first list entry contained in text
// (case-insensitive), or def when none is.
func firstKeyword(text string, keywords []string, def string) string {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return kw
		}
	}
	return def
}

// captureOr returns the trimmed capture group (or whole match when group is
// 0) of the first occurrence of re in text, or def when there is none.
func captureOr(re *regexp.Regexp, text string, group int, def string) string {
	m := re.FindStringSubmatch(text)
	if m == nil || group >= len(m) {
		return def
	}
	got := strings.TrimSpace(m[group])
	if got == "" {
		return def
	}
	return got
}

// truncate caps s at n bytes, backing off to the previous rune boundary so
// the result is always valid UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
