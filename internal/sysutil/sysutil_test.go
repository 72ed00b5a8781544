package sysutil

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestSetLogLevel_MapsAllVariants(t *testing.T) {
	orig := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(orig) })

	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel}, // case + trim
		{"warning", zerolog.WarnLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"verbose", zerolog.InfoLevel}, // unknown -> info
	}
	for _, tc := range cases {
		SetLogLevel(tc.in)
		if got := zerolog.GlobalLevel(); got != tc.want {
			t.Fatalf("SetLogLevel(%q) -> %v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", " y ", "on", "On"} {
		if !IsTruthy(v) {
			t.Fatalf("IsTruthy(%q) = false; want true", v)
		}
	}
	for _, v := range []string{"", "0", "false", "no", "off", "enabled", "  "} {
		if IsTruthy(v) {
			t.Fatalf("IsTruthy(%q) = true; want false", v)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("FirstNonEmpty() = %q; want empty", got)
	}
	if got := FirstNonEmpty("  ", "\t"); got != "" {
		t.Fatalf("FirstNonEmpty(blanks) = %q; want empty", got)
	}
	// Whitespace counts as empty for selection but the winner keeps its spacing.
	if got := FirstNonEmpty("   ", " gsk_key ", "sk_key"); got != " gsk_key " {
		t.Fatalf("FirstNonEmpty = %q; want %q", got, " gsk_key ")
	}
	if got := FirstNonEmpty("first", "second"); got != "first" {
		t.Fatalf("FirstNonEmpty = %q; want %q", got, "first")
	}
}
