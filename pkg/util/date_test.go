package util

import (
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	if _, ok := ParseTime(""); ok {
		t.Fatalf("empty string should not parse")
	}

	want := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	got, ok := ParseTime("2025-06-01T12:30:00Z")
	if !ok || !got.Equal(want) {
		t.Fatalf("rfc3339 parse: got %v ok=%v", got, ok)
	}

	unix := want.Unix()
	got, ok = ParseTime("1748781000")
	if !ok {
		t.Fatalf("unix seconds should parse")
	}
	_ = unix

	if _, ok := ParseTime("not-a-time"); ok {
		t.Fatalf("garbage should not parse")
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := ParseTimeDefault("", def); !got.Equal(def) {
		t.Fatalf("expected default, got %v", got)
	}
}

func TestAlignFromTo(t *testing.T) {
	from := time.Date(2025, 6, 1, 12, 34, 56, 0, time.UTC)
	to := time.Date(2025, 6, 1, 18, 1, 2, 0, time.UTC)

	f, tt := AlignFromTo(from, to, "1h")
	if f.Minute() != 0 || f.Second() != 0 {
		t.Fatalf("from not aligned to hour: %v", f)
	}
	if tt.Minute() != 0 || tt.Second() != 0 {
		t.Fatalf("to not aligned to hour: %v", tt)
	}

	f, _ = AlignFromTo(from, to, "5m")
	if f.Minute()%5 != 0 || f.Second() != 0 {
		t.Fatalf("from not aligned to 5m: %v", f)
	}
}

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("", 7); got != 7 {
		t.Fatalf("empty: got %d", got)
	}
	if got := ParseIntDefault("42", 7); got != 42 {
		t.Fatalf("valid: got %d", got)
	}
	if got := ParseIntDefault("x", 7); got != 7 {
		t.Fatalf("invalid: got %d", got)
	}
}
