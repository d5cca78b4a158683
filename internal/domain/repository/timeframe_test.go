package repository

import (
	"testing"
	"time"
)

func TestIsValidTimeframeCoversAll(t *testing.T) {
	for _, tf := range All {
		if !IsValidTimeframe(tf) {
			t.Errorf("timeframe %q rejected", tf)
		}
	}
	for _, bad := range []Timeframe{"", "7m", "2h", "1y"} {
		if IsValidTimeframe(bad) {
			t.Errorf("timeframe %q accepted", bad)
		}
	}
}

func TestNormalizeTimeframe(t *testing.T) {
	if got := NormalizeTimeframe("4h"); got != TF4h {
		t.Fatalf("normalize 4h = %q", got)
	}
	if got := NormalizeTimeframe("bogus"); got != DefaultTimeframe() {
		t.Fatalf("normalize bogus = %q, want default", got)
	}
	if got := NormalizeTimeframe(""); got != DefaultTimeframe() {
		t.Fatalf("normalize empty = %q, want default", got)
	}
}

func TestTimeframeDurationsAscending(t *testing.T) {
	var prev time.Duration
	for _, tf := range All {
		d := tf.Duration()
		if d <= prev {
			t.Fatalf("duration of %q (%v) not greater than previous (%v)", tf, d, prev)
		}
		prev = d
	}
}
