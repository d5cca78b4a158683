package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	drepo "SignalPulse/internal/domain/repository"
	"SignalPulse/internal/repository"
)

func TestParseKline(t *testing.T) {
	raw := `[1735689600000, "95000.1", "95500.0", "94800.5", "95250.25", "1234.5", 1735693199999]`
	var row restKline
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		t.Fatalf("unmarshal row: %v", err)
	}

	c, err := parseKline(row)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if !c.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", c.Timestamp, want)
	}
	if c.Open != 95000.1 || c.High != 95500.0 || c.Low != 94800.5 || c.Close != 95250.25 {
		t.Errorf("ohlc = %+v", c)
	}
	if c.Volume != 1234.5 {
		t.Errorf("volume = %v", c.Volume)
	}
}

func TestParseKlineShortRow(t *testing.T) {
	if _, err := parseKline(restKline{}); err == nil {
		t.Fatal("expected error for short row")
	}
}

func TestParseKlineBadNumber(t *testing.T) {
	raw := `[1735689600000, "abc", "1", "1", "1", "1"]`
	var row restKline
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		t.Fatal(err)
	}
	if _, err := parseKline(row); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestBackfillLoadsStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/klines" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Errorf("symbol param = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			[1735689600000, "100.0", "101.0", "99.0", "100.5", "10.0", 0],
			[1735693200000, "100.5", "102.0", "100.0", "101.5", "12.0", 0]
		]`))
	}))
	defer srv.Close()

	store := repository.NewMemoryCandleStore(100)
	b := New(srv.URL, store, nil)
	b.Backfill(context.Background(), []string{"BTCUSDT"}, []drepo.Timeframe{drepo.TF1h}, 2)

	if got := store.Len("BTCUSDT", drepo.TF1h); got != 2 {
		t.Fatalf("store holds %d candles, want 2", got)
	}
}
