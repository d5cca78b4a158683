package stream

import (
	"encoding/json"
	"testing"
	"time"

	drepo "SignalPulse/internal/domain/repository"
)

func TestStreamNames(t *testing.T) {
	c := &Client{
		symbols:    []string{"BTCUSDT", "ETHUSDT"},
		timeframes: []drepo.Timeframe{drepo.TF1m, drepo.TF1h},
	}
	want := "btcusdt@kline_1m/btcusdt@kline_1h/ethusdt@kline_1m/ethusdt@kline_1h"
	if got := c.streamNames(); got != want {
		t.Fatalf("streamNames = %q, want %q", got, want)
	}
}

func TestToStreamCandle(t *testing.T) {
	ev := wsKlineEvent{
		Type:   "kline",
		Symbol: "BTCUSDT",
		Kline: wsKline{
			StartTime: 1735689600000, // 2025-01-01T00:00:00Z
			Interval:  "1h",
			Open:      "95000.10",
			High:      "95500.00",
			Low:       "94800.50",
			Close:     "95250.25",
			Volume:    "1234.5",
			Closed:    true,
		},
	}

	sc, err := toStreamCandle(ev)
	if err != nil {
		t.Fatalf("toStreamCandle: %v", err)
	}
	if sc.Symbol != "BTCUSDT" {
		t.Errorf("symbol = %q", sc.Symbol)
	}
	if sc.Timeframe != drepo.TF1h {
		t.Errorf("timeframe = %q, want 1h", sc.Timeframe)
	}
	wantTS := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if !sc.Candle.Timestamp.Equal(wantTS) {
		t.Errorf("timestamp = %v, want %v", sc.Candle.Timestamp, wantTS)
	}
	if sc.Candle.Open != 95000.10 || sc.Candle.Close != 95250.25 {
		t.Errorf("ohlc = %+v", sc.Candle)
	}
	if sc.Candle.Volume != 1234.5 {
		t.Errorf("volume = %v", sc.Candle.Volume)
	}
}

func TestToStreamCandleBadPrice(t *testing.T) {
	ev := wsKlineEvent{
		Type:   "kline",
		Symbol: "BTCUSDT",
		Kline:  wsKline{Open: "not-a-number", High: "1", Low: "1", Close: "1", Volume: "1"},
	}
	if _, err := toStreamCandle(ev); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestCombinedFrameDecode(t *testing.T) {
	raw := `{
		"stream": "btcusdt@kline_1m",
		"data": {
			"e": "kline",
			"s": "BTCUSDT",
			"k": {
				"t": 1735689600000,
				"i": "1m",
				"o": "100.1",
				"h": "101.0",
				"l": "99.5",
				"c": "100.7",
				"v": "42.0",
				"x": true
			}
		}
	}`

	var frame wsCombinedFrame
	if err := json.Unmarshal([]byte(raw), &frame); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if frame.Stream != "btcusdt@kline_1m" {
		t.Errorf("stream = %q", frame.Stream)
	}
	if frame.Data.Type != "kline" || !frame.Data.Kline.Closed {
		t.Errorf("event = %+v", frame.Data)
	}
	if frame.Data.Kline.Close != "100.7" {
		t.Errorf("close = %q", frame.Data.Kline.Close)
	}
}
