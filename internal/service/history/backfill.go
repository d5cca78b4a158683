package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"SignalPulse/internal/domain/models"
	drepo "SignalPulse/internal/domain/repository"
	xhttp "SignalPulse/pkg/http"
	applogger "SignalPulse/pkg/logger"
)

// Backfiller warms the in-memory candle store from the exchange REST
// API so signals are available before the live stream has accumulated
// enough closed bars.
type Backfiller struct {
	client  *xhttp.Client
	baseURL string
	store   drepo.CandleStore
	l       *applogger.Logger
}

func New(baseURL string, store drepo.CandleStore, l *applogger.Logger) *Backfiller {
	return &Backfiller{
		client:  xhttp.NewClient(xhttp.WithTimeout(15 * time.Second)),
		baseURL: baseURL,
		store:   store,
		l:       l,
	}
}

// Backfill loads up to bars historical candles for every symbol and
// timeframe. Failures are logged per series and do not abort the rest.
func (b *Backfiller) Backfill(ctx context.Context, symbols []string, tfs []drepo.Timeframe, bars int) {
	if bars <= 0 || b.baseURL == "" {
		return
	}
	for _, symbol := range symbols {
		for _, tf := range tfs {
			n, err := b.backfillSeries(ctx, symbol, tf, bars)
			if err != nil {
				if b.l != nil {
					b.l.Warn("backfill failed",
						applogger.String("symbol", symbol),
						applogger.String("tf", string(tf)),
						applogger.Error(err))
				}
				continue
			}
			if b.l != nil {
				b.l.Info("backfill loaded",
					applogger.String("symbol", symbol),
					applogger.String("tf", string(tf)),
					applogger.Int("bars", n))
			}
		}
	}
}

// restKline is one row of the klines response:
// [openTime, open, high, low, close, volume, closeTime, ...]
type restKline []json.RawMessage

func (b *Backfiller) backfillSeries(ctx context.Context, symbol string, tf drepo.Timeframe, bars int) (int, error) {
	var rows []restKline
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    b.baseURL + "/api/v3/klines",
		QueryParams: map[string][]string{
			"symbol":   {symbol},
			"interval": {string(tf)},
			"limit":    {strconv.Itoa(bars)},
		},
	}, &rows)
	if err != nil {
		return 0, fmt.Errorf("fetch klines: %w", err)
	}

	count := 0
	for _, row := range rows {
		c, err := parseKline(row)
		if err != nil {
			return count, fmt.Errorf("parse kline: %w", err)
		}
		if err := b.store.Append(ctx, symbol, tf, c); err != nil {
			return count, fmt.Errorf("append: %w", err)
		}
		count++
	}
	return count, nil
}

func parseKline(row restKline) (models.Candle, error) {
	if len(row) < 6 {
		return models.Candle{}, fmt.Errorf("kline row too short: %d fields", len(row))
	}

	var openMS int64
	if err := json.Unmarshal(row[0], &openMS); err != nil {
		return models.Candle{}, err
	}

	vals := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		var s string
		if err := json.Unmarshal(row[i], &s); err != nil {
			return models.Candle{}, err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Candle{}, err
		}
		vals[i-1] = v
	}

	return models.Candle{
		Timestamp: time.UnixMilli(openMS),
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, nil
}
