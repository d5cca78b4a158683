package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"SignalPulse/internal/domain/models"
	drepo "SignalPulse/internal/domain/repository"
	applogger "SignalPulse/pkg/logger"

	"github.com/gorilla/websocket"
)

// Client implements a CandleStream backed by an exchange kline WebSocket
// (Binance combined-stream wire format).
type Client struct {
	baseURL        string
	symbols        []string
	timeframes     []drepo.Timeframe
	reconnectDelay time.Duration
	pingInterval   time.Duration

	l         *applogger.Logger
	conn      *websocket.Conn
	connected bool
}

// New creates a new kline CandleStream.
func New(baseURL string, symbols []string, timeframes []drepo.Timeframe, reconnectDelay, pingInterval time.Duration, l *applogger.Logger) drepo.CandleStream {
	return &Client{
		baseURL:        baseURL,
		symbols:        symbols,
		timeframes:     timeframes,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		l:              l,
	}
}

// streamNames builds the combined stream path: btcusdt@kline_1m/btcusdt@kline_1h/...
func (c *Client) streamNames() string {
	names := make([]string, 0, len(c.symbols)*len(c.timeframes))
	for _, s := range c.symbols {
		for _, tf := range c.timeframes {
			names = append(names, strings.ToLower(s)+"@kline_"+string(tf))
		}
	}
	return strings.Join(names, "/")
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s/stream?streams=%s", c.baseURL, c.streamNames())
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("kline stream connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	if c.l != nil {
		c.l.Info("kline stream connected",
			applogger.Strings("symbols", c.symbols),
			applogger.Int("streams", len(c.symbols)*len(c.timeframes)))
	}
	return nil
}

// Subscribe is a no-op for combined streams; the subscription is part of the URL.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("kline stream not connected")
	}
	return nil
}

type wsKline struct {
	StartTime int64  `json:"t"`
	Interval  string `json:"i"`
	Open      string `json:"o"`
	High      string `json:"h"`
	Low       string `json:"l"`
	Close     string `json:"c"`
	Volume    string `json:"v"`
	Closed    bool   `json:"x"`
}

type wsKlineEvent struct {
	Type   string  `json:"e"`
	Symbol string  `json:"s"`
	Kline  wsKline `json:"k"`
}

type wsCombinedFrame struct {
	Stream string       `json:"stream"`
	Data   wsKlineEvent `json:"data"`
}

// Read streams closed candles and errors.
func (c *Client) Read(ctx context.Context) (<-chan *drepo.StreamCandle, <-chan error) {
	candles := make(chan *drepo.StreamCandle, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(candles)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("kline stream conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("kline stream read: %w", err)
					return
				}
				var frame wsCombinedFrame
				if err := json.Unmarshal(b, &frame); err != nil {
					// ignore non-kline frames
					continue
				}
				if frame.Data.Type != "kline" || !frame.Data.Kline.Closed {
					continue
				}
				sc, err := toStreamCandle(frame.Data)
				if err != nil {
					if c.l != nil {
						c.l.Warn("kline parse failed", applogger.Error(err))
					}
					continue
				}
				select {
				case candles <- sc:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return candles, errs
}

func toStreamCandle(ev wsKlineEvent) (*drepo.StreamCandle, error) {
	k := ev.Kline
	o, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", k.Open, err)
	}
	h, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return nil, fmt.Errorf("high %q: %w", k.High, err)
	}
	lo, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return nil, fmt.Errorf("low %q: %w", k.Low, err)
	}
	cl, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return nil, fmt.Errorf("close %q: %w", k.Close, err)
	}
	v, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return nil, fmt.Errorf("volume %q: %w", k.Volume, err)
	}
	return &drepo.StreamCandle{
		Symbol:    ev.Symbol,
		Timeframe: drepo.NormalizeTimeframe(k.Interval),
		Candle: models.Candle{
			Timestamp: time.UnixMilli(k.StartTime),
			Open:      o,
			High:      h,
			Low:       lo,
			Close:     cl,
			Volume:    v,
		},
	}, nil
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
