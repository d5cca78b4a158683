package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"SignalPulse/internal/domain/models"
	drepo "SignalPulse/internal/domain/repository"
	pkgkafka "SignalPulse/pkg/kafka"
)

// ClickHouseStorage implements Storage for ClickHouse.
type ClickHouseStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseStorage creates ClickHouse candle storage.
func NewClickHouseStorage(db *sql.DB, table string) drepo.Storage {
	return &ClickHouseStorage{db: db, table: table}
}

func (s *ClickHouseStorage) Init(ctx context.Context) error {
	return nil // schema init lives in pkg/clickhouse
}

func (s *ClickHouseStorage) Store(ctx context.Context, c *drepo.StreamCandle) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, symbol, timeframe, open, high, low, close, volume) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		c.Candle.Timestamp,
		c.Symbol,
		string(c.Timeframe),
		c.Candle.Open,
		c.Candle.High,
		c.Candle.Low,
		c.Candle.Close,
		c.Candle.Volume,
	)
	return err
}

func (s *ClickHouseStorage) StoreBatch(ctx context.Context, cs []*drepo.StreamCandle) error {
	if len(cs) == 0 {
		return nil
	}
	// Multi-row VALUES insert to reduce round-trips, chunked at 2000 rows.
	const chunkSize = 2000
	for start := 0; start < len(cs); start += chunkSize {
		end := start + chunkSize
		if end > len(cs) {
			end = len(cs)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*8)
		for _, c := range cs[start:end] {
			if c == nil || c.Symbol == "" || c.Candle.Timestamp.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				c.Candle.Timestamp,
				c.Symbol,
				string(c.Timeframe),
				c.Candle.Open,
				c.Candle.High,
				c.Candle.Low,
				c.Candle.Close,
				c.Candle.Volume,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, symbol, timeframe, open, high, low, close, volume) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseStorage) Query(ctx context.Context, symbol string, from, to time.Time, tf drepo.Timeframe, limit int) ([]models.Candle, error) {
	q := fmt.Sprintf("SELECT ts, open, high, low, close, volume FROM %s WHERE symbol = ? AND timeframe = ? AND ts >= ? AND ts <= ? ORDER BY ts ASC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, string(tf), from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cs []models.Candle
	for rows.Next() {
		var c models.Candle
		var ts time.Time
		if err := rows.Scan(&ts, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, err
		}
		c.Timestamp = ts
		cs = append(cs, c)
	}
	return cs, rows.Err()
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // pool managed by pkg/clickhouse
}

// KafkaPublisher implements Publisher for Kafka. Candles are keyed by
// symbol so per-symbol ordering is preserved with a hash balancer.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates a Kafka candle publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) drepo.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func candlePayload(c *drepo.StreamCandle) map[string]interface{} {
	return map[string]interface{}{
		"symbol": c.Symbol,
		"tf":     string(c.Timeframe),
		"t":      c.Candle.Timestamp.Unix(),
		"o":      c.Candle.Open,
		"h":      c.Candle.High,
		"l":      c.Candle.Low,
		"c":      c.Candle.Close,
		"v":      c.Candle.Volume,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, c *drepo.StreamCandle) error {
	return p.producer.Publish(ctx, p.topic, []byte(c.Symbol), candlePayload(c))
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, cs []*drepo.StreamCandle) error {
	if len(cs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(cs))
	for i, c := range cs {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(c.Symbol),
			Value: candlePayload(c),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
