package di

import (
	"context"
	"fmt"
	"time"

	"SignalPulse/internal/domain/repository"
	domsvc "SignalPulse/internal/domain/service"
	"SignalPulse/internal/engine"
	"SignalPulse/internal/handler/api"
	mid "SignalPulse/internal/middleware"
	internalrepo "SignalPulse/internal/repository"
	icache "SignalPulse/internal/service/cache"
	"SignalPulse/internal/service/history"
	"SignalPulse/internal/service/stream"
	"SignalPulse/internal/usecase"
	pcache "SignalPulse/pkg/cache"
	pkgch "SignalPulse/pkg/clickhouse"
	"SignalPulse/pkg/config"
	xhttp "SignalPulse/pkg/http"
	pkgkafka "SignalPulse/pkg/kafka"
	applogger "SignalPulse/pkg/logger"
	"SignalPulse/pkg/metrics"
	"SignalPulse/pkg/queue"
	"SignalPulse/pkg/server"

	goredis "github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lc := &applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if lc.Level == "" {
		lc.Level = "info"
	}
	if lc.Format == "" {
		lc.Format = "json"
	}
	if lc.Output == "" {
		lc.Output = "stdout"
	}
	return applogger.New(lc)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCandleStore creates the in-memory candle store the engine reads from.
func ProvideCandleStore(cfg *config.Config) repository.CandleStore {
	return internalrepo.NewMemoryCandleStore(cfg.Engine.HistoryLimit)
}

// ProvideClickHouseClient creates a ClickHouse client when the
// clickhouse sink or consumer path is configured; nil otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Sink.Type != "clickhouse" && !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	table := candleTable(cfg)
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		"CREATE TABLE IF NOT EXISTS " + table + ` (
			ts DateTime,
			symbol String,
			timeframe String,
			open Float64,
			high Float64,
			low Float64,
			close Float64,
			volume Float64
		) ENGINE=ReplacingMergeTree ORDER BY (symbol, timeframe, ts)`,
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

func candleTable(cfg *config.Config) string {
	table := cfg.ClickHouse.Table
	if table == "" {
		table = "candles"
	}
	return cfg.ClickHouse.Database + "." + table
}

// ProvideKafkaProducer creates a Kafka producer for the kafka sink; nil otherwise.
// When log aggregation is enabled the producer doubles as the transport
// for batched error logs.
func ProvideKafkaProducer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Producer, error) {
	if cfg.Sink.Type != "kafka" {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	if agg := cfg.Logging.Aggregation; agg.Enabled && agg.Topic != "" {
		interval := agg.Interval
		if interval <= 0 {
			interval = 30 * time.Second
		}
		threshold := agg.Threshold
		if threshold <= 0 {
			threshold = 100
		}
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   interval,
			CountThreshold: threshold,
			Topic:          agg.Topic,
			Publisher:      producer,
		})
	}

	return producer, nil
}

// ProvideCandleStorage creates ClickHouse candle storage.
func ProvideCandleStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewClickHouseStorage(chClient.DB(), candleTable(cfg))
}

// ProvideCandlePublisher creates the Kafka candle publisher.
func ProvideCandlePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer when enabled.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaCandlesHandler registers the handler for the candles topic.
func ProvideKafkaCandlesHandler(store repository.Storage, m repository.Metrics, cfg *config.Config) *usecase.KafkaCandlesHandler {
	if store == nil {
		return nil
	}
	return usecase.NewKafkaCandlesHandler(cfg.Kafka.Topic, store, m)
}

// ProvideCandleStream creates the exchange kline WebSocket stream.
func ProvideCandleStream(cfg *config.Config, l *applogger.Logger) repository.CandleStream {
	tfs := make([]repository.Timeframe, 0, len(cfg.Stream.Timeframes))
	for _, s := range cfg.Stream.Timeframes {
		tfs = append(tfs, repository.NormalizeTimeframe(s))
	}
	if len(tfs) == 0 {
		tfs = []repository.Timeframe{repository.TF1m, repository.TF1h}
	}
	return stream.New(
		cfg.Stream.URL,
		cfg.Stream.Symbols,
		tfs,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
		l,
	)
}

// ProvideSignalEngine creates the signal engine.
func ProvideSignalEngine(cfg *config.Config, l *applogger.Logger, m repository.Metrics) domsvc.SignalEngine {
	opts := []engine.Option{
		engine.WithLogger(l),
		engine.WithMetrics(m),
	}
	if cfg.Engine.CacheCapacity > 0 {
		opts = append(opts, engine.WithCacheCapacity(cfg.Engine.CacheCapacity))
	}
	return engine.New(opts...)
}

// ProvideCandleProcessor creates the ingest fan-out use case.
func ProvideCandleProcessor(
	store repository.CandleStore,
	pub repository.Publisher,
	storage repository.Storage,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.CandleProcessor {
	return usecase.NewCandleProcessor(store, pub, storage, m, cfg.Sink.Type)
}

// ProvideCandleCollector creates the candle collector use case.
func ProvideCandleCollector(
	s repository.CandleStream,
	processor *usecase.CandleProcessor,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.CandleCollector {
	maxRPS := cfg.Stream.MaxPerSecond
	if maxRPS <= 0 {
		maxRPS = 50
	}
	pipe := mid.NewIngestPipeline(processor, m,
		mid.WithMaxRPS(maxRPS),
		mid.WithBufferSize(2000),
	)
	return usecase.NewCandleCollector(s, processor, m, pipe)
}

// ProvideRedisClient creates a shared Redis client when enabled.
func ProvideRedisClient(cfg *config.Config) *goredis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideSignalService wires the engine behind the application service
// with a response cache (Redis when available, process-local otherwise).
func ProvideSignalService(
	store repository.CandleStore,
	eng domsvc.SignalEngine,
	rdb *goredis.Client,
	archive *usecase.WeightArchive,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.SignalService {
	svc := usecase.NewSignalService(store, eng, cfg.Engine.HistoryLimit)
	svc.SetLogger(l)
	if archive != nil {
		svc.SetArchive(archive)
	}

	ttl := cfg.Redis.ResponseTTL
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if rdb != nil {
		svc.SetCache(icache.NewRedisCache(rdb, cfg.Redis.Prefix), ttl)
	} else {
		svc.SetCache(icache.NewTTLCache(), ttl)
	}
	return svc
}

// ProvideCandlesUseCase creates the candles read use case.
func ProvideCandlesUseCase(store repository.CandleStore) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(store)
}

// ProvideLearnQueue creates the Redis-backed queue consuming accuracy reports.
func ProvideLearnQueue(
	rdb *goredis.Client,
	svc *usecase.SignalService,
	cfg *config.Config,
	l *applogger.Logger,
) *queue.RedisQueue {
	if rdb == nil {
		return nil
	}
	qc := &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}
	return queue.NewRedisConsumer(l, qc, rdb, []queue.Job{usecase.NewLearnJob(svc)},
		queue.WithKeyPrefix("signalpulse:queue"))
}

// ProvideWeightArchive creates durable weight-vector storage backed by
// Redis; nil when Redis is disabled, in which case learned weights live
// only in process memory.
func ProvideWeightArchive(cfg *config.Config, l *applogger.Logger) (*usecase.WeightArchive, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	rc, err := pcache.NewRedisCache(
		pcache.WithRedisHost(cfg.Redis.Host),
		pcache.WithRedisPort(cfg.Redis.Port),
		pcache.WithRedisPassword(cfg.Redis.Password),
		pcache.WithRedisDB(cfg.Redis.DB),
		pcache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("weight archive cache: %w", err)
	}
	layered := pcache.NewLayeredCache(rc, pcache.WithLayeredMemorySize(256))
	return usecase.NewWeightArchive(layered, l), nil
}

// ProvideBackfiller creates the REST history loader; nil when disabled.
func ProvideBackfiller(cfg *config.Config, store repository.CandleStore, l *applogger.Logger) *history.Backfiller {
	if cfg.Stream.BackfillBars <= 0 || cfg.Stream.RESTURL == "" {
		return nil
	}
	return history.New(cfg.Stream.RESTURL, store, l)
}

// ProvideHTTPHandler creates the Echo route handler.
func ProvideHTTPHandler(
	l *applogger.Logger,
	signals *usecase.SignalService,
	candles *usecase.CandlesUseCase,
	learnQ *queue.RedisQueue,
	chClient *pkgch.Client,
) xhttp.Handler {
	h := api.NewSignalsEchoHandler(l, signals, candles)
	if learnQ != nil {
		h.SetLearnQueue(learnQ)
	}
	if chClient != nil {
		h.AddHealthCheck(chClient)
	}
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.CandleCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaCandlesHandler,
	chClient *pkgch.Client,
	handler xhttp.Handler,
	learnQ *queue.RedisQueue,
	backfiller *history.Backfiller,
	archive *usecase.WeightArchive,
	eng domsvc.SignalEngine,
) *server.App {
	var mh pkgkafka.MessageHandler
	if kh != nil {
		mh = kh
	}
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.LoggingHook{L: l})
	}

	app := server.New(cfg, l, collector, consumer, mh, chClient)
	app.SetHTTPHandler(handler)
	if learnQ != nil {
		app.SetLearnQueue(learnQ)
	}
	if collector != nil {
		app.Processor = collector.Processor()
	}
	if backfiller != nil || archive != nil {
		tfs := make([]repository.Timeframe, 0, len(cfg.Stream.Timeframes))
		for _, s := range cfg.Stream.Timeframes {
			tfs = append(tfs, repository.NormalizeTimeframe(s))
		}
		app.SetWarmup(func(ctx context.Context) {
			if archive != nil {
				archive.Restore(ctx, cfg.Stream.Symbols, tfs, eng)
			}
			if backfiller != nil {
				backfiller.Backfill(ctx, cfg.Stream.Symbols, tfs, cfg.Stream.BackfillBars)
			}
		})
	}
	return app
}
