package di

import (
	"context"
	"fmt"
	"time"

	"DrawPulse/internal/domain/repository"
	domsvc "DrawPulse/internal/domain/service"
	"DrawPulse/internal/handler/api"
	mid "DrawPulse/internal/middleware"
	internalrepo "DrawPulse/internal/repository"
	icache "DrawPulse/internal/service/cache"
	"DrawPulse/internal/service/drawfeed"
	"DrawPulse/internal/services/forecast"
	"DrawPulse/internal/usecase"
	pkgch "DrawPulse/pkg/clickhouse"
	"DrawPulse/pkg/config"
	xhttp "DrawPulse/pkg/http"
	pkgkafka "DrawPulse/pkg/kafka"
	applogger "DrawPulse/pkg/logger"
	"DrawPulse/pkg/metrics"
	"DrawPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
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
	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
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
	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideStorage creates ClickHouse storage with schema initialized.
func ProvideStorage(chClient *pkgch.Client) (*internalrepo.ClickHouseStorage, error) {
	store := internalrepo.NewClickHouseStorage(chClient.DB())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideStorageIface adapts concrete storage to the domain interface.
func ProvideStorageIface(store *internalrepo.ClickHouseStorage) repository.Storage {
	return store
}

// ProvideOutcomeStore exposes the read side of the same storage.
func ProvideOutcomeStore(store *internalrepo.ClickHouseStorage) repository.OutcomeStore {
	return store
}

// ProvidePublisher creates Kafka publisher repository.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.DecisionTopic, cfg.Kafka.OutcomeTopic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
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

// ProvideKafkaOutcomesHandler registers handler for the outcomes topic.
func ProvideKafkaOutcomesHandler(store repository.Storage, m repository.Metrics, cfg *config.Config) *usecase.KafkaOutcomesHandler {
	return usecase.NewKafkaOutcomesHandler(cfg.Kafka.OutcomeTopic, store, m)
}

// ProvideDrawStream creates the draw feed client for the configured mode.
func ProvideDrawStream(cfg *config.Config) repository.DrawStream {
	return drawfeed.New(drawfeed.Config{
		Mode:           cfg.Feed.Mode,
		BaseURL:        cfg.Feed.BaseURL,
		WebSocketURL:   cfg.Feed.WebSocketURL,
		APIKey:         cfg.Feed.APIKey,
		Game:           cfg.Feed.Game,
		Interval:       cfg.Feed.Interval,
		PollInterval:   cfg.Feed.PollInterval,
		RequestTimeout: cfg.Feed.RequestTimeout,
		MaxRetries:     cfg.Feed.MaxRetries,
		ReconnectDelay: cfg.Feed.ReconnectDelay,
		PingInterval:   cfg.Feed.PingInterval,
	})
}

// ProvideEngine creates the forecasting engine.
func ProvideEngine(cfg *config.Config) domsvc.Engine {
	return forecast.NewEngine(forecast.Config{
		BufferCapacity: cfg.Engine.BufferCapacity,
	})
}

// ProvideBytesCache selects Redis or in-memory decision caching.
func ProvideBytesCache(cfg *config.Config) icache.BytesCache {
	if cfg.Cache.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideOutcomeProcessor creates the backend routing processor.
func ProvideOutcomeProcessor(
	pub repository.Publisher,
	store repository.Storage,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.OutcomeProcessor {
	return usecase.NewOutcomeProcessor(
		pub,
		store,
		m,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvidePredictionService creates the orchestration service.
func ProvidePredictionService(
	engine domsvc.Engine,
	proc *usecase.OutcomeProcessor,
	outs repository.OutcomeStore,
	bc icache.BytesCache,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.PredictionService {
	return usecase.NewPredictionService(engine, proc, outs, bc, m, l, usecase.PredictionServiceConfig{
		TrainInterval:    cfg.Engine.TrainInterval,
		RetrainEveryN:    cfg.Engine.RetrainEveryN,
		PreloadRecords:   cfg.Engine.PreloadRecords,
		AutoPredict:      cfg.Engine.AutoPredict,
		DecisionCacheTTL: cfg.Engine.DecisionCacheTTL,
	})
}

// ProvideHistoryUseCase creates the history query use case.
func ProvideHistoryUseCase(outs repository.OutcomeStore) *usecase.HistoryUseCase {
	return usecase.NewHistoryUseCase(outs)
}

// ProvideDrawCollector creates the draw collector use case.
func ProvideDrawCollector(
	stream repository.DrawStream,
	svc *usecase.PredictionService,
	m repository.Metrics,
) *usecase.DrawCollector {
	// Pipeline between the feed and the engine/persistence path
	pipe := mid.NewRealtimePipeline(svc, m,
		mid.WithBufferSize(2000),
	)
	return usecase.NewDrawCollector(stream, svc, m, pipe)
}

// ProvideHTTPHandler creates the Echo API handler.
func ProvideHTTPHandler(
	l *applogger.Logger,
	svc *usecase.PredictionService,
	hist *usecase.HistoryUseCase,
	collector *usecase.DrawCollector,
	store repository.Storage,
) xhttp.Handler {
	return api.NewForecastHandler(l, svc, hist, collector, store)
}

// producerLogPublisher adapts the Kafka producer to the log collector's
// publisher contract.
type producerLogPublisher struct {
	p *pkgkafka.Producer
}

func (a producerLogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return a.p.Publish(ctx, topic, nil, payload)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.DrawCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaOutcomesHandler,
	chClient *pkgch.Client,
	handler xhttp.Handler,
	proc *usecase.OutcomeProcessor,
	producer *pkgkafka.Producer,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}

	// Ship aggregated error logs through Kafka when a log topic is set
	if cfg.Kafka.LogTopic != "" && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.LogTopic,
			Publisher:      producerLogPublisher{p: producer},
		})
	}

	app := server.New(cfg, l, collector, consumer, kh, chClient, handler)
	app.OutcomeProc = proc
	return app
}
