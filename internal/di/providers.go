package di

import (
	"context"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/repository"
	"StockPulse/internal/handler/api"
	"StockPulse/internal/handler/ws"
	internalrepo "StockPulse/internal/repository"
	"StockPulse/internal/service/ratelimit"
	"StockPulse/internal/services/forecast"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/cache"
	pkgch "StockPulse/pkg/clickhouse"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	pkgkafka "StockPulse/pkg/kafka"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
	"StockPulse/pkg/queue"
	"StockPulse/pkg/server"
	"StockPulse/pkg/tracing"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const initTimeout = 10 * time.Second

// ProvideLogger builds the application logger. With the collector enabled,
// repeated warnings and errors are aggregated and shipped to Kafka.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.Logging.Collector.Enabled && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Logging.Collector.Interval,
			CountThreshold: cfg.Logging.Collector.CountThreshold,
			Topic:          cfg.Logging.Collector.Topic,
			Service:        cfg.Tracing.ServiceName,
			Publisher:      producer,
		})
	}
	return l.With(applogger.String("service", cfg.Tracing.ServiceName)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideTracing installs the global tracer provider.
func ProvideTracing(cfg *config.Config) (tracing.Shutdown, error) {
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	return tracing.Init(ctx, tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		ServiceName:  cfg.Tracing.ServiceName,
		Environment:  cfg.Environment,
		Endpoint:     cfg.Tracing.Endpoint,
		SamplingRate: cfg.Tracing.SamplingRate,
	})
}

// ProvideKafkaProducer creates a Kafka producer, or nil when no brokers are
// configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithDelivery(cfg.Kafka.RequiredAcks, cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideClickHouseClient connects to ClickHouse and creates the sales
// schema. It returns nil when sales live in memory.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Storage.Sales != "clickhouse" {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithAddress(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithPool(10, 5, 5*time.Minute),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := client.InitSchema(ctx, pkgch.SalesSchema(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideSalesStore selects the sales history store.
func ProvideSalesStore(cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) repository.SalesStore {
	if ch != nil {
		s := internalrepo.NewCHSalesStore(ch)
		s.SetLogger(l)
		return s
	}
	var opts []internalrepo.MemorySalesOption
	if cfg.Storage.SampleData {
		seed := cfg.Forecast.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		opts = append(opts, internalrepo.WithSampleSales(seed))
	}
	return internalrepo.NewMemorySalesStore(opts...)
}

// ProvideInventoryStore selects the catalog store. A fresh PostgreSQL table
// is seeded with the sample catalog.
func ProvideInventoryStore(cfg *config.Config, l *applogger.Logger) (repository.InventoryStore, error) {
	if cfg.Storage.Inventory != "postgres" {
		return internalrepo.NewMemoryInventoryStore(internalrepo.SampleCatalog()), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	s, err := internalrepo.NewPGInventoryStore(ctx, cfg.Postgres.URL, cfg.Postgres.MaxConns, cfg.Postgres.MinConns)
	if err != nil {
		return nil, err
	}
	s.SetLogger(l)
	var seed []models.InventoryItem
	if cfg.Storage.SampleData {
		seed = internalrepo.SampleCatalog()
	}
	if err := s.InitSchema(ctx, seed); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// ProvideOverrides creates the uploaded-history layer over the store.
func ProvideOverrides(store repository.SalesStore) *internalrepo.OverrideHistoryProvider {
	return internalrepo.NewOverrideHistoryProvider(store)
}

// ProvideRedisClient connects to Redis, or returns nil when disabled.
func ProvideRedisClient(cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	client, err := cache.NewRedisClient(
		cache.WithRedisEndpoint(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB),
		cache.WithRedisPool(cfg.Redis.PoolSize, cfg.Redis.PoolSize/2, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("redis client: %w", err)
	}
	return client, nil
}

// ProvideCache builds the forecast cache backend: a process-local LRU, or a
// memory layer in front of Redis when Redis is enabled.
func ProvideCache(cfg *config.Config, client *redis.Client) (cache.Service, error) {
	if client == nil {
		return cache.NewMemoryCache(
			cache.WithMemoryLimits(cfg.Cache.MemorySize, cfg.Cache.ForecastTTL),
		)
	}
	return cache.NewLayeredCache(
		cache.NewRedisCacheFromClient(client, cfg.Redis.Prefix),
		cache.WithL1(cfg.Cache.MemorySize, cfg.Cache.MemoryTTL),
	)
}

// ProvideEngine creates the forecasting engine.
func ProvideEngine(cfg *config.Config, store cache.Service, m *metrics.Recorder, l *applogger.Logger) *forecast.Engine {
	opts := []forecast.Option{forecast.WithMetrics(m)}
	if cfg.Forecast.Seed != 0 {
		opts = append(opts, forecast.WithRand(forecast.NewRand(cfg.Forecast.Seed)))
	}
	e := forecast.NewEngine(forecast.NewForecastCache(store, cfg.Cache.ForecastTTL), opts...)
	e.SetLogger(l)
	return e
}

// ProvideSalesPublisher returns the Kafka publisher in kafka mode, nil otherwise.
func ProvideSalesPublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.SalesPublisher {
	if cfg.Backend.Type != usecase.BackendKafka || producer == nil {
		return nil
	}
	return internalrepo.NewKafkaSalesPublisher(producer, cfg.Kafka.Topic)
}

// ProvideSalesIngestor creates the sales write path.
func ProvideSalesIngestor(
	cfg *config.Config,
	store repository.SalesStore,
	inventory repository.InventoryStore,
	overrides *internalrepo.OverrideHistoryProvider,
	pub repository.SalesPublisher,
	engine *forecast.Engine,
	m *metrics.Recorder,
	l *applogger.Logger,
) *usecase.SalesIngestor {
	s := usecase.NewSalesIngestor(store, inventory, overrides, pub, engine, m, cfg.Backend.Type)
	s.SetLogger(l)
	return s
}

// ProvideForecastUseCase creates the forecast read path.
func ProvideForecastUseCase(
	cfg *config.Config,
	engine *forecast.Engine,
	overrides *internalrepo.OverrideHistoryProvider,
	store repository.SalesStore,
	inventory repository.InventoryStore,
	m *metrics.Recorder,
	l *applogger.Logger,
) *usecase.ForecastUseCase {
	u := usecase.NewForecastUseCase(engine, overrides, store, inventory, m, cfg.Forecast.ReportWorkers)
	u.SetLogger(l)
	return u
}

// ProvideSalesEventsHandler creates the consumer side of kafka mode.
func ProvideSalesEventsHandler(cfg *config.Config, ingestor *usecase.SalesIngestor, engine *forecast.Engine, m *metrics.Recorder, l *applogger.Logger) *usecase.SalesEventsHandler {
	h := usecase.NewSalesEventsHandler(cfg.Kafka.Topic, ingestor, engine, m)
	h.SetLogger(l)
	return h
}

// ProvideKafkaConsumer creates the sales event consumer in kafka mode, nil
// otherwise.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if cfg.Backend.Type != usecase.BackendKafka {
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
	consumer.SetLogger(l)
	consumer.WithConsumerHook(pkgkafka.NewHookChain(
		pkgkafka.NewTracingHook(),
		pkgkafka.NewLoggingHook(l, 500*time.Millisecond),
	))
	return consumer, nil
}

// ProvideHub creates the websocket hub for live forecast updates.
func ProvideHub(l *applogger.Logger) *ws.Hub {
	return ws.NewHub(l)
}

// ProvideWarmQueue creates the Redis-backed warm-up queue with its job
// registered, or nil when warm-up is disabled.
func ProvideWarmQueue(cfg *config.Config, client *redis.Client, forecasts *usecase.ForecastUseCase, locks cache.Service, hub *ws.Hub, l *applogger.Logger) *queue.RedisQueue {
	if !cfg.Warmup.Enabled || client == nil {
		return nil
	}
	q := queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    cfg.Warmup.Workers,
		RetryLimit: 3,
		RetryDelay: 10 * time.Second,
	}, client, queue.ModeProducerConsumer, queue.WithKeyPrefix(cfg.Redis.Prefix+":"+cfg.Warmup.Queue))

	job := usecase.NewForecastWarmJob(forecasts, locks, hub)
	job.SetLogger(l)
	q.RegisterJobs(job)
	return q
}

// ProvideWarmScheduler feeds the warm-up queue, or returns nil without one.
func ProvideWarmScheduler(cfg *config.Config, forecasts *usecase.ForecastUseCase, q *queue.RedisQueue, l *applogger.Logger) *usecase.WarmScheduler {
	if q == nil {
		return nil
	}
	s := usecase.NewWarmScheduler(forecasts, q, models.NormalizeModelType(cfg.Warmup.Model), cfg.Warmup.Interval)
	s.SetLogger(l)
	return s
}

// ProvideLimiter creates the per-client rate limiter, or nil when disabled.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
}

// ProvideForecastHandler creates the REST handler.
func ProvideForecastHandler(l *applogger.Logger, forecasts *usecase.ForecastUseCase, ingestor *usecase.SalesIngestor) *api.ForecastEchoHandler {
	return api.NewForecastEchoHandler(l, forecasts, ingestor)
}

// ProvideHTTPServer assembles the Echo server with routes, rate limiting and
// dependency health checks.
func ProvideHTTPServer(
	cfg *config.Config,
	l *applogger.Logger,
	fh *api.ForecastEchoHandler,
	hub *ws.Hub,
	limiter *ratelimit.Limiter,
	store repository.SalesStore,
	inventory repository.InventoryStore,
	client *redis.Client,
) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORSOrigins...),
		xhttp.WithMetrics(cfg.Metrics.Enabled, time.Second),
		xhttp.WithHealthChecks(healthChecks(store, inventory, client)...),
	}
	if limiter != nil {
		opts = append(opts, xhttp.WithMiddleware(ratelimit.Middleware(limiter, "/healthz", "/metrics", "/ws/forecasts")))
	}
	return xhttp.NewServer(l, []xhttp.Handler{fh, hub}, opts...)
}

func healthChecks(store repository.SalesStore, inventory repository.InventoryStore, client *redis.Client) []xhttp.HealthCheck {
	checks := []xhttp.HealthCheck{
		{Name: "sales_store", Check: func(c echo.Context) error { return store.Health(c.Request().Context()) }},
		{Name: "inventory_store", Check: func(c echo.Context) error { return inventory.Health(c.Request().Context()) }},
	}
	if client != nil {
		checks = append(checks, xhttp.HealthCheck{
			Name:  "redis",
			Check: func(c echo.Context) error { return client.Ping(c.Request().Context()).Err() },
		})
	}
	return checks
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	shutdown tracing.Shutdown,
	producer *pkgkafka.Producer,
	ch *pkgch.Client,
	inventory repository.InventoryStore,
	store cache.Service,
	client *redis.Client,
	consumer *pkgkafka.Consumer,
	events *usecase.SalesEventsHandler,
	q *queue.RedisQueue,
	scheduler *usecase.WarmScheduler,
	hub *ws.Hub,
	limiter *ratelimit.Limiter,
) *server.App {
	opts := []server.Option{
		server.WithTracing(shutdown),
		server.WithHub(hub),
	}
	if consumer != nil {
		opts = append(opts, server.WithConsumer(consumer, events))
	}
	if q != nil {
		opts = append(opts, server.WithWarmup(q, scheduler))
	}
	if limiter != nil {
		opts = append(opts, server.WithLimiter(limiter))
	}

	var closers []server.Closer
	if producer != nil {
		closers = append(closers, server.Closer{Name: "kafka producer", Close: producer.Close})
	}
	if ch != nil {
		closers = append(closers, server.Closer{Name: "clickhouse", Close: ch.Close})
	}
	closers = append(closers,
		server.Closer{Name: "inventory store", Close: inventory.Close},
		server.Closer{Name: "cache", Close: store.Close},
	)
	if client != nil {
		closers = append(closers, server.Closer{Name: "redis", Close: client.Close})
	}
	opts = append(opts, server.WithClosers(closers...))

	return server.New(cfg, l, srv, opts...)
}
