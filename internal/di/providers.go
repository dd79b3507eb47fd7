package di

import (
	"context"
	"fmt"
	"time"

	"ValuPull/internal/domain/models"
	domrepo "ValuPull/internal/domain/repository"
	domsvc "ValuPull/internal/domain/service"
	"ValuPull/internal/handler/api"
	"ValuPull/internal/registry"
	internalrepo "ValuPull/internal/repository"
	"ValuPull/internal/service/llm"
	"ValuPull/internal/service/scraper"
	"ValuPull/internal/usecase"
	"ValuPull/pkg/cache"
	pkgch "ValuPull/pkg/clickhouse"
	"ValuPull/pkg/config"
	xhttp "ValuPull/pkg/http"
	pkgkafka "ValuPull/pkg/kafka"
	applogger "ValuPull/pkg/logger"
	"ValuPull/pkg/metrics"
	"ValuPull/pkg/server"
)

// ProvideLogger creates the application logger.
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
		lc.Format = "console"
	}
	if lc.Output == "" {
		lc.Output = "stdout"
	}
	return applogger.New(lc)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the schema.
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if db == "" {
		db = "valupull"
	}
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		"CREATE TABLE IF NOT EXISTS " + db + ".valuations (" +
			"ts DateTime, address String, source String, " +
			"valuation_amount Nullable(Float64), status LowCardinality(String), " +
			"error_message String, session_id String" +
			") ENGINE=MergeTree ORDER BY (session_id, ts)",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled || len(cfg.Kafka.Brokers) == 0 {
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
	return producer, nil
}

// ProvideCache creates the Redis valuation cache, or nil when disabled.
func ProvideCache(cfg *config.Config) (*cache.RedisCache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	c, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Host),
		cache.WithRedisPort(cfg.Cache.Port),
		cache.WithRedisPassword(cfg.Cache.Password),
		cache.WithRedisDB(cfg.Cache.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, nil
}

// ProvideValuationLog creates ClickHouse-backed valuation log storage.
func ProvideValuationLog(chClient *pkgch.Client, cfg *config.Config) domrepo.ValuationLog {
	db := cfg.ClickHouse.Database
	if db == "" {
		db = "valupull"
	}
	table := cfg.ClickHouse.Table
	if table == "" {
		table = "valuations"
	}
	return internalrepo.NewClickHouseValuationLog(chClient.DB(), db+"."+table)
}

// ProvideEventPublisher creates the Kafka valuation publisher, or nil when
// no producer is configured.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config) domrepo.EventPublisher {
	if producer == nil {
		return nil
	}
	topic := cfg.Kafka.Topic
	if topic == "" {
		topic = "valuations"
	}
	return internalrepo.NewKafkaValuationPublisher(producer, topic)
}

// ProvideSources builds the source registry: the config override when
// present, otherwise the built-in defaults for the configured strategy.
func ProvideSources(cfg *config.Config) []models.ValuationSource {
	if len(cfg.Sources) > 0 {
		out := make([]models.ValuationSource, 0, len(cfg.Sources))
		for _, s := range cfg.Sources {
			out = append(out, models.ValuationSource{Name: s.Name, QueryTarget: s.QueryTarget})
		}
		return out
	}
	return registry.Sources(cfg.Extractor.Strategy)
}

// ProvideExtractor selects the extraction strategy.
func ProvideExtractor(cfg *config.Config, logger *applogger.Logger) (domsvc.Extractor, error) {
	switch cfg.Extractor.Strategy {
	case "page":
		return scraper.New(logger,
			scraper.WithTimeout(cfg.Scraper.Timeout),
			scraper.WithUserAgent(cfg.Scraper.UserAgent),
			scraper.WithKeywords(cfg.Scraper.Keywords),
		), nil
	default:
		baseURL := cfg.Perplexity.BaseURL
		if baseURL == "" {
			baseURL = "https://api.perplexity.ai"
		}
		return llm.New(cfg.Perplexity.APIKey, baseURL, logger,
			llm.WithModel(cfg.Perplexity.Model),
			llm.WithSampling(cfg.Perplexity.Temperature, cfg.Perplexity.MaxTokens),
			llm.WithTimeout(cfg.Perplexity.Timeout),
		)
	}
}

// ProvideAggregator creates the aggregation orchestrator.
func ProvideAggregator(
	sources []models.ValuationSource,
	extractor domsvc.Extractor,
	store domrepo.ValuationLog,
	publisher domrepo.EventPublisher,
	valCache *cache.RedisCache,
	m domrepo.Metrics,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.Aggregator {
	opts := []usecase.AggregatorOption{}
	if publisher != nil {
		opts = append(opts, usecase.WithPublisher(publisher))
	}
	if valCache != nil {
		ttl := cfg.Cache.TTL
		if ttl <= 0 {
			ttl = 10 * time.Minute
		}
		opts = append(opts, usecase.WithCache(valCache, ttl))
	}
	return usecase.NewAggregator(sources, extractor, store, m, logger, opts...)
}

// ProvideHandler creates the HTTP handler.
func ProvideHandler(logger *applogger.Logger, agg *usecase.Aggregator, store domrepo.ValuationLog) xhttp.Handler {
	return api.NewValuationsEchoHandler(logger, agg, store)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	valCache *cache.RedisCache,
	handler xhttp.Handler,
) *server.App {
	app := server.New(cfg, logger, chClient, producer, handler)
	if valCache != nil {
		app.SetCacheCloser(valCache)
	}
	return app
}
