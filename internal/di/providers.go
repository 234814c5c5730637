package di

import (
	"context"
	"fmt"
	"os"

	"SensorStat/internal/domain/repository"
	"SensorStat/internal/domain/service"
	internalrepo "SensorStat/internal/repository"
	"SensorStat/internal/services/analytics"
	"SensorStat/internal/services/ingest"
	"SensorStat/internal/usecase"
	"SensorStat/pkg/cache"
	pkgch "SensorStat/pkg/clickhouse"
	"SensorStat/pkg/config"
	pkgkafka "SensorStat/pkg/kafka"
	"SensorStat/pkg/logger"
	"SensorStat/pkg/metrics"
	"SensorStat/pkg/runner"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, func(), error) {
	l, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: cfg.Log.TimeFormat,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return l, func() { _ = l.Close() }, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideIngestor creates the CSV ingestion stage.
func ProvideIngestor(cfg *config.Config) (service.Ingestor, error) {
	ing, err := ingest.NewCSVIngestor(ingest.Bounds{
		MinVal:           cfg.Ingest.MinVal,
		MaxVal:           cfg.Ingest.MaxVal,
		AnomalyThreshold: cfg.Ingest.AnomalyThreshold,
	}, ingest.WithMaxLineBytes(cfg.Ingest.MaxLineBytes))
	if err != nil {
		return nil, err
	}
	return ing, nil
}

// ProvideSummarizer creates the statistics engine.
func ProvideSummarizer(cfg *config.Config) service.Summarizer {
	return analytics.NewEngine(analytics.Options{
		WindowSize:          cfg.Stats.WindowSize,
		ShrinkPartialWindow: cfg.Stats.ShrinkPartialWindow,
	})
}

// ProvideReporters builds every sink listed under report.sinks, in order.
// Sinks already built are closed if a later one fails.
func ProvideReporters(ctx context.Context, cfg *config.Config, rec *metrics.Recorder) ([]repository.Reporter, error) {
	reporters := make([]repository.Reporter, 0, len(cfg.Report.Sinks))
	fail := func(err error) ([]repository.Reporter, error) {
		for _, r := range reporters {
			_ = r.Close()
		}
		return nil, err
	}

	for _, sink := range cfg.Report.Sinks {
		switch sink {
		case config.SinkConsole:
			reporters = append(reporters, internalrepo.NewConsoleReporter(os.Stdout))
		case config.SinkKafka:
			producer, err := ProvideKafkaProducer(cfg, rec)
			if err != nil {
				return fail(err)
			}
			reporters = append(reporters, internalrepo.NewKafkaReporter(producer, cfg.Kafka.Topic))
		case config.SinkClickHouse:
			client, err := ProvideClickHouseClient(ctx, cfg)
			if err != nil {
				return fail(err)
			}
			table := cfg.ClickHouse.Database + "." + cfg.ClickHouse.Table
			reporters = append(reporters, internalrepo.NewClickHouseReporter(client.DB(), table, client))
		case config.SinkRedis:
			c, err := ProvideRedisCache(ctx, cfg)
			if err != nil {
				return fail(err)
			}
			reporters = append(reporters, internalrepo.NewRedisReporter(c, cfg.Redis.TTL))
		default:
			return fail(fmt.Errorf("unknown sink %q", sink))
		}
	}
	return reporters, nil
}

// ProvideKafkaProducer creates a Kafka producer whose metrics join rec's registry.
func ProvideKafkaProducer(cfg *config.Config, rec *metrics.Recorder) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithMetrics(rec.Registry()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideClickHouseClient connects to ClickHouse and ensures the summaries table exists.
func ProvideClickHouseClient(ctx context.Context, cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(ctx,
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	if err := client.InitSchema(ctx, internalrepo.SummarySchema(cfg.ClickHouse.Database, cfg.ClickHouse.Table)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideRedisCache connects to Redis.
func ProvideRedisCache(ctx context.Context, cfg *config.Config) (cache.Service, error) {
	c, err := cache.NewRedisCache(ctx,
		cache.WithRedisAddr(cfg.Redis.Host, cfg.Redis.Port),
		cache.WithRedisAuth(cfg.Redis.Password, cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, nil
}

// ProvideBatchProcessor creates the per-file use case.
func ProvideBatchProcessor(
	ing service.Ingestor,
	sum service.Summarizer,
	reporters []repository.Reporter,
	m repository.Metrics,
	l *logger.Logger,
	cfg *config.Config,
) *usecase.BatchProcessor {
	return usecase.NewBatchProcessor(ing, sum, reporters, m, l, cfg.Report.Timeout)
}

// ProvideApp creates the batch application.
func ProvideApp(cfg *config.Config, proc *usecase.BatchProcessor, rec *metrics.Recorder, l *logger.Logger) *runner.App {
	return runner.New(cfg, proc, rec, l)
}
