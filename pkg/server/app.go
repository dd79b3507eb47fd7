package server

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	pkgch "ValuPull/pkg/clickhouse"
	"ValuPull/pkg/config"
	xhttp "ValuPull/pkg/http"
	pkgkafka "ValuPull/pkg/kafka"
	applogger "ValuPull/pkg/logger"
)

// Closer is anything holding a connection the app should release on shutdown.
type Closer interface {
	Close() error
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	chClient    *pkgch.Client
	producer    *pkgkafka.Producer
	cacheCloser Closer
	httpHandler xhttp.Handler
	httpServer  *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:         cfg,
		logger:      logger,
		chClient:    chClient,
		producer:    producer,
		httpHandler: handler,
	}
}

// SetCacheCloser registers the cache connection for shutdown.
func (a *App) SetCacheCloser(c Closer) { a.cacheCloser = c }

// logPublisher adapts the Kafka producer to the log collector's Publisher.
type logPublisher struct {
	p *pkgkafka.Producer
}

func (lp logPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return lp.p.Publish(ctx, topic, nil, payload)
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	l := a.logger
	if l == nil {
		var err error
		l, err = applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
		if err != nil {
			return err
		}
		a.logger = l
	}

	// Aggregate repeated error logs onto the event stream when configured.
	if a.producer != nil && a.cfg.Logging.Collect.Enabled && a.cfg.Logging.Collect.Topic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   a.cfg.Logging.Collect.Interval,
			CountThreshold: a.cfg.Logging.Collect.Threshold,
			Topic:          a.cfg.Logging.Collect.Topic,
			Publisher:      logPublisher{p: a.producer},
		})
	}

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(a.cfg.Metrics.Path),
	)

	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}
	l.Info("aggregation endpoint ready",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("strategy", a.cfg.Extractor.Strategy),
	)

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(context.Background())
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.logger
	if l == nil {
		var err error
		l, err = applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
		if err != nil {
			log.Printf("failed to create logger: %v", err)
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			l.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	if a.cacheCloser != nil {
		if err := a.cacheCloser.Close(); err != nil {
			l.Warn("cache close error", applogger.Error(err))
		}
	}

	l.RemoveCollector()
	l.Info("shutdown complete")
	return nil
}
