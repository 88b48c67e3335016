package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/pricebook/internal/pricebook/application"
	"github.com/wyfcoding/pricebook/internal/pricebook/domain"
	"github.com/wyfcoding/pricebook/internal/pricebook/infrastructure/audit"
	"github.com/wyfcoding/pricebook/internal/pricebook/infrastructure/authz"
	"github.com/wyfcoding/pricebook/internal/pricebook/interfaces/consumer"
	"github.com/wyfcoding/pricebook/pkg/cache"
	"github.com/wyfcoding/pricebook/pkg/config"
	"github.com/wyfcoding/pricebook/pkg/logger"
	"github.com/wyfcoding/pricebook/pkg/metrics"
	"github.com/wyfcoding/pricebook/pkg/mq"
)

func main() {
	configPath := flag.String("config", "configs/pricebook.toml", "path to the TOML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logger); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(cfg.ServiceName)
	if err := m.Register(reg); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	var authorizer application.SourceAuthorizer
	if cfg.Book.SourceRegistry.Enabled {
		client, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()

		registry := authz.NewRedisSourceRegistry(client, cfg.Book.SourceRegistry.Key, m.AuthorizedSources)
		if err := registry.Refresh(ctx); err != nil {
			return err
		}
		g.Go(func() error { return registry.Run(ctx, cfg.Book.SourceRegistry.RefreshEvery()) })
		authorizer = registry
	} else {
		static := authz.NewStaticSourceSet(cfg.Book.AuthorizedSources...)
		m.AuthorizedSources.Set(float64(len(static.Sources())))
		authorizer = static
	}

	var sink application.AuditSink = audit.NewLogSink(nil)
	if cfg.Audit.BufferSize > 0 {
		async := audit.NewAsyncSink(sink, cfg.Audit.BufferSize, m.AuditDroppedTotal)
		defer async.Close()
		sink = async
	}

	core := domain.NewConsolidatedBook(domain.NewDefaultAggregationStrategy())
	book := application.NewInstrumentedBook(application.NewAuthorizingBook(core, authorizer, sink), m)

	reader := mq.NewConsumer(cfg.Kafka)
	defer reader.Close()
	feed := consumer.NewQuoteFeedConsumer(reader, book, cfg.Book.Instrument, m.FeedMessagesTotal)
	g.Go(func() error { return feed.Run(ctx) })

	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, reg)
		g.Go(func() error { return srv.Run(ctx) })
	}

	logger.Info(ctx, "Price book service started",
		"service", cfg.ServiceName,
		"environment", cfg.Environment,
		"instrument", cfg.Book.Instrument,
	)

	err = g.Wait()
	logger.Info(context.Background(), "Price book service stopped", "error", err)
	return err
}
