package container

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"go-image-framer/internal/config"
	"go-image-framer/internal/logger"
	"go-image-framer/internal/observer"
	"go-image-framer/internal/processor"
	"go-image-framer/internal/repository"
	"go-image-framer/internal/service"
	"go-image-framer/internal/storage"
	"go-image-framer/internal/transport"
	"go-image-framer/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config         *config.Config
	store          *storage.LocalStore
	events         *observer.EventPublisher
	pool           *service.WorkerPool
	registry       *prometheus.Registry
	framingService service.FramingService
	handler        http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	store := storage.NewLocalStore(cfg.StaticDir, "/static")
	if err := store.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("failed to prepare static directory: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metricsObserver, err := observer.NewMetricsObserver(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metricsObserver)

	// 0 means one worker per CPU
	pool := service.NewWorkerPool(cfg.MaxConcurrentJobs)
	pool.Start()

	opts := ProcessorOptions(cfg)
	framingService := service.NewFramingService(
		store,
		repository.NewFileImageRepository(cfg.AutoOrient),
		processor.NewBorderCompositor(opts),
		processor.NewHistogramRenderer(opts),
		validation.NewInputValidator(cfg.MaxBorderPercent),
		events,
		cfg.ProcessingTimeout,
		service.WithWorkerPool(pool),
	)

	csrf := transport.NewCSRFManager(cfg.SecretKey, cfg.CSRFTokenTTL)
	handler := transport.NewHandler(framingService, csrf, registry, cfg)

	return &Container{
		config:         cfg,
		store:          store,
		events:         events,
		pool:           pool,
		registry:       registry,
		framingService: framingService,
		handler:        handler,
	}, nil
}

// ProcessorOptions translates configuration into processor options
func ProcessorOptions(cfg *config.Config) processor.Options {
	policy := processor.ConvertChannels
	if cfg.ChannelPolicy == config.ChannelPolicyReject {
		policy = processor.RejectChannels
	}
	return processor.DefaultOptions().
		WithJPEGQuality(cfg.JPEGQuality).
		WithChannelPolicy(policy)
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// FramingService returns the request orchestrator
func (c *Container) FramingService() service.FramingService {
	return c.framingService
}

// Close stops the worker pool and waits for pending observer notifications
func (c *Container) Close() {
	c.pool.Close()
	c.events.Wait()
}
