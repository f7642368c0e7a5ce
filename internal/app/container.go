package app

import (
	"context"
	"fmt"

	"github.com/kapu/higapro-site/internal/cache"
	"github.com/kapu/higapro-site/internal/config"
	"github.com/kapu/higapro-site/internal/contact"
	"github.com/kapu/higapro-site/internal/header"
	"github.com/kapu/higapro-site/internal/mail"
	"github.com/kapu/higapro-site/internal/metrics"
	"github.com/kapu/higapro-site/internal/microcms"
	"github.com/kapu/higapro-site/internal/news"
	"github.com/kapu/higapro-site/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// Container bundles the assembled services of the site process.
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Server   *server.Server
	Sessions *header.Registry
	Content  *microcms.Repository

	closers []func()
}

// Close releases infrastructure in reverse order of construction.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build assembles all services. Redis is optional: without REDIS_HOST the CMS
// client fetches on every request.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	container = &Container{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			container.Close()
			container = nil
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	siteMetrics := metrics.New(registry)

	// Content
	cmsOpts := []microcms.Option{microcms.WithObserver(siteMetrics.ObserveCMS)}
	checks := map[string]func(context.Context) bool{}
	if cfg.Redis.Enabled() {
		cacheSvc, cacheErr := cache.NewCacheService(ctx, cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if cacheErr != nil {
			return nil, fmt.Errorf("failed to create cache service: %w", cacheErr)
		}
		container.closers = append(container.closers, func() {
			_ = cacheSvc.Close()
		})
		cmsOpts = append(cmsOpts, microcms.WithCache(cacheSvc))
		checks["redis"] = cacheSvc.IsConnected
	} else {
		logger.Info("Redis not configured, CMS responses are not cached")
	}

	cmsClient := microcms.NewClient(cfg.MicroCMS.BaseURL, cfg.MicroCMS.APIKey, logger, cmsOpts...)
	container.Content = microcms.NewRepository(cmsClient, cfg.MicroCMS.Revalidate)

	// Contact
	var (
		relay     contact.Relay
		mailRelay contact.Relay
	)
	if cfg.Mail.User != "" {
		mailer, mailErr := mail.NewMailer(mail.Config{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			User:     cfg.Mail.User,
			Password: cfg.Mail.Password,
		}, logger)
		if mailErr != nil {
			return nil, fmt.Errorf("failed to create mailer: %w", mailErr)
		}
		mailRelay = contact.NewMailRelay(mailer)
		relay = mailRelay
	}
	if cfg.Contact.RelayURL != "" {
		relay = contact.NewHTTPRelay(cfg.Contact.RelayURL, logger)
		logger.Info("Contact form uses remote mail relay", zap.String("url", cfg.Contact.RelayURL))
	}
	if relay == nil {
		return nil, fmt.Errorf("no mail relay configured")
	}

	submitter := contact.NewSubmitter(contact.NewValidator(), relay, logger).
		WithObserver(siteMetrics.ObserveContact)

	// Pages
	container.Sessions = header.NewRegistry(cfg.Header.SessionTTL, logger)
	container.Server = server.New(server.Dependencies{
		Config:    cfg.Server,
		Content:   container.Content,
		Sessions:  container.Sessions,
		News:      news.NewPresenter(cfg.Server.SiteURL),
		Submitter: submitter,
		MailRelay: mailRelay,
		Metrics:   siteMetrics,
		Gatherer:  registry,

		HealthChecks: checks,
		Logger:       logger,
	})

	return container, nil
}
