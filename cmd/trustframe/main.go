package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/NeuralTrust/TrustFrame/docs"
	"github.com/NeuralTrust/TrustFrame/pkg/config"
	"github.com/NeuralTrust/TrustFrame/pkg/dispatcher"
	"github.com/NeuralTrust/TrustFrame/pkg/guard"
	handlers "github.com/NeuralTrust/TrustFrame/pkg/handlers/http"
	"github.com/NeuralTrust/TrustFrame/pkg/infra/cache"
	"github.com/NeuralTrust/TrustFrame/pkg/infra/cache/event"
	"github.com/NeuralTrust/TrustFrame/pkg/infra/cache/subscriber"
	"github.com/NeuralTrust/TrustFrame/pkg/infra/httpx"
	infraLogger "github.com/NeuralTrust/TrustFrame/pkg/infra/logger"
	"github.com/NeuralTrust/TrustFrame/pkg/infra/metrics"
	"github.com/NeuralTrust/TrustFrame/pkg/middleware"
	"github.com/NeuralTrust/TrustFrame/pkg/patterns"
	"github.com/NeuralTrust/TrustFrame/pkg/sanitizer"
	"github.com/NeuralTrust/TrustFrame/pkg/server"
	"github.com/NeuralTrust/TrustFrame/pkg/server/router"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// @title TrustFrame API
// @version 1.0
// @description Content mediation for hostile third-party embeds
// @BasePath /
func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger, closeLogs, err := infraLogger.NewLogger(infraLogger.Options{
		Name:    "trustframe",
		Console: os.Getenv("LOG_CONSOLE") != "false",
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer closeLogs()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config"
	}
	if err := config.Load(configPath); err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	cfg := config.GetConfig()

	table, err := patterns.Load(patterns.LoadOptions{
		File:  cfg.Patterns.File,
		Extra: cfg.Patterns.Extra,
	})
	if err != nil {
		logger.Fatalf("failed to load pattern table: %v", err)
	}
	logger.WithField("patterns", table.String()).Info("pattern table loaded")

	// framing policy memory, shared across replicas when redis is enabled
	var redisClient cache.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewClient(cache.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TLS:      cfg.Redis.TLS,
		}, logger)
		if err != nil {
			logger.WithError(err).Warn("redis unavailable, framing policies stay in memory")
			redisClient = nil
		} else {
			defer func() { _ = redisClient.Close() }()
		}
	}
	var framingOpts []cache.FramingOption
	if redisClient != nil {
		framingOpts = append(framingOpts, cache.WithForgetPublisher(
			cache.NewRedisEventPublisher(redisClient, cache.FramingEventsChannel),
		))
	}
	framing := cache.NewFramingPolicyStore(redisClient, cfg.Dispatcher.FramingTTL, logger, framingOpts...)

	// upstream
	httpClient := httpx.NewFastHTTPClient(
		httpx.WithUserAgent(cfg.Dispatcher.UserAgent),
		httpx.WithMaxResponseBodySize(cfg.Dispatcher.MaxResponseBytes),
	)
	fetcher := httpx.NewObservedFetcher(
		httpx.NewPageFetcher(httpClient, cfg.Dispatcher.UserAgent),
		observeUpstream(logger),
	)
	breakers := httpx.NewHostBreakers(cfg.Dispatcher.BreakerTimeout, cfg.Dispatcher.BreakerFailures)

	providers := make([]dispatcher.Provider, 0, len(cfg.Providers.Providers))
	for _, p := range cfg.Providers.Providers {
		providers = append(providers, dispatcher.Provider{
			Name:  p.Name,
			Hosts: p.Hosts,
			Mode:  dispatcher.Mode(p.Mode),
		})
	}
	registry, err := dispatcher.NewRegistry(providers)
	if err != nil {
		logger.Fatalf("invalid providers config: %v", err)
	}

	mediator := dispatcher.New(dispatcher.Config{
		ScrapeTimeout: cfg.Dispatcher.ScrapeTimeout,
		UserAgent:     cfg.Dispatcher.UserAgent,
		ProxyBase:     cfg.Dispatcher.ProxyBase,
	}, registry, fetcher, framing, breakers, logger)

	sanitizerOpts := []sanitizer.Option{sanitizer.WithPolicy(cfg.Sanitizer.Policy)}
	if len(cfg.Sanitizer.HandlerAttributes) > 0 {
		sanitizerOpts = append(sanitizerOpts, sanitizer.WithHandlerAttributes(cfg.Sanitizer.HandlerAttributes...))
	}
	docSanitizer := sanitizer.New(table, sanitizerOpts...)

	evaluator := guard.NewEvaluator(table, cfg.Guard.AllowDomains)
	routePolicy := guard.RoutePolicy{
		PlaybackRoutes:     cfg.Guard.PlaybackRoutes,
		ContentGuardRoutes: cfg.Guard.ContentGuardRoutes,
	}

	// metrics
	metricsWorker := metrics.NewWorker(logger)
	if cfg.Metrics.Enabled {
		metricsWorker.StartWorkers(cfg.Metrics.Workers)
	}

	middlewareTransport := &middleware.Transport{
		RecoverMiddleware: middleware.NewPanicRecoverMiddleware(logger),
		CORSMiddleware: middleware.NewCORSGlobalMiddleware(
			cfg.CORS.AllowOrigins,
			cfg.CORS.AllowMethods,
			cfg.CORS.AllowCredentials,
			cfg.CORS.ExposeHeaders,
			cfg.CORS.MaxAge,
		),
		RequestContextMiddleware: middleware.NewRequestContextMiddleware(logger),
	}
	if cfg.RateLimit.Enabled {
		limit := cache.RateLimit{Limit: cfg.RateLimit.Limit, Window: cfg.RateLimit.Window}
		var limiter cache.RateLimiter
		if redisClient != nil {
			limiter = cache.NewRedisRateLimiter(redisClient, "fetch", limit)
		} else {
			limiter = cache.NewLocalRateLimiter(limit)
		}
		middlewareTransport.RateLimitMiddleware = middleware.NewRateLimitMiddleware(logger, limiter, cfg.RateLimit.Paths)
	}
	if cfg.Metrics.Enabled {
		middlewareTransport.MetricsMiddleware = middleware.NewMetricsMiddleware(logger, metricsWorker, &metrics.Config{
			EnableUpstreamEvents: cfg.Metrics.EnableUpstream,
			EnableGuardEvents:    cfg.Metrics.EnableGuard,
		})
	}

	embedCfg := handlers.EmbedProxyConfig{
		FailureStatus: cfg.EmbedProxy.FailureStatus,
		FetchTimeout:  cfg.EmbedProxy.FetchTimeout,
	}
	embedHandlers := map[string]handlers.Handler{
		"unframe": handlers.NewEmbedProxyHandler(logger, mediator, embedCfg, "unframe"),
	}
	for _, name := range registry.Names() {
		p, _ := registry.Lookup(name)
		if p.Mode == dispatcher.ModeUnframe {
			embedHandlers[name] = handlers.NewEmbedProxyHandler(logger, mediator, embedCfg, name)
		}
	}

	handlerTransport := handlers.HandlerTransport{
		CleanIframeHandler:     handlers.NewCleanIframeHandler(logger, docSanitizer, "clean_iframe"),
		ContentSecurityHandler: handlers.NewCleanIframeHandler(logger, docSanitizer, "content_security"),
		SanitizedHandler:       handlers.NewSanitizedHandler(logger, mediator, docSanitizer, cfg.Sanitizer.FetchTimeout),
		EmbedProxyHandlers:     embedHandlers,
		ExtractStreamHandler:   handlers.NewExtractStreamHandler(logger, mediator),
		ResolveHandler:         handlers.NewResolveHandler(logger, mediator),
		GuardPolicyHandler: handlers.NewGuardPolicyHandler(logger, evaluator, routePolicy, handlers.GuardIntervals{
			LocationPoll:  cfg.Guard.LocationPoll,
			PopupSweep:    cfg.Guard.PopupSweep,
			GestureWindow: cfg.Guard.GestureWindow,
			Toast:         cfg.Guard.ToastDuration,
		}),
		GuardDecideHandler: handlers.NewGuardDecideHandler(logger, evaluator, routePolicy),
		GetVersionHandler:  handlers.NewGetVersionHandler(logger, table),
	}

	srv := server.NewProxyServer(server.ProxyServerDI{
		Config: cfg,
		Logger: logger,
		Routers: []router.ServerRouter{
			router.NewProxyRouter(middlewareTransport, handlerTransport, cfg),
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Run)
	if redisClient != nil {
		listener := cache.NewRedisEventListener(logger, redisClient, event.Registry)
		cache.RegisterEventSubscriber[event.FramingPolicyForgottenEvent](
			listener, subscriber.NewFramingPolicyForgottenSubscriber(logger, framing),
		)
		g.Go(func() error {
			logger.Info("listening for framing policy events")
			listener.Listen(gctx, cache.FramingEventsChannel)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")
		err := srv.Shutdown()
		metricsWorker.Shutdown()
		return err
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Error("server stopped with error")
		closeLogs()
		os.Exit(1)
	}
	logger.Info("server gracefully stopped")
}

// observeUpstream feeds every upstream fetch into the request's metrics
// collector, when the request carries one.
func observeUpstream(logger *logrus.Logger) httpx.FetchObserver {
	return func(ctx context.Context, host string, status int, elapsed time.Duration, err error) {
		collector, _ := ctx.Value(metrics.CollectorKey).(*metrics.Collector)
		collector.Emit(metrics.NewUpstreamEvent(host, status, elapsed))
		if err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"host":       host,
				"status":     status,
				"elapsed_ms": elapsed.Milliseconds(),
			}).Debug("upstream fetch failed")
		}
	}
}
