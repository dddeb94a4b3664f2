package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/accounting"
	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/checkout"
	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/config"
	"github.com/noah-isme/backend-pos/internal/discount"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/health"
	"github.com/noah-isme/backend-pos/internal/inventory"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/receipt"
	"github.com/noah-isme/backend-pos/internal/resilience"
	"github.com/noah-isme/backend-pos/internal/revenue"
	"github.com/noah-isme/backend-pos/internal/security"
)

// Dependencies enumerates the infrastructure handed to Build.
type Dependencies struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Redis    *redis.Client
	Registry *prometheus.Registry
	Receipts io.Writer
	Tracing  bool
}

// App is the wired register service.
type App struct {
	Router    http.Handler
	Registers *checkout.Registry
	Revenue   *revenue.Tracker
	Ledger    *accounting.Ledger
	Inventory inventory.Store
}

// Build wires catalogs, sinks and HTTP routes. Redis-backed implementations
// replace the in-memory ones when a client is provided.
func Build(ctx context.Context, deps Dependencies) (*App, error) {
	cfg := deps.Config
	if cfg == nil {
		return nil, fmt.Errorf("app: config is required")
	}
	var reg prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if deps.Registry != nil {
		reg, gatherer = deps.Registry, deps.Registry
	}
	logger := deps.Logger

	source, err := catalog.NewMemorySource(catalog.DefaultItems())
	if err != nil {
		return nil, fmt.Errorf("load item catalog: %w", err)
	}
	var cache *catalog.Cache
	if deps.Redis != nil {
		cache = catalog.NewCache(deps.Redis, cfg.CatalogCacheTTL, "pos:")
	}
	breaker := resilience.NewBreaker(cfg.BreakerThreshold, cfg.BreakerOpenFor)
	breaker.Target = "catalog"
	breaker.Logger = logger
	breaker.Metrics = resilience.NewMetrics(cfg.Obs.MetricsNamespace, reg)
	catalogService, err := catalog.NewService(catalog.ServiceConfig{
		Source: catalog.GuardedSource{Source: source, Breaker: breaker},
		Cache:  cache,
	})
	if err != nil {
		return nil, err
	}
	rules, err := discount.NewCatalog(discount.DefaultRules())
	if err != nil {
		return nil, fmt.Errorf("load discount catalog: %w", err)
	}

	var stock inventory.Store = inventory.NewMemoryStore(inventory.DefaultStock())
	var eventStore events.EventStore
	if deps.Redis != nil {
		redisStock := inventory.RedisStore{Client: deps.Redis}
		if cfg.SeedInventory {
			if err := redisStock.Seed(ctx, inventory.DefaultStock()); err != nil {
				return nil, fmt.Errorf("seed inventory: %w", err)
			}
		}
		stock = redisStock
		eventStore = events.RedisStore{Client: deps.Redis}
	}

	metrics := obs.NewCheckoutMetrics(cfg.Obs.MetricsNamespace, reg)
	tracker := &revenue.Tracker{Logger: logger.With().Str("component", "revenue").Logger(), Gauge: metrics.Revenue}
	ledger := &accounting.Ledger{Logger: logger.With().Str("component", "accounting").Logger()}
	receipts := deps.Receipts
	if receipts == nil {
		receipts = io.Discard
	}

	registry, err := checkout.NewRegistry(checkout.Deps{
		Catalog:    catalogService,
		Discounts:  rules,
		Receipt:    &receipt.Printer{Out: receipts, Currency: cfg.CurrencyCode},
		Accounting: ledger,
		Inventory:  stock,
		Events:     &events.Bus{Store: eventStore, Notifiers: []events.Notifier{tracker}},
		Metrics:    metrics,
		Logger:     logger.With().Str("component", "register").Logger(),
	})
	if err != nil {
		return nil, err
	}

	catalogHandler := catalog.NewHandler(catalog.HandlerConfig{Service: catalogService})
	checkoutHandler := checkout.NewHandler(checkout.HandlerConfig{
		Registry:  registry,
		Validator: validator.New(validator.WithRequiredStructEnabled()),
	})
	idem := common.Idem{TTL: cfg.IdempotencyTTL, Prefix: "pos:idem:"}
	healthHandler := health.Handler{RedisTimeout: 300 * time.Millisecond}
	if deps.Redis != nil {
		idem.R = deps.Redis
		healthHandler.Checker = health.RedisChecker{Client: deps.Redis}
	}

	httpMetrics := obs.NewHTTPMetrics(cfg.Obs.MetricsNamespace, obs.ParseBucketsCSV(cfg.Obs.HTTPBucketsMS), reg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.TagsMiddleware)
	if deps.Tracing {
		r.Use(obs.TracingMiddleware)
	}
	r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers)
	r.Use(security.BodyLimit{Max: cfg.MaxBodyBytes}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Idempotency-Key"},
		ExposedHeaders: []string{"Idempotent-Replayed"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/items/{id}", catalogHandler.Item)
		v.Get("/revenue", tracker.Summary)
		inventory.NewHandler(stock).Routes(v)
		checkoutHandler.Routes(v, idem.Middleware)
	})

	logger.Info().
		Bool("redis", deps.Redis != nil).
		Str("currency", cfg.CurrencyCode).
		Int("items", len(source.Items())).
		Int("discount_rules", len(rules.Rules())).
		Msg("register service wired")

	return &App{
		Router:    r,
		Registers: registry,
		Revenue:   tracker,
		Ledger:    ledger,
		Inventory: stock,
	}, nil
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
