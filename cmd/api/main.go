package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farmacia-catalogo/config"
	"farmacia-catalogo/internal/delivery/http/middleware"
	v1 "farmacia-catalogo/internal/delivery/http/v1"
	"farmacia-catalogo/internal/domain"
	"farmacia-catalogo/internal/infrastructure/cache"
	"farmacia-catalogo/internal/infrastructure/events"
	"farmacia-catalogo/internal/metrics"
	"farmacia-catalogo/internal/repository"
	"farmacia-catalogo/internal/repository/dynamo"
	"farmacia-catalogo/internal/repository/memory"
	"farmacia-catalogo/internal/usecase"
	"farmacia-catalogo/pkg/awscfg"
	"farmacia-catalogo/pkg/logger"
	"farmacia-catalogo/pkg/utils"

	"github.com/NYTimes/gziphandler"
	"golang.org/x/time/rate"
)

const serviceName = "farmacia-catalogo"

var version = "dev"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Initialize Logger
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	ctx := context.Background()

	// --- Catalog store ---
	var (
		productRepo domain.ProductRepository
		publisher   domain.EventPublisher = domain.NopPublisher{}
	)

	needsAWS := cfg.StoreDriver == config.StoreDynamo || cfg.SQSQueueURL != ""
	if needsAWS {
		awsCfg, err := awscfg.Load(ctx, cfg.AWSRegion, cfg.AWSEndpoint)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to load AWS configuration")
		}

		if cfg.StoreDriver == config.StoreDynamo {
			productRepo = dynamo.NewProductRepository(dynamo.NewClient(awsCfg), cfg.TableName, cfg.ConsistentRead)
			log.Info().Str("table", cfg.TableName).Str("region", cfg.AWSRegion).Msg("Using DynamoDB catalog store")
		}
		if pub := events.NewSQSPublisher(events.NewClient(awsCfg), cfg.SQSQueueURL); pub != nil {
			publisher = pub
		}
	}
	if productRepo == nil {
		productRepo = memory.NewProductRepository()
		log.Warn().Msg("Using in-memory catalog store")
	}
	productRepo = repository.NewInstrumented(productRepo)

	// Initialize Cache (In-Memory)
	memCache := cache.NewMemoryCache(cfg.CacheTaxonomyTTL, 10*time.Minute)

	// --- Modules Initialization ---
	codes, err := usecase.NewCodeGenerator()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize code generator")
	}
	validator := usecase.NewValidator(domain.Catalogo)

	catalogUC := usecase.NewCatalogUsecase(productRepo, validator, codes, publisher, cfg)
	searchUC := usecase.NewSearchUsecase(productRepo, cfg)
	statsUC := usecase.NewStatsUsecase(productRepo, domain.Catalogo, cfg)

	gate := middleware.NewAuthGate(utils.NewJWTManager(cfg.JWTSecret))
	mux := v1.NewRouter(v1.Handlers{
		Products: v1.NewProductHandler(catalogUC),
		Browse:   v1.NewBrowseHandler(catalogUC, memCache, cfg.CacheTaxonomyTTL),
		Search:   v1.NewSearchHandler(searchUC),
		Stats:    v1.NewStatsHandler(statsUC),
	}, gate)

	rateLimiter := middleware.NewRateLimiter(
		ctx,
		rate.Limit(cfg.RateLimitRPS),
		cfg.RateLimitBurst,
		time.Minute,   // cleanup period
		3*time.Minute, // client TTL
	)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           newHTTPHandler(mux, rateLimiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(cfg.MetricsPort)
	metrics.Start(metricsSrv)

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	logger.ServiceStart(serviceName, version, cfg.Port)

	// Wait for interrupt signal via channel
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	rateLimiter.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Metrics server forced to shutdown")
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.ServiceStop(serviceName)
}

// newHTTPHandler wraps the router: Recovery, Request Logger, Rate Limit, CORS
// and Gzip, innermost first. CORS sits outside the limiter so 429s carry it.
func newHTTPHandler(mux http.Handler, rateLimiter *middleware.RateLimiter) http.Handler {
	handler := middleware.Recovery(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = middleware.CORS(handler)
	return gziphandler.GzipHandler(handler)
}
