package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"librarycard/internal/assets"
	"librarycard/internal/card"
	"librarycard/internal/catalog"
	"librarycard/internal/cloudinary"
	"librarycard/internal/config"
	"librarycard/internal/handler"
	"librarycard/internal/httpmiddleware"
	"librarycard/internal/logging"
	"librarycard/internal/recommend"
	"librarycard/internal/render"
	"librarycard/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	for _, w := range cfg.Warnings {
		log.Warn("config", zap.String("warning", w))
	}
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, log); err != nil {
		log.Fatal("http server failed", zap.Error(err))
	}
}

func runHTTP(cfg config.App, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.StoreBackend == "redis" || cfg.SuggestionCache == "redis" {
		redisClient = store.NewRedisClient(cfg.RedisAddr)
		defer func() { _ = redisClient.Close() }()
	}

	records, closeStore, err := openStore(ctx, cfg, redisClient)
	if err != nil {
		return err
	}
	defer closeStore()
	log.Info("record store ready", zap.String("backend", cfg.StoreBackend))

	engine, err := newEngine(ctx, cfg, redisClient, log)
	if err != nil {
		return err
	}

	fetcher := assets.New(cfg.AssetTimeout, assets.DefaultMaxBytes)
	fetcher.PhotoHosts = cfg.PhotoHosts
	logo := assets.NewLogo(cfg.LogoPath, cfg.LogoURL, fetcher, log)

	vopts := []card.Option{card.WithPhotoHosts(cfg.PhotoHosts...)}
	if cfg.StrictCoursePairing {
		vopts = append(vopts, card.WithCoursePairing(catalog.Table{}))
	}

	deps := handler.Deps{
		Store:     records,
		Validator: card.NewValidator(vopts...),
		Renderer:  render.New(render.WithLogger(log)),
		Engine:    engine,
		Photos:    fetcher,
		Logo:      logo,
		Log:       log,
		Checks:    map[string]handler.HealthCheck{},
	}
	if cfg.CloudinaryEnabled() {
		deps.Uploader = cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		log.Info("cloudinary configured", zap.String("cloud", cfg.CloudinaryCloudName))
	} else {
		log.Info("cloudinary not configured, inline photos are stored as sent")
	}
	if redisClient != nil {
		deps.Checks["redis"] = func(ctx context.Context) bool {
			return redisClient.Ping(ctx).Err() == nil
		}
	}
	if cfg.LogoPath != "" || cfg.LogoURL != "" {
		deps.Checks["logo"] = func(ctx context.Context) bool { return logo.Health(ctx) == nil }
	}

	limiter := httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	go sweep(ctx, limiter)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestID())
	r.Use(httpmiddleware.Logger(log, "/healthz", "/metrics"))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Use(httpmiddleware.SecurityHeaders())
	r.Use(limiter.GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handler.New(deps).Register(r)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server forced shutdown", zap.Error(err))
	}
	log.Info("server exited")
	return nil
}

func openStore(ctx context.Context, cfg config.App, rc *redis.Client) (store.RecordStore, func(), error) {
	switch cfg.StoreBackend {
	case "memory", "":
		return store.NewMemory(), func() {}, nil
	case "postgres":
		pg, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, func() { _ = pg.Close() }, nil
	case "redis":
		return store.NewRedis(rc, "librarycard"), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
}

func newEngine(ctx context.Context, cfg config.App, rc *redis.Client, log *zap.Logger) (*recommend.Engine, error) {
	opts := []recommend.Option{
		recommend.WithTimeout(cfg.SuggestionTimeout),
		recommend.WithLogger(log),
	}
	if cfg.GenAIAPIKey == "" {
		log.Info("suggestion backend not configured, static catalogue only")
		return recommend.NewEngine(opts...), nil
	}
	gen, err := recommend.NewGenAIGenerator(ctx, cfg.GenAIAPIKey, cfg.GenAIModel)
	if err != nil {
		return nil, err
	}
	opts = append(opts, recommend.WithGenerator(gen))
	switch cfg.SuggestionCache {
	case "memory":
		opts = append(opts, recommend.WithCache(recommend.NewLRUCache(cfg.SuggestionCacheMax, cfg.SuggestionCacheTTL)))
	case "redis":
		opts = append(opts, recommend.WithCache(recommend.NewRedisCache(rc, "librarycard", cfg.SuggestionCacheTTL)))
	case "none", "":
	default:
		return nil, fmt.Errorf("unknown SUGGESTION_CACHE %q", cfg.SuggestionCache)
	}
	return recommend.NewEngine(opts...), nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", httpmiddleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Disposition", "X-Card-Degraded", httpmiddleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	}
	return c
}

func sweep(ctx context.Context, l *httpmiddleware.SimpleTokenBucket) {
	t := time.NewTicker(5 * time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Sweep(10 * time.Minute)
		}
	}
}
