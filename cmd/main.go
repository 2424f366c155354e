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

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/sharath018/idea-factory-backend/config"
	"github.com/sharath018/idea-factory-backend/database"
	"github.com/sharath018/idea-factory-backend/internal/auth"
	"github.com/sharath018/idea-factory-backend/internal/notification"
	"github.com/sharath018/idea-factory-backend/middleware"
	"github.com/sharath018/idea-factory-backend/routes"
	"github.com/sharath018/idea-factory-backend/utils"
)

// @title Idea Factory API
// @version 1.0
// @description Business idea catalog: categories, ideas, bulk uploads, reviews and idea details.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	log, err := utils.NewLogger(cfg.AppEnv)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	decimal.MarshalJSONWithoutQuotes = true

	shutdownTracing := utils.InitTracing(ctx, utils.TracingConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: cfg.OtelServiceName,
		Environment: cfg.AppEnv,
		Endpoint:    cfg.OtelEndpoint,
		Insecure:    cfg.OtelInsecure,
		SampleRatio: cfg.OtelSampleRatio,
	}, log)

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatal("database connection failed", "error", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("database migration failed", "error", err)
	}
	log.Info("database migrations completed")

	// Cache: redis when configured, in-process otherwise
	cache := utils.NewMemoryCache()
	if cfg.RedisAddr != "" {
		client, err := utils.InitRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warn("redis unavailable, using in-memory cache", "error", err)
		} else {
			defer client.Close()
			cache = utils.NewRedisCache(client)
			log.Info("redis cache connected", "addr", cfg.RedisAddr)
		}
	}

	var google auth.GoogleVerifier
	if cfg.FirebaseCredentialsPath != "" {
		verifier, err := utils.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseProjectID)
		if err != nil {
			log.Warn("firebase initialization failed, google tokens will not be verified", "error", err)
		} else {
			google = verifier
			log.Info("firebase initialized")
		}
	}

	var publisher notification.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = notification.NewKafkaPublisher(utils.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaCatalogTopic))
	}

	svc := routes.NewServices(cfg, routes.Infra{
		DB:        db,
		Cache:     cache,
		Publisher: publisher,
		Mailer:    utils.NewMailer(cfg, log),
		Google:    google,
		Log:       log,
	})
	defer func() {
		if err := svc.Publisher.Close(); err != nil {
			log.Warn("publisher close failed", "error", err)
		}
	}()

	consumerDone := make(chan struct{})
	if len(cfg.KafkaBrokers) > 0 {
		reader := utils.NewKafkaReader(cfg.KafkaBrokers, cfg.KafkaCatalogTopic, cfg.KafkaGroupID)
		go func() {
			defer close(consumerDone)
			notification.StartConsumer(ctx, reader, svc.Notifications, log)
		}()
		log.Info("kafka catalog events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaCatalogTopic)
	} else {
		close(consumerDone)
		log.Info("kafka not configured, catalog events handled in process")
	}

	// Seed data
	if err := svc.Categories.SeedDefaults(ctx); err != nil {
		log.Fatal("failed to seed categories", "error", err)
	}
	if err := svc.Auth.SeedDefaultAdmin(ctx); err != nil {
		log.Fatal("failed to seed default admin", "error", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.OtelEnabled {
		router.Use(otelgin.Middleware(cfg.OtelServiceName))
	}
	router.Use(middleware.AttachTraceContext())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	routes.Setup(router, cfg, svc)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
	<-consumerDone
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracer shutdown failed", "error", err)
	}
}
