package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-addons/internal/addon"
	"ms-addons/internal/addon/addon_api"
	addondb "ms-addons/internal/addon/db"
	addoncache "ms-addons/internal/addon/redis"
	"ms-addons/internal/auth"
	"ms-addons/internal/bundle"
	"ms-addons/internal/bundle/bundle_api"
	bundledb "ms-addons/internal/bundle/db"
	"ms-addons/internal/config"
	"ms-addons/internal/database/migrations"
	"ms-addons/internal/kafka"
	"ms-addons/internal/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, relying on environment")
	}

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	ctx := context.Background()

	// --- PostgreSQL Setup ---
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Database.Username, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open Postgres connection: %v", err))
	}
	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)
	defer sqldb.Close()

	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to Postgres: %v", err))
	}
	bunDB := bun.NewDB(sqldb, pgdialect.New())

	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions(), log)
	if err := runner.Run(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
	}

	// --- Redis Setup ---
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("REDIS", fmt.Sprintf("Failed to connect to Redis: %v", err))
	}
	cache := addoncache.NewCache(redisClient, cfg.Redis.AddonTTL)

	// --- Kafka Setup ---
	var addonPublisher addon.KafkaPublisher = kafka.Noop{}
	var bundlePublisher bundle.KafkaPublisher = kafka.Noop{}
	if cfg.Kafka.Enabled {
		topics := []string{cfg.Kafka.Topics.AddonEvents, cfg.Kafka.Topics.BundleEvents, cfg.Kafka.Topics.ExperienceEvents}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics, log); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic bootstrap failed: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.AddonEvents, cfg.Kafka.Topics.BundleEvents)
		defer producer.Close()
		addonPublisher = producer
		bundlePublisher = producer
	}

	// --- Initialize Services ---
	addonRepo := &addondb.DB{Bun: bunDB}
	bundleRepo := &bundledb.DB{Bun: bunDB}

	catalog := addon.NewCatalogService(addonRepo, cache, bundleRepo, addonPublisher, log)
	validator := bundle.NewValidator(catalog, log)
	bundles := bundle.NewBundleService(bundleRepo, bundlePublisher, validator, log)

	addonHandler := addon_api.NewHandler(catalog, log)
	bundleHandler := bundle_api.NewHandler(bundles, log)

	// --- Experience event consumer: clear bundles for deleted experiences ---
	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	if cfg.Kafka.Enabled {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.ExperienceEvents, cfg.Kafka.GroupID, log)
		defer consumer.Close()
		go consumer.Start(consumerCtx, func(ctx context.Context, experienceID string) error {
			return bundles.ClearBundle(ctx, experienceID)
		})
	}

	// --- Setup Router ---
	requireAuth := auth.Middleware(auth.NewVerifier(cfg.Auth.JWTSecret))

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/addons", addonHandler.ListAddons)
		r.Get("/addons/{addonId}", addonHandler.GetAddon)
		r.Get("/experiences/{experienceId}/bundle", bundleHandler.GetBundle)
		r.Get("/experiences/{experienceId}/bundle/commissions", bundleHandler.GetCommissions)
		r.Post("/experiences/{experienceId}/bundle/price", bundleHandler.QuoteBundle)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/addons", addonHandler.CreateAddon)
			r.Put("/addons/{addonId}", addonHandler.UpdateAddon)
			r.Patch("/addons/{addonId}/availability", addonHandler.SetAvailability)
			r.Post("/addons/{addonId}/media", addonHandler.AddMedia)
			r.Post("/addons/{addonId}/tags", addonHandler.AddTag)
			r.Delete("/addons/{addonId}/tags/{tag}", addonHandler.RemoveTag)
			r.Delete("/addons/{addonId}", addonHandler.DeleteAddon)

			r.Put("/experiences/{experienceId}/bundle", bundleHandler.ReplaceBundle)
			r.Post("/experiences/{experienceId}/bundle/validate", bundleHandler.ValidateBundle)
			r.Delete("/experiences/{experienceId}/bundle", bundleHandler.DeleteBundle)
		})
	})

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("Add-on Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("SERVER", "Shutdown signal received, cleaning up...")
	stopConsumer()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal("SERVER", fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	log.Info("SERVER", "Server exited gracefully")
}
