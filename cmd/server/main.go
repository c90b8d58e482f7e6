package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/moisesdreckmann/projetoreactnative/internal/api"
	"github.com/moisesdreckmann/projetoreactnative/internal/catalog"
	"github.com/moisesdreckmann/projetoreactnative/internal/checkout"
	"github.com/moisesdreckmann/projetoreactnative/internal/docstore"
	"github.com/moisesdreckmann/projetoreactnative/internal/events"
	"github.com/moisesdreckmann/projetoreactnative/internal/identity"
	"github.com/moisesdreckmann/projetoreactnative/internal/orders"
	"github.com/moisesdreckmann/projetoreactnative/internal/session"
	"github.com/moisesdreckmann/projetoreactnative/internal/storage"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	HTTPPort        string
	BaseURL         string
	MongoURI        string
	MongoDBName     string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    string
	AdminKey        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		BaseURL:         getEnv("BASE_URL", "http://localhost:8080"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "pizzadelivery"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", ""),
		AdminKey:        getEnv("ADMIN_KEY", ""),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Remote document store
	mongoDB, err := docstore.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoDB.Client().Disconnect(context.Background())
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)

	store := docstore.NewMongoStore(mongoDB)
	if err := docstore.EnsureOrderIndexes(ctx, mongoDB, orders.Collection); err != nil {
		log.Fatalf("Failed to ensure order indexes: %v", err)
	}

	// Redis backs the catalog cache and the identity fallback cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")

	catalogService := catalog.NewService(store, catalog.NewRedisCache(redisClient))
	sessionCache := session.NewRedisCache(redisClient)
	feed := orders.NewFeed(store)

	// Order events are optional: without brokers, submissions still
	// work and only the admin notifications are lost.
	var publisher checkout.Publisher
	if cfg.KafkaBrokers != "" {
		brokers := strings.Split(cfg.KafkaBrokers, ",")
		kafkaPublisher := events.NewKafkaPublisher(brokers...)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher

		notifier := events.NewNotifier(brokers...)
		defer notifier.Close()
		go notifier.Run(ctx)
		log.Printf("Kafka order events enabled on %s", cfg.KafkaBrokers)
	}

	files, err := storage.NewGridFSStore(mongoDB, cfg.BaseURL)
	if err != nil {
		log.Fatalf("Failed to create file store: %v", err)
	}

	// Stand-in identity provider for local runs; swap for the hosted
	// provider client in production.
	provider := identity.NewMemoryProvider()
	defer provider.Close()

	server := api.NewServer(api.Config{
		Store:        store,
		Catalog:      catalogService,
		Feed:         feed,
		Publisher:    publisher,
		Files:        files,
		Provider:     provider,
		SessionCache: sessionCache,
		AdminKey:     cfg.AdminKey,
	})
	go server.Sessions().Run(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      server.Router(cfg.RequestTimeout),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // the order feed streams indefinitely
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Ordering server starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
