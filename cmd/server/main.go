package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/rahmatfadhil/gostore/internal/config"
	"github.com/rahmatfadhil/gostore/internal/es"
	"github.com/rahmatfadhil/gostore/internal/handlers"
	"github.com/rahmatfadhil/gostore/internal/handlers/cart"
	"github.com/rahmatfadhil/gostore/internal/lifecycle"
	"github.com/rahmatfadhil/gostore/internal/logging"
	mwauth "github.com/rahmatfadhil/gostore/internal/middleware/auth"
	"github.com/rahmatfadhil/gostore/internal/mykafka"
	"github.com/rahmatfadhil/gostore/internal/redis"
	"github.com/rahmatfadhil/gostore/internal/service/token"
	"github.com/rahmatfadhil/gostore/internal/storage"
	httpserver "github.com/rahmatfadhil/gostore/internal/transport/http"
	"github.com/rahmatfadhil/gostore/pkg/db"
	loggingmw "github.com/rahmatfadhil/gostore/pkg/middleware/logging"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	ctx := context.Background()

	gormDB, err := db.Open(ctx, configuration.DSN())
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}
	if err := config.Migrate(gormDB); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)

	var prod *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		prod, err = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
		if err != nil {
			log.Fatal(err)
		}
	}

	var esClient *elasticsearch.Client
	if configuration.ES_URL != "" {
		esClient, err = es.NewClient(configuration)
		if err != nil {
			logger.Warn("elasticsearch unavailable, search disabled", "error", err)
			esClient = nil
		}
	}

	var cache *redis.Client
	if configuration.REDIS_URL != "" {
		cache, err = redis.Initialize(configuration.REDIS_URL)
		if err != nil {
			logger.Warn("redis unavailable, unread counts uncached", "error", err)
			cache = nil
		}
	}

	store, err := storage.New(configuration.UPLOAD_DIR)
	if err != nil {
		log.Fatalf("upload dir error: %v", err)
	}

	manager := lifecycle.NewManager(gormDB)
	tokens := &token.TokenService{DB: gormDB, JWTSecret: jwtSecret, RefreshSecret: refreshSecret}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:                  gormDB,
		Auth:                &mwauth.Middleware{JWTSecret: jwtSecret},
		AuthHandler:         &handlers.AuthHandler{DB: gormDB, Tokens: tokens, Producer: prod},
		ProductHandler:      &handlers.ProductHandler{DB: gormDB, Producer: prod, ES: esClient, Index: "product"},
		ServiceHandler:      &handlers.ServiceHandler{DB: gormDB, Producer: prod},
		OrderHandler:        &handlers.OrderHandler{DB: gormDB, Lifecycle: manager, Producer: prod, Store: store},
		PaymentHandler:      &handlers.PaymentHandler{DB: gormDB, Lifecycle: manager, Producer: prod},
		NotificationHandler: &handlers.NotificationHandler{DB: gormDB, Cache: cache},
		ReportHandler:       &handlers.ReportHandler{DB: gormDB},
		SearchHandler:       &handlers.SearchHandler{ES: esClient, Index: "product"},
		CartHandler:         &cart.CartHandler{DB: gormDB, Producer: prod, Lifecycle: manager},
		UploadDir:           configuration.UPLOAD_DIR,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}
	if err := cache.Close(); err != nil {
		log.Printf("redis close error: %v", err)
	}

	log.Println("shutdown complete")
}
