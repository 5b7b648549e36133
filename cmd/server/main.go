package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/vamazon/storefront/internal/adapter/handler"
	"github.com/vamazon/storefront/internal/adapter/notifier"
	"github.com/vamazon/storefront/internal/adapter/storage"
	"github.com/vamazon/storefront/internal/auth"
	"github.com/vamazon/storefront/internal/config"
	"github.com/vamazon/storefront/internal/core/service"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}
	log.Println("connected to mysql")

	mysqlAdapter := storage.NewMySQLAdapter(db)
	if err := mysqlAdapter.RunMigrations(cfg.MigrationsDir); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	log.Println("migrations applied")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	log.Println("connected to redis")

	redisAdapter := storage.NewRedisAdapter(rdb)

	// Initialize services
	mailNotifier := notifier.NewSMTPNotifier(cfg.SMTP)
	authProvider := auth.NewProvider(cfg.JWTSecret, cfg.TokenTTL)

	cartService := service.NewCartService(mysqlAdapter, mysqlAdapter, redisAdapter)
	checkoutService := service.NewCheckoutService(
		mysqlAdapter, mysqlAdapter, mysqlAdapter, redisAdapter,
		mailNotifier, cfg.NotifyTimeout,
	)

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(cartService, checkoutService, authProvider)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpHandler.Router(),
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Println("HTTP server stopped")

	rdb.Close()
	db.Close()
	log.Println("connections closed")
}
