package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"cart-service/internal/api"
	"cart-service/internal/catalog"
	"cart-service/internal/config"
	"cart-service/internal/repository"
	"cart-service/internal/service"
	"cart-service/internal/session"
	"cart-service/internal/sharding"
	"cart-service/migrations"
)

func connectDB(shard int, dsn string) (*sql.DB, error) {
	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Info().Msgf("Connected to DB shard %d", shard)
				return db, nil
			}
		}
		log.Warn().Err(err).Msgf("Retry %d: Failed to connect to DB shard %d", i+1, shard)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to DB shard %d after retries: %w", shard, err)
}

func main() {
	cfg := config.Load()
	if cfg.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbs := make([]*sql.DB, 0, len(cfg.DBShards))
	for i, dsn := range cfg.DBShards {
		db, err := connectDB(i, dsn)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()
		dbs = append(dbs, db)
	}

	if err := migrations.AutoMigrateOrders(3, dbs...); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate orders table")
	}
	if err := migrations.AutoMigrateOrderLines(3, dbs...); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate order_lines table")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	kafkaWriter := config.NewKafkaWriter(cfg.KafkaBrokers, cfg.OrderTopic)
	defer kafkaWriter.Close()
	menuReader := config.NewKafkaReader(cfg.KafkaBrokers, cfg.MenuTopic, cfg.MenuGroupID)
	defer menuReader.Close()

	router := sharding.NewShardRouter(len(dbs))

	catalogClient := catalog.NewClient(cfg.APIBaseURL, cfg.RestaurantID, rdb, cfg.CatalogCacheTTL)
	cartRepo := repository.NewCartRepository(rdb, cfg.CartTTL)
	orderRepo := repository.NewOrderRepository(dbs, router)

	cartService := service.NewCartService(cartRepo, catalogClient)
	checkoutService := service.NewCheckoutService(cartRepo, orderRepo, catalogClient, kafkaWriter, rdb)

	// keep cached menu items in step with the catalog
	go catalog.NewConsumer(menuReader, catalogClient).Start(ctx)

	e := echo.New()
	e.HideBanner = true

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(10),
				Burst:     20,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.RealIP(), nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowHeaders:  []string{echo.HeaderContentType, echo.HeaderAuthorization, session.HeaderName, "Idempotent-Key"},
		ExposeHeaders: []string{session.HeaderName},
	}))
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))
	e.Use(session.JWT([]byte(cfg.JWTSecret)))

	api.RegisterRoutes(e, api.NewCartHandler(cartService), api.NewCheckoutHandler(checkoutService))

	e.GET("/cart/health", func(c echo.Context) error {
		status := "ok"
		if err := rdb.Ping(c.Request().Context()).Err(); err != nil {
			status = "degraded"
		}
		return c.JSON(200, map[string]interface{}{
			"status":  status,
			"service": "cart-service",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	go func() {
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error shutting down HTTP server")
	}
}
