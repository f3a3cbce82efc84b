package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/feelmycode/parabole/internal/auth"
	"github.com/feelmycode/parabole/internal/config"
	"github.com/feelmycode/parabole/internal/handler"
	"github.com/feelmycode/parabole/internal/repository"
	"github.com/feelmycode/parabole/internal/service"
	"github.com/feelmycode/parabole/internal/validator"
	"github.com/feelmycode/parabole/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	initLogger(cfg)

	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.DB.DSN(), cfg.DB.ConnectRetries)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      "Parabole",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New()) // X-Request-ID
	app.Use(logger.New())

	validate := validator.New()
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())

	users := repository.NewUserRepository(pool)
	sellers := repository.NewSellerRepository(pool)
	products := repository.NewProductRepository(pool)
	coupons := repository.NewCouponRepository(pool)
	events := repository.NewEventRepository(pool)
	participants := repository.NewParticipantRepository(pool)
	carts := repository.NewCartRepository(pool)
	orders := repository.NewOrderRepository(pool)

	userService := service.NewUserService(users, tokens)
	sellerService := service.NewSellerService(users, sellers)
	productService := service.NewProductService(pool, products, sellers)
	couponService := service.NewCouponService(coupons, sellers)
	eventService := service.NewEventService(pool, service.EventRepositories{
		Events:       events,
		Participants: participants,
		Products:     products,
		Coupons:      coupons,
		Sellers:      sellers,
	})
	cartService := service.NewCartService(carts, products, coupons)
	orderService := service.NewOrderService(pool, service.OrderRepositories{
		Orders:   orders,
		Carts:    carts,
		Products: products,
		Coupons:  coupons,
		Sellers:  sellers,
	})

	handler.RegisterRoutes(app, handler.Handlers{
		Health:  handler.NewHealthHandler(pool),
		User:    handler.NewUserHandler(userService, validate),
		Seller:  handler.NewSellerHandler(sellerService, validate),
		Product: handler.NewProductHandler(productService, validate),
		Coupon:  handler.NewCouponHandler(couponService, validate),
		Event:   handler.NewEventHandler(eventService, validate),
		Cart:    handler.NewCartHandler(cartService, validate),
		Order:   handler.NewOrderHandler(orderService, validate),
	}, handler.AuthMiddleware(tokens))

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// In-flight requests finish before the pool goes away.
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	pool.Close()
	log.Info().Msg("server stopped")
}

// initLogger configures the global zerolog logger.
func initLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Pretty {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
		return
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
