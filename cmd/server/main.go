package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pawsomemeals/storefront/internal/config"
	"github.com/pawsomemeals/storefront/internal/es"
	"github.com/pawsomemeals/storefront/internal/events"
	"github.com/pawsomemeals/storefront/internal/handlers"
	"github.com/pawsomemeals/storefront/internal/logging"
	loggingmw "github.com/pawsomemeals/storefront/internal/middleware/logging"
	"github.com/pawsomemeals/storefront/internal/pricing"
	"github.com/pawsomemeals/storefront/internal/service/cart"
	"github.com/pawsomemeals/storefront/internal/service/order"
	"github.com/pawsomemeals/storefront/internal/service/payment"
	"github.com/pawsomemeals/storefront/internal/service/search"
	"github.com/pawsomemeals/storefront/internal/service/token"
	"github.com/pawsomemeals/storefront/internal/storage"
	"github.com/pawsomemeals/storefront/internal/stripeprovider"
	httpserver "github.com/pawsomemeals/storefront/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Error("init database", "error", err)
		os.Exit(1)
	}
	store := storage.NewGormStore(db)

	provider, err := stripeprovider.New(cfg.StripeSecretKey)
	if err != nil {
		logger.Error("init payment provider", "error", err)
		os.Exit(1)
	}

	producer := events.NewProducer(cfg.KafkaBrokers)
	if producer == nil {
		logger.Info("kafka not configured, events disabled")
	}

	var searchSvc *search.Service
	if cfg.ESURL != "" {
		esClient, err := es.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			logger.Error("init elasticsearch", "error", err)
			os.Exit(1)
		}
		searchSvc = search.NewService(esClient)
	} else {
		logger.Info("elasticsearch not configured, search disabled")
	}

	engine := pricing.NewEngine()
	cartSvc := cart.NewService(store, engine, producer)
	orderSvc := order.NewService(store, engine, producer)
	paymentSvc := payment.NewService(cartSvc, provider)
	tokens := token.NewService(store, cfg.JWTSecret, cfg.RefreshSecret)

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Tokens:         tokens,
		AuthHandler:    &handlers.AuthHandler{Store: store, Tokens: tokens, Producer: producer},
		ProductHandler: &handlers.ProductHandler{Store: store, Search: searchSvc, Producer: producer},
		ReviewHandler:  &handlers.ReviewHandler{Store: store},
		CartHandler:    &handlers.CartHandler{Cart: cartSvc},
		OrderHandler:   &handlers.OrderHandler{Orders: orderSvc, Cart: cartSvc},
		PaymentHandler: &handlers.PaymentHandler{Payments: paymentSvc},
		SearchHandler:  &handlers.SearchHandler{Searches: searchSvc},
	})

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close", "error", err)
		}
	}
	if err := producer.Close(); err != nil {
		logger.Error("kafka close", "error", err)
	}
	logger.Info("shutdown complete")
}
