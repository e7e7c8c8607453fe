package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mkuznec/pizza_orders/internal/config"
	"github.com/mkuznec/pizza_orders/internal/es"
	"github.com/mkuznec/pizza_orders/internal/handlers"
	"github.com/mkuznec/pizza_orders/internal/logging"
	authmw "github.com/mkuznec/pizza_orders/internal/middleware/auth"
	loggingmw "github.com/mkuznec/pizza_orders/internal/middleware/logging"
	"github.com/mkuznec/pizza_orders/internal/mykafka"
	"github.com/mkuznec/pizza_orders/internal/service"
	httpserver "github.com/mkuznec/pizza_orders/internal/transport/http"
)

const ordersIndex = "orders"

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(configuration.JWT_SECRET, "JWT_SECRET")
	config.MustNonEmpty(configuration.REFRESH_SECRET, "REFRESH_SECRET")

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	var brokers []string
	if configuration.KAFKA_ADDRESS != "" {
		brokers = []string{configuration.KAFKA_ADDRESS}
	}
	producer := mykafka.NewProducer(brokers)

	var esClient *elasticsearch.Client
	if configuration.ES_URL != "" {
		esClient, err = es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
	}

	tokens := &service.TokenService{
		JWTSecret:     []byte(configuration.JWT_SECRET),
		RefreshSecret: []byte(configuration.REFRESH_SECRET),
	}
	orderSvc := &service.OrderService{DB: db}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		AuthHandler:   &handlers.AuthHandler{DB: db, Tokens: tokens, Producer: producer},
		OrderHandler:  &handlers.OrderHandler{Svc: orderSvc, Producer: producer, ES: esClient, Index: ordersIndex},
		SearchHandler: handlers.NewSearchHandler(esClient, ordersIndex),
		AuthMW:        authmw.NewSimpleAuth(tokens),
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", configuration.SERVER_PORT),
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
