package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"travelorders/internal/config"
	"travelorders/internal/db"
	api "travelorders/internal/http"
	"travelorders/internal/notify"
	"travelorders/internal/repositories"
	"travelorders/internal/services"
	"travelorders/internal/utils"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic(err)
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	log := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	database, err := config.OpenDB(cfg)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := db.Migrate(database, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	var notifier services.Notifier = notify.LogPublisher{Log: log}
	if cfg.AMQPURL != "" {
		conn, err := amqp.Dial(cfg.AMQPURL)
		if err != nil {
			log.Fatal("failed to connect to broker", zap.Error(err))
		}
		defer conn.Close()

		ch, err := conn.Channel()
		if err != nil {
			log.Fatal("failed to open broker channel", zap.Error(err))
		}
		defer ch.Close()

		publisher, err := notify.NewPublisher(ch)
		if err != nil {
			log.Fatal("failed to declare notification queue", zap.Error(err))
		}
		notifier = publisher
	} else {
		log.Warn("AMQP_URL not set, lifecycle events will only be logged")
	}

	orderService := &services.TravelOrderService{
		Orders:   repositories.TravelOrderRepository{DB: database},
		Users:    repositories.UserRepository{DB: database},
		Notifier: notifier,
		Log:      log,
	}

	r := api.NewRouter(api.Deps{
		DB:        database,
		Log:       log,
		JWTSecret: []byte(cfg.JWTSecret),
		Orders:    orderService,
	})

	srv := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", cfg.AppAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown failed", zap.Error(err))
	}

	log.Info("server stopped cleanly")
}
