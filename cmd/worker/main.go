package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"travelorders/internal/config"
	"travelorders/internal/email"
	"travelorders/internal/notify"
	"travelorders/internal/utils"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic(err)
	}

	log := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	if cfg.AMQPURL == "" {
		log.Fatal("AMQP_URL is required for the notification worker")
	}

	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		log.Fatal("failed to connect to broker", zap.Error(err))
	}
	defer conn.Close()

	sender := &email.Sender{
		Cfg: email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.MailFrom,
		},
		Log: log,
	}

	consumer := &notify.Consumer{Conn: conn, Mailer: sender, Log: log}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("notification worker started")
	if err := consumer.Start(ctx); err != nil && err != context.Canceled {
		log.Fatal("worker stopped with error", zap.Error(err))
	}
	log.Info("notification worker stopped")
}
