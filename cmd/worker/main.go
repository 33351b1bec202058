package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/derivativegenius/backend/internal/config"
	"github.com/derivativegenius/backend/internal/logging"
	"github.com/derivativegenius/backend/internal/mail"
	"github.com/derivativegenius/backend/internal/queue"
	"github.com/derivativegenius/backend/internal/repository"
	"github.com/derivativegenius/backend/internal/taskstatus"
	amqp "github.com/rabbitmq/amqp091-go"
)

// The worker is the other half of queue-mode delivery: it consumes the
// notification tasks the server publishes and sends them over SMTP.
func main() {
	cfg := config.MustLoad()
	logging.Setup("worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := repository.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		logging.Fatal("failed to connect to database", "error", err)
	}
	defer pool.Close()

	status, err := taskstatus.NewFromURL(cfg.Redis.URL)
	if err != nil {
		logging.Fatal("failed to connect to redis", "error", err)
	}
	defer status.Close()

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		logging.Fatal("failed to connect to rabbitmq", "error", err)
	}
	defer conn.Close()
	ch, err := conn.Channel()
	if err != nil {
		logging.Fatal("failed to open rabbitmq channel", "error", err)
	}
	if err := queue.Declare(ch, cfg.RabbitMQ.Queue); err != nil {
		logging.Fatal("failed to declare queue", "error", err)
	}

	mailer, err := mail.NewSMTPMailer(cfg.SMTP)
	if err != nil {
		logging.Fatal("failed to configure mail transport", "error", err)
	}

	taskRepo := repository.NewPgNotificationTaskRepository(pool)
	pub := queue.NewPublisher(ch, cfg.RabbitMQ.Queue)
	worker := queue.NewWorker(mailer, taskRepo, status, pub, cfg.Notify.MaxRetries)
	consumer := queue.NewConsumer(ch, cfg.RabbitMQ.Queue)

	slog.Info("worker consuming", "queue", cfg.RabbitMQ.Queue)
	if err := consumer.Run(ctx, worker.Handle); err != nil && err != context.Canceled {
		logging.Fatal("consumer stopped", "error", err)
	}
	slog.Info("worker shut down")
}
