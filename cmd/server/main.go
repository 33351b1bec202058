package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/derivativegenius/backend/internal/config"
	"github.com/derivativegenius/backend/internal/handler"
	"github.com/derivativegenius/backend/internal/logging"
	"github.com/derivativegenius/backend/internal/mail"
	"github.com/derivativegenius/backend/internal/queue"
	"github.com/derivativegenius/backend/internal/repository"
	"github.com/derivativegenius/backend/internal/service"
	"github.com/derivativegenius/backend/internal/taskstatus"
	"github.com/derivativegenius/backend/pkg/auth"
	amqp "github.com/rabbitmq/amqp091-go"
)

func main() {
	cfg := config.MustLoad()
	logging.Setup("server")

	pool, err := repository.NewPool(context.Background(), cfg.Database.URL)
	if err != nil {
		logging.Fatal("failed to connect to database", "error", err)
	}
	defer pool.Close()

	subRepo := repository.NewPgSubmissionRepository(pool)

	// Notification delivery strategy: inline SMTP or deferred via the
	// task queue, selected by configuration.
	var notifier service.Notifier
	switch cfg.Notify.Mode {
	case "queue":
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
		status, err := taskstatus.NewFromURL(cfg.Redis.URL)
		if err != nil {
			logging.Fatal("failed to connect to redis", "error", err)
		}
		defer status.Close()

		taskRepo := repository.NewPgNotificationTaskRepository(pool)
		pub := queue.NewPublisher(ch, cfg.RabbitMQ.Queue)
		notifier = queue.NewNotifier(pub, taskRepo, status, cfg.Notify.OperatorEmail)
	default:
		mailer, err := mail.NewSMTPMailer(cfg.SMTP)
		if err != nil {
			logging.Fatal("failed to configure mail transport", "error", err)
		}
		notifier = mail.NewDirectNotifier(mailer, cfg.Notify.OperatorEmail)
	}

	submissionService := service.NewSubmissionService(subRepo, notifier)

	h := handler.New(pool, cfg.HTTPServer.FrontendURL)
	contactHandler := handler.NewContactHandler(submissionService, cfg.Notify.OperatorEmail)
	adminHandler := handler.NewAdminHandler(submissionService)

	sessionSecretBytes := auth.SessionSecretBytes(cfg.Auth.SessionSecret)
	wrapAuth := func(next http.Handler) http.Handler {
		if cfg.Auth.Required {
			return auth.RequireAuth(sessionSecretBytes)(next)
		}
		return auth.DevAuth(next)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.Health)
	// Registered without a method pattern: the handler itself answers
	// 405 so wrong-method callers get the JSON contract.
	mux.HandleFunc("/api/contact", contactHandler.Submit)
	mux.Handle("GET /api/admin/submissions", wrapAuth(http.HandlerFunc(adminHandler.List)))
	mux.Handle("PATCH /api/admin/submissions/{id}/archive", wrapAuth(http.HandlerFunc(adminHandler.Archive)))

	rl := handler.NewRateLimiter(cfg.HTTPServer.RatePerMinute)
	defer rl.Stop()
	chain := h.CORS(handler.SecurityHeaders(handler.RequestLogger(rl.Middleware(mux))))

	server := &http.Server{
		Addr:    cfg.HTTPServer.Address,
		Handler: chain,
		// The write timeout is the overall wall-clock budget for a
		// submission, including both SMTP sends.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr, "notify_mode", cfg.Notify.Mode)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
