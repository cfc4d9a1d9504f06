package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/cuongbtq/article-worker/internal/config"
	"github.com/cuongbtq/article-worker/internal/credentials"
	"github.com/cuongbtq/article-worker/internal/gemini"
	"github.com/cuongbtq/article-worker/internal/queue"
	"github.com/cuongbtq/article-worker/internal/status"
	"github.com/cuongbtq/article-worker/internal/worker"
	"github.com/cuongbtq/article-worker/internal/worker/domain"
	"github.com/cuongbtq/article-worker/shared/logger"
	"github.com/cuongbtq/article-worker/shared/rabbitmq"
)

// exitAborted tells a supervisor the key was rejected and restarting will not help
const exitAborted = 2

func main() {
	if err := run(); err != nil {
		if errors.Is(err, domain.ErrWorkerAborted) {
			log.Println(err)
			os.Exit(exitAborted)
		}
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	configPath := flag.String("config", os.Getenv("ARTICLE_WORKER_CONFIG_PATH"), "Path to configuration file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	selection, err := credentials.Select(cfg.Gemini.APIKeys, cfg.Worker.Index)
	if err != nil {
		return fmt.Errorf("failed to select api key: %w", err)
	}

	runID := uuid.NewString()
	appLogger = appLogger.With(
		slog.String("run_id", runID),
		slog.Int("worker_index", selection.Index),
	)

	appLogger.Info("Starting article worker",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
		slog.String("api_key", selection.Masked()),
		slog.Int("pool_size", selection.PoolSize),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	generator, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:          selection.Key,
		Model:           cfg.Gemini.Model,
		Timeout:         cfg.Gemini.Timeout,
		QuotaRetryDelay: cfg.Gemini.QuotaRetryDelay,
	}, appLogger.Component("gemini").Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize gemini client: %w", err)
	}

	appLogger.Info("Gemini client initialized",
		slog.String("model", generator.Model()),
	)

	jobs, err := queue.NewClient(queue.Config{
		Endpoint:      cfg.Queue.Endpoint,
		FetchTimeout:  cfg.Queue.FetchTimeout,
		SubmitTimeout: cfg.Queue.SubmitTimeout,
	}, nil, appLogger.Component("queue").Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize jobs api client: %w", err)
	}

	workerCfg := &worker.Config{
		Logger:             appLogger.Component("worker").Logger,
		Queue:              jobs,
		Generator:          generator,
		RunID:              runID,
		WorkerIndex:        selection.Index,
		MaxRetries:         cfg.Worker.MaxRetries,
		MinRequestInterval: cfg.Worker.MinRequestInterval,
		ErrorRetryDelay:    cfg.Worker.ErrorRetryDelay,
		MaxQuotaRetries:    cfg.Worker.MaxQuotaRetries,
		MaxQuotaWait:       cfg.Worker.MaxQuotaWait,
		FetchRetries:       cfg.Worker.FetchRetries,
		FetchRetryDelay:    cfg.Worker.FetchRetryDelay,
		MaxJobs:            cfg.Worker.MaxJobs,
	}

	if cfg.RabbitMQ.Enabled {
		rabbitClient, err := initRabbitMQ(ctx, &cfg.RabbitMQ, appLogger.Component("rabbitmq").Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
		}
		defer rabbitClient.Close()

		workerCfg.Publisher = rabbitClient
		appLogger.Info("RabbitMQ connection established")
	}

	workerInstance := worker.NewWorker(workerCfg)

	if cfg.Status.Enabled {
		statusServer := status.NewServer(&status.Config{
			Port:            cfg.Status.Port,
			ReadTimeout:     cfg.Status.ReadTimeout,
			WriteTimeout:    cfg.Status.WriteTimeout,
			ShutdownTimeout: cfg.Status.ShutdownTimeout,
			Service:         cfg.App.Name,
			Environment:     cfg.App.Environment,
		}, workerInstance, appLogger.Component("status").Logger)

		if err := statusServer.Start(); err != nil {
			return fmt.Errorf("failed to start status server: %w", err)
		}
		defer func() {
			if err := statusServer.Shutdown(); err != nil {
				appLogger.Error("Status server shutdown failed", slog.Any("error", err))
			}
		}()
	}

	err = workerInstance.Run(ctx)

	stats := workerInstance.Stats()
	appLogger.Info("Article worker shutdown complete",
		slog.String("state", stats.State),
		slog.Int64("jobs_processed", stats.JobsProcessed),
		slog.Int64("jobs_succeeded", stats.JobsSucceeded),
		slog.Int64("jobs_failed", stats.JobsFailed),
		slog.Duration("uptime", time.Since(stats.StartedAt).Round(time.Second)),
	)

	return err
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	loggerCfg := &logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.DateTime,
	}

	return logger.New(loggerCfg)
}

// initRabbitMQ initializes the outcome event publisher
func initRabbitMQ(ctx context.Context, cfg *config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Client, error) {
	rabbitConfig := &rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		ExchangeAutoDelete: cfg.Exchange.AutoDelete,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval,
		Heartbeat:          cfg.Connection.Heartbeat,
		ConnectionTimeout:  cfg.Connection.ConnectionTimeout,
		PublishRetries:     cfg.Publish.RetryAttempts,
		PublishRetryDelay:  cfg.Publish.RetryInterval,
		PublishBackoffMult: cfg.Publish.BackoffMultiplier,
	}

	return rabbitmq.NewClient(ctx, rabbitConfig, logger)
}
