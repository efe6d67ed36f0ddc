package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"news_ingest/internal/adapters"
	"news_ingest/internal/aggregator"
	"news_ingest/internal/config"
	"news_ingest/internal/db"
	"news_ingest/internal/logger"
	"news_ingest/internal/models"
	"news_ingest/internal/queue"
	"news_ingest/internal/rest"
	"news_ingest/internal/scheduler"
	"news_ingest/internal/server"
	"news_ingest/internal/worker"
)

func main() {
	logger.Init()
	defer logger.Log.Info("Application stopped")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// .env хранит секреты: ключи API и строку подключения
	if err := godotenv.Load(); err != nil {
		logger.Log.Debugf("No .env file loaded: %v", err)
	}

	// Загрузка конфигурации
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Log.Fatalf("Config load error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Log.Fatalf("Config validation error: %v", err)
	}

	// Инициализация БД
	database, err := db.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatalf("DB connection error: %v", err)
	}
	defer database.Close()

	// Сид источников из конфигурации
	for _, seed := range cfg.Sources {
		_, err := database.UpsertSource(ctx, models.Source{
			Name:           seed.Name,
			APIURL:         seed.APIURL,
			APIKey:         seed.APIKey,
			FallbackAPIKey: seed.FallbackAPIKey,
			IsActive:       seed.Active,
		})
		if err != nil {
			logger.Log.Fatalf("Source seed error for %s: %v", seed.Name, err)
		}
	}

	// Настройка RabbitMQ Producer
	producer, err := queue.NewProducer(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Log.Fatalf("RabbitMQ producer error: %v", err)
	}
	defer producer.Close()

	// Настройка RabbitMQ Consumer
	consumer, err := queue.NewConsumer(
		cfg.RabbitMQ.URL,
		cfg.RabbitMQ.Queue,
		cfg.Workers,
	)
	if err != nil {
		logger.Log.Fatalf("RabbitMQ consumer error: %v", err)
	}
	defer consumer.Close()

	// Сборка пайплайна: транспорт → адаптеры → оркестратор
	registry := adapters.DefaultRegistry(adapters.Deps{
		Client:          rest.NewClient(),
		Store:           database,
		DefaultCategory: cfg.DefaultCategory,
	})
	pipeline := aggregator.NewService(registry, database)

	// Запуск воркеров
	wrk := worker.NewWorker(
		pipeline,
		database,
		time.Duration(cfg.JobTimeoutMinutes)*time.Minute,
		time.Duration(cfg.LeaseTTLMinutes)*time.Minute,
	)
	consumer.Consume(wrk.HandleTask)

	// Запуск планировщика
	sched := scheduler.New(
		database,
		producer,
		cfg.RabbitMQ.Queue,
		time.Duration(cfg.FetchIntervalMinutes)*time.Minute,
		time.Duration(cfg.SyncIntervalHours)*time.Hour,
	)
	go sched.Run(ctx)

	// HTTP сервер: health, метрики и административные триггеры
	srv := server.NewServer(database, producer, cfg.RabbitMQ.Queue)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", srv.HealthCheck)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /api/fetch/{source}", srv.TriggerFetch)
	mux.HandleFunc("POST /api/sync/{source}", srv.TriggerSync)

	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}
	go func() {
		logger.Log.Infof("Starting HTTP server on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down...")
	ctxShutdown, cancelShutdown := context.WithTimeout(ctx, 5*time.Second)
	defer cancelShutdown()

	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		logger.Log.Fatalf("Forced shutdown: %v", err)
	}
}
