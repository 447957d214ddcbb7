package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/sangreguerrer/Netology-Final/internal/notifications"
	"github.com/sangreguerrer/Netology-Final/pkg/config"
	"github.com/sangreguerrer/Netology-Final/pkg/db"
	"github.com/sangreguerrer/Netology-Final/pkg/logger"
	"github.com/sangreguerrer/Netology-Final/pkg/migrate"
	"github.com/sangreguerrer/Netology-Final/pkg/outbox"
	"github.com/sangreguerrer/Netology-Final/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "notification-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "notification-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	materializer, err := notifications.NewMaterializer(
		dbClient.DB(),
		notifications.NewRepository(dbClient.DB()),
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create materializer", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"channel": cfg.Eventing.Channel,
	})
	logg.Info(ctx, "starting notification worker")

	sub := redisClient.Subscribe(ctx, cfg.Eventing.Channel)
	defer sub.Close()

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			logg.Info(ctx, "notification worker shutting down gracefully")
			return
		case raw, ok := <-messages:
			if !ok {
				logg.Info(ctx, "subscription channel closed")
				return
			}
			var msg outbox.Message
			if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
				logg.Error(ctx, "failed to decode event", err)
				continue
			}
			if err := materializer.HandleMessage(ctx, msg); err != nil {
				msgCtx := logg.WithField(ctx, "event_type", msg.EventType)
				logg.Error(msgCtx, "failed to handle event", err)
			}
		}
	}
}
