package main

import (
	"context"
	"flag"

	"cuisinemap/internal/config"
	"cuisinemap/internal/env"
	"cuisinemap/internal/history"
	"cuisinemap/internal/logger"

	"go.uber.org/zap"
)

func main() {
	command := flag.String("command", "up", "migration command: up, down, status")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(cfg.Environment)
	defer logger.Sync(log)

	ctx := context.Background()
	pool, err := history.Connect(ctx, env.MustGetEnv(log, "DATABASE_URL"))
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	switch *command {
	case "up":
		err = history.Migrate(ctx, pool)
	case "down":
		err = history.MigrateDown(ctx, pool)
	case "status":
		err = history.MigrationStatus(ctx, pool)
	default:
		log.Fatal("unknown command", zap.String("command", *command))
	}
	if err != nil {
		log.Fatal("migration failed", zap.String("command", *command), zap.Error(err))
	}
	log.Info("migration finished", zap.String("command", *command))
}
