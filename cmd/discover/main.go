package main

import (
	"context"

	"cuisinemap/internal/config"
	"cuisinemap/internal/discovery"
	"cuisinemap/internal/env"
	"cuisinemap/internal/infra"
	"cuisinemap/internal/logger"
	"cuisinemap/internal/registry"
	"cuisinemap/pkg/graceful"
	"cuisinemap/pkg/places"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Environment)
	defer logger.Sync(log)

	ctx, cancel := graceful.Context(context.Background(), log)
	defer cancel()

	client := places.NewClient(env.MustGetEnv(log, "GOOGLE_MAPS_API_KEY"), cfg.PlacesDelay)

	reg, err := registry.Load(cfg.RegistryPath)
	if err != nil {
		log.Fatal("failed to load registry", zap.String("path", cfg.RegistryPath), zap.Error(err))
	}

	scanner := discovery.NewScanner(client, reg.RareCuisines, reg.Areas, log)
	doc, err := scanner.Scan(ctx)
	if err != nil {
		log.Error("discovery scan stopped, nothing written", zap.Error(err))
		return
	}

	if err := discovery.WriteFile(cfg.DiscoveriesPath, doc); err != nil {
		log.Fatal("failed to write discoveries", zap.String("path", cfg.DiscoveriesPath), zap.Error(err))
	}
	log.Info("discoveries written",
		zap.String("path", cfg.DiscoveriesPath), zap.Int("cuisines", len(doc.Discoveries)))

	pub := discovery.Publisher{Log: log}
	if s3 := infra.Objects(ctx, cfg, log); s3 != nil {
		pub.Objects = s3
	}
	emitter, closeEvents := infra.Events(cfg, log)
	defer closeEvents()
	if emitter != nil {
		pub.Notifier = emitter
	}
	pub.Publish(ctx, doc)
}
