package main

import (
	"context"
	"errors"

	"cuisinemap/internal/config"
	"cuisinemap/internal/counter"
	"cuisinemap/internal/env"
	"cuisinemap/internal/infra"
	"cuisinemap/internal/logger"
	"cuisinemap/internal/refresh"
	"cuisinemap/internal/registry"
	"cuisinemap/pkg/graceful"
	"cuisinemap/pkg/overpass"
	"cuisinemap/pkg/places"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Environment)
	defer logger.Sync(log)
	if !cfg.DotenvLoaded {
		log.Info("no .env file found, using process environment")
	}

	ctx, cancel := graceful.Context(context.Background(), log)
	defer cancel()

	var search counter.Searcher
	if cfg.CountPolicy != counter.PolicyOpenData {
		search = places.NewClient(env.MustGetEnv(log, "GOOGLE_MAPS_API_KEY"), cfg.PlacesDelay)
	}
	c, err := counter.New(cfg.CountPolicy, search, overpass.NewClient(cfg.OverpassDelay))
	if err != nil {
		log.Fatal("invalid count policy", zap.String("policy", cfg.CountPolicy), zap.Error(err))
	}

	reg, err := registry.Load(cfg.RegistryPath)
	if err != nil {
		log.Fatal("failed to load registry", zap.String("path", cfg.RegistryPath), zap.Error(err))
	}

	stores := []registry.Store{registry.NewJSONStore(cfg.RegistryPath, reg)}
	if cfg.LegacySourcePath != "" {
		src, err := registry.OpenSourceStore(cfg.LegacySourcePath)
		if err != nil {
			log.Fatal("failed to open legacy source", zap.String("path", cfg.LegacySourcePath), zap.Error(err))
		}
		stores = append(stores, src)
	}

	var deps refresh.Deps
	repo, closeHistory := infra.History(ctx, cfg, log)
	defer closeHistory()
	if repo != nil {
		deps.History = repo
	}
	emitter, closeEvents := infra.Events(cfg, log)
	defer closeEvents()
	if emitter != nil {
		deps.Events = emitter
	}
	if s3 := infra.Objects(ctx, cfg, log); s3 != nil {
		deps.Snapshots = s3
	}

	svc := refresh.NewService(reg, c, stores, deps, cfg.CountPolicy, cfg.WorkerConcurrency, log)
	sum, err := svc.Run(ctx)
	switch {
	case errors.Is(err, registry.ErrPersist):
		log.Fatal("refresh could not be saved", zap.String("run", sum.RunID), zap.Error(err))
	case err != nil:
		log.Error("refresh stopped", zap.String("run", sum.RunID), zap.Error(err))
		return
	}
	log.Info("done",
		zap.String("date", sum.Date), zap.Int("updated", sum.Updated),
		zap.Int("failed", sum.Failed), zap.Int("missing", sum.Missing))
}
