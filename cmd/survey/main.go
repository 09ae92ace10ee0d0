package main

import (
	"context"
	"os"
	"time"

	"cuisinemap/internal/config"
	"cuisinemap/internal/env"
	"cuisinemap/internal/logger"
	"cuisinemap/internal/registry"
	"cuisinemap/internal/survey"
	"cuisinemap/pkg/graceful"
	"cuisinemap/pkg/places"

	"go.uber.org/zap"
)

// Prints how many distinct places each sub-query of every cuisine finds in
// one area. Nothing is written.
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
	area, ok := reg.Area(cfg.SurveyArea)
	if !ok {
		log.Fatal("unknown survey area", zap.String("area", cfg.SurveyArea))
	}

	items, err := survey.New(client).Run(ctx, area, reg.Cuisines)
	if err != nil {
		log.Error("survey stopped", zap.Int("surveyed", len(items)), zap.Error(err))
		return
	}
	survey.Write(os.Stdout, area, time.Now().Format(time.DateOnly), items)
}
