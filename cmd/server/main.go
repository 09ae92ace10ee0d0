package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cuisinemap/internal/api"
	"cuisinemap/internal/config"
	"cuisinemap/internal/discovery"
	"cuisinemap/internal/env"
	"cuisinemap/internal/infra"
	"cuisinemap/internal/keys"
	"cuisinemap/internal/logger"
	"cuisinemap/internal/models"
	"cuisinemap/internal/registry"
	"cuisinemap/internal/service"
	"cuisinemap/internal/storage"
	"cuisinemap/pkg/graceful"
	"cuisinemap/pkg/kafkaclient"
	"cuisinemap/pkg/places"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Environment)
	defer logger.Sync(log)

	ctx, cancel := graceful.Context(context.Background(), log)
	defer cancel()

	reg, err := registry.Load(cfg.RegistryPath)
	if err != nil {
		log.Fatal("failed to load registry", zap.String("path", cfg.RegistryPath), zap.Error(err))
	}

	deps := api.Deps{Registry: reg, Log: log}

	// Live listings are optional for the read API.
	if key := env.Get("GOOGLE_MAPS_API_KEY", ""); key != "" {
		deps.Search = places.NewClient(key, cfg.PlacesDelay)
		deps.PhotoKey = key
	} else {
		log.Warn("GOOGLE_MAPS_API_KEY not set, /api/restaurants disabled")
	}

	repo, closeHistory := infra.History(ctx, cfg, log)
	defer closeHistory()
	if repo != nil {
		deps.History = repo
	}

	s3 := infra.Objects(ctx, cfg, log)
	deps.Discoveries = api.NewDiscoverySnapshot(initialDiscoveries(ctx, cfg, s3, log))

	if s3 != nil && cfg.Kafka.Enabled() {
		consumer := kafkaclient.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.NotifyTopic, cfg.Kafka.GroupID, log)
		consumer.StartConsuming(ctx)
		defer consumer.Stop()

		it := service.NewIterator[*models.DiscoveryDocument](consumer, s3.GetDiscoveries, keys.IsLatestDiscoveries, log)
		go deps.Discoveries.Follow(ctx, it.Objects(ctx), log)
		log.Info("following discoveries updates", zap.String("topic", cfg.Kafka.NotifyTopic))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.NewRouter(api.NewHandler(deps), cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("server shutdown", zap.Error(err))
		}
	}()

	log.Info("server listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server failed", zap.Error(err))
	}
	log.Info("server stopped")
}

// initialDiscoveries prefers the published document and falls back to the
// local file. A missing document only empties the discoveries endpoint.
func initialDiscoveries(ctx context.Context, cfg *config.Config, s3 *storage.S3Service, log *zap.Logger) *models.DiscoveryDocument {
	if s3 != nil {
		doc, err := s3.LatestDiscoveries(ctx)
		switch {
		case err != nil:
			log.Warn("published discoveries unreadable, reading local file", zap.Error(err))
		case doc == nil:
			log.Info("no published discoveries yet, reading local file")
		default:
			return doc
		}
	}
	doc, err := discovery.ReadFile(cfg.DiscoveriesPath)
	if err != nil {
		log.Warn("discoveries unavailable", zap.String("path", cfg.DiscoveriesPath), zap.Error(err))
		return nil
	}
	return doc
}
