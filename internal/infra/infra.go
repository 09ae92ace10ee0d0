// Package infra opens the optional backing services the commands share.
// Each opener returns nil when its service is not configured or unreachable;
// the pipelines run without it.
package infra

import (
	"context"
	"time"

	"cuisinemap/internal/config"
	"cuisinemap/internal/events"
	"cuisinemap/internal/history"
	"cuisinemap/internal/storage"
	"cuisinemap/pkg/kafkaclient"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const connectTimeout = 15 * time.Second

// History connects to Postgres and applies migrations. The returned close
// func is never nil.
func History(ctx context.Context, cfg *config.Config, log *zap.Logger) (*history.PostgresRepo, func()) {
	if cfg.DatabaseURL == "" {
		return nil, func() {}
	}
	pool, err := openPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Warn("run history disabled", zap.Error(err))
		return nil, func() {}
	}
	if err := history.Migrate(ctx, pool); err != nil {
		log.Warn("run history disabled, migration failed", zap.Error(err))
		pool.Close()
		return nil, func() {}
	}
	log.Info("run history enabled")
	return history.NewPostgresRepo(pool), pool.Close
}

func openPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	return history.Connect(ctx, dsn)
}

// Objects connects to MinIO and makes sure the bucket exists.
func Objects(ctx context.Context, cfg *config.Config, log *zap.Logger) *storage.S3Service {
	if !cfg.MinIO.Enabled() {
		return nil
	}
	s3, err := storage.NewS3Service(cfg.MinIO, log)
	if err != nil {
		log.Warn("object storage disabled", zap.Error(err))
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := s3.EnsureBucket(ctx); err != nil {
		log.Warn("object storage disabled", zap.Error(err))
		return nil
	}
	return s3
}

// Events returns an emitter on the events topic. A nil emitter drops events.
func Events(cfg *config.Config, log *zap.Logger) (*events.Emitter, func()) {
	if !cfg.Kafka.Enabled() {
		return nil, func() {}
	}
	producer := kafkaclient.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
	log.Info("publishing events", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.EventsTopic))
	return events.NewEmitter(producer), func() {
		if err := producer.Close(); err != nil {
			log.Warn("closing event producer", zap.Error(err))
		}
	}
}
