// Package config collects process configuration from the environment.
package config

import (
	"time"

	"cuisinemap/internal/env"
)

type MinIO struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether object storage publishing is configured.
func (m MinIO) Enabled() bool {
	return m.Endpoint != "" && m.AccessKey != "" && m.SecretKey != ""
}

type Kafka struct {
	Brokers     []string
	EventsTopic string
	NotifyTopic string
	GroupID     string
}

func (k Kafka) Enabled() bool { return len(k.Brokers) > 0 }

type Config struct {
	Environment string
	// DotenvLoaded is false when no .env file was found.
	DotenvLoaded bool

	RegistryPath     string
	LegacySourcePath string
	DiscoveriesPath  string

	CountPolicy       string
	PlacesDelay       time.Duration
	OverpassDelay     time.Duration
	WorkerConcurrency int

	DatabaseURL string
	MinIO       MinIO
	Kafka       Kafka

	HTTPPort       string
	AllowedOrigins []string
	SurveyArea     string
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	loaded := env.Load()

	workers := env.GetInt("WORKER_CONCURRENCY", 1)
	if workers < 1 {
		workers = 1
	}

	return &Config{
		Environment:       env.Get("ENVIRONMENT", "development"),
		DotenvLoaded:      loaded,
		RegistryPath:      env.Get("REGISTRY_PATH", "data/registry.json"),
		LegacySourcePath:  env.Get("LEGACY_SOURCE_PATH", ""),
		DiscoveriesPath:   env.Get("DISCOVERIES_PATH", "data/discoveries.json"),
		CountPolicy:       env.Get("COUNT_POLICY", "paginated"),
		PlacesDelay:       env.GetDuration("PLACES_DELAY", 200*time.Millisecond),
		OverpassDelay:     env.GetDuration("OVERPASS_DELAY", 2*time.Second),
		WorkerConcurrency: workers,
		DatabaseURL:       env.Get("DATABASE_URL", ""),
		MinIO: MinIO{
			Endpoint:  env.Get("MINIO_ENDPOINT", ""),
			AccessKey: env.Get("MINIO_ACCESS_KEY", ""),
			SecretKey: env.Get("MINIO_SECRET_KEY", ""),
			Bucket:    env.Get("MINIO_BUCKET", "cuisinemap"),
			UseSSL:    env.GetBool("MINIO_USE_SSL", false),
		},
		Kafka: Kafka{
			Brokers:     env.GetList("KAFKA_BROKER", ""),
			EventsTopic: env.Get("KAFKA_EVENTS_TOPIC", "cuisinemap.events"),
			NotifyTopic: env.Get("KAFKA_NOTIFY_TOPIC", "cuisinemap.bucket"),
			GroupID:     env.Get("KAFKA_GROUP_ID", "cuisinemap-api"),
		},
		HTTPPort:       env.Get("HTTP_PORT", "8080"),
		AllowedOrigins: env.GetList("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		SurveyArea:     env.Get("SURVEY_AREA", "tokyo-23"),
	}
}
