package config

import (
	"time"

	"github.com/spf13/viper"
)

const DefaultDatabasePath = "./selah.db"

type (
	Config struct {
		HTTP
		Global
		Database
		Pipeline
		Regen
		Tasks
		Maintenance
		GenAI
		Email
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Pipeline struct {
		BatchSize  int           // Pending-work view bound (default: 5)
		ClaimTTL   time.Duration // Stage claim lease duration
		MaxRetries int           // Worker stops resubmitting an errored stage past this count
	}
	Regen struct {
		Candidates  int           // Candidate images per regeneration request (1-4)
		ExpireAfter time.Duration // Processing requests older than this are failed
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Maintenance struct {
		Enabled  bool
		Schedule string // Cron format: "*/5 * * * *" = every 5 minutes
	}
	GenAI struct {
		BaseURL string
		Token   string
	}
	Email struct {
		SiteURL string // Used when rendering template previews
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8299)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Pipeline defaults
	v.SetDefault("pipeline_batch_size", 5)
	v.SetDefault("pipeline_claim_ttl", "10m")
	v.SetDefault("pipeline_max_retries", 3)

	// Regeneration defaults
	v.SetDefault("regen_candidates", 4)
	v.SetDefault("regen_expire_after", "30m")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Maintenance scheduler defaults
	v.SetDefault("maintenance_enabled", true)
	v.SetDefault("maintenance_schedule", "*/5 * * * *")

	// Generation backend defaults
	v.SetDefault("genai_base_url", "http://localhost:8300")
	v.SetDefault("genai_token", "")

	// Email defaults
	v.SetDefault("email_site_url", "")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Pipeline: Pipeline{
			BatchSize:  v.GetInt("PIPELINE_BATCH_SIZE"),
			ClaimTTL:   v.GetDuration("PIPELINE_CLAIM_TTL"),
			MaxRetries: v.GetInt("PIPELINE_MAX_RETRIES"),
		},
		Regen: Regen{
			Candidates:  v.GetInt("REGEN_CANDIDATES"),
			ExpireAfter: v.GetDuration("REGEN_EXPIRE_AFTER"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Maintenance: Maintenance{
			Enabled:  v.GetBool("MAINTENANCE_ENABLED"),
			Schedule: v.GetString("MAINTENANCE_SCHEDULE"),
		},
		GenAI: GenAI{
			BaseURL: v.GetString("GENAI_BASE_URL"),
			Token:   v.GetString("GENAI_TOKEN"),
		},
		Email: Email{
			SiteURL: v.GetString("EMAIL_SITE_URL"),
		},
	}
}
