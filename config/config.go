package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every configuration parameter, read from the environment.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort string `envconfig:"HTTP_PORT" default:"4343"`

	// Optional write-protection for the API. Empty disables the check.
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	// Root directory holding local copies of RECAP documents; FilepathLocal
	// values on documents are relative to it.
	DocumentsRoot string `envconfig:"DOCUMENTS_ROOT" default:"/var/dockethand/documents"`

	// PACER purchase pricing used for the buy affordance.
	PacerPricePerPage float64 `envconfig:"PACER_PRICE_PER_PAGE" default:"0.10"`
	PacerPriceCap     float64 `envconfig:"PACER_PRICE_CAP" default:"3.00"`

	// S3-compatible archive bucket receiving free mirror copies of documents.
	ArchiveS3Key    string `envconfig:"ARCHIVE_S3_KEY" required:"true"`
	ArchiveS3Secret string `envconfig:"ARCHIVE_S3_SECRET" required:"true"`
	ArchiveS3URL    string `envconfig:"ARCHIVE_S3_URL" required:"true"`
	ArchiveS3Region string `envconfig:"ARCHIVE_S3_REGION" required:"true"`
	ArchiveS3Bucket string `envconfig:"ARCHIVE_S3_BUCKET" required:"true"`

	// Background jobs.
	MirrorCronSchedule string `envconfig:"MIRROR_CRON_SCHEDULE" default:"0 3 * * *"`
	PurgeCronSchedule  string `envconfig:"PURGE_CRON_SCHEDULE" default:"30 4 * * *"`
	TrashTTLDays       int    `envconfig:"TRASH_TTL_DAYS" default:"30"`
	MirrorBatchSize    int    `envconfig:"MIRROR_BATCH_SIZE" default:"100"`

	// Listing pagination.
	DefaultPageSize int `envconfig:"DEFAULT_PAGE_SIZE" default:"20"`
	MaxPageSize     int `envconfig:"MAX_PAGE_SIZE" default:"100"`
}

// DSN returns the data source name for the PostgreSQL connection.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Load reads the configuration from the environment, with .env fallback.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
