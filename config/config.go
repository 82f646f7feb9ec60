package config

import (
	"github.com/workstackhq/workstack/internal/logger"
	"github.com/workstackhq/workstack/internal/tracing"
)

type AppConfig struct {
	APIPort     string `env:"PORT" envDefault:"11000"`
	APIKey      string `env:"API_KEY,required"`
	RabbitMQURL string `env:"RABBITMQ_URL"`
	// BaseDomain is the suffix of every assigned tenant hostname
	// (slug.BaseDomain). Custom hostnames are attached separately.
	BaseDomain string `env:"BASE_DOMAIN" envDefault:"workstack.app"`
	Logger     *logger.Config
	Tracing    *tracing.JaegerConfig
}

type DatabaseConfig struct {
	Host            string `env:"POSTGRES_HOST,required"`
	Port            string `env:"POSTGRES_PORT,required"`
	User            string `env:"POSTGRES_USER,required"`
	DBName          string `env:"POSTGRES_DB_NAME,required"`
	Password        string `env:"POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"POSTGRES_DB_MAX_CONN"`
	MaxIdleConn     int    `env:"POSTGRES_DB_MAX_IDLE_CONN"`
	ConnMaxLifetime int    `env:"POSTGRES_DB_CONN_MAX_LIFETIME"`
	LogLevel        string `env:"POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"POSTGRES_SSL_MODE"`
}

type StorageConfig struct {
	Provider        string `env:"STORAGE_PROVIDER" envDefault:"s3"` // s3 or r2
	Region          string `env:"STORAGE_REGION" envDefault:"us-east-1"`
	AccountID       string `env:"STORAGE_ACCOUNT_ID"`
	AccessKeyID     string `env:"STORAGE_ACCESS_KEY_ID"`
	AccessKeySecret string `env:"STORAGE_ACCESS_KEY_SECRET"`
	Bucket          string `env:"STORAGE_BUCKET" envDefault:"workstack-assets"`
	CDNDomain       string `env:"STORAGE_CDN_DOMAIN"`
	PublicRead      bool   `env:"STORAGE_PUBLIC_READ" envDefault:"false"`
}

type CronConfig struct {
	// Standard cron expression for the domain consistency audit.
	DomainAuditSchedule string `env:"CRON_DOMAIN_AUDIT_SCHEDULE" envDefault:"0 */2 * * *"`
}
