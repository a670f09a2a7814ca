package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	Service   ServiceConfig
	Redis     RedisConfig
	GCP       GCPConfig
	PubSub    PubSubConfig
	Warehouse WarehouseConfig
	Commerce  CommerceConfig
	Scheduler SchedulerConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Commerce.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CONSIGND_APP_ENV" required:"true"`
	Port         string `envconfig:"CONSIGND_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CONSIGND_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CONSIGND_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CONSIGND_SERVICE_KIND" default:"commerce"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CONSIGND_REDIS_URL"`
	Address      string        `envconfig:"CONSIGND_REDIS_ADDR"`
	Password     string        `envconfig:"CONSIGND_REDIS_PASSWORD"`
	DB           int           `envconfig:"CONSIGND_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CONSIGND_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CONSIGND_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CONSIGND_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CONSIGND_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CONSIGND_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CONSIGND_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"CONSIGND_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CONSIGND_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	CommerceTopic        string `envconfig:"CONSIGND_PUBSUB_COMMERCE_TOPIC" default:"commerce-events"`
	CommerceSubscription string `envconfig:"CONSIGND_PUBSUB_COMMERCE_SUBSCRIPTION"`
}

// WarehouseConfig drives the fulfillment integration.
type WarehouseConfig struct {
	Variant           string        `envconfig:"CONSIGND_WAREHOUSE_VARIANT" default:"mock"`
	BaseURL           string        `envconfig:"CONSIGND_WAREHOUSE_BASE_URL"`
	APIKey            string        `envconfig:"CONSIGND_WAREHOUSE_API_KEY"`
	RequestTimeout    time.Duration `envconfig:"CONSIGND_WAREHOUSE_REQUEST_TIMEOUT" default:"10s"`
	RateLimitRequests int           `envconfig:"CONSIGND_WAREHOUSE_RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"CONSIGND_WAREHOUSE_RATE_LIMIT_WINDOW" default:"1s"`
}

// CommerceConfig holds the reservation core tunables.
type CommerceConfig struct {
	StakePercentage   int           `envconfig:"CONSIGND_COMMERCE_STAKE_PERCENTAGE" default:"25"`
	CartTTL           time.Duration `envconfig:"CONSIGND_COMMERCE_CART_TTL" default:"15m"`
	ClearOrdersOnSync bool          `envconfig:"CONSIGND_COMMERCE_CLEAR_ORDERS_ON_SYNC" default:"true"`
	LedgerKey         string        `envconfig:"CONSIGND_COMMERCE_LEDGER_KEY" default:"commerce"`
}

func (c CommerceConfig) validate() error {
	if c.StakePercentage < 0 || c.StakePercentage > 100 {
		return fmt.Errorf("%s must be between 0 and 100", EnvStakePercentage)
	}
	if c.CartTTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvCartTTL)
	}
	return nil
}

type SchedulerConfig struct {
	SyncInterval  time.Duration `envconfig:"CONSIGND_SCHEDULER_SYNC_INTERVAL" default:"5m"`
	SweepInterval time.Duration `envconfig:"CONSIGND_SCHEDULER_SWEEP_INTERVAL" default:"30s"`
	LockTTL       time.Duration `envconfig:"CONSIGND_SCHEDULER_LOCK_TTL" default:"1m"`
	UseLock       bool          `envconfig:"CONSIGND_SCHEDULER_USE_LOCK" default:"false"`
}
