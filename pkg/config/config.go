package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Bidding      BiddingConfig
	Pricing      PricingConfig
	Commission   CommissionConfig
	Cron         CronConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SWIFTHAUL_APP_ENV" required:"true"`
	Port         string `envconfig:"SWIFTHAUL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SWIFTHAUL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SWIFTHAUL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SWIFTHAUL_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SWIFTHAUL_DB_DSN"`
	Driver string `envconfig:"SWIFTHAUL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SWIFTHAUL_DB_HOST"`
	LegacyPort     int    `envconfig:"SWIFTHAUL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SWIFTHAUL_DB_USER"`
	LegacyPassword string `envconfig:"SWIFTHAUL_DB_PASSWORD"`
	LegacyName     string `envconfig:"SWIFTHAUL_DB_NAME"`
	LegacySSLMode  string `envconfig:"SWIFTHAUL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SWIFTHAUL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SWIFTHAUL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SWIFTHAUL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SWIFTHAUL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SWIFTHAUL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SWIFTHAUL_REDIS_ADDR"`
	Password     string        `envconfig:"SWIFTHAUL_REDIS_PASSWORD"`
	DB           int           `envconfig:"SWIFTHAUL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SWIFTHAUL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SWIFTHAUL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SWIFTHAUL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SWIFTHAUL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SWIFTHAUL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SWIFTHAUL_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SWIFTHAUL_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SWIFTHAUL_JWT_EXPIRATION_MINUTES" required:"true"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SWIFTHAUL_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SWIFTHAUL_AUTO_MIGRATE" default:"false"`
}

// BiddingConfig controls the bid lifecycle windows.
type BiddingConfig struct {
	BidExpiry     time.Duration `envconfig:"SWIFTHAUL_BIDDING_BID_EXPIRY" default:"15m"`
	BiddingWindow time.Duration `envconfig:"SWIFTHAUL_BIDDING_WINDOW" default:"30m"`
}

// PricingConfig carries the platform-level pricing knobs. Surcharge amounts
// themselves live on each partner's rate card; only the tax rate and the
// peak-hour windows are platform-wide.
type PricingConfig struct {
	TaxRatePercent   decimal.Decimal `envconfig:"SWIFTHAUL_PRICING_TAX_RATE_PERCENT" default:"18"`
	PeakMorningStart int             `envconfig:"SWIFTHAUL_PRICING_PEAK_MORNING_START" default:"8"`
	PeakMorningEnd   int             `envconfig:"SWIFTHAUL_PRICING_PEAK_MORNING_END" default:"10"`
	PeakEveningStart int             `envconfig:"SWIFTHAUL_PRICING_PEAK_EVENING_START" default:"18"`
	PeakEveningEnd   int             `envconfig:"SWIFTHAUL_PRICING_PEAK_EVENING_END" default:"21"`
	MinBidFactor     decimal.Decimal `envconfig:"SWIFTHAUL_PRICING_MIN_BID_FACTOR" default:"0.5"`
	MaxBidFactor     decimal.Decimal `envconfig:"SWIFTHAUL_PRICING_MAX_BID_FACTOR" default:"1.5"`
}

// CommissionConfig carries fallback percentages used when no platform fee row
// is active yet.
type CommissionConfig struct {
	DefaultPlatformFeePercent decimal.Decimal `envconfig:"SWIFTHAUL_COMMISSION_PLATFORM_FEE_PERCENT" default:"10"`
	DefaultGSTPercent         decimal.Decimal `envconfig:"SWIFTHAUL_COMMISSION_GST_PERCENT" default:"18"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"SWIFTHAUL_CRON_INTERVAL" default:"1m"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SWIFTHAUL_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"SWIFTHAUL_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SWIFTHAUL_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"SWIFTHAUL_PUBSUB_DOMAIN_TOPIC" default:"sh-domain-events"`
	DomainSubscription string `envconfig:"SWIFTHAUL_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SWIFTHAUL_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SWIFTHAUL_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SWIFTHAUL_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
