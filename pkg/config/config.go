package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Routing      RoutingConfig
	Assignment   AssignmentConfig
	Realtime     RealtimeConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
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
	Env          string `envconfig:"PRINTLINK_APP_ENV" required:"true"`
	Port         string `envconfig:"PRINTLINK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PRINTLINK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PRINTLINK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PRINTLINK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PRINTLINK_DB_DSN"`
	Driver string `envconfig:"PRINTLINK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PRINTLINK_DB_HOST"`
	LegacyPort     int    `envconfig:"PRINTLINK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PRINTLINK_DB_USER"`
	LegacyPassword string `envconfig:"PRINTLINK_DB_PASSWORD"`
	LegacyName     string `envconfig:"PRINTLINK_DB_NAME"`
	LegacySSLMode  string `envconfig:"PRINTLINK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PRINTLINK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PRINTLINK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PRINTLINK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PRINTLINK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PRINTLINK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PRINTLINK_REDIS_ADDR"`
	Password     string        `envconfig:"PRINTLINK_REDIS_PASSWORD"`
	DB           int           `envconfig:"PRINTLINK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PRINTLINK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PRINTLINK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PRINTLINK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PRINTLINK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PRINTLINK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PRINTLINK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PRINTLINK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PRINTLINK_JWT_EXPIRATION_MINUTES" required:"true"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PRINTLINK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PRINTLINK_AUTO_MIGRATE" default:"false"`
}

// RoutingConfig drives the external road-routing provider client.
type RoutingConfig struct {
	BaseURL string        `envconfig:"PRINTLINK_ROUTING_BASE_URL"`
	APIKey  string        `envconfig:"PRINTLINK_ROUTING_API_KEY"`
	Timeout time.Duration `envconfig:"PRINTLINK_ROUTING_TIMEOUT" default:"5s"`
	// FallbackSpeedKMH is the assumed average road speed when the provider
	// is unavailable and the estimate falls back to straight-line distance.
	FallbackSpeedKMH float64 `envconfig:"PRINTLINK_ROUTING_FALLBACK_SPEED_KMH" default:"30"`
}

// AssignmentConfig holds matcher defaults.
type AssignmentConfig struct {
	// Default order location used when the order carries no coordinates.
	DefaultLat float64 `envconfig:"PRINTLINK_ASSIGNMENT_DEFAULT_LAT" default:"30.0444"`
	DefaultLng float64 `envconfig:"PRINTLINK_ASSIGNMENT_DEFAULT_LNG" default:"31.2357"`
}

type RealtimeConfig struct {
	// SubscriberBuffer is the per-connection event buffer; events beyond it
	// are dropped (delivery is best effort).
	SubscriberBuffer int `envconfig:"PRINTLINK_REALTIME_SUBSCRIBER_BUFFER" default:"16"`
	// BackplaneEnabled relays publishes through Redis so every API instance
	// sees events published on any of them.
	BackplaneEnabled bool   `envconfig:"PRINTLINK_REALTIME_BACKPLANE_ENABLED" default:"false"`
	BackplaneChannel string `envconfig:"PRINTLINK_REALTIME_BACKPLANE_CHANNEL" default:"printlink:realtime"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"PRINTLINK_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"PRINTLINK_PUBSUB_ORDERS_TOPIC"`
	OrdersSubscription string `envconfig:"PRINTLINK_PUBSUB_ORDERS_SUBSCRIPTION"`
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
