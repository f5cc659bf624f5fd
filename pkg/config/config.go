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
	DB           DBConfig
	Redis        RedisConfig
	Infobip      InfobipConfig
	Verification VerificationConfig
	Sweep        SweepConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"BOOKORDER_APP_ENV" required:"true"`
	Port         string `envconfig:"BOOKORDER_APP_PORT" default:"8000"`
	LogLevel     string `envconfig:"BOOKORDER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BOOKORDER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BOOKORDER_DB_DSN"`
	Driver string `envconfig:"BOOKORDER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BOOKORDER_DB_HOST"`
	LegacyPort     int    `envconfig:"BOOKORDER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BOOKORDER_DB_USER"`
	LegacyPassword string `envconfig:"BOOKORDER_DB_PASSWORD"`
	LegacyName     string `envconfig:"BOOKORDER_DB_NAME"`
	LegacySSLMode  string `envconfig:"BOOKORDER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BOOKORDER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BOOKORDER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BOOKORDER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BOOKORDER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BOOKORDER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BOOKORDER_REDIS_ADDR"`
	Password     string        `envconfig:"BOOKORDER_REDIS_PASSWORD"`
	DB           int           `envconfig:"BOOKORDER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BOOKORDER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BOOKORDER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BOOKORDER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BOOKORDER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BOOKORDER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// InfobipConfig carries the 2FA provider credentials. The application and
// message template are provisioned out of band; the service only sends and
// verifies PINs against them.
type InfobipConfig struct {
	APIKey    string        `envconfig:"INFOBIP_API_KEY" required:"true"`
	BaseURL   string        `envconfig:"INFOBIP_BASE_URL" default:"https://api.infobip.com"`
	AppID     string        `envconfig:"INFOBIP_APP_ID" required:"true"`
	MessageID string        `envconfig:"INFOBIP_MESSAGE_ID" required:"true"`
	Timeout   time.Duration `envconfig:"INFOBIP_TIMEOUT" default:"10s"`
}

type VerificationConfig struct {
	SessionTTL      time.Duration `envconfig:"BOOKORDER_VERIFICATION_SESSION_TTL" default:"10m"`
	RateLimitWindow time.Duration `envconfig:"BOOKORDER_VERIFICATION_RATE_WINDOW" default:"1h"`
	RateLimitMax    int           `envconfig:"BOOKORDER_VERIFICATION_RATE_MAX" default:"5"`
}

type SweepConfig struct {
	Interval  time.Duration `envconfig:"BOOKORDER_SWEEP_INTERVAL" default:"10m"`
	BatchSize int           `envconfig:"BOOKORDER_SWEEP_BATCH_SIZE" default:"500"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BOOKORDER_AUTO_MIGRATE" default:"false"`
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
