package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Auth          AuthConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Usage         UsageConfig
	Booking       BookingConfig
	Notify        NotifyConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
		if cfg.DB.DSN == "" {
			cfg.DB.DSN = defaultSQLiteDSN
		}
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := time.LoadLocation(cfg.App.Timezone); err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", EnvTimezone, cfg.App.Timezone, err)
	}
	return &cfg, nil
}

// LoadPassword reads only the argon2 parameters, for tooling that hashes
// credentials without a full environment.
func LoadPassword(cfg *PasswordConfig) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("parsing password config: %w", err)
	}
	return nil
}

type AppConfig struct {
	Env          string   `envconfig:"SALONBOOK_APP_ENV" required:"true"`
	Port         string   `envconfig:"SALONBOOK_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"SALONBOOK_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"SALONBOOK_LOG_WARN_STACK" default:"false"`
	Timezone     string   `envconfig:"SALONBOOK_TIMEZONE" default:"America/Sao_Paulo"`
	CORSOrigins  []string `envconfig:"SALONBOOK_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Location resolves the configured business timezone, falling back to UTC.
func (a AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type ServiceConfig struct {
	Kind string `envconfig:"SALONBOOK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SALONBOOK_DB_DSN"`
	Driver string `envconfig:"SALONBOOK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SALONBOOK_DB_HOST"`
	LegacyPort     int    `envconfig:"SALONBOOK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SALONBOOK_DB_USER"`
	LegacyPassword string `envconfig:"SALONBOOK_DB_PASSWORD"`
	LegacyName     string `envconfig:"SALONBOOK_DB_NAME"`
	LegacySSLMode  string `envconfig:"SALONBOOK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SALONBOOK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SALONBOOK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SALONBOOK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SALONBOOK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"SALONBOOK_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SALONBOOK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SALONBOOK_REDIS_ADDR"`
	Password     string        `envconfig:"SALONBOOK_REDIS_PASSWORD"`
	DB           int           `envconfig:"SALONBOOK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SALONBOOK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SALONBOOK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SALONBOOK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SALONBOOK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SALONBOOK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SALONBOOK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SALONBOOK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SALONBOOK_JWT_EXPIRATION_MINUTES" required:"true"`
	SessionTTLMinutes int    `envconfig:"SALONBOOK_SESSION_TTL_MINUTES" default:"720"`
}

// SessionTTL returns how long an issued access id stays valid in the session store.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

// AuthConfig holds the shared static credentials for the owner and platform surfaces.
type AuthConfig struct {
	AdminPasswordHash    string `envconfig:"SALONBOOK_ADMIN_PASSWORD_HASH"`
	PlatformPasswordHash string `envconfig:"SALONBOOK_PLATFORM_PASSWORD_HASH"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SALONBOOK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SALONBOOK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SALONBOOK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SALONBOOK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SALONBOOK_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"SALONBOOK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginTenantLimit int           `envconfig:"SALONBOOK_AUTH_RATE_LIMIT_LOGIN_TENANT_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"SALONBOOK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SALONBOOK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SALONBOOK_AUTO_MIGRATE" default:"false"`
	RedisMirror bool `envconfig:"SALONBOOK_COLLECTIONS_REDIS_MIRROR" default:"true"`
}

// UsageConfig controls the plan enforcement gate.
type UsageConfig struct {
	FailClosed bool `envconfig:"SALONBOOK_USAGE_FAIL_CLOSED" default:"false"`
}

type BookingConfig struct {
	DraftTTL time.Duration `envconfig:"SALONBOOK_BOOKING_DRAFT_TTL" default:"2h"`
}

// NotifyConfig configures the external finance event sink.
type NotifyConfig struct {
	Endpoint        string        `envconfig:"SALONBOOK_NOTIFY_ENDPOINT"`
	APIKey          string        `envconfig:"SALONBOOK_NOTIFY_API_KEY"`
	ProjectID       string        `envconfig:"SALONBOOK_NOTIFY_PROJECT_ID"`
	Timeout         time.Duration `envconfig:"SALONBOOK_NOTIFY_TIMEOUT" default:"5s"`
	QueueSize       int           `envconfig:"SALONBOOK_NOTIFY_QUEUE_SIZE" default:"256"`
	RatePerSecond   float64       `envconfig:"SALONBOOK_NOTIFY_RATE_PER_SECOND" default:"10"`
	Burst           int           `envconfig:"SALONBOOK_NOTIFY_BURST" default:"20"`
	ShutdownTimeout time.Duration `envconfig:"SALONBOOK_NOTIFY_SHUTDOWN_TIMEOUT" default:"10s"`
}

// Configured reports whether every value needed to reach the webhook sink is set.
func (n NotifyConfig) Configured() bool {
	return strings.TrimSpace(n.Endpoint) != "" &&
		strings.TrimSpace(n.APIKey) != "" &&
		strings.TrimSpace(n.ProjectID) != ""
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SALONBOOK_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"SALONBOOK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SALONBOOK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	FinanceTopic string `envconfig:"SALONBOOK_PUBSUB_FINANCE_TOPIC"`
}

// Enabled reports whether finance events should also be published to Pub/Sub.
func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.FinanceTopic) != ""
}

type CronConfig struct {
	Interval time.Duration `envconfig:"SALONBOOK_CRON_INTERVAL" default:"15m"`
	LockTTL  time.Duration `envconfig:"SALONBOOK_CRON_LOCK_TTL" default:"10m"`
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
