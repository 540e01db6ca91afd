package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is applied by envconfig when resolving variables.
const EnvPrefix = "MARKETLOOP"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Canonical environment variable names, shared with tests and ops tooling.
const (
	EnvAppEnv                 = "MARKETLOOP_APP_ENV"
	EnvPort                   = "MARKETLOOP_APP_PORT"
	EnvDBDSN                  = "MARKETLOOP_DB_DSN"
	EnvDBHost                 = "MARKETLOOP_DB_HOST"
	EnvDBUser                 = "MARKETLOOP_DB_USER"
	EnvDBName                 = "MARKETLOOP_DB_NAME"
	EnvRedisURL               = "MARKETLOOP_REDIS_URL"
	EnvJWTSecret              = "MARKETLOOP_JWT_SECRET"
	EnvJWTIssuer              = "MARKETLOOP_JWT_ISSUER"
	EnvJWTExpMins             = "MARKETLOOP_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "MARKETLOOP_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Cart          CartConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string   `envconfig:"MARKETLOOP_APP_ENV" required:"true"`
	Port         string   `envconfig:"MARKETLOOP_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"MARKETLOOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"MARKETLOOP_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"MARKETLOOP_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MARKETLOOP_DB_DSN"`
	Driver string `envconfig:"MARKETLOOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MARKETLOOP_DB_HOST"`
	LegacyPort     int    `envconfig:"MARKETLOOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MARKETLOOP_DB_USER"`
	LegacyPassword string `envconfig:"MARKETLOOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"MARKETLOOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"MARKETLOOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MARKETLOOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MARKETLOOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MARKETLOOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MARKETLOOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MARKETLOOP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MARKETLOOP_REDIS_ADDR"`
	Password     string        `envconfig:"MARKETLOOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"MARKETLOOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MARKETLOOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MARKETLOOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MARKETLOOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MARKETLOOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MARKETLOOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"MARKETLOOP_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"MARKETLOOP_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"MARKETLOOP_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"MARKETLOOP_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MARKETLOOP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MARKETLOOP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MARKETLOOP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MARKETLOOP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MARKETLOOP_ARGON_KEY_LEN" default:"32"`
}

// CartConfig controls how long session carts live in Redis between visits.
type CartConfig struct {
	TTLHours int `envconfig:"MARKETLOOP_CART_TTL_HOURS" default:"168"`
}

// TTL returns the configured cart retention window.
func (c CartConfig) TTL() time.Duration {
	if c.TTLHours <= 0 {
		return 0
	}
	return time.Duration(c.TTLHours) * time.Hour
}

// AuthRateLimitConfig throttles credential-guessing surfaces. A zero window
// or zero limits disables the corresponding policy.
type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"MARKETLOOP_AUTH_RL_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit       int           `envconfig:"MARKETLOOP_AUTH_RL_LOGIN_IP_LIMIT" default:"20"`
	LoginEmailLimit    int           `envconfig:"MARKETLOOP_AUTH_RL_LOGIN_EMAIL_LIMIT" default:"5"`
	RegisterWindow     time.Duration `envconfig:"MARKETLOOP_AUTH_RL_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"MARKETLOOP_AUTH_RL_REGISTER_IP_LIMIT" default:"30"`
	RegisterEmailLimit int           `envconfig:"MARKETLOOP_AUTH_RL_REGISTER_EMAIL_LIMIT" default:"3"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MARKETLOOP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MARKETLOOP_AUTO_MIGRATE" default:"false"`
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
