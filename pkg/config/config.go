package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "achatrevente"

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	LocalStore    LocalStoreConfig
	Media         MediaConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RemoteEnabled reports whether the remote backend is configured. The
// choice is made once at startup and never switches at runtime.
func (c *Config) RemoteEnabled() bool {
	return strings.TrimSpace(c.DB.DSN) != ""
}

func (c *Config) validate() error {
	if !c.RemoteEnabled() {
		return nil
	}
	if c.Redis.URL == "" && c.Redis.Address == "" {
		return fmt.Errorf("remote mode requires a redis url or address")
	}
	if c.JWT.Secret == "" || c.JWT.Issuer == "" {
		return fmt.Errorf("remote mode requires a jwt secret and issuer")
	}
	if c.JWT.ExpirationMinutes <= 0 {
		return fmt.Errorf("jwt expiration minutes must be positive")
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"ACHATREVENTE_APP_ENV" default:"development"`
	Port         string `envconfig:"ACHATREVENTE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ACHATREVENTE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ACHATREVENTE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	// DSN empty means the service runs on device-local storage only.
	DSN    string `envconfig:"ACHATREVENTE_DB_DSN"`
	Driver string `envconfig:"ACHATREVENTE_DB_DRIVER" default:"postgres"`

	AutoMigrate bool `envconfig:"ACHATREVENTE_DB_AUTO_MIGRATE" default:"false"`

	MaxOpenConns    int           `envconfig:"ACHATREVENTE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ACHATREVENTE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ACHATREVENTE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ACHATREVENTE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ACHATREVENTE_REDIS_URL"`
	Address      string        `envconfig:"ACHATREVENTE_REDIS_ADDR"`
	Password     string        `envconfig:"ACHATREVENTE_REDIS_PASSWORD"`
	DB           int           `envconfig:"ACHATREVENTE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ACHATREVENTE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ACHATREVENTE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ACHATREVENTE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ACHATREVENTE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ACHATREVENTE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ACHATREVENTE_JWT_SECRET"`
	Issuer            string `envconfig:"ACHATREVENTE_JWT_ISSUER" default:"achatrevente"`
	ExpirationMinutes int    `envconfig:"ACHATREVENTE_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ACHATREVENTE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ACHATREVENTE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ACHATREVENTE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ACHATREVENTE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ACHATREVENTE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"ACHATREVENTE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"ACHATREVENTE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"ACHATREVENTE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"ACHATREVENTE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"ACHATREVENTE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"ACHATREVENTE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type LocalStoreConfig struct {
	Dir string `envconfig:"ACHATREVENTE_LOCAL_STORE_DIR" default:".achatrevente"`
}

type MediaConfig struct {
	Dir         string `envconfig:"ACHATREVENTE_MEDIA_DIR" default:"media"`
	BaseURL     string `envconfig:"ACHATREVENTE_MEDIA_BASE_URL" default:"/media"`
	MaxUploadMB int    `envconfig:"ACHATREVENTE_MAX_UPLOAD_MB" default:"10"`
}
