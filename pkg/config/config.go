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
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Checkout      CheckoutConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		if cfg.DB.SQLitePath == "" {
			cfg.DB.SQLitePath = "attire.db"
		}
	} else if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ATTIRE_APP_ENV" required:"true"`
	Port         string `envconfig:"ATTIRE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ATTIRE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ATTIRE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN        string `envconfig:"ATTIRE_DB_DSN"`
	SQLitePath string `envconfig:"ATTIRE_DB_SQLITE_PATH"`

	LegacyHost     string `envconfig:"ATTIRE_DB_HOST"`
	LegacyPort     int    `envconfig:"ATTIRE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ATTIRE_DB_USER"`
	LegacyPassword string `envconfig:"ATTIRE_DB_PASSWORD"`
	LegacyName     string `envconfig:"ATTIRE_DB_NAME"`
	LegacySSLMode  string `envconfig:"ATTIRE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ATTIRE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ATTIRE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ATTIRE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ATTIRE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ATTIRE_REDIS_URL"`
	Address      string        `envconfig:"ATTIRE_REDIS_ADDR"`
	Password     string        `envconfig:"ATTIRE_REDIS_PASSWORD"`
	DB           int           `envconfig:"ATTIRE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ATTIRE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ATTIRE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ATTIRE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ATTIRE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ATTIRE_REDIS_WRITE_TIMEOUT" default:"5s"`
	GuestCartTTL time.Duration `envconfig:"ATTIRE_REDIS_GUEST_CART_TTL" default:"720h"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ATTIRE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ATTIRE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ATTIRE_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// TokenTTL returns the access token lifetime.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ATTIRE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ATTIRE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ATTIRE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ATTIRE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ATTIRE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"ATTIRE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"ATTIRE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"ATTIRE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"ATTIRE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"ATTIRE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"ATTIRE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ATTIRE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ATTIRE_AUTO_MIGRATE" default:"false"`
}

// CheckoutConfig holds the storefront pricing constants shared with clients.
type CheckoutConfig struct {
	ShippingThreshold decimal.Decimal `envconfig:"ATTIRE_SHIPPING_THRESHOLD" default:"2000"`
	ShippingFee       decimal.Decimal `envconfig:"ATTIRE_SHIPPING_FEE" default:"150"`
	TaxPercent        decimal.Decimal `envconfig:"ATTIRE_TAX_PERCENT" default:"0"`
}

func (c CheckoutConfig) validate() error {
	if c.ShippingThreshold.IsNegative() || c.ShippingFee.IsNegative() || c.TaxPercent.IsNegative() {
		return fmt.Errorf("checkout amounts must be non-negative")
	}
	return nil
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ATTIRE_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
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
