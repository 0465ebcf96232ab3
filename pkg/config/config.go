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
	JWT          JWTConfig
	Admin        AdminConfig
	Password     PasswordConfig
	Checkout     CheckoutConfig
	PixGateway   PixGatewayConfig
	ViaCEP       ViaCEPConfig
	Catalog      CatalogConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
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
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PIXFUNNEL_APP_ENV" required:"true"`
	Port         string `envconfig:"PIXFUNNEL_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PIXFUNNEL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PIXFUNNEL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PIXFUNNEL_DB_DSN"`
	Driver string `envconfig:"PIXFUNNEL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PIXFUNNEL_DB_HOST"`
	LegacyPort     int    `envconfig:"PIXFUNNEL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PIXFUNNEL_DB_USER"`
	LegacyPassword string `envconfig:"PIXFUNNEL_DB_PASSWORD"`
	LegacyName     string `envconfig:"PIXFUNNEL_DB_NAME"`
	LegacySSLMode  string `envconfig:"PIXFUNNEL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PIXFUNNEL_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"PIXFUNNEL_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"PIXFUNNEL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PIXFUNNEL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded sqlite one.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), "sqlite")
}

type RedisConfig struct {
	URL          string        `envconfig:"PIXFUNNEL_REDIS_URL"`
	Address      string        `envconfig:"PIXFUNNEL_REDIS_ADDR"`
	Password     string        `envconfig:"PIXFUNNEL_REDIS_PASSWORD"`
	DB           int           `envconfig:"PIXFUNNEL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PIXFUNNEL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PIXFUNNEL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PIXFUNNEL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PIXFUNNEL_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"PIXFUNNEL_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"PIXFUNNEL_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PIXFUNNEL_JWT_ISSUER" default:"pixfunnel"`
	ExpirationMinutes int    `envconfig:"PIXFUNNEL_JWT_EXPIRATION_MINUTES" default:"720"`
}

// TTL returns the admin token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type AdminConfig struct {
	PasswordHash string `envconfig:"PIXFUNNEL_ADMIN_PASSWORD_HASH" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PIXFUNNEL_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PIXFUNNEL_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PIXFUNNEL_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PIXFUNNEL_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PIXFUNNEL_ARGON_KEY_LEN" default:"32"`
}

// CheckoutConfig drives the pricing policy and the submission pipeline.
type CheckoutConfig struct {
	Mode              string        `envconfig:"PIXFUNNEL_CHECKOUT_MODE" default:"discount"`
	PixDiscountRate   string        `envconfig:"PIXFUNNEL_CHECKOUT_PIX_DISCOUNT_RATE" default:"0.15"`
	FallbackTaxID     string        `envconfig:"PIXFUNNEL_CHECKOUT_FALLBACK_TAX_ID"`
	RelockOnClear     bool          `envconfig:"PIXFUNNEL_CHECKOUT_RELOCK_ON_CONTACT_CLEARED" default:"true"`
	SubmitLockTTL     time.Duration `envconfig:"PIXFUNNEL_CHECKOUT_SUBMIT_LOCK_TTL" default:"30s"`
	DefaultCountry    string        `envconfig:"PIXFUNNEL_CHECKOUT_DEFAULT_COUNTRY" default:"Brasil"`
	ChargeDescription string        `envconfig:"PIXFUNNEL_CHECKOUT_CHARGE_DESCRIPTION"`
}

func (c CheckoutConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Mode)) {
	case "discount", "shipping", "combined":
		return nil
	}
	return fmt.Errorf("%s must be one of discount, shipping, combined (got %q)", EnvCheckoutMode, c.Mode)
}

type PixGatewayConfig struct {
	URL     string        `envconfig:"PIXFUNNEL_PIX_GATEWAY_URL" required:"true"`
	APIKey  string        `envconfig:"PIXFUNNEL_PIX_GATEWAY_API_KEY"`
	Timeout time.Duration `envconfig:"PIXFUNNEL_PIX_GATEWAY_TIMEOUT" default:"15s"`
}

type ViaCEPConfig struct {
	BaseURL           string        `envconfig:"PIXFUNNEL_VIACEP_BASE_URL" default:"https://viacep.com.br"`
	Timeout           time.Duration `envconfig:"PIXFUNNEL_VIACEP_TIMEOUT" default:"5s"`
	RequestsPerSecond float64       `envconfig:"PIXFUNNEL_VIACEP_RPS" default:"10"`
	CacheTTL          time.Duration `envconfig:"PIXFUNNEL_VIACEP_CACHE_TTL" default:"24h"`
}

type CatalogConfig struct {
	OfferCacheTTL time.Duration `envconfig:"PIXFUNNEL_CATALOG_OFFER_CACHE_TTL" default:"30s"`
}

type RateLimitConfig struct {
	CreatePixWindow time.Duration `envconfig:"PIXFUNNEL_RATE_LIMIT_CREATE_PIX_WINDOW" default:"1m"`
	CreatePixLimit  int           `envconfig:"PIXFUNNEL_RATE_LIMIT_CREATE_PIX_LIMIT" default:"10"`
	CEPWindow       time.Duration `envconfig:"PIXFUNNEL_RATE_LIMIT_CEP_WINDOW" default:"1m"`
	CEPLimit        int           `envconfig:"PIXFUNNEL_RATE_LIMIT_CEP_LIMIT" default:"60"`
	LoginWindow     time.Duration `envconfig:"PIXFUNNEL_RATE_LIMIT_LOGIN_WINDOW" default:"5m"`
	LoginLimit      int           `envconfig:"PIXFUNNEL_RATE_LIMIT_LOGIN_LIMIT" default:"10"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"PIXFUNNEL_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PIXFUNNEL_AUTO_MIGRATE" default:"false"`
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
