package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Cart          CartConfig
	Checkout      CheckoutConfig
	MercadoPago   MercadoPagoConfig
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
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var err error
	if c.Checkout.MaxInstallments < 1 {
		err = multierr.Append(err, fmt.Errorf("%s must be at least 1", EnvCheckoutMaxInstallments))
	}
	if c.Cart.TTL <= 0 {
		err = multierr.Append(err, fmt.Errorf("%s must be positive", EnvCartTTL))
	}
	if c.App.IsProd() && strings.TrimSpace(c.MercadoPago.AccessToken) == "" {
		err = multierr.Append(err, fmt.Errorf("%s is required in prod", EnvMercadoPagoAccessToken))
	}
	for key, raw := range map[string]string{
		EnvCheckoutSuccessURL: c.Checkout.SuccessURL,
		EnvCheckoutFailureURL: c.Checkout.FailureURL,
		EnvCheckoutPendingURL: c.Checkout.PendingURL,
	} {
		if _, parseErr := url.ParseRequestURI(raw); parseErr != nil {
			err = multierr.Append(err, fmt.Errorf("%s must be an absolute url: %w", key, parseErr))
		}
	}
	return err
}

type AppConfig struct {
	Env          string   `envconfig:"LOJA_APP_ENV" required:"true"`
	Port         string   `envconfig:"LOJA_APP_PORT" required:"true"`
	Name         string   `envconfig:"LOJA_APP_NAME" default:"loja-api"`
	PublicURL    string   `envconfig:"LOJA_PUBLIC_BASE_URL" default:"http://localhost:3000"`
	CORSOrigins  []string `envconfig:"LOJA_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	LogLevel     string   `envconfig:"LOJA_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"LOJA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"LOJA_DB_DSN"`

	LegacyHost     string `envconfig:"LOJA_DB_HOST"`
	LegacyPort     int    `envconfig:"LOJA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LOJA_DB_USER"`
	LegacyPassword string `envconfig:"LOJA_DB_PASSWORD"`
	LegacyName     string `envconfig:"LOJA_DB_NAME"`
	LegacySSLMode  string `envconfig:"LOJA_DB_SSLMODE" default:"disable"`

	MaxOpenConns       int           `envconfig:"LOJA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns       int           `envconfig:"LOJA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime    time.Duration `envconfig:"LOJA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime    time.Duration `envconfig:"LOJA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQueryThreshold time.Duration `envconfig:"LOJA_DB_SLOW_QUERY_THRESHOLD" default:"200ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LOJA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LOJA_REDIS_ADDR"`
	Password     string        `envconfig:"LOJA_REDIS_PASSWORD"`
	DB           int           `envconfig:"LOJA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LOJA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LOJA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LOJA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LOJA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LOJA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"LOJA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LOJA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"LOJA_JWT_EXPIRATION_MINUTES" required:"true"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LOJA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LOJA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LOJA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LOJA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LOJA_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"LOJA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit    int           `envconfig:"LOJA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	LoginEmailLimit int           `envconfig:"LOJA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	RegisterWindow  time.Duration `envconfig:"LOJA_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterIPLimit int           `envconfig:"LOJA_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"10"`
}

type CartConfig struct {
	TTL          time.Duration `envconfig:"LOJA_CART_TTL" default:"168h"`
	CookieSecure bool          `envconfig:"LOJA_CART_COOKIE_SECURE" default:"false"`
}

type CheckoutConfig struct {
	MaxInstallments int           `envconfig:"LOJA_CHECKOUT_MAX_INSTALLMENTS" default:"10"`
	SuccessURL      string        `envconfig:"LOJA_CHECKOUT_SUCCESS_URL" default:"http://localhost:3000/checkout/sucesso"`
	FailureURL      string        `envconfig:"LOJA_CHECKOUT_FAILURE_URL" default:"http://localhost:3000/checkout/falha"`
	PendingURL      string        `envconfig:"LOJA_CHECKOUT_PENDING_URL" default:"http://localhost:3000/checkout/pendente"`
	IdempotencyTTL  time.Duration `envconfig:"LOJA_CHECKOUT_IDEMPOTENCY_TTL" default:"24h"`
}

type MercadoPagoConfig struct {
	AccessToken string        `envconfig:"LOJA_MERCADOPAGO_ACCESS_TOKEN"`
	BaseURL     string        `envconfig:"LOJA_MERCADOPAGO_BASE_URL" default:"https://api.mercadopago.com"`
	Timeout     time.Duration `envconfig:"LOJA_MERCADOPAGO_TIMEOUT" default:"10s"`
	Sandbox     bool          `envconfig:"LOJA_MERCADOPAGO_SANDBOX" default:"true"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"LOJA_AUTO_MIGRATE" default:"false"`
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
