package config

const EnvPrefix = "LOJA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "LOJA_APP_ENV"
	EnvPort         = "LOJA_APP_PORT"
	EnvAppName      = "LOJA_APP_NAME"
	EnvPublicURL    = "LOJA_PUBLIC_BASE_URL"
	EnvCORSOrigins  = "LOJA_CORS_ALLOWED_ORIGINS"
	EnvLogLevel     = "LOJA_LOG_LEVEL"
	EnvLogWarnStack = "LOJA_LOG_WARN_STACK"

	EnvDBDSN      = "LOJA_DB_DSN"
	EnvDBHost     = "LOJA_DB_HOST"
	EnvDBPort     = "LOJA_DB_PORT"
	EnvDBUser     = "LOJA_DB_USER"
	EnvDBPassword = "LOJA_DB_PASSWORD"
	EnvDBName     = "LOJA_DB_NAME"
	EnvDBSSLMode  = "LOJA_DB_SSLMODE"

	EnvRedisURL  = "LOJA_REDIS_URL"
	EnvRedisAddr = "LOJA_REDIS_ADDR"

	EnvJWTSecret  = "LOJA_JWT_SECRET"
	EnvJWTIssuer  = "LOJA_JWT_ISSUER"
	EnvJWTExpMins = "LOJA_JWT_EXPIRATION_MINUTES"

	EnvCartTTL = "LOJA_CART_TTL"

	EnvCheckoutMaxInstallments = "LOJA_CHECKOUT_MAX_INSTALLMENTS"
	EnvCheckoutSuccessURL      = "LOJA_CHECKOUT_SUCCESS_URL"
	EnvCheckoutFailureURL      = "LOJA_CHECKOUT_FAILURE_URL"
	EnvCheckoutPendingURL      = "LOJA_CHECKOUT_PENDING_URL"

	EnvMercadoPagoAccessToken = "LOJA_MERCADOPAGO_ACCESS_TOKEN"
	EnvMercadoPagoBaseURL     = "LOJA_MERCADOPAGO_BASE_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
