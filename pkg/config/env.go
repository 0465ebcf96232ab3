package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "PIXFUNNEL"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv              = "PIXFUNNEL_APP_ENV"
	EnvPort                = "PIXFUNNEL_APP_PORT"
	EnvLogLevel            = "PIXFUNNEL_LOG_LEVEL"
	EnvDBDSN               = "PIXFUNNEL_DB_DSN"
	EnvDBDriver            = "PIXFUNNEL_DB_DRIVER"
	EnvDBHost              = "PIXFUNNEL_DB_HOST"
	EnvDBUser              = "PIXFUNNEL_DB_USER"
	EnvDBName              = "PIXFUNNEL_DB_NAME"
	EnvRedisURL            = "PIXFUNNEL_REDIS_URL"
	EnvJWTSecret           = "PIXFUNNEL_JWT_SECRET"
	EnvJWTIssuer           = "PIXFUNNEL_JWT_ISSUER"
	EnvJWTExpMins          = "PIXFUNNEL_JWT_EXPIRATION_MINUTES"
	EnvAdminPasswordHash   = "PIXFUNNEL_ADMIN_PASSWORD_HASH"
	EnvCheckoutMode        = "PIXFUNNEL_CHECKOUT_MODE"
	EnvCheckoutDiscount    = "PIXFUNNEL_CHECKOUT_PIX_DISCOUNT_RATE"
	EnvCheckoutFallbackTax = "PIXFUNNEL_CHECKOUT_FALLBACK_TAX_ID"
	EnvPixGatewayURL       = "PIXFUNNEL_PIX_GATEWAY_URL"
	EnvPixGatewayAPIKey    = "PIXFUNNEL_PIX_GATEWAY_API_KEY"
	EnvViaCEPBaseURL       = "PIXFUNNEL_VIACEP_BASE_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
