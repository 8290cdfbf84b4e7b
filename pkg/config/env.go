package config

// EnvPrefix is handed to envconfig; every field declares its full variable name.
const EnvPrefix = "ATTIRE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv      = "ATTIRE_APP_ENV"
	EnvPort        = "ATTIRE_APP_PORT"
	EnvDBDSN       = "ATTIRE_DB_DSN"
	EnvDBHost      = "ATTIRE_DB_HOST"
	EnvDBUser      = "ATTIRE_DB_USER"
	EnvDBName      = "ATTIRE_DB_NAME"
	EnvUseSQLite   = "ATTIRE_USE_SQLITE"
	EnvRedisURL    = "ATTIRE_REDIS_URL"
	EnvJWTSecret   = "ATTIRE_JWT_SECRET"
	EnvJWTIssuer   = "ATTIRE_JWT_ISSUER"
	EnvJWTExpMins  = "ATTIRE_JWT_EXPIRATION_MINUTES"
	EnvShipFee     = "ATTIRE_SHIPPING_FEE"
	EnvShipFreeMin = "ATTIRE_SHIPPING_THRESHOLD"
	EnvCORSOrigins = "ATTIRE_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
