package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "PRINTLINK"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "PRINTLINK_APP_ENV"
	EnvPort   = "PRINTLINK_APP_PORT"

	EnvDBDSN  = "PRINTLINK_DB_DSN"
	EnvDBHost = "PRINTLINK_DB_HOST"
	EnvDBUser = "PRINTLINK_DB_USER"
	EnvDBName = "PRINTLINK_DB_NAME"

	EnvRedisURL = "PRINTLINK_REDIS_URL"

	EnvJWTSecret     = "PRINTLINK_JWT_SECRET"
	EnvJWTIssuer     = "PRINTLINK_JWT_ISSUER"
	EnvJWTExpiration = "PRINTLINK_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
