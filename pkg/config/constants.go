package config

// EnvPrefix is intentionally empty: every variable carries the full
// KINMEL_ prefix in its envconfig tag.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names shared between Load, tests and tooling.
const (
	EnvAppEnv     = "KINMEL_APP_ENV"
	EnvPort       = "KINMEL_APP_PORT"
	EnvDBDSN      = "KINMEL_DB_DSN"
	EnvDBHost     = "KINMEL_DB_HOST"
	EnvDBUser     = "KINMEL_DB_USER"
	EnvDBName     = "KINMEL_DB_NAME"
	EnvRedisURL   = "KINMEL_REDIS_URL"
	EnvJWTSecret  = "KINMEL_JWT_SECRET"
	EnvJWTIssuer  = "KINMEL_JWT_ISSUER"
	EnvJWTExpMins = "KINMEL_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
