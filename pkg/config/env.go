package config

const (
	EnvPrefix = "MEN4U_ADMIN"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:men4u_admin.db?cache=shared"
)

const (
	EnvAppEnv  = "MEN4U_ADMIN_APP_ENV"
	EnvPort    = "MEN4U_ADMIN_APP_PORT"
	EnvLogLvl  = "MEN4U_ADMIN_LOG_LEVEL"
	EnvLogFmt  = "MEN4U_ADMIN_LOG_FORMAT"
	EnvJWTSec  = "MEN4U_ADMIN_JWT_SECRET"
	EnvJWTIss  = "MEN4U_ADMIN_JWT_ISSUER"
	EnvMaxSess = "MEN4U_ADMIN_MAX_SESSION_MINUTES"

	EnvMen4uBaseURL   = "MEN4U_ADMIN_MEN4U_BASE_URL"
	EnvMen4uAppSource = "MEN4U_ADMIN_MEN4U_APP_SOURCE"
	EnvMen4uTimeout   = "MEN4U_ADMIN_MEN4U_TIMEOUT"

	EnvListPageSize = "MEN4U_ADMIN_LIST_PAGE_SIZE"

	EnvDBDSN    = "MEN4U_ADMIN_DB_DSN"
	EnvDBDriver = "MEN4U_ADMIN_DB_DRIVER"
	EnvDBHost   = "MEN4U_ADMIN_DB_HOST"
	EnvDBUser   = "MEN4U_ADMIN_DB_USER"
	EnvDBName   = "MEN4U_ADMIN_DB_NAME"

	EnvRedisURL = "MEN4U_ADMIN_REDIS_URL"
	EnvCORS     = "MEN4U_ADMIN_CORS_ORIGINS"
)

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
