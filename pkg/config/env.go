package config

import _ "time/tzdata"

// EnvPrefix is empty because every field carries its fully qualified variable name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:salonbook.db?cache=shared&_fk=1"
)

const (
	EnvAppEnv   = "SALONBOOK_APP_ENV"
	EnvPort     = "SALONBOOK_APP_PORT"
	EnvTimezone = "SALONBOOK_TIMEZONE"

	EnvDBDSN  = "SALONBOOK_DB_DSN"
	EnvDBHost = "SALONBOOK_DB_HOST"
	EnvDBUser = "SALONBOOK_DB_USER"
	EnvDBName = "SALONBOOK_DB_NAME"

	EnvRedisURL = "SALONBOOK_REDIS_URL"

	EnvJWTSecret  = "SALONBOOK_JWT_SECRET"
	EnvJWTIssuer  = "SALONBOOK_JWT_ISSUER"
	EnvJWTExpMins = "SALONBOOK_JWT_EXPIRATION_MINUTES"

	EnvUseSQLite        = "SALONBOOK_USE_SQLITE"
	EnvUsageFailClosed  = "SALONBOOK_USAGE_FAIL_CLOSED"
	EnvNotifyEndpoint   = "SALONBOOK_NOTIFY_ENDPOINT"
	EnvNotifyAPIKey     = "SALONBOOK_NOTIFY_API_KEY"
	EnvNotifyProjectID  = "SALONBOOK_NOTIFY_PROJECT_ID"
	EnvPubSubFinance    = "SALONBOOK_PUBSUB_FINANCE_TOPIC"
	EnvBookingDraftTTL  = "SALONBOOK_BOOKING_DRAFT_TTL"
	EnvAdminPassword    = "SALONBOOK_ADMIN_PASSWORD_HASH"
	EnvPlatformPassword = "SALONBOOK_PLATFORM_PASSWORD_HASH"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
