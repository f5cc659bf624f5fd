package config

// EnvPrefix is intentionally empty; every field carries its full env name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "BOOKORDER_APP_ENV"
	EnvPort     = "BOOKORDER_APP_PORT"
	EnvDBDSN    = "BOOKORDER_DB_DSN"
	EnvDBHost   = "BOOKORDER_DB_HOST"
	EnvDBUser   = "BOOKORDER_DB_USER"
	EnvDBName   = "BOOKORDER_DB_NAME"
	EnvRedisURL = "BOOKORDER_REDIS_URL"

	EnvInfobipAPIKey    = "INFOBIP_API_KEY"
	EnvInfobipBaseURL   = "INFOBIP_BASE_URL"
	EnvInfobipAppID     = "INFOBIP_APP_ID"
	EnvInfobipMessageID = "INFOBIP_MESSAGE_ID"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
