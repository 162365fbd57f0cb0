package config

// EnvPrefix scopes envconfig lookups. Field tags carry fully-qualified names, so the
// prefix only matters for untagged fields.
const EnvPrefix = "RKDOORS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                  = "RKDOORS_APP_ENV"
	EnvPort                    = "RKDOORS_APP_PORT"
	EnvLogLevel                = "RKDOORS_LOG_LEVEL"
	EnvLogFormat               = "RKDOORS_LOG_FORMAT"
	EnvDBDSN                   = "RKDOORS_DB_DSN"
	EnvDBHost                  = "RKDOORS_DB_HOST"
	EnvDBUser                  = "RKDOORS_DB_USER"
	EnvDBName                  = "RKDOORS_DB_NAME"
	EnvSQLitePath              = "RKDOORS_SQLITE_PATH"
	EnvRedisURL                = "RKDOORS_REDIS_URL"
	EnvJWTSecret               = "RKDOORS_JWT_SECRET"
	EnvJWTIssuer               = "RKDOORS_JWT_ISSUER"
	EnvJWTExpMins              = "RKDOORS_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes  = "RKDOORS_REFRESH_TOKEN_TTL_MINUTES"
	EnvUseSQLite               = "RKDOORS_USE_SQLITE"
	EnvCatalogBaseURL          = "RKDOORS_CATALOG_BASE_URL"
	EnvCatalogTimeout          = "RKDOORS_CATALOG_TIMEOUT"
	EnvOrdersBackend           = "RKDOORS_ORDERS_BACKEND"
	EnvOrdersWriteTimeout      = "RKDOORS_ORDERS_WRITE_TIMEOUT"
	EnvDynamoOrdersTable       = "RKDOORS_DYNAMODB_ORDERS_TABLE"
	EnvPubSubOrdersTopic       = "RKDOORS_PUBSUB_ORDERS_TOPIC"
	EnvGCPProjectID            = "RKDOORS_GCP_PROJECT_ID"
	EnvCORSAllowedOrigins      = "RKDOORS_CORS_ALLOWED_ORIGINS"
	EnvEstimateCounterKey      = "RKDOORS_ESTIMATE_COUNTER_KEY"
	EnvIdentityCacheTTLMinutes = "RKDOORS_IDENTITY_CACHE_TTL_MINUTES"
	EnvCartIdleTTL             = "RKDOORS_CART_IDLE_TTL"
	EnvCartSweepInterval       = "RKDOORS_CART_SWEEP_INTERVAL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
