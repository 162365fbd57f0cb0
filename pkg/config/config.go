package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	OrdersBackendSQL    = "sql"
	OrdersBackendDynamo = "dynamodb"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Catalog       CatalogConfig
	Orders        OrdersConfig
	DynamoDB      DynamoDBConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Estimates     EstimatesConfig
	Cart          CartConfig
	Identity      IdentityConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if !cfg.FeatureFlags.UseSQLite {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if err := cfg.Orders.validate(); err != nil {
		return nil, err
	}
	if cfg.Orders.Backend == OrdersBackendDynamo && strings.TrimSpace(cfg.DynamoDB.OrdersTable) == "" {
		return nil, fmt.Errorf("%s is required when %s=%s", EnvDynamoOrdersTable, EnvOrdersBackend, OrdersBackendDynamo)
	}
	if strings.TrimSpace(cfg.PubSub.OrdersTopic) != "" && strings.TrimSpace(cfg.GCP.ProjectID) == "" {
		return nil, fmt.Errorf("%s is required when %s is set", EnvGCPProjectID, EnvPubSubOrdersTopic)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"RKDOORS_APP_ENV" required:"true"`
	Port         string `envconfig:"RKDOORS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"RKDOORS_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"RKDOORS_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"RKDOORS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN        string `envconfig:"RKDOORS_DB_DSN"`
	Driver     string `envconfig:"RKDOORS_DB_DRIVER" default:"postgres"`
	SQLitePath string `envconfig:"RKDOORS_SQLITE_PATH" default:"rkdoors.db"`

	LegacyHost     string `envconfig:"RKDOORS_DB_HOST"`
	LegacyPort     int    `envconfig:"RKDOORS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RKDOORS_DB_USER"`
	LegacyPassword string `envconfig:"RKDOORS_DB_PASSWORD"`
	LegacyName     string `envconfig:"RKDOORS_DB_NAME"`
	LegacySSLMode  string `envconfig:"RKDOORS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RKDOORS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RKDOORS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RKDOORS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RKDOORS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RKDOORS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"RKDOORS_REDIS_ADDR"`
	Password     string        `envconfig:"RKDOORS_REDIS_PASSWORD"`
	DB           int           `envconfig:"RKDOORS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RKDOORS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RKDOORS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RKDOORS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RKDOORS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RKDOORS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"RKDOORS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"RKDOORS_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"RKDOORS_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"RKDOORS_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"RKDOORS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"RKDOORS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"RKDOORS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"RKDOORS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"RKDOORS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	SignInWindow     time.Duration `envconfig:"RKDOORS_AUTH_RATE_LIMIT_SIGN_IN_WINDOW" default:"1m"`
	SignInEmailLimit int           `envconfig:"RKDOORS_AUTH_RATE_LIMIT_SIGN_IN_EMAIL_LIMIT" default:"5"`
	SignInIPLimit    int           `envconfig:"RKDOORS_AUTH_RATE_LIMIT_SIGN_IN_IP_LIMIT" default:"20"`
	SignUpWindow     time.Duration `envconfig:"RKDOORS_AUTH_RATE_LIMIT_SIGN_UP_WINDOW" default:"5m"`
	SignUpEmailLimit int           `envconfig:"RKDOORS_AUTH_RATE_LIMIT_SIGN_UP_EMAIL_LIMIT" default:"3"`
	SignUpIPLimit    int           `envconfig:"RKDOORS_AUTH_RATE_LIMIT_SIGN_UP_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"RKDOORS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"RKDOORS_AUTO_MIGRATE" default:"false"`
}

type CatalogConfig struct {
	BaseURL string        `envconfig:"RKDOORS_CATALOG_BASE_URL" default:"https://rkdoors.pythonanywhere.com/api"`
	Timeout time.Duration `envconfig:"RKDOORS_CATALOG_TIMEOUT" default:"10s"`
}

type OrdersConfig struct {
	Backend      string        `envconfig:"RKDOORS_ORDERS_BACKEND" default:"sql"`
	WriteTimeout time.Duration `envconfig:"RKDOORS_ORDERS_WRITE_TIMEOUT" default:"10s"`
	FeedChannel  string        `envconfig:"RKDOORS_ORDERS_FEED_CHANNEL" default:"rk:orders:changed"`
}

func (o *OrdersConfig) validate() error {
	o.Backend = strings.ToLower(strings.TrimSpace(o.Backend))
	switch o.Backend {
	case "":
		o.Backend = OrdersBackendSQL
	case OrdersBackendSQL, OrdersBackendDynamo:
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", EnvOrdersBackend, OrdersBackendSQL, OrdersBackendDynamo, o.Backend)
	}
	if o.WriteTimeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvOrdersWriteTimeout)
	}
	return nil
}

type DynamoDBConfig struct {
	Region          string `envconfig:"RKDOORS_AWS_REGION" default:"ap-south-1"`
	Endpoint        string `envconfig:"RKDOORS_DYNAMODB_ENDPOINT"`
	AccessKeyID     string `envconfig:"RKDOORS_AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"RKDOORS_AWS_SECRET_ACCESS_KEY"`
	OrdersTable     string `envconfig:"RKDOORS_DYNAMODB_ORDERS_TABLE" default:"orders"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"RKDOORS_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"RKDOORS_PUBSUB_ORDERS_TOPIC"`
}

// Enabled reports whether order events should be published.
func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.OrdersTopic) != ""
}

type EstimatesConfig struct {
	CounterKey string `envconfig:"RKDOORS_ESTIMATE_COUNTER_KEY" default:"lastEstimateNumber"`
}

type CartConfig struct {
	IdleTTL       time.Duration `envconfig:"RKDOORS_CART_IDLE_TTL" default:"24h"`
	SweepInterval time.Duration `envconfig:"RKDOORS_CART_SWEEP_INTERVAL" default:"10m"`
}

type IdentityConfig struct {
	CacheTTLMinutes int `envconfig:"RKDOORS_IDENTITY_CACHE_TTL_MINUTES" default:"60"`
}

// CacheTTL returns how long a cached identity stays in the key-value store.
func (i IdentityConfig) CacheTTL() time.Duration {
	if i.CacheTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(i.CacheTTLMinutes) * time.Minute
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"RKDOORS_CORS_ALLOWED_ORIGINS" default:"http://localhost:8081,http://localhost:19006"`
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
