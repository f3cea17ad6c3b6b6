package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "INSURECRM"

	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names that tests and error messages reference.
const (
	EnvAppEnv      = "INSURECRM_APP_ENV"
	EnvPort        = "INSURECRM_APP_PORT"
	EnvAutoMigrate = "INSURECRM_APP_AUTO_MIGRATE"
	EnvDBDSN       = "INSURECRM_DB_DSN"
	EnvDBHost      = "INSURECRM_DB_HOST"
	EnvDBUser      = "INSURECRM_DB_USER"
	EnvDBName      = "INSURECRM_DB_NAME"
	EnvRedisURL    = "INSURECRM_REDIS_URL"
	EnvJWTSecret   = "INSURECRM_JWT_SECRET"
	EnvJWTIssuer   = "INSURECRM_JWT_ISSUER"
	EnvJWTExp      = "INSURECRM_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID     = "INSURECRM_GCP_PROJECT_ID"
	EnvPubSubPolicyTop  = "INSURECRM_PUBSUB_POLICY_TOPIC"
	EnvPubSubPolicySub  = "INSURECRM_PUBSUB_POLICY_SUBSCRIPTION"
	EnvPubSubNotifyTop  = "INSURECRM_PUBSUB_NOTIFICATION_TOPIC"
	EnvPubSubNotifySub  = "INSURECRM_PUBSUB_NOTIFICATION_SUBSCRIPTION"
	EnvSyncQueueDir     = "INSURECRM_SYNC_QUEUE_DIR"
	EnvSyncAPIBaseURL   = "INSURECRM_SYNC_API_BASE_URL"
	EnvSyncAPIToken     = "INSURECRM_SYNC_API_TOKEN"
	EnvSyncProbePeriod  = "INSURECRM_SYNC_PROBE_INTERVAL"
	EnvSyncSharedQueue  = "INSURECRM_SYNC_SHARED_QUEUE"
	EnvEscalationMaxAge = "INSURECRM_ESCALATION_MAX_AGE_DAYS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App        AppConfig
	Service    ServiceConfig
	DB         DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Password   PasswordConfig
	GCP        GCPConfig
	PubSub     PubSubConfig
	Outbox     OutboxConfig
	Cron       CronConfig
	Escalation EscalationConfig
	Sync       SyncConfig

	AuthRateLimit AuthRateLimitConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"INSURECRM_APP_ENV" required:"true"`
	Port         string `envconfig:"INSURECRM_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"INSURECRM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"INSURECRM_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"INSURECRM_APP_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "prod")
}

type ServiceConfig struct {
	Kind string `envconfig:"INSURECRM_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"INSURECRM_DB_DSN"`
	Driver string `envconfig:"INSURECRM_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"INSURECRM_DB_HOST"`
	LegacyPort     int    `envconfig:"INSURECRM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"INSURECRM_DB_USER"`
	LegacyPassword string `envconfig:"INSURECRM_DB_PASSWORD"`
	LegacyName     string `envconfig:"INSURECRM_DB_NAME"`
	LegacySSLMode  string `envconfig:"INSURECRM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"INSURECRM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"INSURECRM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"INSURECRM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"INSURECRM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"INSURECRM_REDIS_URL" required:"true"`
	Address      string        `envconfig:"INSURECRM_REDIS_ADDR"`
	Password     string        `envconfig:"INSURECRM_REDIS_PASSWORD"`
	DB           int           `envconfig:"INSURECRM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"INSURECRM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"INSURECRM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"INSURECRM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"INSURECRM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"INSURECRM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"INSURECRM_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"INSURECRM_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"INSURECRM_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenDays  int    `envconfig:"INSURECRM_JWT_REFRESH_TOKEN_DAYS" default:"30"`
}

// RefreshTokenTTL converts the configured refresh token lifetime into a duration.
func (c JWTConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenDays) * 24 * time.Hour
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"INSURECRM_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"INSURECRM_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"INSURECRM_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"INSURECRM_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"INSURECRM_ARGON_KEY_LEN" default:"32"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"INSURECRM_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"INSURECRM_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"INSURECRM_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	PolicyTopic              string `envconfig:"INSURECRM_PUBSUB_POLICY_TOPIC" default:"icrm-policy-events"`
	PolicySubscription       string `envconfig:"INSURECRM_PUBSUB_POLICY_SUBSCRIPTION"`
	NotificationTopic        string `envconfig:"INSURECRM_PUBSUB_NOTIFICATION_TOPIC" default:"icrm-notification-events"`
	NotificationSubscription string `envconfig:"INSURECRM_PUBSUB_NOTIFICATION_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"INSURECRM_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"INSURECRM_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"INSURECRM_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"INSURECRM_OUTBOX_RETENTION_DAYS" default:"30"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"INSURECRM_CRON_INTERVAL" default:"24h"`
	LockTTL  time.Duration `envconfig:"INSURECRM_CRON_LOCK_TTL" default:"25h"`
}

type EscalationConfig struct {
	MaxAgeDays int `envconfig:"INSURECRM_ESCALATION_MAX_AGE_DAYS" default:"7"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"INSURECRM_AUTH_RL_LOGIN_WINDOW" default:"10m"`
	LoginIPLimit    int           `envconfig:"INSURECRM_AUTH_RL_LOGIN_IP_LIMIT" default:"30"`
	LoginEmailLimit int           `envconfig:"INSURECRM_AUTH_RL_LOGIN_EMAIL_LIMIT" default:"10"`

	RegisterWindow     time.Duration `envconfig:"INSURECRM_AUTH_RL_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"INSURECRM_AUTH_RL_REGISTER_IP_LIMIT" default:"10"`
	RegisterEmailLimit int           `envconfig:"INSURECRM_AUTH_RL_REGISTER_EMAIL_LIMIT" default:"5"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"INSURECRM_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// SyncConfig drives the field-sync daemon that embeds the offline queue.
type SyncConfig struct {
	QueueDir      string        `envconfig:"INSURECRM_SYNC_QUEUE_DIR" default:".insurecrm/queue"`
	APIBaseURL    string        `envconfig:"INSURECRM_SYNC_API_BASE_URL"`
	APIToken      string        `envconfig:"INSURECRM_SYNC_API_TOKEN"`
	ProbeInterval time.Duration `envconfig:"INSURECRM_SYNC_PROBE_INTERVAL" default:"30s"`
	SharedQueue   bool          `envconfig:"INSURECRM_SYNC_SHARED_QUEUE" default:"false"`
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
