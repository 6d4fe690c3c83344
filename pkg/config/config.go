package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	GCP       GCPConfig
	PubSub    PubSubConfig
	FCM       FCMConfig
	Admin     AdminConfig
	Reminders RemindersConfig
	Retention RetentionConfig
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
	Env          string `envconfig:"ONEROOM_APP_ENV" required:"true"`
	Port         string `envconfig:"ONEROOM_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ONEROOM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ONEROOM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ONEROOM_DB_DSN"`
	Driver string `envconfig:"ONEROOM_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"ONEROOM_DB_HOST"`
	Port     int    `envconfig:"ONEROOM_DB_PORT" default:"5432"`
	User     string `envconfig:"ONEROOM_DB_USER"`
	Password string `envconfig:"ONEROOM_DB_PASSWORD"`
	Name     string `envconfig:"ONEROOM_DB_NAME"`
	SSLMode  string `envconfig:"ONEROOM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ONEROOM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ONEROOM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ONEROOM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ONEROOM_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"ONEROOM_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ONEROOM_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ONEROOM_REDIS_ADDR"`
	Password     string        `envconfig:"ONEROOM_REDIS_PASSWORD"`
	DB           int           `envconfig:"ONEROOM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ONEROOM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ONEROOM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ONEROOM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ONEROOM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ONEROOM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ONEROOM_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"ONEROOM_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ONEROOM_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	RoomEventsSubscription string `envconfig:"ONEROOM_PUBSUB_ROOM_EVENTS_SUBSCRIPTION" required:"true"`
}

type FCMConfig struct {
	AndroidChannelID string `envconfig:"ONEROOM_FCM_ANDROID_CHANNEL_ID" default:"one_room_channel"`
	BroadcastTopic   string `envconfig:"ONEROOM_FCM_BROADCAST_TOPIC" default:"all_users"`
}

type AdminConfig struct {
	// Key guards the JSON admin endpoints; Secret guards the plain
	// webhook broadcast endpoint.
	Key    string `envconfig:"ONEROOM_ADMIN_KEY" required:"true"`
	Secret string `envconfig:"ONEROOM_BROADCAST_SECRET" required:"true"`
}

type RemindersConfig struct {
	Interval time.Duration `envconfig:"ONEROOM_REMINDERS_INTERVAL" default:"24h"`
}

type RetentionConfig struct {
	NotificationLogDays int `envconfig:"ONEROOM_NOTIFICATION_LOG_RETENTION_DAYS" default:"30"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
