package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/nimasrn/freight-bids/pkg/logger"
	"github.com/pkg/errors"
)

var config *Config

// Config holds every setting the binaries read. Nothing else in the
// repository should read the environment directly.
type Config struct {
	AppEnv     string `env:"APP_ENV,default=dev"`
	AppName    string `env:"APP_NAME,default=freight_bids"`
	AppDebug   bool   `env:"APP_DEBUG"`
	AppBaseUrl string `env:"APP_BASE_URL,default=http://localhost:8080"`

	HttpListenAddr     string        `env:"HTTP_LISTEN_ADDR,default=:8080"`
	HttpRequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT,default=5s"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`

	RedisAddr               string `env:"REDIS_ADDR"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX"`

	PromNamespace  string `env:"PROM_NAMESPACE,default=freight_bids"`
	PromListenAddr string `env:"PROM_LISTEN_ADDR,default=:9100"`

	QueueName              string        `env:"QUEUE_NAME,default=invitations:delivery"`
	QueueConsumerGroup     string        `env:"QUEUE_CONSUMER_GROUP,default=delivery"`
	QueueConsumerName      string        `env:"QUEUE_CONSUMER_NAME,default=processor"`
	QueueConsumers         int           `env:"QUEUE_CONSUMERS,default=4"`
	QueueWorkers           int           `env:"QUEUE_WORKERS,default=32"`
	QueueMaxRetries        int           `env:"QUEUE_MAX_RETRIES,default=5"`
	QueueVisibilityTimeout time.Duration `env:"QUEUE_VISIBILITY_TIMEOUT,default=30s"`
	QueuePollInterval      time.Duration `env:"QUEUE_POLL_INTERVAL,default=500ms"`
	QueueBatchSize         int64         `env:"QUEUE_BATCH_SIZE,default=10"`
	QueueMaxLen            int64         `env:"QUEUE_MAX_LEN,default=100000"`
	QueueEnableDLQ         bool          `env:"QUEUE_ENABLE_DLQ,default=true"`

	NotifierPrimaryUrl     string `env:"NOTIFIER_PRIMARY_URL"`
	NotifierSecondaryUrl   string `env:"NOTIFIER_SECONDARY_URL"`
	// NotifierCallbackSecret must accompany delivery callbacks; empty disables them.
	NotifierCallbackSecret string `env:"NOTIFIER_CALLBACK_SECRET"`

	S3Endpoint       string        `env:"S3_ENDPOINT"`
	S3Region         string        `env:"S3_REGION,default=us-east-1"`
	S3AccessKey      string        `env:"S3_ACCESS_KEY"`
	S3SecretKey      string        `env:"S3_SECRET_KEY"`
	S3DisableTLS     bool          `env:"S3_DISABLE_TLS"`
	S3ForcePathStyle bool          `env:"S3_FORCE_PATH_STYLE,default=true"`
	S3ExportBucket   string        `env:"S3_EXPORT_BUCKET,default=bid-exports"`
	S3PresignTTL     time.Duration `env:"S3_PRESIGN_TTL,default=15m"`
}

// Load reads an optional dotenv file, then maps the process environment onto Config.
func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return errors.Wrapf(err, "failed to load configuration file %s", path)
		}
	}

	c := &Config{}
	if _, err := env.UnmarshalFromEnviron(c); err != nil {
		return errors.Wrap(err, "failed to map env variables to configuration")
	}

	config = c
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}

// Set replaces the loaded configuration, used by tests and tools.
func Set(c *Config) {
	config = c
}

func (c *Config) InvitationLinkBase() string {
	return c.AppBaseUrl + "/bid/respond/"
}
