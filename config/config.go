package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageS3    = "s3"
	StorageLocal = "local"
)

type (
	APP struct {
		Name            string
		Host            string
		Port            string
		Env             string
		JWTSecret       string
		TokenTTL        time.Duration
		PublicOrigin    string
		PermissiveLogin bool
		AccessURLTTL    time.Duration
		MaxUploadBytes  int64
		CORSOrigins     []string
	}
	DB struct {
		User     string
		Password string
		Name     string
		Host     string
		Port     string
	}
	S3 struct {
		Region          string
		AccessKeyID     string
		SecretAccessKey string
		BucketUploads   string
		Endpoint        string
		PublicEndpoint  string
	}
	// Storage selects the blob and metadata backends. "s3" pairs S3 with Postgres,
	// "local" keeps blobs and records on the local filesystem.
	Storage struct {
		Backend    string
		LocalPath  string
		SigningKey string
	}
	Redis struct {
		Host     string
		Port     string
		Password string
		DB       int
	}
	MQ struct {
		User         string
		Password     string
		Vhost        string
		Host         string
		AmqpPort     string
		Exchange     string
		ExchangeType string
		QueueName    string
	}

	Config struct {
		App     APP
		DB      DB
		S3      S3
		Storage Storage
		Redis   Redis
		MQ      MQ
	}
)

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, def.String()))
	if err != nil {
		return def
	}
	return v
}

func getEnvList(key, def string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, def), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func Load() Config {
	app := APP{
		Name:            getEnv("SERVICE_NAME", "cloudshareit"),
		Host:            getEnv("SERVICE_HOST", ""),
		Port:            getEnv("SERVICE_PORT", "8080"),
		Env:             getEnv("SERVICE_ENV", ""),
		JWTSecret:       getEnv("SERVICE_JWT_SECRET", ""),
		TokenTTL:        getEnvDuration("SERVICE_TOKEN_TTL", 24*time.Hour),
		PublicOrigin:    strings.TrimRight(getEnv("APP_PUBLIC_ORIGIN", "http://localhost:8080"), "/"),
		PermissiveLogin: getEnvBool("AUTH_PERMISSIVE_LOGIN", false),
		AccessURLTTL:    getEnvDuration("ACCESS_URL_TTL", time.Hour),
		MaxUploadBytes:  int64(getEnvInt("UPLOAD_MAX_MB", 50)) << 20,
		CORSOrigins:     getEnvList("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
	}
	db := DB{
		User:     getEnv("POSTGRES_USER", ""),
		Password: getEnv("POSTGRES_PASSWORD", ""),
		Name:     getEnv("POSTGRES_DB", ""),
		Host:     getEnv("POSTGRES_HOST", ""),
		Port:     getEnv("POSTGRES_PORT", ""),
	}
	s3 := S3{
		Region:          getEnv("S3_REGION", ""),
		AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		BucketUploads:   getEnv("S3_BUCKET_UPLOADS", ""),
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		PublicEndpoint:  getEnv("S3_PUBLIC_ENDPOINT", ""),
	}
	storage := Storage{
		Backend:    strings.ToLower(getEnv("STORAGE_BACKEND", StorageLocal)),
		LocalPath:  getEnv("STORAGE_LOCAL_PATH", "./data"),
		SigningKey: getEnv("STORAGE_SIGNING_KEY", ""),
	}
	redis := Redis{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}
	mq := MQ{
		User:         getEnv("RABBITMQ_USER", ""),
		Password:     getEnv("RABBITMQ_PASSWORD", ""),
		Vhost:        getEnv("RABBITMQ_VHOST", ""),
		Host:         getEnv("RABBITMQ_HOST", ""),
		AmqpPort:     getEnv("RABBITMQ_AMQP_PORT", ""),
		Exchange:     getEnv("RABBITMQ_EXCHANGE", "cloudshareit.files"),
		ExchangeType: getEnv("RABBITMQ_EXCHANGE_TYPE", "topic"),
		QueueName:    getEnv("RABBITMQ_QUEUE_NAME", "cloudshareit.cleanup"),
	}

	return Config{
		App:     app,
		DB:      db,
		S3:      s3,
		Storage: storage,
		Redis:   redis,
		MQ:      mq,
	}
}

// Validate reports configuration that the service cannot start with.
func (c Config) Validate() error {
	if c.App.Port == "" {
		return errors.New("SERVICE_PORT is required")
	}
	if c.App.JWTSecret == "" {
		return errors.New("SERVICE_JWT_SECRET is required")
	}
	if _, err := url.ParseRequestURI(c.App.PublicOrigin); err != nil {
		return fmt.Errorf("invalid APP_PUBLIC_ORIGIN: %w", err)
	}
	if c.App.AccessURLTTL <= 0 {
		return errors.New("ACCESS_URL_TTL must be positive")
	}
	if c.App.MaxUploadBytes <= 0 {
		return errors.New("UPLOAD_MAX_MB must be positive")
	}

	switch c.Storage.Backend {
	case StorageS3:
		if c.S3.BucketUploads == "" || c.S3.Region == "" {
			return errors.New("s3 storage requires S3_BUCKET_UPLOADS and S3_REGION")
		}
		if _, err := c.DBDSN(); err != nil {
			return fmt.Errorf("s3 storage requires postgres: %w", err)
		}
	case StorageLocal:
		if c.Storage.LocalPath == "" {
			return errors.New("local storage requires STORAGE_LOCAL_PATH")
		}
		if c.Storage.SigningKey == "" {
			return errors.New("local storage requires STORAGE_SIGNING_KEY")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}

	return nil
}

func (c Config) DBDSN() (string, error) {
	if c.DB.User == "" || c.DB.Name == "" || c.DB.Host == "" || c.DB.Port == "" {
		return "", fmt.Errorf("incomplete DB config")
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		c.DB.User,
		c.DB.Password,
		c.DB.Host,
		c.DB.Port,
		c.DB.Name,
	), nil
}

func (c Config) AMQPDSN() (string, error) {
	if c.MQ.User == "" || c.MQ.Host == "" || c.MQ.AmqpPort == "" {
		return "", fmt.Errorf("invalid MQ config: user, host and amqp port are required")
	}

	return fmt.Sprintf(
		"%s://%s@%s:%s/%s",
		"amqp",
		url.UserPassword(c.MQ.User, c.MQ.Password).String(),
		c.MQ.Host,
		c.MQ.AmqpPort,
		url.PathEscape(c.MQ.Vhost),
	), nil
}

// MQEnabled is false when no broker host is configured; events are then only logged.
func (c Config) MQEnabled() bool { return c.MQ.Host != "" }

// RedisAddr returns "" when Redis is not configured.
func (c Config) RedisAddr() string {
	if c.Redis.Host == "" {
		return ""
	}
	return c.Redis.Host + ":" + c.Redis.Port
}
