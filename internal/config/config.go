package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Mongo     MongoConfig
	Storage   StorageConfig
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Redis     RedisConfig
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port string
	Mode string
	// Env mirrors NODE_ENV: anything but "production" warms the DB connection on start.
	Env string
	// ExposeErrors controls whether 5xx bodies carry raw backend error text.
	ExposeErrors bool `mapstructure:"expose_errors"`
}

func (s ServerConfig) IsProduction() bool {
	return s.Env == "production"
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	SocketTimeout  time.Duration `mapstructure:"socket_timeout"`
	// OperationTimeout bounds every repository call once connected. Zero disables it.
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	// Backend is "memory" (per instance) or "redis" (shared across instances).
	Backend       string `mapstructure:"backend"`
	MaxRequests   int    `mapstructure:"max_requests"`
	WindowMinutes int    `mapstructure:"window_minutes"`
}

type StorageConfig struct {
	Type             string `mapstructure:"type"`
	LocalPath        string `mapstructure:"local_path"`
	MaxImageBytes    int64  `mapstructure:"max_image_bytes"`
	MinioEndpoint    string `mapstructure:"minio_endpoint"`
	MinioAccessID    string `mapstructure:"minio_access_key"`
	MinioSecret      string `mapstructure:"minio_secret_key"`
	MinioBucket      string `mapstructure:"minio_bucket"`
	MinioSecure      bool   `mapstructure:"minio_secure"`
	OSSEndpoint      string `mapstructure:"oss_endpoint"`
	OSSAccessKey     string `mapstructure:"oss_access_key"`
	OSSSecretKey     string `mapstructure:"oss_secret_key"`
	OSSBucket        string `mapstructure:"oss_bucket"`
	CloudinaryURL    string `mapstructure:"cloudinary_url"`
	CloudinaryFolder string `mapstructure:"cloudinary_folder"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.expose_errors", false)

	v.SetDefault("mongo.database", "aptitude")
	v.SetDefault("mongo.connect_timeout", 5*time.Second)
	v.SetDefault("mongo.socket_timeout", 45*time.Second)
	v.SetDefault("mongo.operation_timeout", time.Duration(0))

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "public/uploads")
	v.SetDefault("storage.max_image_bytes", 5*1024*1024)
	v.SetDefault("storage.cloudinary_folder", "aptitude_questions")

	v.SetDefault("rate_limit.backend", "memory")
	v.SetDefault("rate_limit.max_requests", 1000)
	v.SetDefault("rate_limit.window_minutes", 1)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
}

func LoadConfig(path string) (*Config, error) {
	// .env is optional; deployed environments inject variables directly.
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("APTITUDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.env", "NODE_ENV")
	v.BindEnv("server.expose_errors", "EXPOSE_ERRORS")

	// Mongo
	v.BindEnv("mongo.uri", "MONGODB_URI")
	v.BindEnv("mongo.database", "MONGODB_DATABASE")
	v.BindEnv("mongo.operation_timeout", "MONGO_OPERATION_TIMEOUT")

	// CORS
	v.BindEnv("cors.allowed_origins", "CORS_ALLOWED_ORIGINS")

	// Rate limit
	v.BindEnv("rate_limit.backend", "RATE_LIMIT_BACKEND")
	v.BindEnv("rate_limit.max_requests", "RATE_LIMIT_MAX_REQUESTS")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Storage
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.local_path", "LOCAL_UPLOAD_PATH")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")
	v.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	v.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	v.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")
	v.BindEnv("storage.oss_bucket", "OSS_BUCKET")
	v.BindEnv("storage.cloudinary_url", "CLOUDINARY_URL")
	v.BindEnv("storage.cloudinary_folder", "CLOUDINARY_FOLDER")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.CORS.AllowedOrigins = splitOrigins(cfg.CORS.AllowedOrigins)

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}

// splitOrigins accepts both a YAML list and a single comma separated env value.
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, o := range strings.Split(item, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}
