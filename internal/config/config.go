package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	Group    string
	Consumer string
}

type StorageConfig struct {
	Endpoint    string
	AccessKey   string
	SecretKey   string
	BucketPosts string
	UseSSL      bool
	Region      string
}

type SecurityConfig struct {
	JWTAccessSecret string
	JWTAccessTTL    time.Duration
	JWTRefreshTTL   time.Duration
	ResourceSecret  string
	MaxSessions     int
}

// VerifyConfig points at the remote media authenticity endpoint.
type VerifyConfig struct {
	Endpoint string
}

// ConvertConfig names the remote AVI to MP4 conversion function.
type ConvertConfig struct {
	FunctionName string
	Region       string
	AccessKey    string
	SecretKey    string
}

type GalleryConfig struct {
	SignedURLTTL    time.Duration
	RefreshInterval time.Duration
	CacheSweepSpec  string
}

type QueueConfig struct {
	ClaimInterval time.Duration
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	Verify           VerifyConfig
	Convert          ConvertConfig
	Gallery          GalleryConfig
	Queues           QueueConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("PHOTOLOCK")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "posts:ingest")
	v.SetDefault("redis.group", "post-workers")
	v.SetDefault("redis.consumer", "worker-1")

	v.SetDefault("storage.bucketposts", "photolock-posts")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-2")

	v.SetDefault("security.jwtaccessttl", "15m")
	v.SetDefault("security.jwtrefreshttl", "720h") // 30 days
	v.SetDefault("security.maxsessions", 10)

	v.SetDefault("verify.endpoint", "https://s3x144mrdk.execute-api.us-east-2.amazonaws.com/second")

	v.SetDefault("convert.functionname", "AVIupload")
	v.SetDefault("convert.region", "us-east-2")

	v.SetDefault("gallery.signedurlttl", "60s")
	v.SetDefault("gallery.refreshinterval", "3s")
	v.SetDefault("gallery.cachesweepspec", "0 */5 * * * *") // every five minutes

	v.SetDefault("queues.claiminterval", "10s")
}
