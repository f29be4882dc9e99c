// internal/config/config.go
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Storage   StorageConfig
	Summaries SummariesConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Payment   PaymentConfig
	Schedule  ScheduleConfig
	Log       LogConfig
}

// StorageConfig encapsulates the connection info for the S3-compatible bucket
// holding the summaries.
type StorageConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
}

type SummariesConfig struct {
	Prefix              string
	Locale              string
	OutputFile          string
	RestoreCatalogFile  string
	TitleFields         []string
	DurationFields      []string
	ThumbnailField      string
	TitlePlaceholder    string
	DurationPlaceholder string
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL string
}

type CacheConfig struct {
	Enabled           bool
	RedisURL          string
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int
	CatalogTTLSeconds int
}

// PaymentConfig describes the payment requirement returned for paid summaries.
type PaymentConfig struct {
	ReceivingWallet   string
	FacilitatorURL    string
	Price             string
	Amount            string
	Asset             string
	Network           string
	SupportedNetworks []string
}

type ScheduleConfig struct {
	IndexCron string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads .env (if present) and the process environment into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Storage: StorageConfig{
			Endpoint:  v.GetString("S3_ENDPOINT"),
			Region:    v.GetString("S3_REGION"),
			Bucket:    v.GetString("S3_BUCKET"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			UseSSL:    v.GetBool("S3_USE_SSL"),
			PathStyle: v.GetBool("S3_PATH_STYLE"),
		},
		Summaries: SummariesConfig{
			Prefix:              strings.Trim(strings.TrimSpace(v.GetString("SUMMARIES_PREFIX")), "/"),
			Locale:              v.GetString("SUMMARIES_LOCALE"),
			OutputFile:          v.GetString("INDEX_OUTPUT_FILE"),
			RestoreCatalogFile:  v.GetString("RESTORE_CATALOG_FILE"),
			TitleFields:         splitList(v.GetStringSlice("SUMMARY_TITLE_FIELDS")),
			DurationFields:      splitList(v.GetStringSlice("SUMMARY_DURATION_FIELDS")),
			ThumbnailField:      v.GetString("SUMMARY_THUMBNAIL_FIELD"),
			TitlePlaceholder:    v.GetString("SUMMARY_TITLE_PLACEHOLDER"),
			DurationPlaceholder: v.GetString("SUMMARY_DURATION_PLACEHOLDER"),
		},
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: splitList(v.GetStringSlice("SERVER_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			URL: v.GetString("DATABASE_URL"),
		},
		Cache: CacheConfig{
			Enabled:           v.GetBool("CACHE_ENABLED"),
			RedisURL:          v.GetString("REDIS_URL"),
			RedisHost:         v.GetString("REDIS_HOST"),
			RedisPort:         v.GetString("REDIS_PORT"),
			RedisPassword:     v.GetString("REDIS_PASSWORD"),
			RedisDB:           v.GetInt("REDIS_DB"),
			CatalogTTLSeconds: v.GetInt("CACHE_CATALOG_TTL_SECONDS"),
		},
		Payment: PaymentConfig{
			ReceivingWallet:   v.GetString("PAYMENT_RECEIVING_WALLET"),
			FacilitatorURL:    v.GetString("PAYMENT_FACILITATOR_URL"),
			Price:             v.GetString("PAYMENT_PRICE"),
			Amount:            v.GetString("PAYMENT_AMOUNT"),
			Asset:             v.GetString("PAYMENT_ASSET"),
			Network:           v.GetString("PAYMENT_NETWORK"),
			SupportedNetworks: splitList(v.GetStringSlice("PAYMENT_SUPPORTED_NETWORKS")),
		},
		Schedule: ScheduleConfig{
			IndexCron: strings.TrimSpace(v.GetString("INDEX_CRON")),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	locale, err := ParseLocale(cfg.Summaries.Locale)
	if err != nil {
		return nil, err
	}
	cfg.Summaries.Locale = locale

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("S3_ENDPOINT", "s3.amazonaws.com")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_BUCKET", "ultravioletadao")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("S3_PATH_STYLE", false)

	v.SetDefault("SUMMARIES_PREFIX", "stream-summaries")
	v.SetDefault("SUMMARIES_LOCALE", "es")
	v.SetDefault("INDEX_OUTPUT_FILE", "index_es_new.json")
	v.SetDefault("RESTORE_CATALOG_FILE", "index_es_old.json")
	v.SetDefault("SUMMARY_TITLE_FIELDS", []string{"titulo_stream", "titulo"})
	v.SetDefault("SUMMARY_DURATION_FIELDS", []string{"duracion", "duracion_minutos"})
	v.SetDefault("SUMMARY_THUMBNAIL_FIELD", "thumbnail_url")
	v.SetDefault("SUMMARY_TITLE_PLACEHOLDER", "Sin título")
	v.SetDefault("SUMMARY_DURATION_PLACEHOLDER", "N/A")

	v.SetDefault("SERVER_PORT", "3000")
	v.SetDefault("SERVER_MODE", "release")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

	v.SetDefault("DATABASE_URL", "")

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_CATALOG_TTL_SECONDS", 60)

	v.SetDefault("PAYMENT_RECEIVING_WALLET", "0x52110a2Cc8B6bBf846101265edAAe34E753f3389")
	v.SetDefault("PAYMENT_FACILITATOR_URL", "https://facilitator.ultravioletadao.xyz")
	v.SetDefault("PAYMENT_PRICE", "$0.05")
	v.SetDefault("PAYMENT_AMOUNT", "50000")
	v.SetDefault("PAYMENT_ASSET", "USDC")
	v.SetDefault("PAYMENT_NETWORK", "base")
	v.SetDefault("PAYMENT_SUPPORTED_NETWORKS", []string{
		"optimism", "base", "polygon", "avalanche", "celo", "hyperevm", "solana",
	})

	v.SetDefault("INDEX_CRON", "")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}

// Validate reports the first configuration problem that would make every job fail.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Storage.Bucket) == "" {
		return fmt.Errorf("storage bucket must be provided")
	}
	if strings.TrimSpace(c.Storage.Endpoint) == "" {
		return fmt.Errorf("storage endpoint must be provided")
	}
	if c.Summaries.Prefix == "" {
		return fmt.Errorf("summaries prefix must be provided")
	}
	if strings.Contains(c.Summaries.Prefix, "/") {
		return fmt.Errorf("summaries prefix %q must be a single path segment", c.Summaries.Prefix)
	}
	if len(c.Summaries.TitleFields) == 0 || len(c.Summaries.DurationFields) == 0 {
		return fmt.Errorf("summary title and duration fields must not be empty")
	}
	return nil
}

// splitList flattens comma separated values so both
// FOO="a,b" and FOO="a b" style env values are accepted.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			out = append(out, trimmed)
		}
	}
	return out
}
