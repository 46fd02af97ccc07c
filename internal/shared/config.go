package shared

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv        string
	LogLevel      string
	HTTPAddr      string
	MetricsAddr   string
	PublicBaseURL string

	StoreDriver string // mysql | mongo | memory
	MySQLDSN    string
	MongoURI    string
	MongoDB     string
	MediaDir    string

	RedisAddr string
	RedisDB   int
	RedisPass string

	CacheTTL       time.Duration
	UploadTTL      time.Duration
	MaxUploadBytes int64
	RequestTimeout time.Duration

	SessionSecret string
	SessionTTL    time.Duration
	AdminEmail    string
	AdminPassword string

	// seed CLI
	CMSBaseURL  string
	SeedFile    string
	SeedWorkers int
	ClientRPS   int
}

// Load reads the environment after merging an optional .env file.
// Variables already set in the environment win over .env.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("ignoring unreadable .env")
	}
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	c := Config{
		AppEnv:        env("APP_ENV", "prod"),
		LogLevel:      env("LOG_LEVEL", "info"),
		HTTPAddr:      env("HTTP_ADDR", ":8080"),
		MetricsAddr:   env("METRICS_ADDR", ":9100"),
		PublicBaseURL: strings.TrimRight(env("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),

		StoreDriver: strings.ToLower(env("STORE_DRIVER", "mysql")),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/travel_cms?parseTime=true&charset=utf8mb4&loc=UTC"),
		MongoURI:    env("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     env("MONGO_DB", "travel_cms"),
		MediaDir:    env("MEDIA_DIR", "./data/media"),

		RedisAddr: env("REDIS_ADDR", "localhost:6379"),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),

		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		UploadTTL:      time.Duration(atoi("UPLOAD_TTL_SECONDS", 600)) * time.Second,
		MaxUploadBytes: int64(atoi("MAX_UPLOAD_BYTES", 10<<20)),
		RequestTimeout: time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,

		SessionSecret: env("SESSION_SECRET", ""),
		SessionTTL:    time.Duration(atoi("SESSION_TTL_HOURS", 24*7)) * time.Hour,
		AdminEmail:    env("ADMIN_EMAIL", ""),
		AdminPassword: env("ADMIN_PASSWORD", ""),

		CMSBaseURL:  strings.TrimRight(env("CMS_BASE_URL", "http://localhost:8080"), "/"),
		SeedFile:    env("SEED_FILE", "seed.yaml"),
		SeedWorkers: atoi("SEED_WORKERS", 4),
		ClientRPS:   atoi("CLIENT_RPS", 5),
	}
	if c.SessionSecret == "" {
		log.Warn().Msg("SESSION_SECRET is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
