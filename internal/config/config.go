package config

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"cosmosfeed/internal/apperr"
)

type Config struct {
	App struct {
		Port             string
		Debug            bool
		FrontendURL      string
		ListDefaultLimit int
	}
	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		DBName   string
		SSLMode  string
	}
	Redis struct {
		Host        string
		Port        string
		Password    string
		DB          int
		PositionKey string
		PositionTTL time.Duration
	}
	ISS struct {
		URL         string
		FallbackURL string
	}
	NASA struct {
		APIKey    string
		OSDRURL   string
		APODURL   string
		NEOURL    string
		DONKIURL  string
		NEODays   int
		DONKIDays int
	}
	SpaceX struct {
		URL string
	}
	HTTP struct {
		Timeout         time.Duration
		MaxRetries      int
		InitialInterval time.Duration
	}
	Workers struct {
		ISSEnabled     bool
		OSDREnabled    bool
		FeedsEnabled   bool
		ISSInterval    time.Duration
		OSDRInterval   time.Duration
		APODInterval   time.Duration
		NEOInterval    time.Duration
		DONKIInterval  time.Duration
		SpaceXInterval time.Duration
	}
	RateLimit struct {
		RequestsPerSecond int
		Burst             int
		// PerIP включает отдельный лимитер на каждый адрес клиента.
		PerIP bool
	}
	Export struct {
		OutputDir string
	}
}

var defaults = map[string]interface{}{
	// App
	"PORT":              "8080",
	"DEBUG":             false,
	"FRONTEND_URL":      "http://localhost:3000",
	"OSDR_LIST_LIMIT":   20,
	"EXPORT_OUTPUT_DIR": "./data/export",

	// DB
	"DB_HOST":     "localhost",
	"DB_PORT":     "5432",
	"DB_USER":     "postgres",
	"DB_PASSWORD": "postgres",
	"DB_NAME":     "cosmos",
	"DB_SSLMODE":  "disable",

	// Redis
	"REDIS_HOST":         "localhost",
	"REDIS_PORT":         "6379",
	"REDIS_PASSWORD":     "",
	"REDIS_DB":           0,
	"REDIS_POSITION_KEY": "latest_telemetry_data",
	"REDIS_POSITION_TTL": "5m",

	// ISS
	"ISS_URL":          "https://api.wheretheiss.at/v1/satellites/25544",
	"ISS_FALLBACK_URL": "http://api.open-notify.org/iss-now.json",

	// NASA
	"NASA_API_KEY":    "",
	"NASA_OSDR_URL":   "https://visualization.osdr.nasa.gov/biodata/api/v2/datasets/?format=json",
	"NASA_APOD_URL":   "https://api.nasa.gov/planetary/apod",
	"NASA_NEO_URL":    "https://api.nasa.gov/neo/rest/v1/feed",
	"NASA_DONKI_URL":  "https://api.nasa.gov/DONKI",
	"NASA_NEO_DAYS":   2,
	"NASA_DONKI_DAYS": 5,

	// SpaceX
	"SPACEX_URL": "https://api.spacexdata.com/v4/launches/next",

	// HTTP клиенты
	"HTTP_TIMEOUT":       "30s",
	"HTTP_MAX_RETRIES":   3,
	"HTTP_RETRY_INITIAL": "500ms",

	// Workers
	"ISS_ENABLED":            true,
	"OSDR_ENABLED":           true,
	"FEEDS_ENABLED":          true,
	"WORKER_ISS_INTERVAL":    "120s",
	"WORKER_OSDR_INTERVAL":   "600s",
	"WORKER_APOD_INTERVAL":   "12h",
	"WORKER_NEO_INTERVAL":    "2h",
	"WORKER_DONKI_INTERVAL":  "1h",
	"WORKER_SPACEX_INTERVAL": "1h",

	// Rate Limit
	"RATE_LIMIT_RPS":    10,
	"RATE_LIMIT_BURST":  20,
	"RATE_LIMIT_PER_IP": false,
}

// Load собирает конфигурацию: значения по умолчанию, необязательный
// config.yaml и переменные окружения (они главнее).
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("%w: read config file: %v", apperr.ErrConfig, err)
		}
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	// App
	cfg.App.Port = v.GetString("PORT")
	cfg.App.Debug = v.GetBool("DEBUG")
	cfg.App.FrontendURL = v.GetString("FRONTEND_URL")
	cfg.App.ListDefaultLimit = v.GetInt("OSDR_LIST_LIMIT")
	cfg.Export.OutputDir = v.GetString("EXPORT_OUTPUT_DIR")

	// DB
	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetString("DB_PORT")
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.DBName = v.GetString("DB_NAME")
	cfg.DB.SSLMode = v.GetString("DB_SSLMODE")

	// Redis
	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetString("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.PositionKey = v.GetString("REDIS_POSITION_KEY")
	cfg.Redis.PositionTTL = v.GetDuration("REDIS_POSITION_TTL")

	// ISS
	cfg.ISS.URL = v.GetString("ISS_URL")
	cfg.ISS.FallbackURL = v.GetString("ISS_FALLBACK_URL")

	// NASA
	cfg.NASA.APIKey = v.GetString("NASA_API_KEY")
	cfg.NASA.OSDRURL = v.GetString("NASA_OSDR_URL")
	cfg.NASA.APODURL = v.GetString("NASA_APOD_URL")
	cfg.NASA.NEOURL = v.GetString("NASA_NEO_URL")
	cfg.NASA.DONKIURL = v.GetString("NASA_DONKI_URL")
	cfg.NASA.NEODays = v.GetInt("NASA_NEO_DAYS")
	cfg.NASA.DONKIDays = v.GetInt("NASA_DONKI_DAYS")

	cfg.SpaceX.URL = v.GetString("SPACEX_URL")

	cfg.HTTP.Timeout = v.GetDuration("HTTP_TIMEOUT")
	cfg.HTTP.MaxRetries = v.GetInt("HTTP_MAX_RETRIES")
	cfg.HTTP.InitialInterval = v.GetDuration("HTTP_RETRY_INITIAL")

	// Workers
	cfg.Workers.ISSEnabled = v.GetBool("ISS_ENABLED")
	cfg.Workers.OSDREnabled = v.GetBool("OSDR_ENABLED")
	cfg.Workers.FeedsEnabled = v.GetBool("FEEDS_ENABLED")
	cfg.Workers.ISSInterval = v.GetDuration("WORKER_ISS_INTERVAL")
	cfg.Workers.OSDRInterval = v.GetDuration("WORKER_OSDR_INTERVAL")
	cfg.Workers.APODInterval = v.GetDuration("WORKER_APOD_INTERVAL")
	cfg.Workers.NEOInterval = v.GetDuration("WORKER_NEO_INTERVAL")
	cfg.Workers.DONKIInterval = v.GetDuration("WORKER_DONKI_INTERVAL")
	cfg.Workers.SpaceXInterval = v.GetDuration("WORKER_SPACEX_INTERVAL")

	// Rate Limit
	cfg.RateLimit.RequestsPerSecond = v.GetInt("RATE_LIMIT_RPS")
	cfg.RateLimit.Burst = v.GetInt("RATE_LIMIT_BURST")
	cfg.RateLimit.PerIP = v.GetBool("RATE_LIMIT_PER_IP")

	return cfg
}

// Validate проверяет обязательные значения.
func (c *Config) Validate() error {
	var missing []string

	required := map[string]string{
		"DB_HOST":       c.DB.Host,
		"DB_NAME":       c.DB.DBName,
		"REDIS_HOST":    c.Redis.Host,
		"ISS_URL":       c.ISS.URL,
		"NASA_OSDR_URL": c.NASA.OSDRURL,
	}
	for key, value := range required {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}

	intervals := map[string]time.Duration{
		"WORKER_ISS_INTERVAL":    c.Workers.ISSInterval,
		"WORKER_OSDR_INTERVAL":   c.Workers.OSDRInterval,
		"WORKER_APOD_INTERVAL":   c.Workers.APODInterval,
		"WORKER_NEO_INTERVAL":    c.Workers.NEOInterval,
		"WORKER_DONKI_INTERVAL":  c.Workers.DONKIInterval,
		"WORKER_SPACEX_INTERVAL": c.Workers.SpaceXInterval,
	}
	for key, value := range intervals {
		if value <= 0 {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: missing or invalid %s", apperr.ErrConfig, strings.Join(missing, ", "))
	}
	return nil
}
