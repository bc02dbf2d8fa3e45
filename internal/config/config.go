package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Scrape   Scrape
	CSVPath  string
	Sheets   Sheets
	Postgres Postgres
	Cache    Cache
	Metrics  Metrics
	Archive  Archive
	Verbose  bool
}

// Scrape holds everything the extractor and transformer need about the source site.
type Scrape struct {
	BaseURL      string
	PageStart    int
	PageEnd      int
	Timeout      time.Duration
	UserAgent    string
	ExchangeRate float64
}

type Sheets struct {
	CredentialsFile string
	Title           string
}

type Postgres struct {
	Host     string
	Database string
	User     string
	Password string
	Port     string
	Table    string
	RunTable string
}

type Cache struct {
	RedisURL string
	TTL      time.Duration
}

type Metrics struct {
	PushgatewayURL string
	Job            string
}

// Archive configures the optional upload of the CSV output to Cloud Storage.
// An empty Bucket disables it.
type Archive struct {
	Bucket          string
	Prefix          string
	CredentialsFile string
}

const (
	DefaultBaseURL   = "https://fashion-studio.dicoding.dev/"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	DefaultSheet     = "Fashion Studio ETL Data"
)

func Load() *Config {
	// .env from the project root, then the working directory
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	return &Config{
		Scrape: Scrape{
			BaseURL:      getEnv("SOURCE_BASE_URL", DefaultBaseURL),
			PageStart:    getEnvInt("SOURCE_PAGE_START", 1),
			PageEnd:      getEnvInt("SOURCE_PAGE_END", 50),
			Timeout:      getEnvDuration("SOURCE_TIMEOUT", 10*time.Second),
			UserAgent:    getEnv("SOURCE_USER_AGENT", DefaultUserAgent),
			ExchangeRate: getEnvFloat("EXCHANGE_RATE", 16000),
		},
		CSVPath: getEnv("CSV_PATH", "products.csv"),
		Sheets: Sheets{
			CredentialsFile: getEnv("SHEETS_CREDENTIALS_FILE", "google-sheets-api.json"),
			Title:           getEnv("SHEETS_TITLE", DefaultSheet),
		},
		Postgres: Postgres{
			Host:     getEnv("PG_HOST", "localhost"),
			Database: getEnv("PG_DATABASE", "fashion_studio"),
			User:     getEnv("PG_USER", "postgres"),
			Password: getEnv("PG_PASSWORD", "password"),
			Port:     getEnv("PG_PORT", "5432"),
			Table:    getEnv("PG_TABLE", "products"),
			RunTable: getEnv("PG_RUN_TABLE", "etl_runs"),
		},
		Cache: Cache{
			RedisURL: os.Getenv("REDIS_URL"),
			TTL:      getEnvDuration("PAGE_CACHE_TTL", 10*time.Minute),
		},
		Metrics: Metrics{
			PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),
			Job:            getEnv("METRICS_JOB", "fashion_etl"),
		},
		Archive: Archive{
			Bucket:          os.Getenv("CSV_ARCHIVE_BUCKET"),
			Prefix:          getEnv("CSV_ARCHIVE_PREFIX", "fashion-etl"),
			CredentialsFile: os.Getenv("CSV_ARCHIVE_CREDENTIALS_FILE"),
		},
		Verbose: getEnvBool("ETL_VERBOSE", false),
	}
}

// DSN renders the connection parameters as a postgres:// URL understood by both pgx and lib/pq.
func (p Postgres) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     p.Host + ":" + p.Port,
		Path:     "/" + p.Database,
		RawQuery: "sslmode=disable&connect_timeout=10",
	}
	return u.String()
}

func (s Scrape) PageURL(page int) string {
	return fmt.Sprintf("%s?page=%d", s.BaseURL, page)
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getEnvInt(k string, d int) int {
	if v, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return v
	}
	return d
}

func getEnvFloat(k string, d float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(k), 64); err == nil {
		return v
	}
	return d
}

func getEnvBool(k string, d bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(k)); err == nil {
		return v
	}
	return d
}

func getEnvDuration(k string, d time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return v
	}
	return d
}
