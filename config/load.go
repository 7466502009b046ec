package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the environment, after merging an optional .env file.
func Load() App {
	if err := godotenv.Load(); err != nil {
		slog.Info(".env file not found, using existing environment variables")
	}
	cfg, err := FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		panic(err)
	}
	return cfg
}

// FromEnv builds App from the process environment only.
func FromEnv() (App, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = getenv("APP_PORT", "8080")
	}
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return App{}, fmt.Errorf("missing env DATABASE_URL")
	}

	ttlHours, err := getint("JWT_TTL_HOURS", 1)
	if err != nil {
		return App{}, err
	}
	maxUpload, err := getint("MAX_UPLOAD_BYTES", 2<<20)
	if err != nil {
		return App{}, err
	}
	chPort, err := getint("CLICKHOUSE_PORT", 9000)
	if err != nil {
		return App{}, err
	}

	cfg := App{
		Port:           port,
		DatabaseURL:    dsn,
		JWTSecret:      getenv("JWT_SECRET", "local_dev_secret"),
		JWTTTL:         time.Duration(ttlHours) * time.Hour,
		Env:            getenv("APP_ENV", "dev"),
		UploadDir:      getenv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: int64(maxUpload),
		CORSOrigins:    splitList(getenv("CORS_ORIGINS", "*")),
		AutoMigrate:    getbool("AUTO_MIGRATE", true),
		ClickHouse: ClickHouse{
			Host:     os.Getenv("CLICKHOUSE_HOST"),
			Port:     chPort,
			Database: getenv("CLICKHOUSE_DATABASE", "default"),
			User:     getenv("CLICKHOUSE_USER", "default"),
			Password: os.Getenv("CLICKHOUSE_PASSWORD"),
			UseTLS:   getbool("CLICKHOUSE_USE_TLS", false),
		},
	}
	if cfg.JWTTTL <= 0 {
		return App{}, fmt.Errorf("JWT_TTL_HOURS must be positive")
	}
	if cfg.Env != "dev" && cfg.JWTSecret == "local_dev_secret" {
		slog.Warn("JWT_SECRET is the development default", "env", cfg.Env)
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("env %s: %w", k, err)
	}
	return n, nil
}

func getbool(k string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(k))
	if err != nil {
		return def
	}
	return b
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
