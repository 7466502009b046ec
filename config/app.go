package config

import "time"

type App struct {
	Port           string        `env:"APP_PORT" default:"8080"`
	DatabaseURL    string        `env:"DATABASE_URL,required"`
	JWTSecret      string        `env:"JWT_SECRET" default:"local_dev_secret"`
	JWTTTL         time.Duration `env:"JWT_TTL_HOURS" default:"1"`
	Env            string        `env:"APP_ENV" default:"dev"`
	UploadDir      string        `env:"UPLOAD_DIR" default:"uploads"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" default:"2097152"`
	CORSOrigins    []string      `env:"CORS_ORIGINS" default:"*"`
	AutoMigrate    bool          `env:"AUTO_MIGRATE" default:"true"`
	ClickHouse     ClickHouse
}

// ClickHouse backs the loan activity journal. An empty Host keeps the
// journal in memory.
type ClickHouse struct {
	Host     string `env:"CLICKHOUSE_HOST"`
	Port     int    `env:"CLICKHOUSE_PORT" default:"9000"`
	Database string `env:"CLICKHOUSE_DATABASE" default:"default"`
	User     string `env:"CLICKHOUSE_USER" default:"default"`
	Password string `env:"CLICKHOUSE_PASSWORD"`
	UseTLS   bool   `env:"CLICKHOUSE_USE_TLS" default:"false"`
}
