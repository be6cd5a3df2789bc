package postgres

import (
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config holds the connection parameters read from the environment per
// spec §6, grounded in Mikey-gotcode-ma3tracker's internal/config/database.go
// getEnv(key, default) pattern, extended with the client-cert fields the
// spec calls out for verify-full deployments.
type Config struct {
	User     string
	DBName   string
	Host     string
	Port     string
	SSLMode  string
	CACert   string
	ClientCert string
	ClientKey  string
	Password string
}

// ConfigFromEnv reads PG_USER, PG_DBNAME, PG_HOST, PG_PORT, PG_SSLMODE,
// DB_CA_CERT, DB_CLIENT_CERT, DB_CLIENT_KEY with the spec's defaults.
func ConfigFromEnv() Config {
	return Config{
		User:       getEnv("PG_USER", "postgres"),
		DBName:     getEnv("PG_DBNAME", "vertiport_routing"),
		Host:       getEnv("PG_HOST", "localhost"),
		Port:       getEnv("PG_PORT", "5432"),
		SSLMode:    getEnv("PG_SSLMODE", "disable"),
		CACert:     os.Getenv("DB_CA_CERT"),
		ClientCert: os.Getenv("DB_CLIENT_CERT"),
		ClientKey:  os.Getenv("DB_CLIENT_KEY"),
		Password:   os.Getenv("PG_PASSWORD"),
	}
}

func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return defaultValue
}

// DSN builds the libpq connection string, including the TLS client-cert
// fields when provided (verify-ca/verify-full sslmode deployments).
func (c Config) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.User, c.DBName, c.SSLMode)
	if c.Password != "" {
		dsn += fmt.Sprintf(" password=%s", c.Password)
	}
	if c.CACert != "" {
		dsn += fmt.Sprintf(" sslrootcert=%s", c.CACert)
	}
	if c.ClientCert != "" {
		dsn += fmt.Sprintf(" sslcert=%s", c.ClientCert)
	}
	if c.ClientKey != "" {
		dsn += fmt.Sprintf(" sslkey=%s", c.ClientKey)
	}
	return dsn
}

// Open connects to Postgres and migrates the schema.
func Open(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	db.Exec("CREATE EXTENSION IF NOT EXISTS postgis;")
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return db, nil
}
