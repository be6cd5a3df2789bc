// Package config loads process configuration from the environment per
// spec §6, grounded in Mikey-gotcode-ma3tracker's getEnv(key, default)
// pattern and extended with the port/log-level vars the teacher's own
// flag-based cmd/nbi-server leaves to flags instead.
package config

import (
	"os"
	"strconv"
)

// Config holds every environment-derived setting the bootstrap needs.
type Config struct {
	PGHost    string
	PGPort    string
	PGUser    string
	PGDBName  string
	PGSSLMode string

	DBCACert     string
	DBClientCert string
	DBClientKey  string

	RESTPort int
	GRPCPort int

	LogLevel  string
	LogFormat string
}

// FromEnv reads the process configuration from the environment, applying
// the defaults spec §6 specifies (ports only; backend fields have no
// default besides PGUser/PGDBName/PGHost/PGPort/PGSSLMode, which mirror the
// Postgres client's own defaults).
func FromEnv() Config {
	return Config{
		PGHost:       getEnv("PG_HOST", "localhost"),
		PGPort:       getEnv("PG_PORT", "5432"),
		PGUser:       getEnv("PG_USER", "postgres"),
		PGDBName:     getEnv("PG_DBNAME", "vertiport_routing"),
		PGSSLMode:    getEnv("PG_SSLMODE", "disable"),
		DBCACert:     os.Getenv("DB_CA_CERT"),
		DBClientCert: os.Getenv("DB_CLIENT_CERT"),
		DBClientKey:  os.Getenv("DB_CLIENT_KEY"),
		RESTPort:     getEnvInt("DOCKER_PORT_REST", 8000),
		GRPCPort:     getEnvInt("DOCKER_PORT_GRPC", 50051),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
	}
}

// UsePostgres reports whether a Postgres-flavored backend should be used
// in place of the in-memory reference store: any explicit PG_HOST opts in.
func (c Config) UsePostgres() bool {
	return os.Getenv("PG_HOST") != ""
}

func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}
