package config // package config loads application configuration from environment variables

import (
	"log"     // report configuration errors and halt execution
	"os"      // environment variable access
	"strconv" // string conversions
	"time"    // duration parsing
)

// minJWTSecretLen is the minimum accepted length of the JWT signing secret.
// A short symmetric key makes HS256 tokens forgeable by brute force, so the
// process refuses to start rather than run with a weak secret.
const minJWTSecretLen = 32

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Token lifetimes and the bcrypt cost default to
// 15 minutes, 7 days and cost 12, and only need to be set when a deployment
// deliberately deviates.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // symmetric secret used to sign access tokens
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt work factor for password hashing
}

// Load reads configuration from the environment. Required variables are
// enforced by must(); a missing value or an undersized JWT secret aborts
// startup with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           envStr("APP_PORT", "8080"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:     envInt("BCRYPT_COST", 12),
	}
	if len(cfg.JWTSecret) < minJWTSecretLen {
		log.Fatalf("JWT_SECRET must be at least %d bytes", minJWTSecretLen)
	}
	return cfg
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
