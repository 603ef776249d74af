package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the part of the environment shared by every service binary.
type Config struct {
	ServiceName string

	ServerPort int
	LogLevel   string

	DatabaseURL string

	KeySecretDir   string
	PrivateKeyPath string
	PublicKeyPath  string

	KafkaBrokers []string
}

func Load() Config {
	LoadDotEnv()
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", ""),

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:   EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		KeySecretDir:   EnvDefault("KEY_SECRET_DIR", "/etc/secrets"),
		PrivateKeyPath: EnvDefault("JWT_PRIVATE_KEY_PATH", "keys/local-only/private_key.pem"),
		PublicKeyPath:  EnvDefault("JWT_PUBLIC_KEY_PATH", "keys/local-only/public_key.pem"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
	}
}

// LoadDotEnv reads .env from the working directory when present.
// Variables already set in the process environment win.
func LoadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// EnvDurationDefault accepts Go duration strings ("15m", "168h").
func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
