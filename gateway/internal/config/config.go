package config

import (
	"log"
	"os"
	"time"

	pkgcfg "github.com/Skotchmaster/classroom/pkg/config"
	"github.com/Skotchmaster/classroom/pkg/keys"
)

// Upstream is one proxied service: its base URL and how long the gateway
// waits for its response headers.
type Upstream struct {
	URL     string
	Timeout time.Duration
}

type Config struct {
	ListenAddr   string
	LogLevel     string
	Identity     Upstream
	Academic     Upstream
	Grading      Upstream
	ReadyTimeout time.Duration
	Keys         keys.Config
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(v string, name string) string {
	if v == "" {
		log.Fatalf("missing required env %s", name)
	}
	return v
}

func upstream(prefix string, timeout time.Duration) Upstream {
	return Upstream{
		URL:     must(os.Getenv(prefix+"_URL"), prefix+"_URL"),
		Timeout: pkgcfg.EnvDurationDefault(prefix+"_TIMEOUT", timeout),
	}
}

func Load() *Config {
	pkgcfg.LoadDotEnv()
	return &Config{
		ListenAddr:   getenv("GATEWAY_ADDR", ":8080"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		Identity:     upstream("IDENTITY", 10*time.Second),
		Academic:     upstream("ACADEMIC", 10*time.Second),
		Grading:      upstream("GRADING", 20*time.Second),
		ReadyTimeout: pkgcfg.EnvDurationDefault("GATEWAY_READY_TIMEOUT", 2*time.Second),
		Keys: keys.Config{
			SecretDir:     getenv("KEY_SECRET_DIR", "/etc/secrets"),
			PublicKeyPath: getenv("JWT_PUBLIC_KEY_PATH", "keys/local-only/public_key.pem"),
		},
	}
}
