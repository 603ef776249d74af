package config

import (
	"log"
	"time"

	pkgcfg "github.com/Skotchmaster/classroom/pkg/config"
	"github.com/Skotchmaster/classroom/pkg/keys"
)

type Config struct {
	pkgcfg.Config

	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	CookieSecure bool

	UserTopic string

	RedisAddr        string
	LoginMaxAttempts int
	LoginLockout     time.Duration
}

func Load() *Config {
	base := pkgcfg.Load()
	if base.ServiceName == "" {
		base.ServiceName = "identity"
	}

	cfg := &Config{
		Config: base,

		AccessTTL:    pkgcfg.EnvDurationDefault("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL:   pkgcfg.EnvDurationDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		CookieSecure: pkgcfg.EnvBoolDefault("COOKIE_SECURE", true),

		UserTopic: pkgcfg.EnvDefault("KAFKA_USER_TOPIC", "user_events"),

		RedisAddr:        pkgcfg.EnvDefault("REDIS_ADDR", ""),
		LoginMaxAttempts: pkgcfg.EnvIntDefault("LOGIN_MAX_ATTEMPTS", 5),
		LoginLockout:     pkgcfg.EnvDurationDefault("LOGIN_LOCKOUT", 15*time.Minute),
	}

	pkgcfg.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	pkgcfg.MustPositive(cfg.AccessTTL, "ACCESS_TOKEN_TTL")
	pkgcfg.MustPositive(cfg.RefreshTTL, "REFRESH_TOKEN_TTL")
	if cfg.RefreshTTL <= cfg.AccessTTL {
		log.Fatalf("REFRESH_TOKEN_TTL (%s) must be longer than ACCESS_TOKEN_TTL (%s)", cfg.RefreshTTL, cfg.AccessTTL)
	}
	return cfg
}

func (c *Config) Keys() keys.Config {
	return keys.Config{
		SecretDir:      c.KeySecretDir,
		PrivateKeyPath: c.PrivateKeyPath,
		PublicKeyPath:  c.PublicKeyPath,
	}
}
