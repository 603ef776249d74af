package config

import (
	pkgcfg "github.com/Skotchmaster/classroom/pkg/config"
)

type Config struct {
	pkgcfg.Config

	CourseTopic string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string
}

func Load() *Config {
	base := pkgcfg.Load()
	if base.ServiceName == "" {
		base.ServiceName = "academic"
	}

	cfg := &Config{
		Config: base,

		CourseTopic: pkgcfg.EnvDefault("KAFKA_COURSE_TOPIC", "course_events"),

		ESURL:      pkgcfg.EnvDefault("ES_URL", ""),
		ESUser:     pkgcfg.EnvDefault("ES_USER", ""),
		ESPassword: pkgcfg.EnvDefault("ES_PASSWORD", ""),
		ESIndex:    pkgcfg.EnvDefault("ES_COURSE_INDEX", "courses"),
	}

	pkgcfg.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	return cfg
}
