package config

import (
	"time"

	pkgcfg "github.com/Skotchmaster/classroom/pkg/config"
)

type Config struct {
	pkgcfg.Config

	AssignmentTopic string

	// AcademicURL is where course ownership and membership are looked up.
	AcademicURL     string
	AcademicTimeout time.Duration
}

func Load() *Config {
	base := pkgcfg.Load()
	if base.ServiceName == "" {
		base.ServiceName = "grading"
	}

	cfg := &Config{
		Config: base,

		AssignmentTopic: pkgcfg.EnvDefault("KAFKA_ASSIGNMENT_TOPIC", "assignment_events"),

		AcademicURL:     pkgcfg.EnvDefault("ACADEMIC_URL", ""),
		AcademicTimeout: pkgcfg.EnvDurationDefault("ACADEMIC_TIMEOUT", 5*time.Second),
	}

	pkgcfg.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	pkgcfg.MustNonEmpty(cfg.AcademicURL, "ACADEMIC_URL")
	return cfg
}
