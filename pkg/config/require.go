package config

import (
	"log"
	"time"
)

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustPositive(value time.Duration, envName string) {
	if value <= 0 {
		log.Fatalf("env %s must be a positive duration", envName)
	}
}
