package config

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds the process runtime settings. Values come from the
// environment (godotenv loads a .env file in main); anything unset or
// unparseable falls back to a default with a logged warning.
type Config struct {
	// Port the HTTP/WebSocket listener binds to.
	Port string
	// OriginPatterns accepted for WebSocket upgrades.
	OriginPatterns []string
	// GracePeriod a fully disconnected room survives before being swept.
	GracePeriod time.Duration
}

// Load reads configuration from the environment.
func Load(logger *logrus.Logger) Config {
	cfg := Config{
		Port:           "8080",
		OriginPatterns: []string{"*"},
		GracePeriod:    5 * time.Second,
	}

	if port := os.Getenv("VSCRABBLE_PORT"); port != "" {
		cfg.Port = port
	}
	if origins := os.Getenv("ORIGIN_PATTERNS"); origins != "" {
		cfg.OriginPatterns = strings.Split(origins, ",")
	}
	if grace := os.Getenv("ROOM_GRACE_PERIOD"); grace != "" {
		d, err := time.ParseDuration(grace)
		if err != nil || d <= 0 {
			logger.Warnf("invalid ROOM_GRACE_PERIOD %q, using default %s", grace, cfg.GracePeriod)
		} else {
			cfg.GracePeriod = d
		}
	}
	return cfg
}
