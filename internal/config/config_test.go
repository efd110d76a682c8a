package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VSCRABBLE_PORT", "")
	t.Setenv("ORIGIN_PATTERNS", "")
	t.Setenv("ROOM_GRACE_PERIOD", "")

	cfg := Load(logrus.New())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"*"}, cfg.OriginPatterns)
	assert.Equal(t, 5*time.Second, cfg.GracePeriod)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("VSCRABBLE_PORT", "9999")
	t.Setenv("ORIGIN_PATTERNS", "example.com,*.example.org")
	t.Setenv("ROOM_GRACE_PERIOD", "30s")

	cfg := Load(logrus.New())
	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, []string{"example.com", "*.example.org"}, cfg.OriginPatterns)
	assert.Equal(t, 30*time.Second, cfg.GracePeriod)
}

func TestLoadBadGracePeriodFallsBack(t *testing.T) {
	t.Setenv("ROOM_GRACE_PERIOD", "soon")
	cfg := Load(logrus.New())
	assert.Equal(t, 5*time.Second, cfg.GracePeriod)

	t.Setenv("ROOM_GRACE_PERIOD", "-2s")
	cfg = Load(logrus.New())
	assert.Equal(t, 5*time.Second, cfg.GracePeriod)
}
