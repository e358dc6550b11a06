package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, HorizonYearEnd, cfg.Schedule.HorizonMode)
	assert.Equal(t, 8, cfg.Schedule.SyncConcurrency)
	assert.Equal(t, 30*time.Second, cfg.Schedule.SyncTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Redis.LockTTL)
	assert.False(t, cfg.Schedule.StrictManualEdits)
	assert.Equal(t, 20, cfg.Server.PostRateLimit)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GUARD_SCHEDULE_HORIZON_MODE", "days")
	t.Setenv("GUARD_SCHEDULE_HORIZON_DAYS", "90")
	t.Setenv("GUARD_SCHEDULE_STRICT_MANUAL_EDITS", "true")
	t.Setenv("GUARD_SERVER_PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, HorizonDays, cfg.Schedule.HorizonMode)
	assert.Equal(t, 90, cfg.Schedule.HorizonDays)
	assert.True(t, cfg.Schedule.StrictManualEdits)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
schedule:
  timezone: UTC
  sync_concurrency: 2
  sync_timeout: 5s
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "UTC", cfg.Schedule.Timezone)
	assert.Equal(t, 2, cfg.Schedule.SyncConcurrency)
	assert.Equal(t, 5*time.Second, cfg.Schedule.SyncTimeout)
	assert.Equal(t, time.UTC, cfg.Schedule.Location())
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server: ServerConfig{Port: 8080},
			Schedule: ScheduleConfig{
				Timezone:        "UTC",
				HorizonMode:     HorizonYearEnd,
				SyncConcurrency: 4,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"Valid", func(c *Config) {}, false},
		{"BadPort", func(c *Config) { c.Server.Port = 0 }, true},
		{"BadTimezone", func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }, true},
		{"BadHorizonMode", func(c *Config) { c.Schedule.HorizonMode = "forever" }, true},
		{"DaysWithoutCount", func(c *Config) { c.Schedule.HorizonMode = HorizonDays }, true},
		{"DaysWithCount", func(c *Config) {
			c.Schedule.HorizonMode = HorizonDays
			c.Schedule.HorizonDays = 30
		}, false},
		{"ZeroConcurrency", func(c *Config) { c.Schedule.SyncConcurrency = 0 }, true},
		{"NegativePostRateLimit", func(c *Config) { c.Server.PostRateLimit = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
