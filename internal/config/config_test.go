package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 100, cfg.RealtimeBuffer)
	assert.Equal(t, "memory", cfg.EmailProvider)
	assert.True(t, cfg.BankingDemoSeed)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("BACKOFFICE_ADDR", ":9999")
	t.Setenv("BACKOFFICE_BANKING_DEMO_SEED", "false")
	t.Setenv("BACKOFFICE_WEBHOOK_SECRET", "whsec")
	t.Setenv("BACKOFFICE_REALTIME_BUFFER", "5")
	t.Setenv("BACKOFFICE_IDLE_TIMEOUT", "2m")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.False(t, cfg.BankingDemoSeed)
	assert.Equal(t, "whsec", cfg.WebhookSecret)
	assert.Equal(t, 5, cfg.RealtimeBuffer)
	assert.Equal(t, 2*time.Minute, cfg.IdleTimeout)
}

func TestParseError(t *testing.T) {
	t.Setenv("BACKOFFICE_REALTIME_BUFFER", "lots")

	_, err := Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestValidate(t *testing.T) {
	valid, err := Parse()
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }, "addr"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "log format"},
		{"buffer", func(c *Config) { c.RealtimeBuffer = 0 }, "realtime buffer"},
		{"rate", func(c *Config) { c.ErrorReportRate = 0 }, "error report rate"},
		{"burst", func(c *Config) { c.ErrorReportBurst = 0 }, "error report burst"},
		{"body", func(c *Config) { c.MaxBodyBytes = 0 }, "max body bytes"},
		{"timeout", func(c *Config) { c.ReadTimeout = -time.Second }, "read timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadSeedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	content := `
resources:
  klanten:
    - naam: Jansen B.V.
      plaats: Utrecht
    - naam: De Vries
  offertes:
    - nummer: 2024-001
      totaal: 1210.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	seed, err := LoadSeed(path)
	require.NoError(t, err)
	require.Len(t, seed.Resources["klanten"], 2)
	assert.Equal(t, "Jansen B.V.", seed.Resources["klanten"][0]["naam"])
	assert.Equal(t, 1210.5, seed.Resources["offertes"][0]["totaal"])
}

func TestLoadSeedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"resources":{"klanten":[{"naam":"A"}]}}`), 0o644))

	seed, err := LoadSeed(path)
	require.NoError(t, err)
	assert.Equal(t, "A", seed.Resources["klanten"][0]["naam"])
}

func TestLoadSeedErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadSeed(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("resources: [1, 2"), 0o644))
	_, err = LoadSeed(bad)
	assert.Error(t, err)

	scalar := filepath.Join(dir, "scalar.yaml")
	require.NoError(t, os.WriteFile(scalar, []byte("resources:\n  klanten:\n    - ~\n"), 0o644))
	_, err = LoadSeed(scalar)
	assert.ErrorContains(t, err, "not a mapping")
}
