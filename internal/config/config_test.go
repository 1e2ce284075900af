package config

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.MaxWorkers)
	assert.EqualValues(t, 1<<30, cfg.MaxLoadBytes)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ALIGNEDVEC_MAX_WORKERS", "3")
	t.Setenv("ALIGNEDVEC_MAX_LOAD_BYTES", "4096")
	t.Setenv("ALIGNEDVEC_LOG_LEVEL", "debug")
	t.Setenv("ALIGNEDVEC_LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.MaxWorkers)
	assert.EqualValues(t, 4096, cfg.MaxLoadBytes)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestValidate(t *testing.T) {
	valid := Config{MaxWorkers: 0, MaxLoadBytes: 1, LogLevel: "info", LogFormat: "json"}
	require.NoError(t, Validate(&valid))

	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"negative workers", func(c *Config) { c.MaxWorkers = -1 }, ErrInvalidMaxWorkers},
		{"zero load bytes", func(c *Config) { c.MaxLoadBytes = 0 }, ErrInvalidMaxLoadBytes},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, ErrInvalidLogFormat},
		{"bad level", func(c *Config) { c.LogLevel = "verbose" }, ErrInvalidLogLevel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			assert.ErrorIs(t, Validate(&cfg), tc.want)
		})
	}
}

func TestWorkers_ZeroMeansNumCPU(t *testing.T) {
	assert.Equal(t, runtime.NumCPU(), Config{}.Workers())
	assert.Equal(t, 7, Config{MaxWorkers: 7}.Workers())
}
