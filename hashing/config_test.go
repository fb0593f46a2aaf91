package hashing_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasbyte1/go-yescrypt/hashing"
	"github.com/hasbyte1/go-yescrypt/kdf"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := hashing.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, hashing.DefaultN, cfg.N)
	assert.Equal(t, hashing.DefaultR, cfg.R)
	assert.Equal(t, uint32(0), cfg.T)
	assert.Equal(t, hashing.DefaultP, cfg.P)
	assert.Equal(t, "structured", cfg.Mode)
	assert.Equal(t, 1, cfg.PoolSize)
	assert.Zero(t, cfg.MaxMemory)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("YESCRYPT_N", "1024")
	t.Setenv("YESCRYPT_R", "16")
	t.Setenv("YESCRYPT_MODE", "mcf")
	t.Setenv("YESCRYPT_POOL_SIZE", "4")
	t.Setenv("YESCRYPT_MAX_MEMORY", "8388608")

	cfg, err := hashing.LoadConfig()
	require.NoError(t, err)

	opts, err := cfg.Options(quietLogger())
	require.NoError(t, err)
	assert.Equal(t, uint64(1024), opts.N)
	assert.Equal(t, uint32(16), opts.R)
	assert.Equal(t, hashing.ModeCompact, opts.Mode)
	assert.Equal(t, kdf.Native{MaxMemory: 8 << 20}, opts.Capability)
	assert.Equal(t, 4, cfg.PoolSize)

	h, err := hashing.New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	stored, err := h.Make(testPassword)
	require.NoError(t, err)
	assert.NoError(t, h.Compare(testPassword, stored, nil))
}

// unsetForTest removes name from the environment and restores it when the
// test ends, so values a .env file sets do not leak into other tests.
func unsetForTest(t *testing.T, name string) {
	t.Helper()
	t.Setenv(name, "")
	require.NoError(t, os.Unsetenv(name))
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("YESCRYPT_N=2048\nYESCRYPT_MODE=raw\n"), 0o600))
	t.Chdir(dir)
	unsetForTest(t, "YESCRYPT_N")
	t.Setenv("YESCRYPT_MODE", "compact")

	cfg, err := hashing.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, uint64(2048), cfg.N)
	assert.Equal(t, "compact", cfg.Mode, "environment wins over .env")
}

func TestLoadConfig_MalformedDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("YESCRYPT_N=\"1024\n"), 0o600))
	t.Chdir(dir)
	unsetForTest(t, "YESCRYPT_N")

	_, err := hashing.LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".env")
}

func TestLoadDotEnv_MissingFileIsSkipped(t *testing.T) {
	assert.NoError(t, hashing.LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}

func TestLoadConfig_ParseError(t *testing.T) {
	t.Setenv("YESCRYPT_N", "lots")
	_, err := hashing.LoadConfig()
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := hashing.Config{N: 1024, R: 8, P: 1, Mode: "raw", PoolSize: 1}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*hashing.Config)
	}{
		{"N not a power of two", func(c *hashing.Config) { c.N = 1000 }},
		{"N too small", func(c *hashing.Config) { c.N = 1 }},
		{"zero r", func(c *hashing.Config) { c.R = 0 }},
		{"zero p", func(c *hashing.Config) { c.P = 0 }},
		{"zero pool", func(c *hashing.Config) { c.PoolSize = 0 }},
		{"unknown mode", func(c *hashing.Config) { c.Mode = "phc" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), hashing.ErrArgument)
		})
	}
}
