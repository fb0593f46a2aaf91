package hashing

import (
	"errors"
	"fmt"
	"io/fs"
	"math/bits"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/hasbyte1/go-yescrypt/kdf"
)

// Config is the environment-driven form of [Options].
type Config struct {
	N         uint64 `env:"YESCRYPT_N" envDefault:"65536"`
	R         uint32 `env:"YESCRYPT_R" envDefault:"8"`
	T         uint32 `env:"YESCRYPT_T" envDefault:"0"`
	P         uint32 `env:"YESCRYPT_P" envDefault:"1"`
	Mode      string `env:"YESCRYPT_MODE" envDefault:"structured"`
	PoolSize  int    `env:"YESCRYPT_POOL_SIZE" envDefault:"1"`
	MaxMemory uint64 `env:"YESCRYPT_MAX_MEMORY" envDefault:"0"` // 0 selects kdf.DefaultMaxMemory
}

// LoadDotEnv loads filenames (default ".env") into the process environment.
// Variables already set win. Missing files are skipped; a file that exists
// but does not parse is an error.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("hashing: load %s: %w", name, err)
		}
	}
	return nil
}

// LoadConfig reads Config from the environment after [LoadDotEnv].
func LoadConfig() (Config, error) {
	if err := LoadDotEnv(); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("hashing: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values a Hasher cannot be built from.
func (c Config) Validate() error {
	switch {
	case c.N < 2 || bits.OnesCount64(c.N) != 1:
		return fmt.Errorf("%w: N must be a power of two greater than 1, got %d", ErrArgument, c.N)
	case c.R < 1:
		return fmt.Errorf("%w: r must be at least 1", ErrArgument)
	case c.P < 1:
		return fmt.Errorf("%w: p must be at least 1", ErrArgument)
	case c.PoolSize < 1:
		return fmt.Errorf("%w: pool size must be at least 1, got %d", ErrArgument, c.PoolSize)
	}
	if _, err := ParseMode(c.Mode); err != nil {
		return err
	}
	return nil
}

// Options converts c into hasher options using the native capability.
// The mode must parse; call Validate first.
func (c Config) Options(logger logrus.FieldLogger) (Options, error) {
	mode, err := ParseMode(c.Mode)
	if err != nil {
		return Options{}, err
	}
	return Options{
		N:          c.N,
		R:          c.R,
		T:          c.T,
		P:          c.P,
		Mode:       mode,
		Capability: kdf.Native{MaxMemory: c.MaxMemory},
		Logger:     logger,
	}, nil
}
