package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hasbyte1/go-yescrypt/hashing"
)

// Exit statuses for compare.
const (
	exitOK             = 0
	exitFailure        = 1
	exitConfigMismatch = 2
)

var (
	configFile string
	verbose    bool

	logger = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "yescrypt",
	Short: "Hash and verify passwords with yescrypt",
	Long: `yescrypt hashes and verifies passwords in three encodings: self-describing
JSON records, crypt(3) "$y$" strings, and raw keys.

Parameters come from flags, YESCRYPT_* environment variables, or a config file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetOutput(cmd.ErrOrStderr())
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		}

		// YESCRYPT_* values from .env reach viper through AutomaticEnv.
		if err := hashing.LoadDotEnv(); err != nil {
			return err
		}

		if configFile != "" {
			viper.SetConfigFile(configFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("read config %s: %w", configFile, err)
			}
			logger.WithField("file", viper.ConfigFileUsed()).Debug("config loaded")
		}
		return nil
	},
}

func init() {
	viper.SetEnvPrefix("YESCRYPT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file path (yaml, json or toml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.Uint64("n", hashing.DefaultN, "Memory cost: number of blocks, a power of two")
	flags.Uint32("r", hashing.DefaultR, "Block size in 128-byte units")
	flags.Uint32("t", 0, "Additional time cost")
	flags.Uint32("p", hashing.DefaultP, "Parallelism")
	flags.String("mode", hashing.ModeStructured.String(), "Encoding: structured, compact or raw")
	flags.Uint64("max-memory", 0, "Refuse parameters needing more bytes than this (0: 1 GiB default)")
	flags.Int("pool-size", 1, "Hashers used by bench")

	for _, name := range []string{"n", "r", "t", "p", "mode", "max-memory", "pool-size"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(digestCmd, compareCmd, inspectCmd, benchCmd)
}

// loadConfig resolves hasher settings from flags, environment (including
// .env) and config file, in viper's precedence order.
func loadConfig() (hashing.Config, error) {
	cfg := hashing.Config{
		N:         viper.GetUint64("n"),
		R:         viper.GetUint32("r"),
		T:         viper.GetUint32("t"),
		P:         viper.GetUint32("p"),
		Mode:      viper.GetString("mode"),
		PoolSize:  viper.GetInt("pool-size"),
		MaxMemory: viper.GetUint64("max-memory"),
	}
	if err := cfg.Validate(); err != nil {
		return hashing.Config{}, err
	}
	return cfg, nil
}

func newHasher() (*hashing.Hasher, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options(logger)
	if err != nil {
		return nil, err
	}
	return hashing.New(opts)
}

// exitCode maps a command error to a process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, hashing.ErrWrongPasswordConfiguration):
		return exitConfigMismatch
	default:
		return exitFailure
	}
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "yescrypt:", err)
	}
	os.Exit(exitCode(err))
}
