package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hasbyte1/go-yescrypt/hashing"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Hash a password",
	Long: `Hash a password read from --password or the first line of stdin.

Without --salt a random salt is used. Raw keys are printed in hex.`,
	RunE: runDigest,
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Verify a password against a stored hash",
	Long: `Verify a password against --hash.

Exit status is 0 on a match, 1 on a wrong password or any other error, and 2
when a structured record was produced with different parameters.`,
	RunE: runCompare,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <hash>",
	Short: "Print the parameters stored in a hash",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Time digests with the configured parameters",
	RunE:  runBench,
}

func init() {
	digestCmd.Flags().String("password", "", "Password (default: read from stdin)")
	digestCmd.Flags().String("salt", "", "Salt as hex, or literal text when not valid hex")
	digestCmd.Flags().Int("length", hashing.DefaultHashLength, "Key length in bytes (structured and raw)")

	compareCmd.Flags().String("password", "", "Password (default: read from stdin)")
	compareCmd.Flags().String("hash", "", "Stored hash; hex for raw mode (required)")
	compareCmd.Flags().String("salt", "", "Salt for raw mode, hex or literal text")
	_ = compareCmd.MarkFlagRequired("hash")

	benchCmd.Flags().Int("count", 10, "Number of digests")
}

// parseSalt decodes salt from hex, falling back to the literal string.
func parseSalt(salt string) []byte {
	if salt == "" {
		return nil
	}
	if decoded, err := hex.DecodeString(salt); err == nil {
		return decoded
	}
	return []byte(salt)
}

// readPassword returns --password or the first line of in.
func readPassword(cmd *cobra.Command, in io.Reader) ([]byte, error) {
	if pw, _ := cmd.Flags().GetString("password"); pw != "" {
		return []byte(pw), nil
	}
	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read password: %w", err)
		}
		return nil, fmt.Errorf("%w: no password given", hashing.ErrArgument)
	}
	return []byte(strings.TrimRight(sc.Text(), "\r")), nil
}

func runDigest(cmd *cobra.Command, args []string) error {
	h, err := newHasher()
	if err != nil {
		return err
	}
	defer h.Close()

	password, err := readPassword(cmd, cmd.InOrStdin())
	if err != nil {
		return err
	}
	saltFlag, _ := cmd.Flags().GetString("salt")
	length, _ := cmd.Flags().GetInt("length")

	var out []byte
	switch salt := parseSalt(saltFlag); {
	case salt == nil && h.Mode() != hashing.ModeRaw:
		out, err = h.Make(password)
	case salt == nil:
		return fmt.Errorf("%w: raw mode needs --salt", hashing.ErrArgument)
	case h.Mode() == hashing.ModeCompact:
		out, err = h.Hash(password, salt)
	default:
		out, err = h.Digest(password, salt, nil, length)
	}
	if err != nil {
		return err
	}

	if h.Mode() == hashing.ModeRaw {
		fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(out))
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	}
	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	h, err := newHasher()
	if err != nil {
		return err
	}
	defer h.Close()

	password, err := readPassword(cmd, cmd.InOrStdin())
	if err != nil {
		return err
	}
	hashFlag, _ := cmd.Flags().GetString("hash")
	saltFlag, _ := cmd.Flags().GetString("salt")

	stored := []byte(hashFlag)
	if h.Mode() == hashing.ModeRaw {
		if stored, err = hex.DecodeString(hashFlag); err != nil {
			return fmt.Errorf("%w: raw hash must be hex: %v", hashing.ErrArgument, err)
		}
	}

	if err := h.Compare(password, stored, parseSalt(saltFlag)); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	info, err := hashing.Inspect([]byte(args[0]))
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "mode:   %s\n", info.Mode)
	fmt.Fprintf(w, "N:      %d\n", info.Params.N)
	fmt.Fprintf(w, "r:      %d\n", info.Params.R)
	fmt.Fprintf(w, "p:      %d\n", info.Params.P)
	fmt.Fprintf(w, "t:      %d\n", info.Params.T)
	fmt.Fprintf(w, "flags:  %#x\n", uint32(info.Params.Flags))
	fmt.Fprintf(w, "memory: %d bytes\n", info.Params.MemorySize())
	fmt.Fprintf(w, "salt:   %s\n", hex.EncodeToString(info.Salt))
	fmt.Fprintf(w, "key:    %d bytes\n", info.KeyLen)
	return nil
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := cfg.Options(logger)
	if err != nil {
		return err
	}
	count, _ := cmd.Flags().GetInt("count")
	if count < 1 {
		return fmt.Errorf("%w: --count must be at least 1", hashing.ErrArgument)
	}

	pool, err := hashing.NewPool(opts, cfg.PoolSize)
	if err != nil {
		return err
	}
	defer pool.Close()

	salt := []byte("yescrypt-bench-salt")
	password := []byte("yescrypt-bench-password")

	start := time.Now()
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < count; i++ {
		g.Go(func() error {
			_, err := pool.Hash(ctx, password, salt)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	logger.WithFields(logrus.Fields{
		"count":   count,
		"elapsed": elapsed,
	}).Debug("bench finished")

	p := pool.Params()
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "params:   %s\n", p)
	fmt.Fprintf(w, "mode:     %s\n", pool.Mode())
	fmt.Fprintf(w, "memory:   %d bytes per hasher, %d hashers\n", p.MemorySize(), pool.Size())
	fmt.Fprintf(w, "digests:  %d in %s\n", count, elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "per hash: %s\n", (elapsed / time.Duration(count)).Round(time.Microsecond))
	return nil
}
