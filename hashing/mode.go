package hashing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hasbyte1/go-yescrypt/kdf"
)

// Mode selects how a Hasher packages derived keys and how it reads stored
// artifacts back.
type Mode int

const (
	// ModeStructured produces a self-describing JSON record carrying the
	// algorithm, version, parameters, key and salt.
	ModeStructured Mode = iota + 1

	// ModeCompact produces a crypt(3) "$y$" string. Keys are always 32
	// bytes and salts at most 64 bytes.
	ModeCompact

	// ModeRaw returns the derived key bytes as they are. Salt and
	// parameters are the caller's to keep.
	ModeRaw
)

// String returns the canonical name of m.
func (m Mode) String() string {
	switch m {
	case ModeStructured:
		return "structured"
	case ModeCompact:
		return "compact"
	case ModeRaw:
		return "raw"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps a mode name to a Mode. "json" and "mcf" are accepted as
// aliases for structured and compact.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "structured", "json":
		return ModeStructured, nil
	case "compact", "mcf":
		return ModeCompact, nil
	case "raw":
		return ModeRaw, nil
	default:
		return 0, fmt.Errorf("%w: unknown mode %q", ErrArgument, s)
	}
}

// DetectMode inspects an artifact and reports which mode produced it. It is
// a shape heuristic and does not validate the artifact. Raw artifacts carry
// no marker, so the second result is false for them.
func DetectMode(artifact []byte) (Mode, bool) {
	switch {
	case bytes.HasPrefix(artifact, []byte(kdf.SettingsPrefix)):
		return ModeCompact, true
	case looksLikeRecord(artifact):
		return ModeStructured, true
	default:
		return 0, false
	}
}

// looksLikeRecord reports whether b is a JSON object.
func looksLikeRecord(b []byte) bool {
	t := bytes.TrimSpace(b)
	return len(t) > 0 && t[0] == '{' && json.Valid(t)
}
