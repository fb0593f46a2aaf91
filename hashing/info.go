package hashing

import (
	"fmt"

	"github.com/hasbyte1/go-yescrypt/kdf"
)

// Info carries metadata parsed from a stored artifact.
type Info struct {
	// Mode is the encoding the artifact was produced with.
	Mode Mode

	// Params is the parameter set recorded in the artifact.
	Params kdf.Params

	// Salt is the salt recorded in the artifact.
	Salt []byte

	// KeyLen is the length of the stored key in bytes.
	KeyLen int
}

// Inspect extracts metadata from a structured or compact artifact without
// verifying it. Useful for auditing, migration tooling, or logging. Raw
// artifacts carry no metadata and return [ErrArgument].
func Inspect(artifact []byte) (Info, error) {
	mode, ok := DetectMode(artifact)
	if !ok {
		return Info{}, fmt.Errorf("%w: artifact is neither a structured record nor a compact hash", ErrArgument)
	}

	switch mode {
	case ModeStructured:
		rec, err := decodeRecord(artifact)
		if err != nil {
			return Info{}, err
		}
		return Info{
			Mode:   ModeStructured,
			Params: rec.params(),
			Salt:   rec.salt,
			KeyLen: len(rec.key),
		}, nil
	default:
		s, err := kdf.DecodeSettings(artifact)
		if err != nil {
			return Info{}, fmt.Errorf("%w: malformed compact hash: %w", ErrArgument, err)
		}
		return Info{
			Mode:   ModeCompact,
			Params: s.Params,
			Salt:   s.Salt,
			KeyLen: kdf.HashKeyLen,
		}, nil
	}
}

// NeedsRehash reports whether stored was produced with parameters or a mode
// other than h's. Call it after a successful Compare and re-hash the
// password with h when it returns true.
//
// Raw artifacts carry nothing to compare, so they never need a rehash.
func (h *Hasher) NeedsRehash(stored []byte) (bool, error) {
	if h.mode == ModeRaw {
		return false, nil
	}
	info, err := Inspect(stored)
	if err != nil {
		return false, err
	}
	if info.Mode != h.mode {
		return true, nil
	}
	return info.Params != h.params, nil
}
