package kdf

import (
	"fmt"
	"math"

	"github.com/openwall/yescrypt-go"
)

// DefaultMaxMemory is the working-memory cap a Native uses when MaxMemory is
// zero. Compact hashes carry their own N and r, so without a cap a stored
// string could demand more memory than the process can allocate.
const DefaultMaxMemory uint64 = 1 << 30

// Native derives keys with github.com/openwall/yescrypt-go.
//
// The backend computes native yescrypt with DefaultFlags and supports t=0,
// g=0, no ROM and p=1. Other parameter sets fail with ErrUnsupportedParams
// when a derivation is attempted.
//
// yescrypt-go manages its own V array, so a Native region records the
// working-memory reservation and guards against overlapping use rather than
// holding the array itself.
type Native struct {
	// MaxMemory caps the working memory a region may reserve, in bytes,
	// both at InitRegion and for every derivation. Zero selects
	// DefaultMaxMemory.
	MaxMemory uint64
}

var _ Capability = Native{}

// InitRegion reserves a region sized for p.
func (n Native) InitRegion(p Params) (*Region, error) {
	size := p.MemorySize()
	if limit := n.limit(); size > limit {
		return nil, fmt.Errorf("%w: %s needs %d bytes, limit is %d",
			ErrRegionTooLarge, p, size, limit)
	}
	return NewRegion(size), nil
}

// FreeRegion releases r.
func (n Native) FreeRegion(r *Region) error {
	return r.Free()
}

// DeriveKey fills out with the yescrypt key for password and salt.
func (n Native) DeriveKey(r *Region, p Params, password, salt, out []byte) error {
	if err := n.supports(p); err != nil {
		return err
	}
	if err := r.Acquire(); err != nil {
		return err
	}
	defer r.Release()

	if err := r.Grow(p.MemorySize(), n.limit()); err != nil {
		return err
	}

	key, err := yescrypt.Key(password, salt, int(p.N), int(p.R), int(p.P), len(out))
	if err != nil {
		return fmt.Errorf("kdf: yescrypt: %w", err)
	}
	copy(out, key)
	return nil
}

// DeriveFromSettings derives a 32-byte key using the parameters and salt in
// settings and writes "<settings>$<hash>" to out followed by a NUL.
func (n Native) DeriveFromSettings(r *Region, password, settings, out []byte) (int, error) {
	s, err := DecodeSettings(settings)
	if err != nil {
		return 0, err
	}
	need := len(s.Prefix) + 1 + encodedKeyLen + 1
	if need > len(out) {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, need, len(out))
	}

	var key [HashKeyLen]byte
	if err := n.DeriveKey(r, s.Params, password, s.Salt, key[:]); err != nil {
		return 0, err
	}

	buf := append(out[:0], s.Prefix...)
	buf = append(buf, '$')
	buf = appendBase64(buf, key[:])
	written := len(buf)
	out[written] = 0
	return written, nil
}

// EncodeSettings encodes p and salt as a "$y$" setting string.
func (n Native) EncodeSettings(p Params, salt []byte) ([]byte, error) {
	return EncodeSettings(p, salt)
}

func (n Native) limit() uint64 {
	if n.MaxMemory == 0 {
		return DefaultMaxMemory
	}
	return n.MaxMemory
}

func (n Native) supports(p Params) error {
	switch {
	case p.Flags != DefaultFlags:
		return fmt.Errorf("%w: flags %#x, backend is built for %#x",
			ErrUnsupportedParams, uint32(p.Flags), uint32(DefaultFlags))
	case p.T != 0:
		return fmt.Errorf("%w: t=%d, only t=0 is available", ErrUnsupportedParams, p.T)
	case p.G != 0:
		return fmt.Errorf("%w: g=%d, upgrades are not supported", ErrUnsupportedParams, p.G)
	case p.NROM != 0:
		return fmt.Errorf("%w: ROM is not supported", ErrUnsupportedParams)
	case p.P != 1:
		return fmt.Errorf("%w: p=%d, only p=1 is available", ErrUnsupportedParams, p.P)
	case p.N > math.MaxInt32 || p.R > math.MaxInt32:
		return fmt.Errorf("%w: %s is out of range", ErrUnsupportedParams, p)
	}
	return nil
}
