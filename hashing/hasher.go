package hashing

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/hasbyte1/go-yescrypt/kdf"
)

const (
	// DefaultN is the default block count (64 MiB of memory with r=8).
	DefaultN uint64 = 1 << 16

	// DefaultR is the default block size in 128-byte units.
	DefaultR uint32 = 8

	// DefaultP is the default parallelism.
	DefaultP uint32 = 1

	// DefaultHashLength is the key length used by Hash and Make.
	DefaultHashLength = 32

	// DefaultSaltLength is the length of salts generated by Make.
	DefaultSaltLength = 32
)

// Options configures a [Hasher].
//
// Zero values select the defaults: N=[DefaultN], R=[DefaultR], T=0,
// P=[DefaultP], Mode=[ModeStructured], Capability=[kdf.Native] capped at
// [kdf.DefaultMaxMemory], and the logrus standard logger.
type Options struct {
	// N is the memory cost: the number of blocks, a power of two.
	N uint64

	// R is the block size in 128-byte units.
	R uint32

	// T is an additional time cost, for when more memory is not available.
	T uint32

	// P is the parallelism. In yescrypt's RW mode it does not increase
	// memory use.
	P uint32

	// Mode selects the artifact encoding.
	Mode Mode

	// Capability performs the derivations.
	Capability kdf.Capability

	// Logger receives lifecycle and failure events. Passwords, salts and
	// keys are never logged.
	Logger logrus.FieldLogger
}

func (o Options) withDefaults() Options {
	if o.N == 0 {
		o.N = DefaultN
	}
	if o.R == 0 {
		o.R = DefaultR
	}
	if o.P == 0 {
		o.P = DefaultP
	}
	if o.Mode == 0 {
		o.Mode = ModeStructured
	}
	if o.Capability == nil {
		o.Capability = kdf.Native{}
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return o
}

// Hasher hashes and verifies passwords with one fixed parameter set and one
// artifact encoding.
//
// Construction allocates the working memory region; this dominates the cost
// of hashing as memory grows, so build one Hasher per parameter set and
// reuse it.
//
// # Thread safety
//
// A Hasher is not safe for concurrent use: every call writes to its region.
// Serialise calls on one Hasher, give each worker its own, or use a [Pool].
// Overlapping calls are detected and fail with [ErrHashing] wrapping
// [kdf.ErrRegionBusy]. Separate Hashers share nothing.
type Hasher struct {
	mode       Mode
	params     kdf.Params
	capability kdf.Capability
	region     *kdf.Region
	log        logrus.FieldLogger
}

// New builds the parameter set described by opts and allocates its working
// memory. Allocation failure is reported as [ErrInitialization].
func New(opts Options) (*Hasher, error) {
	opts = opts.withDefaults()
	switch opts.Mode {
	case ModeStructured, ModeCompact, ModeRaw:
	default:
		return nil, fmt.Errorf("%w: unknown mode %d", ErrArgument, int(opts.Mode))
	}

	h := &Hasher{
		mode:       opts.Mode,
		params:     kdf.NewParams(opts.N, opts.R, opts.T, opts.P),
		capability: opts.Capability,
	}
	h.log = opts.Logger.WithFields(logrus.Fields{
		"package": "hashing",
		"mode":    h.mode.String(),
		"N":       h.params.N,
		"r":       h.params.R,
		"p":       h.params.P,
		"t":       h.params.T,
	})

	region, err := h.capability.InitRegion(h.params)
	if err != nil {
		h.log.WithError(err).Warn("working memory allocation failed")
		return nil, fmt.Errorf("%w: %w", ErrInitialization, err)
	}
	if region == nil {
		return nil, fmt.Errorf("%w: capability returned no region", ErrInitialization)
	}
	h.region = region

	h.log.WithField("bytes", region.AlignedSize()).Debug("hasher ready")
	return h, nil
}

// Mode returns the artifact encoding of h.
func (h *Hasher) Mode() Mode { return h.mode }

// Params returns the parameter set of h.
func (h *Hasher) Params() kdf.Params { return h.params }

// Digest derives a key from password and salt and packages it according to
// the hasher's mode.
//
// In [ModeCompact] hashLength must be 32 and settings, when given, is a
// "$y$" setting string that takes the place of salt; otherwise salt is
// required. The result is the finished "$y$" hash.
//
// In [ModeStructured] and [ModeRaw] settings is ignored and the key is
// hashLength bytes long. Structured mode returns the JSON record, raw mode
// the key itself.
func (h *Hasher) Digest(password, salt, settings []byte, hashLength int) ([]byte, error) {
	if h.region == nil {
		return nil, ErrClosed
	}
	switch h.mode {
	case ModeCompact:
		return h.digestCompact(password, salt, settings, hashLength)
	case ModeStructured:
		key, err := h.deriveKey(password, salt, hashLength)
		if err != nil {
			return nil, err
		}
		return encodeRecord(h.params, key, salt)
	case ModeRaw:
		return h.deriveKey(password, salt, hashLength)
	default:
		return nil, fmt.Errorf("%w: unknown mode %d", ErrArgument, int(h.mode))
	}
}

// Hash is Digest with no settings and [DefaultHashLength].
func (h *Hasher) Hash(password, salt []byte) ([]byte, error) {
	return h.Digest(password, salt, nil, DefaultHashLength)
}

// Make hashes password with a fresh random salt of [DefaultSaltLength]
// bytes. Two calls with the same password produce different artifacts.
//
// Raw artifacts do not carry their salt, so Make fails with [ErrArgument]
// in [ModeRaw]; use Digest with a salt you store yourself.
func (h *Hasher) Make(password []byte) ([]byte, error) {
	if h.mode == ModeRaw {
		return nil, fmt.Errorf("%w: raw artifacts do not carry a salt; call Digest with your own", ErrArgument)
	}
	salt, err := randomSalt(DefaultSaltLength)
	if err != nil {
		return nil, err
	}
	return h.Hash(password, salt)
}

// Compare recomputes the hash of password with the inputs recovered from
// stored and compares it in constant time. It returns nil on a match and
// [ErrWrongPassword] otherwise.
//
// In [ModeStructured] the stored configuration is checked against the
// hasher's parameters first; a difference returns
// [ErrWrongPasswordConfiguration] without deriving anything.
//
// In [ModeCompact] the parameters embedded in stored are used as they are,
// so a parameter difference surfaces as [ErrWrongPassword].
//
// In [ModeRaw] salt is required and the key length is len(stored). No
// configuration check is possible.
//
// Passing an artifact of another mode returns [ErrArgument].
func (h *Hasher) Compare(password, stored, salt []byte) error {
	if h.region == nil {
		return ErrClosed
	}
	switch h.mode {
	case ModeStructured:
		return h.compareStructured(password, stored)
	case ModeCompact:
		return h.compareCompact(password, stored)
	case ModeRaw:
		return h.compareRaw(password, stored, salt)
	default:
		return fmt.Errorf("%w: unknown mode %d", ErrArgument, int(h.mode))
	}
}

// Close releases the working memory region. It is safe to call more than
// once; only the first call frees the region. Other methods return
// [ErrClosed] afterwards.
func (h *Hasher) Close() error {
	if h.region == nil {
		return nil
	}
	region := h.region
	h.region = nil
	if err := h.capability.FreeRegion(region); err != nil {
		h.log.WithError(err).Warn("releasing working memory failed")
		return fmt.Errorf("hashing: free region: %w", err)
	}
	h.log.Debug("hasher closed")
	return nil
}

// deriveKey runs the capability for hashLength bytes of key.
func (h *Hasher) deriveKey(password, salt []byte, hashLength int) ([]byte, error) {
	if hashLength <= 0 {
		return nil, fmt.Errorf("%w: hash length must be positive, got %d", ErrArgument, hashLength)
	}
	out := make([]byte, hashLength)
	if err := h.capability.DeriveKey(h.region, h.params, password, salt, out); err != nil {
		h.log.WithError(err).Warn("key derivation failed")
		return nil, fmt.Errorf("%w: %w", ErrHashing, err)
	}
	return out, nil
}

// randomSalt returns n cryptographically random bytes.
func randomSalt(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("hashing: failed to generate salt: %w", err)
	}
	return b, nil
}
