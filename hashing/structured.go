package hashing

import (
	"bytes"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/hasbyte1/go-yescrypt/kdf"
)

const (
	// RecordAlgorithm is the "alg" value of a structured record.
	RecordAlgorithm = "yescrypt"

	// RecordVersion is the "ver" value of a structured record.
	RecordVersion = "1.1"
)

// record is the structured artifact. Field order is the serialised order,
// and cfg keys are emitted sorted, so equal inputs give identical bytes:
//
//	{"alg":"yescrypt","ver":"1.1","cfg":{"N":65536,"NROM":0,"flags":182,"g":0,"p":1,"r":8,"t":0},"key":"...","slt":"..."}
type record struct {
	Alg string            `json:"alg"`
	Ver string            `json:"ver"`
	Cfg map[string]uint64 `json:"cfg"`
	Key string            `json:"key"`
	Slt string            `json:"slt"`
}

// recordFields are the keys of a structured record, matched exactly.
var recordFields = []string{"alg", "ver", "cfg", "key", "slt"}

// decodedRecord holds the validated contents of a structured artifact.
type decodedRecord struct {
	cfg  map[string]uint64
	key  []byte
	salt []byte
}

func encodeRecord(p kdf.Params, key, salt []byte) ([]byte, error) {
	b, err := json.Marshal(record{
		Alg: RecordAlgorithm,
		Ver: RecordVersion,
		Cfg: p.Fields(),
		Key: base64.StdEncoding.EncodeToString(key),
		Slt: base64.StdEncoding.EncodeToString(salt),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return b, nil
}

// decodeRecord parses a structured artifact. Every failure is an
// [ErrArgument]; the message tells a compact string or raw bytes apart from
// a damaged record.
func decodeRecord(stored []byte) (*decodedRecord, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(stored, &fields); err != nil {
		switch {
		case bytes.HasPrefix(stored, []byte(kdf.SettingsPrefix)):
			return nil, fmt.Errorf("%w: compact hash passed to a structured hasher", ErrArgument)
		case json.Valid(stored):
			return nil, fmt.Errorf("%w: malformed structured record: %v", ErrArgument, err)
		default:
			return nil, fmt.Errorf("%w: raw (probably) data passed to a structured hasher", ErrArgument)
		}
	}
	for name := range fields {
		for _, known := range recordFields {
			if name != known && strings.EqualFold(name, known) {
				return nil, fmt.Errorf("%w: non-canonical record field %q", ErrArgument, name)
			}
		}
	}

	var (
		alg, ver string
		cfgRaw   map[string]json.Number
		key, slt *string
	)
	targets := map[string]any{"alg": &alg, "ver": &ver, "cfg": &cfgRaw, "key": &key, "slt": &slt}
	for _, name := range recordFields {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, targets[name]); err != nil {
			return nil, fmt.Errorf("%w: record field %q: %v", ErrArgument, name, err)
		}
	}

	switch {
	case alg != RecordAlgorithm:
		return nil, fmt.Errorf("%w: record algorithm is %q, not %q", ErrArgument, alg, RecordAlgorithm)
	case ver != RecordVersion:
		return nil, fmt.Errorf("%w: unsupported record version %q", ErrArgument, ver)
	case cfgRaw == nil:
		return nil, fmt.Errorf("%w: record has no cfg", ErrArgument)
	case key == nil:
		return nil, fmt.Errorf("%w: record has no key", ErrArgument)
	case slt == nil:
		return nil, fmt.Errorf("%w: record has no salt", ErrArgument)
	}

	cfg := make(map[string]uint64, len(cfgRaw))
	for name, num := range cfgRaw {
		v, ok := parseCount(num)
		if !ok {
			return nil, fmt.Errorf("%w: cfg %q is not an unsigned integer: %q", ErrArgument, name, num)
		}
		cfg[name] = v
	}

	keyBytes, err := base64.StdEncoding.DecodeString(*key)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid key base64: %v", ErrArgument, err)
	}
	if len(keyBytes) == 0 {
		return nil, fmt.Errorf("%w: record key is empty", ErrArgument)
	}
	salt, err := base64.StdEncoding.DecodeString(*slt)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid salt base64: %v", ErrArgument, err)
	}

	return &decodedRecord{cfg: cfg, key: keyBytes, salt: salt}, nil
}

// parseCount reads a cfg value. Integral numbers written in float form, such
// as 65536.0 or 6.5536e4, equal their integer value.
func parseCount(num json.Number) (uint64, bool) {
	if v, err := strconv.ParseUint(num.String(), 10, 64); err == nil {
		return v, true
	}
	f, err := num.Float64()
	if err != nil || f < 0 || f != math.Trunc(f) || f >= 1<<64 {
		return 0, false
	}
	return uint64(f), true
}

// params rebuilds a parameter set from the record configuration. Missing
// fields stay zero.
func (r *decodedRecord) params() kdf.Params {
	return kdf.Params{
		Flags: kdf.Flags(r.cfg[kdf.FieldFlags]),
		N:     r.cfg[kdf.FieldN],
		R:     uint32(r.cfg[kdf.FieldR]),
		P:     uint32(r.cfg[kdf.FieldP]),
		T:     uint32(r.cfg[kdf.FieldT]),
		G:     uint32(r.cfg[kdf.FieldG]),
		NROM:  r.cfg[kdf.FieldNROM],
	}
}

func (h *Hasher) compareStructured(password, stored []byte) error {
	rec, err := decodeRecord(stored)
	if err != nil {
		return err
	}
	// Checked before deriving: a mismatch is cheap to detect and must not
	// pay for a memory-hard derivation.
	if err := h.checkConfig(rec.cfg); err != nil {
		return err
	}

	computed, err := h.deriveKey(password, rec.salt, len(rec.key))
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(computed, rec.key) != 1 {
		h.log.Debug("password mismatch")
		return ErrWrongPassword
	}
	return nil
}

// checkConfig compares every stored parameter with the hasher's own.
func (h *Hasher) checkConfig(cfg map[string]uint64) error {
	names := make([]string, 0, len(cfg))
	for name := range cfg {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		own, ok := h.params.Field(name)
		if !ok {
			h.log.WithField("field", name).Warn("stored configuration has an unknown parameter")
			return fmt.Errorf("%w: unknown parameter %q", ErrWrongPasswordConfiguration, name)
		}
		if cfg[name] != own {
			h.log.WithField("field", name).Warn("stored configuration differs from hasher")
			return fmt.Errorf("%w: %s is %d, hasher uses %d",
				ErrWrongPasswordConfiguration, name, cfg[name], own)
		}
	}
	return nil
}
