package hashing

import (
	"bytes"
	"crypto/subtle"
	"fmt"

	"github.com/hasbyte1/go-yescrypt/kdf"
)

func (h *Hasher) digestCompact(password, salt, settings []byte, hashLength int) ([]byte, error) {
	if hashLength != kdf.HashKeyLen {
		return nil, fmt.Errorf("%w: compact hashes do not store their length and are always %d bytes, got %d",
			ErrArgument, kdf.HashKeyLen, hashLength)
	}
	if len(settings) == 0 {
		if len(salt) == 0 {
			return nil, fmt.Errorf("%w: a salt is required without compact settings", ErrArgument)
		}
		var err error
		settings, err = h.capability.EncodeSettings(h.params, salt)
		if err != nil {
			h.log.WithError(err).Warn("settings encoding failed")
			return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
		}
		if len(settings) == 0 {
			return nil, fmt.Errorf("%w: capability returned empty settings", ErrEncoding)
		}
	}

	buf := make([]byte, kdf.HashBufferLen)
	n, err := h.capability.DeriveFromSettings(h.region, password, settings, buf)
	if err != nil {
		h.log.WithError(err).Warn("key derivation failed")
		return nil, fmt.Errorf("%w: %w", ErrHashing, err)
	}
	if n <= 0 || n >= len(buf) {
		return nil, fmt.Errorf("%w: capability wrote %d bytes into a %d-byte buffer", ErrHashing, n, len(buf))
	}
	return buf[:n], nil
}

func (h *Hasher) compareCompact(password, stored []byte) error {
	if !bytes.HasPrefix(stored, []byte(kdf.SettingsPrefix)) {
		if looksLikeRecord(stored) {
			return fmt.Errorf("%w: structured record passed to a compact hasher", ErrArgument)
		}
		return fmt.Errorf("%w: raw (probably) data passed to a compact hasher", ErrArgument)
	}
	s, err := kdf.DecodeSettings(stored)
	if err != nil {
		return fmt.Errorf("%w: malformed compact hash: %w", ErrArgument, err)
	}
	if len(s.Prefix) >= len(stored) {
		return fmt.Errorf("%w: compact string has settings but no hash", ErrArgument)
	}

	// The embedded parameters drive the derivation, so a configuration
	// difference shows up as a different hash rather than its own error.
	settings := stored[:bytes.LastIndexByte(stored, '$')]
	computed, err := h.digestCompact(password, nil, settings, kdf.HashKeyLen)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(computed, stored) != 1 {
		h.log.Debug("password mismatch")
		return ErrWrongPassword
	}
	return nil
}
