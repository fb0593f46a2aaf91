package hashing

import (
	"crypto/subtle"
	"fmt"
)

func (h *Hasher) compareRaw(password, stored, salt []byte) error {
	if len(salt) == 0 {
		return fmt.Errorf("%w: a salt is required in raw mode", ErrArgument)
	}
	if len(stored) == 0 {
		return fmt.Errorf("%w: stored hash is empty", ErrArgument)
	}
	computed, err := h.deriveKey(password, salt, len(stored))
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(computed, stored) != 1 {
		h.log.Debug("password mismatch")
		return ErrWrongPassword
	}
	return nil
}
