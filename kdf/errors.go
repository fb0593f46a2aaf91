package kdf

import "errors"

// Sentinel errors returned by capability implementations.
var (
	// ErrRegionFreed is returned when a region is used or freed after it
	// has already been released.
	ErrRegionFreed = errors.New("kdf: region already freed")

	// ErrRegionBusy is returned when a region is acquired while another
	// derivation is still running on it.
	ErrRegionBusy = errors.New("kdf: region in use by another call")

	// ErrRegionTooLarge is returned when the memory a parameter set needs
	// exceeds the configured limit.
	ErrRegionTooLarge = errors.New("kdf: region exceeds memory limit")

	// ErrUnsupportedParams is returned for parameter sets the backend was
	// not built to derive with.
	ErrUnsupportedParams = errors.New("kdf: unsupported parameters")

	// ErrInvalidSettings is returned when a settings string can not be
	// produced or parsed.
	ErrInvalidSettings = errors.New("kdf: invalid settings string")

	// ErrBufferTooSmall is returned when an output buffer can not hold the
	// result.
	ErrBufferTooSmall = errors.New("kdf: output buffer too small")
)
