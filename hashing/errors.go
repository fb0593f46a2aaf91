package hashing

import "errors"

// Sentinel errors returned by hashing operations.
//
// Use [errors.Is] for comparisons:
//
//	err := hasher.Compare(password, stored, nil)
//	switch {
//	case errors.Is(err, hashing.ErrWrongPassword):
//	    // reject the login
//	case errors.Is(err, hashing.ErrWrongPasswordConfiguration):
//	    // stored hash was made with other parameters
//	}
//
// Errors coming from the derivation backend stay in the chain, so
// errors.Is(err, kdf.ErrRegionBusy) works as well.
var (
	// ErrArgument is returned for caller misuse: an artifact that does not
	// match the hasher's mode, a missing salt, an invalid hash length, or a
	// malformed artifact.
	ErrArgument = errors.New("hashing: invalid argument")

	// ErrInitialization is returned by [New] when the working memory region
	// can not be allocated. No Hasher is returned.
	ErrInitialization = errors.New("hashing: initialization failed")

	// ErrEncoding is returned when parameters and salt can not be encoded as
	// a settings string.
	ErrEncoding = errors.New("hashing: settings encoding failed")

	// ErrHashing is returned when key derivation fails. It points at a
	// parameter or buffer problem rather than a transient condition.
	ErrHashing = errors.New("hashing: key derivation failed")

	// ErrWrongPasswordConfiguration is returned by Compare in structured
	// mode when the stored configuration differs from the hasher's. It is
	// detected before any derivation runs.
	ErrWrongPasswordConfiguration = errors.New("hashing: password configurations are incompatible")

	// ErrWrongPassword is returned by Compare when the password does not
	// match the stored hash.
	ErrWrongPassword = errors.New("hashing: password does not match stored hash")

	// ErrClosed is returned by operations on a Hasher or Pool after Close.
	ErrClosed = errors.New("hashing: hasher is closed")
)
