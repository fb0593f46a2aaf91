package kdf

// Capability is the boundary to the memory-hard primitive. Implementations
// treat derivation as a pure function of their inputs, apart from the
// scratch contents of the region they are handed.
type Capability interface {
	// InitRegion allocates a region large enough for derivations with p.
	InitRegion(p Params) (*Region, error)

	// FreeRegion releases r. Freeing a region twice is an error.
	FreeRegion(r *Region) error

	// DeriveKey fills out with a key derived from password and salt.
	DeriveKey(r *Region, p Params, password, salt, out []byte) error

	// DeriveFromSettings derives a key with the parameters and salt encoded
	// in settings and writes the full settings-plus-hash string to out. It
	// returns the number of bytes written, excluding the terminator.
	DeriveFromSettings(r *Region, password, settings, out []byte) (int, error)

	// EncodeSettings encodes p and salt as a settings string.
	EncodeSettings(p Params, salt []byte) ([]byte, error)
}
