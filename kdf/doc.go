// Package kdf is the boundary between the password-hashing façade and the
// yescrypt key-derivation primitive.
//
// # Parameter sets
//
// [Params] carries the yescrypt cost factors. The feature flags are pinned to
// [DefaultFlags] by [NewParams]: the derivation backend is built for exactly
// that configuration and any other value would only fail at derivation time.
//
// # Regions
//
// A [Region] is scratch memory sized from a parameter set. It is created once
// per owner, reused across derivations, and freed exactly once.
//
// # Settings strings
//
// [EncodeSettings] and [DecodeSettings] implement the "$y$" setting format
// used by crypt(3):
//
//	$y$<flavor><log2 N><r>[<have><p><t><g><log2 NROM>]$<salt>
//
// followed, in a finished hash, by "$" and 43 characters of encoded key.
//
// # Native backend
//
// [Native] implements [Capability] on top of github.com/openwall/yescrypt-go.
package kdf
