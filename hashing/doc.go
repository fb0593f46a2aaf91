// Package hashing hashes and verifies passwords with yescrypt.
//
// # Architecture
//
// A [Hasher] binds one yescrypt parameter set and one artifact encoding
// ([Mode]) to a working memory region allocated at construction. Three
// encodings are supported:
//
//   - [ModeStructured]: a self-describing JSON record
//   - [ModeCompact]: the crypt(3) "$y$" string understood by libxcrypt
//   - [ModeRaw]: the derived key bytes alone
//
// The primitive itself sits behind [kdf.Capability]; [kdf.Native] is the
// default and the only implementation shipped. A [Pool] spreads work over
// several Hashers for concurrent callers.
//
// # Quick start
//
//	h, err := hashing.New(hashing.Options{}) // N=65536, r=8, structured
//	if err != nil { log.Fatal(err) }
//	defer h.Close()
//
//	stored, _ := h.Make([]byte("my-secret-password"))
//	err = h.Compare([]byte("my-secret-password"), stored, nil) // nil
//
// # Structured records
//
//	{"alg":"yescrypt","ver":"1.1","cfg":{"N":65536,"NROM":0,"flags":182,"g":0,"p":1,"r":8,"t":0},"key":"<base64>","slt":"<base64>"}
//
// Compare checks the stored cfg against the Hasher before deriving and
// returns [ErrWrongPasswordConfiguration] on any difference.
//
// # Compact strings
//
//	$y$j9T$<salt>$<43-char key>
//
// Compare derives with the parameters embedded in the string, so a
// configuration difference is not reported separately.
//
// # Migration
//
// Call [Hasher.NeedsRehash] after a successful Compare. It returns true when
// the stored artifact used another mode or other parameters:
//
//	if err := h.Compare(pw, stored, nil); err == nil {
//	    if needs, _ := h.NeedsRehash(stored); needs {
//	        fresh, _ := h.Make(pw)
//	        persist(userID, fresh)
//	    }
//	}
package hashing
