package kdf

import (
	"fmt"
	"math/bits"
	"strings"
)

const (
	// SettingsPrefix marks a yescrypt setting or hash string.
	SettingsPrefix = "$y$"

	// MaxSaltLen is the longest salt a settings string can carry.
	MaxSaltLen = 64

	// HashKeyLen is the key length of a finished "$y$" hash.
	HashKeyLen = 32

	// HashBufferLen bounds a finished hash, terminator included: the 'y'
	// tag, four delimiters, up to eight 6-character parameter fields, the
	// encoded salt and key, and a NUL.
	HashBufferLen = 181

	// encodedKeyLen is the length of a HashKeyLen key in crypt base64.
	encodedKeyLen = (HashKeyLen*8 + 5) / 6
)

const itoa64 = "./0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

var atoi64 [256]byte

func init() {
	for i := range atoi64 {
		atoi64[i] = 0xff
	}
	for i := 0; i < len(itoa64); i++ {
		atoi64[itoa64[i]] = byte(i)
	}
}

// encodedField is one parameter of a setting string together with the
// smallest value its encoding can represent.
type encodedField struct {
	value, offset uint32
}

// Settings is a decoded "$y$" setting string.
type Settings struct {
	Params Params
	Salt   []byte
	// Prefix is the setting up to and including the encoded salt, without
	// any trailing "$hash".
	Prefix string
}

// EncodeSettings encodes p and salt as a "$y$" setting string.
func EncodeSettings(p Params, salt []byte) ([]byte, error) {
	var flavor uint32
	switch {
	case p.Flags < FlagRW:
		flavor = uint32(p.Flags)
	case p.Flags&flagModeMask == FlagRW && p.Flags <= FlagRW|flagRWFlavorMask:
		flavor = uint32(FlagRW) + uint32(p.Flags>>2)
	default:
		return nil, fmt.Errorf("%w: flags %#x have no encoding", ErrInvalidSettings, uint32(p.Flags))
	}

	nLog2, ok := log2(p.N)
	if !ok {
		return nil, fmt.Errorf("%w: N=%d is not a power of two above 1", ErrInvalidSettings, p.N)
	}
	var nromLog2 uint32
	if p.NROM != 0 {
		if nromLog2, ok = log2(p.NROM); !ok {
			return nil, fmt.Errorf("%w: NROM=%d is not a power of two above 1", ErrInvalidSettings, p.NROM)
		}
	}
	if uint64(p.R)*uint64(p.P) >= 1<<30 {
		return nil, fmt.Errorf("%w: r*p must be below 2^30", ErrInvalidSettings)
	}
	if len(salt) > MaxSaltLen {
		return nil, fmt.Errorf("%w: salt is %d bytes, at most %d fit", ErrInvalidSettings, len(salt), MaxSaltLen)
	}

	buf := make([]byte, 0, HashBufferLen)
	buf = append(buf, SettingsPrefix...)

	fields := []encodedField{{flavor, 0}, {nLog2, 1}, {p.R, 1}}

	var have uint32
	if p.P != 1 {
		have |= 1
	}
	if p.T != 0 {
		have |= 2
	}
	if p.G != 0 {
		have |= 4
	}
	if nromLog2 != 0 {
		have |= 8
	}
	if have != 0 {
		fields = append(fields, encodedField{have, 1})
	}
	if have&1 != 0 {
		fields = append(fields, encodedField{p.P, 2})
	}
	if have&2 != 0 {
		fields = append(fields, encodedField{p.T, 1})
	}
	if have&4 != 0 {
		fields = append(fields, encodedField{p.G, 1})
	}
	if have&8 != 0 {
		fields = append(fields, encodedField{nromLog2, 1})
	}

	for _, f := range fields {
		if buf, ok = appendUint32(buf, f.value, f.offset); !ok {
			return nil, fmt.Errorf("%w: value %d out of range", ErrInvalidSettings, f.value)
		}
	}
	buf = append(buf, '$')
	buf = appendBase64(buf, salt)
	return buf, nil
}

// DecodeSettings parses a "$y$" setting or a finished hash. Anything after
// the last "$" following the parameters is treated as the hash and ignored.
func DecodeSettings(setting []byte) (Settings, error) {
	s := string(setting)
	if len(s) < len(SettingsPrefix) || s[:len(SettingsPrefix)] != SettingsPrefix {
		return Settings{}, fmt.Errorf("%w: missing %q prefix", ErrInvalidSettings, SettingsPrefix)
	}
	src := s[len(SettingsPrefix):]

	fail := func(what string) (Settings, error) {
		return Settings{}, fmt.Errorf("%w: bad %s", ErrInvalidSettings, what)
	}

	p := Params{P: 1}
	var (
		flavor uint32
		ok     bool
	)
	if flavor, src, ok = decodeUint32(src, 0); !ok {
		return fail("flavor")
	}
	switch {
	case flavor < uint32(FlagRW):
		p.Flags = Flags(flavor)
	case flavor <= uint32(FlagRW)+uint32(flagRWFlavorMask>>2):
		p.Flags = FlagRW + Flags((flavor-uint32(FlagRW))<<2)
	default:
		return fail("flavor")
	}

	var nLog2 uint32
	if nLog2, src, ok = decodeUint32(src, 1); !ok || nLog2 > 63 {
		return fail("N")
	}
	p.N = 1 << nLog2

	if p.R, src, ok = decodeUint32(src, 1); !ok {
		return fail("r")
	}

	if len(src) > 0 && src[0] != '$' {
		var have uint32
		if have, src, ok = decodeUint32(src, 1); !ok || have > 15 {
			return fail("parameter mask")
		}
		if have&1 != 0 {
			if p.P, src, ok = decodeUint32(src, 2); !ok {
				return fail("p")
			}
		}
		if have&2 != 0 {
			if p.T, src, ok = decodeUint32(src, 1); !ok {
				return fail("t")
			}
		}
		if have&4 != 0 {
			if p.G, src, ok = decodeUint32(src, 1); !ok {
				return fail("g")
			}
		}
		if have&8 != 0 {
			var nromLog2 uint32
			if nromLog2, src, ok = decodeUint32(src, 1); !ok || nromLog2 > 63 {
				return fail("NROM")
			}
			p.NROM = 1 << nromLog2
		}
	}
	if len(src) == 0 || src[0] != '$' {
		return fail("parameter terminator")
	}
	src = src[1:]

	saltStr := src
	if i := strings.LastIndexByte(src, '$'); i >= 0 {
		saltStr = src[:i]
	}
	salt, ok := decodeBase64(saltStr, MaxSaltLen)
	if !ok {
		return fail("salt")
	}

	return Settings{
		Params: p,
		Salt:   salt,
		Prefix: s[:len(s)-len(src)+len(saltStr)],
	}, nil
}

// log2 returns log2(n) when n is a power of two greater than one.
func log2(n uint64) (uint32, bool) {
	if n < 2 || n&(n-1) != 0 {
		return 0, false
	}
	return uint32(bits.TrailingZeros64(n)), true
}

// appendUint32 appends src-offset in yescrypt's variable-length integer
// encoding: the first character selects a range and the number of
// following 6-bit characters.
func appendUint32(dst []byte, src, offset uint32) ([]byte, bool) {
	if src < offset {
		return dst, false
	}
	v := uint64(src - offset)

	start, end, chars, nbits := uint64(0), uint64(47), 1, uint(0)
	for {
		count := (end + 1 - start) << nbits
		if v < count {
			break
		}
		if start >= 63 {
			return dst, false
		}
		start = end + 1
		end = start + (62-end)/2
		v -= count
		chars++
		nbits += 6
	}

	dst = append(dst, itoa64[start+(v>>nbits)])
	for chars--; chars > 0; chars-- {
		nbits -= 6
		dst = append(dst, itoa64[(v>>nbits)&0x3f])
	}
	return dst, true
}

// decodeUint32 is the inverse of appendUint32. It returns the remaining input.
func decodeUint32(src string, offset uint32) (uint32, string, bool) {
	if len(src) == 0 {
		return 0, src, false
	}
	c := uint64(atoi64[src[0]])
	if c > 63 {
		return 0, src, false
	}
	src = src[1:]

	v := uint64(offset)
	start, end, chars, nbits := uint64(0), uint64(47), 1, uint(0)
	for c > end {
		v += (end + 1 - start) << nbits
		start = end + 1
		end = start + (62-end)/2
		chars++
		nbits += 6
	}
	v += (c - start) << nbits

	for chars--; chars > 0; chars-- {
		if len(src) == 0 {
			return 0, src, false
		}
		c = uint64(atoi64[src[0]])
		if c > 63 {
			return 0, src, false
		}
		src = src[1:]
		nbits -= 6
		v += c << nbits
	}
	if v > uint64(^uint32(0)) {
		return 0, src, false
	}
	return uint32(v), src, true
}

// appendBase64 appends src in crypt base64: little-endian groups of up to
// three bytes, each emitted as 6-bit characters low bits first.
func appendBase64(dst, src []byte) []byte {
	for i := 0; i < len(src); {
		var value uint32
		var nbits uint
		for nbits < 24 && i < len(src) {
			value |= uint32(src[i]) << nbits
			i++
			nbits += 8
		}
		for n := uint(0); n < nbits; n += 6 {
			dst = append(dst, itoa64[value&0x3f])
			value >>= 6
		}
	}
	return dst
}

// decodeBase64 is the inverse of appendBase64. Input that does not decode to
// whole bytes, or that decodes to more than limit bytes, is rejected.
func decodeBase64(src string, limit int) ([]byte, bool) {
	out := make([]byte, 0, len(src)*3/4)
	for len(src) > 0 {
		n := min(4, len(src))
		var value uint32
		var nbits uint
		for j := 0; j < n; j++ {
			c := atoi64[src[j]]
			if c > 63 {
				return nil, false
			}
			value |= uint32(c) << nbits
			nbits += 6
		}
		src = src[n:]
		if nbits < 12 {
			return nil, false
		}
		for ; nbits >= 8; nbits -= 8 {
			out = append(out, byte(value))
			value >>= 8
		}
		if value != 0 {
			return nil, false
		}
		if len(out) > limit {
			return nil, false
		}
	}
	return out, true
}
