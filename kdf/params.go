package kdf

import "fmt"

// Flags selects the yescrypt feature set.
type Flags uint32

const (
	FlagWORM Flags = 0x001
	FlagRW   Flags = 0x002

	FlagRounds3 Flags = 0x000
	FlagRounds6 Flags = 0x004

	FlagGather1 Flags = 0x000
	FlagGather2 Flags = 0x008
	FlagGather4 Flags = 0x010
	FlagGather8 Flags = 0x018

	FlagSimple1 Flags = 0x000
	FlagSimple2 Flags = 0x020
	FlagSimple4 Flags = 0x040
	FlagSimple8 Flags = 0x060

	FlagSBox6K   Flags = 0x000
	FlagSBox12K  Flags = 0x080
	FlagSBox24K  Flags = 0x100
	FlagSBox48K  Flags = 0x180
	FlagSBox96K  Flags = 0x200
	FlagSBox192K Flags = 0x280
	FlagSBox384K Flags = 0x300
	FlagSBox768K Flags = 0x380

	// flagModeMask isolates the WORM/RW selector.
	flagModeMask Flags = 0x003
	// flagRWFlavorMask covers every bit that may accompany FlagRW.
	flagRWFlavorMask Flags = 0x3fc
)

// DefaultFlags is the only feature set the derivation backend is built for:
// read-write mode, 6 pwxform rounds, 4-way gather, 2-way simple, 12 KiB S-box.
const DefaultFlags = FlagRW | FlagRounds6 | FlagGather4 | FlagSimple2 | FlagSBox12K

// sboxBytes is the S-box size implied by DefaultFlags.
const sboxBytes = 12 * 1024

// Params is a yescrypt parameter set. N, R and P keep their classic scrypt
// meaning, except that in RW mode P does not multiply memory use.
type Params struct {
	Flags Flags
	N     uint64
	R     uint32
	P     uint32
	T     uint32
	G     uint32
	NROM  uint64
}

// NewParams builds a parameter set with Flags pinned to DefaultFlags and the
// upgrade counter and ROM size fixed at zero.
func NewParams(n uint64, r, t, p uint32) Params {
	return Params{
		Flags: DefaultFlags,
		N:     n,
		R:     r,
		P:     p,
		T:     t,
	}
}

// Field names as they appear in encoded configurations.
const (
	FieldN     = "N"
	FieldNROM  = "NROM"
	FieldFlags = "flags"
	FieldG     = "g"
	FieldP     = "p"
	FieldR     = "r"
	FieldT     = "t"
)

// Fields enumerates every parameter by name.
func (p Params) Fields() map[string]uint64 {
	return map[string]uint64{
		FieldN:     p.N,
		FieldNROM:  p.NROM,
		FieldFlags: uint64(p.Flags),
		FieldG:     uint64(p.G),
		FieldP:     uint64(p.P),
		FieldR:     uint64(p.R),
		FieldT:     uint64(p.T),
	}
}

// Field returns the value of the named parameter. The second result is
// false for names that are not part of a parameter set.
func (p Params) Field(name string) (uint64, bool) {
	switch name {
	case FieldN:
		return p.N, true
	case FieldNROM:
		return p.NROM, true
	case FieldFlags:
		return uint64(p.Flags), true
	case FieldG:
		return uint64(p.G), true
	case FieldP:
		return uint64(p.P), true
	case FieldR:
		return uint64(p.R), true
	case FieldT:
		return uint64(p.T), true
	default:
		return 0, false
	}
}

// MemorySize is the number of bytes of scratch memory a derivation with p
// needs: 128*r*N for the V array plus the S-box. P is not a factor in RW mode.
// It saturates at the maximum uint64 instead of overflowing.
func (p Params) MemorySize() uint64 {
	const maxU64 = ^uint64(0)
	blk := 128 * uint64(p.R)
	if p.R != 0 && p.N > (maxU64-sboxBytes)/blk {
		return maxU64
	}
	return blk*p.N + sboxBytes
}

// String renders p in a form suitable for logs.
func (p Params) String() string {
	return fmt.Sprintf("N=%d,r=%d,p=%d,t=%d,g=%d,NROM=%d,flags=%#x",
		p.N, p.R, p.P, p.T, p.G, p.NROM, uint32(p.Flags))
}
