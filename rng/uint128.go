package rng

import (
	"fmt"
	"math/bits"

	"github.com/holiman/uint256"
)

// Uint128 is an unsigned 128-bit integer. It is comparable, so it can be
// used directly as a map key.
type Uint128 struct {
	Hi uint64
	Lo uint64
}

// Add returns u+v modulo 2^128.
func (u Uint128) Add(v Uint128) Uint128 {
	lo, carry := bits.Add64(u.Lo, v.Lo, 0)
	hi, _ := bits.Add64(u.Hi, v.Hi, carry)

	return Uint128{Hi: hi, Lo: lo}
}

// Less reports whether u < v.
func (u Uint128) Less(v Uint128) bool {
	if u.Hi != v.Hi {
		return u.Hi < v.Hi
	}

	return u.Lo < v.Lo
}

// IsEven reports whether the lowest bit is clear.
func (u Uint128) IsEven() bool {
	return u.Lo&1 == 0
}

// Uint256 widens u into a 256-bit integer.
func (u Uint128) Uint256() *uint256.Int {
	return &uint256.Int{u.Lo, u.Hi, 0, 0}
}

func (u Uint128) String() string {
	return u.Uint256().Dec()
}

// Hex returns the zero-padded 32 digit hex form.
func (u Uint128) Hex() string {
	return fmt.Sprintf("0x%016x%016x", u.Hi, u.Lo)
}
