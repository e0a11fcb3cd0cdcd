package circuit

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
)

// Compressed G1 encodings: 48 big-endian bytes. Bit 383 is the compression
// flag, bit 382 the infinity flag (constrained to zero here) and bit 381 the
// sign of y; bits 0..380 hold the x coordinate.

// g1BytesToBits converts the 48-byte encoding to bits of the underlying
// integer, least significant first.
func (f *Field) g1BytesToBits(in [G1PointSize]uints.U8, bapi *uints.Bytes) []frontend.Variable {
	bits := make([]frontend.Variable, G1PointSize*8)
	for i := G1PointSize - 1; i >= 0; i-- {
		byteBits := f.api.ToBinary(bapi.Value(in[i]), 8)
		copy(bits[(G1PointSize-1-i)*8:], byteBits)
	}
	return bits
}

// G1BytesToBigInt extracts the x coordinate into register form and constrains
// the infinity flag bit to zero.
func (f *Field) G1BytesToBigInt(in [G1PointSize]uints.U8, bapi *uints.Bytes) []frontend.Variable {
	bits := f.g1BytesToBits(in, bapi)
	out := make([]frontend.Variable, f.K)
	for i := 0; i < f.K; i++ {
		limbBits := make([]frontend.Variable, f.N)
		for j := 0; j < f.N; j++ {
			idx := i*f.N + j
			if idx >= 381 {
				limbBits[j] = frontend.Variable(0)
			} else {
				limbBits[j] = bits[idx]
			}
		}
		out[i] = f.api.FromBinary(limbBits...)
	}
	// the encoding must not claim the point at infinity
	f.api.AssertIsEqual(bits[382], 0)
	return out
}

// G1BytesToSignFlag extracts the sign-of-y bit.
func (f *Field) G1BytesToSignFlag(in [G1PointSize]uints.U8, bapi *uints.Bytes) frontend.Variable {
	bits := f.g1BytesToBits(in, bapi)
	return bits[381]
}

// G1BigIntToSignFlag computes sgn0(y): 0 iff 2y < q. The input must be a
// reduced field element.
func (f *Field) G1BigIntToSignFlag(y []frontend.Variable) frontend.Variable {
	two := make([]frontend.Variable, f.K)
	two[0] = frontend.Variable(2)
	for i := 1; i < f.K; i++ {
		two[i] = frontend.Variable(0)
	}
	doubled := f.BigMult(y, two)
	lt := f.BigLessThan(doubled[:f.K], f.QConst())
	return f.api.Sub(1, lt)
}
