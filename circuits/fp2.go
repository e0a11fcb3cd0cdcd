package circuit

import (
	"github.com/consensys/gnark/frontend"
)

// Quadratic extension Fp2 = Fp[u]/(u^2 + 1). Elements are pairs of canonical
// register vectors. Multiplications stay in signed-long form until a single
// carry step per coordinate.

type E2 struct {
	A0, A1 []frontend.Variable
}

func (f *Field) Fp2Zero() E2 {
	return E2{A0: f.FpZero(), A1: f.FpZero()}
}

func (f *Field) Fp2One() E2 {
	one := f.FpZero()
	one[0] = frontend.Variable(1)
	return E2{A0: one, A1: f.FpZero()}
}

// Fp2Const embeds a host-side constant.
func (f *Field) Fp2Const(c fp2Elt) E2 {
	return E2{A0: f.FpConst(c.a0), A1: f.FpConst(c.a1)}
}

func (f *Field) Fp2Add(a, b E2) E2 {
	return E2{A0: f.FpAdd(a.A0, b.A0), A1: f.FpAdd(a.A1, b.A1)}
}

func (f *Field) Fp2Sub(a, b E2) E2 {
	return E2{A0: f.FpSubtract(a.A0, b.A0), A1: f.FpSubtract(a.A1, b.A1)}
}

func (f *Field) Fp2Neg(a E2) E2 {
	return E2{A0: f.FpNegate(a.A0), A1: f.FpNegate(a.A1)}
}

func (f *Field) Fp2Conjugate(a E2) E2 {
	return E2{A0: a.A0, A1: f.FpNegate(a.A1)}
}

// addSigned and subSigned combine signed-long vectors limb-wise.
func (f *Field) addSigned(a, b Signed) Signed {
	if len(a.Limbs) != len(b.Limbs) {
		panic("addSigned: length mismatch")
	}
	out := make([]frontend.Variable, len(a.Limbs))
	for i := range out {
		out[i] = f.api.Add(a.Limbs[i], b.Limbs[i])
	}
	bits := a.Bits
	if b.Bits > bits {
		bits = b.Bits
	}
	return Signed{Limbs: out, Bits: bits + 1}
}

func (f *Field) subSigned(a, b Signed) Signed {
	if len(a.Limbs) != len(b.Limbs) {
		panic("subSigned: length mismatch")
	}
	out := make([]frontend.Variable, len(a.Limbs))
	for i := range out {
		out[i] = f.api.Sub(a.Limbs[i], b.Limbs[i])
	}
	bits := a.Bits
	if b.Bits > bits {
		bits = b.Bits
	}
	return Signed{Limbs: out, Bits: bits + 1}
}

// Fp2Mul multiplies via (a0 b0 - a1 b1) + (a0 b1 + a1 b0) u with one
// reduction per coordinate.
func (f *Field) Fp2Mul(a, b E2) E2 {
	a0 := f.Canonical(a.A0)
	a1 := f.Canonical(a.A1)
	b0 := f.Canonical(b.A0)
	b1 := f.Canonical(b.A1)
	real := f.subSigned(f.MulShortLong(a0, b0), f.MulShortLong(a1, b1))
	imag := f.addSigned(f.MulShortLong(a0, b1), f.MulShortLong(a1, b0))
	return E2{
		A0: f.CarryModP(f.PrimeReduce(real)),
		A1: f.CarryModP(f.PrimeReduce(imag)),
	}
}

func (f *Field) Fp2Square(a E2) E2 {
	return f.Fp2Mul(a, a)
}

// Fp2MulByFp scales both coordinates by a base field element.
func (f *Field) Fp2MulByFp(a E2, s []frontend.Variable) E2 {
	return E2{A0: f.FpMultiply(a.A0, s), A1: f.FpMultiply(a.A1, s)}
}

// Fp2MulByConst multiplies by a host-side constant element.
func (f *Field) Fp2MulByConst(a E2, c fp2Elt) E2 {
	c0 := limbsFromBig(c.a0, f.N, f.K)
	c1 := limbsFromBig(c.a1, f.N, f.K)
	a0 := f.Canonical(a.A0)
	a1 := f.Canonical(a.A1)
	real := f.subSigned(f.MulConstPoly(c0, a0), f.MulConstPoly(c1, a1))
	imag := f.addSigned(f.MulConstPoly(c1, a0), f.MulConstPoly(c0, a1))
	return E2{
		A0: f.CarryModP(f.PrimeReduce(real)),
		A1: f.CarryModP(f.PrimeReduce(imag)),
	}
}

// Fp2Inverse inverts through the norm: 1/(a0 + a1 u) = (a0 - a1 u) / (a0^2 + a1^2).
func (f *Field) Fp2Inverse(a E2) E2 {
	norm := f.CarryModP(f.PrimeReduce(f.addSigned(
		f.MulShortLong(f.Canonical(a.A0), f.Canonical(a.A0)),
		f.MulShortLong(f.Canonical(a.A1), f.Canonical(a.A1)),
	)))
	normInv := f.FpInverse(norm)
	return E2{
		A0: f.FpMultiply(a.A0, normInv),
		A1: f.FpMultiply(f.FpNegate(a.A1), normInv),
	}
}

func (f *Field) Fp2Divide(a, b E2) E2 {
	return f.Fp2Mul(a, f.Fp2Inverse(b))
}

func (f *Field) Fp2IsZero(a E2) frontend.Variable {
	return f.api.And(f.FpIsZero(a.A0), f.FpIsZero(a.A1))
}

func (f *Field) Fp2IsEqual(a, b E2) frontend.Variable {
	return f.api.And(f.FpIsEqual(a.A0, b.A0), f.FpIsEqual(a.A1, b.A1))
}

func (f *Field) AssertFp2Equal(a, b E2) {
	f.AssertBigEqual(a.A0, b.A0)
	f.AssertBigEqual(a.A1, b.A1)
}

func (f *Field) Fp2Select(cond frontend.Variable, a, b E2) E2 {
	return E2{
		A0: f.FpSelect(cond, a.A0, b.A0),
		A1: f.FpSelect(cond, a.A1, b.A1),
	}
}

// Fp2Sgn0 implements the hash-to-curve sign of an Fp2 element:
// sgn0(a0) when a0 != 0, else sgn0(a1).
func (f *Field) Fp2Sgn0(a E2) frontend.Variable {
	s0 := f.FpSgn0(a.A0)
	s1 := f.FpSgn0(a.A1)
	z0 := f.BigIsZero(a.A0)
	return f.api.Add(s0, f.api.Mul(z0, s1))
}
