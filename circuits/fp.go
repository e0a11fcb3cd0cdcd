package circuit

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
)

// Base field arithmetic on canonical registers. Multiplication follows the
// multiply-without-reducing pattern: one convolution in signed-long form, one
// fold through PrimeReduce, one carry step back to canonical registers.

// FpZero returns the canonical zero element.
func (f *Field) FpZero() []frontend.Variable {
	out := make([]frontend.Variable, f.K)
	for i := range out {
		out[i] = frontend.Variable(0)
	}
	return out
}

// FpConst returns a canonical constant element.
func (f *Field) FpConst(c *big.Int) []frontend.Variable {
	v := new(big.Int).Mod(c, qBig)
	return constLimbs(limbsFromBig(v, f.N, f.K))
}

// FpAdd computes (a + b) mod q for canonical a, b < q.
func (f *Field) FpAdd(a, b []frontend.Variable) []frontend.Variable {
	sum := f.BigAdd(a, b)
	qPad := padLimbs(f.QConst(), f.K+1)
	lt := f.BigLessThan(sum, qPad)
	// subtract q unless the sum is already reduced
	sel := make([]frontend.Variable, f.K+1)
	keep := f.api.Sub(1, lt)
	for i := 0; i < f.K; i++ {
		sel[i] = f.api.Mul(keep, f.Q[i])
	}
	sel[f.K] = frontend.Variable(0)
	out, underflow := f.BigSub(sum, sel)
	f.api.AssertIsEqual(underflow, 0)
	f.api.AssertIsEqual(out[f.K], 0)
	return out[:f.K]
}

// FpSubtract computes (a - b) mod q without assuming a >= b.
func (f *Field) FpSubtract(a, b []frontend.Variable) []frontend.Variable {
	diff, underflow := f.BigSub(a, b)
	wrapped := f.BigAdd(diff, f.QConst())
	out := make([]frontend.Variable, f.K)
	for i := 0; i < f.K; i++ {
		out[i] = f.api.Select(underflow, wrapped[i], diff[i])
	}
	return out
}

// FpNegate returns q - a for a != 0 and 0 otherwise; constrains a <= q.
func (f *Field) FpNegate(a []frontend.Variable) []frontend.Variable {
	neg, underflow := f.BigSub(f.QConst(), a)
	f.api.AssertIsEqual(underflow, 0)
	isZero := f.BigIsZero(a)
	keep := f.api.Sub(1, isZero)
	out := make([]frontend.Variable, f.K)
	for i := 0; i < f.K; i++ {
		out[i] = f.api.Mul(keep, neg[i])
	}
	return out
}

// FpMultiply computes a*b mod q.
func (f *Field) FpMultiply(a, b []frontend.Variable) []frontend.Variable {
	prod := f.MulShortLong(f.Canonical(a), f.Canonical(b))
	return f.CarryModP(f.PrimeReduce(prod))
}

// FpMulSmall scales by a small non-negative constant.
func (f *Field) FpMulSmall(a []frontend.Variable, c int64) []frontend.Variable {
	scaled := make([]frontend.Variable, f.K)
	for i := range a {
		scaled[i] = f.api.Mul(a[i], c)
	}
	return f.CarryModP(Signed{Limbs: scaled, Bits: f.N + big.NewInt(c).BitLen()})
}

// FpMulConst multiplies by a full-width constant.
func (f *Field) FpMulConst(a []frontend.Variable, c *big.Int) []frontend.Variable {
	limbs := limbsFromBig(new(big.Int).Mod(c, qBig), f.N, f.K)
	prod := f.MulConstPoly(limbs, f.Canonical(a))
	return f.CarryModP(f.PrimeReduce(prod))
}

// FpInverse witnesses a^-1 mod q and constrains the product to 1.
func (f *Field) FpInverse(a []frontend.Variable) []frontend.Variable {
	return f.BigModInv(a, f.Q)
}

// FpDivide computes a/b mod q.
func (f *Field) FpDivide(a, b []frontend.Variable) []frontend.Variable {
	return f.FpMultiply(a, f.FpInverse(b))
}

// FpSgn0 asserts a < q and returns its parity, the sign convention of the
// hash-to-curve ciphersuite.
func (f *Field) FpSgn0(a []frontend.Variable) frontend.Variable {
	f.api.AssertIsEqual(f.BigLessThan(a, f.QConst()), 1)
	bits := f.Num2Bits(a[0], f.N)
	return bits[0]
}

// FpIsZero asserts a < q and returns 1 iff a is zero.
func (f *Field) FpIsZero(a []frontend.Variable) frontend.Variable {
	f.api.AssertIsEqual(f.BigLessThan(a, f.QConst()), 1)
	return f.BigIsZero(a)
}

// FpIsEqual asserts both operands are reduced and compares them limb-wise.
func (f *Field) FpIsEqual(a, b []frontend.Variable) frontend.Variable {
	f.api.AssertIsEqual(f.BigLessThan(a, f.QConst()), 1)
	f.api.AssertIsEqual(f.BigLessThan(b, f.QConst()), 1)
	return f.BigIsEqual(a, b)
}

// FpSelect muxes limb-wise.
func (f *Field) FpSelect(cond frontend.Variable, a, b []frontend.Variable) []frontend.Variable {
	out := make([]frontend.Variable, len(a))
	for i := range a {
		out[i] = f.api.Select(cond, a[i], b[i])
	}
	return out
}

// RangeCheckRegisters asserts every limb lies in [0, 2^N).
func (f *Field) RangeCheckRegisters(a []frontend.Variable) {
	for _, l := range a {
		f.Num2Bits(l, f.N)
	}
}
