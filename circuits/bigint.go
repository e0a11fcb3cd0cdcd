package circuit

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
)

// Multi-precision arithmetic on register vectors. Canonical values carry K
// limbs in [0, 2^N); intermediate products live in signed-long form, where
// limbs are signed integers under a tracked magnitude bound and the
// represented integer is sum limb_i * 2^(N*i). The two forms are distinct
// types so an unreduced value cannot flow into a gadget expecting canonical
// registers without an explicit carry step.

// Signed is a limb vector in signed-overflow form; every limb lies in
// (-2^Bits, 2^Bits).
type Signed struct {
	Limbs []frontend.Variable
	Bits  int
}

// Field bundles the constraint builder with the register geometry and the
// BLS12-381 base prime.
type Field struct {
	api frontend.API
	N   int
	K   int
	Q   []*big.Int
	// cache of 2^(N*(K+i)) mod q tables used by PrimeReduce
	reduceTables map[int][][]*big.Int
}

func NewField(api frontend.API) *Field {
	return &Field{
		api:          api,
		N:            NumBitsPerRegister,
		K:            NumRegisters,
		Q:            qLimbs,
		reduceTables: make(map[int][][]*big.Int),
	}
}

// API exposes the underlying constraint builder.
func (f *Field) API() frontend.API { return f.api }

// QConst returns the prime as canonical register variables.
func (f *Field) QConst() []frontend.Variable {
	out := make([]frontend.Variable, f.K)
	for i := range out {
		out[i] = f.Q[i]
	}
	return out
}

// Canonical wraps canonical registers as a signed value with the trivial
// bound.
func (f *Field) Canonical(limbs []frontend.Variable) Signed {
	return Signed{Limbs: limbs, Bits: f.N}
}

// Num2Bits range-checks v to [0, 2^n) and returns its bits, least
// significant first.
func (f *Field) Num2Bits(v frontend.Variable, n int) []frontend.Variable {
	return f.api.ToBinary(v, n)
}

// Bits2Num reassembles bits into a field element.
func (f *Field) Bits2Num(bits []frontend.Variable) frontend.Variable {
	return f.api.FromBinary(bits...)
}

// RangeCheckSigned asserts v lies in [-2^bits, 2^bits).
func (f *Field) RangeCheckSigned(v frontend.Variable, bits int) {
	shift := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	f.api.ToBinary(f.api.Add(v, shift), bits+1)
}

// BigAdd adds two equal-length canonical vectors; the result has one extra
// limb holding the final carry.
func (f *Field) BigAdd(a, b []frontend.Variable) []frontend.Variable {
	k := len(a)
	if len(b) != k {
		panic("BigAdd: length mismatch")
	}
	out := make([]frontend.Variable, k+1)
	var carry frontend.Variable = 0
	for i := 0; i < k; i++ {
		sum := f.api.Add(f.api.Add(a[i], b[i]), carry)
		bits := f.api.ToBinary(sum, f.N+1)
		out[i] = f.api.FromBinary(bits[:f.N]...)
		carry = bits[f.N]
	}
	out[k] = carry
	return out
}

// BigSub subtracts b from a limb-wise with borrow propagation. underflow is 1
// iff a < b; in that case out holds a - b + 2^(N*k).
func (f *Field) BigSub(a, b []frontend.Variable) (out []frontend.Variable, underflow frontend.Variable) {
	k := len(a)
	if len(b) != k {
		panic("BigSub: length mismatch")
	}
	shift := new(big.Int).Lsh(big.NewInt(1), uint(f.N))
	out = make([]frontend.Variable, k)
	var borrow frontend.Variable = 0
	for i := 0; i < k; i++ {
		diff := f.api.Add(f.api.Sub(f.api.Sub(a[i], b[i]), borrow), shift)
		bits := f.api.ToBinary(diff, f.N+1)
		out[i] = f.api.FromBinary(bits[:f.N]...)
		borrow = f.api.Sub(1, bits[f.N])
	}
	return out, borrow
}

// BigLessThan returns 1 iff a < b, comparing from the most significant limb
// down.
func (f *Field) BigLessThan(a, b []frontend.Variable) frontend.Variable {
	k := len(a)
	if len(b) != k {
		panic("BigLessThan: length mismatch")
	}
	shift := new(big.Int).Lsh(big.NewInt(1), uint(f.N))
	lt := make([]frontend.Variable, k)
	eq := make([]frontend.Variable, k)
	for i := 0; i < k; i++ {
		diff := f.api.Add(f.api.Sub(a[i], b[i]), shift)
		bits := f.api.ToBinary(diff, f.N+1)
		lt[i] = f.api.Sub(1, bits[f.N])
		eq[i] = f.api.IsZero(f.api.Sub(a[i], b[i]))
	}
	out := lt[k-1]
	eqAcc := eq[k-1]
	for i := k - 2; i >= 0; i-- {
		out = f.api.Or(out, f.api.And(eqAcc, lt[i]))
		if i > 0 {
			eqAcc = f.api.And(eqAcc, eq[i])
		}
	}
	return out
}

// BigIsZero returns 1 iff every limb is zero.
func (f *Field) BigIsZero(a []frontend.Variable) frontend.Variable {
	total := frontend.Variable(len(a))
	for i := range a {
		total = f.api.Sub(total, f.api.IsZero(a[i]))
	}
	return f.api.IsZero(total)
}

// BigIsEqual returns 1 iff the vectors agree limb-wise.
func (f *Field) BigIsEqual(a, b []frontend.Variable) frontend.Variable {
	if len(a) != len(b) {
		panic("BigIsEqual: length mismatch")
	}
	total := frontend.Variable(len(a))
	for i := range a {
		total = f.api.Sub(total, f.api.IsZero(f.api.Sub(a[i], b[i])))
	}
	return f.api.IsZero(total)
}

// AssertBigEqual asserts limb-wise equality.
func (f *Field) AssertBigEqual(a, b []frontend.Variable) {
	if len(a) != len(b) {
		panic("AssertBigEqual: length mismatch")
	}
	for i := range a {
		f.api.AssertIsEqual(a[i], b[i])
	}
}

// MulShortLong multiplies two signed-long vectors as polynomials in X = 2^N.
// The witness is the schoolbook convolution; soundness comes from asserting
// that the product and output polynomials agree on ka+kb-1 points, which
// pins down a degree-(ka+kb-2) polynomial.
func (f *Field) MulShortLong(a, b Signed) Signed {
	ka, kb := len(a.Limbs), len(b.Limbs)
	outLen := ka + kb - 1
	ins := make([]frontend.Variable, 0, 2+ka+kb)
	ins = append(ins, ka, kb)
	ins = append(ins, a.Limbs...)
	ins = append(ins, b.Limbs...)
	out, err := f.api.Compiler().NewHint(bigMultHint, outLen, ins...)
	if err != nil {
		panic(err)
	}
	for t := 0; t < outLen; t++ {
		point := big.NewInt(int64(t))
		aEval := f.evalPoly(a.Limbs, point)
		bEval := f.evalPoly(b.Limbs, point)
		oEval := f.evalPoly(out, point)
		f.api.AssertIsEqual(f.api.Mul(aEval, bEval), oEval)
	}
	minK := ka
	if kb < minK {
		minK = kb
	}
	bits := a.Bits + b.Bits + logCeil(minK)
	if bits >= 251 {
		panic(fmt.Sprintf("MulShortLong: output bound 2^%d overflows the native field", bits))
	}
	return Signed{Limbs: out, Bits: bits}
}

func (f *Field) evalPoly(limbs []frontend.Variable, point *big.Int) frontend.Variable {
	var acc frontend.Variable = 0
	pow := big.NewInt(1)
	for _, l := range limbs {
		acc = f.api.Add(acc, f.api.Mul(l, new(big.Int).Set(pow)))
		pow = new(big.Int).Mul(pow, point)
	}
	return acc
}

// MulConstPoly convolves a constant coefficient vector with a signed-long
// vector. Constants make this a linear map, so no hint or product identity is
// needed.
func (f *Field) MulConstPoly(c []*big.Int, x Signed) Signed {
	outLen := len(c) + len(x.Limbs) - 1
	out := make([]frontend.Variable, outLen)
	for i := range out {
		out[i] = frontend.Variable(0)
	}
	for i, ci := range c {
		if ci.Sign() == 0 {
			continue
		}
		for j, xj := range x.Limbs {
			out[i+j] = f.api.Add(out[i+j], f.api.Mul(xj, ci))
		}
	}
	maxBits := 0
	for _, ci := range c {
		if b := ci.BitLen(); b > maxBits {
			maxBits = b
		}
	}
	minK := len(c)
	if len(x.Limbs) < minK {
		minK = len(x.Limbs)
	}
	return Signed{Limbs: out, Bits: x.Bits + maxBits + logCeil(minK)}
}

// LongToShort converts a non-negative long-form vector into canonical
// registers with one extra output limb, constraining the running carries.
func (f *Field) LongToShort(in Signed) []frontend.Variable {
	m := len(in.Limbs)
	ins := make([]frontend.Variable, 0, 2+m)
	ins = append(ins, f.N, m)
	ins = append(ins, in.Limbs...)
	hint, err := f.api.Compiler().NewHint(longToShortHint, 2*m+1, ins...)
	if err != nil {
		panic(err)
	}
	out := hint[:m+1]
	carry := hint[m+1:]

	shift := new(big.Int).Lsh(big.NewInt(1), uint(f.N))
	for i := 0; i <= m; i++ {
		f.Num2Bits(out[i], f.N)
	}
	carryBits := in.Bits - f.N + 1
	if carryBits < 1 {
		carryBits = 1
	}
	for i := 0; i < m; i++ {
		f.Num2Bits(carry[i], carryBits)
		lhs := f.api.Mul(carry[i], shift)
		rhs := f.api.Sub(in.Limbs[i], out[i])
		if i > 0 {
			rhs = f.api.Add(rhs, carry[i-1])
		}
		f.api.AssertIsEqual(lhs, rhs)
	}
	f.api.AssertIsEqual(carry[m-1], out[m])
	return out
}

// BigMult multiplies two canonical vectors into canonical form.
func (f *Field) BigMult(a, b []frontend.Variable) []frontend.Variable {
	prod := f.MulShortLong(f.Canonical(a), f.Canonical(b))
	return f.LongToShort(prod)
}

// BigMod computes a = div*b + mod with mod < b. The quotient and remainder
// come from a long-division hint and are fully re-checked.
func (f *Field) BigMod(a, b []frontend.Variable) (div, mod []frontend.Variable) {
	m, k := len(a), len(b)
	if k >= 50 || m-k >= 50 {
		panic("BigMod: register count out of range")
	}
	ins := make([]frontend.Variable, 0, 3+m+k)
	ins = append(ins, f.N, k, m)
	ins = append(ins, a...)
	ins = append(ins, b...)
	hint, err := f.api.Compiler().NewHint(longDivHint, (m-k+1)+k, ins...)
	if err != nil {
		panic(err)
	}
	div = hint[:m-k+1]
	mod = hint[m-k+1:]
	for _, l := range div {
		f.Num2Bits(l, f.N)
	}
	for _, l := range mod {
		f.Num2Bits(l, f.N)
	}

	prod := f.BigMult(div, b) // m+1 limbs
	sum := f.BigAdd(prod, padLimbs(mod, len(prod)))
	padded := padLimbs(a, len(sum))
	f.AssertBigEqual(sum, padded)
	f.api.AssertIsEqual(f.BigLessThan(mod, b), 1)
	return div, mod
}

// BigModInv witnesses in^-1 mod p and constrains in * out = 1 (mod p).
func (f *Field) BigModInv(in []frontend.Variable, p []*big.Int) []frontend.Variable {
	k := len(in)
	ins := make([]frontend.Variable, 0, 2+2*k)
	ins = append(ins, f.N, k)
	ins = append(ins, in...)
	for _, l := range p {
		ins = append(ins, l)
	}
	out, err := f.api.Compiler().NewHint(modInvHint, k, ins...)
	if err != nil {
		panic(err)
	}
	for _, l := range out {
		f.Num2Bits(l, f.N)
	}
	pVars := make([]frontend.Variable, k)
	for i := range p {
		pVars[i] = p[i]
	}
	prod := f.BigMult(in, out)
	_, mod := f.BigMod(prod, pVars)
	one := make([]frontend.Variable, k)
	one[0] = frontend.Variable(1)
	for i := 1; i < k; i++ {
		one[i] = frontend.Variable(0)
	}
	f.AssertBigEqual(mod, one)
	return out
}

// PrimeReduce collapses a (K+m)-limb signed-long value to K limbs congruent
// mod q by folding each high limb through 2^(N*(K+i)) mod q. Purely linear.
func (f *Field) PrimeReduce(in Signed) Signed {
	k := f.K
	m := len(in.Limbs) - k
	if m <= 0 {
		return in
	}
	table := f.reduceTable(m)
	out := make([]frontend.Variable, k)
	for j := 0; j < k; j++ {
		out[j] = in.Limbs[j]
	}
	for i := 0; i < m; i++ {
		for j := 0; j < k; j++ {
			if table[i][j].Sign() == 0 {
				continue
			}
			out[j] = f.api.Add(out[j], f.api.Mul(in.Limbs[k+i], table[i][j]))
		}
	}
	return Signed{Limbs: out, Bits: in.Bits + f.N + logCeil(m+1)}
}

func (f *Field) reduceTable(m int) [][]*big.Int {
	if t, ok := f.reduceTables[m]; ok {
		return t
	}
	table := make([][]*big.Int, m)
	for i := 0; i < m; i++ {
		e := new(big.Int).Lsh(big.NewInt(1), uint(f.N*(f.K+i)))
		e.Mod(e, qBig)
		table[i] = limbsFromBig(e, f.N, f.K)
	}
	f.reduceTables[m] = table
	return table
}

// CheckCarryToZero asserts that a signed-long vector evaluates to zero as an
// integer at X = 2^N, via witnessed running carries.
func (f *Field) CheckCarryToZero(in Signed) {
	k := len(in.Limbs)
	if k < 2 {
		panic("CheckCarryToZero: need at least two limbs")
	}
	if in.Bits+2 >= 251 {
		panic("CheckCarryToZero: bound overflows the native field")
	}
	ins := make([]frontend.Variable, 0, 2+k)
	ins = append(ins, f.N, k)
	ins = append(ins, in.Limbs...)
	carry, err := f.api.Compiler().NewHint(carryToZeroHint, k-1, ins...)
	if err != nil {
		panic(err)
	}
	shift := new(big.Int).Lsh(big.NewInt(1), uint(f.N))
	for i := 0; i < k-1; i++ {
		f.RangeCheckSigned(carry[i], in.Bits-f.N+1)
		lhs := f.api.Mul(carry[i], shift)
		rhs := in.Limbs[i]
		if i > 0 {
			rhs = f.api.Add(rhs, carry[i-1])
		}
		f.api.AssertIsEqual(lhs, rhs)
	}
	f.api.AssertIsEqual(f.api.Add(in.Limbs[k-1], carry[k-2]), 0)
}

// CheckCarryModP asserts in = q*X + Y as integers, where in is signed-long,
// X holds signed quotient limbs and Y canonical registers.
func (f *Field) CheckCarryModP(in Signed, x Signed, y []frontend.Variable) {
	qx := f.MulConstPoly(f.Q, x) // k+m-1 limbs
	diffLen := len(qx.Limbs)
	if len(in.Limbs) > diffLen {
		diffLen = len(in.Limbs)
	}
	diff := make([]frontend.Variable, diffLen)
	for i := 0; i < diffLen; i++ {
		var v frontend.Variable = 0
		if i < len(in.Limbs) {
			v = in.Limbs[i]
		}
		if i < len(qx.Limbs) {
			v = f.api.Sub(v, qx.Limbs[i])
		}
		if i < len(y) {
			v = f.api.Sub(v, y[i])
		}
		diff[i] = v
	}
	bits := in.Bits
	if qx.Bits > bits {
		bits = qx.Bits
	}
	f.CheckCarryToZero(Signed{Limbs: diff, Bits: bits + 1})
}

// CarryModP canonicalizes a signed-long value: it witnesses (X, out) with
// in = q*X + out, range-checks both and re-checks the identity.
func (f *Field) CarryModP(in Signed) []frontend.Variable {
	if len(in.Limbs) != f.K {
		panic("CarryModP: reduce to K limbs first")
	}
	if in.Bits >= 251 {
		panic("CarryModP: bound overflows the native field")
	}
	m := (in.Bits + f.N - 1) / f.N
	ins := make([]frontend.Variable, 0, 3+2*f.K)
	ins = append(ins, f.N, f.K, m)
	ins = append(ins, in.Limbs...)
	for _, l := range f.Q {
		ins = append(ins, l)
	}
	hint, err := f.api.Compiler().NewHint(signedCarryHint, m+f.K, ins...)
	if err != nil {
		panic(err)
	}
	x := hint[:m]
	out := hint[m:]
	for _, l := range out {
		f.Num2Bits(l, f.N)
	}
	for _, l := range x {
		f.RangeCheckSigned(l, f.N)
	}
	f.CheckCarryModP(in, Signed{Limbs: x, Bits: f.N + 1}, out)
	return out
}

// CheckCarryModZero asserts a signed-long value is congruent to zero mod q.
func (f *Field) CheckCarryModZero(in Signed) {
	if len(in.Limbs) != f.K {
		panic("CheckCarryModZero: reduce to K limbs first")
	}
	m := (in.Bits + f.N - 1) / f.N
	ins := make([]frontend.Variable, 0, 3+2*f.K)
	ins = append(ins, f.N, f.K, m)
	ins = append(ins, in.Limbs...)
	for _, l := range f.Q {
		ins = append(ins, l)
	}
	hint, err := f.api.Compiler().NewHint(signedCarryHint, m+f.K, ins...)
	if err != nil {
		panic(err)
	}
	x := hint[:m]
	for _, l := range x {
		f.RangeCheckSigned(l, f.N)
	}
	zero := make([]frontend.Variable, f.K)
	for i := range zero {
		zero[i] = frontend.Variable(0)
	}
	f.CheckCarryModP(in, Signed{Limbs: x, Bits: f.N + 1}, zero)
	return
}

func padLimbs(a []frontend.Variable, n int) []frontend.Variable {
	if len(a) >= n {
		return a
	}
	out := make([]frontend.Variable, n)
	copy(out, a)
	for i := len(a); i < n; i++ {
		out[i] = frontend.Variable(0)
	}
	return out
}

func constLimbs(c []*big.Int) []frontend.Variable {
	out := make([]frontend.Variable, len(c))
	for i := range c {
		out[i] = c[i]
	}
	return out
}
