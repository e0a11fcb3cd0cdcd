package circuit

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark/constraint/solver"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// Witness helpers. Every value produced here is re-checked by constraints in
// the gadget that requested it; a hint can delay proving but never forge a
// satisfying witness.

func init() {
	solver.RegisterHint(
		bigMultHint,
		bigMult2DHint,
		longDivHint,
		modInvHint,
		signedCarryHint,
		longToShortHint,
		carryToZeroHint,
		fp12InvHint,
		sqrtRatioHint,
	)
}

// bigMultHint computes the polynomial product of two limb vectors in the
// native field. The caller constrains the result through evaluation at
// ka+kb-1 points.
func bigMultHint(mod *big.Int, inputs, outputs []*big.Int) error {
	ka := int(inputs[0].Int64())
	kb := int(inputs[1].Int64())
	if len(inputs) != 2+ka+kb || len(outputs) != ka+kb-1 {
		return errors.New("bigMultHint: malformed input")
	}
	a := inputs[2 : 2+ka]
	b := inputs[2+ka:]
	for i := range outputs {
		outputs[i].SetInt64(0)
	}
	tmp := new(big.Int)
	for i := 0; i < ka; i++ {
		for j := 0; j < kb; j++ {
			tmp.Mul(a[i], b[j])
			outputs[i+j].Add(outputs[i+j], tmp)
			outputs[i+j].Mod(outputs[i+j], mod)
		}
	}
	return nil
}

// bigMult2DHint is the two-variable analogue: tensors are indexed
// [deg1*k + deg2] row-major, the product has (la+lb-1)*(ka+kb-1) entries.
func bigMult2DHint(mod *big.Int, inputs, outputs []*big.Int) error {
	la := int(inputs[0].Int64())
	ka := int(inputs[1].Int64())
	lb := int(inputs[2].Int64())
	kb := int(inputs[3].Int64())
	if len(inputs) != 4+la*ka+lb*kb || len(outputs) != (la+lb-1)*(ka+kb-1) {
		return errors.New("bigMult2DHint: malformed input")
	}
	a := inputs[4 : 4+la*ka]
	b := inputs[4+la*ka:]
	kOut := ka + kb - 1
	for i := range outputs {
		outputs[i].SetInt64(0)
	}
	tmp := new(big.Int)
	for i1 := 0; i1 < la; i1++ {
		for j1 := 0; j1 < ka; j1++ {
			for i2 := 0; i2 < lb; i2++ {
				for j2 := 0; j2 < kb; j2++ {
					o := (i1+i2)*kOut + (j1 + j2)
					tmp.Mul(a[i1*ka+j1], b[i2*kb+j2])
					outputs[o].Add(outputs[o], tmp)
					outputs[o].Mod(outputs[o], mod)
				}
			}
		}
	}
	return nil
}

// longDivHint divides an m-limb value by a k-limb value, both in canonical
// non-negative form, producing an (m-k+1)-limb quotient and k-limb remainder.
func longDivHint(_ *big.Int, inputs, outputs []*big.Int) error {
	n := int(inputs[0].Int64())
	k := int(inputs[1].Int64())
	m := int(inputs[2].Int64())
	if len(inputs) != 3+m+k || len(outputs) != (m-k+1)+k {
		return errors.New("longDivHint: malformed input")
	}
	a := bigFromLimbs(inputs[3:3+m], n)
	b := bigFromLimbs(inputs[3+m:], n)
	if b.Sign() == 0 {
		return errors.New("longDivHint: division by zero")
	}
	div, rem := new(big.Int).QuoRem(a, b, new(big.Int))
	copyLimbs(outputs[:m-k+1], limbsFromBig(div, n, m-k+1))
	copyLimbs(outputs[m-k+1:], limbsFromBig(rem, n, k))
	return nil
}

// modInvHint computes in^-1 mod p in register form.
func modInvHint(_ *big.Int, inputs, outputs []*big.Int) error {
	n := int(inputs[0].Int64())
	k := int(inputs[1].Int64())
	if len(inputs) != 2+2*k || len(outputs) != k {
		return errors.New("modInvHint: malformed input")
	}
	in := bigFromLimbs(inputs[2:2+k], n)
	p := bigFromLimbs(inputs[2+k:], n)
	inv := new(big.Int).ModInverse(in, p)
	if inv == nil {
		return fmt.Errorf("modInvHint: %v not invertible", in)
	}
	copyLimbs(outputs, limbsFromBig(inv, n, k))
	return nil
}

// signedCarryHint solves in = p*X + out for a signed-overflow input: X gets m
// signed limbs in (-2^n, 2^n), out gets k limbs in [0, 2^n).
func signedCarryHint(mod *big.Int, inputs, outputs []*big.Int) error {
	n := int(inputs[0].Int64())
	k := int(inputs[1].Int64())
	m := int(inputs[2].Int64())
	if len(inputs) != 3+2*k || len(outputs) != m+k {
		return errors.New("signedCarryHint: malformed input")
	}
	v := new(big.Int)
	for i := k - 1; i >= 0; i-- {
		v.Lsh(v, uint(n))
		v.Add(v, signedBig(inputs[3+i], mod))
	}
	p := bigFromLimbs(inputs[3+k:], n)
	out := new(big.Int).Mod(v, p)
	x := new(big.Int).Sub(v, out)
	x.Div(x, p)

	sign := x.Sign()
	absX := new(big.Int).Abs(x)
	for i, l := range limbsFromBig(absX, n, m) {
		if sign < 0 {
			l.Neg(l)
		}
		outputs[i].Set(fieldBig(l, mod))
	}
	copyLimbs(outputs[m:], limbsFromBig(out, n, k))
	return nil
}

// longToShortHint converts a non-negative long-form limb vector into m+1
// canonical limbs plus the running carries consumed by the equality chain.
func longToShortHint(mod *big.Int, inputs, outputs []*big.Int) error {
	n := int(inputs[0].Int64())
	m := int(inputs[1].Int64())
	if len(inputs) != 2+m || len(outputs) != 2*m+1 {
		return errors.New("longToShortHint: malformed input")
	}
	in := make([]*big.Int, m)
	v := new(big.Int)
	for i := 0; i < m; i++ {
		in[i] = signedBig(inputs[2+i], mod)
	}
	for i := m - 1; i >= 0; i-- {
		v.Lsh(v, uint(n))
		v.Add(v, in[i])
	}
	if v.Sign() < 0 {
		return errors.New("longToShortHint: negative value")
	}
	out := limbsFromBig(v, n, m+1)
	copyLimbs(outputs[:m+1], out)

	// carry[i] = (in[i] - out[i] + carry[i-1]) >> n
	carry := new(big.Int)
	for i := 0; i < m; i++ {
		carry.Add(carry, in[i])
		carry.Sub(carry, out[i])
		carry.Rsh(carry, uint(n))
		outputs[m+1+i].Set(fieldBig(carry, mod))
	}
	return nil
}

// carryToZeroHint solves the running carries c_i = (in_i + c_{i-1}) / 2^n for
// a signed-long value that the caller asserts evaluates to zero at X = 2^n.
func carryToZeroHint(mod *big.Int, inputs, outputs []*big.Int) error {
	n := int(inputs[0].Int64())
	k := int(inputs[1].Int64())
	if len(inputs) != 2+k || len(outputs) != k-1 {
		return errors.New("carryToZeroHint: malformed input")
	}
	c := new(big.Int)
	for i := 0; i < k-1; i++ {
		c.Add(c, signedBig(inputs[2+i], mod))
		c.Rsh(c, uint(n))
		outputs[i].Set(fieldBig(c, mod))
	}
	return nil
}

// fp12InvHint inverts an Fp12 element given as a 6x2xK tensor of canonical
// registers indexed (deg_w, deg_u, limb).
func fp12InvHint(_ *big.Int, inputs, outputs []*big.Int) error {
	k := int(inputs[0].Int64())
	if len(inputs) != 1+12*k || len(outputs) != 12*k {
		return errors.New("fp12InvHint: malformed input")
	}
	var elt bls12381.GT
	coeff := func(w, u int) *big.Int {
		return bigFromLimbs(inputs[1+(w*2+u)*k:1+(w*2+u+1)*k], NumBitsPerRegister)
	}
	elt.C0.B0.A0.SetBigInt(coeff(0, 0))
	elt.C0.B0.A1.SetBigInt(coeff(0, 1))
	elt.C1.B0.A0.SetBigInt(coeff(1, 0))
	elt.C1.B0.A1.SetBigInt(coeff(1, 1))
	elt.C0.B1.A0.SetBigInt(coeff(2, 0))
	elt.C0.B1.A1.SetBigInt(coeff(2, 1))
	elt.C1.B1.A0.SetBigInt(coeff(3, 0))
	elt.C1.B1.A1.SetBigInt(coeff(3, 1))
	elt.C0.B2.A0.SetBigInt(coeff(4, 0))
	elt.C0.B2.A1.SetBigInt(coeff(4, 1))
	elt.C1.B2.A0.SetBigInt(coeff(5, 0))
	elt.C1.B2.A1.SetBigInt(coeff(5, 1))

	var inv bls12381.GT
	inv.Inverse(&elt)

	set := func(w, u int, v *big.Int) {
		copyLimbs(outputs[(w*2+u)*k:(w*2+u+1)*k], limbsFromBig(v, NumBitsPerRegister, k))
	}
	set(0, 0, inv.C0.B0.A0.BigInt(new(big.Int)))
	set(0, 1, inv.C0.B0.A1.BigInt(new(big.Int)))
	set(1, 0, inv.C1.B0.A0.BigInt(new(big.Int)))
	set(1, 1, inv.C1.B0.A1.BigInt(new(big.Int)))
	set(2, 0, inv.C0.B1.A0.BigInt(new(big.Int)))
	set(2, 1, inv.C0.B1.A1.BigInt(new(big.Int)))
	set(3, 0, inv.C1.B1.A0.BigInt(new(big.Int)))
	set(3, 1, inv.C1.B1.A1.BigInt(new(big.Int)))
	set(4, 0, inv.C0.B2.A0.BigInt(new(big.Int)))
	set(4, 1, inv.C0.B2.A1.BigInt(new(big.Int)))
	set(5, 0, inv.C1.B2.A0.BigInt(new(big.Int)))
	set(5, 1, inv.C1.B2.A1.BigInt(new(big.Int)))
	return nil
}

// sqrtRatioHint decides which of the two SSWU candidates is a square in Fp2
// and returns its root. Outputs: [isSquare, y registers (2k)].
func sqrtRatioHint(_ *big.Int, inputs, outputs []*big.Int) error {
	k := int(inputs[0].Int64())
	if len(inputs) != 1+4*k || len(outputs) != 1+2*k {
		return errors.New("sqrtRatioHint: malformed input")
	}
	gx1 := new(bls12381.G2Affine).X
	gx2 := new(bls12381.G2Affine).X
	gx1.A0.SetBigInt(bigFromLimbs(inputs[1:1+k], NumBitsPerRegister))
	gx1.A1.SetBigInt(bigFromLimbs(inputs[1+k:1+2*k], NumBitsPerRegister))
	gx2.A0.SetBigInt(bigFromLimbs(inputs[1+2*k:1+3*k], NumBitsPerRegister))
	gx2.A1.SetBigInt(bigFromLimbs(inputs[1+3*k:], NumBitsPerRegister))

	y := new(bls12381.G2Affine).X
	if gx1.Legendre() >= 0 {
		outputs[0].SetInt64(1)
		y.Sqrt(&gx1)
	} else if gx2.Legendre() >= 0 {
		outputs[0].SetInt64(0)
		y.Sqrt(&gx2)
	} else {
		return errors.New("sqrtRatioHint: neither candidate is a square")
	}
	copyLimbs(outputs[1:1+k], limbsFromBig(y.A0.BigInt(new(big.Int)), NumBitsPerRegister, k))
	copyLimbs(outputs[1+k:], limbsFromBig(y.A1.BigInt(new(big.Int)), NumBitsPerRegister, k))
	return nil
}

func copyLimbs(dst, src []*big.Int) {
	for i := range dst {
		dst[i].Set(src[i])
	}
}
