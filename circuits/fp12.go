package circuit

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
)

// Fp12 = Fp2[w]/(w^6 - (1+u)), stored as six Fp2 coefficients indexed by the
// degree in w. The tower Fp2 -> Fp6 -> Fp12 (v^3 = 1+u, w^2 = v) flattens to
// this representation; products are computed as two-variable polynomials in
// (w, X) and folded through w^6 = 1+u before a single carry per coordinate.

type E12 [6]E2

func (f *Field) Fp12One() E12 {
	var out E12
	out[0] = f.Fp2One()
	for i := 1; i < 6; i++ {
		out[i] = f.Fp2Zero()
	}
	return out
}

// tensor2D is a signed-long polynomial in two variables: C[deg_w][limb].
type tensor2D struct {
	C    [][]frontend.Variable
	Bits int
}

func (f *Field) canonicalTensor(rows [][]frontend.Variable) tensor2D {
	return tensor2D{C: rows, Bits: f.N}
}

// mulShortLong2D is the two-variable product identity: the witness is the
// full convolution, constrained by evaluating both sides on a grid of
// (la+lb-1) x (ka+kb-1) points.
func (f *Field) mulShortLong2D(a, b tensor2D) tensor2D {
	la, ka := len(a.C), len(a.C[0])
	lb, kb := len(b.C), len(b.C[0])
	lOut, kOut := la+lb-1, ka+kb-1

	ins := make([]frontend.Variable, 0, 4+la*ka+lb*kb)
	ins = append(ins, la, ka, lb, kb)
	for _, row := range a.C {
		ins = append(ins, row...)
	}
	for _, row := range b.C {
		ins = append(ins, row...)
	}
	flat, err := f.api.Compiler().NewHint(bigMult2DHint, lOut*kOut, ins...)
	if err != nil {
		panic(err)
	}
	out := make([][]frontend.Variable, lOut)
	for i := range out {
		out[i] = flat[i*kOut : (i+1)*kOut]
	}

	for s := 0; s < lOut; s++ {
		for t := 0; t < kOut; t++ {
			aEval := f.evalTensor(a.C, s, t)
			bEval := f.evalTensor(b.C, s, t)
			oEval := f.evalTensor(out, s, t)
			f.api.AssertIsEqual(f.api.Mul(aEval, bEval), oEval)
		}
	}

	minL, minK := la, ka
	if lb < minL {
		minL = lb
	}
	if kb < minK {
		minK = kb
	}
	bits := a.Bits + b.Bits + logCeil(minL*minK)
	if bits >= 251 {
		panic(fmt.Sprintf("mulShortLong2D: output bound 2^%d overflows the native field", bits))
	}
	return tensor2D{C: out, Bits: bits}
}

func (f *Field) evalTensor(c [][]frontend.Variable, s, t int) frontend.Variable {
	var acc frontend.Variable = 0
	sPow := big.NewInt(1)
	for d1 := range c {
		tPow := new(big.Int).Set(sPow)
		for d2 := range c[d1] {
			acc = f.api.Add(acc, f.api.Mul(c[d1][d2], new(big.Int).Set(tPow)))
			tPow = new(big.Int).Mul(tPow, big.NewInt(int64(t)))
		}
		sPow = new(big.Int).Mul(sPow, big.NewInt(int64(s)))
	}
	return acc
}

// Fp12Mul multiplies two Fp12 elements. Real and imaginary parts are handled
// as four two-variable convolutions; degrees six and above fold back through
// w^6 = 1 + u.
func (f *Field) Fp12Mul(a, b E12) E12 {
	aR := make([][]frontend.Variable, 6)
	aI := make([][]frontend.Variable, 6)
	bR := make([][]frontend.Variable, 6)
	bI := make([][]frontend.Variable, 6)
	for i := 0; i < 6; i++ {
		aR[i], aI[i] = a[i].A0, a[i].A1
		bR[i], bI[i] = b[i].A0, b[i].A1
	}
	rr := f.mulShortLong2D(f.canonicalTensor(aR), f.canonicalTensor(bR))
	ii := f.mulShortLong2D(f.canonicalTensor(aI), f.canonicalTensor(bI))
	ri := f.mulShortLong2D(f.canonicalTensor(aR), f.canonicalTensor(bI))
	ir := f.mulShortLong2D(f.canonicalTensor(aI), f.canonicalTensor(bR))

	row := func(t tensor2D, i int) Signed { return Signed{Limbs: t.C[i], Bits: t.Bits} }

	var out E12
	for i := 0; i < 6; i++ {
		realPart := f.subSigned(row(rr, i), row(ii, i))
		imagPart := f.addSigned(row(ri, i), row(ir, i))
		if i+6 < len(rr.C) {
			realHigh := f.subSigned(row(rr, i+6), row(ii, i+6))
			imagHigh := f.addSigned(row(ri, i+6), row(ir, i+6))
			// (1+u)(R + I u) = (R - I) + (R + I) u
			realPart = f.addSigned(realPart, f.subSigned(realHigh, imagHigh))
			imagPart = f.addSigned(imagPart, f.addSigned(imagHigh, realHigh))
		}
		out[i] = E2{
			A0: f.CarryModP(f.PrimeReduce(realPart)),
			A1: f.CarryModP(f.PrimeReduce(imagPart)),
		}
	}
	return out
}

func (f *Field) Fp12Square(a E12) E12 {
	return f.Fp12Mul(a, a)
}

// Fp12Conjugate negates the odd w coefficients; on the cyclotomic subgroup
// this is the inverse.
func (f *Field) Fp12Conjugate(a E12) E12 {
	var out E12
	for i := 0; i < 6; i++ {
		if i%2 == 1 {
			out[i] = f.Fp2Neg(a[i])
		} else {
			out[i] = a[i]
		}
	}
	return out
}

// Fp12Frobenius applies the p-power Frobenius: coefficients are conjugated
// and twisted by gamma1^i.
func (f *Field) Fp12Frobenius(a E12) E12 {
	var out E12
	for i := 0; i < 6; i++ {
		out[i] = f.Fp2MulByConst(f.Fp2Conjugate(a[i]), frobGamma1[i])
	}
	return out
}

// Fp12FrobeniusSquare applies the p^2-power Frobenius; the twist constants
// are real so no conjugation is involved.
func (f *Field) Fp12FrobeniusSquare(a E12) E12 {
	var out E12
	for i := 0; i < 6; i++ {
		out[i] = f.Fp2MulByConst(a[i], frobGamma2[i])
	}
	return out
}

// Fp12Inverse witnesses the inverse and constrains a * a^-1 = 1.
func (f *Field) Fp12Inverse(a E12) E12 {
	ins := make([]frontend.Variable, 0, 1+12*f.K)
	ins = append(ins, f.K)
	for i := 0; i < 6; i++ {
		ins = append(ins, a[i].A0...)
		ins = append(ins, a[i].A1...)
	}
	flat, err := f.api.Compiler().NewHint(fp12InvHint, 12*f.K, ins...)
	if err != nil {
		panic(err)
	}
	var inv E12
	for i := 0; i < 6; i++ {
		inv[i] = E2{
			A0: flat[(2*i)*f.K : (2*i+1)*f.K],
			A1: flat[(2*i+1)*f.K : (2*i+2)*f.K],
		}
		f.RangeCheckRegisters(inv[i].A0)
		f.RangeCheckRegisters(inv[i].A1)
	}
	f.AssertFp12IsOne(f.Fp12Mul(a, inv))
	return inv
}

// Fp12Expt raises to the absolute value of the curve parameter x by
// square-and-multiply over its fixed bits.
func (f *Field) Fp12Expt(a E12) E12 {
	res := a
	for i := 62; i >= 0; i-- {
		res = f.Fp12Square(res)
		if (BlsParameter>>uint(i))&1 == 1 {
			res = f.Fp12Mul(res, a)
		}
	}
	return res
}

// Fp12IsOne returns 1 iff a equals the multiplicative identity. Operands must
// be canonical reduced coordinates.
func (f *Field) Fp12IsOne(a E12) frontend.Variable {
	total := frontend.Variable(12 * f.K)
	for i := 0; i < 6; i++ {
		for j := 0; j < f.K; j++ {
			d0 := a[i].A0[j]
			if i == 0 && j == 0 {
				d0 = f.api.Sub(d0, 1)
			}
			total = f.api.Sub(total, f.api.IsZero(d0))
			total = f.api.Sub(total, f.api.IsZero(a[i].A1[j]))
		}
	}
	return f.api.IsZero(total)
}

func (f *Field) AssertFp12IsOne(a E12) {
	f.api.AssertIsEqual(f.Fp12IsOne(a), 1)
}
