package circuit

import (
	"github.com/consensys/gnark/frontend"
)

// Simplified SWU map to the curve 3-isogenous to the G2 twist, followed by
// the isogeny evaluation and cofactor clearing. The two field elements from
// hash_to_field are mapped separately, added on the isogenous curve and
// pushed through a single isogeny evaluation.

// sswuMapPoint maps one Fp2 element to a point of E'': y^2 = x^3 + A x + B.
func (f *Field) sswuMapPoint(t E2) G2Point {
	api := f.api

	t2 := f.Fp2Square(t)
	zt2 := f.Fp2MulByConst(t2, sswuZ)
	z2t4 := f.Fp2Square(zt2)
	den := f.Fp2Add(z2t4, zt2)

	// tv1 = inv0(Z^2 t^4 + Z t^2); the exceptional case selects B/(Z*A)
	e1 := f.Fp2IsZero(den)
	denSafe := f.Fp2Select(e1, f.Fp2One(), den)
	tv1 := f.Fp2Inverse(denSafe)
	x1Main := f.Fp2Mul(f.Fp2Const(sswuNegBdivA), f.Fp2Add(f.Fp2One(), tv1))
	x1 := f.Fp2Select(e1, f.Fp2Const(sswuBdivZA), x1Main)

	// g(x) = x^3 + A x + B
	gx1 := f.Fp2Add(
		f.Fp2Mul(f.Fp2Square(x1), x1),
		f.Fp2Add(f.Fp2MulByConst(x1, sswuA), f.Fp2Const(sswuB)),
	)
	x2 := f.Fp2Mul(zt2, x1)
	zt2Cubed := f.Fp2Mul(f.Fp2Square(zt2), zt2)
	gx2 := f.Fp2Mul(zt2Cubed, gx1)

	// Z is a non-square, so exactly one of g(x1), g(x2) is a square; the
	// hint picks the branch and the constraint y^2 = g(x) pins it down.
	ins := make([]frontend.Variable, 0, 1+4*f.K)
	ins = append(ins, f.K)
	ins = append(ins, gx1.A0...)
	ins = append(ins, gx1.A1...)
	ins = append(ins, gx2.A0...)
	ins = append(ins, gx2.A1...)
	hint, err := api.Compiler().NewHint(sqrtRatioHint, 1+2*f.K, ins...)
	if err != nil {
		panic(err)
	}
	isSquare := hint[0]
	api.AssertIsBoolean(isSquare)
	y := E2{A0: hint[1 : 1+f.K], A1: hint[1+f.K:]}
	f.RangeCheckRegisters(y.A0)
	f.RangeCheckRegisters(y.A1)

	x := f.Fp2Select(isSquare, x1, x2)
	gx := f.Fp2Select(isSquare, gx1, gx2)
	f.AssertFp2Equal(f.Fp2Mul(y, y), gx)

	// sgn0(y) must follow sgn0(t)
	flip := api.Xor(f.Fp2Sgn0(t), f.Fp2Sgn0(y))
	y = f.Fp2Select(flip, f.Fp2Neg(y), y)
	return G2Point{X: x, Y: y}
}

// isoCurveAddUnequal adds two points of the isogenous curve with distinct
// x-coordinates. The inputs come from independent SSWU evaluations of hash
// outputs, so a collision is out of reach.
func (f *Field) isoCurveAddUnequal(a, b G2Point) G2Point {
	lambda := f.Fp2Mul(f.Fp2Sub(b.Y, a.Y), f.Fp2Inverse(f.Fp2Sub(b.X, a.X)))
	x3 := f.Fp2Sub(f.Fp2Sub(f.Fp2Mul(lambda, lambda), a.X), b.X)
	y3 := f.Fp2Sub(f.Fp2Mul(lambda, f.Fp2Sub(a.X, x3)), a.Y)
	return G2Point{X: x3, Y: y3}
}

// evalIsoPoly evaluates a constant-coefficient polynomial by Horner.
func (f *Field) evalIsoPoly(coeffs []fp2Elt, x E2) E2 {
	acc := f.Fp2Const(coeffs[len(coeffs)-1])
	for i := len(coeffs) - 2; i >= 0; i-- {
		acc = f.Fp2Add(f.Fp2Mul(acc, x), f.Fp2Const(coeffs[i]))
	}
	return acc
}

// iso3Map evaluates the 3-isogeny to the G2 twist. A vanishing denominator
// means the input sat in the isogeny kernel and the image is infinity.
func (f *Field) iso3Map(p G2Point) (G2Point, frontend.Variable) {
	xNum := f.evalIsoPoly(isoXNum, p.X)
	xDen := f.evalIsoPoly(isoXDen, p.X)
	yNum := f.evalIsoPoly(isoYNum, p.X)
	yDen := f.evalIsoPoly(isoYDen, p.X)

	isInf := f.api.Or(f.Fp2IsZero(xDen), f.Fp2IsZero(yDen))
	xDenSafe := f.Fp2Select(isInf, f.Fp2One(), xDen)
	yDenSafe := f.Fp2Select(isInf, f.Fp2One(), yDen)

	x := f.Fp2Mul(xNum, f.Fp2Inverse(xDenSafe))
	y := f.Fp2Mul(p.Y, f.Fp2Mul(yNum, f.Fp2Inverse(yDenSafe)))
	return G2Point{X: x, Y: y}, isInf
}

// ClearCofactorG2 multiplies by the effective cofactor via the twist
// endomorphism: [x^2-x-1]P + [x-1]psi(P) + psi^2([2]P).
func (f *Field) ClearCofactorG2(p OptG2) OptG2 {
	xP := f.G2NegFlagged(f.MulByBlsParameterG2(p))    // [x]P, x < 0
	x2P := f.G2NegFlagged(f.MulByBlsParameterG2(xP))  // [x^2]P
	negP := f.G2NegFlagged(p)

	t1 := f.EllipticCurveAddFp2(x2P, f.G2NegFlagged(xP))
	t1 = f.EllipticCurveAddFp2(t1, negP)
	t2 := f.PsiG2Flagged(f.EllipticCurveAddFp2(xP, negP))
	t3 := f.PsiG2Flagged(f.PsiG2Flagged(f.EllipticCurveDoubleFp2(p)))

	out := f.EllipticCurveAddFp2(f.EllipticCurveAddFp2(t1, t2), t3)
	return out
}

// MapToG2 lifts the two hash_to_field outputs to a point of the G2 subgroup,
// reporting whether the result is the point at infinity.
func (f *Field) MapToG2(u [htfCount]E2) OptG2 {
	p0 := f.sswuMapPoint(u[0])
	p1 := f.sswuMapPoint(u[1])
	sum := f.isoCurveAddUnequal(p0, p1)
	r, isInf := f.iso3Map(sum)
	return f.ClearCofactorG2(OptG2{Point: r, IsInfinity: isInf})
}
