package circuit

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
)

// Affine curve gadgets for E(Fp): y^2 = x^3 + 4 and its sextic twist
// E'(Fp2): y^2 = x^3 + 4(1+u). Affine coordinates cannot represent the point
// at infinity, so flagged variants carry an explicit IsInfinity bit and mux
// between the mutually exclusive addition cases.

type G1Point struct {
	X, Y []frontend.Variable
}

type G2Point struct {
	X, Y E2
}

// OptG1 is a G1 point or infinity. When IsInfinity is 1 the coordinates are
// immaterial.
type OptG1 struct {
	Point      G1Point
	IsInfinity frontend.Variable
}

type OptG2 struct {
	Point      G2Point
	IsInfinity frontend.Variable
}

func bigInt(v int64) *big.Int { return big.NewInt(v) }

// PointOnBLSCurveNoCheck asserts y^2 = x^3 + 4 without any subgroup check.
func (f *Field) PointOnBLSCurveNoCheck(p G1Point) {
	yy := f.FpMultiply(p.Y, p.Y)
	xx := f.FpMultiply(p.X, p.X)
	xxx := f.FpMultiply(xx, p.X)
	rhs := f.FpAdd(xxx, f.FpConst(bigInt(CurveB1)))
	f.AssertBigEqual(yy, rhs)
}

// PointOnTwistNoCheck asserts y^2 = x^3 + 4(1+u) on the G2 twist.
func (f *Field) PointOnTwistNoCheck(p G2Point) {
	yy := f.Fp2Mul(p.Y, p.Y)
	xx := f.Fp2Mul(p.X, p.X)
	xxx := f.Fp2Mul(xx, p.X)
	rhs := f.Fp2Add(xxx, f.Fp2Const(twistB))
	f.AssertFp2Equal(yy, rhs)
}

func (f *Field) G1Neg(p G1Point) G1Point {
	return G1Point{X: p.X, Y: f.FpNegate(p.Y)}
}

func (f *Field) G2Neg(p G2Point) G2Point {
	return G2Point{X: p.X, Y: f.Fp2Neg(p.Y)}
}

func (f *Field) G1Select(cond frontend.Variable, a, b G1Point) G1Point {
	return G1Point{X: f.FpSelect(cond, a.X, b.X), Y: f.FpSelect(cond, a.Y, b.Y)}
}

func (f *Field) G2Select(cond frontend.Variable, a, b G2Point) G2Point {
	return G2Point{X: f.Fp2Select(cond, a.X, b.X), Y: f.Fp2Select(cond, a.Y, b.Y)}
}

func (f *Field) fpOne() []frontend.Variable {
	one := f.FpZero()
	one[0] = frontend.Variable(1)
	return one
}

// EllipticCurveAdd is the complete flagged G1 addition. Exactly one case
// indicator is active; their sum is constrained to 1. The slope denominator
// is muxed to 1 in the non-arithmetic cases so its inverse always exists.
func (f *Field) EllipticCurveAdd(a, b OptG1) OptG1 {
	api := f.api
	api.AssertIsBoolean(a.IsInfinity)
	api.AssertIsBoolean(b.IsInfinity)

	xEq := f.FpIsEqual(a.Point.X, b.Point.X)
	yEq := f.BigIsEqual(a.Point.Y, b.Point.Y)
	yEqNeg := f.BigIsEqual(a.Point.Y, f.FpNegate(b.Point.Y))

	bothInf := api.Mul(a.IsInfinity, b.IsInfinity)
	onlyA := api.Mul(a.IsInfinity, api.Sub(1, b.IsInfinity))
	onlyB := api.Mul(b.IsInfinity, api.Sub(1, a.IsInfinity))
	neither := api.Mul(api.Sub(1, a.IsInfinity), api.Sub(1, b.IsInfinity))

	opposite := api.Mul(neither, api.Mul(xEq, yEqNeg))
	// the curve group has odd order, so y = 0 never occurs and yEq and
	// yEqNeg are exclusive here
	double := api.Mul(neither, api.Mul(xEq, yEq))
	add := api.Mul(neither, api.Sub(1, xEq))

	total := api.Add(api.Add(bothInf, onlyA), api.Add(onlyB, opposite))
	total = api.Add(total, api.Add(double, add))
	api.AssertIsEqual(total, 1)

	// shared-slope formulas: lambda = (y2-y1)/(x2-x1) or 3x^2/(2y)
	active := api.Add(add, double)
	numAdd := f.FpSubtract(b.Point.Y, a.Point.Y)
	denAdd := f.FpSubtract(b.Point.X, a.Point.X)
	numDbl := f.FpMulSmall(f.FpMultiply(a.Point.X, a.Point.X), 3)
	denDbl := f.FpMulSmall(a.Point.Y, 2)
	num := f.FpSelect(double, numDbl, numAdd)
	den := f.FpSelect(double, denDbl, denAdd)
	den = f.FpSelect(active, den, f.fpOne())
	lambda := f.FpMultiply(num, f.FpInverse(den))

	xOut := f.FpSubtract(f.FpSubtract(f.FpMultiply(lambda, lambda), a.Point.X), b.Point.X)
	yOut := f.FpSubtract(f.FpMultiply(lambda, f.FpSubtract(a.Point.X, xOut)), a.Point.Y)

	res := f.G1Select(onlyA, b.Point, a.Point)
	res = f.G1Select(active, G1Point{X: xOut, Y: yOut}, res)
	return OptG1{Point: res, IsInfinity: api.Add(bothInf, opposite)}
}

// EllipticCurveDouble is the flagged G1 doubling.
func (f *Field) EllipticCurveDouble(a OptG1) OptG1 {
	den := f.FpSelect(a.IsInfinity, f.fpOne(), f.FpMulSmall(a.Point.Y, 2))
	num := f.FpMulSmall(f.FpMultiply(a.Point.X, a.Point.X), 3)
	lambda := f.FpMultiply(num, f.FpInverse(den))
	xOut := f.FpSubtract(f.FpMultiply(lambda, lambda), f.FpMulSmall(a.Point.X, 2))
	yOut := f.FpSubtract(f.FpMultiply(lambda, f.FpSubtract(a.Point.X, xOut)), a.Point.Y)
	res := f.G1Select(a.IsInfinity, a.Point, G1Point{X: xOut, Y: yOut})
	return OptG1{Point: res, IsInfinity: a.IsInfinity}
}

// EllipticCurveAddFp2 is the flagged addition on the twist.
func (f *Field) EllipticCurveAddFp2(a, b OptG2) OptG2 {
	api := f.api
	api.AssertIsBoolean(a.IsInfinity)
	api.AssertIsBoolean(b.IsInfinity)

	xEq := f.Fp2IsEqual(a.Point.X, b.Point.X)
	negBY := f.Fp2Neg(b.Point.Y)
	yEq := api.And(f.BigIsEqual(a.Point.Y.A0, b.Point.Y.A0), f.BigIsEqual(a.Point.Y.A1, b.Point.Y.A1))
	yEqNeg := api.And(f.BigIsEqual(a.Point.Y.A0, negBY.A0), f.BigIsEqual(a.Point.Y.A1, negBY.A1))

	bothInf := api.Mul(a.IsInfinity, b.IsInfinity)
	onlyA := api.Mul(a.IsInfinity, api.Sub(1, b.IsInfinity))
	onlyB := api.Mul(b.IsInfinity, api.Sub(1, a.IsInfinity))
	neither := api.Mul(api.Sub(1, a.IsInfinity), api.Sub(1, b.IsInfinity))

	opposite := api.Mul(neither, api.Mul(xEq, yEqNeg))
	double := api.Mul(neither, api.Mul(xEq, yEq))
	add := api.Mul(neither, api.Sub(1, xEq))

	total := api.Add(api.Add(bothInf, onlyA), api.Add(onlyB, opposite))
	total = api.Add(total, api.Add(double, add))
	api.AssertIsEqual(total, 1)

	active := api.Add(add, double)
	numAdd := f.Fp2Sub(b.Point.Y, a.Point.Y)
	denAdd := f.Fp2Sub(b.Point.X, a.Point.X)
	three := f.fpConstSmall(3)
	two := f.fpConstSmall(2)
	numDbl := f.Fp2MulByFp(f.Fp2Mul(a.Point.X, a.Point.X), three)
	denDbl := f.Fp2MulByFp(a.Point.Y, two)
	num := f.Fp2Select(double, numDbl, numAdd)
	den := f.Fp2Select(double, denDbl, denAdd)
	den = f.Fp2Select(active, den, f.Fp2One())
	lambda := f.Fp2Mul(num, f.Fp2Inverse(den))

	xOut := f.Fp2Sub(f.Fp2Sub(f.Fp2Mul(lambda, lambda), a.Point.X), b.Point.X)
	yOut := f.Fp2Sub(f.Fp2Mul(lambda, f.Fp2Sub(a.Point.X, xOut)), a.Point.Y)

	res := f.G2Select(onlyA, b.Point, a.Point)
	res = f.G2Select(active, G2Point{X: xOut, Y: yOut}, res)
	return OptG2{Point: res, IsInfinity: api.Add(bothInf, opposite)}
}

// EllipticCurveDoubleFp2 is the flagged doubling on the twist.
func (f *Field) EllipticCurveDoubleFp2(a OptG2) OptG2 {
	den := f.Fp2Select(a.IsInfinity, f.Fp2One(), f.Fp2MulByFp(a.Point.Y, f.fpConstSmall(2)))
	num := f.Fp2MulByFp(f.Fp2Mul(a.Point.X, a.Point.X), f.fpConstSmall(3))
	lambda := f.Fp2Mul(num, f.Fp2Inverse(den))
	xOut := f.Fp2Sub(f.Fp2Sub(f.Fp2Mul(lambda, lambda), a.Point.X), a.Point.X)
	yOut := f.Fp2Sub(f.Fp2Mul(lambda, f.Fp2Sub(a.Point.X, xOut)), a.Point.Y)
	res := f.G2Select(a.IsInfinity, a.Point, G2Point{X: xOut, Y: yOut})
	return OptG2{Point: res, IsInfinity: a.IsInfinity}
}

func (f *Field) fpConstSmall(v int64) []frontend.Variable {
	out := f.FpZero()
	out[0] = frontend.Variable(v)
	return out
}

func (f *Field) G1NegFlagged(a OptG1) OptG1 {
	return OptG1{Point: f.G1Neg(a.Point), IsInfinity: a.IsInfinity}
}

func (f *Field) G2NegFlagged(a OptG2) OptG2 {
	return OptG2{Point: f.G2Neg(a.Point), IsInfinity: a.IsInfinity}
}

// MulByBlsParameterG1 computes [|x|]P by double-and-add over the fixed bits
// of the curve parameter.
func (f *Field) MulByBlsParameterG1(p OptG1) OptG1 {
	acc := p
	for i := 62; i >= 0; i-- {
		acc = f.EllipticCurveDouble(acc)
		if (BlsParameter>>uint(i))&1 == 1 {
			acc = f.EllipticCurveAdd(acc, p)
		}
	}
	return acc
}

func (f *Field) MulByBlsParameterG2(p OptG2) OptG2 {
	acc := p
	for i := 62; i >= 0; i-- {
		acc = f.EllipticCurveDoubleFp2(acc)
		if (BlsParameter>>uint(i))&1 == 1 {
			acc = f.EllipticCurveAddFp2(acc, p)
		}
	}
	return acc
}

// PhiG1 is the GLV endomorphism (x, y) -> (beta*x, y).
func (f *Field) PhiG1(p G1Point) G1Point {
	return G1Point{X: f.FpMulConst(p.X, betaG1), Y: p.Y}
}

// PsiG2 is the twist endomorphism: coordinate-wise conjugation twisted by the
// untwist-Frobenius-twist constants.
func (f *Field) PsiG2(p G2Point) G2Point {
	return G2Point{
		X: f.Fp2MulByConst(f.Fp2Conjugate(p.X), psiX),
		Y: f.Fp2MulByConst(f.Fp2Conjugate(p.Y), psiY),
	}
}

func (f *Field) PsiG2Flagged(p OptG2) OptG2 {
	return OptG2{Point: f.PsiG2(p.Point), IsInfinity: p.IsInfinity}
}

// SubgroupCheckG1 asserts that an on-curve point lies in the prime-order
// subgroup: phi(P) = [-x^2]P.
func (f *Field) SubgroupCheckG1(p G1Point) {
	flagged := OptG1{Point: p, IsInfinity: frontend.Variable(0)}
	xP := f.MulByBlsParameterG1(flagged)
	x2P := f.MulByBlsParameterG1(xP)
	f.api.AssertIsEqual(x2P.IsInfinity, 0)
	want := f.G1Neg(x2P.Point)
	endo := f.PhiG1(p)
	f.AssertBigEqual(endo.X, want.X)
	f.AssertBigEqual(endo.Y, want.Y)
}

// SubgroupCheckG2 asserts psi(P) = [x]P; x is negative so the scalar multiple
// is negated.
func (f *Field) SubgroupCheckG2(p G2Point) {
	flagged := OptG2{Point: p, IsInfinity: frontend.Variable(0)}
	xAbsP := f.MulByBlsParameterG2(flagged)
	f.api.AssertIsEqual(xAbsP.IsInfinity, 0)
	want := f.G2Neg(xAbsP.Point)
	endo := f.PsiG2(p)
	f.AssertFp2Equal(endo.X, want.X)
	f.AssertFp2Equal(endo.Y, want.Y)
}
