package circuit

import (
	"github.com/consensys/gnark/frontend"
)

// Optimal-Ate pairing over BLS12-381. The Miller loop iterates over the bits
// of |x| with the twist points kept on E'(Fp2); line functions are evaluated
// at the G1 argument and land in the sparse Fp12 subspace spanned by
// w^0, w^2 and w^3. The curve parameter is negative, so the loop output is
// conjugated.
//
// Points fed to the Miller loop are assumed to be non-infinity elements of
// their prime-order subgroups; CoreVerifyPubkeyG1 enforces this before
// pairing.

// lineEval is a line function evaluated at a G1 point, embedded sparsely in
// Fp12: c0 + c2*w^2 + c3*w^3 with c3 in Fp.
type lineEval struct {
	c0, c2 E2
	c3     []frontend.Variable
}

// MulByLine folds a sparse line evaluation into the accumulator. The sparse
// coefficients are placed into a full tensor; the zero rows cost nothing in
// the product identity.
func (f *Field) MulByLine(a E12, l lineEval) E12 {
	var b E12
	b[0] = l.c0
	b[1] = f.Fp2Zero()
	b[2] = l.c2
	b[3] = E2{A0: l.c3, A1: f.FpZero()}
	b[4] = f.Fp2Zero()
	b[5] = f.Fp2Zero()
	return f.Fp12Mul(a, b)
}

// lineDouble computes the tangent line at T evaluated at p and the doubled
// point, sharing the slope between both.
func (f *Field) lineDouble(t G2Point, p G1Point) (lineEval, G2Point) {
	num := f.Fp2MulByFp(f.Fp2Mul(t.X, t.X), f.fpConstSmall(3))
	den := f.Fp2MulByFp(t.Y, f.fpConstSmall(2))
	lambda := f.Fp2Mul(num, f.Fp2Inverse(den))

	l := lineEval{
		c0: f.Fp2Sub(f.Fp2Mul(lambda, t.X), t.Y),
		c2: f.Fp2Neg(f.Fp2MulByFp(lambda, p.X)),
		c3: p.Y,
	}
	x3 := f.Fp2Sub(f.Fp2Sub(f.Fp2Mul(lambda, lambda), t.X), t.X)
	y3 := f.Fp2Sub(f.Fp2Mul(lambda, f.Fp2Sub(t.X, x3)), t.Y)
	return l, G2Point{X: x3, Y: y3}
}

// lineAdd computes the chord through T and q evaluated at p, and T + q.
func (f *Field) lineAdd(t, q G2Point, p G1Point) (lineEval, G2Point) {
	num := f.Fp2Sub(q.Y, t.Y)
	den := f.Fp2Sub(q.X, t.X)
	lambda := f.Fp2Mul(num, f.Fp2Inverse(den))

	l := lineEval{
		c0: f.Fp2Sub(f.Fp2Mul(lambda, t.X), t.Y),
		c2: f.Fp2Neg(f.Fp2MulByFp(lambda, p.X)),
		c3: p.Y,
	}
	x3 := f.Fp2Sub(f.Fp2Sub(f.Fp2Mul(lambda, lambda), t.X), q.X)
	y3 := f.Fp2Sub(f.Fp2Mul(lambda, f.Fp2Sub(t.X, x3)), t.Y)
	return l, G2Point{X: x3, Y: y3}
}

// MillerLoopFp2Two runs two Miller loops sharing one accumulator, so the
// squarings are paid once and a single final exponentiation covers the
// product e(q0, p0) * e(q1, p1).
func (f *Field) MillerLoopFp2Two(p [2]G2Point, q [2]G1Point) E12 {
	acc := f.Fp12One()
	t := p
	for i := 62; i >= 0; i-- {
		acc = f.Fp12Square(acc)
		for j := 0; j < 2; j++ {
			var l lineEval
			l, t[j] = f.lineDouble(t[j], q[j])
			acc = f.MulByLine(acc, l)
		}
		if (BlsParameter>>uint(i))&1 == 1 {
			for j := 0; j < 2; j++ {
				var l lineEval
				l, t[j] = f.lineAdd(t[j], p[j], q[j])
				acc = f.MulByLine(acc, l)
			}
		}
	}
	// negative curve parameter
	return f.Fp12Conjugate(acc)
}

// MillerLoop is the single-pair loop.
func (f *Field) MillerLoop(p G2Point, q G1Point) E12 {
	acc := f.Fp12One()
	t := p
	for i := 62; i >= 0; i-- {
		acc = f.Fp12Square(acc)
		var l lineEval
		l, t = f.lineDouble(t, q)
		acc = f.MulByLine(acc, l)
		if (BlsParameter>>uint(i))&1 == 1 {
			l, t = f.lineAdd(t, p, q)
			acc = f.MulByLine(acc, l)
		}
	}
	return f.Fp12Conjugate(acc)
}

// FinalExponentiate raises a Miller-loop output to a fixed multiple of
// (q^12 - 1)/r. The easy part lands in the cyclotomic subgroup, where
// inversion is conjugation; the hard part uses the x-driven chain
// (x-1)^2 (x+q) (x^2+q^2-1) + 3, which is three times the canonical
// exponent and therefore preserves the is-one check.
func (f *Field) FinalExponentiate(a E12) E12 {
	// easy part: a^((q^6 - 1)(q^2 + 1))
	t := f.Fp12Mul(f.Fp12Conjugate(a), f.Fp12Inverse(a))
	m := f.Fp12Mul(f.Fp12FrobeniusSquare(t), t)

	// hard part; m^x = conj(m^|x|) on the cyclotomic subgroup
	y1 := f.Fp12Conjugate(f.Fp12Mul(f.Fp12Expt(m), m))       // m^(x-1)
	y2 := f.Fp12Conjugate(f.Fp12Mul(f.Fp12Expt(y1), y1))     // y1^(x-1)
	y3 := f.Fp12Mul(f.Fp12Frobenius(y2), f.Fp12Conjugate(f.Fp12Expt(y2)))
	x2y3 := f.Fp12Expt(f.Fp12Expt(y3))
	y4 := f.Fp12Mul(x2y3, f.Fp12Mul(f.Fp12FrobeniusSquare(y3), f.Fp12Conjugate(y3)))
	return f.Fp12Mul(y4, f.Fp12Mul(f.Fp12Square(m), m))
}
