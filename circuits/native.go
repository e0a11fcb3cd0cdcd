package circuit

import (
	"math/big"
)

// Host-side big.Int arithmetic used to derive circuit constants (Frobenius
// coefficients, endomorphism constants, SSWU curve parameters) and to build
// hint witnesses. Nothing in this file emits constraints.

// bigFromLimbs reassembles a multi-limb integer: sum limbs[i] * 2^(n*i).
func bigFromLimbs(limbs []*big.Int, n int) *big.Int {
	out := new(big.Int)
	for i := len(limbs) - 1; i >= 0; i-- {
		out.Lsh(out, uint(n))
		out.Add(out, limbs[i])
	}
	return out
}

// limbsFromBig decomposes a non-negative integer into k limbs of n bits,
// least significant first.
func limbsFromBig(x *big.Int, n, k int) []*big.Int {
	mask := new(big.Int).Lsh(big.NewInt(1), uint(n))
	mask.Sub(mask, big.NewInt(1))
	rest := new(big.Int).Set(x)
	out := make([]*big.Int, k)
	for i := 0; i < k; i++ {
		out[i] = new(big.Int).And(rest, mask)
		rest.Rsh(rest, uint(n))
	}
	return out
}

// fp2Elt is a host-side element of Fp2 = Fp[u]/(u^2+1).
type fp2Elt struct {
	a0, a1 *big.Int
}

func newFp2(a0, a1 int64) fp2Elt {
	return fp2Elt{big.NewInt(a0), big.NewInt(a1)}
}

func fp2FromBig(a0, a1 *big.Int) fp2Elt {
	return fp2Elt{new(big.Int).Set(a0), new(big.Int).Set(a1)}
}

func (a fp2Elt) mod(p *big.Int) fp2Elt {
	return fp2Elt{new(big.Int).Mod(a.a0, p), new(big.Int).Mod(a.a1, p)}
}

func fp2Add(a, b fp2Elt, p *big.Int) fp2Elt {
	return fp2Elt{
		new(big.Int).Add(a.a0, b.a0),
		new(big.Int).Add(a.a1, b.a1),
	}.mod(p)
}

func fp2Sub(a, b fp2Elt, p *big.Int) fp2Elt {
	return fp2Elt{
		new(big.Int).Sub(a.a0, b.a0),
		new(big.Int).Sub(a.a1, b.a1),
	}.mod(p)
}

func fp2Neg(a fp2Elt, p *big.Int) fp2Elt {
	return fp2Elt{new(big.Int).Neg(a.a0), new(big.Int).Neg(a.a1)}.mod(p)
}

func fp2Mul(a, b fp2Elt, p *big.Int) fp2Elt {
	// (a0 + a1 u)(b0 + b1 u) = a0b0 - a1b1 + (a0b1 + a1b0) u
	re := new(big.Int).Mul(a.a0, b.a0)
	re.Sub(re, new(big.Int).Mul(a.a1, b.a1))
	im := new(big.Int).Mul(a.a0, b.a1)
	im.Add(im, new(big.Int).Mul(a.a1, b.a0))
	return fp2Elt{re, im}.mod(p)
}

func fp2Conj(a fp2Elt, p *big.Int) fp2Elt {
	return fp2Elt{new(big.Int).Set(a.a0), new(big.Int).Neg(a.a1)}.mod(p)
}

func fp2Inv(a fp2Elt, p *big.Int) fp2Elt {
	// 1/(a0 + a1 u) = (a0 - a1 u) / (a0^2 + a1^2)
	norm := new(big.Int).Mul(a.a0, a.a0)
	norm.Add(norm, new(big.Int).Mul(a.a1, a.a1))
	norm.Mod(norm, p)
	normInv := new(big.Int).ModInverse(norm, p)
	return fp2Mul(fp2Elt{normInv, big.NewInt(0)}, fp2Conj(a, p), p)
}

func fp2Div(a, b fp2Elt, p *big.Int) fp2Elt {
	return fp2Mul(a, fp2Inv(b, p), p)
}

func fp2Exp(a fp2Elt, e, p *big.Int) fp2Elt {
	out := newFp2(1, 0)
	base := a.mod(p)
	for i := e.BitLen() - 1; i >= 0; i-- {
		out = fp2Mul(out, out, p)
		if e.Bit(i) == 1 {
			out = fp2Mul(out, base, p)
		}
	}
	return out
}

func (a fp2Elt) isZero() bool {
	return a.a0.Sign() == 0 && a.a1.Sign() == 0
}

// fp2EvalPoly evaluates sum coeffs[i] * x^i.
func fp2EvalPoly(coeffs []fp2Elt, x fp2Elt, p *big.Int) fp2Elt {
	out := newFp2(0, 0)
	for i := len(coeffs) - 1; i >= 0; i-- {
		out = fp2Mul(out, x, p)
		out = fp2Add(out, coeffs[i], p)
	}
	return out
}

// signedBig lifts a field element of the native (BN254 scalar) field to a
// signed integer: representatives above mod/2 are taken negative.
func signedBig(v, mod *big.Int) *big.Int {
	half := new(big.Int).Rsh(mod, 1)
	if v.Cmp(half) > 0 {
		return new(big.Int).Sub(v, mod)
	}
	return new(big.Int).Set(v)
}

// fieldBig maps a signed integer back into the native field.
func fieldBig(v, mod *big.Int) *big.Int {
	return new(big.Int).Mod(v, mod)
}
