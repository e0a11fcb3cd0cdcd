package circuit

import (
	"fmt"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	bls12381fr "github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Register shape of a BLS12-381 base field element: 7 limbs of 55 bits,
// least significant limb first. 7*55 = 385 bits covers the 381-bit prime.
const (
	NumBitsPerRegister = 55
	NumRegisters       = 7

	SyncCommitteeSize     = 512
	Log2SyncCommitteeSize = 9

	FinalizedHeaderDepth    = 6
	FinalizedHeaderIndex    = 105
	ExecutionStateRootDepth = 8
	ExecutionStateRootIndex = 402
	SyncCommitteeDepth      = 5
	SyncCommitteeIndex      = 55

	TruncatedSha256Size = 253
	G1PointSize         = 48

	CurveA1 = 0
	CurveB1 = 4
)

// BlsParameter is the absolute value of the BLS12-381 curve parameter x; the
// parameter itself is negative.
const BlsParameter uint64 = 0xd201000000010000

// DomainSeparatorTag is the DST for Ethereum's BLS signature scheme
// (BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_).
var DomainSeparatorTag = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_")

// blsPrimeLimbs is the BLS12-381 base field prime in register form.
var blsPrimeLimbs = [NumRegisters]uint64{
	35747322042231467,
	36025922209447795,
	1084959616957103,
	7925923977987733,
	16551456537884751,
	23443114579904617,
	1829881462546425,
}

var (
	// qBig is the BLS12-381 base field prime as an integer.
	qBig *big.Int
	// rBig is the BLS12-381 scalar field order.
	rBig *big.Int
	// qLimbs is qBig in register form, as big.Ints.
	qLimbs []*big.Int

	// betaG1 is the cube root of unity defining the G1 endomorphism
	// phi(x, y) = (betaG1 * x, y), chosen such that phi acts as
	// multiplication by -x^2 on the prime-order subgroup.
	betaG1 *big.Int

	// psiX, psiY define the G2 endomorphism
	// psi(x, y) = (psiX * conj(x), psiY * conj(y)), which acts as
	// multiplication by the curve parameter x on the prime-order subgroup.
	psiX, psiY fp2Elt

	// frobGamma1[i] multiplies the conjugated w^i coefficient under the
	// p-power Frobenius on Fp12; frobGamma2[i] is the analogue for the
	// p^2-power Frobenius (no conjugation).
	frobGamma1, frobGamma2 [6]fp2Elt

	// Parameters of the curve E'': y^2 = x^3 + sswuA*x + sswuB, the curve
	// 3-isogenous to the G2 twist used by the simplified SWU map, and the
	// non-square Z = -(2 + u) from the hash-to-curve ciphersuite.
	sswuA, sswuB, sswuZ fp2Elt
	sswuNegBdivA        fp2Elt // -B/A
	sswuBdivZA          fp2Elt // B/(Z*A)

	// Coefficients of the 3-isogeny from E'' to the G2 twist. The numerator
	// and denominator polynomials are evaluated at the SSWU x-coordinate.
	isoXNum, isoXDen, isoYNum, isoYDen []fp2Elt

	// twistB is the G2 twist curve coefficient 4*(1+u).
	twistB fp2Elt
)

func init() {
	if SyncCommitteeSize != 1<<Log2SyncCommitteeSize {
		panic("sync committee size must be a power of two")
	}
	if NumBitsPerRegister > 126 {
		panic("register width too large for products in the native field")
	}
	if NumBitsPerRegister*NumRegisters <= 381 {
		panic("registers do not cover the base field prime")
	}
	if len(DomainSeparatorTag) != 43 {
		panic("unexpected domain separator tag length")
	}

	qLimbs = make([]*big.Int, NumRegisters)
	for i, l := range blsPrimeLimbs {
		qLimbs[i] = new(big.Int).SetUint64(l)
	}
	qBig = bigFromLimbs(qLimbs, NumBitsPerRegister)
	rBig = bls12381fr.Modulus()

	initEndomorphisms()
	initFrobenius()
	initSSWU()
}

// initEndomorphisms derives the G1 and G2 endomorphism constants from the
// curve generators rather than hardcoding 381-bit literals. The eigenvalue
// conventions (which cube root, which psi sign) are fixed by checking the
// action on the generator.
func initEndomorphisms() {
	_, _, g1, g2 := bls12381.Generators()

	// Cube roots of unity mod q: (-1 +- sqrt(-3)) / 2.
	negThree := new(big.Int).Sub(qBig, big.NewInt(3))
	s := new(big.Int).ModSqrt(negThree, qBig)
	if s == nil {
		panic("-3 must be a square in the base field")
	}
	inv2 := new(big.Int).ModInverse(big.NewInt(2), qBig)
	beta1 := new(big.Int).Sub(s, big.NewInt(1))
	beta1.Mul(beta1, inv2).Mod(beta1, qBig)
	beta2 := new(big.Int).Mul(beta1, beta1)
	beta2.Mod(beta2, qBig)

	// phi must act as [-x^2] on G1.
	x2 := new(big.Int).SetUint64(BlsParameter)
	x2.Mul(x2, x2)
	negX2 := new(big.Int).Neg(x2)
	negX2.Mod(negX2, rBig)
	var t bls12381.G1Affine
	t.ScalarMultiplication(&g1, negX2)

	g1x := g1.X.BigInt(new(big.Int))
	tx := t.X.BigInt(new(big.Int))
	for _, cand := range []*big.Int{beta1, beta2} {
		bx := new(big.Int).Mul(cand, g1x)
		bx.Mod(bx, qBig)
		if bx.Cmp(tx) == 0 {
			betaG1 = cand
		}
	}
	if betaG1 == nil || !t.Y.Equal(&g1.Y) {
		panic("no cube root of unity acts as [-x^2] on the G1 generator")
	}

	// psi must act as [x] on G2 (x is negative).
	xModR := new(big.Int).Sub(rBig, new(big.Int).SetUint64(BlsParameter))
	var u bls12381.G2Affine
	u.ScalarMultiplication(&g2, xModR)

	g2x := fp2FromBig(g2.X.A0.BigInt(new(big.Int)), g2.X.A1.BigInt(new(big.Int)))
	g2y := fp2FromBig(g2.Y.A0.BigInt(new(big.Int)), g2.Y.A1.BigInt(new(big.Int)))
	ux := fp2FromBig(u.X.A0.BigInt(new(big.Int)), u.X.A1.BigInt(new(big.Int)))
	uy := fp2FromBig(u.Y.A0.BigInt(new(big.Int)), u.Y.A1.BigInt(new(big.Int)))
	psiX = fp2Div(ux, fp2Conj(g2x, qBig), qBig)
	psiY = fp2Div(uy, fp2Conj(g2y, qBig), qBig)

	// Cross-check on an unrelated point.
	var p5, u5 bls12381.G2Affine
	p5.ScalarMultiplication(&g2, big.NewInt(5))
	u5.ScalarMultiplication(&p5, xModR)
	p5x := fp2FromBig(p5.X.A0.BigInt(new(big.Int)), p5.X.A1.BigInt(new(big.Int)))
	p5y := fp2FromBig(p5.Y.A0.BigInt(new(big.Int)), p5.Y.A1.BigInt(new(big.Int)))
	wantX := fp2Mul(psiX, fp2Conj(p5x, qBig), qBig)
	wantY := fp2Mul(psiY, fp2Conj(p5y, qBig), qBig)
	u5x := fp2FromBig(u5.X.A0.BigInt(new(big.Int)), u5.X.A1.BigInt(new(big.Int)))
	u5y := fp2FromBig(u5.Y.A0.BigInt(new(big.Int)), u5.Y.A1.BigInt(new(big.Int)))
	if wantX.a0.Cmp(u5x.a0) != 0 || wantX.a1.Cmp(u5x.a1) != 0 ||
		wantY.a0.Cmp(u5y.a0) != 0 || wantY.a1.Cmp(u5y.a1) != 0 {
		panic("derived psi constants do not define the twist endomorphism")
	}
}

func initFrobenius() {
	// w^6 = 1 + u, so w^(p-1) = (1+u)^((p-1)/6).
	e := new(big.Int).Sub(qBig, big.NewInt(1))
	e.Div(e, big.NewInt(6))
	g1 := fp2Exp(newFp2(1, 1), e, qBig)
	for i := 0; i < 6; i++ {
		frobGamma1[i] = fp2Exp(g1, big.NewInt(int64(i)), qBig)
		frobGamma2[i] = fp2Mul(frobGamma1[i], fp2Conj(frobGamma1[i], qBig), qBig)
	}
}

func initSSWU() {
	twistB = newFp2(4, 4)

	sswuA = newFp2(0, 240)
	sswuB = newFp2(1012, 1012)
	sswuZ = fp2Neg(newFp2(2, 1), qBig)
	sswuNegBdivA = fp2Div(fp2Neg(sswuB, qBig), sswuA, qBig)
	sswuBdivZA = fp2Div(sswuB, fp2Mul(sswuZ, sswuA, qBig), qBig)

	hx := func(s string) *big.Int {
		v, ok := new(big.Int).SetString(s, 16)
		if !ok {
			panic(fmt.Sprintf("bad isogeny constant %q", s))
		}
		return v
	}
	// 3-isogeny coefficients for BLS12-381 G2 (hash-to-curve ciphersuite
	// BLS12381G2_XMD:SHA-256_SSWU_RO_).
	isoXNum = []fp2Elt{
		fp2FromBig(
			hx("5c759507e8e333ebb5b7a9a47d7ed8532c52d39fd3a042a88b58423c50ae15d5c2638e343d9c71c6238aaaaaaaa97d6"),
			hx("5c759507e8e333ebb5b7a9a47d7ed8532c52d39fd3a042a88b58423c50ae15d5c2638e343d9c71c6238aaaaaaaa97d6")),
		fp2FromBig(
			big.NewInt(0),
			hx("11560bf17baa99bc32126fced787c88f984f87adf7ae0c7f9a208c6b4f20a4181472aaa9cb8d555526a9ffffffffc71a")),
		fp2FromBig(
			hx("11560bf17baa99bc32126fced787c88f984f87adf7ae0c7f9a208c6b4f20a4181472aaa9cb8d555526a9ffffffffc71e"),
			hx("8ab05f8bdd54cde190937e76bc3e447cc27c3d6fbd7063fcd104635a790520c0a395554e5c6aaaa9354ffffffffe38d")),
		fp2FromBig(
			hx("171d6541fa38ccfaed6dea691f5fb614cb14b4e7f4e810aa22d6108f142b85757098e38d0f671c7188e2aaaaaaaa5ed1"),
			big.NewInt(0)),
	}
	isoXDen = []fp2Elt{
		fp2FromBig(
			big.NewInt(0),
			hx("1a0111ea397fe69a4b1ba7b6434bacd764774b84f38512bf6730d2a0f6b0f6241eabfffeb153ffffb9feffffffffaa63")),
		fp2FromBig(
			big.NewInt(0xc),
			hx("1a0111ea397fe69a4b1ba7b6434bacd764774b84f38512bf6730d2a0f6b0f6241eabfffeb153ffffb9feffffffffaa9f")),
		newFp2(1, 0),
	}
	isoYNum = []fp2Elt{
		fp2FromBig(
			hx("1530477c7ab4113b59a4c18b076d11930f7da5d4a07f649bf54439d87d27e500fc8c25ebf8c92f6812cfc71c71c6d706"),
			hx("1530477c7ab4113b59a4c18b076d11930f7da5d4a07f649bf54439d87d27e500fc8c25ebf8c92f6812cfc71c71c6d706")),
		fp2FromBig(
			big.NewInt(0),
			hx("5c759507e8e333ebb5b7a9a47d7ed8532c52d39fd3a042a88b58423c50ae15d5c2638e343d9c71c6238aaaaaaaa97be")),
		fp2FromBig(
			hx("11560bf17baa99bc32126fced787c88f984f87adf7ae0c7f9a208c6b4f20a4181472aaa9cb8d555526a9ffffffffc71c"),
			hx("8ab05f8bdd54cde190937e76bc3e447cc27c3d6fbd7063fcd104635a790520c0a395554e5c6aaaa9354ffffffffe38f")),
		fp2FromBig(
			hx("124c9ad43b6cf79bfbf7043de3811ad0761b0f37a1e26286b0e977c69aa274524e79097a56dc4bd9e1b371c71c718b10"),
			big.NewInt(0)),
	}
	isoYDen = []fp2Elt{
		fp2FromBig(
			hx("1a0111ea397fe69a4b1ba7b6434bacd764774b84f38512bf6730d2a0f6b0f6241eabfffeb153ffffb9feffffffffa8fb"),
			hx("1a0111ea397fe69a4b1ba7b6434bacd764774b84f38512bf6730d2a0f6b0f6241eabfffeb153ffffb9feffffffffa8fb")),
		fp2FromBig(
			big.NewInt(0),
			hx("1a0111ea397fe69a4b1ba7b6434bacd764774b84f38512bf6730d2a0f6b0f6241eabfffeb153ffffb9feffffffffa9d3")),
		fp2FromBig(
			big.NewInt(0x12),
			hx("1a0111ea397fe69a4b1ba7b6434bacd764774b84f38512bf6730d2a0f6b0f6241eabfffeb153ffffb9feffffffffaa99")),
		newFp2(1, 0),
	}
}

func logCeil(k int) int {
	n := 0
	for (1 << n) < k {
		n++
	}
	return n
}
