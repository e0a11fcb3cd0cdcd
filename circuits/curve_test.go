package circuit

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark/frontend"
	gnark_test "github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"
)

func randG1(rnd *rand.Rand) bls12381.G1Affine {
	_, _, g1, _ := bls12381.Generators()
	var p bls12381.G1Affine
	p.ScalarMultiplication(&g1, randBelow(rnd, rBig))
	return p
}

func assignG1(x, y []frontend.Variable, p bls12381.G1Affine) {
	assignLimbs(x, p.X.BigInt(new(big.Int)), NumBitsPerRegister, NumRegisters)
	assignLimbs(y, p.Y.BigInt(new(big.Int)), NumBitsPerRegister, NumRegisters)
}

type curveAddCircuit struct {
	AX, AY [NumRegisters]frontend.Variable
	BX, BY [NumRegisters]frontend.Variable
	AInf   frontend.Variable
	BInf   frontend.Variable
	OutX   [NumRegisters]frontend.Variable
	OutY   [NumRegisters]frontend.Variable
	OutInf frontend.Variable
}

func (c *curveAddCircuit) Define(api frontend.API) error {
	f := NewField(api)
	out := f.EllipticCurveAdd(
		OptG1{Point: G1Point{X: c.AX[:], Y: c.AY[:]}, IsInfinity: c.AInf},
		OptG1{Point: G1Point{X: c.BX[:], Y: c.BY[:]}, IsInfinity: c.BInf},
	)
	api.AssertIsEqual(out.IsInfinity, c.OutInf)
	// coordinates only matter for finite results
	finite := api.Sub(1, c.OutInf)
	for i := 0; i < NumRegisters; i++ {
		api.AssertIsEqual(api.Mul(finite, api.Sub(out.Point.X[i], c.OutX[i])), 0)
		api.AssertIsEqual(api.Mul(finite, api.Sub(out.Point.Y[i], c.OutY[i])), 0)
	}
	return nil
}

func TestEllipticCurveAdd(t *testing.T) {
	rnd := rand.New(rand.NewSource(31))
	a := randG1(rnd)
	b := randG1(rnd)

	var native bls12381.G1Affine

	// distinct points
	w := &curveAddCircuit{AInf: 0, BInf: 0, OutInf: 0}
	assignG1(w.AX[:], w.AY[:], a)
	assignG1(w.BX[:], w.BY[:], b)
	native.Add(&a, &b)
	assignG1(w.OutX[:], w.OutY[:], native)
	require.NoError(t, gnark_test.IsSolved(&curveAddCircuit{}, w, ecc.BN254.ScalarField()))

	// commutativity
	w = &curveAddCircuit{AInf: 0, BInf: 0, OutInf: 0}
	assignG1(w.AX[:], w.AY[:], b)
	assignG1(w.BX[:], w.BY[:], a)
	assignG1(w.OutX[:], w.OutY[:], native)
	require.NoError(t, gnark_test.IsSolved(&curveAddCircuit{}, w, ecc.BN254.ScalarField()))

	// doubling through the same entry point
	w = &curveAddCircuit{AInf: 0, BInf: 0, OutInf: 0}
	assignG1(w.AX[:], w.AY[:], a)
	assignG1(w.BX[:], w.BY[:], a)
	native.Double(&a)
	assignG1(w.OutX[:], w.OutY[:], native)
	require.NoError(t, gnark_test.IsSolved(&curveAddCircuit{}, w, ecc.BN254.ScalarField()))

	// P + (-P) = infinity
	var negA bls12381.G1Affine
	negA.Neg(&a)
	w = &curveAddCircuit{AInf: 0, BInf: 0, OutInf: 1}
	assignG1(w.AX[:], w.AY[:], a)
	assignG1(w.BX[:], w.BY[:], negA)
	assignG1(w.OutX[:], w.OutY[:], a)
	require.NoError(t, gnark_test.IsSolved(&curveAddCircuit{}, w, ecc.BN254.ScalarField()))

	// P + infinity = P
	w = &curveAddCircuit{AInf: 0, BInf: 1, OutInf: 0}
	assignG1(w.AX[:], w.AY[:], a)
	assignG1(w.BX[:], w.BY[:], b)
	assignG1(w.OutX[:], w.OutY[:], a)
	require.NoError(t, gnark_test.IsSolved(&curveAddCircuit{}, w, ecc.BN254.ScalarField()))
}

type onCurveCircuit struct {
	X, Y [NumRegisters]frontend.Variable
}

func (c *onCurveCircuit) Define(api frontend.API) error {
	f := NewField(api)
	f.PointOnBLSCurveNoCheck(G1Point{X: c.X[:], Y: c.Y[:]})
	return nil
}

func TestPointOnCurve(t *testing.T) {
	rnd := rand.New(rand.NewSource(32))
	p := randG1(rnd)

	w := &onCurveCircuit{}
	assignG1(w.X[:], w.Y[:], p)
	require.NoError(t, gnark_test.IsSolved(&onCurveCircuit{}, w, ecc.BN254.ScalarField()))

	// a perturbed y must not satisfy the curve equation
	bad := new(big.Int).Add(p.Y.BigInt(new(big.Int)), big.NewInt(1))
	bad.Mod(bad, qBig)
	w = &onCurveCircuit{}
	assignG1(w.X[:], w.Y[:], p)
	assignLimbs(w.Y[:], bad, NumBitsPerRegister, NumRegisters)
	require.Error(t, gnark_test.IsSolved(&onCurveCircuit{}, w, ecc.BN254.ScalarField()))
}

type subgroupG1Circuit struct {
	X, Y [NumRegisters]frontend.Variable
}

func (c *subgroupG1Circuit) Define(api frontend.API) error {
	f := NewField(api)
	f.SubgroupCheckG1(G1Point{X: c.X[:], Y: c.Y[:]})
	return nil
}

func TestSubgroupCheckG1(t *testing.T) {
	if testing.Short() {
		t.Skip("parameter-length scalar multiplication in the test engine")
	}
	rnd := rand.New(rand.NewSource(33))
	p := randG1(rnd)
	w := &subgroupG1Circuit{}
	assignG1(w.X[:], w.Y[:], p)
	require.NoError(t, gnark_test.IsSolved(&subgroupG1Circuit{}, w, ecc.BN254.ScalarField()))
}

type subgroupG2Circuit struct {
	X0, X1, Y0, Y1 [NumRegisters]frontend.Variable
}

func (c *subgroupG2Circuit) Define(api frontend.API) error {
	f := NewField(api)
	f.SubgroupCheckG2(G2Point{
		X: E2{A0: c.X0[:], A1: c.X1[:]},
		Y: E2{A0: c.Y0[:], A1: c.Y1[:]},
	})
	return nil
}

func TestSubgroupCheckG2(t *testing.T) {
	if testing.Short() {
		t.Skip("parameter-length scalar multiplication in the test engine")
	}
	rnd := rand.New(rand.NewSource(34))
	_, _, _, g2 := bls12381.Generators()
	var p bls12381.G2Affine
	p.ScalarMultiplication(&g2, randBelow(rnd, rBig))

	w := &subgroupG2Circuit{}
	assignLimbs(w.X0[:], p.X.A0.BigInt(new(big.Int)), NumBitsPerRegister, NumRegisters)
	assignLimbs(w.X1[:], p.X.A1.BigInt(new(big.Int)), NumBitsPerRegister, NumRegisters)
	assignLimbs(w.Y0[:], p.Y.A0.BigInt(new(big.Int)), NumBitsPerRegister, NumRegisters)
	assignLimbs(w.Y1[:], p.Y.A1.BigInt(new(big.Int)), NumBitsPerRegister, NumRegisters)
	require.NoError(t, gnark_test.IsSolved(&subgroupG2Circuit{}, w, ecc.BN254.ScalarField()))
}
