package circuit

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	gnark_test "github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"
)

type fpOpsCircuit struct {
	A, B  [NumRegisters]frontend.Variable
	Sum   [NumRegisters]frontend.Variable
	Diff  [NumRegisters]frontend.Variable
	Prod  [NumRegisters]frontend.Variable
	NegA  [NumRegisters]frontend.Variable
	Sgn0A frontend.Variable
}

func (c *fpOpsCircuit) Define(api frontend.API) error {
	f := NewField(api)
	f.AssertBigEqual(f.FpAdd(c.A[:], c.B[:]), c.Sum[:])
	f.AssertBigEqual(f.FpSubtract(c.A[:], c.B[:]), c.Diff[:])
	f.AssertBigEqual(f.FpMultiply(c.A[:], c.B[:]), c.Prod[:])
	f.AssertBigEqual(f.FpNegate(c.A[:]), c.NegA[:])
	api.AssertIsEqual(f.FpSgn0(c.A[:]), c.Sgn0A)

	// commutativity of the product
	f.AssertBigEqual(f.FpMultiply(c.B[:], c.A[:]), c.Prod[:])
	return nil
}

func TestFpOps(t *testing.T) {
	rnd := rand.New(rand.NewSource(21))
	n, k := NumBitsPerRegister, NumRegisters
	for iter := 0; iter < 3; iter++ {
		a := randBelow(rnd, qBig)
		b := randBelow(rnd, qBig)

		w := &fpOpsCircuit{}
		assignLimbs(w.A[:], a, n, k)
		assignLimbs(w.B[:], b, n, k)

		sum := new(big.Int).Add(a, b)
		sum.Mod(sum, qBig)
		assignLimbs(w.Sum[:], sum, n, k)

		diff := new(big.Int).Sub(a, b)
		diff.Mod(diff, qBig)
		assignLimbs(w.Diff[:], diff, n, k)

		prod := new(big.Int).Mul(a, b)
		prod.Mod(prod, qBig)
		assignLimbs(w.Prod[:], prod, n, k)

		neg := new(big.Int).Neg(a)
		neg.Mod(neg, qBig)
		assignLimbs(w.NegA[:], neg, n, k)

		w.Sgn0A = a.Bit(0)

		err := gnark_test.IsSolved(&fpOpsCircuit{}, w, ecc.BN254.ScalarField())
		require.NoError(t, err)
	}
}

type fp2OpsCircuit struct {
	A0, A1 [NumRegisters]frontend.Variable
	B0, B1 [NumRegisters]frontend.Variable
	P0, P1 [NumRegisters]frontend.Variable
}

func (c *fp2OpsCircuit) Define(api frontend.API) error {
	f := NewField(api)
	a := E2{A0: c.A0[:], A1: c.A1[:]}
	b := E2{A0: c.B0[:], A1: c.B1[:]}
	prod := f.Fp2Mul(a, b)
	f.AssertBigEqual(prod.A0, c.P0[:])
	f.AssertBigEqual(prod.A1, c.P1[:])

	// a * a^-1 = 1
	inv := f.Fp2Inverse(a)
	one := f.Fp2Mul(a, inv)
	f.AssertFp2Equal(one, f.Fp2One())
	return nil
}

func TestFp2Ops(t *testing.T) {
	rnd := rand.New(rand.NewSource(22))
	n, k := NumBitsPerRegister, NumRegisters
	for iter := 0; iter < 3; iter++ {
		a := fp2FromBig(randBelow(rnd, qBig), randBelow(rnd, qBig))
		b := fp2FromBig(randBelow(rnd, qBig), randBelow(rnd, qBig))
		if a.isZero() {
			continue
		}
		prod := fp2Mul(a, b, qBig)

		w := &fp2OpsCircuit{}
		assignLimbs(w.A0[:], a.a0, n, k)
		assignLimbs(w.A1[:], a.a1, n, k)
		assignLimbs(w.B0[:], b.a0, n, k)
		assignLimbs(w.B1[:], b.a1, n, k)
		assignLimbs(w.P0[:], prod.a0, n, k)
		assignLimbs(w.P1[:], prod.a1, n, k)

		err := gnark_test.IsSolved(&fp2OpsCircuit{}, w, ecc.BN254.ScalarField())
		require.NoError(t, err)
	}
}
