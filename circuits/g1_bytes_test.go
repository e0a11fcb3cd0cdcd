package circuit

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
	gnark_test "github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"
)

type g1BytesCircuit struct {
	Bytes    [G1PointSize]uints.U8
	X        [NumRegisters]frontend.Variable
	Y        [NumRegisters]frontend.Variable
	SignFlag frontend.Variable
}

func (c *g1BytesCircuit) Define(api frontend.API) error {
	f := NewField(api)
	bapi, err := uints.NewBytes(api)
	if err != nil {
		return err
	}
	fromBytes := f.G1BytesToBigInt(c.Bytes, bapi)
	f.AssertBigEqual(fromBytes, c.X[:])

	byteSign := f.G1BytesToSignFlag(c.Bytes, bapi)
	api.AssertIsEqual(byteSign, c.SignFlag)

	bigIntSign := f.G1BigIntToSignFlag(c.Y[:])
	api.AssertIsEqual(bigIntSign, c.SignFlag)
	return nil
}

func TestG1CompressedEncoding(t *testing.T) {
	rnd := rand.New(rand.NewSource(61))
	for iter := 0; iter < 4; iter++ {
		p := randG1(rnd)
		compressed := p.Bytes()

		w := &g1BytesCircuit{}
		for i := 0; i < G1PointSize; i++ {
			w.Bytes[i] = uints.NewU8(compressed[i])
		}
		assignG1(w.X[:], w.Y[:], p)

		// the encoded sign matches sgn0(y) = 2y >= q
		y := p.Y.BigInt(new(big.Int))
		doubled := new(big.Int).Lsh(y, 1)
		if doubled.Cmp(qBig) < 0 {
			w.SignFlag = 0
		} else {
			w.SignFlag = 1
		}

		require.NoError(t, gnark_test.IsSolved(&g1BytesCircuit{}, w, ecc.BN254.ScalarField()))
	}
}
