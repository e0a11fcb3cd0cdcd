package types

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
	gnark_test "github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"

	circuit "github.com/kysee/zk-lightclient/circuits"
)

func randomG1Points(seed int64, n int) []bls12381.G1Affine {
	rnd := rand.New(rand.NewSource(seed))
	_, _, g1, _ := bls12381.Generators()
	out := make([]bls12381.G1Affine, n)
	for i := range out {
		s := new(big.Int).Rand(rnd, big.NewInt(1<<62))
		out[i].ScalarMultiplication(&g1, s)
	}
	return out
}

type poseidonMirrorCircuit struct {
	X, Y [8][circuit.NumRegisters]frontend.Variable
	Root frontend.Variable
}

func (c *poseidonMirrorCircuit) Define(api frontend.API) error {
	points := make([][2][]frontend.Variable, len(c.X))
	for i := range c.X {
		points[i] = [2][]frontend.Variable{c.X[i][:], c.Y[i][:]}
	}
	root, err := circuit.PoseidonG1Array(api, points)
	if err != nil {
		return err
	}
	api.AssertIsEqual(root, c.Root)
	return nil
}

// TestPoseidonMirror pins the host-side sponge to the in-circuit one.
func TestPoseidonMirror(t *testing.T) {
	points := randomG1Points(101, 8)
	expected, err := ComputeSyncCommitteePoseidon(points)
	require.NoError(t, err)

	w := &poseidonMirrorCircuit{Root: expected}
	for i := range points {
		x, y := PubkeyRegisters(points[i])
		for j := 0; j < circuit.NumRegisters; j++ {
			w.X[i][j] = x[j]
			w.Y[i][j] = y[j]
		}
	}
	require.NoError(t, gnark_test.IsSolved(&poseidonMirrorCircuit{}, w, ecc.BN254.ScalarField()))
}

// TestPoseidonOrderSensitivity: the commitment must depend on key order.
func TestPoseidonOrderSensitivity(t *testing.T) {
	points := randomG1Points(102, 8)
	a, err := ComputeSyncCommitteePoseidon(points)
	require.NoError(t, err)

	points[2], points[5] = points[5], points[2]
	b, err := ComputeSyncCommitteePoseidon(points)
	require.NoError(t, err)
	require.NotEqual(t, a.Cmp(b), 0, "swapping keys must change the commitment")

	// changing a single key changes the output too
	points = randomG1Points(103, 8)
	c, err := ComputeSyncCommitteePoseidon(points)
	require.NoError(t, err)
	var g2 bls12381.G1Affine
	_, _, g1, _ := bls12381.Generators()
	g2.ScalarMultiplication(&g1, big.NewInt(987654321))
	points[7] = g2
	d, err := ComputeSyncCommitteePoseidon(points)
	require.NoError(t, err)
	require.NotEqual(t, c.Cmp(d), 0, "changing a key must change the commitment")
}

type commitMirrorCircuit struct {
	AttestedSlot       [32]uints.U8
	FinalizedSlot      [32]uints.U8
	FinalizedRoot      [32]uints.U8
	ExecutionStateRoot [32]uints.U8
	Participation      frontend.Variable
	Poseidon           frontend.Variable
	Root               frontend.Variable
}

func (c *commitMirrorCircuit) Define(api frontend.API) error {
	bits, err := circuit.CommitToPublicInputsForStep(api,
		c.AttestedSlot, c.FinalizedSlot, c.FinalizedRoot, c.ExecutionStateRoot,
		c.Participation, c.Poseidon)
	if err != nil {
		return err
	}
	rootBits := api.ToBinary(c.Root, circuit.TruncatedSha256Size)
	for i := range bits {
		api.AssertIsEqual(rootBits[i], bits[i])
	}
	return nil
}

// TestPublicInputsRootMirror pins the host-side truncated commitment to the
// in-circuit chain.
func TestPublicInputsRootMirror(t *testing.T) {
	rnd := rand.New(rand.NewSource(104))
	var finalizedRoot, executionRoot [32]byte
	rnd.Read(finalizedRoot[:])
	rnd.Read(executionRoot[:])

	attestedSlot := uint64(6209536)
	finalizedSlot := uint64(6209472)
	participation := 400
	poseidon := new(big.Int).Rand(rnd, new(big.Int).Lsh(big.NewInt(1), 253))

	root := ComputePublicInputsRoot(attestedSlot, finalizedSlot, finalizedRoot,
		participation, executionRoot, poseidon)

	w := &commitMirrorCircuit{
		Participation: participation,
		Poseidon:      poseidon,
		Root:          root,
	}
	aChunk := Uint64ToChunk(attestedSlot)
	fChunk := Uint64ToChunk(finalizedSlot)
	for i := 0; i < 32; i++ {
		w.AttestedSlot[i] = uints.NewU8(aChunk[i])
		w.FinalizedSlot[i] = uints.NewU8(fChunk[i])
		w.FinalizedRoot[i] = uints.NewU8(finalizedRoot[i])
		w.ExecutionStateRoot[i] = uints.NewU8(executionRoot[i])
	}
	require.NoError(t, gnark_test.IsSolved(&commitMirrorCircuit{}, w, ecc.BN254.ScalarField()))
}

func TestFpToRegistersRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(105))
	v := new(big.Int).Rand(rnd, new(big.Int).Lsh(big.NewInt(1), 381))
	regs := FpToRegisters(v)

	back := new(big.Int)
	for i := len(regs) - 1; i >= 0; i-- {
		back.Lsh(back, circuit.NumBitsPerRegister)
		back.Add(back, new(big.Int).SetUint64(regs[i]))
	}
	require.Zero(t, v.Cmp(back))
}
