package circuit_test

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/std/math/uints"
	gnark_test "github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"

	circuit "github.com/kysee/zk-lightclient/circuits"
	relayer "github.com/kysee/zk-lightclient/provers"
)

func TestRotateCircuitIsSolved(t *testing.T) {
	if testing.Short() {
		t.Skip("full Rotate circuit in the test engine")
	}
	fx := buildTestFixture(t, 11)
	w, err := relayer.BuildRotateAssignment(fx.update)
	require.NoError(t, err)

	err = gnark_test.IsSolved(&circuit.RotateCircuit{}, w, ecc.BN254.ScalarField())
	require.NoError(t, err, "rotate constraints should be satisfied")
}

func TestRotateMismatchedSignBit(t *testing.T) {
	if testing.Short() {
		t.Skip("full Rotate circuit in the test engine")
	}
	fx := buildTestFixture(t, 12)
	w, err := relayer.BuildRotateAssignment(fx.update)
	require.NoError(t, err)

	// flip the sign-of-y bit of one encoded pubkey; the byte-side flag no
	// longer matches the witnessed y coordinate
	raw := fx.update.Data.NextSyncCommittee.Pubkeys[3]
	w.PubkeysBytes[3][0] = uints.NewU8(raw[0] ^ 0x20)

	err = gnark_test.IsSolved(&circuit.RotateCircuit{}, w, ecc.BN254.ScalarField())
	require.Error(t, err, "a flipped sign bit must be rejected")
}

func TestRotateBadCommitteeBranch(t *testing.T) {
	if testing.Short() {
		t.Skip("full Rotate circuit in the test engine")
	}
	fx := buildTestFixture(t, 13)
	w, err := relayer.BuildRotateAssignment(fx.update)
	require.NoError(t, err)

	for i := 0; i < 32; i++ {
		w.SyncCommitteeBranch[1][i] = uints.NewU8(0)
	}

	err = gnark_test.IsSolved(&circuit.RotateCircuit{}, w, ecc.BN254.ScalarField())
	require.Error(t, err, "a broken committee branch must not restore the finalized state root")
}
