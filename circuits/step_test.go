package circuit_test

import (
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"math/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	bls12381fr "github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark/std/math/uints"
	gnark_test "github.com/consensys/gnark/test"
	zrntaltair "github.com/protolambda/zrnt/eth2/beacon/altair"
	zrntcommon "github.com/protolambda/zrnt/eth2/beacon/common"
	"github.com/protolambda/zrnt/eth2/configs"
	"github.com/protolambda/ztyp/tree"
	"github.com/stretchr/testify/require"

	circuit "github.com/kysee/zk-lightclient/circuits"
	relayer "github.com/kysee/zk-lightclient/provers"
	"github.com/kysee/zk-lightclient/types"
)

// The end-to-end witnesses are synthesized: a fresh committee of 512 keys
// signs a fabricated but structurally exact light-client update, so every
// hash, branch and commitment is reproducible bit for bit without canned
// network captures.

const testParticipation = 400

type testFixture struct {
	update    *types.LightClientUpdate
	pubkeys   [circuit.SyncCommitteeSize]bls12381.G1Affine
	domain    [32]byte
	signature bls12381.G2Affine
}

func hexRoot(r [32]byte) string {
	return "0x" + hex.EncodeToString(r[:])
}

// restoreRoot walks a branch exactly as the circuit does.
func restoreRoot(leaf [32]byte, branch [][32]byte, index int) [32]byte {
	current := leaf
	for i := range branch {
		h := sha256.New()
		if (index>>i)&1 == 1 {
			h.Write(branch[i][:])
			h.Write(current[:])
		} else {
			h.Write(current[:])
			h.Write(branch[i][:])
		}
		copy(current[:], h.Sum(nil))
	}
	return current
}

func buildTestFixture(t *testing.T, seed int64) *testFixture {
	t.Helper()
	rnd := rand.New(rand.NewSource(seed))
	_, _, g1, _ := bls12381.Generators()
	rMod := bls12381fr.Modulus()

	fx := &testFixture{update: &types.LightClientUpdate{}}
	update := fx.update

	// committee keys
	sks := make([]*big.Int, circuit.SyncCommitteeSize)
	committeePubkeys := make([]zrntcommon.BLSPubkey, circuit.SyncCommitteeSize)
	var aggregateAll bls12381.G1Affine
	aggregateAll.SetInfinity()
	for i := 0; i < circuit.SyncCommitteeSize; i++ {
		sks[i] = new(big.Int).Rand(rnd, rMod)
		fx.pubkeys[i].ScalarMultiplication(&g1, sks[i])
		committeePubkeys[i] = zrntcommon.BLSPubkey(fx.pubkeys[i].Bytes())
		aggregateAll.Add(&aggregateAll, &fx.pubkeys[i])
	}
	update.Data.NextSyncCommittee = zrntcommon.SyncCommittee{
		Pubkeys:         committeePubkeys,
		AggregatePubkey: zrntcommon.BLSPubkey(aggregateAll.Bytes()),
	}

	// committee inclusion branch into the finalized state
	committeeSSZ := update.Data.NextSyncCommittee.HashTreeRoot(configs.Mainnet, tree.GetHashFn())
	committeeBranch := make([][32]byte, circuit.SyncCommitteeDepth)
	update.Data.NextSyncCommitteeBranch = make([]zrntcommon.Root, circuit.SyncCommitteeDepth)
	for i := range committeeBranch {
		rnd.Read(committeeBranch[i][:])
		update.Data.NextSyncCommitteeBranch[i] = zrntcommon.Root(committeeBranch[i])
	}
	finalizedStateRoot := restoreRoot(committeeSSZ, committeeBranch, circuit.SyncCommitteeIndex)

	// execution state inside the finalized body
	var executionStateRoot [32]byte
	rnd.Read(executionStateRoot[:])
	executionBranch := make([][32]byte, circuit.ExecutionStateRootDepth)
	executionBranchHex := make([]string, circuit.ExecutionStateRootDepth)
	for i := range executionBranch {
		rnd.Read(executionBranch[i][:])
		executionBranchHex[i] = hexRoot(executionBranch[i])
	}
	finalizedBodyRoot := restoreRoot(executionStateRoot, executionBranch, circuit.ExecutionStateRootIndex)

	// finalized header
	finalized := zrntcommon.BeaconBlockHeader{
		Slot:          zrntcommon.Slot(6209472),
		ProposerIndex: zrntcommon.ValidatorIndex(93021),
	}
	rnd.Read(finalized.ParentRoot[:])
	finalized.StateRoot = zrntcommon.Root(finalizedStateRoot)
	finalized.BodyRoot = zrntcommon.Root(finalizedBodyRoot)
	update.Data.FinalizedHeader.Beacon = finalized
	update.Data.FinalizedHeader.Execution.StateRoot = hexRoot(executionStateRoot)
	update.Data.FinalizedHeader.ExecutionBranch = executionBranchHex
	finalizedRoot := finalized.HashTreeRoot(tree.GetHashFn())

	// finality branch into the attested state
	finalityBranch := make([][32]byte, circuit.FinalizedHeaderDepth)
	finalityBranchHex := make([]string, circuit.FinalizedHeaderDepth)
	for i := range finalityBranch {
		rnd.Read(finalityBranch[i][:])
		finalityBranchHex[i] = hexRoot(finalityBranch[i])
	}
	attestedStateRoot := restoreRoot(finalizedRoot, finalityBranch, circuit.FinalizedHeaderIndex)
	update.Data.FinalityBranch = finalityBranchHex

	attested := zrntcommon.BeaconBlockHeader{
		Slot:          zrntcommon.Slot(6209536),
		ProposerIndex: zrntcommon.ValidatorIndex(58113),
	}
	rnd.Read(attested.ParentRoot[:])
	rnd.Read(attested.BodyRoot[:])
	attested.StateRoot = zrntcommon.Root(attestedStateRoot)
	update.Data.AttestedHeader.Beacon = attested
	attestedRoot := attested.HashTreeRoot(tree.GetHashFn())

	// domain and signing root
	domain, err := types.ComputeDomain(
		[]byte{0x07, 0x00, 0x00, 0x00},
		[]byte{0x90, 0x00, 0x00, 0x75},
		make([]byte, 32))
	require.NoError(t, err)
	fx.domain = domain

	h := sha256.New()
	h.Write(attestedRoot[:])
	h.Write(domain[:])
	var signingRoot [32]byte
	copy(signingRoot[:], h.Sum(nil))

	// the first testParticipation validators sign
	bitsBytes := make([]byte, circuit.SyncCommitteeSize/8)
	signingKey := new(big.Int)
	for i := 0; i < testParticipation; i++ {
		bitsBytes[i/8] |= 1 << (i % 8)
		signingKey.Add(signingKey, sks[i])
	}
	signingKey.Mod(signingKey, rMod)

	hm, err := bls12381.HashToG2(signingRoot[:], circuit.DomainSeparatorTag)
	require.NoError(t, err)
	fx.signature.ScalarMultiplication(&hm, signingKey)

	update.Data.SyncAggregate = zrntaltair.SyncAggregate{
		SyncCommitteeBits:      zrntaltair.SyncCommitteeBits(bitsBytes),
		SyncCommitteeSignature: zrntcommon.BLSSignature(fx.signature.Bytes()),
	}
	return fx
}

func TestStepCircuitIsSolved(t *testing.T) {
	if testing.Short() {
		t.Skip("full Step circuit in the test engine")
	}
	fx := buildTestFixture(t, 1)
	w, err := relayer.BuildStepAssignment(fx.update, &fx.pubkeys, fx.domain)
	require.NoError(t, err)

	err = gnark_test.IsSolved(&circuit.StepCircuit{}, w, ecc.BN254.ScalarField())
	require.NoError(t, err, "step constraints should be satisfied")
}

func TestStepWrongSignature(t *testing.T) {
	if testing.Short() {
		t.Skip("full Step circuit in the test engine")
	}
	fx := buildTestFixture(t, 2)
	w, err := relayer.BuildStepAssignment(fx.update, &fx.pubkeys, fx.domain)
	require.NoError(t, err)

	// mutate one register of the signature
	w.Signature[0][0][0] = 12345

	err = gnark_test.IsSolved(&circuit.StepCircuit{}, w, ecc.BN254.ScalarField())
	require.Error(t, err, "a corrupted signature must not satisfy the pairing check")
}

func TestStepWrongAggregationBit(t *testing.T) {
	if testing.Short() {
		t.Skip("full Step circuit in the test engine")
	}
	fx := buildTestFixture(t, 3)
	w, err := relayer.BuildStepAssignment(fx.update, &fx.pubkeys, fx.domain)
	require.NoError(t, err)

	// flip a bit: the aggregate no longer matches the signature, and the
	// participation sum changes as well
	w.AggregationBits[0] = 0
	w.Participation = testParticipation - 1
	w.PublicInputsRoot = types.ComputePublicInputsRoot(
		uint64(fx.update.Data.AttestedHeader.Beacon.Slot),
		uint64(fx.update.Data.FinalizedHeader.Beacon.Slot),
		[32]byte(fx.update.Data.FinalizedHeader.Beacon.HashTreeRoot(tree.GetHashFn())),
		testParticipation-1,
		mustHexRoot(t, fx.update.Data.FinalizedHeader.Execution.StateRoot),
		mustPoseidon(t, fx.pubkeys[:]))

	err = gnark_test.IsSolved(&circuit.StepCircuit{}, w, ecc.BN254.ScalarField())
	require.Error(t, err, "a flipped aggregation bit must break the pairing check")
}

func TestStepBadFinalityProof(t *testing.T) {
	if testing.Short() {
		t.Skip("full Step circuit in the test engine")
	}
	fx := buildTestFixture(t, 4)
	w, err := relayer.BuildStepAssignment(fx.update, &fx.pubkeys, fx.domain)
	require.NoError(t, err)

	// zero out one sibling of the finality branch
	for i := 0; i < 32; i++ {
		w.FinalityBranch[2][i] = uints.NewU8(0)
	}

	err = gnark_test.IsSolved(&circuit.StepCircuit{}, w, ecc.BN254.ScalarField())
	require.Error(t, err, "a broken finality branch must not restore the attested state root")
}

func TestStepZeroParticipationRejected(t *testing.T) {
	if testing.Short() {
		t.Skip("full Step circuit in the test engine")
	}
	fx := buildTestFixture(t, 5)
	w, err := relayer.BuildStepAssignment(fx.update, &fx.pubkeys, fx.domain)
	require.NoError(t, err)

	for i := range w.AggregationBits {
		w.AggregationBits[i] = 0
	}
	w.Participation = 0

	err = gnark_test.IsSolved(&circuit.StepCircuit{}, w, ecc.BN254.ScalarField())
	require.Error(t, err, "an empty bitmap must be rejected")
}

func mustHexRoot(t *testing.T, s string) [32]byte {
	t.Helper()
	raw, err := types.HexToBytes(s)
	require.NoError(t, err)
	require.Len(t, raw, 32)
	var out [32]byte
	copy(out[:], raw)
	return out
}

func mustPoseidon(t *testing.T, pubkeys []bls12381.G1Affine) *big.Int {
	t.Helper()
	p, err := types.ComputeSyncCommitteePoseidon(pubkeys)
	require.NoError(t, err)
	return p
}
