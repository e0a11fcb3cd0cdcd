package circuit

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
)

// RotateCircuit runs once per sync-committee period: it proves that the
// committee committed to in the finalized state is the one whose keys are
// bound to a SNARK-friendly Poseidon commitment, so Step never has to touch
// the byte encodings again.
type RotateCircuit struct {
	// Sync committee
	PubkeysBytes          [SyncCommitteeSize][G1PointSize]uints.U8
	AggregatePubkeyBytesX [G1PointSize]uints.U8
	PubkeysBigIntX        [SyncCommitteeSize][NumRegisters]frontend.Variable
	PubkeysBigIntY        [SyncCommitteeSize][NumRegisters]frontend.Variable
	SyncCommitteeBranch   [SyncCommitteeDepth][32]uints.U8

	// Finalized header
	FinalizedSlot          [32]uints.U8
	FinalizedProposerIndex [32]uints.U8
	FinalizedParentRoot    [32]uints.U8
	FinalizedStateRoot     [32]uints.U8
	FinalizedBodyRoot      [32]uints.U8

	FinalizedHeaderRoot   [32]uints.U8      `gnark:",public"`
	SyncCommitteePoseidon frontend.Variable `gnark:",public"`
	SyncCommitteeSSZ      [32]uints.U8      `gnark:",public"`
}

func (c *RotateCircuit) Define(api frontend.API) error {
	f := NewField(api)
	bapi, err := uints.NewBytes(api)
	if err != nil {
		return fmt.Errorf("bytes api: %w", err)
	}

	// finalized header hashes to its declared root
	finalizedRoot, err := SSZPhase0BeaconBlockHeader(api,
		c.FinalizedSlot, c.FinalizedProposerIndex, c.FinalizedParentRoot,
		c.FinalizedStateRoot, c.FinalizedBodyRoot)
	if err != nil {
		return fmt.Errorf("finalized header root: %w", err)
	}
	assertBytesEqual(api, finalizedRoot, c.FinalizedHeaderRoot)

	// the committee SSZ root sits in the finalized state
	committeeRoot, err := SSZRestoreMerkleRoot(api, c.SyncCommitteeSSZ,
		c.SyncCommitteeBranch[:], SyncCommitteeIndex)
	if err != nil {
		return fmt.Errorf("sync committee proof: %w", err)
	}
	assertBytesEqual(api, committeeRoot, c.FinalizedStateRoot)

	qc := f.QConst()
	for i := 0; i < SyncCommitteeSize; i++ {
		x := c.PubkeysBigIntX[i][:]
		y := c.PubkeysBigIntY[i][:]

		// registers well-formed and reduced
		f.RangeCheckRegisters(x)
		f.RangeCheckRegisters(y)
		api.AssertIsEqual(f.BigLessThan(x, qc), 1)
		api.AssertIsEqual(f.BigLessThan(y, qc), 1)

		// byte and register forms agree on the x coordinate
		fromBytes := f.G1BytesToBigInt(c.PubkeysBytes[i], bapi)
		f.AssertBigEqual(fromBytes, x)

		// the witnessed y puts the key on the curve with the encoded sign
		f.PointOnBLSCurveNoCheck(G1Point{X: x, Y: y})
		byteSign := f.G1BytesToSignFlag(c.PubkeysBytes[i], bapi)
		bigIntSign := f.G1BigIntToSignFlag(y)
		api.AssertIsEqual(byteSign, bigIntSign)
	}

	// SSZ commitment over the byte encodings
	committeeSSZ, err := SSZPhase0SyncCommittee(api, c.PubkeysBytes, c.AggregatePubkeyBytesX)
	if err != nil {
		return fmt.Errorf("sync committee ssz: %w", err)
	}
	assertBytesEqual(api, committeeSSZ, c.SyncCommitteeSSZ)

	// Poseidon commitment over the register form
	points := make([][2][]frontend.Variable, SyncCommitteeSize)
	for i := 0; i < SyncCommitteeSize; i++ {
		points[i] = [2][]frontend.Variable{c.PubkeysBigIntX[i][:], c.PubkeysBigIntY[i][:]}
	}
	poseidon, err := PoseidonG1Array(api, points)
	if err != nil {
		return fmt.Errorf("poseidon commitment: %w", err)
	}
	api.AssertIsEqual(poseidon, c.SyncCommitteePoseidon)

	return nil
}
