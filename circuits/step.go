package circuit

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
)

// StepCircuit proves one light-client update: the sync committee signed the
// attested header, the finalized header is committed inside the attested
// state, and the execution state root is committed inside the finalized body.
// All beacon data is private; the only public input is the truncated SHA-256
// commitment to the data the contract needs.
type StepCircuit struct {
	// Attested header, as 32-byte SSZ chunks
	AttestedHeaderRoot    [32]uints.U8
	AttestedSlot          [32]uints.U8
	AttestedProposerIndex [32]uints.U8
	AttestedParentRoot    [32]uints.U8
	AttestedStateRoot     [32]uints.U8
	AttestedBodyRoot      [32]uints.U8

	// Finalized header
	FinalizedHeaderRoot    [32]uints.U8
	FinalizedSlot          [32]uints.U8
	FinalizedProposerIndex [32]uints.U8
	FinalizedParentRoot    [32]uints.U8
	FinalizedStateRoot     [32]uints.U8
	FinalizedBodyRoot      [32]uints.U8

	// Sync committee protocol
	PubkeysX              [SyncCommitteeSize][NumRegisters]frontend.Variable
	PubkeysY              [SyncCommitteeSize][NumRegisters]frontend.Variable
	AggregationBits       [SyncCommitteeSize]frontend.Variable
	Signature             [2][2][NumRegisters]frontend.Variable
	Domain                [32]uints.U8
	SigningRoot           [32]uints.U8
	Participation         frontend.Variable
	SyncCommitteePoseidon frontend.Variable

	// Finality proof
	FinalityBranch [FinalizedHeaderDepth][32]uints.U8

	// Execution state proof
	ExecutionStateRoot   [32]uints.U8
	ExecutionStateBranch [ExecutionStateRootDepth][32]uints.U8

	PublicInputsRoot frontend.Variable `gnark:",public"`
}

func (c *StepCircuit) Define(api frontend.API) error {
	f := NewField(api)

	// bind the public commitment to the private data
	commitment, err := CommitToPublicInputsForStep(api,
		c.AttestedSlot, c.FinalizedSlot, c.FinalizedHeaderRoot, c.ExecutionStateRoot,
		c.Participation, c.SyncCommitteePoseidon)
	if err != nil {
		return fmt.Errorf("public input commitment: %w", err)
	}
	rootBits := api.ToBinary(c.PublicInputsRoot, TruncatedSha256Size)
	for i := 0; i < TruncatedSha256Size; i++ {
		api.AssertIsEqual(rootBits[i], commitment[i])
	}

	// headers must hash to their declared roots
	attestedRoot, err := SSZPhase0BeaconBlockHeader(api,
		c.AttestedSlot, c.AttestedProposerIndex, c.AttestedParentRoot,
		c.AttestedStateRoot, c.AttestedBodyRoot)
	if err != nil {
		return fmt.Errorf("attested header root: %w", err)
	}
	assertBytesEqual(api, attestedRoot, c.AttestedHeaderRoot)

	finalizedRoot, err := SSZPhase0BeaconBlockHeader(api,
		c.FinalizedSlot, c.FinalizedProposerIndex, c.FinalizedParentRoot,
		c.FinalizedStateRoot, c.FinalizedBodyRoot)
	if err != nil {
		return fmt.Errorf("finalized header root: %w", err)
	}
	assertBytesEqual(api, finalizedRoot, c.FinalizedHeaderRoot)

	signingRoot, err := SSZPhase0SigningRoot(api, c.AttestedHeaderRoot, c.Domain)
	if err != nil {
		return fmt.Errorf("signing root: %w", err)
	}
	assertBytesEqual(api, signingRoot, c.SigningRoot)

	// aggregate signature over the signing root
	pubkeys := make([]G1Point, SyncCommitteeSize)
	for i := 0; i < SyncCommitteeSize; i++ {
		pubkeys[i] = G1Point{X: c.PubkeysX[i][:], Y: c.PubkeysY[i][:]}
	}
	signature := G2Point{
		X: E2{A0: c.Signature[0][0][:], A1: c.Signature[0][1][:]},
		Y: E2{A0: c.Signature[1][0][:], A1: c.Signature[1][1][:]},
	}
	participation, err := f.VerifySyncCommitteeSignature(
		pubkeys, c.AggregationBits[:], signature, c.SigningRoot, c.SyncCommitteePoseidon)
	if err != nil {
		return fmt.Errorf("sync committee signature: %w", err)
	}
	api.AssertIsEqual(participation, c.Participation)

	// finality proof: finalized header root sits in the attested state
	finality, err := SSZRestoreMerkleRoot(api, c.FinalizedHeaderRoot,
		c.FinalityBranch[:], FinalizedHeaderIndex)
	if err != nil {
		return fmt.Errorf("finality proof: %w", err)
	}
	assertBytesEqual(api, finality, c.AttestedStateRoot)

	// execution proof: execution state root sits in the finalized body
	execution, err := SSZRestoreMerkleRoot(api, c.ExecutionStateRoot,
		c.ExecutionStateBranch[:], ExecutionStateRootIndex)
	if err != nil {
		return fmt.Errorf("execution state proof: %w", err)
	}
	assertBytesEqual(api, execution, c.FinalizedBodyRoot)

	return nil
}

