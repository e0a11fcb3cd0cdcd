package relayer

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark/std/math/uints"
	"github.com/protolambda/zrnt/eth2/configs"
	"github.com/protolambda/ztyp/tree"

	circuit "github.com/kysee/zk-lightclient/circuits"
	"github.com/kysee/zk-lightclient/types"
)

// Witness assignment for the Step and Rotate circuits. All derived values
// (roots, commitments, participation) are recomputed in-circuit; anything
// inconsistent here surfaces as an unsatisfiable witness, not a bad proof.

func hexToRoot(s string) ([32]byte, error) {
	var out [32]byte
	raw, err := types.HexToBytes(s)
	if err != nil {
		return out, err
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

func assignChunk(dst *[32]uints.U8, src [32]byte) {
	for i := 0; i < 32; i++ {
		dst[i] = uints.NewU8(src[i])
	}
}

func assignBranch(dst [][32]uints.U8, src []string) error {
	if len(src) < len(dst) {
		return fmt.Errorf("branch has %d nodes, need %d", len(src), len(dst))
	}
	for i := range dst {
		node, err := hexToRoot(src[i])
		if err != nil {
			return fmt.Errorf("branch node %d: %w", i, err)
		}
		assignChunk(&dst[i], node)
	}
	return nil
}

// BuildStepAssignment assembles a Step witness from a light client update and
// the current committee keys.
func BuildStepAssignment(
	update *types.LightClientUpdate,
	pubkeys *[circuit.SyncCommitteeSize]bls12381.G1Affine,
	domain [32]byte,
) (*circuit.StepCircuit, error) {
	w := &circuit.StepCircuit{}
	hFn := tree.GetHashFn()

	// headers
	attested := &update.Data.AttestedHeader.Beacon
	finalized := &update.Data.FinalizedHeader.Beacon
	aSlot, aProposer, aParent, aState, aBody := types.HeaderChunks(attested)
	fSlot, fProposer, fParent, fState, fBody := types.HeaderChunks(finalized)
	assignChunk(&w.AttestedSlot, aSlot)
	assignChunk(&w.AttestedProposerIndex, aProposer)
	assignChunk(&w.AttestedParentRoot, aParent)
	assignChunk(&w.AttestedStateRoot, aState)
	assignChunk(&w.AttestedBodyRoot, aBody)
	assignChunk(&w.FinalizedSlot, fSlot)
	assignChunk(&w.FinalizedProposerIndex, fProposer)
	assignChunk(&w.FinalizedParentRoot, fParent)
	assignChunk(&w.FinalizedStateRoot, fState)
	assignChunk(&w.FinalizedBodyRoot, fBody)

	attestedRoot := attested.HashTreeRoot(hFn)
	finalizedRoot := finalized.HashTreeRoot(hFn)
	assignChunk(&w.AttestedHeaderRoot, [32]byte(attestedRoot))
	assignChunk(&w.FinalizedHeaderRoot, [32]byte(finalizedRoot))

	// signing root over the attested header
	assignChunk(&w.Domain, domain)
	hasher := sha256.New()
	hasher.Write(attestedRoot[:])
	hasher.Write(domain[:])
	var signingRoot [32]byte
	copy(signingRoot[:], hasher.Sum(nil))
	assignChunk(&w.SigningRoot, signingRoot)

	// committee keys and aggregation bitmap
	bits := types.ParseSyncCommitteeBits(update.Data.SyncAggregate.SyncCommitteeBits)
	participation := 0
	for i := 0; i < circuit.SyncCommitteeSize; i++ {
		x, y := types.PubkeyRegisters(pubkeys[i])
		for j := 0; j < circuit.NumRegisters; j++ {
			w.PubkeysX[i][j] = x[j]
			w.PubkeysY[i][j] = y[j]
		}
		if bits[i] {
			w.AggregationBits[i] = 1
			participation++
		} else {
			w.AggregationBits[i] = 0
		}
	}
	w.Participation = participation

	var signature bls12381.G2Affine
	if _, err := signature.SetBytes(update.Data.SyncAggregate.SyncCommitteeSignature[:]); err != nil {
		return nil, fmt.Errorf("deserialize signature: %w", err)
	}
	sigRegs := types.SignatureRegisters(signature)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for l := 0; l < circuit.NumRegisters; l++ {
				w.Signature[i][j][l] = sigRegs[i][j][l]
			}
		}
	}

	poseidon, err := types.ComputeSyncCommitteePoseidon(pubkeys[:])
	if err != nil {
		return nil, fmt.Errorf("poseidon commitment: %w", err)
	}
	w.SyncCommitteePoseidon = poseidon

	// finality and execution proofs
	if err := assignBranch(w.FinalityBranch[:], update.Data.FinalityBranch); err != nil {
		return nil, fmt.Errorf("finality branch: %w", err)
	}
	executionStateRoot, err := hexToRoot(update.Data.FinalizedHeader.Execution.StateRoot)
	if err != nil {
		return nil, fmt.Errorf("execution state root: %w", err)
	}
	assignChunk(&w.ExecutionStateRoot, executionStateRoot)
	if err := assignBranch(w.ExecutionStateBranch[:], update.Data.FinalizedHeader.ExecutionBranch); err != nil {
		return nil, fmt.Errorf("execution branch: %w", err)
	}

	w.PublicInputsRoot = types.ComputePublicInputsRoot(
		uint64(attested.Slot), uint64(finalized.Slot),
		[32]byte(finalizedRoot), participation, executionStateRoot, poseidon)

	return w, nil
}

// BuildRotateAssignment assembles a Rotate witness binding the next committee
// to its SSZ and Poseidon commitments.
func BuildRotateAssignment(update *types.LightClientUpdate) (*circuit.RotateCircuit, error) {
	w := &circuit.RotateCircuit{}
	hFn := tree.GetHashFn()

	committee := &update.Data.NextSyncCommittee
	if len(committee.Pubkeys) != circuit.SyncCommitteeSize {
		return nil, fmt.Errorf("committee has %d keys, want %d", len(committee.Pubkeys), circuit.SyncCommitteeSize)
	}

	var pubkeys [circuit.SyncCommitteeSize]bls12381.G1Affine
	for i := 0; i < circuit.SyncCommitteeSize; i++ {
		raw := committee.Pubkeys[i]
		for j := 0; j < circuit.G1PointSize; j++ {
			w.PubkeysBytes[i][j] = uints.NewU8(raw[j])
		}
		if _, err := pubkeys[i].SetBytes(raw[:]); err != nil {
			return nil, fmt.Errorf("deserialize pubkey %d: %w", i, err)
		}
		x, y := types.PubkeyRegisters(pubkeys[i])
		for j := 0; j < circuit.NumRegisters; j++ {
			w.PubkeysBigIntX[i][j] = x[j]
			w.PubkeysBigIntY[i][j] = y[j]
		}
	}
	for j := 0; j < circuit.G1PointSize; j++ {
		w.AggregatePubkeyBytesX[j] = uints.NewU8(committee.AggregatePubkey[j])
	}

	// committee commitments
	sszRoot := committee.HashTreeRoot(configs.Mainnet, hFn)
	var sszRootBytes [32]byte
	copy(sszRootBytes[:], sszRoot[:])
	assignChunk(&w.SyncCommitteeSSZ, sszRootBytes)

	poseidon, err := types.ComputeSyncCommitteePoseidon(pubkeys[:])
	if err != nil {
		return nil, fmt.Errorf("poseidon commitment: %w", err)
	}
	w.SyncCommitteePoseidon = new(big.Int).Set(poseidon)

	// committee inclusion proof against the finalized state
	if len(update.Data.NextSyncCommitteeBranch) < circuit.SyncCommitteeDepth {
		return nil, fmt.Errorf("committee branch has %d nodes, need %d",
			len(update.Data.NextSyncCommitteeBranch), circuit.SyncCommitteeDepth)
	}
	for i := 0; i < circuit.SyncCommitteeDepth; i++ {
		var node [32]byte
		copy(node[:], update.Data.NextSyncCommitteeBranch[i][:])
		assignChunk(&w.SyncCommitteeBranch[i], node)
	}

	// finalized header
	finalized := &update.Data.FinalizedHeader.Beacon
	fSlot, fProposer, fParent, fState, fBody := types.HeaderChunks(finalized)
	assignChunk(&w.FinalizedSlot, fSlot)
	assignChunk(&w.FinalizedProposerIndex, fProposer)
	assignChunk(&w.FinalizedParentRoot, fParent)
	assignChunk(&w.FinalizedStateRoot, fState)
	assignChunk(&w.FinalizedBodyRoot, fBody)
	finalizedRoot := finalized.HashTreeRoot(hFn)
	assignChunk(&w.FinalizedHeaderRoot, [32]byte(finalizedRoot))

	return w, nil
}
