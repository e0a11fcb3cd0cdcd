package types

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	bn254_fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
	zrntcommon "github.com/protolambda/zrnt/eth2/beacon/common"

	circuit "github.com/kysee/zk-lightclient/circuits"
)

// Host-side witness construction. Everything here mirrors a circuit gadget
// bit for bit; the circuit re-derives these values, so a mismatch surfaces as
// an unsatisfiable witness rather than a wrong proof.

// FpToRegisters decomposes a base field element into 55-bit registers, least
// significant first.
func FpToRegisters(v *big.Int) [circuit.NumRegisters]uint64 {
	var out [circuit.NumRegisters]uint64
	mask := new(big.Int).Lsh(big.NewInt(1), circuit.NumBitsPerRegister)
	mask.Sub(mask, big.NewInt(1))
	rest := new(big.Int).Set(v)
	tmp := new(big.Int)
	for i := range out {
		out[i] = tmp.And(rest, mask).Uint64()
		rest.Rsh(rest, circuit.NumBitsPerRegister)
	}
	return out
}

// PubkeyRegisters converts an affine G1 point into register form.
func PubkeyRegisters(p bls12381.G1Affine) (x, y [circuit.NumRegisters]uint64) {
	return FpToRegisters(p.X.BigInt(new(big.Int))), FpToRegisters(p.Y.BigInt(new(big.Int)))
}

// SignatureRegisters converts an affine G2 point into the circuit's
// [coordinate][tower degree][register] layout.
func SignatureRegisters(s bls12381.G2Affine) [2][2][circuit.NumRegisters]uint64 {
	var out [2][2][circuit.NumRegisters]uint64
	out[0][0] = FpToRegisters(s.X.A0.BigInt(new(big.Int)))
	out[0][1] = FpToRegisters(s.X.A1.BigInt(new(big.Int)))
	out[1][0] = FpToRegisters(s.Y.A0.BigInt(new(big.Int)))
	out[1][1] = FpToRegisters(s.Y.A1.BigInt(new(big.Int)))
	return out
}

// Uint64ToChunk encodes a uint64 as a zero-padded 32-byte SSZ chunk.
func Uint64ToChunk(v uint64) [32]byte {
	var chunk [32]byte
	binary.LittleEndian.PutUint64(chunk[:8], v)
	return chunk
}

// HeaderChunks expands a beacon header into its five 32-byte SSZ leaves.
func HeaderChunks(h *zrntcommon.BeaconBlockHeader) (slot, proposer, parent, state, body [32]byte) {
	slot = Uint64ToChunk(uint64(h.Slot))
	proposer = Uint64ToChunk(uint64(h.ProposerIndex))
	copy(parent[:], h.ParentRoot[:])
	copy(state[:], h.StateRoot[:])
	copy(body[:], h.BodyRoot[:])
	return
}

// ComputeSyncCommitteePoseidon mirrors the in-circuit sponge over the
// interleaved x/y registers of the committee keys.
func ComputeSyncCommitteePoseidon(pubkeys []bls12381.G1Affine) (*big.Int, error) {
	flat := make([]bn254_fr.Element, 0, len(pubkeys)*2*circuit.NumRegisters)
	for i := range pubkeys {
		x, y := PubkeyRegisters(pubkeys[i])
		for j := 0; j < circuit.NumRegisters; j++ {
			var ex, ey bn254_fr.Element
			ex.SetUint64(x[j])
			ey.SetUint64(y[j])
			flat = append(flat, ex, ey)
		}
	}
	if len(flat)%circuit.PoseidonRate != 0 {
		return nil, fmt.Errorf("poseidon commitment: %d scalars do not fill whole sponge chunks", len(flat))
	}

	perm := poseidon2.NewPermutation(circuit.PoseidonWidth, circuit.PoseidonFullRounds, circuit.PoseidonPartialRounds)
	rounds := len(flat) / circuit.PoseidonRate
	var carry bn254_fr.Element
	state := make([]bn254_fr.Element, circuit.PoseidonWidth)
	for i := 0; i < rounds; i++ {
		state[0] = carry
		copy(state[1:], flat[i*circuit.PoseidonRate:(i+1)*circuit.PoseidonRate])
		if err := perm.Permutation(state); err != nil {
			return nil, fmt.Errorf("poseidon round %d: %w", i, err)
		}
		carry = state[0]
	}
	return state[1].BigInt(new(big.Int)), nil
}

// scalarToLEBytes32 writes a scalar as 32 little-endian bytes.
func scalarToLEBytes32(v *big.Int) [32]byte {
	var out [32]byte
	be := v.Bytes()
	for i, b := range be {
		out[len(be)-1-i] = b
	}
	return out
}

// ComputePublicInputsRoot mirrors the in-circuit chained SHA-256 commitment
// and truncates it to 253 bits so it fits a single scalar.
func ComputePublicInputsRoot(
	attestedSlot, finalizedSlot uint64,
	finalizedHeaderRoot [32]byte,
	participation int,
	executionStateRoot [32]byte,
	syncCommitteePoseidon *big.Int,
) *big.Int {
	aChunk := Uint64ToChunk(attestedSlot)
	fChunk := Uint64ToChunk(finalizedSlot)
	h := sha256Pair(aChunk[:], fChunk[:])
	h = sha256Pair(h, finalizedHeaderRoot[:])
	participationLE := scalarToLEBytes32(big.NewInt(int64(participation)))
	h = sha256Pair(h, participationLE[:])
	h = sha256Pair(h, executionStateRoot[:])
	poseidonLE := scalarToLEBytes32(syncCommitteePoseidon)
	h = sha256Pair(h, poseidonLE[:])

	// take bit i of the little-endian bit reading of the digest
	root := new(big.Int)
	for i := 0; i < circuit.TruncatedSha256Size; i++ {
		if (h[i/8]>>(i%8))&1 == 1 {
			root.SetBit(root, i, 1)
		}
	}
	return root
}

func sha256Pair(a, b []byte) []byte {
	hasher := sha256.New()
	hasher.Write(a)
	hasher.Write(b)
	return hasher.Sum(nil)
}
