package circuit

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/sha2"
	"github.com/consensys/gnark/std/math/uints"
)

// SimpleSerialize (SSZ) Merkleization for the containers this system proves:
// BeaconBlockHeader, SyncCommittee, SigningData and generic branch
// restoration.

// sha256Pair hashes left || right (32 bytes each).
func sha256Pair(api frontend.API, left, right []uints.U8) ([]uints.U8, error) {
	h, err := sha2.New(api)
	if err != nil {
		return nil, fmt.Errorf("sha2: %w", err)
	}
	h.Write(left)
	h.Write(right)
	return h.Sum(), nil
}

// SSZLayer reduces 2p nodes to p nodes by pairwise SHA-256.
func SSZLayer(api frontend.API, in []uints.U8) ([]uints.U8, error) {
	if len(in)%64 != 0 || len(in) < 64 {
		return nil, fmt.Errorf("ssz layer: input of %d bytes is not a whole node pairing", len(in))
	}
	out := make([]uints.U8, 0, len(in)/2)
	for i := 0; i < len(in); i += 64 {
		h, err := sha256Pair(api, in[i:i+32], in[i+32:i+64])
		if err != nil {
			return nil, err
		}
		out = append(out, h...)
	}
	return out, nil
}

// SSZArray Merkleizes 32 * 2^log2b bytes down to a single 32-byte root.
func SSZArray(api frontend.API, in []uints.U8, log2b int) ([]uints.U8, error) {
	if len(in) != 32*(1<<log2b) {
		return nil, fmt.Errorf("ssz array: got %d bytes, want %d", len(in), 32*(1<<log2b))
	}
	nodes := in
	for layer := 0; layer < log2b; layer++ {
		var err error
		nodes, err = SSZLayer(api, nodes)
		if err != nil {
			return nil, err
		}
	}
	return nodes, nil
}

// SSZPhase0BeaconBlockHeader computes the hash tree root of the five header
// fields padded to eight leaves.
func SSZPhase0BeaconBlockHeader(api frontend.API, slot, proposerIndex, parentRoot, stateRoot, bodyRoot [32]uints.U8) ([]uints.U8, error) {
	leaves := make([]uints.U8, 0, 256)
	leaves = append(leaves, slot[:]...)
	leaves = append(leaves, proposerIndex[:]...)
	leaves = append(leaves, parentRoot[:]...)
	leaves = append(leaves, stateRoot[:]...)
	leaves = append(leaves, bodyRoot[:]...)
	for i := 0; i < 3*32; i++ {
		leaves = append(leaves, uints.NewU8(0))
	}
	return SSZArray(api, leaves, 3)
}

// SSZPhase0SyncCommittee computes the hash tree root of the committee: a
// 512-leaf tree over zero-padded 64-byte pubkey encodings, mixed with the
// root of the aggregate pubkey.
func SSZPhase0SyncCommittee(api frontend.API, pubkeys [SyncCommitteeSize][G1PointSize]uints.U8, aggregatePubkey [G1PointSize]uints.U8) ([]uints.U8, error) {
	leaves := make([]uints.U8, 0, SyncCommitteeSize*64)
	for i := 0; i < SyncCommitteeSize; i++ {
		leaves = append(leaves, pubkeys[i][:]...)
		for j := G1PointSize; j < 64; j++ {
			leaves = append(leaves, uints.NewU8(0))
		}
	}
	pubkeysRoot, err := SSZArray(api, leaves, Log2SyncCommitteeSize+1)
	if err != nil {
		return nil, err
	}

	aggLeaf := make([]uints.U8, 0, 64)
	aggLeaf = append(aggLeaf, aggregatePubkey[:]...)
	for j := G1PointSize; j < 64; j++ {
		aggLeaf = append(aggLeaf, uints.NewU8(0))
	}
	aggRoot, err := SSZArray(api, aggLeaf, 1)
	if err != nil {
		return nil, err
	}
	return sha256Pair(api, pubkeysRoot, aggRoot)
}

// SSZPhase0SigningRoot computes sha256(headerRoot || domain).
func SSZPhase0SigningRoot(api frontend.API, headerRoot, domain [32]uints.U8) ([]uints.U8, error) {
	return sha256Pair(api, headerRoot[:], domain[:])
}

// SSZRestoreMerkleRoot walks a Merkle branch from a leaf back to the root.
// Bit l of index decides the hash order at depth l.
func SSZRestoreMerkleRoot(api frontend.API, leaf [32]uints.U8, branch [][32]uints.U8, index int) ([]uints.U8, error) {
	current := leaf[:]
	for i := range branch {
		var err error
		if (index>>i)&1 == 1 {
			current, err = sha256Pair(api, branch[i][:], current)
		} else {
			current, err = sha256Pair(api, current, branch[i][:])
		}
		if err != nil {
			return nil, err
		}
	}
	return current, nil
}

// assertBytesEqual compares two 32-byte nodes.
func assertBytesEqual(api frontend.API, a []uints.U8, b [32]uints.U8) {
	for i := 0; i < 32; i++ {
		api.AssertIsEqual(a[i].Val, b[i].Val)
	}
}
