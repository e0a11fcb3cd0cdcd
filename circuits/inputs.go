package circuit

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
)

// Verifying a proof on-chain pays per public input, so all Step public data
// is folded into one truncated SHA-256 commitment computed here and matched
// bit-for-bit against the single public scalar.

// scalarToLEBytes encodes a scalar as 32 little-endian bytes through a
// width-limited bit decomposition.
func scalarToLEBytes(api frontend.API, v frontend.Variable, bits int) []uints.U8 {
	decomposed := api.ToBinary(v, bits)
	out := make([]uints.U8, 32)
	for i := 0; i < 32; i++ {
		byteBits := make([]frontend.Variable, 8)
		for j := 0; j < 8; j++ {
			idx := i*8 + j
			if idx < bits {
				byteBits[j] = decomposed[idx]
			} else {
				byteBits[j] = frontend.Variable(0)
			}
		}
		out[i] = uints.U8{Val: api.FromBinary(byteBits...)}
	}
	return out
}

// CommitToPublicInputsForStep chains SHA-256 over the Step public data and
// returns the first TruncatedSha256Size bits of the result, least significant
// bit of each byte first.
func CommitToPublicInputsForStep(
	api frontend.API,
	attestedSlot, finalizedSlot, finalizedHeaderRoot, executionStateRoot [32]uints.U8,
	participation, syncCommitteePoseidon frontend.Variable,
) ([]frontend.Variable, error) {
	h, err := sha256Pair(api, attestedSlot[:], finalizedSlot[:])
	if err != nil {
		return nil, fmt.Errorf("commit slots: %w", err)
	}
	h, err = sha256Pair(api, h, finalizedHeaderRoot[:])
	if err != nil {
		return nil, fmt.Errorf("commit finalized header: %w", err)
	}
	participationLE := scalarToLEBytes(api, participation, TruncatedSha256Size)
	h, err = sha256Pair(api, h, participationLE)
	if err != nil {
		return nil, fmt.Errorf("commit participation: %w", err)
	}
	h, err = sha256Pair(api, h, executionStateRoot[:])
	if err != nil {
		return nil, fmt.Errorf("commit execution state: %w", err)
	}
	poseidonLE := scalarToLEBytes(api, syncCommitteePoseidon, 254)
	h, err = sha256Pair(api, h, poseidonLE)
	if err != nil {
		return nil, fmt.Errorf("commit poseidon: %w", err)
	}

	out := make([]frontend.Variable, TruncatedSha256Size)
	for i := 0; i < 32 && i*8 < TruncatedSha256Size; i++ {
		byteBits := api.ToBinary(h[i].Val, 8)
		for j := 0; j < 8; j++ {
			if i*8+j < TruncatedSha256Size {
				out[i*8+j] = byteBits[j]
			}
		}
	}
	return out, nil
}
