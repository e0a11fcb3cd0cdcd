package circuit

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/permutation/poseidon2"
)

// Poseidon commitment to the sync committee. The permutation itself is a
// black box from the standard library; this file owns the sponge shape: chunks
// of 16 scalars, the first state slot fed forward between rounds, and a
// two-output final round returning the second slot.

// Sponge geometry and the black-box permutation parameters; the host-side
// witness builder mirrors these exactly.
const (
	PoseidonRate          = 16
	PoseidonWidth         = PoseidonRate + 1
	PoseidonFullRounds    = 6
	PoseidonPartialRounds = 57
)

// PoseidonSponge absorbs the input in chunks of 16 scalars.
func PoseidonSponge(api frontend.API, in []frontend.Variable) (frontend.Variable, error) {
	if len(in) == 0 || len(in)%PoseidonRate != 0 {
		return nil, fmt.Errorf("poseidon sponge: input length %d is not a multiple of %d", len(in), PoseidonRate)
	}
	perm, err := poseidon2.NewPoseidon2FromParameters(api, PoseidonWidth, PoseidonFullRounds, PoseidonPartialRounds)
	if err != nil {
		return nil, fmt.Errorf("poseidon2: %w", err)
	}

	rounds := len(in) / PoseidonRate
	var carry frontend.Variable = 0
	for i := 0; i < rounds; i++ {
		state := make([]frontend.Variable, PoseidonWidth)
		state[0] = carry
		copy(state[1:], in[i*PoseidonRate:(i+1)*PoseidonRate])
		if err := perm.Permutation(state); err != nil {
			return nil, fmt.Errorf("poseidon2 round %d: %w", i, err)
		}
		if i < rounds-1 {
			carry = state[0]
		} else {
			return state[1], nil
		}
	}
	panic("unreachable")
}

// PoseidonG1Array commits to an array of G1 points given in register form.
// The flattening interleaves the x and y registers of each point, so the
// commitment is order-sensitive in both points and limbs.
func PoseidonG1Array(api frontend.API, points [][2][]frontend.Variable) (frontend.Variable, error) {
	k := NumRegisters
	flat := make([]frontend.Variable, 0, len(points)*2*k)
	for i := range points {
		for j := 0; j < k; j++ {
			flat = append(flat, points[i][0][j], points[i][1][j])
		}
	}
	if len(flat)%PoseidonRate != 0 {
		return nil, fmt.Errorf("poseidon commitment: %d scalars do not fill whole sponge chunks", len(flat))
	}
	return PoseidonSponge(api, flat)
}
