package circuit

import (
	"crypto/sha256"
	"math/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
	gnark_test "github.com/consensys/gnark/test"
	zrntcommon "github.com/protolambda/zrnt/eth2/beacon/common"
	"github.com/protolambda/ztyp/tree"
	"github.com/stretchr/testify/require"
)

func chunkFromBytes(src [32]byte) [32]uints.U8 {
	var out [32]uints.U8
	for i := 0; i < 32; i++ {
		out[i] = uints.NewU8(src[i])
	}
	return out
}

type headerRootCircuit struct {
	Slot, ProposerIndex, ParentRoot, StateRoot, BodyRoot [32]uints.U8
	Root                                                 [32]uints.U8
}

func (c *headerRootCircuit) Define(api frontend.API) error {
	root, err := SSZPhase0BeaconBlockHeader(api, c.Slot, c.ProposerIndex, c.ParentRoot, c.StateRoot, c.BodyRoot)
	if err != nil {
		return err
	}
	assertBytesEqual(api, root, c.Root)
	return nil
}

func TestSSZBeaconBlockHeaderRoot(t *testing.T) {
	rnd := rand.New(rand.NewSource(51))
	header := zrntcommon.BeaconBlockHeader{
		Slot:          zrntcommon.Slot(6209536),
		ProposerIndex: zrntcommon.ValidatorIndex(rnd.Uint64() % 1000000),
	}
	rnd.Read(header.ParentRoot[:])
	rnd.Read(header.StateRoot[:])
	rnd.Read(header.BodyRoot[:])

	root := header.HashTreeRoot(tree.GetHashFn())

	var slotChunk, proposerChunk [32]byte
	for i := 0; i < 8; i++ {
		slotChunk[i] = byte(uint64(header.Slot) >> (8 * i))
		proposerChunk[i] = byte(uint64(header.ProposerIndex) >> (8 * i))
	}

	w := &headerRootCircuit{
		Slot:          chunkFromBytes(slotChunk),
		ProposerIndex: chunkFromBytes(proposerChunk),
		ParentRoot:    chunkFromBytes([32]byte(header.ParentRoot)),
		StateRoot:     chunkFromBytes([32]byte(header.StateRoot)),
		BodyRoot:      chunkFromBytes([32]byte(header.BodyRoot)),
		Root:          chunkFromBytes([32]byte(root)),
	}
	require.NoError(t, gnark_test.IsSolved(&headerRootCircuit{}, w, ecc.BN254.ScalarField()))
}

type signingRootCircuit struct {
	HeaderRoot, Domain, Root [32]uints.U8
}

func (c *signingRootCircuit) Define(api frontend.API) error {
	root, err := SSZPhase0SigningRoot(api, c.HeaderRoot, c.Domain)
	if err != nil {
		return err
	}
	assertBytesEqual(api, root, c.Root)
	return nil
}

func TestSSZSigningRoot(t *testing.T) {
	rnd := rand.New(rand.NewSource(52))
	var headerRoot, domain [32]byte
	rnd.Read(headerRoot[:])
	rnd.Read(domain[:])

	h := sha256.New()
	h.Write(headerRoot[:])
	h.Write(domain[:])
	var root [32]byte
	copy(root[:], h.Sum(nil))

	w := &signingRootCircuit{
		HeaderRoot: chunkFromBytes(headerRoot),
		Domain:     chunkFromBytes(domain),
		Root:       chunkFromBytes(root),
	}
	require.NoError(t, gnark_test.IsSolved(&signingRootCircuit{}, w, ecc.BN254.ScalarField()))
}

type restoreRootCircuit struct {
	Leaf   [32]uints.U8
	Branch [FinalizedHeaderDepth][32]uints.U8
	Root   [32]uints.U8
	index  int
}

func (c *restoreRootCircuit) Define(api frontend.API) error {
	root, err := SSZRestoreMerkleRoot(api, c.Leaf, c.Branch[:], c.index)
	if err != nil {
		return err
	}
	assertBytesEqual(api, root, c.Root)
	return nil
}

func TestSSZRestoreMerkleRoot(t *testing.T) {
	rnd := rand.New(rand.NewSource(53))
	for _, index := range []int{FinalizedHeaderIndex, 64, 127, 91} {
		var leaf [32]byte
		rnd.Read(leaf[:])
		var branch [FinalizedHeaderDepth][32]byte
		for i := range branch {
			rnd.Read(branch[i][:])
		}

		// textbook walk
		current := leaf
		for i := 0; i < FinalizedHeaderDepth; i++ {
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

		w := &restoreRootCircuit{
			Leaf: chunkFromBytes(leaf),
			Root: chunkFromBytes(current),
		}
		for i := range branch {
			w.Branch[i] = chunkFromBytes(branch[i])
		}
		require.NoError(t, gnark_test.IsSolved(&restoreRootCircuit{index: index}, w, ecc.BN254.ScalarField()))
	}
}
