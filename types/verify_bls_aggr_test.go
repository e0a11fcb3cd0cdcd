package types

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"math/rand"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	bls12381fr "github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	zrntaltair "github.com/protolambda/zrnt/eth2/beacon/altair"
	zrntcommon "github.com/protolambda/zrnt/eth2/beacon/common"
	"github.com/protolambda/ztyp/tree"
	"github.com/stretchr/testify/require"
)

// Native (host-side) aggregate verification; the circuit reproduces exactly
// this check in-constraint, so the two must agree on every update.

func computeSigningRoot(header *zrntcommon.BeaconBlockHeader) ([]byte, error) {
	// Compute the block root (SSZ hash tree root)
	blockRoot := header.HashTreeRoot(tree.GetHashFn())

	// DOMAIN_SYNC_COMMITTEE = DomainType([7, 0, 0, 0])
	domainType := zrntcommon.BLSDomainType{0x07, 0x00, 0x00, 0x00}

	genesisValidatorsRoot := zrntcommon.Root{}
	genesisValidatorsRootBytes, _ := hex.DecodeString("d8ea171f3c94aea21ebc42a1ed61052acf3f9209c00e4efbaaddac09ed9b8078")
	copy(genesisValidatorsRoot[:], genesisValidatorsRootBytes)

	// Fork version (Fulu fork: 0x90000075)
	forkVersion := zrntcommon.Version{0x90, 0x00, 0x00, 0x75}

	domain := zrntcommon.ComputeDomain(domainType, forkVersion, genesisValidatorsRoot)
	signingRoot := zrntcommon.ComputeSigningRoot(blockRoot, domain)

	return signingRoot[:], nil
}

func verifySyncAggregate(syncCommittee *zrntcommon.SyncCommittee, update *LightClientUpdate) error {
	// Parse sync committee bits
	bits := ParseSyncCommitteeBits(update.Data.SyncAggregate.SyncCommitteeBits)
	// Aggregate public keys using gnark-crypto
	aggPubkey, _, err := AggregatePublicKeys(syncCommittee.Pubkeys, bits)
	if err != nil {
		return fmt.Errorf("failed to aggregate public keys: %v", err)
	}

	// Parse signature (G2 point)
	sigBytes := update.Data.SyncAggregate.SyncCommitteeSignature[:]

	var signature bls12381.G2Affine
	_, err = signature.SetBytes(sigBytes)
	if err != nil {
		return fmt.Errorf("failed to deserialize signature: %v", err)
	}

	// Compute signing root
	signingRoot, err := computeSigningRoot(&update.Data.AttestedHeader.Beacon)
	if err != nil {
		return fmt.Errorf("failed to compute signing root: %v", err)
	}

	// Hash to G2 (BLS signature scheme)
	dst := []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_")
	messageHash, err := bls12381.HashToG2(signingRoot, dst)
	if err != nil {
		return fmt.Errorf("failed to hash to G2: %v", err)
	}

	// Verify BLS signature: e(pubkey, H(msg)) == e(G1, signature)
	// Or equivalently: e(pubkey, H(msg)) * e(-G1, signature) == 1
	_, _, g1Gen, _ := bls12381.Generators()
	var negG1 bls12381.G1Affine
	negG1.Neg(&g1Gen)

	valid, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{aggPubkey, negG1},
		[]bls12381.G2Affine{messageHash, signature},
	)
	if err != nil {
		return fmt.Errorf("pairing check error: %v", err)
	}

	if !valid {
		return fmt.Errorf("signature verification failed")
	}

	return nil
}

// synthesizeSignedUpdate builds a committee and an update whose aggregate
// signature is valid over the attested header.
func synthesizeSignedUpdate(seed int64, signers int) (*zrntcommon.SyncCommittee, *LightClientUpdate) {
	rnd := rand.New(rand.NewSource(seed))
	_, _, g1, _ := bls12381.Generators()
	rMod := bls12381fr.Modulus()

	committee := &zrntcommon.SyncCommittee{Pubkeys: make([]zrntcommon.BLSPubkey, 512)}
	sks := make([]*big.Int, 512)
	var aggAll bls12381.G1Affine
	aggAll.SetInfinity()
	for i := 0; i < 512; i++ {
		sks[i] = new(big.Int).Rand(rnd, rMod)
		var pk bls12381.G1Affine
		pk.ScalarMultiplication(&g1, sks[i])
		committee.Pubkeys[i] = zrntcommon.BLSPubkey(pk.Bytes())
		aggAll.Add(&aggAll, &pk)
	}
	committee.AggregatePubkey = zrntcommon.BLSPubkey(aggAll.Bytes())

	update := &LightClientUpdate{}
	header := &update.Data.AttestedHeader.Beacon
	header.Slot = 9052160
	header.ProposerIndex = 1031
	rnd.Read(header.ParentRoot[:])
	rnd.Read(header.StateRoot[:])
	rnd.Read(header.BodyRoot[:])

	signingRoot, _ := computeSigningRoot(header)
	hm, _ := bls12381.HashToG2(signingRoot, []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_"))

	bitsBytes := make([]byte, 64)
	signingKey := new(big.Int)
	for i := 0; i < signers; i++ {
		bitsBytes[i/8] |= 1 << (i % 8)
		signingKey.Add(signingKey, sks[i])
	}
	signingKey.Mod(signingKey, rMod)

	var signature bls12381.G2Affine
	signature.ScalarMultiplication(&hm, signingKey)

	update.Data.SyncAggregate = zrntaltair.SyncAggregate{
		SyncCommitteeBits:      zrntaltair.SyncCommitteeBits(bitsBytes),
		SyncCommitteeSignature: zrntcommon.BLSSignature(signature.Bytes()),
	}
	return committee, update
}

func TestVerifySyncAggregate(t *testing.T) {
	committee, update := synthesizeSignedUpdate(55, 400)

	err := verifySyncAggregate(committee, update)
	require.NoError(t, err, "Failed to verify sync aggregate")

	t.Log("✓ Signature verification SUCCEEDED using gnark-crypto!")
}

func TestVerifySyncAggregateRejectsTamperedBits(t *testing.T) {
	committee, update := synthesizeSignedUpdate(56, 400)

	// drop one participant; the aggregate no longer matches the signature
	update.Data.SyncAggregate.SyncCommitteeBits[0] &^= 1

	err := verifySyncAggregate(committee, update)
	require.Error(t, err, "a tampered bitmap must fail verification")
}
