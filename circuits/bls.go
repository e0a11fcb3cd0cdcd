package circuit

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// BLS signature verification over the aggregate committee key:
// e(g1, signature) = e(pubkey, H(m)), checked as
// e(g1, -signature) * e(pubkey, H(m)) = 1 with a shared Miller loop.

func (f *Field) g1Generator() G1Point {
	_, _, g1, _ := bls12381.Generators()
	return G1Point{
		X: f.FpConst(g1.X.BigInt(new(big.Int))),
		Y: f.FpConst(g1.Y.BigInt(new(big.Int))),
	}
}

// CoreVerifyPubkeyG1NoCheck runs the pairing identity and returns 1 iff it
// holds. Inputs are assumed well-formed, on-curve, in-subgroup and not at
// infinity.
func (f *Field) CoreVerifyPubkeyG1NoCheck(pubkey G1Point, signature, hm G2Point) frontend.Variable {
	negSig := f.G2Neg(signature)
	ml := f.MillerLoopFp2Two(
		[2]G2Point{negSig, hm},
		[2]G1Point{f.g1Generator(), pubkey},
	)
	fe := f.FinalExponentiate(ml)
	return f.Fp12IsOne(fe)
}

// CoreVerifyPubkeyG1 validates the inputs (reduced registers, subgroup
// membership), maps the hash to G2 and asserts the pairing identity.
func (f *Field) CoreVerifyPubkeyG1(pubkey G1Point, signature G2Point, hash [htfCount]E2) {
	qc := f.QConst()
	reduced := [][]frontend.Variable{
		pubkey.X, pubkey.Y,
		signature.X.A0, signature.X.A1,
		signature.Y.A0, signature.Y.A1,
		hash[0].A0, hash[0].A1,
		hash[1].A0, hash[1].A1,
	}
	for _, v := range reduced {
		f.RangeCheckRegisters(v)
		f.api.AssertIsEqual(f.BigLessThan(v, qc), 1)
	}

	f.SubgroupCheckG1(pubkey)
	f.SubgroupCheckG2(signature)

	hm := f.MapToG2(hash)
	f.api.AssertIsEqual(hm.IsInfinity, 0)

	valid := f.CoreVerifyPubkeyG1NoCheck(pubkey, signature, hm.Point)
	f.api.AssertIsEqual(valid, 1)
}

// VerifySyncCommitteeSignature ties the committee keys to their Poseidon
// commitment, aggregates them under the bitmap, verifies the BLS signature
// over the signing root and returns the participation count.
func (f *Field) VerifySyncCommitteeSignature(
	pubkeys []G1Point,
	aggregationBits []frontend.Variable,
	signature G2Point,
	signingRoot [32]uints.U8,
	syncCommitteeRoot frontend.Variable,
) (frontend.Variable, error) {
	api := f.api
	if len(pubkeys) != SyncCommitteeSize || len(aggregationBits) != SyncCommitteeSize {
		return nil, fmt.Errorf("verify signature: committee size mismatch")
	}

	for i := range aggregationBits {
		api.AssertIsBoolean(aggregationBits[i])
	}

	hash, err := f.HashToField(signingRoot[:])
	if err != nil {
		return nil, fmt.Errorf("hash to field: %w", err)
	}

	committed := make([][2][]frontend.Variable, len(pubkeys))
	for i, pk := range pubkeys {
		committed[i] = [2][]frontend.Variable{pk.X, pk.Y}
	}
	root, err := PoseidonG1Array(api, committed)
	if err != nil {
		return nil, fmt.Errorf("poseidon commitment: %w", err)
	}
	api.AssertIsEqual(root, syncCommitteeRoot)

	aggregate, isInfinity := f.G1AddMany(pubkeys, aggregationBits)
	api.AssertIsEqual(isInfinity, 0)

	f.CoreVerifyPubkeyG1(aggregate, signature, hash)

	var participation frontend.Variable = 0
	for _, b := range aggregationBits {
		participation = api.Add(participation, b)
	}
	api.AssertIsEqual(api.IsZero(participation), 0)
	return participation, nil
}
