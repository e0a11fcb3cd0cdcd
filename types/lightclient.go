package types

import (
	"crypto/sha256"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381"
	bn254_fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	zrntaltair "github.com/protolambda/zrnt/eth2/beacon/altair"
	zrntcommon "github.com/protolambda/zrnt/eth2/beacon/common"
)

type SyncCommittee struct {
	Period  string                 `json:"period"`
	Pubkeys []zrntcommon.BLSPubkey `json:"pubkeys"`
}

type SyncAggregate struct {
	SyncCommitteeBits      string `json:"sync_committee_bits"`
	SyncCommitteeSignature string `json:"sync_committee_signature"`
}

// LightClientHeader is a beacon header together with its execution payload
// summary, as served by the Beacon API light-client endpoints.
type LightClientHeader struct {
	Beacon          zrntcommon.BeaconBlockHeader `json:"beacon"`
	Execution       ExecutionPayloadHeader       `json:"execution"`
	ExecutionBranch []string                     `json:"execution_branch"`
}

// LightClientUpdate mirrors the Beacon API light-client update response.
type LightClientUpdate struct {
	Data struct {
		AttestedHeader          LightClientHeader        `json:"attested_header"`
		FinalizedHeader         LightClientHeader        `json:"finalized_header"`
		FinalityBranch          []string                 `json:"finality_branch"`
		NextSyncCommittee       zrntcommon.SyncCommittee `json:"next_sync_committee"`
		NextSyncCommitteeBranch []zrntcommon.Root        `json:"next_sync_committee_branch"`
		SyncAggregate           zrntaltair.SyncAggregate `json:"sync_aggregate"`
		SignatureSlot           string                   `json:"signature_slot"`
	} `json:"data"`
	Version string `json:"version"`
}

type ExecutionPayloadHeader struct {
	ParentHash       string `json:"parent_hash"`
	FeeRecipient     string `json:"fee_recipient"`
	StateRoot        string `json:"state_root"`
	ReceiptsRoot     string `json:"receipts_root"`
	LogsBloom        string `json:"logs_bloom"`
	PrevRandao       string `json:"prev_randao"`
	BlockNumber      string `json:"block_number"`
	GasLimit         string `json:"gas_limit"`
	GasUsed          string `json:"gas_used"`
	Timestamp        string `json:"timestamp"`
	ExtraData        string `json:"extra_data"`
	BaseFeePerGas    string `json:"base_fee_per_gas"`
	BlockHash        string `json:"block_hash"`
	TransactionsRoot string `json:"transactions_root"`
	WithdrawalsRoot  string `json:"withdrawals_root"`
	BlobGasUsed      string `json:"blob_gas_used"`
	ExcessBlobGas    string `json:"excess_blob_gas"`
}

// ParseSyncCommitteeBits expands the aggregation bitfield into one bool per
// committee slot.
func ParseSyncCommitteeBits(bitsBytes []byte) []bool {
	bits := make([]bool, 512)
	for i := 0; i < 512; i++ {
		byteIndex := i / 8
		bitIndex := i % 8
		if byteIndex < len(bitsBytes) {
			bits[i] = (bitsBytes[byteIndex] & (1 << bitIndex)) != 0
		}
	}
	return bits
}

// AggregatePublicKeys adds the participating keys natively; the circuit
// recomputes the same aggregate from the bitmap.
func AggregatePublicKeys(pubkeys []zrntcommon.BLSPubkey, bits []bool) (bls12381.G1Affine, int, error) {
	var aggPubkey bls12381.G1Affine
	aggPubkey.SetInfinity()

	count := 0
	for i, participate := range bits {
		if !participate || i >= len(pubkeys) {
			continue
		}
		var pubkey bls12381.G1Affine
		_, err := pubkey.SetBytes(pubkeys[i][:])
		if err != nil {
			return aggPubkey, 0, fmt.Errorf("failed to deserialize pubkey %d: %v", i, err)
		}
		aggPubkey.Add(&aggPubkey, &pubkey)
		count++
	}

	if count == 0 {
		return aggPubkey, 0, fmt.Errorf("no public keys to aggregate")
	}
	return aggPubkey, count, nil
}

// ComputeDomain computes the BLS domain for sync committee signatures:
// domain = domain_type || fork_data_root[:28]
// where fork_data_root = hash_tree_root(ForkData(fork_version, genesis_validators_root))
func ComputeDomain(domainType []byte, forkVersion []byte, genesisValidatorsRoot []byte) ([32]byte, error) {
	var domain [32]byte

	if len(domainType) != 4 {
		return domain, fmt.Errorf("domainType must be 4 bytes, got %d", len(domainType))
	}
	if len(forkVersion) != 4 {
		return domain, fmt.Errorf("forkVersion must be 4 bytes, got %d", len(forkVersion))
	}
	if len(genesisValidatorsRoot) != 32 {
		return domain, fmt.Errorf("genesisValidatorsRoot must be 32 bytes, got %d", len(genesisValidatorsRoot))
	}

	// fork_data_root over the zero-padded version chunk
	var forkVersionChunk [32]byte
	copy(forkVersionChunk[:4], forkVersion[:4])

	hasher := sha256.New()
	hasher.Write(forkVersionChunk[:])
	hasher.Write(genesisValidatorsRoot[:32])
	forkDataRoot := hasher.Sum(nil)

	copy(domain[:4], domainType[:4])
	copy(domain[4:], forkDataRoot[:28])
	return domain, nil
}

type ProofData struct {
	Proof         []HexBytes `json:"proof"`
	Commitments   []HexBytes `json:"commitments"`
	CommitmentPok []HexBytes `json:"commitmentPok"`
}

func CreateProofData(proofSolidity []byte) *ProofData {
	// A, B, C
	proof := make([]HexBytes, 8)
	for i := 0; i < len(proof); i++ {
		proof[i] = proofSolidity[i*bn254_fr.Bytes : (i+1)*bn254_fr.Bytes]
	}

	startIdx0 := 8*bn254_fr.Bytes + 4
	commitments := make([]HexBytes, 4)
	for i := 0; i < len(commitments); i++ {
		startIdx := startIdx0 + (i * bn254_fr.Bytes)
		commitments[i] = proofSolidity[startIdx : startIdx+bn254_fr.Bytes]
	}

	return &ProofData{
		Proof:         proof,
		Commitments:   commitments[0:2],
		CommitmentPok: commitments[2:4],
	}
}
