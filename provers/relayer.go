package relayer

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/rs/zerolog"

	circuit "github.com/kysee/zk-lightclient/circuits"
	cfgtypes "github.com/kysee/zk-lightclient/provers/types"
	"github.com/kysee/zk-lightclient/types"
)

// Main entry point for the relayer
func RelayerMain(config *cfgtypes.Config) {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	relayer, err := NewRelayer(config, NewAPIFetcher(config.RPCEndpoint), log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create relayer")
	}
	if err := relayer.loadCircuits(); err != nil {
		log.Fatal().Err(err).Msg("failed to load circuits")
	}
	if err := relayer.Run(); err != nil {
		log.Fatal().Err(err).Msg("relayer stopped")
	}
}

// Relayer proves one Rotate per committee period and one Step per update.
type Relayer struct {
	config  *cfgtypes.Config
	fetcher cfgtypes.Fetcher
	log     zerolog.Logger

	stepCCS   constraint.ConstraintSystem
	stepPK    groth16.ProvingKey
	rotateCCS constraint.ConstraintSystem
	rotatePK  groth16.ProvingKey

	domain           [32]byte
	currentCommittee [circuit.SyncCommitteeSize]bls12381.G1Affine
}

func NewRelayer(config *cfgtypes.Config, fetcher cfgtypes.Fetcher, log zerolog.Logger) (*Relayer, error) {
	_ = os.MkdirAll(config.RootDir, 0755)

	forkVersion, err := types.HexToBytes(config.ForkVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid fork version: %w", err)
	}
	genesisRoot, err := types.HexToBytes(config.GenesisValidatorsRoot)
	if err != nil {
		return nil, fmt.Errorf("invalid genesis validators root: %w", err)
	}
	// DOMAIN_SYNC_COMMITTEE
	domain, err := types.ComputeDomain([]byte{0x07, 0x00, 0x00, 0x00}, forkVersion, genesisRoot)
	if err != nil {
		return nil, fmt.Errorf("compute domain: %w", err)
	}

	return &Relayer{
		config:  config,
		fetcher: fetcher,
		log:     log,
		domain:  domain,
	}, nil
}

// Run fetches updates period by period, proving the committee rotation first
// and then the update itself.
func (r *Relayer) Run() error {
	period := r.config.InitPeriod
	r.log.Info().Uint64("period", period).Msg("bootstrapping committee")

	initial, err := r.fetcher.ScUpdate(period)
	if err != nil {
		return fmt.Errorf("failed to fetch initial update: %w", err)
	}
	if err := r.setCommittee(initial); err != nil {
		return err
	}
	period++

	for {
		r.log.Info().Uint64("period", period).Msg("fetching update")
		update, err := r.fetcher.ScUpdate(period)
		if err != nil {
			r.log.Warn().Err(err).Msg("fetch failed, retrying")
			time.Sleep(time.Second)
			continue
		}

		if err := r.proveRotate(period, update); err != nil {
			return fmt.Errorf("rotate proof for period %d: %w", period, err)
		}
		if err := r.proveStep(period, update); err != nil {
			return fmt.Errorf("step proof for period %d: %w", period, err)
		}

		if err := r.setCommittee(update); err != nil {
			return err
		}
		period++
		time.Sleep(time.Second)
	}
}

func (r *Relayer) setCommittee(update *types.LightClientUpdate) error {
	for i := 0; i < circuit.SyncCommitteeSize; i++ {
		if _, err := r.currentCommittee[i].SetBytes(update.Data.NextSyncCommittee.Pubkeys[i][:]); err != nil {
			return fmt.Errorf("failed to parse pubkey %d: %w", i, err)
		}
	}
	return nil
}

func (r *Relayer) proveStep(period uint64, update *types.LightClientUpdate) error {
	assignment, err := BuildStepAssignment(update, &r.currentCommittee, r.domain)
	if err != nil {
		return fmt.Errorf("build witness: %w", err)
	}
	proof, err := r.prove(r.stepCCS, r.stepPK, assignment)
	if err != nil {
		return err
	}
	return r.writeProof(fmt.Sprintf("output/step-period-%d.json", period), proof)
}

func (r *Relayer) proveRotate(period uint64, update *types.LightClientUpdate) error {
	assignment, err := BuildRotateAssignment(update)
	if err != nil {
		return fmt.Errorf("build witness: %w", err)
	}
	proof, err := r.prove(r.rotateCCS, r.rotatePK, assignment)
	if err != nil {
		return err
	}
	return r.writeProof(fmt.Sprintf("output/rotate-period-%d.json", period), proof)
}

func (r *Relayer) prove(ccs constraint.ConstraintSystem, pk groth16.ProvingKey, assignment frontend.Circuit) ([]byte, error) {
	fullWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("failed to create witness: %w", err)
	}

	start := time.Now()
	proof, err := groth16.Prove(ccs, pk, fullWitness,
		backend.WithProverHashToFieldFunction(sha256.New()))
	if err != nil {
		return nil, fmt.Errorf("proof generation failed: %w", err)
	}
	r.log.Info().Dur("elapsed", time.Since(start)).Msg("proof generated")

	marshaler, ok := proof.(interface{ MarshalSolidity() []byte })
	if !ok {
		return nil, fmt.Errorf("proof does not implement MarshalSolidity()")
	}
	return marshaler.MarshalSolidity(), nil
}

func (r *Relayer) writeProof(path string, proofSolidity []byte) error {
	proofData := types.CreateProofData(proofSolidity)
	jsonBlob, err := json.MarshalIndent(proofData, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal proof data: %w", err)
	}
	_ = os.MkdirAll(filepath.Dir(path), 0755)
	if err := os.WriteFile(path, jsonBlob, 0644); err != nil {
		return fmt.Errorf("failed to write proof file: %w", err)
	}
	r.log.Info().Str("path", path).Msg("proof saved")
	return nil
}

// loadCircuits reads the compiled constraint systems and proving keys
// produced by the setup binary.
func (r *Relayer) loadCircuits() error {
	var err error
	r.stepCCS, r.stepPK, err = r.loadCircuit("StepCircuit")
	if err != nil {
		return err
	}
	r.rotateCCS, r.rotatePK, err = r.loadCircuit("RotateCircuit")
	return err
}

func (r *Relayer) loadCircuit(name string) (constraint.ConstraintSystem, groth16.ProvingKey, error) {
	ccsPath := filepath.Join(r.config.RootDir, ".build", name+".ccs")
	pkPath := filepath.Join(r.config.RootDir, ".build", name+".pk")

	fCcs, err := os.Open(ccsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open CCS file: %w", err)
	}
	defer fCcs.Close()
	ccs := groth16.NewCS(ecc.BN254)
	if _, err := ccs.ReadFrom(fCcs); err != nil {
		return nil, nil, fmt.Errorf("failed to read CCS: %w", err)
	}
	r.log.Info().Str("circuit", name).Int("constraints", ccs.GetNbConstraints()).Msg("circuit loaded")

	fpk, err := os.Open(pkPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open PK file: %w", err)
	}
	defer fpk.Close()
	pk := groth16.NewProvingKey(ecc.BN254)
	if _, err := pk.ReadFrom(fpk); err != nil {
		return nil, nil, fmt.Errorf("failed to read PK: %w", err)
	}
	r.log.Info().Str("circuit", name).Msg("proving key loaded")

	return ccs, pk, nil
}
