package relayer

import (
	"bytes"
	"fmt"
	"os"

	"github.com/protolambda/ztyp/tree"
	"github.com/rs/zerolog"

	circuit "github.com/kysee/zk-lightclient/circuits"
	cfgtypes "github.com/kysee/zk-lightclient/provers/types"
	"github.com/kysee/zk-lightclient/types"
)

func ListenerMain(config *cfgtypes.Config) {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	listener := NewListener(config, NewAPIFetcher(config.RPCEndpoint), log)
	if err := listener.CheckUpdate(config.InitPeriod); err != nil {
		log.Fatal().Err(err).Msg("update check failed")
	}
}

// Listener fetches updates and cross-checks the Merkle proofs the circuits
// consume, so a bad data source is caught before any proving time is spent.
type Listener struct {
	config  *cfgtypes.Config
	fetcher cfgtypes.Fetcher
	log     zerolog.Logger
}

func NewListener(config *cfgtypes.Config, fetcher cfgtypes.Fetcher, log zerolog.Logger) *Listener {
	return &Listener{config: config, fetcher: fetcher, log: log}
}

// CheckUpdate validates the finality and execution branches of an update
// against the attested and finalized headers.
func (l *Listener) CheckUpdate(period uint64) error {
	var update *types.LightClientUpdate
	var err error
	if period == 0 {
		// no explicit period: look at the chain head instead
		update, err = l.fetcher.LatestFinalityUpdate()
	} else {
		update, err = l.fetcher.ScUpdate(period)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch update for period %d: %w", period, err)
	}

	hFn := tree.GetHashFn()
	attested := &update.Data.AttestedHeader.Beacon
	finalized := &update.Data.FinalizedHeader.Beacon
	finalizedRoot := finalized.HashTreeRoot(hFn)

	// finality proof: finalized header root inside the attested state
	branch := make([][32]byte, 0, len(update.Data.FinalityBranch))
	for i, s := range update.Data.FinalityBranch {
		node, err := hexToRoot(s)
		if err != nil {
			return fmt.Errorf("finality branch node %d: %w", i, err)
		}
		branch = append(branch, node)
	}
	restored := restoreMerkleRoot(finalizedRoot, branch, circuit.FinalizedHeaderIndex)
	if !bytes.Equal(restored[:], attested.StateRoot[:]) {
		return fmt.Errorf("finality branch does not restore the attested state root")
	}
	l.log.Info().
		Uint64("slot", uint64(finalized.Slot)).
		Hex("finalized_root", finalizedRoot[:]).
		Msg("finality proof verified")

	// execution proof: execution state root inside the finalized body
	execRoot, err := hexToRoot(update.Data.FinalizedHeader.Execution.StateRoot)
	if err != nil {
		return fmt.Errorf("execution state root: %w", err)
	}
	execBranch := make([][32]byte, 0, len(update.Data.FinalizedHeader.ExecutionBranch))
	for i, s := range update.Data.FinalizedHeader.ExecutionBranch {
		node, err := hexToRoot(s)
		if err != nil {
			return fmt.Errorf("execution branch node %d: %w", i, err)
		}
		execBranch = append(execBranch, node)
	}
	if len(execBranch) < circuit.ExecutionStateRootDepth {
		return fmt.Errorf("execution branch has %d nodes, need %d",
			len(execBranch), circuit.ExecutionStateRootDepth)
	}
	restored = restoreMerkleRoot(tree.Root(execRoot), execBranch[:circuit.ExecutionStateRootDepth], circuit.ExecutionStateRootIndex)
	if !bytes.Equal(restored[:], finalized.BodyRoot[:]) {
		return fmt.Errorf("execution branch does not restore the finalized body root")
	}
	l.log.Info().Hex("execution_state_root", execRoot[:]).Msg("execution proof verified")

	// participation, as the circuit will compute it
	bits := types.ParseSyncCommitteeBits(update.Data.SyncAggregate.SyncCommitteeBits)
	participation := 0
	for _, b := range bits {
		if b {
			participation++
		}
	}
	if participation == 0 {
		return fmt.Errorf("update carries no participants")
	}
	l.log.Info().Int("participation", participation).Msg("update ready for proving")
	return nil
}

// restoreMerkleRoot is the host-side mirror of the in-circuit branch walk:
// bit i of the generalized index picks the hash order at depth i.
func restoreMerkleRoot(leaf tree.Root, branch [][32]byte, index int) tree.Root {
	hFn := tree.GetHashFn()
	current := leaf
	for i := range branch {
		sibling := tree.Root(branch[i])
		if (index>>i)&1 == 1 {
			current = hFn(sibling, current)
		} else {
			current = hFn(current, sibling)
		}
	}
	return current
}
