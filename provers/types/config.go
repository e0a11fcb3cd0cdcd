package types

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the prover configuration
type Config struct {
	RootDir string

	// RPCEndpoint is the Beacon API base URL used by the API fetcher
	RPCEndpoint string
	// InitPeriod is the period to start fetching updates from
	InitPeriod uint64

	Slot uint64

	// BLS domain parameters; defaults target the Sepolia testnet at Fulu
	ForkVersion           string
	GenesisValidatorsRoot string
}

func NewConfig(args ...string) *Config {
	// Parse configuration from environment variables or command line args
	config := Config{
		RootDir:               getEnv("ROOT", "."),
		RPCEndpoint:           getEnv("RPC_ENDPOINT", "https://lodestar-sepolia.chainsafe.io/"),
		InitPeriod:            0,
		Slot:                  0,
		ForkVersion:           getEnv("FORK_VERSION", "0x90000075"),
		GenesisValidatorsRoot: getEnv("GENESIS_VALIDATORS_ROOT", "0xd8ea171f3c94aea21ebc42a1ed61052acf3f9209c00e4efbaaddac09ed9b8078"),
	}

	for i := 0; i < len(args); i++ {
		if len(args) <= i+1 {
			panic(fmt.Errorf("missing argument for %s", args[i]))
		}

		switch args[i] {
		case "--slot":
			config.Slot, _ = strconv.ParseUint(args[i+1], 10, 64)
			i++
		case "--root":
			config.RootDir = args[i+1]
			i++
		case "--init-period":
			config.InitPeriod, _ = strconv.ParseUint(args[i+1], 10, 64)
			i++
		case "--rpc":
			config.RPCEndpoint = args[i+1]
			i++
		case "--fork-version":
			config.ForkVersion = args[i+1]
			i++
		case "--genesis-validators-root":
			config.GenesisValidatorsRoot = args[i+1]
			i++
		}
	}

	return &config
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
