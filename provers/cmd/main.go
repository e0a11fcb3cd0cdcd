package main

import (
	"os"

	relayer "github.com/kysee/zk-lightclient/provers"
	"github.com/kysee/zk-lightclient/provers/types"
)

func main() {
	args := os.Args[1:]
	mode := "relay"
	if len(args) > 0 && (args[0] == "relay" || args[0] == "listen") {
		mode = args[0]
		args = args[1:]
	}

	config := types.NewConfig(args...)
	switch mode {
	case "listen":
		relayer.ListenerMain(config)
	default:
		relayer.RelayerMain(config)
	}
}
