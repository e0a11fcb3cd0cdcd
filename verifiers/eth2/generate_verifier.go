package main

import (
	"bytes"
	"crypto/sha256"
	"os"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/solidity"
)

func main() {
	if err := os.MkdirAll("contracts", 0755); err != nil {
		panic(err)
	}
	exportVerifier("../../.build/StepCircuit.vk", "contracts/StepVerifier.sol")
	exportVerifier("../../.build/RotateCircuit.vk", "contracts/RotateVerifier.sol")
}

// exportVerifier reads a verifying key written by the setup binary and
// renders its Solidity verifier.
func exportVerifier(vkPath, outPath string) {
	vkFile, err := os.Open(vkPath)
	if err != nil {
		panic(err)
	}
	defer vkFile.Close()

	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err = vk.ReadFrom(vkFile); err != nil {
		panic(err)
	}

	var buf bytes.Buffer
	if err = vk.ExportSolidity(&buf, solidity.WithHashToFieldFunction(sha256.New())); err != nil {
		panic(err)
	}
	if err = os.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
		panic(err)
	}

	println("✅ Solidity verifier generated:", outPath)
}
