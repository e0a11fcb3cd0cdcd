package main

import (
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/logger"

	circuit "github.com/kysee/zk-lightclient/circuits"
)

const rootDir = "."

func main() {
	logger.Disable()

	if _, _, err := SetupCircuit("StepCircuit", &circuit.StepCircuit{}); err != nil {
		println("step setup error:", err.Error())
		return
	}
	if _, _, err := SetupCircuit("RotateCircuit", &circuit.RotateCircuit{}); err != nil {
		println("rotate setup error:", err.Error())
		return
	}
	println("✅ Setup complete; run verifiers/eth2 to export the Solidity verifiers")
}

// SetupCircuit compiles the circuit, runs the Groth16 setup and writes the
// constraint system and keys under .build/.
func SetupCircuit(name string, c frontend.Circuit) (constraint.ConstraintSystem, groth16.ProvingKey, error) {
	_ = os.MkdirAll(filepath.Join(rootDir, ".build"), 0755)
	ccsPath := filepath.Join(rootDir, ".build", name+".ccs")
	pkPath := filepath.Join(rootDir, ".build", name+".pk")
	vkPath := filepath.Join(rootDir, ".build", name+".vk")

	// Step 1: Compile circuit and save to file
	println("🕧 Compile", name, "circuit...")
	// Compile on the BN254 scalar field; BLS12-381 lives in register form
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, c)
	if err != nil {
		return nil, nil, err
	}

	println("Constraint system saving to", ccsPath, "...")
	fccs, err := os.Create(ccsPath)
	if err != nil {
		return nil, nil, err
	}
	defer fccs.Close()
	if _, err = ccs.WriteTo(fccs); err != nil {
		return nil, nil, err
	}
	println("constraints:", ccs.GetNbConstraints(), "public inputs:", ccs.GetNbPublicVariables())
	println("✅ Compile complete")

	// Step 2: Setup (generate proving and verifying keys)
	println("🕧 Generating proving and verifying keys...")
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, nil, err
	}

	println("Proving key saving to", pkPath, "...")
	fpk, err := os.Create(pkPath)
	if err != nil {
		return nil, nil, err
	}
	defer fpk.Close()
	if _, err = pk.WriteTo(fpk); err != nil {
		return nil, nil, err
	}

	println("Verifying key saving to", vkPath, "...")
	fvk, err := os.Create(vkPath)
	if err != nil {
		return nil, nil, err
	}
	defer fvk.Close()
	if _, err = vk.WriteTo(fvk); err != nil {
		return nil, nil, err
	}
	println("✅ Setup complete for", name)

	return ccs, pk, nil
}
