// vdf-setup runs the Groth16 trusted setup for the kernel's
// repeated-squaring VDF circuit and writes the proving and verifying
// keys to disk. The proving key stays with whichever service eventually
// produces VDF proofs; the kernel binary only ever needs the verifying
// key, loaded back via vdf.LoadVerifier.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/certen/kernel-validator/internal/kernel/vdf"
)

func main() {
	pkPath := flag.String("pk-out", "vdf_proving.key", "output path for the Groth16 proving key")
	vkPath := flag.String("vk-out", "vdf_verifying.key", "output path for the Groth16 verifying key")
	flag.Parse()

	if err := run(*pkPath, *vkPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(pkPath, vkPath string) error {
	pk, verifier, err := vdf.Setup()
	if err != nil {
		return fmt.Errorf("running trusted setup: %w", err)
	}

	pkFile, err := os.Create(pkPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", pkPath, err)
	}
	defer pkFile.Close()
	if _, err := pk.WriteTo(pkFile); err != nil {
		return fmt.Errorf("writing proving key to %s: %w", pkPath, err)
	}

	vkFile, err := os.Create(vkPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", vkPath, err)
	}
	defer vkFile.Close()
	if _, err := verifier.WriteVerifyingKey(vkFile); err != nil {
		return fmt.Errorf("writing verifying key to %s: %w", vkPath, err)
	}

	fmt.Printf("wrote proving key to %s, verifying key to %s\n", pkPath, vkPath)
	return nil
}
