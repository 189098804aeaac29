// kernelctl is an offline command-line tool for inspecting and driving
// the kernel transition function without a running kernelnode: print
// the genesis state, dry-run a bundle against a state snapshot, apply a
// bundle against the on-disk epoch store, or replay a directory of
// bundles from genesis to reconstruct a chain. Subcommand layout
// follows the cobra convention used by the relayer CLIs in the wider
// example corpus: one *cobra.Command per verb, flags declared on the
// command, RunE doing the work.
package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/certen/kernel-validator/internal/kernel/epoch"
	"github.com/certen/kernel-validator/internal/kernel/transition"
	"github.com/certen/kernel-validator/internal/store"
	"github.com/certen/kernel-validator/pkg/bundleio"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kernelctl",
		Short: "Inspect and drive the kernel's epoch transition function offline",
	}
	cmd.AddCommand(genesisCmd(), verifyBundleCmd(), applyCmd(), replayCmd())
	return cmd
}

func genesisCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genesis",
		Short: "Print the genesis epoch state as JSON",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printState(cmd, epoch.Genesis())
		},
	}
}

func parseKernelHash(hexStr string) ([32]byte, error) {
	var digest [32]byte
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return digest, fmt.Errorf("invalid kernel hash: %w", err)
	}
	if len(b) != 32 {
		return digest, fmt.Errorf("kernel hash must be 32 bytes, got %d", len(b))
	}
	copy(digest[:], b)
	return digest, nil
}

func loadState(path string) (epoch.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return epoch.State{}, fmt.Errorf("reading state file %s: %w", path, err)
	}
	var state epoch.State
	if err := json.Unmarshal(data, &state); err != nil {
		return epoch.State{}, fmt.Errorf("parsing state file %s: %w", path, err)
	}
	return state, nil
}

func verifyBundleCmd() *cobra.Command {
	var prevStatePath, bundlePath, kernelHashHex string
	cmd := &cobra.Command{
		Use:   "verify-bundle",
		Short: "Dry-run a bundle against a state snapshot without persisting the result",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			prev, err := loadState(prevStatePath)
			if err != nil {
				return err
			}
			kernelHash, err := parseKernelHash(kernelHashHex)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(bundlePath)
			if err != nil {
				return fmt.Errorf("reading bundle file %s: %w", bundlePath, err)
			}
			bundle, err := bundleio.Unmarshal(data)
			if err != nil {
				return fmt.Errorf("parsing bundle file %s: %w", bundlePath, err)
			}

			next, err := transition.ApplyEpoch(prev, bundle, kernelHash)
			if err != nil {
				return fmt.Errorf("bundle rejected: %w", err)
			}
			return printState(cmd, next)
		},
	}
	cmd.Flags().StringVar(&prevStatePath, "prev-state", "", "path to the previous epoch.State JSON file")
	cmd.Flags().StringVar(&bundlePath, "bundle", "", "path to the bundle JSON file")
	cmd.Flags().StringVar(&kernelHashHex, "kernel-hash", "", "hex-encoded 32-byte kernel hash")
	cmd.MarkFlagRequired("prev-state")
	cmd.MarkFlagRequired("bundle")
	cmd.MarkFlagRequired("kernel-hash")
	return cmd
}

func applyCmd() *cobra.Command {
	var dataDir, dbBackend, bundlePath, kernelHashHex string
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a bundle against the on-disk epoch store, advancing it by one epoch",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			kernelHash, err := parseKernelHash(kernelHashHex)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(bundlePath)
			if err != nil {
				return fmt.Errorf("reading bundle file %s: %w", bundlePath, err)
			}
			bundle, err := bundleio.Unmarshal(data)
			if err != nil {
				return fmt.Errorf("parsing bundle file %s: %w", bundlePath, err)
			}

			db, err := store.OpenDB(dbBackend, dataDir)
			if err != nil {
				return fmt.Errorf("opening data dir %s: %w", dataDir, err)
			}
			defer db.Close()
			epochStore := store.NewEpochStore(store.NewKVAdapter(db))

			prev, err := epochStore.Latest()
			if errors.Is(err, store.ErrNotFound) {
				prev = epoch.Genesis()
			} else if err != nil {
				return fmt.Errorf("loading latest epoch: %w", err)
			}

			next, err := transition.ApplyEpoch(prev, bundle, kernelHash)
			if err != nil {
				return fmt.Errorf("bundle rejected: %w", err)
			}
			if err := epochStore.Put(next); err != nil {
				return fmt.Errorf("persisting epoch %d: %w", next.EpochNumber, err)
			}
			return printState(cmd, next)
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "./data", "epoch store data directory")
	cmd.Flags().StringVar(&dbBackend, "db-backend", "goleveldb", "cometbft-db backend (goleveldb, badgerdb, memdb)")
	cmd.Flags().StringVar(&bundlePath, "bundle", "", "path to the bundle JSON file")
	cmd.Flags().StringVar(&kernelHashHex, "kernel-hash", "", "hex-encoded 32-byte kernel hash")
	cmd.MarkFlagRequired("bundle")
	cmd.MarkFlagRequired("kernel-hash")
	return cmd
}

func replayCmd() *cobra.Command {
	var bundleDir, kernelHashHex string
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay every bundle file in a directory, in filename order, from genesis",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			kernelHash, err := parseKernelHash(kernelHashHex)
			if err != nil {
				return err
			}
			entries, err := os.ReadDir(bundleDir)
			if err != nil {
				return fmt.Errorf("reading bundle dir %s: %w", bundleDir, err)
			}
			names := make([]string, 0, len(entries))
			for _, e := range entries {
				if !e.IsDir() {
					names = append(names, e.Name())
				}
			}
			sort.Strings(names)

			state := epoch.Genesis()
			for _, name := range names {
				data, err := os.ReadFile(filepath.Join(bundleDir, name))
				if err != nil {
					return fmt.Errorf("reading %s: %w", name, err)
				}
				bundle, err := bundleio.Unmarshal(data)
				if err != nil {
					return fmt.Errorf("parsing %s: %w", name, err)
				}
				state, err = transition.ApplyEpoch(state, bundle, kernelHash)
				if err != nil {
					return fmt.Errorf("applying %s: %w", name, err)
				}
			}
			return printState(cmd, state)
		},
	}
	cmd.Flags().StringVar(&bundleDir, "bundle-dir", "", "directory of bundle JSON files to replay in filename order")
	cmd.Flags().StringVar(&kernelHashHex, "kernel-hash", "", "hex-encoded 32-byte kernel hash")
	cmd.MarkFlagRequired("bundle-dir")
	cmd.MarkFlagRequired("kernel-hash")
	return cmd
}

func printState(cmd *cobra.Command, state epoch.State) error {
	encoded, err := json.MarshalIndent(map[string]interface{}{
		"epoch_number":          state.EpochNumber,
		"state_root":            bundleio.DigestToHex(state.StateRoot),
		"previous_root":         bundleio.DigestToHex(state.PreviousRoot),
		"validator_set_root":    bundleio.DigestToHex(state.ValidatorSetRoot),
		"impact_pool_root":      bundleio.DigestToHex(state.ImpactPoolRoot),
		"bond_pool_root":        bundleio.DigestToHex(state.BondPoolRoot),
		"kernel_hash":           bundleio.DigestToHex(state.KernelHash),
		"entropy_metric_scaled": state.EntropyMetricScaled,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return nil
}
