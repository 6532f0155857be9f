package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"diabetescheck/db"
	"diabetescheck/ml"
)

func newArtifactsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "Manage scaler and classifier artifacts in the SQLite store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newArtifactsImportCommand(opts))
	cmd.AddCommand(newArtifactsListCommand(opts))
	return cmd
}

func newArtifactsImportCommand(opts *rootOptions) *cobra.Command {
	var (
		name string
		kind string
		file string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Validate an artifact file and store it under a name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			payload, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			if err := checkArtifact(kind, payload, cfg.Artifacts.ONNXOptions()); err != nil {
				return fmt.Errorf("artifact %s: %w", file, err)
			}

			store, err := db.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.SaveArtifact(commandContext(cmd), db.Artifact{Name: name, Kind: kind, Payload: payload}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s (%s, %d bytes)\n", name, kind, len(payload))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name the artifact is stored under")
	cmd.Flags().StringVar(&kind, "kind", "", "Artifact kind (standard, minmax, linear, decision_tree, onnx)")
	cmd.Flags().StringVar(&file, "file", "", "Path to the serialized artifact")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// checkArtifact decodes payload so broken artifacts never reach the store.
func checkArtifact(kind string, payload []byte, onnx ml.ONNXOptions) error {
	switch kind {
	case ml.ScalerStandard, ml.ScalerMinMax:
		_, err := ml.LoadScaler(kind, payload)
		return err
	case ml.ClassifierONNX:
		// decoding needs the native runtime; stored as-is and checked at load
		if len(payload) == 0 {
			return errors.New("empty onnx model")
		}
		return nil
	default:
		_, err := ml.LoadClassifier(kind, payload, onnx)
		return err
	}
}

func newArtifactsListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			store, err := db.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			infos, err := store.ListArtifacts(commandContext(cmd))
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tKIND\tSIZE\tCREATED")
			for _, info := range infos {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", info.Name, info.Kind, info.Size, info.CreatedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
}
