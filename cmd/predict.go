package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"diabetescheck/ml"
	"diabetescheck/predict"
)

func newPredictCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict [--] PREGNANCIES GLUCOSE BLOOD_PRESSURE SKIN_THICKNESS INSULIN BMI PEDIGREE AGE",
		Short: "Evaluate one set of health parameters and print the advice",
		Long: "Evaluate one set of health parameters and print the advice.\n\n" +
			"Values starting with '-' would be read as flags, so put -- before the values when any is negative.",
		Example: "  diabetescheck predict 6 148 72 35 0 33.6 0.627 50\n" +
			"  diabetescheck predict -- -1 85 66 29 0 26.6 0.351 31",
		Args: cobra.ExactArgs(ml.NumFeatures),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			cfg, err := opts.load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			service, closeArtifacts, err := newService(ctx, cfg, nil, zap.NewNop())
			if err != nil {
				return err
			}
			defer closeArtifacts()

			result, err := service.Evaluate(ctx, args)
			if predict.IsValidationError(err) {
				return errors.New(predict.UserMessage(err))
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), result.Document)
			return err
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w (put -- before the values when any is negative)", err)
	})
	return cmd
}
