package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smazurov/imgtowebm/internal/encoders"
	"github.com/smazurov/imgtowebm/internal/logging"
)

// CreateValidateEncodersCmd creates the validate-encoders command.
func CreateValidateEncodersCmd() *cobra.Command {
	var resultsFile string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "validate-encoders",
		Short: "Validate VP8/VP9 encoder availability",
		Long: `Checks that ffmpeg is installed and that its libvpx and libvpx-vp9 encoders ` +
			`can actually encode a short test clip on the current system.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			level := "info"
			if quiet {
				level = "error"
			}
			provider := logging.New(logging.Config{Level: level})

			if !encoders.IsFFmpegInstalled() {
				fmt.Fprintln(os.Stderr, "ffmpeg not found in PATH")
				os.Exit(1)
			}

			validator := encoders.NewValidator(provider.Logger("encoders"))
			results, err := validator.ValidateEncoders(cmd.Context())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
				os.Exit(1)
			}

			encoders.PrintValidationSummary(cmd.OutOrStdout(), results)

			if resultsFile != "" {
				if err := encoders.SaveValidationResults(resultsFile, results); err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(1)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Results saved to %s\n", resultsFile)
			}

			if !encoders.AllWorking(results) {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVar(&resultsFile, "results", "", "Write validation results as TOML to this file")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress detailed validation progress output")
	return cmd
}
