package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/smazurov/imgtowebm/internal/runner"
	"github.com/smazurov/imgtowebm/internal/types"
)

// SettingsResolver returns the settings of the current invocation.
type SettingsResolver func(cmd *cobra.Command, args []string) (types.Settings, error)

// CreatePlanCmd creates the plan command.
func CreatePlanCmd(resolve SettingsResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "plan [source-directory]",
		Short: "Show what would be encoded without encoding",
		Long: `Lists the images that would be encoded, in order, together with the resolved ` +
			`output frame size and the presentation timestamp of every frame.`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			settings, err := resolve(cmd, args)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}

			plan, err := runner.BuildPlan(settings)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			PrintPlan(cmd.OutOrStdout(), settings, plan)
		},
	}
}

// PrintPlan writes a human readable description of plan.
func PrintPlan(w io.Writer, settings types.Settings, plan *runner.Plan) {
	mode := "fit"
	if settings.Video.IgnoreAspectRatio {
		mode = "stretch"
	}

	fmt.Fprintf(w, "Source: %s (%d images)\n", settings.SourceDirectory, len(plan.Paths))
	fmt.Fprintf(w, "Output: %s\n", settings.OutputFile)
	fmt.Fprintf(w, "Codec: %s, %d kbit/s, %d fps\n", settings.Video.Codec, settings.Video.Bitrate, settings.Video.FPS)
	fmt.Fprintf(w, "Frame size: %dx%d (%s, %s)\n", plan.Width, plan.Height, mode, settings.Video.ScalingAlgorithm)
	for i, p := range plan.Paths {
		fmt.Fprintf(w, "%6d %8dms  %s\n", i, plan.Timestamps[i], filepath.Base(p))
	}
}
