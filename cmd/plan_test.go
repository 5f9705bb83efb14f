package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/smazurov/imgtowebm/internal/runner"
	"github.com/smazurov/imgtowebm/internal/types"
)

func TestPrintPlan(t *testing.T) {
	settings := types.DefaultSettings()
	settings.SourceDirectory = "/frames"
	settings.Video.IgnoreAspectRatio = true

	plan := &runner.Plan{
		Paths:      []string{"/frames/001.png", "/frames/002.png"},
		Width:      640,
		Height:     480,
		Timestamps: []int64{0, 33},
	}

	var buf bytes.Buffer
	PrintPlan(&buf, settings, plan)
	out := buf.String()

	assert.Contains(t, out, "Source: /frames (2 images)")
	assert.Contains(t, out, "Output: output.webm")
	assert.Contains(t, out, "Codec: VP9, 25000 kbit/s, 30 fps")
	assert.Contains(t, out, "Frame size: 640x480 (stretch, nearest)")
	assert.Contains(t, out, "     1       33ms  002.png")
}

func TestCreateCommands(t *testing.T) {
	planCmd := CreatePlanCmd(func(_ *cobra.Command, _ []string) (types.Settings, error) {
		return types.DefaultSettings(), nil
	})
	assert.Equal(t, "plan", planCmd.Name())
	assert.Error(t, planCmd.Args(planCmd, []string{"a", "b"}))

	validate := CreateValidateEncodersCmd()
	assert.Equal(t, "validate-encoders", validate.Name())
	assert.NotNil(t, validate.Flags().Lookup("results"))
	assert.NotNil(t, validate.Flags().ShorthandLookup("q"))
}
