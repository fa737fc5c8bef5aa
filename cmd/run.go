package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mkv889/llama.cpp-SimpleGUI/internal/config"
	"github.com/mkv889/llama.cpp-SimpleGUI/internal/locate"
	"github.com/mkv889/llama.cpp-SimpleGUI/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the llama-cli inference front-end",
	RunE: func(cmd *cobra.Command, args []string) error {
		d := config.Default()
		d.MaxTokens, _ = cmd.Flags().GetInt("max-tokens")
		d.Temperature, _ = cmd.Flags().GetFloat64("temp")
		d.TopP, _ = cmd.Flags().GetFloat64("top-p")
		d.TopK, _ = cmd.Flags().GetInt("top-k")

		binary, _ := cmd.Flags().GetString("binary")
		if binary == "" {
			binary = locate.Default("llama-cli").Find()
		}
		model, _ := cmd.Flags().GetString("model")

		return tui.RunInference(tui.RunOptions{
			Defaults: d,
			Binary:   binary,
			Model:    model,
		})
	},
}

func init() {
	d := config.Default()
	runCmd.Flags().String("binary", "", "path to the llama-cli binary (auto-detected when empty)")
	runCmd.Flags().String("model", "", "path to the GGUF model file")
	runCmd.Flags().Int("max-tokens", d.MaxTokens, "number of tokens to generate")
	runCmd.Flags().Float64("temp", d.Temperature, "sampling temperature")
	runCmd.Flags().Float64("top-p", d.TopP, "top-p sampling cutoff")
	runCmd.Flags().Int("top-k", d.TopK, "top-k sampling cutoff")
	rootCmd.AddCommand(runCmd)
}
