package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mkv889/llama.cpp-SimpleGUI/internal/config"
	"github.com/mkv889/llama.cpp-SimpleGUI/internal/locate"
	"github.com/mkv889/llama.cpp-SimpleGUI/internal/tui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Open the llama-server front-end",
	Long:  "Open the llama-server front-end: configure, launch, and monitor a llama.cpp server with a periodic status poll against its OpenAI-compatible API.",
	RunE: func(cmd *cobra.Command, args []string) error {
		d := config.Default()
		d.Temperature, _ = cmd.Flags().GetFloat64("temp")
		d.CtxSize, _ = cmd.Flags().GetInt("ctx-size")
		d.Threads, _ = cmd.Flags().GetInt("threads")

		binary, _ := cmd.Flags().GetString("binary")
		if binary == "" {
			binary = locate.Default("llama-server", "server").Find()
		}
		model, _ := cmd.Flags().GetString("model")
		host, _ := cmd.Flags().GetString("host")
		port, _ := cmd.Flags().GetInt("port")

		return tui.RunServer(tui.ServeOptions{
			Defaults: d,
			Binary:   binary,
			Model:    model,
			Host:     host,
			Port:     port,
		})
	},
}

func init() {
	d := config.Default()
	serveCmd.Flags().String("binary", "", "path to the llama-server binary (auto-detected when empty)")
	serveCmd.Flags().String("model", "", "path to the GGUF model file")
	serveCmd.Flags().String("host", d.Host, "bind address")
	serveCmd.Flags().Int("port", d.Port, "listen port")
	serveCmd.Flags().Float64("temp", d.Temperature, "sampling temperature")
	serveCmd.Flags().Int("ctx-size", d.CtxSize, "context window size")
	serveCmd.Flags().Int("threads", d.Threads, "worker thread count")
	rootCmd.AddCommand(serveCmd)
}
