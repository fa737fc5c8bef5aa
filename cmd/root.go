package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "llamagui",
	Short: "Terminal front-ends for llama.cpp",
	Long:  "llamagui wraps llama.cpp's llama-cli and llama-server binaries in interactive terminal front-ends for configuring, launching, and monitoring them.",
}

func Execute() error {
	return rootCmd.Execute()
}
