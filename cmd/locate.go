package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkv889/llama.cpp-SimpleGUI/internal/locate"
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Show where the llama.cpp binaries were found",
	RunE:  runLocate,
}

func init() {
	rootCmd.AddCommand(locateCmd)
}

func runLocate(cmd *cobra.Command, args []string) error {
	locators := []locate.Locator{
		locate.Default("llama-cli"),
		locate.Default("llama-server", "server"),
	}

	binWidth := len("BINARY")
	pathWidth := len("PATH")

	paths := make([]string, len(locators))
	for i, l := range locators {
		paths[i] = l.Find()
		if len(l.Display) > binWidth {
			binWidth = len(l.Display)
		}
		if len(paths[i]) > pathWidth {
			pathWidth = len(paths[i])
		}
	}

	fmt.Printf("%-*s  %-*s\n", binWidth, "BINARY", pathWidth, "PATH")
	fmt.Printf("%-*s  %-*s\n", binWidth, strings.Repeat("-", binWidth), pathWidth, strings.Repeat("-", pathWidth))
	for i, l := range locators {
		fmt.Printf("%-*s  %-*s\n", binWidth, l.Display, pathWidth, paths[i])
	}

	for i, l := range locators {
		if locate.IsSentinel(paths[i]) {
			fmt.Printf("\n%s was not found on this system. Install llama.cpp or pass an explicit --binary path.\n", l.Display)
			break
		}
	}
	return nil
}
