package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkv889/llama.cpp-SimpleGUI/internal/config"
	"github.com/mkv889/llama.cpp-SimpleGUI/internal/monitor"
	"github.com/mkv889/llama.cpp-SimpleGUI/internal/settings"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check a running llama.cpp server once and exit",
	RunE:  runStatus,
}

func init() {
	d := config.Default()
	statusCmd.Flags().String("host", d.Host, "server address")
	statusCmd.Flags().Int("port", d.Port, "server port")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	d := config.Default()
	s := settings.ServerSettings{}
	s.Host, _ = cmd.Flags().GetString("host")
	s.Port, _ = cmd.Flags().GetInt("port")

	base := s.BaseURL()
	poller := monitor.New(func() string { return base })
	poller.Client.Timeout = d.PollTimeout

	ctx, cancel := context.WithTimeout(cmd.Context(), d.PollInterval)
	defer cancel()
	snap := poller.Check(ctx)

	label := "Offline"
	if snap.Online {
		label = "Online"
	}
	fmt.Printf("Server:  %s\n", base)
	fmt.Printf("Status:  %s\n", label)
	fmt.Printf("Model:   %s\n", snap.Model)

	if !snap.Online {
		return fmt.Errorf("no server responding at %s:%d", s.Host, s.Port)
	}
	return nil
}
