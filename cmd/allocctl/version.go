package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build metadata, set with
//
//	-ldflags "-X main.version=v1.2.3 -X main.commit=abc123 -X main.date=2026-01-02"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type versionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

func init() {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionText())
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion()
		},
	}
}

func runVersion() error {
	if jsonOut {
		return printJSON(versionInfo{Version: version, Commit: commit, Date: date})
	}
	fmt.Print(versionText())
	return nil
}

// versionText is shared by the version command and the --version flag.
func versionText() string {
	return fmt.Sprintf("allocctl version %s\n  commit: %s\n  built: %s\n", version, commit, date)
}
