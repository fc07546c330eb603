package main

import (
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/joshuapare/allockit/track"
)

func init() {
	rootCmd.AddCommand(newLevelsCmd())
}

func newLevelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "Show what each debug level does",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLevels()
		},
	}
}

type levelInfo struct {
	Level          string `json:"level"`
	Value          int    `json:"value"`
	Logs           bool   `json:"logs"`
	Tracks         bool   `json:"tracks"`
	RefusesUnknown bool   `json:"refuses_untracked_free"`
}

func runLevels() error {
	infos := make([]levelInfo, 0, len(track.Levels))
	for _, l := range track.Levels {
		infos = append(infos, levelInfo{
			Level:          l.String(),
			Value:          int(l),
			Logs:           l.Logs(),
			Tracks:         l.Tracks(),
			RefusesUnknown: l.Strict(),
		})
	}

	if jsonOut {
		return printJSON(infos)
	}

	st := newStyles(os.Stdout)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(st.muted).
		Headers("LEVEL", "VALUE", "LOGS", "TRACKS", "REFUSES UNTRACKED FREE")
	for _, in := range infos {
		t.Row(in.Level, strconv.Itoa(in.Value), yesNo(in.Logs), yesNo(in.Tracks), yesNo(in.RefusesUnknown))
	}
	printInfo("%s\n", t.Render())
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
