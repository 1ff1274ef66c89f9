package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/spherical/text-extractor/cmd/text-extractor/ui"
	"github.com/spherical/text-extractor/internal/domain"
	"github.com/spherical/text-extractor/internal/mode"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List extraction modes, research modes and assistant fields",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		msgs := domain.NewMessages(locale)

		ui.Section("Extraction modes")
		var rows [][]string
		for _, cfg := range mode.NewRegistry(msgs).All() {
			status := "yes"
			if !cfg.Supported {
				status = cfg.UnsupportedReason
			}
			rows = append(rows, []string{string(cfg.Mode), cfg.Title, cfg.Accept, status})
		}
		ui.Table([]string{"MODE", "TITLE", "ACCEPTS", "SUPPORTED"}, rows)

		ui.Section("Research modes")
		rows = rows[:0]
		for _, cfg := range mode.ResearchModes(msgs) {
			status := "yes"
			if !cfg.Implemented {
				status = "no"
			}
			rows = append(rows, []string{string(cfg.Mode), cfg.Title, status})
		}
		ui.Table([]string{"MODE", "TITLE", "IMPLEMENTED"}, rows)

		ui.Section("Assistants")
		rows = rows[:0]
		for _, kind := range []mode.AssistantKind{mode.AssistExercise, mode.AssistProgramming} {
			rows = append(rows, []string{string(kind), strings.Join(mode.Fields(msgs, kind), ", ")})
		}
		ui.Table([]string{"KIND", "FIELDS"}, rows)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modesCmd)
}
