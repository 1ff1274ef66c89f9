package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spherical/text-extractor/cmd/text-extractor/ui"
	"github.com/spherical/text-extractor/internal/app"
	"github.com/spherical/text-extractor/internal/domain"
	"github.com/spherical/text-extractor/internal/mode"
)

var (
	researchMode   string
	researchFormat string
)

var researchCmd = &cobra.Command{
	Use:   "research <topic>",
	Short: "Run a search-grounded literature review",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := mode.ParseResearch(researchMode)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		a, err := loadApp(true, app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		desk := a.NewResearchDesk()
		desk.SetMode(m)

		spin := ui.NewSpinner(a.Messages.Get(domain.MsgSendingToAI))
		spin.Start()
		ran, err := desk.SearchGrounded(ctx, strings.Join(args, " "))
		spin.Stop()
		if err != nil {
			return errors.New(domain.UserMessage(err, err.Error()))
		}

		state := desk.Snapshot()
		if !ran {
			return notRun(a, state.ConfigMissing, state.Error)
		}
		if err := writeResult(state.Result, researchFormat, ""); err != nil {
			return err
		}
		printSources(state.Result.Sources)
		return nil
	},
}

func init() {
	researchCmd.Flags().StringVarP(&researchMode, "mode", "m", string(mode.ResearchLiteratureReview), "research mode")
	researchCmd.Flags().StringVarP(&researchFormat, "format", "f", "markdown", "output format (markdown, html)")
	rootCmd.AddCommand(researchCmd)
}

// notRun explains why a workflow declined to start.
func notRun(a *app.App, configMissing bool, errMsg string) error {
	switch {
	case configMissing:
		return errors.New(a.Messages.Get(domain.MsgConfigMissing))
	case errMsg != "":
		return errors.New(errMsg)
	default:
		return errors.New("request was not sent")
	}
}
