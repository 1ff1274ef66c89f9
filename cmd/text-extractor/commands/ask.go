package commands

import (
	"context"
	"errors"
	"fmt"
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
	askKind   string
	askField  string
	askFormat string
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the exercise or programming assistant",
	Long: `Ask the exercise or programming assistant a question. The field narrows
the subject; run "text-extractor modes" to see the fields of each assistant.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := mode.ParseAssistant(askKind)
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

		assistant := a.NewAssistant(kind)
		if askField != "" && !assistant.SetField(askField) {
			return fmt.Errorf("unknown field %q for %s (choose from: %s)",
				askField, kind, strings.Join(assistant.Snapshot().Fields, ", "))
		}

		spin := ui.NewSpinner(a.Messages.Get(domain.MsgSendingToAI))
		spin.Start()
		ran, err := assistant.Ask(ctx, strings.Join(args, " "))
		spin.Stop()
		if err != nil {
			return errors.New(domain.UserMessage(err, err.Error()))
		}

		state := assistant.Snapshot()
		if !ran {
			return notRun(a, state.ConfigMissing, state.Error)
		}
		return writeResult(state.Result, askFormat, "")
	},
}

func init() {
	askCmd.Flags().StringVarP(&askKind, "kind", "k", string(mode.AssistExercise), "assistant kind (exercise, programming)")
	askCmd.Flags().StringVar(&askField, "field", "", "subject field, defaults to the first field of the assistant")
	askCmd.Flags().StringVarP(&askFormat, "format", "f", "markdown", "output format (markdown, html)")
	rootCmd.AddCommand(askCmd)
}
