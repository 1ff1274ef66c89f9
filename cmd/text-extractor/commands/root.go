// Package commands implements the text-extractor CLI.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spherical/text-extractor/cmd/text-extractor/ui"
	"github.com/spherical/text-extractor/internal/app"
	"github.com/spherical/text-extractor/internal/config"
	"github.com/spherical/text-extractor/internal/observability"
)

var (
	cfgFile string
	verbose bool
	noColor bool
	locale  string
)

var rootCmd = &cobra.Command{
	Use:   "text-extractor",
	Short: "Extract text from handwritten notes and PDFs with Gemini",
	Long: `text-extractor turns images of handwritten notes and PDF documents into
readable Markdown and HTML. PDFs are rasterized page by page and sent to the
model as one ordered document. It also offers a search-grounded literature
review and a question assistant for exercises and programming.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.Init(noColor)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", os.Getenv("CONFIG_PATH"), "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&locale, "locale", "", "message language (fa or en), overrides config")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadApp loads configuration and builds the application components.
// Interactive commands pass quiet to keep info logs off the terminal.
func loadApp(quiet bool, opts app.Options) (*app.App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if locale != "" {
		cfg.Locale = locale
	}
	switch {
	case verbose:
		cfg.Observability.LogLevel = "debug"
	case quiet:
		cfg.Observability.LogLevel = "warn"
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		Output:      os.Stderr,
		ServiceName: cfg.Observability.ServiceName,
	})

	return app.New(cfg, logger, opts)
}
