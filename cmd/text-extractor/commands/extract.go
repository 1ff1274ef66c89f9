package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spherical/text-extractor/cmd/text-extractor/ui"
	"github.com/spherical/text-extractor/internal/app"
	"github.com/spherical/text-extractor/internal/domain"
	"github.com/spherical/text-extractor/internal/intake"
	"github.com/spherical/text-extractor/internal/mode"
)

var (
	extractMode   string
	extractOutput string
	extractFormat string
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract text from an image or PDF",
	Long: `Extract text from an image of handwritten notes or from a PDF document.
The mode is inferred from the file type unless --mode is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractMode, "mode", "m", "", "extraction mode (handwriting, pdf)")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "write the result to this file instead of stdout")
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", "markdown", "output format (markdown, html)")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractFormat != "markdown" && extractFormat != "html" {
		return fmt.Errorf("unknown format %q", extractFormat)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := loadApp(true, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()
	if a.ConfigMissing {
		return errors.New(a.Messages.Get(domain.MsgConfigMissing))
	}

	doc, err := openDocument(args[0])
	if err != nil {
		return err
	}

	m, err := chooseMode(extractMode, doc.MimeType)
	if err != nil {
		return err
	}

	events := make(chan domain.StreamEvent, 256)
	hub := a.NewHub(m, events)

	ui.Section(fmt.Sprintf("%s: %s", a.Registry.ConfigOf(m).Title, filepath.Base(doc.Name)))

	stop := make(chan struct{})
	done := make(chan struct{})
	go showProgress(events, stop, done)

	err = hub.SelectFile(ctx, doc)
	close(stop)
	<-done
	if err != nil {
		return errors.New(domain.UserMessage(err, err.Error()))
	}

	snap := hub.Snapshot()
	if len(snap.Payloads) == 0 {
		ui.Warning("document has no pages")
		return nil
	}

	spin := ui.NewSpinner(a.Messages.Get(domain.MsgSendingToAI))
	spin.Start()
	start := time.Now()
	_, err = hub.Extract(ctx)
	spin.Stop()
	if err != nil {
		return errors.New(domain.UserMessage(err, err.Error()))
	}

	snap = hub.Snapshot()
	if snap.Result == nil {
		return errors.New(a.Messages.Get(domain.MsgUnknownError))
	}
	ui.Success("Extracted %d page(s) in %s", len(snap.Payloads), time.Since(start).Round(time.Millisecond))

	return writeResult(snap.Result, extractFormat, extractOutput)
}

// openDocument reads path and determines its MIME type from content.
func openDocument(path string) (domain.UploadedDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.UploadedDocument{}, fmt.Errorf("read %s: %w", path, err)
	}
	return domain.DocumentFromBytes(filepath.Base(path), intake.DetectMIME(data), data), nil
}

// chooseMode honours an explicit mode and otherwise infers it from the MIME type.
func chooseMode(explicit, mimeType string) (domain.ExtractionMode, error) {
	if explicit != "" {
		return mode.Parse(explicit)
	}
	if mimeType == "application/pdf" {
		return domain.ModePDF, nil
	}
	return domain.ModeHandwriting, nil
}

// showProgress renders rasterization events until stop is closed. The event
// channel is never closed because the hub may still emit after stop.
func showProgress(events <-chan domain.StreamEvent, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	var bar *ui.Pages
	handle := func(ev domain.StreamEvent) {
		switch ev.Type {
		case domain.EventStart:
			if ev.TotalPages > 0 {
				bar = ui.NewPages(ev.TotalPages, "")
			}
		case domain.EventPageProcessing:
			if bar != nil {
				bar.Describe(fmt.Sprint(ev.Payload))
			}
		case domain.EventPageComplete:
			if bar != nil {
				bar.Set(ev.PageNumber)
			}
		}
	}

	for {
		select {
		case ev := <-events:
			handle(ev)
		case <-stop:
			for {
				select {
				case ev := <-events:
					handle(ev)
				default:
					if bar != nil {
						bar.Finish()
					}
					return
				}
			}
		}
	}
}

func writeResult(result *domain.ExtractionResult, format, path string) error {
	content := result.Raw
	if format == "html" {
		content = result.HTML
	}

	if path == "" {
		ui.Message("%s", content)
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	ui.Success("Wrote %s", path)
	return nil
}

// printSources lists grounding sources under the result.
func printSources(sources []domain.GroundingSource) {
	if len(sources) == 0 {
		return
	}
	ui.Section("Sources")
	for i, s := range sources {
		title := s.Title
		if title == "" {
			title = s.URI
		}
		ui.Message("%d. %s\n   %s", i+1, title, s.URI)
	}
}
