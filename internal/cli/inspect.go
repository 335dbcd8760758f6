package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/pageflow/internal/document"
	"github.com/roach88/pageflow/internal/model"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Password    string
	Concurrency int

	// Loader opens the document. Defaults to document.PDFLoader.
	Loader document.Loader
}

// InspectResult describes a loaded document.
type InspectResult struct {
	File     string             `json:"file"`
	DocID    string             `json:"doc_id"`
	NumPages int                `json:"num_pages"`
	Pages    []model.Descriptor `json:"pages"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	return newInspectCommand(&InspectOptions{RootOptions: rootOpts, Loader: document.PDFLoader{}})
}

func newInspectCommand(opts *InspectOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file.pdf>",
		Short: "Show page count and page geometry of a document",
		Long: `Load a document the way the viewer does and print its identity,
page count and the unscaled size of every page.

Exit codes:
  0 - Document loaded
  1 - Document needs a password or could not be loaded
  2 - Command error (file not found, etc.)

Examples:
  pageview inspect report.pdf
  pageview inspect secret.pdf --password hunter2 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Password, "password", "", "password of an encrypted document")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", document.DefaultMeasureConcurrency, "pages measured concurrently")

	return cmd
}

func runInspect(opts *InspectOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewExitError(ExitCommandError, fmt.Sprintf("document not found: %s", path))
		}
		return WrapExitError(ExitCommandError, "failed to read document", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	file := model.File{Name: filepath.Base(path), Data: data}
	doc, err := opts.Loader.Load(ctx, file, opts.Password)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeLoadFailed, "failed to load document", err)
	}
	formatter.Verbosef("Loaded %s (%d pages)", file.Name, doc.NumPages())

	pages, err := document.MeasurePages(ctx, doc, opts.Concurrency)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to measure pages", err)
	}

	result := InspectResult{
		File:     file.Name,
		DocID:    doc.ID(),
		NumPages: len(pages),
		Pages:    pages,
	}
	return formatter.Success(result)
}

func (r InspectResult) writeText(w io.Writer, _ bool) {
	fmt.Fprintf(w, "File:   %s\n", r.File)
	fmt.Fprintf(w, "Doc ID: %s\n", r.DocID)
	fmt.Fprintf(w, "Pages:  %d\n", r.NumPages)
	for _, p := range r.Pages {
		fmt.Fprintf(w, "  [%d] %gx%g\n", p.Index, p.Width, p.Height)
	}
}
