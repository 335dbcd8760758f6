package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/pageflow/internal/journal"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// HistoryResult holds the reading history of one document.
type HistoryResult struct {
	DocID        string            `json:"doc_id"`
	Sessions     int               `json:"sessions"`
	LastPosition *journal.Position `json:"last_position,omitempty"`
	Events       []journal.Entry   `json:"events"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <doc-id>",
		Short: "Show the reading journal of a document",
		Long: `Show how often a document was opened, where reading stopped and
every document-load, page-change and zoom event, oldest first.

Examples:
  pageview history --db ~/.pageview/journal.db 3f2a...
  pageview history --db ./journal.db 3f2a... --limit 20 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to journal database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of events (0 for all)")

	return cmd
}

func runHistory(opts *HistoryOptions, docID string, cmd *cobra.Command) error {
	ctx := context.Background()

	j, err := journal.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer j.Close()

	sessions, err := j.SessionCount(ctx, docID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count sessions", err)
	}
	events, err := j.History(ctx, docID, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read history", err)
	}

	result := HistoryResult{
		DocID:    docID,
		Sessions: sessions,
		Events:   events,
	}
	pos, ok, err := j.LastPosition(ctx, docID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read last position", err)
	}
	if ok {
		result.LastPosition = &pos
	}

	return newFormatter(opts.RootOptions, cmd).Success(result)
}

func (result HistoryResult) writeText(w io.Writer, verbose bool) {
	if result.Sessions == 0 {
		fmt.Fprintf(w, "No sessions found for document: %s\n", result.DocID)
		return
	}

	fmt.Fprintf(w, "History for Document: %s\n", truncateID(result.DocID))
	fmt.Fprintf(w, "Sessions: %d\n", result.Sessions)
	if p := result.LastPosition; p != nil {
		fmt.Fprintf(w, "Last Position: page %d, scale %g, rotation %d\n", p.PageIndex, p.Scale, p.Rotation)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Events ===")
	if len(result.Events) == 0 {
		fmt.Fprintln(w, "  (no events)")
		return
	}
	for _, e := range result.Events {
		switch e.Kind {
		case "zoom":
			fmt.Fprintf(w, "  [%d] %s %g\n", e.Seq, e.Kind, e.Scale)
		default:
			fmt.Fprintf(w, "  [%d] %s %d\n", e.Seq, e.Kind, e.PageIndex)
		}
		if verbose {
			fmt.Fprintf(w, "       Session: %s\n", truncateID(e.SessionID))
		}
	}
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
