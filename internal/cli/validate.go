package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/pageflow/internal/config"
)

// ValidationResult holds the outcome of validating a configuration.
type ValidationResult struct {
	Valid  bool           `json:"valid"`
	Config *config.Config `json:"config,omitempty"`
	Scale  string         `json:"default_scale,omitempty"`

	path string
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <viewer.cue>",
		Short: "Validate a viewer configuration",
		Long: `Validate a viewer configuration against the configuration schema
and print the effective values, defaults included.

Errors report the file, line and column of the offending value.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := config.Load(path)
	if err != nil {
		var loadErr *config.LoadError
		if errors.As(err, &loadErr) {
			return formatter.Fail(ExitFailure, ErrCodeInvalidConfig, "invalid configuration", err)
		}
		return WrapExitError(ExitCommandError, "failed to read configuration", err)
	}

	formatter.Verbosef("Validated %s", path)

	scale := string(cfg.DefaultZoomLevel)
	if cfg.DefaultScale > 0 {
		scale = fmt.Sprintf("%g", cfg.DefaultScale)
	}
	return formatter.Success(ValidationResult{Valid: true, Config: &cfg, Scale: scale, path: path})
}

func (r ValidationResult) writeText(w io.Writer, _ bool) {
	cfg := r.Config
	fmt.Fprintf(w, "✓ %s is valid\n", r.path)
	fmt.Fprintf(w, "  defaultScale:       %s\n", r.Scale)
	fmt.Fprintf(w, "  initialPage:        %d\n", cfg.InitialPage)
	fmt.Fprintf(w, "  overscan:           %d\n", cfg.Overscan)
	fmt.Fprintf(w, "  pageGap:            %g\n", cfg.PageGap)
	fmt.Fprintf(w, "  scrollMode:         %s\n", cfg.ScrollMode)
	fmt.Fprintf(w, "  hookFailure:        %s\n", cfg.HookFailure)
	fmt.Fprintf(w, "  measureConcurrency: %d\n", cfg.MeasureConcurrency)
	fmt.Fprintf(w, "  maxRenderAttempts:  %d\n", cfg.MaxRenderAttempts)
	fmt.Fprintf(w, "  maxCascadeDepth:    %d\n", cfg.MaxCascadeDepth)
	if cfg.Journal != "" {
		fmt.Fprintf(w, "  journal:            %s\n", cfg.Journal)
	}
}
