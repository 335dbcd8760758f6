package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/pageflow/internal/config"
	"github.com/roach88/pageflow/internal/document"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // scenario failed, configuration rejected, document unreadable
	ExitCommandError = 2 // bad paths, missing journal
)

// Error codes carried in JSON error responses.
const (
	ErrCodeGeneric       = "E001"
	ErrCodeNotFound      = "E002"
	ErrCodeInvalidConfig = "E003"
	ErrCodePassword      = "E004" // missing or wrong document password
	ErrCodeLoadFailed    = "E005"
)

// ExitError carries the process exit code out of a RunE.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError attaches an exit code to err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the code of the first ExitError in err's chain,
// ExitFailure otherwise.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// errorCode classifies err for an error response, falling back to fallback
// for errors it does not know. Configuration errors also yield their source
// position.
func errorCode(err error, fallback string) (string, map[string]any) {
	var loadErr *config.LoadError
	switch {
	case errors.As(err, &loadErr):
		if !loadErr.Pos.IsValid() {
			return ErrCodeInvalidConfig, nil
		}
		return ErrCodeInvalidConfig, map[string]any{
			"file":   loadErr.Pos.Filename(),
			"line":   loadErr.Pos.Line(),
			"column": loadErr.Pos.Column(),
		}
	case document.IsPasswordError(err):
		return ErrCodePassword, nil
	case errors.Is(err, os.ErrNotExist):
		return ErrCodeNotFound, nil
	}
	return fallback, nil
}

// textWriter is implemented by results with a human-readable rendering.
type textWriter interface {
	writeText(w io.Writer, verbose bool)
}

// OutputFormatter writes command results as text or as a CLIResponse.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics, so they never mix into JSON on Writer
	Verbose   bool
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// CLIResponse is the JSON envelope of every command.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error part of a CLIResponse.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success writes data. Text output uses data's own rendering when it has
// one.
func (f *OutputFormatter) Success(data any) error {
	return f.result("ok", data)
}

// Partial writes data under an "error" status: the command produced a
// result but did not succeed, as when some scenarios fail.
func (f *OutputFormatter) Partial(data any) error {
	return f.result("error", data)
}

func (f *OutputFormatter) result(status string, data any) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{Status: status, Data: data})
	}
	if tw, ok := data.(textWriter); ok {
		tw.writeText(f.Writer, f.Verbose)
		return nil
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error writes an error response.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err as an error response and returns it wrapped with the
// exit code. errCode is used when err is of no known kind.
func (f *OutputFormatter) Fail(exitCode int, errCode, message string, err error) error {
	code, details := errorCode(err, errCode)
	if ferr := f.Error(code, err.Error(), details); ferr != nil {
		return ferr
	}
	return WrapExitError(exitCode, message, err)
}

// Verbosef writes a diagnostic line when verbose output is on.
func (f *OutputFormatter) Verbosef(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
