package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/patternmatch/strusmatch/internal/sessioninput"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // clean run
	ExitFailure      = 1 // scenarios failed, replay diverged, runtime error in the token stream
	ExitCommandError = 2 // bad paths, unreadable inputs, store errors
)

// ExitError carries the exit code a command wants the process to end
// with, alongside the message printed to stderr.
type ExitError struct {
	Code    int
	Message string
	Err     error // underlying cause, optional
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

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Returns
// ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter renders command output either as human-readable
// text or as a single CLIResponse JSON document, per the --format
// flag.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // verbose/diagnostic output; falls back to Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope every command emits in json mode.
// Session carries the session id for commands that record or replay
// one (trace, replay); Data holds the command's own payload — a
// RunReport, CompilationStats, TestSummary, ReplayReport, or a
// projected result list.
type CLIResponse struct {
	Status  string    `json:"status"`            // "ok" or "error"
	Session string    `json:"session,omitempty"` // session id, when the command involves one
	Data    any       `json:"data,omitempty"`
	Error   *CLIError `json:"error,omitempty"`
}

// CLIError is the error half of a CLIResponse.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", ...
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

func (f *OutputFormatter) respond(resp CLIResponse) error {
	return json.NewEncoder(f.Writer).Encode(resp)
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.respond(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// SuccessSession is Success with the owning session id lifted into
// the response envelope, for the store-backed commands.
func (f *OutputFormatter) SuccessSession(session string, data any) error {
	if f.Format == "json" {
		return f.respond(CLIResponse{Status: "ok", Session: session, Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.respond(CLIResponse{
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

// VerboseLog outputs a message only if verbose mode is enabled. Uses
// ErrWriter when set so json-mode output on Writer stays a single
// parseable document.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// PrintResults writes the shared text form of a projected result
// list: one line per result — pattern name, ordinal span, then each
// binding — used by the run and trace commands.
func PrintResults(w io.Writer, results []sessioninput.ProjectedResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "(no results)")
		return
	}
	for _, r := range results {
		fmt.Fprintf(w, "%s [%d,%d)", r.Pattern, r.StartOrdpos, r.EndOrdpos)
		for _, b := range r.Bindings {
			fmt.Fprintf(w, " %s=[%d,%d)", b.Variable, b.StartOrdpos, b.EndOrdpos)
		}
		fmt.Fprintln(w)
	}
}
