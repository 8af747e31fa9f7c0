// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and exit codes for prefdiff commands.
//
// Handlers return errors; the HandleX entry points display them once and
// exit with the code GetExitCode picks for the error's category.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jeranaias/prefdiff/internal/command"
	"github.com/jeranaias/prefdiff/internal/config"
)

// =============================================================================
// EXIT CODES - Specific codes for different error categories
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitCaptureError indicates the preferences could not be captured
	ExitCaptureError = 4
	// ExitPartialError indicates some changes could not be turned into commands
	ExitPartialError = 5
	// ExitCancelled indicates the user interrupted the command
	ExitCancelled = 130
)

// ErrCancelled is returned when the user aborts an interactive prompt.
var ErrCancelled = errors.New("cancelled")

// =============================================================================
// ERROR TYPES FOR STRUCTURED ERROR HANDLING
// =============================================================================

// ValidationError represents a validation failure for user input.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   string // Value that was provided
	Reason  string // Why validation failed
	Example string // Example of valid value (optional)
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// ConfigError wraps a failure to load, validate or save configuration.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("config: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// CaptureError wraps a failed snapshot capture.
type CaptureError struct {
	Phase string // "before", "after", "baseline", ...
	Err   error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture %s snapshot: %v", e.Phase, e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

// PartialError reports that output was produced but some changes were left
// out because their values could not be expressed as commands.
type PartialError struct {
	Skipped int
	Err     error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("%d change(s) skipped: %v", e.Skipped, e.Err)
}

func (e *PartialError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR CONSTRUCTION HELPERS
// =============================================================================

// NewValidationError creates a new validation error.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// NewValidationErrorWithExample creates a validation error with an example.
func NewValidationErrorWithExample(field, value, reason, example string) error {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Reason:  reason,
		Example: example,
	}
}

// ErrMissingArgument creates an error for missing required arguments.
func ErrMissingArgument(argName, usage string) error {
	return NewValidationErrorWithExample(argName, "", "required argument missing", usage)
}

// ErrUnsupportedFormat creates an error for unsupported formats.
func ErrUnsupportedFormat(format string, supportedFormats []string) error {
	return NewValidationErrorWithExample(
		"format",
		format,
		"unsupported format",
		fmt.Sprintf("supported formats: %v", supportedFormats),
	)
}

// UnknownCommandError reports a command word that is not recognised,
// suggesting the closest valid one.
func UnknownCommandError(name string) error {
	example := ""
	if s := SuggestCommand(name); s != "" {
		example = "did you mean 'prefdiff " + s + "'?"
	}
	return NewValidationErrorWithExample("command", name, "unknown command", example)
}

// unknownFlagsError reports flags a command does not accept.
func unknownFlagsError(cmd Command, flags []string) error {
	if len(flags) == 0 {
		return nil
	}
	example := "prefdiff help"
	if cmd == CmdDiff || cmd == CmdWatch {
		if s := SuggestFlag(flags[0]); s != "" {
			example = "did you mean " + s + "?"
		}
	}
	return NewValidationErrorWithExample(
		"argument",
		fmt.Sprint(flags),
		"not accepted by "+cmd.String(),
		example,
	)
}

// unknownKeyError reports a config key that does not resolve.
func unknownKeyError(key string, err error) error {
	example := "prefdiff config keys"
	if s := SuggestConfigKey(key); s != "" {
		example = "did you mean " + s + "?"
	}
	return NewValidationErrorWithExample("key", key, err.Error(), example)
}

// =============================================================================
// ERROR DISPLAY HELPERS
// =============================================================================

// DisplayError displays an error in a consistent format on stderr.
// In JSON mode the error is written to stdout as a JSON response instead.
func DisplayError(cmd Command, err error, jsonMode bool) {
	if err == nil {
		return
	}

	if GetExitCode(err) == ExitCancelled && !jsonMode {
		fmt.Fprintln(os.Stderr, RenderConditional(WarningStyle, "Cancelled"))
		return
	}

	if jsonMode {
		NewJSONErrorResponse(cmd.String(), err).Print()
		return
	}

	fmt.Fprintf(os.Stderr, "%s %s\n", RenderConditional(ErrorStyle, "Error:"), err.Error())

	var verrs config.ValidateErrors
	if errors.As(err, &verrs) && len(verrs) > 1 {
		for _, v := range verrs {
			fmt.Fprintf(os.Stderr, "  - %s\n", v.Error())
		}
	}
}

// HandleErrorAndExit displays an error and exits with an appropriate exit code.
func HandleErrorAndExit(cmd Command, err error, jsonMode bool) {
	if err == nil {
		return
	}

	DisplayError(cmd, err, jsonMode)
	os.Exit(GetExitCode(err))
}

// GetExitCode determines the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
		return ExitCancelled
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ExitUsageError
	}

	var configErr *ConfigError
	var validateErrs config.ValidateErrors
	if errors.As(err, &configErr) || errors.As(err, &validateErrs) {
		return ExitConfigError
	}

	var captureErr *CaptureError
	if errors.As(err, &captureErr) {
		return ExitCaptureError
	}

	var partialErr *PartialError
	if errors.As(err, &partialErr) || errors.Is(err, command.ErrUnsupportedShape) {
		return ExitPartialError
	}

	return ExitGeneralError
}

// errorType names the category of err for JSON output.
func errorType(err error) string {
	switch GetExitCode(err) {
	case ExitUsageError:
		return "validation_error"
	case ExitConfigError:
		return "config_error"
	case ExitCaptureError:
		return "capture_error"
	case ExitPartialError:
		return "partial_error"
	case ExitCancelled:
		return "cancelled"
	default:
		return "generic_error"
	}
}
