// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// doctor.go - Doctor command implementation for prefdiff.
//
// Command: doctor
// Short:   Check that preferences can be captured and compared
//
// Health Checks Performed:
//  1. Defaults Installed   - The capture program is on PATH
//  2. Preferences Readable - The domain list can be read
//  3. Config Valid         - The configuration file loads and validates
//  4. Watch Paths          - Watched directories exist
//  5. Export Dir Writable  - Reports can be written
//  6. Clipboard            - --copy and the TUI copy key will work
//
// Exit Codes:
//
//	0   No check failed (warnings allowed)
//	1   One or more checks failed
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/prefdiff/internal/capture"
	"github.com/jeranaias/prefdiff/internal/config"
	"github.com/jeranaias/prefdiff/internal/util"
)

// =============================================================================
// DOCTOR STYLES
// =============================================================================

var (
	checkPassStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	checkWarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	checkFailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	fixStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true).
			PaddingLeft(2)
)

// =============================================================================
// HEALTH CHECK TYPES
// =============================================================================

// CheckStatus represents the status of a health check.
type CheckStatus int

const (
	// CheckPass indicates the check passed successfully.
	CheckPass CheckStatus = iota
	// CheckWarn indicates the check passed with warnings.
	CheckWarn
	// CheckFail indicates the check failed.
	CheckFail
)

// String returns the lower-case status name used in JSON output.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "pass"
	case CheckWarn:
		return "warn"
	case CheckFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Symbol returns the rendered marker for the check status.
func (s CheckStatus) Symbol() string {
	switch s {
	case CheckPass:
		return RenderConditional(checkPassStyle, "[OK]")
	case CheckWarn:
		return RenderConditional(checkWarnStyle, "[!!]")
	case CheckFail:
		return RenderConditional(checkFailStyle, "[FAIL]")
	default:
		return "?"
	}
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string // Suggested fix command or instruction
}

// Render returns a formatted string representation of the health check.
func (c *HealthCheck) Render() string {
	result := fmt.Sprintf("%s %s", c.Status.Symbol(), c.Message)
	if c.Status != CheckPass && c.Fix != "" {
		result += "\n" + RenderConditional(fixStyle, "-> "+c.Fix)
	}
	return result
}

// DoctorData is the --json payload of the doctor command.
type DoctorData struct {
	Checks  []DoctorCheck `json:"checks"`
	Passed  int           `json:"passed"`
	Warned  int           `json:"warned"`
	Failed  int           `json:"failed"`
	Healthy bool          `json:"healthy"`
}

// DoctorCheck is one check in DoctorData.
type DoctorCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Fix     string `json:"fix,omitempty"`
}

// =============================================================================
// HANDLE DOCTOR
// =============================================================================

// HandleDoctor handles the "doctor" command.
// Failed checks have already been reported when it exits.
func HandleDoctor(args Args) {
	err := runDoctorCommand(args, os.Stdout)
	var failed *checksFailedError
	if errors.As(err, &failed) {
		os.Exit(ExitGeneralError)
	}
	if err != nil {
		HandleErrorAndExit(CmdDoctor, err, args.JSON)
	}
}

// checksFailedError is returned when at least one check failed.
type checksFailedError struct {
	failed int
}

func (e *checksFailedError) Error() string {
	return fmt.Sprintf("%d health check(s) failed", e.failed)
}

func runDoctorCommand(args Args, out io.Writer) error {
	if err := unknownFlagsError(CmdDoctor, args.Unknown); err != nil {
		return err
	}

	env := doctorEnv{
		args:          args,
		lookPath:      exec.LookPath,
		clipboardOK:   !clipboard.Unsupported,
		domainTimeout: 15 * time.Second,
	}
	cfg, cfgErr := LoadConfig(args)
	env.cfg, env.cfgErr = cfg, cfgErr
	if cfg == nil {
		env.cfg = config.Default()
	}
	env.reader = capture.NewDefaultsReader(env.cfg.Capture.Program, env.cfg.Capture.Timeout(), env.cfg.Capture.CurrentHost)

	checks := env.runAll(context.Background())
	return reportChecks(checks, args.JSON, out)
}

// reportChecks prints the checks and returns an error when any failed.
func reportChecks(checks []*HealthCheck, jsonMode bool, out io.Writer) error {
	data := DoctorData{}
	for _, check := range checks {
		switch check.Status {
		case CheckPass:
			data.Passed++
		case CheckWarn:
			data.Warned++
		case CheckFail:
			data.Failed++
		}
		data.Checks = append(data.Checks, DoctorCheck{
			Name:    check.Name,
			Status:  check.Status.String(),
			Message: check.Message,
			Fix:     check.Fix,
		})
	}
	data.Healthy = data.Failed == 0

	var failErr error
	if data.Failed > 0 {
		failErr = &checksFailedError{failed: data.Failed}
	}

	if jsonMode {
		resp := NewJSONResponse("doctor", data)
		if failErr != nil {
			msg := failErr.Error()
			resp.Success = false
			resp.Error = &msg
		}
		if err := resp.Print(); err != nil {
			return err
		}
		return failErr
	}

	fmt.Fprintln(out, RenderConditional(TitleStyle, "prefdiff doctor"))
	fmt.Fprintln(out, RenderSeparator(41))
	for _, check := range checks {
		fmt.Fprintln(out, check.Render())
	}
	fmt.Fprintln(out, RenderSeparator(41))

	parts := []string{fmt.Sprintf("%d passed", data.Passed)}
	if data.Warned > 0 {
		parts = append(parts, RenderConditional(checkWarnStyle, fmt.Sprintf("%d warning", data.Warned)))
	}
	if data.Failed > 0 {
		parts = append(parts, RenderConditional(checkFailStyle, fmt.Sprintf("%d failed", data.Failed)))
	}
	fmt.Fprintln(out, RenderConditional(DimStyle, strings.Join(parts, ", ")))

	return failErr
}

// =============================================================================
// HEALTH CHECK FUNCTIONS
// =============================================================================

// doctorEnv holds what the checks inspect.
type doctorEnv struct {
	args   Args
	cfg    *config.Config
	cfgErr error
	reader capture.Reader

	lookPath      func(file string) (string, error)
	clipboardOK   bool
	domainTimeout time.Duration
}

func (e doctorEnv) runAll(ctx context.Context) []*HealthCheck {
	return []*HealthCheck{
		e.checkDefaultsInstalled(),
		e.checkPreferencesReadable(ctx),
		e.checkConfigValid(),
		e.checkWatchPaths(),
		e.checkExportDir(),
		e.checkClipboard(),
	}
}

func (e doctorEnv) checkDefaultsInstalled() *HealthCheck {
	check := &HealthCheck{Name: "Defaults Installed"}

	program := e.cfg.Capture.Program
	path, err := e.lookPath(program)
	if err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("%s not found on PATH", program)
		check.Fix = "prefdiff reads preferences with the macOS defaults tool; set capture.program if it lives elsewhere"
		return check
	}

	check.Status = CheckPass
	check.Message = fmt.Sprintf("%s found at %s", program, path)
	return check
}

func (e doctorEnv) checkPreferencesReadable(ctx context.Context) *HealthCheck {
	check := &HealthCheck{Name: "Preferences Readable"}

	ctx, cancel := context.WithTimeout(ctx, e.domainTimeout)
	defer cancel()

	domains, err := e.reader.Domains(ctx)
	if err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Could not list preference domains: %s", util.FirstLine(err.Error()))
		check.Fix = "Run: " + e.cfg.Capture.Program + " domains"
		return check
	}

	selected, err := capture.Select(domains, e.cfg.Capture.Include, e.cfg.Capture.Exclude)
	if err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Invalid domain pattern: %s", err)
		check.Fix = "Fix capture.include / capture.exclude"
		return check
	}

	if len(selected) == 0 {
		check.Status = CheckWarn
		check.Message = fmt.Sprintf("%s listed, none selected", util.Plural(len(domains), "domain"))
		check.Fix = "Check capture.include / capture.exclude"
		return check
	}

	check.Status = CheckPass
	check.Message = fmt.Sprintf("%s listed, %d selected", util.Plural(len(domains), "domain"), len(selected))
	return check
}

func (e doctorEnv) checkConfigValid() *HealthCheck {
	check := &HealthCheck{Name: "Config Valid"}

	if e.cfgErr != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Config invalid: %s", e.cfgErr)
		check.Fix = "Run: prefdiff config init --force"
		return check
	}

	path, err := configFilePath(e.args)
	if err == nil {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			check.Status = CheckPass
			check.Message = "Config valid (using defaults)"
			return check
		}
	}

	check.Status = CheckPass
	check.Message = "Config valid"
	return check
}

func (e doctorEnv) checkWatchPaths() *HealthCheck {
	check := &HealthCheck{Name: "Watch Paths"}

	var missing []string
	paths := e.cfg.Watch.ExpandedPaths()
	for _, p := range paths {
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			missing = append(missing, p)
		}
	}

	switch {
	case len(paths) == 0:
		check.Status = CheckWarn
		check.Message = "No watch paths configured"
		check.Fix = "Run: prefdiff config set watch.paths ~/Library/Preferences"
	case len(missing) == len(paths):
		check.Status = CheckWarn
		check.Message = "No watch path exists: " + strings.Join(missing, ", ")
		check.Fix = "prefdiff watch needs at least one existing directory"
	case len(missing) > 0:
		check.Status = CheckWarn
		check.Message = "Missing watch paths: " + strings.Join(missing, ", ")
	default:
		check.Status = CheckPass
		check.Message = "Watching " + strings.Join(paths, ", ")
	}
	return check
}

func (e doctorEnv) checkExportDir() *HealthCheck {
	check := &HealthCheck{Name: "Export Dir Writable"}

	dir := util.ExpandHome(e.cfg.Export.Dir)
	if dir == "" {
		dir = "."
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Could not create export directory: %s", err)
		check.Fix = fmt.Sprintf("Create manually: mkdir -p %s", dir)
		return check
	}

	testFile := filepath.Join(dir, ".prefdiff_write_test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Export directory not writable: %s", err)
		check.Fix = fmt.Sprintf("Check permissions: chmod 755 %s", dir)
		return check
	}
	os.Remove(testFile)

	check.Status = CheckPass
	check.Message = "Export directory writable: " + dir
	return check
}

func (e doctorEnv) checkClipboard() *HealthCheck {
	check := &HealthCheck{Name: "Clipboard"}
	if !e.clipboardOK {
		check.Status = CheckWarn
		check.Message = "No clipboard utility found; --copy will not work"
		check.Fix = "On Linux install xclip, xsel or wl-clipboard"
		return check
	}
	check.Status = CheckPass
	check.Message = "Clipboard available"
	return check
}
