// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - the --json envelope.
//
// Management commands (version, config, doctor) wrap their result in a
// JSONResponse. diff and watch emit their reports through the export
// package instead; only their failures use the envelope.
package cli

import (
	"encoding/json"
	"io"
	"os"
	"time"
)

// JSONResponse is written to stdout in --json mode.
type JSONResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`

	// Error is null on success.
	Error     *string `json:"error"`
	ErrorType string  `json:"error_type,omitempty"`
	ExitCode  int     `json:"exit_code,omitempty"`

	Timestamp string `json:"timestamp"`
	Command   string `json:"command,omitempty"`
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

// NewJSONResponse wraps data for command.
func NewJSONResponse(command string, data any) *JSONResponse {
	return &JSONResponse{Success: true, Data: data, Timestamp: now(), Command: command}
}

// NewJSONErrorResponse reports err for command, with its category and the
// exit code the process is about to use.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	msg := err.Error()
	return &JSONResponse{
		Error:     &msg,
		ErrorType: errorType(err),
		ExitCode:  GetExitCode(err),
		Timestamp: now(),
		Command:   command,
	}
}

// Print writes the response to stdout.
func (r *JSONResponse) Print() error {
	return r.Write(os.Stdout)
}

// Write encodes the response, indented, to w.
func (r *JSONResponse) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// String returns the indented encoding, or a minimal failure envelope when
// Data cannot be encoded.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		fallback, _ := json.Marshal(map[string]any{
			"success":   false,
			"error":     "encode response: " + err.Error(),
			"timestamp": now(),
		})
		return string(fallback)
	}
	return string(data)
}

// =============================================================================
// PAYLOADS
// =============================================================================

// VersionData is the payload of "prefdiff version".
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}

// ConfigData is the payload of config show, init, get and set.
type ConfigData struct {
	Path   string `json:"config_path"`
	Key    string `json:"key,omitempty"`
	Value  any    `json:"value,omitempty"`
	Config any    `json:"config,omitempty"`
}

// ConfigPathData is the payload of "prefdiff config path".
type ConfigPathData struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}
