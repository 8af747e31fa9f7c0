// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package capture

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"
)

// GlobalDomain is the domain holding system-wide preferences. It is not
// listed by "defaults domains" and is always added by DefaultsReader.
const GlobalDomain = "NSGlobalDomain"

// Reader lists preference domains and exports their contents.
type Reader interface {
	// Domains returns every domain name known to the system.
	Domains(ctx context.Context) ([]string, error)

	// Export returns the property list data of one domain.
	Export(ctx context.Context, domain string) ([]byte, error)
}

// =============================================================================
// DEFAULTS READER
// =============================================================================

// DefaultsReader reads preferences through the defaults command.
type DefaultsReader struct {
	// Program is the defaults executable. Default: "defaults"
	Program string

	// Timeout bounds each export. Zero means no per-call timeout.
	Timeout time.Duration

	// CurrentHost reads the by-host preferences instead.
	CurrentHost bool
}

// NewDefaultsReader creates a reader for the given executable.
func NewDefaultsReader(program string, timeout time.Duration, currentHost bool) *DefaultsReader {
	if program == "" {
		program = "defaults"
	}
	return &DefaultsReader{Program: program, Timeout: timeout, CurrentHost: currentHost}
}

// Domains runs "defaults domains" and parses its comma-separated output.
func (r *DefaultsReader) Domains(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, "domains")
	if err != nil {
		return nil, err
	}
	return ParseDomainList(string(out)), nil
}

// Export runs "defaults export <domain> -".
func (r *DefaultsReader) Export(ctx context.Context, domain string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	return r.run(ctx, "export", domain, "-")
}

func (r *DefaultsReader) run(ctx context.Context, args ...string) ([]byte, error) {
	if r.CurrentHost {
		args = append([]string{"-currentHost"}, args...)
	}

	cmd := exec.CommandContext(ctx, r.Program, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s %s: %w", r.Program, strings.Join(args, " "), ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%s %s: %w: %s", r.Program, strings.Join(args, " "), err, msg)
		}
		return nil, fmt.Errorf("%s %s: %w", r.Program, strings.Join(args, " "), err)
	}
	return stdout.Bytes(), nil
}

// ParseDomainList splits "defaults domains" output and adds GlobalDomain.
// The result is sorted and free of duplicates.
func ParseDomainList(out string) []string {
	seen := map[string]bool{GlobalDomain: true}
	domains := []string{GlobalDomain}

	for _, d := range strings.Split(out, ",") {
		d = strings.TrimSpace(d)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		domains = append(domains, d)
	}

	sort.Strings(domains)
	return domains
}

// =============================================================================
// STATIC READER
// =============================================================================

// StaticReader serves fixed domain data from memory. A domain mapped to nil
// data fails to export, which is how tests model unreadable domains.
type StaticReader struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewStaticReader creates a reader over a copy of data.
func NewStaticReader(data map[string][]byte) *StaticReader {
	r := &StaticReader{data: make(map[string][]byte, len(data))}
	for d, b := range data {
		r.data[d] = b
	}
	return r
}

// Set replaces the data of one domain.
func (r *StaticReader) Set(domain string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[domain] = data
}

// Remove drops a domain.
func (r *StaticReader) Remove(domain string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, domain)
}

// Domains returns the stored domain names, sorted.
func (r *StaticReader) Domains(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	domains := make([]string, 0, len(r.data))
	for d := range r.data {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains, nil
}

// Export returns the stored data of a domain.
func (r *StaticReader) Export(ctx context.Context, domain string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, ok := r.data[domain]
	if !ok {
		return nil, fmt.Errorf("domain %s does not exist", domain)
	}
	if data == nil {
		return nil, fmt.Errorf("domain %s is not readable", domain)
	}
	return data, nil
}
