// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package capture

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/prefdiff/internal/snapshot"
	"github.com/jeranaias/prefdiff/internal/value"
)

// DefaultConcurrency is the number of domains exported at once.
const DefaultConcurrency = 8

// Options configures a capture.
type Options struct {
	// Concurrency limits parallel exports. Default: DefaultConcurrency
	Concurrency int

	// Include keeps only domains matching one of these globs (path.Match
	// syntax). Empty means all domains.
	Include []string

	// Exclude drops domains matching any of these globs.
	Exclude []string

	// Progress is called after each domain finishes, from any goroutine.
	Progress func(done, total int)

	// Logger receives per-domain failures. Default: slog.Default()
	Logger *slog.Logger

	// Now stamps the snapshot. Default: time.Now
	Now func() time.Time
}

// Capture reads every selected domain and builds a snapshot.
//
// Domains that fail to export or parse are recorded as unreadable in the
// snapshot rather than dropped. Only failing to list domains, context
// cancellation and a malformed capture are returned as errors.
func Capture(ctx context.Context, reader Reader, opts Options) (*snapshot.Snapshot, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	all, err := reader.Domains(ctx)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}

	domains, err := Select(all, opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}
	log.Debug("capture started", "domains", len(domains), "listed", len(all), "concurrency", limit)

	var (
		mu         sync.Mutex
		entries    []snapshot.Entry
		unreadable []string
		done       int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, domain := range domains {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			values, err := readDomain(gctx, reader, domain)

			mu.Lock()
			defer mu.Unlock()

			// Cancellation is not a property of the domain.
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}

			if err != nil {
				log.Debug("domain unreadable", "domain", domain, "error", err)
				unreadable = append(unreadable, domain)
			} else {
				for k, v := range values {
					entries = append(entries, snapshot.Entry{Domain: domain, Key: k, Value: v})
				}
			}

			done++
			if opts.Progress != nil {
				opts.Progress(done, len(domains))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}

	snap, err := snapshot.Build(entries, unreadable, snapshot.WithCapturedAt(now()))
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}

	log.Debug("capture finished",
		"id", snap.ID(),
		"domains", snap.DomainCount(),
		"keys", snap.KeyCount(),
		"unreadable", len(unreadable))
	return snap, nil
}

func readDomain(ctx context.Context, reader Reader, domain string) (map[string]value.Value, error) {
	data, err := reader.Export(ctx, domain)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Select filters domains by include and exclude globs, keeping order.
// A malformed pattern is an error.
func Select(domains, include, exclude []string) ([]string, error) {
	for _, p := range append(append([]string{}, include...), exclude...) {
		if _, err := path.Match(p, ""); err != nil {
			return nil, fmt.Errorf("invalid domain pattern %q: %w", p, err)
		}
	}

	out := make([]string, 0, len(domains))
	for _, d := range domains {
		if len(include) > 0 && !matchAny(include, d) {
			continue
		}
		if matchAny(exclude, d) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}
