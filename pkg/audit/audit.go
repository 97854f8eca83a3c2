// Package audit coordinates a full dependency-tree audit: discovery,
// flattening, registry resolution, and bounded-parallel test execution.
package audit

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pkgvet/pkgvet/pkg/executor"
	"github.com/pkgvet/pkgvet/pkg/inspect"
	"github.com/pkgvet/pkgvet/pkg/registry"
	"github.com/pkgvet/pkgvet/pkg/report"
	"github.com/pkgvet/pkgvet/pkg/tree"
	"github.com/pkgvet/pkgvet/pkg/types"
)

// Result pairs one processed candidate with its terminal state.
type Result struct {
	Candidate *tree.Candidate
	Status    executor.Status
}

// Audit runs the two-phase audit over the project at opts.Dir and returns the
// populated report plus per-candidate outcomes. The phases are strictly
// sequential: every candidate's latest version is resolved before any test
// runs, since the outdated-version warning depends on it.
func Audit(ctx context.Context, opts *types.Options) (*report.Report, []Result, error) {
	if opts.Parallel <= 0 {
		opts.Parallel = types.DefaultParallel
	}
	if opts.Depth <= 0 {
		opts.Depth = types.DefaultDepth
	}

	root, err := tree.Discover(opts.Dir, opts.Depth)
	if err != nil {
		return nil, nil, err
	}
	candidates := tree.Flatten(root)
	if len(candidates) == 0 {
		return nil, nil, types.ErrNoPackages
	}
	log.Infof("Discovered %d dependency tree candidate(s) under %s", len(candidates), opts.Dir)

	rep := report.New()

	client := registry.NewClient(opts.RegistryURL)
	if err := resolvePhase(ctx, client, candidates, opts.Parallel); err != nil {
		return nil, nil, err
	}

	runner := &executor.ExecRunner{Timeout: opts.Timeout, Forward: opts.TestOutput}
	exe := &executor.Executor{
		Report:    rep,
		Inspector: &inspect.Inspector{RuntimeVersion: executor.DetectRuntime(ctx, runner)},
		Runner:    runner,
		WorkDir:   opts.Dir,
		RunTests:  opts.RunTests,
	}
	results, err := testPhase(ctx, exe, candidates, opts.Parallel)
	if err != nil {
		return nil, nil, err
	}

	if opts.DumpFile != "" {
		if err := rep.Dump(opts.DumpFile); err != nil {
			log.Warnf("report dump failed: %v", err)
		}
	}
	return rep, results, nil
}

// resolvePhase annotates every candidate with its latest registry version,
// at most parallel lookups in flight. Lookup failures degrade inside Resolve;
// only context cancellation ends the phase early.
func resolvePhase(ctx context.Context, client *registry.Client, candidates []*tree.Candidate, parallel int) error {
	sem := make(chan struct{}, parallel)
	g, gctx := errgroup.WithContext(ctx)

	for _, cand := range candidates {
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			client.Resolve(gctx, cand)
			return nil
		})
	}
	return g.Wait()
}

// testPhase runs inspection and the install/test cycle for every candidate,
// at most parallel candidates in flight. Per-candidate failures are recorded
// in the report and never end the phase.
func testPhase(ctx context.Context, exe *executor.Executor, candidates []*tree.Candidate, parallel int) ([]Result, error) {
	sem := make(chan struct{}, parallel)
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	results := make([]Result, 0, len(candidates))

	for _, cand := range candidates {
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			status := exe.Process(gctx, cand)
			log.Debugf("candidate %s finished as %s", cand.Path, status)

			mu.Lock()
			results = append(results, Result{Candidate: cand, Status: status})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
