// Package report holds the shared audit report. The report is the single
// mutable structure shared across concurrently processed candidates, so every
// mutation goes through methods that hold the report lock.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

const (
	// NoVersion tracks manifests that declare no version. Such entries are
	// still counted and inspected but exempt from semver and registry checks.
	NoVersion = "NO_VERSION"

	// LatestUnknown marks a module whose registry lookup failed.
	LatestUnknown = "unknown"
)

// VersionReport accumulates findings for one distinct (name, version) pair.
type VersionReport struct {
	Errors           []string       `json:"errors,omitempty"`
	Warnings         []string       `json:"warnings,omitempty"`
	Fields           map[string]any `json:"fields,omitempty"`
	RefCount         int            `json:"refCount"`
	TestsPassing     bool           `json:"testsPassing"`
	DependencyChains []string       `json:"dependencyChains,omitempty"`
	LatestVersion    string         `json:"latestVersion,omitempty"`
}

// ModuleReport aggregates every encountered version of one module.
type ModuleReport struct {
	Description string                    `json:"description,omitempty"`
	RefCount    int                       `json:"refCount"`
	Versions    map[string]*VersionReport `json:"versions"`
}

// Report is the process-scoped audit result handed to rendering.
type Report struct {
	mu sync.Mutex

	Modules map[string]*ModuleReport `json:"modules"`

	// GlobalErrors records failures not attributable to a (name, version)
	// pair, such as unreadable manifests.
	GlobalErrors []string `json:"globalErrors,omitempty"`
}

// New returns an empty report.
func New() *Report {
	return &Report{Modules: make(map[string]*ModuleReport)}
}

// Ensure returns the VersionReport for (name, version), creating it on first
// encounter. The check-then-create is atomic: two candidates racing on the
// same diamond dependency observe exactly one creation. The second return is
// true when this call created the entry; duplicate encounters bump both the
// name-level and version-level reference counts instead.
func (r *Report) Ensure(name, version string) (*VersionReport, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mod, ok := r.Modules[name]
	if !ok {
		mod = &ModuleReport{Versions: make(map[string]*VersionReport)}
		r.Modules[name] = mod
	}

	if vr, ok := mod.Versions[version]; ok {
		mod.RefCount++
		vr.RefCount++
		return vr, false
	}

	vr := &VersionReport{RefCount: 1, Fields: make(map[string]any)}
	mod.Versions[version] = vr
	mod.RefCount++
	return vr, true
}

// SetDescription records the module-level description once; later calls with
// a different value are ignored.
func (r *Report) SetDescription(name, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mod, ok := r.Modules[name]; ok && mod.Description == "" {
		mod.Description = description
	}
}

// AppendError adds an error finding to vr.
func (r *Report) AppendError(vr *VersionReport, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vr.Errors = append(vr.Errors, msg)
}

// AppendWarning adds a warning finding to vr.
func (r *Report) AppendWarning(vr *VersionReport, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vr.Warnings = append(vr.Warnings, msg)
}

// SetField stores a present manifest attribute under its normalized key.
func (r *Report) SetField(vr *VersionReport, key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vr.Fields[key] = value
}

// AppendChain records one more dependency chain leading to this module.
func (r *Report) AppendChain(vr *VersionReport, chain string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vr.DependencyChains = append(vr.DependencyChains, chain)
}

// RecordLatest stores the registry's latest known version if none is recorded
// yet, reporting whether the write happened.
func (r *Report) RecordLatest(vr *VersionReport, latest string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if vr.LatestVersion != "" || latest == "" {
		return false
	}
	vr.LatestVersion = latest
	return true
}

// SetTestsPassing records the install/test outcome for vr.
func (r *Report) SetTestsPassing(vr *VersionReport, passing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vr.TestsPassing = passing
}

// AddGlobalError records a process-wide failure that is not tied to a module.
func (r *Report) AddGlobalError(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.GlobalErrors = append(r.GlobalErrors, msg)
}

// Counts returns the total number of error and warning findings, including
// global errors.
func (r *Report) Counts() (errs, warns int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	errs = len(r.GlobalErrors)
	for _, mod := range r.Modules {
		for _, vr := range mod.Versions {
			errs += len(vr.Errors)
			warns += len(vr.Warnings)
		}
	}
	return errs, warns
}

// ModuleNames returns all module names in sorted order.
func (r *Report) ModuleNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.Modules))
	for name := range r.Modules {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Module returns the report for one module, or nil when unknown.
func (r *Report) Module(name string) *ModuleReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Modules[name]
}

// Dump serializes the report as indented JSON to path. The dump is a debug
// aid, not part of the stable output contract.
func (r *Report) Dump(path string) error {
	r.mu.Lock()
	data, err := json.MarshalIndent(r, "", "  ")
	r.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write report dump: %w", err)
	}
	log.Debugf("wrote report dump to %s", path)
	return nil
}
