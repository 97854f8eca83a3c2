package inspect

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	log "github.com/sirupsen/logrus"

	"github.com/pkgvet/pkgvet/pkg/manifest"
	"github.com/pkgvet/pkgvet/pkg/report"
)

// attributeChecks is the fixed per-manifest checklist.
var attributeChecks = []struct {
	path     string
	required bool
}{
	{"scripts.test", true},
	{"version", true},
	{"repository.url", false},
	{"bugs.url", false},
	{"homepage", false},
	{"license", false},
}

// Inspector folds single-manifest findings into the shared report and decides
// whether a module's tests should be run.
type Inspector struct {
	// RuntimeVersion is the detected node version (e.g. "v20.11.0"). When
	// empty, engine constraint checks are skipped.
	RuntimeVersion string
}

// Inspect records findings for m into rep. It returns whether the module is
// testable, its version report, and whether this call was the first encounter
// of the (name, version) pair.
//
// A nil or nameless manifest fails closed: it is skipped without a report
// entry. A duplicate encounter only bumps reference counts; attribute checks
// and test execution happen once per distinct pair.
func (i *Inspector) Inspect(m *manifest.Manifest, rep *report.Report) (bool, *report.VersionReport, bool) {
	if m == nil || m.Name() == "" {
		if m != nil {
			log.Debugf("skipping nameless manifest at %s", m.Path())
		}
		return false, nil, false
	}

	version := m.Version()
	if version == "" {
		version = report.NoVersion
	}

	vr, created := rep.Ensure(m.Name(), version)
	if !created {
		log.Debugf("already inspected %s@%s, counting reference only", m.Name(), version)
		return false, vr, false
	}

	i.checkEngine(rep, vr, m)

	for _, check := range attributeChecks {
		CheckAttribute(rep, vr, m, check.path, check.required)
	}
	CheckDependencyVersions(rep, vr, m, manifest.SectionDependencies)
	CheckDependencyVersions(rep, vr, m, manifest.SectionDevDependencies)

	if desc := m.Description(); desc != "" {
		rep.SetDescription(m.Name(), desc)
	}

	if version != report.NoVersion && !IsValidVersion(version) {
		rep.AppendError(vr, fmt.Sprintf("version %q is not valid semver", version))
	}

	return m.TestScript() != "", vr, true
}

// checkEngine validates the current runtime against the manifest's declared
// node engine constraint. Environment incompatibility is an error, not a
// warning.
func (i *Inspector) checkEngine(rep *report.Report, vr *report.VersionReport, m *manifest.Manifest) {
	constraint := m.EngineConstraint()
	if constraint == "" || i.RuntimeVersion == "" {
		return
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		rep.AppendError(vr, fmt.Sprintf("invalid engine constraint %q", constraint))
		return
	}
	rv, err := semver.NewVersion(strings.TrimPrefix(strings.TrimSpace(i.RuntimeVersion), "v"))
	if err != nil {
		log.Debugf("unparseable runtime version %q, skipping engine check", i.RuntimeVersion)
		return
	}
	if !c.Check(rv) {
		rep.AppendError(vr, fmt.Sprintf("engine constraint %q not satisfied by runtime %s", constraint, i.RuntimeVersion))
	}
}
