package audit

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/pkgvet/pkgvet/pkg/report"
)

// printSummary renders the consolidated report as a table, followed by the
// individual findings. Warnings are listed only when showWarnings is set.
func printSummary(rep *report.Report, showWarnings bool) {
	var buf bytes.Buffer
	writer := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintln(writer, "MODULE\tVERSION\tREFS\tERRORS\tWARNINGS\tTESTS")

	for _, name := range rep.ModuleNames() {
		mod := rep.Module(name)
		for _, version := range versionNames(mod) {
			vr := mod.Versions[version]
			row := fmt.Sprintf("%s\t%s\t%d\t%d\t%d\t%s",
				name, version, vr.RefCount, len(vr.Errors), len(vr.Warnings), testsCell(vr))
			fmt.Fprintln(writer, row)
		}
	}
	writer.Flush()
	log.Infof("\n\n--- Audit Summary ---\n%s", buf.String())

	for _, msg := range rep.GlobalErrors {
		log.Errorf("%s", msg)
	}
	for _, name := range rep.ModuleNames() {
		mod := rep.Module(name)
		for _, version := range versionNames(mod) {
			vr := mod.Versions[version]
			for _, msg := range vr.Errors {
				log.Errorf("%s@%s: %s", name, version, msg)
			}
			if !showWarnings {
				continue
			}
			for _, msg := range vr.Warnings {
				log.Warnf("%s@%s: %s", name, version, msg)
			}
		}
	}

	errs, warns := rep.Counts()
	log.Infof("Audit completed: %d error(s), %d warning(s)", errs, warns)
}

func versionNames(mod *report.ModuleReport) []string {
	names := make([]string, 0, len(mod.Versions))
	for v := range mod.Versions {
		names = append(names, v)
	}
	slices.Sort(names)
	return names
}

func testsCell(vr *report.VersionReport) string {
	if vr.TestsPassing {
		return "pass"
	}
	return "-"
}
