package update

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"

	"github.com/lucas-albers-lz4/vup/pkg/fileutil"
)

// ReportPath is the conventional location of the run report, relative to the
// repository root.
const ReportPath = ".update-report.txt"

// WriteReport renders the run report to path. When the run produced nothing
// worth reporting (no changes, no pending major upgrades, no failures) any
// stale report file is removed instead, so the file's presence always means
// there is something to look at.
func WriteReport(fs afero.Fs, path string, outcomes []Outcome) error {
	text := renderReport(outcomes)
	if text == "" {
		if err := fs.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove stale report %s: %w", path, err)
		}
		return nil
	}
	if err := afero.WriteFile(fs, path, []byte(text), fileutil.ReadWriteUserReadOthers); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

func renderReport(outcomes []Outcome) string {
	var (
		counts       = map[Status]int{}
		chartChanges []Change
		imageChanges []Change
		failures     []Outcome
		majors       []Outcome
	)
	for _, out := range outcomes {
		counts[out.Status]++
		switch {
		case out.Kind == kindImage:
			imageChanges = append(imageChanges, out.Changes...)
		default:
			chartChanges = append(chartChanges, out.Changes...)
		}
		if out.Status == StatusFailed {
			failures = append(failures, out)
		}
		if out.Major != nil {
			majors = append(majors, out)
		}
	}

	if len(chartChanges) == 0 && len(imageChanges) == 0 && len(majors) == 0 && len(failures) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Version update report: %d updated, %d up to date, %d skipped, %d failed\n",
		counts[StatusUpdated], counts[StatusUpToDate], counts[StatusSkipped], counts[StatusFailed])

	writeChanges := func(header string, changes []Change) {
		if len(changes) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n%s\n", header)
		for _, c := range changes {
			fmt.Fprintf(&b, "  %s: %s → %s [%s]\n", c.Name, c.Old, c.New, c.File)
		}
	}
	writeChanges("Helm chart updates:", chartChanges)
	writeChanges("Docker image updates:", imageChanges)

	if len(majors) > 0 {
		b.WriteString("\nMajor upgrades available (not applied):\n")
		for _, out := range majors {
			m := out.Major
			fmt.Fprintf(&b, "  %s: %s → %s (major %d → %d)\n",
				m.ID, m.CurrentTag, m.AvailableTag, m.CurrentMajor, m.NewMajor)
		}
	}

	if len(failures) > 0 {
		b.WriteString("\nFailures:\n")
		for _, out := range failures {
			fmt.Fprintf(&b, "  %s %s: %s\n", out.Kind, out.Name, out.Reason)
		}
	}
	return b.String()
}
