// Package validator reports unresolved references in a deterministic,
// line-numbered format. It is a read-only advisory pass: broken links never
// fail a build.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/starward/gwiki/internal/graph"
	"github.com/starward/gwiki/internal/registry"
)

// Report is one broken reference with enough context to jump to it.
type Report struct {
	SourceID    string `json:"source"`
	SourcePath  string `json:"path"`
	SourceLine  int    `json:"line"`
	TargetToken string `json:"token"`
}

// String renders the report in the stable log format, with the line number
// zero-padded to four digits so reports diff cleanly between builds.
func (r Report) String() string {
	return fmt.Sprintf(`%s:%04d → \wref{%s}`, r.SourcePath, r.SourceLine, r.TargetToken)
}

// Validate resolves every reference occurrence with the link graph's
// resolver and returns a report per failure, ordered by source id then
// source line ascending.
func Validate(reg *registry.Registry) []Report {
	res := graph.NewResolver(reg)
	var out []Report

	refs := reg.References()
	for _, sourceID := range reg.IDs() {
		path, _ := reg.PathOf(sourceID)
		for _, ref := range refs[sourceID] {
			if _, _, ok := res.Resolve(ref.Target); ok {
				continue
			}
			out = append(out, Report{
				SourceID:    sourceID,
				SourcePath:  path,
				SourceLine:  ref.SourceLine,
				TargetToken: ref.TargetToken,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SourceID != out[j].SourceID {
			return out[i].SourceID < out[j].SourceID
		}
		return out[i].SourceLine < out[j].SourceLine
	})
	return out
}

// Render formats reports as compact lines for log consumption, one per
// occurrence, with a leading count line. An empty report list renders
// empty.
func Render(reports []Report) string {
	if len(reports) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d broken link(s):\n", len(reports))
	for _, r := range reports {
		b.WriteString("  ")
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	return b.String()
}
