package scanner

import (
	"strings"
	"testing"
)

func TestScan_CommentedFrontmatter(t *testing.T) {
	input := []byte(`% ---
% title: Green Function
% tags: [analysis, pde]
% aliases: greens-function, green functions
% created: 2024-03-01
% ---
\begin{document}
Body.
\end{document}
`)
	r := Scan(input)
	if r.Meta.Title != "Green Function" {
		t.Errorf("title = %q", r.Meta.Title)
	}
	if len(r.Meta.Tags) != 2 || r.Meta.Tags[0] != "analysis" || r.Meta.Tags[1] != "pde" {
		t.Errorf("tags = %v", r.Meta.Tags)
	}
	if len(r.Meta.Aliases) != 2 || r.Meta.Aliases[0] != "greens-function" {
		t.Errorf("aliases = %v", r.Meta.Aliases)
	}
	if r.Meta.Created != "2024-03-01" {
		t.Errorf("created = %q", r.Meta.Created)
	}
}

func TestScan_MetaDirective(t *testing.T) {
	input := []byte(`\GWikiMeta{green-function}{Green Function}{wiki}[analysis, pde][greens]`)
	r := Scan(input)
	if r.Meta.Title != "Green Function" {
		t.Errorf("title = %q", r.Meta.Title)
	}
	if r.Meta.Type != "wiki" {
		t.Errorf("type = %q", r.Meta.Type)
	}
	if len(r.Meta.Tags) != 2 || len(r.Meta.Aliases) != 1 {
		t.Errorf("tags = %v, aliases = %v", r.Meta.Tags, r.Meta.Aliases)
	}
}

func TestScan_IndividualDirectives(t *testing.T) {
	input := []byte(`\Title{Cauchy Sequence}
\Tags{analysis, metric-spaces}
\Aliases{cauchy sequences}
\Summary{A sequence whose terms
become arbitrarily close.}
\GWikiDate{2023-11-20}
`)
	r := Scan(input)
	if r.Meta.Title != "Cauchy Sequence" {
		t.Errorf("title = %q", r.Meta.Title)
	}
	if r.Meta.Summary != "A sequence whose terms become arbitrarily close." {
		t.Errorf("summary = %q", r.Meta.Summary)
	}
	if r.Meta.Created != "2023-11-20" {
		t.Errorf("created = %q", r.Meta.Created)
	}
}

func TestScan_FirstSourceWins(t *testing.T) {
	// Frontmatter title beats \Title; \Tags fills the gap frontmatter left.
	input := []byte(`% ---
% title: From Frontmatter
% ---
\Title{From Directive}
\Tags{alpha}
`)
	r := Scan(input)
	if r.Meta.Title != "From Frontmatter" {
		t.Errorf("title = %q, want frontmatter to win", r.Meta.Title)
	}
	if len(r.Meta.Tags) != 1 || r.Meta.Tags[0] != "alpha" {
		t.Errorf("tags = %v", r.Meta.Tags)
	}
}

func TestScan_TagsBraceGroups(t *testing.T) {
	r := Scan([]byte(`\Tags{{topology}{compactness}}`))
	if len(r.Meta.Tags) != 2 || r.Meta.Tags[0] != "topology" || r.Meta.Tags[1] != "compactness" {
		t.Errorf("tags = %v", r.Meta.Tags)
	}
}

func TestScan_InvalidFrontmatterDegrades(t *testing.T) {
	input := []byte("% ---\n% : bad: yaml: {{{\n% ---\n\\Title{Recovered}\n")
	r := Scan(input)
	if r.Meta.Title != "Recovered" {
		t.Errorf("title = %q, want fallback to directive", r.Meta.Title)
	}
}

func TestScan_References(t *testing.T) {
	input := []byte(`Line one.
See \wref{cauchy-sequence} and \wref{metric-space#sec:defs}[metric spaces].
% a comment with \wref{ignored}
Also \wikiref{banach-space} and \articleref{hilbert}.
Internal \wref{#sec:intro} is skipped.
`)
	r := Scan(input)
	if len(r.References) != 4 {
		t.Fatalf("len(refs) = %d, want 4: %+v", len(r.References), r.References)
	}
	if r.References[0].SourceLine != 2 || r.References[0].Target != "cauchy-sequence" {
		t.Errorf("ref[0] = %+v", r.References[0])
	}
	if r.References[1].TargetToken != "metric-space#sec:defs" || r.References[1].Target != "metric-space" {
		t.Errorf("ref[1] = %+v", r.References[1])
	}
	if r.References[1].DisplayText != "metric spaces" {
		t.Errorf("display = %q", r.References[1].DisplayText)
	}
	if r.References[3].SourceLine != 4 || r.References[3].Target != "hilbert" {
		t.Errorf("ref[3] = %+v", r.References[3])
	}
}

func TestScan_UnclosedReferenceDoesNotMatch(t *testing.T) {
	r := Scan([]byte("broken \\wref{no-close\nnext line}\n"))
	if len(r.References) != 0 {
		t.Errorf("refs = %+v, want none for multi-line argument", r.References)
	}
}

func TestScan_RepeatedReferencesKept(t *testing.T) {
	r := Scan([]byte("\\wref{a} and \\wref{a}\n\\wref{a}\n"))
	if len(r.References) != 3 {
		t.Fatalf("len(refs) = %d, want 3", len(r.References))
	}
	if r.References[2].SourceLine != 2 {
		t.Errorf("line = %d, want 2", r.References[2].SourceLine)
	}
}

func TestScan_EmptyDocument(t *testing.T) {
	r := Scan(nil)
	if r.Meta.Title != "" || len(r.References) != 0 {
		t.Errorf("unexpected result: %+v", r)
	}
}

func TestScan_SummaryWhitespaceCollapsed(t *testing.T) {
	r := Scan([]byte("\\GWikiSummary{spread\n  over   lines}"))
	if r.Meta.Summary != "spread over lines" {
		t.Errorf("summary = %q", r.Meta.Summary)
	}
}

func TestSplitList_CommaAndBraces(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"a, b ,c", "a|b|c"},
		{"{x}{y}", "x|y"},
		{" solo ", "solo"},
		{", ,", ""},
	}
	for _, c := range cases {
		got := strings.Join(splitList(c.in), "|")
		if got != c.want {
			t.Errorf("splitList(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
