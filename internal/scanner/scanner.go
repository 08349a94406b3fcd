// Package scanner extracts GWiki metadata directives and cross-references
// from raw LaTeX-style note content.
package scanner

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starward/gwiki/internal/models"
)

var (
	frontmatterRe = regexp.MustCompile(`(?ms)^\s*%?\s*---\s*\n(.*?)\n\s*%?\s*---`)
	commentPrefRe = regexp.MustCompile(`^\s*%+\s?`)

	metaRe    = regexp.MustCompile(`\\GWikiMeta\{([^}]*)\}\{([^}]*)\}\{([^}]*)\}(?:\[([^\]]*)\])?(?:\[([^\]]*)\])?`)
	titleRe   = regexp.MustCompile(`\\(?:GWikiTitle|Title)\{([^}]+)\}`)
	typeRe    = regexp.MustCompile(`\\GWikiType\{([^}]+)\}`)
	tagsRe    = regexp.MustCompile(`\\Tags\{([^}]*)\}`)
	aliasesRe = regexp.MustCompile(`\\Aliases\{([^}]+)\}`)
	summaryRe = regexp.MustCompile(`(?s)\\(?:GWikiSummary|Summary|Topics)\{([^}]+)\}`)
	dateRe    = regexp.MustCompile(`\\GWikiDate\{([^}]+)\}`)
	braceRe   = regexp.MustCompile(`\{([^}]+)\}`)

	commentLineRe = regexp.MustCompile(`^\s*%`)
	refRe         = regexp.MustCompile(`\\(?:wref|wikiref|articleref)\{([^}]+)\}(?:\[([^\]]*)\])?`)
)

// Metadata holds the fields extracted from one document's directives.
// Created is the raw date string as written by the author; the registry is
// responsible for interpreting it.
type Metadata struct {
	Title   string
	Type    string
	Tags    []string
	Aliases []string
	Summary string
	Created string
}

// Result is the output of scanning one document.
type Result struct {
	Meta Metadata
	// References are in document order with 1-based line numbers.
	// SourceID is left empty; the caller owns document identity.
	References []models.Reference
}

// Scan extracts metadata and references from raw note content. Malformed
// directives degrade to partial results; Scan never fails.
//
// Metadata sources are tried in a fixed order — commented frontmatter block,
// compact \GWikiMeta directive, individual directives — and the first source
// that yields a non-empty value for a field wins. Later sources never
// override an already-populated field.
func Scan(data []byte) *Result {
	text := string(data)

	strategies := []func(string) Metadata{
		fromFrontmatter,
		fromMetaDirective,
		fromDirectives,
	}

	var meta Metadata
	for _, extract := range strategies {
		meta = mergeMeta(meta, extract(text))
	}

	return &Result{
		Meta:       meta,
		References: extractReferences(text),
	}
}

// mergeMeta fills empty fields of dst from src, left-to-right precedence.
func mergeMeta(dst, src Metadata) Metadata {
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if dst.Type == "" {
		dst.Type = src.Type
	}
	if len(dst.Tags) == 0 {
		dst.Tags = src.Tags
	}
	if len(dst.Aliases) == 0 {
		dst.Aliases = src.Aliases
	}
	if dst.Summary == "" {
		dst.Summary = src.Summary
	}
	if dst.Created == "" {
		dst.Created = src.Created
	}
	return dst
}

// fromFrontmatter parses a YAML block at the top of the file. The block may
// be commented out for LaTeX (% --- … % ---); comment prefixes are stripped
// before parsing. Invalid YAML yields no fields rather than an error.
func fromFrontmatter(text string) Metadata {
	m := frontmatterRe.FindStringSubmatch(text)
	if m == nil {
		return Metadata{}
	}

	var lines []string
	for _, line := range strings.Split(m[1], "\n") {
		lines = append(lines, commentPrefRe.ReplaceAllString(line, ""))
	}

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(strings.Join(lines, "\n")), &fm); err != nil || fm == nil {
		return Metadata{}
	}

	meta := Metadata{
		Title:   stringField(fm, "title"),
		Type:    stringField(fm, "type"),
		Summary: stringField(fm, "summary"),
		Tags:    listField(fm, "tags", "tag"),
		Aliases: listField(fm, "aliases", "alias"),
	}
	for _, key := range []string{"date_created", "created", "date"} {
		if v := stringField(fm, key); v != "" {
			meta.Created = v
			break
		}
	}
	return meta
}

// fromMetaDirective parses the compact \GWikiMeta{id}{title}{type}[tags][aliases].
func fromMetaDirective(text string) Metadata {
	m := metaRe.FindStringSubmatch(text)
	if m == nil {
		return Metadata{}
	}
	meta := Metadata{
		Title: strings.TrimSpace(m[2]),
		Type:  strings.TrimSpace(m[3]),
	}
	if m[4] != "" {
		meta.Tags = splitList(m[4])
	}
	if m[5] != "" {
		meta.Aliases = splitList(m[5])
	}
	return meta
}

// fromDirectives parses the individual single-purpose directives.
func fromDirectives(text string) Metadata {
	var meta Metadata

	if m := titleRe.FindStringSubmatch(text); m != nil {
		meta.Title = strings.TrimSpace(m[1])
	}
	if m := typeRe.FindStringSubmatch(text); m != nil {
		meta.Type = strings.TrimSpace(m[1])
	}
	// \Tags may appear multiple times; occurrences accumulate in order.
	for _, m := range tagsRe.FindAllStringSubmatch(text, -1) {
		meta.Tags = append(meta.Tags, splitList(m[1])...)
	}
	if m := aliasesRe.FindStringSubmatch(text); m != nil {
		meta.Aliases = splitList(m[1])
	}
	if m := summaryRe.FindStringSubmatch(text); m != nil {
		meta.Summary = strings.Join(strings.Fields(m[1]), " ")
	}
	if m := dateRe.FindStringSubmatch(text); m != nil {
		meta.Created = strings.TrimSpace(m[1])
	}
	return meta
}

// splitList parses a tag/alias argument. Two surface forms are accepted:
// a comma-separated list ("a, b, c") and bracket groups ("{a}{b}{c}").
// Entries are trimmed; empties dropped.
func splitList(raw string) []string {
	var parts []string
	switch {
	case strings.Contains(raw, "{"):
		for _, m := range braceRe.FindAllStringSubmatch(raw, -1) {
			parts = append(parts, m[1])
		}
	default:
		parts = strings.Split(raw, ",")
	}

	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// extractReferences finds \wref, \wikiref and \articleref occurrences with
// their 1-based source lines. Directive bodies are single-line only: an
// argument left open at end of line does not match. Comment lines are
// skipped, as are internal section references (targets starting with "#").
func extractReferences(text string) []models.Reference {
	var refs []models.Reference
	for i, line := range strings.Split(text, "\n") {
		if commentLineRe.MatchString(line) {
			continue
		}
		for _, m := range refRe.FindAllStringSubmatch(line, -1) {
			token := strings.TrimSpace(m[1])
			if token == "" || strings.HasPrefix(token, "#") {
				continue
			}
			base := token
			if j := strings.Index(base, "#"); j >= 0 {
				base = base[:j]
			}
			refs = append(refs, models.Reference{
				SourceLine:  i + 1,
				TargetToken: token,
				Target:      strings.TrimSpace(base),
				DisplayText: m[2],
			})
		}
	}
	return refs
}

func stringField(fm map[string]any, key string) string {
	if v, ok := fm[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// listField reads the first present key as a list. A plain string value is
// treated as comma-separated.
func listField(fm map[string]any, keys ...string) []string {
	for _, key := range keys {
		raw, ok := fm[key]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case []any:
			var out []string
			for _, item := range v {
				if s, ok := item.(string); ok {
					if s = strings.TrimSpace(s); s != "" {
						out = append(out, s)
					}
				}
			}
			return out
		case string:
			return splitList(v)
		}
	}
	return nil
}
