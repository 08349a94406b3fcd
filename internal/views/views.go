// Package views derives the index listings served to renderers: pure
// functions over the fully built registry. No view may drop a document.
package views

import (
	"sort"
	"strings"
	"unicode"

	"github.com/starward/gwiki/internal/models"
	"github.com/starward/gwiki/internal/registry"
)

// Bucket names for documents that fit no regular group.
const (
	NonLetterBucket = "#"
	UntaggedBucket  = "untagged"
)

// LetterGroup is one alphabetical section.
type LetterGroup struct {
	Letter string                   `json:"letter"`
	Docs   []*models.DocumentRecord `json:"docs"`
}

// TagGroup lists the documents carrying one tag.
type TagGroup struct {
	Tag  string                   `json:"tag"`
	Docs []*models.DocumentRecord `json:"docs"`
}

// YearGroup is one chronological section, newest years first.
type YearGroup struct {
	Year string                   `json:"year"`
	Docs []*models.DocumentRecord `json:"docs"`
}

// SearchDoc is the flattened record exposed for client-side filtering.
type SearchDoc struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Tags    []string `json:"tags"`
	Summary string   `json:"summary,omitempty"`
}

// Alphabetical groups documents by the first letter of their title,
// case-insensitively sorted within each group. Titles not starting with a
// letter share the "#" bucket, which sorts first.
func Alphabetical(reg *registry.Registry) []LetterGroup {
	groups := make(map[string][]*models.DocumentRecord)
	for _, rec := range reg.All() {
		groups[letterOf(rec.Title)] = append(groups[letterOf(rec.Title)], rec)
	}

	letters := make([]string, 0, len(groups))
	for l := range groups {
		letters = append(letters, l)
	}
	sort.Strings(letters)

	out := make([]LetterGroup, 0, len(letters))
	for _, l := range letters {
		docs := groups[l]
		sortByTitle(docs)
		out = append(out, LetterGroup{Letter: l, Docs: docs})
	}
	return out
}

// ByTag groups documents per observed tag, sorted by title, with an
// explicit "untagged" bucket appended for documents with no tags.
func ByTag(reg *registry.Registry) []TagGroup {
	groups := make(map[string][]*models.DocumentRecord)
	var untagged []*models.DocumentRecord
	for _, rec := range reg.All() {
		if len(rec.Tags) == 0 {
			untagged = append(untagged, rec)
			continue
		}
		for _, tag := range rec.Tags {
			groups[tag] = append(groups[tag], rec)
		}
	}

	tags := make([]string, 0, len(groups))
	for tag := range groups {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	out := make([]TagGroup, 0, len(tags)+1)
	for _, tag := range tags {
		docs := groups[tag]
		sortByTitle(docs)
		out = append(out, TagGroup{Tag: tag, Docs: docs})
	}
	if len(untagged) > 0 {
		sortByTitle(untagged)
		out = append(out, TagGroup{Tag: UntaggedBucket, Docs: untagged})
	}
	return out
}

// Chronological orders documents by creation date descending with id
// ascending as the tiebreak, grouped by year, newest year first.
func Chronological(reg *registry.Registry) []YearGroup {
	docs := reg.All()
	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})

	var out []YearGroup
	for _, rec := range docs {
		year := rec.CreatedAt.Format("2006")
		if len(out) == 0 || out[len(out)-1].Year != year {
			out = append(out, YearGroup{Year: year})
		}
		out[len(out)-1].Docs = append(out[len(out)-1].Docs, rec)
	}
	return out
}

// SearchDocs flattens the registry for client-side substring filtering,
// ordered by id.
func SearchDocs(reg *registry.Registry) []SearchDoc {
	out := make([]SearchDoc, 0, reg.Len())
	for _, rec := range reg.All() {
		tags := rec.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, SearchDoc{
			ID:      rec.ID,
			Title:   rec.Title,
			Tags:    tags,
			Summary: rec.Summary,
		})
	}
	return out
}

// Filter returns the docs matching query: case-insensitive substring of the
// title, any tag, or the summary. An empty query matches everything.
func Filter(docs []SearchDoc, query string) []SearchDoc {
	if query == "" {
		return docs
	}
	q := strings.ToLower(query)
	var out []SearchDoc
	for _, d := range docs {
		if d.matches(q) {
			out = append(out, d)
		}
	}
	return out
}

func (d SearchDoc) matches(lowerQuery string) bool {
	if strings.Contains(strings.ToLower(d.Title), lowerQuery) {
		return true
	}
	for _, tag := range d.Tags {
		if strings.Contains(strings.ToLower(tag), lowerQuery) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(d.Summary), lowerQuery)
}

func letterOf(title string) string {
	for _, r := range title {
		if unicode.IsLetter(r) {
			return strings.ToUpper(string(r))
		}
		return NonLetterBucket
	}
	return NonLetterBucket
}

func sortByTitle(docs []*models.DocumentRecord) {
	sort.SliceStable(docs, func(i, j int) bool {
		ti, tj := strings.ToLower(docs[i].Title), strings.ToLower(docs[j].Title)
		if ti != tj {
			return ti < tj
		}
		return docs[i].ID < docs[j].ID
	})
}
