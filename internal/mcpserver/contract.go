package mcpserver

// SourceFormatContract describes the canonical GWiki source format that
// LLM consumers should follow when writing documents.
const SourceFormatContract = `# GWiki Source Format Contract

Every source file indexed by GWiki MUST follow this structure.

## Structure

` + "```" + `latex
\GWikiMeta{identifier}{Human-readable Title}{wiki}[tag-one, tag-two][alias one]

Body text. Lines starting with % are comments and are never scanned.

Reference other documents with \wref{identifier} or \wref{identifier}[display text].
` + "```" + `

Alternatively, metadata may be given as standalone directives:

` + "```" + `latex
\Title{Human-readable Title}
\Tags{tag-one, tag-two}
\Aliases{alias one, alias two}
\Summary{One short paragraph describing the document.}
\GWikiDate{2025-01-15}
\GWikiType{article}
` + "```" + `

or as YAML frontmatter between ` + "`" + `---` + "`" + ` fences at the top of the
file (keys: id, title, type, tags, aliases, summary, created). Each ` + "`" + `---` + "`" + `
fence line may carry a leading ` + "`" + `%` + "`" + ` so the block stays a comment
for LaTeX tooling.

## Rules

1. **One metadata source wins.** Frontmatter takes precedence over
   ` + "`" + `\GWikiMeta` + "`" + `, which takes precedence over standalone directives.
   Fields absent from the winning source fall through to the next one.
2. **The identifier is the file name stem.** A declared id that disagrees with
   the file name is ignored with a warning.
3. **References** use ` + "`" + `\wref{target}` + "`" + `, ` + "`" + `\wikiref{target}` + "`" + ` or
   ` + "`" + `\articleref{target}` + "`" + `. The target may be an identifier, a title or an
   alias; matching ignores case, whitespace, hyphens and punctuation.
4. **Section suffixes** (` + "`" + `\wref{target#section}` + "`" + `) resolve against the
   target document; the section part is not validated.
5. **Internal targets** starting with ` + "`" + `#` + "`" + ` refer to the current document
   and are never treated as cross-document references.
6. **Tags** are lowercase, comma-separated or given as brace groups
   (` + "`" + `\Tags{a}{b}` + "`" + `).
7. **Creation dates** are remembered per identifier across rebuilds. A
   ` + "`" + `\GWikiDate` + "`" + ` directive seeds the first observation only; afterwards the
   ledger value wins.
8. **File paths** end with ` + "`" + `.tex` + "`" + ` and use forward slashes. Files under a
   directory named ` + "`" + `articles` + "`" + ` are typed article, under ` + "`" + `wiki` + "`" + `
   wiki, anything else note.

## Example

` + "```" + `latex
\GWikiMeta{hashlife}{Hashlife}{wiki}[algorithms, life][hash life]
\Summary{Memoized quadtree algorithm for Conway's Game of Life.}

% draft, needs review
Hashlife builds on \wref{gameoflife}[the Game of Life] and on
\wref{quadtree#construction}.
` + "```" + `
`
