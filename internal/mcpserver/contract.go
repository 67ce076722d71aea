package mcpserver

// ArticleFormat describes the article file format for LLM clients that
// create or edit articles.
const ArticleFormat = `# Quire Article Format

Articles are plain UTF-8 text files in the articles directory. The file
name without its extension is the article slug and its URL:
` + "`" + `hello-world.md` + "`" + ` is served at ` + "`" + `/articles/hello-world` + "`" + `.

## Structure

` + "```" + `text
Title of the article
1/5/2021
Markdown body starts on the third line.
` + "```" + `

1. **Line 1: title.** Any text; it may be empty.
2. **Line 2: date** as ` + "`" + `M/D/YYYY` + "`" + ` without leading zeros required. The month
   must be 1-12.
3. **Remaining lines: body** in Markdown.

Sites configured with ` + "`" + `blog.version_header: true` + "`" + ` expect one more line
before the title holding the format version number (currently ` + "`" + `0` + "`" + `).

## Markdown

Supported: headings, emphasis, ` + "`" + `~~strikethrough~~` + "`" + `, links, images,
fenced code blocks with a language (` + "```" + `go), tables with column
alignment, task lists (` + "`" + `- [x] done` + "`" + `), footnotes (` + "`" + `[^1]` + "`" + ` with a
matching ` + "`" + `[^1]: text` + "`" + ` definition), and smart punctuation.

## Rules

- Slugs use lowercase letters, digits and dashes. Files starting with a dot
  are ignored.
- Articles are listed newest first by their header date.
- Images uploaded with ` + "`" + `upload_asset` + "`" + ` are referenced by the returned
  ` + "`" + `markdownImage` + "`" + ` snippet.
- A file whose header cannot be parsed is skipped and does not appear on
  the site.
`
