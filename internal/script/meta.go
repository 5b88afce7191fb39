// Package script reads teleprompter scripts: markdown metadata, optional
// YAML front matter, and the on-disk script library.
package script

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

// UntitledTitle is used when a script has no heading.
const UntitledTitle = "Untitled"

// PreviewMaxWidth caps the preview text, in terminal cells.
const PreviewMaxWidth = 100

// Meta is the sidebar summary of a script.
type Meta struct {
	Title   string
	Preview string
}

type replacement struct {
	re   *regexp.Regexp
	with string
}

var stripRules = []replacement{
	{regexp.MustCompile(`(?m)^#{1,6}\s+`), ""},
	{regexp.MustCompile(`!\[.*?\]\(.+?\)`), ""},
	{regexp.MustCompile(`\*\*(.+?)\*\*`), "$1"},
	{regexp.MustCompile(`__(.+?)__`), "$1"},
	{regexp.MustCompile(`\*(.+?)\*`), "$1"},
	{regexp.MustCompile(`\b_(.+?)_\b`), "$1"},
	{regexp.MustCompile(`~~(.+?)~~`), "$1"},
	{regexp.MustCompile("`(.+?)`"), "$1"},
	{regexp.MustCompile(`\[(.+?)\]\(.+?\)`), "$1"},
	{regexp.MustCompile(`(?m)^\s*[-*+]\s+`), ""},
	{regexp.MustCompile(`(?m)^\s*\d+\.\s+`), ""},
	{regexp.MustCompile(`(?m)^>\s*`), ""},
}

var headingLine = regexp.MustCompile(`^#{1,6}\s+(.+)$`)

// StripMarkdown removes markdown syntax, leaving plain text for previews.
func StripMarkdown(text string) string {
	for _, rule := range stripRules {
		text = rule.re.ReplaceAllString(text, rule.with)
	}
	return strings.TrimSpace(text)
}

// ExtractMeta returns the first heading as the title and the first other
// non-empty line as the preview.
func ExtractMeta(content string) Meta {
	meta := Meta{Title: UntitledTitle}
	haveTitle := false
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if m := headingLine.FindStringSubmatch(trimmed); m != nil {
			if !haveTitle {
				meta.Title = StripMarkdown(m[1])
				haveTitle = true
			}
			continue
		}
		if meta.Preview == "" {
			meta.Preview = Truncate(StripMarkdown(trimmed), PreviewMaxWidth)
		}
		if haveTitle && meta.Preview != "" {
			break
		}
	}
	return meta
}

// Truncate shortens s to width cells, appending an ellipsis when cut.
func Truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "") + "…"
}
