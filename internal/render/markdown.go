package render

import (
	"regexp"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// Document is a script laid out for a fixed column width: one entry per
// terminal row, already styled.
type Document struct {
	Lines []string
	Width int
}

// Height returns the number of rows.
func (d Document) Height() int { return len(d.Lines) }

// Window returns up to n rows starting at row first.
func (d Document) Window(first, n int) []string {
	if first < 0 {
		first = 0
	}
	if first >= len(d.Lines) || n <= 0 {
		return nil
	}
	end := first + n
	if end > len(d.Lines) {
		end = len(d.Lines)
	}
	return d.Lines[first:end]
}

var (
	headingRe = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*\s*$`)
	listRe    = regexp.MustCompile(`^(\s*)([-*+]|\d+[.)])\s+(.*)$`)
	ruleRe    = regexp.MustCompile(`^\s*([-*_])(\s*([-*_])){2,}\s*$`)
	fenceRe   = regexp.MustCompile("^\\s*(```|~~~)")
)

type blockKind int

const (
	blockParagraph blockKind = iota
	blockHeading
	blockList
	blockQuote
	blockCode
	blockRule
)

type block struct {
	kind  blockKind
	level int // heading level
	text  []string
	items []listItem
}

type listItem struct {
	marker string
	indent int // leading spaces
	text   []string
}

// Render lays markdown out in rows of at most width cells. Blocks are
// separated by one blank row.
func Render(markdown string, width int, styles Styles) Document {
	if width < 8 {
		width = 8
	}
	doc := Document{Width: width}
	for i, b := range parseBlocks(markdown) {
		if i > 0 {
			doc.Lines = append(doc.Lines, "")
		}
		doc.Lines = append(doc.Lines, renderBlock(b, width, styles)...)
	}
	return doc
}

func parseBlocks(markdown string) []block {
	src := strings.ReplaceAll(markdown, "\r\n", "\n")
	lines := strings.Split(src, "\n")

	var blocks []block
	var cur *block
	closeBlock := func() {
		if cur != nil {
			blocks = append(blocks, *cur)
			cur = nil
		}
	}

	inFence := false
	for _, line := range lines {
		if fenceRe.MatchString(line) {
			if inFence {
				inFence = false
				closeBlock()
			} else {
				closeBlock()
				inFence = true
				cur = &block{kind: blockCode}
			}
			continue
		}
		if inFence {
			cur.text = append(cur.text, strings.ReplaceAll(line, "\t", "    "))
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			closeBlock()
		case ruleRe.MatchString(line):
			closeBlock()
			blocks = append(blocks, block{kind: blockRule})
		case headingRe.MatchString(trimmed):
			closeBlock()
			m := headingRe.FindStringSubmatch(trimmed)
			blocks = append(blocks, block{kind: blockHeading, level: len(m[1]), text: []string{m[2]}})
		case listRe.MatchString(line):
			m := listRe.FindStringSubmatch(line)
			if cur == nil || cur.kind != blockList {
				closeBlock()
				cur = &block{kind: blockList}
			}
			cur.items = append(cur.items, listItem{marker: m[2], indent: len(m[1]), text: []string{m[3]}})
		case strings.HasPrefix(trimmed, ">"):
			if cur == nil || cur.kind != blockQuote {
				closeBlock()
				cur = &block{kind: blockQuote}
			}
			cur.text = append(cur.text, strings.TrimSpace(strings.TrimPrefix(trimmed, ">")))
		default:
			if cur == nil {
				cur = &block{kind: blockParagraph}
			}
			if cur.kind == blockList {
				last := &cur.items[len(cur.items)-1]
				last.text = append(last.text, trimmed)
				continue
			}
			cur.text = append(cur.text, trimmed)
		}
	}
	closeBlock()
	return blocks
}

func renderBlock(b block, width int, styles Styles) []string {
	switch b.kind {
	case blockHeading:
		style := styles.Heading3
		switch b.level {
		case 1:
			style = styles.Heading1
		case 2:
			style = styles.Heading2
		}
		return renderRows(wrapSpans([]span{{text: plainText(b.text[0])}}, width), func(span) lipgloss.Style { return style }, "", "", styles)
	case blockRule:
		return []string{styles.Rule.Render(strings.Repeat("─", width))}
	case blockCode:
		rows := make([]string, 0, len(b.text))
		for _, line := range b.text {
			rows = append(rows, styles.CodeBody.Render(ansi.Truncate(line, width, "…")))
		}
		return rows
	case blockQuote:
		bar := styles.QuoteBar.Render("│ ")
		spans := parseInline(strings.Join(b.text, " "))
		return renderRows(wrapSpans(spans, width-2), func(span) lipgloss.Style { return styles.Quote }, bar, bar, styles)
	case blockList:
		var rows []string
		for _, item := range b.items {
			rows = append(rows, renderListItem(item, width, styles)...)
		}
		return rows
	default:
		spans := parseInline(strings.Join(b.text, " "))
		return renderRows(wrapSpans(spans, width), nil, "", "", styles)
	}
}

func renderListItem(item listItem, width int, styles Styles) []string {
	indent := strings.Repeat(" ", (item.indent/2)*2)

	bullet := "• "
	if item.marker != "-" && item.marker != "*" && item.marker != "+" {
		bullet = item.marker + " "
	}
	hang := strings.Repeat(" ", ansi.StringWidth(bullet))
	first := indent + styles.Bullet.Render(bullet)
	rest := indent + hang

	inner := width - len(indent) - ansi.StringWidth(bullet)
	if inner < 4 {
		inner = 4
	}
	return renderRows(wrapSpans(parseInline(strings.Join(item.text, " ")), inner), nil, first, rest, styles)
}

// renderRows styles each span and prefixes rows; first goes on the first
// row and rest on the others. A nil styleFor uses the inline styles.
func renderRows(rows [][]span, styleFor func(span) lipgloss.Style, first, rest string, styles Styles) []string {
	if styleFor == nil {
		styleFor = func(sp span) lipgloss.Style { return inlineStyle(sp.kind, styles) }
	}
	out := make([]string, 0, len(rows))
	for i, row := range rows {
		var b strings.Builder
		if i == 0 {
			b.WriteString(first)
		} else {
			b.WriteString(rest)
		}
		for _, sp := range row {
			if sp.text == " " && sp.kind == spanText {
				b.WriteString(" ")
				continue
			}
			b.WriteString(styleFor(sp).Render(sp.text))
		}
		out = append(out, b.String())
	}
	return out
}

func inlineStyle(kind spanKind, styles Styles) lipgloss.Style {
	switch kind {
	case spanStrong:
		return styles.Strong
	case spanEmphasis:
		return styles.Emphasis
	case spanCode:
		return styles.InlineCode
	case spanLink:
		return styles.Link
	default:
		return styles.Body
	}
}
