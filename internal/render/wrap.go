package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type word []span

func (w word) width() int {
	n := 0
	for _, sp := range w {
		n += runewidth.StringWidth(sp.text)
	}
	return n
}

// splitWords breaks spans at spaces. A word may carry several styles, as in
// "**bold**," where the comma stays attached.
func splitWords(spans []span) []word {
	var words []word
	var cur word
	for _, sp := range spans {
		parts := strings.Split(sp.text, " ")
		for i, part := range parts {
			if i > 0 && len(cur) > 0 {
				words = append(words, cur)
				cur = nil
			}
			if part != "" {
				cur = append(cur, span{text: part, kind: sp.kind})
			}
		}
	}
	if len(cur) > 0 {
		words = append(words, cur)
	}
	return words
}

// wrapSpans fills rows of at most width cells greedily. Words wider than a
// row are split across rows.
func wrapSpans(spans []span, width int) [][]span {
	if width < 1 {
		width = 1
	}
	var rows [][]span
	var row []span
	used := 0
	for _, w := range splitWords(spans) {
		ww := w.width()
		if ww > width {
			for _, piece := range hardSplit(w, width) {
				if used > 0 {
					rows = append(rows, row)
					row, used = nil, 0
				}
				row = append(row, piece...)
				used = word(piece).width()
			}
			continue
		}
		gap := 0
		if used > 0 {
			gap = 1
		}
		if used+gap+ww > width {
			rows = append(rows, row)
			row, used, gap = nil, 0, 0
		}
		if gap == 1 {
			row = append(row, span{text: " "})
		}
		row = append(row, w...)
		used += gap + ww
	}
	if len(row) > 0 || len(rows) == 0 {
		rows = append(rows, row)
	}
	return rows
}

// hardSplit cuts a long word into pieces of at most width cells.
func hardSplit(w word, width int) [][]span {
	var pieces [][]span
	var cur []span
	used := 0
	for _, sp := range w {
		var b strings.Builder
		for _, r := range sp.text {
			rw := runewidth.RuneWidth(r)
			if used+rw > width && used > 0 {
				if b.Len() > 0 {
					cur = append(cur, span{text: b.String(), kind: sp.kind})
					b.Reset()
				}
				pieces = append(pieces, cur)
				cur, used = nil, 0
			}
			b.WriteRune(r)
			used += rw
		}
		if b.Len() > 0 {
			cur = append(cur, span{text: b.String(), kind: sp.kind})
		}
	}
	if len(cur) > 0 {
		pieces = append(pieces, cur)
	}
	return pieces
}
