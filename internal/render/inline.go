package render

import "strings"

type spanKind int

const (
	spanText spanKind = iota
	spanStrong
	spanEmphasis
	spanCode
	spanLink
)

type span struct {
	text string
	kind spanKind
}

// parseInline splits a line of markdown into styled spans. Unmatched
// markers are kept as literal text.
func parseInline(s string) []span {
	var spans []span
	var plain strings.Builder
	flush := func() {
		if plain.Len() > 0 {
			spans = append(spans, span{text: plain.String()})
			plain.Reset()
		}
	}

	for i := 0; i < len(s); {
		switch {
		case s[i] == '`':
			if end := strings.IndexByte(s[i+1:], '`'); end >= 0 {
				flush()
				spans = append(spans, span{text: s[i+1 : i+1+end], kind: spanCode})
				i += end + 2
				continue
			}
		case strings.HasPrefix(s[i:], "**") || strings.HasPrefix(s[i:], "__"):
			marker := s[i : i+2]
			if end := strings.Index(s[i+2:], marker); end > 0 {
				flush()
				spans = append(spans, span{text: s[i+2 : i+2+end], kind: spanStrong})
				i += end + 4
				continue
			}
		case s[i] == '*' || s[i] == '_':
			marker := s[i : i+1]
			if end := strings.Index(s[i+1:], marker); end > 0 && openEmphasis(s, i) {
				flush()
				spans = append(spans, span{text: s[i+1 : i+1+end], kind: spanEmphasis})
				i += end + 2
				continue
			}
		case s[i] == '[':
			if text, n, ok := parseLink(s[i:]); ok {
				flush()
				spans = append(spans, span{text: text, kind: spanLink})
				i += n
				continue
			}
		}
		plain.WriteByte(s[i])
		i++
	}
	flush()
	return spans
}

// openEmphasis rejects intra-word underscores such as snake_case.
func openEmphasis(s string, i int) bool {
	if s[i] != '_' || i == 0 {
		return true
	}
	prev := s[i-1]
	return prev == ' ' || prev == '(' || prev == '"'
}

// parseLink matches [text](target) at the start of s and returns the text
// and the number of bytes consumed.
func parseLink(s string) (string, int, bool) {
	closeText := strings.Index(s, "](")
	if closeText <= 0 {
		return "", 0, false
	}
	closeURL := strings.IndexByte(s[closeText+2:], ')')
	if closeURL < 0 {
		return "", 0, false
	}
	return s[1:closeText], closeText + 2 + closeURL + 1, true
}

// plainText drops inline markup.
func plainText(s string) string {
	var b strings.Builder
	for _, sp := range parseInline(s) {
		b.WriteString(sp.text)
	}
	return b.String()
}
