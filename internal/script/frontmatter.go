package script

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterFence = "---"

// FrontMatter holds the optional YAML header of a script file.
type FrontMatter struct {
	Title string `yaml:"title"`
	Speed string `yaml:"speed"`
}

// Split separates a leading YAML front matter block from the markdown body.
// Content without a closed block is returned unchanged as the body.
func Split(content string) (FrontMatter, string, error) {
	var fm FrontMatter
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, frontMatterFence+"\n") {
		return fm, content, nil
	}
	rest := normalized[len(frontMatterFence)+1:]

	var header string
	var body string
	switch {
	case strings.HasPrefix(rest, frontMatterFence+"\n"):
		body = rest[len(frontMatterFence)+1:]
	case rest == frontMatterFence:
	default:
		end := strings.Index(rest, "\n"+frontMatterFence+"\n")
		if end < 0 {
			if !strings.HasSuffix(rest, "\n"+frontMatterFence) {
				return fm, content, nil
			}
			end = len(rest) - len(frontMatterFence) - 1
			header = rest[:end]
		} else {
			header = rest[:end]
			body = rest[end+len(frontMatterFence)+2:]
		}
	}

	if strings.TrimSpace(header) != "" {
		if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
			return FrontMatter{}, content, fmt.Errorf("parse front matter: %w", err)
		}
	}
	fm.Title = strings.TrimSpace(fm.Title)
	fm.Speed = strings.ToLower(strings.TrimSpace(fm.Speed))
	return fm, strings.TrimLeft(body, "\n"), nil
}

// Body returns content without its front matter. Malformed front matter is
// treated as part of the body.
func Body(content string) string {
	_, body, err := Split(content)
	if err != nil {
		return content
	}
	return body
}

// Describe extracts metadata, letting a front matter title override the
// first heading.
func Describe(content string) Meta {
	fm, body, err := Split(content)
	if err != nil {
		body = content
	}
	meta := ExtractMeta(body)
	if fm.Title != "" {
		meta.Title = Truncate(fm.Title, PreviewMaxWidth)
	}
	return meta
}
