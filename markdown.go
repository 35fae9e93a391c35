package panel

import (
	"bytes"
	"fmt"
	"html/template"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	markdownOnce   sync.Once
	markdownMD     goldmark.Markdown
	markdownPolicy *bluemonday.Policy
)

func markdownRenderer() (goldmark.Markdown, *bluemonday.Policy) {
	markdownOnce.Do(func() {
		markdownMD = goldmark.New()
		markdownPolicy = bluemonday.UGCPolicy()
	})
	return markdownMD, markdownPolicy
}

// Markdown renders src as Markdown and sanitizes the result, so it's
// safe to include in a template even when src came from a user. It's
// the "markdown" template function added by WithMarkdown.
func Markdown(src string) (template.HTML, error) {
	md, policy := markdownRenderer()
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("error converting markdown: %w", err)
	}
	return template.HTML(policy.SanitizeBytes(buf.Bytes())), nil //nolint:gosec // sanitized above
}
