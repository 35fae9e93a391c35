package panel_test

import (
	"context"
	"strings"
	"testing"

	"impractical.co/panel"
)

func TestMarkdown(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		src      string
		expected string
	}{
		"bold":   {src: "**bold**", expected: "<p><strong>bold</strong></p>\n"},
		"list":   {src: "- a\n- b", expected: "<ul>\n<li>a</li>\n<li>b</li>\n</ul>\n"},
		"empty":  {src: "", expected: ""},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			html, err := panel.Markdown(tc.src)
			if err != nil {
				t.Fatalf("Unexpected error: %s", err)
			}
			if string(html) != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, html)
			}
		})
	}
}

type noteInputs struct {
	Body string `panel:"body"`
}

type noteData struct {
	Body string `panel:"body"`
}

func (noteData) FromInputs(_ context.Context, in noteInputs) (noteData, error) {
	return noteData(in), nil
}

var note = panel.MustDefine(&panel.Type[noteInputs, noteData, panel.None]{
	Name:     "Note",
	Template: "note.html",
})

func TestMarkdownSanitizes(t *testing.T) {
	t.Parallel()

	html, err := panel.Markdown("hi <script>alert(1)</script> [link](javascript:alert(1))")
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	for _, unsafe := range []string{"<script", "javascript:"} {
		if strings.Contains(string(html), unsafe) {
			t.Errorf("Expected %q to be removed, got %q", unsafe, html)
		}
	}
}

func TestMarkdownTemplateFunc(t *testing.T) {
	t.Parallel()

	env := panel.NewEnvironment(staticFS{
		"note.html": `<article>{{ markdown (data . "body") }}</article>`,
	}, panel.WithMarkdown())
	html, err := note.MustNew(panel.WithEnvironment(env)).RenderSubcomponent(context.Background(), map[string]any{
		"body": "# Title\n\n<img src=x onerror=alert(1)>",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	if !strings.HasPrefix(string(html), "<article><h1>Title</h1>") {
		t.Errorf("Expected rendered markdown, got %q", html)
	}
	if strings.Contains(string(html), "onerror") {
		t.Errorf("Expected markdown to be sanitized, got %q", html)
	}
}
