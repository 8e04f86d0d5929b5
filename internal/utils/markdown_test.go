package utils

import (
	"strings"
	"testing"
)

func TestRenderMarkdownBasics(t *testing.T) {
	html := RenderMarkdown("# Title\n\nSome **bold** text.")
	if !strings.Contains(html, "<h1") {
		t.Errorf("missing heading in %q", html)
	}
	if !strings.Contains(html, "<strong>bold</strong>") {
		t.Errorf("missing bold in %q", html)
	}
}

func TestRenderMarkdownSanitizes(t *testing.T) {
	html := RenderMarkdown("hello <script>alert(1)</script> world")
	if strings.Contains(html, "<script>") {
		t.Errorf("script survived sanitization: %q", html)
	}
}

func TestRenderMarkdownTables(t *testing.T) {
	html := RenderMarkdown("| a | b |\n|---|---|\n| 1 | 2 |")
	if !strings.Contains(html, "<table>") {
		t.Errorf("GFM table not rendered: %q", html)
	}
}
