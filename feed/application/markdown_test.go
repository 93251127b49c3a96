package application

import (
	"strings"
	"testing"
)

func TestIsExternalLink(t *testing.T) {
	tests := []struct {
		name     string
		dest     string
		expected bool
	}{
		{
			name:     "Https URL",
			dest:     "https://example.com",
			expected: true,
		},
		{
			name:     "Upper case scheme",
			dest:     "HTTP://example.com",
			expected: true,
		},
		{
			name:     "Relative path",
			dest:     "/p/123",
			expected: false,
		},
		{
			name:     "Mailto",
			dest:     "mailto:someone@example.com",
			expected: false,
		},
		{
			name:     "Fragment",
			dest:     "#top",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isExternalLink(tt.dest); got != tt.expected {
				t.Errorf("isExternalLink(%q) = %v, want %v", tt.dest, got, tt.expected)
			}
		})
	}
}

func TestMarkdownRenderer_Render(t *testing.T) {
	renderer := NewMarkdownRenderer()

	tests := []struct {
		name        string
		markdown    string
		contains    []string
		notContains []string
	}{
		{
			name:     "Bold",
			markdown: "**hi**",
			contains: []string{"<strong>hi</strong>"},
		},
		{
			name:     "Italic",
			markdown: "*italic text*",
			contains: []string{"<em>italic text</em>"},
		},
		{
			name:     "External link",
			markdown: "[link text](https://example.com)",
			contains: []string{
				`href="https://example.com"`,
				`rel="nofollow noopener noreferrer"`,
				`target="_blank"`,
				">link text</a>",
			},
		},
		{
			name:        "Relative link has no target",
			markdown:    "[home](/)",
			contains:    []string{`href="/"`},
			notContains: []string{`target="_blank"`},
		},
		{
			name:     "Autolinked URL",
			markdown: "see https://example.com now",
			contains: []string{`href="https://example.com"`, `target="_blank"`},
		},
		{
			name:        "Raw HTML is omitted",
			markdown:    "<script>alert(1)</script>",
			notContains: []string{"<script>"},
		},
		{
			name:        "Javascript links are dropped",
			markdown:    "[x](javascript:alert(1))",
			notContains: []string{"javascript:"},
		},
		{
			name:     "Strikethrough from GFM",
			markdown: "~~gone~~",
			contains: []string{"<del>gone</del>"},
		},
		{
			name:     "Hard wraps",
			markdown: "line one\nline two",
			contains: []string{"line one<br />"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := renderer.Render(tt.markdown)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			html := string(out)
			for _, want := range tt.contains {
				if !strings.Contains(html, want) {
					t.Errorf("Render(%q) = %q, want it to contain %q", tt.markdown, html, want)
				}
			}
			for _, unwanted := range tt.notContains {
				if strings.Contains(html, unwanted) {
					t.Errorf("Render(%q) = %q, should not contain %q", tt.markdown, html, unwanted)
				}
			}
		})
	}
}
