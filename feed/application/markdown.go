package application

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const externalLinkRel = "nofollow noopener noreferrer"

// externalLinkTransformer opens absolute http(s) links in a new tab and marks
// them nofollow. User content links elsewhere are left as they are.
type externalLinkTransformer struct{}

func (t *externalLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		dest := ""
		switch link := n.(type) {
		case *ast.Link:
			dest = string(link.Destination)
		case *ast.AutoLink:
			dest = string(link.URL(source))
		default:
			return ast.WalkContinue, nil
		}

		if isExternalLink(dest) {
			n.SetAttributeString("rel", []byte(externalLinkRel))
			n.SetAttributeString("target", []byte("_blank"))
		}

		return ast.WalkContinue, nil
	})
}

func isExternalLink(dest string) bool {
	lower := strings.ToLower(dest)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// MarkdownRenderer converts post and comment markdown to HTML.
type MarkdownRenderer interface {
	Render(markdown string) (template.HTML, error)
}

type MarkdownRendererImpl struct {
	renderer goldmark.Markdown
}

// NewMarkdownRenderer returns a GFM renderer. Raw HTML in the input is
// omitted from the output and dangerous link schemes are dropped.
func NewMarkdownRenderer() MarkdownRenderer {
	renderer := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
		),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(
				util.Prioritized(&externalLinkTransformer{}, 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	return &MarkdownRendererImpl{
		renderer: renderer,
	}
}

func (r *MarkdownRendererImpl) Render(markdown string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.renderer.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}
	// goldmark escapes text and omits raw HTML when WithUnsafe is not set
	return template.HTML(buf.String()), nil
}
