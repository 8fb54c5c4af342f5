package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. ATX and setext
// headings become bold fragments sized by level; thematic breaks start a
// new page.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	l := newLayouter(filename)
	layoutMarkdown(l, doc, src)
	return l.finish(), nil
}

func layoutMarkdown(l *layouter, parent ast.Node, src []byte) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			l.heading(node.Level, inlineText(node, src))
		case *ast.ThematicBreak:
			l.pageBreak()
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			l.paragraph(blockLines(node, src))
		case *ast.List:
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				l.paragraph(inlineText(item, src))
			}
		case *ast.Blockquote:
			layoutMarkdown(l, node, src)
		case *ast.HTMLBlock:
			// Raw HTML carries no visible text of its own.
		default:
			l.paragraph(inlineText(node, src))
		}
	}
}

// inlineText concatenates the text leaves below n.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}

// blockLines returns the raw lines of a code block.
func blockLines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(src))
	}
	return strings.TrimSpace(buf.String())
}
