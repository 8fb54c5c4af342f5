package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// TextParser handles plain text files. Every non-blank line becomes a
// regular body fragment; form feeds start a new page.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	l := newLayouter(filename)
	for scanner.Scan() {
		line := scanner.Text()
		for i, part := range strings.Split(line, "\f") {
			if i > 0 {
				l.pageBreak()
			}
			l.paragraph(part)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return l.finish(), nil
}
