package parser

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Title and HeadingN paragraph styles map
// to heading sizes; direct run formatting (bold, w:sz) is kept for body
// paragraphs so styled-but-unstyled headings still stand out.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	// go-docx needs a ReaderAt+size, so write to temp file.
	tmp, err := os.CreateTemp("", "docoutline-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	l := newLayouter(filename)
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			layoutDOCXParagraph(l, it)
		case *docx.Table:
			for _, row := range it.TableRows {
				for _, cell := range row.TableCells {
					for _, para := range cell.Paragraphs {
						layoutDOCXParagraph(l, para)
					}
				}
			}
		}
	}
	return l.finish(), nil
}

func layoutDOCXParagraph(l *layouter, para *docx.Paragraph) {
	text, style, pageBreak := docxParagraphContent(para)
	if level := docxHeadingLevel(para); level > 0 {
		l.heading(level, text)
	} else {
		size := style.size
		if size == 0 {
			size = bodySize
		}
		l.place(text, size, style.bold)
	}
	if pageBreak {
		l.pageBreak()
	}
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if style == "title" {
		return 1
	}
	if n, ok := strings.CutPrefix(style, "heading"); ok {
		if level, err := strconv.Atoi(n); err == nil && level >= 1 && level <= 9 {
			return level
		}
	}
	return 0
}

type runStyle struct {
	size int
	bold bool
}

// docxParagraphContent returns the paragraph text, the run formatting shared
// by its text, and whether it ends with an explicit page break.
func docxParagraphContent(para *docx.Paragraph) (string, runStyle, bool) {
	var (
		buf       strings.Builder
		style     runStyle
		allBold   = true
		sawText   bool
		pageBreak bool
	)
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			switch v := rc.(type) {
			case *docx.Text:
				if strings.TrimSpace(v.Text) == "" {
					buf.WriteString(v.Text)
					continue
				}
				buf.WriteString(v.Text)
				sawText = true
				props := run.RunProperties
				if props == nil || props.Bold == nil {
					allBold = false
				}
				if props != nil && props.Size != nil {
					if halfPoints, err := strconv.ParseFloat(props.Size.Val, 64); err == nil {
						style.size = max(style.size, int(math.RoundToEven(halfPoints/2)))
					}
				}
			case *docx.Tab:
				buf.WriteByte(' ')
			case *docx.BarterRabbet:
				if v.Type == "page" {
					pageBreak = true
				} else {
					buf.WriteByte(' ')
				}
			}
		}
	}
	style.bold = sawText && allBold
	return strings.TrimSpace(buf.String()), style, pageBreak
}
