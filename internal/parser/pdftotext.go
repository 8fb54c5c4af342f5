package parser

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"golang.org/x/net/html"
)

func extractPdftotextBBox(path string) ([]doctree.Fragment, []doctree.PageSize, error) {
	cmd := exec.Command("pdftotext", "-bbox-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, nil, fmt.Errorf("pdftotext: %w", err)
	}
	return parseBBoxLayout(bytes.NewReader(out))
}

// parseBBoxLayout reads pdftotext -bbox-layout XHTML. Each <line> becomes
// one regular-weight fragment sized by its height.
func parseBBoxLayout(r io.Reader) ([]doctree.Fragment, []doctree.PageSize, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, nil, fmt.Errorf("parse bbox layout: %w", err)
	}

	var (
		frags []doctree.Fragment
		pages []doctree.PageSize
	)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "page":
				pages = append(pages, doctree.PageSize{
					Width:  floatAttr(n, "width"),
					Height: floatAttr(n, "height"),
				})
			case "line":
				if len(pages) == 0 {
					return
				}
				text := lineWords(n)
				if text == "" {
					return
				}
				bbox := doctree.BBox{
					X0: floatAttr(n, "xmin"),
					Y0: floatAttr(n, "ymin"),
					X1: floatAttr(n, "xmax"),
					Y1: floatAttr(n, "ymax"),
				}
				frags = append(frags, doctree.Fragment{
					Text: text,
					Size: int(math.RoundToEven(bbox.Y1 - bbox.Y0)),
					BBox: bbox,
					Page: len(pages),
				})
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return frags, pages, nil
}

func lineWords(line *html.Node) string {
	var words []string
	for c := line.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "word" {
			if w := textContent(c); w != "" {
				words = append(words, w)
			}
		}
	}
	return strings.Join(words, " ")
}

func floatAttr(n *html.Node, key string) float64 {
	v, err := strconv.ParseFloat(attr(n, key), 64)
	if err != nil {
		return 0
	}
	return v
}
