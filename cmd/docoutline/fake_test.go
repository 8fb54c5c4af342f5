package main

import (
	"context"
	"log/slog"
	"strings"
)

var discardLog = slog.New(slog.DiscardHandler)

// keywordEmbedder scores text on a food axis and a history axis.
type keywordEmbedder struct{}

func (keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	lower := strings.ToLower(text)
	var v [3]float32
	for _, w := range []string{"food", "wine", "cuisine"} {
		if strings.Contains(lower, w) {
			v[0]++
		}
	}
	for _, w := range []string{"history", "roman"} {
		if strings.Contains(lower, w) {
			v[1]++
		}
	}
	v[2] = 0.01
	return v[:], nil
}

const lyonGuide = `# Lyon Travel Guide

## Food and Wine

Eat at bouchons in the old town.

## Roman History

Visit the Roman theatre on the hill.
`
