package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

var discardLog = slog.New(slog.DiscardHandler)

// keywordEmbedder maps text onto a food axis and a history axis.
type keywordEmbedder struct {
	err error
}

func (k keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if k.err != nil {
		return nil, k.err
	}
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

var errEmbedDown = errors.New("embedding endpoint down")

const lyonGuide = `# Lyon Travel Guide

Some intro text about the city.

## Food and Wine

Eat at bouchons in the old town.

## Roman History

Visit the Roman theatre on the hill.
`

const parisGuide = `# Paris Notes

## Museums of Roman History

The Louvre holds Roman antiquities.

## Cuisine Basics

Bakeries open early.
`
