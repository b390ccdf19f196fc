package extract

import (
	"context"
	"fmt"
)

// Copier reads the latest answer through the UI's own copy affordance.
type Copier interface {
	CopyLatest(ctx context.Context, format Format) (string, error)
}

// Scraper reads the latest answer node directly.
type Scraper interface {
	LatestHTML(ctx context.Context) (string, error)
	LatestText(ctx context.Context) (string, error)
}

// Source is a page that supports every default strategy.
type Source interface {
	Copier
	Scraper
}

// CopyStrategy uses the "copy as text/markdown" menu and reads the clipboard
// back. Its output is trusted as-is.
type CopyStrategy struct {
	Copier Copier
}

func (s CopyStrategy) Name() string   { return "copy" }
func (s CopyStrategy) Method() Method { return MethodPrimaryCopy }

func (s CopyStrategy) Extract(ctx context.Context, format Format) (string, error) {
	return s.Copier.CopyLatest(ctx, format)
}

// HTMLScrapeStrategy converts the inner HTML of the latest answer node to
// text and cleans it.
type HTMLScrapeStrategy struct {
	Scraper Scraper
}

func (s HTMLScrapeStrategy) Name() string   { return "html-scrape" }
func (s HTMLScrapeStrategy) Method() Method { return MethodFallbackScrape }

func (s HTMLScrapeStrategy) Extract(ctx context.Context, _ Format) (string, error) {
	raw, err := s.Scraper.LatestHTML(ctx)
	if err != nil {
		return "", err
	}
	text, err := HTMLToText(raw)
	if err != nil {
		return "", fmt.Errorf("failed to convert html: %w", err)
	}
	return Clean(text), nil
}

// TextScrapeStrategy cleans the rendered text of the latest answer node.
type TextScrapeStrategy struct {
	Scraper Scraper
}

func (s TextScrapeStrategy) Name() string   { return "text-scrape" }
func (s TextScrapeStrategy) Method() Method { return MethodFallbackScrape }

func (s TextScrapeStrategy) Extract(ctx context.Context, _ Format) (string, error) {
	raw, err := s.Scraper.LatestText(ctx)
	if err != nil {
		return "", err
	}
	return Clean(raw), nil
}

// DefaultStrategies returns the standard chain order for a page that can both
// copy and scrape.
func DefaultStrategies(page Source) []Strategy {
	return []Strategy{
		CopyStrategy{Copier: page},
		HTMLScrapeStrategy{Scraper: page},
		TextScrapeStrategy{Scraper: page},
	}
}
