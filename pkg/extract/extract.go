// Package extract pulls the final answer text out of the target UI once a
// generation has completed.
//
// Extraction is an ordered chain of strategies. The first strategy that
// yields non-empty text wins; failures are logged and absorbed so a broken
// primary path never hides an answer a fallback could still read.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Format selects the text form requested from the copy affordance.
type Format int

const (
	// Plain asks for the answer as plain text.
	Plain Format = iota
	// Markdown asks for the answer as markdown.
	Markdown
)

func (f Format) String() string {
	if f == Markdown {
		return "markdown"
	}
	return "plain"
}

// FormatFor maps the rich flag of a prompt command to a Format.
func FormatFor(rich bool) Format {
	if rich {
		return Markdown
	}
	return Plain
}

// Method records which family of strategy produced a response.
type Method string

const (
	MethodPrimaryCopy    Method = "primary-copy"
	MethodFallbackScrape Method = "fallback-scrape"
)

// ErrNoResponse is returned when every strategy failed or produced nothing.
var ErrNoResponse = errors.New("could not extract a response")

// Response is an extracted answer.
type Response struct {
	Text     string
	Method   Method
	Strategy string
}

// Strategy is one way of reading the latest answer. An error or an empty
// string means "no result".
type Strategy interface {
	Name() string
	Method() Method
	Extract(ctx context.Context, format Format) (string, error)
}

// Logger is the subset of the logging API the chain needs.
type Logger interface {
	Debugf(format string, v ...interface{})
	Warnf(format string, v ...interface{})
}

// Chain tries strategies in order.
type Chain struct {
	strategies []Strategy
	logger     Logger
}

// NewChain creates a chain over the given strategies. A nil logger disables
// logging.
func NewChain(logger Logger, strategies ...Strategy) *Chain {
	return &Chain{
		strategies: strategies,
		logger:     logger,
	}
}

// Extract runs the chain and returns the first non-empty result.
func (c *Chain) Extract(ctx context.Context, format Format) (Response, error) {
	var failures []string
	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			return Response{}, err
		}

		text, err := s.Extract(ctx, format)
		if err != nil {
			c.warnf("extract: strategy %s failed: %v", s.Name(), err)
			failures = append(failures, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			c.debugf("extract: strategy %s returned no text", s.Name())
			failures = append(failures, s.Name()+": empty")
			continue
		}

		c.debugf("extract: strategy %s succeeded (%d bytes)", s.Name(), len(text))
		return Response{Text: text, Method: s.Method(), Strategy: s.Name()}, nil
	}

	if len(failures) == 0 {
		return Response{}, ErrNoResponse
	}
	return Response{}, fmt.Errorf("%w (%s)", ErrNoResponse, strings.Join(failures, "; "))
}

func (c *Chain) debugf(format string, v ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, v...)
	}
}

func (c *Chain) warnf(format string, v ...interface{}) {
	if c.logger != nil {
		c.logger.Warnf(format, v...)
	}
}
