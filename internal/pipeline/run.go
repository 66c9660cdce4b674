// Package pipeline wires the opportunity and recommendation modules into the
// two exposed run operations: identify opportunities and convert them to recommendations.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/aeo-insights/internal/aggregation"
	"github.com/jonathan/aeo-insights/internal/llm"
	"github.com/jonathan/aeo-insights/internal/recommendation"
	"github.com/jonathan/aeo-insights/internal/sourcing"
	"github.com/jonathan/aeo-insights/internal/types"
)

// DefaultLookbackDays is the metrics window used when a request leaves it unset
const DefaultLookbackDays = 14

// ProgressEvent represents a progress update during a run
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when run progress occurs
type ProgressCallback func(event ProgressEvent)

// BrandReader loads a brand and its competitors. It returns nil, nil when the
// brand does not exist for the customer.
type BrandReader interface {
	GetBrandContext(ctx context.Context, brandID, customerID uuid.UUID) (*types.BrandContext, error)
}

// Store is the full persistence boundary used by a Service
type Store interface {
	BrandReader
	aggregation.MetricsReader
	recommendation.CitationReader
	recommendation.Store
}

// Options holds configuration for a Service
type Options struct {
	LookbackDays int
	TopQueries   int
	OnProgress   ProgressCallback
	Now          func() time.Time
}

// Service runs identify and convert operations against one store
type Service struct {
	brands      BrandReader
	metrics     aggregation.MetricsReader
	citations   recommendation.CitationReader
	synthesizer *recommendation.Synthesizer
	opts        Options
}

// New creates a Service. A nil client still allows Identify; Convert will fail
// with a generation error.
func New(store Store, client llm.Client, opts Options) *Service {
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = DefaultLookbackDays
	}
	if opts.TopQueries <= 0 {
		opts.TopQueries = recommendation.DefaultTopQueries
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		brands:    store,
		metrics:   store,
		citations: store,
		synthesizer: &recommendation.Synthesizer{
			Client:     client,
			Resolver:   sourcing.NewResolver(client),
			Store:      store,
			TopQueries: opts.TopQueries,
			Now:        opts.Now,
		},
		opts: opts,
	}
}

// emitProgress calls the progress callback if configured
func (s *Service) emitProgress(step, message string, content any) {
	if s.opts.OnProgress != nil {
		s.opts.OnProgress(ProgressEvent{
			Step:    step,
			Message: message,
			Content: content,
		})
	}
}
