// Package postprocessors turns control records into indexable segments.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driven"
	"github.com/custodia-labs/stig-assist/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driven.Preprocessor = (*Pipeline)(nil)

// Pipeline chains multiple PostProcessors and runs them in order.
// It implements the Preprocessor interface.
type Pipeline struct {
	processors []driven.PostProcessor
}

// NewPipeline creates a new processing pipeline with the given processors.
// Processors are executed in the order provided.
func NewPipeline(processors ...driven.PostProcessor) *Pipeline {
	return &Pipeline{
		processors: processors,
	}
}

// Process renders each record and runs it through the pipeline.
// Segment order follows record order, then text order within a record.
func (p *Pipeline) Process(ctx context.Context, records []domain.ControlRecord) ([]domain.Segment, error) {
	var segments []domain.Segment

	for i := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		segs, err := p.ProcessDocument(ctx, domain.NewDocument(records[i]))
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", records[i].ID, err)
		}
		logger.Debug("Record %s: %d segments", records[i].ID, len(segs))
		segments = append(segments, segs...)
	}

	return segments, nil
}

// ProcessDocument runs one document through all processors in order.
// The first processor receives nil segments.
func (p *Pipeline) ProcessDocument(ctx context.Context, doc *domain.Document) ([]domain.Segment, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	var segments []domain.Segment

	for _, processor := range p.processors {
		var err error
		segments, err = processor.Process(ctx, doc, segments)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
	}

	return segments, nil
}

// Add appends a processor to the pipeline.
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.processors = append(p.processors, processor)
}

// Len returns the number of processors in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.processors)
}
