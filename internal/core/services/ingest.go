package services

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driven"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driving"
	"github.com/custodia-labs/stig-assist/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// embedBatchSize bounds the texts sent to the embedding service per call.
const embedBatchSize = 64

// IngestService loads documents, splits them, embeds the segments and indexes them.
type IngestService struct {
	loaders      driven.LoaderRegistry
	preprocessor driven.Preprocessor
	embedder     driven.EmbeddingService
	corpus       driven.IndexedCorpus
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	loaders driven.LoaderRegistry,
	preprocessor driven.Preprocessor,
	embedder driven.EmbeddingService,
	corpus driven.IndexedCorpus,
) *IngestService {
	return &IngestService{
		loaders:      loaders,
		preprocessor: preprocessor,
		embedder:     embedder,
		corpus:       corpus,
	}
}

// LoadDocument parses, preprocesses, embeds and indexes one file.
// A failure part way through leaves earlier batches indexed.
func (s *IngestService) LoadDocument(
	ctx context.Context, path string, format domain.DocumentFormat,
) (*domain.LoadReport, error) {
	logger.Section("Load Document")
	logger.Debug("Path: %s, format: %s", path, format)

	if !format.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}

	loader, err := s.loaders.Get(format)
	if err != nil {
		return nil, err
	}

	records, err := loader.Load(ctx, path)
	if err != nil {
		logger.Warn("Load failed for %s: %v", path, err)
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	logger.Info("Loaded %d records from %s", len(records), path)

	report := &domain.LoadReport{
		Path:          path,
		Format:        format,
		RecordsLoaded: len(records),
	}
	if len(records) == 0 {
		return report, nil
	}

	segments, err := s.preprocessor.Process(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}
	logger.Debug("Preprocessed into %d segments", len(segments))

	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.corpus == nil {
		return nil, domain.ErrCorpusUnavailable
	}

	for start := 0; start < len(segments); start += embedBatchSize {
		end := min(start+embedBatchSize, len(segments))
		batch := segments[start:end]

		if err := s.embed(ctx, batch); err != nil {
			return nil, err
		}
		if err := s.corpus.Add(ctx, batch); err != nil {
			return nil, fmt.Errorf("index segments: %w", err)
		}
		report.SegmentsCreated += len(batch)
		logger.Debug("Indexed segments %d-%d", start, end-1)
	}

	logger.Info("Indexed %d segments from %d records", report.SegmentsCreated, report.RecordsLoaded)
	return report, nil
}

func (s *IngestService) embed(ctx context.Context, batch []domain.Segment) error {
	texts := make([]string, len(batch))
	for i := range batch {
		texts[i] = batch[i].Content
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("%w: got %d embeddings for %d segments",
			domain.ErrEmbeddingUnavailable, len(vectors), len(batch))
	}

	for i := range batch {
		batch[i].Embedding = vectors[i]
	}
	return nil
}
