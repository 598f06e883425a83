package services

import (
	"context"
	"time"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driven"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driving"
	"github.com/custodia-labs/stig-assist/internal/logger"
)

// Ensure HealthService implements the interface.
var _ driving.HealthService = (*HealthService)(nil)

// HealthService reports liveness and, when available, the corpus size.
type HealthService struct {
	corpus driven.IndexedCorpus
	now    func() time.Time
}

// NewHealthService creates a new health service. The corpus is optional.
func NewHealthService(corpus driven.IndexedCorpus) *HealthService {
	return &HealthService{
		corpus: corpus,
		now:    time.Now,
	}
}

// Check returns a status token and timestamp.
func (s *HealthService) Check(ctx context.Context) domain.Health {
	health := domain.Health{
		Status:    domain.HealthStatusOK,
		Timestamp: s.now().UTC(),
	}

	if s.corpus != nil {
		n, err := s.corpus.Count(ctx)
		if err != nil {
			logger.Warn("Corpus count failed: %v", err)
		} else {
			health.Segments = n
		}
	}

	return health
}
