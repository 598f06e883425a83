package driving

import (
	"context"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

// HealthService is the liveness probe.
type HealthService interface {
	// Check returns a status token and timestamp.
	Check(ctx context.Context) domain.Health
}
