package driving

import (
	"context"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

// QueryService answers natural-language questions about controls.
type QueryService interface {
	// Answer never returns nil. Failures are reported through Answer.Status and Answer.Err.
	Answer(ctx context.Context, req domain.QueryRequest) *domain.Answer
}
