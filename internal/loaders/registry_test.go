package loaders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

type stubLoader struct {
	format domain.DocumentFormat
}

func (s *stubLoader) Format() domain.DocumentFormat { return s.format }
func (s *stubLoader) Load(_ context.Context, _ string) ([]domain.ControlRecord, error) {
	return nil, nil
}

func TestNewRegistry_Empty(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Formats())

	_, err := r.Get(domain.FormatXCCDF)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestNewDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()
	assert.Equal(t, []domain.DocumentFormat{domain.FormatRecordArray, domain.FormatXCCDF}, r.Formats())

	loader, err := r.Get(domain.FormatXCCDF)
	require.NoError(t, err)
	assert.Equal(t, domain.FormatXCCDF, loader.Format())

	loader, err = r.Get(domain.FormatRecordArray)
	require.NoError(t, err)
	assert.Equal(t, domain.FormatRecordArray, loader.Format())
}

func TestRegistry_UnknownFormat(t *testing.T) {
	r := NewDefaultRegistry()

	_, err := r.Get(domain.DocumentFormat("txt"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := NewDefaultRegistry()
	stub := &stubLoader{format: domain.FormatXCCDF}
	r.Register(stub)

	loader, err := r.Get(domain.FormatXCCDF)
	require.NoError(t, err)
	assert.Same(t, stub, loader)
}
