package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected DocumentFormat
	}{
		{"/data/U_RHEL_9_STIG_V1R3_Manual-xccdf.xml", FormatXCCDF},
		{"controls.JSON", FormatRecordArray},
		{"controls.yaml", FormatRecordArray},
		{"controls.yml", FormatRecordArray},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			format, err := FormatFromPath(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, format)
			assert.True(t, format.IsValid())
		})
	}

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := FormatFromPath("notes.txt")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}
