package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

func TestDefaultTheme_AccentsAreDistinct(t *testing.T) {
	theme := DefaultTheme()
	require.NotNil(t, theme)

	accents := []lipgloss.Color{
		theme.Primary,
		theme.Secondary,
		theme.Success,
		theme.Warning,
		theme.Error,
		theme.Release9,
		theme.Release8,
	}

	seen := make(map[string]bool)
	for _, c := range accents {
		assert.NotEmpty(t, string(c))
		assert.False(t, seen[string(c)], "duplicate accent: %s", c)
		seen[string(c)] = true
	}
}

func TestNewStyles_NilTheme(t *testing.T) {
	s := NewStyles(nil)

	require.NotNil(t, s)
	assert.NotNil(t, s.Theme())
}

func TestStyles_Initialised(t *testing.T) {
	s := DefaultStyles()

	for name, style := range map[string]lipgloss.Style{
		"Title":      s.Title,
		"Muted":      s.Muted,
		"Error":      s.Error,
		"InputField": s.InputField,
		"StatusBar":  s.StatusBar,
		"Prompt":     s.Prompt,
		"Answer":     s.Answer,
		"Badge9":     s.Badge9,
		"Badge8":     s.Badge8,
	} {
		assert.NotEqual(t, lipgloss.Style{}, style, name)
	}
}

func TestStyles_Severity(t *testing.T) {
	s := DefaultStyles()

	assert.Equal(t, s.Error, s.Severity(domain.SeverityHigh))
	assert.Equal(t, s.Warning, s.Severity(domain.SeverityMedium))
	assert.Equal(t, s.Muted, s.Severity(domain.SeverityLow))
}

func TestStyles_Release(t *testing.T) {
	s := DefaultStyles()

	assert.Equal(t, s.Badge9, s.Release(domain.Release9))
	assert.Equal(t, s.Badge8, s.Release(domain.Release8))
	assert.Equal(t, s.Muted, s.Release(domain.ReleaseUnknown))
}
