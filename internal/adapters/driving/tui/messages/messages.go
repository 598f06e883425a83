// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

// AnswerReceived carries the result of a question.
type AnswerReceived struct {
	Answer *domain.Answer
}

// ControlsFound carries the result of a control id lookup.
type ControlsFound struct {
	ControlID string
	Results   []domain.SearchResult
	Err       error
}

// DocumentLoaded carries the result of a document load.
type DocumentLoaded struct {
	Path   string
	Report *domain.LoadReport
	Err    error
}

// HealthChecked carries the liveness probe result.
type HealthChecked struct {
	Health domain.Health
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewConsole is the command transcript and input.
	ViewConsole ViewType = iota
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewConsole:
		return "console"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Quit signals the application should exit.
type Quit struct{}
