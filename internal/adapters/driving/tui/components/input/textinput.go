// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/stig-assist/internal/adapters/driving/tui/styles"
)

// Prompt is the label rendered before the input.
const Prompt = "stig> "

// CommandInput wraps a bubbles textinput with a command history.
type CommandInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int

	history []string
	// cursor indexes history while browsing; len(history) means the live line.
	cursor int
	draft  string
}

// NewCommandInput creates a new command input component.
func NewCommandInput(s *styles.Styles) *CommandInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "type a question or 'help'"
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = 60

	return &CommandInput{
		textinput: ti,
		styles:    s,
		width:     60,
	}
}

// Init initialises the input.
func (c *CommandInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (c *CommandInput) Update(msg tea.Msg) (*CommandInput, tea.Cmd) {
	var cmd tea.Cmd
	c.textinput, cmd = c.textinput.Update(msg)
	return c, cmd
}

// View renders the input.
func (c *CommandInput) View() string {
	label := c.styles.Prompt.Render(Prompt)
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, c.textinput.View())
}

// Value returns the current input value.
func (c *CommandInput) Value() string {
	return c.textinput.Value()
}

// SetValue sets the input value.
func (c *CommandInput) SetValue(value string) {
	c.textinput.SetValue(value)
	c.textinput.CursorEnd()
}

// Focus sets focus on the input.
func (c *CommandInput) Focus() tea.Cmd {
	return c.textinput.Focus()
}

// Blur removes focus from the input.
func (c *CommandInput) Blur() {
	c.textinput.Blur()
}

// Focused returns whether the input is focused.
func (c *CommandInput) Focused() bool {
	return c.textinput.Focused()
}

// SetWidth sets the width of the input.
func (c *CommandInput) SetWidth(width int) {
	c.width = width
	inputWidth := width - len(Prompt) - 2
	if inputWidth < 20 {
		inputWidth = 20
	}
	c.textinput.Width = inputWidth
}

// Width returns the current width.
func (c *CommandInput) Width() int {
	return c.width
}

// Submit returns the current line, records it in history and clears the input.
func (c *CommandInput) Submit() string {
	line := c.textinput.Value()
	if line != "" && (len(c.history) == 0 || c.history[len(c.history)-1] != line) {
		c.history = append(c.history, line)
	}
	c.cursor = len(c.history)
	c.draft = ""
	c.textinput.Reset()
	return line
}

// Prev replaces the input with the previous history entry.
func (c *CommandInput) Prev() {
	if c.cursor == 0 {
		return
	}
	if c.cursor == len(c.history) {
		c.draft = c.textinput.Value()
	}
	c.cursor--
	c.SetValue(c.history[c.cursor])
}

// Next replaces the input with the next history entry, or the draft at the end.
func (c *CommandInput) Next() {
	if c.cursor >= len(c.history) {
		return
	}
	c.cursor++
	if c.cursor == len(c.history) {
		c.SetValue(c.draft)
		return
	}
	c.SetValue(c.history[c.cursor])
}

// History returns the submitted lines, oldest first.
func (c *CommandInput) History() []string {
	return c.history
}

// Reset clears the input.
func (c *CommandInput) Reset() {
	c.textinput.Reset()
}
