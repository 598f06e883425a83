package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/stig-assist/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/stig-assist/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/stig-assist/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/stig-assist/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/stig-assist/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/stig-assist/internal/connectors/filesystem"
	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

// chromeHeight is the number of rows used by the header, input and status bar.
const chromeHeight = 4

// App is the interactive console following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	input      *input.CommandInput
	statusBar  *status.Bar
	viewport   viewport.Model
	transcript []string

	// currentView tracks which view is active.
	currentView messages.ViewType

	// busy is set while a service call is in flight.
	busy bool

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has received its first window size.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new console with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	a := &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		input:       input.NewCommandInput(s),
		statusBar:   status.NewBar(s, km),
		viewport:    viewport.New(80, 20),
		currentView: messages.ViewConsole,
	}
	a.appendEntry(s.Muted.Render("RHEL STIG assistant (RHEL 9 priority). Type 'help' for commands."))
	return a, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.input.Init(),
		tea.SetWindowTitle("stig-assist"),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.AnswerReceived:
		a.finish()
		if msg.Answer.Failed() {
			a.fail(msg.Answer.Err)
		} else {
			a.statusBar.SetMessage(fmt.Sprintf("%d sources", len(msg.Answer.Sources)))
			a.statusBar.SetFocus(msg.Answer.ResolvedVersion.String())
		}
		a.appendEntry(renderAnswer(a.styles, msg.Answer))
		return a, nil

	case messages.ControlsFound:
		a.finish()
		if msg.Err != nil {
			a.fail(msg.Err)
			a.appendEntry(a.styles.Error.Render("Error: " + msg.Err.Error()))
			return a, nil
		}
		a.statusBar.SetMessage(fmt.Sprintf("%d results", len(msg.Results)))
		a.appendEntry(renderControls(a.styles, msg.ControlID, msg.Results))
		return a, nil

	case messages.DocumentLoaded:
		a.finish()
		if msg.Err != nil {
			a.fail(msg.Err)
			a.appendEntry(a.styles.Error.Render(fmt.Sprintf("Error loading %s: %v", msg.Path, msg.Err)))
			return a, nil
		}
		a.statusBar.SetMessage("loaded " + msg.Path)
		a.appendEntry(renderLoad(a.styles, "Loaded "+msg.Path, msg.Report))
		return a, nil

	case messages.HealthChecked:
		a.finish()
		a.appendEntry(renderHealth(a.styles, msg.Health))
		return a, nil

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewHelp {
			a.statusBar.SetState(status.StateHelp)
		} else {
			a.statusBar.SetState(status.StateReady)
		}
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keymap.Quit) {
		return a, tea.Quit
	}

	if a.currentView == messages.ViewHelp {
		if key.Matches(msg, a.keymap.Back, a.keymap.Help) {
			return a, changeView(messages.ViewConsole)
		}
		return a, nil
	}

	var cmd tea.Cmd
	switch {
	case key.Matches(msg, a.keymap.ScrollUp, a.keymap.ScrollDown):
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	case a.busy:
		return a, nil
	case key.Matches(msg, a.keymap.Help):
		return a, changeView(messages.ViewHelp)
	case key.Matches(msg, a.keymap.Submit):
		return a, a.submit(a.input.Submit())
	case key.Matches(msg, a.keymap.HistoryPrev):
		a.input.Prev()
		return a, nil
	case key.Matches(msg, a.keymap.HistoryNext):
		a.input.Next()
		return a, nil
	case key.Matches(msg, a.keymap.Clear):
		a.clearTranscript()
		return a, nil
	}

	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// submit runs one console line.
func (a *App) submit(line string) tea.Cmd {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	a.appendEntry(a.styles.Prompt.Render(input.Prompt) + line)

	c, err := ParseCommand(line)
	if err != nil {
		a.fail(err)
		a.appendEntry(a.styles.Error.Render(err.Error()))
		return nil
	}

	switch c.Kind {
	case CommandExit:
		return tea.Quit
	case CommandHelp:
		a.appendEntry(a.styles.Help.Render(helpText))
		return nil
	case CommandClear:
		a.clearTranscript()
		return nil
	case CommandQuery:
		a.start("Answering...")
		return a.askCmd(c)
	case CommandSearch:
		a.start("Searching...")
		return a.findCmd(c.Arg)
	case CommandLoad:
		a.start("Loading...")
		return a.loadCmd(c.Arg)
	case CommandHealth:
		a.start("Checking...")
		return a.healthCmd()
	}
	return nil
}

func (a *App) askCmd(c Command) tea.Cmd {
	ctx, req := a.ctx, domain.QueryRequest{
		Question:       c.Arg,
		ControlID:      c.ControlID,
		ReleaseVersion: c.Version,
	}
	return func() tea.Msg {
		return messages.AnswerReceived{Answer: a.ports.Query.Answer(ctx, req)}
	}
}

func (a *App) findCmd(controlID string) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		results, err := a.ports.Retrieval.SearchByControlID(ctx, controlID)
		return messages.ControlsFound{ControlID: controlID, Results: results, Err: err}
	}
}

func (a *App) loadCmd(path string) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		if a.ports.Ingest == nil {
			return messages.DocumentLoaded{Path: path, Err: ErrLoadingDisabled}
		}
		resolved := filesystem.ResolvePath(path)
		format, err := domain.FormatFromPath(resolved)
		if err != nil {
			return messages.DocumentLoaded{Path: path, Err: err}
		}
		report, err := a.ports.Ingest.LoadDocument(ctx, resolved, format)
		return messages.DocumentLoaded{Path: path, Report: report, Err: err}
	}
}

func (a *App) healthCmd() tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		if a.ports.Health == nil {
			return messages.HealthChecked{Health: domain.Health{
				Status:    domain.HealthStatusOK,
				Timestamp: time.Now(),
			}}
		}
		return messages.HealthChecked{Health: a.ports.Health.Check(ctx)}
	}
}

func changeView(v messages.ViewType) tea.Cmd {
	return func() tea.Msg {
		return messages.ViewChanged{View: v}
	}
}

func (a *App) start(msg string) {
	a.busy = true
	a.err = nil
	a.statusBar.SetState(status.StateWorking)
	a.statusBar.SetMessage(msg)
}

func (a *App) finish() {
	a.busy = false
	a.statusBar.SetState(status.StateReady)
	a.statusBar.SetMessage("")
}

func (a *App) fail(err error) {
	a.err = err
	a.statusBar.SetState(status.StateError)
	if err != nil {
		a.statusBar.SetMessage(err.Error())
	}
}

func (a *App) appendEntry(entry string) {
	a.transcript = append(a.transcript, entry)
	a.viewport.SetContent(strings.Join(a.transcript, "\n\n"))
	a.viewport.GotoBottom()
}

func (a *App) clearTranscript() {
	a.transcript = nil
	a.viewport.SetContent("")
	a.statusBar.Clear()
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	if a.currentView == messages.ViewHelp {
		return a.viewHelp()
	}

	return strings.Join([]string{
		a.styles.Title.Render("stig-assist"),
		a.viewport.View(),
		a.input.View(),
		a.statusBar.View(),
	}, "\n")
}

func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	b.WriteString(helpText)
	b.WriteString("\n\nKeys:\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(a.statusBar.View())
	return b.String()
}

// Run starts the console and blocks until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Transcript returns the rendered transcript entries.
func (a *App) Transcript() []string {
	return a.transcript
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Busy reports whether a command is in flight.
func (a *App) Busy() bool {
	return a.busy
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been sized.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	a.input.SetWidth(width)
	a.statusBar.SetWidth(width)
	a.viewport.Width = width
	a.viewport.Height = max(height-chromeHeight, 1)
	a.viewport.GotoBottom()
}
