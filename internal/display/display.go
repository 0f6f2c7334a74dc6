// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type keeps the current step card and an input prompt at the
// bottom of the terminal. All other output is printed above the rendered
// area through the Bubble Tea event loop, so concurrent writes never
// garble the display.
package display

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/cookflow/internal/domain"
)

// ViewSource publishes the state the card is rendered from.
type ViewSource interface {
	View() domain.View
}

// refreshInterval is how often the card is re-read from the ViewSource.
// Shorter than a timer tick so the countdown never looks stale.
const refreshInterval = 250 * time.Millisecond

const prompt = "cook> "

// ── Styles ───────────────────────────────────────────────────────

var (
	timerRunStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	timerDoneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// BannerStyle is the muted slate used for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	chatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	urgentOutputStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fca5a5"))

	userInputEchoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a1a1aa"))
)

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may
// safely call [UI.Println] at any time and read from [UI.InputChan]
// once [UI.Ready] is closed.
type UI struct {
	program *tea.Program
	source  ViewSource
	inputCh chan string
	readyCh chan struct{}
	done    atomic.Bool
}

// NewUI creates the display. Call Run() to start. Program options such as
// tea.WithInput / tea.WithOutput are passed through to Bubble Tea.
func NewUI(source ViewSource, opts ...tea.ProgramOption) *UI {
	u := &UI{
		source:  source,
		inputCh: make(chan string, 16),
		readyCh: make(chan struct{}),
	}
	u.program = tea.NewProgram(u.newModel(), opts...)
	return u
}

// live reports whether output can go through the running program.
func (u *UI) live() bool {
	select {
	case <-u.readyCh:
		return !u.done.Load()
	default:
		return false
	}
}

// Println prints a line above the prompt. Thread-safe.
// If the program isn't running, falls back to fmt.Println. The line goes
// through Program.Send, which gives up once the program has stopped, so a
// print racing with shutdown never blocks the caller.
func (u *UI) Println(a ...interface{}) {
	if u.live() {
		u.program.Send(printMsg(fmt.Sprint(a...)))
	} else {
		fmt.Println(a...)
	}
}

// InputChan returns completed user-input lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// ── Styled print helpers ─────────────────────────────────────────

// PrintChat prints a conversational line.
func (u *UI) PrintChat(text string) {
	u.Println(chatStyle.Render("  " + text))
}

// PrintStep prints a highlighted header line.
func (u *UI) PrintStep(text string) {
	u.Println(stepStyle.Render("  " + text))
}

// PrintHint prints a secondary/dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(secondaryStyle.Render("  " + text))
}

// PrintUrgent prints an urgent/error line.
func (u *UI) PrintUrgent(text string) {
	u.Println(urgentOutputStyle.Render("  " + text))
}

// PrintUserInput echoes the user's typed command into the scrollback.
func (u *UI) PrintUserInput(text string) {
	u.Println(promptStyle.Render("cook") + secondaryStyle.Render("> ") + userInputEchoStyle.Render(text))
}

// Ready is closed once the Bubble Tea event loop is running.
func (u *UI) Ready() <-chan struct{} { return u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	u.program.Quit()
}

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	_, err := u.program.Run()
	u.done.Store(true)
	return err
}

func (u *UI) newModel() model {
	ti := textinput.New()
	// Plain-text prompt: styled prompts add ANSI bytes that break the
	// textinput width math for long input.
	ti.Prompt = prompt
	ti.PromptStyle = promptStyle
	ti.TextStyle = userInputEchoStyle
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60 // updated on first WindowSizeMsg

	m := model{
		source:  u.source,
		input:   ti,
		inputCh: u.inputCh,
		readyCh: u.readyCh,
		echoFn:  u.PrintUserInput,
	}
	m.refresh()
	return m
}

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	source  ViewSource
	input   textinput.Model
	inputCh chan<- string
	readyCh chan struct{}
	echoFn  func(string)
	view    domain.View
	width   int
}

type refreshMsg time.Time

// printMsg is a line to print above the prompt.
type printMsg string

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		refreshCmd(),
		signalReady(m.readyCh),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func refreshCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			v := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(v) != "" {
				m.inputCh <- v
				// Echo from a Cmd so Println isn't called inside Update.
				echoFn := m.echoFn
				return m, func() tea.Msg {
					echoFn(v)
					return nil
				}
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > len(prompt) {
			m.input.Width = msg.Width - len(prompt)
		}
		return m, nil

	case printMsg:
		return m, tea.Println(string(msg))

	case refreshMsg:
		m.refresh()
		return m, tea.Batch(refreshCmd(), tea.SetWindowTitle(windowTitle(m.view)))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) refresh() {
	if m.source == nil {
		m.view = domain.View{}
		return
	}
	m.view = m.source.View()
}

func (m model) View() string {
	var b strings.Builder
	if card := RenderCard(m.view, m.width); card != "" {
		b.WriteString(card)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}

// windowTitle summarises the session for the terminal title bar.
func windowTitle(v domain.View) string {
	if !v.Active() {
		return "CookFlow"
	}
	title := fmt.Sprintf("CookFlow | %s %d/%d", v.Title, v.StepNumber, v.StepCount)
	if t := TimerText(v); t != "" {
		title += " | " + t
	}
	return title
}
