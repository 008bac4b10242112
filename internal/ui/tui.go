// Package ui provides the interactive terminal interface.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/bucketlist-go/internal/app"
	"github.com/nibzard/bucketlist-go/internal/task"
)

// Controller is the part of app.Controller the TUI drives.
type Controller interface {
	Start(ctx context.Context) error
	Tasks() task.Collection
	Subscribe(fn func(app.Snapshot)) (cancel func())
	AddTask(ctx context.Context, text string) (task.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ToggleTask(ctx context.Context, id string) error
	UpdateTask(ctx context.Context, t task.Task) error
	DeleteAllCompleted(ctx context.Context) error
}

// Options holds the screen text.
type Options struct {
	Title       string
	Placeholder string
}

// Run starts the controller and runs the TUI until the user quits or ctx
// is done.
func Run(ctx context.Context, ctrl Controller, opts Options) error {
	if !IsTTY(os.Stdout) {
		return errors.New("tui requires a TTY")
	}

	model := newModel(ctx, ctrl, opts)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	unsubscribe := ctrl.Subscribe(func(s app.Snapshot) {
		program.Send(snapshotMsg{snapshot: s})
	})
	defer unsubscribe()

	_, err := program.Run()
	return err
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	doneStyle   = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

type startedMsg struct {
	err error
}

type snapshotMsg struct {
	snapshot app.Snapshot
}

type intentDoneMsg struct {
	intent app.Intent
	err    error
}

type tuiModel struct {
	ctx  context.Context
	ctrl Controller
	opts Options

	ready   bool
	loadErr error
	spinner spinner.Model
	input   textinput.Model
	// editing holds the id of the task being edited, "" when adding.
	editing string

	tasks     []task.Task
	completed int
	cursor    int

	status    string
	statusErr bool
}

func newModel(ctx context.Context, ctrl Controller, opts Options) *tuiModel {
	if opts.Title == "" {
		opts.Title = "Bucket List"
	}
	if opts.Placeholder == "" {
		opts.Placeholder = "+ Add item"
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	ti := textinput.New()
	ti.Placeholder = opts.Placeholder
	ti.CharLimit = 512
	ti.Width = 48

	return &tuiModel{
		ctx:     ctx,
		ctrl:    ctrl,
		opts:    opts,
		spinner: s,
		input:   ti,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startCmd())
}

func (m *tuiModel) startCmd() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return startedMsg{err: ctrl.Start(ctx)}
	}
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		if msg.err != nil && !errors.Is(msg.err, app.ErrAlreadyStarted) {
			m.loadErr = msg.err
			return m, nil
		}
		m.ready = true
		m.loadErr = nil
		m.setTasks(m.ctrl.Tasks())
		return m, nil
	case snapshotMsg:
		m.setTasks(msg.snapshot.Tasks)
		return m, nil
	case intentDoneMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Could not %s: %v", describeIntent(msg.intent), msg.err), true)
			return m, nil
		}
		m.setTasks(m.ctrl.Tasks())
		m.setStatus(doneMessage(msg.intent), false)
		return m, nil
	case spinner.TickMsg:
		if m.ready {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if w := msg.Width - 10; w > 10 {
			m.input.Width = w
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	if !m.ready {
		switch key {
		case "q":
			return m, tea.Quit
		case "r":
			if m.loadErr != nil {
				m.loadErr = nil
				return m, tea.Batch(m.spinner.Tick, m.startCmd())
			}
		}
		return m, nil
	}
	if m.input.Focused() {
		return m.updateInput(key, msg)
	}
	return m.updateList(key)
}

func (m *tuiModel) updateInput(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		m.resetInput()
		return m, nil
	case "enter":
		text := m.input.Value()
		if m.editing == "" {
			m.input.SetValue("")
			return m, m.intent(app.IntentAdd, func(ctx context.Context) error {
				_, err := m.ctrl.AddTask(ctx, text)
				return err
			})
		}

		id := m.editing
		m.resetInput()
		if strings.TrimSpace(text) == "" {
			m.setStatus("Task text is empty", true)
			return m, nil
		}
		current, ok := m.ctrl.Tasks().Get(id)
		if !ok {
			m.setStatus("Task no longer exists", true)
			return m, nil
		}
		current.Text = text
		return m, m.intent(app.IntentUpdate, func(ctx context.Context) error {
			return m.ctrl.UpdateTask(ctx, current)
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *tuiModel) updateList(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "a", "i":
		m.editing = ""
		m.setStatus("", false)
		return m, m.input.Focus()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case " ", "x":
		if t, ok := m.selected(); ok {
			return m, m.intent(app.IntentToggle, func(ctx context.Context) error {
				return m.ctrl.ToggleTask(ctx, t.ID)
			})
		}
	case "e":
		if t, ok := m.selected(); ok {
			m.editing = t.ID
			m.input.SetValue(t.Text)
			m.input.CursorEnd()
			return m, m.input.Focus()
		}
	case "d":
		if t, ok := m.selected(); ok {
			return m, m.intent(app.IntentDelete, func(ctx context.Context) error {
				return m.ctrl.DeleteTask(ctx, t.ID)
			})
		}
	case "D":
		if m.completed > 0 {
			return m, m.intent(app.IntentClear, m.ctrl.DeleteAllCompleted)
		}
	}
	return m, nil
}

// intent runs fn off the update loop and reports its outcome.
func (m *tuiModel) intent(intent app.Intent, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return intentDoneMsg{intent: intent, err: fn(ctx)}
	}
}

func (m *tuiModel) resetInput() {
	m.editing = ""
	m.input.Reset()
	m.input.Blur()
}

func (m *tuiModel) selected() (task.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return task.Task{}, false
	}
	return m.tasks[m.cursor], true
}

// setTasks shows c newest first.
func (m *tuiModel) setTasks(c task.Collection) {
	m.tasks = c.Reversed()
	m.completed = c.CountCompleted()
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *tuiModel) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m *tuiModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.opts.Title))
	b.WriteString("\n")

	if m.loadErr != nil {
		b.WriteString(errorStyle.Render("Could not load tasks: " + m.loadErr.Error()))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("r retry • q quit"))
		b.WriteString("\n")
		return b.String()
	}
	if !m.ready {
		b.WriteString(m.spinner.View() + " Loading…\n")
		return b.String()
	}

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if len(m.tasks) == 0 {
		b.WriteString(helpStyle.Render("  Nothing on the list yet."))
		b.WriteString("\n")
	}
	for i, t := range m.tasks {
		b.WriteString(m.renderTask(i, t))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.status != "" {
		style := statusStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(fmt.Sprintf("%d items • %d completed", len(m.tasks), m.completed)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.helpLine()))
	b.WriteString("\n")
	return b.String()
}

func (m *tuiModel) renderTask(i int, t task.Task) string {
	pointer := "  "
	if i == m.cursor && !m.input.Focused() {
		pointer = cursorStyle.Render("> ")
	}
	box := "[ ]"
	text := t.Text
	if t.Completed {
		box = "[x]"
		text = doneStyle.Render(text)
	}
	return pointer + box + " " + text
}

func (m *tuiModel) helpLine() string {
	if m.input.Focused() {
		if m.editing != "" {
			return "enter save • esc cancel"
		}
		return "enter add • esc cancel"
	}
	help := "a add • space toggle • e edit • d delete"
	if m.completed > 0 {
		help += " • D delete completed"
	}
	return help + " • q quit"
}

func describeIntent(intent app.Intent) string {
	switch intent {
	case app.IntentAdd:
		return "add task"
	case app.IntentDelete:
		return "delete task"
	case app.IntentToggle:
		return "update task"
	case app.IntentUpdate:
		return "save task"
	case app.IntentClear:
		return "delete completed tasks"
	default:
		return string(intent)
	}
}

func doneMessage(intent app.Intent) string {
	switch intent {
	case app.IntentAdd:
		return "Added"
	case app.IntentDelete:
		return "Deleted"
	case app.IntentUpdate:
		return "Saved"
	case app.IntentClear:
		return "Deleted completed tasks"
	default:
		return ""
	}
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
