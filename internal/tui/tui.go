package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jpc2301-netizen/todo-app/internal/task"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("241"))
	dueStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	filterOn      = lipgloss.NewStyle().Bold(true).Underline(true)
	filterOff     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
	filterOrder   = []task.Filter{task.FilterAll, task.FilterActive, task.FilterCompleted}
	defaultStatus = "a add · space toggle · e edit · d delete · c clear completed · 1/2/3 filter · q quit"
)

type Model struct {
	ctx    context.Context
	store  *task.Store
	filter task.Filter
	cursor int
	mode   mode

	text  textinput.Model
	due   textinput.Model
	focus int // 0 text, 1 due while adding

	edit *task.EditSession

	status string
	err    string
}

// New builds the terminal view over store. Intents run on the caller's
// goroutine in key order, so the store needs no locking.
func New(ctx context.Context, store *task.Store, filter task.Filter) Model {
	text := textinput.New()
	text.Placeholder = "What needs doing?"
	text.CharLimit = 0 // unlimited, like the web view
	text.Width = 48

	due := textinput.New()
	due.Placeholder = "YYYY-MM-DD (optional)"
	due.CharLimit = 10
	due.Width = 12

	return Model{
		ctx:    ctx,
		store:  store,
		filter: filter,
		text:   text,
		due:    due,
		status: defaultStatus,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Filter() task.Filter { return m.filter }
func (m Model) Cursor() int         { return m.cursor }
func (m Model) Err() string         { return m.err }
func (m Model) Editing() bool       { return m.mode == modeEdit }
func (m Model) Adding() bool        { return m.mode == modeAdd }

func (m Model) visible() []task.Task {
	return m.store.Visible(m.filter)
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selected() (task.Task, bool) {
	v := m.visible()
	if m.cursor < 0 || m.cursor >= len(v) {
		return task.Task{}, false
	}
	return v[m.cursor], true
}

func (m *Model) fail(err error) {
	m.err = err.Error()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAdd:
			return m.updateAdd(msg)
		case modeEdit:
			return m.updateEdit(msg)
		default:
			return m.updateList(msg)
		}
	case tea.WindowSizeMsg:
		if w := msg.Width - 10; w > 10 {
			m.text.Width = w
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = ""
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case "a":
		m.mode = modeAdd
		m.focus = 0
		m.text.SetValue("")
		m.due.SetValue("")
		m.due.Blur()
		return m, m.text.Focus()
	case " ", "x":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		if _, _, err := m.store.Toggle(m.ctx, t.ID); err != nil {
			m.fail(err)
		}
		m.clampCursor()
	case "e", "enter":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		sess, ok := task.BeginEdit(m.store, t.ID)
		if !ok {
			return m, nil
		}
		m.edit = sess
		m.mode = modeEdit
		m.text.SetValue(sess.Original())
		m.text.CursorEnd()
		return m, m.text.Focus()
	case "d", "delete":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		if _, err := m.store.Delete(m.ctx, t.ID); err != nil {
			m.fail(err)
		}
		m.clampCursor()
	case "c":
		n, err := m.store.ClearCompleted(m.ctx)
		if err != nil {
			m.fail(err)
		} else if n > 0 {
			m.status = fmt.Sprintf("cleared %d completed", n)
		}
		m.clampCursor()
	case "1", "2", "3":
		m.filter = filterOrder[int(msg.String()[0]-'1')]
		m.clampCursor()
	case "f", "tab":
		for i, f := range filterOrder {
			if f == m.filter {
				m.filter = filterOrder[(i+1)%len(filterOrder)]
				break
			}
		}
		m.clampCursor()
	}
	return m, nil
}

func (m Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.text.Blur()
		m.due.Blur()
		m.err = ""
		return m, nil
	case "tab", "shift+tab":
		m.focus = 1 - m.focus
		if m.focus == 0 {
			m.due.Blur()
			return m, m.text.Focus()
		}
		m.text.Blur()
		return m, m.due.Focus()
	case "enter":
		due, err := task.ParseOptionalDate(m.due.Value())
		if err != nil {
			m.err = "due date must be YYYY-MM-DD"
			return m, nil
		}
		if _, added, err := m.store.Add(m.ctx, m.text.Value(), due); err != nil {
			m.fail(err)
			return m, nil
		} else if added {
			m.cursor = 0
		}
		m.err = ""
		m.mode = modeList
		m.text.Blur()
		m.due.Blur()
		m.clampCursor()
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.text, cmd = m.text.Update(msg)
	} else {
		m.due, cmd = m.due.Update(msg)
	}
	return m, cmd
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.edit.Cancel()
		m.finishEdit()
		return m, nil
	case "enter":
		if _, err := m.edit.Commit(m.ctx, m.text.Value()); err != nil {
			m.fail(err)
			return m, nil
		}
		m.finishEdit()
		return m, nil
	}
	var cmd tea.Cmd
	m.text, cmd = m.text.Update(msg)
	return m, cmd
}

func (m *Model) finishEdit() {
	m.edit = nil
	m.mode = modeList
	m.err = ""
	m.text.Blur()
	m.text.SetValue("")
	m.clampCursor()
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("To-Do"))
	b.WriteString("\n")

	if m.mode == modeAdd {
		b.WriteString("New: " + m.text.View() + "\n")
		b.WriteString("Due: " + m.due.View() + "\n\n")
	}

	visible := m.visible()
	if len(visible) == 0 {
		b.WriteString(statusStyle.Render("  nothing here") + "\n")
	}
	for i, t := range visible {
		b.WriteString(m.renderRow(i, t))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	parts := make([]string, 0, len(filterOrder))
	for i, f := range filterOrder {
		label := fmt.Sprintf("%d %s", i+1, f)
		if f == m.filter {
			parts = append(parts, filterOn.Render(label))
		} else {
			parts = append(parts, filterOff.Render(label))
		}
	}
	b.WriteString(task.ItemsLeft(m.store.ActiveCount()) + "   " + strings.Join(parts, "  ") + "\n")

	if m.err != "" {
		b.WriteString(errStyle.Render(m.err) + "\n")
	}
	b.WriteString(helpStyle.Render(m.status))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderRow(i int, t task.Task) string {
	pointer := "  "
	if i == m.cursor && m.mode != modeAdd {
		pointer = cursorStyle.Render("> ")
	}
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}

	text := t.Text
	if m.mode == modeEdit && m.edit != nil && m.edit.ID() == t.ID {
		text = m.text.View()
	} else if t.Completed {
		text = doneStyle.Render(text)
	}

	row := pointer + box + " " + text
	if t.Due != nil {
		row += dueStyle.Render("  Due: " + t.Due.String())
	}
	return row
}

// Run drives the terminal view until the user quits or ctx is cancelled.
func Run(ctx context.Context, store *task.Store, filter task.Filter, opts ...tea.ProgramOption) error {
	defer bestEffortResetTTY()

	p := tea.NewProgram(New(ctx, store, filter), opts...)

	done := make(chan error, 1)
	go func() {
		_, err := p.Run()
		done <- err
	}()

	select {
	case <-ctx.Done():
		p.Quit()
		<-done
		return ctx.Err()
	case err := <-done:
		return err
	}
}
