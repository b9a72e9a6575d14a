// Package ui is the terminal front end for the tasks API.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"todo_webapp/internal/client"
	"todo_webapp/internal/domain"
)

var sortCycle = []domain.SortKey{domain.SortDueDate, domain.SortTitle, domain.SortCreatedAt, domain.SortOrder}

// Run starts the TUI and blocks until the user quits.
func Run(ctx context.Context, api *client.Client, q domain.TaskQuery) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	program := tea.NewProgram(NewModel(ctx, api, q), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type Model struct {
	ctx   context.Context
	api   *client.Client
	state *client.State

	cursor   int
	form     *taskForm
	showHelp bool
}

type fetchedMsg struct {
	token client.FetchToken
	tasks []domain.Task
	err   error
}

// mutatedMsg reports one finished write. id is the key the overlay was
// registered under (temporary for creates).
type mutatedMsg struct {
	id      int64
	task    *domain.Task
	deleted bool
	err     error
}

func NewModel(ctx context.Context, api *client.Client, q domain.TaskQuery) *Model {
	return &Model{
		ctx:   ctx,
		api:   api,
		state: client.NewState(q),
	}
}

// State exposes the reducer, mostly for tests.
func (m *Model) State() *client.State { return m.state }

func (m *Model) Init() tea.Cmd {
	return m.fetch()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.form != nil {
			return m, m.updateForm(msg)
		}
		return m, m.updateKeys(msg)
	case fetchedMsg:
		if msg.err != nil {
			m.state.FailFetch(msg.token, msg.err)
		} else {
			m.state.ResolveFetch(msg.token, msg.tasks)
		}
		m.clampCursor()
	case mutatedMsg:
		switch {
		case msg.err != nil:
			m.state.Fail(msg.id, msg.err)
		case msg.deleted:
			m.state.SettleDelete(msg.id)
		case msg.task != nil:
			m.state.Settle(msg.id, *msg.task)
		}
		m.clampCursor()
	}
	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit
	case "r", "f5":
		return m.fetch()
	case "h", "?":
		m.showHelp = !m.showHelp
	case "0":
		m.setStatus(domain.StatusAll)
	case "1":
		m.setStatus(domain.StatusActive)
	case "2":
		m.setStatus(domain.StatusCompleted)
	case "s":
		m.nextSort()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.state.View())-1 {
			m.cursor++
		}
	case " ", "x":
		return m.toggle()
	case "d":
		return m.remove()
	case "c":
		return m.clearCompleted()
	case "a":
		m.form = newTaskForm()
	case "e", "enter":
		if t, ok := m.selected(); ok && t.ID > 0 && m.state.Phase(t.ID) != client.PhaseSubmitting {
			m.form = editTaskForm(t)
		}
	case "esc":
		m.state.ClearErr()
	}
	return nil
}

func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyEsc {
		m.form = nil
		return nil
	}
	if !m.form.key(msg) {
		return nil
	}
	f := m.form
	m.form = nil
	if f.editID != 0 {
		return m.edit(f)
	}
	return m.create(f)
}

func (m *Model) setStatus(f domain.StatusFilter) {
	q := m.state.Query()
	q.Status = f
	m.state.SetQuery(q)
	m.clampCursor()
}

func (m *Model) nextSort() {
	q := m.state.Query()
	for i, k := range sortCycle {
		if k == q.Sort {
			q.Sort = sortCycle[(i+1)%len(sortCycle)]
			m.state.SetQuery(q)
			return
		}
	}
	q.Sort = sortCycle[0]
	m.state.SetQuery(q)
}

func (m *Model) selected() (domain.Task, bool) {
	view := m.state.View()
	if m.cursor < 0 || m.cursor >= len(view) {
		return domain.Task{}, false
	}
	return view[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.state.View())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// fetch always asks for every task; filtering and sorting happen locally.
func (m *Model) fetch() tea.Cmd {
	token := m.state.BeginFetch()
	q := domain.TaskQuery{Status: domain.StatusAll, Sort: m.state.Query().Sort}
	return func() tea.Msg {
		tasks, err := m.api.List(m.ctx, q)
		return fetchedMsg{token: token, tasks: tasks, err: err}
	}
}

func (m *Model) toggle() tea.Cmd {
	t, ok := m.selected()
	if !ok || t.ID < 0 || m.state.Phase(t.ID) == client.PhaseSubmitting {
		return nil
	}
	optimistic := t
	optimistic.Completed = !t.Completed
	m.state.BeginMutation(t.ID, optimistic)
	return func() tea.Msg {
		res, err := m.api.SetCompleted(m.ctx, t.ID, optimistic.Completed)
		return mutatedMsg{id: t.ID, task: res, err: err}
	}
}

func (m *Model) remove() tea.Cmd {
	t, ok := m.selected()
	if !ok || t.ID < 0 || m.state.Phase(t.ID) == client.PhaseSubmitting {
		return nil
	}
	return m.deleteCmd(t.ID)
}

func (m *Model) deleteCmd(id int64) tea.Cmd {
	m.state.BeginDelete(id)
	return func() tea.Msg {
		_, err := m.api.Delete(m.ctx, id)
		return mutatedMsg{id: id, deleted: err == nil, err: err}
	}
}

// clearCompleted deletes every completed task; any that fail stay listed.
func (m *Model) clearCompleted() tea.Cmd {
	var cmds []tea.Cmd
	for _, t := range m.state.Select(domain.StatusCompleted) {
		if t.ID < 0 || m.state.Phase(t.ID) == client.PhaseSubmitting {
			continue
		}
		cmds = append(cmds, m.deleteCmd(t.ID))
	}
	return tea.Batch(cmds...)
}

func (m *Model) create(f *taskForm) tea.Cmd {
	t := f.apply(domain.Task{CreatedAt: time.Now().UTC()})
	if t.Title == "" {
		return nil
	}
	tmp := m.state.BeginCreate(t)
	payload := client.PayloadFrom(t)
	return func() tea.Msg {
		res, err := m.api.Create(m.ctx, payload)
		return mutatedMsg{id: tmp, task: res, err: err}
	}
}

// edit sends a full update built from the displayed record, so fields the
// form does not show (completed, sortOrder) are kept.
func (m *Model) edit(f *taskForm) tea.Cmd {
	current, ok := m.state.Task(f.editID)
	if !ok {
		return nil
	}
	optimistic := f.apply(current)
	m.state.BeginMutation(f.editID, optimistic)
	payload := client.PayloadFrom(optimistic)
	id := f.editID
	return func() tea.Msg {
		res, err := m.api.Update(m.ctx, id, payload)
		return mutatedMsg{id: id, task: res, err: err}
	}
}

func (m *Model) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		return b.String()
	}

	q := m.state.Query()
	counts := m.state.Counts()
	b.WriteString(fmt.Sprintf("%s  %s  %s   sort: %s",
		tab("All", counts.All, q.Status == domain.StatusAll),
		tab("Active", counts.Active, q.Status == domain.StatusActive),
		tab("Completed", counts.Completed, q.Status == domain.StatusCompleted),
		q.Sort,
	))
	if m.state.Loading() {
		b.WriteString("   loading...")
	}
	b.WriteString("\n\n")

	view := m.state.View()
	if len(view) == 0 {
		b.WriteString("  No tasks.\n")
	}
	for i, t := range view {
		b.WriteString(m.formatTask(t, i == m.cursor))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.form != nil {
		m.form.write(&b)
	}
	if err := m.state.Err(); err != nil {
		b.WriteString("Error: " + err.Error() + " (esc to dismiss)\n\n")
	}
	writeFooter(&b)
	return b.String()
}

func (m *Model) formatTask(t domain.Task, selected bool) string {
	cursor := " "
	if selected {
		cursor = ">"
	}
	check := " "
	if t.Completed {
		check = "x"
	}
	line := fmt.Sprintf("%s [%s] %s", cursor, check, t.Title)
	if t.DueDate != nil {
		line += "  (due " + *t.DueDate + ")"
	}
	switch m.state.Phase(t.ID) {
	case client.PhaseSubmitting:
		line += "  ..."
	case client.PhaseFailed:
		line += "  !"
	}
	if desc := strings.TrimSpace(t.Description); desc != "" {
		if r := []rune(desc); len(r) > 60 {
			desc = string(r[:57]) + "..."
		}
		line += "\n      " + strings.ReplaceAll(desc, "\n", " ")
	}
	return line
}

func tab(label string, n int, active bool) string {
	s := fmt.Sprintf("%s (%d)", label, n)
	if active {
		return "[" + s + "]"
	}
	return " " + s + " "
}

func writeTitle(b *strings.Builder) {
	title := "Tasks"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  r, F5        Refresh from server\n")
	b.WriteString("  0 / 1 / 2    All / Active / Completed\n")
	b.WriteString("  s            Cycle sort order\n")
	b.WriteString("  j/k, arrows  Move\n")
	b.WriteString("  space, x     Toggle completed\n")
	b.WriteString("  a            Add task\n")
	b.WriteString("  e, enter     Edit selected task\n")
	b.WriteString("  d            Delete task\n")
	b.WriteString("  c            Clear completed\n")
	b.WriteString("  h, ?         Toggle this help screen\n\n")
}

func writeFooter(b *strings.Builder) {
	b.WriteString("Press h for help | q to quit\n")
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
