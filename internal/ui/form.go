package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"todo_webapp/internal/domain"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldDueDate
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Description", "Due (YYYY-MM-DD)"}

// taskForm collects the editable fields of a task. editID is 0 for a new task.
type taskForm struct {
	editID int64
	values [fieldCount]string
	focus  int
}

func newTaskForm() *taskForm {
	return &taskForm{}
}

func editTaskForm(t domain.Task) *taskForm {
	f := &taskForm{editID: t.ID}
	f.values[fieldTitle] = t.Title
	f.values[fieldDescription] = t.Description
	if t.DueDate != nil {
		f.values[fieldDueDate] = *t.DueDate
	}
	return f
}

// apply copies the form onto t. An empty due date clears it.
func (f *taskForm) apply(t domain.Task) domain.Task {
	t.Title = strings.TrimSpace(f.values[fieldTitle])
	t.Description = f.values[fieldDescription]
	t.DueDate = nil
	if due := strings.TrimSpace(f.values[fieldDueDate]); due != "" {
		t.DueDate = &due
	}
	return t
}

// key edits the focused field and reports whether the form was submitted.
func (f *taskForm) key(msg tea.KeyMsg) (submitted bool) {
	v := &f.values[f.focus]
	switch msg.Type {
	case tea.KeyEnter:
		return true
	case tea.KeyTab, tea.KeyDown:
		f.focus = (f.focus + 1) % fieldCount
	case tea.KeyShiftTab, tea.KeyUp:
		f.focus = (f.focus + fieldCount - 1) % fieldCount
	case tea.KeyBackspace:
		if r := []rune(*v); len(r) > 0 {
			*v = string(r[:len(r)-1])
		}
	case tea.KeyCtrlU:
		*v = ""
	case tea.KeySpace:
		*v += " "
	case tea.KeyRunes:
		*v += string(msg.Runes)
	}
	return false
}

func (f *taskForm) write(b *strings.Builder) {
	if f.editID == 0 {
		b.WriteString("New task\n")
	} else {
		b.WriteString("Edit task\n")
	}
	for i, label := range fieldLabels {
		cursor := "  "
		if i == f.focus {
			cursor = "> "
		}
		b.WriteString(cursor + label + ": " + f.values[i])
		if i == f.focus {
			b.WriteString("_")
		}
		b.WriteString("\n")
	}
	b.WriteString("  tab: next field | enter: save | esc: cancel | ctrl+u: clear field\n\n")
}
