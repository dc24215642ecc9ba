package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tugestor-cli/internal/api"
	"tugestor-cli/internal/model"
	"tugestor-cli/internal/tasklist"
)

type picker struct {
	title   string
	options []string
	index   int
}

func newPicker(title string, options []string, current string) picker {
	p := picker{title: title, options: options}
	for i, o := range options {
		if o == current {
			p.index = i
		}
	}
	return p
}

func (p *picker) move(delta int) {
	if len(p.options) == 0 {
		return
	}
	p.index = (p.index + delta + len(p.options)) % len(p.options)
}

func (p picker) selected() string {
	if p.index < 0 || p.index >= len(p.options) {
		return ""
	}
	return p.options[p.index]
}

func sortOptions() []string {
	out := make([]string, 0, len(api.SortKeys))
	for _, k := range api.SortKeys {
		out = append(out, string(k))
	}
	return out
}

func filterOptions() []string {
	out := make([]string, 0, len(api.FilterKinds))
	for _, k := range api.FilterKinds {
		out = append(out, string(k))
	}
	return out
}

func filterValuePrompt(kind api.FilterKind) string {
	switch kind {
	case api.FilterByPriority:
		return "Prioridad (BAJA, MEDIA, ALTA, IMPRESCINDIBLE)"
	case api.FilterByState:
		return "Estado (EN_CURSO, COMPLETADA, VENCIDA, ...)"
	case api.FilterByCategory:
		return "Id de categoría"
	case api.FilterByMaxTime:
		return "Tiempo máximo (min)"
	default:
		return "Palabras"
	}
}

// textInput is a single-line input with an inline error.
type textInput struct {
	label string
	textinput.Model
	err string
}

func newTextInput(label, value string) textInput {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 1000
	// Static cursor: blink ticks are not worth a redraw loop in modals.
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.SetValue(value)
	ti.Focus()
	return textInput{label: label, Model: ti}
}

func (t *textInput) update(msg tea.KeyMsg) {
	t.Model, _ = t.Model.Update(msg)
	t.err = ""
}

type taskField int

const (
	taskFieldTitle taskField = iota
	taskFieldDescription
	taskFieldTime
	taskFieldPriority
	taskFieldDue
	taskFieldCategory
	taskFieldCount
)

var taskFieldLabels = [...]string{"Título", "Descripción", "Tiempo (min)", "Prioridad", "Entrega (AAAA-MM-DDTHH:MM)", "Categoría"}

// taskForm edits a task. Priority and category are chosen from fixed lists with left/right.
type taskForm struct {
	id    int64
	focus taskField

	title       textInput
	description textInput
	time        textInput
	due         textInput

	// priority indexes model.Priorities; -1 means not chosen.
	priority int
	// category indexes categories; -1 means not chosen.
	category   int
	categories []model.Category

	err    string
	saving bool
}

func newTaskForm(id int64, f tasklist.TaskForm, categories []model.Category) *taskForm {
	tf := &taskForm{
		id:          id,
		title:       newTextInput(taskFieldLabels[taskFieldTitle], f.Title),
		description: newTextInput(taskFieldLabels[taskFieldDescription], f.Description),
		time:        newTextInput(taskFieldLabels[taskFieldTime], f.Time),
		due:         newTextInput(taskFieldLabels[taskFieldDue], f.DueDate),
		priority:    -1,
		category:    -1,
		categories:  categories,
	}
	if p := model.Priority(f.Priority); p.Valid() {
		tf.priority = p.Rank()
	}
	for i, c := range categories {
		if strconv.FormatInt(c.ID, 10) == strings.TrimSpace(f.CategoryID) {
			tf.category = i
		}
	}
	tf.syncFocus()
	return tf
}

func (f *taskForm) inputs() map[taskField]*textInput {
	return map[taskField]*textInput{
		taskFieldTitle:       &f.title,
		taskFieldDescription: &f.description,
		taskFieldTime:        &f.time,
		taskFieldDue:         &f.due,
	}
}

func (f *taskForm) syncFocus() {
	for field, in := range f.inputs() {
		if field == f.focus {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

func (f *taskForm) focusNext(delta int) {
	f.focus = taskField((int(f.focus) + delta + int(taskFieldCount)) % int(taskFieldCount))
	f.syncFocus()
}

func (f *taskForm) update(msg tea.KeyMsg) {
	switch f.focus {
	case taskFieldPriority:
		f.priority = cycle(f.priority, len(model.Priorities), msg)
	case taskFieldCategory:
		f.category = cycle(f.category, len(f.categories), msg)
	default:
		if in := f.inputs()[f.focus]; in != nil {
			in.update(msg)
		}
	}
	f.err = ""
}

// cycle moves a list selection with left/right; from "none" it starts at either end.
func cycle(i, n int, msg tea.KeyMsg) int {
	if n == 0 {
		return -1
	}
	switch msg.String() {
	case "right", "l", " ":
		if i < 0 {
			return 0
		}
		return (i + 1) % n
	case "left", "h":
		if i < 0 {
			return n - 1
		}
		return (i - 1 + n) % n
	}
	return i
}

func (f *taskForm) priorityLabel() string {
	if f.priority < 0 || f.priority >= len(model.Priorities) {
		return ""
	}
	return string(model.Priorities[f.priority])
}

func (f *taskForm) categoryLabel() string {
	if f.category < 0 || f.category >= len(f.categories) {
		return ""
	}
	return f.categories[f.category].Name
}

func (f *taskForm) value() tasklist.TaskForm {
	out := tasklist.TaskForm{
		Title:       f.title.Value(),
		Description: f.description.Value(),
		Time:        f.time.Value(),
		Priority:    f.priorityLabel(),
		DueDate:     f.due.Value(),
	}
	if f.category >= 0 && f.category < len(f.categories) {
		out.CategoryID = strconv.FormatInt(f.categories[f.category].ID, 10)
	}
	return out
}

type categoryForm struct {
	id     int64
	focus  int
	fields [3]textInput
	err    string
	saving bool
}

func newCategoryForm(c model.Category) *categoryForm {
	f := &categoryForm{id: c.ID}
	f.fields[0] = newTextInput("Nombre", c.Name)
	f.fields[1] = newTextInput("Color (#rrggbb)", c.Color)
	f.fields[2] = newTextInput("Icono", c.Icon)
	f.focusNext(0)
	return f
}

func (f *categoryForm) focusNext(delta int) {
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	for i := range f.fields {
		if i == f.focus {
			f.fields[i].Focus()
		} else {
			f.fields[i].Blur()
		}
	}
}

func (f *categoryForm) update(msg tea.KeyMsg) {
	f.fields[f.focus].update(msg)
	f.err = ""
}

func (f *categoryForm) request() model.CategoryRequest {
	return model.CategoryRequest{
		Name:  strings.TrimSpace(f.fields[0].Value()),
		Color: strings.TrimSpace(f.fields[1].Value()),
		Icon:  strings.TrimSpace(f.fields[2].Value()),
	}
}
