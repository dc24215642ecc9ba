package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"tugestor-cli/internal/api"
	"tugestor-cli/internal/model"
	"tugestor-cli/internal/tasklist"
)

const (
	msgCategoriesLoadFailed  = "No se pudieron cargar las categorías."
	msgCategorySaveFailed    = "No se pudo guardar la categoría."
	msgCategoryDeleteFailed  = "No se pudo eliminar la categoría."
	msgCategoryDeleteWarning = "Las tareas de esta categoría quedarán sin categoría."
)

type view int

const (
	viewTasks view = iota
	viewCategories
)

type modalKind int

const (
	modalNone modalKind = iota
	modalSortPicker
	modalFilterKindPicker
	modalFilterValue
	modalTaskForm
	modalConfirmDeleteTask
	modalCategoryForm
	modalConfirmDeleteCategory
	modalCategorySearch
)

type tasksLoadedMsg struct{ res tasklist.Result }

type categoriesLoadedMsg struct {
	query string
	cats  []model.Category
	err   error
}

type taskSavedMsg struct {
	task model.Task
	msg  string
	err  error
}

type taskChangedMsg struct {
	id      int64
	deleted bool
	msg     string
	err     error
}

type categorySavedMsg struct {
	cat model.Category
	err error
}

type categoryDeletedMsg struct {
	id  int64
	err error
}

type appModel struct {
	ctx     context.Context
	backend Backend
	ctl     *tasklist.Controller
	log     *log.Logger
	keys    keyMap

	width  int
	height int

	view  view
	modal modalKind

	// cursor indexes ctl.Tasks().
	cursor int

	categories []model.Category
	catList    list.Model
	catQuery   string

	picker picker
	input  textInput

	// filterKind is the kind chosen in the picker, pending its value.
	filterKind api.FilterKind

	taskForm  *taskForm
	catForm   *categoryForm
	confirmID int64

	flash    string
	flashErr bool
}

func newAppModel(ctx context.Context, backend Backend, logger *log.Logger) appModel {
	if ctx == nil {
		ctx = context.Background()
	}
	return appModel{
		ctx:     ctx,
		backend: backend,
		ctl:     tasklist.New(backend, logger),
		log:     logger,
		keys:    defaultKeyMap(),
		width:   80,
		height:  24,
		catList: newCategoryList(80, 20),
	}
}

func (m appModel) Init() tea.Cmd {
	req, ok := m.ctl.Mount()
	if !ok {
		return m.loadCategoriesCmd("")
	}
	return tea.Batch(m.fetchCmd(req), m.loadCategoriesCmd(""))
}

func (m appModel) fetchCmd(req tasklist.Request) tea.Cmd {
	ctx, ctl := m.ctx, m.ctl
	return func() tea.Msg {
		return tasksLoadedMsg{res: ctl.Fetch(ctx, req)}
	}
}

func (m appModel) reloadCmd() tea.Cmd {
	return m.fetchCmd(m.ctl.Reload())
}

func (m appModel) loadCategoriesCmd(query string) tea.Cmd {
	ctx, b := m.ctx, m.backend
	return func() tea.Msg {
		var cats []model.Category
		var err error
		if strings.TrimSpace(query) == "" {
			cats, err = b.ListCategories(ctx)
		} else {
			cats, err = b.SearchCategories(ctx, strings.TrimSpace(query))
		}
		return categoriesLoadedMsg{query: query, cats: cats, err: err}
	}
}

func (m appModel) saveTaskCmd(id int64, form tasklist.TaskForm) tea.Cmd {
	ctx, ctl := m.ctx, m.ctl
	return func() tea.Msg {
		t, msg, err := ctl.Save(ctx, id, form)
		return taskSavedMsg{task: t, msg: msg, err: err}
	}
}

func (m appModel) completeTaskCmd(id int64) tea.Cmd {
	ctx, ctl := m.ctx, m.ctl
	return func() tea.Msg {
		msg, err := ctl.Complete(ctx, id)
		return taskChangedMsg{id: id, msg: msg, err: err}
	}
}

func (m appModel) deleteTaskCmd(id int64) tea.Cmd {
	ctx, ctl := m.ctx, m.ctl
	return func() tea.Msg {
		msg, err := ctl.Delete(ctx, id)
		return taskChangedMsg{id: id, deleted: true, msg: msg, err: err}
	}
}

func (m appModel) saveCategoryCmd(id int64, req model.CategoryRequest) tea.Cmd {
	ctx, b := m.ctx, m.backend
	return func() tea.Msg {
		var c model.Category
		var err error
		if id == 0 {
			c, err = b.CreateCategory(ctx, req)
		} else {
			c, err = b.UpdateCategory(ctx, id, req)
		}
		return categorySavedMsg{cat: c, err: err}
	}
}

func (m appModel) deleteCategoryCmd(id int64) tea.Cmd {
	ctx, b := m.ctx, m.backend
	return func() tea.Msg {
		return categoryDeletedMsg{id: id, err: b.DeleteCategory(ctx, id)}
	}
}

func (m *appModel) setFlash(s string, isErr bool) {
	m.flash = s
	m.flashErr = isErr
}

// categoryMessage prefers the server message, then local validation, then fallback.
func (m *appModel) categoryMessage(err error, fallback string) string {
	if errors.Is(err, api.ErrCategoryNameRequired) {
		return "El nombre de la categoría es obligatorio."
	}
	var apiErr *api.Error
	if !errors.As(err, &apiErr) && !errors.Is(err, context.Canceled) {
		m.log.WithError(err).Error("category request failed")
	}
	return api.UserMessage(err, fallback)
}

func (m appModel) selectedTask() (model.Task, bool) {
	tasks := m.ctl.Tasks()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[m.cursor], true
}

func (m *appModel) clampCursor() {
	n := len(m.ctl.Tasks())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.catList.SetSize(msg.Width, m.bodyHeight())
		return m, nil

	case tasksLoadedMsg:
		m.ctl.Apply(msg.res)
		m.clampCursor()
		return m, nil

	case categoriesLoadedMsg:
		if msg.err != nil {
			m.setFlash(m.categoryMessage(msg.err, msgCategoriesLoadFailed), true)
			return m, nil
		}
		if strings.TrimSpace(msg.query) == "" {
			m.categories = msg.cats
		}
		if strings.TrimSpace(msg.query) == strings.TrimSpace(m.catQuery) {
			m.catList.SetItems(categoryItems(msg.cats))
		}
		return m, nil

	case taskSavedMsg:
		if msg.err != nil {
			if m.taskForm != nil {
				m.taskForm.err = msg.msg
				m.taskForm.saving = false
			} else {
				m.setFlash(msg.msg, true)
			}
			return m, nil
		}
		m.modal = modalNone
		m.taskForm = nil
		m.setFlash("Tarea guardada.", false)
		return m, m.reloadCmd()

	case taskChangedMsg:
		if msg.err != nil {
			m.setFlash(msg.msg, true)
			return m, nil
		}
		if msg.deleted {
			m.setFlash("Tarea eliminada.", false)
		} else {
			m.setFlash("Tarea completada.", false)
		}
		return m, m.reloadCmd()

	case categorySavedMsg:
		if msg.err != nil {
			text := m.categoryMessage(msg.err, msgCategorySaveFailed)
			if m.catForm != nil {
				m.catForm.err = text
				m.catForm.saving = false
			} else {
				m.setFlash(text, true)
			}
			return m, nil
		}
		m.modal = modalNone
		m.catForm = nil
		m.setFlash("Categoría guardada.", false)
		m.catQuery = ""
		// Task cards show the category name.
		return m, tea.Batch(m.loadCategoriesCmd(""), m.reloadCmd())

	case categoryDeletedMsg:
		if msg.err != nil {
			m.setFlash(m.categoryMessage(msg.err, msgCategoryDeleteFailed), true)
			return m, nil
		}
		m.setFlash("Categoría eliminada.", false)
		m.catQuery = ""
		return m, tea.Batch(m.loadCategoriesCmd(""), m.reloadCmd())

	case tea.KeyMsg:
		if m.modal != modalNone {
			return m.updateModal(msg)
		}
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.SwitchView) {
			if m.view == viewTasks {
				m.view = viewCategories
			} else {
				m.view = viewTasks
			}
			m.flash = ""
			return m, nil
		}
		if m.view == viewCategories {
			return m.updateCategories(msg)
		}
		return m.updateTasks(msg)
	}
	return m, nil
}

func (m appModel) updateTasks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tasks := m.ctl.Tasks()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(tasks)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if t, ok := m.selectedTask(); ok {
			m.ctl.Toggle(t.ID)
		}
	case key.Matches(msg, m.keys.ExpandAll):
		m.ctl.ExpandAll()
	case key.Matches(msg, m.keys.CollapseAll):
		m.ctl.CollapseAll()
	case key.Matches(msg, m.keys.Reload):
		m.flash = ""
		return m, m.reloadCmd()
	case key.Matches(msg, m.keys.Sort):
		m.picker = newPicker("Ordenar por", sortOptions(), string(m.ctl.Sort()))
		m.modal = modalSortPicker
	case key.Matches(msg, m.keys.Filter):
		m.picker = newPicker("Filtrar por", filterOptions(), string(m.ctl.Filter().Kind))
		m.modal = modalFilterKindPicker
	case key.Matches(msg, m.keys.New):
		m.taskForm = newTaskForm(0, tasklist.TaskForm{}, m.categories)
		m.modal = modalTaskForm
	case key.Matches(msg, m.keys.Edit):
		if t, ok := m.selectedTask(); ok {
			m.taskForm = newTaskForm(t.ID, tasklist.FormFromTask(t), m.categories)
			m.modal = modalTaskForm
		}
	case key.Matches(msg, m.keys.Complete):
		if t, ok := m.selectedTask(); ok {
			return m, m.completeTaskCmd(t.ID)
		}
	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selectedTask(); ok {
			m.confirmID = t.ID
			m.modal = modalConfirmDeleteTask
		}
	}
	return m, nil
}

func (m appModel) updateCategories(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.New):
		m.catForm = newCategoryForm(model.Category{})
		m.modal = modalCategoryForm
		return m, nil
	case key.Matches(msg, m.keys.Edit):
		if c, ok := m.selectedCategory(); ok {
			m.catForm = newCategoryForm(c)
			m.modal = modalCategoryForm
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if c, ok := m.selectedCategory(); ok {
			m.confirmID = c.ID
			m.modal = modalConfirmDeleteCategory
		}
		return m, nil
	case key.Matches(msg, m.keys.Search):
		m.input = newTextInput("Nombre", m.catQuery)
		m.modal = modalCategorySearch
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		return m, m.loadCategoriesCmd(m.catQuery)
	case msg.Type == tea.KeyEsc && m.catQuery != "":
		m.catQuery = ""
		return m, m.loadCategoriesCmd("")
	}
	var cmd tea.Cmd
	m.catList, cmd = m.catList.Update(msg)
	return m, cmd
}

func (m appModel) selectedCategory() (model.Category, bool) {
	it, ok := m.catList.SelectedItem().(categoryItem)
	if !ok {
		return model.Category{}, false
	}
	return it.Category, true
}

func (m appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	switch m.modal {
	case modalSortPicker, modalFilterKindPicker:
		return m.updatePicker(msg)
	case modalFilterValue:
		return m.updateFilterValue(msg)
	case modalTaskForm:
		return m.updateTaskForm(msg)
	case modalCategoryForm:
		return m.updateCategoryForm(msg)
	case modalCategorySearch:
		return m.updateCategorySearch(msg)
	case modalConfirmDeleteTask, modalConfirmDeleteCategory:
		return m.updateConfirm(msg)
	}
	m.modal = modalNone
	return m, nil
}

func (m appModel) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.modal = modalNone
		return m, nil
	case "up", "k":
		m.picker.move(-1)
		return m, nil
	case "down", "j":
		m.picker.move(1)
		return m, nil
	case "enter":
	default:
		return m, nil
	}

	choice := m.picker.selected()
	if m.modal == modalSortPicker {
		m.modal = modalNone
		if req, ok := m.ctl.SetSort(api.SortKey(choice)); ok {
			m.cursor = 0
			return m, m.fetchCmd(req)
		}
		return m, nil
	}

	// The kind is applied together with its value; a kind alone never fetches.
	m.filterKind = api.FilterKind(choice)
	m.input = newTextInput(filterValuePrompt(m.filterKind), "")
	if cur := m.ctl.Filter(); cur.Kind == m.filterKind {
		m.input.SetValue(cur.Value)
	}
	m.modal = modalFilterValue
	return m, nil
}

func (m appModel) updateFilterValue(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.modal = modalNone
		return m, nil
	case tea.KeyEnter:
		v, err := tasklist.NormalizeFilterValue(m.filterKind, m.input.Value())
		if err != nil {
			m.input.err = err.Error()
			return m, nil
		}
		m.modal = modalNone
		if req, ok := m.ctl.SetFilter(m.filterKind, v); ok {
			m.cursor = 0
			return m, m.fetchCmd(req)
		}
		return m, nil
	}
	m.input.update(msg)
	return m, nil
}

func (m appModel) updateCategorySearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.modal = modalNone
		return m, nil
	case tea.KeyEnter:
		m.modal = modalNone
		m.catQuery = strings.TrimSpace(m.input.Value())
		return m, m.loadCategoriesCmd(m.catQuery)
	}
	m.input.update(msg)
	return m, nil
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "s", "enter":
	case "n", "esc", "q":
		m.modal = modalNone
		return m, nil
	default:
		return m, nil
	}
	id := m.confirmID
	kind := m.modal
	m.modal = modalNone
	m.confirmID = 0
	if kind == modalConfirmDeleteCategory {
		return m, m.deleteCategoryCmd(id)
	}
	return m, m.deleteTaskCmd(id)
}

func (m appModel) updateTaskForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.taskForm
	if f == nil {
		m.modal = modalNone
		return m, nil
	}
	switch msg.Type {
	case tea.KeyEsc:
		m.modal = modalNone
		m.taskForm = nil
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		f.focusNext(1)
		return m, nil
	case tea.KeyShiftTab, tea.KeyUp:
		f.focusNext(-1)
		return m, nil
	case tea.KeyCtrlS, tea.KeyEnter:
		if f.saving {
			return m, nil
		}
		if msg.Type == tea.KeyEnter && f.focus != taskFieldCategory {
			f.focusNext(1)
			return m, nil
		}
		form := f.value()
		if _, err := form.Request(); err != nil {
			f.err = err.Error()
			return m, nil
		}
		f.err = ""
		f.saving = true
		return m, m.saveTaskCmd(f.id, form)
	}
	f.update(msg)
	return m, nil
}

func (m appModel) updateCategoryForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.catForm
	if f == nil {
		m.modal = modalNone
		return m, nil
	}
	switch msg.Type {
	case tea.KeyEsc:
		m.modal = modalNone
		m.catForm = nil
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		f.focusNext(1)
		return m, nil
	case tea.KeyShiftTab, tea.KeyUp:
		f.focusNext(-1)
		return m, nil
	case tea.KeyCtrlS, tea.KeyEnter:
		if f.saving {
			return m, nil
		}
		req := f.request()
		if req.Name == "" {
			f.err = "El nombre de la categoría es obligatorio."
			return m, nil
		}
		f.err = ""
		f.saving = true
		return m, m.saveCategoryCmd(f.id, req)
	}
	f.update(msg)
	return m, nil
}
