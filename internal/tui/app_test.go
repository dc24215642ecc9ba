package tui

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"tugestor-cli/internal/api"
	"tugestor-cli/internal/model"
	"tugestor-cli/internal/tasklist"
)

type fakeBackend struct {
	mu     sync.Mutex
	tasks  []model.Task
	cats   []model.Category
	nextID int64

	calls      []string
	created    []model.TaskRequest
	failCreate error
	failList   error
}

func newFakeBackend() *fakeBackend {
	casa := int64(1)
	return &fakeBackend{
		nextID: 100,
		cats:   []model.Category{{ID: 1, Name: "Casa"}, {ID: 2, Name: "Trabajo"}},
		tasks: []model.Task{
			{ID: 1, Title: "Comprar pan", Time: 30, Priority: model.PriorityHigh, State: model.StateNoDate, CategoryID: &casa, CategoryName: "Casa"},
			{ID: 2, Title: "Informe", Description: "**urgente**", Time: 90, Priority: model.PriorityEssential, State: model.StateOverdue},
			{ID: 3, Title: "Llamar", Time: 5, Priority: model.PriorityLow, State: model.StateInProgress},
		},
	}
}

func (f *fakeBackend) record(s string) {
	f.mu.Lock()
	f.calls = append(f.calls, s)
	f.mu.Unlock()
}

func (f *fakeBackend) snapshot() []model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Task(nil), f.tasks...)
}

func (f *fakeBackend) ListTasks(ctx context.Context) ([]model.Task, error) {
	f.record("list")
	if f.failList != nil {
		return nil, f.failList
	}
	return f.snapshot(), nil
}

func (f *fakeBackend) SortedTasks(ctx context.Context, key api.SortKey) ([]model.Task, error) {
	f.record("sort:" + string(key))
	out := f.snapshot()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

func (f *fakeBackend) FilteredTasks(ctx context.Context, flt api.Filter) ([]model.Task, error) {
	f.record("filter:" + string(flt.Kind) + "=" + flt.Value)
	var out []model.Task
	for _, t := range f.snapshot() {
		if flt.Kind == api.FilterByPriority && string(t.Priority) == flt.Value {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeBackend) CreateTask(ctx context.Context, req model.TaskRequest) (model.Task, error) {
	f.record("create")
	if f.failCreate != nil {
		return model.Task{}, f.failCreate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	f.nextID++
	t := model.Task{ID: f.nextID, Title: req.Title, Time: req.Time, Priority: req.Priority, CategoryID: req.CategoryID, State: model.StateNoDate}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeBackend) UpdateTask(ctx context.Context, id int64, req model.TaskRequest) (model.Task, error) {
	f.record("update")
	return model.Task{ID: id, Title: req.Title}, nil
}

func (f *fakeBackend) CompleteTask(ctx context.Context, id int64) (model.Task, error) {
	f.record("complete")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Completed = true
			f.tasks[i].State = model.StateCompleted
			return f.tasks[i], nil
		}
	}
	return model.Task{}, &api.Error{Status: 404, Message: "Tarea no encontrada."}
}

func (f *fakeBackend) DeleteTask(ctx context.Context, id int64) error {
	f.record("delete")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return &api.Error{Status: 404, Message: "Tarea no encontrada."}
}

func (f *fakeBackend) ListCategories(ctx context.Context) ([]model.Category, error) {
	f.record("categories")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Category(nil), f.cats...), nil
}

func (f *fakeBackend) CreateCategory(ctx context.Context, req model.CategoryRequest) (model.Category, error) {
	f.record("category:create")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c := model.Category{ID: f.nextID, Name: req.Name, Color: req.Color, Icon: req.Icon}
	f.cats = append(f.cats, c)
	return c, nil
}

func (f *fakeBackend) UpdateCategory(ctx context.Context, id int64, req model.CategoryRequest) (model.Category, error) {
	f.record("category:update")
	return model.Category{ID: id, Name: req.Name}, nil
}

func (f *fakeBackend) DeleteCategory(ctx context.Context, id int64) error {
	f.record("category:delete")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.cats {
		if f.cats[i].ID == id {
			f.cats = append(f.cats[:i], f.cats[i+1:]...)
			return nil
		}
	}
	return &api.Error{Status: 404, Message: "Categoría no encontrada."}
}

func (f *fakeBackend) SearchCategories(ctx context.Context, partial string) ([]model.Category, error) {
	f.record("category:search:" + partial)
	var out []model.Category
	for _, c := range f.cats {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(partial)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func quietLogger() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

// drive runs cmd and feeds every resulting message back into the model.
func drive(t *testing.T, m appModel, cmd tea.Cmd) appModel {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
		default:
			next, more := m.Update(msg)
			m = next.(appModel)
			queue = append(queue, more)
		}
	}
	return m
}

func press(t *testing.T, m appModel, keys ...string) appModel {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "ctrl+s":
			msg = tea.KeyMsg{Type: tea.KeyCtrlS}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, cmd := m.Update(msg)
		m = drive(t, next.(appModel), cmd)
	}
	return m
}

func typeText(t *testing.T, m appModel, s string) appModel {
	t.Helper()
	for _, r := range s {
		next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = drive(t, next.(appModel), cmd)
	}
	return m
}

func startModel(t *testing.T, b *fakeBackend) appModel {
	t.Helper()
	m := newAppModel(context.Background(), b, quietLogger())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(appModel)
	return drive(t, m, m.Init())
}

func titles(ts []model.Task) string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Title)
	}
	return strings.Join(out, ",")
}

func TestInitLoadsTasksAndCategories(t *testing.T) {
	b := newFakeBackend()
	m := startModel(t, b)

	if got := titles(m.ctl.Tasks()); got != "Comprar pan,Informe,Llamar" {
		t.Fatalf("unexpected tasks %q", got)
	}
	if len(m.categories) != 2 || len(m.catList.Items()) != 2 {
		t.Fatalf("expected categories loaded, got %d/%d", len(m.categories), len(m.catList.Items()))
	}
	if v := m.View(); !strings.Contains(v, "Comprar pan") || !strings.Contains(v, "Tareas (3)") {
		t.Fatalf("expected tasks in view:\n%s", v)
	}
}

func TestExpandCollapseKeys(t *testing.T) {
	m := startModel(t, newFakeBackend())

	m = press(t, m, "enter")
	if !m.ctl.IsExpanded(1) {
		t.Fatalf("expected first task expanded")
	}
	if !strings.Contains(m.View(), "Categoría: Casa") {
		t.Fatalf("expanded card should show details:\n%s", m.View())
	}
	m = press(t, m, "space")
	if m.ctl.IsExpanded(1) {
		t.Fatalf("expected second toggle to collapse")
	}

	m = press(t, m, "E")
	if got := len(m.ctl.Expanded()); got != 3 {
		t.Fatalf("expected all expanded, got %d", got)
	}
	m = press(t, m, "C")
	if got := len(m.ctl.Expanded()); got != 0 {
		t.Fatalf("expected all collapsed, got %d", got)
	}
}

func TestSortPickerFetchesSortedList(t *testing.T) {
	b := newFakeBackend()
	m := startModel(t, b)

	// titulo, tiempo, ...
	m = press(t, m, "s", "down", "enter")
	if m.modal != modalNone {
		t.Fatalf("expected picker closed")
	}
	if m.ctl.Sort() != api.SortByTime {
		t.Fatalf("expected sort tiempo, got %q", m.ctl.Sort())
	}
	if got := titles(m.ctl.Tasks()); got != "Llamar,Comprar pan,Informe" {
		t.Fatalf("unexpected sorted order %q", got)
	}
	if !strings.Contains(m.View(), "orden: tiempo") {
		t.Fatalf("header should show sort:\n%s", m.View())
	}
}

func TestFilterNeedsKindAndValue(t *testing.T) {
	b := newFakeBackend()
	m := startModel(t, b)

	m = press(t, m, "f", "enter")
	if m.modal != modalFilterValue {
		t.Fatalf("expected value prompt after choosing kind, got modal %d", m.modal)
	}
	for _, c := range b.calls {
		if strings.HasPrefix(c, "filter:") {
			t.Fatalf("kind alone must not fetch: %v", b.calls)
		}
	}

	m = typeText(t, m, "urgente")
	m = press(t, m, "enter")
	if m.modal != modalFilterValue || m.input.err == "" {
		t.Fatalf("expected inline error for invalid priority")
	}

	m = press(t, m, "esc", "f", "enter")
	m = typeText(t, m, "alta")
	m = press(t, m, "enter")
	if got := titles(m.ctl.Tasks()); got != "Comprar pan" {
		t.Fatalf("unexpected filtered tasks %q", got)
	}
	if last := b.calls[len(b.calls)-1]; last != "filter:prioridad=ALTA" {
		t.Fatalf("unexpected last call %q", last)
	}
}

func TestFilterKindChangeWaitsForNewValue(t *testing.T) {
	b := newFakeBackend()
	m := startModel(t, b)

	m = press(t, m, "f", "down", "enter")
	m = typeText(t, m, "vencida")
	m = press(t, m, "enter")
	if f := m.ctl.Filter(); f.Kind != api.FilterByState || f.Value != "VENCIDA" {
		t.Fatalf("unexpected filter %+v", f)
	}
	calls := len(b.calls)

	// estado -> tiempo
	m = press(t, m, "f", "down", "down", "enter")
	if m.modal != modalFilterValue || m.input.Value() != "" {
		t.Fatalf("expected empty value prompt for the new kind, got modal %d value %q", m.modal, m.input.Value())
	}
	if len(b.calls) != calls {
		t.Fatalf("choosing a kind must not fetch: %v", b.calls[calls:])
	}

	m = press(t, m, "esc")
	if f := m.ctl.Filter(); f.Kind != api.FilterByState || f.Value != "VENCIDA" {
		t.Fatalf("cancelled prompt must keep the active filter, got %+v", f)
	}

	m = press(t, m, "f", "down", "down", "enter")
	m = typeText(t, m, "45")
	m = press(t, m, "enter")
	if last := b.calls[len(b.calls)-1]; last != "filter:tiempo=45" {
		t.Fatalf("unexpected last call %q", last)
	}
}

func TestTaskFormValidationAndCreate(t *testing.T) {
	b := newFakeBackend()
	m := startModel(t, b)

	m = press(t, m, "n", "ctrl+s")
	if m.taskForm == nil || m.taskForm.err != tasklist.MsgTitleRequired {
		t.Fatalf("expected title validation, got %+v", m.taskForm)
	}

	m = typeText(t, m, "Pagar luz")
	m = press(t, m, "tab", "tab")
	m = typeText(t, m, "15")
	m = press(t, m, "tab", "right", "right", "right") // ALTA
	m = press(t, m, "ctrl+s")
	if m.taskForm.err != tasklist.MsgCategoryRequired {
		t.Fatalf("expected category validation, got %q", m.taskForm.err)
	}
	for _, c := range b.calls {
		if c == "create" {
			t.Fatalf("validation failures must not send requests")
		}
	}

	m = press(t, m, "tab", "tab", "right", "enter")
	if m.modal != modalNone || m.taskForm != nil {
		t.Fatalf("expected form closed after save; err=%v", m.taskForm)
	}
	if len(b.created) != 1 {
		t.Fatalf("expected one create, got %d", len(b.created))
	}
	req := b.created[0]
	if req.Title != "Pagar luz" || req.Time != 15 || req.Priority != model.PriorityHigh || req.CategoryID == nil || *req.CategoryID != 1 {
		t.Fatalf("unexpected request %+v", req)
	}
	if len(m.ctl.Tasks()) != 4 {
		t.Fatalf("expected reload to include the new task")
	}
}

func TestTaskFormShowsServerMessage(t *testing.T) {
	b := newFakeBackend()
	b.failCreate = &api.Error{Status: 400, Message: "titulo: El título debe tener entre 3 y 100 caracteres"}
	m := startModel(t, b)

	m.taskForm = newTaskForm(0, tasklist.TaskForm{Title: "ab", Time: "5", Priority: "BAJA", CategoryID: "2"}, m.categories)
	m.modal = modalTaskForm
	m = press(t, m, "ctrl+s")
	if m.modal != modalTaskForm || m.taskForm.err != "titulo: El título debe tener entre 3 y 100 caracteres" {
		t.Fatalf("expected server message in form, got %q", m.taskForm.err)
	}
	if m.taskForm.saving {
		t.Fatalf("expected form to accept a retry")
	}
}

func TestEditPrefillsForm(t *testing.T) {
	m := startModel(t, newFakeBackend())
	m = press(t, m, "e")
	f := m.taskForm
	if f == nil || f.id != 1 {
		t.Fatalf("expected edit form for task 1")
	}
	v := f.value()
	if v.Title != "Comprar pan" || v.Time != "30" || v.Priority != "ALTA" || v.CategoryID != "1" {
		t.Fatalf("unexpected prefill %+v", v)
	}
}

func TestCompleteAndDelete(t *testing.T) {
	b := newFakeBackend()
	m := startModel(t, b)

	m = press(t, m, "c")
	if tk, _ := m.ctl.Task(1); !tk.Completed {
		t.Fatalf("expected task 1 completed after reload")
	}

	m = press(t, m, "down", "d")
	if m.modal != modalConfirmDeleteTask || m.confirmID != 2 {
		t.Fatalf("expected delete confirmation for task 2")
	}
	m = press(t, m, "n")
	if len(m.ctl.Tasks()) != 3 {
		t.Fatalf("cancel must not delete")
	}
	m = press(t, m, "d", "y")
	if got := titles(m.ctl.Tasks()); got != "Comprar pan,Llamar" {
		t.Fatalf("unexpected tasks after delete %q", got)
	}
	if m.cursor != 1 {
		t.Fatalf("cursor should stay in range, got %d", m.cursor)
	}
}

func TestLoadFailureShowsMessage(t *testing.T) {
	b := newFakeBackend()
	b.failList = errors.New("connection refused")
	m := startModel(t, b)

	if len(m.ctl.Tasks()) != 0 {
		t.Fatalf("expected empty list on failure")
	}
	if !strings.Contains(m.View(), tasklist.MsgLoadFailed) {
		t.Fatalf("expected fallback message in view:\n%s", m.View())
	}
}

func TestCategoriesView(t *testing.T) {
	b := newFakeBackend()
	m := startModel(t, b)

	m = press(t, m, "tab")
	if m.view != viewCategories || !strings.Contains(m.View(), "Trabajo") {
		t.Fatalf("expected categories view:\n%s", m.View())
	}

	m = press(t, m, "/")
	m = typeText(t, m, "trab")
	m = press(t, m, "enter")
	if len(m.catList.Items()) != 1 || m.catQuery != "trab" {
		t.Fatalf("expected search result, got %d items", len(m.catList.Items()))
	}
	m = press(t, m, "esc")
	if len(m.catList.Items()) != 2 {
		t.Fatalf("esc should clear the search")
	}

	m = press(t, m, "n", "enter")
	if m.catForm == nil || m.catForm.err == "" {
		t.Fatalf("expected name validation")
	}
	m = typeText(t, m, "Ocio")
	m = press(t, m, "enter")
	if len(m.categories) != 3 {
		t.Fatalf("expected new category, got %d", len(m.categories))
	}

	m = press(t, m, "d")
	if m.modal != modalConfirmDeleteCategory || !strings.Contains(m.View(), msgCategoryDeleteWarning) {
		t.Fatalf("expected orphan warning:\n%s", m.View())
	}
	m = press(t, m, "y")
	if len(m.categories) != 2 {
		t.Fatalf("expected category deleted, got %d", len(m.categories))
	}
}

func TestRenderTaskCardFitsWidth(t *testing.T) {
	setGlyphs(glyphSetASCII)
	defer setGlyphs(glyphSetUnicode)

	tk := model.Task{ID: 9, Title: strings.Repeat("muy largo ", 20), Priority: model.PriorityMedium, State: model.StateInProgress, Time: 10, Description: "uno *dos*"}
	for _, w := range []int{20, 40, 80} {
		for _, ln := range strings.Split(renderTaskCard(tk, true, true, w), "\n") {
			if got := lipglossWidth(ln); got > w {
				t.Fatalf("width %d: line too wide (%d): %q", w, got, ln)
			}
		}
	}
}
