package devserver

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"tugestor-cli/internal/model"
)

// deriveState computes the state of t at now. Completion after the due date counts as late.
func deriveState(t *model.Task, now time.Time) model.State {
	switch {
	case t.DueAt == nil || t.DueAt.IsZero():
		return model.StateNoDate
	case t.Completed:
		if t.CompletedAt != nil && t.CompletedAt.After(t.DueAt.Time) {
			return model.StateCompletedLate
		}
		return model.StateCompleted
	case now.After(t.DueAt.Time):
		return model.StateOverdue
	default:
		return model.StateInProgress
	}
}

// view renders a stored task for the response. Caller holds s.mu.
func (s *Server) view(t *model.Task, now time.Time) model.Task {
	out := *t
	out.State = deriveState(t, now)
	out.CategoryName = ""
	if t.CategoryID != nil {
		if cat, ok := s.categories[*t.CategoryID]; ok {
			out.CategoryName = cat.Name
		} else {
			out.CategoryID = nil
		}
	}
	return out
}

// ownedTasks returns the user's tasks ordered by id. Caller holds s.mu.
func (s *Server) ownedTasks(uid int64, keep func(model.Task) bool) []model.Task {
	now := s.now()
	out := []model.Task{}
	for _, t := range s.tasks {
		if t.UserID == nil || *t.UserID != uid {
			continue
		}
		v := s.view(t, now)
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) listTasks(c echo.Context) error {
	s.mu.Lock()
	out := s.ownedTasks(currentUser(c), nil)
	s.mu.Unlock()
	return c.JSON(http.StatusOK, out)
}

type lessFunc func(a, b model.Task) bool

func sortByTitle(a, b model.Task) bool {
	return strings.ToLower(a.Title) < strings.ToLower(b.Title)
}

func sortByTime(a, b model.Task) bool { return a.Time < b.Time }

func sortByPriority(a, b model.Task) bool { return a.Priority.Rank() < b.Priority.Rank() }

// sortByDueDate puts undated tasks last.
func sortByDueDate(a, b model.Task) bool {
	switch {
	case a.DueAt == nil:
		return false
	case b.DueAt == nil:
		return true
	default:
		return a.DueAt.Before(b.DueAt.Time)
	}
}

func (s *Server) sortedTasks(less lessFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		out := s.ownedTasks(currentUser(c), nil)
		s.mu.Unlock()
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
		return c.JSON(http.StatusOK, out)
	}
}

// dueToday lists tasks due on the current calendar day, earliest first.
func (s *Server) dueToday(c echo.Context) error {
	now := s.now()
	y, m, d := now.Date()
	s.mu.Lock()
	out := s.ownedTasks(currentUser(c), func(t model.Task) bool {
		if t.DueAt == nil {
			return false
		}
		ty, tm, td := t.DueAt.In(now.Location()).Date()
		return ty == y && tm == m && td == d
	})
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return sortByDueDate(out[i], out[j]) })
	return c.JSON(http.StatusOK, out)
}

func (s *Server) filteredTasks(c echo.Context) error {
	kind := pathParam(c, "kind")
	value := strings.TrimSpace(pathParam(c, "value"))
	var keep func(model.Task) bool
	switch kind {
	case "prioridad":
		p := model.Priority(strings.ToUpper(value))
		if !p.Valid() {
			return fail(http.StatusBadRequest, "El valor '"+value+"' no es válido para el parámetro 'prioridad'.")
		}
		keep = func(t model.Task) bool { return t.Priority == p }
	case "estado":
		st := model.State(strings.ToUpper(value))
		if !st.Valid() {
			return fail(http.StatusBadRequest, "El valor '"+value+"' no es válido para el parámetro 'estado'.")
		}
		keep = func(t model.Task) bool { return t.State == st }
	case "categoria":
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fail(http.StatusBadRequest, "El valor '"+value+"' no es válido para el parámetro 'idCategoria'.")
		}
		keep = func(t model.Task) bool { return t.CategoryID != nil && *t.CategoryID == id }
	case "tiempo":
		max, err := strconv.Atoi(value)
		if err != nil {
			return fail(http.StatusBadRequest, "El valor '"+value+"' no es válido para el parámetro 'tiempo'.")
		}
		keep = func(t model.Task) bool { return t.Time <= max }
	case "palabras":
		kw := strings.ToLower(strings.ReplaceAll(value, "-", " "))
		keep = func(t model.Task) bool {
			return strings.Contains(strings.ToLower(t.Title), kw) || strings.Contains(strings.ToLower(t.Description), kw)
		}
	default:
		return fail(http.StatusNotFound, "Filtro desconocido: "+kind)
	}
	s.mu.Lock()
	out := s.ownedTasks(currentUser(c), keep)
	s.mu.Unlock()
	return c.JSON(http.StatusOK, out)
}

// lookupTask returns the user's task. Caller holds s.mu.
func (s *Server) lookupTask(uid, id int64) (*model.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, fail(http.StatusNotFound, "Tarea no encontrada con id: "+itoa(id))
	}
	if t.UserID == nil || *t.UserID != uid {
		return nil, fail(http.StatusForbidden, "No tienes permiso sobre esta tarea.")
	}
	return t, nil
}

func (s *Server) getTask(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.lookupTask(currentUser(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.view(t, s.now()))
}

func (s *Server) taskState(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.lookupTask(currentUser(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deriveState(t, s.now()))
}

// applyRequest validates req and copies it onto t. Caller holds s.mu.
func (s *Server) applyRequest(uid int64, t *model.Task, req model.TaskRequest, creating bool) error {
	fields := map[string]string{}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		fields["titulo"] = "El titulo no puede estar vacio"
	} else if n := utf8.RuneCountInString(title); n < 3 || n > 100 {
		fields["titulo"] = "El titulo debe tener entre 3 y 100 caracteres"
	}
	if req.Time < 1 {
		fields["tiempo"] = "El tiempo debe ser mayor a 0"
	}
	if !req.Priority.Valid() {
		fields["prioridad"] = "La prioridad no puede ser nula"
	}
	if utf8.RuneCountInString(req.Description) > 1000 {
		fields["descripcion"] = "La descripción no puede exceder los 1000 caracteres"
	}
	var due *model.LocalTime
	if strings.TrimSpace(req.DueAt) != "" {
		parsed, err := model.ParseLocalTime(req.DueAt)
		if err != nil {
			fields["fechaEntrega"] = "Formato de fecha inválido"
		} else {
			due = model.NewLocalTime(parsed)
		}
	}
	if len(fields) > 0 {
		return invalid(fields)
	}
	if creating && due != nil && due.Before(s.now().Truncate(time.Minute)) {
		return fail(http.StatusBadRequest, "La fecha de entrega no puede haber pasado.")
	}
	var catID *int64
	if req.CategoryID != nil {
		if _, err := s.lookupCategory(uid, *req.CategoryID); err != nil {
			return err
		}
		id := *req.CategoryID
		catID = &id
	}
	t.Title = title
	t.Description = strings.TrimSpace(req.Description)
	t.Time = req.Time
	t.Priority = req.Priority
	t.DueAt = due
	t.CategoryID = catID
	return nil
}

func (s *Server) createTask(c echo.Context) error {
	var req model.TaskRequest
	if err := c.Bind(&req); err != nil {
		return fail(http.StatusBadRequest, "Cuerpo de la petición inválido.")
	}
	uid := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &model.Task{}
	if err := s.applyRequest(uid, t, req, true); err != nil {
		return err
	}
	owner := uid
	t.ID = s.id()
	t.UserID = &owner
	t.AddedAt = model.NewLocalTime(s.now().Truncate(time.Second))
	s.tasks[t.ID] = t
	return c.JSON(http.StatusOK, s.view(t, s.now()))
}

func (s *Server) updateTask(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req model.TaskRequest
	if err := c.Bind(&req); err != nil {
		return fail(http.StatusBadRequest, "Cuerpo de la petición inválido.")
	}
	uid := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.lookupTask(uid, id)
	if err != nil {
		return err
	}
	next := *t
	if err := s.applyRequest(uid, &next, req, false); err != nil {
		return err
	}
	*t = next
	return c.JSON(http.StatusOK, s.view(t, s.now()))
}

func (s *Server) deleteTask(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.lookupTask(currentUser(c), id); err != nil {
		return err
	}
	delete(s.tasks, id)
	return c.NoContent(http.StatusOK)
}

func (s *Server) completeTask(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.lookupTask(currentUser(c), id)
	if err != nil {
		return err
	}
	if !t.Completed {
		t.Completed = true
		t.CompletedAt = model.NewLocalTime(s.now().Truncate(time.Second))
	}
	return c.JSON(http.StatusOK, s.view(t, s.now()))
}
