package tasklist

import (
	"context"
	"strconv"
	"strings"

	"tugestor-cli/internal/api"
	"tugestor-cli/internal/model"
	"tugestor-cli/internal/statusutil"
)

const (
	MsgTitleRequired    = "El título es obligatorio."
	MsgPriorityRequired = "La prioridad es obligatoria."
	MsgTimeRequired     = "El tiempo (min) es obligatorio y numérico."
	MsgCategoryRequired = "La categoría es obligatoria."
)

// ValidationError is a form problem caught before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// TaskForm carries the raw values of the create/edit form.
type TaskForm struct {
	Title       string
	Description string
	Time        string
	Priority    string
	// DueDate is "YYYY-MM-DDTHH:MM" or "YYYY-MM-DDTHH:MM:SS"; empty means no due date.
	DueDate    string
	CategoryID string
}

// FormFromTask fills a form with the values of an existing task.
func FormFromTask(t model.Task) TaskForm {
	f := TaskForm{
		Title:       t.Title,
		Description: t.Description,
		Time:        strconv.Itoa(t.Time),
		Priority:    string(t.Priority),
	}
	if t.DueAt != nil && !t.DueAt.IsZero() {
		f.DueDate = t.DueAt.Format(model.LocalTimeLayout)
	}
	if t.CategoryID != nil {
		f.CategoryID = strconv.FormatInt(*t.CategoryID, 10)
	}
	return f
}

// Request validates the form in field order and builds the normalized request body.
func (f TaskForm) Request() (model.TaskRequest, error) {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return model.TaskRequest{}, &ValidationError{Field: "titulo", Message: MsgTitleRequired}
	}
	if strings.TrimSpace(f.Priority) == "" {
		return model.TaskRequest{}, &ValidationError{Field: "prioridad", Message: MsgPriorityRequired}
	}
	prio, err := statusutil.NormalizePriority(f.Priority)
	if err != nil {
		return model.TaskRequest{}, &ValidationError{Field: "prioridad", Message: MsgPriorityRequired}
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(f.Time))
	if err != nil {
		return model.TaskRequest{}, &ValidationError{Field: "tiempo", Message: MsgTimeRequired}
	}
	catID, err := strconv.ParseInt(strings.TrimSpace(f.CategoryID), 10, 64)
	if err != nil || catID <= 0 {
		return model.TaskRequest{}, &ValidationError{Field: "idCategoria", Message: MsgCategoryRequired}
	}
	return model.TaskRequest{
		Title:       title,
		Description: strings.TrimSpace(f.Description),
		Time:        minutes,
		Priority:    prio,
		DueAt:       normalizeDueDate(f.DueDate),
		CategoryID:  &catID,
	}, nil
}

// normalizeDueDate appends seconds to minute-precision input.
func normalizeDueDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == len("2006-01-02T15:04") {
		return s + ":00"
	}
	return s
}

// Save creates (id == 0) or updates a task from f. On failure it returns the message to show:
// the validation message, the server message, or a generic fallback. The caller reloads the
// list and resets the form on success.
func (c *Controller) Save(ctx context.Context, id int64, f TaskForm) (model.Task, string, error) {
	req, err := f.Request()
	if err != nil {
		return model.Task{}, err.Error(), err
	}
	var task model.Task
	fallback := MsgCreateFailed
	if id == 0 {
		task, err = c.dir.CreateTask(ctx, req)
	} else {
		fallback = MsgUpdateFailed
		task, err = c.dir.UpdateTask(ctx, id, req)
	}
	if err != nil {
		logFailure(c.log.WithField("task_id", id), err)
		return model.Task{}, api.UserMessage(err, fallback), err
	}
	return task, "", nil
}

func (c *Controller) Complete(ctx context.Context, id int64) (string, error) {
	if _, err := c.dir.CompleteTask(ctx, id); err != nil {
		logFailure(c.log.WithField("task_id", id), err)
		return api.UserMessage(err, MsgCompleteFail), err
	}
	return "", nil
}

func (c *Controller) Delete(ctx context.Context, id int64) (string, error) {
	if err := c.dir.DeleteTask(ctx, id); err != nil {
		logFailure(c.log.WithField("task_id", id), err)
		return api.UserMessage(err, MsgDeleteFailed), err
	}
	c.mu.Lock()
	delete(c.expanded, id)
	c.mu.Unlock()
	return "", nil
}
