package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"tugestor-cli/internal/model"
)

// SortKey selects one of the server-side orderings of the task list.
type SortKey string

const (
	SortByTitle    SortKey = "titulo"
	SortByTime     SortKey = "tiempo"
	SortByPriority SortKey = "prioridad"
	SortDueToday   SortKey = "hoy"
	SortByDueDate  SortKey = "fecha"
)

var SortKeys = []SortKey{SortByTitle, SortByTime, SortByPriority, SortDueToday, SortByDueDate}

func (k SortKey) Valid() bool {
	for _, x := range SortKeys {
		if x == k {
			return true
		}
	}
	return false
}

// FilterKind selects one of the server-side filters of the task list.
type FilterKind string

const (
	FilterByPriority FilterKind = "prioridad"
	FilterByState    FilterKind = "estado"
	FilterByCategory FilterKind = "categoria"
	FilterByMaxTime  FilterKind = "tiempo"
	FilterByKeyword  FilterKind = "palabras"
)

var FilterKinds = []FilterKind{FilterByPriority, FilterByState, FilterByCategory, FilterByMaxTime, FilterByKeyword}

func (k FilterKind) Valid() bool {
	for _, x := range FilterKinds {
		if x == k {
			return true
		}
	}
	return false
}

type Filter struct {
	Kind  FilterKind
	Value string
}

func (f Filter) path() string {
	return "/tarea/filtrar/" + string(f.Kind) + "/" + url.PathEscape(strings.TrimSpace(f.Value))
}

func (c *Client) listTasks(ctx context.Context, path string) ([]model.Task, error) {
	var out []model.Task
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTasks returns every task of the authenticated user.
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	return c.listTasks(ctx, "/tarea")
}

// SortedTasks lets the server order the list; the client only picks the path suffix.
func (c *Client) SortedTasks(ctx context.Context, key SortKey) ([]model.Task, error) {
	if !key.Valid() {
		return nil, fmt.Errorf("unknown sort key %q", key)
	}
	return c.listTasks(ctx, "/tarea/"+string(key))
}

func (c *Client) FilteredTasks(ctx context.Context, f Filter) ([]model.Task, error) {
	if !f.Kind.Valid() {
		return nil, fmt.Errorf("unknown filter %q", f.Kind)
	}
	if strings.TrimSpace(f.Value) == "" {
		return nil, fmt.Errorf("empty value for filter %q", f.Kind)
	}
	return c.listTasks(ctx, f.path())
}

func (c *Client) GetTask(ctx context.Context, id int64) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tarea/%d", id), nil, &out)
	return out, err
}

// TaskState asks the service to derive the current state of task id.
func (c *Client) TaskState(ctx context.Context, id int64) (model.State, error) {
	var out model.State
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tarea/estado/%d", id), nil, &out)
	return out, err
}

func (c *Client) CreateTask(ctx context.Context, req model.TaskRequest) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, http.MethodPost, "/tarea/add", req, &out)
	return out, err
}

func (c *Client) UpdateTask(ctx context.Context, id int64, req model.TaskRequest) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/tarea/update/%d", id), req, &out)
	return out, err
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tarea/delete/%d", id), nil, nil)
}

func (c *Client) CompleteTask(ctx context.Context, id int64) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/tarea/completar/%d", id), nil, &out)
	return out, err
}
