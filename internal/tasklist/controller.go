// Package tasklist holds the view state of the task page: the displayed list, the active sort or
// filter, the expanded cards, and the task form.
package tasklist

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"tugestor-cli/internal/api"
	"tugestor-cli/internal/model"
)

const (
	MsgLoadFailed   = "No se pudieron cargar las tareas."
	MsgCreateFailed = "No se pudo crear la tarea."
	MsgUpdateFailed = "No se pudo actualizar la tarea."
	MsgDeleteFailed = "No se pudo eliminar la tarea."
	MsgCompleteFail = "No se pudo completar la tarea."
)

// Directory is the subset of the REST gateway the controller drives.
type Directory interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	SortedTasks(ctx context.Context, key api.SortKey) ([]model.Task, error)
	FilteredTasks(ctx context.Context, f api.Filter) ([]model.Task, error)
	CreateTask(ctx context.Context, req model.TaskRequest) (model.Task, error)
	UpdateTask(ctx context.Context, id int64, req model.TaskRequest) (model.Task, error)
	CompleteTask(ctx context.Context, id int64) (model.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

type Source int

const (
	SourcePlain Source = iota
	SourceSorted
	SourceFiltered
)

func (s Source) String() string {
	switch s {
	case SourceSorted:
		return "sorted"
	case SourceFiltered:
		return "filtered"
	default:
		return "plain"
	}
}

// Request is one list fetch. Gen orders requests by issue time.
type Request struct {
	Gen    uint64
	Source Source
	Sort   api.SortKey
	Filter api.Filter
}

type Result struct {
	Request
	Tasks []model.Task
	Err   error
}

// Controller reconciles mount, sort and filter triggers into one displayed list.
//
// Every trigger that fires stamps a new generation; Apply only installs the result of the newest
// issued request, so a slow response never overwrites a newer one. All methods are safe for
// concurrent use.
type Controller struct {
	dir Directory
	log *log.Logger

	mu          sync.Mutex
	tasks       []model.Task
	expanded    map[int64]struct{}
	sortKey     api.SortKey
	filterKind  api.FilterKind
	filterValue string
	errMsg      string
	loading     bool
	gen         uint64
	mounted     bool
	closed      bool
}

func New(dir Directory, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Controller{dir: dir, log: logger, expanded: map[int64]struct{}{}}
}

// issue stamps req with the next generation. Caller holds c.mu.
func (c *Controller) issue(req Request) Request {
	c.gen++
	req.Gen = c.gen
	c.loading = true
	return req
}

// Mount issues the initial plain list fetch. It fires only once.
func (c *Controller) Mount() (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mounted || c.closed {
		return Request{}, false
	}
	c.mounted = true
	return c.issue(Request{Source: SourcePlain}), true
}

// Reload issues a plain list fetch, e.g. after a mutation.
func (c *Controller) Reload() Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.issue(Request{Source: SourcePlain})
}

// SetSort records the sort criterion and fires a sorted fetch when key is non-empty.
func (c *Controller) SetSort(key api.SortKey) (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sortKey = api.SortKey(strings.TrimSpace(string(key)))
	if c.sortKey == "" || c.closed {
		return Request{}, false
	}
	return c.issue(Request{Source: SourceSorted, Sort: c.sortKey}), true
}

// SetFilterKind records the filter type. A different kind drops the stored value, which
// belonged to the previous kind, so nothing fires until a new value is set.
func (c *Controller) SetFilterKind(kind api.FilterKind) (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setFilterKind(kind)
	return c.filterRequest()
}

// SetFilter sets kind and value together and fires when both are non-empty.
func (c *Controller) SetFilter(kind api.FilterKind, v string) (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setFilterKind(kind)
	c.filterValue = strings.TrimSpace(v)
	return c.filterRequest()
}

// setFilterKind requires c.mu.
func (c *Controller) setFilterKind(kind api.FilterKind) {
	kind = api.FilterKind(strings.TrimSpace(string(kind)))
	if kind != c.filterKind {
		c.filterValue = ""
	}
	c.filterKind = kind
}

func (c *Controller) SetFilterValue(v string) (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filterValue = strings.TrimSpace(v)
	return c.filterRequest()
}

// filterRequest fires only when both kind and value are set. Caller holds c.mu.
func (c *Controller) filterRequest() (Request, bool) {
	if c.filterKind == "" || c.filterValue == "" || c.closed {
		return Request{}, false
	}
	return c.issue(Request{Source: SourceFiltered, Filter: api.Filter{Kind: c.filterKind, Value: c.filterValue}}), true
}

// Fetch performs req against the directory. It does not touch controller state.
func (c *Controller) Fetch(ctx context.Context, req Request) Result {
	res := Result{Request: req}
	switch req.Source {
	case SourceSorted:
		res.Tasks, res.Err = c.dir.SortedTasks(ctx, req.Sort)
	case SourceFiltered:
		res.Tasks, res.Err = c.dir.FilteredTasks(ctx, req.Filter)
	default:
		res.Tasks, res.Err = c.dir.ListTasks(ctx)
	}
	return res
}

// Apply installs res if it answers the newest issued request and reports whether it did.
// A failed load empties the list and records the error message.
func (c *Controller) Apply(res Result) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := c.log.WithFields(log.Fields{"gen": res.Gen, "source": res.Source.String()})
	if c.closed || res.Gen != c.gen {
		entry.WithField("newest", c.gen).Debug("discarding stale task list result")
		return false
	}
	c.loading = false
	if res.Err != nil {
		logFailure(entry, res.Err)
		c.tasks = nil
		c.errMsg = api.UserMessage(res.Err, MsgLoadFailed)
		return true
	}
	c.tasks = append([]model.Task(nil), res.Tasks...)
	c.errMsg = ""
	return true
}

// Load fetches and applies req.
func (c *Controller) Load(ctx context.Context, req Request) bool {
	return c.Apply(c.Fetch(ctx, req))
}

// Close marks the view as torn down; later results are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.loading = false
	c.mu.Unlock()
}

func (c *Controller) Tasks() []model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Task(nil), c.tasks...)
}

// Task returns the displayed task with id.
func (c *Controller) Task(id int64) (model.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func (c *Controller) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Controller) Sort() api.SortKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sortKey
}

func (c *Controller) Filter() api.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return api.Filter{Kind: c.filterKind, Value: c.filterValue}
}

// Toggle flips the expanded state of id.
func (c *Controller) Toggle(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.expanded[id]; ok {
		delete(c.expanded, id)
		return
	}
	c.expanded[id] = struct{}{}
}

// ExpandAll sets the expanded set to exactly the displayed task ids.
func (c *Controller) ExpandAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expanded = make(map[int64]struct{}, len(c.tasks))
	for _, t := range c.tasks {
		c.expanded[t.ID] = struct{}{}
	}
}

func (c *Controller) CollapseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expanded = map[int64]struct{}{}
}

func (c *Controller) IsExpanded(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.expanded[id]
	return ok
}

// Expanded returns the expanded ids in ascending order. Ids of tasks no longer displayed may be included.
func (c *Controller) Expanded() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]int64, 0, len(c.expanded))
	for id := range c.expanded {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// logFailure logs server rejections at debug and anything unexpected at error.
func logFailure(entry *log.Entry, err error) {
	var ae *api.Error
	if errors.As(err, &ae) {
		entry.WithError(err).WithField("status", ae.Status).Debug("request rejected")
		return
	}
	if errors.Is(err, context.Canceled) {
		entry.Debug("request canceled")
		return
	}
	entry.WithError(err).Error("request failed")
}
