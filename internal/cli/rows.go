package cli

import (
	"strconv"

	"tugestor-cli/internal/model"
)

// taskRows renders as a JSON array and as a table with --format table.
type taskRows []model.Task

func (r taskRows) Header() []string {
	return []string{"ID", "TITULO", "PRIORIDAD", "ESTADO", "MIN", "ENTREGA", "CATEGORIA"}
}

func (r taskRows) Rows() [][]string {
	out := make([][]string, 0, len(r))
	for _, t := range r {
		out = append(out, taskRow(t))
	}
	return out
}

func taskRow(t model.Task) []string {
	return []string{
		strconv.FormatInt(t.ID, 10),
		t.Title,
		string(t.Priority),
		string(t.State),
		strconv.Itoa(t.Time),
		t.DueAt.String(),
		t.CategoryName,
	}
}

// oneTask is a single task with the same table layout as a list.
type oneTask model.Task

func (r oneTask) Header() []string { return taskRows(nil).Header() }
func (r oneTask) Rows() [][]string { return [][]string{taskRow(model.Task(r))} }

type categoryRows []model.Category

func (r categoryRows) Header() []string { return []string{"ID", "NOMBRE", "COLOR", "ICONO"} }

func (r categoryRows) Rows() [][]string {
	out := make([][]string, 0, len(r))
	for _, c := range r {
		out = append(out, []string{strconv.FormatInt(c.ID, 10), c.Name, c.Color, c.Icon})
	}
	return out
}
