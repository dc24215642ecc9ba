package publish

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"tugestor-cli/internal/model"
	"tugestor-cli/internal/statusutil"
)

type RenderOptions struct {
	// IncludeDone keeps completed tasks (on time or late) in the output.
	IncludeDone bool
}

func RenderTaskMarkdown(t model.Task) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(t.Title))
	writeLn("")
	writeLn("## Meta")
	writeLn("")
	writeLn(fmt.Sprintf("- ID: %d", t.ID))
	writeLn("- Prioridad: " + string(t.Priority))
	if t.State != "" {
		writeLn("- Estado: " + string(t.State))
	}
	writeLn(fmt.Sprintf("- Tiempo: %d min", t.Time))
	if s := t.DueAt.String(); s != "" {
		writeLn("- Entrega: " + s)
	}
	if s := t.AddedAt.String(); s != "" {
		writeLn("- Agregada: " + s)
	}
	if s := t.CompletedAt.String(); s != "" {
		writeLn("- Completada: " + s)
	}
	switch {
	case t.CategoryID == nil:
		writeLn("- Categoría: (sin categoría)")
	case strings.TrimSpace(t.CategoryName) != "":
		writeLn(fmt.Sprintf("- Categoría: %s (%d)", strings.TrimSpace(t.CategoryName), *t.CategoryID))
	default:
		writeLn(fmt.Sprintf("- Categoría: %d", *t.CategoryID))
	}

	if desc := strings.TrimSpace(t.Description); desc != "" {
		writeLn("")
		writeLn("## Descripción")
		writeLn("")
		writeLn(desc)
	}
	return buf.String()
}

type categoryGroup struct {
	name  string
	tasks []model.Task
}

// groupByCategory groups tasks under their category name, orphans last, each group sorted by id.
func groupByCategory(tasks []model.Task, cats []model.Category) []categoryGroup {
	names := map[int64]string{}
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	byName := map[string]*categoryGroup{}
	var orphans categoryGroup
	orphans.name = "Sin categoría"
	for _, t := range tasks {
		if t.CategoryID == nil {
			orphans.tasks = append(orphans.tasks, t)
			continue
		}
		name := strings.TrimSpace(t.CategoryName)
		if n, ok := names[*t.CategoryID]; ok {
			name = n
		}
		if name == "" {
			name = fmt.Sprintf("Categoría %d", *t.CategoryID)
		}
		g := byName[name]
		if g == nil {
			g = &categoryGroup{name: name}
			byName[name] = g
		}
		g.tasks = append(g.tasks, t)
	}

	out := make([]categoryGroup, 0, len(byName)+1)
	for _, g := range byName {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	if len(orphans.tasks) > 0 {
		out = append(out, orphans)
	}
	for _, g := range out {
		sort.SliceStable(g.tasks, func(i, j int) bool { return g.tasks[i].ID < g.tasks[j].ID })
	}
	return out
}

func RenderIndexMarkdown(tasks []model.Task, cats []model.Category, opt RenderOptions) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# Tareas")
	for _, g := range groupByCategory(filterTasks(tasks, opt), cats) {
		writeLn("")
		writeLn("## " + g.name)
		writeLn("")
		for _, t := range g.tasks {
			box := "[ ]"
			if statusutil.IsEndState(t) {
				box = "[x]"
			}
			line := fmt.Sprintf("- %s [%s](tasks/%d.md) · %s · %d min", box, strings.TrimSpace(t.Title), t.ID, t.Priority, t.Time)
			if s := t.DueAt.String(); s != "" {
				line += " · " + s
			}
			writeLn(line)
		}
	}
	return buf.String()
}

func filterTasks(tasks []model.Task, opt RenderOptions) []model.Task {
	if opt.IncludeDone {
		return tasks
	}
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if !statusutil.IsEndState(t) {
			out = append(out, t)
		}
	}
	return out
}
