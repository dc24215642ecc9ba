package publish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tugestor-cli/internal/model"
)

func fixture() ([]model.Task, []model.Category) {
	casa := int64(1)
	due := model.NewLocalTime(time.Date(2025, 3, 10, 18, 0, 0, 0, time.Local))
	tasks := []model.Task{
		{ID: 2, Title: "Informe", Description: "Some **markdown**.", Time: 90, Priority: model.PriorityEssential, State: model.StateOverdue, DueAt: due},
		{ID: 1, Title: "Comprar pan", Time: 30, Priority: model.PriorityHigh, State: model.StateNoDate, CategoryID: &casa, CategoryName: "Casa"},
		{ID: 3, Title: "Regar", Time: 5, Priority: model.PriorityLow, State: model.StateCompleted, Completed: true, CategoryID: &casa},
	}
	return tasks, []model.Category{{ID: 1, Name: "Casa"}}
}

func TestRenderTaskMarkdown_IncludesMetaAndDescription(t *testing.T) {
	t.Parallel()

	tasks, _ := fixture()
	md := RenderTaskMarkdown(tasks[0])
	for _, want := range []string{"# Informe", "- Prioridad: IMPRESCINDIBLE", "- Estado: VENCIDA", "- Entrega: 2025-03-10 18:00", "- Categoría: (sin categoría)", "## Descripción", "Some **markdown**."} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}
	if md := RenderTaskMarkdown(tasks[1]); !strings.Contains(md, "- Categoría: Casa (1)") || strings.Contains(md, "## Descripción") {
		t.Fatalf("unexpected markdown:\n%s", md)
	}
}

func TestRenderIndexMarkdown_GroupsAndSkipsDone(t *testing.T) {
	t.Parallel()

	tasks, cats := fixture()
	md := RenderIndexMarkdown(tasks, cats, RenderOptions{})
	casa := strings.Index(md, "## Casa")
	orphans := strings.Index(md, "## Sin categoría")
	if casa < 0 || orphans < 0 || casa > orphans {
		t.Fatalf("expected Casa group before orphans:\n%s", md)
	}
	if strings.Contains(md, "Regar") {
		t.Fatalf("completed task should be skipped by default:\n%s", md)
	}
	if !strings.Contains(md, "- [ ] [Comprar pan](tasks/1.md) · ALTA · 30 min") {
		t.Fatalf("missing task line:\n%s", md)
	}

	md = RenderIndexMarkdown(tasks, cats, RenderOptions{IncludeDone: true})
	if !strings.Contains(md, "- [x] [Regar](tasks/3.md)") {
		t.Fatalf("expected completed task with IncludeDone:\n%s", md)
	}
}

func TestWriteTasks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tasks, cats := fixture()
	res, err := WriteTasks(tasks, cats, dir, WriteOptions{})
	if err != nil {
		t.Fatalf("WriteTasks: %v", err)
	}
	if len(res.Written) != 3 {
		t.Fatalf("expected index + 2 pages, got %v", res.Written)
	}
	b, err := os.ReadFile(filepath.Join(dir, "tasks", "2.md"))
	if err != nil || !strings.HasPrefix(string(b), "# Informe") {
		t.Fatalf("unexpected page: %v %q", err, b)
	}

	if _, err := WriteTasks(tasks, cats, dir, WriteOptions{}); err == nil || !strings.Contains(err.Error(), "--overwrite") {
		t.Fatalf("expected overwrite error, got %v", err)
	}
	if _, err := WriteTasks(tasks, cats, dir, WriteOptions{Overwrite: true}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if _, err := WriteTasks(tasks, cats, " ", WriteOptions{}); err == nil {
		t.Fatalf("expected missing dir error")
	}
}
