package api

import (
	"context"
	"net/http/httptest"
	"testing"

	"tugestor-cli/internal/devserver"
	"tugestor-cli/internal/model"
	"tugestor-cli/internal/store"
)

func newLoggedInClient(t *testing.T) *Client {
	t.Helper()
	srv := httptest.NewServer(devserver.New(devserver.Options{Logger: quietLogger()}).Handler())
	t.Cleanup(srv.Close)

	ctx := context.Background()
	sess := store.NewMemorySessionStore("")
	c := New(srv.URL+"/api", sess, WithLogger(quietLogger()))
	if _, err := c.Register(ctx, "Ana", "ana@example.com", "secreto1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	lr, err := c.Login(ctx, "ana@example.com", "secreto1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := sess.SetToken(ctx, lr.Token); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	return c
}

func TestIntegration_UnauthenticatedIsRejected(t *testing.T) {
	srv := httptest.NewServer(devserver.New(devserver.Options{Logger: quietLogger()}).Handler())
	defer srv.Close()
	c := New(srv.URL+"/api", store.NewMemorySessionStore(""), WithLogger(quietLogger()))
	_, err := c.ListTasks(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestIntegration_CategoryDeleteOrphansTasks(t *testing.T) {
	c := newLoggedInClient(t)
	ctx := context.Background()

	cat, err := c.CreateCategory(ctx, model.CategoryRequest{Name: "Casa", Color: "#00ff00", Icon: "🏠"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	id := cat.ID
	task, err := c.CreateTask(ctx, model.TaskRequest{Title: "Comprar pan", Time: 30, Priority: model.PriorityHigh, CategoryID: &id})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.CategoryID == nil || *task.CategoryID != id {
		t.Fatalf("expected category reference on created task: %+v", task)
	}

	if err := c.DeleteCategory(ctx, id); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	tasks, err := c.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != task.ID {
		t.Fatalf("task must still be listed: %+v", tasks)
	}
	if tasks[0].CategoryID != nil {
		t.Fatalf("expected unresolved category reference, got %v", *tasks[0].CategoryID)
	}
}

func TestIntegration_TaskLifecycle(t *testing.T) {
	c := newLoggedInClient(t)
	ctx := context.Background()

	created, err := c.CreateTask(ctx, model.TaskRequest{Title: "Llamar al banco", Time: 5, Priority: model.PriorityLow})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.State != model.StateNoDate {
		t.Fatalf("expected SIN_FECHA, got %s", created.State)
	}
	st, err := c.TaskState(ctx, created.ID)
	if err != nil || st != model.StateNoDate {
		t.Fatalf("TaskState = %s, %v", st, err)
	}

	updated, err := c.UpdateTask(ctx, created.ID, model.TaskRequest{Title: "Llamar a la gestoría", Time: 15, Priority: model.PriorityMedium})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.Title != "Llamar a la gestoría" || updated.Time != 15 {
		t.Fatalf("unexpected update result %+v", updated)
	}

	done, err := c.CompleteTask(ctx, created.ID)
	if err != nil || !done.Completed {
		t.Fatalf("CompleteTask = %+v, %v", done, err)
	}

	filtered, err := c.FilteredTasks(ctx, Filter{Kind: FilterByKeyword, Value: "gestoría"})
	if err != nil || len(filtered) != 1 {
		t.Fatalf("FilteredTasks = %+v, %v", filtered, err)
	}

	if err := c.DeleteTask(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, err := c.GetTask(ctx, created.ID); !IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestIntegration_ValidationMessageSurfaces(t *testing.T) {
	c := newLoggedInClient(t)
	_, err := c.CreateTask(context.Background(), model.TaskRequest{Title: "ok title", Time: 0, Priority: model.PriorityLow})
	if got := UserMessage(err, "No se pudo crear la tarea."); got != "tiempo: El tiempo debe ser mayor a 0" {
		t.Fatalf("unexpected user message %q", got)
	}
}
