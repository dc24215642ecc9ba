package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	log "github.com/sirupsen/logrus"

	"tugestor-cli/internal/model"
	"tugestor-cli/internal/store"
)

type seenRequest struct {
	Method string
	Path   string
	Auth   string
	ReqID  string
	CT     string
	Body   string
}

type recorder struct {
	mu   sync.Mutex
	reqs []seenRequest
}

func (r *recorder) last() seenRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reqs[len(r.reqs)-1]
}

func newRecordingServer(t *testing.T, status int, body string) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.reqs = append(rec.reqs, seenRequest{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Auth:   r.Header.Get("Authorization"),
			ReqID:  r.Header.Get(RequestIDHeader),
			CT:     r.Header.Get("Content-Type"),
			Body:   string(b),
		})
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func quietLogger() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

func TestClient_AttachesBearerExceptOnLogin(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `[]`)
	c := New(srv.URL+"/api/", store.NewMemorySessionStore("tok-123"), WithLogger(quietLogger()))
	ctx := context.Background()

	if _, err := c.ListTasks(ctx); err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	got := rec.last()
	if got.Auth != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", got.Auth)
	}
	if got.Path != "/api/tarea" {
		t.Fatalf("unexpected path %q", got.Path)
	}
	if got.ReqID == "" {
		t.Fatalf("expected %s header", RequestIDHeader)
	}
	if got.CT != "application/json" {
		t.Fatalf("unexpected content type %q", got.CT)
	}

	srvLogin, recLogin := newRecordingServer(t, http.StatusOK, `{"idUsuario":1,"nombre":"Ana","email":"a@b.c","token":"new"}`)
	c.BaseURL = srvLogin.URL + "/api"
	lr, err := c.Login(ctx, "a@b.c", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if lr.Token != "new" || lr.UserID != 1 {
		t.Fatalf("unexpected login response %+v", lr)
	}
	if a := recLogin.last().Auth; a != "" {
		t.Fatalf("login must be sent without Authorization, got %q", a)
	}
	if b := recLogin.last().Body; !strings.Contains(b, `"email":"a@b.c"`) || !strings.Contains(b, `"password":"pw"`) {
		t.Fatalf("unexpected login body %s", b)
	}
}

func TestClient_NoTokenSendsUnauthenticated(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `[]`)
	for name, sess := range map[string]store.SessionStore{
		"nil":   nil,
		"empty": store.NewMemorySessionStore(""),
	} {
		t.Run(name, func(t *testing.T) {
			c := New(srv.URL, sess, WithLogger(quietLogger()))
			if _, err := c.ListCategories(context.Background()); err != nil {
				t.Fatalf("ListCategories: %v", err)
			}
			if a := rec.last().Auth; a != "" {
				t.Fatalf("expected no Authorization header, got %q", a)
			}
		})
	}
}

func TestClient_TokenReadPerRequest(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `[]`)
	sess := store.NewMemorySessionStore("")
	c := New(srv.URL, sess, WithLogger(quietLogger()))
	ctx := context.Background()

	_, _ = c.ListTasks(ctx)
	if rec.last().Auth != "" {
		t.Fatalf("expected unauthenticated before login")
	}
	_ = sess.SetToken(ctx, "later")
	_, _ = c.ListTasks(ctx)
	if rec.last().Auth != "Bearer later" {
		t.Fatalf("expected token set after construction to be used, got %q", rec.last().Auth)
	}
	_ = sess.ClearToken(ctx)
	_, _ = c.ListTasks(ctx)
	if rec.last().Auth != "" {
		t.Fatalf("expected no header after logout")
	}
}

func TestClient_Paths(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `[]`)
	c := New(srv.URL, nil, WithLogger(quietLogger()))
	ctx := context.Background()

	cases := []struct {
		name   string
		call   func() error
		method string
		path   string
	}{
		{"sorted hoy", func() error { _, err := c.SortedTasks(ctx, SortDueToday); return err }, http.MethodGet, "/tarea/hoy"},
		{"sorted titulo", func() error { _, err := c.SortedTasks(ctx, SortByTitle); return err }, http.MethodGet, "/tarea/titulo"},
		{"filter estado", func() error {
			_, err := c.FilteredTasks(ctx, Filter{Kind: FilterByState, Value: "VENCIDA"})
			return err
		}, http.MethodGet, "/tarea/filtrar/estado/VENCIDA"},
		{"filter palabras escaped", func() error {
			_, err := c.FilteredTasks(ctx, Filter{Kind: FilterByKeyword, Value: "pan/leche"})
			return err
		}, http.MethodGet, "/tarea/filtrar/palabras/pan%2Fleche"},
		{"search categories", func() error { _, err := c.SearchCategories(ctx, "ca"); return err }, http.MethodGet, "/categoria/nombre/ca"},
		{"delete category", func() error { return c.DeleteCategory(ctx, 7) }, http.MethodDelete, "/categoria/delete/7"},
		{"delete task", func() error { return c.DeleteTask(ctx, 9) }, http.MethodDelete, "/tarea/delete/9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.call(); err != nil {
				t.Fatalf("call: %v", err)
			}
			got := rec.last()
			if got.Method != tc.method || got.Path != tc.path {
				t.Fatalf("got %s %s, want %s %s", got.Method, got.Path, tc.method, tc.path)
			}
		})
	}
}

func TestClient_RejectsUnknownSortAndEmptyFilter(t *testing.T) {
	c := New("http://127.0.0.1:1", nil, WithLogger(quietLogger()))
	ctx := context.Background()
	if _, err := c.SortedTasks(ctx, "nope"); err == nil {
		t.Fatalf("expected error for unknown sort key")
	}
	if _, err := c.FilteredTasks(ctx, Filter{Kind: FilterByState}); err == nil {
		t.Fatalf("expected error for empty filter value")
	}
	if _, err := c.CreateCategory(ctx, model.CategoryRequest{Name: "  "}); !errors.Is(err, ErrCategoryNameRequired) {
		t.Fatalf("expected ErrCategoryNameRequired, got %v", err)
	}
}

func TestClient_ErrorMessages(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"error key", http.StatusNotFound, `{"error":"Tarea no encontrada con id: 9"}`, "Tarea no encontrada con id: 9"},
		{"mensaje key", http.StatusBadRequest, `{"mensaje":"Datos inválidos"}`, "Datos inválidos"},
		{"field map", http.StatusBadRequest, `{"titulo":"El titulo no puede estar vacio","tiempo":"El tiempo debe ser mayor a 0"}`, "tiempo: El tiempo debe ser mayor a 0; titulo: El titulo no puede estar vacio"},
		{"plain text", http.StatusUnauthorized, `unauthorized`, "unauthorized"},
		{"empty", http.StatusInternalServerError, ``, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newRecordingServer(t, tc.status, tc.body)
			c := New(srv.URL, nil, WithLogger(quietLogger()))
			_, err := c.ListTasks(context.Background())
			var ae *Error
			if !errors.As(err, &ae) {
				t.Fatalf("expected *Error, got %T %v", err, err)
			}
			if ae.Status != tc.status || ae.Message != tc.want {
				t.Fatalf("got status=%d message=%q", ae.Status, ae.Message)
			}
			fallback := "No se pudieron cargar las tareas."
			wantUser := tc.want
			if wantUser == "" {
				wantUser = fallback
			}
			if got := UserMessage(err, fallback); got != wantUser {
				t.Fatalf("UserMessage = %q, want %q", got, wantUser)
			}
		})
	}
}

func TestUserMessage_NonAPIError(t *testing.T) {
	if got := UserMessage(errors.New("dial tcp: refused"), "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if !IsUnauthorized(&Error{Status: http.StatusForbidden}) || IsUnauthorized(errors.New("x")) {
		t.Fatalf("IsUnauthorized mismatch")
	}
}

func TestClient_HonorsContextCancellation(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusOK, `[]`)
	c := New(srv.URL, nil, WithLogger(quietLogger()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.ListTasks(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
