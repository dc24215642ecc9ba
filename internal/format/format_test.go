package format

import (
	"bytes"
	"strings"
	"testing"
)

type payload struct {
	ID    int64    `json:"idTarea"`
	Title string   `json:"titulo"`
	Done  bool     `json:"completada"`
	Tags  []string `json:"tags,omitempty"`
	Due   *string  `json:"fechaEntrega"`
}

type rows []payload

func (r rows) Header() []string { return []string{"ID", "TITULO"} }

func (r rows) Rows() [][]string {
	out := make([][]string, 0, len(r))
	for _, p := range r {
		out = append(out, []string{"#" + p.Title, p.Title})
	}
	return out
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, 1, "yaml", false); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]any{"data": payload{ID: 1, Title: "a"}}, "", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := `{"data":{"idTarea":1,"titulo":"a","completada":false,"fechaEntrega":null}}` + "\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := WriteJSON(&buf, map[string]any{"a": 1}, true); err != nil {
		t.Fatalf("WriteJSON pretty: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"a\": 1") {
		t.Fatalf("expected indented output, got %q", buf.String())
	}
}

func TestWriteEDN(t *testing.T) {
	var buf bytes.Buffer
	v := map[string]any{"data": []payload{{ID: 2, Title: "x \"y\"", Done: true, Tags: []string{"a"}}}}
	if err := WriteEDN(&buf, v, false); err != nil {
		t.Fatalf("WriteEDN: %v", err)
	}
	want := `{:data [{:completada true :fechaEntrega nil :idTarea 2 :tags ["a"] :titulo "x \"y\""}]}` + "\n"
	if buf.String() != want {
		t.Fatalf("got %q\nwant %q", buf.String(), want)
	}

	buf.Reset()
	if err := WriteEDN(&buf, map[string]any{"a": []any{}, "b": 1.5}, true); err != nil {
		t.Fatalf("WriteEDN pretty: %v", err)
	}
	if buf.String() != "{\n  :a []\n  :b 1.5\n}\n" {
		t.Fatalf("unexpected pretty edn %q", buf.String())
	}
}

func TestWriteTable_Tabler(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]any{"data": rows{{Title: "pan"}, {Title: "leche"}}}, "table", false); err != nil {
		t.Fatalf("Write table: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"ID", "TITULO", "#pan", "leche"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table:\n%s", want, out)
		}
	}
}

func TestWriteTable_Generic(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, map[string]any{"data": []payload{{ID: 7, Title: "pan"}}}); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"idTarea", "titulo", "7", "pan"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := WriteTable(&buf, map[string]any{"token": "abc", "loggedIn": true}); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if !strings.Contains(buf.String(), "loggedIn") || !strings.Contains(buf.String(), "true") {
		t.Fatalf("expected key/value rows:\n%s", buf.String())
	}

	buf.Reset()
	if err := WriteTable(&buf, map[string]any{"data": "SIN_FECHA"}); err != nil {
		t.Fatalf("WriteTable scalar: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "SIN_FECHA" {
		t.Fatalf("unexpected scalar output %q", buf.String())
	}
}
