package format

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Tabler is implemented by payloads with a preferred column layout.
type Tabler interface {
	Header() []string
	Rows() [][]string
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// WriteTable renders v as a bordered table. A {"data": x} envelope is unwrapped first.
// Values without a Tabler implementation are laid out generically: objects as key/value rows,
// arrays of objects with one column per key.
func WriteTable(w io.Writer, v any) error {
	if m, ok := v.(map[string]any); ok {
		if d, ok := m["data"]; ok && len(m) == 1 {
			v = d
		}
	}
	header, rows, err := layout(v)
	if err != nil {
		return err
	}
	if header == nil {
		_, err := fmt.Fprintln(w, strings.Join(flatten(rows), "\n"))
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(header...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err = fmt.Fprintln(w, t.Render())
	return err
}

func layout(v any) ([]string, [][]string, error) {
	if t, ok := v.(Tabler); ok {
		return t.Header(), t.Rows(), nil
	}
	x, err := generic(v)
	if err != nil {
		return nil, nil, err
	}
	switch t := x.(type) {
	case map[string]any:
		keys := sortedKeys(t)
		rows := make([][]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, []string{k, cell(t[k])})
		}
		return []string{"field", "value"}, rows, nil
	case []any:
		return listLayout(t)
	default:
		return nil, [][]string{{cell(t)}}, nil
	}
}

func listLayout(xs []any) ([]string, [][]string, error) {
	seen := map[string]struct{}{}
	for _, it := range xs {
		m, ok := it.(map[string]any)
		if !ok {
			rows := make([][]string, 0, len(xs))
			for _, it := range xs {
				rows = append(rows, []string{cell(it)})
			}
			return []string{"value"}, rows, nil
		}
		for k := range m {
			seen[k] = struct{}{}
		}
	}
	header := sortedKeys(seen)
	rows := make([][]string, 0, len(xs))
	for _, it := range xs {
		m := it.(map[string]any)
		row := make([]string, len(header))
		for i, k := range header {
			row[i] = cell(m[k])
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := sonic.ConfigStd.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}

func flatten(rows [][]string) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, strings.Join(r, " "))
	}
	return out
}
