package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"tugestor-cli/internal/model"
)

type categoryItem struct {
	model.Category
}

func (i categoryItem) FilterValue() string { return i.Name }

func categoryItems(cats []model.Category) []list.Item {
	out := make([]list.Item, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryItem{Category: c})
	}
	return out
}

func newCategoryList(width, height int) list.Model {
	l := list.New(nil, newCategoryDelegate(), width, height)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	// Searching is server-side (`/`), not the list's fuzzy filter.
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}

type categoryDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
}

func newCategoryDelegate() categoryDelegate {
	return categoryDelegate{
		normal: lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
	}
}

func (d categoryDelegate) Height() int                             { return 1 }
func (d categoryDelegate) Spacing() int                            { return 0 }
func (d categoryDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d categoryDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(categoryItem)
	contentW := m.Width()
	if !ok || contentW < 4 {
		return
	}
	style := d.normal
	if index == m.Index() {
		style = d.selected
	}
	fmt.Fprint(w, style.Render(categoryLine(it.Category, contentW)))
}

// categoryLine renders "■ icon name  #id" padded or cut to width.
func categoryLine(c model.Category, width int) string {
	swatch := glyphBullet()
	if strings.HasPrefix(c.Color, "#") {
		swatch = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render(swatch)
	}
	parts := []string{swatch}
	if c.Icon != "" {
		parts = append(parts, c.Icon)
	}
	parts = append(parts, c.Name, styleMuted().Render(fmt.Sprintf("#%d", c.ID)))
	line := " " + strings.Join(parts, " ")
	line = truncate(line, width)
	if lw := xansi.StringWidth(line); lw < width {
		line += strings.Repeat(" ", width-lw)
	}
	return line
}
