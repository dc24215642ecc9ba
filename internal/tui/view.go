package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"tugestor-cli/internal/model"
)

func stateLabel(s model.State) string {
	switch s {
	case model.StateInProgress:
		return "En curso"
	case model.StateCompleted:
		return "Completada"
	case model.StateCompletedLate:
		return "Completada con retraso"
	case model.StateOverdue:
		return "Vencida"
	case model.StateNoDate:
		return "Sin fecha"
	}
	return string(s)
}

// bodyHeight is the screen minus header, status and help lines.
func (m appModel) bodyHeight() int {
	h := m.height - 3
	if h < 1 {
		h = 1
	}
	return h
}

func (m appModel) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	var body string
	switch {
	case m.modal != modalNone:
		body = lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, m.modalView())
	case m.view == viewCategories:
		body = m.catList.View()
	default:
		body = m.tasksView()
	}
	return strings.Join([]string{
		normalizePane(m.headerView(), m.width, 1),
		normalizePane(body, m.width, m.bodyHeight()),
		normalizePane(m.statusView(), m.width, 1),
		normalizePane(styleMuted().Render(m.helpView()), m.width, 1),
	}, "\n")
}

func (m appModel) headerView() string {
	title := "TuGestor " + glyphBullet() + " "
	if m.view == viewCategories {
		title += fmt.Sprintf("Categorías (%d)", len(m.catList.Items()))
		if m.catQuery != "" {
			title += "  búsqueda: " + m.catQuery
		}
		return styleHeader().Render(title)
	}
	title += fmt.Sprintf("Tareas (%d)", len(m.ctl.Tasks()))
	if k := m.ctl.Sort(); k != "" {
		title += "  orden: " + string(k)
	}
	if f := m.ctl.Filter(); f.Kind != "" {
		title += "  filtro: " + string(f.Kind)
		if f.Value != "" {
			title += "=" + f.Value
		}
	}
	if m.ctl.Loading() {
		title += "  cargando…"
	}
	return styleHeader().Render(title)
}

func (m appModel) statusView() string {
	if m.view == viewTasks && m.modal == modalNone {
		if e := m.ctl.Err(); e != "" {
			return styleError().Render(e)
		}
	}
	if m.flash == "" {
		return ""
	}
	if m.flashErr {
		return styleError().Render(m.flash)
	}
	return lipgloss.NewStyle().Foreground(colorOK).Render(m.flash)
}

func (m appModel) helpView() string {
	k := m.keys
	switch {
	case m.modal == modalTaskForm || m.modal == modalCategoryForm:
		return "tab: campo   ←/→: elegir   enter: siguiente/guardar   ctrl+s: guardar   esc: cancelar"
	case m.modal != modalNone:
		return "↑/↓: mover   enter: aceptar   esc: cancelar"
	case m.view == viewCategories:
		return helpLine(k.New, k.Edit, k.Delete, k.Search, k.Reload, k.SwitchView, k.Quit)
	}
	return helpLine(k.Toggle, k.ExpandAll, k.CollapseAll, k.Sort, k.Filter, k.New, k.Edit, k.Complete, k.Delete, k.Reload, k.SwitchView, k.Quit)
}

func (m appModel) tasksView() string {
	tasks := m.ctl.Tasks()
	if len(tasks) == 0 {
		if m.ctl.Loading() {
			return styleMuted().Render("Cargando tareas…")
		}
		return styleMuted().Render("No hay tareas.")
	}

	cards := make([]string, len(tasks))
	heights := make([]int, len(tasks))
	for i, t := range tasks {
		cards[i] = renderTaskCard(t, i == m.cursor, m.ctl.IsExpanded(t.ID), m.width)
		heights[i] = lipgloss.Height(cards[i])
	}

	// Scroll so the selected card is fully visible.
	bodyH := m.bodyHeight()
	start := 0
	for start < m.cursor {
		used := 0
		for i := start; i <= m.cursor; i++ {
			used += heights[i]
		}
		if used <= bodyH {
			break
		}
		start++
	}
	return strings.Join(cards[start:], "\n")
}

func renderTaskCard(t model.Task, selected, expanded bool, width int) string {
	if width < 12 {
		width = 12
	}
	inner := width - 4

	twisty := glyphTwistyCollapsed()
	if expanded {
		twisty = glyphTwistyExpanded()
	}
	title := t.Title
	if t.Completed {
		title = lipgloss.NewStyle().Strikethrough(true).Render(title)
	}
	badges := styleBadge(priorityColor(t.Priority)).Render(string(t.Priority)) + " " +
		styleBadge(stateColor(t.State)).Render(stateLabel(t.State))
	headW := inner - xansi.StringWidth(badges) - 1
	head := truncate(twisty+" "+lipgloss.NewStyle().Bold(true).Render(title), headW)
	if w := xansi.StringWidth(head); w < headW {
		head += strings.Repeat(" ", headW-w)
	}
	lines := []string{head + " " + badges}

	if expanded {
		lines = append(lines, taskDetailLines(t, inner)...)
	}

	border := colorCardBorder
	if selected {
		border = colorSelectedBorder
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(width - 2).
		Render(strings.Join(lines, "\n"))
}

func taskDetailLines(t model.Task, width int) []string {
	label := styleMuted()
	due := t.DueAt.String()
	if due == "" {
		due = "sin fecha de entrega"
	}
	category := t.CategoryName
	if t.CategoryID == nil {
		category = "sin categoría"
	}
	lines := []string{
		label.Render("Prioridad: ") + styleBadge(priorityColor(t.Priority)).Render(string(t.Priority)),
		label.Render("Estado: ") + styleBadge(stateColor(t.State)).Render(stateLabel(t.State)),
		label.Render("Tiempo: ") + fmt.Sprintf("%d min", t.Time),
		label.Render("Entrega: ") + due,
		label.Render("Categoría: ") + category,
	}
	if t.CompletedAt != nil {
		lines = append(lines, label.Render("Completada: ")+t.CompletedAt.String())
	}
	if desc := renderMarkdown(t.Description, width); desc != "" {
		lines = append(lines, styleMuted().Render(strings.Repeat(glyphHRule(), width)))
		lines = append(lines, strings.Split(desc, "\n")...)
	}
	for i, ln := range lines {
		lines[i] = truncate(ln, width)
	}
	return lines
}

func modalBodyWidth(width int) int {
	w := width - 10
	if w > 64 {
		w = 64
	}
	if w < 20 {
		w = 20
	}
	return w
}

func renderModalBox(width int, title, content string) string {
	bodyW := modalBodyWidth(width)
	head := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render(title)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Foreground(colorSurfaceFg).
		Padding(0, 1).
		Width(bodyW + 2).
		Render(head + "\n\n" + content)
}

func (m appModel) modalView() string {
	switch m.modal {
	case modalSortPicker, modalFilterKindPicker:
		return renderModalBox(m.width, m.picker.title, renderPicker(m.picker))
	case modalFilterValue:
		return renderModalBox(m.width, "Filtrar por "+string(m.filterKind), renderInputField(m.input, true, modalBodyWidth(m.width)))
	case modalCategorySearch:
		return renderModalBox(m.width, "Buscar categoría", renderInputField(m.input, true, modalBodyWidth(m.width)))
	case modalTaskForm:
		return m.taskFormView()
	case modalCategoryForm:
		return m.categoryFormView()
	case modalConfirmDeleteTask:
		name := fmt.Sprintf("#%d", m.confirmID)
		if t, ok := m.ctl.Task(m.confirmID); ok {
			name = t.Title
		}
		return renderModalBox(m.width, "Eliminar tarea", "¿Eliminar \""+name+"\"?\n\n"+styleMuted().Render("y/enter: eliminar   n/esc: cancelar"))
	case modalConfirmDeleteCategory:
		name := fmt.Sprintf("#%d", m.confirmID)
		for _, c := range m.categories {
			if c.ID == m.confirmID {
				name = c.Name
			}
		}
		body := "¿Eliminar la categoría \"" + name + "\"?\n" + msgCategoryDeleteWarning
		return renderModalBox(m.width, "Eliminar categoría", body+"\n\n"+styleMuted().Render("y/enter: eliminar   n/esc: cancelar"))
	}
	return ""
}

func renderPicker(p picker) string {
	lines := make([]string, 0, len(p.options))
	for i, o := range p.options {
		if i == p.index {
			lines = append(lines, lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true).Render("> "+o))
			continue
		}
		lines = append(lines, "  "+o)
	}
	return strings.Join(lines, "\n")
}

func renderInputField(in textInput, focused bool, width int) string {
	label := styleMuted().Render(in.label)
	if focused {
		label = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render(in.label)
	}
	out := label + "\n" + renderInputLine(width, in.View())
	if in.err != "" {
		out += "\n" + styleError().Render(in.err)
	}
	return out
}

func renderInputLine(width int, inputView string) string {
	inputView = strings.NewReplacer("\n", " ", "\r", " ").Replace(inputView)
	line := lipgloss.PlaceHorizontal(width, lipgloss.Left, " "+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > width {
		line = xansi.Cut(line, 0, width) + "\x1b[0m"
	}
	return line
}

func renderSelector(label, value string, focused bool) string {
	l := styleMuted().Render(label)
	if focused {
		l = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render(label)
	}
	if value == "" {
		value = styleMuted().Render("(elegir)")
	}
	return l + "\n  ‹ " + value + " ›"
}

func (m appModel) taskFormView() string {
	f := m.taskForm
	if f == nil {
		return ""
	}
	w := modalBodyWidth(m.width)
	title := "Nueva tarea"
	if f.id != 0 {
		title = fmt.Sprintf("Editar tarea #%d", f.id)
	}
	var rows []string
	for field := taskFieldTitle; field < taskFieldCount; field++ {
		focused := f.focus == field
		switch field {
		case taskFieldPriority:
			rows = append(rows, renderSelector(taskFieldLabels[field], f.priorityLabel(), focused))
		case taskFieldCategory:
			rows = append(rows, renderSelector(taskFieldLabels[field], f.categoryLabel(), focused))
		default:
			rows = append(rows, renderInputField(*f.inputs()[field], focused, w))
		}
	}
	switch {
	case f.err != "":
		rows = append(rows, styleError().Render(f.err))
	case f.saving:
		rows = append(rows, styleMuted().Render("Guardando…"))
	}
	return renderModalBox(m.width, title, strings.Join(rows, "\n"))
}

func (m appModel) categoryFormView() string {
	f := m.catForm
	if f == nil {
		return ""
	}
	w := modalBodyWidth(m.width)
	title := "Nueva categoría"
	if f.id != 0 {
		title = fmt.Sprintf("Editar categoría #%d", f.id)
	}
	rows := make([]string, 0, len(f.fields)+1)
	for i, in := range f.fields {
		rows = append(rows, renderInputField(in, i == f.focus, w))
	}
	if f.err != "" {
		rows = append(rows, styleError().Render(f.err))
	}
	return renderModalBox(m.width, title, strings.Join(rows, "\n"))
}
