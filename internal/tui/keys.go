package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Toggle      key.Binding
	ExpandAll   key.Binding
	CollapseAll key.Binding
	Sort        key.Binding
	Filter      key.Binding
	New         key.Binding
	Edit        key.Binding
	Complete    key.Binding
	Delete      key.Binding
	Reload      key.Binding
	Search      key.Binding
	SwitchView  key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "subir")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "bajar")),
		Toggle:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expandir")),
		ExpandAll:   key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "expandir todo")),
		CollapseAll: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "colapsar todo")),
		Sort:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "ordenar")),
		Filter:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filtrar")),
		New:         key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "nueva")),
		Edit:        key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "editar")),
		Complete:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "completar")),
		Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "eliminar")),
		Reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "recargar")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "buscar")),
		SwitchView:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "tareas/categorías")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "salir")),
	}
}

func helpLine(bs ...key.Binding) string {
	out := ""
	for i, b := range bs {
		h := b.Help()
		if i > 0 {
			out += "  "
		}
		out += h.Key + ": " + h.Desc
	}
	return out
}
