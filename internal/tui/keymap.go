package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap backs the help view. The key handler matches on the same bindings.
type keyMap struct {
	Search       key.Binding
	Headlines    key.Binding
	Filters      key.Binding
	NextPage     key.Binding
	PrevPage     key.Binding
	NextCategory key.Binding
	PrevCategory key.Binding
	Read         key.Binding
	Open         key.Binding
	OpenImage    key.Binding
	Retry        key.Binding
	Apply        key.Binding
	Reset        key.Binding
	Back         key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Search: key.NewBinding(
			key.WithKeys("/", "s"),
			key.WithHelp("/", "search"),
		),
		Headlines: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "headlines"),
		),
		Filters: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filters"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("n", "]"),
			key.WithHelp("n/]", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("p", "["),
			key.WithHelp("p/[", "prev page"),
		),
		NextCategory: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next category"),
		),
		PrevCategory: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev category"),
		),
		Read: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "read"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open in browser"),
		),
		OpenImage: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "open image"),
		),
		Retry: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "try again"),
		),
		Apply: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply filters"),
		),
		Reset: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "reset filters"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Read, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Search, k.Headlines, k.Filters, k.Read, k.Open, k.OpenImage},
		{k.NextPage, k.PrevPage, k.NextCategory, k.PrevCategory},
		{k.Retry, k.Apply, k.Reset, k.Back, k.Help, k.Quit},
	}
}
