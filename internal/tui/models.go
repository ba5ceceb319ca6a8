package tui

type View int

const (
	ViewHeadlines View = iota
	ViewSearch
	ViewFilters
	ViewReader
	ViewHelp
)

func (v View) String() string {
	switch v {
	case ViewHeadlines:
		return "headlines"
	case ViewSearch:
		return "search"
	case ViewFilters:
		return "filters"
	case ViewReader:
		return "reader"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}
