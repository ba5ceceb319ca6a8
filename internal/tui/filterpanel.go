package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/newsdesk/internal/api"
	"github.com/pders01/newsdesk/internal/query"
	"github.com/pders01/newsdesk/internal/validation"
)

type filterField int

const (
	fieldLanguage filterField = iota
	fieldSort
	fieldFrom
	fieldTo
	fieldCount
)

// Labels used until /api/filters answers.
var fallbackSortOptions = []api.SortOption{
	{Value: string(query.SortPublishedAt), Label: "Latest"},
	{Value: string(query.SortRelevancy), Label: "Most Relevant"},
	{Value: string(query.SortPopularity), Label: "Most Popular"},
}

// filterPanel edits a draft FilterSet. Nothing reaches the controller until
// the draft is applied.
type filterPanel struct {
	languages []api.Language
	sorts     []api.SortOption
	langIdx   int // 0 is "All Languages"
	sortIdx   int
	from      textinput.Model
	to        textinput.Model
	focus     filterField
	err       string
}

func newFilterPanel() *filterPanel {
	from := textinput.New()
	from.Placeholder = validation.DateLayout
	from.CharLimit = len(validation.DateLayout)

	to := textinput.New()
	to.Placeholder = validation.DateLayout
	to.CharLimit = len(validation.DateLayout)

	return &filterPanel{
		sorts: fallbackSortOptions,
		from:  from,
		to:    to,
	}
}

// SetOptions installs the collaborator's choices, keeping the current draft.
func (p *filterPanel) SetOptions(opts *api.FilterOptions) {
	if opts == nil {
		return
	}
	draft := p.FilterSet()
	p.languages = opts.Languages
	if len(opts.SortOptions) > 0 {
		p.sorts = opts.SortOptions
	}
	p.Load(draft)
}

// Load resets the draft to fs.
func (p *filterPanel) Load(fs query.FilterSet) {
	p.langIdx = 0
	for i, l := range p.languages {
		if l.Code == fs.Language {
			p.langIdx = i + 1
		}
	}
	if fs.Language != "" && p.langIdx == 0 {
		// Keep a seeded code even if the collaborator does not list it.
		p.languages = append(p.languages, api.Language{Code: fs.Language, Name: fs.Language})
		p.langIdx = len(p.languages)
	}

	p.sortIdx = 0
	for i, s := range p.sorts {
		if s.Value == string(fs.SortBy) {
			p.sortIdx = i
		}
	}

	p.from.SetValue(fs.From)
	p.to.SetValue(fs.To)
	p.err = ""
}

// FilterSet returns the draft.
func (p *filterPanel) FilterSet() query.FilterSet {
	fs := query.FilterSet{
		SortBy: query.DefaultSort,
		From:   strings.TrimSpace(p.from.Value()),
		To:     strings.TrimSpace(p.to.Value()),
	}
	if p.langIdx > 0 && p.langIdx <= len(p.languages) {
		fs.Language = p.languages[p.langIdx-1].Code
	}
	if p.sortIdx < len(p.sorts) {
		fs.SortBy = query.SortBy(p.sorts[p.sortIdx].Value)
	}
	return fs
}

// Validate returns the draft or the reason it cannot be applied. The error
// is also kept for display.
func (p *filterPanel) Validate() (query.FilterSet, error) {
	fs := p.FilterSet()
	if err := fs.Validate(); err != nil {
		p.err = err.Error()
		return fs, err
	}
	p.err = ""
	return fs, nil
}

func (p *filterPanel) Focus(f filterField) {
	p.focus = (f + fieldCount) % fieldCount
	p.from.Blur()
	p.to.Blur()
	switch p.focus {
	case fieldFrom:
		p.from.Focus()
	case fieldTo:
		p.to.Focus()
	}
}

func (p *filterPanel) Next() { p.Focus(p.focus + 1) }
func (p *filterPanel) Prev() { p.Focus(p.focus - 1) }

// Cycle moves a choice field by delta. It reports false on text fields.
func (p *filterPanel) Cycle(delta int) bool {
	switch p.focus {
	case fieldLanguage:
		n := len(p.languages) + 1
		p.langIdx = ((p.langIdx+delta)%n + n) % n
		return true
	case fieldSort:
		n := len(p.sorts)
		if n == 0 {
			return true
		}
		p.sortIdx = ((p.sortIdx+delta)%n + n) % n
		return true
	}
	return false
}

func (p *filterPanel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch p.focus {
	case fieldFrom:
		p.from, cmd = p.from.Update(msg)
	case fieldTo:
		p.to, cmd = p.to.Update(msg)
	}
	return cmd
}

func (p *filterPanel) languageLabel() string {
	if p.langIdx == 0 || p.langIdx > len(p.languages) {
		return "All Languages"
	}
	return p.languages[p.langIdx-1].Name
}

func (p *filterPanel) sortLabel() string {
	if p.sortIdx < len(p.sorts) {
		return p.sorts[p.sortIdx].Label
	}
	return string(query.DefaultSort)
}

func (p *filterPanel) View(width int) string {
	row := func(f filterField, label, value string) string {
		style := FieldLabelStyle
		if p.focus == f {
			style = FocusedFieldStyle
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, style.Render(label), value)
	}
	choice := func(f filterField, v string) string {
		if p.focus == f {
			return lipgloss.NewStyle().Foreground(AccentColor).Render("‹ " + v + " ›")
		}
		return lipgloss.NewStyle().Foreground(TextColor).Render(v)
	}

	rows := []string{
		renderHeader("› filters", "", width),
		"",
		row(fieldLanguage, "Language", choice(fieldLanguage, p.languageLabel())),
		row(fieldSort, "Sort By", choice(fieldSort, p.sortLabel())),
		row(fieldFrom, "From Date", p.from.View()),
		row(fieldTo, "To Date", p.to.View()),
		"",
	}
	if p.err != "" {
		rows = append(rows, ErrorMessageStyle.Render("✗ "+p.err), "")
	}
	rows = append(rows, renderHelp("tab: next field • ←/→: change • enter: apply • ctrl+x: reset • esc: cancel"))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
