package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/newsdesk/internal/api"
	"github.com/pders01/newsdesk/internal/config"
	"github.com/pders01/newsdesk/internal/query"
)

type KeyHandler struct {
	app    *App
	config *config.Config
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	return &KeyHandler{app: app, config: cfg}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The filter panel owns its keys, including text entry on the date fields.
	if kh.app.view == ViewFilters {
		return kh.handleFiltersKeys(msg)
	}

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(msg); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	return kh.app.view == ViewSearch && kh.app.searchInput.Focused()
}

func (kh *KeyHandler) quit() (tea.Model, tea.Cmd) {
	kh.app.Close()
	return kh.app, tea.Quit
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return kh.navigateBack()
	case "ctrl+c":
		return kh.quit()
	case "enter":
		// Enter skips the rest of the quiet period.
		if !kh.app.gate.Flush() && len(kh.app.searchList.Items()) > 0 {
			kh.app.searchInput.Blur()
		}
		return kh.app, nil
	case "tab", "down":
		if len(kh.app.searchList.Items()) > 0 {
			kh.app.searchInput.Blur()
		}
		return kh.app, nil
	default:
		return kh.delegateToTextInput(msg)
	}
}

// delegateToTextInput feeds the search input and pushes changed text into
// the debounce gate.
func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	prev := kh.app.searchInput.Value()
	var cmd tea.Cmd
	kh.app.searchInput, cmd = kh.app.searchInput.Update(msg)

	if v := kh.app.searchInput.Value(); v != prev {
		kh.app.search.SetQuery(v)
		kh.app.gate.Push(v)
	}
	return kh.app, cmd
}

func (kh *KeyHandler) handleCustomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	keys := kh.app.keys

	if kh.app.view == ViewHelp {
		kh.app.view = kh.app.helpReturn
		return kh.app, nil, true
	}

	switch {
	case key.Matches(msg, keys.Quit):
		model, cmd := kh.quit()
		return model, cmd, true
	case key.Matches(msg, keys.Help):
		kh.app.helpReturn = kh.app.view
		kh.app.view = ViewHelp
		return kh.app, nil, true
	}

	switch kh.app.view {
	case ViewHeadlines:
		return kh.handleHeadlinesKeys(msg)
	case ViewSearch:
		return kh.handleSearchKeys(msg)
	case ViewReader:
		return kh.handleReaderKeys(msg)
	default:
		return kh.app, nil, false
	}
}

func (kh *KeyHandler) handleHeadlinesKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	keys := kh.app.keys
	switch {
	case key.Matches(msg, keys.Read):
		if art := kh.selected(); art != nil {
			model, cmd := kh.openReader(*art)
			return model, cmd, true
		}
		return kh.app, nil, true
	case key.Matches(msg, keys.NextCategory):
		return kh.app, kh.cycleCategory(1), true
	case key.Matches(msg, keys.PrevCategory):
		return kh.app, kh.cycleCategory(-1), true
	case key.Matches(msg, keys.NextPage):
		return kh.app, kh.turnPage(1), true
	case key.Matches(msg, keys.PrevPage):
		return kh.app, kh.turnPage(-1), true
	case key.Matches(msg, keys.Retry):
		return kh.app, tea.Batch(kh.app.retry(query.KindHeadlines), kh.app.spinner.Tick), true
	case key.Matches(msg, keys.Search):
		model, cmd := kh.enterSearchMode()
		return model, cmd, true
	case key.Matches(msg, keys.Open):
		return kh.app, kh.openLink(kh.selected()), true
	case key.Matches(msg, keys.OpenImage):
		return kh.app, kh.openImage(kh.selected()), true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	keys := kh.app.keys
	switch {
	case key.Matches(msg, keys.Read):
		if art := kh.selected(); art != nil {
			model, cmd := kh.openReader(*art)
			return model, cmd, true
		}
		return kh.app, nil, true
	case key.Matches(msg, keys.Search), msg.String() == "tab", msg.String() == "shift+tab":
		kh.app.searchInput.Focus()
		return kh.app, nil, true
	case msg.String() == "up" && kh.app.searchList.Index() == 0:
		kh.app.searchInput.Focus()
		return kh.app, nil, true
	case key.Matches(msg, keys.Filters):
		kh.app.filterPanel.Load(kh.app.search.Filters())
		kh.app.filterPanel.Focus(fieldLanguage)
		kh.app.view = ViewFilters
		return kh.app, nil, true
	case key.Matches(msg, keys.NextPage):
		return kh.app, kh.turnPage(1), true
	case key.Matches(msg, keys.PrevPage):
		return kh.app, kh.turnPage(-1), true
	case key.Matches(msg, keys.Retry):
		return kh.app, tea.Batch(kh.app.retry(query.KindSearch), kh.app.spinner.Tick), true
	case key.Matches(msg, keys.Open):
		return kh.app, kh.openLink(kh.selected()), true
	case key.Matches(msg, keys.OpenImage):
		return kh.app, kh.openImage(kh.selected()), true
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Headlines):
		kh.app.view = ViewHeadlines
		return kh.app, nil, true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleReaderKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	keys := kh.app.keys
	switch {
	case key.Matches(msg, keys.Back):
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case key.Matches(msg, keys.Open):
		return kh.app, kh.openLink(kh.app.currentArticle), true
	case key.Matches(msg, keys.OpenImage):
		return kh.app, kh.openImage(kh.app.currentArticle), true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleFiltersKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	app := kh.app
	panel := app.filterPanel
	keys := app.keys

	switch msg.String() {
	case "ctrl+c":
		return kh.quit()
	case "tab", "down":
		panel.Next()
		return app, nil
	case "shift+tab", "up":
		panel.Prev()
		return app, nil
	case "left", "h":
		if panel.Cycle(-1) {
			return app, nil
		}
	case "right", "l":
		if panel.Cycle(1) {
			return app, nil
		}
	}

	switch {
	case key.Matches(msg, keys.Back):
		panel.Load(app.search.Filters())
		app.view = ViewSearch
		return app, nil

	case key.Matches(msg, keys.Apply):
		fs, err := panel.Validate()
		if err != nil {
			return app, app.setStatus(err.Error(), StatusError, 5*time.Second)
		}
		app.search.SetFilters(fs)
		app.view = ViewSearch
		return app, tea.Batch(
			app.fetchSearch(),
			app.setStatus(MsgFiltersApplied, StatusSuccess, 2*time.Second),
			app.spinner.Tick,
		)

	case key.Matches(msg, keys.Reset):
		app.search.ResetFilters()
		panel.Load(app.search.Filters())
		app.view = ViewSearch
		return app, tea.Batch(
			app.fetchSearch(),
			app.setStatus(MsgFiltersReset, StatusInfo, 2*time.Second),
			app.spinner.Tick,
		)
	}

	return app, panel.Update(msg)
}

// delegateToCharm lets the bubbles components handle keys we don't intercept.
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch kh.app.view {
	case ViewHeadlines:
		kh.app.headlineList, cmd = kh.app.headlineList.Update(msg)
		return kh.app, cmd
	case ViewSearch:
		kh.app.searchList, cmd = kh.app.searchList.Update(msg)
		return kh.app, cmd
	case ViewReader:
		kh.app.viewport, cmd = kh.app.viewport.Update(msg)
		return kh.app, cmd
	default:
		return kh.app, nil
	}
}

func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewSearch:
		kh.app.searchInput.Blur()
		kh.app.view = ViewHeadlines
	case ViewReader:
		kh.app.view = kh.app.previousView
		kh.app.currentArticle = nil
		kh.app.loadingArticle = false
	case ViewFilters:
		kh.app.view = ViewSearch
	case ViewHelp:
		kh.app.view = kh.app.helpReturn
	}
	return kh.app, nil
}

func (kh *KeyHandler) enterSearchMode() (tea.Model, tea.Cmd) {
	kh.app.view = ViewSearch
	kh.app.searchInput.Focus()
	kh.app.searchInput.CursorEnd()
	return kh.app, nil
}

// selected returns the highlighted article of the current list page.
func (kh *KeyHandler) selected() *api.Article {
	var item any
	switch kh.app.view {
	case ViewHeadlines:
		item = kh.app.headlineList.SelectedItem()
	case ViewSearch:
		item = kh.app.searchList.SelectedItem()
	}
	if i, ok := item.(articleItem); ok {
		art := i.article
		return &art
	}
	return nil
}

func (kh *KeyHandler) openReader(article api.Article) (tea.Model, tea.Cmd) {
	kh.app.previousView = kh.app.view
	kh.app.view = ViewReader
	kh.app.currentArticle = &article
	kh.app.loadingArticle = true
	return kh.app, tea.Batch(kh.app.renderArticle(article), kh.app.spinner.Tick)
}

// cycleCategory steps through "All" and the collaborator's categories.
func (kh *KeyHandler) cycleCategory(delta int) tea.Cmd {
	all := append([]string{""}, kh.app.categories...)
	if len(all) == 1 {
		return nil
	}
	idx := 0
	for i, c := range all {
		if c == kh.app.headlines.Category() {
			idx = i
		}
	}
	n := len(all)
	idx = ((idx+delta)%n + n) % n
	kh.app.headlines.SetCategory(all[idx])
	return tea.Batch(kh.app.fetchHeadlines(), kh.app.spinner.Tick)
}

// turnPage moves the current page's cursor within [1, TotalPages].
func (kh *KeyHandler) turnPage(delta int) tea.Cmd {
	switch kh.app.view {
	case ViewHeadlines:
		st := kh.app.headlinesSession.State()
		next := kh.app.headlines.Page() + delta
		if next < 1 || next > st.TotalPages {
			return nil
		}
		kh.app.headlines.SetPage(next)
		return tea.Batch(kh.app.fetchHeadlines(), kh.app.spinner.Tick)
	case ViewSearch:
		st := kh.app.searchSession.State()
		next := kh.app.search.Page() + delta
		if next < 1 || next > st.TotalPages {
			return nil
		}
		kh.app.search.SetPage(next)
		return tea.Batch(kh.app.fetchSearch(), kh.app.spinner.Tick)
	}
	return nil
}

func (kh *KeyHandler) openLink(article *api.Article) tea.Cmd {
	if article == nil {
		return nil
	}
	if article.URL == "" {
		return kh.app.setStatus(MsgNoLink, StatusWarn, 3*time.Second)
	}
	return kh.app.openURL(article.URL)
}

func (kh *KeyHandler) openImage(article *api.Article) tea.Cmd {
	if article == nil {
		return nil
	}
	if article.URLToImage == "" {
		return kh.app.setStatus(MsgNoImage, StatusWarn, 3*time.Second)
	}
	return kh.app.openURL(article.URLToImage)
}

// GetHelpForCurrentView returns the short hints shown in the status bar.
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	switch kh.app.view {
	case ViewHeadlines:
		return []string{"enter: read", "tab: category", "n/p: page", "/: search", "o: open", "?: help", "q: quit"}

	case ViewSearch:
		if kh.app.searchInput.Focused() {
			return []string{"enter: search now", "tab: results", "esc: headlines"}
		}
		help := []string{"enter: read", "/: edit query", "f: filters", "n/p: page", "o: open", "esc: headlines"}
		if kh.app.searchSession.State().Err != "" {
			help = append(help, MsgRetry)
		}
		return help

	case ViewFilters:
		return []string{"tab: next field", "←/→: change", "enter: apply", "ctrl+x: reset", "esc: cancel"}

	case ViewReader:
		return []string{"o: open in browser", "i: open image", "esc: back"}

	case ViewHelp:
		return []string{"any key: close"}

	default:
		return []string{}
	}
}
