package tui

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/newsdesk/internal/api"
	"github.com/pders01/newsdesk/internal/config"
	"github.com/pders01/newsdesk/internal/debounce"
	"github.com/pders01/newsdesk/internal/debuglog"
	"github.com/pders01/newsdesk/internal/media"
	"github.com/pders01/newsdesk/internal/query"
	"github.com/pders01/newsdesk/internal/session"
	"github.com/pders01/newsdesk/internal/storage"
	"github.com/pders01/newsdesk/internal/validation"
)

// Backend is the news API as the app uses it.
type Backend interface {
	Search(ctx context.Context, params url.Values) (*api.ResultPage, error)
	Headlines(ctx context.Context, params url.Values) (*api.ResultPage, error)
	Filters(ctx context.Context) (*api.FilterOptions, error)
}

// LocationStore persists each page's location between runs.
type LocationStore interface {
	SaveLocation(page storage.Page, query string) error
	GetLocation(page storage.Page) (string, error)
	ClearLocation(page storage.Page) error
}

type Opener interface {
	Open(target string) error
}

type App struct {
	config     *config.Config
	client     Backend
	store      LocationStore
	launcher   Opener
	keyHandler *KeyHandler
	keys       keyMap

	search           *query.Controller
	searchSession    *session.Session
	headlines        *query.Headlines
	headlinesSession *session.Session
	gate             *debounce.Gate[string]
	settled          chan string
	settledQuery     string

	filterOptions *api.FilterOptions
	categories    []string
	filterPanel   *filterPanel

	headlineList list.Model
	searchList   list.Model
	searchInput  textinput.Model
	viewport     viewport.Model
	help         help.Model
	spinner      spinner.Model

	view           View
	previousView   View
	helpReturn     View
	currentArticle *api.Article
	loadingArticle bool
	status         statusLine
	statusSeq      int
	width          int
	height         int

	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
	now             func() time.Time
	closed          bool
}

type Option func(*appOptions)

type appOptions struct {
	location    string
	hasLocation bool
	clock       debounce.Clock
	launcher    Opener
	now         func() time.Time
}

// WithLocation seeds the search page from a location query string instead
// of the stored one and opens the app on the search page.
func WithLocation(location string) Option {
	return func(o *appOptions) {
		o.location = location
		o.hasLocation = true
	}
}

// WithClock drives the search debounce from c.
func WithClock(c debounce.Clock) Option {
	return func(o *appOptions) { o.clock = c }
}

func WithLauncher(l Opener) Option {
	return func(o *appOptions) { o.launcher = l }
}

// WithNow fixes the time used for relative dates.
func WithNow(now func() time.Time) Option {
	return func(o *appOptions) { o.now = now }
}

func NewApp(client Backend, store LocationStore, cfg *config.Config, opts ...Option) *App {
	o := appOptions{clock: debounce.RealClock, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.launcher == nil {
		o.launcher = media.NewLauncher(cfg)
	}

	headlineList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	headlineList.Title = CompactLogo + " top headlines"
	headlineList.SetShowStatusBar(false)
	headlineList.SetFilteringEnabled(false)
	headlineList.SetShowHelp(false)

	searchList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	searchList.SetShowTitle(false)
	searchList.SetShowStatusBar(false)
	searchList.SetFilteringEnabled(false)
	searchList.SetShowHelp(false)

	si := textinput.New()
	si.Placeholder = "Search for news..."
	si.CharLimit = validation.MaxQueryLength

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(AccentColor)

	app := &App{
		config:       cfg,
		client:       client,
		store:        store,
		launcher:     o.launcher,
		keys:         newKeyMap(),
		filterPanel:  newFilterPanel(),
		headlineList: headlineList,
		searchList:   searchList,
		searchInput:  si,
		viewport:     viewport.New(0, 0),
		help:         help.New(),
		spinner:      sp,
		view:         ViewHeadlines,
		previousView: ViewHeadlines,
		settled:      make(chan string, 1),
		now:          o.now,
	}

	app.search = app.seedSearch(o.location, o.hasLocation)
	app.headlines = app.seedHeadlines()
	app.searchInput.SetValue(app.search.Query())
	app.filterPanel.Load(app.search.Filters())

	app.searchSession = session.New(client, session.WithCommitHook(app.persist(storage.PageSearch)))
	app.headlinesSession = session.New(client, session.WithCommitHook(app.persist(storage.PageHeadlines)))

	quiet := cfg.Search.Debounce
	if quiet <= 0 {
		quiet = debounce.DefaultQuiet
	}
	app.gate = debounce.New(quiet, debounce.Latest(app.settled), debounce.WithClock(o.clock))

	if o.hasLocation {
		app.view = ViewSearch
		app.searchInput.Focus()
	}

	app.keyHandler = NewKeyHandler(app, cfg)
	return app
}

func (a *App) seedSearch(location string, explicit bool) *query.Controller {
	if !explicit && a.store != nil {
		stored, err := a.store.GetLocation(storage.PageSearch)
		if err != nil {
			debuglog.Warnf("reading stored search location: %v", err)
		}
		location = stored
	}

	values, err := url.ParseQuery(strings.TrimPrefix(location, "?"))
	if err != nil {
		debuglog.Warnf("ignoring malformed location %q: %v", location, err)
		values = url.Values{}
	}
	c := query.FromValues(values)

	if values.Get(query.KeySortBy) == "" && a.config.Search.DefaultSort != "" {
		fs := c.Filters()
		fs.SortBy = query.ParseSortBy(a.config.Search.DefaultSort)
		page := c.Page()
		c.SetFilters(fs)
		c.SetPage(page)
	}
	return c
}

func (a *App) seedHeadlines() *query.Headlines {
	if a.store == nil {
		return query.NewHeadlines()
	}
	stored, err := a.store.GetLocation(storage.PageHeadlines)
	if err != nil {
		debuglog.Warnf("reading stored headlines location: %v", err)
		return query.NewHeadlines()
	}
	values, err := url.ParseQuery(stored)
	if err != nil {
		return query.NewHeadlines()
	}
	return query.HeadlinesFromValues(values)
}

// persist writes every sent descriptor's location through to the store.
func (a *App) persist(page storage.Page) func(query.Descriptor) {
	return func(d query.Descriptor) {
		if a.store == nil {
			return
		}
		if err := a.store.SaveLocation(page, d.Location()); err != nil {
			debuglog.Warnf("saving %s location: %v", page, err)
		}
	}
}

// forget drops page's stored location so the next run starts idle.
func (a *App) forget(page storage.Page) {
	if a.store == nil {
		return
	}
	if err := a.store.ClearLocation(page); err != nil {
		debuglog.Warnf("clearing %s location: %v", page, err)
	}
}

func (a *App) pageSize() int {
	if a.config.Search.PageSize > 0 {
		return a.config.Search.PageSize
	}
	return query.DefaultPageSize
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	maxWidth := a.config.UI.Article.WordWrapMaxWidth
	if maxWidth <= 0 {
		maxWidth = 120
	}
	minWidth := a.config.UI.Article.WordWrapMinWidth
	if minWidth <= 0 {
		minWidth = 40
	}

	wordWrapWidth := (a.width * 9) / 10
	if wordWrapWidth > maxWidth {
		wordWrapWidth = maxWidth
	}
	if wordWrapWidth < minWidth {
		wordWrapWidth = minWidth
	}
	if a.width < 50 {
		wordWrapWidth = a.width - 4
		if wordWrapWidth < 20 {
			wordWrapWidth = 20
		}
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		a.loadFilters(),
		a.fetchHeadlines(),
		waitForSettled(a.settled),
		a.spinner.Tick,
	}
	// A seeded query is already settled.
	if q := validation.SanitizeQuery(a.search.Query()); q != "" {
		a.settledQuery = q
		cmds = append(cmds, a.fetchSearch())
	}
	return tea.Batch(cmds...)
}

// Close stops the debounce gate and cancels in-flight requests.
func (a *App) Close() {
	if a.closed {
		return
	}
	a.closed = true
	a.gate.Stop()
	a.searchSession.Close()
	a.headlinesSession.Close()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case querySettledMsg:
		return a, tea.Batch(a.onSettled(msg.query), waitForSettled(a.settled), a.spinner.Tick)

	case fetchedMsg:
		s := a.sessionFor(msg.kind)
		if s.Apply(msg.result) {
			a.syncList(msg.kind)
		}

	case filtersLoadedMsg:
		a.setFilterOptions(msg.options)

	case articleRenderedMsg:
		if a.view == ViewReader {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
			a.loadingArticle = false
		}

	case openedMsg:
		return a, a.setStatus(MsgOpened(truncateMiddle(msg.target, 60)), StatusSuccess, 3*time.Second)

	case clearStatusMsg:
		a.clearStatus(msg.id)

	case spinner.TickMsg:
		if !a.loading() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case errorMsg:
		debuglog.Errorf("%v", msg.err)
		return a, a.setStatus(msg.err.Error(), StatusError, 5*time.Second)
	}

	if a.view == ViewReader {
		switch msg.(type) {
		case tea.WindowSizeMsg, tea.MouseMsg:
			var cmd tea.Cmd
			a.viewport, cmd = a.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return a, tea.Batch(cmds...)
}

// onSettled commits a debounced query. An unchanged descriptor that already
// produced results is not re-sent.
func (a *App) onSettled(raw string) tea.Cmd {
	a.settledQuery = validation.SanitizeQuery(raw)
	d := a.search.Descriptor(a.settledQuery, a.pageSize())

	st := a.searchSession.State()
	if st.HasSearched && st.Phase != session.PhaseFailed && d == st.Descriptor {
		return nil
	}
	if d.Blank() {
		a.forget(storage.PageSearch)
	}
	return a.begin(query.KindSearch, d)
}

func (a *App) setFilterOptions(opts *api.FilterOptions) {
	if opts == nil {
		return
	}
	a.filterOptions = opts
	a.categories = opts.Categories
	a.filterPanel.SetOptions(opts)
}

func (a *App) loading() bool {
	return a.searchSession.State().Loading || a.headlinesSession.State().Loading || a.loadingArticle
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height

	listHeight := height - 7
	if listHeight < 5 {
		listHeight = 5
	}
	a.headlineList.SetSize(width, listHeight)

	searchListHeight := height - 12
	if searchListHeight < 5 {
		searchListHeight = 5
	}
	a.searchList.SetSize(width, searchListHeight)

	a.viewport.Width = width
	a.viewport.Height = height - 3
	a.help.Width = width

	inputWidth := width - 8
	if inputWidth < 10 {
		inputWidth = width - 4
	}
	a.searchInput.Width = inputWidth
}

// syncList copies a session's articles into its list.
func (a *App) syncList(kind query.Kind) {
	st := a.sessionFor(kind).State()
	items := make([]list.Item, len(st.Articles))
	for i, art := range st.Articles {
		items[i] = articleItem{article: art, now: a.now, descLen: a.config.UI.Article.MaxDescriptionLength}
	}
	if kind == query.KindHeadlines {
		a.headlineList.SetItems(items)
		a.headlineList.Select(0)
		return
	}
	a.searchList.SetItems(items)
	a.searchList.Select(0)
}

func (a *App) View() string {
	var content string
	bodyHeight := a.height - 3

	switch a.view {
	case ViewHeadlines:
		content = a.headlinesView(bodyHeight)
	case ViewSearch:
		content = a.searchView(bodyHeight)
	case ViewFilters:
		content = ContentWrapper(a.width, bodyHeight).Padding(1, 2).Render(a.filterPanel.View(a.width - 4))
	case ViewReader:
		if a.loadingArticle {
			content = renderCentered(a.width, bodyHeight, a.spinner.View()+" "+renderMuted(MsgLoadingArticle))
		} else {
			content = a.viewport.View()
		}
	case ViewHelp:
		a.help.ShowAll = true
		content = ContentWrapper(a.width, bodyHeight).Padding(1, 2).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				renderHeader("› keys", "", a.width),
				"",
				a.help.View(a.keys),
			))
	}

	separatorWidth := a.width - 2
	if separatorWidth < 0 {
		separatorWidth = 0
	}
	separator := SeparatorStyle.Render("─" + strings.Repeat("─", separatorWidth))

	return lipgloss.JoinVertical(lipgloss.Top, content, separator, a.statusBar())
}

func (a *App) headlinesView(height int) string {
	st := a.headlinesSession.State()

	rows := []string{renderCategoryBar(a.categories, a.headlines.Category(), a.width), ""}
	if st.Err != "" {
		rows = append(rows, renderErrorPanel(st.Err, a.width))
	}

	switch {
	case st.Loading && len(st.Articles) == 0:
		rows = append(rows, renderCentered(a.width, height-4, a.spinner.View()+" "+renderMuted(MsgLoading)))
	case st.NoResults():
		rows = append(rows, renderCentered(a.width, height-4, renderMuted(MsgNoResults)))
	default:
		if st.Loading {
			a.headlineList.Title = CompactLogo + " top headlines " + a.spinner.View()
		} else {
			a.headlineList.Title = CompactLogo + " top headlines"
		}
		rows = append(rows, a.headlineList.View())
	}

	rows = append(rows, renderPagination(a.headlines.Page(), st.TotalPages))
	return ContentWrapper(a.width, height).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a *App) searchView(height int) string {
	st := a.searchSession.State()

	title := "› search"
	if st.Loading {
		title += " " + a.spinner.View()
	}
	rows := []string{
		renderHeader(title, a.filterSummary(), a.width),
		renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width),
	}

	bodyHeight := height - 6
	switch {
	case !st.HasSearched:
		rows = append(rows, renderCentered(a.width, bodyHeight, GetWelcomeMessage()))
	case st.Loading && len(st.Articles) == 0:
		rows = append(rows, renderCentered(a.width, bodyHeight, a.spinner.View()+" "+renderMuted(MsgSearching)))
	case st.Err != "":
		rows = append(rows, renderErrorPanel(st.Err, a.width))
		if len(st.Articles) > 0 {
			rows = append(rows, a.searchList.View())
		}
	case st.NoResults():
		rows = append(rows, renderCentered(a.width, bodyHeight, renderMuted(MsgNoResults)))
	default:
		rows = append(rows,
			renderMuted(MsgResultsFor(a.settledQuery)+" • "+MsgResultsCount(st.TotalResults)),
			a.searchList.View(),
		)
	}

	if st.HasSearched {
		rows = append(rows, renderPagination(a.search.Page(), st.TotalPages))
	}
	return ContentWrapper(a.width, height).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// filterSummary describes non-default filters in one line.
func (a *App) filterSummary() string {
	fs := a.search.Filters()
	if fs.IsDefault() {
		return ""
	}
	var parts []string
	if fs.Language != "" {
		name := fs.Language
		if a.filterOptions != nil {
			name = a.filterOptions.LanguageName(fs.Language)
		}
		parts = append(parts, "language: "+name)
	}
	sortLabel := string(fs.SortBy)
	if a.filterOptions != nil {
		sortLabel = a.filterOptions.SortLabel(sortLabel)
	}
	parts = append(parts, "sort: "+sortLabel)
	if fs.From != "" {
		parts = append(parts, "from: "+fs.From)
	}
	if fs.To != "" {
		parts = append(parts, "to: "+fs.To)
	}
	return strings.Join(parts, " • ")
}

func (a *App) statusBar() string {
	if a.status.text != "" {
		return StatusBarStyle.Width(a.width).Render(a.status.render())
	}
	commands := a.keyHandler.GetHelpForCurrentView()
	if len(commands) == 0 {
		return ""
	}
	return StatusBarStyle.Width(a.width).Render(strings.Join(commands, " • "))
}

type articleItem struct {
	article api.Article
	now     func() time.Time
	descLen int
}

func (i articleItem) Title() string { return i.article.Title }

func (i articleItem) Description() string {
	meta := SourceStyle.Render(i.article.Source.Name)
	if rel := formatRelative(i.article.PublishedAt, i.now()); rel != "" {
		meta += TimeStyle.Render(" • " + rel)
	}
	if i.article.Description == "" {
		return meta
	}
	descLen := i.descLen
	if descLen <= 0 {
		descLen = 120
	}
	return meta + renderMuted(" • "+truncateText(i.article.Description, descLen))
}

func (i articleItem) FilterValue() string { return i.article.Title }
