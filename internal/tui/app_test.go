package tui

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/newsdesk/internal/api"
	"github.com/pders01/newsdesk/internal/config"
	"github.com/pders01/newsdesk/internal/debounce"
	"github.com/pders01/newsdesk/internal/query"
	"github.com/pders01/newsdesk/internal/session"
	"github.com/pders01/newsdesk/internal/storage"
)

var fixedNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

type fakeBackend struct {
	mu      sync.Mutex
	calls   []url.Values
	kinds   []string
	pages   map[string]*api.ResultPage
	err     error
	options *api.FilterOptions
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{pages: map[string]*api.ResultPage{}}
}

func (f *fakeBackend) page(kind string, params url.Values) (*api.ResultPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, params)
	f.kinds = append(f.kinds, kind)
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.pages[params.Get("q")+params.Get("category")]; ok {
		return p, nil
	}
	return &api.ResultPage{Articles: []api.Article{}, TotalPages: 1}, nil
}

func (f *fakeBackend) Search(_ context.Context, params url.Values) (*api.ResultPage, error) {
	return f.page("search", params)
}

func (f *fakeBackend) Headlines(_ context.Context, params url.Values) (*api.ResultPage, error) {
	return f.page("headlines", params)
}

func (f *fakeBackend) Filters(context.Context) (*api.FilterOptions, error) {
	if f.options == nil {
		return nil, errors.New("no filters")
	}
	return f.options, nil
}

func (f *fakeBackend) lastCall() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

type fakeStore struct {
	mu        sync.Mutex
	locations map[storage.Page]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{locations: map[storage.Page]string{}}
}

func (s *fakeStore) SaveLocation(page storage.Page, q string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[page] = q
	return nil
}

func (s *fakeStore) GetLocation(page storage.Page) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locations[page], nil
}

func (s *fakeStore) ClearLocation(page storage.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locations, page)
	return nil
}

type fakeOpener struct {
	mu     sync.Mutex
	opened []string
	err    error
}

func (o *fakeOpener) Open(target string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.opened = append(o.opened, target)
	return nil
}

type testApp struct {
	*App
	backend *fakeBackend
	store   *fakeStore
	opener  *fakeOpener
	clock   *debounce.ManualClock
}

func newTestApp(t *testing.T, opts ...Option) *testApp {
	t.Helper()
	return newTestAppWith(t, newFakeBackend(), newFakeStore(), config.TestConfig(), opts...)
}

func newTestAppWith(t *testing.T, backend *fakeBackend, store *fakeStore, cfg *config.Config, opts ...Option) *testApp {
	t.Helper()
	clock := debounce.NewManualClock()
	opener := &fakeOpener{}
	all := append([]Option{
		WithClock(clock),
		WithLauncher(opener),
		WithNow(func() time.Time { return fixedNow }),
	}, opts...)
	app := NewApp(backend, store, cfg, all...)
	t.Cleanup(app.Close)
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return &testApp{App: app, backend: backend, store: store, opener: opener, clock: clock}
}

// runCmd executes cmd and any batched children, collecting the messages that
// arrive within timeout. Ticks and other slow commands are dropped.
func runCmd(cmd tea.Cmd, timeout time.Duration) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, runCmd(c, timeout)...)
			}
			return out
		}
		return []tea.Msg{msg}
	case <-time.After(timeout):
		return nil
	}
}

func findMsg[T tea.Msg](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	for _, m := range runCmd(cmd, 200*time.Millisecond) {
		if v, ok := m.(T); ok {
			return v
		}
	}
	var zero T
	t.Fatalf("no %T produced", zero)
	return zero
}

// settle commits q as if the debounce gate had fired and applies the result.
func (a *testApp) settle(t *testing.T, q string) {
	t.Helper()
	cmd := a.onSettled(q)
	require.NotNil(t, cmd)
	a.Update(findMsg[fetchedMsg](t, cmd))
}

func (a *testApp) press(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = a.Update(keyMsg(k))
	}
	return cmd
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func articles(titles ...string) []api.Article {
	out := make([]api.Article, 0, len(titles))
	for i, title := range titles {
		out = append(out, api.Article{
			Title:       title,
			Source:      api.Source{Name: "Wire"},
			Description: "About " + title,
			URL:         "https://example.com/" + title,
			PublishedAt: fixedNow.Add(-time.Duration(i+1) * time.Hour),
		})
	}
	return out
}

func TestNewApp_StartsOnHeadlines(t *testing.T) {
	a := newTestApp(t)

	assert.Equal(t, ViewHeadlines, a.view)
	assert.False(t, a.searchInput.Focused())
	assert.Equal(t, "", a.search.Query())
	assert.Equal(t, query.DefaultFilters(), a.search.Filters())
}

func TestNewApp_SeedsFromLocation(t *testing.T) {
	a := newTestApp(t, WithLocation("?q=climate&language=en&sortBy=popularity&page=2"))

	assert.Equal(t, ViewSearch, a.view)
	assert.True(t, a.searchInput.Focused())
	assert.Equal(t, "climate", a.searchInput.Value())
	assert.Equal(t, "en", a.search.Filters().Language)
	assert.Equal(t, query.SortPopularity, a.search.Filters().SortBy)
	assert.Equal(t, 2, a.search.Page())
}

func TestNewApp_SeedsFromStore(t *testing.T) {
	store := newFakeStore()
	store.locations[storage.PageSearch] = "q=mars&page=3"
	store.locations[storage.PageHeadlines] = "category=sports&page=2"
	cfg := config.TestConfig()
	cfg.Search.DefaultSort = "relevancy"

	a := newTestAppWith(t, newFakeBackend(), store, cfg)

	assert.Equal(t, "mars", a.search.Query())
	assert.Equal(t, query.SortRelevancy, a.search.Filters().SortBy)
	assert.Equal(t, 3, a.search.Page())
	assert.Equal(t, "sports", a.headlines.Category())
	assert.Equal(t, 2, a.headlines.Page())
}

func TestInit_SeededQueryFetchesImmediately(t *testing.T) {
	a := newTestApp(t, WithLocation("q=climate"))

	a.Init()

	assert.Equal(t, "climate", a.settledQuery)
	st := a.searchSession.State()
	assert.True(t, st.Loading)
	assert.Equal(t, "climate", st.Descriptor.Query)
	assert.True(t, a.headlinesSession.State().Loading)
}

func TestTyping_SettlesOnceAfterQuietPeriod(t *testing.T) {
	a := newTestApp(t)
	a.press("/")
	require.True(t, a.searchInput.Focused())

	for _, r := range "climate" {
		a.press(string(r))
		a.clock.Advance(100 * time.Millisecond)
	}
	assert.Equal(t, "climate", a.search.Query())
	assert.Empty(t, a.settled, "nothing settles while typing")

	a.clock.Advance(800 * time.Millisecond)
	require.Len(t, a.settled, 1)
	assert.Equal(t, "climate", <-a.settled)
	assert.Empty(t, a.backend.calls, "settling alone sends nothing")
}

func TestTyping_EnterSettlesImmediately(t *testing.T) {
	a := newTestApp(t)
	a.press("/", "mars", "enter")

	require.Len(t, a.settled, 1)
	assert.Equal(t, "mars", <-a.settled)
	assert.True(t, a.searchInput.Focused())
}

func TestSearch_ShowsResults(t *testing.T) {
	a := newTestApp(t)
	a.backend.pages["climate"] = &api.ResultPage{Articles: articles("a", "b"), TotalPages: 4, TotalResults: 38}
	a.press("/")

	a.settle(t, "climate")

	assert.Len(t, a.searchList.Items(), 2)
	view := a.View()
	assert.Contains(t, view, `Showing results for "climate"`)
	assert.Contains(t, view, "38 results")
	assert.Contains(t, view, "Page 1 of 4")

	params := a.backend.lastCall()
	assert.Equal(t, "climate", params.Get("q"))
	assert.Equal(t, "publishedAt", params.Get("sortBy"))
	assert.Equal(t, "1", params.Get("page"))
	assert.Equal(t, "10", params.Get("page_size"))
}

func TestSearch_NoResults(t *testing.T) {
	a := newTestApp(t)
	a.press("/")

	a.settle(t, "zzzz")

	assert.True(t, a.searchSession.State().NoResults())
	assert.Contains(t, a.View(), MsgNoResults)
}

func TestSearch_IdleBeforeFirstSearch(t *testing.T) {
	a := newTestApp(t)
	a.press("/")

	assert.Contains(t, a.View(), MsgStartSearch)
	assert.NotContains(t, a.View(), MsgNoResults)
}

func TestSearch_ErrorKeepsPreviousResults(t *testing.T) {
	a := newTestApp(t)
	a.backend.pages["climate"] = &api.ResultPage{Articles: articles("a", "b"), TotalPages: 1, TotalResults: 2}
	a.press("/")
	a.settle(t, "climate")
	a.press("tab")
	require.False(t, a.searchInput.Focused())

	a.backend.err = &api.Error{Kind: api.KindNetwork, Message: api.GenericMessage, Err: errors.New("connection refused")}
	cmd := a.press("ctrl+r")
	a.Update(findMsg[fetchedMsg](t, cmd))

	st := a.searchSession.State()
	assert.Equal(t, api.GenericMessage, st.Err)
	assert.Len(t, a.searchList.Items(), 2)
	view := a.View()
	assert.Contains(t, view, api.GenericMessage)
	assert.Contains(t, view, MsgRetry)
}

func TestSearch_StaleResponseIgnored(t *testing.T) {
	a := newTestApp(t)
	a.backend.pages["first"] = &api.ResultPage{Articles: articles("old"), TotalPages: 1, TotalResults: 1}
	a.backend.pages["second"] = &api.ResultPage{Articles: articles("new1", "new2"), TotalPages: 1, TotalResults: 2}

	first := a.onSettled("first")
	second := a.onSettled("second")
	firstMsg := findMsg[fetchedMsg](t, first)
	secondMsg := findMsg[fetchedMsg](t, second)

	a.Update(secondMsg)
	a.Update(firstMsg)

	items := a.searchList.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "new1", items[0].(articleItem).article.Title)
	assert.Equal(t, "second", a.searchSession.State().Descriptor.Query)
}

func TestSearch_UnchangedQueryNotResent(t *testing.T) {
	a := newTestApp(t)
	a.settle(t, "climate")

	assert.Nil(t, a.onSettled("climate"))
	assert.Nil(t, a.onSettled("  climate "), "sanitized text is the same descriptor")
}

func TestSearch_BlankQueryReturnsToIdle(t *testing.T) {
	a := newTestApp(t)
	a.backend.pages["climate"] = &api.ResultPage{Articles: articles("a"), TotalPages: 1, TotalResults: 1}
	a.press("/")
	a.settle(t, "climate")
	calls := len(a.backend.calls)

	assert.Nil(t, a.onSettled("   "))

	st := a.searchSession.State()
	assert.False(t, st.HasSearched)
	assert.Empty(t, a.searchList.Items())
	assert.Len(t, a.backend.calls, calls)
	assert.Contains(t, a.View(), MsgStartSearch)
}

func TestSearch_RetryWhileIdleSendsNothing(t *testing.T) {
	a := newTestApp(t)
	a.backend.pages["climate"] = &api.ResultPage{Articles: articles("a"), TotalPages: 1, TotalResults: 1}
	a.press("/")
	a.settle(t, "climate")
	require.Contains(t, a.store.locations, storage.PageSearch)
	calls := len(a.backend.calls)

	a.searchInput.SetValue("")
	assert.Nil(t, a.onSettled(""))
	require.Equal(t, session.PhaseIdle, a.searchSession.State().Phase)
	assert.NotContains(t, a.store.locations, storage.PageSearch)

	a.searchInput.Blur()
	runCmd(a.press("ctrl+r"), 200*time.Millisecond)

	st := a.searchSession.State()
	assert.Equal(t, session.PhaseIdle, st.Phase)
	assert.False(t, st.HasSearched)
	assert.Len(t, a.backend.calls, calls)
	assert.NotContains(t, a.store.locations, storage.PageSearch)
	assert.Contains(t, a.View(), MsgStartSearch)
}

func TestFilters_ApplyValidatesAndFetches(t *testing.T) {
	a := newTestApp(t)
	a.setFilterOptions(&api.FilterOptions{
		Languages: []api.Language{{Code: "en", Name: "English"}, {Code: "de", Name: "German"}},
		SortOptions: []api.SortOption{
			{Value: "publishedAt", Label: "Latest"},
			{Value: "relevancy", Label: "Most Relevant"},
		},
	})
	a.backend.pages["climate"] = &api.ResultPage{Articles: articles("a"), TotalPages: 1, TotalResults: 1}
	a.press("/")
	a.settle(t, "climate")
	a.press("tab", "f")
	require.Equal(t, ViewFilters, a.view)

	a.press("right")             // English
	a.press("tab", "right")      // Most Relevant
	a.press("tab", "2024-03-10") // from
	a.press("tab", "2024-03-01") // to, before from
	a.press("enter")

	assert.Equal(t, ViewFilters, a.view, "invalid range keeps the panel open")
	assert.NotEmpty(t, a.filterPanel.err)
	assert.Equal(t, query.DefaultFilters(), a.search.Filters())

	a.filterPanel.to.SetValue("2024-03-20")
	cmd := a.press("enter")

	assert.Equal(t, ViewSearch, a.view)
	assert.Equal(t, query.FilterSet{
		Language: "en",
		SortBy:   query.SortRelevancy,
		From:     "2024-03-10",
		To:       "2024-03-20",
	}, a.search.Filters())
	assert.Equal(t, MsgFiltersApplied, a.status.text)

	a.Update(findMsg[fetchedMsg](t, cmd))
	params := a.backend.lastCall()
	assert.Equal(t, "climate", params.Get("q"))
	assert.Equal(t, "en", params.Get("language"))
	assert.Equal(t, "relevancy", params.Get("sortBy"))
	assert.Equal(t, "2024-03-10", params.Get("from"))
	assert.Equal(t, "2024-03-20", params.Get("to"))
	assert.Contains(t, a.filterSummary(), "language: English")
}

func TestFilters_ResetRestoresDefaults(t *testing.T) {
	a := newTestApp(t, WithLocation("q=climate&language=en&from=2024-01-01"))
	a.Init()
	a.searchInput.Blur()

	a.press("f")
	require.Equal(t, ViewFilters, a.view)
	a.press("ctrl+x")

	assert.Equal(t, ViewSearch, a.view)
	assert.Equal(t, query.DefaultFilters(), a.search.Filters())
	assert.Equal(t, 1, a.search.Page())
	assert.Equal(t, MsgFiltersReset, a.status.text)
}

func TestFilters_EscapeDiscardsDraft(t *testing.T) {
	a := newTestApp(t)
	a.setFilterOptions(&api.FilterOptions{Languages: []api.Language{{Code: "en", Name: "English"}}})
	a.press("/", "tab")
	a.searchInput.Blur()

	a.press("f", "right", "esc")

	assert.Equal(t, ViewSearch, a.view)
	assert.Equal(t, "", a.search.Filters().Language)
	assert.Equal(t, "", a.filterPanel.FilterSet().Language)
}

func TestPagination_StaysInRange(t *testing.T) {
	a := newTestApp(t)
	a.backend.pages["climate"] = &api.ResultPage{Articles: articles("a", "b"), TotalPages: 2, TotalResults: 12}
	a.press("/")
	a.settle(t, "climate")
	a.press("tab")

	assert.Nil(t, a.press("p"), "no page before the first")

	cmd := a.press("n")
	assert.Equal(t, 2, a.search.Page())
	a.Update(findMsg[fetchedMsg](t, cmd))
	assert.Equal(t, "2", a.backend.lastCall().Get("page"))

	assert.Nil(t, a.press("n"), "no page after the last")
	assert.Equal(t, 2, a.search.Page())
}

func TestHeadlines_CategoryCycles(t *testing.T) {
	a := newTestApp(t)
	a.setFilterOptions(&api.FilterOptions{Categories: []string{"business", "sports"}})

	cmd := a.press("tab")
	assert.Equal(t, "business", a.headlines.Category())
	a.Update(findMsg[fetchedMsg](t, cmd))
	assert.Equal(t, "business", a.backend.lastCall().Get("category"))

	a.press("shift+tab")
	assert.Equal(t, "", a.headlines.Category())
	a.press("shift+tab")
	assert.Equal(t, "sports", a.headlines.Category())
}

func TestHeadlines_NoCategoriesIsNoop(t *testing.T) {
	a := newTestApp(t)
	assert.Nil(t, a.press("tab"))
	assert.Equal(t, "", a.headlines.Category())
}

func TestLocationPersistedOnSend(t *testing.T) {
	a := newTestApp(t)

	a.settle(t, "climate")
	assert.Equal(t, "q=climate&sortBy=publishedAt&page=1&page_size=10", a.store.locations[storage.PageSearch])

	a.Update(findMsg[fetchedMsg](t, a.fetchHeadlines()))
	assert.Equal(t, "page=1&page_size=10", a.store.locations[storage.PageHeadlines])
}

func TestReader_OpensAndReturns(t *testing.T) {
	a := newTestApp(t)
	a.backend.pages[""] = &api.ResultPage{Articles: articles("lead"), TotalPages: 1, TotalResults: 1}
	a.Update(findMsg[fetchedMsg](t, a.fetchHeadlines()))
	require.Len(t, a.headlineList.Items(), 1)

	cmd := a.press("enter")
	require.Equal(t, ViewReader, a.view)
	require.NotNil(t, a.currentArticle)
	assert.Equal(t, "lead", a.currentArticle.Title)
	assert.True(t, a.loadingArticle)

	a.Update(findMsg[articleRenderedMsg](t, cmd))
	assert.False(t, a.loadingArticle)
	assert.Contains(t, a.View(), "lead")

	a.press("esc")
	assert.Equal(t, ViewHeadlines, a.view)
	assert.Nil(t, a.currentArticle)
}

func TestOpenLinkAndImage(t *testing.T) {
	a := newTestApp(t)
	a.backend.pages[""] = &api.ResultPage{Articles: articles("lead"), TotalPages: 1, TotalResults: 1}
	a.Update(findMsg[fetchedMsg](t, a.fetchHeadlines()))

	opened := findMsg[openedMsg](t, a.press("o"))
	assert.Equal(t, "https://example.com/lead", opened.target)
	assert.Equal(t, []string{"https://example.com/lead"}, a.opener.opened)

	a.press("i")
	assert.Equal(t, MsgNoImage, a.status.text)
}

func TestOpenFailureShowsError(t *testing.T) {
	a := newTestApp(t)
	a.backend.pages[""] = &api.ResultPage{Articles: articles("lead"), TotalPages: 1, TotalResults: 1}
	a.Update(findMsg[fetchedMsg](t, a.fetchHeadlines()))
	a.opener.err = errors.New("no viewer")

	msg := findMsg[errorMsg](t, a.press("o"))
	a.Update(msg)

	assert.Equal(t, StatusError, a.status.kind)
	assert.Contains(t, a.status.text, "no viewer")
}

func TestHelpToggles(t *testing.T) {
	a := newTestApp(t)

	a.press("?")
	assert.Equal(t, ViewHelp, a.view)
	assert.Contains(t, a.View(), "next category")

	a.press("x")
	assert.Equal(t, ViewHeadlines, a.view)
}

func TestQuitStopsGate(t *testing.T) {
	a := newTestApp(t)
	a.press("/", "abc")
	require.True(t, a.gate.Pending())

	cmd := a.press("ctrl+c")

	assert.True(t, a.closed)
	assert.False(t, a.gate.Pending())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestFiltersLoadedMsgInstallsOptions(t *testing.T) {
	backend := newFakeBackend()
	backend.options = &api.FilterOptions{
		Languages:  []api.Language{{Code: "fr", Name: "French"}},
		Categories: []string{"science"},
	}
	a := newTestAppWith(t, backend, newFakeStore(), config.TestConfig())

	a.Update(findMsg[filtersLoadedMsg](t, a.loadFilters()))

	assert.Equal(t, []string{"science"}, a.categories)
	assert.Contains(t, a.View(), "Science")
}

func TestArticleMarkdown(t *testing.T) {
	art := api.Article{
		Title:       "Rates hold",
		Author:      "J. Doe",
		Source:      api.Source{Name: "Wire"},
		Description: "The bank held rates.",
		URL:         "https://example.com/rates",
		PublishedAt: fixedNow.Add(-2 * time.Hour),
	}

	md := articleMarkdown(art, fixedNow)

	assert.True(t, strings.HasPrefix(md, "# Rates hold"))
	assert.Contains(t, md, "**Wire**")
	assert.Contains(t, md, "2 hours ago")
	assert.Contains(t, md, "By J. Doe")
	assert.Contains(t, md, "[Read full article](https://example.com/rates)")
	assert.NotContains(t, md, "Image:")
}

func TestArticleItemDescription(t *testing.T) {
	art := articles("a")[0]
	art.Description = strings.Repeat("x", 200)
	item := articleItem{article: art, now: func() time.Time { return fixedNow }, descLen: 120}

	desc := item.Description()

	assert.Contains(t, desc, "Wire")
	assert.Contains(t, desc, "1 hour ago")
	assert.Contains(t, desc, strings.Repeat("x", 120)+"...")
	assert.NotContains(t, desc, strings.Repeat("x", 121))
	assert.Equal(t, "a", item.FilterValue())
}
