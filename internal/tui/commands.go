package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/newsdesk/internal/api"
	"github.com/pders01/newsdesk/internal/debuglog"
	"github.com/pders01/newsdesk/internal/query"
	"github.com/pders01/newsdesk/internal/session"
)

type fetchedMsg struct {
	kind   query.Kind
	result session.Result
}

type filtersLoadedMsg struct {
	options *api.FilterOptions
}

type querySettledMsg struct {
	query string
}

type articleRenderedMsg struct {
	content string
}

type openedMsg struct {
	target string
}

// waitForSettled blocks until the debounce gate delivers a value. It is
// re-issued after every querySettledMsg so exactly one reader is pending.
func waitForSettled(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		q, ok := <-ch
		if !ok {
			return nil
		}
		return querySettledMsg{query: q}
	}
}

func (a *App) fetchSearch() tea.Cmd {
	d := a.search.Descriptor(a.settledQuery, a.pageSize())
	return a.begin(query.KindSearch, d)
}

func (a *App) fetchHeadlines() tea.Cmd {
	return a.begin(query.KindHeadlines, a.headlines.Descriptor(a.pageSize()))
}

func (a *App) sessionFor(kind query.Kind) *session.Session {
	if kind == query.KindHeadlines {
		return a.headlinesSession
	}
	return a.searchSession
}

// begin starts a fetch on the page's session. The returned command performs
// the network call off the event loop; nil means nothing was sent.
func (a *App) begin(kind query.Kind, d query.Descriptor) tea.Cmd {
	s := a.sessionFor(kind)
	req, ok := s.Begin(d)
	a.syncList(kind)
	if !ok {
		return nil
	}
	return func() tea.Msg {
		return fetchedMsg{kind: kind, result: s.Run(req)}
	}
}

func (a *App) retry(kind query.Kind) tea.Cmd {
	s := a.sessionFor(kind)
	req, ok := s.Retry()
	if !ok {
		return nil
	}
	a.syncList(kind)
	return func() tea.Msg {
		return fetchedMsg{kind: kind, result: s.Run(req)}
	}
}

// loadFilters fetches the filter choices once. Failure is logged and the
// built-in sort labels stay in place.
func (a *App) loadFilters() tea.Cmd {
	client := a.client
	return func() tea.Msg {
		opts, err := client.Filters(context.Background())
		if err != nil {
			debuglog.Warnf("%v", wrapErr("loading filter options", err))
			return nil
		}
		return filtersLoadedMsg{options: opts}
	}
}

func (a *App) renderArticle(article api.Article) tea.Cmd {
	markdown := articleMarkdown(article, a.now())
	r, err := a.getRenderer()
	if err != nil {
		content := "Error initializing renderer: " + err.Error()
		return func() tea.Msg { return articleRenderedMsg{content: content} }
	}
	return func() tea.Msg {
		rendered, err := r.Render(markdown)
		if err != nil {
			return articleRenderedMsg{content: fmt.Sprintf("Failed to render article: %s\n\nPress Escape to go back.", err.Error())}
		}
		return articleRenderedMsg{content: rendered}
	}
}

// articleMarkdown lays out one article for the reader.
func articleMarkdown(article api.Article, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", article.Title)

	meta := []string{"**" + article.Source.Name + "**"}
	if rel := formatRelative(article.PublishedAt, now); rel != "" {
		meta = append(meta, rel)
	}
	if article.Author != "" {
		meta = append(meta, "By "+article.Author)
	}
	b.WriteString(strings.Join(meta, " · "))
	b.WriteString("\n\n")

	if !article.PublishedAt.IsZero() {
		fmt.Fprintf(&b, "*Published: %s*\n\n", article.PublishedAt.Format(time.RFC1123))
	}

	b.WriteString("---\n\n")

	if article.Description != "" {
		b.WriteString(article.Description)
		b.WriteString("\n\n")
	}
	if article.Content != "" && article.Content != article.Description {
		b.WriteString(article.Content)
		b.WriteString("\n\n")
	}

	if article.URL != "" {
		fmt.Fprintf(&b, "[Read full article](%s)\n\n", article.URL)
	}
	if article.URLToImage != "" {
		fmt.Fprintf(&b, "Image: %s\n", article.URLToImage)
	}
	return b.String()
}

func (a *App) openURL(target string) tea.Cmd {
	launcher := a.launcher
	return func() tea.Msg {
		if launcher == nil {
			return errorMsg{err: fmt.Errorf("no opener configured")}
		}
		if err := launcher.Open(target); err != nil {
			return errorMsg{err: fmt.Errorf("failed to open %s: %w", target, err)}
		}
		return openedMsg{target: target}
	}
}
