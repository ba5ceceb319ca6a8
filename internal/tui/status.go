package tui

import (
	"fmt"
	"strings"
)

// Canonical short status messages used across the app.
const (
	MsgLoading        = "Loading…"
	MsgSearching      = "Searching…"
	MsgLoadingArticle = "Loading article…"
	MsgStartSearch    = "Start your search"
	MsgStartSearchSub = "Enter a keyword or topic to find relevant news articles"
	MsgNoResults      = "No articles found. Try different keywords or filters."
	MsgFiltersApplied = "Filters applied"
	MsgFiltersReset   = "Filters reset"
	MsgRetry          = "ctrl+r: try again"
	MsgNoLink         = "Article has no link"
	MsgNoImage        = "Article has no image"
)

func MsgResultsFor(q string) string {
	return fmt.Sprintf("Showing results for %q", strings.TrimSpace(q))
}

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

func MsgPageOf(page, total int) string {
	return fmt.Sprintf("Page %d of %d", page, total)
}

func MsgOpened(target string) string {
	return "Opened " + target
}
