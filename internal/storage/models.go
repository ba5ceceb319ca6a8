package storage

import (
	"time"
)

// Page names a screen whose location is persisted.
type Page string

const (
	PageSearch    Page = "search"
	PageHeadlines Page = "headlines"
)

// Location is the persisted projection of one page's query state.
type Location struct {
	Page      Page      `json:"page"`
	Query     string    `json:"query"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Metadata keys.
const (
	MetaLastRun = "last_run"
	MetaVersion = "version"
)
