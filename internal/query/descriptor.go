package query

import (
	"fmt"
	"strings"
)

// Location and request parameter keys.
const (
	KeyQuery    = "q"
	KeyLanguage = "language"
	KeyFrom     = "from"
	KeyTo       = "to"
	KeySortBy   = "sortBy"
	KeyPage     = "page"
	KeyPageSize = "page_size"
	KeyCategory = "category"
)

// DefaultPageSize is the number of articles requested per page.
const DefaultPageSize = 10

// Kind selects the backend endpoint a descriptor targets.
type Kind int

const (
	KindSearch Kind = iota
	KindHeadlines
)

func (k Kind) String() string {
	switch k {
	case KindSearch:
		return "search"
	case KindHeadlines:
		return "headlines"
	default:
		return "unknown"
	}
}

// Descriptor fully determines one fetch request.
type Descriptor struct {
	Kind     Kind
	Query    string
	Category string
	Filters  FilterSet
	Page     int
	PageSize int
}

// Blank reports whether a search descriptor has no settled text. Blank
// descriptors are never sent.
func (d Descriptor) Blank() bool {
	return d.Kind == KindSearch && strings.TrimSpace(d.Query) == ""
}

// Params returns the cleaned request parameters.
func (d Descriptor) Params() Params {
	pageSize := d.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var raw Params
	switch d.Kind {
	case KindHeadlines:
		raw = Params{
			{KeyPage, d.Page},
			{KeyPageSize, pageSize},
			{KeyCategory, d.Category},
		}
	default:
		raw = Params{
			{KeyQuery, strings.TrimSpace(d.Query)},
			{KeyLanguage, d.Filters.Language},
			{KeyFrom, d.Filters.From},
			{KeyTo, d.Filters.To},
			{KeySortBy, string(d.Filters.SortBy)},
			{KeyPage, d.Page},
			{KeyPageSize, pageSize},
		}
	}
	return Clean(raw)
}

// Location is the minimal query string projection of d.
func (d Descriptor) Location() string {
	return d.Params().Encode()
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s?%s", d.Kind, d.Location())
}
