// Package query holds the page-level search state and the rules for how it
// changes, plus its projection to and from a location query string.
package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Controller owns SearchQuery, FilterSet and PageCursor for the search page.
// It is not safe for concurrent use; the UI event loop is its only writer.
type Controller struct {
	query   string
	filters FilterSet
	page    int
}

func NewController() *Controller {
	return &Controller{filters: DefaultFilters(), page: 1}
}

// FromValues seeds a controller from location parameters. Missing or
// malformed values fall back to their defaults.
func FromValues(v url.Values) *Controller {
	c := NewController()
	c.query = v.Get(KeyQuery)
	c.filters = FilterSet{
		Language: v.Get(KeyLanguage),
		SortBy:   ParseSortBy(v.Get(KeySortBy)),
		From:     v.Get(KeyFrom),
		To:       v.Get(KeyTo),
	}
	c.page = parsePage(v.Get(KeyPage))
	return c
}

// ParseLocation seeds a controller from a raw query string such as
// "q=climate&sortBy=relevancy&page=2". A leading "?" is ignored.
func ParseLocation(location string) (*Controller, error) {
	v, err := url.ParseQuery(strings.TrimPrefix(location, "?"))
	if err != nil {
		return nil, err
	}
	return FromValues(v), nil
}

func parsePage(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (c *Controller) Query() string      { return c.query }
func (c *Controller) Filters() FilterSet { return c.filters }
func (c *Controller) Page() int          { return c.page }

// SetQuery replaces the free text and rewinds to the first page. Fetching is
// left to the debounce gate.
func (c *Controller) SetQuery(text string) {
	c.query = text
	c.page = 1
}

// SetFilters replaces the whole filter set and rewinds to the first page.
func (c *Controller) SetFilters(f FilterSet) {
	c.filters = f
	c.page = 1
}

// SetPage moves the cursor only. n comes from a pagination control that
// emits in-range values, so it is not clamped.
func (c *Controller) SetPage(n int) {
	c.page = n
}

// ResetFilters restores DefaultFilters and rewinds to the first page.
func (c *Controller) ResetFilters() {
	c.SetFilters(DefaultFilters())
}

// Descriptor combines the settled query with the current filters and page.
func (c *Controller) Descriptor(settled string, pageSize int) Descriptor {
	return Descriptor{
		Kind:     KindSearch,
		Query:    settled,
		Filters:  c.filters,
		Page:     c.page,
		PageSize: pageSize,
	}
}

// Headlines is the headlines page counterpart of Controller.
type Headlines struct {
	category string
	page     int
}

func NewHeadlines() *Headlines {
	return &Headlines{page: 1}
}

// HeadlinesFromValues seeds headlines state from location parameters.
func HeadlinesFromValues(v url.Values) *Headlines {
	return &Headlines{category: v.Get(KeyCategory), page: parsePage(v.Get(KeyPage))}
}

func (h *Headlines) Category() string { return h.category }
func (h *Headlines) Page() int        { return h.page }

// SetCategory switches category ("" means all) and rewinds to the first page.
func (h *Headlines) SetCategory(category string) {
	h.category = category
	h.page = 1
}

func (h *Headlines) SetPage(n int) {
	h.page = n
}

func (h *Headlines) Descriptor(pageSize int) Descriptor {
	return Descriptor{
		Kind:     KindHeadlines,
		Category: h.category,
		Page:     h.page,
		PageSize: pageSize,
	}
}
