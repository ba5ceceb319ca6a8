package query

import (
	"fmt"

	"github.com/pders01/newsdesk/internal/validation"
)

// SortBy orders search results.
type SortBy string

const (
	SortRelevancy   SortBy = "relevancy"
	SortPopularity  SortBy = "popularity"
	SortPublishedAt SortBy = "publishedAt"
)

// DefaultSort is applied when nothing else is selected.
const DefaultSort = SortPublishedAt

// SortOrders lists every accepted sort value.
var SortOrders = []SortBy{SortPublishedAt, SortRelevancy, SortPopularity}

func (s SortBy) Valid() bool {
	switch s {
	case SortRelevancy, SortPopularity, SortPublishedAt:
		return true
	}
	return false
}

// ParseSortBy returns the matching sort order or DefaultSort.
func ParseSortBy(s string) SortBy {
	if sb := SortBy(s); sb.Valid() {
		return sb
	}
	return DefaultSort
}

// FilterSet is replaced wholesale on every change; callers build the full
// set rather than patching fields.
type FilterSet struct {
	Language string
	SortBy   SortBy
	From     string
	To       string
}

// DefaultFilters is what ResetFilters restores.
func DefaultFilters() FilterSet {
	return FilterSet{SortBy: DefaultSort}
}

// IsDefault reports whether f equals DefaultFilters.
func (f FilterSet) IsDefault() bool {
	return f == DefaultFilters()
}

// Validate enforces the filter panel's constraints: a known sort order, a
// 2-letter language and an ordered date range.
func (f FilterSet) Validate() error {
	if !f.SortBy.Valid() {
		return fmt.Errorf("unknown sort order %q", f.SortBy)
	}
	if err := validation.ValidateLanguage(f.Language); err != nil {
		return err
	}
	return validation.ValidateDateRange(f.From, f.To)
}
