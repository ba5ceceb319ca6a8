package api

import (
	"encoding/json"
	"strings"
	"time"
)

// UnknownSource is shown when the collaborator omits the source name.
const UnknownSource = "Unknown source"

type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Article is the record the backend returns for each story. Only Title and
// URL are reliably present; everything else may be null or missing.
type Article struct {
	Source      Source    `json:"source"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	URLToImage  string    `json:"urlToImage"`
	PublishedAt time.Time `json:"publishedAt"`
	Content     string    `json:"content"`
}

type rawArticle struct {
	Source *struct {
		ID   *string `json:"id"`
		Name *string `json:"name"`
	} `json:"source"`
	Author      *string `json:"author"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	URL         *string `json:"url"`
	URLToImage  *string `json:"urlToImage"`
	URLToImage2 *string `json:"url_to_image"`
	PublishedAt *string `json:"publishedAt"`
	Published2  *string `json:"published_at"`
	Content     *string `json:"content"`
}

func (a *Article) UnmarshalJSON(data []byte) error {
	var raw rawArticle
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*a = Article{
		Author:      strings.TrimSpace(deref(raw.Author)),
		Title:       strings.TrimSpace(deref(raw.Title)),
		Description: strings.TrimSpace(deref(raw.Description)),
		URL:         deref(raw.URL),
		URLToImage:  firstNonEmpty(deref(raw.URLToImage), deref(raw.URLToImage2)),
		Content:     deref(raw.Content),
	}

	if raw.Source != nil {
		a.Source.ID = deref(raw.Source.ID)
		a.Source.Name = strings.TrimSpace(deref(raw.Source.Name))
	}
	if a.Source.Name == "" {
		a.Source.Name = UnknownSource
	}

	if ts := firstNonEmpty(deref(raw.PublishedAt), deref(raw.Published2)); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			a.PublishedAt = t
		}
	}

	return nil
}

// ResultPage is one page of headlines or search results.
type ResultPage struct {
	Articles     []Article `json:"articles"`
	TotalPages   int       `json:"total_pages"`
	TotalResults int       `json:"total_results"`
	Page         int       `json:"page"`
	PageSize     int       `json:"page_size"`
}

type rawResultPage struct {
	Articles      []Article `json:"articles"`
	TotalPages    *int      `json:"total_pages"`
	TotalPagesAlt *int      `json:"totalPages"`
	TotalResults  *int      `json:"total_results"`
	TotalAlt      *int      `json:"totalResults"`
	Page          *int      `json:"page"`
	PageSize      *int      `json:"page_size"`
	PageSizeAlt   *int      `json:"pageSize"`
}

// UnmarshalJSON accepts both snake_case and camelCase pagination keys and
// defaults missing values: no articles is an empty page, and a page count
// below one is reported as one.
func (p *ResultPage) UnmarshalJSON(data []byte) error {
	var raw rawResultPage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = ResultPage{
		Articles:     raw.Articles,
		TotalPages:   firstInt(raw.TotalPages, raw.TotalPagesAlt),
		TotalResults: firstInt(raw.TotalResults, raw.TotalAlt),
		Page:         firstInt(raw.Page),
		PageSize:     firstInt(raw.PageSize, raw.PageSizeAlt),
	}
	if p.Articles == nil {
		p.Articles = []Article{}
	}
	if p.TotalPages < 1 {
		p.TotalPages = 1
	}
	if p.Page < 1 {
		p.Page = 1
	}
	return nil
}

type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type SortOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FilterOptions lists the choices the filter panel offers.
type FilterOptions struct {
	Languages   []Language   `json:"languages"`
	Countries   []Country    `json:"countries"`
	SortOptions []SortOption `json:"sort_options"`
	Categories  []string     `json:"categories"`
}

// LanguageName returns the display name for code, or code itself.
func (f *FilterOptions) LanguageName(code string) string {
	for _, l := range f.Languages {
		if l.Code == code {
			return l.Name
		}
	}
	return code
}

// SortLabel returns the display label for a sort value, or the value itself.
func (f *FilterOptions) SortLabel(value string) string {
	for _, s := range f.SortOptions {
		if s.Value == value {
			return s.Label
		}
	}
	return value
}

// Health is the liveness payload; only Status is interpreted.
type Health struct {
	Status string         `json:"status"`
	Extra  map[string]any `json:"-"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstInt(values ...*int) int {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}
