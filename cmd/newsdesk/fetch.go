package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pders01/newsdesk/internal/api"
	"github.com/pders01/newsdesk/internal/query"
	"github.com/pders01/newsdesk/internal/validation"
)

func newHeadlinesCmd(opts *rootOptions) *cobra.Command {
	var (
		category string
		page     int
		pageSize int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "headlines",
		Short: "Print one page of top headlines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if page < 1 {
				return fmt.Errorf("page must be at least 1, got %d", page)
			}
			client, err := opts.client()
			if err != nil {
				return err
			}

			h := query.NewHeadlines()
			h.SetCategory(strings.TrimSpace(category))
			h.SetPage(page)
			d := h.Descriptor(resolvePageSize(pageSize, opts))

			result, err := client.Headlines(cmd.Context(), d.Params().Values())
			if err != nil {
				return fmt.Errorf("fetching headlines: %w", err)
			}
			return printPage(cmd.OutOrStdout(), result, d, asJSON)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "category to show (default all)")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "articles per page (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the raw result page as JSON")
	return cmd
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var (
		language string
		sortBy   string
		from     string
		to       string
		page     int
		pageSize int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Print one page of search results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := validation.SanitizeQuery(strings.Join(args, " "))
			if q == "" {
				return fmt.Errorf("search query must not be blank")
			}

			if sortBy == "" {
				sortBy = opts.cfg.Search.DefaultSort
			}
			filters := query.FilterSet{
				Language: strings.TrimSpace(language),
				SortBy:   query.SortBy(sortBy),
				From:     strings.TrimSpace(from),
				To:       strings.TrimSpace(to),
			}
			if err := filters.Validate(); err != nil {
				return err
			}
			if page < 1 {
				return fmt.Errorf("page must be at least 1, got %d", page)
			}

			c := query.NewController()
			c.SetQuery(q)
			c.SetFilters(filters)
			c.SetPage(page)
			d := c.Descriptor(q, resolvePageSize(pageSize, opts))

			client, err := opts.client()
			if err != nil {
				return err
			}
			result, err := client.Search(cmd.Context(), d.Params().Values())
			if err != nil {
				return fmt.Errorf("searching %q: %w", q, err)
			}
			return printPage(cmd.OutOrStdout(), result, d, asJSON)
		},
	}

	cmd.Flags().StringVar(&language, "language", "", "2-letter language code")
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "relevancy, popularity or publishedAt (default from config)")
	cmd.Flags().StringVar(&from, "from", "", "earliest publication date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "latest publication date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "articles per page (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the raw result page as JSON")
	return cmd
}

func newFiltersCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "filters",
		Short: "List the languages, sort orders and categories the backend offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			options, err := client.Filters(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching filters: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, options)
			}

			fmt.Fprintln(out, "Languages:")
			for _, l := range options.Languages {
				fmt.Fprintf(out, "  %s  %s\n", l.Code, l.Name)
			}
			fmt.Fprintln(out, "Sort options:")
			for _, s := range options.SortOptions {
				fmt.Fprintf(out, "  %-12s %s\n", s.Value, s.Label)
			}
			fmt.Fprintln(out, "Categories:")
			for _, c := range options.Categories {
				fmt.Fprintf(out, "  %s\n", c)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newHealthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			h, err := client.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s is unreachable: %w", client.BaseURL(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", client.BaseURL(), h.Status)
			return nil
		},
	}
}

func resolvePageSize(flag int, opts *rootOptions) int {
	if flag > 0 {
		return flag
	}
	if opts.cfg != nil && opts.cfg.Search.PageSize > 0 {
		return opts.cfg.Search.PageSize
	}
	return query.DefaultPageSize
}

func printPage(out io.Writer, result *api.ResultPage, d query.Descriptor, asJSON bool) error {
	if asJSON {
		return writeJSON(out, result)
	}

	if len(result.Articles) == 0 {
		fmt.Fprintln(out, "No articles found. Try different keywords or filters.")
		return nil
	}

	if d.Kind == query.KindSearch {
		fmt.Fprintf(out, "Showing results for %q (%d results)\n\n", d.Query, result.TotalResults)
	}
	for i, art := range result.Articles {
		fmt.Fprintf(out, "%2d. %s\n", (d.Page-1)*d.PageSize+i+1, art.Title)
		meta := []string{art.Source.Name}
		if !art.PublishedAt.IsZero() {
			meta = append(meta, art.PublishedAt.Format("2006-01-02 15:04"))
		}
		fmt.Fprintf(out, "    %s\n", strings.Join(meta, " • "))
		if art.URL != "" {
			fmt.Fprintf(out, "    %s\n", art.URL)
		}
	}
	fmt.Fprintf(out, "\nPage %d of %d\n", d.Page, max(result.TotalPages, 1))
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
