package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pders01/newsdesk/internal/storage"
)

func newLocationsCmd(opts *rootOptions) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "locations",
		Short: "Show where each page will reopen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewStoreWithTimeout(opts.cfg.Database.Path, opts.cfg.Database.Timeout)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if reset {
				for _, page := range []storage.Page{storage.PageHeadlines, storage.PageSearch} {
					if err := store.ClearLocation(page); err != nil {
						return fmt.Errorf("clearing %s location: %w", page, err)
					}
				}
				fmt.Fprintln(out, "Cleared stored locations")
				return nil
			}

			lastRun, err := store.GetMeta(storage.MetaLastRun)
			if err != nil {
				return err
			}
			version, err := store.GetMeta(storage.MetaVersion)
			if err != nil {
				return err
			}
			if lastRun == "" {
				fmt.Fprintln(out, "Last run: never")
			} else {
				fmt.Fprintf(out, "Last run: %s (%s)\n", lastRun, version)
			}

			locs, err := store.Locations()
			if err != nil {
				return fmt.Errorf("reading locations: %w", err)
			}
			if len(locs) == 0 {
				fmt.Fprintln(out, "No stored locations")
				return nil
			}

			pages := make([]string, 0, len(locs))
			for page := range locs {
				pages = append(pages, string(page))
			}
			sort.Strings(pages)
			for _, page := range pages {
				loc := locs[storage.Page(page)]
				fmt.Fprintf(out, "%-10s %s\n", page, loc.Query)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "clear", false, "forget all stored locations")
	return cmd
}
