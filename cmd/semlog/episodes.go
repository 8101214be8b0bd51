package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/semlog/storage"
	"github.com/c360studio/semlog/timeline"
)

// errNoEpisodeStore is returned when neither the KV store nor the
// timeline database is configured.
var errNoEpisodeStore = errors.New("no episode store configured (set nats.url or output.timeline_db)")

func episodesCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "episodes",
		Short: "Inspect stored episodes",
		Long: `Episodes reads the episodes kept in the NATS KV bucket and the sqlite
timeline database.`,
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored episodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				return a.listEpisodes(ctx, cmd.OutOrStdout(), limit)
			})
		},
	}
	list.Flags().IntVar(&limit, "limit", 100, "Maximum timeline episodes to list")

	var document bool
	show := &cobra.Command{
		Use:   "show <episode>",
		Short: "Show a stored episode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				return a.showEpisode(ctx, cmd.OutOrStdout(), args[0], document)
			})
		},
	}
	show.Flags().BoolVar(&document, "document", false, "Print the stored episode document")

	rm := &cobra.Command{
		Use:   "rm <episode>...",
		Short: "Delete stored episodes from the KV bucket",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				for _, id := range args {
					if err := a.removeEpisode(ctx, id); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(list, show, rm)
	return cmd
}

// withApp loads the configuration, opens the app and runs fn.
func withApp(cmd *cobra.Command, flags *globalFlags, fn func(context.Context, *app) error) error {
	logger := newLogger(flags.logLevel)
	cfg, err := loadConfig(flags.configPath, logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close(ctx)
	return fn(ctx, a)
}

func (a *app) listEpisodes(ctx context.Context, w io.Writer, limit int) error {
	if a.store == nil && a.timelineDB == nil {
		return errNoEpisodeStore
	}

	if a.store != nil {
		recs, err := a.store.List(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "EPISODE\tFORMAT\tEVENTS\tOBJECTS\tSTART\tEND\tCREATED")
		for _, rec := range recs {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%g\t%g\t%s\n", rec.EpisodeID, rec.Format,
				rec.Events, rec.Objects, rec.Start, rec.End, rec.CreatedAt.Format(time.RFC3339))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if a.timelineDB != nil {
		ids, err := a.timelineDB.Episodes(ctx, limit)
		if err != nil {
			return fmt.Errorf("list timeline episodes: %w", err)
		}
		fmt.Fprintf(w, "timeline episodes: %d\n", len(ids))
		for _, id := range ids {
			fmt.Fprintln(w, id)
		}
	}
	return nil
}

func (a *app) showEpisode(ctx context.Context, w io.Writer, id string, document bool) error {
	if a.store == nil && a.timelineDB == nil {
		return errNoEpisodeStore
	}
	found := false

	if a.store != nil {
		rec, err := a.store.Get(ctx, id)
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			return err
		default:
			found = true
			fmt.Fprintf(w, "episode %s (%s): %d events, %d objects, %g-%g\n",
				rec.EpisodeID, rec.Format, rec.Events, rec.Objects, rec.Start, rec.End)
			if document {
				fmt.Fprintln(w, rec.Document)
			}
		}
	}

	if a.timelineDB != nil {
		rows, err := a.timelineDB.Rows(ctx, id)
		switch {
		case errors.Is(err, timeline.ErrEpisodeNotFound):
		case err != nil:
			return err
		default:
			found = true
			if err := a.writeTimeline(ctx, w, id, rows); err != nil {
				return err
			}
		}
	}

	if !found {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return nil
}

func (a *app) writeTimeline(ctx context.Context, w io.Writer, id string, rows []timeline.Row) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EVENT\tKIND\tSTART\tEND\tFORCED")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%t\n", r.Name, r.Kind, r.Start, r.End, r.Forced)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	totals, err := a.timelineDB.KindTotals(ctx, id)
	if err != nil {
		return err
	}
	kinds := make([]string, 0, len(totals))
	for k := range totals {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "total %s: %gs\n", k, totals[k])
	}
	return nil
}

func (a *app) removeEpisode(ctx context.Context, id string) error {
	if a.store == nil {
		return errors.New("episode KV bucket not configured (set nats.url)")
	}
	return a.store.Delete(ctx, id)
}
