package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-singscore/internal/history"
)

func newHistoryCommand(a *app) *cobra.Command {
	var (
		limit     int
		reference string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored scores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := history.Open(a.cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), history.Query{Reference: reference, Limit: limit})
			if err != nil {
				return err
			}
			if a.cfg.Output != "text" {
				return encode(a.stdout, a.cfg.Output, entries)
			}

			tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tWHEN\tSCORE\tREFERENCE\tUSER")
			for _, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
					e.ID, e.CreatedAt.Format(time.DateTime), scoreColor(e.Score).Sprint(e.Score), e.Reference, e.User)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if reference != "" {
				best, ok, err := store.Best(cmd.Context(), reference)
				if err != nil {
					return err
				}
				if ok {
					fmt.Fprintf(a.stdout, "best: %d (%s, %s)\n", best.Score, best.User, best.CreatedAt.Format(time.DateOnly))
				}
			}
			return nil
		},
	}
	fs := cmd.Flags()
	fs.IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	fs.StringVar(&reference, "reference", "", "only show scores against this reference")
	fs.String("history-path", "", "score history database")
	withKey(fs, "history-path", "history.path")
	return cmd
}
