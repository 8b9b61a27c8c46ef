package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dukerupert/foyer/internal/ledger"
	"github.com/dukerupert/foyer/internal/model"
)

func rankingCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ranking",
		Short: "Print member standings and treasury progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime()
			if err != nil {
				return err
			}
			defer rt.close()

			e, err := rt.engine(cmd.Context())
			if err != nil {
				return err
			}
			standings, progress := e.Ranking(), e.Progress()

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"ranking": standings, "treasury": progress})
			}
			return printRanking(out, standings, progress)
		},
	}
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "output as JSON")
	return cmd
}

func printRanking(w io.Writer, standings []model.Standing, p ledger.TreasuryProgress) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tMEMBER\tROLE\tPOINTS")
	for _, s := range standings {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", s.Rank, s.Member, s.Role, s.Points)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	status := fmt.Sprintf("%d to go", p.Remaining)
	if p.Reached {
		status = "reached"
	}
	_, err := fmt.Fprintf(w, "\nTreasury: %d / %d for %s (%s)\n", p.Treasury, p.Goal.Points, p.Goal.Name, status)
	return err
}
