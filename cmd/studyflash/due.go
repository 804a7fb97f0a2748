package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vytor/studyflash/internal/repository/sqlite"
	"github.com/vytor/studyflash/internal/services"
)

func newDueCmd() *cobra.Command {
	var (
		userID string
		asOf   string
	)

	cmd := &cobra.Command{
		Use:   "due",
		Short: "List the cards a learner has due",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, err := setup()
			if err != nil {
				return err
			}
			defer database.Close()

			day, err := today(cfg, asOf)
			if err != nil {
				return err
			}

			cards, err := services.NewDueService(sqlite.NewCardRepository(database.DB)).
				GetDueCards(cmd.Context(), userID, day)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d cards due on %s\n", len(cards), day)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTOPIC\tNEXT\tINTERVAL\tEASE\tFRONT")
			for _, c := range cards {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.2f\t%s\n",
					c.ID, c.TopicID, c.NextReviewDate, c.IntervalDays, c.EaseFactor, c.Front)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "learner id (required)")
	cmd.Flags().StringVar(&asOf, "as-of", "", "date YYYY-MM-DD; today when empty")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
