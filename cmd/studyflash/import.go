package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/repository/sqlite"
	"github.com/vytor/studyflash/internal/services"
)

func newImportCmd() *cobra.Command {
	var (
		userID  string
		topicID string
		asOf    string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create review cards for a learner from stored topic flashcards",
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

			importService := services.NewImportService(
				sqlite.NewCardRepository(database.DB),
				sqlite.NewFlashcardSource(database.DB),
			)

			ctx := cmd.Context()

			topics := []string{topicID}
			if topicID == "" {
				topics, err = sqlite.NewFlashcardSource(database.DB).Topics(ctx)
				if err != nil {
					return fmt.Errorf("list topics: %w", err)
				}
			}

			total := 0
			for _, t := range topics {
				created, err := importService.ImportTopic(ctx, userID, t, day)
				if err != nil {
					return fmt.Errorf("import topic %s: %w", t, err)
				}
				total += created
			}

			logger.Default().Info("imported %d cards for %s across %d topics", total, userID, len(topics))
			fmt.Fprintf(cmd.OutOrStdout(), "created %d cards\n", total)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "learner id (required)")
	cmd.Flags().StringVar(&topicID, "topic", "", "topic id; every topic when empty")
	cmd.Flags().StringVar(&asOf, "as-of", "", "import date YYYY-MM-DD; today when empty")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
