package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository/sqlite"
)

// seedCard is one entry of a seed file: [{"front": "...", "back": "..."}].
type seedCard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

func newSeedCmd() *cobra.Command {
	var (
		topicID string
		file    string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace a topic's flashcards with the contents of a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			var entries []seedCard
			if err := json.Unmarshal(data, &entries); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}

			_, database, err := setup()
			if err != nil {
				return err
			}
			defer database.Close()

			cards := lo.Map(entries, func(e seedCard, _ int) models.Flashcard {
				return models.Flashcard{TopicID: topicID, Front: e.Front, Back: e.Back}
			})
			if err := sqlite.NewFlashcardSource(database.DB).Replace(cmd.Context(), topicID, cards); err != nil {
				return fmt.Errorf("store flashcards: %w", err)
			}

			logger.Default().Info("seeded topic %s with %d flashcards", topicID, len(cards))
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d flashcards\n", len(cards))
			return nil
		},
	}

	cmd.Flags().StringVar(&topicID, "topic", "", "topic id (required)")
	cmd.Flags().StringVar(&file, "file", "", "JSON file with front/back pairs (required)")
	_ = cmd.MarkFlagRequired("topic")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
