package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vytor/studyflash/internal/config"
	"github.com/vytor/studyflash/internal/db"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/review"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "studyflash",
		Short:         "Spaced-repetition flashcard review server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newImportCmd(), newSeedCmd(), newDueCmd())
	return root
}

// setup loads and validates configuration, installs the default logger and
// opens the database. Every subcommand starts here.
func setup() (config.Config, *db.DB, error) {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		return cfg, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		return cfg, nil, err
	}
	return cfg, database, nil
}

// rewardFor grants XPPerReview for every rating and XPEasyBonus on top for Easy.
func rewardFor(cfg config.Config) review.RewardFunc {
	return func(_ models.ReviewCard, q models.Quality) int {
		xp := cfg.XPPerReview
		if q == models.QualityEasy {
			xp += cfg.XPEasyBonus
		}
		return xp
	}
}

// today is the calendar date in the configured zone, or the parsed --as-of.
func today(cfg config.Config, asOf string) (models.Date, error) {
	if asOf == "" {
		return models.DateOf(time.Now().In(cfg.Location())), nil
	}
	d, err := models.ParseDate(asOf)
	if err != nil {
		return models.Date{}, fmt.Errorf("invalid --as-of %q: %w", asOf, err)
	}
	return d, nil
}
