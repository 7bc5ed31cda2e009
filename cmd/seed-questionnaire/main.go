package main

import (
	"os"

	"github.com/neuronalfit/assessment-backend/internal/config"
	"github.com/neuronalfit/assessment-backend/internal/database"
	"github.com/neuronalfit/assessment-backend/internal/logger"
	"github.com/neuronalfit/assessment-backend/internal/questionnaire"
	"github.com/neuronalfit/assessment-backend/internal/repository"
	"github.com/spf13/cobra"
)

func main() {
	cmd := &cobra.Command{
		Use:          "seed-questionnaire",
		Short:        "Upsert the embedded questionnaire catalog into the questions table",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

			catalog, err := questionnaire.Load()
			if err != nil {
				return err
			}

			pool, err := database.NewPostgresPool(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := repository.NewQuestionRepository(pool).Sync(cmd.Context(), catalog.Rows())
			if err != nil {
				return err
			}
			log.Info().
				Int64("questions", n).
				Int("domains", len(catalog.Domains)).
				Msg("Questionnaire seeded")
			return nil
		},
	}

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
