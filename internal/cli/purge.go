package cli

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stemsi/coursemart-backend/internal/config"
	"github.com/stemsi/coursemart-backend/internal/database"
	"github.com/stemsi/coursemart-backend/internal/logger"
	"github.com/stemsi/coursemart-backend/internal/repository"
)

// newPurgeAttemptsCmd removes the attempts and results left behind by a quiz.
// It is the cleanup path when quizzes are deleted with cascading disabled.
func newPurgeAttemptsCmd() *cobra.Command {
	var (
		quizID string
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "purge-attempts",
		Short: "Delete every attempt and result recorded for a quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(quizID)
			if err != nil {
				return fmt.Errorf("invalid --quiz-id: %w", err)
			}
			if !yes {
				return errors.New("refusing to delete attempts without --yes")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.Setup(cfg.ServiceName, cfg.LogLevel, cfg.LogFormat)

			ctx := cmd.Context()
			pool, err := database.NewPostgresPool(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := repository.NewQuizAttemptRepository(pool).DeleteByQuiz(ctx, id)
			if err != nil {
				return err
			}
			log.Info().Str("quiz_id", id.String()).Int64("attempts_deleted", n).Msg("Attempts purged")
			return nil
		},
	}

	cmd.Flags().StringVar(&quizID, "quiz-id", "", "quiz whose attempts are removed")
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	_ = cmd.MarkFlagRequired("quiz-id")
	return cmd
}
