package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dev-team-404/slea-ssem-sub001/internal/app"
	"github.com/dev-team-404/slea-ssem-sub001/internal/config"
	"github.com/dev-team-404/slea-ssem-sub001/internal/logger"
	"github.com/spf13/cobra"
)

// NewGradeCmd prints a user's GradeResult as JSON.
func NewGradeCmd(configPath *string) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Compute a user's grade, rank and percentile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), *configPath, func(ctx context.Context, service *app.AssessmentService) error {
				gr, err := service.ComputeGrade(ctx, userID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), gr)
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// NewPlanCmd prints the DifficultyPlan that follows a completed round.
func NewPlanCmd(configPath *string) *cobra.Command {
	var (
		sessionID string
		round     int
		size      int
		complete  bool
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan the next round of a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), *configPath, func(ctx context.Context, service *app.AssessmentService) error {
				if complete {
					if _, err := service.CompleteRound(ctx, sessionID); err != nil {
						return err
					}
				}
				n := size
				if n < 0 {
					n = service.Settings().DefaultRoundSize
				}
				plan, err := service.PlanNextRound(ctx, sessionID, round, n)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), plan)
			})
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session id")
	cmd.Flags().IntVar(&round, "round", 1, "completed round number")
	cmd.Flags().IntVar(&size, "size", -1, "number of questions in the next round (default from config)")
	cmd.Flags().BoolVar(&complete, "complete", false, "complete the round first if it has no result yet")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}

func withService(ctx context.Context, configPath string, fn func(context.Context, *app.AssessmentService) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	service, cleanup, err := buildService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(ctx, service)
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
