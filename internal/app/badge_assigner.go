package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dev-team-404/slea-ssem-sub001/internal/domain"
	"github.com/dev-team-404/slea-ssem-sub001/internal/engine"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// BadgeAssigner makes sure a user holds the badges their grade earns.
type BadgeAssigner struct {
	repo BadgeRepository
	now  func() time.Time
}

func NewBadgeAssigner(repo BadgeRepository) *BadgeAssigner {
	return &BadgeAssigner{repo: repo, now: time.Now}
}

// Assign awards the missing badges for gr and returns the ones inserted by this
// call. Each badge is checked and awarded independently; the error collects
// every failure. The repository's uniqueness on (user, badge name) turns a
// concurrent duplicate into a no-op.
func (a *BadgeAssigner) Assign(ctx context.Context, gr domain.GradeResult) ([]domain.UserBadge, error) {
	var (
		awarded []domain.UserBadge
		errs    error
	)
	for _, earned := range engine.BadgesFor(gr.Grade) {
		has, err := a.repo.HasBadge(ctx, gr.UserID, earned.Name)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("check %s: %w", earned.Name, err))
			continue
		}
		if has {
			continue
		}
		badge := domain.UserBadge{
			ID:        uuid.NewString(),
			UserID:    gr.UserID,
			BadgeName: earned.Name,
			BadgeType: earned.Type,
			AwardedAt: a.now().UTC(),
		}
		inserted, err := a.repo.AwardBadge(ctx, badge)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("award %s: %w", earned.Name, err))
			continue
		}
		if inserted {
			awarded = append(awarded, badge)
		}
	}
	return awarded, errs
}
