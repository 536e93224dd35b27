package app

import (
	"context"
	"time"

	"github.com/dev-team-404/slea-ssem-sub001/internal/domain"
)

// SessionRepository reads sessions owned by the question generation component.
type SessionRepository interface {
	GetSession(ctx context.Context, sessionID string) (domain.Session, error)
}

// AttemptRepository reads the answers submitted in a session.
type AttemptRepository interface {
	ListAttempts(ctx context.Context, sessionID string) ([]domain.AttemptAnswer, error)
}

// QuestionCatalog returns the metadata of the questions asked in a session
// (from cache/backing store).
type QuestionCatalog interface {
	SessionQuestions(ctx context.Context, sessionID string) ([]domain.QuestionMeta, error)
}

// RoundResultRepository stores round results. History is immutable: a result is
// written once per (session, round) and never updated.
type RoundResultRepository interface {
	GetRoundResult(ctx context.Context, sessionID string, round int) (domain.RoundResult, error)
	// SaveRoundResult inserts rr unless a result for the same (session, round)
	// exists. It returns the stored row and whether this call inserted it.
	SaveRoundResult(ctx context.Context, rr domain.RoundResult) (domain.RoundResult, bool, error)
}

// CohortReader loads the subject's round results together with those of every
// user with a session created at or after since, in one consistent read.
// Unknown subjects yield domain.ErrUserNotFound.
type CohortReader interface {
	ReadCohort(ctx context.Context, userID string, since time.Time) (domain.CohortSnapshot, error)
}

// BadgeRepository persists badges, unique per (user, badge name).
type BadgeRepository interface {
	HasBadge(ctx context.Context, userID, badgeName string) (bool, error)
	// AwardBadge inserts the badge and reports false when the (user, name)
	// pair already existed.
	AwardBadge(ctx context.Context, badge domain.UserBadge) (bool, error)
	ListBadges(ctx context.Context, userID string) ([]domain.UserBadge, error)
}
