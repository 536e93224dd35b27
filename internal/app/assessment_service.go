package app

import (
	"context"
	"errors"
	"time"

	"github.com/dev-team-404/slea-ssem-sub001/internal/domain"
	"github.com/dev-team-404/slea-ssem-sub001/internal/engine"
	"github.com/dev-team-404/slea-ssem-sub001/internal/logger"
	"github.com/google/uuid"
)

// Repositories bundles the storage ports the service reads and writes.
type Repositories struct {
	Sessions  SessionRepository
	Attempts  AttemptRepository
	Questions QuestionCatalog
	Results   RoundResultRepository
	Cohorts   CohortReader
	Badges    BadgeRepository
}

// AssessmentService contains the assessment use cases: completing a round,
// planning the next one, grading a user against the cohort and listing badges.
type AssessmentService struct {
	repos    Repositories
	assigner *BadgeAssigner
	feed     *GradeFeed
	settings engine.Settings
	log      *logger.Logger
	now      func() time.Time
}

func NewAssessmentService(repos Repositories, settings engine.Settings, log *logger.Logger) *AssessmentService {
	return NewAssessmentServiceWithClock(repos, settings, log, time.Now)
}

// NewAssessmentServiceWithClock is test-only for deterministic timestamps.
func NewAssessmentServiceWithClock(repos Repositories, settings engine.Settings, log *logger.Logger, now func() time.Time) *AssessmentService {
	if log == nil {
		log = logger.Nop()
	}
	assigner := NewBadgeAssigner(repos.Badges)
	assigner.now = now
	return &AssessmentService{
		repos:    repos,
		assigner: assigner,
		feed:     NewGradeFeed(),
		settings: settings,
		log:      log.With("component", "assessment"),
		now:      now,
	}
}

// Settings returns the engine settings the service runs with.
func (s *AssessmentService) Settings() engine.Settings {
	return s.settings
}

// CompleteRound aggregates a session's attempts into its round result. The
// first completion is persisted; later calls return the stored result.
func (s *AssessmentService) CompleteRound(ctx context.Context, sessionID string) (domain.RoundResult, error) {
	session, err := s.repos.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		return domain.RoundResult{}, err
	}

	existing, err := s.repos.Results.GetRoundResult(ctx, session.ID, session.Round)
	if err == nil {
		s.log.Info("round already completed", "sessionId", session.ID, "round", session.Round)
		return existing, nil
	}
	if !errors.Is(err, domain.ErrRoundResultNotFound) {
		return domain.RoundResult{}, err
	}

	attempts, err := s.repos.Attempts.ListAttempts(ctx, session.ID)
	if err != nil {
		return domain.RoundResult{}, err
	}
	questions, err := s.repos.Questions.SessionQuestions(ctx, session.ID)
	if err != nil {
		return domain.RoundResult{}, err
	}

	rr, err := engine.AggregateRound(session, attempts, questions)
	if err != nil {
		return domain.RoundResult{}, err
	}
	rr.ID = uuid.NewString()
	rr.CreatedAt = s.now().UTC()

	stored, inserted, err := s.repos.Results.SaveRoundResult(ctx, rr)
	if err != nil {
		return domain.RoundResult{}, err
	}
	if !inserted {
		s.log.Info("round completed concurrently", "sessionId", session.ID, "round", session.Round)
		return stored, nil
	}
	s.log.Info("round result persisted",
		"sessionId", stored.SessionID,
		"userId", stored.UserID,
		"round", stored.Round,
		"score", stored.Score,
	)
	s.publishGrade(ctx, stored.UserID)
	return stored, nil
}

// RoundResult returns the persisted result of a session's round.
func (s *AssessmentService) RoundResult(ctx context.Context, sessionID string, round int) (domain.RoundResult, error) {
	if _, err := s.repos.Sessions.GetSession(ctx, sessionID); err != nil {
		return domain.RoundResult{}, err
	}
	return s.repos.Results.GetRoundResult(ctx, sessionID, round)
}

// PlanNextRound derives the difficulty plan that seeds the round after the
// given one.
func (s *AssessmentService) PlanNextRound(ctx context.Context, sessionID string, round, size int) (domain.DifficultyPlan, error) {
	rr, err := s.RoundResult(ctx, sessionID, round)
	if err != nil {
		return domain.DifficultyPlan{}, err
	}
	questions, err := s.repos.Questions.SessionQuestions(ctx, sessionID)
	if err != nil {
		return domain.DifficultyPlan{}, err
	}
	return engine.PlanNextRound(rr, questions, size, s.settings)
}

// ComputeGrade grades the user against the cohort active inside the configured
// window and makes sure the earned badges are held. Badge failures are logged
// and never fail the computation.
func (s *AssessmentService) ComputeGrade(ctx context.Context, userID string) (domain.GradeResult, error) {
	since := s.now().Add(-s.settings.CohortWindow)
	snapshot, err := s.repos.Cohorts.ReadCohort(ctx, userID, since)
	if err != nil {
		return domain.GradeResult{}, err
	}
	gr, err := engine.Evaluate(snapshot, s.settings)
	if err != nil {
		return domain.GradeResult{}, err
	}

	awarded, err := s.assigner.Assign(ctx, gr)
	if err != nil {
		s.log.Error("badge assignment failed", "userId", userID, "grade", gr.Grade, "error", err)
	}
	for _, b := range awarded {
		s.log.Info("badge awarded", "userId", userID, "badge", b.BadgeName)
	}
	return gr, nil
}

// Badges lists a user's badges in award order.
func (s *AssessmentService) Badges(ctx context.Context, userID string) ([]domain.UserBadge, error) {
	return s.repos.Badges.ListBadges(ctx, userID)
}

// SubscribeGrades returns a channel that receives the user's grade every time
// one of their rounds is completed.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *AssessmentService) SubscribeGrades(userID string) (<-chan domain.GradeResult, func()) {
	return s.feed.Subscribe(userID)
}

func (s *AssessmentService) publishGrade(ctx context.Context, userID string) {
	if !s.feed.HasSubscribers(userID) {
		return
	}
	gr, err := s.ComputeGrade(ctx, userID)
	if err != nil {
		s.log.Warn("grade feed publication skipped", "userId", userID, "error", err)
		return
	}
	s.feed.Publish(gr)
}
