package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dev-team-404/slea-ssem-sub001/internal/domain"
	"github.com/uptrace/bun"
)

// Store implements the session, attempt, round result and badge repositories
// on top of bun.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// AddUser registers a user id. Existing ids are left untouched.
func (s *Store) AddUser(ctx context.Context, userID string, createdAt time.Time) error {
	_, err := s.db.NewInsert().
		Model(&userModel{ID: userID, CreatedAt: createdAt}).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// AddSession registers a session.
func (s *Store) AddSession(ctx context.Context, session domain.Session) error {
	_, err := s.db.NewInsert().
		Model(&sessionModel{ID: session.ID, UserID: session.UserID, Round: session.Round, CreatedAt: session.CreatedAt}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// AddQuestions stores question metadata.
func (s *Store) AddQuestions(ctx context.Context, questions ...domain.QuestionMeta) error {
	if len(questions) == 0 {
		return nil
	}
	models := make([]questionModel, 0, len(questions))
	for _, q := range questions {
		models = append(models, questionModel{ID: q.ID, SessionID: q.SessionID, Category: q.Category, Difficulty: q.Difficulty})
	}
	if _, err := s.db.NewInsert().Model(&models).Exec(ctx); err != nil {
		return fmt.Errorf("insert questions: %w", err)
	}
	return nil
}

// AddAttempts stores submitted answers.
func (s *Store) AddAttempts(ctx context.Context, attempts ...domain.AttemptAnswer) error {
	if len(attempts) == 0 {
		return nil
	}
	models := make([]attemptModel, 0, len(attempts))
	for _, a := range attempts {
		models = append(models, attemptModel{
			SessionID:      a.SessionID,
			QuestionID:     a.QuestionID,
			Answer:         a.Answer,
			IsCorrect:      a.Correct,
			Score:          a.Score,
			ResponseTimeMS: a.ResponseTime.Milliseconds(),
			SubmittedAt:    a.SubmittedAt,
		})
	}
	if _, err := s.db.NewInsert().Model(&models).Exec(ctx); err != nil {
		return fmt.Errorf("insert attempts: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, sessionID string) (domain.Session, error) {
	var m sessionModel
	err := s.db.NewSelect().Model(&m).Where("id = ?", sessionID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}
	return m.toDomain(), nil
}

func (s *Store) ListAttempts(ctx context.Context, sessionID string) ([]domain.AttemptAnswer, error) {
	var models []attemptModel
	err := s.db.NewSelect().
		Model(&models).
		Where("session_id = ?", sessionID).
		OrderExpr("submitted_at ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	out := make([]domain.AttemptAnswer, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (s *Store) GetRoundResult(ctx context.Context, sessionID string, round int) (domain.RoundResult, error) {
	var m roundResultModel
	err := s.db.NewSelect().
		Model(&m).
		Where("session_id = ?", sessionID).
		Where("round = ?", round).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RoundResult{}, domain.ErrRoundResultNotFound
	}
	if err != nil {
		return domain.RoundResult{}, fmt.Errorf("load round result: %w", err)
	}
	return m.toDomain(), nil
}

// SaveRoundResult relies on UNIQUE (session_id, round): a losing concurrent
// writer inserts nothing and reads back the winner's row.
func (s *Store) SaveRoundResult(ctx context.Context, rr domain.RoundResult) (domain.RoundResult, bool, error) {
	m := newRoundResultModel(rr)
	res, err := s.db.NewInsert().
		Model(&m).
		On("CONFLICT (session_id, round) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return domain.RoundResult{}, false, fmt.Errorf("insert round result: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 1 {
		return m.toDomain(), true, nil
	}
	stored, err := s.GetRoundResult(ctx, rr.SessionID, rr.Round)
	if err != nil {
		return domain.RoundResult{}, false, err
	}
	return stored, false, nil
}

func (s *Store) HasBadge(ctx context.Context, userID, badgeName string) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*badgeModel)(nil)).
		Where("user_id = ?", userID).
		Where("badge_name = ?", badgeName).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check badge: %w", err)
	}
	return exists, nil
}

func (s *Store) AwardBadge(ctx context.Context, badge domain.UserBadge) (bool, error) {
	res, err := s.db.NewInsert().
		Model(&badgeModel{
			ID:        badge.ID,
			UserID:    badge.UserID,
			BadgeName: badge.BadgeName,
			BadgeType: string(badge.BadgeType),
			AwardedAt: badge.AwardedAt,
		}).
		On("CONFLICT (user_id, badge_name) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("insert badge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert badge: %w", err)
	}
	return n == 1, nil
}

func (s *Store) ListBadges(ctx context.Context, userID string) ([]domain.UserBadge, error) {
	known, err := s.db.NewSelect().Model((*userModel)(nil)).Where("id = ?", userID).Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !known {
		return nil, domain.ErrUserNotFound
	}

	var models []badgeModel
	err = s.db.NewSelect().
		Model(&models).
		Where("user_id = ?", userID).
		OrderExpr("awarded_at ASC, badge_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	out := make([]domain.UserBadge, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}
