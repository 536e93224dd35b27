package postgres

import (
	"time"

	"github.com/dev-team-404/slea-ssem-sub001/internal/domain"
	"github.com/uptrace/bun"
)

type userModel struct {
	bun.BaseModel `bun:"table:users"`

	ID        string    `bun:"id,pk"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

type sessionModel struct {
	bun.BaseModel `bun:"table:test_sessions"`

	ID        string    `bun:"id,pk"`
	UserID    string    `bun:"user_id,notnull"`
	Round     int       `bun:"round,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

func (m sessionModel) toDomain() domain.Session {
	return domain.Session{ID: m.ID, UserID: m.UserID, Round: m.Round, CreatedAt: m.CreatedAt}
}

type questionModel struct {
	bun.BaseModel `bun:"table:questions"`

	ID         string  `bun:"id,pk"`
	SessionID  string  `bun:"session_id,notnull"`
	Category   string  `bun:"category,notnull"`
	Difficulty float64 `bun:"difficulty,notnull"`
}

type attemptModel struct {
	bun.BaseModel `bun:"table:attempt_answers"`

	ID             int64     `bun:"id,pk,autoincrement"`
	SessionID      string    `bun:"session_id,notnull"`
	QuestionID     string    `bun:"question_id,notnull"`
	Answer         string    `bun:"answer,notnull"`
	IsCorrect      bool      `bun:"is_correct,notnull"`
	Score          float64   `bun:"score,notnull"`
	ResponseTimeMS int64     `bun:"response_time_ms,notnull"`
	SubmittedAt    time.Time `bun:"submitted_at,notnull"`
}

func (m attemptModel) toDomain() domain.AttemptAnswer {
	return domain.AttemptAnswer{
		SessionID:    m.SessionID,
		QuestionID:   m.QuestionID,
		Answer:       m.Answer,
		Correct:      m.IsCorrect,
		Score:        m.Score,
		ResponseTime: time.Duration(m.ResponseTimeMS) * time.Millisecond,
		SubmittedAt:  m.SubmittedAt,
	}
}

type roundResultModel struct {
	bun.BaseModel `bun:"table:round_results"`

	ID              string         `bun:"id,pk,type:uuid"`
	SessionID       string         `bun:"session_id,notnull"`
	UserID          string         `bun:"user_id,notnull"`
	Round           int            `bun:"round,notnull"`
	Score           float64        `bun:"score,notnull"`
	TotalPoints     float64        `bun:"total_points,notnull"`
	CorrectCount    int            `bun:"correct_count,notnull"`
	TotalCount      int            `bun:"total_count,notnull"`
	WrongCategories map[string]int `bun:"wrong_categories,type:jsonb,notnull"`
	CreatedAt       time.Time      `bun:"created_at,notnull"`
}

func newRoundResultModel(rr domain.RoundResult) roundResultModel {
	wrong := rr.WrongCategories
	if wrong == nil {
		wrong = map[string]int{}
	}
	return roundResultModel{
		ID:              rr.ID,
		SessionID:       rr.SessionID,
		UserID:          rr.UserID,
		Round:           rr.Round,
		Score:           rr.Score,
		TotalPoints:     rr.TotalPoints,
		CorrectCount:    rr.CorrectCount,
		TotalCount:      rr.TotalCount,
		WrongCategories: wrong,
		CreatedAt:       rr.CreatedAt,
	}
}

func (m roundResultModel) toDomain() domain.RoundResult {
	wrong := m.WrongCategories
	if wrong == nil {
		wrong = map[string]int{}
	}
	return domain.RoundResult{
		ID:              m.ID,
		SessionID:       m.SessionID,
		UserID:          m.UserID,
		Round:           m.Round,
		Score:           m.Score,
		TotalPoints:     m.TotalPoints,
		CorrectCount:    m.CorrectCount,
		TotalCount:      m.TotalCount,
		WrongCategories: wrong,
		CreatedAt:       m.CreatedAt,
	}
}

type badgeModel struct {
	bun.BaseModel `bun:"table:user_badges"`

	ID        string    `bun:"id,pk,type:uuid"`
	UserID    string    `bun:"user_id,notnull"`
	BadgeName string    `bun:"badge_name,notnull"`
	BadgeType string    `bun:"badge_type,notnull"`
	AwardedAt time.Time `bun:"awarded_at,notnull"`
}

func (m badgeModel) toDomain() domain.UserBadge {
	return domain.UserBadge{
		ID:        m.ID,
		UserID:    m.UserID,
		BadgeName: m.BadgeName,
		BadgeType: domain.BadgeType(m.BadgeType),
		AwardedAt: m.AwardedAt,
	}
}
