package postgres

import (
	"context"
	"fmt"

	"github.com/dev-team-404/slea-ssem-sub001/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionLoader loads question metadata from Postgres.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context, sessionID string) ([]domain.QuestionMeta, error) {
	var exists bool
	if err := l.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM test_sessions WHERE id=$1)`, sessionID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if !exists {
		return nil, domain.ErrSessionNotFound
	}

	rows, err := l.pool.Query(ctx, `SELECT id, category, difficulty FROM questions WHERE session_id=$1 ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var out []domain.QuestionMeta
	for rows.Next() {
		q := domain.QuestionMeta{SessionID: sessionID}
		if err := rows.Scan(&q.ID, &q.Category, &q.Difficulty); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return out, nil
}
