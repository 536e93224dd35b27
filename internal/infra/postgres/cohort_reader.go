package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dev-team-404/slea-ssem-sub001/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CohortReader reads cohort snapshots inside one repeatable-read, read-only
// transaction so rank and cohort size agree even while rounds complete.
type CohortReader struct {
	pool *pgxpool.Pool
}

func NewCohortReader(pool *pgxpool.Pool) *CohortReader {
	return &CohortReader{pool: pool}
}

const cohortQuery = `
SELECT rr.id::text, rr.session_id, rr.user_id, rr.round, rr.score, rr.total_points,
       rr.correct_count, rr.total_count, rr.wrong_categories, rr.created_at
FROM round_results rr
WHERE rr.user_id IN (SELECT s.user_id FROM test_sessions s WHERE s.created_at >= $1)`

func (r *CohortReader) ReadCohort(ctx context.Context, userID string, since time.Time) (domain.CohortSnapshot, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return domain.CohortSnapshot{}, fmt.Errorf("begin cohort read: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)`, userID).Scan(&exists); err != nil {
		return domain.CohortSnapshot{}, fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return domain.CohortSnapshot{}, domain.ErrUserNotFound
	}

	rows, err := tx.Query(ctx, cohortQuery, since)
	if err != nil {
		return domain.CohortSnapshot{}, fmt.Errorf("read cohort: %w", err)
	}
	defer rows.Close()

	snapshot := domain.CohortSnapshot{SubjectID: userID, Results: make(map[string][]domain.RoundResult)}
	for rows.Next() {
		var (
			rr  domain.RoundResult
			raw []byte
		)
		if err := rows.Scan(&rr.ID, &rr.SessionID, &rr.UserID, &rr.Round, &rr.Score, &rr.TotalPoints,
			&rr.CorrectCount, &rr.TotalCount, &raw, &rr.CreatedAt); err != nil {
			return domain.CohortSnapshot{}, fmt.Errorf("scan round result: %w", err)
		}
		rr.WrongCategories = map[string]int{}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &rr.WrongCategories); err != nil {
				return domain.CohortSnapshot{}, fmt.Errorf("unmarshal wrong categories: %w", err)
			}
		}
		snapshot.Results[rr.UserID] = append(snapshot.Results[rr.UserID], rr)
	}
	if err := rows.Err(); err != nil {
		return domain.CohortSnapshot{}, fmt.Errorf("read cohort: %w", err)
	}
	rows.Close()

	if err := tx.Commit(ctx); err != nil {
		return domain.CohortSnapshot{}, fmt.Errorf("commit cohort read: %w", err)
	}
	return snapshot, nil
}
