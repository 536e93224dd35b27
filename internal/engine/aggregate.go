package engine

import (
	"fmt"

	"github.com/dev-team-404/slea-ssem-sub001/internal/domain"
)

// AggregateRound folds a session's attempts into a RoundResult.
//
// The score is the mean partial credit of the attempts. Wrong answers are
// counted per question category; uncategorized questions are left out of the
// map. A session without attempts yields an empty result, not an error.
func AggregateRound(session domain.Session, attempts []domain.AttemptAnswer, questions []domain.QuestionMeta) (domain.RoundResult, error) {
	categories := make(map[string]string, len(questions))
	for _, q := range questions {
		categories[q.ID] = q.Category
	}

	var (
		points  float64
		correct int
		total   int
		wrong   = map[string]int{}
	)
	for _, a := range attempts {
		if a.SessionID != session.ID {
			continue
		}
		if a.Score < 0 || a.Score > 100 {
			return domain.RoundResult{}, fmt.Errorf("%w: attempt %s scored %.2f", domain.ErrInvalidRoundResult, a.QuestionID, a.Score)
		}
		total++
		points += a.Score
		if a.Correct {
			correct++
			continue
		}
		if cat := categories[a.QuestionID]; cat != "" {
			wrong[cat]++
		}
	}

	return domain.NewRoundResult(session.ID, session.UserID, session.Round, points, correct, total, wrong)
}
