package engine

import (
	"sort"

	"github.com/dev-team-404/slea-ssem-sub001/internal/domain"
)

// accuracyBonus is the maximum number of points a perfect accuracy adds to a
// round score.
const accuracyBonus = 5.0

// AdjustedScore adds an accuracy bonus to the round score, capped at 100.
func AdjustedScore(rr domain.RoundResult) float64 {
	score := rr.Score
	if rr.TotalCount > 0 {
		score += float64(rr.CorrectCount) * accuracyBonus / float64(rr.TotalCount)
	}
	if score > 100 {
		return 100
	}
	return score
}

// LatestPerRound keeps the most recent result for each round number and
// returns them ordered by round. A retake never overwrites history, so the
// newest session of a round is the one that counts.
func LatestPerRound(results []domain.RoundResult) []domain.RoundResult {
	latest := make(map[int]domain.RoundResult, len(results))
	for _, rr := range results {
		cur, ok := latest[rr.Round]
		if !ok || newer(rr, cur) {
			latest[rr.Round] = rr
		}
	}
	out := make([]domain.RoundResult, 0, len(latest))
	for _, rr := range latest {
		out = append(out, rr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Round < out[j].Round })
	return out
}

func newer(a, b domain.RoundResult) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.SessionID > b.SessionID
}

// Composite returns the weighted mean of adjusted round scores rounded to two
// decimals. ok is false when there are no completed rounds.
func Composite(results []domain.RoundResult, s Settings) (score float64, ok bool) {
	rounds := LatestPerRound(results)
	if len(rounds) == 0 {
		return 0, false
	}
	var sum, weights float64
	for _, rr := range rounds {
		w := s.WeightFor(rr.Round)
		sum += AdjustedScore(rr) * w
		weights += w
	}
	return domain.Round2(sum / weights), true
}

// GradeFor returns the highest grade whose cutoff the score meets.
func (s GradeScale) GradeFor(score float64) domain.Grade {
	grade := domain.GradeBeginner
	for _, c := range s {
		if score >= c.Min {
			grade = c.Grade
		}
	}
	return grade
}
