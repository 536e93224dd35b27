package engine

import (
	"fmt"
	"sort"

	"github.com/dev-team-404/slea-ssem-sub001/internal/domain"
)

const (
	minDifficulty = 1.0
	maxDifficulty = 10.0
)

// TierForScore maps a round score to a tier. Boundaries are lower-inclusive:
// 40 is medium and 70 is high.
func TierForScore(score float64) domain.Tier {
	switch {
	case score >= 70:
		return domain.TierHigh
	case score >= 40:
		return domain.TierMedium
	default:
		return domain.TierLow
	}
}

// AdjustDifficulty moves the prior average difficulty according to tier and
// clamps the result to [1, 10].
func AdjustDifficulty(prior float64, tier domain.Tier) (float64, error) {
	var next float64
	switch tier {
	case domain.TierLow:
		next = prior - 1
	case domain.TierMedium:
		next = prior + 0.5
	case domain.TierHigh:
		next = prior + 2
	default:
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidTier, tier)
	}
	return clamp(next, minDifficulty, maxDifficulty), nil
}

// AverageDifficulty returns the mean difficulty of questions, or fallback when
// there are none.
func AverageDifficulty(questions []domain.QuestionMeta, fallback float64) float64 {
	if len(questions) == 0 {
		return fallback
	}
	var sum float64
	for _, q := range questions {
		sum += q.Difficulty
	}
	return sum / float64(len(questions))
}

// AllocateCategories splits n questions across categories.
//
// Weak categories (wrong count > 0) receive at least ceil(n/2) questions in
// total, proportional to their wrong counts. The rest is spread evenly over the
// other known categories. Without other categories the whole round goes to the
// weak ones; without weak categories the round is spread over all known
// categories. The weak remainder goes to the category with the most wrong
// answers (ties broken by name); the other remainder is handed out one at a
// time alphabetically.
func AllocateCategories(wrong map[string]int, n int, known []string) (map[string]int, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: size %d", domain.ErrInvalidAllocation, n)
	}

	weak := weakCategories(wrong)
	others := otherCategories(known, wrong)

	alloc := make(map[string]int, len(weak)+len(others))
	if n == 0 {
		return alloc, nil
	}
	if len(weak) == 0 && len(others) == 0 {
		return nil, domain.ErrNoCategories
	}

	weakShare := 0
	if len(weak) > 0 {
		weakShare = (n + 1) / 2
		if len(others) == 0 {
			weakShare = n
		}
		proportional(alloc, weak, wrong, weakShare)
	}
	spreadEvenly(alloc, others, n-weakShare)
	return alloc, nil
}

// weakCategories returns categories with wrong answers ordered by count desc,
// then name.
func weakCategories(wrong map[string]int) []string {
	out := make([]string, 0, len(wrong))
	for cat, count := range wrong {
		if count > 0 && cat != "" {
			out = append(out, cat)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if wrong[out[i]] != wrong[out[j]] {
			return wrong[out[i]] > wrong[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

func otherCategories(known []string, wrong map[string]int) []string {
	seen := make(map[string]struct{}, len(known))
	out := make([]string, 0, len(known))
	for _, cat := range known {
		if cat == "" || wrong[cat] > 0 {
			continue
		}
		if _, dup := seen[cat]; dup {
			continue
		}
		seen[cat] = struct{}{}
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

func proportional(alloc map[string]int, weak []string, wrong map[string]int, share int) {
	totalWrong := 0
	for _, cat := range weak {
		totalWrong += wrong[cat]
	}
	given := 0
	for _, cat := range weak {
		n := share * wrong[cat] / totalWrong
		alloc[cat] = n
		given += n
	}
	alloc[weak[0]] += share - given
}

func spreadEvenly(alloc map[string]int, cats []string, n int) {
	if n <= 0 || len(cats) == 0 {
		return
	}
	base := n / len(cats)
	rem := n % len(cats)
	for i, cat := range cats {
		alloc[cat] = base
		if i < rem {
			alloc[cat]++
		}
	}
}

// PlanNextRound derives the next round's plan from a completed round and the
// metadata of the questions that were asked in it.
func PlanNextRound(rr domain.RoundResult, questions []domain.QuestionMeta, size int, s Settings) (domain.DifficultyPlan, error) {
	tier := TierForScore(rr.Score)
	prior := AverageDifficulty(questions, s.DefaultDifficulty)
	adjusted, err := AdjustDifficulty(prior, tier)
	if err != nil {
		return domain.DifficultyPlan{}, err
	}

	known := append([]string(nil), s.Categories...)
	for _, q := range questions {
		if q.Category != "" {
			known = append(known, q.Category)
		}
	}
	alloc, err := AllocateCategories(rr.WrongCategories, size, known)
	if err != nil {
		return domain.DifficultyPlan{}, err
	}

	weak := make(map[string]int, len(rr.WrongCategories))
	for cat, count := range rr.WrongCategories {
		if count > 0 {
			weak[cat] = count
		}
	}
	return domain.DifficultyPlan{
		SessionID:          rr.SessionID,
		Round:              rr.Round + 1,
		Tier:               tier,
		PriorDifficulty:    domain.Round2(prior),
		AdjustedDifficulty: domain.Round2(adjusted),
		WeakCategories:     weak,
		CategoryAllocation: alloc,
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
