package domain

import (
	"fmt"
	"math"
	"time"
)

// Session is one attempt at a round's question set. Sessions are created by the
// question generation component; the engine only reads them.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Round     int       `json:"round"`
	CreatedAt time.Time `json:"createdAt"`
}

// QuestionMeta is the part of a generated question the engine cares about.
type QuestionMeta struct {
	ID         string  `json:"id"`
	SessionID  string  `json:"sessionId"`
	Category   string  `json:"category"` // empty when uncategorized
	Difficulty float64 `json:"difficulty"`
}

// AttemptAnswer is a single submitted answer. Immutable once written.
type AttemptAnswer struct {
	SessionID    string        `json:"sessionId"`
	QuestionID   string        `json:"questionId"`
	Answer       string        `json:"answer"`
	Correct      bool          `json:"correct"`
	Score        float64       `json:"score"` // partial credit, 0-100
	ResponseTime time.Duration `json:"responseTime"`
	SubmittedAt  time.Time     `json:"submittedAt"`
}

// RoundResult is the aggregated outcome of one session's round.
// Build it with NewRoundResult so the count invariant is checked.
type RoundResult struct {
	ID              string         `json:"id"`
	SessionID       string         `json:"sessionId"`
	UserID          string         `json:"userId"`
	Round           int            `json:"round"`
	Score           float64        `json:"score"`
	TotalPoints     float64        `json:"totalPoints"`
	CorrectCount    int            `json:"correctCount"`
	TotalCount      int            `json:"totalCount"`
	WrongCategories map[string]int `json:"wrongCategories"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// NewRoundResult validates and builds a RoundResult. The score is derived from
// totalPoints and totalCount.
func NewRoundResult(sessionID, userID string, round int, totalPoints float64, correct, total int, wrong map[string]int) (RoundResult, error) {
	switch {
	case round < 1:
		return RoundResult{}, fmt.Errorf("%w: round %d", ErrInvalidRoundResult, round)
	case correct < 0 || total < 0:
		return RoundResult{}, fmt.Errorf("%w: negative counts", ErrInvalidRoundResult)
	case correct > total:
		return RoundResult{}, fmt.Errorf("%w: correct %d > total %d", ErrInvalidRoundResult, correct, total)
	case totalPoints < 0 || totalPoints > float64(total)*100:
		return RoundResult{}, fmt.Errorf("%w: points %.2f out of range", ErrInvalidRoundResult, totalPoints)
	}
	if wrong == nil {
		wrong = map[string]int{}
	}
	score := 0.0
	if total > 0 {
		score = Round2(totalPoints / float64(total))
	}
	return RoundResult{
		SessionID:       sessionID,
		UserID:          userID,
		Round:           round,
		Score:           score,
		TotalPoints:     totalPoints,
		CorrectCount:    correct,
		TotalCount:      total,
		WrongCategories: wrong,
	}, nil
}

// Tier is the difficulty band derived from a round score.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// DifficultyPlan seeds the next round. It is never persisted.
type DifficultyPlan struct {
	SessionID          string         `json:"sessionId"`
	Round              int            `json:"round"`
	Tier               Tier           `json:"tier"`
	PriorDifficulty    float64        `json:"priorDifficulty"`
	AdjustedDifficulty float64        `json:"adjustedDifficulty"`
	WeakCategories     map[string]int `json:"weakCategories"`
	CategoryAllocation map[string]int `json:"categoryAllocation"`
}

// Grade is one of five ordered tiers.
type Grade string

const (
	GradeBeginner             Grade = "Beginner"
	GradeIntermediate         Grade = "Intermediate"
	GradeIntermediateAdvanced Grade = "Intermediate-Advanced"
	GradeAdvanced             Grade = "Advanced"
	GradeElite                Grade = "Elite"
)

// Grades lists every grade from lowest to highest.
var Grades = []Grade{GradeBeginner, GradeIntermediate, GradeIntermediateAdvanced, GradeAdvanced, GradeElite}

// Confidence labels how noisy a percentile is given the cohort size.
type Confidence string

const (
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// GradeResult is a computed view over a user's round results and the cohort.
type GradeResult struct {
	UserID                string     `json:"userId"`
	Grade                 Grade      `json:"grade"`
	CompositeScore        float64    `json:"compositeScore"`
	Rank                  int        `json:"rank"`
	CohortSize            int        `json:"cohortSize"`
	Percentile            float64    `json:"percentile"`
	PercentileConfidence  Confidence `json:"percentileConfidence"`
	PercentileDescription string     `json:"percentileDescription"`
}

// NewGradeResult rejects results whose rank or percentile are inconsistent.
func NewGradeResult(userID string, grade Grade, composite float64, rank, cohortSize int, percentile float64, confidence Confidence, description string) (GradeResult, error) {
	switch {
	case userID == "":
		return GradeResult{}, fmt.Errorf("%w: empty user id", ErrInvalidGradeResult)
	case composite < 0 || composite > 100:
		return GradeResult{}, fmt.Errorf("%w: composite %.2f", ErrInvalidGradeResult, composite)
	case cohortSize < 1 || rank < 1 || rank > cohortSize:
		return GradeResult{}, fmt.Errorf("%w: rank %d of %d", ErrInvalidGradeResult, rank, cohortSize)
	case percentile < 0 || percentile > 100:
		return GradeResult{}, fmt.Errorf("%w: percentile %.2f", ErrInvalidGradeResult, percentile)
	}
	return GradeResult{
		UserID:                userID,
		Grade:                 grade,
		CompositeScore:        composite,
		Rank:                  rank,
		CohortSize:            cohortSize,
		Percentile:            percentile,
		PercentileConfidence:  confidence,
		PercentileDescription: description,
	}, nil
}

// BadgeType distinguishes grade badges from the extra specialist badge.
type BadgeType string

const (
	BadgeTypeGrade      BadgeType = "grade"
	BadgeTypeSpecialist BadgeType = "specialist"
)

// UserBadge is unique per (user, badge name) and never deleted.
type UserBadge struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	BadgeName string    `json:"badgeName"`
	BadgeType BadgeType `json:"badgeType"`
	AwardedAt time.Time `json:"awardedAt"`
}

// CohortSnapshot is one consistent read of round results: the subject's own
// results plus those of every user active inside the window.
type CohortSnapshot struct {
	SubjectID string
	// Results maps user id to that user's round results. The subject is always
	// present when it has any results.
	Results map[string][]RoundResult
}

// Round2 rounds to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
