package engine

import (
	"fmt"
	"time"

	"github.com/dev-team-404/slea-ssem-sub001/internal/domain"
)

// Cutoff is the inclusive lower bound of a grade.
type Cutoff struct {
	Grade domain.Grade
	Min   float64
}

// GradeScale is an ascending list of cutoffs, one per grade.
type GradeScale []Cutoff

// DefaultGradeScale returns the 0/40/60/75/90 scale.
func DefaultGradeScale() GradeScale {
	return GradeScale{
		{Grade: domain.GradeBeginner, Min: 0},
		{Grade: domain.GradeIntermediate, Min: 40},
		{Grade: domain.GradeIntermediateAdvanced, Min: 60},
		{Grade: domain.GradeAdvanced, Min: 75},
		{Grade: domain.GradeElite, Min: 90},
	}
}

// Validate checks that the scale covers every grade in order, starts at zero
// and has strictly increasing cutoffs.
func (s GradeScale) Validate() error {
	if len(s) != len(domain.Grades) {
		return fmt.Errorf("%w: expected %d cutoffs, got %d", domain.ErrInvalidGradeScale, len(domain.Grades), len(s))
	}
	for i, c := range s {
		if c.Grade != domain.Grades[i] {
			return fmt.Errorf("%w: cutoff %d is %q, want %q", domain.ErrInvalidGradeScale, i, c.Grade, domain.Grades[i])
		}
		if i == 0 && c.Min != 0 {
			return fmt.Errorf("%w: lowest cutoff must be 0", domain.ErrInvalidGradeScale)
		}
		if i > 0 && c.Min <= s[i-1].Min {
			return fmt.Errorf("%w: cutoff for %s not above %s", domain.ErrInvalidGradeScale, c.Grade, s[i-1].Grade)
		}
		if c.Min > 100 {
			return fmt.Errorf("%w: cutoff for %s above 100", domain.ErrInvalidGradeScale, c.Grade)
		}
	}
	return nil
}

// Settings holds the tunables of the engine.
type Settings struct {
	CohortWindow        time.Duration
	ConfidenceThreshold int
	// RoundWeights[i] is the weight of round i+1. Rounds past the end reuse the
	// last weight.
	RoundWeights      []float64
	Scale             GradeScale
	Categories        []string
	DefaultDifficulty float64
	DefaultRoundSize  int
}

// DefaultSettings mirrors the production configuration.
func DefaultSettings() Settings {
	return Settings{
		CohortWindow:        90 * 24 * time.Hour,
		ConfidenceThreshold: 100,
		RoundWeights:        []float64{1.0, 2.0},
		Scale:               DefaultGradeScale(),
		Categories:          []string{"Agent Architecture", "Deployment", "Evaluation", "LLM", "Prompt Engineering", "RAG"},
		DefaultDifficulty:   5.0,
		DefaultRoundSize:    5,
	}
}

// Validate rejects settings the engine cannot run with.
func (s Settings) Validate() error {
	if err := s.Scale.Validate(); err != nil {
		return err
	}
	if s.CohortWindow <= 0 {
		return fmt.Errorf("cohort window must be positive, got %s", s.CohortWindow)
	}
	if s.ConfidenceThreshold < 1 {
		return fmt.Errorf("confidence threshold must be positive, got %d", s.ConfidenceThreshold)
	}
	if len(s.RoundWeights) == 0 {
		return fmt.Errorf("at least one round weight is required")
	}
	for i, w := range s.RoundWeights {
		if w <= 0 {
			return fmt.Errorf("round %d weight must be positive, got %v", i+1, w)
		}
	}
	if s.DefaultRoundSize < 0 {
		return fmt.Errorf("default round size must not be negative")
	}
	return nil
}

// WeightFor returns the weight of the given 1-indexed round.
func (s Settings) WeightFor(round int) float64 {
	if len(s.RoundWeights) == 0 {
		return 1
	}
	if round < 1 {
		round = 1
	}
	if round > len(s.RoundWeights) {
		return s.RoundWeights[len(s.RoundWeights)-1]
	}
	return s.RoundWeights[round-1]
}
