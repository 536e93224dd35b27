package domain

import "errors"

var (
	// ErrUserNotFound is returned for user ids the identity component never issued.
	ErrUserNotFound = errors.New("user not found")
	// ErrSessionNotFound is returned when a session id is unknown.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRoundResultNotFound indicates the round has not been completed yet.
	ErrRoundResultNotFound = errors.New("round result not found")
	// ErrNoResult means the user exists but has no completed rounds.
	ErrNoResult = errors.New("no result available")
	// ErrInvalidRoundResult rejects round results that break count invariants.
	ErrInvalidRoundResult = errors.New("invalid round result")
	// ErrInvalidGradeResult rejects grade results with out-of-range values.
	ErrInvalidGradeResult = errors.New("invalid grade result")
	// ErrInvalidTier is a programming error: tiers come only from TierForScore.
	ErrInvalidTier = errors.New("invalid difficulty tier")
	// ErrInvalidGradeScale indicates malformed grade cutoff configuration.
	ErrInvalidGradeScale = errors.New("invalid grade scale")
	// ErrInvalidAllocation is returned for negative round sizes.
	ErrInvalidAllocation = errors.New("invalid allocation request")
	// ErrNoCategories means there is nothing to allocate questions to.
	ErrNoCategories = errors.New("no categories available")
)

// IsNotFound reports whether err is one of the input "not found" conditions.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrRoundResultNotFound)
}

