package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dev-team-404/slea-ssem-sub001/internal/domain"
)

// Store is an in-memory implementation of every app repository. It doubles as a
// QuestionLoader so it can sit behind a QuestionCatalog.
type Store struct {
	mu        sync.RWMutex
	users     map[string]time.Time
	sessions  map[string]domain.Session
	attempts  map[string][]domain.AttemptAnswer
	questions map[string][]domain.QuestionMeta
	results   map[resultKey]domain.RoundResult
	badges    map[string][]domain.UserBadge
}

type resultKey struct {
	sessionID string
	round     int
}

func NewStore() *Store {
	return &Store{
		users:     make(map[string]time.Time),
		sessions:  make(map[string]domain.Session),
		attempts:  make(map[string][]domain.AttemptAnswer),
		questions: make(map[string][]domain.QuestionMeta),
		results:   make(map[resultKey]domain.RoundResult),
		badges:    make(map[string][]domain.UserBadge),
	}
}

// AddUser registers a user id issued by the identity component.
func (s *Store) AddUser(userID string, createdAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = createdAt
}

// AddSession registers a session and its user.
func (s *Store) AddSession(session domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[session.UserID]; !ok {
		s.users[session.UserID] = session.CreatedAt
	}
	s.sessions[session.ID] = session
}

// AddQuestions appends question metadata to its session.
func (s *Store) AddQuestions(questions ...domain.QuestionMeta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range questions {
		s.questions[q.SessionID] = append(s.questions[q.SessionID], q)
	}
}

// AddAttempts appends submitted answers to their session.
func (s *Store) AddAttempts(attempts ...domain.AttemptAnswer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range attempts {
		s.attempts[a.SessionID] = append(s.attempts[a.SessionID], a)
	}
}

func (s *Store) GetSession(_ context.Context, sessionID string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *Store) ListAttempts(_ context.Context, sessionID string) ([]domain.AttemptAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return nil, domain.ErrSessionNotFound
	}
	return append([]domain.AttemptAnswer(nil), s.attempts[sessionID]...), nil
}

func (s *Store) LoadQuestions(_ context.Context, sessionID string) ([]domain.QuestionMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return nil, domain.ErrSessionNotFound
	}
	return append([]domain.QuestionMeta(nil), s.questions[sessionID]...), nil
}

// SessionQuestions lets the store serve as an uncached catalog.
func (s *Store) SessionQuestions(ctx context.Context, sessionID string) ([]domain.QuestionMeta, error) {
	return s.LoadQuestions(ctx, sessionID)
}

func (s *Store) GetRoundResult(_ context.Context, sessionID string, round int) (domain.RoundResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rr, ok := s.results[resultKey{sessionID, round}]
	if !ok {
		return domain.RoundResult{}, domain.ErrRoundResultNotFound
	}
	return cloneResult(rr), nil
}

func (s *Store) SaveRoundResult(_ context.Context, rr domain.RoundResult) (domain.RoundResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := resultKey{rr.SessionID, rr.Round}
	if existing, ok := s.results[key]; ok {
		return cloneResult(existing), false, nil
	}
	stored := cloneResult(rr)
	s.results[key] = stored
	return cloneResult(stored), true, nil
}

// ReadCohort holds the read lock for the whole read so the snapshot is
// consistent with concurrent completions.
func (s *Store) ReadCohort(_ context.Context, userID string, since time.Time) (domain.CohortSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.users[userID]; !ok {
		return domain.CohortSnapshot{}, domain.ErrUserNotFound
	}

	members := map[string]struct{}{}
	for _, session := range s.sessions {
		if !session.CreatedAt.Before(since) {
			members[session.UserID] = struct{}{}
		}
	}

	snapshot := domain.CohortSnapshot{
		SubjectID: userID,
		Results:   make(map[string][]domain.RoundResult, len(members)),
	}
	for _, rr := range s.results {
		if _, ok := members[rr.UserID]; ok {
			snapshot.Results[rr.UserID] = append(snapshot.Results[rr.UserID], cloneResult(rr))
		}
	}
	return snapshot, nil
}

func (s *Store) HasBadge(_ context.Context, userID, badgeName string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.badges[userID] {
		if b.BadgeName == badgeName {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) AwardBadge(_ context.Context, badge domain.UserBadge) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[badge.UserID]; !ok {
		return false, domain.ErrUserNotFound
	}
	for _, b := range s.badges[badge.UserID] {
		if b.BadgeName == badge.BadgeName {
			return false, nil
		}
	}
	s.badges[badge.UserID] = append(s.badges[badge.UserID], badge)
	return true, nil
}

func (s *Store) ListBadges(_ context.Context, userID string) ([]domain.UserBadge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.users[userID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	out := append([]domain.UserBadge{}, s.badges[userID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].AwardedAt.Before(out[j].AwardedAt) })
	return out, nil
}

func cloneResult(rr domain.RoundResult) domain.RoundResult {
	wrong := make(map[string]int, len(rr.WrongCategories))
	for k, v := range rr.WrongCategories {
		wrong[k] = v
	}
	rr.WrongCategories = wrong
	return rr
}
