package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dev-team-404/slea-ssem-sub001/internal/domain"
)

func TestBadgeAssignerIsIdempotent(t *testing.T) {
	repo := newFakeBadges()
	assigner := NewBadgeAssigner(repo)
	gr := domain.GradeResult{UserID: "u1", Grade: domain.GradeAdvanced}

	awarded, err := assigner.Assign(context.Background(), gr)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if len(awarded) != 1 || awarded[0].BadgeName != "advanced badge" {
		t.Fatalf("unexpected awards %+v", awarded)
	}
	awarded, err = assigner.Assign(context.Background(), gr)
	if err != nil || len(awarded) != 0 {
		t.Fatalf("expected nothing new, got %+v err=%v", awarded, err)
	}
	if repo.inserts != 1 {
		t.Fatalf("expected a single insert, got %d", repo.inserts)
	}
}

func TestBadgeAssignerConcurrentGrades(t *testing.T) {
	repo := newFakeBadges()
	assigner := NewBadgeAssigner(repo)
	gr := domain.GradeResult{UserID: "u1", Grade: domain.GradeElite}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = assigner.Assign(context.Background(), gr)
		}()
	}
	wg.Wait()

	if len(repo.badges["u1"]) != 2 {
		t.Fatalf("expected elite and specialist badges only, got %+v", repo.badges["u1"])
	}
}

func TestBadgeAssignerCollectsFailures(t *testing.T) {
	repo := newFakeBadges()
	repo.failAward = errors.New("boom")
	assigner := NewBadgeAssigner(repo)

	_, err := assigner.Assign(context.Background(), domain.GradeResult{UserID: "u1", Grade: domain.GradeElite})
	if err == nil || !errors.Is(err, repo.failAward) {
		t.Fatalf("expected wrapped failure, got %v", err)
	}
}

type fakeBadges struct {
	mu        sync.Mutex
	badges    map[string][]domain.UserBadge
	inserts   int
	failAward error
}

func newFakeBadges() *fakeBadges {
	return &fakeBadges{badges: make(map[string][]domain.UserBadge)}
}

func (f *fakeBadges) HasBadge(_ context.Context, userID, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.badges[userID] {
		if b.BadgeName == name {
			return true, nil
		}
	}
	return false, nil
}

// AwardBadge enforces uniqueness like the database constraint does.
func (f *fakeBadges) AwardBadge(_ context.Context, badge domain.UserBadge) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAward != nil {
		return false, f.failAward
	}
	for _, b := range f.badges[badge.UserID] {
		if b.BadgeName == badge.BadgeName {
			return false, nil
		}
	}
	f.inserts++
	f.badges[badge.UserID] = append(f.badges[badge.UserID], badge)
	return true, nil
}

func (f *fakeBadges) ListBadges(_ context.Context, userID string) ([]domain.UserBadge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.UserBadge(nil), f.badges[userID]...), nil
}
