package app

import (
	"sync"

	"github.com/dev-team-404/slea-ssem-sub001/internal/domain"
)

// GradeFeed fans recomputed grade results out to subscribers of a user.
type GradeFeed struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.GradeResult]struct{}
}

func NewGradeFeed() *GradeFeed {
	return &GradeFeed{subscribers: make(map[string]map[chan domain.GradeResult]struct{})}
}

// Subscribe returns a channel of grade updates for userID.
// The caller must invoke the returned cancel function to avoid leaks.
func (f *GradeFeed) Subscribe(userID string) (<-chan domain.GradeResult, func()) {
	ch := make(chan domain.GradeResult, 8)

	f.mu.Lock()
	subs, ok := f.subscribers[userID]
	if !ok {
		subs = make(map[chan domain.GradeResult]struct{})
		f.subscribers[userID] = subs
	}
	subs[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		subs, ok := f.subscribers[userID]
		if !ok {
			return
		}
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(f.subscribers, userID)
		}
	}
	return ch, cancel
}

// HasSubscribers reports whether anyone listens for userID.
func (f *GradeFeed) HasSubscribers(userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers[userID]) > 0
}

// Publish delivers gr to every subscriber of its user without blocking. A slow
// subscriber loses its oldest pending update.
func (f *GradeFeed) Publish(gr domain.GradeResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers[gr.UserID] {
		select {
		case ch <- gr:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- gr
		}
	}
}
