package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dev-team-404/slea-ssem-sub001/internal/domain"
	"github.com/dev-team-404/slea-ssem-sub001/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestQuestionCatalogCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{QuestionLoader: sampleStore()}
	catalog := NewQuestionCatalog(client, loader, time.Minute)

	qs, err := catalog.SessionQuestions(context.Background(), "s1")
	if err != nil {
		t.Fatalf("session questions: %v", err)
	}
	if loader.calls != 1 || len(qs) != 2 {
		t.Fatalf("expected loader called once with 2 questions, got calls=%d len=%d", loader.calls, len(qs))
	}
	if got := mr.HGet("session:s1:categories", "q1"); got != "RAG" {
		t.Fatalf("expected category cached, got %q", got)
	}
	if mr.TTL("session:s1:difficulties") <= 0 {
		t.Fatalf("expected ttl on cached hash")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := catalog.SessionQuestions(context.Background(), "s1")
	if err != nil {
		t.Fatalf("cached questions: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	want := []domain.QuestionMeta{
		{ID: "q1", SessionID: "s1", Category: "RAG", Difficulty: 4.5},
		{ID: "q2", SessionID: "s1", Category: "", Difficulty: 7},
	}
	for i := range want {
		if cached[i] != want[i] {
			t.Fatalf("cached question %d = %+v, want %+v", i, cached[i], want[i])
		}
	}
}

func TestQuestionCatalogReloadsWhenDifficultiesMissing(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	mr.HSet("session:s1:categories", "q1", "RAG", "q2", "")
	mr.HSet("session:s1:difficulties", "q1", "4.5")

	loader := &countingLoader{QuestionLoader: sampleStore()}
	catalog := NewQuestionCatalog(newClient(mr), loader, time.Minute)
	qs, err := catalog.SessionQuestions(context.Background(), "s1")
	if err != nil {
		t.Fatalf("session questions: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected a partial cache entry to reload, loader calls=%d", loader.calls)
	}
	if len(qs) != 2 || qs[1].Difficulty != 7 {
		t.Fatalf("unexpected questions %+v", qs)
	}
	if got := mr.HGet("session:s1:difficulties", "q2"); got != "7" {
		t.Fatalf("expected difficulty refilled, got %q", got)
	}
}

func TestQuestionCatalogLoaderErrors(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	catalog := NewQuestionCatalog(newClient(mr), sampleStore(), time.Minute)
	if _, err := catalog.SessionQuestions(context.Background(), "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

type countingLoader struct {
	memory.QuestionLoader
	calls int
}

func (l *countingLoader) LoadQuestions(ctx context.Context, sessionID string) ([]domain.QuestionMeta, error) {
	l.calls++
	return l.QuestionLoader.LoadQuestions(ctx, sessionID)
}

func sampleStore() *memory.Store {
	store := memory.NewStore()
	store.AddSession(domain.Session{ID: "s1", UserID: "u1", Round: 1, CreatedAt: time.Now()})
	store.AddQuestions(
		domain.QuestionMeta{ID: "q1", SessionID: "s1", Category: "RAG", Difficulty: 4.5},
		domain.QuestionMeta{ID: "q2", SessionID: "s1", Difficulty: 7},
	)
	return store
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
