package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/dev-team-404/slea-ssem-sub001/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches a session's question metadata from a backing store.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, sessionID string) ([]domain.QuestionMeta, error)
}

// QuestionCatalog caches question metadata per session with TTL to avoid
// repeated DB hits. Questions of a session never change once generated.
type QuestionCatalog struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedQuestions
}

type cachedQuestions struct {
	questions []domain.QuestionMeta
	expiresAt time.Time
}

func NewQuestionCatalog(loader QuestionLoader, ttl time.Duration) *QuestionCatalog {
	return &QuestionCatalog{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuestions),
	}
}

func (c *QuestionCatalog) SessionQuestions(ctx context.Context, sessionID string) ([]domain.QuestionMeta, error) {
	if qs, ok := c.lookup(sessionID); ok {
		return qs, nil
	}

	result, err, _ := c.sf.Do(sessionID, func() (interface{}, error) {
		if qs, ok := c.lookup(sessionID); ok {
			return qs, nil
		}

		qs, err := c.loader.LoadQuestions(ctx, sessionID)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[sessionID] = cachedQuestions{
			questions: qs,
			expiresAt: c.clock().Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneQuestions(result.([]domain.QuestionMeta)), nil
}

func (c *QuestionCatalog) lookup(sessionID string) ([]domain.QuestionMeta, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[sessionID]
	if !ok || !entry.expiresAt.After(now) {
		return nil, false
	}
	return cloneQuestions(entry.questions), true
}

func (c *QuestionCatalog) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func cloneQuestions(in []domain.QuestionMeta) []domain.QuestionMeta {
	if in == nil {
		return nil
	}
	return append([]domain.QuestionMeta(nil), in...)
}
