package redis

import (
	"context"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/dev-team-404/slea-ssem-sub001/internal/domain"
	"github.com/dev-team-404/slea-ssem-sub001/internal/infra/memory"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionCatalog caches question metadata in Redis (two hashes per session) and
// falls back to a loader on cache miss.
// Categories are stored as:   HSET session:{sessionID}:categories   {questionID} {category}
// Difficulties are stored as: HSET session:{sessionID}:difficulties {questionID} {difficulty}
type QuestionCatalog struct {
	client *redis.Client
	loader memory.QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewQuestionCatalog(client *redis.Client, loader memory.QuestionLoader, ttl time.Duration) *QuestionCatalog {
	return &QuestionCatalog{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCatalog) SessionQuestions(ctx context.Context, sessionID string) ([]domain.QuestionMeta, error) {
	if qs, ok := c.fromCache(ctx, sessionID); ok {
		return qs, nil
	}

	result, err, _ := c.sf.Do(sessionID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if qs, ok := c.fromCache(ctx, sessionID); ok {
			return qs, nil
		}

		qs, err := c.loader.LoadQuestions(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if len(qs) == 0 {
			return qs, nil
		}

		categoryKey, difficultyKey := c.categoriesKey(sessionID), c.difficultiesKey(sessionID)
		ttl := c.ttlWithJitter()
		pipe := c.client.Pipeline()
		for _, q := range qs {
			pipe.HSet(ctx, categoryKey, q.ID, q.Category)
			pipe.HSet(ctx, difficultyKey, q.ID, strconv.FormatFloat(q.Difficulty, 'f', -1, 64))
		}
		if ttl > 0 {
			pipe.Expire(ctx, categoryKey, ttl)
			pipe.Expire(ctx, difficultyKey, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.QuestionMeta), nil
}

func (c *QuestionCatalog) fromCache(ctx context.Context, sessionID string) ([]domain.QuestionMeta, bool) {
	categories, err := c.client.HGetAll(ctx, c.categoriesKey(sessionID)).Result()
	if err != nil || len(categories) == 0 {
		return nil, false
	}
	difficulties, err := c.client.HGetAll(ctx, c.difficultiesKey(sessionID)).Result()
	if err != nil {
		return nil, false
	}
	return buildQuestionsFromCache(sessionID, categories, difficulties)
}

func (c *QuestionCatalog) categoriesKey(sessionID string) string {
	return "session:" + sessionID + ":categories"
}

func (c *QuestionCatalog) difficultiesKey(sessionID string) string {
	return "session:" + sessionID + ":difficulties"
}

// buildQuestionsFromCache reports a miss unless every cached category has a
// parseable difficulty.
func buildQuestionsFromCache(sessionID string, categories, difficulties map[string]string) ([]domain.QuestionMeta, bool) {
	questions := make([]domain.QuestionMeta, 0, len(categories))
	for questionID, category := range categories {
		raw, ok := difficulties[questionID]
		if !ok {
			return nil, false
		}
		difficulty, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, false
		}
		questions = append(questions, domain.QuestionMeta{
			ID:         questionID,
			SessionID:  sessionID,
			Category:   category,
			Difficulty: difficulty,
		})
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	return questions, true
}

func (c *QuestionCatalog) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
