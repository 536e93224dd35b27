package cli

import (
	"context"
	"time"

	"github.com/dev-team-404/slea-ssem-sub001/internal/app"
	"github.com/dev-team-404/slea-ssem-sub001/internal/config"
	"github.com/dev-team-404/slea-ssem-sub001/internal/domain"
	"github.com/dev-team-404/slea-ssem-sub001/internal/infra/memory"
	"github.com/dev-team-404/slea-ssem-sub001/internal/infra/postgres"
	redisinfra "github.com/dev-team-404/slea-ssem-sub001/internal/infra/redis"
	"github.com/dev-team-404/slea-ssem-sub001/internal/logger"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// buildService wires the assessment service from config. Without a Postgres
// URL everything runs in memory over a small demo data set. The returned
// cleanup closes every opened connection.
func buildService(ctx context.Context, cfg config.Config, log *logger.Logger) (*app.AssessmentService, func(), error) {
	settings, err := cfg.Engine()
	if err != nil {
		return nil, nil, err
	}

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var (
		repos  app.Repositories
		loader memory.QuestionLoader
	)
	if cfg.Postgres.URL != "" {
		db := postgres.Open(cfg.Postgres.URL)
		cleanups = append(cleanups, func() { _ = db.Close() })

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		cleanups = append(cleanups, pool.Close)

		store := postgres.NewStore(db)
		loader = postgres.NewQuestionLoader(pool)
		repos = app.Repositories{
			Sessions: store,
			Attempts: store,
			Results:  store,
			Cohorts:  postgres.NewCohortReader(pool),
			Badges:   store,
		}
		log.Info("using postgres storage")
	} else {
		store := memory.NewStore()
		seedDemo(store)
		loader = store
		repos = app.Repositories{
			Sessions: store,
			Attempts: store,
			Results:  store,
			Cohorts:  store,
			Badges:   store,
		}
		log.Warn("postgres url not configured, using in-memory demo storage")
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cleanups = append(cleanups, func() { _ = client.Close() })
		repos.Questions = redisinfra.NewQuestionCatalog(client, loader, catalogTTL)
	} else {
		repos.Questions = memory.NewQuestionCatalog(loader, catalogTTL)
	}

	return app.NewAssessmentService(repos, settings, log), cleanup, nil
}

// seedDemo provides a minimal data set; swap in Postgres for real sessions.
func seedDemo(store *memory.Store) {
	now := time.Now().UTC()
	store.AddSession(domain.Session{ID: "demo-session-1", UserID: "demo-user", Round: 1, CreatedAt: now})
	categories := []string{"RAG", "RAG", "LLM", "Prompt Engineering", "Evaluation"}
	correct := []bool{false, false, true, false, true}
	for i, cat := range categories {
		qid := "demo-q" + string(rune('1'+i))
		store.AddQuestions(domain.QuestionMeta{ID: qid, SessionID: "demo-session-1", Category: cat, Difficulty: 5})
		score := 0.0
		if correct[i] {
			score = 100
		}
		store.AddAttempts(domain.AttemptAnswer{
			SessionID:   "demo-session-1",
			QuestionID:  qid,
			Answer:      "demo",
			Correct:     correct[i],
			Score:       score,
			SubmittedAt: now,
		})
	}
}
