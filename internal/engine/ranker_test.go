package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dev-team-404/slea-ssem-sub001/internal/domain"
)

func TestRankLargeCohort(t *testing.T) {
	composites := map[string]float64{"top-1": 97, "top-2": 95, "me": 82}
	for i := 0; i < 503; i++ {
		composites[fmt.Sprintf("u%03d", i)] = float64(i % 80)
	}
	r, err := Rank("me", composites, 100)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if r.Rank != 3 || r.CohortSize != 506 {
		t.Fatalf("expected rank 3 of 506, got %d of %d", r.Rank, r.CohortSize)
	}
	// 100 * (506 - 3 + 1) / 506
	if r.Percentile != 99.6 {
		t.Fatalf("expected percentile 99.6, got %v", r.Percentile)
	}
	if r.Confidence != domain.ConfidenceHigh {
		t.Fatalf("expected high confidence, got %s", r.Confidence)
	}
	if r.Description != "top 0.4%" {
		t.Fatalf("unexpected description %q", r.Description)
	}
}

func TestRankSmallCohortHasMediumConfidence(t *testing.T) {
	r, err := Rank("b", map[string]float64{"a": 90, "b": 70, "c": 50, "d": 10}, 100)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if r.Rank != 2 || r.Percentile != 75 || r.Confidence != domain.ConfidenceMedium {
		t.Fatalf("unexpected ranking %+v", r)
	}
	if r.Description != "top 25%" {
		t.Fatalf("unexpected description %q", r.Description)
	}
}

func TestRankTiesShareRank(t *testing.T) {
	composites := map[string]float64{"a": 80, "b": 80, "c": 80, "d": 60}
	for _, id := range []string{"a", "b", "c"} {
		r, _ := Rank(id, composites, 100)
		if r.Rank != 1 {
			t.Fatalf("expected tied users to share rank 1, %s got %d", id, r.Rank)
		}
	}
	r, _ := Rank("d", composites, 100)
	if r.Rank != 4 {
		t.Fatalf("expected rank 4 after a three-way tie, got %d", r.Rank)
	}
}

func TestRankCountsStrictlyBetter(t *testing.T) {
	composites := map[string]float64{"a": 10, "b": 20, "c": 20, "d": 35.5, "e": 99, "f": 0}
	for subject, mine := range composites {
		r, err := Rank(subject, composites, 100)
		if err != nil {
			t.Fatalf("rank: %v", err)
		}
		better := 0
		for _, other := range composites {
			if other > mine {
				better++
			}
		}
		if r.Rank-1 != better {
			t.Fatalf("%s: rank %d but %d strictly better", subject, r.Rank, better)
		}
	}
}

func TestRankRemovingMembers(t *testing.T) {
	composites := map[string]float64{"me": 70, "better": 90, "worse-1": 40, "worse-2": 30}
	before, _ := Rank("me", composites, 100)

	withoutWorse := copyComposites(composites)
	delete(withoutWorse, "worse-2")
	afterWorse, _ := Rank("me", withoutWorse, 100)
	if afterWorse.Rank != before.Rank {
		t.Fatalf("removing a worse user changed rank from %d to %d", before.Rank, afterWorse.Rank)
	}

	withoutBetter := copyComposites(composites)
	delete(withoutBetter, "better")
	afterBetter, _ := Rank("me", withoutBetter, 100)
	if afterBetter.Percentile < before.Percentile {
		t.Fatalf("removing a better user lowered percentile from %v to %v", before.Percentile, afterBetter.Percentile)
	}
}

func TestRankUnknownSubject(t *testing.T) {
	if _, err := Rank("ghost", map[string]float64{"a": 1}, 100); !errors.Is(err, domain.ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}

func TestRankSharesTiedPosition(t *testing.T) {
	composites := map[string]float64{"carol": 70, "alice": 70, "bob": 90}
	for _, id := range []string{"alice", "carol"} {
		r, err := Rank(id, composites, 100)
		if err != nil {
			t.Fatalf("rank %s: %v", id, err)
		}
		if r.Rank != 2 || r.CohortSize != 3 {
			t.Fatalf("expected %s at rank 2 of 3, got %+v", id, r)
		}
	}
}

func TestStandingsOrderTiesByUserID(t *testing.T) {
	got := Standings(map[string]float64{"carol": 70, "alice": 70, "bob": 90, "dave": 50})
	want := []Standing{
		{UserID: "bob", Composite: 90, Rank: 1},
		{UserID: "alice", Composite: 70, Rank: 2},
		{UserID: "carol", Composite: 70, Rank: 2},
		{UserID: "dave", Composite: 50, Rank: 4},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d standings, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("standing %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestEvaluate(t *testing.T) {
	snapshot := domain.CohortSnapshot{
		SubjectID: "me",
		Results: map[string][]domain.RoundResult{
			"me": {
				{SessionID: "s1", Round: 1, Score: 60, CorrectCount: 3, TotalCount: 5},
				{SessionID: "s2", Round: 2, Score: 85, CorrectCount: 4, TotalCount: 5},
			},
			"peer": {{SessionID: "s3", Round: 1, Score: 100, CorrectCount: 5, TotalCount: 5}},
			"idle": nil,
		},
	}
	gr, err := Evaluate(snapshot, DefaultSettings())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if gr.Grade != domain.GradeAdvanced || gr.CompositeScore != 80.33 {
		t.Fatalf("unexpected grade %+v", gr)
	}
	if gr.Rank != 2 || gr.CohortSize != 2 || gr.Percentile != 50 {
		t.Fatalf("unexpected ranking %+v", gr)
	}

	again, _ := Evaluate(snapshot, DefaultSettings())
	if again != gr {
		t.Fatalf("evaluation not reproducible: %+v vs %+v", gr, again)
	}
}

func TestEvaluateWithoutRounds(t *testing.T) {
	snapshot := domain.CohortSnapshot{SubjectID: "me", Results: map[string][]domain.RoundResult{}}
	if _, err := Evaluate(snapshot, DefaultSettings()); !errors.Is(err, domain.ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}

func TestDescribePercentile(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{100, "top 0%"},
		{72, "top 28%"},
		{99.407, "top 0.6%"},
		{50, "top 50%"},
	}
	for _, tt := range tests {
		if got := DescribePercentile(tt.in); got != tt.want {
			t.Errorf("DescribePercentile(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func copyComposites(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
