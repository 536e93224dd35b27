package engine

import (
	"math"
	"sort"
	"strconv"

	"github.com/dev-team-404/slea-ssem-sub001/internal/domain"
)

// Standing is one cohort member's position.
type Standing struct {
	UserID    string  `json:"userId"`
	Composite float64 `json:"composite"`
	Rank      int     `json:"rank"`
}

// Ranking is the subject's position inside the cohort.
type Ranking struct {
	Rank        int
	CohortSize  int
	Percentile  float64
	Confidence  domain.Confidence
	Description string
}

// Standings orders the cohort by composite descending. Equal composites share
// a rank (1 + number of strictly better members) and are listed by user id.
func Standings(composites map[string]float64) []Standing {
	out := make([]Standing, 0, len(composites))
	for id, score := range composites {
		out = append(out, Standing{UserID: id, Composite: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Composite != out[j].Composite {
			return out[i].Composite > out[j].Composite
		}
		return out[i].UserID < out[j].UserID
	})
	for i := range out {
		if i > 0 && out[i].Composite == out[i-1].Composite {
			out[i].Rank = out[i-1].Rank
			continue
		}
		out[i].Rank = i + 1
	}
	return out
}

// CohortComposites computes the composite of every member of the snapshot that
// has at least one completed round.
func CohortComposites(snapshot domain.CohortSnapshot, s Settings) map[string]float64 {
	out := make(map[string]float64, len(snapshot.Results))
	for id, results := range snapshot.Results {
		if score, ok := Composite(results, s); ok {
			out[id] = score
		}
	}
	return out
}

// Rank places subject inside composites. It returns domain.ErrNoResult when the
// subject has no composite, which includes a subject outside the cohort window.
func Rank(subject string, composites map[string]float64, threshold int) (Ranking, error) {
	rank := 0
	for _, st := range Standings(composites) {
		if st.UserID == subject {
			rank = st.Rank
			break
		}
	}
	if rank == 0 {
		return Ranking{}, domain.ErrNoResult
	}
	size := len(composites)
	raw := 100 * float64(size-rank+1) / float64(size)

	conf := domain.ConfidenceHigh
	if size < threshold {
		conf = domain.ConfidenceMedium
	}
	return Ranking{
		Rank:        rank,
		CohortSize:  size,
		Percentile:  domain.Round2(raw),
		Confidence:  conf,
		Description: DescribePercentile(raw),
	}, nil
}

// DescribePercentile renders "top X%" with X = 100 - percentile, one decimal.
func DescribePercentile(percentile float64) string {
	top := math.Round((100-percentile)*10) / 10
	if top < 0 {
		top = 0
	}
	return "top " + strconv.FormatFloat(top, 'f', -1, 64) + "%"
}

// Evaluate computes the subject's GradeResult from one cohort snapshot.
func Evaluate(snapshot domain.CohortSnapshot, s Settings) (domain.GradeResult, error) {
	composites := CohortComposites(snapshot, s)
	ranking, err := Rank(snapshot.SubjectID, composites, s.ConfidenceThreshold)
	if err != nil {
		return domain.GradeResult{}, err
	}
	composite := composites[snapshot.SubjectID]
	return domain.NewGradeResult(
		snapshot.SubjectID,
		s.Scale.GradeFor(composite),
		composite,
		ranking.Rank,
		ranking.CohortSize,
		ranking.Percentile,
		ranking.Confidence,
		ranking.Description,
	)
}
