// Package recommend is the request pipeline: encode every facility against
// the query, score the batch, and return the top-k by descending score.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/sparkpark/parking-recommender/internal/domain"
	"github.com/sparkpark/parking-recommender/internal/observability"
)

// Request-level failures. The HTTP layer maps these to distinct statuses
// so callers can tell a misconfigured service from a data problem.
var (
	// ErrNoCatalog means the facility workbook never loaded; the service is
	// permanently degraded until a restart.
	ErrNoCatalog = errors.New("facility catalog not loaded")

	// ErrNoScorer means the scoring artifact never loaded.
	ErrNoScorer = errors.New("scoring model not loaded")

	// ErrNoCandidates means every facility was skipped for this request —
	// distinct from a valid empty result.
	ErrNoCandidates = errors.New("no usable facilities for this request")
)

// HourNow is the Query.Hour sentinel for "use the current clock hour".
const HourNow = -1

// Query is one recommendation request.
type Query struct {
	Lat  float64
	Lng  float64
	Hour int // 0-23, HourNow for the current hour; other values are wrapped into range
	TopK int // <= 0 falls back to the service default
}

// Result is one ranked facility. Score is nil when the model produced a
// non-finite value: sanitized scores are surfaced as absent, never as
// made-up numbers.
type Result struct {
	Facility      domain.Facility
	DistanceKm    float64
	OpenNow       int
	CCTVs         int
	Guards        int
	InitialRate   float64
	PWDDiscount   int
	StreetParking int
	Score         *float64
}

// Response is a completed recommendation: the ranked results plus the
// request accounting the caller echoes back.
type Response struct {
	GeneratedAt time.Time
	Hour        int // the normalized hour actually used
	Skipped     int // facilities dropped during feature building
	Results     []Result
}

// Service computes recommendations over an immutable catalog with an
// injected scorer. All state is set at construction; concurrent requests
// share it without synchronization.
type Service struct {
	facilities  []domain.Facility
	scorer      domain.Scorer
	defaultTopK int
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// New creates a Service. A nil scorer or empty facility slice is allowed
// and leaves the service in a degraded state where every request fails
// fast with a descriptive error.
func New(facilities []domain.Facility, scorer domain.Scorer, defaultTopK int, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		facilities:  facilities,
		scorer:      scorer,
		defaultTopK: defaultTopK,
		logger:      logger,
		metrics:     metrics,
	}
}

// CheckReadiness reports whether both startup inputs loaded.
func (s *Service) CheckReadiness(_ context.Context) error {
	if len(s.facilities) == 0 {
		return ErrNoCatalog
	}
	if s.scorer == nil {
		return ErrNoScorer
	}
	return nil
}

// Recommend runs the build-score-rank pipeline for one query.
func (s *Service) Recommend(ctx context.Context, q Query) (*Response, error) {
	start := clock.Now()

	if len(s.facilities) == 0 {
		s.metrics.RequestsTotal.WithLabelValues("no_catalog").Inc()
		return nil, ErrNoCatalog
	}
	if s.scorer == nil {
		s.metrics.RequestsTotal.WithLabelValues("no_scorer").Inc()
		return nil, ErrNoScorer
	}

	hour := q.Hour
	if hour == HourNow {
		hour = clock.Now().Hour()
	}
	hour = ((hour % 24) + 24) % 24

	dq := domain.Query{Lat: q.Lat, Lng: q.Lng, Hour: hour}

	rows := make([]domain.FeatureVector, 0, len(s.facilities))
	candidates := make([]domain.Candidate, 0, len(s.facilities))
	skipped := 0
	for _, f := range s.facilities {
		c, err := domain.BuildFeatures(f, dq)
		if err != nil {
			s.logger.Warn("skipping facility", "name", f.Name, "city", f.City, "error", err)
			s.metrics.FacilitiesSkipped.Inc()
			skipped++
			continue
		}
		rows = append(rows, c.Features)
		candidates = append(candidates, c)
	}

	if len(rows) == 0 {
		s.metrics.RequestsTotal.WithLabelValues("no_candidates").Inc()
		return nil, fmt.Errorf("%w (%d skipped)", ErrNoCandidates, skipped)
	}
	s.metrics.CandidatesPerRequest.Observe(float64(len(rows)))

	scores, err := s.scorer.Score(ctx, rows)
	if err != nil {
		s.metrics.RequestsTotal.WithLabelValues("scoring_error").Inc()
		return nil, fmt.Errorf("score batch of %d: %w", len(rows), err)
	}
	if len(scores) != len(rows) {
		s.metrics.RequestsTotal.WithLabelValues("scoring_error").Inc()
		return nil, fmt.Errorf("scorer returned %d scores for %d rows", len(scores), len(rows))
	}

	results := make([]Result, len(candidates))
	for i, c := range candidates {
		results[i] = Result{
			Facility:      c.Facility,
			DistanceKm:    c.DistanceKm,
			OpenNow:       c.OpenNow,
			CCTVs:         c.CCTVs,
			Guards:        c.Guards,
			InitialRate:   c.InitialRate,
			PWDDiscount:   c.PWDDiscount,
			StreetParking: c.StreetParking,
		}
		if sc := scores[i]; !math.IsNaN(sc) && !math.IsInf(sc, 0) {
			score := sc
			results[i].Score = &score
		} else {
			s.metrics.NonFiniteScores.Inc()
		}
	}

	// Stable sort keeps catalog order on ties; sanitized (nil) scores sink
	// below every real score.
	sort.SliceStable(results, func(i, j int) bool {
		return scoreOf(results[i]) > scoreOf(results[j])
	})

	topK := q.TopK
	if topK <= 0 {
		topK = s.defaultTopK
	}
	if topK < len(results) {
		results = results[:topK]
	}

	s.metrics.RequestsTotal.WithLabelValues("success").Inc()
	s.metrics.RequestDuration.Observe(clock.Since(start).Seconds())

	return &Response{
		GeneratedAt: clock.Now(),
		Hour:        hour,
		Skipped:     skipped,
		Results:     results,
	}, nil
}

func scoreOf(r Result) float64 {
	if r.Score == nil {
		return math.Inf(-1)
	}
	return *r.Score
}
