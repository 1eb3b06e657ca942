package recommend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkpark/parking-recommender/internal/domain"
	"github.com/sparkpark/parking-recommender/internal/observability"
)

// --- stub scorers ---

// negDistanceScorer scores each row as the negative of its distance
// feature, so ranking by descending score is ranking by proximity.
type negDistanceScorer struct{}

func (negDistanceScorer) Score(_ context.Context, rows []domain.FeatureVector) ([]float64, error) {
	scores := make([]float64, len(rows))
	for i, row := range rows {
		scores[i] = -row[domain.FeatDistanceKm]
	}
	return scores, nil
}

type failingScorer struct{ err error }

func (f failingScorer) Score(_ context.Context, _ []domain.FeatureVector) ([]float64, error) {
	return nil, f.err
}

type fixedScorer struct{ scores []float64 }

func (f fixedScorer) Score(_ context.Context, _ []domain.FeatureVector) ([]float64, error) {
	return f.scores, nil
}

// --- fixtures ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Three Metro Manila facilities at known distances from the test user at
// (14.5995, 120.9842): Binondo 0.57 km, Cubao 4.24 km, Makati 6.60 km.
func testFacilities() []domain.Facility {
	return []domain.Facility{
		{Name: "Binondo Carpark", City: "Manila", Lat: 14.6042, Lng: 120.9822, Opening: "24/7", Closing: "24/7", GuardsRaw: "Yes", CCTVsRaw: "Yes", RateRaw: "₱40"},
		{Name: "Makati Carpark", City: "Makati", Lat: 14.5547, Lng: 121.0244, Opening: "6:00 AM", Closing: "10:00 PM", GuardsRaw: "Yes", CCTVsRaw: "Yes", RateRaw: "₱50"},
		{Name: "Cubao Carpark", City: "Quezon City", Lat: 14.6091, Lng: 121.0223, Opening: "6:00 AM", Closing: "10:00 PM", GuardsRaw: "No", CCTVsRaw: "Yes", RateRaw: "₱35"},
	}
}

func newTestService(facilities []domain.Facility, scorer domain.Scorer) *Service {
	return New(facilities, scorer, 5, discardLogger(), observability.NewMetricsForTesting())
}

func testQuery() Query {
	return Query{Lat: 14.5995, Lng: 120.9842, Hour: 12, TopK: 2}
}

// --- tests ---

func TestRecommend_TopKByProximity(t *testing.T) {
	svc := newTestService(testFacilities(), negDistanceScorer{})

	resp, err := svc.Recommend(context.Background(), testQuery())
	require.NoError(t, err)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, "Binondo Carpark", resp.Results[0].Facility.Name)
	assert.Equal(t, "Cubao Carpark", resp.Results[1].Facility.Name)
	require.NotNil(t, resp.Results[0].Score)
	require.NotNil(t, resp.Results[1].Score)
	assert.Greater(t, *resp.Results[0].Score, *resp.Results[1].Score)
	assert.Equal(t, 0, resp.Skipped)
	assert.Equal(t, 12, resp.Hour)
}

func TestRecommend_Idempotent(t *testing.T) {
	svc := newTestService(testFacilities(), negDistanceScorer{})

	first, err := svc.Recommend(context.Background(), testQuery())
	require.NoError(t, err)
	second, err := svc.Recommend(context.Background(), testQuery())
	require.NoError(t, err)

	require.Len(t, second.Results, len(first.Results))
	for i := range first.Results {
		assert.Equal(t, first.Results[i].Facility.Name, second.Results[i].Facility.Name)
		assert.Equal(t, *first.Results[i].Score, *second.Results[i].Score)
	}
}

func TestRecommend_TopKBeyondCatalog(t *testing.T) {
	svc := newTestService(testFacilities(), negDistanceScorer{})

	q := testQuery()
	q.TopK = 50
	resp, err := svc.Recommend(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, resp.Results, 3, "top_k beyond the candidate count returns everything")
}

func TestRecommend_NonPositiveTopKUsesDefault(t *testing.T) {
	svc := newTestService(testFacilities(), negDistanceScorer{})

	q := testQuery()
	q.TopK = 0
	resp, err := svc.Recommend(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, resp.Results, 3, "default top_k (5) caps at catalog size")
}

func TestRecommend_SkipsBadRecordWithoutAborting(t *testing.T) {
	facilities := testFacilities()
	facilities[1].Lat = math.NaN()
	svc := newTestService(facilities, negDistanceScorer{})

	q := testQuery()
	q.TopK = 10
	resp, err := svc.Recommend(context.Background(), q)
	require.NoError(t, err)

	assert.Len(t, resp.Results, 2)
	assert.Equal(t, 1, resp.Skipped)
	for _, r := range resp.Results {
		assert.NotEqual(t, "Makati Carpark", r.Facility.Name)
	}
}

func TestRecommend_EmptyCatalog(t *testing.T) {
	svc := newTestService(nil, negDistanceScorer{})

	_, err := svc.Recommend(context.Background(), testQuery())
	require.ErrorIs(t, err, ErrNoCatalog)
}

func TestRecommend_MissingScorer(t *testing.T) {
	svc := newTestService(testFacilities(), nil)

	_, err := svc.Recommend(context.Background(), testQuery())
	require.ErrorIs(t, err, ErrNoScorer)
}

func TestRecommend_AllRecordsSkipped(t *testing.T) {
	facilities := testFacilities()
	for i := range facilities {
		facilities[i].Lat = math.NaN()
	}
	svc := newTestService(facilities, negDistanceScorer{})

	_, err := svc.Recommend(context.Background(), testQuery())
	require.ErrorIs(t, err, ErrNoCandidates)
}

func TestRecommend_ScorerFailureIsRequestFailure(t *testing.T) {
	scorerErr := errors.New("backend exploded")
	svc := newTestService(testFacilities(), failingScorer{err: scorerErr})

	_, err := svc.Recommend(context.Background(), testQuery())
	require.ErrorIs(t, err, scorerErr)
	assert.NotErrorIs(t, err, ErrNoCatalog)
	assert.NotErrorIs(t, err, ErrNoCandidates)
}

func TestRecommend_ScoreCountMismatch(t *testing.T) {
	svc := newTestService(testFacilities(), fixedScorer{scores: []float64{1.0}})

	_, err := svc.Recommend(context.Background(), testQuery())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scores")
}

func TestRecommend_NonFiniteScoresSanitized(t *testing.T) {
	svc := newTestService(testFacilities(), fixedScorer{scores: []float64{math.NaN(), 2.0, math.Inf(1)}})

	q := testQuery()
	q.TopK = 10
	resp, err := svc.Recommend(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)

	// The one real score ranks first; sanitized scores sink below it in
	// catalog order.
	require.NotNil(t, resp.Results[0].Score)
	assert.Equal(t, 2.0, *resp.Results[0].Score)
	assert.Equal(t, "Makati Carpark", resp.Results[0].Facility.Name)
	assert.Nil(t, resp.Results[1].Score)
	assert.Nil(t, resp.Results[2].Score)
	assert.Equal(t, "Binondo Carpark", resp.Results[1].Facility.Name)
	assert.Equal(t, "Cubao Carpark", resp.Results[2].Facility.Name)
}

func TestRecommend_TiesKeepCatalogOrder(t *testing.T) {
	svc := newTestService(testFacilities(), fixedScorer{scores: []float64{1.0, 1.0, 1.0}})

	q := testQuery()
	q.TopK = 3
	resp, err := svc.Recommend(context.Background(), q)
	require.NoError(t, err)

	require.Len(t, resp.Results, 3)
	assert.Equal(t, "Binondo Carpark", resp.Results[0].Facility.Name)
	assert.Equal(t, "Makati Carpark", resp.Results[1].Facility.Name)
	assert.Equal(t, "Cubao Carpark", resp.Results[2].Facility.Name)
}

func TestRecommend_HourNormalization(t *testing.T) {
	svc := newTestService(testFacilities(), negDistanceScorer{})

	tests := []struct {
		name string
		hour int
		want int
	}{
		{"in range", 12, 12},
		{"wraps past midnight", 25, 1},
		{"negative wraps backwards", -2, 22},
		{"two full days ahead", 48, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := testQuery()
			q.Hour = tt.hour
			resp, err := svc.Recommend(context.Background(), q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Hour)
		})
	}
}

func TestRecommend_HourNowUsesClock(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2025, 11, 3, 21, 30, 0, 0, time.UTC))
	SetClock(fake)
	t.Cleanup(func() { SetClock(nil) })

	svc := newTestService(testFacilities(), negDistanceScorer{})

	q := testQuery()
	q.Hour = HourNow
	resp, err := svc.Recommend(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, 21, resp.Hour)
	assert.Equal(t, fake.Now(), resp.GeneratedAt)
}
