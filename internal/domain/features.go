package domain

import (
	"fmt"
	"math"
)

// Candidate is a successfully encoded facility for one query: the feature
// vector destined for the scorer plus the derived values the response
// echoes back (distance, open-now, normalized amenities).
type Candidate struct {
	Facility Facility
	Features FeatureVector

	DistanceKm    float64
	OpenNow       int
	CCTVs         int
	Guards        int
	InitialRate   float64
	PWDDiscount   int
	StreetParking int
}

// BuildFeatures encodes one facility against one query. A non-nil error is
// a per-record skip reason, never a request failure: the caller drops the
// record and continues. Successful candidates always carry exactly
// FeatureCount finite values.
func BuildFeatures(f Facility, q Query) (Candidate, error) {
	if !isFinite(f.Lat) || !isFinite(f.Lng) {
		return Candidate{}, fmt.Errorf("facility %q: non-finite coordinates (%v, %v)", f.Name, f.Lat, f.Lng)
	}

	c := Candidate{
		Facility:      f,
		DistanceKm:    HaversineKm(q.Lat, q.Lng, f.Lat, f.Lng),
		OpenNow:       OpenNow(f.Opening, f.Closing, q.Hour),
		CCTVs:         YesNoToInt(f.CCTVsRaw),
		Guards:        YesNoToInt(f.GuardsRaw),
		InitialRate:   RateToFloat(f.RateRaw),
		PWDDiscount:   DiscountToInt(f.DiscountRaw),
		StreetParking: YesNoToInt(f.StreetRaw),
	}

	c.Features = FeatureVector{
		FeatDistanceKm:    c.DistanceKm,
		FeatOpenNow:       float64(c.OpenNow),
		FeatCCTVs:         float64(c.CCTVs),
		FeatGuards:        float64(c.Guards),
		FeatInitialRate:   c.InitialRate,
		FeatPWDDiscount:   float64(c.PWDDiscount),
		FeatStreetParking: float64(c.StreetParking),
	}

	for i, v := range c.Features {
		if !isFinite(v) {
			return Candidate{}, fmt.Errorf("facility %q: non-finite feature at column %d", f.Name, i)
		}
	}

	return c, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
