package domain

// Facility is one parking location as loaded from the workbook. Raw cell
// text is kept alongside the parsed coordinates so feature building can
// normalize it per request without re-reading the source.
//
// Names are not unique: the same chain can appear on several city sheets.
type Facility struct {
	Name    string
	Address string
	Details string
	Link    string
	City    string // source sheet name

	Lat float64
	Lng float64

	Opening string
	Closing string

	GuardsRaw   string
	CCTVsRaw    string
	RateRaw     string
	DiscountRaw string
	StreetRaw   string
}

// Query is one user request as seen by the feature pipeline: a position and
// an hour of day (0-23).
type Query struct {
	Lat  float64
	Lng  float64
	Hour int
}

// FeatureVector is the fixed-order numeric encoding of one facility
// relative to one query. The order is a contract with the externally
// trained scoring model.
type FeatureVector [FeatureCount]float64

// FeatureCount is the width of every feature vector the model accepts.
const FeatureCount = 7

// Feature vector column indices, in training order.
const (
	FeatDistanceKm = iota
	FeatOpenNow
	FeatCCTVs
	FeatGuards
	FeatInitialRate
	FeatPWDDiscount
	FeatStreetParking
)
