// Package domain models parking facility data and the feature pipeline
// that turns it into scoring-model input.
//
// # Data Source
//
// Facility records come from a curated multi-sheet workbook, one sheet per
// city. The sheets are maintained by hand, so cell values are messy:
//
//	Yes/No columns:  "Yes", "Y", "NO", "n/a", blanks, stray numbers.
//	Rates:           "₱20.00", "First 3 hours, ₱50", "50", blanks.
//	Discounts:       "PWD Exempt", "Senior Citizen Discount Available", "None".
//	Hours:           "6:00 AM", "7:00PM", "18:00", "24/7", "N/A".
//
// Every normalizer in this package is total: unrecognized input degrades to
// a finite zero default rather than an error, because a bad cell should cost
// at most one facility, never a request.
//
// # Feature Order
//
// The scoring model was trained on a fixed column order:
//
//	[distance_km, open_now, cctvs, guards, initial_rate, pwd_discount, street_parking]
//
// FeatureVector encodes that order. It must not change without retraining
// and re-exporting the model artifact.
//
// # Fail-Open Hours
//
// The open-now predicate assumes a facility is open whenever its stated
// hours cannot be parsed. Excluding a facility over a typo in its schedule
// is worse than occasionally recommending a closed one; the distance and
// amenity features still rank it honestly either way.
package domain
