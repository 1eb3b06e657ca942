package domain

import "context"

// Scorer ranks batches of feature vectors. One score per row, or an error
// for the whole batch — partial scores are never returned. Any backend
// (in-process artifact, remote service) can satisfy this.
type Scorer interface {
	Score(ctx context.Context, rows []FeatureVector) ([]float64, error)
}
