// Package model implements domain.Scorer from a serialized scoring
// artifact: a gradient-boosted regression tree ensemble exported by the
// training pipeline as JSON.
package model

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/sparkpark/parking-recommender/internal/domain"
)

// artifact is the on-disk layout of an exported ensemble. Nodes are stored
// flat per tree; leaves carry Feature == -1 and a Value, splits route to
// Left when row[Feature] < Threshold, else Right.
type artifact struct {
	Format       string  `json:"format"`
	FeatureCount int     `json:"feature_count"`
	BaseScore    float64 `json:"base_score"`
	Trees        []tree  `json:"trees"`
}

type tree struct {
	Nodes []node `json:"nodes"`
}

type node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

const artifactFormat = "gbrt"

// Regressor scores feature vectors by summing tree traversals over the
// loaded ensemble. Immutable after Load; safe for concurrent use.
type Regressor struct {
	art artifact
}

// Load reads and validates a scoring artifact. The feature count must
// match domain.FeatureCount: a model trained on a different column order
// must never score this service's vectors.
func Load(path string) (*Regressor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scoring artifact: %w", err)
	}

	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("parse scoring artifact: %w", err)
	}

	if art.Format != artifactFormat {
		return nil, fmt.Errorf("unsupported artifact format %q", art.Format)
	}
	if art.FeatureCount != domain.FeatureCount {
		return nil, fmt.Errorf("artifact expects %d features, service produces %d", art.FeatureCount, domain.FeatureCount)
	}
	if len(art.Trees) == 0 {
		return nil, fmt.Errorf("artifact has no trees")
	}
	for i, tr := range art.Trees {
		if err := validateTree(tr); err != nil {
			return nil, fmt.Errorf("artifact tree %d: %w", i, err)
		}
	}

	return &Regressor{art: art}, nil
}

// Trees returns the ensemble size, for startup logging.
func (r *Regressor) Trees() int { return len(r.art.Trees) }

// Score evaluates the ensemble for each row. The whole batch fails on the
// first malformed traversal; partial scores are never returned.
func (r *Regressor) Score(ctx context.Context, rows []domain.FeatureVector) ([]float64, error) {
	scores := make([]float64, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s := r.art.BaseScore
		for ti, tr := range r.art.Trees {
			leaf, err := evalTree(tr, row)
			if err != nil {
				return nil, fmt.Errorf("tree %d row %d: %w", ti, i, err)
			}
			s += leaf
		}
		scores[i] = s
	}
	return scores, nil
}

// evalTree walks one tree from the root to a leaf. The step bound catches
// cycles that slipped past load validation.
func evalTree(tr tree, row domain.FeatureVector) (float64, error) {
	idx := 0
	for steps := 0; steps <= len(tr.Nodes); steps++ {
		n := tr.Nodes[idx]
		if n.Feature < 0 {
			return n.Value, nil
		}
		if row[n.Feature] < n.Threshold {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
	return 0, fmt.Errorf("traversal exceeded %d steps", len(tr.Nodes))
}

// validateTree checks every split's feature and child indices so Score can
// traverse without bounds checks failing mid-request.
func validateTree(tr tree) error {
	if len(tr.Nodes) == 0 {
		return fmt.Errorf("no nodes")
	}
	for i, n := range tr.Nodes {
		if n.Feature < 0 {
			continue // leaf
		}
		if n.Feature >= domain.FeatureCount {
			return fmt.Errorf("node %d: feature %d out of range", i, n.Feature)
		}
		if n.Left < 0 || n.Left >= len(tr.Nodes) || n.Right < 0 || n.Right >= len(tr.Nodes) {
			return fmt.Errorf("node %d: child index out of range", i)
		}
	}
	return nil
}
