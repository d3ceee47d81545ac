// Package model provides the classifier implementations consumed by
// the churn pipeline: a gradient-boosted tree ensemble evaluated from
// exported artifact parameters, and a heuristic fallback used when no
// trained model is available.
package model

import (
	"fmt"
	"math"
)

// Node is one decision node in a tree. Interior nodes route on
// features[Feature] < Threshold; leaves carry an additive margin.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value"`
}

// Tree is a flat node array rooted at index 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Ensemble is a boosted binary classifier: the leaf margins of all
// trees plus the base score go through a sigmoid to give P(churn).
type Ensemble struct {
	Trees     []Tree  `json:"trees"`
	BaseScore float64 `json:"base_score"`
	Inputs    int     `json:"n_features"`
}

// NumFeatures returns the input width the ensemble was trained on.
func (e *Ensemble) NumFeatures() int { return e.Inputs }

// PredictProbability evaluates the ensemble over one feature vector.
func (e *Ensemble) PredictProbability(features []float64) (float64, error) {
	if len(features) != e.Inputs {
		return 0, fmt.Errorf("expected %d features, got %d", e.Inputs, len(features))
	}
	for i, f := range features {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("feature %d is not finite: %v", i, f)
		}
	}

	margin := e.BaseScore
	for i := range e.Trees {
		leaf, err := e.Trees[i].score(features)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		margin += leaf
	}

	return sigmoid(margin), nil
}

func (t *Tree) score(features []float64) (float64, error) {
	idx := 0
	// Bounded by node count so a malformed tree cannot loop forever.
	for steps := 0; steps <= len(t.Nodes); steps++ {
		if idx < 0 || idx >= len(t.Nodes) {
			return 0, fmt.Errorf("node index %d out of range", idx)
		}
		n := t.Nodes[idx]
		if n.Leaf {
			return n.Value, nil
		}
		if n.Feature < 0 || n.Feature >= len(features) {
			return 0, fmt.Errorf("node %d references feature %d of %d", idx, n.Feature, len(features))
		}
		if features[n.Feature] < n.Threshold {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
	return 0, fmt.Errorf("tree walk exceeded %d nodes, cycle suspected", len(t.Nodes))
}

// Validate checks the ensemble's internal references so a corrupt
// artifact fails at load time rather than mid-prediction.
func (e *Ensemble) Validate() error {
	if e.Inputs <= 0 {
		return fmt.Errorf("ensemble declares %d input features", e.Inputs)
	}
	if len(e.Trees) == 0 {
		return fmt.Errorf("ensemble has no trees")
	}
	for ti, tree := range e.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("tree %d has no nodes", ti)
		}
		for ni, n := range tree.Nodes {
			if n.Leaf {
				continue
			}
			if n.Feature < 0 || n.Feature >= e.Inputs {
				return fmt.Errorf("tree %d node %d references feature %d of %d", ti, ni, n.Feature, e.Inputs)
			}
			if n.Left < 0 || n.Left >= len(tree.Nodes) || n.Right < 0 || n.Right >= len(tree.Nodes) {
				return fmt.Errorf("tree %d node %d has child out of range", ti, ni)
			}
		}
	}
	return nil
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
