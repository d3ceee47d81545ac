package model

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
)

// heuristicWeights scores scaled features by name. Positive weights
// push toward churn. Names absent from the vector simply contribute
// nothing, so the heuristic survives feature-list changes.
var heuristicWeights = map[string]float64{
	"tenure":                -0.8,
	"Contract":              -0.6,
	"MonthlyCharges":        0.4,
	"TotalCharges":          -0.2,
	"HighRiskProfile":       0.9,
	"ServiceCount":          -0.3,
	"PremiumServiceCount":   -0.3,
	"FamilyCustomer":        -0.2,
	"Tenure_MonthlyCharges": -0.2,
}

// Heuristic is a weights-over-named-features fallback classifier for
// deployments where no trained ensemble is present in the artifact.
// Inputs are the scaled pipeline features, so tanh keeps any single
// field from dominating the score.
type Heuristic struct {
	weights []float64
	inputs  int
}

// NewHeuristic binds the weight table to the artifact's feature order.
func NewHeuristic(featureNames []string) *Heuristic {
	weights := make([]float64, len(featureNames))
	bound := 0
	for i, name := range featureNames {
		if w, ok := heuristicWeights[name]; ok {
			weights[i] = w
			bound++
		}
	}
	log.Warn().Int("bound_weights", bound).Int("features", len(featureNames)).
		Msg("using heuristic fallback classifier, no trained model loaded")
	return &Heuristic{weights: weights, inputs: len(featureNames)}
}

func (h *Heuristic) NumFeatures() int { return h.inputs }

func (h *Heuristic) PredictProbability(features []float64) (float64, error) {
	if len(features) != h.inputs {
		return 0, fmt.Errorf("expected %d features, got %d", h.inputs, len(features))
	}
	var score float64
	for i, f := range features {
		if h.weights[i] != 0 {
			score += h.weights[i] * math.Tanh(f)
		}
	}
	return sigmoid(score), nil
}
