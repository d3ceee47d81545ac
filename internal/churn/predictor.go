package churn

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Classifier is the trained model as the pipeline sees it: a single
// probability operation plus the input width it was trained on.
type Classifier interface {
	PredictProbability(features []float64) (float64, error)
	NumFeatures() int
}

// DecisionThreshold is the classifier's native decision boundary. It is
// deliberately distinct from the risk-tier thresholds below.
const DecisionThreshold = 0.5

// Default risk-tier boundaries: Low below LowMax, Medium below
// MediumMax, High at MediumMax and above.
const (
	DefaultLowRiskMax    = 0.3
	DefaultMediumRiskMax = 0.6
)

// Churn labels reported to callers.
const (
	LabelChurn   = "Churn"
	LabelNoChurn = "No Churn"
)

// RiskTier is the coarse three-level bucketing of churn probability.
type RiskTier string

const (
	RiskLow    RiskTier = "Low"
	RiskMedium RiskTier = "Medium"
	RiskHigh   RiskTier = "High"
)

// RiskThresholds holds the tier boundaries. Zero value is not valid;
// use DefaultRiskThresholds or config.
type RiskThresholds struct {
	LowMax    float64 `yaml:"lowMax" json:"low_max"`
	MediumMax float64 `yaml:"mediumMax" json:"medium_max"`
}

func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{LowMax: DefaultLowRiskMax, MediumMax: DefaultMediumRiskMax}
}

// Tier assigns exactly one tier to any probability: p < LowMax is Low,
// LowMax <= p < MediumMax is Medium, the rest is High.
func (t RiskThresholds) Tier(p float64) RiskTier {
	switch {
	case p < t.LowMax:
		return RiskLow
	case p < t.MediumMax:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// Prediction is the decision object for one customer, immutable once
// created. JSON names match the serving API.
type Prediction struct {
	ChurnPrediction int      `json:"churn_prediction"`
	Probability     float64  `json:"churn_probability"`
	Label           string   `json:"churn_label"`
	RiskTier        RiskTier `json:"risk_level"`
}

// BatchSummary aggregates decisions across one batch call.
type BatchSummary struct {
	TotalCustomers    int     `json:"total_customers"`
	PredictedChurners int     `json:"predicted_churners"`
	ChurnRate         float64 `json:"churn_rate"`
}

// Predictor orchestrates transform, inference, and risk tiering. All
// state is immutable after construction, so it is safe for concurrent
// use by any number of callers.
type Predictor struct {
	transformer *Transformer
	clf         Classifier
	thresholds  RiskThresholds
	metrics     MetricsInterface
}

func New(transformer *Transformer, clf Classifier) *Predictor {
	return NewWithMetrics(transformer, clf, DefaultRiskThresholds(), nil)
}

func NewWithMetrics(transformer *Transformer, clf Classifier, thresholds RiskThresholds, metrics MetricsInterface) *Predictor {
	return &Predictor{
		transformer: transformer,
		clf:         clf,
		thresholds:  thresholds,
		metrics:     metrics,
	}
}

// PredictOne scores a single customer. The binary decision uses the 0.5
// boundary while the tier uses the configured thresholds, so a record
// can legitimately come back "No Churn" with Medium risk.
func (p *Predictor) PredictOne(r *CustomerRecord) (Prediction, error) {
	start := time.Now()

	vec, err := p.transformer.Transform(r)
	if err != nil {
		p.countFailure(err)
		return Prediction{}, err
	}

	prob, err := p.clf.PredictProbability(vec)
	if err != nil {
		if p.metrics != nil {
			p.metrics.IntegrityFailuresInc()
		}
		return Prediction{}, fmt.Errorf("classifier: %w", err)
	}
	if math.IsNaN(prob) || prob < 0 || prob > 1 {
		if p.metrics != nil {
			p.metrics.IntegrityFailuresInc()
		}
		return Prediction{}, &PipelineIntegrityError{
			Reason: fmt.Sprintf("classifier returned probability %v outside [0,1]", prob),
		}
	}

	pred := Prediction{
		Probability: prob,
		RiskTier:    p.thresholds.Tier(prob),
		Label:       LabelNoChurn,
	}
	if prob >= DecisionThreshold {
		pred.ChurnPrediction = 1
		pred.Label = LabelChurn
	}

	if p.metrics != nil {
		p.metrics.PredictionsInc()
		p.metrics.PredictionScoreObserve(prob)
		p.metrics.PredictionLatencyObserve(time.Since(start).Seconds())
	}

	return pred, nil
}

// PredictMany scores records in input order and aggregates a summary.
// Output order matches input order: callers zip the two positionally.
// The whole batch fails on the first invalid record; the returned
// BatchError names the offending index. Partial batches are worse than
// loud failures here.
func (p *Predictor) PredictMany(records []CustomerRecord) ([]Prediction, BatchSummary, error) {
	if p.metrics != nil {
		p.metrics.BatchSizeObserve(float64(len(records)))
	}

	preds := make([]Prediction, 0, len(records))
	churners := 0
	for i := range records {
		pred, err := p.PredictOne(&records[i])
		if err != nil {
			return nil, BatchSummary{}, &BatchError{Index: i, Err: err}
		}
		preds = append(preds, pred)
		churners += pred.ChurnPrediction
	}

	summary := BatchSummary{
		TotalCustomers:    len(preds),
		PredictedChurners: churners,
	}
	if summary.TotalCustomers > 0 {
		rate := float64(churners) / float64(summary.TotalCustomers)
		summary.ChurnRate = math.Round(rate*10000) / 10000
	}

	return preds, summary, nil
}

func (p *Predictor) countFailure(err error) {
	if p.metrics == nil {
		return
	}
	var ve *ValidationError
	var pe *PipelineIntegrityError
	switch {
	case errors.As(err, &ve):
		p.metrics.ValidationFailuresInc()
	case errors.As(err, &pe):
		p.metrics.IntegrityFailuresInc()
	}
}
