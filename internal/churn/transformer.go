package churn

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Encoder maps one categorical field's raw values to the numeric codes
// fixed at training time. Values outside Codes map to Unknown.
type Encoder struct {
	Codes   map[string]float64 `json:"codes"`
	Unknown float64            `json:"unknown"`
}

// EncodingTable maps field name to its encoder.
type EncodingTable map[string]Encoder

// ScaleParams is the linear transform learned for one numeric field:
// scaled = (x - Mean) / Scale.
type ScaleParams struct {
	Mean  float64 `json:"mean"`
	Scale float64 `json:"scale"`
}

// ScalingTable maps field name to its scaling parameters. Fields not
// present pass through unscaled.
type ScalingTable map[string]ScaleParams

// MetricsInterface defines the metrics methods the pipeline reports to.
type MetricsInterface interface {
	PredictionsInc()
	ValidationFailuresInc()
	IntegrityFailuresInc()
	UnknownCategoriesInc()
	PredictionLatencyObserve(float64)
	PredictionScoreObserve(float64)
	BatchSizeObserve(float64)
}

// Transformer converts a CustomerRecord into the ordered feature vector
// the classifier was trained on. It holds only immutable artifact
// tables, so a single Transformer is safe for concurrent use.
type Transformer struct {
	encoders     EncodingTable
	scaler       ScalingTable
	featureNames []string
	width        int
	metrics      MetricsInterface
}

// NewTransformer builds a transformer from the artifact tables. width
// is the input width the classifier expects; it is re-checked on every
// Transform call so artifact drift fails loudly, never silently.
func NewTransformer(encoders EncodingTable, scaler ScalingTable, featureNames []string, width int, metrics MetricsInterface) *Transformer {
	return &Transformer{
		encoders:     encoders,
		scaler:       scaler,
		featureNames: featureNames,
		width:        width,
		metrics:      metrics,
	}
}

// Transform validates the record, derives engineered features, encodes
// categoricals, scales, and assembles the vector in artifact order.
// Deterministic: the same record always yields the identical vector.
func (t *Transformer) Transform(r *CustomerRecord) ([]float64, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	fs := Engineer(r)

	values := map[string]float64{
		"SeniorCitizen":  float64(r.SeniorCitizen),
		"tenure":         float64(r.Tenure),
		"MonthlyCharges": r.MonthlyCharges,
		"TotalCharges":   r.TotalCharges,

		featServiceCount:        float64(fs.ServiceCount),
		featAvgMonthlyRate:      fs.AvgMonthlyRate,
		featPremiumServiceCount: float64(fs.PremiumServiceCount),
		featTenureMonthly:       fs.TenureMonthlyCharges,
		featTenureServices:      fs.TenureServiceCount,
		featMonthlyServices:     fs.MonthlyChargesServiceCount,
	}

	for _, f := range categoricalFields {
		code, err := t.encode(f.name, f.value(r))
		if err != nil {
			return nil, err
		}
		values[f.name] = code
	}

	for name, raw := range map[string]string{
		featHasPremiumServices: fs.HasPremiumServices,
		featHasStreaming:       fs.HasStreaming,
		featValueSegment:       fs.ValueSegment,
		featHighRiskProfile:    fs.HighRiskProfile,
		featFamilyCustomer:     fs.FamilyCustomer,
	} {
		code, err := t.encode(name, raw)
		if err != nil {
			return nil, err
		}
		values[name] = code
	}

	// Assemble strictly in artifact order, scaling as we go. A feature
	// name the pipeline cannot produce means the artifact and this code
	// have drifted apart.
	vec := make([]float64, 0, len(t.featureNames))
	for _, name := range t.featureNames {
		v, ok := values[name]
		if !ok {
			return nil, &PipelineIntegrityError{
				Reason: fmt.Sprintf("artifact expects feature %q the pipeline does not produce", name),
			}
		}
		if sp, ok := t.scaler[name]; ok && sp.Scale != 0 {
			v = (v - sp.Mean) / sp.Scale
		}
		vec = append(vec, v)
	}

	if len(vec) != t.width {
		return nil, &PipelineIntegrityError{
			Reason: fmt.Sprintf("assembled %d features, classifier expects %d", len(vec), t.width),
		}
	}

	return vec, nil
}

// encode maps one categorical value to its numeric code. A field the
// encoding table has never heard of is artifact drift; a value the
// field's encoder has never seen falls back to the unknown code and is
// recorded, never fatal.
func (t *Transformer) encode(field, value string) (float64, error) {
	enc, ok := t.encoders[field]
	if !ok {
		return 0, &PipelineIntegrityError{
			Reason: fmt.Sprintf("encoding table has no entry for field %q", field),
		}
	}
	code, ok := enc.Codes[value]
	if !ok {
		log.Warn().Str("field", field).Str("value", value).Msg("unknown category, using fallback code")
		if t.metrics != nil {
			t.metrics.UnknownCategoriesInc()
		}
		return enc.Unknown, nil
	}
	return code, nil
}
