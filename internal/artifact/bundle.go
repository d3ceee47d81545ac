// Package artifact loads and validates the trained artifact bundle:
// encoding tables, scaling parameters, the ordered feature-name list,
// the exported model, and training metadata. The bundle replaces the
// original process-wide singleton model manager with an explicitly
// constructed value that is injected where needed and treated as
// read-only after Load.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"churnd/internal/churn"
	"churnd/internal/model"
)

// Metadata describes the training run that produced the bundle.
type Metadata struct {
	ModelName    string  `json:"model_name"`
	Version      string  `json:"version"`
	F1Score      float64 `json:"f1_score"`
	Accuracy     float64 `json:"accuracy"`
	Precision    float64 `json:"precision"`
	Recall       float64 `json:"recall"`
	ROCAUC       float64 `json:"roc_auc"`
	NumFeatures  int     `json:"n_features"`
	TrainingDate string  `json:"training_date"`
}

// Bundle is everything the pipeline consumes from training. Model may
// be nil, in which case the host falls back to the heuristic
// classifier.
type Bundle struct {
	Encoders     churn.EncodingTable `json:"encoders"`
	Scaler       churn.ScalingTable  `json:"scaler"`
	FeatureNames []string            `json:"feature_names"`
	Model        *model.Ensemble     `json:"model,omitempty"`
	Metadata     Metadata            `json:"metadata"`
}

// Load reads and validates a bundle from a JSON file.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", path, err)
	}

	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}

	log.Info().
		Str("path", path).
		Str("model", b.Metadata.ModelName).
		Str("version", b.Metadata.Version).
		Int("features", len(b.FeatureNames)).
		Bool("has_model", b.Model != nil).
		Msg("artifact bundle loaded")

	return &b, nil
}

// Validate cross-checks the tables so width drift between encoder,
// feature list, and model is caught at load time, before the first
// prediction ever runs.
func (b *Bundle) Validate() error {
	if len(b.FeatureNames) == 0 {
		return fmt.Errorf("feature name list is empty")
	}
	seen := make(map[string]struct{}, len(b.FeatureNames))
	for _, name := range b.FeatureNames {
		if name == "" {
			return fmt.Errorf("feature name list contains an empty name")
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate feature name %q", name)
		}
		seen[name] = struct{}{}
	}

	if len(b.Encoders) == 0 {
		return fmt.Errorf("encoding table is empty")
	}
	for field, enc := range b.Encoders {
		if len(enc.Codes) == 0 {
			return fmt.Errorf("encoder for %q has no known values", field)
		}
	}

	for field, sp := range b.Scaler {
		if sp.Scale == 0 {
			return fmt.Errorf("scaler for %q has zero spread", field)
		}
	}

	if b.Metadata.NumFeatures != 0 && b.Metadata.NumFeatures != len(b.FeatureNames) {
		return fmt.Errorf("metadata declares %d features but list has %d",
			b.Metadata.NumFeatures, len(b.FeatureNames))
	}

	if b.Model != nil {
		if err := b.Model.Validate(); err != nil {
			return fmt.Errorf("model: %w", err)
		}
		if b.Model.NumFeatures() != len(b.FeatureNames) {
			return fmt.Errorf("model expects %d features but list has %d",
				b.Model.NumFeatures(), len(b.FeatureNames))
		}
	}

	return nil
}

// Classifier returns the bundle's trained model, or the heuristic
// fallback bound to the bundle's feature order when none shipped.
func (b *Bundle) Classifier() churn.Classifier {
	if b.Model != nil {
		return b.Model
	}
	return model.NewHeuristic(b.FeatureNames)
}

// TrainingTime parses the metadata training date, for model-age
// reporting. Zero time when the date is absent or malformed.
func (b *Bundle) TrainingTime() time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, b.Metadata.TrainingDate); err == nil {
			return t
		}
	}
	return time.Time{}
}
