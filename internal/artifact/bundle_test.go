package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnd/internal/churn"
	"churnd/internal/model"
)

func testBundle() *Bundle {
	return &Bundle{
		Encoders: churn.EncodingTable{
			"Contract": {Codes: map[string]float64{"Month-to-month": 0, "One year": 1, "Two year": 2}, Unknown: -1},
		},
		Scaler: churn.ScalingTable{
			"tenure": {Mean: 32.0, Scale: 24.0},
		},
		FeatureNames: []string{"Contract", "tenure"},
		Model: &model.Ensemble{
			Inputs:    2,
			BaseScore: 0.0,
			Trees: []model.Tree{
				{Nodes: []model.Node{
					{Feature: 0, Threshold: 0.5, Left: 1, Right: 2},
					{Leaf: true, Value: 0.8},
					{Leaf: true, Value: -0.8},
				}},
			},
		},
		Metadata: Metadata{
			ModelName:    "xgboost",
			Version:      "1.2.0",
			F1Score:      0.81,
			Accuracy:     0.86,
			NumFeatures:  2,
			TrainingDate: "2026-05-01",
		},
	}
}

func writeBundle(t *testing.T, b *Bundle) string {
	t.Helper()
	data, err := json.Marshal(b)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "artifact.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeBundle(t, testBundle())

	b, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Contract", "tenure"}, b.FeatureNames)
	assert.Equal(t, "xgboost", b.Metadata.ModelName)
	assert.Equal(t, 2, b.Model.NumFeatures())
	assert.Equal(t, float64(-1), b.Encoders["Contract"].Unknown)
	assert.Equal(t, 24.0, b.Scaler["tenure"].Scale)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifact.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestBundle_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Bundle)
	}{
		{"empty feature list", func(b *Bundle) { b.FeatureNames = nil }},
		{"empty feature name", func(b *Bundle) { b.FeatureNames = []string{"Contract", ""} }},
		{"duplicate feature name", func(b *Bundle) { b.FeatureNames = []string{"Contract", "Contract"} }},
		{"empty encoding table", func(b *Bundle) { b.Encoders = nil }},
		{"encoder without values", func(b *Bundle) {
			b.Encoders["Contract"] = churn.Encoder{Codes: map[string]float64{}, Unknown: -1}
		}},
		{"zero scaler spread", func(b *Bundle) {
			b.Scaler["tenure"] = churn.ScaleParams{Mean: 1, Scale: 0}
		}},
		{"metadata width mismatch", func(b *Bundle) { b.Metadata.NumFeatures = 7 }},
		{"model width mismatch", func(b *Bundle) { b.Model.Inputs = 3 }},
		{"corrupt model", func(b *Bundle) { b.Model.Trees = nil }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := testBundle()
			tc.mutate(b)
			assert.Error(t, b.Validate())
		})
	}

	assert.NoError(t, testBundle().Validate())
}

func TestBundle_ClassifierFallsBackWithoutModel(t *testing.T) {
	b := testBundle()
	require.IsType(t, &model.Ensemble{}, b.Classifier())

	b.Model = nil
	require.NoError(t, b.Validate())
	clf := b.Classifier()
	require.IsType(t, &model.Heuristic{}, clf)
	assert.Equal(t, len(b.FeatureNames), clf.NumFeatures())
}

func TestBundle_TrainingTime(t *testing.T) {
	b := testBundle()
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), b.TrainingTime())

	b.Metadata.TrainingDate = "2026-05-01T10:30:00Z"
	assert.Equal(t, time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC), b.TrainingTime())

	b.Metadata.TrainingDate = "last tuesday"
	assert.True(t, b.TrainingTime().IsZero())

	b.Metadata.TrainingDate = ""
	assert.True(t, b.TrainingTime().IsZero())
}
