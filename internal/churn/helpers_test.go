package churn

import "sync"

// MockMetrics implements MetricsInterface for tests.
type MockMetrics struct {
	mu                 sync.Mutex
	predictions        int
	validationFailures int
	integrityFailures  int
	unknownCategories  int
	latencySum         float64
	scores             []float64
	batchSizes         []float64
}

func (m *MockMetrics) PredictionsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions++
}

func (m *MockMetrics) ValidationFailuresInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validationFailures++
}

func (m *MockMetrics) IntegrityFailuresInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.integrityFailures++
}

func (m *MockMetrics) UnknownCategoriesInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unknownCategories++
}

func (m *MockMetrics) PredictionLatencyObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencySum += v
}

func (m *MockMetrics) PredictionScoreObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = append(m.scores, v)
}

func (m *MockMetrics) BatchSizeObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchSizes = append(m.batchSizes, v)
}

// stubClassifier returns a fixed probability, or delegates to fn.
type stubClassifier struct {
	width int
	prob  float64
	fn    func([]float64) (float64, error)
}

func (s *stubClassifier) NumFeatures() int { return s.width }

func (s *stubClassifier) PredictProbability(f []float64) (float64, error) {
	if s.fn != nil {
		return s.fn(f)
	}
	return s.prob, nil
}

func yesNoEncoder() Encoder {
	return Encoder{Codes: map[string]float64{"No": 0, "Yes": 1}, Unknown: -1}
}

func internetDependentEncoder() Encoder {
	return Encoder{Codes: map[string]float64{"No": 0, "No internet service": 1, "Yes": 2}, Unknown: -1}
}

// testEncoders covers every raw and engineered categorical field, with
// codes in sorted-label order as the training encoder assigns them.
func testEncoders() EncodingTable {
	return EncodingTable{
		"gender":           {Codes: map[string]float64{"Female": 0, "Male": 1}, Unknown: -1},
		"Partner":          yesNoEncoder(),
		"Dependents":       yesNoEncoder(),
		"PhoneService":     yesNoEncoder(),
		"MultipleLines":    {Codes: map[string]float64{"No": 0, "No phone service": 1, "Yes": 2}, Unknown: -1},
		"InternetService":  {Codes: map[string]float64{"DSL": 0, "Fiber optic": 1, "No": 2}, Unknown: -1},
		"OnlineSecurity":   internetDependentEncoder(),
		"OnlineBackup":     internetDependentEncoder(),
		"DeviceProtection": internetDependentEncoder(),
		"TechSupport":      internetDependentEncoder(),
		"StreamingTV":      internetDependentEncoder(),
		"StreamingMovies":  internetDependentEncoder(),
		"Contract":         {Codes: map[string]float64{"Month-to-month": 0, "One year": 1, "Two year": 2}, Unknown: -1},
		"PaperlessBilling": yesNoEncoder(),
		"PaymentMethod": {Codes: map[string]float64{
			"Bank transfer (automatic)": 0,
			"Credit card (automatic)":   1,
			"Electronic check":          2,
			"Mailed check":              3,
		}, Unknown: -1},

		"HasPremiumServices": yesNoEncoder(),
		"HasStreaming":       yesNoEncoder(),
		"HighRiskProfile":    yesNoEncoder(),
		"FamilyCustomer":     yesNoEncoder(),
		"ValueSegment":       {Codes: map[string]float64{"High Value": 0, "Low Value": 1, "Medium Value": 2}, Unknown: -1},
	}
}

func testScaler() ScalingTable {
	return ScalingTable{
		"tenure":         {Mean: 32.0, Scale: 24.0},
		"MonthlyCharges": {Mean: 65.0, Scale: 30.0},
		"TotalCharges":   {Mean: 2280.0, Scale: 2266.0},
		"AvgMonthlyRate": {Mean: 65.0, Scale: 31.0},
	}
}

func testFeatureNames() []string {
	return []string{
		"gender", "SeniorCitizen", "Partner", "Dependents", "tenure",
		"PhoneService", "MultipleLines", "InternetService", "OnlineSecurity",
		"OnlineBackup", "DeviceProtection", "TechSupport", "StreamingTV",
		"StreamingMovies", "Contract", "PaperlessBilling", "PaymentMethod",
		"MonthlyCharges", "TotalCharges",
		"ServiceCount", "AvgMonthlyRate", "PremiumServiceCount",
		"HasPremiumServices", "HasStreaming", "ValueSegment",
		"HighRiskProfile", "FamilyCustomer",
		"Tenure_MonthlyCharges", "Tenure_ServiceCount", "MonthlyCharges_ServiceCount",
	}
}

func testTransformer(metrics MetricsInterface) *Transformer {
	names := testFeatureNames()
	return NewTransformer(testEncoders(), testScaler(), names, len(names), metrics)
}

func validRecord() CustomerRecord {
	return CustomerRecord{
		Gender:           "Male",
		SeniorCitizen:    0,
		Partner:          "Yes",
		Dependents:       "No",
		Tenure:           12,
		PhoneService:     "Yes",
		MultipleLines:    "No",
		InternetService:  "Fiber optic",
		OnlineSecurity:   "No",
		OnlineBackup:     "Yes",
		DeviceProtection: "No",
		TechSupport:      "No",
		StreamingTV:      "Yes",
		StreamingMovies:  "Yes",
		Contract:         "Month-to-month",
		PaperlessBilling: "Yes",
		PaymentMethod:    "Electronic check",
		MonthlyCharges:   85.50,
		TotalCharges:     1026.00,
	}
}
