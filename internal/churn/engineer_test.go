package churn

import (
	"math"
	"reflect"
	"testing"
)

func TestEngineer_ServiceCount(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(*CustomerRecord)
		expected int
	}{
		// validRecord: phone + fiber + backup + tv + movies
		{"baseline record", func(r *CustomerRecord) {}, 5},
		{"no phone", func(r *CustomerRecord) { r.PhoneService = "No" }, 4},
		{"no internet drops tier count", func(r *CustomerRecord) { r.InternetService = "No" }, 4},
		{"DSL still counts as internet", func(r *CustomerRecord) { r.InternetService = "DSL" }, 5},
		{"all services", func(r *CustomerRecord) {
			r.OnlineSecurity = "Yes"
			r.DeviceProtection = "Yes"
			r.TechSupport = "Yes"
		}, 8},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := validRecord()
			tc.mutate(&r)
			fs := Engineer(&r)
			if fs.ServiceCount != tc.expected {
				t.Errorf("expected ServiceCount %d, got %d", tc.expected, fs.ServiceCount)
			}
		})
	}
}

func TestEngineer_AvgMonthlyRate(t *testing.T) {
	r := validRecord() // TotalCharges 1026, tenure 12
	fs := Engineer(&r)
	if math.Abs(fs.AvgMonthlyRate-85.5) > 1e-12 {
		t.Errorf("expected 85.5, got %f", fs.AvgMonthlyRate)
	}
}

func TestEngineer_AvgMonthlyRateZeroTenure(t *testing.T) {
	r := validRecord()
	r.Tenure = 0
	r.TotalCharges = 50

	fs := Engineer(&r)
	if fs.AvgMonthlyRate != 50 {
		t.Errorf("tenure 0 divides by 1, expected 50, got %f", fs.AvgMonthlyRate)
	}
}

func TestEngineer_PremiumServices(t *testing.T) {
	r := validRecord() // only OnlineBackup is Yes among the premium four
	fs := Engineer(&r)
	if fs.PremiumServiceCount != 1 {
		t.Errorf("expected PremiumServiceCount 1, got %d", fs.PremiumServiceCount)
	}
	if fs.HasPremiumServices != "Yes" {
		t.Errorf("expected HasPremiumServices Yes, got %q", fs.HasPremiumServices)
	}

	r.OnlineBackup = "No"
	fs = Engineer(&r)
	if fs.PremiumServiceCount != 0 || fs.HasPremiumServices != "No" {
		t.Errorf("expected no premium services, got count=%d flag=%q",
			fs.PremiumServiceCount, fs.HasPremiumServices)
	}
}

func TestEngineer_HasStreaming(t *testing.T) {
	testCases := []struct {
		name     string
		tv       string
		movies   string
		expected string
	}{
		{"both", "Yes", "Yes", "Yes"},
		{"tv only", "Yes", "No", "Yes"},
		{"movies only", "No", "Yes", "Yes"},
		{"neither", "No", "No", "No"},
		{"no internet service", "No internet service", "No internet service", "No"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := validRecord()
			r.StreamingTV = tc.tv
			r.StreamingMovies = tc.movies
			if fs := Engineer(&r); fs.HasStreaming != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, fs.HasStreaming)
			}
		})
	}
}

func TestEngineer_ValueSegment(t *testing.T) {
	testCases := []struct {
		monthly  float64
		expected string
	}{
		{0, "Low Value"},
		{20.0, "Low Value"},
		{35.0, "Low Value"},
		{35.01, "Medium Value"},
		{70.0, "Medium Value"},
		{70.01, "High Value"},
		{118.75, "High Value"},
	}

	for _, tc := range testCases {
		r := validRecord()
		r.MonthlyCharges = tc.monthly
		if fs := Engineer(&r); fs.ValueSegment != tc.expected {
			t.Errorf("MonthlyCharges %.2f: expected %q, got %q", tc.monthly, tc.expected, fs.ValueSegment)
		}
	}
}

func TestEngineer_HighRiskProfile(t *testing.T) {
	r := validRecord() // Month-to-month + Electronic check
	if fs := Engineer(&r); fs.HighRiskProfile != "Yes" {
		t.Errorf("expected high risk profile, got %q", fs.HighRiskProfile)
	}

	r.Contract = "Two year"
	if fs := Engineer(&r); fs.HighRiskProfile != "No" {
		t.Errorf("long contract should not be high risk, got %q", fs.HighRiskProfile)
	}

	r.Contract = "Month-to-month"
	r.PaymentMethod = "Mailed check"
	if fs := Engineer(&r); fs.HighRiskProfile != "No" {
		t.Errorf("mailed check should not be high risk, got %q", fs.HighRiskProfile)
	}
}

func TestEngineer_FamilyCustomer(t *testing.T) {
	r := validRecord() // Partner Yes, Dependents No
	if fs := Engineer(&r); fs.FamilyCustomer != "Yes" {
		t.Errorf("partner implies family customer, got %q", fs.FamilyCustomer)
	}

	r.Partner = "No"
	if fs := Engineer(&r); fs.FamilyCustomer != "No" {
		t.Errorf("no partner and no dependents, got %q", fs.FamilyCustomer)
	}

	r.Dependents = "Yes"
	if fs := Engineer(&r); fs.FamilyCustomer != "Yes" {
		t.Errorf("dependents imply family customer, got %q", fs.FamilyCustomer)
	}
}

func TestEngineer_InteractionFeatures(t *testing.T) {
	r := validRecord() // tenure 12, monthly 85.5, 5 services
	fs := Engineer(&r)

	if fs.TenureMonthlyCharges != 12*85.5 {
		t.Errorf("expected %f, got %f", 12*85.5, fs.TenureMonthlyCharges)
	}
	if fs.TenureServiceCount != 60 {
		t.Errorf("expected 60, got %f", fs.TenureServiceCount)
	}
	if fs.MonthlyChargesServiceCount != 85.5*5 {
		t.Errorf("expected %f, got %f", 85.5*5, fs.MonthlyChargesServiceCount)
	}
}

func TestEngineer_Deterministic(t *testing.T) {
	r := validRecord()
	a := Engineer(&r)
	b := Engineer(&r)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("engineered features differ across calls: %+v vs %+v", a, b)
	}
}
