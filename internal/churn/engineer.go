package churn

// Engineered feature names, as recorded in the training artifact.
const (
	featServiceCount        = "ServiceCount"
	featAvgMonthlyRate      = "AvgMonthlyRate"
	featPremiumServiceCount = "PremiumServiceCount"
	featHasPremiumServices  = "HasPremiumServices"
	featHasStreaming        = "HasStreaming"
	featValueSegment        = "ValueSegment"
	featHighRiskProfile     = "HighRiskProfile"
	featFamilyCustomer      = "FamilyCustomer"
	featTenureMonthly       = "Tenure_MonthlyCharges"
	featTenureServices      = "Tenure_ServiceCount"
	featMonthlyServices     = "MonthlyCharges_ServiceCount"
)

// ValueSegment bucket edges over MonthlyCharges, fixed at training time.
const (
	valueSegmentLowMax    = 35.0
	valueSegmentMediumMax = 70.0
)

// EngineeredFeatureSet holds the derived signals computed from one
// CustomerRecord. Numeric members feed the vector directly; the
// categorical members go through the same label encoding as raw fields.
type EngineeredFeatureSet struct {
	ServiceCount        int
	AvgMonthlyRate      float64
	PremiumServiceCount int
	HasPremiumServices  string // Yes/No
	HasStreaming        string // Yes/No
	ValueSegment        string // Low Value / Medium Value / High Value
	HighRiskProfile     string // Yes/No
	FamilyCustomer      string // Yes/No

	TenureMonthlyCharges       float64
	TenureServiceCount         float64
	MonthlyChargesServiceCount float64
}

// Engineer derives the engineered feature set from a record. It is a
// pure function of the record: same input, same output, always.
func Engineer(r *CustomerRecord) EngineeredFeatureSet {
	var fs EngineeredFeatureSet

	// A subscribed service is a "Yes" answer, except InternetService
	// where any tier other than "No" counts.
	if r.PhoneService == "Yes" {
		fs.ServiceCount++
	}
	if r.InternetService != "No" {
		fs.ServiceCount++
	}
	for _, v := range []string{
		r.OnlineSecurity, r.OnlineBackup, r.DeviceProtection,
		r.TechSupport, r.StreamingTV, r.StreamingMovies,
	} {
		if v == "Yes" {
			fs.ServiceCount++
		}
	}

	// tenure 0 is a brand-new customer, not a division error.
	tenure := r.Tenure
	if tenure == 0 {
		tenure = 1
	}
	fs.AvgMonthlyRate = r.TotalCharges / float64(tenure)

	for _, v := range []string{
		r.OnlineSecurity, r.OnlineBackup, r.DeviceProtection, r.TechSupport,
	} {
		if v == "Yes" {
			fs.PremiumServiceCount++
		}
	}
	fs.HasPremiumServices = yesNo(fs.PremiumServiceCount > 0)

	fs.HasStreaming = yesNo(r.StreamingTV == "Yes" || r.StreamingMovies == "Yes")
	fs.ValueSegment = valueSegment(r.MonthlyCharges)
	fs.HighRiskProfile = yesNo(r.Contract == "Month-to-month" && r.PaymentMethod == "Electronic check")
	fs.FamilyCustomer = yesNo(r.Partner == "Yes" || r.Dependents == "Yes")

	fs.TenureMonthlyCharges = float64(r.Tenure) * r.MonthlyCharges
	fs.TenureServiceCount = float64(r.Tenure) * float64(fs.ServiceCount)
	fs.MonthlyChargesServiceCount = r.MonthlyCharges * float64(fs.ServiceCount)

	return fs
}

func valueSegment(monthly float64) string {
	switch {
	case monthly <= valueSegmentLowMax:
		return "Low Value"
	case monthly <= valueSegmentMediumMax:
		return "Medium Value"
	default:
		return "High Value"
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
