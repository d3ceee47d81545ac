// Package churn implements the preprocessing-and-inference pipeline for
// telecom customer churn prediction: raw customer attributes are turned
// into the exact numeric feature vector the trained classifier expects,
// and the classifier's probability is turned into a decision and a risk
// tier. Every operation is a pure, synchronous computation over
// in-memory values; the artifact tables are injected at construction
// time and never mutated.
package churn

// CustomerRecord holds one customer's raw attributes as received from
// the transport layer. Field names and value vocabularies follow the
// telco dataset the model was trained on.
type CustomerRecord struct {
	Gender           string  `json:"gender"`
	SeniorCitizen    int     `json:"SeniorCitizen"`
	Partner          string  `json:"Partner"`
	Dependents       string  `json:"Dependents"`
	Tenure           int     `json:"tenure"`
	PhoneService     string  `json:"PhoneService"`
	MultipleLines    string  `json:"MultipleLines"`
	InternetService  string  `json:"InternetService"`
	OnlineSecurity   string  `json:"OnlineSecurity"`
	OnlineBackup     string  `json:"OnlineBackup"`
	DeviceProtection string  `json:"DeviceProtection"`
	TechSupport      string  `json:"TechSupport"`
	StreamingTV      string  `json:"StreamingTV"`
	StreamingMovies  string  `json:"StreamingMovies"`
	Contract         string  `json:"Contract"`
	PaperlessBilling string  `json:"PaperlessBilling"`
	PaymentMethod    string  `json:"PaymentMethod"`
	MonthlyCharges   float64 `json:"MonthlyCharges"`
	TotalCharges     float64 `json:"TotalCharges"`
}

// categoricalFields lists every categorical field with an accessor,
// in schema order. Encoding and validation iterate this list instead
// of relying on struct field order.
var categoricalFields = []struct {
	name  string
	value func(*CustomerRecord) string
}{
	{"gender", func(r *CustomerRecord) string { return r.Gender }},
	{"Partner", func(r *CustomerRecord) string { return r.Partner }},
	{"Dependents", func(r *CustomerRecord) string { return r.Dependents }},
	{"PhoneService", func(r *CustomerRecord) string { return r.PhoneService }},
	{"MultipleLines", func(r *CustomerRecord) string { return r.MultipleLines }},
	{"InternetService", func(r *CustomerRecord) string { return r.InternetService }},
	{"OnlineSecurity", func(r *CustomerRecord) string { return r.OnlineSecurity }},
	{"OnlineBackup", func(r *CustomerRecord) string { return r.OnlineBackup }},
	{"DeviceProtection", func(r *CustomerRecord) string { return r.DeviceProtection }},
	{"TechSupport", func(r *CustomerRecord) string { return r.TechSupport }},
	{"StreamingTV", func(r *CustomerRecord) string { return r.StreamingTV }},
	{"StreamingMovies", func(r *CustomerRecord) string { return r.StreamingMovies }},
	{"Contract", func(r *CustomerRecord) string { return r.Contract }},
	{"PaperlessBilling", func(r *CustomerRecord) string { return r.PaperlessBilling }},
	{"PaymentMethod", func(r *CustomerRecord) string { return r.PaymentMethod }},
}

// Validate checks that every required field is present and every
// numeric field is in range. It reports the first offending field.
func (r *CustomerRecord) Validate() error {
	for _, f := range categoricalFields {
		if f.value(r) == "" {
			return &ValidationError{Field: f.name, Reason: "required field is missing"}
		}
	}
	if r.SeniorCitizen != 0 && r.SeniorCitizen != 1 {
		return &ValidationError{Field: "SeniorCitizen", Reason: "must be 0 or 1"}
	}
	if r.Tenure < 0 {
		return &ValidationError{Field: "tenure", Reason: "must be >= 0"}
	}
	if r.MonthlyCharges < 0 {
		return &ValidationError{Field: "MonthlyCharges", Reason: "must be >= 0"}
	}
	if r.TotalCharges < 0 {
		return &ValidationError{Field: "TotalCharges", Reason: "must be >= 0"}
	}
	return nil
}
