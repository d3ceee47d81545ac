// churnctl scores a CSV of customers against a running churnd service
// and prints the batch summary plus per-customer decisions.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"churnd/internal/churn"
	"churnd/internal/client"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", envOrDefault("CHURND_ADDR", "http://localhost:8000"), "churnd base URL")
	input := flag.String("input", "", "CSV file of customers to score (required)")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	showAll := flag.Bool("all", false, "print every customer, not only predicted churners")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	records, err := readCustomersCSV(*input)
	if err != nil {
		log.Fatal().Err(err).Str("input", *input).Msg("failed to read customers")
	}
	if len(records) == 0 {
		log.Fatal().Str("input", *input).Msg("no customer rows in input")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	api := client.New(*addr, *timeout)

	health, err := api.CheckHealth(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("addr", *addr).Msg("service unreachable")
	}
	if !health.ModelLoaded {
		log.Fatal().Str("addr", *addr).Msg("service has no model loaded")
	}

	result, err := api.PredictBatch(ctx, records)
	if err != nil {
		log.Fatal().Err(err).Msg("batch prediction failed")
	}

	for i, pred := range result.Predictions {
		if !*showAll && pred.ChurnPrediction == 0 {
			continue
		}
		fmt.Printf("row %d: %-8s p=%.4f risk=%s\n", i+1, pred.Label, pred.Probability, pred.RiskTier)
	}
	fmt.Printf("\ncustomers=%d churners=%d rate=%.2f%%\n",
		result.TotalCustomers, result.PredictedChurners, result.ChurnRate*100)
}

// readCustomersCSV parses a headered CSV into customer records. Column
// names match the JSON field names of the prediction API.
func readCustomersCSV(path string) ([]churn.CustomerRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	var records []churn.CustomerRecord
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rec, err := rowToRecord(col, row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func rowToRecord(col map[string]int, row []string) (churn.CustomerRecord, error) {
	get := func(name string) string {
		if i, ok := col[name]; ok && i < len(row) {
			return row[i]
		}
		return ""
	}

	senior, err := atoiOrZero(get("SeniorCitizen"))
	if err != nil {
		return churn.CustomerRecord{}, fmt.Errorf("SeniorCitizen: %w", err)
	}
	tenure, err := atoiOrZero(get("tenure"))
	if err != nil {
		return churn.CustomerRecord{}, fmt.Errorf("tenure: %w", err)
	}
	monthly, err := atofOrZero(get("MonthlyCharges"))
	if err != nil {
		return churn.CustomerRecord{}, fmt.Errorf("MonthlyCharges: %w", err)
	}
	total, err := atofOrZero(get("TotalCharges"))
	if err != nil {
		return churn.CustomerRecord{}, fmt.Errorf("TotalCharges: %w", err)
	}

	return churn.CustomerRecord{
		Gender:           get("gender"),
		SeniorCitizen:    senior,
		Partner:          get("Partner"),
		Dependents:       get("Dependents"),
		Tenure:           tenure,
		PhoneService:     get("PhoneService"),
		MultipleLines:    get("MultipleLines"),
		InternetService:  get("InternetService"),
		OnlineSecurity:   get("OnlineSecurity"),
		OnlineBackup:     get("OnlineBackup"),
		DeviceProtection: get("DeviceProtection"),
		TechSupport:      get("TechSupport"),
		StreamingTV:      get("StreamingTV"),
		StreamingMovies:  get("StreamingMovies"),
		Contract:         get("Contract"),
		PaperlessBilling: get("PaperlessBilling"),
		PaymentMethod:    get("PaymentMethod"),
		MonthlyCharges:   monthly,
		TotalCharges:     total,
	}, nil
}

func atoiOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func atofOrZero(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
