package metrics

// Wrapper adapts Metrics to the narrow interface the pipeline depends
// on, so the churn package never imports Prometheus directly.
type Wrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *Wrapper {
	return &Wrapper{m: m}
}

func (w *Wrapper) PredictionsInc()        { w.m.PredictionsTotal.Inc() }
func (w *Wrapper) ValidationFailuresInc() { w.m.ValidationFailures.Inc() }
func (w *Wrapper) IntegrityFailuresInc()  { w.m.IntegrityFailures.Inc() }
func (w *Wrapper) UnknownCategoriesInc()  { w.m.UnknownCategories.Inc() }

func (w *Wrapper) PredictionLatencyObserve(v float64) { w.m.PredictionLatency.Observe(v) }
func (w *Wrapper) PredictionScoreObserve(v float64)   { w.m.PredictionScores.Observe(v) }

func (w *Wrapper) BatchSizeObserve(v float64) {
	w.m.BatchesTotal.Inc()
	w.m.BatchSize.Observe(v)
}
