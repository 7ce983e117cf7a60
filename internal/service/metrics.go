package service

import "github.com/prometheus/client_golang/prometheus"

// IngestMetrics counts ingest outcomes.
type IngestMetrics struct {
	batches        *prometheus.CounterVec
	filesCommitted prometheus.Counter
}

// NewIngestMetrics registers the ingest collectors with reg.
func NewIngestMetrics(reg prometheus.Registerer) (*IngestMetrics, error) {
	m := &IngestMetrics{
		batches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "busgallery_ingest_batches_total",
				Help: "Upload batches processed, by result.",
			},
			[]string{"result"},
		),
		filesCommitted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "busgallery_ingest_files_committed_total",
				Help: "Files whose asset and document were both committed.",
			},
		),
	}
	for _, c := range []prometheus.Collector{m.batches, m.filesCommitted} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *IngestMetrics) observe(ok bool, committed int) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.batches.WithLabelValues(result).Inc()
	m.filesCommitted.Add(float64(committed))
}
