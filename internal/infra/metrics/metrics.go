package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xavierca1/stockwatch/internal/entity"
)

// Recorder collects per-run metrics and writes them in the node_exporter
// textfile format. With an empty path every method is a no-op on disk.
type Recorder struct {
	path     string
	registry *prometheus.Registry

	available       prometheus.Gauge
	lastCheck       prometheus.Gauge
	lastSuccess     prometheus.Gauge
	runDuration     prometheus.Gauge
	emailsSent      *prometheus.GaugeVec
	runErrors       *prometheus.GaugeVec
	lastStatusEmail prometheus.Gauge
}

func NewRecorder(path string) *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		path:     path,
		registry: reg,
		available: factory.NewGauge(prometheus.GaugeOpts{
			Name: "stockwatch_product_available",
			Help: "1 if the last check classified the product as in stock",
		}),
		lastCheck: factory.NewGauge(prometheus.GaugeOpts{
			Name: "stockwatch_last_check_timestamp_seconds",
			Help: "Unix time of the last run",
		}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "stockwatch_last_run_success",
			Help: "1 if the last run finished without a fatal error",
		}),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "stockwatch_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
		emailsSent: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stockwatch_emails_sent",
			Help: "Emails sent during the last run",
		}, []string{"kind"}),
		runErrors: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stockwatch_run_errors",
			Help: "Fatal errors during the last run",
		}, []string{"type"}),
		lastStatusEmail: factory.NewGauge(prometheus.GaugeOpts{
			Name: "stockwatch_last_status_email_timestamp_seconds",
			Help: "Unix time of the last periodic status email",
		}),
	}
}

func (r *Recorder) RecordAvailability(available bool) {
	if available {
		r.available.Set(1)
		return
	}
	r.available.Set(0)
}

func (r *Recorder) RecordEmail(kind entity.EmailKind) {
	r.emailsSent.WithLabelValues(string(kind)).Inc()
}

func (r *Recorder) RecordState(state *entity.StockState) {
	if state != nil && state.LastStatusEmailUTC != nil {
		r.lastStatusEmail.Set(float64(state.LastStatusEmailUTC.Unix()))
	}
}

func (r *Recorder) RecordError(errType string) {
	r.runErrors.WithLabelValues(errType).Inc()
}

// RecordRun stamps the end of a run.
func (r *Recorder) RecordRun(start, end time.Time, success bool) {
	r.lastCheck.Set(float64(end.Unix()))
	r.runDuration.Set(end.Sub(start).Seconds())
	if success {
		r.lastSuccess.Set(1)
	} else {
		r.lastSuccess.Set(0)
	}
}

// Write atomically replaces the textfile. No path configured means no file.
func (r *Recorder) Write() error {
	if r.path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(r.path, r.registry)
}
