package media

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer captures telemetry for upload steps.
type Observer interface {
	RecordStage(stage Stage, duration time.Duration, err error)
	RecordUpload(duration time.Duration, sizeBytes int64, err error)
}

// PrometheusObserver exports upload metrics to Prometheus.
type PrometheusObserver struct {
	duration    *prometheus.HistogramVec
	errors      *prometheus.CounterVec
	uploadBytes prometheus.Counter
}

// NewPrometheusObserver registers the upload metrics on reg, reusing
// collectors that are already registered.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "chirp_media"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	o := &PrometheusObserver{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_step_duration_seconds",
			Help:      "Latency of media upload steps.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_errors_total",
			Help:      "Count of failed media upload steps.",
		}, []string{"stage"}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Cumulative size of confirmed media uploads.",
		}),
	}

	var are prometheus.AlreadyRegisteredError
	if err := reg.Register(o.duration); err != nil {
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("register upload histogram: %w", err)
		}
		existing, ok := are.ExistingCollector.(*prometheus.HistogramVec)
		if !ok {
			return nil, fmt.Errorf("register upload histogram: %w", err)
		}
		o.duration = existing
	}
	if err := reg.Register(o.errors); err != nil {
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("register upload error counter: %w", err)
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("register upload error counter: %w", err)
		}
		o.errors = existing
	}
	if err := reg.Register(o.uploadBytes); err != nil {
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("register uploaded bytes counter: %w", err)
		}
		existing, ok := are.ExistingCollector.(prometheus.Counter)
		if !ok {
			return nil, fmt.Errorf("register uploaded bytes counter: %w", err)
		}
		o.uploadBytes = existing
	}
	return o, nil
}

func (o *PrometheusObserver) RecordStage(stage Stage, duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues(string(stage)).Observe(duration.Seconds())
	if err != nil {
		o.errors.WithLabelValues(string(stage)).Inc()
	}
}

// RecordUpload counts bytes only for uploads that were confirmed.
func (o *PrometheusObserver) RecordUpload(duration time.Duration, sizeBytes int64, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues("upload").Observe(duration.Seconds())
	if err != nil {
		return
	}
	o.uploadBytes.Add(float64(sizeBytes))
}

type nopObserver struct{}

func (nopObserver) RecordStage(Stage, time.Duration, error)  {}
func (nopObserver) RecordUpload(time.Duration, int64, error) {}

var _ Observer = (*PrometheusObserver)(nil)
