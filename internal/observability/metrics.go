package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the Prometheus metrics of the planning and download
// pipeline and provides a ready-to-serve /metrics handler.
type Collector struct {
	gatherer prometheus.Gatherer

	FDSNRequests  *prometheus.CounterVec
	FDSNDurations *prometheus.HistogramVec
	BytesFetched  *prometheus.CounterVec

	PlanUnits     prometheus.Histogram
	ChannelsKept  prometheus.Gauge
	RecordsFailed *prometheus.CounterVec
}

// NewCollector registers the pipeline metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fdsn_requests_total",
		Help: "Total number of FDSN web service requests, labeled by datacenter, service, and outcome.",
	}, []string{"datacenter", "service", "outcome"})
	requests, err := registerCounterVec(reg, requests, "fdsn_requests_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fdsn_request_duration_seconds",
		Help:    "FDSN web service request latency in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"datacenter", "service"})
	durations, err = registerHistogramVec(reg, durations, "fdsn_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	bytesFetched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "waveform_bytes_total",
		Help: "Total miniSEED bytes written to storage, labeled by datacenter.",
	}, []string{"datacenter"})
	bytesFetched, err = registerCounterVec(reg, bytesFetched, "waveform_bytes_total")
	if err != nil {
		return nil, err
	}

	planUnits := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "plan_request_units",
		Help:    "Number of request units produced per planned event.",
		Buckets: []float64{0, 1, 2, 4, 6, 8, 12, 18, 36},
	})
	if err := reg.Register(planUnits); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			planUnits = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}

	channelsKept, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "download_channels_kept",
		Help: "Channels surviving domain post-filtering in the current batch.",
	}), "download_channels_kept")
	if err != nil {
		return nil, err
	}

	recordsFailed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "download_records_failed_total",
		Help: "Waveform records that could not be downloaded, labeled by datacenter.",
	}, []string{"datacenter"})
	recordsFailed, err = registerCounterVec(reg, recordsFailed, "download_records_failed_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:      gatherer,
		FDSNRequests:  requests,
		FDSNDurations: durations,
		BytesFetched:  bytesFetched,
		PlanUnits:     planUnits,
		ChannelsKept:  channelsKept,
		RecordsFailed: recordsFailed,
	}, nil
}

// ObserveRequest records one FDSN request with its latency and outcome.
// Outcome is "ok", "nodata", or "error".
func (c *Collector) ObserveRequest(datacenter, service, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	if c.FDSNRequests != nil {
		c.FDSNRequests.WithLabelValues(datacenter, service, outcome).Inc()
	}
	if c.FDSNDurations != nil {
		c.FDSNDurations.WithLabelValues(datacenter, service).Observe(elapsed.Seconds())
	}
}

// AddBytes records miniSEED bytes written for a datacenter.
func (c *Collector) AddBytes(datacenter string, n int) {
	if c == nil || c.BytesFetched == nil {
		return
	}
	c.BytesFetched.WithLabelValues(datacenter).Add(float64(n))
}

// ObservePlan records the size of one event's plan.
func (c *Collector) ObservePlan(units int) {
	if c == nil || c.PlanUnits == nil {
		return
	}
	c.PlanUnits.Observe(float64(units))
}

// SetChannelsKept publishes how many channels survived post-filtering.
func (c *Collector) SetChannelsKept(n int) {
	if c == nil || c.ChannelsKept == nil {
		return
	}
	c.ChannelsKept.Set(float64(n))
}

// RecordFailed counts one failed waveform record.
func (c *Collector) RecordFailed(datacenter string) {
	if c == nil || c.RecordsFailed == nil {
		return
	}
	c.RecordsFailed.WithLabelValues(datacenter).Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
