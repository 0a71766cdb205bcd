package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsSnapshot is a lightweight aggregate for the admin dashboard.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	RegistrationsTotal       uint64    `json:"registrations_total"`
	CardsGeneratedTotal      uint64    `json:"cards_generated_total"`
	CardGenerationFailures   uint64    `json:"card_generation_failures"`
	DocumentUploadsTotal     uint64    `json:"document_uploads_total"`
	OTPSentTotal             uint64    `json:"otp_sent_total"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// MetricsService encapsulates Prometheus instrumentation and provides
// lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	registrations   prometheus.Counter
	cardsGenerated  *prometheus.CounterVec
	cardDuration    prometheus.Histogram
	documentUploads prometheus.Counter
	otpSent         prometheus.Counter

	requestCount         uint64
	requestDurationTotal uint64
	registrationCount    uint64
	cardSuccessCount     uint64
	cardFailureCount     uint64
	uploadCount          uint64
	otpCount             uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	registrations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "student_registrations_total",
		Help: "Total student registrations accepted",
	})

	cardsGenerated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "id_cards_generated_total",
		Help: "ID card generation attempts by outcome",
	}, []string{"outcome"})

	cardDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "id_card_generation_seconds",
		Help:    "Time spent rendering and publishing one ID card",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	documentUploads := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "document_uploads_total",
		Help: "Total documents pushed to the drive",
	})

	otpSent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "otp_sent_total",
		Help: "Total verification codes sent",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, registrations, cardsGenerated, cardDuration, documentUploads, otpSent, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		registrations:   registrations,
		cardsGenerated:  cardsGenerated,
		cardDuration:    cardDuration,
		documentUploads: documentUploads,
		otpSent:         otpSent,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordRegistration counts an accepted registration.
func (m *MetricsService) RecordRegistration() {
	if m == nil {
		return
	}
	m.registrations.Inc()
	atomic.AddUint64(&m.registrationCount, 1)
}

// RecordCardGeneration counts a card generation attempt.
func (m *MetricsService) RecordCardGeneration(success bool, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if success {
		atomic.AddUint64(&m.cardSuccessCount, 1)
	} else {
		outcome = "failure"
		atomic.AddUint64(&m.cardFailureCount, 1)
	}
	m.cardsGenerated.WithLabelValues(outcome).Inc()
	m.cardDuration.Observe(duration.Seconds())
}

// RecordDocumentUpload counts a document landing in the drive.
func (m *MetricsService) RecordDocumentUpload() {
	if m == nil {
		return
	}
	m.documentUploads.Inc()
	atomic.AddUint64(&m.uploadCount, 1)
}

// RecordOTPSent counts a delivered verification code.
func (m *MetricsService) RecordOTPSent() {
	if m == nil {
		return
	}
	m.otpSent.Inc()
	atomic.AddUint64(&m.otpCount, 1)
}

// Snapshot returns aggregated metrics suitable for dashboard endpoints.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return MetricsSnapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		RegistrationsTotal:       atomic.LoadUint64(&m.registrationCount),
		CardsGeneratedTotal:      atomic.LoadUint64(&m.cardSuccessCount),
		CardGenerationFailures:   atomic.LoadUint64(&m.cardFailureCount),
		DocumentUploadsTotal:     atomic.LoadUint64(&m.uploadCount),
		OTPSentTotal:             atomic.LoadUint64(&m.otpCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
