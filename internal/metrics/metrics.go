// AngelaMos | 2026
// metrics.go

package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServiceName is curried into every collector as the "service" label.
const ServiceName = "catclub"

var serviceLabel = prometheus.Labels{"service": ServiceName}

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"service", "method", "route", "status"},
	).MustCurryWith(serviceLabel)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "route"},
	).MustCurryWith(serviceLabel).(*prometheus.HistogramVec)

	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catclub_registrations_total",
			Help: "Member registration attempts.",
		},
		[]string{"service", "result"},
	).MustCurryWith(serviceLabel)

	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catclub_logins_total",
			Help: "Login attempts.",
		},
		[]string{"service", "result"},
	).MustCurryWith(serviceLabel)

	CatTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catclub_cat_transitions_total",
			Help: "Moderation decisions applied to cat registrations.",
		},
		[]string{"service", "action", "result"},
	).MustCurryWith(serviceLabel)

	ResetTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catclub_reset_tokens_total",
			Help: "Password reset tokens issued and redeemed.",
		},
		[]string{"service", "flow", "result"},
	).MustCurryWith(serviceLabel)
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var registerOnce sync.Once

// MustRegister adds every collector to the default registry. Collectors
// are usable before registration; they are simply not exported.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			RegistrationsTotal,
			LoginsTotal,
			CatTransitionsTotal,
			ResetTokensTotal,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func Result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
