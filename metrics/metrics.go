package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "teetime"

// Label values for results
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultInvalid = "invalid"
)

var (
	once sync.Once

	authAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Count of sign-in, sign-up and sign-out submissions by result.",
		},
		[]string{"op", "result"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Count of booking wizard outcomes.",
		},
		[]string{"result"},
	)

	sessionEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Count of browser session authentication changes.",
		},
		[]string{"event"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(authAttempts, bookings, sessionEvents, requestDuration)
	})
}

// Handler serves the registered metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

func IncAuthAttempt(op, result string) {
	authAttempts.WithLabelValues(op, result).Inc()
}

// Booking results
const (
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingFailed    = "failed"
)

func IncBooking(result string) {
	bookings.WithLabelValues(result).Inc()
}

// Session events
const (
	SessionLogin  = "login"
	SessionLogout = "logout"
)

func IncSessionEvent(event string) {
	sessionEvents.WithLabelValues(event).Inc()
}

func ObserveRequest(method string, status int, d time.Duration) {
	requestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(d.Seconds())
}
