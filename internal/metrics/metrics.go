package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// UsersRegistered counts successful registrations.
	UsersRegistered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bookshelf_users_registered_total",
			Help: "Total number of users registered",
		},
	)

	// ReviewsCreated counts successfully created reviews.
	ReviewsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bookshelf_reviews_created_total",
			Help: "Total number of reviews created",
		},
	)

	// RatingRefreshBooks counts books whose rating rollup the scheduled
	// refresher had to repair.
	RatingRefreshBooks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bookshelf_rating_refresh_books_total",
			Help: "Total number of books updated by the rating refresh job",
		},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, UsersRegistered, ReviewsCreated, RatingRefreshBooks)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /api/books/123 -> /api/books/{id}, /api/reviews/45/like -> /api/reviews/{id}/like.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}
