package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Verification metrics
	VerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vericlock_verifications_total",
			Help: "Total number of biometric verification attempts",
		},
		[]string{"action", "result"},
	)

	BiometricDistance = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vericlock_biometric_distance",
			Help:    "Euclidean distance between stored and captured embeddings",
			Buckets: prometheus.LinearBuckets(0, 0.1, 15),
		},
	)

	VerifyRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vericlock_verify_rate_limited_total",
			Help: "Verification attempts rejected by the per-employee rate limit",
		},
	)

	// Enrollment metrics
	EnrollmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vericlock_enrollments_total",
			Help: "Total number of enrollment attempts",
		},
		[]string{"result"},
	)

	EnrollmentCompensations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vericlock_enrollment_compensations_total",
			Help: "Directory accounts deleted by enrollment saga compensation",
		},
	)

	// Reconciliation metrics
	ReconciliationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vericlock_reconciliation_runs_total",
			Help: "Reconciliation sweeps by outcome",
		},
		[]string{"result"},
	)

	SessionsReconciled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vericlock_sessions_reconciled_total",
			Help: "Sessions closed by the end-of-day reconciliation sweep",
		},
	)

	// Notification metrics
	NotificationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vericlock_notification_errors_total",
			Help: "Attendance event deliveries that failed",
		},
		[]string{"channel"},
	)
)
