package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vericlock-systems/vericlock/internal/handlers"
	"github.com/vericlock-systems/vericlock/internal/middleware"
)

// NewRouter constructs a ServeMux with attendance API routes registered.
// Kiosk endpoints (check-in, check-out) are open; the biometric match is
// the authentication. Administrative endpoints require a bearer token with
// the admin role.
func NewRouter(h *handlers.Handler, authMW *middleware.AuthMiddleware) http.Handler {
	mux := http.NewServeMux()

	// Kiosk verification endpoints
	mux.HandleFunc("POST /api/v1/attendance/check-in", h.CheckIn)
	mux.HandleFunc("POST /api/v1/attendance/check-out", h.CheckOut)

	// Administration
	admin := authMW.RequireRole("admin")
	mux.HandleFunc("POST /api/v1/employees", admin(h.Enroll))
	mux.HandleFunc("DELETE /api/v1/employees/{id}", admin(h.DeleteEmployee))
	mux.HandleFunc("GET /api/v1/employees/{id}/stats", admin(h.EmployeeStats))
	mux.HandleFunc("GET /api/v1/stats", admin(h.OrgStats))
	mux.HandleFunc("POST /api/v1/reconcile", admin(h.Reconcile))

	// Health check and metrics
	mux.HandleFunc("/healthz", h.HealthCheck)
	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.RequestID(mux)
}
