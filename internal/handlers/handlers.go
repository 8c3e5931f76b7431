package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/vericlock-systems/vericlock/internal/httputil"
	"github.com/vericlock-systems/vericlock/internal/logging"
	"github.com/vericlock-systems/vericlock/internal/models"
	"github.com/vericlock-systems/vericlock/internal/service"
)

// AttendanceAPI is the slice of the attendance service the HTTP layer uses.
type AttendanceAPI interface {
	CheckIn(ctx context.Context, employeeID string, image []byte) (*models.Session, error)
	CheckOut(ctx context.Context, employeeID string, image []byte) (*models.Session, error)
	Enroll(ctx context.Context, req *models.EnrollRequest, image []byte) (*models.Employee, error)
	RemoveEmployee(ctx context.Context, employeeID string) error
	EmployeeStats(ctx context.Context, employeeID string) (*models.StatsResponse, error)
	OrgStats(ctx context.Context) (*models.StatsResponse, error)
	ReconcileDay(ctx context.Context, day time.Time) (int, error)
}

type Handler struct {
	service AttendanceAPI
	logger  *logging.Logger
	now     func() time.Time
}

func NewHandler(svc AttendanceAPI, logger *logging.Logger) *Handler {
	return &Handler{service: svc, logger: logger, now: time.Now}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// CheckIn handles POST /api/v1/attendance/check-in
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	req, image, ok := h.decodeVerifyRequest(w, r)
	if !ok {
		return
	}

	session, err := h.service.CheckIn(r.Context(), req.EmployeeID, image)
	if err != nil {
		h.auditVerification(r, "check_in", req.EmployeeID, err)
		h.writeDomainError(w, r, err)
		return
	}
	h.auditVerification(r, "check_in", req.EmployeeID, nil)
	httputil.WriteJSON(w, http.StatusCreated, models.CheckInResponse{Session: session})
}

// CheckOut handles POST /api/v1/attendance/check-out
func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	req, image, ok := h.decodeVerifyRequest(w, r)
	if !ok {
		return
	}

	session, err := h.service.CheckOut(r.Context(), req.EmployeeID, image)
	if err != nil {
		h.auditVerification(r, "check_out", req.EmployeeID, err)
		h.writeDomainError(w, r, err)
		return
	}
	h.auditVerification(r, "check_out", req.EmployeeID, nil)
	httputil.WriteJSON(w, http.StatusOK, models.CheckOutResponse{Session: session})
}

// Enroll handles POST /api/v1/employees
func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req models.EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var image []byte
	if req.Image != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "Image must be base64 encoded")
			return
		}
		image = decoded
	}

	employee, err := h.service.Enroll(r.Context(), &req, image)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, models.EnrollResponse{Employee: employee})
}

// DeleteEmployee handles DELETE /api/v1/employees/{id}
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.WriteError(w, http.StatusBadRequest, "Employee ID required")
		return
	}

	if err := h.service.RemoveEmployee(r.Context(), id); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EmployeeStats handles GET /api/v1/employees/{id}/stats
func (h *Handler) EmployeeStats(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.WriteError(w, http.StatusBadRequest, "Employee ID required")
		return
	}

	stats, err := h.service.EmployeeStats(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

// OrgStats handles GET /api/v1/stats
func (h *Handler) OrgStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.OrgStats(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

// Reconcile handles POST /api/v1/reconcile, the manual trigger for the
// daily sweep. Safe to call repeatedly.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	ranAt := h.now()
	closed, err := h.service.ReconcileDay(r.Context(), ranAt)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "manual reconciliation failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "Reconciliation failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ReconcileResponse{Closed: closed, RanAt: ranAt})
}

// auditVerification records every biometric verification attempt with the
// originating kiosk address so rejected attempts can be traced to a device.
func (h *Handler) auditVerification(r *http.Request, action, employeeID string, err error) {
	if err != nil {
		h.logger.WarnContext(r.Context(), "verification rejected",
			"action", action,
			"employee_id", employeeID,
			"client_ip", httputil.GetClientIP(r),
			"error", err)
		return
	}
	h.logger.InfoContext(r.Context(), "verification accepted",
		"action", action,
		"employee_id", employeeID,
		"client_ip", httputil.GetClientIP(r))
}

func (h *Handler) decodeVerifyRequest(w http.ResponseWriter, r *http.Request) (*models.VerifyRequest, []byte, bool) {
	var req models.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return nil, nil, false
	}

	var image []byte
	if req.Image != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "Image must be base64 encoded")
			return nil, nil, false
		}
		image = decoded
	}
	return &req, image, true
}

// writeDomainError maps service errors onto HTTP statuses. Clients need to
// distinguish the rejection reasons, so the reason travels in the body.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrMissingImage), errors.Is(err, service.ErrInvalidRequest):
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrEmployeeNotFound):
		httputil.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotEnrolled),
		errors.Is(err, service.ErrNoFaceDetected),
		errors.Is(err, service.ErrFaceMismatch):
		httputil.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrNoOpenSession),
		errors.Is(err, service.ErrAlreadyCheckedIn),
		errors.Is(err, service.ErrEmployeeExists):
		httputil.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrTooManyAttempts):
		httputil.WriteError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, service.ErrExtractorUnavailable):
		httputil.WriteError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}
