// Package service implements the attendance core: biometric verification,
// the check-in/check-out session state machine, the enrollment saga, daily
// reconciliation, and attendance statistics.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vericlock-systems/vericlock/internal/biometric"
	"github.com/vericlock-systems/vericlock/internal/calendar"
	"github.com/vericlock-systems/vericlock/internal/directory"
	"github.com/vericlock-systems/vericlock/internal/models"
	"github.com/vericlock-systems/vericlock/internal/notification"
	"github.com/vericlock-systems/vericlock/internal/ratelimit"
	"github.com/vericlock-systems/vericlock/internal/repository"
)

// Domain errors. Handlers map these to HTTP statuses; callers must be able to
// tell "wrong face" from "no face" from "already checked in" from "subsystem
// down".
var (
	ErrMissingImage         = errors.New("image is required")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrNotEnrolled          = errors.New("employee has no biometric template")
	ErrNoFaceDetected       = errors.New("no face detected in image")
	ErrFaceMismatch         = errors.New("face does not match enrolled template")
	ErrNoOpenSession        = errors.New("no open session to close")
	ErrAlreadyCheckedIn     = errors.New("employee already has an open session")
	ErrEmployeeExists       = errors.New("employee code already enrolled")
	ErrExtractorUnavailable = errors.New("biometric subsystem unavailable")
	ErrTooManyAttempts      = errors.New("too many verification attempts")
)

// CloseMode selects the timestamp the reconciliation sweep writes into
// abandoned sessions.
type CloseMode string

const (
	// CloseAtRunTime closes abandoned sessions at the sweep's own run time.
	CloseAtRunTime CloseMode = "run_time"
	// CloseAtFacilityClose closes them at the facility's fixed closing
	// instant on the day they were opened.
	CloseAtFacilityClose CloseMode = "facility_close"
)

// DirectoryClient is the slice of the credentials service the saga needs.
type DirectoryClient interface {
	CreateAccount(ctx context.Context, req *directory.CreateAccountRequest) (*directory.Account, error)
	DeleteAccount(ctx context.Context, id string) error
}

// Config carries the facility policy knobs.
type Config struct {
	// MatchThreshold is the max euclidean distance for a face match.
	MatchThreshold float64
	// WorkStart and LateCutoff bound the on-time window for check-ins.
	WorkStart  models.DayClock
	LateCutoff models.DayClock
	// FacilityClose is the closing instant used by CloseAtFacilityClose.
	FacilityClose models.DayClock
	CloseMode     CloseMode
	// Location is the facility's local timezone; punctuality and calendar
	// days are judged in it.
	Location *time.Location
}

type AttendanceService struct {
	repo      repository.Repository
	extractor biometric.Extractor
	directory DirectoryClient
	notifier  *notification.Notifier
	limiter   ratelimit.AttemptLimiter
	calendar  *calendar.Rule
	logger    *slog.Logger
	cfg       Config

	// now is swappable in tests.
	now func() time.Time
}

func New(
	repo repository.Repository,
	extractor biometric.Extractor,
	dir DirectoryClient,
	notifier *notification.Notifier,
	limiter ratelimit.AttemptLimiter,
	rule *calendar.Rule,
	logger *slog.Logger,
	cfg Config,
) *AttendanceService {
	if cfg.MatchThreshold == 0 {
		cfg.MatchThreshold = biometric.DefaultThreshold
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.CloseMode == "" {
		cfg.CloseMode = CloseAtFacilityClose
	}
	if limiter == nil {
		limiter = ratelimit.NoOpLimiter{}
	}
	if rule == nil {
		rule = calendar.Default()
	}
	return &AttendanceService{
		repo:      repo,
		extractor: extractor,
		directory: dir,
		notifier:  notifier,
		limiter:   limiter,
		calendar:  rule,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}
