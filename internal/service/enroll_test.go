package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vericlock-systems/vericlock/internal/biometric"
	"github.com/vericlock-systems/vericlock/internal/directory"
	"github.com/vericlock-systems/vericlock/internal/metrics"
	"github.com/vericlock-systems/vericlock/internal/models"
	"github.com/vericlock-systems/vericlock/internal/repository"
)

func enrollRequest() *models.EnrollRequest {
	return &models.EnrollRequest{
		EmployeeCode: "EMP-1001",
		FirstName:    "Ana",
		LastName:     "Reyes",
		Email:        "ana.reyes@example.com",
	}
}

func TestEnrollHappyPath(t *testing.T) {
	f := newFixture(testConfig())
	f.directory.On("CreateAccount", mock.Anything, mock.Anything).
		Return(&directory.Account{ID: "acct-1", EmployeeCode: "EMP-1001"}, nil)

	employee, err := f.svc.Enroll(context.Background(), enrollRequest(), image)
	require.NoError(t, err)

	assert.Equal(t, "acct-1", employee.AccountID)
	assert.True(t, employee.Registered)
	assert.Equal(t, enrolledEmbedding, employee.Embedding)

	stored, err := f.repo.GetEmployeeByCode(context.Background(), "EMP-1001")
	require.NoError(t, err)
	assert.Equal(t, employee.ID, stored.ID)

	f.directory.AssertNotCalled(t, "DeleteAccount", mock.Anything, mock.Anything)
}

func TestEnrollWithoutImageIsUnregistered(t *testing.T) {
	f := newFixture(testConfig())
	f.directory.On("CreateAccount", mock.Anything, mock.Anything).
		Return(&directory.Account{ID: "acct-1"}, nil)

	employee, err := f.svc.Enroll(context.Background(), enrollRequest(), nil)
	require.NoError(t, err)
	assert.False(t, employee.Registered)
	assert.Empty(t, employee.Embedding)
}

func TestEnrollRejectsMissingFields(t *testing.T) {
	f := newFixture(testConfig())

	_, err := f.svc.Enroll(context.Background(), &models.EnrollRequest{FirstName: "Ana"}, nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	f.directory.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
}

func TestEnrollRejectsDuplicateCode(t *testing.T) {
	f := newFixture(testConfig())
	f.directory.On("CreateAccount", mock.Anything, mock.Anything).
		Return(&directory.Account{ID: "acct-1"}, nil)

	_, err := f.svc.Enroll(context.Background(), enrollRequest(), nil)
	require.NoError(t, err)

	_, err = f.svc.Enroll(context.Background(), enrollRequest(), nil)
	assert.ErrorIs(t, err, ErrEmployeeExists)
	// The pre-check fires before the directory call; no second account.
	f.directory.AssertNumberOfCalls(t, "CreateAccount", 1)
}

func TestEnrollMapsDirectoryConflict(t *testing.T) {
	f := newFixture(testConfig())
	f.directory.On("CreateAccount", mock.Anything, mock.Anything).
		Return(nil, directory.ErrAccountExists)

	rejected := testutil.ToFloat64(metrics.EnrollmentsTotal.WithLabelValues("rejected"))
	errored := testutil.ToFloat64(metrics.EnrollmentsTotal.WithLabelValues("error"))

	_, err := f.svc.Enroll(context.Background(), enrollRequest(), nil)
	assert.ErrorIs(t, err, ErrEmployeeExists)
	f.directory.AssertNotCalled(t, "DeleteAccount", mock.Anything, mock.Anything)

	// A lost uniqueness race counts as a rejection, same as the store-level
	// conflict, not an error.
	assert.Equal(t, rejected+1, testutil.ToFloat64(metrics.EnrollmentsTotal.WithLabelValues("rejected")))
	assert.Equal(t, errored, testutil.ToFloat64(metrics.EnrollmentsTotal.WithLabelValues("error")))
}

func TestEnrollCompensatesOnNoFace(t *testing.T) {
	f := newFixture(testConfig())
	f.extractor.err = biometric.ErrNoFace
	f.directory.On("CreateAccount", mock.Anything, mock.Anything).
		Return(&directory.Account{ID: "acct-1"}, nil)
	f.directory.On("DeleteAccount", mock.Anything, "acct-1").Return(nil)

	_, err := f.svc.Enroll(context.Background(), enrollRequest(), image)
	assert.ErrorIs(t, err, ErrNoFaceDetected)

	// The account was rolled back and no employee row exists.
	f.directory.AssertCalled(t, "DeleteAccount", mock.Anything, "acct-1")
	_, err = f.repo.GetEmployeeByCode(context.Background(), "EMP-1001")
	assert.ErrorIs(t, err, repository.ErrEmployeeNotFound)
}

func TestEnrollCompensatesOnExtractorDown(t *testing.T) {
	f := newFixture(testConfig())
	f.extractor.err = biometric.ErrUnavailable
	f.directory.On("CreateAccount", mock.Anything, mock.Anything).
		Return(&directory.Account{ID: "acct-1"}, nil)
	f.directory.On("DeleteAccount", mock.Anything, "acct-1").Return(nil)

	_, err := f.svc.Enroll(context.Background(), enrollRequest(), image)
	assert.ErrorIs(t, err, ErrExtractorUnavailable)
	f.directory.AssertCalled(t, "DeleteAccount", mock.Anything, "acct-1")
}

func TestEnrollCompensationFailureDoesNotMaskCause(t *testing.T) {
	f := newFixture(testConfig())
	f.extractor.err = biometric.ErrNoFace
	f.directory.On("CreateAccount", mock.Anything, mock.Anything).
		Return(&directory.Account{ID: "acct-1"}, nil)
	f.directory.On("DeleteAccount", mock.Anything, "acct-1").
		Return(errors.New("directory unreachable"))

	_, err := f.svc.Enroll(context.Background(), enrollRequest(), image)
	// Still the original cause, not the compensation failure.
	assert.ErrorIs(t, err, ErrNoFaceDetected)
}

func TestRemoveEmployee(t *testing.T) {
	f := newFixture(testConfig())
	employee := f.addEmployee(true)
	f.directory.On("DeleteAccount", mock.Anything, employee.AccountID).Return(nil)

	require.NoError(t, f.svc.RemoveEmployee(context.Background(), employee.ID))

	_, err := f.repo.GetEmployee(context.Background(), employee.ID)
	assert.ErrorIs(t, err, repository.ErrEmployeeNotFound)
	f.directory.AssertCalled(t, "DeleteAccount", mock.Anything, employee.AccountID)
}

func TestRemoveEmployeeNotFound(t *testing.T) {
	f := newFixture(testConfig())

	err := f.svc.RemoveEmployee(context.Background(), "missing-id")
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}
