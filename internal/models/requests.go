package models

import "time"

type EnrollRequest struct {
	EmployeeCode string `json:"employee_code"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	// Image is the base64-encoded enrollment photo. Optional: an employee
	// can be provisioned first and enrolled biometrically later.
	Image string `json:"image,omitempty"`
}

type EnrollResponse struct {
	Employee *Employee `json:"employee"`
}

type VerifyRequest struct {
	EmployeeID string `json:"employee_id"`
	Image      string `json:"image"`
}

type CheckInResponse struct {
	Session *Session `json:"session"`
}

type CheckOutResponse struct {
	Session *Session `json:"session"`
}

type StatsResponse struct {
	EmployeeID  string `json:"employee_id,omitempty"`
	WorkingDays int    `json:"working_days"`
	PresentDays int    `json:"present_days"`
	AbsentDays  int    `json:"absent_days"`
}

type ReconcileResponse struct {
	Closed int       `json:"closed"`
	RanAt  time.Time `json:"ran_at"`
}
