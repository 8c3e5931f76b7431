package models

import "time"

type Employee struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"account_id"`
	EmployeeCode string    `json:"employee_code"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Registered   bool      `json:"registered"`
	Embedding    []float32 `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (e *Employee) FullName() string {
	if e.FirstName == "" {
		return e.LastName
	}
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}
