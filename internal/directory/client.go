// Package directory is the client for the employee credentials service, the
// external system that owns login accounts. Enrollment provisions an account
// there before touching our own store, and deletes it again if a later step
// fails.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrAccountExists   = errors.New("account already exists")
	ErrAccountNotFound = errors.New("account not found")
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type CreateAccountRequest struct {
	EmployeeCode string `json:"employee_code"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
}

type Account struct {
	ID           string `json:"id"`
	EmployeeCode string `json:"employee_code"`
	Email        string `json:"email"`
}

func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreateAccount provisions a credentials account for a new employee.
func (c *Client) CreateAccount(ctx context.Context, req *CreateAccountRequest) (*Account, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/accounts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK:
	case http.StatusConflict:
		return nil, ErrAccountExists
	default:
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("create account: status %d: %s", resp.StatusCode, string(data))
	}

	var account Account
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	return &account, nil
}

// DeleteAccount removes a credentials account. Deleting an already-deleted
// account succeeds, which keeps saga compensation retryable.
func (c *Client) DeleteAccount(ctx context.Context, id string) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/v1/accounts/"+id, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete account: status %d: %s", resp.StatusCode, string(data))
	}
}
