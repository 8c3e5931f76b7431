// Package client is a thin HTTP client for the attendance API, used by the
// vclock command-line tool.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vericlock-systems/vericlock/internal/models"
)

type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Reconcile() (*models.ReconcileResponse, error) {
	var resp models.ReconcileResponse
	if err := c.do(http.MethodPost, "/api/v1/reconcile", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) OrgStats() (*models.StatsResponse, error) {
	var resp models.StatsResponse
	if err := c.do(http.MethodGet, "/api/v1/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) EmployeeStats(employeeID string) (*models.StatsResponse, error) {
	var resp models.StatsResponse
	if err := c.do(http.MethodGet, "/api/v1/employees/"+employeeID+"/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Enroll(req *models.EnrollRequest) (*models.Employee, error) {
	var resp models.EnrollResponse
	if err := c.do(http.MethodPost, "/api/v1/employees", req, &resp); err != nil {
		return nil, err
	}
	return resp.Employee, nil
}

func (c *Client) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
