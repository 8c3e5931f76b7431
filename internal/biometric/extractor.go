package biometric

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"
)

var (
	// ErrNoFace means the extractor ran fine but found no face in the image.
	// It is a normal outcome, not an infrastructure failure, so callers can
	// turn it into a specific rejection.
	ErrNoFace = errors.New("no face detected")

	// ErrUnavailable means the extractor subsystem is not ready (model not
	// loaded, sidecar unreachable).
	ErrUnavailable = errors.New("face extractor unavailable")
)

// Extractor produces a fixed-length face embedding from raw image bytes.
type Extractor interface {
	// EnsureLoaded triggers the model load if it has not succeeded yet.
	// Safe to call from any number of goroutines; callers arriving during
	// a load await that attempt rather than starting their own.
	EnsureLoaded(ctx context.Context) error

	// Extract returns the face embedding for the image, ErrNoFace if the
	// image contains no detectable face, or ErrUnavailable if the model is
	// not loaded.
	Extract(ctx context.Context, image []byte) ([]float32, error)
}

// RemoteExtractor talks to the face-embedding inference sidecar over HTTP.
// The sidecar loads its model on demand; the first caller here triggers that
// load and concurrent callers coalesce onto the in-flight attempt.
type RemoteExtractor struct {
	baseURL string
	dim     int
	client  *http.Client

	loadMu sync.Mutex
	loaded bool
}

type extractResponse struct {
	FaceFound bool      `json:"face_found"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
}

// NewRemoteExtractor creates an extractor client. dim is the embedding
// dimension the model is expected to produce; responses with any other
// dimension are rejected.
func NewRemoteExtractor(baseURL string, dim int, timeout time.Duration) *RemoteExtractor {
	return &RemoteExtractor{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		dim:     dim,
		client:  &http.Client{Timeout: timeout},
	}
}

// EnsureLoaded asks the sidecar to load its model. A successful load is
// remembered for the process lifetime; a failed one is retried by the next
// caller, so a sidecar that was cold at boot becomes usable once it comes up.
func (e *RemoteExtractor) EnsureLoaded(ctx context.Context) error {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()
	if e.loaded {
		return nil
	}
	if err := e.load(ctx); err != nil {
		return fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	e.loaded = true
	return nil
}

func (e *RemoteExtractor) load(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/model/load", nil)
	if err != nil {
		return fmt.Errorf("build load request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("load model: status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (e *RemoteExtractor) Extract(ctx context.Context, image []byte) ([]float32, error) {
	if err := e.EnsureLoaded(ctx); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/faces/embed", &buf)
	if err != nil {
		return nil, fmt.Errorf("build extract request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read extract response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extract: status %d: %s", resp.StatusCode, string(body))
	}

	var er extractResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return nil, fmt.Errorf("parse extract response: %w", err)
	}

	if !er.FaceFound {
		return nil, ErrNoFace
	}
	if len(er.Embedding) != e.dim || er.Dim != e.dim {
		return nil, fmt.Errorf("extract: expected %d-dim embedding, got %d", e.dim, len(er.Embedding))
	}

	return er.Embedding, nil
}
