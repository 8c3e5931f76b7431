package biometric

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSidecar(t *testing.T, loads *int32, embed func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/model/load", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(loads, 1)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /v1/faces/embed", embed)
	return httptest.NewServer(mux)
}

func embedding(dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = float32(i) / float32(dim)
	}
	return v
}

func TestRemoteExtractorExtract(t *testing.T) {
	var loads int32
	srv := newSidecar(t, &loads, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(extractResponse{
			FaceFound: true,
			Dim:       128,
			Embedding: embedding(128),
		})
	})
	defer srv.Close()

	ex := NewRemoteExtractor(srv.URL, 128, 5*time.Second)
	got, err := ex.Extract(context.Background(), []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Len(t, got, 128)
	assert.EqualValues(t, 1, atomic.LoadInt32(&loads))
}

func TestRemoteExtractorNoFace(t *testing.T) {
	var loads int32
	srv := newSidecar(t, &loads, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(extractResponse{FaceFound: false})
	})
	defer srv.Close()

	ex := NewRemoteExtractor(srv.URL, 128, 5*time.Second)
	_, err := ex.Extract(context.Background(), []byte("landscape"))
	assert.ErrorIs(t, err, ErrNoFace)
}

func TestRemoteExtractorDimensionMismatch(t *testing.T) {
	var loads int32
	srv := newSidecar(t, &loads, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(extractResponse{
			FaceFound: true,
			Dim:       64,
			Embedding: embedding(64),
		})
	})
	defer srv.Close()

	ex := NewRemoteExtractor(srv.URL, 128, 5*time.Second)
	_, err := ex.Extract(context.Background(), []byte("jpeg-bytes"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoFace)
}

func TestRemoteExtractorUnavailable(t *testing.T) {
	// Point at a closed port; every load attempt fails.
	ex := NewRemoteExtractor("http://127.0.0.1:1", 128, 500*time.Millisecond)

	_, err := ex.Extract(context.Background(), []byte("jpeg-bytes"))
	assert.ErrorIs(t, err, ErrUnavailable)

	err = ex.EnsureLoaded(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRemoteExtractorLoadRetriesAfterFailure(t *testing.T) {
	var loads int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/model/load", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&loads, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /v1/faces/embed", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(extractResponse{
			FaceFound: true,
			Dim:       128,
			Embedding: embedding(128),
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ex := NewRemoteExtractor(srv.URL, 128, 5*time.Second)

	// The sidecar was cold on the first call.
	_, err := ex.Extract(context.Background(), []byte("jpeg-bytes"))
	assert.ErrorIs(t, err, ErrUnavailable)

	// The next call retries the load and succeeds.
	got, err := ex.Extract(context.Background(), []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Len(t, got, 128)
	assert.EqualValues(t, 2, atomic.LoadInt32(&loads))

	// A loaded model is not loaded again.
	require.NoError(t, ex.EnsureLoaded(context.Background()))
	assert.EqualValues(t, 2, atomic.LoadInt32(&loads))
}

func TestRemoteExtractorLoadCoalesces(t *testing.T) {
	var loads int32
	srv := newSidecar(t, &loads, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(extractResponse{
			FaceFound: true,
			Dim:       128,
			Embedding: embedding(128),
		})
	})
	defer srv.Close()

	ex := NewRemoteExtractor(srv.URL, 128, 5*time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, ex.EnsureLoaded(context.Background()))
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&loads))
}
