package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
		require.Equal(t, "secret", r.Header.Get("x-goog-api-key"))

		var body generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Contents, 1)
		require.Equal(t, "hello", body.Contents[0].Parts[0].Text)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Stock "},{"text":"nominal."}]}}]}`))
	}))
	defer srv.Close()

	text, err := NewClient(srv.URL, "test-model", "secret").Generate(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, "Stock nominal.", text)
}

func TestClientGenerateErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", "secret").Generate(context.Background(), "x")
	require.ErrorContains(t, err, "status 429")

	_, err = NewClient(srv.URL, "", "").Generate(context.Background(), "x")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestClientGenerateNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	text, err := NewClient(srv.URL, "", "k").Generate(context.Background(), "x")
	require.NoError(t, err)
	require.Empty(t, text)
}
