package millionverifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("api"))
		assert.Equal(t, "jane@example.com", r.URL.Query().Get("email"))
		w.Write([]byte(`{"email":"jane@example.com","quality":"good","result":"ok","credits":4100}`))
	}))
	defer srv.Close()

	c := New("test-key", WithBaseURL(srv.URL))
	outcome, err := c.Check(context.Background(), "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "good", outcome.Quality)
	assert.Equal(t, "ok", outcome.Result)
	assert.Equal(t, 4100, outcome.Credits)
}

func TestCheckAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"error":"invalid api key"}`))
	}))
	defer srv.Close()

	c := New("bad-key", WithBaseURL(srv.URL))
	_, err := c.Check(context.Background(), "jane@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestCheckHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New("test-key", WithBaseURL(srv.URL))
	_, err := c.Check(context.Background(), "jane@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestCredits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/credits", r.URL.Path)
		w.Write([]byte(`{"credits":250}`))
	}))
	defer srv.Close()

	c := New("test-key", WithBaseURL(srv.URL))
	credits, err := c.Credits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 250, credits)
}
