package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btcchina/pkg/core"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(&Config{
		Headers: map[string]string{"User-Agent": "test-agent"},
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/data/ticker", r.URL.Path)
		assert.Equal(t, "btccny", r.URL.Query().Get("market"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ticker":{}}`))
	}))
	defer server.Close()

	client := newTestClient(t)

	resp, err := client.Get(context.Background(), server.URL+"/data/ticker", time.Second,
		WithQueryValues(url.Values{"market": {"btccny"}}))

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode())
	assert.JSONEq(t, `{"ticker":{}}`, string(resp.Bytes()))
}

func TestClient_Post(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "123", r.Header.Get("Json-Rpc-Tonce"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"method":"getAccountInfo","params":[],"id":1}`, string(body))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"result":{},"id":"1"}`))
	}))
	defer server.Close()

	client := newTestClient(t)

	resp, err := client.Post(context.Background(), server.URL, core.NewEnvelope("getAccountInfo", nil), 0,
		WithHeaders(map[string]string{"Json-Rpc-Tonce": "123"}))

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode())
}

func TestClient_NonSuccessStatusIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t)

	resp, err := client.Get(context.Background(), server.URL, 0)

	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode())
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	client := newTestClient(t)

	_, err := client.Get(context.Background(), server.URL, 50*time.Millisecond)

	require.Error(t, err)
	assert.Equal(t, core.ErrCodeTimeout, core.ClassifyTransport(err))
}

func TestClient_Closed(t *testing.T) {
	client := newTestClient(t)
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	_, err := client.Get(context.Background(), "http://127.0.0.1:1", 0)
	assert.ErrorIs(t, err, core.ErrClientClosed)

	_, err = client.Post(context.Background(), "http://127.0.0.1:1", nil, 0)
	assert.ErrorIs(t, err, core.ErrClientClosed)
}

func TestNewClient_InvalidHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"empty value", map[string]string{"User-Agent": ""}},
		{"empty name", map[string]string{"": "test-agent"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(&Config{Headers: tt.headers, Logger: zerolog.Nop()})
			assert.Error(t, err)
			assert.Nil(t, client)
		})
	}
}

func TestNewClient_NilConfig(t *testing.T) {
	client, err := NewClient(nil)
	assert.Error(t, err)
	assert.Nil(t, client)
}
