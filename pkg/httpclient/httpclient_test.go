package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		assert.Equal(t, `{"productId":"p1"}`, string(body))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	status, body, err := SendRequest(context.Background(), NewClient(time.Second), HttpRequest{
		URL:     server.URL,
		Method:  http.MethodPost,
		Body:    []byte(`{"productId":"p1"}`),
		Headers: map[string]string{"Authorization": "Bearer abc"},
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, `{"success":true}`, string(body))
}

func TestSendRequestHonoursContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, err := SendRequest(ctx, NewClient(0), HttpRequest{URL: server.URL, Method: http.MethodGet})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
