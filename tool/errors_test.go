package tool

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"429", &StatusError{StatusCode: 429}, true},
		{"500", &StatusError{StatusCode: 500}, true},
		{"503 wrapped", fmt.Errorf("fetch: %w", &StatusError{StatusCode: 503}), true},
		{"404", &StatusError{StatusCode: 404}, false},
		{"400", &StatusError{StatusCode: 400}, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, true},
		{"transport", errors.New("connection reset by peer"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestGetBytesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		require.Equal(t, "k", r.Header.Get("x-api-key"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	body, err := GetBytes(context.Background(), nil, srv.URL+"/ok", map[string]string{"x-api-key": "k"})
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(body))

	_, err = GetBytes(context.Background(), nil, srv.URL+"/missing", nil)
	require.Error(t, err)
	require.Equal(t, http.StatusNotFound, StatusCode(err))
	require.False(t, IsRetryable(err))
}
