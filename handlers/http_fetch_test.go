package handlers_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/taskflow/handlers"
)

func runFetch(t *testing.T, payload string) error {
	t.Helper()

	_, err := handlers.NewHTTPFetch(nil).Handle(context.Background(), json.RawMessage(payload))
	return err
}

func TestHTTPFetchValidation(t *testing.T) {
	t.Parallel()

	t.Run("name", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "http_fetch", handlers.NewHTTPFetch(nil).Name())
	})

	t.Run("missing url", func(t *testing.T) {
		t.Parallel()

		err := runFetch(t, `{}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "payload.url is required")
	})

	t.Run("non-http scheme", func(t *testing.T) {
		t.Parallel()

		for _, u := range []string{"ftp://example.com/file", "file:///etc/passwd", "gopher://example.com"} {
			err := runFetch(t, `{"url":"`+u+`"}`)
			require.Error(t, err, u)
			assert.Contains(t, err.Error(), "only http/https URLs are allowed")
		}
	})

	t.Run("missing hostname", func(t *testing.T) {
		t.Parallel()

		err := runFetch(t, `{"url":"http:///path-only"}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "URL hostname missing")
	})

	t.Run("private and local targets are blocked", func(t *testing.T) {
		t.Parallel()

		blocked := []string{
			"http://localhost/admin",
			"http://LOCALHOST:8080/",
			"http://127.0.0.1/",
			"https://10.0.0.5/internal",
			"http://192.168.1.1/router",
			"http://172.16.0.1/",
			"http://169.254.169.254/latest/meta-data",
			"http://printer.local/",
		}
		for _, u := range blocked {
			err := runFetch(t, `{"url":"`+u+`"}`)
			require.Error(t, err, u)
			assert.Contains(t, err.Error(), "blocked", u)
		}
	})
}
