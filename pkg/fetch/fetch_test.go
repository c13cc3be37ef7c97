package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	t.Run("returns the page body on success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html><body>recipe</body></html>"))
		}))
		defer server.Close()

		body, err := NewClient().Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Contains(t, body, "recipe")
	})

	t.Run("sends browser-like headers", func(t *testing.T) {
		var gotUA, gotAccept string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			gotAccept = r.Header.Get("Accept")
		}))
		defer server.Close()

		_, err := NewClient().Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Contains(t, gotUA, "Mozilla/5.0")
		assert.Contains(t, gotAccept, "text/html")
	})

	t.Run("maps 403 to paywall guidance", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		_, err := NewClient().Fetch(context.Background(), server.URL)
		require.Error(t, err)

		var fetchErr *Error
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, server.URL, fetchErr.URL)
		assert.Contains(t, fetchErr.Reason, "paywall")
		assert.Contains(t, fetchErr.Reason, "grocer add --html")
	})

	t.Run("maps 401 like 403", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		_, err := NewClient().Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "paywall")
	})

	t.Run("reports 404 distinctly", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		_, err := NewClient().Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("other 4xx/5xx statuses fail generically", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := NewClient().Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 500")
	})

	t.Run("connection refused reports a connectivity problem", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := NewClient().Fetch(context.Background(), url)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "could not connect")
	})

	t.Run("invalid url fails without a request", func(t *testing.T) {
		_, err := NewClient().Fetch(context.Background(), "http://bad url with spaces")
		require.Error(t, err)

		var fetchErr *Error
		assert.ErrorAs(t, err, &fetchErr)
	})

	t.Run("cancelled context aborts the request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewClient().Fetch(ctx, server.URL)
		assert.Error(t, err)
	})

	t.Run("follows redirects", func(t *testing.T) {
		final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("landed"))
		}))
		defer final.Close()
		hop := httptest.NewServer(http.RedirectHandler(final.URL, http.StatusMovedPermanently))
		defer hop.Close()

		body, err := NewClient().Fetch(context.Background(), hop.URL)
		require.NoError(t, err)
		assert.True(t, strings.Contains(body, "landed"))
	})
}

func TestWithHTTPClient(t *testing.T) {
	custom := &http.Client{}
	c := NewClient(WithHTTPClient(custom))
	assert.Same(t, custom, c.httpClient)
}
