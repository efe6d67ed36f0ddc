package rest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"news_ingest/internal/rest"

	"github.com/stretchr/testify/require"
)

func newTestClient() *rest.Client {
	c := rest.NewClient()
	c.SetRetryPolicy(2, time.Millisecond)
	return c
}

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "bar", r.URL.Query().Get("foo"))
		w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	body, err := newTestClient().Fetch(context.Background(), server.URL, url.Values{"foo": {"bar"}})
	require.NoError(t, err)
	require.JSONEq(t, `{"results": []}`, string(body))
}

func TestFetch_RateLimited(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient().Fetch(context.Background(), server.URL, url.Values{})
	require.ErrorIs(t, err, rest.ErrRateLimited)
	// 429 не ретраится на уровне транспорта
	require.Equal(t, 1, calls)
}

func TestFetch_ClientError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient().Fetch(context.Background(), server.URL, url.Values{})

	var clientErr *rest.ClientError
	require.ErrorAs(t, err, &clientErr)
	require.Equal(t, http.StatusNotFound, clientErr.Status)
	require.Equal(t, 1, calls)
}

func TestFetch_MalformedResponse(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"array", `[1, 2, 3]`},
		{"not json", `<html>oops</html>`},
		{"empty", ``},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			_, err := newTestClient().Fetch(context.Background(), server.URL, url.Values{})
			require.ErrorIs(t, err, rest.ErrMalformedResponse)
		})
	}
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	body, err := newTestClient().Fetch(context.Background(), server.URL, url.Values{})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
	require.JSONEq(t, `{"ok": true}`, string(body))
}

func TestFetch_GivesUpAfterBoundedRetries(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient().Fetch(context.Background(), server.URL, url.Values{})
	require.Error(t, err)
	require.False(t, errors.Is(err, rest.ErrRateLimited))
	require.Equal(t, 3, calls) // первая попытка + 2 повтора
}
