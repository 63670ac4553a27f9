package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"schoolcomm/client/internal/storage"
)

type tokenFunc func() string

func (f tokenFunc) Token() string { return f() }

func staticToken(token string) TokenSource {
	return tokenFunc(func() string { return token })
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := New(srv.URL+"/", staticToken("T"))
	res, err := client.Request(context.Background(), http.MethodGet, "/users", nil, nil)
	require.NoError(t, err)
	res.Body.Close()

	require.Equal(t, "Bearer T", got.Get("Authorization"))
	require.Equal(t, "application/json", got.Get("Accept"))
	require.NotEmpty(t, got.Get("X-Request-ID"))
}

func TestRequestJSONBody(t *testing.T) {
	var (
		contentType string
		body        map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := New(srv.URL, staticToken("T"))
	res, err := client.Request(context.Background(), http.MethodPost, "/groups", map[string]string{"name": "5B"}, nil)
	require.NoError(t, err)
	res.Body.Close()

	require.Equal(t, "application/json", contentType)
	require.Equal(t, "5B", body["name"])
}

func TestRequestSkipsBearerWithoutToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	client := New(srv.URL, staticToken(""))
	res, err := client.Request(context.Background(), http.MethodGet, "/login", nil, nil)
	require.NoError(t, err)
	res.Body.Close()

	require.Empty(t, auth)
}

func TestRequestFallbackToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	kv := storage.NewMemory()
	require.NoError(t, kv.Set("token", "stored"))

	client := New(srv.URL, nil)
	client.Fallback = kv

	res, err := client.Request(context.Background(), http.MethodGet, "/users", nil, nil)
	require.NoError(t, err)
	res.Body.Close()

	require.Equal(t, "Bearer stored", auth)
}

func TestRequestCallerHeadersWin(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	client := New(srv.URL, staticToken("T"))
	header := http.Header{}
	header.Set("Accept", "*/*")
	header.Set("Authorization", "Bearer other")

	res, err := client.Request(context.Background(), http.MethodGet, "/media/raw", nil, header)
	require.NoError(t, err)
	res.Body.Close()

	require.Equal(t, "*/*", got.Get("Accept"))
	require.Equal(t, "Bearer other", got.Get("Authorization"))
}

func TestRequestDecodesValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"message":"The given data was invalid.","errors":{"title":["The title is required."],"body_md":"Too short."}}`)
	}))
	defer srv.Close()

	client := New(srv.URL, staticToken("T"))
	_, err := client.Request(context.Background(), http.MethodPost, "/announcements", map[string]string{}, nil)
	require.Error(t, err)

	apiErr, ok := AsError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	require.Equal(t, "The given data was invalid.", apiErr.Message)
	require.Equal(t, []string{"The title is required."}, apiErr.Data.Errors["title"])
	require.Equal(t, []string{"Too short."}, apiErr.Data.Errors["body_md"])
}

func TestRequestKeepsRawNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "boom")
	}))
	defer srv.Close()

	client := New(srv.URL, staticToken("T"))
	_, err := client.Request(context.Background(), http.MethodGet, "/users", nil, nil)

	apiErr, ok := AsError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusInternalServerError, apiErr.Status)
	require.Equal(t, "Internal Server Error", apiErr.Message)
	require.Equal(t, "boom", apiErr.Data.Raw)
}

func TestRequestAbortIsDistinct(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := New(srv.URL, staticToken("T"))
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := client.Request(ctx, http.MethodGet, "/announcements", nil, nil)
	require.Error(t, err)
	require.True(t, IsAbort(err))
	_, isAPI := AsError(err)
	require.False(t, isAPI)
}

func TestRequestNetworkErrorIsNotAbort(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := New(srv.URL, staticToken("T"))
	client.HTTPClient = &http.Client{Timeout: time.Second}

	_, err := client.Request(context.Background(), http.MethodGet, "/users", nil, nil)
	require.Error(t, err)
	require.False(t, IsAbort(err))
}

func TestSendJSONEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := New(srv.URL, staticToken("T"))
	out, err := SendJSON[map[string]any](context.Background(), client, http.MethodDelete, "/users/3", nil)
	require.NoError(t, err)
	require.Empty(t, out)
}
