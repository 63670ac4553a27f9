package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"schoolcomm/client/internal/session"
	"schoolcomm/client/internal/storage"
)

// Full login round trip: credentials in, bearer token on subsequent
// requests, session persisted so a fresh store hydrates authenticated.
func TestLoginRoundTrip(t *testing.T) {
	var bearer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			var creds map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			require.Equal(t, "a@school.test", creds["email"])
			require.Equal(t, "secret", creds["password"])
			io.WriteString(w, `{"token": "tok-1", "user": {"id": 1, "name": "A",
				"email": "a@school.test", "role": {"id": 1, "slug": "admin", "name": "Admin"}}}`)
		case "/users":
			bearer = r.Header.Get("Authorization")
			io.WriteString(w, `{"current_page":1,"last_page":1,"data":[],
				"total_roles":{"all":{},"filtered":{}}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	kv := storage.NewMemory()
	sessions := session.New(kv)
	client := New(srv.URL, sessions)

	result, err := Auth{Client: client}.Login(context.Background(), "a@school.test", "secret")
	require.NoError(t, err)
	require.Equal(t, "tok-1", result.Token)
	require.Equal(t, "A", result.User.Name)

	sessions.SetSession(&result.User, result.Token)

	_, err = Users{Client: client}.List(context.Background(), UserQuery{})
	require.NoError(t, err)
	require.Equal(t, "Bearer tok-1", bearer)

	restored := session.New(kv)
	restored.HydrateFromStorage()
	require.True(t, restored.Authenticated())
	require.Equal(t, "tok-1", restored.Token())
	require.Equal(t, "A", restored.User().Name)
}

func TestLogout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/logout", r.URL.Path)
		io.WriteString(w, `{"message": "Logged out"}`)
	}))
	defer srv.Close()

	message, err := Auth{Client: New(srv.URL, staticToken("T"))}.Logout(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Logged out", message)
}

func TestLoginFailureSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message": "Invalid credentials"}`)
	}))
	defer srv.Close()

	_, err := Auth{Client: New(srv.URL, nil)}.Login(context.Background(), "a@school.test", "wrong")
	apiErr, ok := AsError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "Invalid credentials", apiErr.Message)
}
