package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"schoolcomm/client/internal/models"
)

func TestGroupsListAndMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/groups", r.URL.Path)
		require.Equal(t, "5B", r.URL.Query().Get("q"))
		io.WriteString(w, `{"current_page":1,"per_page":10,"total":1,"last_page":1,"data":[
			{"id": 3, "name": "5B", "grade": "5", "section": "B", "code": null,
			 "created_at": "2026-08-01T00:00:00Z", "updated_at": "2026-08-01T00:00:00Z"}
		]}`)
	}))
	defer srv.Close()

	groups := Groups{Client: New(srv.URL, staticToken("T"))}
	page, err := groups.List(context.Background(), GroupQuery{Search: "5B"})
	require.NoError(t, err)

	require.Equal(t, []models.Group{{
		ID: 3, Name: "5B", Grade: "5", Section: "B",
		CreatedAt: "2026-08-01T00:00:00Z", UpdatedAt: "2026-08-01T00:00:00Z",
	}}, page.Items)
}

func TestGroupsCreatePayload(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		io.WriteString(w, `{"id": 4, "name": "6A", "grade": "6", "section": "A"}`)
	}))
	defer srv.Close()

	grade := "6"
	groups := Groups{Client: New(srv.URL, staticToken("T"))}
	group, err := groups.Create(context.Background(), GroupInput{Name: "6A", Grade: &grade})
	require.NoError(t, err)
	require.Equal(t, 4, group.ID)

	require.Equal(t, "6A", body["name"])
	require.Equal(t, "6", body["grade"])
	require.NotContains(t, body, "section")
}

func TestGroupsInvalidID(t *testing.T) {
	groups := Groups{Client: New("http://unused", staticToken("T"))}

	_, err := groups.Get(context.Background(), 0)
	require.ErrorIs(t, err, ErrInvalidID)
	_, err = groups.Update(context.Background(), 0, GroupInput{})
	require.ErrorIs(t, err, ErrInvalidID)
	require.ErrorIs(t, groups.Delete(context.Background(), 0), ErrInvalidID)
}
