package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"schoolcomm/client/internal/models"
)

func TestNotificationListQuery(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		io.WriteString(w, `{"current_page":1,"last_page":1,"data":[]}`)
	}))
	defer srv.Close()

	n := Notifications{Client: New(srv.URL, staticToken("T"))}
	_, err := n.List(context.Background(), NotificationQuery{
		Page:       2,
		UnreadOnly: true,
		Type:       models.NotificationAnnouncementPublished,
	})
	require.NoError(t, err)

	require.Equal(t, "2", got.Get("page"))
	require.Equal(t, "1", got.Get("unread_only"))
	require.Equal(t, models.NotificationAnnouncementPublished, got.Get("type"))

	_, err = n.List(context.Background(), NotificationQuery{})
	require.NoError(t, err)
	require.False(t, got.Has("unread_only"))
}

func TestNotificationUnknownPayloadRoundTrips(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"current_page":1,"last_page":1,"data":[
			{"id": 1, "user_id": 11, "type": "cafeteria_menu",
			 "payload_json": {"week": 35, "vegetarian": true},
			 "is_read": false, "created_at": "2026-08-20T10:00:00Z"}
		]}`)
	}))
	defer srv.Close()

	n := Notifications{Client: New(srv.URL, staticToken("T"))}
	page, err := n.List(context.Background(), NotificationQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	item := page.Items[0]
	require.Equal(t, "cafeteria_menu", item.Type)
	require.EqualValues(t, 35, item.Payload["week"])
	require.Equal(t, true, item.Payload["vegetarian"])
	require.Equal(t, time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC), item.CreatedAt)
}

func TestNotificationNilPayload(t *testing.T) {
	item := mapNotification(notificationDTO{ID: 2, Type: "system"})
	require.NotNil(t, item.Payload)
	require.Empty(t, item.Payload)
}

func TestMarkReadPaths(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := Notifications{Client: New(srv.URL, staticToken("T"))}
	require.NoError(t, n.MarkRead(context.Background(), 5))
	require.NoError(t, n.MarkAllRead(context.Background()))
	require.Equal(t, []string{"/notifications/5/read", "/notifications/read-all"}, paths)
}

func TestBadge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/notifications/badge", r.URL.Path)
		io.WriteString(w, `{"unread": 4}`)
	}))
	defer srv.Close()

	n := Notifications{Client: New(srv.URL, staticToken("T"))}
	unread, err := n.Badge(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, unread)
}
