package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"schoolcomm/client/internal/models"
)

type Notifications struct {
	Client *Client
}

type notificationDTO struct {
	ID        int            `json:"id"`
	UserID    int            `json:"user_id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload_json"`
	IsRead    bool           `json:"is_read"`
	CreatedAt string         `json:"created_at"`
}

// mapNotification keeps the payload opaque: unknown types round-trip
// unchanged and branching on type happens at the UI.
func mapNotification(dto notificationDTO) models.Notification {
	createdAt, _ := time.Parse(time.RFC3339, dto.CreatedAt)
	payload := dto.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	return models.Notification{
		ID:        dto.ID,
		UserID:    dto.UserID,
		Type:      dto.Type,
		Payload:   payload,
		IsRead:    dto.IsRead,
		CreatedAt: createdAt,
	}
}

type NotificationQuery struct {
	Page       int
	PerPage    int
	UnreadOnly bool
	Type       string
}

func (n Notifications) List(ctx context.Context, q NotificationQuery) (models.Page[models.Notification], error) {
	query := newQuery()
	query.setInt("page", q.Page)
	query.setInt("per_page", q.PerPage)
	query.setFlag("unread_only", q.UnreadOnly)
	query.setString("type", q.Type)

	env, err := GetJSON[pageEnvelope[notificationDTO]](ctx, n.Client, "/notifications"+query.encode())
	if err != nil {
		return models.Page[models.Notification]{}, err
	}
	return normalizePage(env, mapNotification), nil
}

func (n Notifications) Get(ctx context.Context, id int) (models.Notification, error) {
	if id <= 0 {
		return models.Notification{}, ErrInvalidID
	}
	dto, err := GetJSON[notificationDTO](ctx, n.Client, fmt.Sprintf("/notifications/%d", id))
	if err != nil {
		return models.Notification{}, err
	}
	return mapNotification(dto), nil
}

type createNotificationDTO struct {
	UserID  int            `json:"user_id"`
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload_json"`
}

func (n Notifications) Create(ctx context.Context, userID int, kind string, payload map[string]any) (models.Notification, error) {
	dto, err := SendJSON[notificationDTO](ctx, n.Client, http.MethodPost, "/notifications", createNotificationDTO{
		UserID:  userID,
		Type:    kind,
		Payload: payload,
	})
	if err != nil {
		return models.Notification{}, err
	}
	return mapNotification(dto), nil
}

func (n Notifications) MarkRead(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidID
	}
	_, err := SendJSON[struct{}](ctx, n.Client, http.MethodPost, fmt.Sprintf("/notifications/%d/read", id), nil)
	return err
}

func (n Notifications) MarkAllRead(ctx context.Context) error {
	_, err := SendJSON[struct{}](ctx, n.Client, http.MethodPost, "/notifications/read-all", map[string]any{})
	return err
}

func (n Notifications) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidID
	}
	_, err := SendJSON[struct{}](ctx, n.Client, http.MethodDelete, fmt.Sprintf("/notifications/%d", id), nil)
	return err
}

// Badge returns the unread count; the poller hits this every interval.
func (n Notifications) Badge(ctx context.Context) (int, error) {
	res, err := GetJSON[struct {
		Unread int `json:"unread"`
	}](ctx, n.Client, "/notifications/badge")
	if err != nil {
		return 0, err
	}
	return res.Unread, nil
}
