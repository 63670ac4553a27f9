package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"schoolcomm/client/internal/models"
)

// Announcements is the announcement resource client. It owns the shared
// detail cache consulted by every detail view-model; invalidation after
// a mutation is handled by the write-through in Update and by explicit
// Invalidate calls.
type Announcements struct {
	Client *Client

	mu     sync.Mutex
	detail map[int]models.Announcement
}

func NewAnnouncements(client *Client) *Announcements {
	return &Announcements{Client: client, detail: map[int]models.Announcement{}}
}

type readDTO struct {
	AnnouncementID int    `json:"announcement_id"`
	UserID         int    `json:"user_id"`
	ReadAt         string `json:"read_at"`
}

type announcementDTO struct {
	ID           int               `json:"id"`
	Title        string            `json:"title"`
	BodyMD       string            `json:"body_md"`
	AuthorUserID int               `json:"author_user_id"`
	Visibility   models.Visibility `json:"visibility"`
	PublishedAt  *string           `json:"published_at"`
	IsArchived   bool              `json:"is_archived"`
	CreatedAt    string            `json:"created_at"`
	UpdatedAt    string            `json:"updated_at"`
	Author       authorDTO         `json:"author"`
	Targets      []targetDTO       `json:"targets"`
	Reads        []readDTO         `json:"reads"`
}

func mapAnnouncement(dto announcementDTO) models.Announcement {
	reads := make([]models.Read, 0, len(dto.Reads))
	for _, r := range dto.Reads {
		reads = append(reads, models.Read{
			AnnouncementID: r.AnnouncementID,
			UserID:         r.UserID,
			ReadAt:         r.ReadAt,
		})
	}

	return models.Announcement{
		ID:           dto.ID,
		Title:        dto.Title,
		BodyMD:       dto.BodyMD,
		AuthorUserID: dto.AuthorUserID,
		Visibility:   dto.Visibility,
		PublishedAt:  dto.PublishedAt,
		IsArchived:   dto.IsArchived,
		CreatedAt:    dto.CreatedAt,
		UpdatedAt:    dto.UpdatedAt,
		Author:       mapAuthor(dto.Author),
		Targets:      mapTargets(dto.Targets),
		Reads:        reads,
	}
}

type AnnouncementQuery struct {
	Page       int
	PerPage    int
	Search     string
	Visibility models.Visibility
	Archived   *bool
	Published  *bool
	GroupID    int
	UserID     int
	Sort       string
	Direction  string
}

func (q AnnouncementQuery) encode() string {
	query := newQuery()
	query.setInt("page", q.Page)
	query.setInt("per_page", q.PerPage)
	query.setString("q", q.Search)
	query.setString("visibility", string(q.Visibility))
	query.setBool("archived", q.Archived)
	query.setBool("published", q.Published)
	query.setInt("group_id", q.GroupID)
	query.setInt("user_id", q.UserID)
	query.setString("sort", q.Sort)
	query.setString("direction", q.Direction)
	return query.encode()
}

func (a *Announcements) List(ctx context.Context, q AnnouncementQuery) (models.Page[models.Announcement], error) {
	return a.list(ctx, "/announcements", q)
}

// ListHistory shares the list contract against the history endpoint.
func (a *Announcements) ListHistory(ctx context.Context, q AnnouncementQuery) (models.Page[models.Announcement], error) {
	return a.list(ctx, "/announcements/history", q)
}

func (a *Announcements) list(ctx context.Context, base string, q AnnouncementQuery) (models.Page[models.Announcement], error) {
	env, err := GetJSON[pageEnvelope[announcementDTO]](ctx, a.Client, base+q.encode())
	if err != nil {
		return models.Page[models.Announcement]{}, err
	}
	return normalizePage(env, mapAnnouncement), nil
}

func (a *Announcements) Get(ctx context.Context, id int) (models.Announcement, error) {
	if id <= 0 {
		return models.Announcement{}, ErrInvalidID
	}
	dto, err := GetJSON[announcementDTO](ctx, a.Client, fmt.Sprintf("/announcements/%d", id))
	if err != nil {
		return models.Announcement{}, err
	}
	item := mapAnnouncement(dto)
	a.cachePut(item)
	return item, nil
}

// CreateAnnouncementInput is the create payload. Post true publishes
// immediately; false saves a draft. Targets must be empty when the
// visibility is "all".
type CreateAnnouncementInput struct {
	Title      string            `json:"title"`
	BodyMD     string            `json:"body_md"`
	Visibility models.Visibility `json:"visibility"`
	Post       bool              `json:"post"`
	Targets    []TargetInput     `json:"targets,omitempty"`
}

type UpdateAnnouncementInput struct {
	Title      *string            `json:"title,omitempty"`
	BodyMD     *string            `json:"body_md,omitempty"`
	Visibility *models.Visibility `json:"visibility,omitempty"`
	IsArchived *bool              `json:"is_archived,omitempty"`
	Targets    []TargetInput      `json:"targets,omitempty"`
}

func (a *Announcements) Create(ctx context.Context, input CreateAnnouncementInput) (models.Announcement, error) {
	if input.Visibility == models.VisibilityAll {
		input.Targets = nil
	}
	dto, err := SendJSON[announcementDTO](ctx, a.Client, http.MethodPost, "/announcements", input)
	if err != nil {
		return models.Announcement{}, err
	}
	item := mapAnnouncement(dto)
	a.cachePut(item)
	return item, nil
}

func (a *Announcements) Update(ctx context.Context, id int, input UpdateAnnouncementInput) (models.Announcement, error) {
	if id <= 0 {
		return models.Announcement{}, ErrInvalidID
	}
	dto, err := SendJSON[announcementDTO](ctx, a.Client, http.MethodPut, fmt.Sprintf("/announcements/%d", id), input)
	if err != nil {
		return models.Announcement{}, err
	}
	item := mapAnnouncement(dto)
	a.cachePut(item)
	return item, nil
}

func (a *Announcements) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidID
	}
	_, err := SendJSON[struct{}](ctx, a.Client, http.MethodDelete, fmt.Sprintf("/announcements/%d", id), nil)
	if err != nil {
		return err
	}
	a.Invalidate(id)
	return nil
}

// CachedDetail returns the memoized detail for id, if any.
func (a *Announcements) CachedDetail(id int) (models.Announcement, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	item, ok := a.detail[id]
	return item, ok
}

// Invalidate drops the memoized detail for id.
func (a *Announcements) Invalidate(id int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.detail, id)
}

func (a *Announcements) cachePut(item models.Announcement) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detail[item.ID] = item
}
