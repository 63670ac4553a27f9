package viewmodel

import (
	"context"

	"schoolcomm/client/internal/api"
	"schoolcomm/client/internal/models"
)

// AnnouncementFilters is the list filter tuple for announcements; the
// zero value means server defaults.
type AnnouncementFilters struct {
	Visibility models.Visibility
	Archived   *bool
	Published  *bool
	GroupID    int
	UserID     int
	Sort       string
	Direction  string
}

func announcementQuery(page, perPage int, search string, f AnnouncementFilters) api.AnnouncementQuery {
	return api.AnnouncementQuery{
		Page:       page,
		PerPage:    perPage,
		Search:     search,
		Visibility: f.Visibility,
		Archived:   f.Archived,
		Published:  f.Published,
		GroupID:    f.GroupID,
		UserID:     f.UserID,
		Sort:       f.Sort,
		Direction:  f.Direction,
	}
}

func NewAnnouncementList(client *api.Announcements) *List[models.Announcement, AnnouncementFilters] {
	return NewList(
		func(ctx context.Context, page, perPage int, search string, f AnnouncementFilters) (models.Page[models.Announcement], error) {
			return client.List(ctx, announcementQuery(page, perPage, search, f))
		},
		func(a models.Announcement) int { return a.ID },
	)
}

// NewAnnouncementHistory lists the history endpoint under the same
// contract.
func NewAnnouncementHistory(client *api.Announcements) *List[models.Announcement, AnnouncementFilters] {
	return NewList(
		func(ctx context.Context, page, perPage int, search string, f AnnouncementFilters) (models.Page[models.Announcement], error) {
			return client.ListHistory(ctx, announcementQuery(page, perPage, search, f))
		},
		func(a models.Announcement) int { return a.ID },
	)
}

func NewUserList(client api.Users) *List[models.User, struct{}] {
	return NewList(
		func(ctx context.Context, page, perPage int, search string, _ struct{}) (models.Page[models.User], error) {
			result, err := client.List(ctx, api.UserQuery{Page: page, PerPage: perPage, Search: search})
			return result.Page, err
		},
		func(u models.User) int { return u.ID },
	)
}

func NewGroupList(client api.Groups) *List[models.Group, struct{}] {
	return NewList(
		func(ctx context.Context, page, perPage int, search string, _ struct{}) (models.Page[models.Group], error) {
			return client.List(ctx, api.GroupQuery{Page: page, PerPage: perPage, Search: search})
		},
		func(g models.Group) int { return g.ID },
	)
}

type MediaFilters struct {
	Scope     models.Visibility
	GroupID   int
	UserID    int
	Sort      string
	Direction string
}

func NewMediaList(client api.Media) *List[models.MediaItem, MediaFilters] {
	return NewList(
		func(ctx context.Context, page, perPage int, search string, f MediaFilters) (models.Page[models.MediaItem], error) {
			return client.List(ctx, api.MediaQuery{
				Page:      page,
				PerPage:   perPage,
				Search:    search,
				Scope:     f.Scope,
				GroupID:   f.GroupID,
				UserID:    f.UserID,
				Sort:      f.Sort,
				Direction: f.Direction,
			})
		},
		func(m models.MediaItem) int { return m.ID },
	)
}

type NotificationFilters struct {
	UnreadOnly bool
	Type       string
}

func NewNotificationList(client api.Notifications) *List[models.Notification, NotificationFilters] {
	return NewList(
		func(ctx context.Context, page, perPage int, _ string, f NotificationFilters) (models.Page[models.Notification], error) {
			return client.List(ctx, api.NotificationQuery{
				Page:       page,
				PerPage:    perPage,
				UnreadOnly: f.UnreadOnly,
				Type:       f.Type,
			})
		},
		func(n models.Notification) int { return n.ID },
	)
}
