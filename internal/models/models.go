// Package models holds the normalized client-side shapes. Wire DTOs and
// the mapping between the two live next to each resource client in the
// api package.
package models

import "time"

type RoleSlug string

const (
	RoleAdmin   RoleSlug = "admin"
	RoleTeacher RoleSlug = "teacher"
	RoleParent  RoleSlug = "parent"
)

type Role struct {
	ID   int      `json:"id"`
	Slug RoleSlug `json:"slug"`
	Name string   `json:"name"`
}

type User struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	AvatarPath string `json:"avatarPath,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
}

type Group struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Grade     string `json:"grade,omitempty"`
	Section   string `json:"section,omitempty"`
	Code      string `json:"code,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type Visibility string

const (
	VisibilityAll    Visibility = "all"
	VisibilityGroups Visibility = "groups"
	VisibilityUsers  Visibility = "users"
)

// AuthorSummary is the reduced author shape embedded in announcements
// and media items.
type AuthorSummary struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role,omitempty"`
	AvatarPath string `json:"avatarPath,omitempty"`
}

type GroupSummary struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Grade   string `json:"grade,omitempty"`
	Section string `json:"section,omitempty"`
	Code    string `json:"code,omitempty"`
}

type UserSummary struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	AvatarPath string `json:"avatarPath,omitempty"`
}

type TargetType string

const (
	TargetGroup TargetType = "group"
	TargetUser  TargetType = "user"
)

// Target is a dispatch address for an announcement or media item. The
// variant is decided by Type alone; the server sometimes sends embedded
// group/user objects instead of bare ids.
type Target struct {
	ID      int           `json:"id"`
	Type    TargetType    `json:"type"`
	GroupID int           `json:"groupId,omitempty"`
	UserID  int           `json:"userId,omitempty"`
	Group   *GroupSummary `json:"group,omitempty"`
	User    *UserSummary  `json:"user,omitempty"`
}

// Read records that one user has seen one announcement; unique on the
// (announcement, user) pair.
type Read struct {
	AnnouncementID int    `json:"announcementId"`
	UserID         int    `json:"userId"`
	ReadAt         string `json:"readAt"`
}

type Announcement struct {
	ID           int           `json:"id"`
	Title        string        `json:"title"`
	BodyMD       string        `json:"bodyMd"`
	AuthorUserID int           `json:"authorUserId"`
	Visibility   Visibility    `json:"visibility"`
	PublishedAt  *string       `json:"publishedAt"`
	IsArchived   bool          `json:"isArchived"`
	CreatedAt    string        `json:"createdAt"`
	UpdatedAt    string        `json:"updatedAt"`
	Author       AuthorSummary `json:"author"`
	Targets      []Target      `json:"targets"`
	Reads        []Read        `json:"reads"`
}

// Published reports whether the announcement left draft state at or
// before now. A nil PublishedAt means draft.
func (a Announcement) Published(now time.Time) bool {
	if a.PublishedAt == nil {
		return false
	}
	at, err := time.Parse(time.RFC3339, *a.PublishedAt)
	if err != nil {
		return false
	}
	return !at.After(now)
}

type MediaDownload struct {
	ID           int    `json:"id"`
	MediaID      int    `json:"mediaId"`
	UserID       int    `json:"userId"`
	DownloadedAt string `json:"downloadedAt"`
	IPAddress    string `json:"ipAddress,omitempty"`
}

type MediaItem struct {
	ID             int             `json:"id"`
	UploaderUserID int             `json:"uploaderUserId"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	FilePath       string          `json:"filePath"`
	MimeType       string          `json:"mimeType"`
	FileSizeBytes  int64           `json:"fileSizeBytes"`
	ChecksumSHA256 string          `json:"checksumSha256,omitempty"`
	Scope          Visibility      `json:"scope"`
	CreatedAt      string          `json:"createdAt"`
	UpdatedAt      string          `json:"updatedAt"`
	Uploader       *AuthorSummary  `json:"uploader,omitempty"`
	Targets        []Target        `json:"targets,omitempty"`
	Downloads      []MediaDownload `json:"downloads,omitempty"`
}

// Notification types known to the client. The tag is open: unknown
// values round-trip unchanged and must not break mapping.
const (
	NotificationAnnouncementPublished = "announcement.published"
	NotificationMessageReceived       = "message.received"
)

type Notification struct {
	ID        int            `json:"id"`
	UserID    int            `json:"userId"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
	IsRead    bool           `json:"isRead"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Page is the normalized pagination envelope.
type Page[T any] struct {
	Items    []T  `json:"items"`
	Page     int  `json:"page"`
	PerPage  int  `json:"perPage"`
	Total    int  `json:"total"`
	LastPage int  `json:"lastPage"`
	HasNext  bool `json:"hasNext"`
	HasPrev  bool `json:"hasPrev"`
}
