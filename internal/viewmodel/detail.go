package viewmodel

import (
	"context"
	"sync"
	"time"

	"schoolcomm/client/internal/api"
	"schoolcomm/client/internal/models"
)

// AnnouncementDetail holds one announcement, backed by the client's
// shared detail cache: a second view-model for the same id serves from
// cache without another request.
type AnnouncementDetail struct {
	client *api.Announcements

	// CurrentUserID drives the local read bookkeeping.
	CurrentUserID int

	// MarkReadFn, when set, records the read server-side.
	MarkReadFn func(ctx context.Context, id int) error

	mu      sync.Mutex
	id      int
	item    *models.Announcement
	loading bool
	err     error

	OnChange func()
}

func NewAnnouncementDetail(client *api.Announcements, id int) *AnnouncementDetail {
	d := &AnnouncementDetail{client: client, id: id}
	if cached, ok := client.CachedDetail(id); ok {
		d.item = &cached
	}
	return d
}

type DetailState struct {
	Item    *models.Announcement
	Loading bool
	Err     error
}

func (d *AnnouncementDetail) State() DetailState {
	d.mu.Lock()
	defer d.mu.Unlock()
	var item *models.Announcement
	if d.item != nil {
		copied := *d.item
		item = &copied
	}
	return DetailState{Item: item, Loading: d.loading, Err: d.err}
}

// Load fills the view-model, serving from the shared cache unless
// force is set.
func (d *AnnouncementDetail) Load(ctx context.Context, force bool) error {
	d.mu.Lock()
	id := d.id
	d.mu.Unlock()
	if id <= 0 {
		return api.ErrInvalidID
	}

	if !force {
		if cached, ok := d.client.CachedDetail(id); ok {
			d.mu.Lock()
			d.item = &cached
			d.err = nil
			d.mu.Unlock()
			d.notify()
			return nil
		}
	}

	d.mu.Lock()
	d.loading = true
	d.mu.Unlock()
	d.notify()

	item, err := d.client.Get(ctx, id)

	d.mu.Lock()
	d.loading = false
	if err != nil {
		d.err = err
	} else {
		d.item = &item
		d.err = nil
	}
	d.mu.Unlock()
	d.notify()
	return err
}

func (d *AnnouncementDetail) Refresh(ctx context.Context) error {
	return d.Load(ctx, true)
}

// SetID rebinds the view-model, e.g. on a route parameter change.
func (d *AnnouncementDetail) SetID(ctx context.Context, id int) error {
	d.mu.Lock()
	d.id = id
	d.item = nil
	if cached, ok := d.client.CachedDetail(id); ok {
		d.item = &cached
	}
	d.mu.Unlock()
	d.notify()
	return d.Load(ctx, false)
}

// Invalidate drops the shared cache entry for the bound id.
func (d *AnnouncementDetail) Invalidate() {
	d.mu.Lock()
	id := d.id
	d.mu.Unlock()
	d.client.Invalidate(id)
}

// Update saves the given fields and writes the result through the
// shared cache.
func (d *AnnouncementDetail) Update(ctx context.Context, input api.UpdateAnnouncementInput) (models.Announcement, error) {
	d.mu.Lock()
	id := d.id
	d.loading = true
	d.mu.Unlock()
	d.notify()

	item, err := d.client.Update(ctx, id, input)

	d.mu.Lock()
	d.loading = false
	if err != nil {
		d.err = err
	} else {
		d.item = &item
		d.err = nil
	}
	d.mu.Unlock()
	d.notify()
	return item, err
}

func (d *AnnouncementDetail) ToggleArchived(ctx context.Context) (models.Announcement, error) {
	d.mu.Lock()
	if d.item == nil {
		d.mu.Unlock()
		return models.Announcement{}, api.ErrInvalidID
	}
	archived := !d.item.IsArchived
	d.mu.Unlock()
	return d.Update(ctx, api.UpdateAnnouncementInput{IsArchived: &archived})
}

// MarkAsRead records the read via MarkReadFn when configured, and
// appends a local Read for the current user if not already present. A
// backend failure here does not disturb the detail's error state.
func (d *AnnouncementDetail) MarkAsRead(ctx context.Context) error {
	d.mu.Lock()
	id := d.id
	item := d.item
	userID := d.CurrentUserID
	d.mu.Unlock()
	if item == nil || id <= 0 {
		return nil
	}

	if d.MarkReadFn != nil {
		if err := d.MarkReadFn(ctx, id); err != nil {
			return err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if userID > 0 && d.item != nil && !hasRead(d.item.Reads, userID) {
		d.item.Reads = append(d.item.Reads, models.Read{
			AnnouncementID: id,
			UserID:         userID,
			ReadAt:         time.Now().UTC().Format(time.RFC3339),
		})
	}
	return nil
}

func (d *AnnouncementDetail) HasRead() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.item == nil || d.CurrentUserID <= 0 {
		return false
	}
	return hasRead(d.item.Reads, d.CurrentUserID)
}

func (d *AnnouncementDetail) ReadsCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.item == nil {
		return 0
	}
	return len(d.item.Reads)
}

func (d *AnnouncementDetail) IsPublished() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.item == nil {
		return false
	}
	return d.item.Published(time.Now())
}

// TargetGroups returns the embedded group summaries among the targets.
func (d *AnnouncementDetail) TargetGroups() []models.GroupSummary {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.item == nil {
		return nil
	}
	var groups []models.GroupSummary
	for _, t := range d.item.Targets {
		if t.Type == models.TargetGroup && t.Group != nil {
			groups = append(groups, *t.Group)
		}
	}
	return groups
}

func (d *AnnouncementDetail) TargetUsers() []models.UserSummary {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.item == nil {
		return nil
	}
	var users []models.UserSummary
	for _, t := range d.item.Targets {
		if t.Type == models.TargetUser && t.User != nil {
			users = append(users, *t.User)
		}
	}
	return users
}

func (d *AnnouncementDetail) notify() {
	if d.OnChange != nil {
		d.OnChange()
	}
}

func hasRead(reads []models.Read, userID int) bool {
	for _, r := range reads {
		if r.UserID == userID {
			return true
		}
	}
	return false
}
