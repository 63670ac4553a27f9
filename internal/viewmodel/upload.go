package viewmodel

import (
	"context"
	"strings"
	"sync"

	"schoolcomm/client/internal/api"
	"schoolcomm/client/internal/models"
)

// MediaUploadForm drives the gallery upload flow: a file, a title, a
// scope, and the selected target groups.
type MediaUploadForm struct {
	client api.Media

	mu        sync.Mutex
	file      *api.FileInput
	title     string
	desc      *string
	scope     models.Visibility
	groupIDs  []int
	uploading bool
	percent   int
	result    *models.MediaItem
	err       error

	OnChange func()
}

func NewMediaUploadForm(client api.Media) *MediaUploadForm {
	return &MediaUploadForm{client: client, scope: models.VisibilityAll}
}

type MediaUploadState struct {
	Title     string
	Scope     models.Visibility
	GroupIDs  []int
	Uploading bool
	Percent   int
	Result    *models.MediaItem
	Err       error
}

func (m *MediaUploadForm) State() MediaUploadState {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int, len(m.groupIDs))
	copy(ids, m.groupIDs)
	return MediaUploadState{
		Title:     m.title,
		Scope:     m.scope,
		GroupIDs:  ids,
		Uploading: m.uploading,
		Percent:   m.percent,
		Result:    m.result,
		Err:       m.err,
	}
}

func (m *MediaUploadForm) SetFile(name string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.file = &api.FileInput{Name: name, Content: content}
}

func (m *MediaUploadForm) SetTitle(title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.title = title
}

func (m *MediaUploadForm) SetDescription(desc string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if desc == "" {
		m.desc = nil
		return
	}
	m.desc = &desc
}

// SetScope accepts the upload scopes: broadcast or selected groups.
func (m *MediaUploadForm) SetScope(scope models.Visibility) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if scope != models.VisibilityAll && scope != models.VisibilityGroups {
		return
	}
	m.scope = scope
}

// ToggleGroup flips a group in and out of the selection.
func (m *MediaUploadForm) ToggleGroup(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.groupIDs {
		if existing == id {
			m.groupIDs = append(m.groupIDs[:i], m.groupIDs[i+1:]...)
			return
		}
	}
	m.groupIDs = append(m.groupIDs, id)
}

func (m *MediaUploadForm) CanSubmit() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.file == nil || strings.TrimSpace(m.title) == "" || m.uploading {
		return false
	}
	if m.scope == models.VisibilityGroups && len(m.groupIDs) == 0 {
		return false
	}
	return true
}

func (m *MediaUploadForm) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.file = nil
	m.title = ""
	m.desc = nil
	m.scope = models.VisibilityAll
	m.groupIDs = nil
	m.uploading = false
	m.percent = 0
	m.result = nil
	m.err = nil
}

// Upload starts the transfer and returns its handle so the UI can
// cancel; progress lands in Percent via OnChange.
func (m *MediaUploadForm) Upload(ctx context.Context) (*api.Upload, error) {
	m.mu.Lock()
	if m.file == nil || strings.TrimSpace(m.title) == "" {
		m.mu.Unlock()
		return nil, ErrValidation
	}
	if m.scope == models.VisibilityGroups && len(m.groupIDs) == 0 {
		m.mu.Unlock()
		return nil, ErrValidation
	}

	input := api.MediaInput{
		File:        m.file,
		Title:       strings.TrimSpace(m.title),
		Description: m.desc,
		Scope:       m.scope,
	}
	if m.scope == models.VisibilityGroups {
		for _, id := range m.groupIDs {
			input.Targets = append(input.Targets, api.GroupTarget(id))
		}
	}
	m.uploading = true
	m.percent = 0
	m.err = nil
	m.mu.Unlock()
	m.notify()

	upload, err := m.client.CreateWithProgress(ctx, input, func(percent int) {
		m.mu.Lock()
		m.percent = percent
		m.mu.Unlock()
		m.notify()
	})
	if err != nil {
		m.mu.Lock()
		m.uploading = false
		m.err = err
		m.mu.Unlock()
		m.notify()
		return nil, err
	}

	go func() {
		item, err := upload.Wait()
		m.mu.Lock()
		m.uploading = false
		if err != nil {
			m.err = err
		} else {
			m.result = &item
		}
		m.mu.Unlock()
		m.notify()
	}()

	return upload, nil
}

func (m *MediaUploadForm) notify() {
	if m.OnChange != nil {
		m.OnChange()
	}
}
