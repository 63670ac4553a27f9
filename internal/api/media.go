package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"schoolcomm/client/internal/models"
)

type Media struct {
	Client *Client
}

type mediaDownloadDTO struct {
	ID           int     `json:"id"`
	MediaID      int     `json:"media_id"`
	UserID       int     `json:"user_id"`
	DownloadedAt string  `json:"downloaded_at"`
	IPAddress    *string `json:"ip_address"`
}

type mediaDTO struct {
	ID             int                `json:"id"`
	UploaderUserID int                `json:"uploader_user_id"`
	Title          string             `json:"title"`
	Description    *string            `json:"description"`
	FilePath       string             `json:"file_path"`
	MimeType       string             `json:"mime_type"`
	FileSizeBytes  int64              `json:"file_size_bytes"`
	ChecksumSHA256 *string            `json:"checksum_sha256"`
	Scope          models.Visibility  `json:"scope"`
	CreatedAt      string             `json:"created_at"`
	UpdatedAt      string             `json:"updated_at"`
	Uploader       *authorDTO         `json:"uploader"`
	Targets        []targetDTO        `json:"targets"`
	Downloads      []mediaDownloadDTO `json:"downloads"`
}

func mapMedia(dto mediaDTO) models.MediaItem {
	item := models.MediaItem{
		ID:             dto.ID,
		UploaderUserID: dto.UploaderUserID,
		Title:          dto.Title,
		Description:    strval(dto.Description),
		FilePath:       dto.FilePath,
		MimeType:       dto.MimeType,
		FileSizeBytes:  dto.FileSizeBytes,
		ChecksumSHA256: strval(dto.ChecksumSHA256),
		Scope:          dto.Scope,
		CreatedAt:      dto.CreatedAt,
		UpdatedAt:      dto.UpdatedAt,
		Targets:        mapTargets(dto.Targets),
	}
	if dto.Uploader != nil {
		uploader := mapAuthor(*dto.Uploader)
		item.Uploader = &uploader
	}
	for _, d := range dto.Downloads {
		item.Downloads = append(item.Downloads, models.MediaDownload{
			ID:           d.ID,
			MediaID:      d.MediaID,
			UserID:       d.UserID,
			DownloadedAt: d.DownloadedAt,
			IPAddress:    strval(d.IPAddress),
		})
	}
	return item
}

type MediaQuery struct {
	Page      int
	PerPage   int
	Search    string
	Scope     models.Visibility
	GroupID   int
	UserID    int
	Sort      string
	Direction string
}

func (m Media) List(ctx context.Context, q MediaQuery) (models.Page[models.MediaItem], error) {
	query := newQuery()
	query.setInt("page", q.Page)
	query.setInt("per_page", q.PerPage)
	query.setString("search", q.Search)
	query.setString("scope", string(q.Scope))
	query.setInt("group_id", q.GroupID)
	query.setInt("user_id", q.UserID)
	query.setString("sort", q.Sort)
	query.setString("direction", q.Direction)

	env, err := GetJSON[pageEnvelope[mediaDTO]](ctx, m.Client, "/media"+query.encode())
	if err != nil {
		return models.Page[models.MediaItem]{}, err
	}
	return normalizePage(env, mapMedia), nil
}

func (m Media) Get(ctx context.Context, id int) (models.MediaItem, error) {
	if id <= 0 {
		return models.MediaItem{}, ErrInvalidID
	}
	dto, err := GetJSON[mediaDTO](ctx, m.Client, fmt.Sprintf("/media/%d", id))
	if err != nil {
		return models.MediaItem{}, err
	}
	return mapMedia(dto), nil
}

// FileInput is the file part of a media upload.
type FileInput struct {
	Name    string
	Content []byte
}

// MediaInput covers create and update. File is required on create; nil
// on update leaves the stored file alone.
type MediaInput struct {
	File        *FileInput
	Title       string
	Description *string
	Scope       models.Visibility
	Targets     []TargetInput
}

func (in MediaInput) form() (*Form, error) {
	form := NewForm()
	if in.File != nil {
		form.SetFile("file", in.File.Name, bytes.NewReader(in.File.Content))
	}
	form.SetField("title", in.Title)
	if in.Description != nil {
		form.SetField("description", *in.Description)
	}
	form.SetField("scope", string(in.Scope))
	if in.Scope != models.VisibilityAll {
		form.SetTargets(in.Targets)
	}
	if err := form.Err(); err != nil {
		return nil, fmt.Errorf("api: build media form: %w", err)
	}
	return form, nil
}

func (m Media) Create(ctx context.Context, input MediaInput) (models.MediaItem, error) {
	return m.send(ctx, http.MethodPost, "/media", input)
}

func (m Media) Update(ctx context.Context, id int, input MediaInput) (models.MediaItem, error) {
	if id <= 0 {
		return models.MediaItem{}, ErrInvalidID
	}
	return m.send(ctx, http.MethodPut, fmt.Sprintf("/media/%d", id), input)
}

func (m Media) send(ctx context.Context, method, path string, input MediaInput) (models.MediaItem, error) {
	form, err := input.form()
	if err != nil {
		return models.MediaItem{}, err
	}
	res, err := m.Client.Request(ctx, method, path, form, nil)
	if err != nil {
		return models.MediaItem{}, err
	}
	defer res.Body.Close()

	dto, err := decodeJSON[mediaDTO](res.Body)
	if err != nil {
		return models.MediaItem{}, err
	}
	return mapMedia(dto), nil
}

func (m Media) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidID
	}
	_, err := SendJSON[struct{}](ctx, m.Client, http.MethodDelete, fmt.Sprintf("/media/%d", id), nil)
	return err
}

// ThumbnailURL is the backend-relative thumbnail path; size is one of
// sm, md, lg. Fetching it still needs the authenticated transport.
func ThumbnailURL(id int, size string) string {
	if size == "" {
		size = "sm"
	}
	return fmt.Sprintf("/media/%d/thumbnail?size=%s", id, size)
}

func DownloadURL(id int) string {
	return fmt.Sprintf("/media/%d/download", id)
}

// ThumbnailSrc is the absolute variant, for contexts that already hold
// an authenticated blob handle scheme.
func (m Media) ThumbnailSrc(id int, size string) string {
	return m.Client.BaseURL + ThumbnailURL(id, size)
}

func (m Media) DownloadSrc(id int) string {
	return m.Client.BaseURL + DownloadURL(id)
}

// Upload is an in-flight transfer handle. It always settles: the
// request finishes, fails, or is cancelled.
type Upload struct {
	// ID correlates progress reporting with backend logs.
	ID string

	cancel context.CancelFunc
	done   chan struct{}
	item   models.MediaItem
	err    error
}

// Wait blocks until the transfer settles.
func (u *Upload) Wait() (models.MediaItem, error) {
	<-u.done
	return u.item, u.err
}

// Cancel aborts the transfer; Wait then returns an abort-kind error.
func (u *Upload) Cancel() {
	u.cancel()
}

// CreateWithProgress uploads a new media item, reporting integer
// percentages 0-100 while the body streams out.
func (m Media) CreateWithProgress(ctx context.Context, input MediaInput, onProgress func(percent int)) (*Upload, error) {
	return m.uploadWithProgress(ctx, http.MethodPost, "/media", input, onProgress)
}

func (m Media) UpdateWithProgress(ctx context.Context, id int, input MediaInput, onProgress func(percent int)) (*Upload, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	return m.uploadWithProgress(ctx, http.MethodPut, fmt.Sprintf("/media/%d", id), input, onProgress)
}

func (m Media) uploadWithProgress(ctx context.Context, method, path string, input MediaInput, onProgress func(int)) (*Upload, error) {
	form, err := input.form()
	if err != nil {
		return nil, err
	}
	body := form.Reader()

	ctx, cancel := context.WithCancel(ctx)
	upload := &Upload{
		ID:     uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	reader := &progressReader{
		r:      body,
		total:  form.size(),
		report: onProgress,
	}

	go func() {
		defer close(upload.done)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, method, m.Client.BaseURL+path, reader)
		if err != nil {
			upload.err = fmt.Errorf("api: build upload: %w", err)
			return
		}
		req.Header.Set("Content-Type", form.ContentType())
		req.Header.Set("Accept", "application/json")
		if token := m.Client.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		req.Header.Set("X-Request-ID", upload.ID)

		res, err := m.Client.httpClient().Do(req)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				upload.err = fmt.Errorf("%w: upload %s", ErrAborted, path)
			} else {
				upload.err = fmt.Errorf("api: upload %s: %w", path, err)
			}
			return
		}
		defer res.Body.Close()

		if res.StatusCode < 200 || res.StatusCode > 299 {
			upload.err = decodeError(res)
			return
		}
		dto, err := decodeJSON[mediaDTO](res.Body)
		if err != nil {
			upload.err = err
			return
		}
		upload.item = mapMedia(dto)
		if onProgress != nil {
			onProgress(100)
		}
	}()

	return upload, nil
}

type progressReader struct {
	r      io.Reader
	total  int64
	loaded int64
	report func(int)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.loaded += int64(n)
	if p.report != nil && p.total > 0 {
		percent := int(p.loaded * 100 / p.total)
		if percent > 100 {
			percent = 100
		}
		p.report(percent)
	}
	return n, err
}
