package viewmodel

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"

	"schoolcomm/client/internal/api"
	"schoolcomm/client/internal/models"
)

// ErrValidation means local validation failed and no request was made;
// the details are in FieldErrors.
var ErrValidation = errors.New("validation failed")

var validate = validator.New()

// announcementFields carries the validation rules for the form scalars.
type announcementFields struct {
	Title      string `validate:"required,min=3"`
	BodyMD     string `validate:"required,min=5"`
	Visibility string `validate:"required,oneof=all groups users"`
}

// formFieldNames maps struct fields to the wire names used both for
// FieldErrors keys and for projecting backend validation detail.
var formFieldNames = map[string]string{
	"Title":      "title",
	"BodyMD":     "body_md",
	"Visibility": "visibility",
}

// announcementFormWhitelist limits which backend validation keys reach
// FieldErrors; anything else is dropped silently.
var announcementFormWhitelist = map[string]bool{
	"title":      true,
	"body_md":    true,
	"visibility": true,
	"targets":    true,
	"post":       true,
}

// AnnouncementForm is the create/edit form view-model: a field mirror,
// local validation, target list mutators, and submit with backend
// validation projected into per-field errors.
type AnnouncementForm struct {
	client *api.Announcements

	mu          sync.Mutex
	title       string
	bodyMD      string
	visibility  models.Visibility
	post        bool
	targets     []api.TargetInput
	loading     bool
	fieldErrors map[string]string
	lastError   error
}

func NewAnnouncementForm(client *api.Announcements) *AnnouncementForm {
	return &AnnouncementForm{
		client:      client,
		visibility:  models.VisibilityAll,
		fieldErrors: map[string]string{},
	}
}

type AnnouncementFormState struct {
	Title       string
	BodyMD      string
	Visibility  models.Visibility
	Post        bool
	Targets     []api.TargetInput
	Loading     bool
	FieldErrors map[string]string
	LastError   error
}

func (f *AnnouncementForm) State() AnnouncementFormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	targets := make([]api.TargetInput, len(f.targets))
	copy(targets, f.targets)
	fieldErrors := make(map[string]string, len(f.fieldErrors))
	for k, v := range f.fieldErrors {
		fieldErrors[k] = v
	}
	return AnnouncementFormState{
		Title:       f.title,
		BodyMD:      f.bodyMD,
		Visibility:  f.visibility,
		Post:        f.post,
		Targets:     targets,
		Loading:     f.loading,
		FieldErrors: fieldErrors,
		LastError:   f.lastError,
	}
}

func (f *AnnouncementForm) SetTitle(title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.title = title
}

func (f *AnnouncementForm) SetBodyMD(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodyMD = body
}

func (f *AnnouncementForm) SetVisibility(v models.Visibility) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visibility = v
}

// AddGroupTarget appends a group target unless one for the same group
// already exists.
func (f *AnnouncementForm) AddGroupTarget(groupID int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.targets {
		if t.Type == models.TargetGroup && t.GroupID == groupID {
			return
		}
	}
	f.targets = append(f.targets, api.GroupTarget(groupID))
}

func (f *AnnouncementForm) AddUserTarget(userID int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.targets {
		if t.Type == models.TargetUser && t.UserID == userID {
			return
		}
	}
	f.targets = append(f.targets, api.UserTarget(userID))
}

func (f *AnnouncementForm) RemoveTarget(kind models.TargetType, id int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.targets {
		if t.Type != kind {
			continue
		}
		if (kind == models.TargetGroup && t.GroupID == id) || (kind == models.TargetUser && t.UserID == id) {
			f.targets = append(f.targets[:i], f.targets[i+1:]...)
			return true
		}
	}
	return false
}

func (f *AnnouncementForm) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.title = ""
	f.bodyMD = ""
	f.visibility = models.VisibilityAll
	f.post = false
	f.targets = nil
	f.fieldErrors = map[string]string{}
	f.lastError = nil
}

// Validate runs the local rules and fills FieldErrors. It never
// touches the network.
func (f *AnnouncementForm) Validate() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fieldErrors = f.validateLocked()
	return len(f.fieldErrors) == 0
}

func (f *AnnouncementForm) validateLocked() map[string]string {
	errs := map[string]string{}

	err := validate.Struct(announcementFields{
		Title:      f.title,
		BodyMD:     f.bodyMD,
		Visibility: string(f.visibility),
	})
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			name := formFieldNames[fe.StructField()]
			switch fe.ActualTag() {
			case "required":
				errs[name] = "this field is required"
			case "min":
				errs[name] = "too short (min " + fe.Param() + " characters)"
			default:
				errs[name] = "invalid value"
			}
		}
	}

	switch f.visibility {
	case models.VisibilityGroups:
		if !f.hasTargetLocked(models.TargetGroup) {
			errs["targets"] = "select at least one group"
		}
	case models.VisibilityUsers:
		if !f.hasTargetLocked(models.TargetUser) {
			errs["targets"] = "select at least one user"
		}
	}
	return errs
}

func (f *AnnouncementForm) hasTargetLocked(kind models.TargetType) bool {
	for _, t := range f.targets {
		if t.Type == kind {
			return true
		}
	}
	return false
}

func (f *AnnouncementForm) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.validateLocked()) == 0
}

// Submit validates locally, then creates the announcement. Post decides
// publish-now versus draft. Targets are omitted entirely for broadcast
// visibility. Backend validation detail lands in FieldErrors for the
// whitelisted fields; the original error is kept in LastError.
func (f *AnnouncementForm) Submit(ctx context.Context, post bool) (*models.Announcement, error) {
	f.mu.Lock()
	f.lastError = nil
	f.fieldErrors = f.validateLocked()
	if len(f.fieldErrors) > 0 {
		f.mu.Unlock()
		return nil, ErrValidation
	}

	input := api.CreateAnnouncementInput{
		Title:      f.title,
		BodyMD:     f.bodyMD,
		Visibility: f.visibility,
		Post:       post,
	}
	if f.visibility != models.VisibilityAll {
		input.Targets = make([]api.TargetInput, len(f.targets))
		copy(input.Targets, f.targets)
	}
	f.loading = true
	f.mu.Unlock()

	created, err := f.client.Create(ctx, input)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false
	if err != nil {
		f.lastError = err
		if apiErr, ok := api.AsError(err); ok {
			for field, messages := range apiErr.Data.Errors {
				if announcementFormWhitelist[field] && len(messages) > 0 {
					f.fieldErrors[field] = messages[0]
				}
			}
		}
		return nil, err
	}

	f.resetLocked()
	return &created, nil
}

func (f *AnnouncementForm) resetLocked() {
	f.title = ""
	f.bodyMD = ""
	f.visibility = models.VisibilityAll
	f.post = false
	f.targets = nil
	f.fieldErrors = map[string]string{}
}
