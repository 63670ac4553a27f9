package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"schoolcomm/client/internal/models"
)

type Users struct {
	Client *Client
}

type roleDTO struct {
	ID   int             `json:"id"`
	Slug models.RoleSlug `json:"slug"`
	Name string          `json:"name"`
}

type userDTO struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Role       roleDTO `json:"role"`
	AvatarPath *string `json:"avatar_path"`
	CreatedAt  *string `json:"created_at"`
}

func mapUser(dto userDTO) models.User {
	return models.User{
		ID:    dto.ID,
		Name:  dto.Name,
		Email: dto.Email,
		Role: models.Role{
			ID:   dto.Role.ID,
			Slug: dto.Role.Slug,
			Name: dto.Role.Name,
		},
		AvatarPath: strval(dto.AvatarPath),
		CreatedAt:  strval(dto.CreatedAt),
	}
}

// RoleStats counts users per role.
type RoleStats struct {
	Admin   int `json:"admin"`
	Teacher int `json:"teacher"`
	Parent  int `json:"parent"`
}

// UsersPage is the users list page plus the role counters the backend
// appends to the paginator.
type UsersPage struct {
	models.Page[models.User]
	RoleStatsAll      RoleStats
	RoleStatsFiltered RoleStats
}

type usersEnvelope struct {
	pageEnvelope[userDTO]
	TotalRoles struct {
		All      RoleStats `json:"all"`
		Filtered RoleStats `json:"filtered"`
	} `json:"total_roles"`
}

type UserQuery struct {
	Page    int
	PerPage int
	Search  string
}

func (u Users) List(ctx context.Context, q UserQuery) (UsersPage, error) {
	query := newQuery()
	query.setInt("page", q.Page)
	query.setInt("per_page", q.PerPage)
	query.setString("search", q.Search)

	env, err := GetJSON[usersEnvelope](ctx, u.Client, "/users"+query.encode())
	if err != nil {
		return UsersPage{}, err
	}
	return UsersPage{
		Page:              normalizePage(env.pageEnvelope, mapUser),
		RoleStatsAll:      env.TotalRoles.All,
		RoleStatsFiltered: env.TotalRoles.Filtered,
	}, nil
}

func (u Users) Get(ctx context.Context, id int) (models.User, error) {
	if id <= 0 {
		return models.User{}, ErrInvalidID
	}
	dto, err := GetJSON[userDTO](ctx, u.Client, fmt.Sprintf("/users/%d", id))
	if err != nil {
		return models.User{}, err
	}
	return mapUser(dto), nil
}

// UserForm is the client-side create/edit input.
type UserForm struct {
	Name                 string
	Email                string
	RoleID               int
	Password             string
	PasswordConfirmation string
}

type createUserDTO struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	RoleID               int    `json:"role_id"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *int    `json:"role,omitempty"`
	Password *string `json:"password,omitempty"`
}

func (u Users) Create(ctx context.Context, form UserForm) (models.User, error) {
	dto, err := SendJSON[userDTO](ctx, u.Client, http.MethodPost, "/users", createUserDTO{
		Name:                 strings.TrimSpace(form.Name),
		Email:                strings.ToLower(strings.TrimSpace(form.Email)),
		RoleID:               form.RoleID,
		Password:             form.Password,
		PasswordConfirmation: form.PasswordConfirmation,
	})
	if err != nil {
		return models.User{}, err
	}
	return mapUser(dto), nil
}

func (u Users) Update(ctx context.Context, id int, update UserUpdate) (models.User, error) {
	if id <= 0 {
		return models.User{}, ErrInvalidID
	}
	if update.Name != nil {
		trimmed := strings.TrimSpace(*update.Name)
		update.Name = &trimmed
	}
	if update.Email != nil {
		lowered := strings.ToLower(strings.TrimSpace(*update.Email))
		update.Email = &lowered
	}

	dto, err := SendJSON[userDTO](ctx, u.Client, http.MethodPut, fmt.Sprintf("/users/%d", id), update)
	if err != nil {
		return models.User{}, err
	}
	return mapUser(dto), nil
}

func (u Users) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidID
	}
	_, err := SendJSON[struct{}](ctx, u.Client, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil)
	return err
}
