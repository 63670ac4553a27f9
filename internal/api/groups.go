package api

import (
	"context"
	"fmt"
	"net/http"

	"schoolcomm/client/internal/models"
)

type Groups struct {
	Client *Client
}

type groupDTO struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Grade     *string `json:"grade"`
	Section   *string `json:"section"`
	Code      *string `json:"code"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func mapGroup(dto groupDTO) models.Group {
	return models.Group{
		ID:        dto.ID,
		Name:      dto.Name,
		Grade:     strval(dto.Grade),
		Section:   strval(dto.Section),
		Code:      strval(dto.Code),
		CreatedAt: dto.CreatedAt,
		UpdatedAt: dto.UpdatedAt,
	}
}

type GroupQuery struct {
	Page    int
	PerPage int

	// Search goes out as the backend's "q" parameter.
	Search string
}

func (g Groups) List(ctx context.Context, q GroupQuery) (models.Page[models.Group], error) {
	query := newQuery()
	query.setInt("page", q.Page)
	query.setInt("per_page", q.PerPage)
	query.setString("q", q.Search)

	env, err := GetJSON[pageEnvelope[groupDTO]](ctx, g.Client, "/groups"+query.encode())
	if err != nil {
		return models.Page[models.Group]{}, err
	}
	return normalizePage(env, mapGroup), nil
}

func (g Groups) Get(ctx context.Context, id int) (models.Group, error) {
	if id <= 0 {
		return models.Group{}, ErrInvalidID
	}
	dto, err := GetJSON[groupDTO](ctx, g.Client, fmt.Sprintf("/groups/%d", id))
	if err != nil {
		return models.Group{}, err
	}
	return mapGroup(dto), nil
}

// GroupInput covers create and update; empty optional fields are sent
// as null so the backend clears them.
type GroupInput struct {
	Name    string  `json:"name"`
	Grade   *string `json:"grade,omitempty"`
	Section *string `json:"section,omitempty"`
	Code    *string `json:"code,omitempty"`
}

func (g Groups) Create(ctx context.Context, input GroupInput) (models.Group, error) {
	dto, err := SendJSON[groupDTO](ctx, g.Client, http.MethodPost, "/groups", input)
	if err != nil {
		return models.Group{}, err
	}
	return mapGroup(dto), nil
}

func (g Groups) Update(ctx context.Context, id int, input GroupInput) (models.Group, error) {
	if id <= 0 {
		return models.Group{}, ErrInvalidID
	}
	dto, err := SendJSON[groupDTO](ctx, g.Client, http.MethodPut, fmt.Sprintf("/groups/%d", id), input)
	if err != nil {
		return models.Group{}, err
	}
	return mapGroup(dto), nil
}

func (g Groups) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidID
	}
	_, err := SendJSON[struct{}](ctx, g.Client, http.MethodDelete, fmt.Sprintf("/groups/%d", id), nil)
	return err
}
