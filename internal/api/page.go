package api

import "schoolcomm/client/internal/models"

// pageEnvelope is the backend paginator shape.
type pageEnvelope[T any] struct {
	CurrentPage int     `json:"current_page"`
	PerPage     int     `json:"per_page"`
	Total       int     `json:"total"`
	LastPage    int     `json:"last_page"`
	NextPageURL *string `json:"next_page_url"`
	PrevPageURL *string `json:"prev_page_url"`
	Data        []T     `json:"data"`
}

// normalizePage collapses the envelope into models.Page. hasNext/hasPrev
// come from the url fields; when the envelope carries neither, they fall
// back to the page/lastPage comparison (which agrees with null urls on a
// single-page result).
func normalizePage[D, M any](env pageEnvelope[D], mapItem func(D) M) models.Page[M] {
	items := make([]M, 0, len(env.Data))
	for _, d := range env.Data {
		items = append(items, mapItem(d))
	}

	hasNext := env.NextPageURL != nil
	hasPrev := env.PrevPageURL != nil
	if env.NextPageURL == nil && env.PrevPageURL == nil {
		hasNext = env.CurrentPage < env.LastPage
		hasPrev = env.CurrentPage > 1
	}

	return models.Page[M]{
		Items:    items,
		Page:     env.CurrentPage,
		PerPage:  env.PerPage,
		Total:    env.Total,
		LastPage: env.LastPage,
		HasNext:  hasNext,
		HasPrev:  hasPrev,
	}
}
