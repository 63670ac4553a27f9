// Package viewmodel wraps the resource clients in stateful,
// UI-framework-agnostic view-models: paged lists with filters and
// optimistic mutations, detail views, forms, and the badge poller.
// State is read through snapshot accessors; an optional OnChange hook
// tells the UI when to re-read.
package viewmodel

import (
	"context"
	"sync"
	"time"

	"schoolcomm/client/internal/models"
)

// searchDebounce delays list refreshes while the user is still typing.
const searchDebounce = 400 * time.Millisecond

// FetchFunc loads one page for the current filter tuple.
type FetchFunc[T any, F any] func(ctx context.Context, page, perPage int, search string, filters F) (models.Page[T], error)

// ListState is a point-in-time snapshot of a list view-model.
type ListState[T any] struct {
	Items    []T
	Page     int
	PerPage  int
	Total    int
	LastPage int
	HasNext  bool
	HasPrev  bool
	Search   string
	Loading  bool
	Err      error
}

// List is the shared list view-model. Every filter or page change
// triggers a refresh; responses that no longer match the latest issued
// request are dropped, so the newest request always wins.
type List[T any, F any] struct {
	fetch FetchFunc[T, F]
	id    func(T) int

	mu       sync.Mutex
	page     int
	perPage  int
	search   string
	filters  F
	items    []T
	total    int
	lastPage int
	hasNext  bool
	hasPrev  bool
	inFlight int
	err      error
	seq      uint64
	debounce *time.Timer

	// OnChange, when set, runs after every state transition.
	OnChange func()
}

func NewList[T any, F any](fetch FetchFunc[T, F], id func(T) int) *List[T, F] {
	return &List[T, F]{
		fetch:   fetch,
		id:      id,
		page:    1,
		perPage: 10,
	}
}

func (l *List[T, F]) State() ListState[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := make([]T, len(l.items))
	copy(items, l.items)
	return ListState[T]{
		Items:    items,
		Page:     l.page,
		PerPage:  l.perPage,
		Total:    l.total,
		LastPage: l.lastPage,
		HasNext:  l.hasNext,
		HasPrev:  l.hasPrev,
		Search:   l.search,
		Loading:  l.inFlight > 0,
		Err:      l.err,
	}
}

func (l *List[T, F]) Filters() F {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filters
}

// Refresh fetches the current page. Stale responses (a newer request
// started meanwhile) are discarded without touching state.
func (l *List[T, F]) Refresh(ctx context.Context) error {
	l.mu.Lock()
	l.seq++
	seq := l.seq
	page, perPage, search, filters := l.page, l.perPage, l.search, l.filters
	l.inFlight++
	l.err = nil
	l.mu.Unlock()
	l.notify()

	result, err := l.fetch(ctx, page, perPage, search, filters)

	l.mu.Lock()
	l.inFlight--
	if seq != l.seq {
		l.mu.Unlock()
		l.notify()
		return nil
	}
	if err != nil {
		l.err = err
	} else {
		l.items = result.Items
		l.page = result.Page
		l.perPage = result.PerPage
		l.total = result.Total
		l.lastPage = result.LastPage
		l.hasNext = result.HasNext
		l.hasPrev = result.HasPrev
	}
	l.mu.Unlock()
	l.notify()
	return err
}

// SetFilters mutates the filter struct, resets to page 1, and refreshes
// immediately.
func (l *List[T, F]) SetFilters(ctx context.Context, mutate func(*F)) error {
	l.mu.Lock()
	mutate(&l.filters)
	l.page = 1
	l.mu.Unlock()
	return l.Refresh(ctx)
}

// SetSearch updates the search text and schedules a debounced refresh;
// a newer keystroke replaces the pending one.
func (l *List[T, F]) SetSearch(ctx context.Context, search string) {
	l.mu.Lock()
	l.search = search
	if l.debounce != nil {
		l.debounce.Stop()
	}
	l.debounce = time.AfterFunc(searchDebounce, func() {
		l.mu.Lock()
		l.page = 1
		l.mu.Unlock()
		_ = l.Refresh(ctx)
	})
	l.mu.Unlock()
}

func (l *List[T, F]) ResetFilters(ctx context.Context) error {
	l.mu.Lock()
	var zero F
	l.filters = zero
	l.search = ""
	l.page = 1
	if l.debounce != nil {
		l.debounce.Stop()
		l.debounce = nil
	}
	l.mu.Unlock()
	return l.Refresh(ctx)
}

func (l *List[T, F]) SetPage(ctx context.Context, page int) error {
	l.mu.Lock()
	if page < 1 {
		page = 1
	}
	l.page = page
	l.mu.Unlock()
	return l.Refresh(ctx)
}

func (l *List[T, F]) SetPerPage(ctx context.Context, perPage int) error {
	l.mu.Lock()
	if perPage < 1 {
		perPage = 1
	}
	l.perPage = perPage
	l.page = 1
	l.mu.Unlock()
	return l.Refresh(ctx)
}

func (l *List[T, F]) Next(ctx context.Context) error {
	l.mu.Lock()
	if !l.hasNext {
		l.mu.Unlock()
		return nil
	}
	l.page++
	l.mu.Unlock()
	return l.Refresh(ctx)
}

func (l *List[T, F]) Prev(ctx context.Context) error {
	l.mu.Lock()
	if !l.hasPrev || l.page <= 1 {
		l.mu.Unlock()
		return nil
	}
	l.page--
	l.mu.Unlock()
	return l.Refresh(ctx)
}

// CreateOne runs the create call and prepends the server item.
func (l *List[T, F]) CreateOne(ctx context.Context, create func(context.Context) (T, error)) (T, error) {
	item, err := create(ctx)
	if err != nil {
		var zero T
		l.stash(err)
		return zero, err
	}
	l.mu.Lock()
	l.items = append([]T{item}, l.items...)
	l.total++
	l.mu.Unlock()
	l.notify()
	return item, nil
}

// UpdateOne applies the optimistic transform locally, then reconciles
// with the server item. On failure the snapshot is restored.
func (l *List[T, F]) UpdateOne(ctx context.Context, id int, optimistic func(T) T, save func(context.Context) (T, error)) (T, error) {
	l.mu.Lock()
	idx := l.indexOf(id)
	var backup T
	if idx >= 0 {
		backup = l.items[idx]
		if optimistic != nil {
			l.items[idx] = optimistic(backup)
		}
	}
	l.mu.Unlock()
	l.notify()

	saved, err := save(ctx)

	l.mu.Lock()
	if idx := l.indexOf(id); idx >= 0 {
		if err != nil {
			l.items[idx] = backup
		} else {
			l.items[idx] = saved
		}
	}
	if err != nil {
		l.err = err
	}
	l.mu.Unlock()
	l.notify()
	if err != nil {
		var zero T
		return zero, err
	}
	return saved, nil
}

// RemoveOne drops the item locally, then deletes it server-side,
// reinserting on failure.
func (l *List[T, F]) RemoveOne(ctx context.Context, id int, del func(context.Context) error) error {
	l.mu.Lock()
	idx := l.indexOf(id)
	var backup T
	if idx >= 0 {
		backup = l.items[idx]
		l.items = append(l.items[:idx], l.items[idx+1:]...)
		if l.total > 0 {
			l.total--
		}
	}
	l.mu.Unlock()
	l.notify()

	err := del(ctx)
	if err != nil {
		l.mu.Lock()
		if idx >= 0 {
			if idx > len(l.items) {
				idx = len(l.items)
			}
			l.items = append(l.items[:idx], append([]T{backup}, l.items[idx:]...)...)
			l.total++
		}
		l.err = err
		l.mu.Unlock()
		l.notify()
	}
	return err
}

func (l *List[T, F]) indexOf(id int) int {
	for i, item := range l.items {
		if l.id(item) == id {
			return i
		}
	}
	return -1
}

func (l *List[T, F]) stash(err error) {
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
	l.notify()
}

func (l *List[T, F]) notify() {
	if l.OnChange != nil {
		l.OnChange()
	}
}
