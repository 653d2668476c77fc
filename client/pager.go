package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
)

// DefaultPageLimit is the page size used by list views
const DefaultPageLimit = 10

const (
	ResourceCourses  = "courses"
	ResourceStudents = "students"
	ResourceTeachers = "teachers"
)

// PageState is what a list view renders
type PageState[T any] struct {
	Data       []T
	Page       int
	Limit      int
	Total      int
	TotalPages int
	Loading    bool
	Err        string
}

// Pager loads a paginated collection one page at a time
type Pager[T any] struct {
	client   *Client
	resource string

	mu    sync.RWMutex
	state PageState[T]
}

type PagerOption[T any] func(*Pager[T])

// WithPageLimit sets the page size, values below 1 keep the default
func WithPageLimit[T any](limit int) PagerOption[T] {
	return func(p *Pager[T]) {
		if limit > 0 {
			p.state.Limit = limit
		}
	}
}

func NewPager[T any](c *Client, resource string, opts ...PagerOption[T]) *Pager[T] {
	p := &Pager[T]{
		client:   c,
		resource: resource,
		state: PageState[T]{
			Data:       []T{},
			Page:       1,
			Limit:      DefaultPageLimit,
			TotalPages: 1,
		},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func Courses(c *Client) *Pager[Course]   { return NewPager[Course](c, ResourceCourses) }
func Students(c *Client) *Pager[Student] { return NewPager[Student](c, ResourceStudents) }
func Teachers(c *Client) *Pager[Teacher] { return NewPager[Teacher](c, ResourceTeachers) }

// Resource returns the collection name
func (p *Pager[T]) Resource() string {
	return p.resource
}

func (p *Pager[T]) State() PageState[T] {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Load fetches page, values below 1 load the first page
func (p *Pager[T]) Load(ctx context.Context, page int) (PageState[T], error) {
	if page < 1 {
		page = 1
	}

	p.mu.Lock()
	p.state.Loading = true
	p.state.Err = ""
	limit := p.state.Limit
	p.mu.Unlock()

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var raw json.RawMessage
	err := p.client.Get(ctx, "/api/"+p.resource+"?"+query.Encode(), &raw)

	var result pageBody[T]
	if err == nil {
		result, err = decodePage[T](raw)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.Loading = false

	if err != nil {
		p.state.Data = []T{}
		p.state.Page = page
		p.state.Total = 0
		p.state.TotalPages = 1
		p.state.Err = p.errorMessage(err)
		return p.state, err
	}

	p.state.Data = result.Data
	p.state.Page = page
	if result.Page != nil && *result.Page > 0 {
		p.state.Page = *result.Page
	}
	p.state.TotalPages = 1
	if result.TotalPages != nil && *result.TotalPages > 0 {
		p.state.TotalPages = *result.TotalPages
	}
	p.state.Total = len(result.Data)
	if result.Total != nil {
		p.state.Total = *result.Total
	}

	return p.state, nil
}

// Reload fetches the current page again
func (p *Pager[T]) Reload(ctx context.Context) (PageState[T], error) {
	return p.Load(ctx, p.State().Page)
}

// Next loads the following page when there is one
func (p *Pager[T]) Next(ctx context.Context) (PageState[T], error) {
	if !p.CanNext() {
		return p.State(), nil
	}
	return p.Load(ctx, p.State().Page+1)
}

// Prev loads the previous page when there is one
func (p *Pager[T]) Prev(ctx context.Context) (PageState[T], error) {
	if !p.CanPrev() {
		return p.State(), nil
	}
	return p.Load(ctx, p.State().Page-1)
}

func (p *Pager[T]) CanPrev() bool {
	s := p.State()
	return s.Page > 1
}

func (p *Pager[T]) CanNext() bool {
	s := p.State()
	return s.Page < s.TotalPages
}

func (p *Pager[T]) errorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if msg, ok := apiErr.ServerMessage(); ok {
			return msg
		}
	}
	return fmt.Sprintf("Failed to fetch %s", p.resource)
}

type pageBody[T any] struct {
	Data       []T  `json:"data"`
	Page       *int `json:"page"`
	Limit      *int `json:"limit"`
	Total      *int `json:"total"`
	TotalPages *int `json:"totalPages"`
}

// decodePage accepts the paginated envelope or a bare array
func decodePage[T any](raw json.RawMessage) (pageBody[T], error) {
	var body pageBody[T]

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		body.Data = []T{}
		return body, nil
	}

	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &body.Data); err != nil {
			return body, err
		}
	} else if err := json.Unmarshal(trimmed, &body); err != nil {
		return body, err
	}

	if body.Data == nil {
		body.Data = []T{}
	}
	return body, nil
}
