package school

import (
	"errors"
	"math"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-router"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps the row offset of any valid page within int32
	MaxPage = math.MaxInt32/MaxLimit + 1
)

// Pagination is the requested window of a listing
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Offset of the first row of the page
func (p Pagination) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Validate will run validation rules
func (p Pagination) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Page, validation.Required, validation.Min(1), validation.Max(MaxPage)),
		validation.Field(&p.Limit, validation.Required, validation.Min(1), validation.Max(MaxLimit)),
	)
}

// Page is the listing envelope returned by every collection endpoint
type Page[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPage wraps records with the paging metadata. An empty collection
// still reports a single page.
func NewPage[T any](records []T, total int, p Pagination) *Page[T] {
	if records == nil {
		records = []T{}
	}

	totalPages := 1
	if p.Limit > 0 && total > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}

	return &Page[T]{
		Data:       records,
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// ParsePagination reads page and limit from the query string
func ParsePagination(c router.Context) (Pagination, error) {
	p := Pagination{Page: DefaultPage, Limit: DefaultLimit}
	errs := validation.Errors{}

	if raw := c.Query("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs["page"] = errors.New("must be an integer")
		}
		p.Page = v
	}

	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs["limit"] = errors.New("must be an integer")
		}
		p.Limit = v
	}

	if len(errs) > 0 {
		return p, errs
	}

	if err := p.Validate(); err != nil {
		return p, err
	}

	return p, nil
}
