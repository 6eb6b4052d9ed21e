package query

import (
	"context"
	"fmt"
	"strings"
)

// Sort orders by one column.
type Sort struct {
	Column string
	Desc   bool
}

// Order is an ORDER BY list.
type Order []Sort

// NewestFirst orders by creation time, newest first, with id as the tie-breaker.
func NewestFirst(created, id string) Order {
	return Order{{Column: created, Desc: true}, {Column: id, Desc: true}}
}

// SQL renders the ORDER BY clause, or "" for an empty order.
func (o Order) SQL() string {
	if len(o) == 0 {
		return ""
	}
	parts := make([]string, len(o))
	for i, s := range o {
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		parts[i] = s.Column + " " + dir
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// Source is a record collection that can be counted and windowed by predicate.
type Source[T any] interface {
	Count(ctx context.Context, where Predicate) (int, error)
	Find(ctx context.Context, where Predicate, order Order, limit, offset int) ([]T, error)
}

// Page is one window of a filtered, ordered collection.
type Page[T any] struct {
	Items       []T
	Total       int
	CurrentPage int
	PerPage     int
}

// LastPage is ceil(Total/PerPage), never less than 1.
func (p Page[T]) LastPage() int {
	if p.PerPage < 1 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

// From is the 1-based index of the first item on the page, or 0 when the page is empty.
func (p Page[T]) From() int {
	if len(p.Items) == 0 {
		return 0
	}
	return (p.CurrentPage-1)*p.PerPage + 1
}

// To is the 1-based index of the last item on the page, or 0 when the page is empty.
func (p Page[T]) To() int {
	if len(p.Items) == 0 {
		return 0
	}
	return (p.CurrentPage-1)*p.PerPage + len(p.Items)
}

// Paginate counts everything matching where and loads the requested window.
// A page past the end yields no items but keeps the true total.
func Paginate[T any](ctx context.Context, src Source[T], where Predicate, order Order, page, size int) (Page[T], error) {
	if page < 1 || size < 1 {
		return Page[T]{}, fmt.Errorf("paginate: page %d size %d out of range", page, size)
	}

	total, err := src.Count(ctx, where)
	if err != nil {
		return Page[T]{}, fmt.Errorf("paginate count: %w", err)
	}

	p := Page[T]{Items: []T{}, Total: total, CurrentPage: page, PerPage: size}

	offset := (page - 1) * size
	if offset >= total {
		return p, nil
	}

	items, err := src.Find(ctx, where, order, size, offset)
	if err != nil {
		return Page[T]{}, fmt.Errorf("paginate find: %w", err)
	}
	if items != nil {
		p.Items = items
	}
	return p, nil
}
