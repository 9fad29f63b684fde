package repository

import (
	"fmt"
	"math"
	"strings"
)

const (
	// DefaultPageSize is used when a request leaves the size at zero.
	DefaultPageSize = 10
	// MaxPageSize bounds a single page.
	MaxPageSize = 1000
)

// Direction is the ordering direction of a single sort key.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "DESC"
	}
	return "ASC"
}

// sortable maps the public property names to their columns. Anything outside
// this set is rejected so sort input never reaches SQL verbatim.
var sortable = map[string]string{
	"id":         "id",
	"text":       "memo_text",
	"memo_text":  "memo_text",
	"createdAt":  "created_at",
	"created_at": "created_at",
}

// Order is one sort key.
type Order struct {
	Property  string
	Direction Direction
}

// Asc and Desc are shorthands for building orders.
func Asc(property string) Order  { return Order{Property: property, Direction: Ascending} }
func Desc(property string) Order { return Order{Property: property, Direction: Descending} }

// Column resolves the order's property to its storage column.
func (o Order) Column() (string, error) {
	col, ok := sortable[o.Property]
	if !ok {
		return "", fmt.Errorf("%w: unknown property %q", ErrInvalidSort, o.Property)
	}
	return col, nil
}

// ParseOrder reads the "property[,asc|desc]" form used in query strings.
func ParseOrder(raw string) (Order, error) {
	prop, dir, _ := strings.Cut(strings.TrimSpace(raw), ",")
	o := Order{Property: strings.TrimSpace(prop)}
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "asc":
		o.Direction = Ascending
	case "desc":
		o.Direction = Descending
	default:
		return Order{}, fmt.Errorf("%w: unknown direction %q", ErrInvalidSort, dir)
	}
	if _, err := o.Column(); err != nil {
		return Order{}, err
	}
	return o, nil
}

// Sort is an ordered, composite list of sort keys. The zero value is unsorted.
type Sort struct {
	orders []Order
}

// By builds a sort from the given orders, first order most significant.
func By(orders ...Order) Sort {
	return Sort{orders: append([]Order(nil), orders...)}
}

// And returns a new sort with other's keys appended after s's keys.
func (s Sort) And(other Sort) Sort {
	out := make([]Order, 0, len(s.orders)+len(other.orders))
	out = append(out, s.orders...)
	out = append(out, other.orders...)
	return Sort{orders: out}
}

// Orders returns a copy of the sort keys.
func (s Sort) Orders() []Order { return append([]Order(nil), s.orders...) }

func (s Sort) IsUnsorted() bool { return len(s.orders) == 0 }

// SQL renders the ORDER BY body, e.g. "id DESC, memo_text ASC". An unsorted
// value renders "id ASC" so pages stay deterministic.
func (s Sort) SQL() (string, error) {
	if s.IsUnsorted() {
		return "id ASC", nil
	}
	parts := make([]string, 0, len(s.orders))
	for _, o := range s.orders {
		col, err := o.Column()
		if err != nil {
			return "", err
		}
		parts = append(parts, col+" "+o.Direction.String())
	}
	return strings.Join(parts, ", "), nil
}

// PageRequest describes which slice of a result set to fetch. It is immutable;
// use the derive helpers to change it.
type PageRequest struct {
	number int
	size   int
	sort   Sort
}

// NewPageRequest validates and builds a page request. A zero size selects
// DefaultPageSize. The resulting offset always fits in an int.
func NewPageRequest(number, size int, sort Sort) (PageRequest, error) {
	if number < 0 {
		return PageRequest{}, fmt.Errorf("%w: page number must be >= 0, got %d", ErrInvalidPage, number)
	}
	if size < 0 || size > MaxPageSize {
		return PageRequest{}, fmt.Errorf("%w: page size must be in [0, %d], got %d", ErrInvalidPage, MaxPageSize, size)
	}
	p := PageRequest{number: number, size: size, sort: sort}
	if number > math.MaxInt/p.Size() {
		return PageRequest{}, fmt.Errorf("%w: page number %d is too large", ErrInvalidPage, number)
	}
	return p, nil
}

// FirstPage is page 0 of the given size.
func FirstPage(size int, sort Sort) (PageRequest, error) { return NewPageRequest(0, size, sort) }

func (p PageRequest) Number() int { return p.number }

func (p PageRequest) Size() int {
	if p.size <= 0 {
		return DefaultPageSize
	}
	return p.size
}

func (p PageRequest) Sort() Sort { return p.sort }

func (p PageRequest) Offset() int { return p.number * p.Size() }

// Next returns the request for the following page. At the last addressable
// page it returns p unchanged.
func (p PageRequest) Next() PageRequest {
	if p.number >= math.MaxInt/p.Size() {
		return p
	}
	p.number++
	return p
}

// WithSort returns a copy of p ordered by s.
func (p PageRequest) WithSort(s Sort) PageRequest {
	p.sort = s
	return p
}

// Page is a read-only slice of a larger result set plus pagination metadata.
type Page[T any] struct {
	Items  []T
	Total  int64
	Number int
	Size   int
}

func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 1
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}

func (p Page[T]) HasNext() bool     { return p.Number+1 < p.TotalPages() }
func (p Page[T]) HasPrevious() bool { return p.Number > 0 }
func (p Page[T]) IsFirst() bool     { return !p.HasPrevious() }
func (p Page[T]) IsLast() bool      { return !p.HasNext() }

// CountFunc computes the total number of rows matching a paged query.
type CountFunc func() (int64, error)

// BuildPage assembles a page from its fetched items, calling count only when
// the total cannot be inferred from a short result.
func BuildPage[T any](items []T, req PageRequest, count CountFunc) (Page[T], error) {
	page := Page[T]{Items: items, Number: req.Number(), Size: req.Size()}
	if page.Items == nil {
		page.Items = []T{}
	}
	n := len(items)
	switch {
	case req.Offset() == 0 && n < req.Size():
		page.Total = int64(n)
		return page, nil
	case req.Offset() > 0 && n > 0 && n < req.Size():
		page.Total = int64(req.Offset() + n)
		return page, nil
	}
	total, err := count()
	if err != nil {
		return Page[T]{}, err
	}
	page.Total = total
	return page, nil
}

// CheckRange validates an inclusive [from, to] id range.
func CheckRange(from, to int64) error {
	if from > to {
		return fmt.Errorf("%w: from %d is greater than to %d", ErrInvalidRange, from, to)
	}
	return nil
}
