package repository

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageRequest(t *testing.T) {
	cases := []struct {
		name       string
		number     int
		size       int
		wantErr    bool
		wantSize   int
		wantOffset int
	}{
		{"first page", 0, 10, false, 10, 0},
		{"third page", 2, 25, false, 25, 50},
		{"zero size picks default", 1, 0, false, DefaultPageSize, DefaultPageSize},
		{"negative number", -1, 10, true, 0, 0},
		{"negative size", 0, -5, true, 0, 0},
		{"max size", 0, MaxPageSize, false, MaxPageSize, 0},
		{"size above max", 0, MaxPageSize + 1, true, 0, 0},
		{"huge size", 0, 1 << 50, true, 0, 0},
		{"last addressable page", math.MaxInt / 10, 10, false, 10, math.MaxInt / 10 * 10},
		{"offset overflows", math.MaxInt/10 + 1, 10, true, 0, 0},
		{"offset overflows with default size", math.MaxInt/DefaultPageSize + 1, 0, true, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPageRequest(tc.number, tc.size, Sort{})
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantSize, p.Size())
			assert.Equal(t, tc.wantOffset, p.Offset())
		})
	}
}

func TestPageRequest_ZeroValueAndDerive(t *testing.T) {
	var p PageRequest
	assert.Equal(t, 0, p.Number())
	assert.Equal(t, DefaultPageSize, p.Size())
	assert.True(t, p.Sort().IsUnsorted())

	next := p.Next()
	assert.Equal(t, 1, next.Number())
	assert.Equal(t, 0, p.Number(), "Next must not mutate the receiver")

	last, err := NewPageRequest(math.MaxInt/DefaultPageSize, 0, Sort{})
	require.NoError(t, err)
	assert.Equal(t, last.Number(), last.Next().Number(), "Next stops at the last addressable page")
	assert.GreaterOrEqual(t, last.Next().Offset(), 0)

	sorted := next.WithSort(By(Desc("id")))
	assert.Equal(t, 1, sorted.Number())
	assert.False(t, sorted.Sort().IsUnsorted())
	assert.True(t, next.Sort().IsUnsorted())
}

func TestSort_SQL(t *testing.T) {
	s, err := Sort{}.SQL()
	require.NoError(t, err)
	assert.Equal(t, "id ASC", s)

	composite := By(Desc("id")).And(By(Asc("text")))
	s, err = composite.SQL()
	require.NoError(t, err)
	assert.Equal(t, "id DESC, memo_text ASC", s)

	_, err = By(Asc("id; DROP TABLE memos")).SQL()
	assert.ErrorIs(t, err, ErrInvalidSort)
}

func TestSort_AndDoesNotAlias(t *testing.T) {
	base := By(Asc("id"))
	a := base.And(By(Desc("text")))
	b := base.And(By(Asc("createdAt")))
	assert.Len(t, base.Orders(), 1)
	assert.Equal(t, "text", a.Orders()[1].Property)
	assert.Equal(t, "createdAt", b.Orders()[1].Property)
}

func TestParseOrder(t *testing.T) {
	cases := []struct {
		in      string
		want    Order
		wantErr bool
	}{
		{"id", Asc("id"), false},
		{"id,desc", Desc("id"), false},
		{" text , ASC ", Asc("text"), false},
		{"created_at,DESC", Desc("created_at"), false},
		{"id,sideways", Order{}, true},
		{"password", Order{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseOrder(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSort)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBuildPage_CountSkipping(t *testing.T) {
	errCount := errors.New("count failed")
	cases := []struct {
		name      string
		number    int
		size      int
		items     int
		count     int64
		wantTotal int64
		wantCount bool
	}{
		{"first page short", 0, 10, 4, 99, 4, false},
		{"first page empty", 0, 10, 0, 99, 0, false},
		{"first page full", 0, 10, 10, 37, 37, true},
		{"later page short", 3, 10, 7, 99, 37, false},
		{"later page full", 1, 10, 10, 55, 55, true},
		{"later page empty", 9, 10, 0, 55, 55, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPageRequest(tc.number, tc.size, Sort{})
			require.NoError(t, err)
			called := false
			page, err := BuildPage(make([]int, tc.items), p, func() (int64, error) {
				called = true
				return tc.count, nil
			})
			require.NoError(t, err)
			assert.Equal(t, tc.wantCount, called)
			assert.Equal(t, tc.wantTotal, page.Total)
			assert.Len(t, page.Items, tc.items)
		})
	}

	t.Run("count error propagates", func(t *testing.T) {
		p, _ := NewPageRequest(0, 2, Sort{})
		_, err := BuildPage([]int{1, 2}, p, func() (int64, error) { return 0, errCount })
		assert.ErrorIs(t, err, errCount)
	})

	t.Run("nil items become empty", func(t *testing.T) {
		page, err := BuildPage[int](nil, PageRequest{}, nil)
		require.NoError(t, err)
		assert.NotNil(t, page.Items)
	})
}

func TestPage_Metadata(t *testing.T) {
	p := Page[int]{Total: 25, Number: 0, Size: 10}
	assert.Equal(t, 3, p.TotalPages())
	assert.True(t, p.IsFirst())
	assert.True(t, p.HasNext())
	assert.False(t, p.HasPrevious())

	p.Number = 2
	assert.False(t, p.HasNext())
	assert.True(t, p.IsLast())
	assert.True(t, p.HasPrevious())

	empty := Page[int]{Size: 10}
	assert.Equal(t, 0, empty.TotalPages())
	assert.False(t, empty.HasNext())
}

func TestCheckRange(t *testing.T) {
	assert.NoError(t, CheckRange(1, 1))
	assert.NoError(t, CheckRange(-5, 5))
	assert.ErrorIs(t, CheckRange(9, 8), ErrInvalidRange)
}
