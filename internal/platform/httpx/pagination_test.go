package httpx

import (
	"math"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPaginationClamps(t *testing.T) {
	p := NewPagination(0, 0, 45)
	require.Equal(t, Pagination{Page: 1, PerPage: 20, Total: 45, TotalPages: 3}, p)

	p = NewPagination(2, 1000, 10)
	require.Equal(t, maxPerPage, p.PerPage)
	require.Equal(t, 1, p.TotalPages)
}

func TestPaginationBounds(t *testing.T) {
	start, end := NewPagination(3, 20, 45).Bounds()
	require.Equal(t, 40, start)
	require.Equal(t, 45, end)

	start, end = NewPagination(9, 20, 45).Bounds()
	require.Equal(t, 45, start)
	require.Equal(t, 45, end)

	start, end = NewPagination(1, 20, 0).Bounds()
	require.Zero(t, start)
	require.Zero(t, end)
}

func TestPaginationBoundsHugePage(t *testing.T) {
	for _, page := range []int{math.MaxInt, math.MaxInt/20 + 2} {
		start, end := NewPagination(page, 20, 45).Bounds()
		require.Equal(t, 45, start)
		require.Equal(t, 45, end)
	}

	start, end := NewPagination(math.MaxInt, maxPerPage, 0).Bounds()
	require.Zero(t, start)
	require.Zero(t, end)
}

func TestPageParams(t *testing.T) {
	_, _, ok, fields := PageParams(httptest.NewRequest("GET", "/logs", nil))
	require.False(t, ok)
	require.Empty(t, fields)

	page, perPage, ok, fields := PageParams(httptest.NewRequest("GET", "/logs?page=2&perPage=5", nil))
	require.True(t, ok)
	require.Empty(t, fields)
	require.Equal(t, 2, page)
	require.Equal(t, 5, perPage)

	_, _, ok, fields = PageParams(httptest.NewRequest("GET", "/logs?page=-1", nil))
	require.True(t, ok)
	require.Contains(t, fields, "page")
}
