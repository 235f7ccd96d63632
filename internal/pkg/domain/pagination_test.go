package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageRequest_Validation(t *testing.T) {
	_, err := NewPageRequest(-1, 10)
	assert.True(t, IsBadRequest(err))

	_, err = NewPageRequest(0, 0)
	assert.True(t, IsBadRequest(err))

	req, err := NewPageRequest(0, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, req.Index())
}

func TestPageRequest_TruncatesOffset(t *testing.T) {
	tests := []struct {
		offset, size, index, skip int
	}{
		{0, 2, 0, 0},
		{2, 2, 1, 2},
		{3, 2, 1, 2},
		{5, 10, 0, 0},
		{20, 10, 2, 20},
	}
	for _, tt := range tests {
		req, err := NewPageRequest(tt.offset, tt.size)
		require.NoError(t, err)
		assert.Equal(t, tt.index, req.Index(), "offset=%d size=%d", tt.offset, tt.size)
		assert.Equal(t, tt.skip, req.Skip(), "offset=%d size=%d", tt.offset, tt.size)
	}
}

func TestPage_IsLast(t *testing.T) {
	req, _ := NewPageRequest(0, 2)
	assert.False(t, NewPage([]int{1, 2}, 4, req).IsLast())

	req, _ = NewPageRequest(2, 2)
	assert.True(t, NewPage([]int{3, 4}, 4, req).IsLast())

	req, _ = NewPageRequest(0, 5)
	assert.True(t, NewPage[int](nil, 0, req).IsLast())
}

func TestMapPageKeepsMetadata(t *testing.T) {
	req, _ := NewPageRequest(4, 2)
	p := MapPage(NewPage([]int{5, 6}, 9, req), func(v int) string { return string(rune('a' + v)) })

	assert.Equal(t, []string{"f", "g"}, p.Items)
	assert.Equal(t, int64(9), p.Total)
	assert.Equal(t, 2, p.Index)

	view := NewPaginatedResult(p)
	assert.Equal(t, 4, view.From)
	assert.False(t, view.Last)
}
