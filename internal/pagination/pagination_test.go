package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	p := PageRequest{}
	p.Defaults()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)

	p = PageRequest{Page: 3, PageSize: 500}
	p.Defaults()
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, MaxPageSize, p.PageSize)
	assert.Equal(t, 200, p.Offset())
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse[string](nil, 1, 20, 41)
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Data)
	assert.Equal(t, 3, resp.TotalPages)

	resp = NewPageResponse([]string{"a"}, 1, 20, 20)
	assert.Equal(t, 1, resp.TotalPages)

	resp = NewPageResponse[string](nil, 1, 20, 0)
	assert.Equal(t, 0, resp.TotalPages)
}
