package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	p := Pagination{}.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PageSize)

	p = Pagination{Page: -3, PageSize: 100000}.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 250, p.PageSize)
}

func TestOffsetLimit(t *testing.T) {
	p := Pagination{Page: 3, PageSize: 25}
	assert.Equal(t, 50, p.Offset())
	assert.Equal(t, 25, p.Limit())
}

func TestBuildPageInfo(t *testing.T) {
	info := BuildPageInfo(Pagination{Page: 2, PageSize: 10}, 35)
	assert.Equal(t, 2, info.Page)
	assert.Equal(t, 10, info.PageSize)
	assert.EqualValues(t, 35, info.TotalCount)
	assert.Equal(t, 4, info.TotalPages)

	info = BuildPageInfo(Pagination{}, 0)
	assert.Equal(t, 0, info.TotalPages)
}
