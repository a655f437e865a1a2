package option

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithQuerySortBy(t *testing.T) {
	allowed := map[string]string{"name": "products.name", "created_at": "products.created_at"}

	assert.Equal(t, "products.name ASC", WithQuerySortBy("name", "", "products.created_at DESC", allowed))
	assert.Equal(t, "products.name DESC", WithQuerySortBy("Name", "desc", "products.created_at DESC", allowed))
	assert.Equal(t, "products.created_at DESC", WithQuerySortBy("", "", "products.created_at DESC", allowed))
	assert.Equal(t, "products.created_at DESC", WithQuerySortBy("selling_price; DROP TABLE products", "asc", "products.created_at DESC", allowed))
}
