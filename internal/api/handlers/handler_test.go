package handlers

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuflow/kuflow-sdk-go/internal/logger"
	"github.com/kuflow/kuflow-sdk-go/internal/store"
)

func init() {
	logger.Init("error", false)
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    pageRequest
		wantErr bool
	}{
		{"defaults", "", pageRequest{page: 0, size: defaultPageSize}, false},
		{"explicit", "page=2&size=10", pageRequest{page: 2, size: 10}, false},
		{"descending sort", "sort=createdAt,DESC", pageRequest{size: defaultPageSize, desc: true}, false},
		{"ascending sort", "sort=createdAt,asc", pageRequest{size: defaultPageSize}, false},
		{"negative page", "page=-1", pageRequest{}, true},
		{"size too large", "size=1001", pageRequest{}, true},
		{"size not a number", "size=ten", pageRequest{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			got, err := parsePage(r)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	content, meta := paginate(items, pageRequest{page: 1, size: 2})
	assert.Equal(t, []int{3, 4}, content)
	assert.Equal(t, int64(5), meta.TotalElements)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, 1, meta.Page)

	content, _ = paginate(items, pageRequest{page: 0, size: 2, desc: true})
	assert.Equal(t, []int{5, 4}, content)
	// the input is left alone
	assert.Equal(t, []int{1, 2, 3, 4, 5}, items)

	content, meta = paginate(items, pageRequest{page: 9, size: 2})
	assert.Empty(t, content)
	assert.Equal(t, 9, meta.Page)

	content, meta = paginate(items, pageRequest{page: math.MaxInt, size: 1000})
	assert.Empty(t, content)
	assert.Equal(t, math.MaxInt, meta.Page)

	content, meta = paginate([]int{}, pageRequest{size: 25})
	assert.Empty(t, content)
	assert.Equal(t, 0, meta.TotalPages)
}

func TestNew_DerivesTenant(t *testing.T) {
	a := New(store.NewMemoryStore(), Config{ClientID: "app"})
	b := New(store.NewMemoryStore(), Config{ClientID: "app"})
	c := New(store.NewMemoryStore(), Config{ClientID: "other"})

	assert.NotEqual(t, uuid.Nil, a.TenantID())
	assert.Equal(t, a.TenantID(), b.TenantID())
	assert.NotEqual(t, a.TenantID(), c.TenantID())

	fixed := uuid.New()
	assert.Equal(t, fixed, New(store.NewMemoryStore(), Config{TenantID: fixed}).TenantID())
}

func TestPrincipals(t *testing.T) {
	app := ApplicationPrincipal("app")
	assert.Equal(t, app.ID, ApplicationPrincipal("app").ID)
	assert.Equal(t, app.ID, app.Application.ID)

	user := UserPrincipal("Ada@Example.com")
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, user.ID, UserPrincipal("ada@example.com").ID)
	assert.NotEqual(t, app.ID, user.ID)
}
