package memory

import (
	"context"
	"fmt"
	"testing"

	"farmacia-catalogo/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, repo domain.ProductRepository, tenant string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		p := &domain.Product{
			TenantID: tenant,
			Codigo:   fmt.Sprintf("MED-%03d-AAAAAA", i),
			Nombre:   fmt.Sprintf("Producto %d", i),
			Precio:   float64(i + 1),
			Activo:   i%2 == 0,
		}
		require.NoError(t, repo.Insert(context.Background(), p))
	}
}

func TestQueryPagesAreDisjointAndComplete(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()
	seed(t, repo, "acme", 45)

	seen := map[string]bool{}
	var cursor *domain.Cursor
	pages := 0
	for {
		page, err := repo.Query(ctx, "acme", domain.QueryOptions{Limit: 20, StartKey: cursor})
		require.NoError(t, err)
		pages++
		for _, p := range page.Items {
			assert.False(t, seen[p.Codigo], "duplicate %s", p.Codigo)
			seen[p.Codigo] = true
		}
		if !page.HasMore() {
			break
		}
		cursor = page.NextKey
	}

	assert.Equal(t, 3, pages)
	assert.Len(t, seen, 45)
}

func TestQueryOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()
	seed(t, repo, "acme", 6)

	t.Run("newest first by default", func(t *testing.T) {
		page, err := repo.Query(ctx, "acme", domain.QueryOptions{})
		require.NoError(t, err)
		require.Len(t, page.Items, 6)
		assert.Equal(t, "MED-005-AAAAAA", page.Items[0].Codigo)
		assert.Nil(t, page.NextKey)
	})

	t.Run("ascending", func(t *testing.T) {
		page, err := repo.Query(ctx, "acme", domain.QueryOptions{Ascending: true, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, "MED-000-AAAAAA", page.Items[0].Codigo)
		require.NotNil(t, page.NextKey)
		assert.Equal(t, "MED-001-AAAAAA", page.NextKey.Codigo)
	})

	t.Run("limit counts evaluated items, not matches", func(t *testing.T) {
		page, err := repo.Query(ctx, "acme", domain.QueryOptions{
			Limit:  4,
			Filter: domain.ProductFilter{SoloActivos: true},
		})
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
		assert.True(t, page.HasMore())
	})
}

func TestTenantIsolation(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()
	seed(t, repo, "a", 1)

	_, err := repo.Get(ctx, "b", "MED-000-AAAAAA")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = repo.Delete(ctx, "b", "MED-000-AAAAAA")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	nombre := "otro"
	_, err = repo.Update(ctx, "b", "MED-000-AAAAAA", &domain.ProductPatch{Nombre: &nombre})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	all, err := repo.QueryAll(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestInsertConflictAndMutations(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()
	seed(t, repo, "acme", 1)

	err := repo.Insert(ctx, &domain.Product{TenantID: "acme", Codigo: "MED-000-AAAAAA"})
	assert.ErrorIs(t, err, domain.ErrCodeConflict)

	precio := 99.0
	updated, err := repo.Update(ctx, "acme", "MED-000-AAAAAA", &domain.ProductPatch{Precio: &precio})
	require.NoError(t, err)
	assert.Equal(t, 99.0, updated.Precio)

	// Returned values are copies.
	updated.Precio = 1
	got, err := repo.Get(ctx, "acme", "MED-000-AAAAAA")
	require.NoError(t, err)
	assert.Equal(t, 99.0, got.Precio)

	old, err := repo.Delete(ctx, "acme", "MED-000-AAAAAA")
	require.NoError(t, err)
	assert.Equal(t, 99.0, old.Precio)

	_, err = repo.Get(ctx, "acme", "MED-000-AAAAAA")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
