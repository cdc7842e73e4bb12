package usecase

import (
	"context"
	"testing"

	"farmacia-catalogo/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	t.Run("empty catalog", func(t *testing.T) {
		stats := Aggregate(nil, domain.Catalogo)

		assert.Zero(t, stats.TotalProductos)
		assert.Empty(t, stats.PorCategoria)
		assert.Equal(t, []string{}, stats.Laboratorios)
		assert.Nil(t, stats.RangoPrecios.Min)
		assert.Nil(t, stats.RangoPrecios.Max)
		assert.Nil(t, stats.RangoPrecios.Promedio)
		assert.Len(t, stats.CategoriasDisponibles, len(domain.Catalogo))
	})

	t.Run("counts and ranges", func(t *testing.T) {
		sub := "Paracetamol"
		products := []domain.Product{
			{Categoria: "Analgésicos", Subcategoria: &sub, Laboratorio: "Genfar", Precio: 10, StockDisponible: 5, RequiereReceta: false},
			{Categoria: "Analgésicos", Laboratorio: "Bayer", Precio: 2, StockDisponible: 1, RequiereReceta: true},
			{Categoria: "Antibióticos", Laboratorio: "Genfar", Precio: 30, StockDisponible: 0, RequiereReceta: true},
		}

		stats := Aggregate(products, domain.Catalogo)

		assert.Equal(t, 3, stats.TotalProductos)
		assert.Equal(t, map[string]int{"Analgésicos": 2, "Antibióticos": 1}, stats.PorCategoria)
		assert.Equal(t, map[string]int{"Paracetamol": 1}, stats.PorSubcategoria)
		assert.Equal(t, []string{"Bayer", "Genfar"}, stats.Laboratorios)
		assert.Equal(t, 2, stats.ConReceta)
		assert.Equal(t, 1, stats.SinReceta)
		assert.Equal(t, 6, stats.StockTotal)
		require.NotNil(t, stats.RangoPrecios.Promedio)
		assert.Equal(t, 2.0, *stats.RangoPrecios.Min)
		assert.Equal(t, 30.0, *stats.RangoPrecios.Max)
		assert.InDelta(t, 14.0, *stats.RangoPrecios.Promedio, 1e-9)
	})
}

func TestStatsUsecase_SeesEveryWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	// Two instances over one store, as two replicas would be.
	reader := NewStatsUsecase(f.repo, domain.Catalogo, testConfig())
	other := NewStatsUsecase(f.repo, domain.Catalogo, testConfig())

	before, err := reader.Get(ctx, "acme")
	require.NoError(t, err)
	assert.Zero(t, before.TotalProductos)

	_, err = f.uc.Create(ctx, "acme", validCreateBody())
	require.NoError(t, err)
	afterCreate, err := reader.Get(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 1, afterCreate.TotalProductos)

	// A write that bypasses the usecase is visible too.
	require.NoError(t, f.repo.Put(ctx, &domain.Product{TenantID: "acme", Codigo: "MED-RAW", Categoria: "Analgésicos", Precio: 1}))
	got, err := other.Get(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalProductos)

	foreign, err := reader.Get(ctx, "globex")
	require.NoError(t, err)
	assert.Zero(t, foreign.TotalProductos)
}
