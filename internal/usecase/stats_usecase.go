package usecase

import (
	"context"
	"fmt"
	"sort"

	"farmacia-catalogo/config"
	"farmacia-catalogo/internal/domain"
)

// PriceRange is nil-valued when the tenant has no products.
type PriceRange struct {
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
	Promedio *float64 `json:"promedio"`
}

type CatalogStats struct {
	TotalProductos        int             `json:"total_productos"`
	PorCategoria          map[string]int  `json:"por_categoria"`
	PorSubcategoria       map[string]int  `json:"por_subcategoria"`
	Laboratorios          []string        `json:"laboratorios"`
	RangoPrecios          PriceRange      `json:"rango_precios"`
	ConReceta             int             `json:"con_receta"`
	SinReceta             int             `json:"sin_receta"`
	StockTotal            int             `json:"stock_total"`
	CategoriasDisponibles domain.Taxonomy `json:"categorias_disponibles"`
}

// StatsUsecase aggregates a tenant's whole catalog in memory.
type StatsUsecase struct {
	repo     domain.ProductRepository
	taxonomy domain.Taxonomy
	cfg      *config.Config
}

func NewStatsUsecase(repo domain.ProductRepository, taxonomy domain.Taxonomy, cfg *config.Config) *StatsUsecase {
	return &StatsUsecase{
		repo:     repo,
		taxonomy: taxonomy,
		cfg:      cfg,
	}
}

// Get reads the tenant's whole partition on every call. Nothing is cached.
func (uc *StatsUsecase) Get(ctx context.Context, tenantID string) (*CatalogStats, error) {
	ctx, cancel := storeContext(ctx, uc.cfg.StoreTimeout)
	defer cancel()

	products, err := uc.repo.QueryAll(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load products for stats: %w", err)
	}
	return Aggregate(products, uc.taxonomy), nil
}

// Aggregate computes the statistics in a single pass.
func Aggregate(products []domain.Product, taxonomy domain.Taxonomy) *CatalogStats {
	stats := &CatalogStats{
		TotalProductos:        len(products),
		PorCategoria:          map[string]int{},
		PorSubcategoria:       map[string]int{},
		Laboratorios:          []string{},
		CategoriasDisponibles: taxonomy,
	}

	labs := map[string]struct{}{}
	var sum float64
	for i := range products {
		p := &products[i]

		if p.Categoria != "" {
			stats.PorCategoria[p.Categoria]++
		}
		if p.Subcategoria != nil && *p.Subcategoria != "" {
			stats.PorSubcategoria[*p.Subcategoria]++
		}
		if p.Laboratorio != "" {
			if _, seen := labs[p.Laboratorio]; !seen {
				labs[p.Laboratorio] = struct{}{}
				stats.Laboratorios = append(stats.Laboratorios, p.Laboratorio)
			}
		}

		precio := p.Precio
		if stats.RangoPrecios.Min == nil || precio < *stats.RangoPrecios.Min {
			stats.RangoPrecios.Min = &precio
		}
		if stats.RangoPrecios.Max == nil || precio > *stats.RangoPrecios.Max {
			stats.RangoPrecios.Max = &precio
		}
		sum += precio

		if p.RequiereReceta {
			stats.ConReceta++
		} else {
			stats.SinReceta++
		}
		stats.StockTotal += p.StockDisponible
	}

	if len(products) > 0 {
		avg := sum / float64(len(products))
		stats.RangoPrecios.Promedio = &avg
	}
	sort.Strings(stats.Laboratorios)
	return stats
}
