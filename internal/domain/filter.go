package domain

import "strings"

// ProductFilter is a store-side predicate. Every set field is AND'ed.
type ProductFilter struct {
	Categoria      string
	Subcategoria   string
	Laboratorio    string // substring, case-sensitive
	RequiereReceta *bool
	PrecioMin      *float64
	PrecioMax      *float64

	// Search matches nombre OR descripcion as stored (case-sensitive).
	Search string
	// Termino matches the lowercased search text; it must already be lowercase.
	Termino string

	SoloActivos bool
}

// Matches evaluates the predicate in process. Store adapters that cannot push
// the filter down use it directly.
func (f ProductFilter) Matches(p *Product) bool {
	if f.Categoria != "" && p.Categoria != f.Categoria {
		return false
	}
	if f.Subcategoria != "" && (p.Subcategoria == nil || *p.Subcategoria != f.Subcategoria) {
		return false
	}
	if f.Laboratorio != "" && !strings.Contains(p.Laboratorio, f.Laboratorio) {
		return false
	}
	if f.RequiereReceta != nil && p.RequiereReceta != *f.RequiereReceta {
		return false
	}
	if f.PrecioMin != nil && p.Precio < *f.PrecioMin {
		return false
	}
	if f.PrecioMax != nil && p.Precio > *f.PrecioMax {
		return false
	}
	if f.Search != "" && !strings.Contains(p.Nombre, f.Search) && !strings.Contains(p.Descripcion, f.Search) {
		return false
	}
	if f.Termino != "" {
		text := p.TextoBusqueda
		if text == "" {
			text = p.SearchText()
		}
		if !strings.Contains(text, f.Termino) {
			return false
		}
	}
	if f.SoloActivos && !p.Activo {
		return false
	}
	return true
}
