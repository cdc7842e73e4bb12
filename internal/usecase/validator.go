package usecase

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"farmacia-catalogo/internal/domain"
)

const (
	msgPrecioInvalido = "Precio debe ser un número mayor a 0"
	msgStockInvalido  = "Stock disponible debe ser un número mayor o igual a 0"
)

// requiredFields are checked in this order; the first missing one is reported.
var requiredFields = []string{"nombre", "precio", "descripcion", "categoria", "laboratorio", "presentacion"}

// Validator enforces the product field rules on decoded JSON payloads.
type Validator struct {
	taxonomy domain.Taxonomy
}

func NewValidator(taxonomy domain.Taxonomy) *Validator {
	return &Validator{taxonomy: taxonomy}
}

func (v *Validator) Taxonomy() domain.Taxonomy {
	return v.taxonomy
}

// ValidateCreate checks a create payload and returns the product fields it
// carries. Server-owned fields (tenant, code, timestamps, activo) are left zero.
func (v *Validator) ValidateCreate(body map[string]interface{}) (*domain.Product, error) {
	for _, field := range requiredFields {
		if !truthy(body[field]) {
			return nil, domain.NewValidationError("Campo requerido: " + field)
		}
	}

	p := &domain.Product{}
	textFields := []struct {
		name string
		dst  *string
	}{
		{"nombre", &p.Nombre},
		{"descripcion", &p.Descripcion},
		{"categoria", &p.Categoria},
		{"laboratorio", &p.Laboratorio},
		{"presentacion", &p.Presentacion},
	}
	for _, f := range textFields {
		s, ok := body[f.name].(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, domain.NewValidationError("Campo requerido: " + f.name)
		}
		*f.dst = strings.TrimSpace(s)
	}

	precio, ok := parseNumber(body["precio"])
	if !ok || precio <= 0 {
		return nil, domain.NewValidationError(msgPrecioInvalido)
	}
	p.Precio = precio

	// Non-numeric stock defaults to 0; a number must fit.
	if n, ok := parseNumber(body["stock_disponible"]); ok {
		stock, inRange := toInteger(n)
		if !inRange || stock < 0 {
			return nil, domain.NewValidationError(msgStockInvalido)
		}
		p.StockDisponible = stock
	}

	if raw := body["subcategoria"]; truthy(raw) {
		sub := strings.TrimSpace(toText(raw))
		if sub != "" {
			p.Subcategoria = &sub
		}
	}
	if err := v.taxonomy.Validate(p.Categoria, deref(p.Subcategoria)); err != nil {
		return nil, err
	}

	p.RequiereReceta = truthy(body["requiere_receta"])
	if s, ok := body["imagen_url"].(string); ok {
		p.ImagenURL = strings.TrimSpace(s)
	}
	return p, nil
}

// ValidateUpdate checks the mutable fields present in body and builds a patch.
// Taxonomy membership of the resulting pair is checked by ValidateMerged once
// the current item is known.
func (v *Validator) ValidateUpdate(body map[string]interface{}) (*domain.ProductPatch, error) {
	patch := &domain.ProductPatch{}

	for _, field := range []string{"nombre", "descripcion", "laboratorio", "presentacion"} {
		raw, present := body[field]
		if !present {
			continue
		}
		s, ok := raw.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, domain.NewValidationError(field + " no puede estar vacío")
		}
		s = strings.TrimSpace(s)
		switch field {
		case "nombre":
			patch.Nombre = &s
		case "descripcion":
			patch.Descripcion = &s
		case "laboratorio":
			patch.Laboratorio = &s
		case "presentacion":
			patch.Presentacion = &s
		}
	}

	if raw, present := body["precio"]; present {
		precio, ok := parseNumber(raw)
		if !ok || precio <= 0 {
			return nil, domain.NewValidationError(msgPrecioInvalido)
		}
		patch.Precio = &precio
	}

	if raw, present := body["stock_disponible"]; present {
		stock, ok := parseInteger(raw)
		if !ok || stock < 0 {
			return nil, domain.NewValidationError(msgStockInvalido)
		}
		patch.StockDisponible = &stock
	}

	if raw, present := body["categoria"]; present {
		categoria := strings.TrimSpace(toText(raw))
		if _, ok := v.taxonomy.Lookup(categoria); !ok {
			return nil, v.taxonomy.Validate(categoria, "")
		}
		patch.Categoria = &categoria
	}

	if raw, present := body["subcategoria"]; present {
		sub := ""
		if truthy(raw) {
			sub = strings.TrimSpace(toText(raw))
		}
		if sub == "" {
			patch.ClearSubcat = true
		} else {
			patch.Subcategoria = &sub
		}
	}

	if raw, present := body["requiere_receta"]; present {
		b := truthy(raw)
		patch.RequiereReceta = &b
	}

	if raw, present := body["imagen_url"]; present {
		url := ""
		switch s := raw.(type) {
		case string:
			url = strings.TrimSpace(s)
		case nil:
		default:
			return nil, domain.NewValidationError("imagen_url debe ser un texto")
		}
		patch.ImagenURL = &url
	}

	if raw, present := body["activo"]; present {
		b := truthy(raw)
		patch.Activo = &b
	}

	return patch, nil
}

// ValidateMerged checks the category pair of the item as it will be stored.
func (v *Validator) ValidateMerged(p *domain.Product) error {
	return v.taxonomy.Validate(p.Categoria, deref(p.Subcategoria))
}

// --- coercion helpers for loosely typed JSON ---

// truthy follows JavaScript truthiness.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	default:
		return true
	}
}

// parseNumber accepts JSON numbers and numeric strings.
func parseNumber(v interface{}) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseInteger truncates fractional values, like parseInt does.
func parseInteger(v interface{}) (int, bool) {
	f, ok := parseNumber(v)
	if !ok {
		return 0, false
	}
	return toInteger(f)
}

// toInteger rejects values outside the int32 range.
func toInteger(f float64) (int, bool) {
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(math.Trunc(f)), true
}

func toText(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
