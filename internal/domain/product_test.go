package domain

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCursorRoundTrip(t *testing.T) {
	c := &Cursor{TenantID: "acme", Codigo: "MED-LX1-ABC123"}

	token, err := EncodeCursor(c)
	require.NoError(t, err)

	got, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, c, got)

	t.Run("unescaped plus survives", func(t *testing.T) {
		// Pick a key whose encoding contains '+'.
		c := &Cursor{TenantID: "t>>>", Codigo: "c~~~"}
		token, err := EncodeCursor(c)
		require.NoError(t, err)
		if !strings.Contains(token, "+") {
			t.Skip("encoding has no '+'")
		}
		got, err := DecodeCursor(strings.ReplaceAll(token, "+", " "))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	})

	t.Run("empty and nil", func(t *testing.T) {
		token, err := EncodeCursor(nil)
		require.NoError(t, err)
		assert.Empty(t, token)

		got, err := DecodeCursor("")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	inputs := []string{
		"%%%not-base64",
		base64.StdEncoding.EncodeToString([]byte("not json")),
		base64.StdEncoding.EncodeToString([]byte(`{"tenant_id":"acme"}`)),
	}
	for _, in := range inputs {
		_, err := DecodeCursor(in)
		assert.True(t, errors.Is(err, ErrInvalidCursor), in)
	}
}

func TestProductFilterMatches(t *testing.T) {
	p := Product{
		Nombre:         "Ibuprofeno 400mg",
		Descripcion:    "Antiinflamatorio",
		Categoria:      "Analgésicos",
		Subcategoria:   strPtr("Antiinflamatorios"),
		Laboratorio:    "Bayer",
		Precio:         15.5,
		RequiereReceta: false,
		Activo:         true,
	}
	p.RefreshSearchText()

	yes, no := true, false
	low, high := 10.0, 15.5

	tests := []struct {
		name   string
		filter ProductFilter
		want   bool
	}{
		{"empty", ProductFilter{}, true},
		{"categoria", ProductFilter{Categoria: "Analgésicos"}, true},
		{"subcategoria mismatch", ProductFilter{Subcategoria: "Paracetamol"}, false},
		{"laboratorio substring", ProductFilter{Laboratorio: "aye"}, true},
		{"laboratorio is case-sensitive", ProductFilter{Laboratorio: "bayer"}, false},
		{"receta false", ProductFilter{RequiereReceta: &no}, true},
		{"receta true", ProductFilter{RequiereReceta: &yes}, false},
		{"inclusive range", ProductFilter{PrecioMin: &low, PrecioMax: &high}, true},
		{"above max", ProductFilter{PrecioMax: &low}, false},
		{"search descripcion", ProductFilter{Search: "inflama"}, true},
		{"search as stored", ProductFilter{Search: "ibuprofeno"}, false},
		{"termino lowercased", ProductFilter{Termino: "ibuprofeno"}, true},
		{"termino subcategoria", ProductFilter{Termino: "antiinflamatorios"}, true},
		{"termino does not span fields", ProductFilter{Termino: "400mgantiinflamatorio"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(&p))
		})
	}

	inactive := p
	inactive.Activo = false
	assert.False(t, ProductFilter{SoloActivos: true}.Matches(&inactive))
}

func TestProductPatchApply(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	base := Product{
		TenantID:          "acme",
		Codigo:            "MED-1-AAAAAA",
		Nombre:            "Viejo",
		Precio:            10,
		Subcategoria:      strPtr("Paracetamol"),
		FechaCreacion:     created,
		FechaModificacion: created,
		Activo:            true,
	}

	t.Run("sets fields and leaves the source untouched", func(t *testing.T) {
		nombre, precio, activo := "Nuevo", 12.5, false
		patch := &ProductPatch{Nombre: &nombre, Precio: &precio, Activo: &activo, FechaModificacion: created.Add(time.Second)}

		out := patch.Apply(base)

		assert.Equal(t, "Nuevo", out.Nombre)
		assert.Equal(t, 12.5, out.Precio)
		assert.False(t, out.Activo)
		assert.Equal(t, created.Add(time.Second), out.FechaModificacion)
		assert.Equal(t, "Viejo", base.Nombre)
		assert.Equal(t, base.Codigo, out.Codigo)
	})

	t.Run("clears subcategoria", func(t *testing.T) {
		out := (&ProductPatch{ClearSubcat: true}).Apply(base)
		assert.Nil(t, out.Subcategoria)
		require.NotNil(t, base.Subcategoria)
	})

	t.Run("subcategoria is copied", func(t *testing.T) {
		sub := "Aspirinas"
		out := (&ProductPatch{Subcategoria: &sub}).Apply(base)
		sub = "changed"
		assert.Equal(t, "Aspirinas", *out.Subcategoria)
	})
}
