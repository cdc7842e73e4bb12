package domain

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxonomyValidate(t *testing.T) {
	tests := []struct {
		name         string
		categoria    string
		subcategoria string
		wantErr      string
	}{
		{"known pair", "Analgésicos", "Antiinflamatorios", ""},
		{"category only", "Cuidado Capilar", "", ""},
		{"unknown category", "Juguetes", "", "Categoría 'Juguetes' no válida. Categorías disponibles: Analgésicos, Antibióticos,"},
		{"subcategory from another category", "Analgésicos", "Penicilinas",
			"Subcategoría 'Penicilinas' no válida para 'Analgésicos'. Subcategorías disponibles: Antiinflamatorios, Paracetamol, Aspirinas, Opioides"},
		{"no case folding", "analgésicos", "", "Categoría 'analgésicos' no válida"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Catalogo.Validate(tt.categoria, tt.subcategoria)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.True(t, strings.HasPrefix(err.Error(), tt.wantErr), err.Error())
		})
	}
}

func TestTaxonomyShape(t *testing.T) {
	assert.Len(t, Catalogo, 22)
	assert.Equal(t, "Analgésicos", Catalogo[0].Name)
	assert.Equal(t, "Limpieza y Desinfección", Catalogo[len(Catalogo)-1].Name)

	seen := map[string]bool{}
	for _, c := range Catalogo {
		assert.False(t, seen[c.Name], "duplicate category %s", c.Name)
		seen[c.Name] = true

		subs := map[string]bool{}
		for _, s := range c.Subcategories {
			assert.False(t, subs[s], "duplicate subcategory %s in %s", s, c.Name)
			subs[s] = true
		}
	}
}

func TestTaxonomyMarshalKeepsOrder(t *testing.T) {
	tax := Taxonomy{
		{"Zeta", []string{"b", "a"}},
		{"Alfa", nil},
	}
	raw, err := json.Marshal(tax)
	require.NoError(t, err)
	assert.Equal(t, `{"Zeta":["b","a"],"Alfa":[]}`, string(raw))

	raw, err = json.Marshal(Catalogo)
	require.NoError(t, err)
	var decoded map[string][]string
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Len(t, decoded, 22)
	assert.Equal(t, []string{"Antiinflamatorios", "Paracetamol", "Aspirinas", "Opioides"}, decoded["Analgésicos"])
}
