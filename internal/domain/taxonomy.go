package domain

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

type Category struct {
	Name          string
	Subcategories []string
}

// Taxonomy is the fixed category -> subcategories registry. Order is significant:
// it is the order used in error messages and in the taxonomy endpoints.
type Taxonomy []Category

// Catalogo is the process-wide registry. It is never mutated after init.
var Catalogo = Taxonomy{
	// Medicamentos
	{"Analgésicos", []string{"Antiinflamatorios", "Paracetamol", "Aspirinas", "Opioides"}},
	{"Antibióticos", []string{"Penicilinas", "Cefalosporinas", "Macrólidos", "Quinolonas"}},
	{"Vitaminas y Minerales", []string{"Multivitamínicos", "Vitamina C", "Vitamina D", "Vitamina B", "Calcio", "Hierro", "Magnesio"}},
	{"Digestivos", []string{"Antiácidos", "Laxantes", "Antidiarreicos", "Probióticos", "Enzimas Digestivas"}},
	{"Respiratorios", []string{"Jarabes", "Descongestionantes", "Broncodilatadores", "Antihistamínicos"}},
	{"Cardiovasculares", []string{"Antihipertensivos", "Diuréticos", "Anticoagulantes", "Estatinas"}},

	// Cuidado personal
	{"Higiene Personal", []string{"Jabones", "Champús", "Acondicionadores", "Desodorantes", "Gel de Baño"}},
	{"Cuidado Bucal", []string{"Pasta Dental", "Enjuague Bucal", "Hilo Dental", "Cepillos de Dientes"}},
	{"Protección Solar", []string{"Bloqueadores", "After Sun", "Bronceadores", "Protector Labial"}},
	{"Cuidado de la Piel", []string{"Cremas Hidratantes", "Lociones", "Tratamientos Anti-edad", "Limpiadores Faciales"}},
	{"Cuidado Capilar", []string{"Tratamientos", "Tintes", "Mascarillas", "Aceites Capilares"}},

	// Bebé y maternidad
	{"Alimentación Infantil", []string{"Leches de Fórmula", "Papillas", "Cereales", "Complementos Nutricionales"}},
	{"Cuidado del Bebé", []string{"Pañales", "Toallitas", "Cremas", "Champús Bebé", "Talcos"}},
	{"Maternidad", []string{"Vitaminas Prenatales", "Cremas Anti-estrías", "Suplementos Lactancia"}},

	// Nutrición y bienestar
	{"Suplementos Deportivos", []string{"Proteínas", "Pre-entreno", "Post-entreno", "Aminoácidos", "Creatina"}},
	{"Productos Naturales", []string{"Hierbas Medicinales", "Aceites Esenciales", "Suplementos Herbales"}},
	{"Control de Peso", []string{"Quemadores de Grasa", "Bloqueadores", "Sustitutos de Comida"}},

	// Adulto mayor
	{"Tercera Edad", []string{"Suplementos Óseos", "Memoria y Concentración", "Articulaciones", "Energía"}},

	// Productos médicos
	{"Equipos Médicos", []string{"Tensiómetros", "Glucómetros", "Termómetros", "Nebulizadores"}},
	{"Primeros Auxilios", []string{"Vendas", "Gasas", "Alcohol", "Curitas", "Antisépticos"}},

	// Sexualidad
	{"Salud Sexual", []string{"Preservativos", "Lubricantes", "Pruebas de Embarazo", "Anticonceptivos"}},

	// Hogar
	{"Limpieza y Desinfección", []string{"Desinfectantes", "Alcohol en Gel", "Mascarillas", "Guantes"}},
}

// Lookup returns the subcategories of a category. Names are matched exactly.
func (t Taxonomy) Lookup(categoria string) ([]string, bool) {
	for _, c := range t {
		if c.Name == categoria {
			return c.Subcategories, true
		}
	}
	return nil, false
}

func (t Taxonomy) Names() []string {
	names := make([]string, len(t))
	for i, c := range t {
		names[i] = c.Name
	}
	return names
}

// Validate checks that categoria is registered and, when subcategoria is
// non-empty, that it belongs to categoria.
func (t Taxonomy) Validate(categoria, subcategoria string) error {
	subs, ok := t.Lookup(categoria)
	if !ok {
		return NewValidationError(fmt.Sprintf("Categoría '%s' no válida. Categorías disponibles: %s",
			categoria, strings.Join(t.Names(), ", ")))
	}
	if subcategoria == "" {
		return nil
	}
	for _, s := range subs {
		if s == subcategoria {
			return nil
		}
	}
	return NewValidationError(fmt.Sprintf("Subcategoría '%s' no válida para '%s'. Subcategorías disponibles: %s",
		subcategoria, categoria, strings.Join(subs, ", ")))
}

// MarshalJSON renders the registry as a JSON object, keeping registry order.
func (t Taxonomy) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		subs := c.Subcategories
		if subs == nil {
			subs = []string{}
		}
		val, err := json.Marshal(subs)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
