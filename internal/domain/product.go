package domain

import (
	"context"
	"strings"
	"time"
)

// Product is the only persistent entity. Partition key tenant_id, sort key codigo.
type Product struct {
	TenantID          string    `json:"tenant_id" dynamodbav:"tenant_id"`
	Codigo            string    `json:"codigo" dynamodbav:"codigo"`
	Nombre            string    `json:"nombre" dynamodbav:"nombre"`
	Precio            float64   `json:"precio" dynamodbav:"precio"`
	Descripcion       string    `json:"descripcion" dynamodbav:"descripcion"`
	Categoria         string    `json:"categoria" dynamodbav:"categoria"`
	Subcategoria      *string   `json:"subcategoria" dynamodbav:"subcategoria"`
	StockDisponible   int       `json:"stock_disponible" dynamodbav:"stock_disponible"`
	RequiereReceta    bool      `json:"requiere_receta" dynamodbav:"requiere_receta"`
	Laboratorio       string    `json:"laboratorio" dynamodbav:"laboratorio"`
	Presentacion      string    `json:"presentacion" dynamodbav:"presentacion"`
	ImagenURL         string    `json:"imagen_url" dynamodbav:"imagen_url"`
	FechaCreacion     time.Time `json:"fecha_creacion" dynamodbav:"fecha_creacion"`
	FechaModificacion time.Time `json:"fecha_modificacion" dynamodbav:"fecha_modificacion"`
	Activo            bool      `json:"activo" dynamodbav:"activo"`

	// Lowercased copy of the searchable fields; the store's contains() is case-sensitive.
	TextoBusqueda string `json:"-" dynamodbav:"texto_busqueda,omitempty"`
}

// searchFieldSeparator keeps a term from matching across two adjacent fields.
const searchFieldSeparator = "\n"

// SearchText returns the lowercased, separator-joined searchable fields.
func (p *Product) SearchText() string {
	fields := []string{p.Nombre, p.Descripcion, p.Categoria, "", p.Laboratorio}
	if p.Subcategoria != nil {
		fields[3] = *p.Subcategoria
	}
	return strings.ToLower(strings.Join(fields, searchFieldSeparator))
}

func (p *Product) RefreshSearchText() {
	p.TextoBusqueda = p.SearchText()
}

// Clone returns a deep copy so callers never share the subcategoria pointer.
func (p Product) Clone() Product {
	if p.Subcategoria != nil {
		s := *p.Subcategoria
		p.Subcategoria = &s
	}
	return p
}

// ProductPatch is a partial update. Nil fields are left untouched.
type ProductPatch struct {
	Nombre          *string
	Precio          *float64
	Descripcion     *string
	Categoria       *string
	Subcategoria    *string
	ClearSubcat     bool
	StockDisponible *int
	RequiereReceta  *bool
	Laboratorio     *string
	Presentacion    *string
	ImagenURL       *string
	Activo          *bool

	FechaModificacion time.Time
	TextoBusqueda     *string
}

// Apply returns p with the patch applied. p itself is not modified.
func (pp *ProductPatch) Apply(p Product) Product {
	out := p.Clone()
	if pp.Nombre != nil {
		out.Nombre = *pp.Nombre
	}
	if pp.Precio != nil {
		out.Precio = *pp.Precio
	}
	if pp.Descripcion != nil {
		out.Descripcion = *pp.Descripcion
	}
	if pp.Categoria != nil {
		out.Categoria = *pp.Categoria
	}
	if pp.ClearSubcat {
		out.Subcategoria = nil
	} else if pp.Subcategoria != nil {
		s := *pp.Subcategoria
		out.Subcategoria = &s
	}
	if pp.StockDisponible != nil {
		out.StockDisponible = *pp.StockDisponible
	}
	if pp.RequiereReceta != nil {
		out.RequiereReceta = *pp.RequiereReceta
	}
	if pp.Laboratorio != nil {
		out.Laboratorio = *pp.Laboratorio
	}
	if pp.Presentacion != nil {
		out.Presentacion = *pp.Presentacion
	}
	if pp.ImagenURL != nil {
		out.ImagenURL = *pp.ImagenURL
	}
	if pp.Activo != nil {
		out.Activo = *pp.Activo
	}
	if !pp.FechaModificacion.IsZero() {
		out.FechaModificacion = pp.FechaModificacion
	}
	if pp.TextoBusqueda != nil {
		out.TextoBusqueda = *pp.TextoBusqueda
	}
	return out
}

// QueryOptions drives a partition scan within one tenant.
type QueryOptions struct {
	Limit     int32 // 0 means no limit
	StartKey  *Cursor
	Filter    ProductFilter
	Ascending bool // sort-key order; default is newest first
}

// Page is one store page. NextKey is nil when the store reported no more work.
type Page struct {
	Items   []Product
	NextKey *Cursor
}

func (p *Page) HasMore() bool {
	return p.NextKey != nil
}

// --- Interfaces ---

type ProductRepository interface {
	Get(ctx context.Context, tenantID, codigo string) (*Product, error)
	// Put writes the whole item unconditionally.
	Put(ctx context.Context, product *Product) error
	// Insert writes the item only if (tenant_id, codigo) is free, else ErrCodeConflict.
	Insert(ctx context.Context, product *Product) error
	// Update fails with ErrProductNotFound when the item does not exist.
	Update(ctx context.Context, tenantID, codigo string, patch *ProductPatch) (*Product, error)
	// Delete returns the removed item, or ErrProductNotFound.
	Delete(ctx context.Context, tenantID, codigo string) (*Product, error)
	Query(ctx context.Context, tenantID string, opts QueryOptions) (*Page, error)
	// QueryAll walks every page of the tenant partition.
	QueryAll(ctx context.Context, tenantID string) ([]Product, error)
}
