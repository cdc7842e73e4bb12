package v1

import (
	"net/http"
	"strings"

	"farmacia-catalogo/internal/domain"
	"farmacia-catalogo/internal/usecase"
	"farmacia-catalogo/pkg/utils"
)

type ProductHandler struct {
	catalogUC *usecase.CatalogUsecase
}

func NewProductHandler(uc *usecase.CatalogUsecase) *ProductHandler {
	return &ProductHandler{catalogUC: uc}
}

type productListResponse struct {
	Productos        []domain.Product `json:"productos"`
	Count            int              `json:"count"`
	NextKey          *string          `json:"nextKey"`
	HasMore          bool             `json:"hasMore"`
	FiltrosAplicados *appliedFilters  `json:"filtros_aplicados,omitempty"`
}

// appliedFilters echoes what the client asked for; absent params are omitted.
type appliedFilters struct {
	Categoria      string   `json:"categoria,omitempty"`
	Subcategoria   string   `json:"subcategoria,omitempty"`
	Laboratorio    string   `json:"laboratorio,omitempty"`
	RequiereReceta string   `json:"requiere_receta,omitempty"`
	PrecioMin      *float64 `json:"precio_min"`
	PrecioMax      *float64 `json:"precio_max"`
	Search         string   `json:"search,omitempty"`
}

func newListResponse(res *usecase.PageResult) productListResponse {
	return productListResponse{
		Productos: res.Items,
		Count:     len(res.Items),
		NextKey:   nullable(res.NextKey),
		HasMore:   res.HasMore,
	}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}

	res, err := h.catalogUC.List(r.Context(), tenantID, pageFrom(r, []string{"limit"}, []string{"lastKey"}))
	if err != nil {
		writeError(w, r, "list", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, newListResponse(res))
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}

	body, err := decodeObject(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	product, err := h.catalogUC.Create(r.Context(), tenantID, body)
	if err != nil {
		writeError(w, r, "create", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Producto creado exitosamente",
		"producto": product,
	})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	codigo := extractParam(r, codigoLookupParam)
	if codigo == "" {
		utils.WriteError(w, http.StatusBadRequest, msgCodigoRequired)
		return
	}

	product, err := h.catalogUC.Get(r.Context(), tenantID, codigo)
	if err != nil {
		writeError(w, r, "get", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"producto": product})
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	codigo := extractParam(r, codigoItemParam)
	if codigo == "" {
		utils.WriteError(w, http.StatusBadRequest, msgCodigoRequired)
		return
	}

	body, err := decodeObject(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	product, err := h.catalogUC.Update(r.Context(), tenantID, codigo, body)
	if err != nil {
		writeError(w, r, "update", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Producto modificado exitosamente",
		"producto": product,
	})
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	codigo := extractParam(r, codigoItemParam)
	if codigo == "" {
		utils.WriteError(w, http.StatusBadRequest, msgCodigoRequired)
		return
	}

	old, err := h.catalogUC.Delete(r.Context(), tenantID, codigo)
	if err != nil {
		writeError(w, r, "delete", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":            "Producto eliminado exitosamente",
		"producto_eliminado": old,
	})
}

// Filter composes every supplied query parameter with AND. Unparseable
// prices are skipped rather than rejected.
func (h *ProductHandler) Filter(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := domain.ProductFilter{
		Categoria:    q.Get("categoria"),
		Subcategoria: q.Get("subcategoria"),
		Laboratorio:  q.Get("laboratorio"),
		PrecioMin:    utils.ParseFloatPtr(q.Get("precio_min")),
		PrecioMax:    utils.ParseFloatPtr(q.Get("precio_max")),
		Search:       q.Get("search"),
	}
	applied := &appliedFilters{
		Categoria:    filter.Categoria,
		Subcategoria: filter.Subcategoria,
		Laboratorio:  filter.Laboratorio,
		PrecioMin:    filter.PrecioMin,
		PrecioMax:    filter.PrecioMax,
		Search:       filter.Search,
	}
	if q.Has("requiere_receta") {
		raw := q.Get("requiere_receta")
		receta := strings.TrimSpace(raw) == "true"
		filter.RequiereReceta = &receta
		applied.RequiereReceta = raw
	}

	res, err := h.catalogUC.Filter(r.Context(), tenantID, filter, pageFrom(r, []string{"limit"}, []string{"lastKey"}))
	if err != nil {
		writeError(w, r, "filter", err)
		return
	}

	resp := newListResponse(res)
	resp.FiltrosAplicados = applied
	utils.WriteJSON(w, http.StatusOK, resp)
}
