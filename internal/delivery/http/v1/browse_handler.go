package v1

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"farmacia-catalogo/internal/domain"
	"farmacia-catalogo/internal/metrics"
	"farmacia-catalogo/internal/usecase"
	"farmacia-catalogo/pkg/cache"
	"farmacia-catalogo/pkg/utils"

	"github.com/goccy/go-json"
)

const taxonomyCacheKey = "taxonomy:response"

// BrowseHandler serves the taxonomy and the taxonomy-scoped listings.
type BrowseHandler struct {
	catalogUC   *usecase.CatalogUsecase
	cache       cache.CacheService
	taxonomyTTL time.Duration
}

func NewBrowseHandler(uc *usecase.CatalogUsecase, c cache.CacheService, taxonomyTTL time.Duration) *BrowseHandler {
	return &BrowseHandler{catalogUC: uc, cache: c, taxonomyTTL: taxonomyTTL}
}

type taxonomyListResponse struct {
	Productos           []domain.Product `json:"productos"`
	Count               int              `json:"count"`
	CategoriaBuscada    string           `json:"categoria_buscada,omitempty"`
	SubcategoriaBuscada string           `json:"subcategoria_buscada,omitempty"`
	Paginacion          pagination       `json:"paginacion"`
}

func browsePage(r *http.Request) (usecase.PageRequest, int) {
	page := pageFrom(r, []string{"limite", "limit"}, []string{"lastKey", "nextKey"})
	return page, utils.ParseInt(queryFirst(r, "pagina", "page"), defaultPageNumber)
}

func newTaxonomyListResponse(res *usecase.PageResult, pagina int) taxonomyListResponse {
	return taxonomyListResponse{
		Productos: res.Items,
		Count:     len(res.Items),
		Paginacion: pagination{
			PaginaActual: pagina,
			Limite:       res.Limit,
			HayMas:       res.HasMore,
			NextKey:      nullable(res.NextKey),
		},
	}
}

// ListByCategory lists active products of the category in the path.
func (h *BrowseHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	categoria := extractParam(r, categoriaParam)
	if categoria == "" {
		utils.WriteErrorWith(w, http.StatusBadRequest, "Categoría requerida en el path", map[string]interface{}{
			"ejemplo": categoryExample,
		})
		return
	}

	page, pagina := browsePage(r)
	res, err := h.catalogUC.ListByCategory(r.Context(), tenantID, categoria, page)
	if err != nil {
		writeError(w, r, "list_by_category", err)
		return
	}

	resp := newTaxonomyListResponse(res, pagina)
	resp.CategoriaBuscada = categoria
	utils.WriteJSON(w, http.StatusOK, resp)
}

// ListBySubcategory takes the subcategory from a JSON body first, then from
// the path. A body that is not JSON is ignored.
func (h *BrowseHandler) ListBySubcategory(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}

	subcategoria := subcategoryFromBody(r)
	if subcategoria == "" {
		subcategoria = extractParam(r, subcategoriaParam)
	}
	if subcategoria == "" {
		utils.WriteErrorWith(w, http.StatusBadRequest, "Subcategoría requerida en el path o body", map[string]interface{}{
			"ejemplo_path": subcategoryPathEx,
			"ejemplo_body": subcategoryBodyEx,
		})
		return
	}

	page, pagina := browsePage(r)
	res, err := h.catalogUC.ListBySubcategory(r.Context(), tenantID, subcategoria, page)
	if err != nil {
		writeError(w, r, "list_by_subcategory", err)
		return
	}

	resp := newTaxonomyListResponse(res, pagina)
	resp.SubcategoriaBuscada = subcategoria
	utils.WriteJSON(w, http.StatusOK, resp)
}

func subcategoryFromBody(r *http.Request) string {
	if r.Body == nil || r.ContentLength == 0 {
		return ""
	}
	body, err := decodeObject(r)
	if err != nil {
		return ""
	}
	s, _ := body["subcategoria"].(string)
	return strings.TrimSpace(s)
}

// Taxonomy serves the whole registry. The encoded body is cached since the
// registry never changes at runtime.
func (h *BrowseHandler) Taxonomy(w http.ResponseWriter, r *http.Request) {
	if _, ok := tenantFrom(w, r); !ok {
		return
	}

	body, hit, err := cache.Remember(h.cache, taxonomyCacheKey, h.taxonomyTTL, func() ([]byte, error) {
		taxonomy := h.catalogUC.Taxonomy()
		return json.Marshal(struct {
			Categorias      domain.Taxonomy `json:"categorias"`
			TotalCategorias int             `json:"total_categorias"`
		}{taxonomy, len(taxonomy)})
	})
	if err != nil {
		writeError(w, r, "taxonomy", err)
		return
	}
	metrics.CacheHit("taxonomy", hit)

	w.Header().Set("Content-Type", "application/json")
	if h.taxonomyTTL > 0 {
		w.Header().Set("Cache-Control", "private, max-age="+strconv.Itoa(int(h.taxonomyTTL.Seconds())))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (h *BrowseHandler) Subcategories(w http.ResponseWriter, r *http.Request) {
	if _, ok := tenantFrom(w, r); !ok {
		return
	}
	categoria := extractParam(r, categoriaSubsParam)
	if categoria == "" {
		utils.WriteError(w, http.StatusBadRequest, "Categoría requerida")
		return
	}

	subs, err := h.catalogUC.Subcategories(categoria)
	if errors.Is(err, domain.ErrCategoryNotFound) {
		utils.WriteErrorWith(w, http.StatusNotFound, fmt.Sprintf("Categoría '%s' no encontrada", categoria), map[string]interface{}{
			"categorias_disponibles": h.catalogUC.Taxonomy().Names(),
		})
		return
	}
	if err != nil {
		writeError(w, r, "subcategories", err)
		return
	}

	if subs == nil {
		subs = []string{}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categoria":     categoria,
		"subcategorias": subs,
		"total":         len(subs),
	})
}
