package v1

import (
	"net/http"

	"farmacia-catalogo/internal/usecase"
	"farmacia-catalogo/pkg/utils"
)

// searchHints are returned when a search comes back empty.
var searchHints = []string{
	"Revisa la ortografía del término de búsqueda",
	"Intenta con términos más generales",
	"Busca por categoría como 'vitaminas', 'analgésicos', etc.",
	"Prueba con el nombre del laboratorio",
}

type SearchHandler struct {
	searchUC *usecase.SearchUsecase
}

func NewSearchHandler(searchUC *usecase.SearchUsecase) *SearchHandler {
	return &SearchHandler{
		searchUC: searchUC,
	}
}

type sortInfo struct {
	Criterio string   `json:"criterio"`
	Opciones []string `json:"opciones"`
}

type searchResponse struct {
	Productos      []usecase.ScoredProduct `json:"productos"`
	Count          int                     `json:"count"`
	TerminoBuscado string                  `json:"termino_buscado"`
	Paginacion     pagination              `json:"paginacion"`
	Ordenamiento   sortInfo                `json:"ordenamiento"`
	Sugerencias    []string                `json:"sugerencias"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}

	req := usecase.SearchRequest{
		Term: queryFirst(r, "q", "search", "termino"),
		Sort: queryFirst(r, "ordenar"),
		Page: pageFrom(r, []string{"limite", "limit"}, []string{"nextKey"}),
	}
	pagina := utils.ParseInt(queryFirst(r, "pagina", "page"), defaultPageNumber)

	res, err := h.searchUC.Search(r.Context(), tenantID, req)
	if err != nil {
		writeError(w, r, "search", err)
		return
	}

	items := res.Items
	if items == nil {
		items = []usecase.ScoredProduct{}
	}
	var hints []string
	if len(items) == 0 {
		hints = searchHints
	}

	utils.WriteJSON(w, http.StatusOK, searchResponse{
		Productos:      items,
		Count:          len(items),
		TerminoBuscado: res.Term,
		Paginacion: pagination{
			PaginaActual: pagina,
			Limite:       res.Limit,
			HayMas:       res.HasMore,
			NextKey:      nullable(res.NextKey),
		},
		Ordenamiento: sortInfo{Criterio: res.Sort, Opciones: usecase.SortOptions},
		Sugerencias:  hints,
	})
}
