package v1

import (
	"net/http"
	"strings"

	"farmacia-catalogo/internal/delivery/http/middleware"
	"farmacia-catalogo/pkg/utils"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Products *ProductHandler
	Browse   *BrowseHandler
	Search   *SearchHandler
	Stats    *StatsHandler
}

// NewRouter mounts the catalog routes. Every /productos route sits behind the
// auth gate; the health checks do not.
func NewRouter(h Handlers, gate *middleware.AuthGate) *http.ServeMux {
	mux := http.NewServeMux()

	protected := func(fn http.HandlerFunc) http.Handler {
		return gate.Middleware(fn)
	}

	// Products
	mux.Handle("GET /productos", protected(h.Products.List))
	mux.Handle("POST /productos", protected(h.Products.Create))
	mux.Handle("GET /productos/buscar/{codigo}", protected(h.Products.Get))
	mux.Handle("PUT /productos/{codigo}", protected(h.Products.Update))
	mux.Handle("DELETE /productos/{codigo}", protected(h.Products.Delete))
	mux.Handle("GET /productos/filtrar", protected(h.Products.Filter))

	// Search
	mux.Handle("GET /productos/buscar", protected(h.Search.Search))

	// Taxonomy
	mux.Handle("GET /productos/categorias", protected(h.Browse.Taxonomy))
	mux.Handle("GET /productos/categorias/{categoria}/subcategorias", protected(h.Browse.Subcategories))
	mux.Handle("GET /productos/categoria/{categoria}", protected(h.Browse.ListByCategory))
	mux.Handle("GET /productos/subcategoria/{subcategoria}", protected(h.Browse.ListBySubcategory))
	mux.Handle("POST /productos/subcategoria/{subcategoria}", protected(h.Browse.ListBySubcategory))
	mux.Handle("POST /productos/subcategoria", protected(h.Browse.ListBySubcategory))

	// Stats
	mux.Handle("GET /productos/estadisticas", protected(h.Stats.Get))

	// Health Check
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler) // Support root health check for Load Balancers

	// The catch-all shadows the mux's plain-text 405, so it answers both cases.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if allowed := allowedMethods(mux, r); len(allowed) > 0 {
			w.Header().Set("Allow", strings.Join(allowed, ", "))
			utils.WriteError(w, http.StatusMethodNotAllowed, "Método no permitido")
			return
		}
		utils.WriteError(w, http.StatusNotFound, "Ruta no encontrada")
	})

	return mux
}

var routeMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}

// allowedMethods lists the methods some route serves for r's path.
func allowedMethods(mux *http.ServeMux, r *http.Request) []string {
	var allowed []string
	for _, method := range routeMethods {
		alt := r.Clone(r.Context())
		alt.Method = method
		if _, pattern := mux.Handler(alt); pattern != "" && pattern != "/" {
			allowed = append(allowed, method)
		}
	}
	return allowed
}
