package v1

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"farmacia-catalogo/internal/domain"
	"farmacia-catalogo/internal/usecase"
	"farmacia-catalogo/pkg/logger"
	"farmacia-catalogo/pkg/utils"

	"github.com/goccy/go-json"
)

const (
	msgInvalidJSON    = "JSON inválido"
	msgInvalidCursor  = "lastKey inválido"
	msgNotFound       = "Producto no encontrado"
	msgCodigoRequired = "Código de producto requerido"
	msgTokenRequired  = "Token requerido"

	searchExample     = "/productos/buscar?q=penicilina&limite=20&pagina=1"
	categoryExample   = "/productos/categoria/Analgésicos"
	subcategoryPathEx = "/productos/subcategoria/Leches%20de%20Fórmula"
	subcategoryBodyEx = `{"subcategoria": "Leches de Fórmula"}`

	maxBodyBytes      = 1 << 20
	defaultPageNumber = 1
)

// writeError maps usecase errors onto the catalog's status codes. Anything it
// does not recognise is logged with op and collapsed to a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		if errors.Is(err, usecase.ErrSearchTermTooShort) {
			utils.WriteErrorWith(w, http.StatusBadRequest, ve.Message, map[string]interface{}{"ejemplo": searchExample})
			return
		}
		utils.WriteError(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, domain.ErrInvalidCursor):
		utils.WriteError(w, http.StatusBadRequest, msgInvalidCursor)
	case errors.Is(err, domain.ErrProductNotFound):
		utils.WriteError(w, http.StatusNotFound, msgNotFound)
	default:
		logger.WithContext(r.Context()).Error().Err(err).Str("op", op).Str("path", r.URL.Path).Msg("Request failed")
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrInternal)
	}
}

// tenantFrom returns the verified tenant. Routes are always wrapped by the
// auth gate, so a miss here means a wiring mistake; it still fails closed.
func tenantFrom(w http.ResponseWriter, r *http.Request) (string, bool) {
	p, ok := domain.PrincipalFromContext(r.Context())
	if !ok || p.TenantID == "" {
		utils.WriteError(w, http.StatusUnauthorized, msgTokenRequired)
		return "", false
	}
	return p.TenantID, true
}

// decodeObject reads a JSON object body. Anything else is an error.
func decodeObject(r *http.Request) (map[string]interface{}, error) {
	if r.Body == nil {
		return nil, io.EOF
	}
	var body map[string]interface{}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, errors.New("body is not an object")
	}
	return body, nil
}

type pagination struct {
	PaginaActual int     `json:"pagina_actual"`
	Limite       int     `json:"limite"`
	HayMas       bool    `json:"hay_mas"`
	NextKey      *string `json:"nextKey"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func queryFirst(r *http.Request, keys ...string) string {
	q := r.URL.Query()
	vals := make([]string, len(keys))
	for i, k := range keys {
		vals[i] = q.Get(k)
	}
	return strings.TrimSpace(utils.FirstNonEmpty(vals...))
}

// pageFrom reads the page size and cursor from the first present key of each list.
func pageFrom(r *http.Request, limitKeys, cursorKeys []string) usecase.PageRequest {
	return usecase.PageRequest{
		Limit:   utils.ParseInt(queryFirst(r, limitKeys...), 0),
		LastKey: queryFirst(r, cursorKeys...),
	}
}
