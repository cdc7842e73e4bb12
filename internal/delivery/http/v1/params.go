package v1

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
)

// ParamRoute says where a named path parameter lives for one route.
type ParamRoute struct {
	Name    string
	Pattern *regexp.Regexp // first group captures the raw segment

	// ContextPath also parses requestContext.path before resourcePath.
	ContextPath bool
}

var (
	codigoLookupParam  = ParamRoute{Name: "codigo", Pattern: regexp.MustCompile(`/productos/buscar/([^/]+)`)}
	codigoItemParam    = ParamRoute{Name: "codigo", Pattern: regexp.MustCompile(`/productos/([^/]+)`)}
	categoriaParam     = ParamRoute{Name: "categoria", Pattern: regexp.MustCompile(`/productos/categoria/([^/]+)`), ContextPath: true}
	subcategoriaParam  = ParamRoute{Name: "subcategoria", Pattern: regexp.MustCompile(`/productos/subcategoria/([^/]+)`), ContextPath: true}
	categoriaSubsParam = ParamRoute{Name: "categoria", Pattern: regexp.MustCompile(`/productos/categorias/([^/]+)/subcategorias`), ContextPath: true}
)

// paramMap decodes a JSON object of strings and ignores anything else, since
// some gateways send "path" as a plain string.
type paramMap map[string]string

func (m *paramMap) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		*m = nil
		return nil
	}
	out := make(paramMap, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	*m = out
	return nil
}

type RequestContext struct {
	ResourcePath string `json:"resourcePath"`
	Path         string `json:"path"`
}

// RequestShape is every place a path parameter has been delivered in.
// Values are raw (still URL-encoded) until Extract decodes them.
type RequestShape struct {
	Path                  paramMap       `json:"path"`
	PathParameters        paramMap       `json:"pathParameters"`
	QueryStringParameters paramMap       `json:"queryStringParameters"`
	Resource              string         `json:"resource"`
	RequestPath           string         `json:"requestPath"`
	RequestContext        RequestContext `json:"requestContext"`
}

// Extract returns the first non-empty value for route, decoded once, or "".
func (s *RequestShape) Extract(route ParamRoute) string {
	raw := s.find(route)
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func (s *RequestShape) find(route ParamRoute) string {
	for _, m := range []paramMap{s.Path, s.PathParameters, s.QueryStringParameters} {
		if v := m[route.Name]; v != "" {
			return v
		}
	}

	paths := []string{s.Resource, s.RequestPath}
	if route.ContextPath {
		paths = append(paths, s.RequestContext.Path)
	}
	paths = append(paths, s.RequestContext.ResourcePath)

	for _, p := range paths {
		if p == "" {
			continue
		}
		if m := route.Pattern.FindStringSubmatch(p); len(m) > 1 && m[1] != "" {
			return m[1]
		}
	}
	return ""
}

// shapeFromHTTP adapts a routed net/http request. ServeMux hands wildcards
// back already decoded, so they are re-escaped to keep a single decode.
func shapeFromHTTP(r *http.Request, names ...string) *RequestShape {
	s := &RequestShape{
		RequestPath:           r.URL.EscapedPath(),
		QueryStringParameters: rawQuery(r.URL.RawQuery),
	}
	for _, name := range names {
		if v := r.PathValue(name); v != "" {
			if s.PathParameters == nil {
				s.PathParameters = paramMap{}
			}
			s.PathParameters[name] = url.PathEscape(v)
		}
	}
	return s
}

// rawQuery splits a query string without decoding it. The first value wins.
func rawQuery(q string) paramMap {
	if q == "" {
		return nil
	}
	out := paramMap{}
	for _, pair := range strings.Split(q, "&") {
		k, v, _ := strings.Cut(pair, "=")
		if k == "" {
			continue
		}
		if _, seen := out[k]; !seen {
			out[k] = v
		}
	}
	return out
}

func extractParam(r *http.Request, route ParamRoute) string {
	return shapeFromHTTP(r, route.Name).Extract(route)
}
