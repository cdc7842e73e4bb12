package v1

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestShapeExtract(t *testing.T) {
	tests := []struct {
		name  string
		shape RequestShape
		route ParamRoute
		want  string
	}{
		{
			name:  "path mapping wins",
			shape: RequestShape{Path: paramMap{"codigo": "A"}, PathParameters: paramMap{"codigo": "B"}},
			route: codigoLookupParam,
			want:  "A",
		},
		{
			name:  "pathParameters",
			shape: RequestShape{PathParameters: paramMap{"codigo": "MED-1"}, Resource: "/productos/buscar/OTHER"},
			route: codigoLookupParam,
			want:  "MED-1",
		},
		{
			name:  "query string",
			shape: RequestShape{QueryStringParameters: paramMap{"codigo": "MED-Q"}},
			route: codigoLookupParam,
			want:  "MED-Q",
		},
		{
			name:  "resource regex",
			shape: RequestShape{Resource: "/productos/buscar/MED-R", RequestPath: "/productos/buscar/MED-P"},
			route: codigoLookupParam,
			want:  "MED-R",
		},
		{
			name:  "requestPath regex",
			shape: RequestShape{RequestPath: "/dev/productos/categoria/Analg%C3%A9sicos"},
			route: categoriaParam,
			want:  "Analgésicos",
		},
		{
			name: "requestContext path before resourcePath",
			shape: RequestShape{RequestContext: RequestContext{
				Path:         "/productos/subcategoria/Leches%20de%20F%C3%B3rmula",
				ResourcePath: "/productos/subcategoria/Otra",
			}},
			route: subcategoriaParam,
			want:  "Leches de Fórmula",
		},
		{
			name: "requestContext path ignored where not used",
			shape: RequestShape{RequestContext: RequestContext{
				Path:         "/productos/MED-CTX",
				ResourcePath: "/productos/MED-RES",
			}},
			route: codigoItemParam,
			want:  "MED-RES",
		},
		{
			name:  "subcategories route",
			shape: RequestShape{RequestPath: "/productos/categorias/Cuidado%20Bucal/subcategorias"},
			route: categoriaSubsParam,
			want:  "Cuidado Bucal",
		},
		{
			name:  "decoded exactly once",
			shape: RequestShape{PathParameters: paramMap{"codigo": "A%2520B"}},
			route: codigoLookupParam,
			want:  "A%20B",
		},
		{
			name:  "bad escape is kept raw",
			shape: RequestShape{PathParameters: paramMap{"codigo": "100%"}},
			route: codigoLookupParam,
			want:  "100%",
		},
		{
			name:  "nothing found",
			shape: RequestShape{Resource: "/productos/buscar", PathParameters: paramMap{"codigo": ""}},
			route: codigoLookupParam,
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.shape.Extract(tt.route))
		})
	}
}

func TestRequestShapeFromGatewayEvent(t *testing.T) {
	raw := `{
		"path": "/productos/categoria/Antibi%C3%B3ticos",
		"pathParameters": null,
		"queryStringParameters": {"limite": "5", "page": 2},
		"resource": "/productos/categoria/{categoria}",
		"requestContext": {"path": "/prod/productos/categoria/Antibi%C3%B3ticos"}
	}`
	var shape RequestShape
	require.NoError(t, json.Unmarshal([]byte(raw), &shape))

	assert.Nil(t, shape.Path)
	assert.Equal(t, paramMap{"limite": "5"}, shape.QueryStringParameters)
	// The resource template matches first and yields the literal placeholder.
	assert.Equal(t, "{categoria}", shape.Extract(categoriaParam))

	shape.Resource = ""
	assert.Equal(t, "Antibióticos", shape.Extract(categoriaParam))
}

func TestShapeFromHTTP(t *testing.T) {
	var got string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /productos/categoria/{categoria}", func(w http.ResponseWriter, r *http.Request) {
		got = extractParam(r, categoriaParam)
	})
	mux.HandleFunc("GET /productos/buscar/{codigo}", func(w http.ResponseWriter, r *http.Request) {
		got = extractParam(r, codigoLookupParam)
	})

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/productos/categoria/Analg%C3%A9sicos", nil))
	assert.Equal(t, "Analgésicos", got)

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/productos/buscar/A%2520B", nil))
	assert.Equal(t, "A%20B", got)
}

func TestRawQuery(t *testing.T) {
	assert.Nil(t, rawQuery(""))
	assert.Equal(t, paramMap{"a": "1", "b": "x%20y", "c": ""}, rawQuery("a=1&b=x%20y&a=2&c&=z"))
}
