package router_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/webotp/internal/pkg/goerror"
	"github.com/shandysiswandi/webotp/internal/pkg/router"
	"github.com/shandysiswandi/webotp/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

type created struct {
	ID string `json:"id"`
}

func (created) StatusCode() int { return http.StatusCreated }
func (created) Message() string { return "created" }

func serve(t *testing.T, ro *router.Router, method, path, body string, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	ro.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRouter_Responses(t *testing.T) {
	ro := router.NewRouter(router.Config{UUID: fixedID("cid-gen")})

	ro.GET("/ok", func(*router.Request) (any, error) { return map[string]bool{"active": true}, nil })
	ro.POST("/created", func(*router.Request) (any, error) { return created{ID: "1"}, nil })
	ro.POST("/empty", func(*router.Request) (any, error) { return nil, nil })
	ro.POST("/conflict", func(*router.Request) (any, error) {
		return nil, goerror.NewBusiness("no pending request", goerror.CodeConflict)
	})
	ro.POST("/invalid", func(*router.Request) (any, error) {
		return nil, goerror.NewInvalidInput(validator.V10ValidationError{"message": "message is a required field"})
	})
	ro.POST("/plain", func(*router.Request) (any, error) { return nil, errors.New("boom") })
	ro.GET("/panic", func(*router.Request) (any, error) { panic("bad") })

	tests := []struct {
		name   string
		method string
		path   string
		status int
		check  func(t *testing.T, body map[string]any)
	}{
		{"ok", http.MethodGet, "/ok", http.StatusOK, func(t *testing.T, body map[string]any) {
			assert.Equal(t, map[string]any{"active": true}, body["data"])
		}},
		{"custom status", http.MethodPost, "/created", http.StatusCreated, func(t *testing.T, body map[string]any) {
			assert.Equal(t, "created", body["message"])
		}},
		{"no content", http.MethodPost, "/empty", http.StatusNoContent, nil},
		{"business error", http.MethodPost, "/conflict", http.StatusConflict, func(t *testing.T, body map[string]any) {
			assert.Equal(t, "no pending request", body["message"])
		}},
		{"validation error", http.MethodPost, "/invalid", http.StatusUnprocessableEntity, func(t *testing.T, body map[string]any) {
			assert.Equal(t, map[string]any{"message": "message is a required field"}, body["error"])
		}},
		{"unknown error", http.MethodPost, "/plain", http.StatusInternalServerError, func(t *testing.T, body map[string]any) {
			assert.Equal(t, "Internal server error", body["message"])
		}},
		{"panic", http.MethodGet, "/panic", http.StatusInternalServerError, nil},
		{"not found", http.MethodGet, "/missing", http.StatusNotFound, nil},
		{"method not allowed", http.MethodDelete, "/ok", http.StatusMethodNotAllowed, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, ro, tt.method, tt.path, "")
			assert.Equal(t, tt.status, rec.Code)
			if tt.check != nil {
				tt.check(t, decode(t, rec))
			}
		})
	}
}

func TestRouter_CorrelationID(t *testing.T) {
	ro := router.NewRouter(router.Config{UUID: fixedID("cid-gen")})
	ro.GET("/ok", func(*router.Request) (any, error) { return "ok", nil })

	rec := serve(t, ro, http.MethodGet, "/ok", "")
	assert.Equal(t, "cid-gen", rec.Header().Get(router.HeaderCorrelationID))

	rec = serve(t, ro, http.MethodGet, "/ok", "", router.HeaderRequestID, "from-proxy")
	assert.Equal(t, "from-proxy", rec.Header().Get(router.HeaderCorrelationID))

	rec = serve(t, ro, http.MethodGet, "/ok", "", router.HeaderCorrelationID, "given")
	assert.Equal(t, "given", rec.Header().Get(router.HeaderCorrelationID))
}

func TestRequest_DecodeBody(t *testing.T) {
	type payload struct {
		Message string `json:"message"`
	}

	ro := router.NewRouter(router.Config{})
	ro.POST("/required", func(r *router.Request) (any, error) {
		var p payload
		if err := r.DecodeBody(&p); err != nil {
			return nil, err
		}
		return p, nil
	})
	ro.POST("/optional", func(r *router.Request) (any, error) {
		p := payload{Message: "default"}
		if err := r.DecodeOptionalBody(&p); err != nil {
			return nil, err
		}
		return p, nil
	})

	rec := serve(t, ro, http.MethodPost, "/required", `{"message":"hi"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"message": "hi"}, decode(t, rec)["data"])

	assert.Equal(t, http.StatusBadRequest, serve(t, ro, http.MethodPost, "/required", `{"unknown":1}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, ro, http.MethodPost, "/required", `{"message":"a"}{}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, ro, http.MethodPost, "/required", ``).Code)

	rec = serve(t, ro, http.MethodPost, "/optional", ``)
	assert.Equal(t, map[string]any{"message": "default"}, decode(t, rec)["data"])
	assert.Equal(t, http.StatusBadRequest, serve(t, ro, http.MethodPost, "/optional", `not json`).Code)
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) router.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := router.Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mw("a"), mw("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"a", "b", "handler"}, order)
}
