package recipe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-bot/internal/pkg/common"
)

type fakeService struct {
	got     common.RecipeRequest
	recipes map[string]*common.Recipe
	limit   int
	err     error
}

func (f *fakeService) Generate(_ context.Context, req common.RecipeRequest) (*common.Recipe, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &common.Recipe{RecipeID: "recipe_00000001", Title: "Omelette", Ingredients: req.Ingredients}, nil
}

func (f *fakeService) Get(_ context.Context, id string) (*common.Recipe, error) {
	r, ok := f.recipes[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return r, nil
}

func (f *fakeService) ListRecent(_ context.Context, limit int) ([]common.Recipe, error) {
	f.limit = limit
	out := []common.Recipe{}
	for _, r := range f.recipes {
		out = append(out, *r)
	}
	return out, nil
}

func newEngine(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)
	r := gin.New()
	r.POST("/api/v1/recipes/generate", h.Generate)
	r.GET("/api/v1/recipes/:id", h.Get)
	r.GET("/api/v1/recipes", h.List)
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestGenerate(t *testing.T) {
	svc := &fakeService{}
	r := newEngine(svc)

	w := serve(r, http.MethodPost, "/api/v1/recipes/generate",
		`{"ingredients":["egg","cheese"],"cuisine":"French","dietary_restrictions":["vegetarian"],"cooking_time":15}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got common.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Omelette", got.Title)
	assert.Equal(t, common.RecipeRequest{
		Ingredients:         []string{"egg", "cheese"},
		Cuisine:             "French",
		DietaryRestrictions: []string{"vegetarian"},
		CookingTime:         15,
	}, svc.got)
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"missing ingredients", `{"cuisine":"Thai"}`, nil, http.StatusBadRequest},
		{"bad json", `{`, nil, http.StatusBadRequest},
		{"cooking time too long", `{"ingredients":["egg"],"cooking_time":9999}`, nil, http.StatusBadRequest},
		{"validation", `{"ingredients":["egg"]}`, common.NewValidationError("no usable ingredients"), http.StatusBadRequest},
		{"backend", `{"ingredients":["egg"]}`, common.ErrBackendFailure, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(newEngine(&fakeService{err: tt.err}), http.MethodPost, "/api/v1/recipes/generate", tt.body)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestGetAndList(t *testing.T) {
	svc := &fakeService{recipes: map[string]*common.Recipe{
		"recipe_aaaa0001": {RecipeID: "recipe_aaaa0001", Title: "Soup"},
	}}
	r := newEngine(svc)

	w := serve(r, http.MethodGet, "/api/v1/recipes/recipe_aaaa0001", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Soup"`)

	w = serve(r, http.MethodGet, "/api/v1/recipes/recipe_missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeNotFound)

	w = serve(r, http.MethodGet, "/api/v1/recipes?limit=3", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, 3, svc.limit)

	serve(r, http.MethodGet, "/api/v1/recipes", "")
	assert.Equal(t, 10, svc.limit)

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/api/v1/recipes?limit=abc", "").Code)
}
