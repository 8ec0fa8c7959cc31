package recipes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forkful/auth"
	"forkful/counters"
	"forkful/hooks"
	"forkful/middleware"
	"forkful/models"
	"forkful/pagination"
	"forkful/ratelim"
	"forkful/recipes"
	"forkful/routes"
	"forkful/store"
)

var testSecret = []byte("test-secret")

type testEnv struct {
	router *httprouter.Router
	store  *store.MemoryStore
	counts *counters.Maintainer
	token  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	emitter := hooks.NewEmitter()
	memStore := store.NewMemory(emitter)
	maintainer := counters.NewMaintainer(counters.NewMemoryCounts())
	maintainer.Register(emitter)

	gate := auth.NewGate(testSecret, nil)
	handler := recipes.NewHandler(memStore, maintainer, pagination.New(memStore))

	router := httprouter.New()
	routes.AddRecipeRoutes(router, handler, middleware.NewAuth(gate), ratelim.NewRateLimiter())

	token, err := auth.GenerateToken("user-1", testSecret, time.Hour)
	require.NoError(t, err)

	return &testEnv{router: router, store: memStore, counts: maintainer, token: token}
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func validBody() map[string]interface{} {
	return map[string]interface{}{
		"name":        "Pancakes",
		"category":    "eggsAndBreakfast",
		"directions":  "mix and fry",
		"publishDate": 1700000000000,
		"isPublished": true,
		"ingredients": []string{"flour", "eggs"},
		"imageUrl":    "/static/uploads/recipes/p.jpg",
	}
}

func (e *testEnv) createRecipe(t *testing.T, overrides map[string]interface{}) string {
	t.Helper()
	body := validBody()
	for k, v := range overrides {
		body[k] = v
	}
	rec := e.request(t, http.MethodPost, "/api/v1/recipes", body, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	return created.ID
}

func TestCreateWithoutAuthorizationHeader(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/v1/recipes", validBody(), false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Missing Authorization Header", rec.Body.String())

	all, err := env.store.Query(context.Background(), store.Query{})
	require.NoError(t, err)
	assert.Empty(t, all, "a rejected write must cause no store mutation")

	count, err := env.counts.Count(context.Background(), counters.CountAll)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateWithInvalidToken(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes", bytes.NewReader(nil))
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Body.String())
}

func TestCreateRejectsIncompletePayload(t *testing.T) {
	env := newTestEnv(t)

	body := validBody()
	delete(body, "name")
	delete(body, "ingredients")

	rec := env.request(t, http.MethodPost, "/api/v1/recipes", body, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Recipe is not valid. Missing/invalid fields: name,ingredients,", rec.Body.String())
}

func TestCreateReadUpdateDelete(t *testing.T) {
	env := newTestEnv(t)
	id := env.createRecipe(t, nil)

	get := env.request(t, http.MethodGet, "/api/v1/recipes/recipe/"+id, nil, true)
	require.Equal(t, http.StatusOK, get.Code)

	var fetched models.Recipe
	require.NoError(t, json.Unmarshal(get.Body.Bytes(), &fetched))
	assert.Equal(t, "Pancakes", fetched.Name)

	update := validBody()
	update["name"] = "Crepes"
	put := env.request(t, http.MethodPut, "/api/v1/recipes/recipe/"+id, update, true)
	require.Equal(t, http.StatusOK, put.Code)

	stored, err := env.store.Read(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Crepes", stored.Name)

	del := env.request(t, http.MethodDelete, "/api/v1/recipes/recipe/"+id, nil, true)
	require.Equal(t, http.StatusOK, del.Code)

	_, err = env.store.Read(context.Background(), id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateMissingRecipe(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPut, "/api/v1/recipes/recipe/000000000000000000000000", validBody(), true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type listResponse struct {
	RecipeCount int64           `json:"recipeCount"`
	Recipes     []models.Recipe `json:"recipes"`
}

func TestAnonymousListSeesOnlyPublished(t *testing.T) {
	env := newTestEnv(t)
	env.createRecipe(t, map[string]interface{}{"isPublished": true, "publishDate": 100})
	env.createRecipe(t, map[string]interface{}{"isPublished": false, "publishDate": 200})
	env.createRecipe(t, map[string]interface{}{"isPublished": true, "publishDate": 300})

	rec := env.request(t, http.MethodGet, "/api/v1/recipes?perPage=10", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, int64(2), resp.RecipeCount, "anonymous callers get the published counter")
	require.Len(t, resp.Recipes, 2)
	for _, r := range resp.Recipes {
		assert.True(t, r.IsPublished, "anonymous listing must never contain unpublished records")
	}
}

func TestAuthenticatedListSeesEverything(t *testing.T) {
	env := newTestEnv(t)
	env.createRecipe(t, map[string]interface{}{"isPublished": true, "publishDate": 100})
	env.createRecipe(t, map[string]interface{}{"isPublished": false, "publishDate": 200})

	rec := env.request(t, http.MethodGet, "/api/v1/recipes?perPage=10", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, int64(2), resp.RecipeCount)
	assert.Len(t, resp.Recipes, 2)
}

func TestListCursorPaging(t *testing.T) {
	env := newTestEnv(t)
	for _, date := range []int{100, 200, 300, 400, 500} {
		env.createRecipe(t, map[string]interface{}{"publishDate": date})
	}

	first := env.request(t, http.MethodGet, "/api/v1/recipes?perPage=2&orderByField=publishDate&orderByDirection=asc", nil, true)
	require.Equal(t, http.StatusOK, first.Code)

	var page1 listResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &page1))
	require.Len(t, page1.Recipes, 2)
	assert.Equal(t, int64(100), page1.Recipes[0].PublishDate)

	cursor := page1.Recipes[1].ID.Hex()
	second := env.request(t, http.MethodGet, "/api/v1/recipes?perPage=2&orderByField=publishDate&orderByDirection=asc&startAfter="+cursor, nil, true)
	require.Equal(t, http.StatusOK, second.Code)

	var page2 listResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &page2))
	require.Len(t, page2.Recipes, 2)
	assert.Equal(t, int64(300), page2.Recipes[0].PublishDate)
	assert.Equal(t, int64(400), page2.Recipes[1].PublishDate)
}

func TestListPageNumberFallback(t *testing.T) {
	env := newTestEnv(t)
	for _, date := range []int{100, 200, 300, 400, 500} {
		env.createRecipe(t, map[string]interface{}{"publishDate": date})
	}

	rec := env.request(t, http.MethodGet, "/api/v1/recipes?perPage=2&orderByField=publishDate&orderByDirection=asc&pageNumber=2", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Recipes, 2)
	assert.Equal(t, int64(300), resp.Recipes[0].PublishDate)
}

func TestListRejectsUnknownSortField(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/v1/recipes?orderByField=secret", nil, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnonymousGetUnpublishedIs404(t *testing.T) {
	env := newTestEnv(t)
	id := env.createRecipe(t, map[string]interface{}{"isPublished": false})

	anon := env.request(t, http.MethodGet, "/api/v1/recipes/recipe/"+id, nil, false)
	assert.Equal(t, http.StatusNotFound, anon.Code)

	authed := env.request(t, http.MethodGet, "/api/v1/recipes/recipe/"+id, nil, true)
	assert.Equal(t, http.StatusOK, authed.Code)
}

func TestCategoryFilter(t *testing.T) {
	env := newTestEnv(t)
	env.createRecipe(t, map[string]interface{}{"category": "vegetables", "publishDate": 100})
	env.createRecipe(t, map[string]interface{}{"category": "fishAndSeafood", "publishDate": 200})

	rec := env.request(t, http.MethodGet, "/api/v1/recipes?category=vegetables", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Recipes, 1)
	assert.Equal(t, "vegetables", resp.Recipes[0].Category)
}

func TestDeleteKeepsCountsInStep(t *testing.T) {
	env := newTestEnv(t)
	id := env.createRecipe(t, map[string]interface{}{"isPublished": true})
	env.createRecipe(t, map[string]interface{}{"isPublished": true})

	del := env.request(t, http.MethodDelete, "/api/v1/recipes/recipe/"+id, nil, true)
	require.Equal(t, http.StatusOK, del.Code)

	all, err := env.counts.Count(context.Background(), counters.CountAll)
	require.NoError(t, err)
	assert.Equal(t, int64(1), all)

	published, err := env.counts.Count(context.Background(), counters.CountPublished)
	require.NoError(t, err)
	assert.Equal(t, int64(1), published)
}
