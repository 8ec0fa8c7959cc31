package recipes

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"forkful/counters"
	"forkful/models"
	"forkful/pagination"
	"forkful/store"
	"forkful/utils"
)

// Category keys the client form offers. Served so the UI and API stay in
// agreement about the enum.
var categories = []string{
	"breadsSandwichesAndPizza",
	"eggsAndBreakfast",
	"dessertsAndBakedGoods",
	"fishAndSeafood",
	"vegetables",
}

type Handler struct {
	Store     store.RecipeStore
	Counts    *counters.Maintainer
	Paginator *pagination.Paginator
}

func NewHandler(s store.RecipeStore, counts *counters.Maintainer, paginator *pagination.Paginator) *Handler {
	return &Handler{Store: s, Counts: counts, Paginator: paginator}
}

// GetRecipes lists a page of recipes together with the matching aggregate
// count. Anonymous callers are narrowed to published records and the
// "published" counter; that downgrade is not an error.
func (h *Handler) GetRecipes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	filters := map[string]interface{}{}
	if category := query.Get("category"); category != "" {
		filters["category"] = category
	}

	countName := counters.CountAll
	if utils.GetUserIDFromContext(r.Context()) == "" {
		filters["isPublished"] = true
		countName = counters.CountPublished
	}

	orderBy := query.Get("orderByField")
	if orderBy == "" {
		orderBy = "publishDate"
	}
	if !store.SortableField(orderBy) {
		utils.RespondWithError(w, http.StatusBadRequest, "unsupported orderByField")
		return
	}

	perPage, err := strconv.ParseInt(query.Get("perPage"), 10, 64)
	if err != nil || perPage <= 0 {
		perPage = pagination.DefaultPerPage
	}

	req := pagination.Request{
		Filters: filters,
		OrderBy: orderBy,
		Desc:    query.Get("orderByDirection") == "desc",
		PerPage: perPage,
	}
	if startAfter := query.Get("startAfter"); startAfter != "" {
		req.Cursor, req.Mode = startAfter, pagination.ModeAfter
	} else if endBefore := query.Get("endBefore"); endBefore != "" {
		req.Cursor, req.Mode = endBefore, pagination.ModeBefore
	}

	var recipes []models.Recipe
	if pageNumber, convErr := strconv.Atoi(query.Get("pageNumber")); convErr == nil && pageNumber > 1 && req.Cursor == "" {
		recipes, err = h.Paginator.PageByNumber(r.Context(), req, pageNumber)
	} else {
		recipes, err = h.Paginator.Page(r.Context(), req)
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if recipes == nil {
		recipes = []models.Recipe{}
	}

	recipeCount, err := h.Counts.Count(r.Context(), countName)
	if err != nil {
		// The count is advisory; a missing counter must not take the
		// listing down with it.
		log.Printf("recipes: read %q count: %v", countName, err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"recipeCount": recipeCount,
		"recipes":     recipes,
	})
}

// GetRecipe returns one recipe. Unpublished records are indistinguishable
// from absent ones for anonymous callers.
func (h *Handler) GetRecipe(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rec, err := h.Store.Read(r.Context(), ps.ByName("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Recipe not found")
			return
		}
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !rec.IsPublished && utils.GetUserIDFromContext(r.Context()) == "" {
		utils.RespondWithError(w, http.StatusNotFound, "Recipe not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, rec)
}

func (h *Handler) CreateRecipe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	post, ok := h.decodeAndValidate(w, r)
	if !ok {
		return
	}

	id, err := h.Store.Create(r.Context(), sanitizeRecipePost(post))
	if err != nil {
		utils.RespondWithText(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"id": id})
}

// UpdateRecipe is a full replace of the record's declared fields.
func (h *Handler) UpdateRecipe(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	post, ok := h.decodeAndValidate(w, r)
	if !ok {
		return
	}

	id := ps.ByName("id")
	err := h.Store.Update(r.Context(), id, sanitizeRecipePost(post))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Recipe not found")
			return
		}
		utils.RespondWithText(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"id": id})
}

// DeleteRecipe removes the record; the stored image is cleaned up by the
// delete hook once the record mutation has committed.
func (h *Handler) DeleteRecipe(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if err := h.Store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Recipe not found")
			return
		}
		utils.RespondWithText(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"id": id})
}

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, categories)
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request) (*recipePost, bool) {
	var post recipePost
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		utils.RespondWithText(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}

	if missingFields := validateRecipePost(&post); missingFields != "" {
		utils.RespondWithText(w, http.StatusBadRequest,
			"Recipe is not valid. Missing/invalid fields: "+missingFields)
		return nil, false
	}
	return &post, true
}
