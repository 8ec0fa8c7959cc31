package routes

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"forkful/auth"
	"forkful/live"
	"forkful/middleware"
	"forkful/ratelim"
	"forkful/recipes"
	"forkful/storage"
)

func AddRecipeRoutes(router *httprouter.Router, h *recipes.Handler, authmw *middleware.Auth, rl *ratelim.RateLimiter) {
	router.GET("/api/v1/recipes/categories", rl.Limit(h.GetCategories))
	router.GET("/api/v1/recipes", authmw.OptionalAuth(h.GetRecipes))
	router.GET("/api/v1/recipes/recipe/:id", authmw.OptionalAuth(h.GetRecipe))
	router.POST("/api/v1/recipes", authmw.Authenticate(h.CreateRecipe))
	router.PUT("/api/v1/recipes/recipe/:id", authmw.Authenticate(h.UpdateRecipe))
	router.DELETE("/api/v1/recipes/recipe/:id", authmw.Authenticate(h.DeleteRecipe))
}

func AddAuthRoutes(router *httprouter.Router, h *auth.Handler, authmw *middleware.Auth, rl *ratelim.RateLimiter) {
	router.POST("/api/v1/auth/register", rl.Limit(h.Register))
	router.POST("/api/v1/auth/login", rl.Limit(h.Login))
	router.POST("/api/v1/auth/logout", authmw.Authenticate(h.Logout))
	router.POST("/api/v1/auth/token/refresh", rl.Limit(authmw.Authenticate(h.RefreshToken)))
}

func AddUploadRoutes(router *httprouter.Router, h *storage.Handler, authmw *middleware.Auth) {
	router.POST("/api/v1/upload/images", authmw.Authenticate(h.UploadImage))
}

func AddLiveRoutes(router *httprouter.Router, hub *live.Hub) {
	router.GET("/ws/recipes", hub.ServeWS)
}

func AddStaticRoutes(router *httprouter.Router, uploadDir string) {
	router.ServeFiles("/static/uploads/*filepath", http.Dir(uploadDir))
}
