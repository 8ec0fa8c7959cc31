package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	"forkful/auth"
	"forkful/counters"
	"forkful/db"
	"forkful/hooks"
	"forkful/live"
	"forkful/middleware"
	"forkful/pagination"
	"forkful/ratelim"
	"forkful/rdx"
	"forkful/recipes"
	"forkful/routes"
	"forkful/storage"
	"forkful/store"
	"forkful/sweep"
)

const sweepInterval = 24 * time.Hour

// Security headers middleware
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Middleware: Simple request logging
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[%s] %s %s", r.Method, r.RequestURI, r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}

func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func buildBlobStore(ctx context.Context, uploadDir string) (storage.BlobStore, error) {
	if os.Getenv("STORAGE_BACKEND") == "s3" {
		return storage.NewS3(ctx, storage.S3Config{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			Region:    envOr("S3_REGION", "us-east-1"),
			Bucket:    os.Getenv("S3_BUCKET"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
		})
	}
	return storage.NewLocal(uploadDir, "/static/uploads"), nil
}

func setupRouter(
	recipeHandler *recipes.Handler,
	authHandler *auth.Handler,
	uploadHandler *storage.Handler,
	hub *live.Hub,
	authmw *middleware.Auth,
	rateLimiter *ratelim.RateLimiter,
	uploadDir string,
) http.Handler {
	router := httprouter.New()
	router.GET("/health", Index)

	routes.AddRecipeRoutes(router, recipeHandler, authmw, rateLimiter)
	routes.AddAuthRoutes(router, authHandler, authmw, rateLimiter)
	routes.AddUploadRoutes(router, uploadHandler, authmw)
	routes.AddLiveRoutes(router, hub)
	routes.AddStaticRoutes(router, uploadDir)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	return middleware.RecoverMiddleware(loggingMiddleware(securityHeaders(c.Handler(router))))
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		log.Fatalf("MONGODB_URI environment variable is not set")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatalf("JWT_SECRET environment variable is not set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongo, err := db.Connect(ctx, mongoURI, envOr("MONGO_DB", "forkful"))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongo.Close(context.Background()); err != nil {
			log.Printf("Mongo disconnect: %v", err)
		}
	}()
	log.Println("Connected to MongoDB")

	// Change events fan out to counters, image cleanup and the live feed,
	// standing in for the managed database's after-commit triggers.
	emitter := hooks.NewEmitter()

	recipeStore := store.NewMongo(mongo.Recipes, emitter)
	maintainer := counters.NewMaintainer(counters.NewMongoCounts(mongo.RecipeCounts))
	maintainer.Register(emitter)

	uploadDir := envOr("UPLOAD_DIR", "./static/uploads")
	blobs, err := buildBlobStore(ctx, uploadDir)
	if err != nil {
		log.Fatalf("Failed to set up blob storage: %v", err)
	}
	emitter.Subscribe(storage.CleanupHook(blobs))

	hub := live.NewHub()
	emitter.Subscribe(hub.PublishHook())

	var revoked auth.RevocationList
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := rdx.New(addr)
		if err := client.Ping(ctx); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer client.Close()
		revoked = client
	}

	gate := auth.NewGate([]byte(jwtSecret), revoked)
	authmw := middleware.NewAuth(gate)
	rateLimiter := ratelim.NewRateLimiter()

	recipeHandler := recipes.NewHandler(recipeStore, maintainer, pagination.New(recipeStore))
	authHandler := auth.NewHandler(auth.NewMongoUsers(mongo.Users), gate, []byte(jwtSecret), revoked)
	uploadHandler := storage.NewHandler(blobs)

	go sweep.New(recipeStore, sweepInterval).Run(ctx)

	handler := setupRouter(recipeHandler, authHandler, uploadHandler, hub, authmw, rateLimiter, uploadDir)

	port := envOr("PORT", "10000")
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		log.Printf("Server started on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on port %s: %v", port, err)
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)
	<-shutdownChan

	log.Println("Shutdown signal received. Shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped cleanly")
}
