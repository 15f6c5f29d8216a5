package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"travelgram/internal/common"
	"travelgram/internal/observability"
	"travelgram/internal/wire"
)

// setupRouter configures HTTP routes. Fixed paths are registered before
// the /{id} catch-alls of each subrouter.
func setupRouter(app *wire.Application) *mux.Router {
	router := mux.NewRouter()

	router.Use(corsMiddleware)
	router.Use(observability.RequestID)
	// access log wraps recovery so panicking requests are still logged as 500s
	router.Use(observability.AccessLog(app.Logger, app.Metrics))
	router.Use(observability.Recover(app.Logger))

	router.HandleFunc("/health", healthCheckHandler).Methods(http.MethodGet)
	router.Handle("/metrics", app.Metrics.Handler()).Methods(http.MethodGet)

	auth := common.AuthMiddleware(app.Verifier, app.Logger)
	api := router.PathPrefix("/api").Subrouter()

	images := api.PathPrefix("/images").Subrouter()
	images.Handle("/upload", auth(http.HandlerFunc(app.Media.Images.Upload))).Methods(http.MethodPost)
	images.Handle("/myimages", auth(http.HandlerFunc(app.Media.Images.ListMine))).Methods(http.MethodGet)
	images.Handle("/feed", auth(http.HandlerFunc(app.Feed.GetFeed))).Methods(http.MethodGet)
	images.Handle("/profile/{userId}", auth(http.HandlerFunc(app.Feed.GetProfileFeed))).Methods(http.MethodGet)
	images.HandleFunc("/{id}", app.Media.Images.Get).Methods(http.MethodGet)
	images.Handle("/{id}", auth(http.HandlerFunc(app.Media.Images.Delete))).Methods(http.MethodDelete)

	audio := api.PathPrefix("/audio").Subrouter()
	audio.Handle("/upload", auth(http.HandlerFunc(app.Media.Audio.Upload))).Methods(http.MethodPost)
	audio.Handle("/myaudios", auth(http.HandlerFunc(app.Media.Audio.ListMine))).Methods(http.MethodGet)
	audio.HandleFunc("/{id}", app.Media.Audio.Get).Methods(http.MethodGet)
	audio.Handle("/{id}", auth(http.HandlerFunc(app.Media.Audio.Delete))).Methods(http.MethodDelete)

	aiRoutes := api.PathPrefix("/ai").Subrouter()
	aiRoutes.Use(auth, app.AILimiter.Middleware)
	aiRoutes.HandleFunc("/generate-description", app.AI.GenerateDescription).Methods(http.MethodPost)
	aiRoutes.HandleFunc("/analyze-image", app.AI.AnalyzeImage).Methods(http.MethodPost)

	users := api.PathPrefix("/users").Subrouter()
	users.Use(auth)
	users.HandleFunc("/search", app.Users.SearchUsers).Methods(http.MethodGet)
	users.HandleFunc("", app.Users.CreateProfile).Methods(http.MethodPost)
	users.HandleFunc("/{userId}", app.Users.GetProfile).Methods(http.MethodGet)
	users.HandleFunc("/{userId}", app.Users.UpdateProfile).Methods(http.MethodPut)
	users.HandleFunc("/{userId}/follow", app.Users.Follow).Methods(http.MethodPost)
	users.HandleFunc("/{userId}/unfollow", app.Users.Unfollow).Methods(http.MethodPost)
	users.HandleFunc("/{userId}/followers", app.Users.ListFollowers).Methods(http.MethodGet)
	users.HandleFunc("/{userId}/following", app.Users.ListFollowing).Methods(http.MethodGet)

	// preflight for any path; corsMiddleware answers it
	router.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	return router
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func healthCheckHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}
