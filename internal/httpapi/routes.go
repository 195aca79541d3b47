package httpapi

import (
	"net/http"

	"agrimarket-be/internal/middleware"
	"agrimarket-be/internal/utils"

	"github.com/gorilla/mux"
)

const uploadsPrefix = "/uploads/"

// NewRouter builds the API router. Caller identity is expected on the request
// context already; routes only check roles.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	h.Register(r)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, req, http.StatusNotFound, envelope{Message: "Route not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, req, http.StatusMethodNotAllowed, envelope{Message: "Method not allowed"})
	})
	return r
}

func (h *Handler) Register(r *mux.Router) {
	farmer := middleware.RequireRole(utils.RoleFarmer)
	staff := middleware.RequireRole(utils.RoleAdmin, utils.RoleFarmer)
	signedIn := middleware.RequireRole()

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	if h.uploads != nil {
		r.PathPrefix(uploadsPrefix).HandlerFunc(h.uploadedFile).Methods(http.MethodGet, http.MethodHead)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)

	// Fixed paths are registered before {id} so they are never read as ids.
	posts := api.PathPrefix("/crop-posts").Subrouter()
	posts.HandleFunc("", h.listPosts).Methods(http.MethodGet)
	posts.HandleFunc("/enhanced", h.listEnhanced).Methods(http.MethodGet)
	posts.HandleFunc("/enhanced/{id:[0-9]+}", h.getEnhanced).Methods(http.MethodGet)
	posts.HandleFunc("/districts", h.districts).Methods(http.MethodGet)
	posts.HandleFunc("/bulk", h.listBulk).Methods(http.MethodGet)
	posts.HandleFunc("/bulk-orders", h.listBulk).Methods(http.MethodGet)
	posts.HandleFunc("/stats", h.stats).Methods(http.MethodGet)
	posts.HandleFunc("/search", h.search).Methods(http.MethodGet)
	posts.Handle("/user/my-posts", farmer(http.HandlerFunc(h.listMine))).Methods(http.MethodGet)

	posts.HandleFunc("/{id:[0-9]+}", h.getPost).Methods(http.MethodGet)
	posts.HandleFunc("/{id:[0-9]+}/images/{image_id:[0-9]+}", h.image).Methods(http.MethodGet)

	posts.Handle("", farmer(http.HandlerFunc(h.createPost))).Methods(http.MethodPost)
	posts.Handle("/{id:[0-9]+}", farmer(http.HandlerFunc(h.updatePost))).Methods(http.MethodPut)
	posts.Handle("/{id:[0-9]+}", farmer(http.HandlerFunc(h.deletePost))).Methods(http.MethodDelete)
	posts.Handle("/{id:[0-9]+}/status", staff(http.HandlerFunc(h.changeStatus))).Methods(http.MethodPatch)
	posts.Handle("/{id:[0-9]+}/images/{image_id:[0-9]+}", farmer(http.HandlerFunc(h.deleteImage))).Methods(http.MethodDelete)

	reviews := api.PathPrefix("/crop-reviews").Subrouter()
	reviews.HandleFunc("", h.listReviews).Methods(http.MethodGet)
	reviews.HandleFunc("/{id:[0-9]+}", h.getReview).Methods(http.MethodGet)
	reviews.Handle("", signedIn(http.HandlerFunc(h.createReview))).Methods(http.MethodPost)
	reviews.Handle("/{id:[0-9]+}", signedIn(http.HandlerFunc(h.deleteReview))).Methods(http.MethodDelete)
}
