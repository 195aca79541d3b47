package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"path"
	"strings"

	"agrimarket-be/internal/auth"
	"agrimarket-be/internal/croppost"
	"agrimarket-be/internal/metrics"
	"agrimarket-be/internal/review"
	"agrimarket-be/internal/user"
	"agrimarket-be/internal/utils"
)

// Pinger reports database reachability for the health check.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	posts   croppost.Service
	reviews review.Service
	users   user.Service
	db      Pinger
	devMode bool

	// uploads serves files written by earlier versions; nil disables /uploads.
	uploads http.FileSystem
}

func NewHandler(posts croppost.Service, reviews review.Service, users user.Service, db Pinger, devMode bool) *Handler {
	return &Handler{
		posts:   posts,
		reviews: reviews,
		users:   users,
		db:      db,
		devMode: devMode,
	}
}

// WithUploads serves dir read-only under /uploads/.
func (h *Handler) WithUploads(dir string) *Handler {
	if dir != "" {
		h.uploads = http.Dir(dir)
	}
	return h
}

/* ---------- SYSTEM ---------- */

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	dbState := "ok"
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			dbState = "unreachable"
		}
	}

	writeJSON(w, r, status, envelope{
		Success: status == http.StatusOK,
		Message: "OK",
		Data: map[string]any{
			"database": dbState,
			"counters": metrics.Snapshot(),
		},
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "body", "invalid JSON body")
		return
	}

	token, u, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   !h.devMode,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   24 * 60 * 60,
	})

	writeJSON(w, r, http.StatusOK, envelope{
		Success: true,
		Message: "Login successful",
		Data: map[string]any{
			"token": token,
			"user":  u.Public(),
		},
	})
}

/* ---------- CROP POST READS ---------- */

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := parseFilter(q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.posts.List(r.Context(), filter, parseSort(q), parsePage(q))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondOK(w, r, res)
}

func (h *Handler) listEnhanced(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := parseFilter(q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.posts.ListActive(r.Context(), filter, parseSort(q), parsePage(q))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondOK(w, r, res)
}

func (h *Handler) listBulk(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := parseFilter(q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.posts.ListBulk(r.Context(), filter, parsePage(q))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondOK(w, r, res)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	res, err := h.posts.ListMine(r.Context(), parsePage(r.URL.Query()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondOK(w, r, res)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := parseFilter(q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.posts.Search(r.Context(), q.Get("q"), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondOK(w, r, res)
}

func (h *Handler) districts(w http.ResponseWriter, r *http.Request) {
	res, err := h.posts.Districts(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondOK(w, r, res)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	res, err := h.posts.Statistics(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondOK(w, r, res)
}

func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	id, found := pathID(r, "id")
	if !found {
		h.writeError(w, r, croppost.ErrNotFound)
		return
	}

	view, err := h.posts.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondOK(w, r, view)
}

func (h *Handler) getEnhanced(w http.ResponseWriter, r *http.Request) {
	id, found := pathID(r, "id")
	if !found {
		h.writeError(w, r, croppost.ErrNotFound)
		return
	}

	view, err := h.posts.GetActive(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondOK(w, r, view)
}

func (h *Handler) image(w http.ResponseWriter, r *http.Request) {
	postID, found := pathID(r, "id")
	imageID, foundImg := pathID(r, "image_id")
	if !found || !foundImg {
		h.writeError(w, r, croppost.ErrNotFound)
		return
	}

	data, err := h.posts.ImagePayload(r.Context(), postID, imageID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		ct = "image/jpeg"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// uploadedFile serves a legacy upload. Directories are not listed.
func (h *Handler) uploadedFile(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("/" + strings.TrimPrefix(r.URL.Path, uploadsPrefix))

	f, err := h.uploads.Open(name)
	if err != nil {
		writeJSON(w, r, http.StatusNotFound, envelope{Message: "File not found"})
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		writeJSON(w, r, http.StatusNotFound, envelope{Message: "File not found"})
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

/* ---------- CROP POST WRITES ---------- */

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer body.close(r)

	in, err := createInput(body.fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	view, err := h.posts.Create(r.Context(), in, body.uploads)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	created(w, r, "Crop post created successfully", view)
}

func (h *Handler) updatePost(w http.ResponseWriter, r *http.Request) {
	id, found := pathID(r, "id")
	if !found {
		h.writeError(w, r, croppost.ErrNotFound)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer body.close(r)

	in, err := updateInput(body.fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	view, err := h.posts.Update(r.Context(), id, in, body.uploads)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, envelope{Success: true, Message: "Crop post updated successfully", Data: view})
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	id, found := pathID(r, "id")
	if !found {
		h.writeError(w, r, croppost.ErrNotFound)
		return
	}

	if err := h.posts.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	message(w, r, "Crop post deleted successfully")
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	id, found := pathID(r, "id")
	if !found {
		h.writeError(w, r, croppost.ErrNotFound)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer body.close(r)

	p := &formParser{src: body.fields}
	status := croppost.Status(strings.ToLower(p.str("status")))

	view, err := h.posts.ChangeStatus(r.Context(), id, status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, envelope{Success: true, Message: "Crop post status updated", Data: view})
}

func (h *Handler) deleteImage(w http.ResponseWriter, r *http.Request) {
	postID, found := pathID(r, "id")
	imageID, foundImg := pathID(r, "image_id")
	if !found || !foundImg {
		h.writeError(w, r, croppost.ErrNotFound)
		return
	}

	if err := h.posts.DeleteImage(r.Context(), postID, imageID); err != nil {
		h.writeError(w, r, err)
		return
	}
	message(w, r, "Image deleted successfully")
}

/* ---------- REVIEWS ---------- */

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	cropID, _ := utils.ParseInt64(r.URL.Query().Get("crop_id"))

	res, err := h.reviews.List(r.Context(), cropID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondOK(w, r, res)
}

func (h *Handler) getReview(w http.ResponseWriter, r *http.Request) {
	id, found := pathID(r, "id")
	if !found {
		h.writeError(w, r, review.ErrNotFound)
		return
	}

	rv, err := h.reviews.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondOK(w, r, rv)
}

func (h *Handler) createReview(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer body.close(r)

	p := &formParser{src: body.fields}
	cropID, _ := utils.ParseInt64(p.str("crop_id"))
	rating := p.integer("rating")
	if err := p.err(); err != nil {
		h.writeError(w, r, err)
		return
	}

	rv, err := h.reviews.Create(r.Context(), review.CreateInput{
		CropID:  cropID,
		Rating:  rating,
		Comment: p.str("comment"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	created(w, r, "Review added successfully", rv)
}

func (h *Handler) deleteReview(w http.ResponseWriter, r *http.Request) {
	id, found := pathID(r, "id")
	if !found {
		h.writeError(w, r, review.ErrNotFound)
		return
	}

	if err := h.reviews.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	message(w, r, "Review deleted successfully")
}
