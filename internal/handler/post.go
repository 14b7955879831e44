package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/service"
)

// PostHandler serves /api/posts.
type PostHandler struct {
	backend    Backend
	normalizer apperror.Normalizer
	logger     *slog.Logger
}

func NewPostHandler(b Backend, n apperror.Normalizer, logger *slog.Logger) *PostHandler {
	return &PostHandler{backend: b, normalizer: n, logger: logger}
}

func (h *PostHandler) service(w http.ResponseWriter, r *http.Request) *service.PostService {
	return service.NewPostService(clientFor(h.backend, w, r), h.logger)
}

// HandleList handles GET /api/posts?category=&page=&limit=
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service(w, r).List(r.Context(),
		r.URL.Query().Get("category"),
		queryInt(r, "page"),
		queryInt(r, "limit"),
	)
	if err != nil {
		writeError(w, h.normalizer, postErrors, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: list})
}

// HandleGet handles GET /api/posts/{id}
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.service(w, r).Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.normalizer, postErrors, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: post})
}

// HandleCreate handles POST /api/posts
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	svc := h.service(w, r)

	// Authentication comes before parsing: an anonymous caller gets 401 even
	// with a malformed body.
	if _, err := svc.Authenticate(r.Context()); err != nil {
		writeError(w, h.normalizer, postErrors, err)
		return
	}

	input, err := decodeObject(w, r)
	if err != nil {
		writeError(w, h.normalizer, postErrors, err)
		return
	}

	post, err := svc.Create(r.Context(), input, false)
	if err != nil {
		writeError(w, h.normalizer, postErrors, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Success: true, Data: post})
}

// HandleUpdate handles PATCH /api/posts/{id}
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	svc := h.service(w, r)

	if _, err := svc.Authenticate(r.Context()); err != nil {
		writeError(w, h.normalizer, postErrors, err)
		return
	}

	input, err := decodeObject(w, r)
	if err != nil {
		writeError(w, h.normalizer, postErrors, err)
		return
	}

	post, err := svc.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, h.normalizer, postErrors, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: post})
}

type deletedPost struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// HandleDelete handles DELETE /api/posts?id=
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if err := h.service(w, r).Delete(r.Context(), id); err != nil {
		writeError(w, h.normalizer, postErrors, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    deletedPost{ID: id, Message: service.MsgPostDeleted},
	})
}
