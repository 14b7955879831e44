package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/service"
)

// ProfileHandler serves /api/profiles.
type ProfileHandler struct {
	backend    Backend
	normalizer apperror.Normalizer
	logger     *slog.Logger
}

func NewProfileHandler(b Backend, n apperror.Normalizer, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{backend: b, normalizer: n, logger: logger}
}

type listMeta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func (h *ProfileHandler) service(w http.ResponseWriter, r *http.Request) *service.ProfileService {
	return service.NewProfileService(clientFor(h.backend, w, r), h.logger)
}

func (h *ProfileHandler) fail(w http.ResponseWriter, err error) {
	writeError(w, h.normalizer, profileErrors, err)
}

// HandleList handles GET /api/profiles?limit=&offset=
func (h *ProfileHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service(w, r).List(r.Context(), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    list.Profiles,
		Meta:    listMeta{Total: list.Total, Limit: list.Limit, Offset: list.Offset},
	})
}

// HandleGet handles GET /api/profiles/{id}
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service(w, r).Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: profile})
}

// HandleMe handles GET /api/profiles/me
func (h *ProfileHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service(w, r).Me(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: profile})
}

// HandleUpdateMe handles PATCH /api/profiles/me
func (h *ProfileHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	svc := h.service(w, r)
	if _, err := svc.Authenticate(r.Context()); err != nil {
		h.fail(w, err)
		return
	}

	input, err := decodeObject(w, r)
	if err != nil {
		h.fail(w, err)
		return
	}

	profile, err := svc.UpdateMe(r.Context(), input)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: profile})
}

// HandleDeleteMe handles DELETE /api/profiles/me
func (h *ProfileHandler) HandleDeleteMe(w http.ResponseWriter, r *http.Request) {
	svc := h.service(w, r)
	if _, err := svc.Authenticate(r.Context()); err != nil {
		h.fail(w, err)
		return
	}

	admin, err := h.backend.Admin()
	if err != nil {
		apperror.Log(h.logger, "DELETE /api/profiles/me", err)
		h.fail(w, err)
		return
	}

	if err := svc.DeleteMe(r.Context(), admin); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: service.MsgUserDeleted})
}
