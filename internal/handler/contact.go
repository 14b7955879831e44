package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/service"
)

// ContactHandler serves POST /api/contact.
type ContactHandler struct {
	contact    *service.ContactService
	normalizer apperror.Normalizer
	logger     *slog.Logger
}

func NewContactHandler(contact *service.ContactService, n apperror.Normalizer, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{contact: contact, normalizer: n, logger: logger}
}

func (h *ContactHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	input, err := decodeObject(w, r)
	if err != nil {
		writeError(w, h.normalizer, postErrors, err)
		return
	}

	if _, err := h.contact.Submit(r.Context(), input); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && errors.Is(err, apperror.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, Response{Success: false, Errors: appErr.Fields})
			return
		}
		apperror.Log(h.logger, "POST /api/contact", err)
		writeError(w, h.normalizer, postErrors, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Message: service.MsgContactSent})
}
