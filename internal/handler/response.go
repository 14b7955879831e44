package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/portfolio/internal/apperror"
)

// Codes carried in the code field of API error responses.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidJSON  = "INVALID_JSON"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
)

const (
	MsgInvalidJSON = "잘못된 요청 형식입니다."
	MsgServerError = "서버 오류가 발생했습니다. 잠시 후 다시 시도해주세요."
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// Response is the envelope of every API response.
type Response struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Meta    any               `json:"meta,omitempty"`
	Message string            `json:"message,omitempty"`
	Error   string            `json:"error,omitempty"`
	Code    string            `json:"code,omitempty"`
	Details string            `json:"details,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// errorStyle is how one endpoint family reports failures.
type errorStyle struct {
	unexpected string // message for failures that are neither local nor backend errors
	codes      bool   // whether responses carry the code field
}

var (
	postErrors    = errorStyle{unexpected: MsgServerError, codes: true}
	profileErrors = errorStyle{unexpected: "Internal server error"}
)

var errInvalidJSON = errors.New("invalid JSON body")

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps err onto a status and envelope. Local errors keep their
// message; backend errors go through the normalizer; anything else is a 500
// with the style's generic message.
func writeError(w http.ResponseWriter, n apperror.Normalizer, style errorStyle, err error) {
	resp := Response{Success: false}
	status := http.StatusInternalServerError

	var appErr *apperror.AppError
	var backendErr *apperror.BackendError

	switch {
	case errors.Is(err, errInvalidJSON):
		status = http.StatusBadRequest
		resp.Error = MsgInvalidJSON
		resp.Code = CodeInvalidJSON

	case errors.As(err, &appErr):
		status, resp.Code = classify(appErr)
		resp.Error = appErr.Message

	case errors.As(err, &backendErr):
		res := n.Normalize(err)
		resp.Error = res.Error
		resp.Code = res.Code
		resp.Details = res.Details

	default:
		resp.Error = style.unexpected
		if n.Debug {
			resp.Error = n.Normalize(err).Error
		}
	}

	if !style.codes {
		resp.Code = ""
	}
	writeJSON(w, status, resp)
}

func classify(err *apperror.AppError) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, CodeConflict
	default:
		return http.StatusInternalServerError, ""
	}
}

// decodeObject reads a JSON object body. Anything else, including an empty
// body or a JSON array, is errInvalidJSON.
func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var input map[string]any
	if err := json.NewDecoder(body).Decode(&input); err != nil {
		return nil, errInvalidJSON
	}
	if input == nil {
		return nil, errInvalidJSON
	}
	return input, nil
}
