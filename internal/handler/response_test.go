package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio/internal/apperror"
)

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "body: %s", rec.Body.String())
	return resp
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		style      errorStyle
		debug      bool
		wantStatus int
		wantError  string
		wantCode   string
	}{
		{"invalid json", errInvalidJSON, postErrors, false, http.StatusBadRequest, MsgInvalidJSON, CodeInvalidJSON},
		{"validation", apperror.ValidationFailed("title", "제목을 입력해주세요."), postErrors, false, http.StatusBadRequest, "제목을 입력해주세요.", CodeValidation},
		{"unauthorized", apperror.Unauthorized("로그인이 필요합니다."), postErrors, false, http.StatusUnauthorized, "로그인이 필요합니다.", CodeUnauthorized},
		{"wrapped forbidden", fmt.Errorf("deleting: %w", apperror.Forbidden("nope")), postErrors, false, http.StatusForbidden, "nope", CodeForbidden},
		{"not found", apperror.NotFound("게시글을 찾을 수 없습니다."), postErrors, false, http.StatusNotFound, "게시글을 찾을 수 없습니다.", CodeNotFound},
		{"conflict", apperror.Conflict("Username already taken"), postErrors, false, http.StatusConflict, "Username already taken", CodeConflict},
		{"backend error is normalized", apperror.Backend("42501", "new row violates row-level security policy"), postErrors, false, http.StatusInternalServerError, "이 작업을 수행할 권한이 없습니다.", "42501"},
		{"unexpected error", errors.New("boom"), postErrors, false, http.StatusInternalServerError, MsgServerError, ""},
		{"unexpected error in debug", errors.New("boom"), postErrors, true, http.StatusInternalServerError, "[DEV] boom", ""},
		{"profile style drops codes", apperror.NotFound("Profile not found"), profileErrors, false, http.StatusNotFound, "Profile not found", ""},
		{"profile style unexpected", errors.New("boom"), profileErrors, false, http.StatusInternalServerError, "Internal server error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, apperror.Normalizer{Debug: tt.debug}, tt.style, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}

func TestWriteError_ProfileBodyHasNoCodeField(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, apperror.Normalizer{}, profileErrors, apperror.NotFound("Profile not found"))
	assert.JSONEq(t, `{"success":false,"error":"Profile not found"}`, rec.Body.String())
}

func TestDecodeObject(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"object", `{"title":"hi"}`, false},
		{"empty object", `{}`, false},
		{"empty body", ``, true},
		{"null", `null`, true},
		{"array", `[1,2]`, true},
		{"string", `"title"`, true},
		{"malformed", `{"title":`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			input, err := decodeObject(httptest.NewRecorder(), r)
			if tt.wantErr {
				assert.ErrorIs(t, err, errInvalidJSON)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, input)
		})
	}
}

func TestDecodeObject_BodyTooLarge(t *testing.T) {
	body := `{"content":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	_, err := decodeObject(httptest.NewRecorder(), r)
	assert.ErrorIs(t, err, errInvalidJSON)
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?page=3&limit=abc", nil)
	assert.Equal(t, 3, queryInt(r, "page"))
	assert.Equal(t, 0, queryInt(r, "limit"))
	assert.Equal(t, 0, queryInt(r, "offset"))
}
