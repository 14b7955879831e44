package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio/internal/apperror"
)

func TestContactService_Submit(t *testing.T) {
	var buf bytes.Buffer
	svc := NewContactService(slog.New(slog.NewJSONHandler(&buf, nil)))
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }

	msg, err := svc.Submit(context.Background(), map[string]any{
		"name":    " 홍길동 ",
		"email":   "gildong@example.com",
		"subject": "협업 문의",
		"message": "프로젝트 협업이 가능한지 궁금합니다.",
	})
	require.NoError(t, err)

	assert.Equal(t, "홍길동", msg.Name)
	assert.Contains(t, buf.String(), `"msg":"contact form submission"`)
	assert.Contains(t, buf.String(), `"timestamp":"2026-03-01T09:30:00Z"`)
	assert.Contains(t, buf.String(), `"subject":"협업 문의"`)
}

func TestContactService_SubmitInvalid(t *testing.T) {
	var buf bytes.Buffer
	svc := NewContactService(slog.New(slog.NewJSONHandler(&buf, nil)))

	_, err := svc.Submit(context.Background(), map[string]any{"name": "홍길동", "message": "짧음"})
	require.ErrorIs(t, err, apperror.ErrValidation)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Len(t, appErr.Fields, 3)
	assert.Equal(t, "email", appErr.Field)
	assert.Empty(t, buf.String(), "invalid submissions are not recorded")
}
