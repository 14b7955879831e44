// Package service holds the per-request business rules: authentication checks,
// validation, ownership and the shape of what the handlers send back.
//
// Services are built per request around the request-scoped backend client, so
// each one only ever sees the caller's own identity.
package service

import (
	"context"
	"log/slog"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/backend"
	"github.com/sakif/portfolio/internal/model"
)

// MsgLoginRequired is the 401 message of the post and contact endpoints.
const MsgLoginRequired = "로그인이 필요합니다."

// RequireUser resolves the request's identity. A backend failure is logged and
// treated the same as no session: both come back as Unauthorized(message).
func RequireUser(ctx context.Context, a backend.Auth, logger *slog.Logger, message string) (*model.User, error) {
	user, err := a.GetUser(ctx)
	if err != nil {
		apperror.Log(logger, "resolving session", err)
		return nil, apperror.Unauthorized(message)
	}
	if user == nil {
		return nil, apperror.Unauthorized(message)
	}
	return user, nil
}
