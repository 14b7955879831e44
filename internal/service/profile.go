package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/backend"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

const (
	DefaultProfileLimit = 10
	MaxProfileLimit     = 100
)

const (
	MsgUnauthorized     = "Unauthorized"
	MsgProfileNotFound  = "Profile not found"
	MsgNoFieldsToUpdate = "No valid fields to update"
	MsgUsernameTaken    = "Username already taken"
	MsgUserDeleted      = "User deleted successfully"
	MsgInternal         = "Internal server error"
	msgFieldNotString   = "%s must be a string or null"
	usernameColumn      = "username"
)

// ProfileList is one window of the public profile listing.
type ProfileList struct {
	Profiles []model.Profile
	Total    int
	Limit    int
	Offset   int
}

type ProfileService struct {
	auth     backend.Auth
	profiles backend.Profiles
	logger   *slog.Logger
}

func NewProfileService(client *backend.Client, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		auth:     client.Auth,
		profiles: client.Profiles,
		logger:   logger,
	}
}

// List returns profiles newest first. A limit below 1 falls back to the
// default and a negative offset to 0.
func (s *ProfileService) List(ctx context.Context, limit, offset int) (*ProfileList, error) {
	if limit < 1 {
		limit = DefaultProfileLimit
	}
	if limit > MaxProfileLimit {
		limit = MaxProfileLimit
	}
	if offset < 0 {
		offset = 0
	}

	profiles, total, err := s.profiles.List(ctx, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		apperror.Log(s.logger, "GET /api/profiles", err)
		return nil, fmt.Errorf("service/profile: listing profiles: %w", err)
	}
	if profiles == nil {
		profiles = []model.Profile{}
	}

	return &ProfileList{Profiles: profiles, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *ProfileService) Get(ctx context.Context, id string) (*model.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		if apperror.IsNoRows(err) {
			return nil, apperror.NotFound(MsgProfileNotFound)
		}
		apperror.Log(s.logger, "GET /api/profiles/{id}", err)
		return nil, fmt.Errorf("service/profile: fetching profile %s: %w", id, err)
	}
	return profile, nil
}

// Authenticate resolves the caller, or fails with the 401 the profile
// endpoints use.
func (s *ProfileService) Authenticate(ctx context.Context) (*model.User, error) {
	return RequireUser(ctx, s.auth, s.logger, MsgUnauthorized)
}

// Me returns the caller's own profile.
func (s *ProfileService) Me(ctx context.Context) (*model.Profile, error) {
	user, err := s.Authenticate(ctx)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, user.ID)
}

// UpdateMe writes the allow-listed keys of input to the caller's profile.
// Strings are trimmed and an empty string clears the column, as does null.
func (s *ProfileService) UpdateMe(ctx context.Context, input map[string]any) (*model.Profile, error) {
	user, err := s.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	fields, err := profileFields(input)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, apperror.ValidationFailed("", MsgNoFieldsToUpdate)
	}

	profile, err := s.profiles.UpdateFields(ctx, user.ID, fields)
	if err != nil {
		if apperror.CodeOf(err) == apperror.CodeUniqueViolation && strings.Contains(err.Error(), usernameColumn) {
			return nil, apperror.Conflict(MsgUsernameTaken)
		}
		if apperror.IsNoRows(err) {
			return nil, apperror.NotFound(MsgProfileNotFound)
		}
		apperror.Log(s.logger, "PATCH /api/profiles/me", err)
		return nil, fmt.Errorf("service/profile: updating profile %s: %w", user.ID, err)
	}

	s.logger.Info("profile updated", slog.String("userID", user.ID), slog.Int("fields", len(fields)))
	return profile, nil
}

// DeleteMe deletes the caller's account through the admin client, then ends
// the session. The profile goes with the account.
func (s *ProfileService) DeleteMe(ctx context.Context, admin *backend.AdminClient) error {
	user, err := s.Authenticate(ctx)
	if err != nil {
		return err
	}

	if err := admin.Auth.DeleteUser(ctx, user.ID); err != nil {
		apperror.Log(s.logger, "DELETE /api/profiles/me", err)
		return fmt.Errorf("service/profile: deleting user %s: %w", user.ID, err)
	}

	if err := s.auth.SignOut(ctx); err != nil {
		// The account is already gone; a failed sign-out only leaves dead cookies.
		apperror.Log(s.logger, "signing out deleted user", err)
	}

	s.logger.Info("user deleted", slog.String("userID", user.ID))
	return nil
}

func profileFields(input map[string]any) (map[string]*string, error) {
	fields := make(map[string]*string)
	for _, name := range model.ProfileFields {
		raw, ok := input[name]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case nil:
			fields[name] = nil
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				fields[name] = &trimmed
			} else {
				fields[name] = nil
			}
		default:
			return nil, apperror.ValidationFailed(name, fmt.Sprintf(msgFieldNotString, name))
		}
	}
	return fields, nil
}
