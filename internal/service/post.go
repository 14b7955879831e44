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
	"github.com/sakif/portfolio/internal/validate"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

const (
	MsgPostNotFound    = "게시글을 찾을 수 없습니다."
	MsgPostIDRequired  = "삭제할 게시글 ID가 필요합니다."
	MsgDeleteNotOwner  = "본인이 작성한 게시글만 삭제할 수 있습니다."
	MsgUpdateNotOwner  = "본인이 작성한 게시글만 수정할 수 있습니다."
	MsgNothingToUpdate = "수정할 내용이 없습니다."
	MsgPostDeleted     = "게시글이 삭제되었습니다."
	MsgPostSaveFailed  = "게시글 저장에 실패했습니다."
)

// Pagination describes one page of a post listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// PostList is the data of a post listing response.
type PostList struct {
	Posts      []model.Post `json:"posts"`
	Pagination Pagination   `json:"pagination"`
}

// Paginate clamps page and limit to usable values and returns the row offset.
// Values below 1 fall back to the defaults; limit is capped at MaxPageSize.
func Paginate(page, limit int) (int, int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit, (page - 1) * limit
}

// TotalPages is ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit < 1 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

type PostService struct {
	auth   backend.Auth
	posts  backend.Posts
	logger *slog.Logger
}

func NewPostService(client *backend.Client, logger *slog.Logger) *PostService {
	return &PostService{
		auth:   client.Auth,
		posts:  client.Posts,
		logger: logger,
	}
}

// Authenticate resolves the caller, or fails with the 401 the post endpoints
// use.
func (s *PostService) Authenticate(ctx context.Context) (*model.User, error) {
	return RequireUser(ctx, s.auth, s.logger, MsgLoginRequired)
}

// List returns one page of posts, newest first. An empty category or "all"
// lists every category.
func (s *PostService) List(ctx context.Context, category string, page, limit int) (*PostList, error) {
	page, limit, offset := Paginate(page, limit)
	if category == validate.AllCategories {
		category = ""
	}

	posts, total, err := s.posts.List(ctx, repository.PostQuery{
		Category: category,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		apperror.Log(s.logger, "GET /api/posts", err)
		return nil, fmt.Errorf("service/post: listing posts: %w", err)
	}
	if posts == nil {
		posts = []model.Post{}
	}

	return &PostList{
		Posts: posts,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: TotalPages(total, limit),
		},
	}, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if apperror.IsNoRows(err) {
			return nil, apperror.NotFound(MsgPostNotFound)
		}
		apperror.Log(s.logger, "GET /api/posts/{id}", err)
		return nil, fmt.Errorf("service/post: fetching post %s: %w", id, err)
	}
	return post, nil
}

// Create validates input and inserts a post authored by the caller.
// requireContent is set by the HTML form, which insists on a body.
func (s *PostService) Create(ctx context.Context, input map[string]any, requireContent bool) (*model.Post, error) {
	user, err := s.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	if errs := validate.Post(input, requireContent); !errs.Valid() {
		field, _ := errs.First(validate.PostFieldOrder...)
		return nil, apperror.Invalid(errs, field)
	}

	category := validate.String(input, "category")
	if category == "" {
		category = validate.DefaultCategory
	}

	post := &model.Post{
		Title:      strings.TrimSpace(validate.String(input, "title")),
		Content:    strings.TrimSpace(validate.String(input, "content")),
		Category:   category,
		AuthorID:   user.ID,
		AuthorName: user.DisplayName(),
	}

	if err := s.posts.Insert(ctx, post); err != nil {
		apperror.Log(s.logger, "POST /api/posts", err)
		return nil, fmt.Errorf("service/post: inserting post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("postID", post.ID),
		slog.String("authorID", user.ID),
		slog.String("category", post.Category),
	)

	return post, nil
}

// Update applies a partial update to a post the caller wrote.
func (s *PostService) Update(ctx context.Context, id string, input map[string]any) (*model.Post, error) {
	user, err := s.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	if errs := validate.PostPatch(input); !errs.Valid() {
		field, _ := errs.First(validate.PostFieldOrder...)
		return nil, apperror.Invalid(errs, field)
	}

	fields := postFields(input)
	if fields.Empty() {
		return nil, apperror.ValidationFailed("", MsgNothingToUpdate)
	}

	if err := s.authorize(ctx, user, id, MsgUpdateNotOwner); err != nil {
		return nil, err
	}

	post, err := s.posts.UpdateFields(ctx, id, fields)
	if err != nil {
		if apperror.IsNoRows(err) {
			return nil, apperror.NotFound(MsgPostNotFound)
		}
		apperror.Log(s.logger, "PATCH /api/posts/{id}", err)
		return nil, fmt.Errorf("service/post: updating post %s: %w", id, err)
	}

	s.logger.Info("post updated", slog.String("postID", id), slog.String("authorID", user.ID))
	return post, nil
}

// Delete removes a post the caller wrote.
func (s *PostService) Delete(ctx context.Context, id string) error {
	user, err := s.Authenticate(ctx)
	if err != nil {
		return err
	}

	if strings.TrimSpace(id) == "" {
		return apperror.ValidationFailed("id", MsgPostIDRequired)
	}

	if err := s.authorize(ctx, user, id, MsgDeleteNotOwner); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		apperror.Log(s.logger, "DELETE /api/posts", err)
		return fmt.Errorf("service/post: deleting post %s: %w", id, err)
	}

	s.logger.Info("post deleted", slog.String("postID", id), slog.String("authorID", user.ID))
	return nil
}

// authorize checks the post exists and belongs to user.
func (s *PostService) authorize(ctx context.Context, user *model.User, id, notOwner string) error {
	authorID, err := s.posts.AuthorOf(ctx, id)
	if err != nil {
		if apperror.IsNoRows(err) {
			return apperror.NotFound(MsgPostNotFound)
		}
		apperror.Log(s.logger, "fetching post author", err)
		return fmt.Errorf("service/post: fetching author of %s: %w", id, err)
	}
	if authorID != user.ID {
		return apperror.Forbidden(notOwner)
	}
	return nil
}

func postFields(input map[string]any) repository.PostFields {
	var f repository.PostFields
	if _, ok := input["title"]; ok {
		title := strings.TrimSpace(validate.String(input, "title"))
		f.Title = &title
	}
	if _, ok := input["content"]; ok {
		content := strings.TrimSpace(validate.String(input, "content"))
		f.Content = &content
	}
	if _, ok := input["category"]; ok {
		category := validate.String(input, "category")
		f.Category = &category
	}
	return f
}
