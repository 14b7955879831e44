package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/content"
	"github.com/sakif/portfolio/internal/middleware"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/service"
	"github.com/sakif/portfolio/internal/validate"
)

// maxFormBytes bounds every HTML form body.
const maxFormBytes = 64 << 10

const msgProfileSaved = "프로필이 저장되었습니다."

type category struct {
	Value string
	Label string
}

var (
	postCategories = []category{
		{Value: "tech", Label: "기술"},
		{Value: "daily", Label: "일상"},
		{Value: "general", Label: "일반"},
	}
	filterCategories = append([]category{{Value: validate.AllCategories, Label: "전체"}}, postCategories...)
)

// PageHandler serves the server-rendered pages.
type PageHandler struct {
	backend    Backend
	content    *content.Content
	render     *Renderer
	contact    *service.ContactService
	normalizer apperror.Normalizer
	logger     *slog.Logger
}

func NewPageHandler(
	b Backend,
	c *content.Content,
	render *Renderer,
	contact *service.ContactService,
	n apperror.Normalizer,
	logger *slog.Logger,
) *PageHandler {
	return &PageHandler{
		backend:    b,
		content:    c,
		render:     render,
		contact:    contact,
		normalizer: n,
		logger:     logger,
	}
}

func userFrom(r *http.Request) *model.User {
	return middleware.UserFromContext(r.Context())
}

// formInput parses a urlencoded form and returns the submitted keys as
// validation input plus a copy to echo back into the form.
func formInput(w http.ResponseWriter, r *http.Request, keys ...string) (map[string]any, map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return nil, nil, err
	}
	input := make(map[string]any, len(keys))
	echo := make(map[string]string, len(keys))
	for _, k := range keys {
		if vs, ok := r.PostForm[k]; ok && len(vs) > 0 {
			input[k] = vs[0]
			echo[k] = vs[0]
		}
	}
	return input, echo, nil
}

func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "home", pageData{Data: h.content.FeaturedProjects()})
}

func (h *PageHandler) HandleAbout(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "about", pageData{Title: "소개", Data: h.content.Skills})
}

type experiencePage struct {
	Experiences    []content.Experience
	Education      []content.Education
	Certifications []content.Certification
}

func (h *PageHandler) HandleExperience(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "experience", pageData{
		Title: "경력",
		Data: experiencePage{
			Experiences:    h.content.Experiences,
			Education:      h.content.Education,
			Certifications: h.content.Certifications,
		},
	})
}

func (h *PageHandler) HandleProjects(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "projects", pageData{Title: "프로젝트", Data: h.content.Projects})
}

func (h *PageHandler) HandleProject(w http.ResponseWriter, r *http.Request) {
	project, ok := h.content.Project(chi.URLParam(r, "id"))
	if !ok {
		h.render.NotFound(w, r, "프로젝트를 찾을 수 없습니다.")
		return
	}
	h.render.Render(w, r, http.StatusOK, "project", pageData{Title: project.Title, Data: project})
}

func (h *PageHandler) HandleQnA(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "qna", pageData{Title: "Q&A", Data: h.content.Questions()})
}

func (h *PageHandler) HandleQuestion(w http.ResponseWriter, r *http.Request) {
	q, ok := h.content.Question(chi.URLParam(r, "id"))
	if !ok {
		h.render.NotFound(w, r, "질문을 찾을 수 없습니다.")
		return
	}
	h.render.Render(w, r, http.StatusOK, "qna_detail", pageData{Title: q.Title, Data: q})
}

type postsPage struct {
	Category   string
	Categories []category
	List       *service.PostList
}

func (h *PageHandler) HandlePosts(w http.ResponseWriter, r *http.Request) {
	cat := r.URL.Query().Get("category")
	if cat == "" {
		cat = validate.AllCategories
	}

	data := pageData{Title: "게시판"}
	svc := service.NewPostService(clientFor(h.backend, w, r), h.logger)
	list, err := svc.List(r.Context(), cat, queryInt(r, "page"), service.DefaultPageSize)
	if err != nil {
		data.Error = h.normalizer.Message(err)
	}
	data.Data = postsPage{Category: cat, Categories: filterCategories, List: list}
	h.render.Render(w, r, http.StatusOK, "posts", data)
}

func (h *PageHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	svc := service.NewPostService(clientFor(h.backend, w, r), h.logger)
	post, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			h.render.NotFound(w, r, service.MsgPostNotFound)
			return
		}
		h.render.Render(w, r, http.StatusInternalServerError, "error", pageData{Error: h.normalizer.Message(err)})
		return
	}
	h.render.Render(w, r, http.StatusOK, "post", pageData{Title: post.Title, Data: post})
}

// HandleNewPost renders the post form. Anonymous visitors go to the login page.
func (h *PageHandler) HandleNewPost(w http.ResponseWriter, r *http.Request) {
	if userFrom(r) == nil {
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return
	}
	h.render.Render(w, r, http.StatusOK, "post_new", pageData{
		Title: "새 글 작성",
		Form:  map[string]string{"category": validate.DefaultCategory},
		Data:  postCategories,
	})
}

// HandleCreatePost is the form path of post creation: content is required,
// failures re-render the form and success lands on the board.
func (h *PageHandler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	input, echo, err := formInput(w, r, "title", "content", "category")
	if err != nil {
		h.render.Render(w, r, http.StatusBadRequest, "post_new", pageData{Title: "새 글 작성", Error: MsgInvalidJSON, Data: postCategories})
		return
	}

	svc := service.NewPostService(clientFor(h.backend, w, r), h.logger)
	if _, err := svc.Create(r.Context(), input, true); err != nil {
		var appErr *apperror.AppError
		switch {
		case errors.Is(err, apperror.ErrUnauthorized):
			http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		case errors.As(err, &appErr):
			h.render.Render(w, r, http.StatusBadRequest, "post_new", pageData{Title: "새 글 작성", Error: appErr.Message, Form: echo, Data: postCategories})
		default:
			h.render.Render(w, r, http.StatusInternalServerError, "post_new", pageData{Title: "새 글 작성", Error: service.MsgPostSaveFailed, Form: echo, Data: postCategories})
		}
		return
	}

	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}

func (h *PageHandler) HandleContact(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "contact", pageData{Title: "연락하기"})
}

func (h *PageHandler) HandleContactSubmit(w http.ResponseWriter, r *http.Request) {
	input, echo, err := formInput(w, r, "name", "email", "subject", "message")
	if err != nil {
		h.render.Render(w, r, http.StatusBadRequest, "contact", pageData{Title: "연락하기", Error: MsgInvalidJSON})
		return
	}

	if _, err := h.contact.Submit(r.Context(), input); err != nil {
		data := pageData{Title: "연락하기", Form: echo}
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			data.Errors = appErr.Fields
		} else {
			data.Error = MsgServerError
		}
		h.render.Render(w, r, http.StatusBadRequest, "contact", data)
		return
	}

	h.render.Render(w, r, http.StatusOK, "contact", pageData{Title: "연락하기", Notice: service.MsgContactSent})
}

func (h *PageHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "dashboard", pageData{Title: "대시보드"})
}

func profileForm(p *model.Profile) map[string]string {
	form := make(map[string]string, len(model.ProfileFields))
	set := func(k string, v *string) {
		if v != nil {
			form[k] = *v
		}
	}
	set("username", p.Username)
	set("full_name", p.FullName)
	set("avatar_url", p.AvatarURL)
	set("bio", p.Bio)
	set("website", p.Website)
	return form
}

func (h *PageHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	svc := service.NewProfileService(clientFor(h.backend, w, r), h.logger)
	data := pageData{Title: "프로필"}
	if r.URL.Query().Get("saved") == "1" {
		data.Notice = msgProfileSaved
	}

	profile, err := svc.Me(r.Context())
	switch {
	case errors.Is(err, apperror.ErrUnauthorized):
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return
	case err != nil:
		data.Error = h.normalizer.Message(err)
	default:
		data.Form = profileForm(profile)
	}
	h.render.Render(w, r, http.StatusOK, "profile", data)
}

func (h *PageHandler) HandleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	input, echo, err := formInput(w, r, model.ProfileFields...)
	if err != nil {
		h.render.Render(w, r, http.StatusBadRequest, "profile", pageData{Title: "프로필", Error: MsgInvalidJSON})
		return
	}

	svc := service.NewProfileService(clientFor(h.backend, w, r), h.logger)
	if _, err := svc.UpdateMe(r.Context(), input); err != nil {
		if errors.Is(err, apperror.ErrUnauthorized) {
			http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
			return
		}
		msg := h.normalizer.Message(err)
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			msg = appErr.Message
		}
		h.render.Render(w, r, http.StatusBadRequest, "profile", pageData{Title: "프로필", Error: msg, Form: echo})
		return
	}

	http.Redirect(w, r, "/profile?saved=1", http.StatusSeeOther)
}

// HandleHealth reports liveness.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
