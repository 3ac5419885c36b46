// Package httpapi - REST интерфейс сервиса постов и websocket лента комментариев.
package httpapi

import (
	"net/http"

	"github.com/UkralStul/posts-service/internal/dataloader"
	"github.com/UkralStul/posts-service/internal/domain"
	"github.com/UkralStul/posts-service/internal/events"
	"github.com/UkralStul/posts-service/internal/service"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc     *service.Service
	hub     *events.Hub
	source  dataloader.Source
}

func NewHandler(svc *service.Service, hub *events.Hub, source dataloader.Source) *Handler {
	return &Handler{svc: svc, hub: hub, source: source}
}

// Routes монтирует обработчики. Запросы к /api получают свежие дата-лоадеры.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return dataloader.Middleware(h.source, next)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.listPosts)
			r.Get("/recent", h.recentPosts)
			r.With(requireUser).Get("/my", h.myPosts)
			r.With(requireUser).Post("/", h.createPost)
			r.Route("/{postID}", func(r chi.Router) {
				r.Get("/", h.getPost)
				r.Group(func(r chi.Router) {
					r.Use(requireUser)
					r.Put("/", h.replacePost)
					r.Patch("/", h.patchPost)
					r.Post("/status", h.updatePostStatus)
					r.Delete("/", h.deletePost)
				})
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Get("/", h.listComments)
			r.With(requireUser).Post("/", h.createComment)
			r.Route("/{commentID}", func(r chi.Router) {
				r.Get("/", h.getComment)
				r.Get("/replies", h.listReplies)
				r.Group(func(r chi.Router) {
					r.Use(requireUser)
					r.Put("/", h.updateComment)
					r.Patch("/", h.updateComment)
					r.Delete("/", h.deleteComment)
				})
			})
		})

		r.Route("/likes", func(r chi.Router) {
			r.Get("/", h.listLikes)
			r.With(requireUser).Post("/", h.createLike)
			r.Get("/{likeID}", h.getLike)
			r.With(requireUser).Delete("/{likeID}", h.deleteLike)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", h.listTags)
			r.With(requireUser).Post("/", h.createTag)
			r.Route("/{tagID}", func(r chi.Router) {
				r.Get("/", h.getTag)
				r.Group(func(r chi.Router) {
					r.Use(requireUser)
					r.Put("/", h.updateTag)
					r.Patch("/", h.updateTag)
					r.Delete("/", h.deleteTag)
				})
			})
		})
	})

	r.Get("/ws/posts/{postID}/comments", h.commentFeed)
}

// === Posts ===

type postRequest struct {
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Status  *string   `json:"status"`
	Tags    *[]string `json:"tags"`
}

func (h *Handler) writePostPage(w http.ResponseWriter, r *http.Request, page service.Page[*domain.Post], err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	views, err := h.postViews(r, page.Items)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapPage(page, views))
}

func (h *Handler) writePost(w http.ResponseWriter, r *http.Request, status int, post *domain.Post) {
	view, err := h.postView(r, post)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, view)
}

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := service.PostQuery{
		Search:  r.URL.Query().Get("search"),
		TagSlug: r.URL.Query().Get("tag"),
	}
	page, err := h.svc.ListPosts(r.Context(), q, req)
	h.writePostPage(w, r, page, err)
}

func (h *Handler) recentPosts(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.svc.ListRecentPublished(r.Context(), req)
	h.writePostPage(w, r, page, err)
}

func (h *Handler) myPosts(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.svc.ListByOwner(r.Context(), userID(r), req)
	h.writePostPage(w, r, page, err)
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	var body postRequest
	if err := decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	in := service.CreatePostInput{UserID: userID(r)}
	if body.Title != nil {
		in.Title = *body.Title
	}
	if body.Content != nil {
		in.Content = *body.Content
	}
	if body.Status != nil {
		in.Status = *body.Status
	}
	if body.Tags != nil {
		in.TagIDs = *body.Tags
	}

	post, err := h.svc.CreatePost(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writePost(w, r, http.StatusCreated, post)
}

func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.GetPost(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writePost(w, r, http.StatusOK, post)
}

// replacePost - полное обновление, title и content обязательны.
func (h *Handler) replacePost(w http.ResponseWriter, r *http.Request) {
	var body postRequest
	if err := decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.Title == nil {
		writeError(w, r, &domain.ValidationError{Field: "title", Msg: "title is required"})
		return
	}
	if body.Content == nil {
		writeError(w, r, &domain.ValidationError{Field: "content", Msg: "content is required"})
		return
	}
	h.updatePost(w, r, body)
}

func (h *Handler) patchPost(w http.ResponseWriter, r *http.Request) {
	var body postRequest
	if err := decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	h.updatePost(w, r, body)
}

func (h *Handler) updatePost(w http.ResponseWriter, r *http.Request, body postRequest) {
	post, err := h.svc.UpdatePost(r.Context(), chi.URLParam(r, "postID"), userID(r), service.UpdatePostInput{
		Title:   body.Title,
		Content: body.Content,
		Status:  body.Status,
		TagIDs:  body.Tags,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writePost(w, r, http.StatusOK, post)
}

func (h *Handler) updatePostStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	post, err := h.svc.UpdatePostStatus(r.Context(), chi.URLParam(r, "postID"), domain.Status(body.Status), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writePost(w, r, http.StatusOK, post)
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePost(r.Context(), chi.URLParam(r, "postID"), userID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// === Comments ===

func (h *Handler) writeCommentPage(w http.ResponseWriter, r *http.Request, page service.Page[*domain.Comment], err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	views, err := h.commentViews(r, page.Items)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapPage(page, views))
}

func (h *Handler) writeComment(w http.ResponseWriter, r *http.Request, status int, c *domain.Comment) {
	view, err := h.commentView(r, c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, view)
}

// listComments без параметра post возвращает корневые комментарии всех постов.
func (h *Handler) listComments(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.svc.ListComments(r.Context(), r.URL.Query().Get("post"), req)
	h.writeCommentPage(w, r, page, err)
}

func (h *Handler) listReplies(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.svc.ListReplies(r.Context(), chi.URLParam(r, "commentID"), req)
	h.writeCommentPage(w, r, page, err)
}

func (h *Handler) createComment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Post    string  `json:"post"`
		Content string  `json:"content"`
		Parent  *string `json:"parent"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.CreateComment(r.Context(), userID(r), body.Post, body.Content, body.Parent)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeComment(w, r, http.StatusCreated, c)
}

func (h *Handler) getComment(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetComment(r.Context(), chi.URLParam(r, "commentID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeComment(w, r, http.StatusOK, c)
}

func (h *Handler) updateComment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.UpdateComment(r.Context(), chi.URLParam(r, "commentID"), userID(r), body.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeComment(w, r, http.StatusOK, c)
}

func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteComment(r.Context(), chi.URLParam(r, "commentID"), userID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// === Likes ===

func (h *Handler) listLikes(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.svc.ListLikes(r.Context(), r.URL.Query().Get("post"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) createLike(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Post string `json:"post"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	like, err := h.svc.CreateLike(r.Context(), userID(r), body.Post)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, like)
}

func (h *Handler) getLike(w http.ResponseWriter, r *http.Request) {
	like, err := h.svc.GetLike(r.Context(), chi.URLParam(r, "likeID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, like)
}

func (h *Handler) deleteLike(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteLike(r.Context(), chi.URLParam(r, "likeID"), userID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// === Tags ===

type tagRequest struct {
	Name string `json:"name"`
}

func (h *Handler) listTags(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.svc.ListTags(r.Context(), r.URL.Query().Get("search"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]tagView, len(page.Items))
	for i, t := range page.Items {
		if views[i], err = h.tagViewWithCount(r, t); err != nil {
			writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, mapPage(page, views))
}

func (h *Handler) writeTag(w http.ResponseWriter, r *http.Request, status int, t *domain.Tag) {
	view, err := h.tagViewWithCount(r, t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, view)
}

func (h *Handler) createTag(w http.ResponseWriter, r *http.Request) {
	var body tagRequest
	if err := decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	tag, err := h.svc.CreateTag(r.Context(), body.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeTag(w, r, http.StatusCreated, tag)
}

func (h *Handler) getTag(w http.ResponseWriter, r *http.Request) {
	tag, err := h.svc.GetTag(r.Context(), chi.URLParam(r, "tagID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeTag(w, r, http.StatusOK, tag)
}

func (h *Handler) updateTag(w http.ResponseWriter, r *http.Request) {
	var body tagRequest
	if err := decode(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	tag, err := h.svc.UpdateTag(r.Context(), chi.URLParam(r, "tagID"), body.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeTag(w, r, http.StatusOK, tag)
}

func (h *Handler) deleteTag(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTag(r.Context(), chi.URLParam(r, "tagID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
