package handlers

import (
	"net/http"
	"strconv"

	"github.com/tastebook/tastebook/internal/auth"
	"github.com/tastebook/tastebook/internal/models"
	"github.com/tastebook/tastebook/internal/store"
)

type createPostRequest struct {
	Title     string `json:"title" validate:"required,min=1"`
	Content   string `json:"content" validate:"required,min=1"`
	Thumbnail string `json:"thumbnail" validate:"omitempty,min=1"`
}

type updatePostRequest struct {
	Title     *string `json:"title" validate:"omitempty,min=1"`
	Content   *string `json:"content" validate:"omitempty,min=1"`
	Thumbnail *string `json:"thumbnail" validate:"omitempty,min=1"`
}

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	filter, errMsg := parsePostFilter(r)
	if errMsg != "" {
		respondError(w, http.StatusBadRequest, errMsg)
		return
	}

	posts, err := h.posts.List(r.Context(), filter)
	if err != nil {
		h.internalError(w, err, "Post listing failed")
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "postId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	post, err := h.posts.FindByID(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		h.internalError(w, err, "Post lookup failed")
		return
	}

	if err := h.posts.IncrementViews(r.Context(), id); err != nil && !isNotFound(err) {
		h.internalError(w, err, "View increment failed")
		return
	}
	post.Views++

	respondJSON(w, http.StatusOK, post)
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r)

	var req createPostRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	post := &models.Post{
		Title:     req.Title,
		Content:   req.Content,
		Thumbnail: req.Thumbnail,
		UserID:    userID,
	}
	if err := h.posts.Create(r.Context(), post); err != nil {
		h.internalError(w, err, "Post creation failed")
		return
	}

	respondJSON(w, http.StatusCreated, post)
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r)

	id, err := pathID(r, "postId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	var req updatePostRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.posts.FindOwned(r.Context(), id, userID)
	if err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, "Post not found or unauthorized")
			return
		}
		h.internalError(w, err, "Post lookup failed")
		return
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Thumbnail != nil {
		post.Thumbnail = *req.Thumbnail
	}

	if err := h.posts.Save(r.Context(), post); err != nil {
		h.internalError(w, err, "Post update failed")
		return
	}

	respondJSON(w, http.StatusOK, post)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r)

	id, err := pathID(r, "postId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	post, err := h.posts.FindOwned(r.Context(), id, userID)
	if err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, "Post not found or unauthorized")
			return
		}
		h.internalError(w, err, "Post lookup failed")
		return
	}

	if err := h.posts.Delete(r.Context(), post); err != nil {
		h.internalError(w, err, "Post deletion failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parsePostFilter(r *http.Request) (store.PostFilter, string) {
	var filter store.PostFilter
	q := r.URL.Query()

	if raw := q.Get("minViews"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, "Minimum views must be an integer"
		}
		filter.MinViews = &v
	}

	if raw := q.Get("minRating"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 1 || v > 5 {
			return filter, "Minimum rating must be a value between 1 and 5"
		}
		filter.MinRating = &v
	}

	if raw := q.Get("sort"); raw != "" {
		if raw != "rating" && raw != "views" {
			return filter, `Invalid sort parameter. Valid values are "rating" and "views"`
		}
		filter.Sort = raw
	}

	if raw := q.Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return filter, "Page must be an integer greater than 0"
		}
		filter.Page = v
	}

	if raw := q.Get("postsPerPage"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 3 || v > 10 {
			return filter, "Posts per page must be an integer between 3 and 10"
		}
		filter.PerPage = v
	}

	return filter, ""
}
