package handlers

import (
	"net/http"

	"github.com/tastebook/tastebook/internal/auth"
	"github.com/tastebook/tastebook/internal/models"
)

type createReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,min=1"`
}

type updateReviewRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,min=1"`
}

func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	reviews, err := h.reviews.ListByPost(r.Context(), postID)
	if err != nil {
		h.internalError(w, err, "Review listing failed")
		return
	}
	respondJSON(w, http.StatusOK, reviews)
}

func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}
	reviewID, err := pathID(r, "reviewId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	review, err := h.reviews.FindByID(r.Context(), reviewID)
	if err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, "Review not found")
			return
		}
		h.internalError(w, err, "Review lookup failed")
		return
	}
	if review.PostID != postID {
		respondError(w, http.StatusNotFound, "Review not found")
		return
	}

	respondJSON(w, http.StatusOK, review)
}

// CreateReview persists the review and folds its rating into the post's
// running average in one store transaction.
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r)

	postID, err := pathID(r, "postId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	var req createReviewRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	review := &models.Review{
		Rating:  req.Rating,
		Comment: req.Comment,
		UserID:  userID,
		PostID:  postID,
	}
	if err := h.reviews.Create(r.Context(), review); err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		h.internalError(w, err, "Review creation failed")
		return
	}

	respondJSON(w, http.StatusCreated, review)
}

func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r)

	reviewID, err := pathID(r, "reviewId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var req updateReviewRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	review, err := h.reviews.FindOwned(r.Context(), reviewID, userID)
	if err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, "Review not found or unauthorized")
			return
		}
		h.internalError(w, err, "Review lookup failed")
		return
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = *req.Comment
	}

	if err := h.reviews.Save(r.Context(), review); err != nil {
		h.internalError(w, err, "Review update failed")
		return
	}

	respondJSON(w, http.StatusOK, review)
}

func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r)

	reviewID, err := pathID(r, "reviewId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	review, err := h.reviews.FindOwned(r.Context(), reviewID, userID)
	if err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, "Review not found or unauthorized")
			return
		}
		h.internalError(w, err, "Review lookup failed")
		return
	}

	if err := h.reviews.Delete(r.Context(), review); err != nil {
		h.internalError(w, err, "Review deletion failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
