// Package store holds the repository layer: small interfaces over the
// relational store so handlers never touch gorm directly.
package store

import (
	"context"
	"errors"

	"github.com/tastebook/tastebook/internal/models"
)

// ErrNotFound is returned when an entity does not exist or is not owned by
// the caller. Handlers map it to 404 in both cases so ownership misses do
// not leak existence.
var ErrNotFound = errors.New("not found")

// PostFilter narrows and orders post listings.
type PostFilter struct {
	MinViews  *int64
	MinRating *float64
	Sort      string // "rating" or "views"
	Page      int
	PerPage   int
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
}

type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id uint) (*models.Post, error)
	FindOwned(ctx context.Context, id, userID uint) (*models.Post, error)
	List(ctx context.Context, filter PostFilter) ([]models.Post, error)
	Save(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, post *models.Post) error
	IncrementViews(ctx context.Context, id uint) error
}

type ReviewStore interface {
	// Create persists the review and folds its rating into the owning
	// post's aggregate fields in one transaction.
	Create(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, id uint) (*models.Review, error)
	FindOwned(ctx context.Context, id, userID uint) (*models.Review, error)
	ListByPost(ctx context.Context, postID uint) ([]models.Review, error)
	// Save and Delete rebuild the post aggregate from the review rows so
	// the denormalized fields stay consistent with the collection.
	Save(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, review *models.Review) error
}

type ImageStore interface {
	Create(ctx context.Context, image *models.Image) error
	ListByUser(ctx context.Context, userID uint) ([]models.Image, error)
	FindOwned(ctx context.Context, filename string, userID uint) (*models.Image, error)
	Delete(ctx context.Context, image *models.Image) error
}
