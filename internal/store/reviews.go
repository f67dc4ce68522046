package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tastebook/tastebook/internal/aggregate"
	"github.com/tastebook/tastebook/internal/models"
)

type GormReviewStore struct {
	db *gorm.DB
}

func NewGormReviewStore(db *gorm.DB) *GormReviewStore {
	return &GormReviewStore{db: db}
}

// Create inserts the review and updates the post's running average and
// count. The post row is locked for the duration of the transaction, so two
// concurrent submissions for the same post serialize instead of losing one
// update.
func (s *GormReviewStore) Create(ctx context.Context, review *models.Review) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&post, review.PostID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Create(review).Error; err != nil {
			return err
		}

		avg, count := aggregate.Next(post.AverageRating, post.ReviewCount, review.Rating)
		return tx.Model(&post).UpdateColumns(map[string]interface{}{
			"average_rating": avg,
			"review_count":   count,
		}).Error
	})
}

func (s *GormReviewStore) FindByID(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	if err := s.db.WithContext(ctx).First(&review, id).Error; err != nil {
		return nil, translate(err)
	}
	return &review, nil
}

func (s *GormReviewStore) FindOwned(ctx context.Context, id, userID uint) (*models.Review, error) {
	var review models.Review
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&review).Error; err != nil {
		return nil, translate(err)
	}
	return &review, nil
}

func (s *GormReviewStore) ListByPost(ctx context.Context, postID uint) ([]models.Review, error) {
	var reviews []models.Review
	if err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("id").
		Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

func (s *GormReviewStore) Save(ctx context.Context, review *models.Review) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(review).Error; err != nil {
			return err
		}
		return rebuildAggregate(tx, review.PostID)
	})
}

func (s *GormReviewStore) Delete(ctx context.Context, review *models.Review) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(review).Error; err != nil {
			return err
		}
		return rebuildAggregate(tx, review.PostID)
	})
}

// rebuildAggregate recomputes the post's rating fields from the review rows.
// Review edits and deletions cannot be folded incrementally, so they pay
// for a full recompute under the transaction's lock.
func rebuildAggregate(tx *gorm.DB, postID uint) error {
	var post models.Post
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	var agg struct {
		Average float64
		Count   int64
	}
	if err := tx.Model(&models.Review{}).
		Where("post_id = ?", postID).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Scan(&agg).Error; err != nil {
		return err
	}

	return tx.Model(&post).UpdateColumns(map[string]interface{}{
		"average_rating": agg.Average,
		"review_count":   agg.Count,
	}).Error
}
