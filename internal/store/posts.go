package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/tastebook/tastebook/internal/models"
)

type GormPostStore struct {
	db *gorm.DB
}

func NewGormPostStore(db *gorm.DB) *GormPostStore {
	return &GormPostStore{db: db}
}

func (s *GormPostStore) Create(ctx context.Context, post *models.Post) error {
	return s.db.WithContext(ctx).Create(post).Error
}

func (s *GormPostStore) FindByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (s *GormPostStore) FindOwned(ctx context.Context, id, userID uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&post).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (s *GormPostStore) List(ctx context.Context, filter PostFilter) ([]models.Post, error) {
	query := s.db.WithContext(ctx).Model(&models.Post{})

	if filter.MinViews != nil {
		query = query.Where("views >= ?", *filter.MinViews)
	}
	if filter.MinRating != nil {
		query = query.Where("average_rating >= ?", *filter.MinRating)
	}

	switch filter.Sort {
	case "rating":
		query = query.Order("average_rating DESC")
	case "views":
		query = query.Order("views DESC")
	default:
		query = query.Order("id")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 10
	}
	query = query.Offset((page - 1) * perPage).Limit(perPage)

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *GormPostStore) Save(ctx context.Context, post *models.Post) error {
	return s.db.WithContext(ctx).Save(post).Error
}

func (s *GormPostStore) Delete(ctx context.Context, post *models.Post) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		return tx.Delete(post).Error
	})
}

// IncrementViews bumps the counter in a single statement so concurrent
// reads of the same post never lose an increment.
func (s *GormPostStore) IncrementViews(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
