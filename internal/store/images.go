package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/tastebook/tastebook/internal/models"
)

type GormImageStore struct {
	db *gorm.DB
}

func NewGormImageStore(db *gorm.DB) *GormImageStore {
	return &GormImageStore{db: db}
}

func (s *GormImageStore) Create(ctx context.Context, image *models.Image) error {
	return s.db.WithContext(ctx).Create(image).Error
}

func (s *GormImageStore) FindOwned(ctx context.Context, filename string, userID uint) (*models.Image, error) {
	var image models.Image
	if err := s.db.WithContext(ctx).
		Where("filename = ? AND user_id = ?", filename, userID).
		First(&image).Error; err != nil {
		return nil, translate(err)
	}
	return &image, nil
}

func (s *GormImageStore) Delete(ctx context.Context, image *models.Image) error {
	return s.db.WithContext(ctx).Delete(image).Error
}

func (s *GormImageStore) ListByUser(ctx context.Context, userID uint) ([]models.Image, error) {
	var images []models.Image
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}
