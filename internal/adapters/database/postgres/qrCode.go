package postgres

import (
	"context"
	"time"

	"github.com/qrstudio/qrstudio-bot/internal/domain/entity"
	"gorm.io/gorm"
)

type QRCodeStorage struct {
	db *gorm.DB
}

func NewQRCodeStorage(db *gorm.DB) *QRCodeStorage {
	return &QRCodeStorage{
		db: db,
	}
}

// Create is a function that stores a generated code in the history.
func (s *QRCodeStorage) Create(ctx context.Context, code *entity.QRCode) (*entity.QRCode, error) {
	err := s.db.WithContext(ctx).Create(code).Error
	return code, err
}

// Get is a function that gets a code by id, scoped to its owner.
func (s *QRCodeStorage) Get(ctx context.Context, userID int64, id string) (*entity.QRCode, error) {
	var code entity.QRCode
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&code).Error
	return &code, err
}

// SetFileID is a function that remembers the Telegram file id of an already sent code.
func (s *QRCodeStorage) SetFileID(ctx context.Context, id, fileID string) error {
	res := s.db.WithContext(ctx).Model(&entity.QRCode{}).Where("id = ?", id).Update("file_id", fileID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetByUserID is a function that gets the newest codes of a user.
func (s *QRCodeStorage) GetByUserID(ctx context.Context, userID int64, limit int) ([]entity.QRCode, error) {
	var codes []entity.QRCode
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&codes).Error
	return codes, err
}

// Count is a function that gets the count of all generated codes.
func (s *QRCodeStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&entity.QRCode{}).Count(&count).Error
	return count, err
}

// CountSince is a function that gets the count of codes generated after since.
func (s *QRCodeStorage) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&entity.QRCode{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}
