package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QRCode is one generated code. The payload itself is never stored; only how
// the code was made, plus the Telegram file id for cheap resends.
type QRCode struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	CreatedAt   time.Time
	UserID      int64  `gorm:"index;not null"`
	ContentType string `gorm:"not null"`
	Size        int
	Foreground  string
	Background  string
	Level       string
	Style       string
	Logo        string
	// CacheKey points at the rendered PNG in the render cache.
	CacheKey string
	FileID   string
}

func (q *QRCode) BeforeCreate(_ *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	return nil
}
