package dto

import (
	"time"

	"github.com/qrstudio/qrstudio-bot/internal/domain/payload"
)

// QRRequest is everything needed to produce one code. Zero-valued render
// options fall back to the user's settings or the service defaults.
type QRRequest struct {
	Type       payload.ContentType
	Fields     payload.Fields
	Size       int
	Foreground string
	Background string
	Level      string
	Style      string
	Logo       string
}

// QRHistoryItem is a history row as shown to the user.
type QRHistoryItem struct {
	ID          string
	ContentType string
	Size        int
	Style       string
	Logo        string
	HasFile     bool
	CreatedAt   time.Time
}

// Stats are the counters shown to admins.
type Stats struct {
	Users   int64
	QRCodes int64
	Today   int64
}
