package entity

import "time"

// User is a bot user together with the render settings applied to every code
// they create.
type User struct {
	ID           int64 `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	FirstName    string
	Username     string
	Localisation string
	IsBanned     bool

	Size       int    `gorm:"not null;default:300"`
	Foreground string `gorm:"not null;default:'#000000'"`
	Background string `gorm:"not null;default:'#ffffff'"`
	Level      string `gorm:"not null;default:'H'"`
	Style      string `gorm:"not null;default:'square'"`
	Logo       string

	QRCodes []QRCode `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
