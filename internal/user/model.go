// File: internal/user/model.go
package user

import (
	"time"

	"flipradar_backend/internal/common"
)

// User is a Telegram account known to the radar. Rows are created lazily the
// first time an account interacts with the bot.
type User struct {
	TelegramID int64     `gorm:"primaryKey;autoIncrement:false"`
	Username   *string   `gorm:"type:varchar(100)"`
	BaseCity   string    `gorm:"type:varchar(100);not null;default:'Marseille'"`
	BaseLat    float64   `gorm:"not null;default:43.2965"`
	BaseLon    float64   `gorm:"not null;default:5.3698"`
	RadiusKM   int       `gorm:"not null;default:500"`
	IsPremium  bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time `gorm:"not null"`

	Watches []Watch `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
}

func (User) TableName() string {
	return "users"
}

// Watch is a keyword subscription owned by exactly one user. Keyword is a
// free-text phrase whose whitespace-delimited tokens are OR-matched against
// listing titles.
//
// RadiusKM, MinMarginEUR, MaxPriceEUR and Categories are per-watch overrides
// that are stored but not consulted by the matching engine today.
type Watch struct {
	common.BaseModel
	UserID       int64    `gorm:"not null;index"`
	Keyword      string   `gorm:"type:varchar(200);not null"`
	RadiusKM     *int
	MinMarginEUR *float64
	MaxPriceEUR  *float64
	Categories   *string `gorm:"type:varchar(200)"`
}

func (Watch) TableName() string {
	return "watches"
}
