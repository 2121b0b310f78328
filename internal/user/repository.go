// File: internal/user/repository.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for user and watch data operations.
type Repository interface {
	// GetOrCreate returns the user for a Telegram account, creating it with
	// defaults on first contact.
	GetOrCreate(ctx context.Context, telegramID int64, username *string) (*User, error)
	FindByTelegramID(ctx context.Context, telegramID int64) (*User, error)
	// FindAllWithWatches returns every user together with their watches.
	FindAllWithWatches(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, telegramID int64) error

	AddWatch(ctx context.Context, w *Watch) error
	ListWatches(ctx context.Context, telegramID int64) ([]Watch, error)
	RemoveWatch(ctx context.Context, telegramID int64, watchID uuid.UUID) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM user repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetOrCreate(ctx context.Context, telegramID int64, username *string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&u).Error
	if err == nil {
		return &u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("looking up user %d: %w", telegramID, err)
	}

	u = User{
		TelegramID: telegramID,
		Username:   username,
		BaseCity:   "Marseille",
		BaseLat:    43.2965,
		BaseLon:    5.3698,
		RadiusKM:   500,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "unique constraint") {
			// Concurrent first contact; re-read the winner.
			return r.FindByTelegramID(ctx, telegramID)
		}
		return nil, fmt.Errorf("creating user %d: %w", telegramID, err)
	}
	return &u, nil
}

func (r *gormRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("finding user %d: %w", telegramID, err)
	}
	return &u, nil
}

func (r *gormRepository) FindAllWithWatches(ctx context.Context) ([]User, error) {
	var users []User
	if err := r.db.WithContext(ctx).Preload("Watches").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("fetching users with watches: %w", err)
	}
	return users, nil
}

func (r *gormRepository) Update(ctx context.Context, u *User) error {
	if err := r.db.WithContext(ctx).Save(u).Error; err != nil {
		return fmt.Errorf("updating user %d: %w", u.TelegramID, err)
	}
	return nil
}

// Delete removes a user and, via cascade, its watches.
func (r *gormRepository) Delete(ctx context.Context, telegramID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", telegramID).Delete(&Watch{}).Error; err != nil {
			return fmt.Errorf("deleting watches for user %d: %w", telegramID, err)
		}
		if err := tx.Delete(&User{TelegramID: telegramID}).Error; err != nil {
			return fmt.Errorf("deleting user %d: %w", telegramID, err)
		}
		return nil
	})
}

func (r *gormRepository) AddWatch(ctx context.Context, w *Watch) error {
	if strings.TrimSpace(w.Keyword) == "" {
		return errors.New("watch keyword must not be empty")
	}
	if err := r.db.WithContext(ctx).Create(w).Error; err != nil {
		return fmt.Errorf("creating watch for user %d: %w", w.UserID, err)
	}
	return nil
}

func (r *gormRepository) ListWatches(ctx context.Context, telegramID int64) ([]Watch, error) {
	var watches []Watch
	err := r.db.WithContext(ctx).
		Where("user_id = ?", telegramID).
		Order("created_at ASC").
		Find(&watches).Error
	if err != nil {
		return nil, fmt.Errorf("listing watches for user %d: %w", telegramID, err)
	}
	return watches, nil
}

func (r *gormRepository) RemoveWatch(ctx context.Context, telegramID int64, watchID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", watchID, telegramID).
		Delete(&Watch{})
	if result.Error != nil {
		return fmt.Errorf("removing watch %s: %w", watchID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
