// Repository functions for the User model.
//
// Username matching is case-insensitive throughout: the original data may
// hold "Alice" while a login form sends "alice". Lookups compare lower(…)
// on both sides rather than relying on a DB collation.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/listoflists/go-survey-backend/internal/domain"
)

// CreateUser inserts a new User row. The caller is responsible for hashing
// the password and for checking name availability first.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return db.WithContext(ctx).Create(u).Error
}

// FindUserByName fetches the user whose username matches name
// case-insensitively, or ErrNotFound.
func FindUserByName(ctx context.Context, db *gorm.DB, name string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("lower(username) = lower(?)", name).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser fetches a user by primary key, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id uint) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// SaveUser persists all fields of an already-loaded user row.
func SaveUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return db.WithContext(ctx).Save(u).Error
}

// DeleteUser removes the user row itself. Dependent rows (friendships,
// sessions, responses, answers) must already be gone; the account service
// runs the ordered cascade inside one transaction.
func DeleteUser(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).Delete(&domain.User{}, id).Error
}
