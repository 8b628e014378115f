// Repository functions for the Session model: the token-to-username mapping
// the HTTP layer authenticates with.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/listoflists/go-survey-backend/internal/domain"
)

// CreateSession inserts a new session row.
func CreateSession(ctx context.Context, db *gorm.DB, s *domain.Session) error {
	return db.WithContext(ctx).Create(s).Error
}

// GetSession fetches a session by token, or ErrNotFound.
func GetSession(ctx context.Context, db *gorm.DB, token string) (*domain.Session, error) {
	var s domain.Session
	err := db.WithContext(ctx).
		Where("token = ?", token).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// TouchSession refreshes a session's access time.
func TouchSession(ctx context.Context, db *gorm.DB, token string, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("token = ?", token).
		Update("a_time", at).Error
}

// DeleteSession removes a single session. Missing tokens are not an error.
func DeleteSession(ctx context.Context, db *gorm.DB, token string) error {
	return db.WithContext(ctx).
		Where("token = ?", token).
		Delete(&domain.Session{}).Error
}

// DeleteSessionsOfUser logs a user out everywhere. Used on username change
// and account deletion.
func DeleteSessionsOfUser(ctx context.Context, db *gorm.DB, username string) error {
	return db.WithContext(ctx).
		Where("lower(username) = lower(?)", username).
		Delete(&domain.Session{}).Error
}

// DeleteSessionsIdleSince removes sessions not touched since cutoff and
// returns how many were removed.
func DeleteSessionsIdleSince(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("a_time < ?", cutoff).
		Delete(&domain.Session{})
	return res.RowsAffected, res.Error
}
