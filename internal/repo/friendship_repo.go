// Repository functions for the Friendship model.
//
// A friendship row is an unordered pair: (a,b) and (b,a) are the same
// relationship, so pair lookups and deletes match both orderings, and the
// confirmed friend set of a user is the union of both directions.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/listoflists/go-survey-backend/internal/domain"
)

// CreateFriendship inserts a new (normally unconfirmed) friendship row.
func CreateFriendship(ctx context.Context, db *gorm.DB, f *domain.Friendship) error {
	return db.WithContext(ctx).Create(f).Error
}

// FindFriendshipBetween fetches the single row linking a and b in either
// orientation, or ErrNotFound.
func FindFriendshipBetween(ctx context.Context, db *gorm.DB, a, b uint) (*domain.Friendship, error) {
	var f domain.Friendship
	err := db.WithContext(ctx).
		Where("(friend_a_id = ? AND friend_b_id = ?) OR (friend_a_id = ? AND friend_b_id = ?)", a, b, b, a).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ConfirmFriendship flips the confirmed flag on an existing row.
func ConfirmFriendship(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).
		Model(&domain.Friendship{}).
		Where("id = ?", id).
		Update("confirmed", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteFriendshipBetween removes the row linking a and b in either
// orientation. Removing a non-existent friendship is not an error.
func DeleteFriendshipBetween(ctx context.Context, db *gorm.DB, a, b uint) error {
	return db.WithContext(ctx).
		Where("(friend_a_id = ? AND friend_b_id = ?) OR (friend_a_id = ? AND friend_b_id = ?)", a, b, b, a).
		Delete(&domain.Friendship{}).Error
}

// DeleteFriendshipsOf removes every friendship row touching userID, in
// either direction. Used by the account-deletion cascade.
func DeleteFriendshipsOf(ctx context.Context, db *gorm.DB, userID uint) error {
	return db.WithContext(ctx).
		Where("friend_a_id = ? OR friend_b_id = ?", userID, userID).
		Delete(&domain.Friendship{}).Error
}

// ConfirmedFriendIDs returns the distinct ids of userID's confirmed
// counterparties across both row orientations.
func ConfirmedFriendIDs(ctx context.Context, db *gorm.DB, userID uint) ([]uint, error) {
	var rows []domain.Friendship
	err := db.WithContext(ctx).
		Where("confirmed = ? AND (friend_a_id = ? OR friend_b_id = ?)", true, userID, userID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	seen := make(map[uint]struct{}, len(rows))
	ids := make([]uint, 0, len(rows))
	for _, f := range rows {
		other := f.FriendAID
		if other == userID {
			other = f.FriendBID
		}
		if _, dup := seen[other]; dup || other == userID {
			continue
		}
		seen[other] = struct{}{}
		ids = append(ids, other)
	}
	return ids, nil
}

// PendingIncoming returns the unconfirmed requests addressed to userID.
func PendingIncoming(ctx context.Context, db *gorm.DB, userID uint) ([]domain.Friendship, error) {
	var rows []domain.Friendship
	err := db.WithContext(ctx).
		Where("friend_b_id = ? AND confirmed = ?", userID, false).
		Find(&rows).Error
	return rows, err
}

// PendingOutgoing returns the unconfirmed requests userID has sent.
func PendingOutgoing(ctx context.Context, db *gorm.DB, userID uint) ([]domain.Friendship, error) {
	var rows []domain.Friendship
	err := db.WithContext(ctx).
		Where("friend_a_id = ? AND confirmed = ?", userID, false).
		Find(&rows).Error
	return rows, err
}
