// Package services – FriendService
//
// This file implements the mutual-confirmation friendship protocol. A
// request against a user who has a pending request outstanding towards the
// requester confirms that existing row; otherwise a new unconfirmed row is
// created. No unordered pair ever holds two rows. Either side can remove
// the relationship at any time, confirmed or not.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/listoflists/go-survey-backend/internal/domain"
	"github.com/listoflists/go-survey-backend/internal/repo"
)

// FriendService implements friendship requests, confirmation, and removal.
type FriendService struct {
	DB *gorm.DB
}

// FriendsView lists a user's confirmed friends and both directions of
// pending requests, by username.
type FriendsView struct {
	Friends  []string `json:"friends"`
	Incoming []string `json:"incoming"`
	Outgoing []string `json:"outgoing"`
}

// RequestOrConfirm handles acting requesting friendship with theirName.
//
// If theirName has an unconfirmed request pending towards acting, that row
// is confirmed in place. Otherwise a single unconfirmed row
// (acting → theirName) is created, unless a row between the pair already
// exists in either orientation, in which case nothing changes. Unknown
// usernames are ErrNotFound; self-friendship is rejected as invalid.
func (s *FriendService) RequestOrConfirm(ctx context.Context, acting, theirName string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		me, err := repo.FindUserByName(ctx, tx, acting)
		if err != nil {
			return mapNotFound(err)
		}
		them, err := repo.FindUserByName(ctx, tx, theirName)
		if err != nil {
			return mapNotFound(err)
		}
		if me.ID == them.ID {
			return ErrInvalidInput
		}

		existing, err := repo.FindFriendshipBetween(ctx, tx, me.ID, them.ID)
		if err == nil {
			// Their pending request towards me confirms; anything else
			// (already confirmed, or my own request re-sent) is a no-op.
			if !existing.Confirmed && existing.FriendAID == them.ID {
				return repo.ConfirmFriendship(ctx, tx, existing.ID)
			}
			return nil
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return err
		}

		return repo.CreateFriendship(ctx, tx, &domain.Friendship{
			FriendAID: me.ID,
			FriendBID: them.ID,
		})
	})
}

// Remove deletes the friendship between acting and theirName, whichever side
// created it and whether or not it was confirmed. Removing a friendship
// that does not exist is not an error.
func (s *FriendService) Remove(ctx context.Context, acting, theirName string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		me, err := repo.FindUserByName(ctx, tx, acting)
		if err != nil {
			return mapNotFound(err)
		}
		them, err := repo.FindUserByName(ctx, tx, theirName)
		if err != nil {
			return mapNotFound(err)
		}
		return repo.DeleteFriendshipBetween(ctx, tx, me.ID, them.ID)
	})
}

// List resolves acting's confirmed friends plus pending requests in both
// directions into usernames.
func (s *FriendService) List(ctx context.Context, acting string) (*FriendsView, error) {
	me, err := repo.FindUserByName(ctx, s.DB, acting)
	if err != nil {
		return nil, mapNotFound(err)
	}

	view := &FriendsView{
		Friends:  []string{},
		Incoming: []string{},
		Outgoing: []string{},
	}

	ids, err := repo.ConfirmedFriendIDs(ctx, s.DB, me.ID)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		u, err := repo.GetUser(ctx, s.DB, id)
		if err != nil {
			return nil, err
		}
		view.Friends = append(view.Friends, u.Username)
	}

	in, err := repo.PendingIncoming(ctx, s.DB, me.ID)
	if err != nil {
		return nil, err
	}
	for _, f := range in {
		u, err := repo.GetUser(ctx, s.DB, f.FriendAID)
		if err != nil {
			return nil, err
		}
		view.Incoming = append(view.Incoming, u.Username)
	}

	out, err := repo.PendingOutgoing(ctx, s.DB, me.ID)
	if err != nil {
		return nil, err
	}
	for _, f := range out {
		u, err := repo.GetUser(ctx, s.DB, f.FriendBID)
		if err != nil {
			return nil, err
		}
		view.Outgoing = append(view.Outgoing, u.Username)
	}

	return view, nil
}
