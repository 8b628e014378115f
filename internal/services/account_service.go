// Package services – AccountService
//
// This file implements account management: registration, login, profile
// edits, and full account deletion. Passwords are stored as bcrypt hashes;
// profile edits are gated by the current password plus a csrf-style token
// derived from the stored hash, so every token is invalidated the moment the
// password changes. Username uniqueness is case-insensitive under Unicode
// case folding.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"gorm.io/gorm"

	"github.com/listoflists/go-survey-backend/internal/domain"
	"github.com/listoflists/go-survey-backend/internal/repo"
)

// AccountService implements the use-cases around user accounts.
type AccountService struct {
	DB *gorm.DB
}

// ProfileToken derives the csrf-style token guarding profile edits: a hash
// of the stored password hash. Changing the password rotates the token.
func ProfileToken(u *domain.User) string {
	sum := sha256.Sum256([]byte(u.Password))
	return hex.EncodeToString(sum[:])
}

// sameName compares two usernames under Unicode case folding.
func sameName(a, b string) bool {
	fold := cases.Fold()
	return fold.String(a) == fold.String(b)
}

// Register creates a new account and returns it.
//
// Validation:
//   - password and confirmation must match exactly (ErrPasswordMismatch);
//   - the username must not collide case-insensitively with an existing
//     account (ErrNameTaken);
//   - username and password must be non-empty (ErrInvalidInput).
//
// No row is created when validation fails.
func (s *AccountService) Register(ctx context.Context, username, password1, password2, email string) (*domain.User, error) {
	if username == "" || password1 == "" {
		return nil, ErrInvalidInput
	}
	if password1 != password2 {
		return nil, ErrPasswordMismatch
	}

	var created *domain.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.FindUserByName(ctx, tx, username); err == nil {
			return ErrNameTaken
		} else if !errors.Is(err, repo.ErrNotFound) {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password1), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u := &domain.User{
			Username: username,
			Password: string(hash),
			Email:    optional(email),
		}
		if err := repo.CreateUser(ctx, tx, u); err != nil {
			return err
		}
		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Login verifies credentials and returns the account. Unknown usernames and
// wrong passwords both come back as ErrUnauthorized so a login probe cannot
// tell them apart.
func (s *AccountService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	u, err := repo.FindUserByName(ctx, s.DB, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrUnauthorized
	}
	return u, nil
}

// UpdateInput carries a profile edit. Empty strings leave the username and
// password unchanged; NewEmail always overwrites (empty clears the address).
type UpdateInput struct {
	OldPassword  string
	NewUsername  string
	NewPassword1 string
	NewPassword2 string
	NewEmail     string
	Token        string
}

// Update applies a profile edit on behalf of acting.
//
// The edit must carry the account's current profile token (ErrTokenMismatch)
// and the current password (ErrWrongPassword). A new username must not
// collide with another account case-insensitively (ErrNameTaken), though
// re-casing one's own name is allowed. A new password must match its
// confirmation (ErrPasswordMismatch). Sessions for the old username are
// dropped when the username changes.
func (s *AccountService) Update(ctx context.Context, acting string, in UpdateInput) (*domain.User, error) {
	var updated *domain.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := repo.FindUserByName(ctx, tx, acting)
		if err != nil {
			return mapNotFound(err)
		}
		if in.Token != ProfileToken(u) {
			return ErrTokenMismatch
		}
		if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.OldPassword)) != nil {
			return ErrWrongPassword
		}

		renamed := false
		if in.NewUsername != "" && in.NewUsername != u.Username {
			if !sameName(in.NewUsername, u.Username) {
				if _, err := repo.FindUserByName(ctx, tx, in.NewUsername); err == nil {
					return ErrNameTaken
				} else if !errors.Is(err, repo.ErrNotFound) {
					return err
				}
			}
			renamed = true
		}

		if in.NewPassword1 != "" || in.NewPassword2 != "" {
			if in.NewPassword1 != in.NewPassword2 {
				return ErrPasswordMismatch
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword1), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			u.Password = string(hash)
		}

		if renamed {
			if err := repo.DeleteSessionsOfUser(ctx, tx, u.Username); err != nil {
				return err
			}
			u.Username = in.NewUsername
		}
		u.Email = optional(in.NewEmail)

		if err := repo.SaveUser(ctx, tx, u); err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the account and everything hanging off it, in FK-safe
// order: friendship rows in both directions, sessions, the user's responses
// with their answers, and finally the user row. The user's surveys are
// deliberately left in place. Everything runs in one transaction.
func (s *AccountService) Delete(ctx context.Context, acting string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := repo.FindUserByName(ctx, tx, acting)
		if err != nil {
			return mapNotFound(err)
		}
		if err := repo.DeleteFriendshipsOf(ctx, tx, u.ID); err != nil {
			return err
		}
		if err := repo.DeleteSessionsOfUser(ctx, tx, u.Username); err != nil {
			return err
		}
		if err := repo.DeleteResponsesOfUser(ctx, tx, u.ID); err != nil {
			return err
		}
		return repo.DeleteUser(ctx, tx, u.ID)
	})
}

// Get returns the account for a username, or ErrNotFound.
func (s *AccountService) Get(ctx context.Context, username string) (*domain.User, error) {
	u, err := repo.FindUserByName(ctx, s.DB, username)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return u, nil
}
