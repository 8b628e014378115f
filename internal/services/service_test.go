package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/listoflists/go-survey-backend/internal/domain"
	"github.com/listoflists/go-survey-backend/internal/repo"
)

// newServiceDB opens a throwaway SQLite database with the full schema for
// service-level tests.
func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("service_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// mustUser inserts a user row directly, bypassing registration. The stored
// password is an opaque string, not a bcrypt hash; tests that exercise
// credentials go through AccountService instead.
func mustUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, Password: "x"}
	if err := repo.CreateUser(context.Background(), db, u); err != nil {
		t.Fatalf("create user %q: %v", username, err)
	}
	return u
}

func mustSurvey(t *testing.T, db *gorm.DB, ownerID uint, name string) *domain.Survey {
	t.Helper()
	s := &domain.Survey{Name: name, UserID: ownerID, Description: "d", LongDescription: "ld"}
	if err := repo.CreateSurvey(context.Background(), db, s); err != nil {
		t.Fatalf("create survey %q: %v", name, err)
	}
	return s
}

func mustQuestion(t *testing.T, db *gorm.DB, surveyID uint, section, text string, order float64) *domain.Question {
	t.Helper()
	q := &domain.Question{SurveyID: surveyID, Section: section, Text: text, Order: order}
	if err := repo.CreateQuestion(context.Background(), db, q); err != nil {
		t.Fatalf("create question %q: %v", text, err)
	}
	return q
}

func mustResponse(t *testing.T, db *gorm.DB, userID, surveyID uint, privacy string) *domain.Response {
	t.Helper()
	r := &domain.Response{UserID: userID, SurveyID: surveyID, Privacy: privacy}
	if err := repo.CreateResponse(context.Background(), db, r); err != nil {
		t.Fatalf("create response: %v", err)
	}
	return r
}

// mustConfirmedFriends links two users with a confirmed friendship row.
func mustConfirmedFriends(t *testing.T, db *gorm.DB, a, b uint) {
	t.Helper()
	f := &domain.Friendship{FriendAID: a, FriendBID: b, Confirmed: true}
	if err := repo.CreateFriendship(context.Background(), db, f); err != nil {
		t.Fatalf("create friendship: %v", err)
	}
}
