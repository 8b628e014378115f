package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/listoflists/go-survey-backend/internal/domain"
)

func newSurveyRepoDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("survey_repo_test_%d.db", time.Now().UnixNano()))
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
	if err := db.AutoMigrate(&domain.User{}, &domain.Survey{}, &domain.Question{}, &domain.Heading{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestFindSurveyByName_ExactMatchOnly(t *testing.T) {
	db := newSurveyRepoDB(t)
	ctx := context.Background()

	s := &domain.Survey{Name: "Pets", UserID: 1, Description: "d"}
	if err := CreateSurvey(ctx, db, s); err != nil {
		t.Fatalf("CreateSurvey: %v", err)
	}

	got, err := FindSurveyByName(ctx, db, "Pets")
	if err != nil {
		t.Fatalf("FindSurveyByName: %v", err)
	}
	if got.ID != s.ID {
		t.Fatalf("want survey %d, got %d", s.ID, got.ID)
	}

	if _, err := FindSurveyByName(ctx, db, "Plants"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListSurveys_OrderedByName(t *testing.T) {
	db := newSurveyRepoDB(t)
	ctx := context.Background()

	for _, name := range []string{"Zoo Trips", "Pets", "Books"} {
		if err := CreateSurvey(ctx, db, &domain.Survey{Name: name, UserID: 1}); err != nil {
			t.Fatalf("CreateSurvey(%q): %v", name, err)
		}
	}

	out, err := ListSurveys(ctx, db)
	if err != nil {
		t.Fatalf("ListSurveys: %v", err)
	}
	want := []string{"Books", "Pets", "Zoo Trips"}
	if len(out) != len(want) {
		t.Fatalf("want %d surveys, got %d", len(want), len(out))
	}
	for i, name := range want {
		if out[i].Name != name {
			t.Fatalf("position %d: want %q, got %q", i, name, out[i].Name)
		}
	}
}

func TestListSurveysPage_WindowsTheNameOrder(t *testing.T) {
	db := newSurveyRepoDB(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		if err := CreateSurvey(ctx, db, &domain.Survey{Name: name, UserID: 1}); err != nil {
			t.Fatalf("CreateSurvey(%q): %v", name, err)
		}
	}

	page, err := ListSurveysPage(ctx, db, 2, 2)
	if err != nil {
		t.Fatalf("ListSurveysPage: %v", err)
	}
	if len(page) != 2 || page[0].Name != "c" || page[1].Name != "d" {
		t.Fatalf("want [c d], got %+v", page)
	}

	total, err := CountSurveys(ctx, db)
	if err != nil {
		t.Fatalf("CountSurveys: %v", err)
	}
	if total != 5 {
		t.Fatalf("want total 5, got %d", total)
	}
}

func TestListEntries_CombinesQuestionsAndHeadings(t *testing.T) {
	db := newSurveyRepoDB(t)
	ctx := context.Background()

	s := &domain.Survey{Name: "Pets", UserID: 1}
	if err := CreateSurvey(ctx, db, s); err != nil {
		t.Fatalf("CreateSurvey: %v", err)
	}
	other := &domain.Survey{Name: "Other", UserID: 1}
	if err := CreateSurvey(ctx, db, other); err != nil {
		t.Fatalf("CreateSurvey: %v", err)
	}

	if err := CreateQuestion(ctx, db, &domain.Question{SurveyID: s.ID, Text: "Cats", Order: 1}); err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	if err := CreateQuestion(ctx, db, &domain.Question{SurveyID: s.ID, Text: "Dogs", Order: 2}); err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	if err := CreateHeading(ctx, db, &domain.Heading{SurveyID: s.ID, Text: "Small Animals", Order: 0.5}); err != nil {
		t.Fatalf("CreateHeading: %v", err)
	}
	if err := CreateQuestion(ctx, db, &domain.Question{SurveyID: other.ID, Text: "Noise", Order: 1}); err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}

	entries, err := ListEntries(ctx, db, s.ID)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("want 3 entries, got %d", len(entries))
	}
	questions, headings := 0, 0
	for _, e := range entries {
		if e.IsHeading() {
			headings++
		} else {
			questions++
		}
	}
	if questions != 2 || headings != 1 {
		t.Fatalf("want 2 questions and 1 heading, got %d/%d", questions, headings)
	}
}
