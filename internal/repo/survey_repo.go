// Repository functions for the Survey model and its ordered entries.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/listoflists/go-survey-backend/internal/domain"
)

// CreateSurvey inserts a new Survey row.
func CreateSurvey(ctx context.Context, db *gorm.DB, s *domain.Survey) error {
	return db.WithContext(ctx).Create(s).Error
}

// GetSurvey fetches a survey by primary key, or ErrNotFound.
func GetSurvey(ctx context.Context, db *gorm.DB, id uint) (*domain.Survey, error) {
	var s domain.Survey
	if err := db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// FindSurveyByName fetches a survey by its unique name, or ErrNotFound.
func FindSurveyByName(ctx context.Context, db *gorm.DB, name string) (*domain.Survey, error) {
	var s domain.Survey
	if err := db.WithContext(ctx).Where("name = ?", name).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSurveys returns all surveys ordered by name.
func ListSurveys(ctx context.Context, db *gorm.DB) ([]domain.Survey, error) {
	var out []domain.Survey
	err := db.WithContext(ctx).Order("name asc").Find(&out).Error
	return out, err
}

// CountSurveys returns the total number of surveys.
func CountSurveys(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Survey{}).Count(&total).Error
	return total, err
}

// ListSurveysPage returns a paginated slice of surveys ordered by name.
// The caller computes offset and limit (e.g., (page-1)*pageSize).
func ListSurveysPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Survey, error) {
	var out []domain.Survey
	err := db.WithContext(ctx).
		Order("name asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListEntries loads a survey's questions and headings as one unsorted entry
// slice. Callers sort with domain.SortEntries for display order.
func ListEntries(ctx context.Context, db *gorm.DB, surveyID uint) ([]domain.Entry, error) {
	qs, err := ListQuestions(ctx, db, surveyID)
	if err != nil {
		return nil, err
	}
	hs, err := ListHeadings(ctx, db, surveyID)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.Entry, 0, len(qs)+len(hs))
	for i := range qs {
		entries = append(entries, domain.QuestionEntry(&qs[i]))
	}
	for i := range hs {
		entries = append(entries, domain.HeadingEntry(&hs[i]))
	}
	return entries, nil
}
