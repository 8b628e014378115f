// Repository functions for Question and Heading rows.
//
// Deleting a question cascades to its answers and clears the reciprocal
// flip reference on its partner; the partner itself is kept.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/listoflists/go-survey-backend/internal/domain"
)

// CreateQuestion inserts a new Question row.
func CreateQuestion(ctx context.Context, db *gorm.DB, q *domain.Question) error {
	return db.WithContext(ctx).Create(q).Error
}

// GetQuestion fetches a question by primary key, or ErrNotFound.
func GetQuestion(ctx context.Context, db *gorm.DB, id uint) (*domain.Question, error) {
	var q domain.Question
	if err := db.WithContext(ctx).First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQuestions returns all questions of a survey, unsorted.
func ListQuestions(ctx context.Context, db *gorm.DB, surveyID uint) ([]domain.Question, error) {
	var out []domain.Question
	err := db.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Find(&out).Error
	return out, err
}

// SetQuestionOrder updates a question's sort key.
func SetQuestionOrder(ctx context.Context, db *gorm.DB, id uint, order float64) error {
	res := db.WithContext(ctx).
		Model(&domain.Question{}).
		Where("id = ?", id).
		Update("sort_order", order)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetQuestionFlip points a question's flip reference at flipID (nil clears it).
func SetQuestionFlip(ctx context.Context, db *gorm.DB, id uint, flipID *uint) error {
	return db.WithContext(ctx).
		Model(&domain.Question{}).
		Where("id = ?", id).
		Update("flip_id", flipID).Error
}

// DeleteQuestionCascade removes a question, its answers, and the partner's
// back-reference when the question was half of a flip pair. Runs in the
// caller's transaction when db is transaction-bound.
func DeleteQuestionCascade(ctx context.Context, db *gorm.DB, q *domain.Question) error {
	if q.FlipID != nil {
		if err := SetQuestionFlip(ctx, db, *q.FlipID, nil); err != nil {
			return err
		}
	}
	if err := db.WithContext(ctx).
		Where("question_id = ?", q.ID).
		Delete(&domain.Answer{}).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Delete(&domain.Question{}, q.ID).Error
}

// CreateHeading inserts a new Heading row.
func CreateHeading(ctx context.Context, db *gorm.DB, h *domain.Heading) error {
	return db.WithContext(ctx).Create(h).Error
}

// GetHeading fetches a heading by primary key, or ErrNotFound.
func GetHeading(ctx context.Context, db *gorm.DB, id uint) (*domain.Heading, error) {
	var h domain.Heading
	if err := db.WithContext(ctx).First(&h, id).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

// ListHeadings returns all headings of a survey, unsorted.
func ListHeadings(ctx context.Context, db *gorm.DB, surveyID uint) ([]domain.Heading, error) {
	var out []domain.Heading
	err := db.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Find(&out).Error
	return out, err
}

// SetHeadingOrder updates a heading's sort key.
func SetHeadingOrder(ctx context.Context, db *gorm.DB, id uint, order float64) error {
	res := db.WithContext(ctx).
		Model(&domain.Heading{}).
		Where("id = ?", id).
		Update("sort_order", order)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
