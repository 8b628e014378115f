// Repository functions for Response and Answer rows.
//
// One response per (user, survey) is an application rule, not a constraint:
// FindResponseFor takes the first match and submission overwrites it.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/listoflists/go-survey-backend/internal/domain"
)

// CreateResponse inserts a new Response row.
func CreateResponse(ctx context.Context, db *gorm.DB, r *domain.Response) error {
	return db.WithContext(ctx).Create(r).Error
}

// GetResponse fetches a response by primary key, or ErrNotFound.
func GetResponse(ctx context.Context, db *gorm.DB, id uint) (*domain.Response, error) {
	var r domain.Response
	if err := db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// FindResponseFor returns userID's response to surveyID, or ErrNotFound.
// First match wins when duplicates ever slip in.
func FindResponseFor(ctx context.Context, db *gorm.DB, surveyID, userID uint) (*domain.Response, error) {
	var r domain.Response
	err := db.WithContext(ctx).
		Where("survey_id = ? AND user_id = ?", surveyID, userID).
		Order("id asc").
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// SaveResponse persists all fields of an already-loaded response row.
func SaveResponse(ctx context.Context, db *gorm.DB, r *domain.Response) error {
	return db.WithContext(ctx).Save(r).Error
}

// ListResponsesBySurvey returns every response to a survey.
func ListResponsesBySurvey(ctx context.Context, db *gorm.DB, surveyID uint) ([]domain.Response, error) {
	var out []domain.Response
	err := db.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Order("id asc").
		Find(&out).Error
	return out, err
}

// ListResponsesByUser returns every response owned by userID.
func ListResponsesByUser(ctx context.Context, db *gorm.DB, userID uint) ([]domain.Response, error) {
	var out []domain.Response
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("survey_id asc").
		Find(&out).Error
	return out, err
}

// CreateAnswers inserts a batch of answer rows.
func CreateAnswers(ctx context.Context, db *gorm.DB, answers []domain.Answer) error {
	if len(answers) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&answers).Error
}

// ListAnswers returns all answers of a response.
func ListAnswers(ctx context.Context, db *gorm.DB, responseID uint) ([]domain.Answer, error) {
	var out []domain.Answer
	err := db.WithContext(ctx).
		Where("response_id = ?", responseID).
		Find(&out).Error
	return out, err
}

// DeleteAnswersOf removes every answer belonging to responseID.
func DeleteAnswersOf(ctx context.Context, db *gorm.DB, responseID uint) error {
	return db.WithContext(ctx).
		Where("response_id = ?", responseID).
		Delete(&domain.Answer{}).Error
}

// DeleteResponseCascade removes a response and its answers.
func DeleteResponseCascade(ctx context.Context, db *gorm.DB, responseID uint) error {
	if err := DeleteAnswersOf(ctx, db, responseID); err != nil {
		return err
	}
	return db.WithContext(ctx).Delete(&domain.Response{}, responseID).Error
}

// DeleteResponsesOfUser removes every response owned by userID together with
// its answers. Used by the account-deletion cascade.
func DeleteResponsesOfUser(ctx context.Context, db *gorm.DB, userID uint) error {
	rs, err := ListResponsesByUser(ctx, db, userID)
	if err != nil {
		return err
	}
	for _, r := range rs {
		if err := DeleteResponseCascade(ctx, db, r.ID); err != nil {
			return err
		}
	}
	return nil
}
