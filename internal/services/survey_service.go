// Package services – SurveyService
//
// This file implements the survey-facing use-cases: listing surveys with the
// viewer's responses, rendering one survey with its entries in display order
// and the visibility-partitioned buckets of other people's responses,
// creating surveys, and submitting or deleting responses. Resubmitting a
// response replaces it and recreates its answers wholesale; there is no
// partial update.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/listoflists/go-survey-backend/internal/domain"
	"github.com/listoflists/go-survey-backend/internal/repo"
)

// SurveyService implements survey listing, rendering, and responses.
// Visibility decisions are delegated to the VisibilityService.
type SurveyService struct {
	DB         *gorm.DB
	Visibility *VisibilityService
	Index      *SurveyIndex
}

// Search ranks surveys against query via the lazily rebuilt survey index.
func (s *SurveyService) Search(ctx context.Context, query string, limit int) ([]domain.Survey, error) {
	return s.Index.Search(ctx, query, limit)
}

// SurveyList is one page of surveys plus, when a viewer is logged in, the
// responses they have already submitted (keyed by survey id).
type SurveyList struct {
	Surveys   []domain.Survey          `json:"surveys"`
	Responses map[uint]domain.Response `json:"responses,omitempty"`
	Total     int64                    `json:"total"`
}

// SurveyView is one survey rendered for a viewer: entries in display order,
// the viewer's own response when present, and the friends/others buckets.
// When the viewer has not answered yet the buckets are nil and Compare
// round-trips the comparison target they were chasing.
type SurveyView struct {
	Survey  *domain.Survey    `json:"survey"`
	Entries []domain.Entry    `json:"entries"`
	Own     *domain.Response  `json:"own,omitempty"`
	Friends []domain.Response `json:"friends,omitempty"`
	Others  []domain.Response `json:"others,omitempty"`
	Compare uint              `json:"compare,omitempty"`
}

// List returns a page of all surveys. When viewer is non-zero the viewer's
// own responses ride along so a caller can mark answered surveys.
func (s *SurveyService) List(ctx context.Context, viewerID uint, page, pageSize int) (*SurveyList, error) {
	total, err := repo.CountSurveys(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	surveys, err := repo.ListSurveysPage(ctx, s.DB, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}

	out := &SurveyList{Surveys: surveys, Total: total}
	if viewerID != 0 {
		rs, err := repo.ListResponsesByUser(ctx, s.DB, viewerID)
		if err != nil {
			return nil, err
		}
		out.Responses = make(map[uint]domain.Response, len(rs))
		for _, r := range rs {
			if _, dup := out.Responses[r.SurveyID]; !dup {
				out.Responses[r.SurveyID] = r
			}
		}
	}
	return out, nil
}

// Get renders one survey for a viewer. Entries come back in display order.
// The buckets are only computed once the viewer has answered the survey;
// until then compare is echoed so the redirect-to-answer flow keeps its
// target.
func (s *SurveyService) Get(ctx context.Context, surveyID, viewerID uint, compare uint) (*SurveyView, error) {
	survey, err := repo.GetSurvey(ctx, s.DB, surveyID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	entries, err := repo.ListEntries(ctx, s.DB, surveyID)
	if err != nil {
		return nil, err
	}
	domain.SortEntries(entries)

	view := &SurveyView{Survey: survey, Entries: entries}

	own, err := repo.FindResponseFor(ctx, s.DB, surveyID, viewerID)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		view.Compare = compare
		return view, nil
	}
	view.Own = own

	view.Friends, view.Others, err = s.Visibility.Buckets(ctx, surveyID, viewerID)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Create adds a new survey owned by ownerID. Survey names are globally
// unique; a clash is ErrNameTaken.
func (s *SurveyService) Create(ctx context.Context, ownerID uint, name, description, longDescription string) (*domain.Survey, error) {
	if name == "" {
		return nil, ErrInvalidInput
	}
	var created *domain.Survey
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.FindSurveyByName(ctx, tx, name); err == nil {
			return ErrNameTaken
		} else if !errors.Is(err, repo.ErrNotFound) {
			return err
		}
		sv := &domain.Survey{
			Name:            name,
			UserID:          ownerID,
			Description:     description,
			LongDescription: longDescription,
		}
		if err := repo.CreateSurvey(ctx, tx, sv); err != nil {
			return err
		}
		created = sv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Submit records userID's response to a survey, replacing any previous one.
//
// The previous response's answers are deleted outright and fresh rows are
// created for every answer given; the response row itself is reused so its
// id is stable across resubmissions. Answer values must be on the −2..2
// scale and the privacy level must be recognised (ErrInvalidInput).
// Answers keyed by a question outside the survey are rejected.
func (s *SurveyService) Submit(ctx context.Context, surveyID, userID uint, privacy string, answers map[uint]int) (*domain.Response, error) {
	if privacy == "" {
		privacy = domain.PrivacyPrivate
	}
	if !domain.ValidPrivacy(privacy) {
		return nil, ErrInvalidInput
	}
	for _, v := range answers {
		if v < -2 || v > 2 {
			return nil, ErrInvalidInput
		}
	}

	var out *domain.Response
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetSurvey(ctx, tx, surveyID); err != nil {
			return mapNotFound(err)
		}
		qs, err := repo.ListQuestions(ctx, tx, surveyID)
		if err != nil {
			return err
		}
		valid := make(map[uint]struct{}, len(qs))
		for _, q := range qs {
			valid[q.ID] = struct{}{}
		}
		for qid := range answers {
			if _, ok := valid[qid]; !ok {
				return ErrInvalidInput
			}
		}

		r, err := repo.FindResponseFor(ctx, tx, surveyID, userID)
		switch {
		case err == nil:
			if err := repo.DeleteAnswersOf(ctx, tx, r.ID); err != nil {
				return err
			}
			r.Privacy = privacy
			if err := repo.SaveResponse(ctx, tx, r); err != nil {
				return err
			}
		case errors.Is(err, repo.ErrNotFound):
			r = &domain.Response{SurveyID: surveyID, UserID: userID, Privacy: privacy}
			if err := repo.CreateResponse(ctx, tx, r); err != nil {
				return err
			}
		default:
			return err
		}

		rows := make([]domain.Answer, 0, len(answers))
		for qid, v := range answers {
			rows = append(rows, domain.Answer{
				QuestionID: qid,
				ResponseID: r.ID,
				Value:      v,
			})
		}
		if err := repo.CreateAnswers(ctx, tx, rows); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteResponse removes userID's response when they own it; anyone else's
// delete is a silent no-op, mirroring the idempotent delete form.
func (s *SurveyService) DeleteResponse(ctx context.Context, responseID, userID uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := repo.GetResponse(ctx, tx, responseID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil
			}
			return err
		}
		if r.UserID != userID {
			return nil
		}
		return repo.DeleteResponseCascade(ctx, tx, r.ID)
	})
}
