// Package services – OrderingService
//
// This file implements the ordering engine for a survey's entries. New
// entries receive time-derived float sort keys so they append without a
// global renumber; flip pairs are created atomically with the partner keyed
// just after the canonical member; the owner can renumber the whole survey
// or nudge a single question up or down. Single-step moves use the
// midpoint-recompute policy: the moved row's key becomes the midpoint of its
// new neighbours' keys (or one beyond the boundary key at either end).
package services

import (
	"context"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/listoflists/go-survey-backend/internal/domain"
	"github.com/listoflists/go-survey-backend/internal/repo"
)

const (
	// flipKeyOffset keeps the second half of a flip pair immediately after
	// its canonical member until a renumber assigns integral keys.
	flipKeyOffset = 0.001

	// headingRenumberStep is added to every subsequent key each time a
	// heading is crossed during a full renumber, keeping headings clear of
	// question keys.
	headingRenumberStep = 10
)

// Move actions accepted by OrderingService.Move.
const (
	MoveUp     = "up"
	MoveDown   = "down"
	MoveRemove = "remove"
)

// OrderingService maintains the display order of survey entries.
//
// The service is context-aware and opens its own transaction per mutating
// call. Now is a test seam; when nil, time.Now is used.
type OrderingService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func (s *OrderingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// AddQuestionInput carries one new question, optionally with a flip partner
// (FlipText set) and optionally keyed under an existing heading.
type AddQuestionInput struct {
	SurveyID  uint
	Section   string
	Text      string
	Extra     string
	FlipText  string
	FlipExtra string
	HeadingID uint // 0 = none
}

// AddQuestion appends a question (and its flip partner, when FlipText is
// given) to a survey.
//
// The sort key is the current unix time in float seconds, which sorts after
// every existing entry. When the question is filed under an existing
// heading, the key is the heading's key plus the clock's fractional part,
// which keeps the question strictly after its heading. A flip
// partner is keyed flipKeyOffset later and both back-references are written
// in the same transaction — a pair is never half-created.
func (s *OrderingService) AddQuestion(ctx context.Context, in AddQuestionInput) (*domain.Question, error) {
	if in.Text == "" {
		return nil, ErrInvalidInput
	}

	var created *domain.Question
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetSurvey(ctx, tx, in.SurveyID); err != nil {
			return mapNotFound(err)
		}

		order := unixSeconds(s.now())
		if in.HeadingID != 0 {
			h, err := repo.GetHeading(ctx, tx, in.HeadingID)
			if err != nil {
				return mapNotFound(err)
			}
			_, frac := math.Modf(order)
			order = h.Order + frac
		}

		q1 := &domain.Question{
			SurveyID: in.SurveyID,
			Section:  in.Section,
			Text:     in.Text,
			Extra:    optional(in.Extra),
			Order:    order,
		}
		if err := repo.CreateQuestion(ctx, tx, q1); err != nil {
			return err
		}

		if in.FlipText != "" {
			q2 := &domain.Question{
				SurveyID: in.SurveyID,
				Section:  in.Section,
				Text:     in.FlipText,
				Extra:    optional(in.FlipExtra),
				Order:    order + flipKeyOffset,
			}
			if err := repo.CreateQuestion(ctx, tx, q2); err != nil {
				return err
			}
			domain.PairQuestions(q1, q2)
			if err := repo.SetQuestionFlip(ctx, tx, q1.ID, q1.FlipID); err != nil {
				return err
			}
			if err := repo.SetQuestionFlip(ctx, tx, q2.ID, q2.FlipID); err != nil {
				return err
			}
		}

		created = q1
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AddHeading appends a heading to a survey, keyed by insertion time like any
// other entry.
func (s *OrderingService) AddHeading(ctx context.Context, surveyID uint, text string) (*domain.Heading, error) {
	if text == "" {
		return nil, ErrInvalidInput
	}
	var created *domain.Heading
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetSurvey(ctx, tx, surveyID); err != nil {
			return mapNotFound(err)
		}
		h := &domain.Heading{
			SurveyID: surveyID,
			Text:     text,
			Order:    unixSeconds(s.now()),
		}
		if err := repo.CreateHeading(ctx, tx, h); err != nil {
			return err
		}
		created = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Renumber re-assigns sequential sort keys over a survey's entries in
// display order. Each heading crossed bumps all subsequent keys by
// headingRenumberStep. Only the survey's owner may renumber.
func (s *OrderingService) Renumber(ctx context.Context, surveyID, actingUserID uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		survey, err := repo.GetSurvey(ctx, tx, surveyID)
		if err != nil {
			return mapNotFound(err)
		}
		if survey.UserID != actingUserID {
			return ErrPermissionDenied
		}

		entries, err := repo.ListEntries(ctx, tx, surveyID)
		if err != nil {
			return err
		}
		domain.SortEntries(entries)

		offset := 0
		for n, e := range entries {
			if e.IsHeading() {
				offset += headingRenumberStep
				if err := repo.SetHeadingOrder(ctx, tx, e.ID(), float64(n+offset)); err != nil {
					return err
				}
				continue
			}
			if err := repo.SetQuestionOrder(ctx, tx, e.ID(), float64(n+offset)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Move repositions or removes a single question on behalf of the survey
// owner.
//
// For "up" and "down" the display order is resolved with flip pairs
// collapsed onto their canonical member, so a move never swaps the two
// halves of a pair and a pair travels as one row. The moved row takes the
// midpoint of its new neighbours' keys (boundary moves take the edge key
// ∓1), and a moved canonical member drags its partner along at
// flipKeyOffset behind. Moves beyond either end are no-ops.
//
// "remove" deletes the question, cascading its answers and clearing the
// partner's flip reference.
func (s *OrderingService) Move(ctx context.Context, questionID uint, action string, actingUserID uint) error {
	switch action {
	case MoveUp, MoveDown, MoveRemove:
	default:
		return ErrInvalidInput
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := repo.GetQuestion(ctx, tx, questionID)
		if err != nil {
			return mapNotFound(err)
		}
		survey, err := repo.GetSurvey(ctx, tx, q.SurveyID)
		if err != nil {
			return err
		}
		if survey.UserID != actingUserID {
			return ErrPermissionDenied
		}

		if action == MoveRemove {
			return repo.DeleteQuestionCascade(ctx, tx, q)
		}

		// Second half of a pair moves via its canonical member.
		target := q
		if q.IsSecondOfPair() {
			if target, err = repo.GetQuestion(ctx, tx, *q.FlipID); err != nil {
				return err
			}
		}

		rows, err := repo.ListQuestions(ctx, tx, q.SurveyID)
		if err != nil {
			return err
		}
		qs := make([]*domain.Question, 0, len(rows))
		for i := range rows {
			qs = append(qs, &rows[i])
		}
		domain.SortQuestions(qs)

		// Collapse pairs: the sorted list keeps pair halves adjacent with the
		// canonical member first, so dropping second halves leaves one row
		// per logical entry.
		logical := qs[:0]
		idx := -1
		for _, cand := range qs {
			if cand.IsSecondOfPair() {
				continue
			}
			if cand.ID == target.ID {
				idx = len(logical)
			}
			logical = append(logical, cand)
		}
		if idx < 0 {
			return ErrNotFound
		}

		var key float64
		switch action {
		case MoveUp:
			if idx == 0 {
				return nil
			}
			if idx == 1 {
				key = logical[0].Order - 1
			} else {
				key = (logical[idx-1].Order + logical[idx-2].Order) / 2
			}
		case MoveDown:
			last := len(logical) - 1
			if idx == last {
				return nil
			}
			if idx == last-1 {
				key = logical[last].Order + 1
			} else {
				key = (logical[idx+1].Order + logical[idx+2].Order) / 2
			}
		}

		if err := repo.SetQuestionOrder(ctx, tx, target.ID, key); err != nil {
			return err
		}
		if target.FlipID != nil {
			return repo.SetQuestionOrder(ctx, tx, *target.FlipID, key+flipKeyOffset)
		}
		return nil
	})
}

// unixSeconds returns t as float seconds since the epoch, the insertion key
// for new entries.
func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// optional maps "" to nil for nullable text columns.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// mapNotFound converts the repo's missing-row sentinel into the service
// taxonomy and passes every other error through.
func mapNotFound(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
