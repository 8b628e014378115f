// Package services – VisibilityService
//
// This file implements the visibility rules for responses: who counts as a
// confirmed friend, whether a viewer may open a given response at all, and
// how a survey's other responses partition into the "friends" and "others"
// buckets shown beside the viewer's own answers.
//
// A viewer must have submitted their own response to a survey before seeing
// anyone else's. Denied access is reported as ErrNotFound on purpose: a
// privacy refusal must be indistinguishable from a response that does not
// exist.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/listoflists/go-survey-backend/internal/domain"
	"github.com/listoflists/go-survey-backend/internal/repo"
)

// VisibilityService answers "may this viewer see that response" questions.
type VisibilityService struct {
	DB *gorm.DB
}

// FriendIDs returns the set of viewer's confirmed friends (both directions
// of the friendship rows merged).
func (s *VisibilityService) FriendIDs(ctx context.Context, userID uint) (map[uint]struct{}, error) {
	ids, err := repo.ConfirmedFriendIDs(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// CanView reports whether viewer may open r, given the owner's confirmed
// friend set. The viewer's own-response precondition is checked by callers;
// this is the pure privacy rule:
//
//   - public: visible to anyone;
//   - hidden: visible to anyone, author identity withheld by rendering;
//   - friends: visible only when the viewer is a confirmed friend of the
//     response owner;
//   - private: visible to nobody but the owner.
func CanView(viewerID uint, r *domain.Response, ownerFriends map[uint]struct{}) bool {
	if r.UserID == viewerID {
		return true
	}
	switch r.Privacy {
	case domain.PrivacyPublic, domain.PrivacyHidden:
		return true
	case domain.PrivacyFriends:
		_, ok := ownerFriends[viewerID]
		return ok
	}
	return false
}

// Buckets partitions a survey's responses, excluding the viewer's own, into
// the friends bucket (owner is a confirmed friend, privacy public or
// friends) and the others bucket (owner is a stranger, privacy public).
// Private and hidden responses appear in neither bucket; hidden responses
// are only reachable by direct id.
func (s *VisibilityService) Buckets(ctx context.Context, surveyID, viewerID uint) (friends, others []domain.Response, err error) {
	friendSet, err := s.FriendIDs(ctx, viewerID)
	if err != nil {
		return nil, nil, err
	}
	all, err := repo.ListResponsesBySurvey(ctx, s.DB, surveyID)
	if err != nil {
		return nil, nil, err
	}

	for _, r := range all {
		if r.UserID == viewerID {
			continue
		}
		if _, isFriend := friendSet[r.UserID]; isFriend {
			if r.Privacy == domain.PrivacyPublic || r.Privacy == domain.PrivacyFriends {
				friends = append(friends, r)
			}
			continue
		}
		if r.Privacy == domain.PrivacyPublic {
			others = append(others, r)
		}
	}
	return friends, others, nil
}

// VisibleResponse resolves a response for a viewer.
//
// When the viewer has not answered the response's survey yet, the returned
// view carries CompareID so the caller can redirect them to the survey with
// the comparison preserved. Otherwise the privacy rule applies against the
// owner's friend set; a denial is ErrNotFound. Hidden responses come back
// with Anonymous set and no owner name.
func (s *VisibilityService) VisibleResponse(ctx context.Context, responseID, viewerID uint) (*ResponseView, error) {
	theirs, err := repo.GetResponse(ctx, s.DB, responseID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	own, err := repo.FindResponseFor(ctx, s.DB, theirs.SurveyID, viewerID)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		// Answer the survey first; keep the comparison target.
		return &ResponseView{
			SurveyID:  theirs.SurveyID,
			CompareID: theirs.ID,
		}, nil
	}

	ownerFriends, err := s.FriendIDs(ctx, theirs.UserID)
	if err != nil {
		return nil, err
	}
	if !CanView(viewerID, theirs, ownerFriends) {
		return nil, ErrNotFound
	}

	view := &ResponseView{
		Response:  theirs,
		Own:       own,
		SurveyID:  theirs.SurveyID,
		Anonymous: theirs.Privacy == domain.PrivacyHidden && theirs.UserID != viewerID,
	}
	if view.Anonymous {
		// The author's user id is identity too; strip it from the rendering.
		redacted := *theirs
		redacted.UserID = 0
		view.Response = &redacted
	} else {
		owner, err := repo.GetUser(ctx, s.DB, theirs.UserID)
		if err != nil {
			return nil, err
		}
		view.OwnerName = owner.Username
	}

	answers, err := repo.ListAnswers(ctx, s.DB, theirs.ID)
	if err != nil {
		return nil, err
	}
	view.Answers = answers
	return view, nil
}

// ResponseView is the visibility-filtered rendering of a response.
//
// A zero Response with a non-zero CompareID means "go answer the survey
// first, then come back to compare against CompareID".
type ResponseView struct {
	Response  *domain.Response `json:"response,omitempty"`
	Own       *domain.Response `json:"own,omitempty"`
	Answers   []domain.Answer  `json:"answers,omitempty"`
	SurveyID  uint             `json:"survey_id"`
	OwnerName string           `json:"owner_name,omitempty"`
	Anonymous bool             `json:"anonymous,omitempty"`
	CompareID uint             `json:"compare,omitempty"`
}

// NeedsOwnResponse reports whether the viewer has to answer the survey
// before this view can show anything.
func (v *ResponseView) NeedsOwnResponse() bool { return v.Response == nil }
