// Package services – survey search.
//
// SurveyIndex ranks surveys against free-text queries using the in-memory
// index from internal/search. The index itself is immutable, so this wrapper
// rebuilds it whenever a cheap fingerprint of the catalog (row counts of
// surveys, questions, and headings) changes. For the data sizes this
// application handles a full rebuild is cheaper than keeping an incremental
// index consistent with the database.
package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/listoflists/go-survey-backend/internal/domain"
	"github.com/listoflists/go-survey-backend/internal/repo"
	"github.com/listoflists/go-survey-backend/internal/search"
)

// SurveyIndex is a lazily rebuilt full-text index over survey names,
// descriptions, and question texts. Safe for concurrent use.
type SurveyIndex struct {
	DB *gorm.DB

	mu          sync.Mutex
	idx         search.Index
	fingerprint string
}

// Search returns up to limit surveys ranked against query, best first.
func (s *SurveyIndex) Search(ctx context.Context, query string, limit int) ([]domain.Survey, error) {
	idx, err := s.current(ctx)
	if err != nil {
		return nil, err
	}

	hits := idx.TopK(query, limit)
	if len(hits) == 0 {
		return []domain.Survey{}, nil
	}

	out := make([]domain.Survey, 0, len(hits))
	for _, hit := range hits {
		sv, err := repo.GetSurvey(ctx, s.DB, hit.ID)
		if err != nil {
			// Deleted between rebuilds; skip rather than fail the search.
			continue
		}
		out = append(out, *sv)
	}
	return out, nil
}

// current returns the cached index, rebuilding it when the catalog changed.
func (s *SurveyIndex) current(ctx context.Context) (search.Index, error) {
	fp, err := s.catalogFingerprint(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx != nil && s.fingerprint == fp {
		return s.idx, nil
	}

	idx, err := s.rebuild(ctx)
	if err != nil {
		return nil, err
	}
	s.idx = idx
	s.fingerprint = fp
	return idx, nil
}

func (s *SurveyIndex) catalogFingerprint(ctx context.Context) (string, error) {
	var surveys, questions, headings int64
	db := s.DB.WithContext(ctx)
	if err := db.Model(&domain.Survey{}).Count(&surveys).Error; err != nil {
		return "", err
	}
	if err := db.Model(&domain.Question{}).Count(&questions).Error; err != nil {
		return "", err
	}
	if err := db.Model(&domain.Heading{}).Count(&headings).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%d:%d:%d", surveys, questions, headings), nil
}

// rebuild constructs one search document per survey from its name,
// descriptions, and every entry text.
func (s *SurveyIndex) rebuild(ctx context.Context) (search.Index, error) {
	surveys, err := repo.ListSurveys(ctx, s.DB)
	if err != nil {
		return nil, err
	}

	docs := make([]search.Doc, 0, len(surveys))
	for i := range surveys {
		sv := &surveys[i]

		var b strings.Builder
		b.WriteString(sv.Name)
		b.WriteByte(' ')
		b.WriteString(sv.Description)
		b.WriteByte(' ')
		b.WriteString(sv.LongDescription)

		entries, err := repo.ListEntries(ctx, s.DB, sv.ID)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			b.WriteByte(' ')
			b.WriteString(e.Text())
		}

		docs = append(docs, search.Doc{ID: sv.ID, Text: b.String()})
	}
	return search.NewIndex(docs), nil
}
