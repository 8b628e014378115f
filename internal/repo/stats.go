// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the global row-count aggregates behind
// the loopback-only stats endpoint; tests also use them to assert that
// account deletion leaves no orphaned rows.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/listoflists/go-survey-backend/internal/domain"
)

// Stats holds one row count per table of interest.
type Stats struct {
	Friendships int64 `json:"friendships"`
	Users       int64 `json:"users"`
	Surveys     int64 `json:"surveys"`
	Questions   int64 `json:"questions"`
	Headings    int64 `json:"headings"`
	Responses   int64 `json:"responses"`
	Answers     int64 `json:"answers"`
}

// GlobalStats counts the rows in every domain table.
func GlobalStats(ctx context.Context, db *gorm.DB) (*Stats, error) {
	var s Stats
	counts := []struct {
		model any
		dst   *int64
	}{
		{&domain.Friendship{}, &s.Friendships},
		{&domain.User{}, &s.Users},
		{&domain.Survey{}, &s.Surveys},
		{&domain.Question{}, &s.Questions},
		{&domain.Heading{}, &s.Headings},
		{&domain.Response{}, &s.Responses},
		{&domain.Answer{}, &s.Answers},
	}
	for _, c := range counts {
		if err := db.WithContext(ctx).Model(c.model).Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return &s, nil
}
