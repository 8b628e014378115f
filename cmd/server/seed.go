package main

import (
	"context"
	"errors"
	"math/rand"

	"gorm.io/gorm"

	"github.com/listoflists/go-survey-backend/internal/domain"
	"github.com/listoflists/go-survey-backend/internal/repo"
	"github.com/listoflists/go-survey-backend/internal/services"
)

// seedExampleData populates a small demo dataset for local development: three
// accounts, the "Pets" survey with a flip pair and two heading sections, two
// friends-only responses, and one confirmed friendship. Safe to run on every
// boot; it is a no-op once the survey exists.
func seedExampleData(ctx context.Context, db *gorm.DB) error {
	if _, err := repo.FindSurveyByName(ctx, db, "Pets"); err == nil {
		return nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return err
	}

	accounts := &services.AccountService{DB: db}
	surveys := &services.SurveyService{DB: db, Visibility: &services.VisibilityService{DB: db}}
	ordering := &services.OrderingService{DB: db}
	friends := &services.FriendService{DB: db}

	seedUser := func(name, password string) (*domain.User, error) {
		if u, err := repo.FindUserByName(ctx, db, name); err == nil {
			return u, nil
		}
		return accounts.Register(ctx, name, password, password, "")
	}

	alice, err := seedUser("Alice", "alicepass")
	if err != nil {
		return err
	}
	bob, err := seedUser("Bob", "bobpass")
	if err != nil {
		return err
	}
	if _, err := seedUser("Charlie", "charliepass"); err != nil {
		return err
	}

	pets, err := surveys.Create(ctx, alice.ID,
		"Pets", "What type of pet should we get?", "Fluffy? Fuzzy? Wonderful?")
	if err != nil {
		return err
	}

	addHeading := func(text string) (uint, error) {
		h, err := ordering.AddHeading(ctx, pets.ID, text)
		if err != nil {
			return 0, err
		}
		return h.ID, nil
	}
	add := func(in services.AddQuestionInput) error {
		in.SurveyID = pets.ID
		_, err := ordering.AddQuestion(ctx, in)
		return err
	}

	if err := add(services.AddQuestionInput{
		Text:     "Human (I am the owner)",
		FlipText: "Human (I am the pet)",
	}); err != nil {
		return err
	}
	if err := add(services.AddQuestionInput{Text: "Humans", Extra: "As in children"}); err != nil {
		return err
	}

	small, err := addHeading("Small Animals")
	if err != nil {
		return err
	}
	for _, text := range []string{"Cats", "Dogs", "Rabbits", "Birds", "Lizards"} {
		if err := add(services.AddQuestionInput{Text: text, Section: "Small Animals", HeadingID: small}); err != nil {
			return err
		}
	}

	large, err := addHeading("Large Animals")
	if err != nil {
		return err
	}
	for _, text := range []string{"Horses", "Llamas"} {
		if err := add(services.AddQuestionInput{Text: text, Section: "Large Animals", HeadingID: large}); err != nil {
			return err
		}
	}

	qs, err := repo.ListQuestions(ctx, db, pets.ID)
	if err != nil {
		return err
	}
	values := []int{-2, 0, 1, 2}
	randomAnswers := func() map[uint]int {
		m := make(map[uint]int, len(qs))
		for _, q := range qs {
			m[q.ID] = values[rand.Intn(len(values))]
		}
		return m
	}

	if _, err := surveys.Submit(ctx, pets.ID, alice.ID, domain.PrivacyFriends, randomAnswers()); err != nil {
		return err
	}
	if _, err := surveys.Submit(ctx, pets.ID, bob.ID, domain.PrivacyFriends, randomAnswers()); err != nil {
		return err
	}

	// Mutual request confirms the pair.
	if err := friends.RequestOrConfirm(ctx, alice.Username, bob.Username); err != nil {
		return err
	}
	return friends.RequestOrConfirm(ctx, bob.Username, alice.Username)
}
