package main

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"welearn/internal/domain"
	"welearn/internal/dto"
	"welearn/internal/service"

	"go.uber.org/zap"
)

//go:embed seed_data/quizzes.json
var defaultSeed embed.FS

type seedQuiz struct {
	Title       string `json:"title"`
	Instruction string `json:"instruction"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Difficulty  string `json:"difficulty"`
	Type        string `json:"type"`
}

type seedCategory struct {
	Category string     `json:"category"`
	Quizzes  []seedQuiz `json:"quizzes"`
}

func loadSeed(r io.Reader) ([]seedCategory, error) {
	var categories []seedCategory
	if err := json.NewDecoder(r).Decode(&categories); err != nil {
		return nil, fmt.Errorf("failed to decode seed data: %w", err)
	}
	return categories, nil
}

// seedQuizzes creates every quiz whose title is not in the catalogue yet.
// All inserts share one transaction, so a single invalid quiz leaves the
// catalogue untouched.
func seedQuizzes(ctx context.Context, quizzes service.QuizService, tx domain.TransactionManager, categories []seedCategory, log *zap.Logger) (int, error) {
	existing, err := quizzes.ListQuizzes(ctx)
	if err != nil {
		return 0, err
	}
	titles := make(map[string]bool, len(existing))
	for _, q := range existing {
		titles[strings.ToLower(q.Title)] = true
	}

	created := 0
	err = tx.WithTransaction(ctx, func(ctx context.Context) error {
		for _, c := range categories {
			for _, q := range c.Quizzes {
				if titles[strings.ToLower(q.Title)] {
					log.Debug("Quiz already present, skipping", zap.String("title", q.Title))
					continue
				}
				resp, err := quizzes.CreateQuiz(ctx, dto.QuizRequest{
					Title:       q.Title,
					Instruction: q.Instruction,
					Question:    q.Question,
					Answer:      q.Answer,
					Category:    c.Category,
					Difficulty:  q.Difficulty,
					Type:        q.Type,
				})
				if err != nil {
					return fmt.Errorf("quiz %q: %w", q.Title, err)
				}
				titles[strings.ToLower(q.Title)] = true
				created++
				log.Info("Seeded quiz", zap.String("id", resp.ID), zap.String("category", c.Category))
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func seedAdmin(ctx context.Context, admins service.AdminService, req dto.AccountRequest, log *zap.Logger) error {
	all, err := admins.ListAdmins(ctx)
	if err != nil {
		return err
	}
	for _, a := range all {
		if strings.EqualFold(a.Username, req.Username) {
			log.Info("Admin already present", zap.String("username", req.Username))
			return nil
		}
	}
	admin, err := admins.CreateAdmin(ctx, req)
	if err != nil {
		return err
	}
	log.Info("Seeded admin", zap.String("id", admin.ID), zap.String("username", admin.Username))
	return nil
}
