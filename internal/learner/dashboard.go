// Package learner composes the learner-facing pieces into the dashboard
// that the CLI drives: the quiz sidebar, progress counts and the quiz table.
package learner

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"welearn/internal/domain"
	"welearn/internal/dto"
	"welearn/internal/identity"
	"welearn/internal/table"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// API is the part of the REST client the dashboard reads from.
type API interface {
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	ProgressSummary(ctx context.Context, userID string) (*dto.ProgressSummaryResponse, error)
}

// Wallet is the identity store slice the dashboard seeds.
type Wallet interface {
	Identity() identity.Identity
	ReplaceCompleted(ctx context.Context, quizIDs []string) error
}

// CategoryGroup is one sidebar section.
type CategoryGroup struct {
	Category string
	Quizzes  []domain.Quiz
}

// CategoryProgress counts completed quizzes in one category.
type CategoryProgress struct {
	Category  string
	Completed int
	Total     int
}

// Dashboard holds the quizzes loaded for the signed-in learner.
type Dashboard struct {
	api    API
	wallet Wallet
	log    *zap.Logger

	mu      sync.RWMutex
	quizzes []domain.Quiz
	summary map[string]dto.ProgressSummaryItem
}

func NewDashboard(api API, wallet Wallet, log *zap.Logger) *Dashboard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dashboard{api: api, wallet: wallet, log: log}
}

// Load fetches the quiz list and the progress summary concurrently and
// seeds the completed set into the wallet.
func (d *Dashboard) Load(ctx context.Context) error {
	id := d.wallet.Identity()
	if !id.LoggedIn() {
		return domain.NewUnauthorizedError("Please log in first")
	}

	var (
		quizzes []domain.Quiz
		summary *dto.ProgressSummaryResponse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quizzes, err = d.api.ListQuizzes(gctx)
		if err != nil {
			return fmt.Errorf("failed to load quizzes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		summary, err = d.api.ProgressSummary(gctx, id.UserID)
		if err != nil {
			return fmt.Errorf("failed to load progress: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		d.log.Error("Dashboard load failed", zap.String("userID", id.UserID), zap.Error(err))
		return err
	}

	items := make(map[string]dto.ProgressSummaryItem, len(summary.Quizzes))
	for _, item := range summary.Quizzes {
		items[item.QuizID] = item
	}

	d.mu.Lock()
	d.quizzes = quizzes
	d.summary = items
	d.mu.Unlock()

	if err := d.wallet.ReplaceCompleted(ctx, summary.CompletedIDs()); err != nil {
		return fmt.Errorf("failed to store completed quizzes: %w", err)
	}
	d.log.Debug("Dashboard loaded", zap.Int("quizzes", len(quizzes)), zap.Int("attempted", len(items)))
	return nil
}

// Quiz returns the loaded quiz with id.
func (d *Dashboard) Quiz(id string) (*domain.Quiz, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for i := range d.quizzes {
		if d.quizzes[i].ID == id {
			q := d.quizzes[i]
			return &q, true
		}
	}
	return nil, false
}

// Sidebar groups quizzes by category. Known categories come first in their
// canonical order, then any others alphabetically.
func (d *Dashboard) Sidebar() []CategoryGroup {
	d.mu.RLock()
	defer d.mu.RUnlock()

	byCategory := make(map[string][]domain.Quiz)
	for _, q := range d.quizzes {
		byCategory[q.Category] = append(byCategory[q.Category], q)
	}

	groups := make([]CategoryGroup, 0, len(byCategory))
	for _, c := range orderCategories(byCategory) {
		groups = append(groups, CategoryGroup{Category: c, Quizzes: byCategory[c]})
	}
	return groups
}

// Progress returns per-category completion counts using the wallet's
// completed set, which also reflects completions made after Load.
func (d *Dashboard) Progress() []CategoryProgress {
	id := d.wallet.Identity()
	groups := d.Sidebar()

	out := make([]CategoryProgress, 0, len(groups))
	for _, g := range groups {
		p := CategoryProgress{Category: g.Category, Total: len(g.Quizzes)}
		for _, q := range g.Quizzes {
			if id.HasCompleted(q.ID) {
				p.Completed++
			}
		}
		out = append(out, p)
	}
	return out
}

// Rows returns the quiz table rows.
func (d *Dashboard) Rows() []table.Row {
	id := d.wallet.Identity()
	d.mu.RLock()
	defer d.mu.RUnlock()

	rows := make([]table.Row, 0, len(d.quizzes))
	for _, q := range d.quizzes {
		item := d.summary[q.ID]
		status := "new"
		switch {
		case id.HasCompleted(q.ID):
			status = "completed"
		case item.ExercisesCompleted > 0:
			status = "attempted"
		}
		rows = append(rows, table.Row{
			"id":         q.ID,
			"title":      q.Title,
			"category":   q.Category,
			"difficulty": q.Difficulty,
			"status":     status,
			"attempts":   item.ExercisesCompleted,
			"timeSpent":  item.TotalTimeSpent,
		})
	}
	return rows
}

func orderCategories(byCategory map[string][]domain.Quiz) []string {
	seen := make(map[string]bool, len(byCategory))
	var out []string
	for _, c := range domain.KnownCategories {
		if _, ok := byCategory[c]; ok {
			out = append(out, c)
			seen[c] = true
		}
	}
	var rest []string
	for c := range byCategory {
		if !seen[c] {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
