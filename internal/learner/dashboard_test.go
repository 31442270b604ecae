package learner

import (
	"context"
	"errors"
	"testing"

	"welearn/internal/domain"
	"welearn/internal/dto"
	"welearn/internal/identity"
	"welearn/internal/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	quizzes    []domain.Quiz
	summary    *dto.ProgressSummaryResponse
	quizErr    error
	summaryErr error
	summaryFor string
}

func (f *fakeAPI) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return f.quizzes, f.quizErr
}

func (f *fakeAPI) ProgressSummary(ctx context.Context, userID string) (*dto.ProgressSummaryResponse, error) {
	f.summaryFor = userID
	return f.summary, f.summaryErr
}

func loggedIn(t *testing.T) *identity.Store {
	t.Helper()
	s := identity.NewStore(nil)
	require.NoError(t, s.Save(context.Background(), identity.Identity{AuthToken: "tok", UserID: "u1", Username: "alice", CompletedQuizzes: []string{"stale"}}))
	return s
}

func sampleAPI() *fakeAPI {
	return &fakeAPI{
		quizzes: []domain.Quiz{
			{ID: "q1", Title: "Bubble Sort", Category: "Sorting Algorithms", Difficulty: "easy"},
			{ID: "q2", Title: "Stack", Category: "Data Structures", Difficulty: "medium"},
			{ID: "q3", Title: "Merge Sort", Category: "Sorting Algorithms", Difficulty: "hard"},
			{ID: "q4", Title: "Graphs", Category: "Graph Theory", Difficulty: "hard"},
		},
		summary: &dto.ProgressSummaryResponse{Quizzes: []dto.ProgressSummaryItem{
			{QuizID: "q1", Completed: true, ExercisesCompleted: 2, TotalTimeSpent: 40},
			{QuizID: "q2", Completed: false, ExercisesCompleted: 1, TotalTimeSpent: 15},
		}},
	}
}

func TestDashboard_Load(t *testing.T) {
	api := sampleAPI()
	wallet := loggedIn(t)
	d := NewDashboard(api, wallet, nil)

	require.NoError(t, d.Load(context.Background()))
	assert.Equal(t, "u1", api.summaryFor)
	assert.Equal(t, []string{"q1"}, wallet.Identity().CompletedQuizzes)

	q, ok := d.Quiz("q3")
	require.True(t, ok)
	assert.Equal(t, "Merge Sort", q.Title)
	_, ok = d.Quiz("missing")
	assert.False(t, ok)
}

func TestDashboard_LoadRequiresLogin(t *testing.T) {
	d := NewDashboard(sampleAPI(), identity.NewStore(nil), nil)
	err := d.Load(context.Background())
	assert.True(t, domain.IsCode(err, domain.CodeUnauthorized))
}

func TestDashboard_LoadFailure(t *testing.T) {
	api := sampleAPI()
	api.summaryErr = errors.New("boom")
	wallet := loggedIn(t)
	d := NewDashboard(api, wallet, nil)

	err := d.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load progress")
	assert.Equal(t, []string{"stale"}, wallet.Identity().CompletedQuizzes)
	assert.Empty(t, d.Sidebar())
}

func TestDashboard_SidebarAndProgress(t *testing.T) {
	wallet := loggedIn(t)
	d := NewDashboard(sampleAPI(), wallet, nil)
	require.NoError(t, d.Load(context.Background()))

	groups := d.Sidebar()
	require.Len(t, groups, 3)
	assert.Equal(t, "Sorting Algorithms", groups[0].Category)
	assert.Len(t, groups[0].Quizzes, 2)
	assert.Equal(t, "Data Structures", groups[1].Category)
	assert.Equal(t, "Graph Theory", groups[2].Category)

	assert.Equal(t, []CategoryProgress{
		{Category: "Sorting Algorithms", Completed: 1, Total: 2},
		{Category: "Data Structures", Completed: 0, Total: 1},
		{Category: "Graph Theory", Completed: 0, Total: 1},
	}, d.Progress())

	require.NoError(t, wallet.MarkCompleted(context.Background(), "q3"))
	assert.Equal(t, 2, d.Progress()[0].Completed)
}

func TestDashboard_Rows(t *testing.T) {
	d := NewDashboard(sampleAPI(), loggedIn(t), nil)
	require.NoError(t, d.Load(context.Background()))

	rows := table.Sort(d.Rows(), "id", table.Asc)
	require.Len(t, rows, 4)
	assert.Equal(t, "completed", rows[0]["status"])
	assert.Equal(t, "attempted", rows[1]["status"])
	assert.Equal(t, 1, rows[1]["attempts"])
	assert.Equal(t, "new", rows[2]["status"])

	hits := table.Filter(d.Rows(), "sort")
	assert.Len(t, hits, 2)
}
