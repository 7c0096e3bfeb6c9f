package workout

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/fitness-backend/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateWorkoutEntry(ctx context.Context, entry models.WorkoutEntry) error {
	return m.Called(ctx, entry).Error(0)
}
func (m *RepoMock) ListWorkoutEntries(ctx context.Context, uid string, limit, offset int) ([]*models.WorkoutEntry, error) {
	args := m.Called(ctx, uid, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WorkoutEntry), args.Error(1)
}

type StatsMock struct{ mock.Mock }

func (m *StatsMock) InvalidateStats(uid string) {
	m.Called(uid)
}

func newService(repo *RepoMock, stats *StatsMock) *Service {
	return New(repo, stats, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreate_WithExplicitCalories(t *testing.T) {
	repo := new(RepoMock)
	stats := new(StatsMock)
	svc := newService(repo, stats)

	repo.On("CreateWorkoutEntry", mock.Anything, mock.MatchedBy(func(e models.WorkoutEntry) bool {
		return e.UserUID == "user-1" && e.Calories == 250 && e.ID != ""
	})).Return(nil)
	stats.On("InvalidateStats", "user-1").Return()

	entry, err := svc.Create(context.Background(), "user-1", models.DummyWorkoutEntry{
		Activity:        "running",
		DurationMinutes: 30,
		Calories:        250,
	})
	assert.NoError(t, err)
	assert.Equal(t, 250, entry.Calories)
	repo.AssertExpectations(t)
	stats.AssertExpectations(t)
}

func TestCreate_EstimatesCaloriesWhenOmitted(t *testing.T) {
	repo := new(RepoMock)
	stats := new(StatsMock)
	svc := newService(repo, stats)

	repo.On("CreateWorkoutEntry", mock.Anything, mock.Anything).Return(nil)
	stats.On("InvalidateStats", "user-1").Return()

	entry, err := svc.Create(context.Background(), "user-1", models.DummyWorkoutEntry{
		Activity:        "running",
		DurationMinutes: 30,
		WeightKg:        80,
	})
	assert.NoError(t, err)
	// 9.8 * 3.5 * 80 / 200 * 30
	assert.Equal(t, 411, entry.Calories)
}

func TestList_ClampsPagination(t *testing.T) {
	repo := new(RepoMock)
	stats := new(StatsMock)
	svc := newService(repo, stats)

	repo.On("ListWorkoutEntries", mock.Anything, "user-1", 20, 0).
		Return([]*models.WorkoutEntry{}, nil)

	_, err := svc.List(context.Background(), "user-1", 0, -5)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
