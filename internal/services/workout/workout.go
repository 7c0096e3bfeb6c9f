// Package workout содержит бизнес-логику журнала тренировок.
package workout

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/fitness-backend/internal/lib/energy"
	"github.com/magabrotheeeer/fitness-backend/internal/lib/sl"
	"github.com/magabrotheeeer/fitness-backend/internal/models"
)

// Repository определяет методы хранилища записей тренировок.
type Repository interface {
	CreateWorkoutEntry(ctx context.Context, entry models.WorkoutEntry) error
	ListWorkoutEntries(ctx context.Context, uid string, limit, offset int) ([]*models.WorkoutEntry, error)
}

// StatsInvalidator сбрасывает кеш статистики после записи тренировки.
type StatsInvalidator interface {
	InvalidateStats(uid string)
}

// Service реализует создание и чтение записей тренировок.
type Service struct {
	repo  Repository
	stats StatsInvalidator
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, stats StatsInvalidator, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		stats: stats,
		log:   log,
	}
}

// Create сохраняет запись тренировки. Если калории не переданы,
// они оцениваются по типу активности и длительности.
func (s *Service) Create(ctx context.Context, uid string, req models.DummyWorkoutEntry) (*models.WorkoutEntry, error) {
	calories := req.Calories
	if calories == 0 {
		weight := req.WeightKg
		if weight == 0 {
			weight = energy.DefaultWeightKg
		}
		calories = energy.EstimateCalories(req.Activity, req.DurationMinutes, weight)
	}

	entry := models.WorkoutEntry{
		ID:              uuid.NewString(),
		UserUID:         uid,
		Activity:        req.Activity,
		DurationMinutes: req.DurationMinutes,
		Calories:        calories,
		LoggedAt:        time.Now().UTC(),
	}
	if err := s.repo.CreateWorkoutEntry(ctx, entry); err != nil {
		return nil, err
	}

	s.stats.InvalidateStats(uid)
	s.log.Info("workout logged",
		sl.Uid(uid),
		slog.String("activity", entry.Activity))
	return &entry, nil
}

// List возвращает тренировки пользователя с пагинацией.
func (s *Service) List(ctx context.Context, uid string, limit, offset int) ([]*models.WorkoutEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListWorkoutEntries(ctx, uid, limit, offset)
}
