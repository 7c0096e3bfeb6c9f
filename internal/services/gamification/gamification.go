// Package gamification считает агрегированную статистику пользователя:
// streak подряд идущих дней с тренировками, общее число тренировок
// и заработанные бейджи.
package gamification

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/fitness-backend/internal/models"
)

// Repository определяет методы хранилища для подсчёта статистики.
type Repository interface {
	ListWorkoutDays(ctx context.Context, uid string, since time.Time) ([]time.Time, error)
	CountWorkoutEntries(ctx context.Context, uid string) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует расчёт статистики с кешированием.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// CacheKey возвращает ключ кеша статистики для пользователя.
func CacheKey(uid string) string {
	return "stats:" + uid
}

const cacheTTL = 10 * time.Minute

// streakWindow ограничивает глубину выборки дней: streak длиннее
// этого окна считается как длина окна.
const streakWindow = 366

// Streak считает число подряд идущих дней с тренировками,
// заканчивающихся сегодня или вчера. days ожидается по убыванию,
// нормализованными к началу дня.
func Streak(days []time.Time, today time.Time) int {
	if len(days) == 0 {
		return 0
	}
	today = today.Truncate(24 * time.Hour)

	expected := today
	if !days[0].Equal(today) {
		// streak не обнуляется, пока не пропущен целый день
		expected = today.AddDate(0, 0, -1)
		if !days[0].Equal(expected) {
			return 0
		}
	}

	streak := 0
	for _, day := range days {
		if !day.Equal(expected) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}
	return streak
}

// Badges возвращает бейджи за streak и общее число тренировок.
func Badges(streakDays, totalWorkouts int) []string {
	badges := make([]string, 0, 5)
	if streakDays >= 3 {
		badges = append(badges, "streak-3")
	}
	if streakDays >= 7 {
		badges = append(badges, "streak-7")
	}
	if streakDays >= 30 {
		badges = append(badges, "streak-30")
	}
	if totalWorkouts >= 10 {
		badges = append(badges, "workouts-10")
	}
	if totalWorkouts >= 100 {
		badges = append(badges, "workouts-100")
	}
	return badges
}

// Stats возвращает статистику пользователя, используя кеш или хранилище.
func (s *Service) Stats(ctx context.Context, uid string) (*models.Stats, error) {
	var stats models.Stats
	cacheKey := CacheKey(uid)

	found, err := s.cache.Get(cacheKey, &stats)
	if err != nil {
		s.log.Warn("failed to read stats cache", slog.String("key", cacheKey), slog.Any("err", err))
		found = false
	}
	if found {
		return &stats, nil
	}

	now := time.Now().UTC()
	days, err := s.repo.ListWorkoutDays(ctx, uid, now.AddDate(0, 0, -streakWindow))
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountWorkoutEntries(ctx, uid)
	if err != nil {
		return nil, err
	}

	streak := Streak(days, now)
	stats = models.Stats{
		StreakDays:    streak,
		TotalWorkouts: total,
		Badges:        Badges(streak, total),
	}
	if err := s.cache.Set(cacheKey, stats, cacheTTL); err != nil {
		s.log.Warn("failed to cache stats", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return &stats, nil
}

// InvalidateStats сбрасывает кеш статистики. Вызывается после записи
// новой тренировки.
func (s *Service) InvalidateStats(uid string) {
	cacheKey := CacheKey(uid)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate stats cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
}
