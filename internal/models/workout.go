package models

import "time"

// WorkoutEntry запись тренировки в журнале пользователя.
type WorkoutEntry struct {
	ID              string    `json:"id"`
	UserUID         string    `json:"user_uid"`
	Activity        string    `json:"activity"`
	DurationMinutes int       `json:"duration_minutes"`
	Calories        int       `json:"calories"`
	LoggedAt        time.Time `json:"logged_at"`
}

// DummyWorkoutEntry используется для приёма тренировки из JSON-запроса.
// Calories опциональны: при нуле сервис оценивает их по MET-таблице.
type DummyWorkoutEntry struct {
	Activity        string  `json:"activity" validate:"required"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,gt=0"`
	Calories        int     `json:"calories,omitempty" validate:"omitempty,gte=0"`
	WeightKg        float64 `json:"weight_kg,omitempty" validate:"omitempty,gt=0"`
}

// Stats агрегированная статистика пользователя для геймификации.
type Stats struct {
	StreakDays    int      `json:"streak_days"`
	TotalWorkouts int      `json:"total_workouts"`
	Badges        []string `json:"badges"`
}

// DummyEnergyRequest параметры расчёта BMR/TDEE.
type DummyEnergyRequest struct {
	Sex           string  `json:"sex" validate:"required,oneof=male female"`
	AgeYears      int     `json:"age_years" validate:"required,gt=0,lt=120"`
	WeightKg      float64 `json:"weight_kg" validate:"required,gt=0"`
	HeightCm      float64 `json:"height_cm" validate:"required,gt=0"`
	ActivityLevel string  `json:"activity_level" validate:"required,oneof=sedentary light moderate active very_active"`
}

// DummyChatRequest сообщение пользователя для AI-тренера.
type DummyChatRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}
