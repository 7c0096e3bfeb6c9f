// Package energy содержит расчёты энергозатрат: BMR по формуле
// Миффлина-Сан Жеора, TDEE через коэффициенты активности и оценку
// калорий тренировки по MET-таблице. Все функции чистые.
package energy

// Коэффициенты активности для TDEE.
var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// MET-значения по видам активности. Неизвестная активность получает
// умеренное значение по умолчанию.
var metValues = map[string]float64{
	"running":  9.8,
	"cycling":  7.5,
	"swimming": 8.0,
	"walking":  3.5,
	"strength": 6.0,
	"hiit":     8.0,
	"yoga":     2.5,
}

const defaultMET = 5.0

// DefaultWeightKg используется при оценке калорий, если вес пользователя неизвестен.
const DefaultWeightKg = 70.0

// BMR считает базовый метаболизм (ккал/сутки) по Миффлину-Сан Жеору.
// sex принимает "male" или "female"; иное трактуется как "female".
func BMR(sex string, weightKg, heightCm float64, ageYears int) float64 {
	base := 10*weightKg + 6.25*heightCm - 5*float64(ageYears)
	if sex == "male" {
		return base + 5
	}
	return base - 161
}

// TDEE умножает BMR на коэффициент активности.
// Неизвестный уровень активности трактуется как sedentary.
func TDEE(bmr float64, activityLevel string) float64 {
	mult, ok := activityMultipliers[activityLevel]
	if !ok {
		mult = activityMultipliers["sedentary"]
	}
	return bmr * mult
}

// EstimateCalories оценивает калории тренировки по MET-формуле:
// ккал = MET * 3.5 * вес(кг) / 200 * минуты.
func EstimateCalories(activity string, durationMinutes int, weightKg float64) int {
	if durationMinutes <= 0 {
		return 0
	}
	if weightKg <= 0 {
		weightKg = DefaultWeightKg
	}
	met, ok := metValues[activity]
	if !ok {
		met = defaultMET
	}
	return int(met * 3.5 * weightKg / 200 * float64(durationMinutes))
}
