// Package promo содержит валидацию промокодов. Таблица кодов фиксированная,
// неизвестные коды всегда отклоняются. Сам пакет без побочных эффектов:
// применение гранта к профилю выполняет services/entitlement.
package promo

import "strings"

// Grant тип гранта промокода.
type Grant string

const (
	// GrantLifetime бессрочный premium.
	GrantLifetime Grant = "lifetime"
	// GrantTrial premium на ограниченное число дней.
	GrantTrial Grant = "trial"
)

// Result результат проверки кода.
type Result struct {
	Valid   bool   `json:"valid"`
	Grant   Grant  `json:"grant,omitempty"`
	Days    int    `json:"days,omitempty"`
	Message string `json:"message"`
}

// Validate нормализует код (trim + lowercase) и ищет его в таблице.
// Регистронезависимо, пробелы по краям игнорируются.
func Validate(code string) Result {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "freshmanfriday":
		return Result{
			Valid:   true,
			Grant:   GrantLifetime,
			Message: "Lifetime premium unlocked with Freshman Friday!",
		}
	case "cc":
		return Result{
			Valid:   true,
			Grant:   GrantTrial,
			Days:    7,
			Message: "7-day premium trial activated!",
		}
	default:
		return Result{
			Valid:   false,
			Message: "Invalid promo code",
		}
	}
}
