// Package storage реализует хранилище данных на основе PostgreSQL:
// профили пользователей с premium-полями, локальное зеркало подписок
// платёжного провайдера, журнал обработанных webhook-событий и журнал
// тренировок.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/magabrotheeeer/fitness-backend/internal/models"
)

// Ошибки хранилища. Вызывающая сторона отличает not-found от недоступности
// базы: первое — 404, второе — retryable 500.
var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	Db *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		Db: db,
	}, nil
}

// ===== PROFILE METHODS =====

const profileColumns = `uid, email, tier, premium_expiry, stripe_customer_id,
				stripe_subscription_id, promo_code, created_at`

func scanProfile(row *sql.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.UID, &p.Email, &p.Tier, &p.PremiumExpiry,
		&p.StripeCustomerID, &p.StripeSubscriptionID, &p.PromoCode, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetOrCreateProfile возвращает профиль, создавая свободную запись при
// первом обращении аутентифицированного пользователя.
func (s *Storage) GetOrCreateProfile(ctx context.Context, uid, email string) (*models.Profile, error) {
	const op = "storage.GetOrCreateProfile"

	query := `INSERT INTO profiles (uid, email)
			  VALUES ($1, $2)
			  ON CONFLICT (uid) DO UPDATE SET email = EXCLUDED.email
			  RETURNING ` + profileColumns
	profile, err := scanProfile(s.Db.QueryRowContext(ctx, query, uid, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return profile, nil
}

// GetProfileByUID возвращает профиль по идентификатору пользователя.
func (s *Storage) GetProfileByUID(ctx context.Context, uid string) (*models.Profile, error) {
	const op = "storage.GetProfileByUID"

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE uid = $1`
	profile, err := scanProfile(s.Db.QueryRowContext(ctx, query, uid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return profile, nil
}

// GetProfileByStripeCustomerID возвращает профиль по ссылке на customer в Stripe.
func (s *Storage) GetProfileByStripeCustomerID(ctx context.Context, customerID string) (*models.Profile, error) {
	const op = "storage.GetProfileByStripeCustomerID"

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE stripe_customer_id = $1`
	profile, err := scanProfile(s.Db.QueryRowContext(ctx, query, customerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return profile, nil
}

// SetPremium идемпотентно перезаписывает premium-поля профиля,
// не затрагивая остальные колонки.
func (s *Storage) SetPremium(ctx context.Context, uid string, tier models.Tier, expiry *time.Time, subscriptionID *string) error {
	const op = "storage.SetPremium"

	query := `UPDATE profiles
			  SET tier = $2, premium_expiry = $3, stripe_subscription_id = $4
			  WHERE uid = $1`
	result, err := s.Db.ExecContext(ctx, query, uid, tier, expiry, subscriptionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// SetStripeCustomerID сохраняет ссылку на customer в Stripe, чтобы
// повторные checkout-сессии использовали того же customer.
func (s *Storage) SetStripeCustomerID(ctx context.Context, uid, customerID string) error {
	const op = "storage.SetStripeCustomerID"

	query := `UPDATE profiles SET stripe_customer_id = $2 WHERE uid = $1`
	result, err := s.Db.ExecContext(ctx, query, uid, customerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// RecordPromoCode запоминает последний применённый промокод.
func (s *Storage) RecordPromoCode(ctx context.Context, uid, code string) error {
	const op = "storage.RecordPromoCode"

	query := `UPDATE profiles SET promo_code = $2 WHERE uid = $1`
	if _, err := s.Db.ExecContext(ctx, query, uid, code); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ===== SUBSCRIPTION MIRROR METHODS =====

// UpsertSubscription вставляет или обновляет зеркало подписки.
// Обновление применяется только если снапшот провайдера не старее
// сохранённого: защита от доставки событий не по порядку. Возвращает
// false, если снапшот устарел и строка не изменилась: в этом случае
// вызывающий код не должен трогать и premium-поля профиля.
func (s *Storage) UpsertSubscription(ctx context.Context, sub models.Subscription) (bool, error) {
	const op = "storage.UpsertSubscription"

	query := `INSERT INTO subscriptions (id, user_uid, status, price_id,
				  current_period_end, provider_updated_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, now())
			  ON CONFLICT (id) DO UPDATE SET
				  status = EXCLUDED.status,
				  price_id = EXCLUDED.price_id,
				  current_period_end = EXCLUDED.current_period_end,
				  provider_updated_at = EXCLUDED.provider_updated_at,
				  updated_at = now()
			  WHERE subscriptions.provider_updated_at <= EXCLUDED.provider_updated_at`
	result, err := s.Db.ExecContext(ctx, query, sub.ID, sub.UserUID, sub.Status,
		sub.PriceID, sub.CurrentPeriodEnd, sub.ProviderUpdatedAt)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected == 1, nil
}

// GetSubscription возвращает зеркало подписки по идентификатору провайдера.
func (s *Storage) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	const op = "storage.GetSubscription"

	query := `SELECT id, user_uid, status, price_id, current_period_end,
				  provider_updated_at, updated_at
			  FROM subscriptions WHERE id = $1`
	var sub models.Subscription
	err := s.Db.QueryRowContext(ctx, query, id).Scan(&sub.ID, &sub.UserUID,
		&sub.Status, &sub.PriceID, &sub.CurrentPeriodEnd, &sub.ProviderUpdatedAt, &sub.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}

// SetSubscriptionStatus обновляет статус зеркала и возвращает uid владельца.
func (s *Storage) SetSubscriptionStatus(ctx context.Context, id, status string) (string, error) {
	const op = "storage.SetSubscriptionStatus"

	query := `UPDATE subscriptions SET status = $2, updated_at = now()
			  WHERE id = $1
			  RETURNING user_uid`
	var userUID string
	err := s.Db.QueryRowContext(ctx, query, id, status).Scan(&userUID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSubscriptionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return userUID, nil
}

// ===== WEBHOOK IDEMPOTENCY =====

// MarkEventProcessed фиксирует идентификатор webhook-события.
// Возвращает false, если событие уже обрабатывалось (replay).
func (s *Storage) MarkEventProcessed(ctx context.Context, eventID string) (bool, error) {
	const op = "storage.MarkEventProcessed"

	query := `INSERT INTO processed_events (id) VALUES ($1)
			  ON CONFLICT (id) DO NOTHING`
	result, err := s.Db.ExecContext(ctx, query, eventID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected == 1, nil
}

// ClearEventProcessed снимает отметку об обработке события. Вызывается,
// когда мутация по событию провалилась: ретрай провайдера должен пройти
// через обработку заново, а не упереться в replay-защиту.
func (s *Storage) ClearEventProcessed(ctx context.Context, eventID string) error {
	const op = "storage.ClearEventProcessed"

	query := `DELETE FROM processed_events WHERE id = $1`
	if _, err := s.Db.ExecContext(ctx, query, eventID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ===== TRIAL SWEEP METHODS =====

// FindExpiredTrials возвращает профили с истёкшим триалом.
// Бессрочные гранты (premium_expiry IS NULL) не попадают в выборку.
func (s *Storage) FindExpiredTrials(ctx context.Context, now time.Time) ([]*models.Profile, error) {
	const op = "storage.FindExpiredTrials"

	query := `SELECT ` + profileColumns + `
			  FROM profiles
			  WHERE tier <> 'free'
				AND premium_expiry IS NOT NULL
				AND premium_expiry < $1
				AND stripe_subscription_id IS NULL`
	rows, err := s.Db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.UID, &p.Email, &p.Tier, &p.PremiumExpiry,
			&p.StripeCustomerID, &p.StripeSubscriptionID, &p.PromoCode, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		profiles = append(profiles, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return profiles, nil
}

// DowngradeExpiredTrial переводит профиль на free, если триал действительно
// истёк. Условие повторяет выборку, поэтому вызов идемпотентен.
func (s *Storage) DowngradeExpiredTrial(ctx context.Context, uid string, now time.Time) (int, error) {
	const op = "storage.DowngradeExpiredTrial"

	query := `UPDATE profiles
			  SET tier = 'free', premium_expiry = NULL
			  WHERE uid = $1
				AND premium_expiry IS NOT NULL
				AND premium_expiry < $2
				AND stripe_subscription_id IS NULL`
	result, err := s.Db.ExecContext(ctx, query, uid, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ===== WORKOUT METHODS =====

// CreateWorkoutEntry вставляет запись тренировки.
func (s *Storage) CreateWorkoutEntry(ctx context.Context, entry models.WorkoutEntry) error {
	const op = "storage.CreateWorkoutEntry"

	query := `INSERT INTO workout_entries (id, user_uid, activity, duration_minutes, calories, logged_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.Db.ExecContext(ctx, query, entry.ID, entry.UserUID,
		entry.Activity, entry.DurationMinutes, entry.Calories, entry.LoggedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListWorkoutEntries возвращает тренировки пользователя с пагинацией,
// новые записи первыми.
func (s *Storage) ListWorkoutEntries(ctx context.Context, uid string, limit, offset int) ([]*models.WorkoutEntry, error) {
	const op = "storage.ListWorkoutEntries"

	query := `SELECT id, user_uid, activity, duration_minutes, calories, logged_at
			  FROM workout_entries
			  WHERE user_uid = $1
			  ORDER BY logged_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.Db.QueryContext(ctx, query, uid, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var entries []*models.WorkoutEntry
	for rows.Next() {
		var e models.WorkoutEntry
		if err := rows.Scan(&e.ID, &e.UserUID, &e.Activity, &e.DurationMinutes,
			&e.Calories, &e.LoggedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}

// ListWorkoutDays возвращает дни с хотя бы одной тренировкой, начиная
// с since, по убыванию. Используется для подсчёта streak.
func (s *Storage) ListWorkoutDays(ctx context.Context, uid string, since time.Time) ([]time.Time, error) {
	const op = "storage.ListWorkoutDays"

	query := `SELECT DISTINCT date_trunc('day', logged_at) AS day
			  FROM workout_entries
			  WHERE user_uid = $1 AND logged_at >= $2
			  ORDER BY day DESC`
	rows, err := s.Db.QueryContext(ctx, query, uid, since)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return days, nil
}

// CountWorkoutEntries возвращает общее число тренировок пользователя.
func (s *Storage) CountWorkoutEntries(ctx context.Context, uid string) (int, error) {
	const op = "storage.CountWorkoutEntries"

	var count int
	err := s.Db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM workout_entries WHERE user_uid = $1`, uid).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
