package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"stadion-bot/internal/models"
)

// Postgres error code for unique_violation.
const uniqueViolation = "23505"

const (
	usersUniqueConstraint    = "users_telegram_id_key"
	bookingsUniqueConstraint = "bookings_date_field_slot_key"
)

type PostgresConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	ConnLifetime time.Duration
}

// PostgresStore implements Store on a pgx connection pool. The
// uniqueness invariants live in the schema, not in application code.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode, cfg.MaxOpenConns,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DB connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnLifetime
	poolConfig.MaxConnIdleTime = 15 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema creates the tables and the uniqueness constraints the
// ledger relies on.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	schema := `
        CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            telegram_id BIGINT NOT NULL,
            name VARCHAR(100) NOT NULL,
            surname VARCHAR(100) NOT NULL,
            phone VARCHAR(20) NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CONSTRAINT users_telegram_id_key UNIQUE (telegram_id)
        );
        CREATE TABLE IF NOT EXISTS bookings (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL REFERENCES users (id),
            date DATE NOT NULL,
            field VARCHAR(50) NOT NULL,
            slot VARCHAR(20) NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CONSTRAINT bookings_date_field_slot_key UNIQUE (date, field, slot)
        );
        CREATE INDEX IF NOT EXISTS bookings_user_id_idx ON bookings (user_id);
        CREATE INDEX IF NOT EXISTS bookings_date_idx ON bookings (date);
    `
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}

// dateArg rebuilds t's calendar day as a UTC midnight for DATE
// parameters. pgx encodes time.Time by instant, so a non-UTC midnight
// would otherwise land on the neighbouring day.
func dateArg(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// isUniqueViolation reports whether err is a unique_violation on the
// named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraint
	}
	return false
}

func (s *PostgresStore) RegisterUser(ctx context.Context, telegramID int64, name, surname, phone string) (*models.User, error) {
	query := `
        INSERT INTO users (telegram_id, name, surname, phone)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `

	user := &models.User{
		TelegramID: telegramID,
		Name:       name,
		Surname:    surname,
		Phone:      phone,
	}
	err := s.pool.QueryRow(ctx, query, telegramID, name, surname, phone).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, usersUniqueConstraint) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	return user, nil
}

func (s *PostgresStore) UserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	query := `
        SELECT id, telegram_id, name, surname, phone, created_at
        FROM users
        WHERE telegram_id = $1
    `
	return s.scanUser(s.pool.QueryRow(ctx, query, telegramID))
}

func (s *PostgresStore) UserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
        SELECT id, telegram_id, name, surname, phone, created_at
        FROM users
        WHERE id = $1
    `
	return s.scanUser(s.pool.QueryRow(ctx, query, id))
}

func (s *PostgresStore) scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.TelegramID, &user.Name,
		&user.Surname, &user.Phone, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// CreateBooking is a single conditional insert. The unique constraint
// on (date, field, slot) closes the race between the availability
// snapshot shown to the user and the admission here.
func (s *PostgresStore) CreateBooking(ctx context.Context, userID int64, date time.Time, field, slot string) (int64, error) {
	query := `
        INSERT INTO bookings (user_id, date, field, slot)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `

	var id int64
	err := s.pool.QueryRow(ctx, query, userID, dateArg(date), field, slot).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, bookingsUniqueConstraint) {
			return 0, ErrSlotTaken
		}
		return 0, fmt.Errorf("failed to create booking: %w", err)
	}

	return id, nil
}

func (s *PostgresStore) CancelBooking(ctx context.Context, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to cancel booking: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) BookingByID(ctx context.Context, id int64) (*models.Booking, error) {
	query := `
        SELECT id, user_id, date, field, slot, created_at
        FROM bookings
        WHERE id = $1
    `

	var b models.Booking
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.UserID, &b.Date, &b.Field, &b.Slot, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

func (s *PostgresStore) UserBookings(ctx context.Context, userID int64) ([]models.Booking, error) {
	query := `
        SELECT id, user_id, date, field, slot, created_at
        FROM bookings
        WHERE user_id = $1
        ORDER BY date, slot
    `
	return s.queryBookings(ctx, query, userID)
}

func (s *PostgresStore) AllBookings(ctx context.Context) ([]models.Booking, error) {
	query := `
        SELECT id, user_id, date, field, slot, created_at
        FROM bookings
        ORDER BY date DESC, slot
    `
	return s.queryBookings(ctx, query)
}

func (s *PostgresStore) BookedSlots(ctx context.Context, date time.Time, field string) ([]string, error) {
	query := `
        SELECT slot
        FROM bookings
        WHERE date = $1 AND field = $2
    `

	rows, err := s.pool.Query(ctx, query, dateArg(date), field)
	if err != nil {
		return nil, fmt.Errorf("failed to get booked slots: %w", err)
	}
	defer rows.Close()

	var slots []string
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func (s *PostgresStore) BookingsOn(ctx context.Context, date time.Time) ([]models.Booking, error) {
	query := `
        SELECT id, user_id, date, field, slot, created_at
        FROM bookings
        WHERE date = $1
        ORDER BY slot
    `
	return s.queryBookings(ctx, query, dateArg(date))
}

func (s *PostgresStore) BookingsBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	query := `
        SELECT id, user_id, date, field, slot, created_at
        FROM bookings
        WHERE date >= $1 AND date < $2
        ORDER BY date, slot
    `
	return s.queryBookings(ctx, query, dateArg(from), dateArg(to))
}

func (s *PostgresStore) queryBookings(ctx context.Context, query string, args ...interface{}) ([]models.Booking, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var b models.Booking
		err := rows.Scan(&b.ID, &b.UserID, &b.Date, &b.Field, &b.Slot, &b.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (s *PostgresStore) FieldCountsOn(ctx context.Context, date time.Time) ([]models.FieldCount, error) {
	query := `
        SELECT field, COUNT(id)
        FROM bookings
        WHERE date = $1
        GROUP BY field
        ORDER BY field
    `

	rows, err := s.pool.Query(ctx, query, dateArg(date))
	if err != nil {
		return nil, fmt.Errorf("failed to get field counts: %w", err)
	}
	defer rows.Close()

	var counts []models.FieldCount
	for rows.Next() {
		var fc models.FieldCount
		if err := rows.Scan(&fc.Field, &fc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan field count: %w", err)
		}
		counts = append(counts, fc)
	}
	return counts, rows.Err()
}

func (s *PostgresStore) CountFrom(ctx context.Context, from time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(id) FROM bookings WHERE date >= $1`,
		dateArg(from),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}
