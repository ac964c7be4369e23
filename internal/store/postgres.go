package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shalabh-srivastava/legalsuite/internal/models"
)

// ErrConflict is returned when a unique constraint rejects an insert.
var ErrConflict = errors.New("already exists")

// PostgresStore handles law firms and staff users in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the law_firms and users tables if they don't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS law_firms (
			id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name          VARCHAR(255) NOT NULL,
			address       TEXT         NOT NULL DEFAULT '',
			contact_email VARCHAR(255) NOT NULL DEFAULT '',
			contact_phone VARCHAR(50)  NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS users (
			id                   UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			law_firm_id          UUID         NOT NULL REFERENCES law_firms(id),
			name                 VARCHAR(255) NOT NULL,
			email                VARCHAR(255) UNIQUE NOT NULL,
			role                 VARCHAR(50)  NOT NULL DEFAULT 'associate',
			bar_admission_number VARCHAR(100) NOT NULL DEFAULT '',
			specialization       VARCHAR(255) NOT NULL DEFAULT '',
			password             VARCHAR(255) NOT NULL DEFAULT '',
			created_at           TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS users_law_firm_id_idx ON users (law_firm_id);
	`)
	return err
}

// Ping checks that the pool can reach the server.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) CreateFirm(ctx context.Context, f models.FirmCreate) (*models.Firm, error) {
	var out models.Firm
	err := s.pool.QueryRow(ctx,
		`INSERT INTO law_firms (name, address, contact_email, contact_phone)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id::text, name, address, contact_email, contact_phone, created_at`,
		f.Name, f.Address, f.ContactEmail, f.ContactPhone,
	).Scan(&out.ID, &out.Name, &out.Address, &out.ContactEmail, &out.ContactPhone, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create firm: %w", err)
	}
	return &out, nil
}

func (s *PostgresStore) ListFirms(ctx context.Context) ([]models.Firm, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, name, address, contact_email, contact_phone, created_at
		 FROM law_firms ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list firms: %w", err)
	}
	firms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Firm, error) {
		var f models.Firm
		err := row.Scan(&f.ID, &f.Name, &f.Address, &f.ContactEmail, &f.ContactPhone, &f.CreatedAt)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("list firms: %w", err)
	}
	return firms, nil
}

const userColumns = `id::text, law_firm_id::text, name, email, role, bar_admission_number, specialization, created_at`

func scanUser(row pgx.Row, withPassword bool) (*models.User, error) {
	var u models.User
	dest := []any{&u.ID, &u.FirmID, &u.Name, &u.Email, &u.Role, &u.BarAdmissionNumber, &u.Specialization, &u.CreatedAt}
	if withPassword {
		dest = append(dest, &u.Password)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a staff user. hashedPassword may be empty for accounts
// that cannot log in.
func (s *PostgresStore) CreateUser(ctx context.Context, u models.UserCreate, hashedPassword string) (*models.User, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO users (law_firm_id, name, email, role, bar_admission_number, specialization, password)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+userColumns,
		u.FirmID, u.Name, u.Email, u.Role, u.BarAdmissionNumber, u.Specialization, hashedPassword,
	)
	user, err := scanUser(row, false)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) ListUsersByFirm(ctx context.Context, firmID string) ([]models.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE law_firm_id = $1 ORDER BY created_at DESC`, firmID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.User, error) {
		u, err := scanUser(row, false)
		if err != nil {
			return models.User{}, err
		}
		return *u, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetUserByEmail returns the user including the password hash.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+`, password FROM users WHERE email = $1`, email)
	u, err := scanUser(row, true)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row, false)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}
