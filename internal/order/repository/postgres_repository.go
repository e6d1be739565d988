package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	d "github.com/pharmakart/storefront/internal/order/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "sessions_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *Repository) CreateSession(ctx context.Context, userID string) (*d.CartSession, error) {
	session := &d.CartSession{
		ID:        uuid.New().String(),
		UserID:    userID,
		Status:    d.SessionStatusOpen,
		CreatedAt: time.Now(),
	}

	query := `INSERT INTO cart_sessions (id, user_id, status, created_at)
	          VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.Status,
		session.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert cart session: %w", err)
	}
	return session, nil
}

func (r *Repository) GetSession(ctx context.Context, sessionID, userID string) (*d.CartSession, error) {
	query := `SELECT id, user_id, status, created_at, converted_at
	          FROM cart_sessions WHERE id = $1 AND user_id = $2`

	var session d.CartSession
	var convertedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, sessionID, userID).Scan(
		&session.ID,
		&session.UserID,
		&session.Status,
		&session.CreatedAt,
		&convertedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query cart session: %w", err)
	}

	if convertedAt.Valid {
		session.ConvertedAt = &convertedAt.Time
	}
	return &session, nil
}

// MarkSessionConverted is idempotent: converting an already converted
// session overwrites the timestamp and does not error. There is no
// transition back to open.
func (r *Repository) MarkSessionConverted(ctx context.Context, sessionID, userID string, at time.Time) error {
	query := `UPDATE cart_sessions SET status = $3, converted_at = $4
	          WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, sessionID, userID, d.SessionStatusConverted, at)
	if err != nil {
		return fmt.Errorf("update cart session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
