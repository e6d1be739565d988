package repository

import (
	"context"
	"errors"
	"time"

	d "github.com/pharmakart/storefront/internal/order/domain"
)

var ErrSessionNotFound = errors.New("cart session not found")

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type SessionRepository interface {
	CreateSession(ctx context.Context, userID string) (*d.CartSession, error)
	GetSession(ctx context.Context, sessionID, userID string) (*d.CartSession, error)
	MarkSessionConverted(ctx context.Context, sessionID, userID string, at time.Time) error
	RunMigrations(*Credentials) error
	Close() error
}
