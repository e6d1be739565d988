package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	d "github.com/pharmakart/storefront/internal/order/domain"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "./migrations",
	}

	repo, err := NewRepository(creds)
	require.NoError(t, err)

	err = repo.RunMigrations(creds)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func TestCreateAndGetSession(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	created, err := repo.CreateSession(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, d.SessionStatusOpen, created.Status)

	got, err := repo.GetSession(ctx, created.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, d.SessionStatusOpen, got.Status)
	assert.Nil(t, got.ConvertedAt)
}

func TestGetSession_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetSession(context.Background(), "11111111-1111-1111-1111-111111111111", "user-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetSession_WrongUser(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	created, err := repo.CreateSession(ctx, "user-1")
	require.NoError(t, err)

	_, err = repo.GetSession(ctx, created.ID, "someone-else")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMarkSessionConverted(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	created, err := repo.CreateSession(ctx, "user-1")
	require.NoError(t, err)

	at := time.Now().UTC().Truncate(time.Millisecond)
	err = repo.MarkSessionConverted(ctx, created.ID, "user-1", at)
	require.NoError(t, err)

	got, err := repo.GetSession(ctx, created.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, d.SessionStatusConverted, got.Status)
	require.NotNil(t, got.ConvertedAt)
	assert.WithinDuration(t, at, *got.ConvertedAt, time.Millisecond)
}

func TestMarkSessionConverted_Idempotent(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	created, err := repo.CreateSession(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, repo.MarkSessionConverted(ctx, created.ID, "user-1", time.Now()))
	// converting twice must not error
	require.NoError(t, repo.MarkSessionConverted(ctx, created.ID, "user-1", time.Now()))

	got, err := repo.GetSession(ctx, created.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, d.SessionStatusConverted, got.Status)
}

func TestMarkSessionConverted_ScopedToUser(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	created, err := repo.CreateSession(ctx, "user-1")
	require.NoError(t, err)

	err = repo.MarkSessionConverted(ctx, created.ID, "someone-else", time.Now())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	got, err := repo.GetSession(ctx, created.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, d.SessionStatusOpen, got.Status)
}
