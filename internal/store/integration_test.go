//go:build integration

package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"librarycard/internal/card"
	"librarycard/internal/store"
)

// recordStoreSuite runs the RecordStore contract against a durable backend.
type recordStoreSuite struct {
	suite.Suite
	store store.RecordStore
	reset func(ctx context.Context) error
}

func (s *recordStoreSuite) SetupTest() {
	s.Require().NoError(s.reset(context.Background()))
}

func sample(name, enrollment string) card.Request {
	return card.Request{
		FullName:         name,
		EnrollmentNumber: enrollment,
		Department:       "Physics",
		Course:           "BSc in Physics",
		Semester:         "3rd",
		ValidityYears:    4,
		PhotoURL:         "https://example.org/p.jpg",
	}
}

func (s *recordStoreSuite) TestCreateGetOverwrite() {
	ctx := context.Background()

	first, err := s.store.Create(ctx, sample("Asha Lin", "1446RGUST23"))
	s.Require().NoError(err)
	s.Positive(first.ID)
	s.WithinDuration(time.Now(), first.CreatedAt, time.Minute)

	found, err := s.store.GetByEnrollment(ctx, "1446RGUST23")
	s.Require().NoError(err)
	s.Equal(first.ID, found.ID)
	s.Equal(first.Request, found.Request)

	second, err := s.store.Create(ctx, sample("Asha Lin-Rao", "1446RGUST23"))
	s.Require().NoError(err)
	s.Greater(second.ID, first.ID)

	found, err = s.store.GetByEnrollment(ctx, "1446RGUST23")
	s.Require().NoError(err)
	s.Equal("Asha Lin-Rao", found.FullName)
	s.Equal(second.ID, found.ID)

	_, err = s.store.Create(ctx, sample("Ben Tao", "2001RGUST24"))
	s.Require().NoError(err)
	all, err := s.store.ListAll(ctx)
	s.Require().NoError(err)
	s.Len(all, 2)

	_, err = s.store.GetByEnrollment(ctx, "missing")
	s.ErrorIs(err, store.ErrNotFound)
	s.True(s.store.Healthy(ctx))
}

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("cards"),
		tcpostgres.WithUsername("cards"),
		tcpostgres.WithPassword("cards"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	pg := store.NewPostgres(db)
	if err := pg.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	suite.Run(t, &recordStoreSuite{
		store: pg,
		reset: func(ctx context.Context) error {
			_, err := db.ExecContext(ctx, `TRUNCATE student_cards RESTART IDENTITY`)
			return err
		},
	})
}

func TestRedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("redis endpoint: %v", err)
	}
	client := store.NewRedisClient(endpoint)
	t.Cleanup(func() { _ = client.Close() })

	suite.Run(t, &recordStoreSuite{
		store: store.NewRedis(client, "test"),
		reset: func(ctx context.Context) error { return client.FlushAll(ctx).Err() },
	})
}
