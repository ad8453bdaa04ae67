//go:build integration

package sqlboiler_test

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Container represents a running PostgreSQL testcontainer with the users
// table created.
type Container struct {
	Container *postgres.PostgresContainer
	DB        *sql.DB
	ConnStr   string
}

// SetupPostgres starts a PostgreSQL container with initialized tables.
func SetupPostgres(ctx context.Context) (*Container, error) {
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start PostgreSQL container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, usersSchema); err != nil {
		db.Close()
		pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Container{
		Container: pgContainer,
		DB:        db,
		ConnStr:   connStr,
	}, nil
}

// Terminate stops and removes the PostgreSQL container.
func (c *Container) Terminate(ctx context.Context) error {
	if c.DB != nil {
		c.DB.Close()
	}
	if c.Container != nil {
		return c.Container.Terminate(ctx)
	}
	return nil
}

const usersSchema = `
	CREATE TABLE users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email VARCHAR(255) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL,
		age INTEGER,
		is_active BOOLEAN DEFAULT true,
		birthday DATE,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX idx_users_created_at ON users(created_at DESC, id DESC);
`

// User maps the users table.
type User struct {
	ID        string    `boil:"id"`
	Email     string    `boil:"email"`
	Name      string    `boil:"name"`
	Age       null.Int  `boil:"age"`
	IsActive  bool      `boil:"is_active"`
	Birthday  null.Time `boil:"birthday"`
	CreatedAt time.Time `boil:"created_at"`
}

// SeedUsers creates count users. User i (from 1) is i+19 years old unless
// i is a multiple of 10, in which case the age is unknown. Every third user
// is inactive. Users were created one hour apart, the last one an hour before
// base, and were born on January i of 2000.
func SeedUsers(ctx context.Context, db *sql.DB, count int, base time.Time) error {
	for i := 1; i <= count; i++ {
		age := null.IntFrom(i + 19)
		if i%10 == 0 {
			age = null.Int{}
		}

		_, err := db.ExecContext(ctx,
			`INSERT INTO users (id, email, name, age, is_active, birthday, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.NewString(),
			fmt.Sprintf("user%d@example.com", i),
			fmt.Sprintf("User %d", i),
			age,
			i%3 != 0,
			time.Date(2000, time.January, i, 0, 0, 0, 0, time.UTC),
			base.Add(-time.Duration(count-i+1)*time.Hour),
		)
		if err != nil {
			return fmt.Errorf("failed to seed user %d: %w", i, err)
		}
	}
	return nil
}

// CleanupTables truncates all test tables.
func CleanupTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, "TRUNCATE TABLE users CASCADE")
	return err
}
