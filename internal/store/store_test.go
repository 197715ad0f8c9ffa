// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"inkpress/internal/database"
	"inkpress/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkpress")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testUser inserts a throwaway user and registers cleanup.
func testUser(t *testing.T, db *sql.DB, email string) *models.User {
	t.Helper()
	ctx := context.Background()
	hash := "not-a-real-hash"
	u, err := NewUserStore(db).Create(ctx, &models.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: &hash,
		Role:         models.RoleUser,
	})
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = $1", u.ID) })
	return u
}

// testCategory inserts a throwaway category and registers cleanup.
func testCategory(t *testing.T, db *sql.DB, name, slug string) *models.Category {
	t.Helper()
	c, err := NewCategoryStore(db).Create(context.Background(), &models.Category{
		Name:     name,
		Slug:     slug,
		ColorTag: "#ff0000",
	})
	if err != nil {
		t.Fatalf("create test category: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM categories WHERE id = $1", c.ID) })
	return c
}

// cleanPosts removes test posts by slug. Call in t.Cleanup().
func cleanPosts(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM posts WHERE slug = $1", slug)
	}
}

// cleanSubscriptions removes test subscriptions by email.
func cleanSubscriptions(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM newsletter_subscriptions WHERE LOWER(email) = LOWER($1)", email)
	}
}
