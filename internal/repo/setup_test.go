package repo_test

import (
	"database/sql"
	"os"
	"testing"

	"github.com/petwell/petwell/internal/config"
	"github.com/petwell/petwell/internal/db"
)

func openTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres test")
	}
	conn, err := db.Open(config.DatabaseConfig{
		Host:     host,
		Port:     5432,
		User:     "petwell",
		Password: "petwell_pass",
		DBName:   "petwell_test",
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	for _, table := range []string{
		"personal_documents", "shared_documents", "weekly_plans",
		"chat_threads", "embedding_cache", "pet_profiles",
		"pet_metrics", "service_locations",
	} {
		if _, err := conn.Exec("TRUNCATE TABLE " + table); err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}
	return conn, func() {
		_ = conn.Close()
	}
}

// testVector builds an embedding of the column's dimension with most weight
// on one axis, so cosine ordering in search tests is predictable.
func testVector(axis int) []float32 {
	vec := make([]float32, 768)
	for i := range vec {
		vec[i] = 0.01
	}
	vec[axis%768] = 1
	return vec
}
