package testutil

import (
	"testing"

	"custody-go/internal/custody"
	"custody-go/internal/database"
)

// NewTestDatabase creates an in-memory SQLite database with the schema
// applied. The database is closed automatically when the test completes.
func NewTestDatabase(t *testing.T) custody.Database {
	t.Helper()

	sqlDB, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if _, err := sqlDB.Exec(database.Schema); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	db := database.NewSQLiteDatabaseFromDB(sqlDB)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
