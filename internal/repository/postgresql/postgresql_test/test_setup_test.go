package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-backend-go/migrations"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup wraps a migrated test database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL, applies migrations and
// empties every table. The test is skipped when the variable is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	setup := &TestDatabaseSetup{DB: db}
	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx, migrations.FS))
	require.NoError(t, setup.TruncateAllTables(ctx))
	return setup
}

// TruncateAllTables removes all rows from the schema's tables.
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"notifications",
		"ledger_entries",
		"payroll_periods",
		"attendance_links",
		"attendance_sessions",
		"shift_assignments",
		"shifts",
		"employees",
		"branches",
		"stores",
	}

	for _, table := range tables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// SeedEmployee inserts a store and an employee on it and returns their ids.
func (s *TestDatabaseSetup) SeedEmployee(t *testing.T, name string) (storeID, employeeID string) {
	t.Helper()
	ctx := context.Background()

	err := s.DB.QueryRow(ctx, `
		INSERT INTO stores (name, timezone, shift_start_time, notification_numbers)
		VALUES ($1, 'Asia/Jakarta', '09:00', ARRAY['081111111111'])
		RETURNING id
	`, name+" store").Scan(&storeID)
	require.NoError(t, err)

	err = s.DB.QueryRow(ctx, `
		INSERT INTO employees (store_id, full_name, monthly_salary)
		VALUES ($1, $2, 3000)
		RETURNING id
	`, storeID, name).Scan(&employeeID)
	require.NoError(t, err)

	return storeID, employeeID
}
