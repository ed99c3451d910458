package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"wellness/internal/adapter/storetest"
)

// Set TEST_POSTGRES_DSN to a disposable database to run these tests.
func openTestDB(t *testing.T) storetest.Store {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	db, err := Open(dsn)
	require.NoError(t, err)
	_, err = db.sql.ExecContext(context.Background(), "TRUNCATE enrollments, daily_activities, challenges, users")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, openTestDB)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t).(*DB)
	require.NoError(t, db.Migrate(context.Background()))
}
