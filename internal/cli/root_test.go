package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness/internal/adapter/memory"
	"wellness/internal/adapter/sqlite"
	"wellness/internal/config"
	"wellness/internal/domain"
	"wellness/internal/logger"
	"wellness/internal/testutil"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "wellness", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"serve", "migrate", "seed"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestServeFlags(t *testing.T) {
	cmd := NewRootCommand()
	serve, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	assert.NotNil(t, serve.Flags().Lookup("addr"))
	assert.NotNil(t, serve.Flags().Lookup("seed"))

	seedCmd, _, err := cmd.Find([]string{"seed"})
	require.NoError(t, err)
	f := seedCmd.Flags().Lookup("file")
	require.NotNil(t, f)
	assert.Equal(t, "f", f.Shorthand)
}

func TestOpenStore(t *testing.T) {
	s, err := OpenStore(config.Config{Store: config.StoreMemory})
	require.NoError(t, err)
	assert.IsType(t, &memory.DB{}, s)

	s, err = OpenStore(config.Config{Store: config.StoreSQLite, SQLitePath: filepath.Join(t.TempDir(), "w.db")})
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Store{}, s)
	require.NoError(t, s.Close())

	_, err = OpenStore(config.Config{Store: "mongo"})
	assert.Error(t, err)
}

func TestNewServicesReconcilesRecordedActivity(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock(time.Date(2026, 4, 5, 12, 0, 0, 0, time.UTC))
	svc := NewServices(memory.New(), config.Config{ReconcileMaxRetries: 3, ReconcileWorkers: 2}, clock, logger.Nop())

	u, err := svc.Users.Create(ctx, "Ana", "ana@example.com")
	require.NoError(t, err)
	c, err := svc.Challenges.Create(ctx, domain.Challenge{
		Name:        "April steps",
		Type:        domain.MetricSteps,
		GoalType:    domain.GoalCumulative,
		TargetValue: 1000,
		StartDate:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 4, 30, 23, 59, 59, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = svc.Enrollments.Join(ctx, u.ID, c.ID)
	require.NoError(t, err)

	_, err = svc.Activities.RecordActivity(ctx, u.ID, time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), domain.ActivityFields{Steps: domain.Inc(400)})
	require.NoError(t, err)

	views, err := svc.Enrollments.ListWithDetails(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 40, views[0].Progress)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateCommand_SQLite(t *testing.T) {
	t.Setenv("STORE", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "wellness.db"))

	out, err := execute(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, `store "sqlite" migrated`)
}

func TestMigrateCommand_Memory(t *testing.T) {
	t.Setenv("STORE", "memory")

	out, err := execute(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "has no schema")
}

func TestSeedCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STORE", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "wellness.db"))
	t.Setenv("LOG_MODE", "prod")

	file := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
users:
  - name: Ana
    email: ana@example.com
challenges:
  - name: April steps
    type: steps
    goalType: cumulative
    startDate: 2026-04-01
    endDate: 2026-04-30
    targetValue: 100000
`), 0o600))

	out, err := execute(t, "seed", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "users: 1 created, 0 skipped; challenges: 1 created, 0 skipped")

	out, err = execute(t, "seed", "-f", file)
	require.NoError(t, err)
	assert.Contains(t, out, "users: 0 created, 1 skipped; challenges: 0 created, 1 skipped")
}

func TestSeedCommand_RequiresFile(t *testing.T) {
	t.Setenv("STORE", "memory")
	t.Setenv("SEED_FILE", "")

	_, err := execute(t, "seed")
	assert.ErrorContains(t, err, "SEED_FILE")
}
