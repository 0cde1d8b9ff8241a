package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/sales-crm/internal/config"
)

func TestPendingMigrationsOrdersSQLFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o700))

	files, err := PendingMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_a.sql", "002_b.sql"}, files)
}

func TestBundledMigrationsExist(t *testing.T) {
	files, err := PendingMigrations(filepath.Join("..", "..", DefaultMigrationsDir))
	require.NoError(t, err)
	assert.NotEmpty(t, files)
}

func TestRunMigrationsWithoutPool(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil, "does-not-matter", zap.NewNop()))
}

func TestDisabledStores(t *testing.T) {
	var pg *Postgres
	assert.ErrorIs(t, pg.Ping(context.Background()), ErrNotConfigured)
	assert.False(t, (&Postgres{}).Enabled())

	r := NewRedis(context.Background(), config.RedisConfig{}, zap.NewNop())
	assert.ErrorIs(t, r.Ping(context.Background()), ErrNotConfigured)
	r.Close()
}
