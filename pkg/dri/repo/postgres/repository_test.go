package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-dri/pkg/dri"
	"github.com/tendant/simple-dri/pkg/dri/repo/repotest"
)

// TestPostgresRepository runs against a live database when TEST_DATABASE_URL
// is set. Each subtest gets its own schema.
func TestPostgresRepository(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	n := 0
	repotest.Run(t, func(t *testing.T) dri.Repository {
		n++
		schema := fmt.Sprintf("dri_test_%d_%d", time.Now().UnixNano(), n)

		admin, err := pgxpool.New(ctx, url)
		require.NoError(t, err)
		t.Cleanup(admin.Close)
		_, err = admin.Exec(ctx, "CREATE SCHEMA "+pgx.Identifier{schema}.Sanitize())
		require.NoError(t, err)
		t.Cleanup(func() {
			_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+pgx.Identifier{schema}.Sanitize()+" CASCADE")
		})

		cfg, err := pgxpool.ParseConfig(url)
		require.NoError(t, err)
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
			return err
		}
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		require.NoError(t, err)
		t.Cleanup(pool.Close)

		require.NoError(t, Migrate(ctx, pool))
		return NewWithPool(pool)
	})
}

func TestMigrate_RunsEmbeddedMigrations(t *testing.T) {
	original := gooseUpContext
	t.Cleanup(func() { gooseUpContext = original })

	var dir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, d string, opts ...goose.OptionsFunc) error {
		dir = d
		return nil
	}

	// pgxpool connects lazily, so no server is needed here
	pool, err := pgxpool.New(context.Background(), "postgres://dri@127.0.0.1:1/dri")
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, Migrate(context.Background(), pool))
	assert.Equal(t, "migrations", dir)

	entries, err := migrations.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "00001_create_records.sql", entries[0].Name())
}

func TestMigrate_WrapsError(t *testing.T) {
	original := gooseUpContext
	t.Cleanup(func() { gooseUpContext = original })

	gooseUpContext = func(ctx context.Context, db *sql.DB, d string, opts ...goose.OptionsFunc) error {
		return fmt.Errorf("boom")
	}

	pool, err := pgxpool.New(context.Background(), "postgres://dri@127.0.0.1:1/dri")
	require.NoError(t, err)
	defer pool.Close()

	err = Migrate(context.Background(), pool)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to run migrations: boom")
}

func TestWhereClause(t *testing.T) {
	where, args := whereClause(dri.RecordFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	parent := "p1"
	where, args = whereClause(dri.RecordFilter{Type: "item", ParentID: &parent, ModifiedOnly: true})
	assert.Equal(t, " WHERE type = $1 AND parent_id = $2 AND date_modified IS NOT NULL", where)
	assert.Equal(t, []interface{}{"item", "p1"}, args)

	root := ""
	where, args = whereClause(dri.RecordFilter{Type: "item", ParentID: &root})
	assert.Equal(t, " WHERE type = $1 AND parent_id IS NULL", where)
	assert.Equal(t, []interface{}{"item"}, args)
}

func TestQueryRecords_InvalidField(t *testing.T) {
	repo := &Repository{}
	_, err := repo.QueryRecords(context.Background(), "bogus", "x")
	assert.ErrorIs(t, err, dri.ErrInvalidQueryField)
}

func TestNullable(t *testing.T) {
	assert.Nil(t, nullable(""))
	require.NotNil(t, nullable("x"))
	assert.Equal(t, "x", *nullable("x"))
}
