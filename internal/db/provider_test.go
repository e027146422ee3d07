package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gchang12/aenir/internal/data"
)

func loadFixture(t *testing.T) *MemoryProvider {
	t.Helper()
	m, err := LoadMemory(os.DirFS(filepath.Join("..", "..", "testdata")), "stats.yaml")
	require.NoError(t, err)
	return m
}

func TestRow_Accessors(t *testing.T) {
	t.Parallel()

	row := Row{"name": "Lyn", "lv": int64(4), "hp": 18.0, "pow": int32(5), "skl": "10", "res": nil, "raw": []byte("2.5")}

	name, ok := row.String("name")
	assert.True(t, ok)
	assert.Equal(t, "Lyn", name)

	lv, ok := row.String("lv")
	assert.True(t, ok)
	assert.Equal(t, "4", lv)

	_, ok = row.String("res")
	assert.False(t, ok)

	for col, want := range map[string]float64{"lv": 4, "hp": 18, "pow": 5, "skl": 10, "raw": 2.5} {
		got, ok := row.Float(col)
		assert.True(t, ok, col)
		assert.Equal(t, want, got, col)
	}

	got := row.Stats([]string{"HP", "Pow", "Res", "Mov"})
	assert.Equal(t, map[string]float64{"HP": 18, "Pow": 5}, got)
}

func TestMemoryProvider_Query(t *testing.T) {
	t.Parallel()

	m := loadFixture(t)
	ctx := context.Background()

	rows, err := m.Query(ctx, data.TableBaseStats, Filters{"game": "7", "name": "Lyn"})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	mode, _ := rows[0].String("mode")
	assert.Equal(t, "lyn", mode)

	rows, err = m.Query(ctx, data.TablePromotionGains, Filters{"game": "8", "class": "Cavalier"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	first, _ := rows[0].String("promotion")
	second, _ := rows[1].String("promotion")
	assert.Equal(t, []string{"Paladin", "Great Knight"}, []string{first, second})

	rows, err = m.Query(ctx, data.TableBaseStats, Filters{"game": "7", "lv": "4"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = m.Query(ctx, "accounts", nil)
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestLoadMemory_RejectsUnknownTable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("accounts:\n  - {login: x}\n"), 0o644))

	_, err := LoadMemory(os.DirFS(dir), "bad.yaml")
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestBuildSelect(t *testing.T) {
	t.Parallel()

	q, args := buildSelect(data.TableGrowthRates, Filters{"name": "Lyn", "game": "7"}, dollar)
	assert.Equal(t, "SELECT * FROM characters__growth_rates WHERE CAST(game AS TEXT) = $1 AND CAST(name AS TEXT) = $2 ORDER BY ord", q)
	assert.Equal(t, []any{"7", "Lyn"}, args)

	q, args = buildSelect(data.TableMaximumStats, nil, questionMark)
	assert.Equal(t, "SELECT * FROM classes__maximum_stats ORDER BY ord", q)
	assert.Empty(t, args)
}

func TestBuildInsert(t *testing.T) {
	t.Parallel()

	q, args, err := buildInsert(data.TableMaximumStats, Row{"game": "7", "class": "Lord", "hp": 60}, 3, questionMark)
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO classes__maximum_stats (class, game, hp, ord) VALUES (?, ?, ?, ?)", q)
	assert.Equal(t, []any{"Lord", "7", 60, 3}, args)

	_, _, err = buildInsert(data.TableMaximumStats, Row{"hp; DROP TABLE x": 1}, 0, questionMark)
	assert.ErrorIs(t, err, ErrInvalidColumn)
}

func TestCheckQuery(t *testing.T) {
	t.Parallel()

	assert.NoError(t, checkQuery(data.TableBaseStats, Filters{"game": "7"}))
	assert.ErrorIs(t, checkQuery("sqlite_master", nil), ErrUnknownTable)
	assert.ErrorIs(t, checkQuery(data.TableBaseStats, Filters{"Name": "x"}), ErrInvalidColumn)
}

func TestSQLiteProvider_MigrateImportQuery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "aenir.db")

	require.NoError(t, RunMigrations(ctx, DriverSQLite, path))

	p, err := OpenSQLite(path, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	require.NoError(t, Import(ctx, p, loadFixture(t)))

	rows, err := p.Query(ctx, data.TablePromotionGains, Filters{"game": "8", "class": "Journeyman"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	first, _ := rows[0].String("promotion")
	assert.Equal(t, "Fighter", first)

	hp, ok := rows[0].Float("hp")
	assert.True(t, ok)
	assert.Equal(t, 8.0, hp)

	// Columns a game does not use come back NULL and drop out of Stats.
	rows, err = p.Query(ctx, data.TableBaseStats, Filters{"game": "7", "name": "Eliwood"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	st := rows[0].Stats([]string{"HP", "Mag", "Lea"})
	assert.Equal(t, map[string]float64{"HP": 18}, st)

	// Integer columns still match text filters.
	rows, err = p.Query(ctx, data.TableBaseStats, Filters{"game": "6", "lv": "11"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	route, _ := rows[0].String("route")
	assert.Equal(t, "Elphin", route)

	// Migrations are idempotent.
	require.NoError(t, Migrate(ctx, p.DB(), "sqlite3"))
}

func TestPostgresProvider(t *testing.T) {
	dsn := os.Getenv("AENIR_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("AENIR_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	require.NoError(t, RunMigrations(ctx, DriverPostgres, dsn))

	d, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(d.Close)

	_, err = d.Pool().Exec(ctx, "DELETE FROM classes__promotion_gains WHERE game = '8'")
	require.NoError(t, err)

	src := loadFixture(t)
	require.NoError(t, d.InsertRows(ctx, data.TablePromotionGains, src.Rows(data.TablePromotionGains)))

	rows, err := d.Query(ctx, data.TablePromotionGains, Filters{"game": "8", "class": "Cavalier"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	second, _ := rows[1].String("promotion")
	assert.Equal(t, "Great Knight", second)
}
