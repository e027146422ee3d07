package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gchang12/aenir/internal/morph"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.in), tt.in)
	}
}

func TestParseUnitSpec(t *testing.T) {
	t.Parallel()

	spec, err := parseUnitSpec("Guy@lyn_mode=false,hard_mode=true")
	require.NoError(t, err)
	assert.Equal(t, "Guy", spec.Name)
	require.NotNil(t, spec.Opts.LynMode)
	assert.False(t, *spec.Opts.LynMode)
	require.NotNil(t, spec.Opts.HardMode)
	assert.True(t, *spec.Opts.HardMode)

	spec, err = parseUnitSpec("Lakche@father=Lex")
	require.NoError(t, err)
	assert.Equal(t, morph.Options{Father: "Lex"}, spec.Opts)

	for _, bad := range []string{"", "@father=Lex", "Guy@hard_mode", "Guy@hard_mode=maybe", "Guy@mood=sad"} {
		_, err := parseUnitSpec(bad)
		assert.ErrorIs(t, err, ErrBadStep, bad)
	}
}

func TestParseSteps(t *testing.T) {
	t.Parallel()

	steps, err := parseSteps([]string{"level:10", "promote:Paladin", "cap", "equip:Sword Band"})
	require.NoError(t, err)
	assert.Equal(t, []step{
		{Op: "level", Arg: "10"},
		{Op: "promote", Arg: "Paladin"},
		{Op: "cap"},
		{Op: "equip", Arg: "Sword Band"},
	}, steps)

	for _, bad := range []string{"level", "level:ten", "equip", "fly:high"} {
		_, err := parseSteps([]string{bad})
		assert.ErrorIs(t, err, ErrBadStep, bad)
	}
}

func TestExplainInit(t *testing.T) {
	t.Parallel()

	yes, no := true, false
	err := explainInit(&morph.InitError{Param: "lyn_mode", InitParams: []morph.Options{{LynMode: &yes}, {LynMode: &no}}})
	assert.ErrorIs(t, err, morph.ErrInitParam)
	assert.Contains(t, err.Error(), "@lyn_mode=true | @lyn_mode=false")
}

func writeConfig(t *testing.T) string {
	t.Helper()
	testdata, err := filepath.Abs(filepath.Join("..", "..", "testdata"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "aenir.yaml")
	cfg := "log_level: error\n" +
		"fixture: " + filepath.Join(testdata, "stats.yaml") + "\n" +
		"alias_dir: " + filepath.Join(testdata, "aliases") + "\n" +
		"database:\n  driver: memory\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{"--config", writeConfig(t)}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMorphCommand(t *testing.T) {
	out, err := run(t, "-g", "8", "morph", "Franz", "level:10", "promote:Paladin", "level:5")
	require.NoError(t, err)
	assert.Contains(t, out, "Franz (Paladin, Lv 5)")
	assert.Contains(t, out, "[was Cavalier Lv 10]")

	_, err = run(t, "-g", "7", "morph", "Lyn")
	assert.ErrorIs(t, err, morph.ErrInitParam)

	_, err = run(t, "-g", "7", "morph", "Marcus", "promote")
	assert.ErrorIs(t, err, morph.ErrNoPromotions)
}

func TestCompareCommand(t *testing.T) {
	out, err := run(t, "-g", "7", "compare",
		"Guy@lyn_mode=false,hard_mode=true", "Raven@hard_mode=false",
		"--self", "level:10", "--other", "level:10")
	require.NoError(t, err)
	assert.Contains(t, out, "Guy vs. Raven")
	assert.Contains(t, out, "Total")
}

func TestImportCommand_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "aenir.db")
	t.Setenv("AENIR_DB_DRIVER", "sqlite")
	t.Setenv("AENIR_DB_PATH", dbPath)

	_, err := run(t, "import")
	require.NoError(t, err)

	out, err := run(t, "-g", "8", "morph", "Ross", "level:10", "promote:Pirate")
	require.NoError(t, err)
	assert.Contains(t, out, "Ross (Pirate, Lv 1)")
}

func TestGamesCommand(t *testing.T) {
	out, err := run(t, "games")
	require.NoError(t, err)
	assert.Contains(t, out, "blazing-sword")
}
