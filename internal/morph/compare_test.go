package morph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowByLabel(t *testing.T, c *Comparison, label string) ComparisonRow {
	t.Helper()
	for _, r := range c.Rows {
		if r.Label == label {
			return r
		}
	}
	t.Fatalf("no row %q", label)
	return ComparisonRow{}
}

func labels(c *Comparison) []string {
	out := make([]string, 0, len(c.Rows))
	for _, r := range c.Rows {
		out = append(out, r.Label)
	}
	return out
}

func TestCompare(t *testing.T) {
	t.Parallel()

	rs, r := fixture(t, "7")
	ctx := context.Background()
	guy, err := New(ctx, rs, r, "Guy", Options{LynMode: ptr(false), HardMode: ptr(true)})
	require.NoError(t, err)
	raven, err := New(ctx, rs, r, "Raven", Options{HardMode: ptr(false)})
	require.NoError(t, err)

	c, err := guy.Compare(raven)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Name", "Class", "Level",
		"HP", "Pow", "Skl", "Spd", "Lck", "Def", "Res", "Con", "Mov",
		"Campaign", "Hard Mode",
		"Total",
	}, labels(c))

	assert.Equal(t, ComparisonRow{Label: "Level", Self: "3", Delta: "2", Other: "5"}, rowByLabel(t, c, "Level"))
	assert.Equal(t, ComparisonRow{Label: "Skl", Self: "13", Delta: "-2", Other: "11"}, rowByLabel(t, c, "Skl"))
	assert.Equal(t, ComparisonRow{Label: "Con", Self: "5", Delta: "-", Other: "8"}, rowByLabel(t, c, "Con"))
	assert.Equal(t, ComparisonRow{Label: "Campaign", Self: "Main", Other: Placeholder}, rowByLabel(t, c, "Campaign"))
	assert.Equal(t, ComparisonRow{Label: "Hard Mode", Self: "true", Other: "false"}, rowByLabel(t, c, "Hard Mode"))

	assert.Equal(t, -5.0, c.Total)
	assert.Equal(t, "-5", rowByLabel(t, c, "Total").Delta)

	out := c.Render()
	assert.Contains(t, out, "Guy vs. Raven")
	assert.Contains(t, out, "Hard Mode")
}

func TestCompare_HistoryAligned(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rs, r := fixture(t, "8")
	ross, err := New(ctx, rs, r, "Ross", Options{})
	require.NoError(t, err)
	require.NoError(t, ross.LevelUp(10))
	ross.SetPromoTarget("Fighter")
	require.NoError(t, ross.Promote(ctx))
	require.NoError(t, ross.LevelUp(10))
	ross.SetPromoTarget("Hero")
	require.NoError(t, ross.Promote(ctx))

	franz, err := New(ctx, rs, r, "Franz", Options{})
	require.NoError(t, err)
	require.NoError(t, franz.LevelUp(10))
	franz.SetPromoTarget("Paladin")
	require.NoError(t, franz.Promote(ctx))

	c, err := franz.Compare(ross)
	require.NoError(t, err)
	assert.Equal(t, ComparisonRow{Label: "Promotion 1", Self: "Cavalier 10", Other: "Journeyman 10"}, rowByLabel(t, c, "Promotion 1"))
	assert.Equal(t, ComparisonRow{Label: "Promotion 2", Self: Placeholder, Other: "Fighter 10"}, rowByLabel(t, c, "Promotion 2"))
	assert.Equal(t, "Promotion 2", c.Rows[2].Label)
	assert.Equal(t, "Class", c.Rows[3].Label)
}

func TestCompare_DifferentGames(t *testing.T) {
	t.Parallel()

	eliwood := load(t, "7", "Eliwood", Options{})
	eirika := load(t, "8", "Eirika", Options{})
	_, err := eliwood.Compare(eirika)
	assert.ErrorIs(t, err, ErrRulesetMismatch)
}
