package morph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var knightBands = []string{
	"Sword Band", "Soldier Band", "Fighter Band", "Archer Band",
	"Knight Band", "Paladin Band", "Pegasus Band", "Wyvern Band",
}

func TestUseStatBooster(t *testing.T) {
	t.Parallel()

	m := load(t, "7", "Eliwood", Options{})
	require.NoError(t, m.UseStatBooster("Energy Ring"))
	pow, _ := m.Stats().Get("Pow")
	assert.Equal(t, 7.0, pow)

	var boosterErr *StatBoosterError
	require.ErrorAs(t, m.UseStatBooster("Elixir"), &boosterErr)
	assert.Equal(t, NotFound, boosterErr.Reason)

	sigurd := load(t, "4", "Sigurd", Options{})
	require.ErrorAs(t, sigurd.UseStatBooster("Energy Ring"), &boosterErr)
	assert.Equal(t, NoImplementation, boosterErr.Reason)

	maxed := tester(t)
	require.ErrorAs(t, maxed.UseStatBooster("Energy Ring"), &boosterErr)
	assert.Equal(t, StatIsMaxed, boosterErr.Reason)
	assert.Equal(t, "Pow", boosterErr.Stat)
}

func TestUseGrowthItem(t *testing.T) {
	t.Parallel()

	m := load(t, "7", "Eliwood", Options{})
	require.NoError(t, m.UseGrowthItem("Afa's Drops"))

	after := m.Growths()
	hp, _ := after.Get("HP")
	assert.Equal(t, 85.0, hp)
	con, _ := after.Get("Con")
	assert.Equal(t, 0.0, con)

	var itemErr *GrowthsItemError
	require.ErrorAs(t, m.UseGrowthItem("Afa's Drops"), &itemErr)
	assert.Equal(t, AlreadyConsumed, itemErr.Reason)
	assert.True(t, after.Equal(m.Growths()))

	require.ErrorAs(t, m.UseGrowthItem("Metis's Tome"), &itemErr)
	assert.Equal(t, NotFound, itemErr.Reason)

	// Consumption is per unit.
	other := load(t, "7", "Eliwood", Options{})
	require.NoError(t, other.UseGrowthItem("Afa's Drops"))
}

func TestEquip_RoundTrip(t *testing.T) {
	t.Parallel()

	m := load(t, "9", "Ike", Options{})
	before := m.Growths()

	require.NoError(t, m.Equip("Sword Band"))
	skl, _ := m.Growths().Get("Skl")
	assert.Equal(t, 60.0, skl)
	assert.Equal(t, []string{"Sword Band"}, m.Equipped())

	require.NoError(t, m.Equip("Mage Band"))
	require.NoError(t, m.Unequip("Sword Band"))
	require.NoError(t, m.Unequip("Mage Band"))

	assert.True(t, before.Equal(m.Growths()))
	assert.True(t, m.BaseGrowths().Equal(m.Growths()))
	assert.Empty(t, m.Equipped())

	var equipErr *EquipError
	require.ErrorAs(t, m.Unequip("Mage Band"), &equipErr)
	assert.Equal(t, NotEquipped, equipErr.Reason)
	assert.Equal(t, "band", equipErr.Kind)
}

func TestEquip_ScrollLeavesBaseGrowths(t *testing.T) {
	t.Parallel()

	m := load(t, "5", "Leif", Options{})
	require.NoError(t, m.Equip("Baldo Scroll"))
	hp, _ := m.Growths().Get("HP")
	assert.Equal(t, 100.0, hp)
	base, _ := m.BaseGrowths().Get("HP")
	assert.Equal(t, 70.0, base)
}

func TestEquip_Capacity(t *testing.T) {
	t.Parallel()

	m := load(t, "9", "Gatrie", Options{})
	for _, item := range knightBands[:6] {
		require.NoError(t, m.Equip(item))
	}

	for _, item := range knightBands[6:] {
		var equipErr *EquipError
		require.ErrorAs(t, m.Equip(item), &equipErr)
		assert.Equal(t, NoInventorySpace, equipErr.Reason)
	}
	assert.Equal(t, knightBands[:6], m.Equipped())
}

func TestEquip_KnightWard(t *testing.T) {
	t.Parallel()

	ike := load(t, "9", "Ike", Options{})
	var equipErr *EquipError
	require.ErrorAs(t, ike.Equip("Knight Ward"), &equipErr)
	assert.Equal(t, NotAKnight, equipErr.Reason)
	assert.Equal(t, "ward", equipErr.Kind)

	gatrie := load(t, "9", "Gatrie", Options{})
	require.NoError(t, gatrie.Equip("Knight Ward"))
	spd, _ := gatrie.Growths().Get("Spd")
	assert.Equal(t, 65.0, spd)
	assert.ErrorIs(t, gatrie.Equip("Knight Ward"), ErrAlreadyEquipped)
}

func TestDecline(t *testing.T) {
	t.Parallel()

	m := load(t, "6", "Hugh", Options{})
	for range 3 {
		require.NoError(t, m.Decline())
	}
	st := m.Stats()
	hp, _ := st.Get("HP")
	assert.Equal(t, 23.0, hp)
	con, _ := st.Get("Con")
	assert.Equal(t, 7.0, con)
	assert.Equal(t, "3", m.Metadata()[MetaDeclines])

	assert.ErrorIs(t, m.Decline(), ErrDeclineLimit)

	fresh := load(t, "6", "Hugh", Options{})
	require.NoError(t, fresh.LevelUp(16))
	var initErr *InitError
	require.ErrorAs(t, fresh.Decline(), &initErr)
	assert.Equal(t, "declines", initErr.Param)

	assert.ErrorIs(t, load(t, "6", "Roy", Options{}).Decline(), ErrDeclineUnsupported)
}
