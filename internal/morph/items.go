package morph

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/gchang12/aenir/internal/data"
	"github.com/gchang12/aenir/internal/stats"
)

// UseStatBooster applies a one-use stat bonus. Boosters do not cap;
// call CapStats for that.
func (m *Morph) UseStatBooster(item string) error {
	if len(m.rs.StatBoosters) == 0 {
		return &StatBoosterError{Reason: NoImplementation, Item: item}
	}
	b, ok := m.rs.StatBoosters[item]
	if !ok {
		return &StatBoosterError{Reason: NotFound, Item: item}
	}
	cur, _ := m.current.Get(b.Stat)
	limit, _ := m.maxStats.Get(b.Stat)
	if cur >= limit {
		return &StatBoosterError{Reason: StatIsMaxed, Item: item, Stat: b.Stat}
	}
	m.current.Add(stats.Reindex(m.rs.Schema(), map[string]float64{b.Stat: b.Amount}))
	return nil
}

// UseGrowthItem permanently raises the base growth rates. Each item
// works once per unit.
func (m *Morph) UseGrowthItem(item string) error {
	delta, ok := m.rs.GrowthItems[item]
	if !ok {
		return &GrowthsItemError{Reason: NotFound, Item: item}
	}
	if _, used := m.consumed[item]; used {
		return &GrowthsItemError{Reason: AlreadyConsumed, Item: item}
	}
	m.baseGrowths = m.baseGrowths.Clone().Add(stats.Reindex(m.rs.Schema(), delta))
	m.consumed[item] = struct{}{}
	m.growths = m.effectiveGrowths(m.equipped)
	return nil
}

// Equip holds an item that adds growth while equipped.
func (m *Morph) Equip(item string) error {
	e, ok := m.rs.Equipment[item]
	if !ok {
		return &EquipError{Reason: NotFound, Item: item}
	}
	if slices.Contains(m.equipped, item) {
		return &EquipError{Reason: AlreadyEquipped, Kind: e.Kind, Item: item}
	}
	if e.Requires != "" && !m.rs.HasCapability(m.class, e.Requires) {
		return &EquipError{Reason: NotAKnight, Kind: e.Kind, Item: item}
	}
	if len(m.equipped) >= m.rs.InventorySize(m.class) {
		return &EquipError{Reason: NoInventorySpace, Kind: e.Kind, Item: item}
	}
	equipped := append(slices.Clone(m.equipped), item)
	m.growths = m.effectiveGrowths(equipped)
	m.equipped = equipped
	return nil
}

// Unequip drops an equipped item.
func (m *Morph) Unequip(item string) error {
	i := slices.Index(m.equipped, item)
	if i < 0 {
		return &EquipError{Reason: NotEquipped, Kind: m.rs.Equipment[item].Kind, Item: item}
	}
	equipped := slices.Delete(slices.Clone(m.equipped), i, i+1)
	m.growths = m.effectiveGrowths(equipped)
	m.equipped = equipped
	return nil
}

// effectiveGrowths is base growths plus every equipped item, summed from
// scratch.
func (m *Morph) effectiveGrowths(equipped []string) *stats.Vector {
	g := m.baseGrowths.Clone()
	for _, item := range equipped {
		g.Add(stats.Reindex(m.rs.Schema(), m.rs.Equipment[item].Growths))
	}
	return g
}

// Decline refuses the unit once more before recruiting it, applying the
// unit's decline penalty. It is only valid on a fresh unit.
func (m *Morph) Decline() error {
	rule, ok := m.rs.Declines[m.unit]
	if !ok {
		return fmt.Errorf("%w: %q", ErrDeclineUnsupported, m.unit)
	}
	if m.progressed {
		return &InitError{Param: data.ParamDeclines}
	}
	if m.declines >= rule.Max {
		return fmt.Errorf("%w: %q declined %d times", ErrDeclineLimit, m.unit, m.declines)
	}
	m.current.Add(stats.Reindex(m.rs.Schema(), rule.Delta))
	m.declines++
	m.metadata[MetaDeclines] = strconv.Itoa(m.declines)
	return nil
}
