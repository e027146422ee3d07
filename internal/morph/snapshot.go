package morph

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Snapshot is a plain-value copy of a Morph's observable state.
type Snapshot struct {
	Unit        string
	Class       string
	Level       int
	Stats       map[string]float64
	Growths     map[string]float64
	BaseGrowths map[string]float64
	MaxStats    map[string]float64
	PromoTarget string
	History     []HistoryEntry
	Metadata    map[string]string
	Equipped    []string
	Consumed    []string
	Declines    int
}

// Snapshot copies the unit's state.
func (m *Morph) Snapshot() Snapshot {
	return Snapshot{
		Unit:        m.unit,
		Class:       m.class,
		Level:       m.level,
		Stats:       m.current.Map(),
		Growths:     m.growths.Map(),
		BaseGrowths: m.baseGrowths.Map(),
		MaxStats:    m.maxStats.Map(),
		PromoTarget: m.promoTarget,
		History:     slices.Clone(m.history),
		Metadata:    m.Metadata(),
		Equipped:    slices.Clone(m.equipped),
		Consumed:    slices.Sorted(maps.Keys(m.consumed)),
		Declines:    m.declines,
	}
}

func (m *Morph) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s, Lv %d): %s", m.unit, m.class, m.level, m.current)
	for _, h := range m.history {
		fmt.Fprintf(&b, " [was %s Lv %d]", h.Class, h.Level)
	}
	return b.String()
}
