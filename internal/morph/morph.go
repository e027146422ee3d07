// Package morph simulates how one unit progresses: level-ups,
// promotions, consumables and equipment.
//
// A Morph is owned by its caller and never shared. Every mutating method
// is atomic: when it returns an error the unit is exactly as it was.
package morph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/gchang12/aenir/internal/data"
	"github.com/gchang12/aenir/internal/db"
	"github.com/gchang12/aenir/internal/resolve"
	"github.com/gchang12/aenir/internal/stats"
)

var (
	ErrGameMismatch  = errors.New("resolver and ruleset belong to different games")
	ErrMissingRow    = errors.New("stat row missing")
	ErrAmbiguousUnit = errors.New("unit matches several rows")
)

// Metadata labels.
const (
	MetaHardMode = "Hard Mode"
	MetaCampaign = "Campaign"
	MetaFather   = "Father"
	MetaRoute    = "Route"
	MetaDeclines = "Declines"
)

// Resolver is the lookup surface a Morph needs.
type Resolver interface {
	Game() string
	Rows(ctx context.Context, table string, filters db.Filters) (db.RowSet, error)
	Candidates(ctx context.Context, req resolve.Request) (db.RowSet, error)
	Lookup(ctx context.Context, req resolve.Request) (db.Row, bool, error)
}

// Options disambiguate units that have more than one identity.
// Options a unit does not need are ignored with a warning.
type Options struct {
	Father   string
	Route    string
	HardMode *bool
	LynMode  *bool
}

// HistoryEntry is the class and level a unit had just before a promotion.
type HistoryEntry struct {
	Class string
	Level int
}

// Morph is one unit's progression state.
type Morph struct {
	rs       *data.Ruleset
	resolver Resolver
	unit     string
	lineage  db.Filters

	class string
	level int

	current     *stats.Vector
	baseGrowths *stats.Vector
	growths     *stats.Vector
	maxStats    *stats.Vector

	promoTarget string
	history     []HistoryEntry
	metadata    map[string]string
	equipped    []string
	consumed    map[string]struct{}
	declines    int
	progressed  bool
}

// New loads unit from the resolver's tables.
func New(ctx context.Context, rs *data.Ruleset, resolver Resolver, unit string, opts Options) (*Morph, error) {
	if resolver.Game() != rs.ID {
		return nil, fmt.Errorf("%w: %q vs %q", ErrGameMismatch, resolver.Game(), rs.ID)
	}

	m := &Morph{
		rs:       rs,
		resolver: resolver,
		unit:     unit,
		lineage:  db.Filters{},
		metadata: map[string]string{},
		consumed: map[string]struct{}{},
	}

	baseFilters, hardMode, err := m.applyOptions(opts)
	if err != nil {
		return nil, err
	}

	rows, err := resolver.Rows(ctx, data.TableBaseStats, baseFilters.With(data.ColName, unit))
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, &UnitNotFoundError{UnitType: "unit", Name: unit}
	case 1:
	default:
		return nil, fmt.Errorf("%w: %q matched %d rows", ErrAmbiguousUnit, unit, len(rows))
	}
	base := rows[0]

	schema := rs.Schema()
	class, ok := base.String(data.ColClass)
	if !ok {
		return nil, fmt.Errorf("%w: %q has no class", ErrMissingRow, unit)
	}
	lv, ok := base.Float(data.ColLevel)
	if !ok || lv < 1 {
		return nil, fmt.Errorf("%w: %q has no level", ErrMissingRow, unit)
	}
	m.class = class
	m.level = int(lv)

	if m.current, err = stats.New(schema, base.Stats(schema.Names())); err != nil {
		return nil, fmt.Errorf("base stats of %q: %w", unit, err)
	}

	growthRow, err := m.lookup(ctx, data.TableBaseStats, unit, data.TableGrowthRates, data.ColName, m.lineage)
	if err != nil {
		return nil, err
	}
	if m.baseGrowths, err = stats.Growths(schema, growthRow.Stats(schema.Names())); err != nil {
		return nil, fmt.Errorf("growth rates of %q: %w", unit, err)
	}
	m.growths = m.baseGrowths.Clone()

	if hardMode {
		bonus, ok, err := resolver.Lookup(ctx, resolve.Request{
			SourceTable:  data.TableBaseStats,
			SourceKey:    unit,
			TargetTable:  data.TableHardModeBonuses,
			TargetColumn: data.ColName,
		})
		if err != nil {
			return nil, err
		}
		if ok {
			m.current.Add(stats.Reindex(schema, bonus.Stats(schema.Names())))
		}
	}

	maxRow, err := m.lookup(ctx, data.TableBaseStats, unit, data.TableMaximumStats, data.ColClass, nil)
	if err != nil {
		return nil, err
	}
	if m.maxStats, err = stats.New(schema, maxRow.Stats(schema.Names())); err != nil {
		return nil, fmt.Errorf("maximum stats of %q: %w", class, err)
	}

	slog.Debug("unit loaded", "game", rs.ID, "unit", unit, "class", class, "level", m.level)
	return m, nil
}

// applyOptions checks opts against the unit's declared parameters. It
// returns the extra base-stat filters and whether hard-mode bonuses apply.
func (m *Morph) applyOptions(opts Options) (db.Filters, bool, error) {
	rule := m.rs.Units[m.unit]
	filters := db.Filters{}
	hardMode := false

	requires := func(p string) bool { return slices.Contains(rule.Requires, p) }
	warn := func(p string) {
		slog.Warn("ignoring init parameter", "unit", m.unit, "param", p)
	}

	if requires(data.ParamFather) {
		if opts.Father == "" || (len(rule.Fathers) > 0 && !slices.Contains(rule.Fathers, opts.Father)) {
			return nil, false, &InitError{Param: data.ParamFather, InitParams: withEach(opts, rule.Fathers, func(o *Options, v string) { o.Father = v })}
		}
		filters[data.ColFather] = opts.Father
		m.lineage[data.ColFather] = opts.Father
		m.metadata[MetaFather] = opts.Father
	} else if opts.Father != "" {
		warn(data.ParamFather)
	}

	if requires(data.ParamRoute) {
		if opts.Route == "" || (len(rule.Routes) > 0 && !slices.Contains(rule.Routes, opts.Route)) {
			return nil, false, &InitError{Param: data.ParamRoute, InitParams: withEach(opts, rule.Routes, func(o *Options, v string) { o.Route = v })}
		}
		filters[data.ColRoute] = opts.Route
		m.metadata[MetaRoute] = opts.Route
	} else if opts.Route != "" {
		warn(data.ParamRoute)
	}

	if requires(data.ParamLynMode) {
		if opts.LynMode == nil {
			return nil, false, &InitError{Param: data.ParamLynMode, InitParams: withBoth(opts, func(o *Options, b *bool) { o.LynMode = b })}
		}
		if *opts.LynMode {
			filters[data.ColMode] = "lyn"
			m.metadata[MetaCampaign] = "Lyn"
		} else {
			filters[data.ColMode] = "main"
			m.metadata[MetaCampaign] = "Main"
		}
	} else if opts.LynMode != nil {
		warn(data.ParamLynMode)
	}

	if requires(data.ParamHardMode) {
		if opts.HardMode == nil {
			return nil, false, &InitError{Param: data.ParamHardMode, InitParams: withBoth(opts, func(o *Options, b *bool) { o.HardMode = b })}
		}
		hardMode = *opts.HardMode
		m.metadata[MetaHardMode] = strconv.FormatBool(hardMode)
	} else if opts.HardMode != nil {
		warn(data.ParamHardMode)
	}

	return filters, hardMode, nil
}

func withEach(opts Options, values []string, set func(*Options, string)) []Options {
	out := make([]Options, 0, len(values))
	for _, v := range values {
		o := opts
		set(&o, v)
		out = append(out, o)
	}
	return out
}

func withBoth(opts Options, set func(*Options, *bool)) []Options {
	yes, no := true, false
	a, b := opts, opts
	set(&a, &yes)
	set(&b, &no)
	return []Options{a, b}
}

// lookup resolves one required row; an unavailable transition is a data defect here.
func (m *Morph) lookup(ctx context.Context, source, key, target, column string, filters db.Filters) (db.Row, error) {
	row, ok, err := m.resolver.Lookup(ctx, resolve.Request{
		SourceTable:  source,
		SourceKey:    key,
		TargetTable:  target,
		TargetColumn: column,
		Filters:      filters,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s for %q", ErrMissingRow, target, key)
	}
	return row, nil
}

// identity returns the table and key that name the unit in its current
// state: the unit name before the first promotion, the class after.
func (m *Morph) identity() (table, key string) {
	if len(m.history) == 0 {
		return data.TableBaseStats, m.unit
	}
	return data.TablePromotionGains, m.class
}

// Unit returns the unit's name.
func (m *Morph) Unit() string { return m.unit }

// Ruleset returns the game the unit belongs to.
func (m *Morph) Ruleset() *data.Ruleset { return m.rs }

// Class returns the current class.
func (m *Morph) Class() string { return m.class }

// Level returns the current level.
func (m *Morph) Level() int { return m.level }

// Promoted reports how many times the unit has promoted.
func (m *Morph) Promoted() int { return len(m.history) }

// MaxLevel returns the level cap in the current class.
func (m *Morph) MaxLevel() int {
	return m.rs.MaxLevelFor(m.unit, m.class, len(m.history) > 0)
}

// Stats returns a copy of the current stats.
func (m *Morph) Stats() *stats.Vector { return m.current.Clone() }

// Growths returns a copy of the effective growth rates.
func (m *Morph) Growths() *stats.Vector { return m.growths.Clone() }

// BaseGrowths returns a copy of the growth rates without equipment.
func (m *Morph) BaseGrowths() *stats.Vector { return m.baseGrowths.Clone() }

// MaxStats returns a copy of the current class's stat caps.
func (m *Morph) MaxStats() *stats.Vector { return m.maxStats.Clone() }

// History returns the promotions so far, oldest first.
func (m *Morph) History() []HistoryEntry { return slices.Clone(m.history) }

// Equipped returns the equipped items in the order they were equipped.
func (m *Morph) Equipped() []string { return slices.Clone(m.equipped) }

// Metadata returns the display labels of the unit.
func (m *Morph) Metadata() map[string]string {
	out := make(map[string]string, len(m.metadata))
	for k, v := range m.metadata {
		out[k] = v
	}
	return out
}

// PromoTarget returns the class chosen for the next branching promotion.
func (m *Morph) PromoTarget() string { return m.promoTarget }

// SetPromoTarget chooses the class for the next promotion when there is
// more than one. It is checked by Promote.
func (m *Morph) SetPromoTarget(class string) { m.promoTarget = class }

// LevelUp raises the unit to target, adding growths × levels / 100.
func (m *Morph) LevelUp(target int) error {
	maxLevel := m.MaxLevel()
	if target <= m.level || target > maxLevel {
		return &LevelUpError{MaxLevel: maxLevel, Level: m.level, Target: target}
	}
	gain := m.growths.Scale(float64(target-m.level) / 100)
	m.current.Add(gain)
	m.level = target
	m.progressed = true
	return nil
}

// Promotions lists the classes the unit can promote into, in provider
// order. The list is empty when the unit cannot promote.
func (m *Morph) Promotions(ctx context.Context) ([]string, error) {
	rows, err := m.promotionRows(ctx)
	if err != nil {
		return nil, err
	}
	return promotionNames(rows), nil
}

func (m *Morph) promotionRows(ctx context.Context) (db.RowSet, error) {
	table, key := m.identity()
	return m.resolver.Candidates(ctx, resolve.Request{
		SourceTable:  table,
		SourceKey:    key,
		TargetTable:  data.TablePromotionGains,
		TargetColumn: data.ColClass,
	})
}

func promotionNames(rows db.RowSet) []string {
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		name, _ := row.String(data.ColPromotion)
		names = append(names, name)
	}
	return names
}

// Promote moves the unit into its next class. With several candidates
// the target must be chosen first with SetPromoTarget.
func (m *Morph) Promote(ctx context.Context) error {
	rows, err := m.promotionRows(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return &PromotionError{Reason: NoPromotions}
	}

	names := promotionNames(rows)
	idx := 0
	if len(rows) > 1 {
		idx = slices.Index(names, m.promoTarget)
		if idx < 0 {
			return &PromotionError{Reason: InvalidPromotion, PromotionList: names}
		}
	}
	target := names[idx]

	if minLevel := m.rs.MinPromoLevelFor(m.unit, m.class, target); m.level < minLevel {
		return &PromotionError{Reason: LevelTooLow, MinPromoLevel: minLevel}
	}

	schema := m.rs.Schema()
	maxRow, err := m.lookup(ctx, data.TablePromotionGains, target, data.TableMaximumStats, data.ColClass, nil)
	if err != nil {
		return err
	}
	maxStats, err := stats.New(schema, maxRow.Stats(schema.Names()))
	if err != nil {
		return fmt.Errorf("maximum stats of %q: %w", target, err)
	}
	current := m.current.Clone().Add(stats.Reindex(schema, rows[idx].Stats(schema.Names())))

	m.history = append(m.history, HistoryEntry{Class: m.class, Level: m.level})
	m.current = current
	m.maxStats = maxStats
	if !m.rs.RetainsLevel(m.unit) {
		m.level = m.rs.Promotion.ResetTo
	}
	slog.Debug("unit promoted", "unit", m.unit, "from", m.class, "to", target, "level", m.level)
	m.class = target
	m.promoTarget = ""
	m.progressed = true
	return nil
}

// CapStats clamps every stat into [0, max].
func (m *Morph) CapStats() {
	m.current.Clamp(stats.Zero(m.current.Schema()), m.maxStats)
}

// IsMaxed reports stat by stat whether the unit sits at its cap.
func (m *Morph) IsMaxed() stats.Mask {
	return m.current.EqualMask(m.maxStats)
}
