package data

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gchang12/aenir/internal/stats"
)

// Table names shared by every game. The game column tells rows apart.
const (
	TableBaseStats       = "characters__base_stats"
	TableGrowthRates     = "characters__growth_rates"
	TableHardModeBonuses = "characters__hard_mode_bonuses"
	TablePromotionGains  = "classes__promotion_gains"
	TableMaximumStats    = "classes__maximum_stats"
)

// Column names used by the engine.
const (
	ColGame      = "game"
	ColName      = "name"
	ColClass     = "class"
	ColLevel     = "lv"
	ColFather    = "father"
	ColRoute     = "route"
	ColMode      = "mode"
	ColPromotion = "promotion"
)

// Disambiguation parameters a unit may require at construction.
const (
	ParamFather   = "father"
	ParamRoute    = "route"
	ParamHardMode = "hard_mode"
	ParamLynMode  = "lyn_mode"
	ParamDeclines = "declines"
)

// Level rules applied on promotion.
const (
	LevelReset  = "reset"
	LevelRetain = "retain"
)

// Equipment kinds.
const (
	KindScroll = "scroll"
	KindBand   = "band"
	KindWard   = "ward"
)

var ErrInvalidRuleset = errors.New("invalid ruleset")

// Ruleset is the per-game configuration: stat schema, level bounds,
// promotion rules and the item and unit exception tables.
type Ruleset struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	Title      string   `yaml:"title"`
	Stats      []string `yaml:"stats"`
	ZeroGrowth []string `yaml:"zero_growth"`

	MaxLevel           int            `yaml:"max_level"`
	PromotedMaxLevel   int            `yaml:"promoted_max_level"`
	MaxLevelExceptions map[string]int `yaml:"max_level_exceptions"`

	MinPromoLevel           int            `yaml:"min_promo_level"`
	MinPromoLevelExceptions map[string]int `yaml:"min_promo_level_exceptions"`

	Promotion PromotionRule `yaml:"promotion"`
	Inventory InventoryRule `yaml:"inventory"`

	Capabilities map[string][]string `yaml:"capabilities"`

	StatBoosters map[string]StatBooster         `yaml:"stat_boosters"`
	GrowthItems  map[string]map[string]float64 `yaml:"growth_items"`
	Equipment    map[string]EquipmentItem       `yaml:"equipment"`
	Declines     map[string]DeclineRule         `yaml:"declines"`
	Units        map[string]UnitRule            `yaml:"units"`

	schema *stats.Schema
}

// PromotionRule declares what happens to a unit's level on promotion.
// Exceptions override Level per unit name.
type PromotionRule struct {
	Level      string            `yaml:"level"`
	ResetTo    int               `yaml:"reset_to"`
	Exceptions map[string]string `yaml:"exceptions"`
}

// InventoryRule gives the equipment capacity. A unit whose class has
// one of the listed capabilities uses that size instead of Size.
type InventoryRule struct {
	Size         int            `yaml:"size"`
	ByCapability map[string]int `yaml:"by_capability"`
}

// StatBooster is a consumable that adds Amount to one stat.
type StatBooster struct {
	Stat   string  `yaml:"stat"`
	Amount float64 `yaml:"amount"`
}

// EquipmentItem is a held item that adds Growths while equipped.
// Requires names a class capability the holder must have.
type EquipmentItem struct {
	Kind     string             `yaml:"kind"`
	Growths  map[string]float64 `yaml:"growths"`
	Requires string             `yaml:"requires"`
}

// DeclineRule lets the player turn a unit down up to Max times before
// recruiting it; each refusal applies Delta.
type DeclineRule struct {
	Max   int                `yaml:"max"`
	Delta map[string]float64 `yaml:"delta"`
}

// UnitRule lists the construction parameters a unit needs and, where
// the choice is closed, the allowed values.
type UnitRule struct {
	Requires []string `yaml:"requires"`
	Fathers  []string `yaml:"fathers"`
	Routes   []string `yaml:"routes"`
}

// Schema returns the stat schema shared by every vector of this game.
func (r *Ruleset) Schema() *stats.Schema {
	return r.schema
}

// validate checks cross references and builds the schema.
func (r *Ruleset) validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRuleset)
	}
	schema, err := stats.NewSchema(r.Stats, r.ZeroGrowth)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrInvalidRuleset, r.ID, err)
	}
	if r.MaxLevel < 1 {
		return fmt.Errorf("%w %s: max_level %d", ErrInvalidRuleset, r.ID, r.MaxLevel)
	}
	if r.Promotion.Level == "" {
		r.Promotion.Level = LevelReset
	}
	if r.Promotion.ResetTo == 0 {
		r.Promotion.ResetTo = 1
	}
	checkRule := func(rule string) error {
		if rule != LevelReset && rule != LevelRetain {
			return fmt.Errorf("%w %s: unknown level rule %q", ErrInvalidRuleset, r.ID, rule)
		}
		return nil
	}
	if err := checkRule(r.Promotion.Level); err != nil {
		return err
	}
	for _, rule := range r.Promotion.Exceptions {
		if err := checkRule(rule); err != nil {
			return err
		}
	}

	checkStats := func(where string, m map[string]float64) error {
		for name := range m {
			if !schema.Has(name) {
				return fmt.Errorf("%w %s: %s references unknown stat %q", ErrInvalidRuleset, r.ID, where, name)
			}
		}
		return nil
	}
	checkGrowths := func(where string, m map[string]float64) error {
		if err := checkStats(where, m); err != nil {
			return err
		}
		for name := range m {
			if schema.IsZeroGrowth(name) {
				return fmt.Errorf("%w %s: %s adds growth to zero-growth stat %q", ErrInvalidRuleset, r.ID, where, name)
			}
		}
		return nil
	}
	for item, b := range r.StatBoosters {
		if !schema.Has(b.Stat) {
			return fmt.Errorf("%w %s: booster %q references unknown stat %q", ErrInvalidRuleset, r.ID, item, b.Stat)
		}
	}
	for item, g := range r.GrowthItems {
		if err := checkGrowths("growth item "+item, g); err != nil {
			return err
		}
	}
	for item, e := range r.Equipment {
		switch e.Kind {
		case KindScroll, KindBand, KindWard:
		default:
			return fmt.Errorf("%w %s: equipment %q has unknown kind %q", ErrInvalidRuleset, r.ID, item, e.Kind)
		}
		if err := checkGrowths("equipment "+item, e.Growths); err != nil {
			return err
		}
	}
	for unit, d := range r.Declines {
		if d.Max < 1 {
			return fmt.Errorf("%w %s: decline rule for %q has max %d", ErrInvalidRuleset, r.ID, unit, d.Max)
		}
		if err := checkStats("decline "+unit, d.Delta); err != nil {
			return err
		}
	}
	known := []string{ParamFather, ParamRoute, ParamHardMode, ParamLynMode}
	for unit, u := range r.Units {
		for _, p := range u.Requires {
			if !slices.Contains(known, p) {
				return fmt.Errorf("%w %s: unit %q requires unknown parameter %q", ErrInvalidRuleset, r.ID, unit, p)
			}
		}
	}

	r.schema = schema
	return nil
}

// MaxLevelFor returns the level cap for a unit in its current class.
// Exceptions by class win over exceptions by unit name.
func (r *Ruleset) MaxLevelFor(unit, class string, promoted bool) int {
	if n, ok := r.MaxLevelExceptions[class]; ok {
		return n
	}
	if n, ok := r.MaxLevelExceptions[unit]; ok {
		return n
	}
	if promoted && r.PromotedMaxLevel > 0 {
		return r.PromotedMaxLevel
	}
	return r.MaxLevel
}

// MinPromoLevelFor returns the lowest level at which unit, currently in
// class, may promote into target.
func (r *Ruleset) MinPromoLevelFor(unit, class, target string) int {
	for _, key := range []string{target, class, unit} {
		if n, ok := r.MinPromoLevelExceptions[key]; ok {
			return n
		}
	}
	return r.MinPromoLevel
}

// RetainsLevel reports whether unit keeps its level on promotion.
func (r *Ruleset) RetainsLevel(unit string) bool {
	if rule, ok := r.Promotion.Exceptions[unit]; ok {
		return rule == LevelRetain
	}
	return r.Promotion.Level == LevelRetain
}

// HasCapability reports whether class carries capability.
func (r *Ruleset) HasCapability(class, capability string) bool {
	return slices.Contains(r.Capabilities[class], capability)
}

// InventorySize returns how many items a unit in class may equip.
func (r *Ruleset) InventorySize(class string) int {
	for _, capability := range r.Capabilities[class] {
		if n, ok := r.Inventory.ByCapability[capability]; ok {
			return n
		}
	}
	return r.Inventory.Size
}
