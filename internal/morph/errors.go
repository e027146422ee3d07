package morph

import (
	"errors"
	"fmt"
	"strings"
)

// Reason is a closed failure code carried by the morph error types.
type Reason string

const (
	NoPromotions     Reason = "NO_PROMOTIONS"
	LevelTooLow      Reason = "LEVEL_TOO_LOW"
	InvalidPromotion Reason = "INVALID_PROMOTION"
	NoImplementation Reason = "NO_IMPLEMENTATION"
	NotFound         Reason = "NOT_FOUND"
	StatIsMaxed      Reason = "STAT_IS_MAXED"
	AlreadyConsumed  Reason = "ALREADY_CONSUMED"
	AlreadyEquipped  Reason = "ALREADY_EQUIPPED"
	NotEquipped      Reason = "NOT_EQUIPPED"
	NoInventorySpace Reason = "NO_INVENTORY_SPACE"
	NotAKnight       Reason = "NOT_A_KNIGHT"
)

// Sentinels for errors.Is. Each typed error matches the sentinel of its
// reason, and its own kind sentinel.
var (
	ErrUnitNotFound       = errors.New("unit not found")
	ErrInitParam          = errors.New("init parameter required")
	ErrLevelOutOfRange    = errors.New("level out of range")
	ErrPromotion          = errors.New("promotion failed")
	ErrStatBooster        = errors.New("stat booster failed")
	ErrGrowthsItem        = errors.New("growths item failed")
	ErrEquip              = errors.New("equip failed")
	ErrDeclineUnsupported = errors.New("unit cannot be declined")
	ErrDeclineLimit       = errors.New("decline limit reached")

	ErrNoPromotions     = errors.New("no promotions available")
	ErrLevelTooLow      = errors.New("level too low to promote")
	ErrInvalidPromotion = errors.New("promotion target not set or invalid")
	ErrNoImplementation = errors.New("not implemented for this game")
	ErrNotFound         = errors.New("item not found")
	ErrStatIsMaxed      = errors.New("stat is maxed")
	ErrAlreadyConsumed  = errors.New("item already consumed")
	ErrAlreadyEquipped  = errors.New("item already equipped")
	ErrNotEquipped      = errors.New("item not equipped")
	ErrNoInventorySpace = errors.New("no inventory space")
	ErrNotAKnight       = errors.New("unit is not a knight")
)

var reasonErrs = map[Reason]error{
	NoPromotions:     ErrNoPromotions,
	LevelTooLow:      ErrLevelTooLow,
	InvalidPromotion: ErrInvalidPromotion,
	NoImplementation: ErrNoImplementation,
	NotFound:         ErrNotFound,
	StatIsMaxed:      ErrStatIsMaxed,
	AlreadyConsumed:  ErrAlreadyConsumed,
	AlreadyEquipped:  ErrAlreadyEquipped,
	NotEquipped:      ErrNotEquipped,
	NoInventorySpace: ErrNoInventorySpace,
	NotAKnight:       ErrNotAKnight,
}

func matches(target, kind error, reason Reason) bool {
	return target == kind || (reason != "" && target == reasonErrs[reason])
}

// UnitNotFoundError reports that no row matches a unit or class.
type UnitNotFoundError struct {
	UnitType string
	Name     string
}

func (e *UnitNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.UnitType, e.Name)
}

func (e *UnitNotFoundError) Is(target error) bool { return target == ErrUnitNotFound }

// InitError reports a construction parameter that is missing or not
// allowed. InitParams lists option sets the caller can retry with.
type InitError struct {
	Param      string
	InitParams []Options
}

func (e *InitError) Error() string {
	if len(e.InitParams) == 0 {
		return fmt.Sprintf("%s: %s", ErrInitParam, e.Param)
	}
	return fmt.Sprintf("%s: %s (%d choices)", ErrInitParam, e.Param, len(e.InitParams))
}

func (e *InitError) Is(target error) bool { return target == ErrInitParam }

// LevelUpError reports a target level outside (current, MaxLevel].
type LevelUpError struct {
	MaxLevel int
	Level    int
	Target   int
}

func (e *LevelUpError) Error() string {
	return fmt.Sprintf("%s: cannot go from level %d to %d, max level is %d", ErrLevelOutOfRange, e.Level, e.Target, e.MaxLevel)
}

func (e *LevelUpError) Is(target error) bool { return target == ErrLevelOutOfRange }

// PromotionError explains why Promote refused. PromotionList is set for
// InvalidPromotion and MinPromoLevel for LevelTooLow.
type PromotionError struct {
	Reason        Reason
	PromotionList []string
	MinPromoLevel int
}

func (e *PromotionError) Error() string {
	switch e.Reason {
	case InvalidPromotion:
		return fmt.Sprintf("promotion: %s: choose one of %s", e.Reason, strings.Join(e.PromotionList, ", "))
	case LevelTooLow:
		return fmt.Sprintf("promotion: %s: need level %d", e.Reason, e.MinPromoLevel)
	default:
		return fmt.Sprintf("promotion: %s", e.Reason)
	}
}

func (e *PromotionError) Is(target error) bool { return matches(target, ErrPromotion, e.Reason) }

// StatBoosterError explains why UseStatBooster refused.
type StatBoosterError struct {
	Reason Reason
	Item   string
	Stat   string
}

func (e *StatBoosterError) Error() string {
	if e.Stat != "" {
		return fmt.Sprintf("stat booster %q: %s (%s)", e.Item, e.Reason, e.Stat)
	}
	return fmt.Sprintf("stat booster %q: %s", e.Item, e.Reason)
}

func (e *StatBoosterError) Is(target error) bool { return matches(target, ErrStatBooster, e.Reason) }

// GrowthsItemError explains why UseGrowthItem refused.
type GrowthsItemError struct {
	Reason Reason
	Item   string
}

func (e *GrowthsItemError) Error() string {
	return fmt.Sprintf("growths item %q: %s", e.Item, e.Reason)
}

func (e *GrowthsItemError) Is(target error) bool { return matches(target, ErrGrowthsItem, e.Reason) }

// EquipError explains why Equip or Unequip refused. Kind is the item's
// equipment kind (scroll, band, ward) when the item is known.
type EquipError struct {
	Reason Reason
	Kind   string
	Item   string
}

func (e *EquipError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "equipment"
	}
	return fmt.Sprintf("%s %q: %s", kind, e.Item, e.Reason)
}

func (e *EquipError) Is(target error) bool { return matches(target, ErrEquip, e.Reason) }
