package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gchang12/aenir/internal/data"
	"github.com/gchang12/aenir/internal/morph"
)

var ErrBadStep = errors.New("bad step")

// unitSpec is a unit name with its construction options, written as
//
//	Name[@key=value,...]
//
// with keys father, route, hard_mode and lyn_mode.
type unitSpec struct {
	Name string
	Opts morph.Options
}

func parseUnitSpec(s string) (unitSpec, error) {
	name, rest, found := strings.Cut(s, "@")
	spec := unitSpec{Name: strings.TrimSpace(name)}
	if spec.Name == "" {
		return spec, fmt.Errorf("%w: empty unit name in %q", ErrBadStep, s)
	}
	if !found {
		return spec, nil
	}
	for _, kv := range strings.Split(rest, ",") {
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			return spec, fmt.Errorf("%w: option %q needs key=value", ErrBadStep, kv)
		}
		switch key {
		case data.ParamFather:
			spec.Opts.Father = val
		case data.ParamRoute:
			spec.Opts.Route = val
		case data.ParamHardMode, data.ParamLynMode:
			b, err := strconv.ParseBool(val)
			if err != nil {
				return spec, fmt.Errorf("%w: %s: %w", ErrBadStep, key, err)
			}
			if key == data.ParamHardMode {
				spec.Opts.HardMode = &b
			} else {
				spec.Opts.LynMode = &b
			}
		default:
			return spec, fmt.Errorf("%w: unknown option %q", ErrBadStep, key)
		}
	}
	return spec, nil
}

// step is one operation applied to a unit, written op[:arg].
type step struct {
	Op  string
	Arg string
}

const (
	stepLevel   = "level"
	stepPromote = "promote"
	stepCap     = "cap"
	stepBooster = "booster"
	stepGrowth  = "growth"
	stepEquip   = "equip"
	stepUnequip = "unequip"
	stepDecline = "decline"
)

func parseSteps(args []string) ([]step, error) {
	steps := make([]step, 0, len(args))
	for _, a := range args {
		op, arg, _ := strings.Cut(a, ":")
		s := step{Op: op, Arg: arg}
		switch op {
		case stepLevel:
			if _, err := strconv.Atoi(arg); err != nil {
				return nil, fmt.Errorf("%w: %q needs a level", ErrBadStep, a)
			}
		case stepBooster, stepGrowth, stepEquip, stepUnequip:
			if arg == "" {
				return nil, fmt.Errorf("%w: %q needs an item", ErrBadStep, a)
			}
		case stepPromote, stepCap, stepDecline:
		default:
			return nil, fmt.Errorf("%w: unknown operation %q", ErrBadStep, op)
		}
		steps = append(steps, s)
	}
	return steps, nil
}

func (s step) String() string {
	if s.Arg == "" {
		return s.Op
	}
	return s.Op + ":" + s.Arg
}

// apply runs the steps in order and stops at the first failure.
func apply(ctx context.Context, m *morph.Morph, steps []step) error {
	for _, s := range steps {
		var err error
		switch s.Op {
		case stepLevel:
			lv, _ := strconv.Atoi(s.Arg)
			err = m.LevelUp(lv)
		case stepPromote:
			if s.Arg != "" {
				m.SetPromoTarget(s.Arg)
			}
			err = m.Promote(ctx)
		case stepCap:
			m.CapStats()
		case stepBooster:
			err = m.UseStatBooster(s.Arg)
		case stepGrowth:
			err = m.UseGrowthItem(s.Arg)
		case stepEquip:
			err = m.Equip(s.Arg)
		case stepUnequip:
			err = m.Unequip(s.Arg)
		case stepDecline:
			err = m.Decline()
		}
		if err != nil {
			return fmt.Errorf("%s %s: %w", m.Unit(), s, err)
		}
	}
	return nil
}
