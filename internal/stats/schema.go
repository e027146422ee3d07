package stats

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrEmptySchema     = errors.New("schema has no stats")
	ErrDuplicateStat   = errors.New("duplicate stat in schema")
	ErrUnknownZeroStat = errors.New("zero-growth stat not in schema")
)

// Schema is the ordered, fixed list of stat names one game uses.
// Vectors built from the same *Schema may be combined; vectors from
// different schemas may not.
type Schema struct {
	names      []string
	index      map[string]int
	zeroGrowth []bool
}

// NewSchema builds a schema from the ordered stat names. zeroGrowth marks
// the stats that are present in every vector but never grow on level-up
// (movement, constitution, leadership).
func NewSchema(names, zeroGrowth []string) (*Schema, error) {
	if len(names) == 0 {
		return nil, ErrEmptySchema
	}
	s := &Schema{
		names:      slices.Clone(names),
		index:      make(map[string]int, len(names)),
		zeroGrowth: make([]bool, len(names)),
	}
	for i, name := range names {
		if _, dup := s.index[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateStat, name)
		}
		s.index[name] = i
	}
	for _, name := range zeroGrowth {
		i, ok := s.index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownZeroStat, name)
		}
		s.zeroGrowth[i] = true
	}
	return s, nil
}

// Names returns a copy of the stat names in schema order.
func (s *Schema) Names() []string {
	return slices.Clone(s.names)
}

// Len returns the number of stats.
func (s *Schema) Len() int {
	return len(s.names)
}

// Has reports whether name is part of the schema.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// IsZeroGrowth reports whether the named stat never grows.
// Unknown names report false.
func (s *Schema) IsZeroGrowth(name string) bool {
	i, ok := s.index[name]
	return ok && s.zeroGrowth[i]
}

// Growable returns the names of stats that grow on level-up, in order.
func (s *Schema) Growable() []string {
	out := make([]string, 0, len(s.names))
	for i, name := range s.names {
		if !s.zeroGrowth[i] {
			out = append(out, name)
		}
	}
	return out
}
