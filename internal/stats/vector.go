package stats

import (
	"fmt"
	"iter"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// NotApplicable marks a zero-growth stat in the result of Sub.
var NotApplicable = math.NaN()

// IsNotApplicable reports whether v is the NotApplicable sentinel.
func IsNotApplicable(v float64) bool {
	return math.IsNaN(v)
}

// MissingStatsError is returned when a vector is built without every
// stat of its schema. Missing is ordered as in the schema.
type MissingStatsError struct {
	Missing []string
}

func (e *MissingStatsError) Error() string {
	return "missing stats: " + strings.Join(e.Missing, ", ")
}

// Vector holds one value per stat of its schema.
//
// Arithmetic between vectors of different schemas panics: it can only
// happen through a programming error, never through user input.
type Vector struct {
	schema *Schema
	values []float64
}

// New builds a vector from values. Every schema stat must be present;
// unknown keys are dropped with a warning.
func New(schema *Schema, values map[string]float64) (*Vector, error) {
	v := Zero(schema)
	var missing []string
	for i, name := range schema.names {
		val, ok := values[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		v.values[i] = val
	}
	warnExtra(schema, values)
	if len(missing) > 0 {
		return nil, &MissingStatsError{Missing: missing}
	}
	return v, nil
}

// Reindex builds a vector from a partial mapping; absent stats are 0.
// Used for bonuses and deltas, which only list the stats they touch.
func Reindex(schema *Schema, values map[string]float64) *Vector {
	v := Zero(schema)
	for i, name := range schema.names {
		v.values[i] = values[name]
	}
	warnExtra(schema, values)
	return v
}

// Growths builds a growth-rate vector. Growable stats are required;
// zero-growth stats are forced to 0 whatever the input says.
func Growths(schema *Schema, values map[string]float64) (*Vector, error) {
	v := Zero(schema)
	var missing []string
	for i, name := range schema.names {
		if schema.zeroGrowth[i] {
			continue
		}
		val, ok := values[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		v.values[i] = val
	}
	if len(missing) > 0 {
		return nil, &MissingStatsError{Missing: missing}
	}
	return v, nil
}

// Zero returns a vector with every stat set to 0.
func Zero(schema *Schema) *Vector {
	return &Vector{schema: schema, values: make([]float64, len(schema.names))}
}

func warnExtra(schema *Schema, values map[string]float64) {
	for name := range values {
		if !schema.Has(name) {
			slog.Warn("dropping unknown stat", "stat", name)
		}
	}
}

// Schema returns the vector's schema.
func (v *Vector) Schema() *Schema {
	return v.schema
}

// Get returns the named stat. ok is false for names outside the schema.
func (v *Vector) Get(name string) (float64, bool) {
	i, ok := v.schema.index[name]
	if !ok {
		return 0, false
	}
	return v.values[i], true
}

// Set overwrites the named stat. It returns false for names outside the schema.
func (v *Vector) Set(name string, val float64) bool {
	i, ok := v.schema.index[name]
	if !ok {
		return false
	}
	v.values[i] = val
	return true
}

// Clone returns an independent copy.
func (v *Vector) Clone() *Vector {
	out := &Vector{schema: v.schema, values: make([]float64, len(v.values))}
	copy(out.values, v.values)
	return out
}

// Map returns the vector as stat name → value.
func (v *Vector) Map() map[string]float64 {
	m := make(map[string]float64, len(v.values))
	for i, name := range v.schema.names {
		m[name] = v.values[i]
	}
	return m
}

func (v *Vector) mustMatch(other *Vector) {
	if v.schema != other.schema {
		panic(fmt.Sprintf("stats: schema mismatch (%v vs %v)", v.schema.names, other.schema.names))
	}
}

// Add adds other in place and returns v.
func (v *Vector) Add(other *Vector) *Vector {
	v.mustMatch(other)
	for i := range v.values {
		v.values[i] = round2(v.values[i] + other.values[i])
	}
	return v
}

// Sub returns v − other over growable stats. Zero-growth stats are
// NotApplicable in the result. Neither operand is modified.
func (v *Vector) Sub(other *Vector) *Vector {
	v.mustMatch(other)
	out := Zero(v.schema)
	for i := range v.values {
		if v.schema.zeroGrowth[i] {
			out.values[i] = NotApplicable
			continue
		}
		out.values[i] = round2(v.values[i] - other.values[i])
	}
	return out
}

// Scale returns a new vector with every value multiplied by factor and
// rounded to two decimals.
func (v *Vector) Scale(factor float64) *Vector {
	out := Zero(v.schema)
	for i, val := range v.values {
		out.values[i] = round2(val * factor)
	}
	return out
}

// Min lowers each stat of v to other's where other is smaller.
func (v *Vector) Min(other *Vector) *Vector {
	v.mustMatch(other)
	for i := range v.values {
		v.values[i] = math.Min(v.values[i], other.values[i])
	}
	return v
}

// Max raises each stat of v to other's where other is larger.
func (v *Vector) Max(other *Vector) *Vector {
	v.mustMatch(other)
	for i := range v.values {
		v.values[i] = math.Max(v.values[i], other.values[i])
	}
	return v
}

// Clamp bounds every stat of v into [lo, hi] elementwise.
func (v *Vector) Clamp(lo, hi *Vector) *Vector {
	return v.Max(lo).Min(hi)
}

// Equal reports exact equality. NotApplicable equals itself.
func (v *Vector) Equal(other *Vector) bool {
	if v.schema != other.schema {
		return false
	}
	for i := range v.values {
		a, b := v.values[i], other.values[i]
		if a != b && !(math.IsNaN(a) && math.IsNaN(b)) {
			return false
		}
	}
	return true
}

// EqualMask compares v and other stat by stat.
func (v *Vector) EqualMask(other *Vector) Mask {
	v.mustMatch(other)
	m := Mask{schema: v.schema, values: make([]bool, len(v.values))}
	for i := range v.values {
		m.values[i] = v.values[i] == other.values[i]
	}
	return m
}

// All yields every stat in schema order.
func (v *Vector) All() iter.Seq2[string, float64] {
	return func(yield func(string, float64) bool) {
		for i, name := range v.schema.names {
			if !yield(name, v.values[i]) {
				return
			}
		}
	}
}

// Growable yields the growable stats in schema order. Each call starts
// a fresh pass.
func (v *Vector) Growable() iter.Seq2[string, float64] {
	return func(yield func(string, float64) bool) {
		for i, name := range v.schema.names {
			if v.schema.zeroGrowth[i] {
				continue
			}
			if !yield(name, v.values[i]) {
				return
			}
		}
	}
}

// Sum totals the growable stats, skipping NotApplicable values.
func (v *Vector) Sum() float64 {
	var total float64
	for _, val := range v.Growable() {
		if !IsNotApplicable(val) {
			total += val
		}
	}
	return round2(total)
}

func (v *Vector) String() string {
	var b strings.Builder
	for i, name := range v.schema.names {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(FormatValue(v.values[i]))
	}
	return b.String()
}

// FormatValue renders a stat for display: "-" for NotApplicable,
// no trailing zeros otherwise.
func FormatValue(val float64) string {
	if IsNotApplicable(val) {
		return "-"
	}
	return strconv.FormatFloat(val, 'f', -1, 64)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Mask is a per-stat boolean vector.
type Mask struct {
	schema *Schema
	values []bool
}

// Get returns the flag for name; false for names outside the schema.
func (m Mask) Get(name string) bool {
	i, ok := m.schema.index[name]
	return ok && m.values[i]
}

// All reports whether every flag is set.
func (m Mask) All() bool {
	for _, b := range m.values {
		if !b {
			return false
		}
	}
	return true
}

// Any reports whether at least one flag is set.
func (m Mask) Any() bool {
	for _, b := range m.values {
		if b {
			return true
		}
	}
	return false
}

// Map returns the mask as stat name → flag.
func (m Mask) Map() map[string]bool {
	out := make(map[string]bool, len(m.values))
	for i, name := range m.schema.names {
		out[name] = m.values[i]
	}
	return out
}
