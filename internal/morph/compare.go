package morph

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gchang12/aenir/internal/stats"
)

var ErrRulesetMismatch = errors.New("units belong to different games")

// Placeholder fills a cell one side does not have.
const Placeholder = "-"

// ComparisonRow is one aligned line of a Comparison.
type ComparisonRow struct {
	Label string
	Self  string
	Delta string
	Other string
}

// Comparison lines two units up side by side. Deltas are other − self.
type Comparison struct {
	Self  string
	Other string
	Rows  []ComparisonRow
	// Total is the summed delta over growable stats.
	Total float64
}

// Compare builds the comparison of m against other.
func (m *Morph) Compare(other *Morph) (*Comparison, error) {
	if m.rs != other.rs {
		return nil, fmt.Errorf("%w: %s vs %s", ErrRulesetMismatch, m.rs.ID, other.rs.ID)
	}

	c := &Comparison{Self: m.unit, Other: other.unit}
	add := func(label, self, delta, oth string) {
		c.Rows = append(c.Rows, ComparisonRow{Label: label, Self: self, Delta: delta, Other: oth})
	}

	add("Name", m.unit, "", other.unit)

	for i := range max(len(m.history), len(other.history)) {
		add(fmt.Sprintf("Promotion %d", i+1), historyCell(m.history, i), "", historyCell(other.history, i))
	}

	add("Class", m.class, "", other.class)
	add("Level", strconv.Itoa(m.level), strconv.Itoa(other.level-m.level), strconv.Itoa(other.level))

	delta := other.current.Sub(m.current)
	for name, d := range delta.All() {
		a, _ := m.current.Get(name)
		b, _ := other.current.Get(name)
		add(name, stats.FormatValue(a), stats.FormatValue(d), stats.FormatValue(b))
	}

	union := maps.Clone(m.metadata)
	maps.Copy(union, other.metadata)
	for _, k := range slices.Sorted(maps.Keys(union)) {
		add(k, metaCell(m.metadata, k), "", metaCell(other.metadata, k))
	}

	c.Total = delta.Sum()
	add("Total", "", stats.FormatValue(c.Total), "")
	return c, nil
}

func historyCell(h []HistoryEntry, i int) string {
	if i >= len(h) {
		return Placeholder
	}
	return fmt.Sprintf("%s %d", h[i].Class, h[i].Level)
}

func metaCell(meta map[string]string, key string) string {
	if v, ok := meta[key]; ok {
		return v
	}
	return Placeholder
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	labelStyle  = cellStyle.Faint(true)
)

// Render draws the comparison as a table titled "<self> vs. <other>".
func (c *Comparison) Render() string {
	rows := make([][]string, 0, len(c.Rows))
	for _, r := range c.Rows {
		rows = append(rows, []string{r.Label, r.Self, r.Delta, r.Other})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderHeader(true).
		BorderRow(false).
		Headers("", c.Self, "Δ", c.Other).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return labelStyle
			default:
				return cellStyle
			}
		})
	return fmt.Sprintf("%s vs. %s\n%s", c.Self, c.Other, t.Render())
}
