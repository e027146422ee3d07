// Package resolve reconciles unit and class names across the stat
// tables, which were scraped from pages that spell the same thing
// differently.
package resolve

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/gchang12/aenir/internal/data"
	"github.com/gchang12/aenir/internal/db"
)

var (
	ErrAliasMissing = errors.New("alias entry missing")
	ErrUnknownPair  = errors.New("no alias map for table pair")
)

// MissingAliasError reports a key absent from an alias map. It means
// the alias files are out of step with the tables.
type MissingAliasError struct {
	Pair Pair
	Key  string
}

func (e *MissingAliasError) Error() string {
	return fmt.Sprintf("%s: %q in %s", ErrAliasMissing, e.Key, e.Pair)
}

func (e *MissingAliasError) Unwrap() error {
	return ErrAliasMissing
}

// Resolver looks up rows for one game through its alias maps.
// It never mutates its maps and is safe for concurrent use.
type Resolver struct {
	game     string
	provider db.Provider
	aliases  Aliases
}

// New returns a resolver for game over provider.
func New(game string, provider db.Provider, aliases Aliases) *Resolver {
	return &Resolver{game: game, provider: provider, aliases: aliases}
}

// Game returns the ruleset id the resolver filters on.
func (r *Resolver) Game() string {
	return r.game
}

// Resolve returns the canonical name of key in target. ok is false when
// the alias map marks the transition as unavailable.
func (r *Resolver) Resolve(source, key, target string) (string, bool, error) {
	pair := Pair{Source: source, Target: target}
	m, ok := r.aliases[pair]
	if !ok {
		return "", false, fmt.Errorf("%w: %s", ErrUnknownPair, pair)
	}
	canon, ok := m[norm.NFC.String(key)]
	if !ok {
		return "", false, &MissingAliasError{Pair: pair, Key: key}
	}
	if canon == nil {
		return "", false, nil
	}
	return *canon, true, nil
}

// Request describes one cross-table lookup.
type Request struct {
	SourceTable  string
	SourceKey    string
	TargetTable  string
	TargetColumn string
	// Filters are extra exact-match conditions on the target table.
	Filters db.Filters
	// Variant picks one row when several match.
	Variant int
}

// Candidates returns every target row for the request, in provider
// order. It returns no rows when the transition is unavailable.
func (r *Resolver) Candidates(ctx context.Context, req Request) (db.RowSet, error) {
	canon, ok, err := r.Resolve(req.SourceTable, req.SourceKey, req.TargetTable)
	if err != nil || !ok {
		return nil, err
	}
	filters := req.Filters.With(data.ColGame, r.game).With(req.TargetColumn, canon)
	rows, err := r.provider.Query(ctx, req.TargetTable, filters)
	if err != nil {
		return nil, fmt.Errorf("looking up %q in %s: %w", canon, req.TargetTable, err)
	}
	return rows, nil
}

// Lookup returns the Variant-th target row. ok is false when the
// transition is unavailable or no such row exists.
func (r *Resolver) Lookup(ctx context.Context, req Request) (db.Row, bool, error) {
	rows, err := r.Candidates(ctx, req)
	if err != nil {
		return nil, false, err
	}
	if req.Variant < 0 || req.Variant >= len(rows) {
		return nil, false, nil
	}
	return rows[req.Variant], true, nil
}

// Rows queries table directly, without alias translation. The game
// filter is added.
func (r *Resolver) Rows(ctx context.Context, table string, filters db.Filters) (db.RowSet, error) {
	rows, err := r.provider.Query(ctx, table, filters.With(data.ColGame, r.game))
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}
	return rows, nil
}
