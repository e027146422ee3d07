package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/gchang12/aenir/internal/config"
	"github.com/gchang12/aenir/internal/data"
	"github.com/gchang12/aenir/internal/db"
	"github.com/gchang12/aenir/internal/resolve"
)

func loadFixture(path string) (*db.MemoryProvider, error) {
	return db.LoadMemory(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

// openProvider opens the configured store read-only.
func openProvider(ctx context.Context, cfg config.Config) (db.Provider, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		m, err := loadFixture(cfg.Fixture)
		return m, func() {}, err
	case config.DriverSQLite:
		p, err := db.OpenSQLite(cfg.Database.ConnString(), true)
		if err != nil {
			return nil, nil, err
		}
		return p, func() { _ = p.Close() }, nil
	case config.DriverPostgres:
		d, err := db.New(ctx, cfg.Database.ConnString())
		if err != nil {
			return nil, nil, err
		}
		return d, d.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported driver %q", cfg.Database.Driver)
	}
}

// openWriter opens the configured SQL store for import.
func openWriter(ctx context.Context, cfg config.Config) (db.Writer, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		p, err := db.OpenSQLite(cfg.Database.ConnString(), false)
		if err != nil {
			return nil, nil, err
		}
		return p, func() { _ = p.Close() }, nil
	case config.DriverPostgres:
		d, err := db.New(ctx, cfg.Database.ConnString())
		if err != nil {
			return nil, nil, err
		}
		return d, d.Close, nil
	default:
		return nil, nil, fmt.Errorf("driver %q has no tables to write", cfg.Database.Driver)
	}
}

// engine is a ruleset plus a resolver over the configured store.
type engine struct {
	rs       *data.Ruleset
	resolver *resolve.Resolver
	close    func()
}

// openEngine loads the store and the game's alias maps concurrently.
func openEngine(ctx context.Context, cfg config.Config) (*engine, error) {
	rs, err := data.GetRuleset(cfg.Game)
	if err != nil {
		return nil, err
	}

	var (
		provider db.Provider
		closer   func()
		aliases  resolve.Aliases
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		provider, closer, err = openProvider(ctx, cfg)
		if err != nil {
			return fmt.Errorf("opening %s store: %w", cfg.Database.Driver, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		aliases, err = resolve.LoadDir(gctx, os.DirFS(cfg.AliasDir), rs.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		if closer != nil {
			closer()
		}
		return nil, err
	}

	return &engine{
		rs:       rs,
		resolver: resolve.New(rs.ID, provider, aliases),
		close:    closer,
	}, nil
}
