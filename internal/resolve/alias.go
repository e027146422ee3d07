package resolve

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/gchang12/aenir/internal/data"
)

var ErrInvalidAliasFile = errors.New("invalid alias file")

//go:embed alias.schema.json
var aliasSchemaJSON []byte

const aliasSchemaURL = "alias.schema.json"

var aliasSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(aliasSchemaURL, bytes.NewReader(aliasSchemaJSON)); err != nil {
		return nil, fmt.Errorf("adding alias schema: %w", err)
	}
	return c.Compile(aliasSchemaURL)
})

// Pair names the source and target table of one alias map.
type Pair struct {
	Source string
	Target string
}

func (p Pair) String() string {
	return p.Source + "-" + p.Target
}

// AliasMap maps a source key to its canonical key in the target table.
// A nil value means the transition does not exist for that key.
type AliasMap map[string]*string

// Aliases holds every alias map of one game, keyed by table pair.
type Aliases map[Pair]AliasMap

var tables = []string{
	data.TableBaseStats,
	data.TableGrowthRates,
	data.TableHardModeBonuses,
	data.TablePromotionGains,
	data.TableMaximumStats,
}

// ParsePairName splits a file stem of the form <source>-<target>.
func ParsePairName(stem string) (Pair, error) {
	src, tgt, ok := strings.Cut(stem, "-")
	if !ok || !slices.Contains(tables, src) || !slices.Contains(tables, tgt) {
		return Pair{}, fmt.Errorf("%w: bad pair name %q", ErrInvalidAliasFile, stem)
	}
	return Pair{Source: src, Target: tgt}, nil
}

// ParseAliasMap validates raw against the alias schema and decodes it.
// Keys and values are normalized to NFC.
func ParseAliasMap(raw []byte) (AliasMap, error) {
	schema, err := aliasSchema()
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAliasFile, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAliasFile, err)
	}

	var decoded map[string]*string
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAliasFile, err)
	}
	m := make(AliasMap, len(decoded))
	for k, v := range decoded {
		key := norm.NFC.String(k)
		if _, dup := m[key]; dup {
			return nil, fmt.Errorf("%w: key %q repeats after normalization", ErrInvalidAliasFile, k)
		}
		if v != nil {
			canon := norm.NFC.String(*v)
			v = &canon
		}
		m[key] = v
	}
	return m, nil
}

// LoadDir reads every <source>-<target>.json file in dir. Files are read
// and validated concurrently; the first failure cancels the rest.
func LoadDir(ctx context.Context, fsys fs.FS, dir string) (Aliases, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading alias dir %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".json" {
			continue
		}
		files = append(files, e.Name())
	}

	pairs := make([]Pair, len(files))
	maps := make([]AliasMap, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pair, err := ParsePairName(strings.TrimSuffix(name, ".json"))
			if err != nil {
				return err
			}
			raw, err := fs.ReadFile(fsys, path.Join(dir, name))
			if err != nil {
				return fmt.Errorf("reading alias file %s: %w", name, err)
			}
			m, err := ParseAliasMap(raw)
			if err != nil {
				return fmt.Errorf("alias file %s: %w", name, err)
			}
			pairs[i], maps[i] = pair, m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(Aliases, len(files))
	for i, pair := range pairs {
		out[pair] = maps[i]
	}
	slog.Debug("loaded alias maps", "dir", dir, "count", len(out))
	return out, nil
}
