package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gchang12/aenir/internal/config"
	"github.com/gchang12/aenir/internal/data"
	"github.com/gchang12/aenir/internal/db"
	"github.com/gchang12/aenir/internal/morph"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the stat tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := a.cfg.Database
			if d.Driver == config.DriverMemory {
				return errors.New("memory driver has nothing to migrate")
			}
			if err := db.RunMigrations(cmd.Context(), d.Driver, d.ConnString()); err != nil {
				return err
			}
			slog.Info("database migrations applied", "driver", d.Driver)
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	var fixture string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a YAML dataset into the configured database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d := a.cfg.Database
			if d.Driver == config.DriverMemory {
				return errors.New("memory driver reads the fixture directly; nothing to import")
			}
			if fixture == "" {
				fixture = a.cfg.Fixture
			}
			src, err := loadFixture(fixture)
			if err != nil {
				return err
			}

			if err := db.RunMigrations(ctx, d.Driver, d.ConnString()); err != nil {
				return err
			}
			w, closeFn, err := openWriter(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := db.Import(ctx, w, src); err != nil {
				return err
			}
			slog.Info("import finished", "fixture", fixture, "driver", d.Driver)
			return nil
		},
	}
	cmd.Flags().StringVar(&fixture, "fixture", "", "YAML dataset (defaults to config fixture)")
	return cmd
}

func newMorphCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "morph <unit[@opt=val,...]> [step...]",
		Short: "Apply level-ups, promotions and items to a unit",
		Long: `Steps run in order:
  level:N  promote[:Class]  cap  booster:Item  growth:Item
  equip:Item  unequip:Item  decline`,
		Example: `  aenir morph -g 8 Franz level:10 promote:Paladin level:20 cap
  aenir morph -g 7 Guy@lyn_mode=false,hard_mode=true level:10`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			spec, err := parseUnitSpec(args[0])
			if err != nil {
				return err
			}
			steps, err := parseSteps(args[1:])
			if err != nil {
				return err
			}

			e, err := openEngine(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer e.close()

			m, err := morph.New(ctx, e.rs, e.resolver, spec.Name, spec.Opts)
			if err != nil {
				return explainInit(err)
			}
			if err := apply(ctx, m, steps); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, m)
			fmt.Fprintf(out, "growths: %s\n", m.Growths())
			fmt.Fprintf(out, "max:     %s\n", m.MaxStats())
			if list, err := m.Promotions(ctx); err == nil && len(list) > 0 {
				fmt.Fprintf(out, "next:    %s\n", strings.Join(list, ", "))
			}
			return nil
		},
	}
}

func newCompareCmd(a *app) *cobra.Command {
	var selfSteps, otherSteps []string
	cmd := &cobra.Command{
		Use:     "compare <unit[@opt=val,...]> <unit[@opt=val,...]>",
		Short:   "Compare two units side by side",
		Example: `  aenir compare -g 7 Guy@lyn_mode=false,hard_mode=true Raven@hard_mode=true --self level:20 --other level:20`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEngine(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer e.close()

			units := make([]*morph.Morph, 2)
			for i, raw := range [][]string{selfSteps, otherSteps} {
				spec, err := parseUnitSpec(args[i])
				if err != nil {
					return err
				}
				steps, err := parseSteps(raw)
				if err != nil {
					return err
				}
				m, err := morph.New(ctx, e.rs, e.resolver, spec.Name, spec.Opts)
				if err != nil {
					return explainInit(err)
				}
				if err := apply(ctx, m, steps); err != nil {
					return err
				}
				units[i] = m
			}

			c, err := units[0].Compare(units[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.Render())
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&selfSteps, "self", nil, "steps for the first unit")
	cmd.Flags().StringSliceVar(&otherSteps, "other", nil, "steps for the second unit")
	return cmd
}

func newGamesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "games",
		Short: "List the supported rulesets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := data.DefaultRegistry()
			if err != nil {
				return err
			}
			for _, id := range reg.IDs() {
				rs, _ := reg.Get(id)
				fmt.Fprintf(cmd.OutOrStdout(), "%-3s %-28s %s\n", rs.ID, rs.Name, rs.Title)
			}
			return nil
		},
	}
}

// explainInit turns a missing-parameter error into something the user
// can retype.
func explainInit(err error) error {
	var initErr *morph.InitError
	if !errors.As(err, &initErr) || len(initErr.InitParams) == 0 {
		return err
	}
	choices := make([]string, 0, len(initErr.InitParams))
	for _, o := range initErr.InitParams {
		choices = append(choices, formatOptions(o))
	}
	return fmt.Errorf("%w; try one of: %s", err, strings.Join(choices, " | "))
}

func formatOptions(o morph.Options) string {
	var parts []string
	if o.Father != "" {
		parts = append(parts, data.ParamFather+"="+o.Father)
	}
	if o.Route != "" {
		parts = append(parts, data.ParamRoute+"="+o.Route)
	}
	if o.HardMode != nil {
		parts = append(parts, fmt.Sprintf("%s=%t", data.ParamHardMode, *o.HardMode))
	}
	if o.LynMode != nil {
		parts = append(parts, fmt.Sprintf("%s=%t", data.ParamLynMode, *o.LynMode))
	}
	return "@" + strings.Join(parts, ",")
}
