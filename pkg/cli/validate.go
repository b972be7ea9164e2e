package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/getmockd/interceptd/pkg/cli/internal/output"
	"github.com/getmockd/interceptd/pkg/config"
	"github.com/getmockd/interceptd/pkg/fixture"
	"github.com/getmockd/interceptd/pkg/session"
)

// ValidateOutput represents JSON output format
type ValidateOutput struct {
	Valid    bool           `json:"valid"`
	Fixtures []FixtureEntry `json:"fixtures"`
}

// FixtureEntry describes one loaded fixture.
type FixtureEntry struct {
	ID     string   `json:"id,omitempty"`
	Route  string   `json:"route"`
	Params []string `json:"params,omitempty"`
	Cases  int      `json:"cases"`
}

var validateCmd = &cobra.Command{
	Use:   "validate PATH...",
	Short: "Validate fixture files",
	Long: `Validate fixture files without serving them.

Each PATH may be a file, a directory (searched recursively for .yaml, .yml
and .json files) or a glob pattern; ** matches across directories.

This command checks:
  - YAML syntax
  - Schema validation (required fields, valid values)
  - Route and predicate rules (exact paths, at most two parameters)
  - That the fixtures install together as one session`,
	Example: `  interceptd validate fixtures/
  interceptd validate 'fixtures/**/*.yaml' --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fixtures, err := loadFixtures(args)
		if err != nil {
			return err
		}

		registry := session.NewRegistry(session.WithLogger(newLogger(cmd)))
		if err := registry.Install(fixtures...); err != nil {
			return err
		}
		defer registry.Teardown()

		entries := make([]FixtureEntry, 0, len(fixtures))
		for _, f := range fixtures {
			entries = append(entries, describeFixture(f))
		}

		w := cmd.OutOrStdout()
		if jsonOutput {
			return output.JSON(w, ValidateOutput{Valid: true, Fixtures: entries})
		}

		tw := output.Table(w)
		fmt.Fprintln(tw, "ID\tROUTE\tPARAMS\tCASES")
		for _, e := range entries {
			params := strings.Join(e.Params, ",")
			if params == "" {
				params = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", e.ID, e.Route, params, e.Cases)
		}
		_ = tw.Flush()

		routes := len(registry.Routes())
		fmt.Fprintf(w, "OK: %d fixtures, %d routes\n", len(fixtures), routes)
		if routes < len(fixtures) {
			output.Warn(cmd.ErrOrStderr(), "%d fixtures replaced by later ones with the same route", len(fixtures)-routes)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func loadFixtures(paths []string) ([]*fixture.Fixture, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}
	return config.Load(cwd, paths...)
}

func describeFixture(f *fixture.Fixture) FixtureEntry {
	return FixtureEntry{
		ID:     f.ID,
		Route:  f.Key().String(),
		Params: f.Rule.Params,
		Cases:  len(f.Rule.Combined) + len(f.Rule.First) + len(f.Rule.Second),
	}
}
