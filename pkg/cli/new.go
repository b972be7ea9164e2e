package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/getmockd/interceptd/pkg/cli/internal/output"
	"github.com/getmockd/interceptd/pkg/config"
	"github.com/getmockd/interceptd/pkg/fixture"
)

var (
	newOutput  string
	newMethod  string
	newURL     string
	newID      string
	newParams  []string
	newMergeAt string
	newForce   bool
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Scaffold a fixture file",
	Long: `Write a fixture file with one route and empty predicate tables. The default
response is the empty-records body; fill in first, second and combined cases
afterwards.

Run without --url to answer the same questions interactively.`,
	Example: `  interceptd new -o fixtures/stats.yaml --url https://genes.example.org/api/stats --param gene --param study
  interceptd new -o fixtures/oov.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("url") {
			if err := promptFixture(cmd); err != nil {
				return err
			}
		}
		if newOutput == "" {
			return errors.New("--output is required")
		}
		if _, err := os.Stat(newOutput); err == nil && !newForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", newOutput)
		}

		route, err := config.RouteSpec{Method: strings.ToUpper(newMethod), URL: newURL}.Route()
		if err != nil {
			return err
		}
		f := &fixture.Fixture{
			ID:    newID,
			Route: route,
			Rule: fixture.Rule{
				Params:  newParams,
				Default: fixture.EmptyRecords(),
				MergeAt: newMergeAt,
			},
		}
		if err := f.Validate(); err != nil {
			return err
		}
		if err := config.Save(newOutput, []*fixture.Fixture{f}); err != nil {
			return err
		}

		if jsonOutput {
			return output.JSON(cmd.OutOrStdout(), describeFixture(f))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", newOutput, f.Key())
		return nil
	},
}

func promptFixture(cmd *cobra.Command) error {
	formParams := strings.Join(newParams, ",")
	formMethod := newMethod

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Which URL should be intercepted?").
				Placeholder("https://genes.example.org/api/stats").
				Value(&newURL).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("url is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Which HTTP method?").
				Options(
					huh.NewOption("GET", "GET"),
					huh.NewOption("POST", "POST"),
					huh.NewOption("PUT", "PUT"),
					huh.NewOption("DELETE", "DELETE"),
					huh.NewOption("PATCH", "PATCH"),
				).
				Value(&formMethod),
			huh.NewInput().
				Title("Query parameters to key on (comma separated, at most two)").
				Placeholder("gene,study").
				Value(&formParams).
				Validate(func(s string) error {
					if len(splitParams(s)) > fixture.MaxParams {
						return fmt.Errorf("at most %d parameters", fixture.MaxParams)
					}
					return nil
				}),
			huh.NewInput().
				Title("Body field payloads merge into (empty for top level)").
				Value(&newMergeAt),
			huh.NewInput().
				Title("Output file").
				Placeholder("fixtures/stats.yaml").
				Value(&newOutput),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	newMethod = formMethod
	newParams = splitParams(formParams)
	return nil
}

func splitParams(s string) []string {
	var params []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			params = append(params, p)
		}
	}
	return params
}

func init() {
	newCmd.Flags().StringVarP(&newOutput, "output", "o", "", "Fixture file to write")
	newCmd.Flags().StringVar(&newMethod, "method", "GET", "HTTP method to intercept")
	newCmd.Flags().StringVar(&newURL, "url", "", "Absolute URL to intercept, without a query")
	newCmd.Flags().StringVar(&newID, "id", "", "Fixture ID")
	newCmd.Flags().StringSliceVar(&newParams, "param", nil, "Query parameter to key on (repeatable, at most two)")
	newCmd.Flags().StringVar(&newMergeAt, "merge-at", fixture.DefaultMergeAt, "Body field payloads merge into; empty merges at the top level")
	newCmd.Flags().BoolVar(&newForce, "force", false, "Overwrite an existing file")
	rootCmd.AddCommand(newCmd)
}
