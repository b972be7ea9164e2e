package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/getmockd/interceptd/pkg/cli/internal/output"
	"github.com/getmockd/interceptd/pkg/session"
)

// ResolveOutput represents JSON output format
type ResolveOutput struct {
	Status  int            `json:"status"`
	Body    map[string]any `json:"body"`
	Fixture string         `json:"fixture"`
	Branch  string         `json:"branch"`
	Hit     bool           `json:"hit"`
}

var resolveFixtures []string

var resolveCmd = &cobra.Command{
	Use:   "resolve METHOD URL",
	Short: "Resolve one call against fixture files",
	Long: `Resolve one outbound call against fixture files without any network
access and print the response that would be returned.

A call with no matching route fails, listing the closest registered routes.`,
	Example: `  interceptd resolve -f fixtures/ GET 'https://genes.example.org/api/stats?gene=TP53&study=BRCA'`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(resolveFixtures) == 0 {
			return errors.New("at least one --fixtures path is required")
		}
		method, rawURL := args[0], args[1]
		u, err := url.Parse(rawURL)
		if err != nil || u.Host == "" {
			return fmt.Errorf("invalid URL %q: must be absolute", rawURL)
		}

		fixtures, err := loadFixtures(resolveFixtures)
		if err != nil {
			return err
		}

		registry := session.NewRegistry(session.WithLogger(newLogger(cmd)))
		if err := registry.Install(fixtures...); err != nil {
			return err
		}
		defer registry.Teardown()

		resp, err := registry.Intercept(cmd.Context(), method, u)
		if err != nil {
			return err
		}

		out := ResolveOutput{Status: resp.Status(), Body: resp.Body}
		if entries := registry.Requests().List(nil); len(entries) > 0 {
			last := entries[len(entries)-1]
			out.Fixture = last.FixtureID
			out.Branch = last.Branch
			out.Hit = last.Hit
		}

		w := cmd.OutOrStdout()
		if jsonOutput {
			return output.JSON(w, out)
		}

		fmt.Fprintf(w, "%d %s\n", out.Status, http.StatusText(out.Status))
		body, err := json.MarshalIndent(out.Body, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding body: %w", err)
		}
		fmt.Fprintln(w, string(body))
		return nil
	},
}

func init() {
	resolveCmd.Flags().StringSliceVarP(&resolveFixtures, "fixtures", "f", nil, "Fixture file, directory or glob (repeatable)")
	rootCmd.AddCommand(resolveCmd)
}
