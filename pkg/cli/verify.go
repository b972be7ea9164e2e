package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/interceptd/pkg/cli/internal/output"
	"github.com/getmockd/interceptd/pkg/scenario"
)

// errVerifyFailed is returned when any scenario case fails.
type errVerifyFailed struct {
	failed int
}

func (e *errVerifyFailed) Error() string {
	return fmt.Sprintf("%d case(s) failed", e.failed)
}

var verifyCmd = &cobra.Command{
	Use:   "verify SCENARIO...",
	Short: "Run scenario files against their fixtures",
	Long: `Run scenario files. Each scenario names fixture files and lists requests
with an expect expression over status, body, error, unmatched, branch and hit.`,
	Example: `  interceptd verify scenarios/genomics.yaml`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runner := scenario.NewRunner(newLogger(cmd))

		reports := make([]*scenario.Report, 0, len(args))
		failed := 0
		for _, path := range args {
			s, err := scenario.Load(path)
			if err != nil {
				return err
			}
			report, err := runner.Run(cmd.Context(), s)
			if err != nil {
				return err
			}
			failed += report.Failed()
			reports = append(reports, report)
		}

		w := cmd.OutOrStdout()
		if jsonOutput {
			if err := output.JSON(w, reports); err != nil {
				return err
			}
		} else {
			for _, r := range reports {
				for _, res := range r.Results {
					if res.Passed {
						fmt.Fprintf(w, "PASS %s / %s\n", r.Scenario, res.Case)
						continue
					}
					fmt.Fprintf(w, "FAIL %s / %s: %s\n", r.Scenario, res.Case, res.Message)
				}
			}
		}

		if failed > 0 {
			return &errVerifyFailed{failed: failed}
		}
		if !jsonOutput {
			fmt.Fprintf(w, "ok: %d scenario(s)\n", len(reports))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
