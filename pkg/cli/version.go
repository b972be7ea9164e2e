package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/getmockd/interceptd/pkg/cli/internal/output"
	"github.com/getmockd/interceptd/pkg/config"
)

// VersionOutput represents JSON output format
type VersionOutput struct {
	Version       string `json:"version"`
	Commit        string `json:"commit"`
	Date          string `json:"date"`
	FixtureFormat string `json:"fixtureFormat"`
	Go            string `json:"go"`
	Platform      string `json:"platform"`
}

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show interceptd version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := currentVersion()
		w := cmd.OutOrStdout()
		switch {
		case jsonOutput:
			return output.JSON(w, out)
		case versionShort:
			fmt.Fprintln(w, out.Version)
		default:
			fmt.Fprintf(w, "interceptd %s (%s, %s)\n", out.Version, out.Commit, out.Date)
			fmt.Fprintf(w, "fixture format %s, %s %s\n", out.FixtureFormat, out.Go, out.Platform)
		}
		return nil
	},
}

// currentVersion merges the link-time variables with VCS stamps from the
// build info. Link-time values win.
func currentVersion() VersionOutput {
	out := VersionOutput{
		Version:       Version,
		Commit:        Commit,
		Date:          BuildDate,
		FixtureFormat: config.FormatVersion,
		Go:            runtime.Version(),
		Platform:      runtime.GOOS + "/" + runtime.GOARCH,
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if out.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			out.Version = info.Main.Version
		}
		dirty := false
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if out.Commit == "none" {
					out.Commit = s.Value
				}
			case "vcs.time":
				if out.Date == "unknown" {
					out.Date = s.Value
				}
			case "vcs.modified":
				dirty = s.Value == "true"
			}
		}
		if dirty && !strings.HasSuffix(out.Commit, "-dirty") {
			out.Commit += "-dirty"
		}
	}

	if out.Version != "dev" && !strings.HasPrefix(out.Version, "v") {
		out.Version = "v" + out.Version
	}
	return out
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version")
	rootCmd.AddCommand(versionCmd)
}
