package cmd

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display version, build, and SQL driver details.`,
	Run:   runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) {
	cmd.Printf("databridge %s (commit %s)\n", Version, Commit)
	cmd.Printf("  Go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	cmd.Printf("  SQL driver: databricks-sql-go %s\n", driverVersion())
}

// driverVersion reports the compiled-in databricks-sql-go version. Support
// issues against a warehouse usually start with this number.
func driverVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, dep := range info.Deps {
		if dep.Path == "github.com/databricks/databricks-sql-go" {
			return dep.Version
		}
	}
	return "unknown"
}
