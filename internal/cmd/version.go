package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"

	"github.com/hayeswinckle/appraisals/internal/lead"
)

var (
	extended    bool
	versionJSON bool
)

type versionOutput struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Commit    string   `json:"commit,omitempty"`
	BuildDate string   `json:"build_date,omitempty"`
	Go        string   `json:"go,omitempty"`
	Gofulmen  string   `json:"gofulmen,omitempty"`
	Crucible  string   `json:"crucible,omitempty"`
	Forms     []string `json:"forms,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version information. Use --extended for build, Go, gofulmen and form details.",
	RunE: func(cmd *cobra.Command, args []string) error {
		identity := GetAppIdentity()
		out := versionOutput{Name: identity.BinaryName, Version: versionInfo.Version}

		if extended || versionJSON {
			deps := crucible.GetVersion()
			out.Commit = versionInfo.Commit
			out.BuildDate = versionInfo.BuildDate
			out.Go = runtime.Version()
			out.Gofulmen = deps.Gofulmen
			out.Crucible = deps.Crucible
			for _, kind := range lead.Kinds {
				out.Forms = append(out.Forms, string(kind))
			}
		}

		w := cmd.OutOrStdout()
		if versionJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		fmt.Fprintf(w, "%s %s\n", out.Name, out.Version)
		if extended {
			fmt.Fprintf(w, "Commit: %s\n", out.Commit)
			fmt.Fprintf(w, "Built: %s\n", out.BuildDate)
			fmt.Fprintf(w, "Go: %s\n", out.Go)
			fmt.Fprintf(w, "Forms: %v\n\n", out.Forms)
			fmt.Fprintf(w, "Gofulmen: %s\n", out.Gofulmen)
			fmt.Fprintf(w, "Crucible: %s\n", out.Crucible)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&extended, "extended", "e", false, "show extended version information")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "print version information as JSON")
}
