package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hayeswinckle/appraisals/internal/lead"
	"github.com/hayeswinckle/appraisals/internal/observability"
	"github.com/hayeswinckle/appraisals/internal/output"
)

var checkFormCmd = &cobra.Command{
	Use:   "check-form <sales|rental> [file]",
	Short: "Validate a submission without sending email",
	Long: `Validate a JSON submission against an appraisal form and show the
sanitized values that would be sent. Reads stdin when no file is given or
the file is "-".

Exits non-zero when the submission fails validation.

Examples:
  appraisals check-form sales lead.json
  echo '{"firstName":"Jane"}' | appraisals check-form rental --output=json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCheckForm,
}

func init() {
	rootCmd.AddCommand(checkFormCmd)
	checkFormCmd.Flags().StringP("output", "o", "table", "Output format: table, json, markdown")
}

func runCheckForm(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(mustGetString(cmd, "output"))
	if err != nil {
		return err
	}

	kind, err := lead.ParseKind(args[0])
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 2 && args[1] != "-" {
		f, err := os.Open(args[1])
		if err != nil {
			return fmt.Errorf("open submission: %w", err)
		}
		defer f.Close() // nolint:errcheck // read-only
		in = f
	}

	report, err := checkSubmission(kind, in)
	if err != nil {
		return err
	}

	rendered, err := output.NewFormatter(format).FormatReport(report)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), rendered); err != nil {
		return err
	}

	if !report.Valid {
		if observability.CLILogger != nil {
			observability.CLILogger.Debug("Submission failed validation",
				zap.String("form", string(kind)),
				zap.Int("errors", len(report.Errors)))
		}
		ExitWithCode(observability.CLILogger, foundry.ExitFailure, "Submission is invalid", nil)
	}
	return nil
}

func checkSubmission(kind lead.Kind, in io.Reader) (*output.Report, error) {
	var sub lead.Submission
	if err := json.NewDecoder(in).Decode(&sub); err != nil {
		return nil, fmt.Errorf("decode submission: %w", err)
	}

	catalog, err := lead.LoadCatalog()
	if err != nil {
		return nil, err
	}
	validator, err := lead.NewValidator(catalog)
	if err != nil {
		return nil, err
	}
	errs, err := validator.Validate(kind, sub)
	if err != nil {
		return nil, err
	}
	return output.NewReport(kind, sub, errs), nil
}
