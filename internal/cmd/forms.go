package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hayeswinckle/appraisals/internal/lead"
	"github.com/hayeswinckle/appraisals/internal/output"
)

var formsCmd = &cobra.Command{
	Use:   "forms [sales|rental]",
	Short: "List appraisal form fields, rules and options",
	Long: `Print the fields of each appraisal form together with their validation
rules (in evaluation order) and the options accepted by select fields.

Examples:
  appraisals forms
  appraisals forms rental --output=json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runForms,
}

func init() {
	rootCmd.AddCommand(formsCmd)
	formsCmd.Flags().StringP("output", "o", "table", "Output format: table, json, markdown")
}

func runForms(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(mustGetString(cmd, "output"))
	if err != nil {
		return err
	}

	catalog, err := lead.LoadCatalog()
	if err != nil {
		return err
	}

	kinds := lead.Kinds
	if len(args) == 1 {
		kind, err := lead.ParseKind(args[0])
		if err != nil {
			return err
		}
		kinds = []lead.Kind{kind}
	}

	schemas := make([]*output.FormSchema, 0, len(kinds))
	for _, kind := range kinds {
		schema, err := output.NewFormSchema(catalog, kind)
		if err != nil {
			return err
		}
		schemas = append(schemas, schema)
	}

	rendered, err := output.FormatSchemaList(format, schemas)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

func mustGetString(cmd *cobra.Command, name string) string {
	value, _ := cmd.Flags().GetString(name)
	return value
}
