package options

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/folio/pkg/printers"
)

// OutputOptions
type OutputOptions struct {
	Output string

	format printers.Format
}

func AddOutputArg(cmd *cobra.Command, o *OutputOptions) {
	cmd.Flags().StringVarP(&o.Output, "output", "o", "",
		"Output format. One of 'table', 'json' or 'yaml'. Defaults to table on a terminal, json otherwise.")
	_ = cmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{string(printers.FormatTable), string(printers.FormatJSON), string(printers.FormatYAML)}, cobra.ShellCompDirectiveNoFileComp
	})
}

// Printer resolves the output format and returns a printer for it.
func (o *OutputOptions) Printer() (*printers.Printer, error) {
	f, err := printers.ParseFormat(o.Output)
	if err != nil {
		return nil, err
	}
	o.format = f
	return printers.New(f), nil
}

// HandleError prints err as a JSON document when -o json was given and
// swallows it; otherwise err is returned for cobra to report.
func (o *OutputOptions) HandleError(err error) error {
	if o.Output != "" && o.format == printers.FormatJSON && err != nil {
		out := map[string]string{
			"error": err.Error(),
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(color.Output, string(b))
		return nil
	}
	return err
}
