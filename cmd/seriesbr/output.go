package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/phelipetls/seriesbr-sub000/pkg/models"
)

// render writes v in the given format. v is a *models.Table,
// *models.Records or models.Metadata.
func render(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}

	recs, err := asRecords(v)
	if err != nil {
		return err
	}
	switch format {
	case "csv":
		return writeCSV(w, recs)
	case "table", "":
		writeTable(w, recs)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func asRecords(v any) (*models.Records, error) {
	switch val := v.(type) {
	case *models.Records:
		return val, nil
	case *models.Table:
		return val.Records(), nil
	case models.Metadata:
		return val.Records(), nil
	default:
		return nil, fmt.Errorf("cannot render %T as rows", v)
	}
}

func writeCSV(w io.Writer, recs *models.Records) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(recs.Columns); err != nil {
		return err
	}
	for i := range recs.Rows {
		if err := cw.Write(recs.Strings(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeTable(w io.Writer, recs *models.Records) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(recs.Columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for i := range recs.Rows {
		table.Append(recs.Strings(i))
	}
	table.Render()
}

// printResult renders v to the command's output in the configured format.
func printResult(cmd *cobra.Command, v any) error {
	return render(cmd.OutOrStdout(), cfg.Output.Format, v)
}
