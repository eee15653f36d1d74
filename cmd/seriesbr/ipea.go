package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phelipetls/seriesbr-sub000/pkg/models"
	"github.com/phelipetls/seriesbr-sub000/pkg/odata"
	"github.com/phelipetls/seriesbr-sub000/pkg/providers/ipea"
)

var ipeaCmd = &cobra.Command{
	Use:   "ipea",
	Short: "IPEA time series (Ipeadata)",
}

var ipeaSeriesCmd = &cobra.Command{
	Use:   "series [label=]code...",
	Short: "Fetch one or more IPEA series into a table",
	Example: `  seriesbr ipea series BM12_TJOVER12 --start 2018
  seriesbr ipea series selic=BM12_TJOVER12 cambio=GM366_ERC366 --join inner`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := seriesOptions(cmd)
		if err != nil {
			return err
		}
		tbl, err := sources.ipea.GetSeries(cmd.Context(), opts, models.ParseCodeInputs(args)...)
		if err != nil {
			return err
		}
		return printResult(cmd, tbl)
	},
}

var ipeaMetadataCmd = &cobra.Command{
	Use:   "metadata code",
	Short: "Show the metadata of an IPEA series",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		meta, err := sources.ipea.GetMetadata(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printResult(cmd, meta)
	},
}

var ipeaSearchCmd = &cobra.Command{
	Use:   "search [term...]",
	Short: "Search IPEA series metadata",
	Long: `Search IPEA series metadata. Positional terms are matched against the
series name. --where adds a clause on any metadata field, with
comma-separated values meaning "any of"; --filter takes a raw $filter
expression instead.`,
	Example: `  seriesbr ipea search juros
  seriesbr ipea search taxa --where PERNOME=Mensal --where FNTSIGLA=BCB
  seriesbr ipea search --filter "contains(SERNOME,'Taxa') and PERNOME eq 'Mensal'" --fields UNINOME`,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := ipeaQuery(cmd, args)
		if err != nil {
			return err
		}
		recs, err := sources.ipea.Search(cmd.Context(), q)
		if err != nil {
			return err
		}
		return printResult(cmd, recs)
	},
}

// ipeaQuery builds a metadata search from positional terms and flags.
func ipeaQuery(cmd *cobra.Command, args []string) (ipea.Query, error) {
	where, _ := cmd.Flags().GetStringArray("where")
	filter, _ := cmd.Flags().GetString("filter")
	fields, _ := cmd.Flags().GetStringSlice("fields")

	q := ipea.Query{Names: args, Fields: fields}
	for _, w := range where {
		field, values, ok := strings.Cut(w, "=")
		if !ok || strings.TrimSpace(field) == "" {
			return ipea.Query{}, fmt.Errorf("--where %q: want FIELD=value[,value]", w)
		}
		var vals []any
		for _, v := range strings.Split(values, ",") {
			vals = append(vals, strings.TrimSpace(v))
		}
		q.Terms = append(q.Terms, odata.Where(field, vals...))
	}
	if filter != "" {
		parsed, err := odata.ParseFilter(filter)
		if err != nil {
			return ipea.Query{}, err
		}
		q.Terms = append(q.Terms, parsed...)
	}
	return q, nil
}

var ipeaFieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the metadata fields usable in searches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		recs := models.NewRecords("campo", "operador")
		for _, f := range odata.Fields() {
			op, _ := odata.OperatorFor(f)
			recs.Append(models.Record{"campo": f, "operador": string(op)})
		}
		return printResult(cmd, recs)
	},
}

// ipeaListing builds a command printing one of the IPEA catalogs.
func ipeaListing(use, short string, list func(*ipea.Provider, context.Context) (*models.Records, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := list(sources.ipea, cmd.Context())
			if err != nil {
				return err
			}
			return printResult(cmd, recs)
		},
	}
}

func init() {
	addSeriesFlags(ipeaSeriesCmd)
	ipeaSearchCmd.Flags().StringArray("where", nil, "metadata clause FIELD=value[,value] (repeatable)")
	ipeaSearchCmd.Flags().String("filter", "", "raw OData $filter expression")
	ipeaSearchCmd.Flags().StringSlice("fields", nil, "extra metadata fields to show")

	ipeaCmd.AddCommand(ipeaSeriesCmd, ipeaMetadataCmd, ipeaSearchCmd, ipeaFieldsCmd,
		ipeaListing("themes", "List IPEA themes", (*ipea.Provider).ListThemes),
		ipeaListing("countries", "List countries with IPEA series", (*ipea.Provider).ListCountries),
		ipeaListing("territories", "List Brazilian territories with IPEA series", (*ipea.Provider).ListTerritories),
		ipeaListing("sources", "List the institutions IPEA series come from", (*ipea.Provider).ListSources),
	)
}
