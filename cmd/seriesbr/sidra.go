package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/phelipetls/seriesbr-sub000/pkg/models"
	"github.com/phelipetls/seriesbr-sub000/pkg/providers/sidra"
)

var sidraCmd = &cobra.Command{
	Use:   "sidra",
	Short: "IBGE aggregates (SIDRA)",
}

var sidraSeriesCmd = &cobra.Command{
	Use:   "series [label=]aggregate...",
	Short: "Fetch values of one or more IBGE aggregates",
	Long: `Fetch values of one or more IBGE aggregates. The aggregate metadata is
read first to pick its period format and check the requested locations.
Results of several aggregates are stacked by date.`,
	Example: `  seriesbr sidra series 1419 --last 12 --variables 63
  seriesbr sidra series 1419 --start 02-2017 --end 04-2019 --location municipalities=3550308
  seriesbr sidra series 1419 --classification 315=7169,7170 --location brazil`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := sidraRequest(cmd)
		if err != nil {
			return err
		}
		tbl, err := sources.sidra.Get(cmd.Context(), req, models.ParseCodeInputs(args)...)
		if err != nil {
			return err
		}
		return printResult(cmd, tbl)
	},
}

// sidraRequest reads the series flags into a request.
func sidraRequest(cmd *cobra.Command) (sidra.Request, error) {
	opts, err := seriesOptions(cmd)
	if err != nil {
		return sidra.Request{}, err
	}
	req := sidra.Request{Options: opts}

	vars, _ := cmd.Flags().GetStringSlice("variables")
	if req.Variables, err = parseIntList(vars); err != nil {
		return sidra.Request{}, err
	}

	locs, _ := cmd.Flags().GetStringArray("location")
	for _, l := range locs {
		loc, err := sidra.ParseLocation(l)
		if err != nil {
			return sidra.Request{}, err
		}
		req.Locations = append(req.Locations, loc)
	}

	classes, _ := cmd.Flags().GetStringArray("classification")
	for _, c := range classes {
		cl, err := sidra.ParseClassification(c)
		if err != nil {
			return sidra.Request{}, err
		}
		req.Classifications = append(req.Classifications, cl)
	}
	return req, nil
}

var sidraMetadataCmd = &cobra.Command{
	Use:   "metadata aggregate",
	Short: "Describe an IBGE aggregate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		meta, err := sources.sidra.GetMetadata(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printResult(cmd, meta)
	},
}

var sidraSearchCmd = &cobra.Command{
	Use:   "search term...",
	Short: "Search aggregates by name or survey",
	Example: `  seriesbr sidra search ipca
  seriesbr sidra search "censo" --where pesquisa`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		where, _ := cmd.Flags().GetString("where")
		recs, err := sources.sidra.Search(cmd.Context(), where, args...)
		if err != nil {
			return err
		}
		return printResult(cmd, recs)
	},
}

var sidraAggregatesCmd = &cobra.Command{
	Use:   "aggregates",
	Short: "List every aggregate with its survey",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := sources.sidra.ListAggregates(cmd.Context())
		if err != nil {
			return err
		}
		return printResult(cmd, recs)
	},
}

var sidraNewsCmd = &cobra.Command{
	Use:   "news",
	Short: "Show the latest IBGE news agency releases",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		recs, err := sources.sidra.News(cmd.Context(), limit)
		if err != nil {
			return err
		}
		return printResult(cmd, recs)
	},
}

// sidraTableListing builds a command printing one facet of an aggregate.
func sidraTableListing(use, short string, list func(*sidra.Provider, context.Context, string) (*models.Records, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " aggregate",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := list(sources.sidra, cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, recs)
		},
	}
}

// sidraLocalities builds a command printing one IBGE localities collection.
func sidraLocalities(use, short string, list func(*sidra.Provider, context.Context) (*models.Records, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := list(sources.sidra, cmd.Context())
			if err != nil {
				return err
			}
			return printResult(cmd, recs)
		},
	}
}

func init() {
	addSeriesFlags(sidraSeriesCmd)
	sidraSeriesCmd.Flags().StringSlice("variables", nil, "variable ids, e.g. 63,69 (default all)")
	sidraSeriesCmd.Flags().StringArray("location", nil, "territorial selection, e.g. states=33,35 or municipalities=all (repeatable)")
	sidraSeriesCmd.Flags().StringArray("classification", nil, "classification selection, e.g. 315=7169,7170 or 315 (repeatable)")
	sidraSearchCmd.Flags().String("where", sidra.WhereName, "field to search: nome or pesquisa")
	sidraNewsCmd.Flags().Int("limit", 10, "number of items")

	sidraCmd.AddCommand(sidraSeriesCmd, sidraMetadataCmd, sidraSearchCmd, sidraAggregatesCmd, sidraNewsCmd,
		sidraTableListing("variables", "List the variables of an aggregate", (*sidra.Provider).ListVariables),
		sidraTableListing("classifications", "List the classifications and categories of an aggregate", (*sidra.Provider).ListClassifications),
		sidraTableListing("periods", "Show the periodicity and period range of an aggregate", (*sidra.Provider).ListPeriods),
		sidraTableListing("locations", "List the territorial levels of an aggregate", (*sidra.Provider).ListLocations),
		sidraTableListing("latest", "Show the latest value of every variable for Brazil", (*sidra.Provider).Latest),
		sidraLocalities("states", "List the federative units", (*sidra.Provider).ListStates),
		sidraLocalities("cities", "List the municipalities", (*sidra.Provider).ListCities),
		sidraLocalities("macroregions", "List the macroregions", (*sidra.Provider).ListMacroregions),
		sidraLocalities("microregions", "List the microregions", (*sidra.Provider).ListMicroregions),
		sidraLocalities("mesoregions", "List the mesoregions", (*sidra.Provider).ListMesoregions),
	)
}
